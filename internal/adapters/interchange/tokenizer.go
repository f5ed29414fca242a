package interchange

import (
	"fmt"

	"inventorycore/pkg/domain"
)

// tokenize splits the file into records of fields using an explicit state
// machine so quoted fields may span commas, doubled quotes, and embedded
// newlines. CRLF and LF line endings are both accepted.
func tokenize(text string) ([][]string, error) {
	const (
		stateUnquoted = iota
		stateQuoted
		stateQuotedQuote
	)

	var (
		records [][]string
		record  []string
		field   []rune
		state   = stateUnquoted
		line    = 1
	)

	endField := func() {
		record = append(record, string(field))
		field = field[:0]
	}
	endRecord := func() {
		endField()
		records = append(records, record)
		record = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch state {
		case stateUnquoted:
			switch ch {
			case '"':
				if len(field) != 0 {
					return nil, domain.ImportError{Line: line, Reason: "quote inside unquoted field"}
				}
				state = stateQuoted
			case ',':
				endField()
			case '\r':
				// swallow; the following \n ends the record
			case '\n':
				endRecord()
				line++
			default:
				field = append(field, ch)
			}
		case stateQuoted:
			switch ch {
			case '"':
				state = stateQuotedQuote
			case '\n':
				field = append(field, ch)
				line++
			default:
				field = append(field, ch)
			}
		case stateQuotedQuote:
			switch ch {
			case '"':
				field = append(field, '"')
				state = stateQuoted
			case ',':
				endField()
				state = stateUnquoted
			case '\r':
				state = stateUnquoted
			case '\n':
				endRecord()
				line++
				state = stateUnquoted
			default:
				return nil, domain.ImportError{Line: line, Reason: fmt.Sprintf("unexpected %q after closing quote", string(ch))}
			}
		}
	}
	if state == stateQuoted {
		return nil, domain.ImportError{Line: line, Reason: "unterminated quoted field"}
	}
	if len(field) > 0 || len(record) > 0 || state == stateQuotedQuote {
		endRecord()
	}
	return records, nil
}
