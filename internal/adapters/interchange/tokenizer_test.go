package interchange

import (
	"errors"
	"reflect"
	"testing"

	"inventorycore/pkg/domain"
)

func TestTokenizeQuotedFields(t *testing.T) {
	input := "a,\"b,c\",\"say \"\"hi\"\"\",\"line1\nline2\"\nd,e,f,g\n"
	records, err := tokenize(input)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := [][]string{
		{"a", "b,c", `say "hi"`, "line1\nline2"},
		{"d", "e", "f", "g"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("got %#v, want %#v", records, want)
	}
}

func TestTokenizeCRLFAndMissingFinalNewline(t *testing.T) {
	records, err := tokenize("a,b\r\nc,d")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("got %#v, want %#v", records, want)
	}
}

func TestTokenizeEmptyQuotedFieldAtEOF(t *testing.T) {
	records, err := tokenize(`a,""`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := [][]string{{"a", ""}}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("got %#v, want %#v", records, want)
	}
}

func TestTokenizeMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unterminated quote", "a,\"b\nc"},
		{"quote inside unquoted field", "ab\"c,d\n"},
		{"garbage after closing quote", "\"a\"b,c\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tokenize(tc.input)
			var ierr domain.ImportError
			if !errors.As(err, &ierr) {
				t.Fatalf("expected import error, got %v", err)
			}
			if ierr.Line == 0 {
				t.Fatalf("error must carry a line number: %+v", ierr)
			}
		})
	}
}
