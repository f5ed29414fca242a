package domain

import "fmt"

// RuleCode identifies the specific rule violated by a rejected operation.
type RuleCode string

// Rule codes attached to StateError and ValidationError values.
const (
	CodeAlreadyArchived   RuleCode = "already_archived"
	CodeNotArchived       RuleCode = "not_archived"
	CodeAlreadyDeleted    RuleCode = "already_deleted"
	CodeNotDeleted        RuleCode = "not_deleted"
	CodeMissingReason     RuleCode = "missing_reason"
	CodeUnsupportedType   RuleCode = "unsupported_type"
	CodeDuplicateValue    RuleCode = "duplicate_value"
	CodeBlankField        RuleCode = "blank_field"
	CodeInvalidEnum       RuleCode = "invalid_enum"
	CodeNotInMaintenance  RuleCode = "not_in_maintenance"
	CodeUnknownPrinterKey RuleCode = "unknown_printer_key"
)

// NotFoundError is returned when an operation addresses an unknown record.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError reports a recoverable admission failure: a blank required
// field, an invalid enum value, or a duplicate serial number / asset tag.
// ConflictID carries the id of the colliding record for duplicate values.
type ValidationError struct {
	Entity     EntityType
	ID         string
	Field      string
	Code       RuleCode
	ConflictID string
}

func (e ValidationError) Error() string {
	if e.Code == CodeDuplicateValue {
		return fmt.Sprintf("%s %s: %s conflicts with %s", e.Entity, e.ID, e.Field, e.ConflictID)
	}
	return fmt.Sprintf("%s %s: invalid %s (%s)", e.Entity, e.ID, e.Field, e.Code)
}

// StateError reports a lifecycle transition attempted from an incompatible state.
type StateError struct {
	Entity EntityType
	ID     string
	Code   RuleCode
}

func (e StateError) Error() string {
	return fmt.Sprintf("%s %s: transition rejected (%s)", e.Entity, e.ID, e.Code)
}

// LinkConflictError reports an attempt to assign an accessory that is already
// linked to another active equipment record. The assignment is rejected
// atomically; no partial application occurs.
type LinkConflictError struct {
	AccessoryID string
	HeldByID    string
}

func (e LinkConflictError) Error() string {
	if e.HeldByID == "" {
		return fmt.Sprintf("accessory %s is not available", e.AccessoryID)
	}
	return fmt.Sprintf("accessory %s is already linked to equipment %s", e.AccessoryID, e.HeldByID)
}

// ImportError aborts an entire CSV/JSON import; no partial record set is committed.
type ImportError struct {
	Section string
	Line    int
	Reason  string
}

func (e ImportError) Error() string {
	switch {
	case e.Section != "" && e.Line > 0:
		return fmt.Sprintf("import failed in section %s at line %d: %s", e.Section, e.Line, e.Reason)
	case e.Section != "":
		return fmt.Sprintf("import failed in section %s: %s", e.Section, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("import failed at line %d: %s", e.Line, e.Reason)
	}
	return "import failed: " + e.Reason
}

// PersistenceError reports a failed storage write. The in-memory state keeps
// the attempted mutation and the dirty flag stays set; the core performs no
// automatic retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying storage error.
func (e PersistenceError) Unwrap() error { return e.Err }

// IDSpaceExhaustedError is returned when id generation keeps colliding beyond
// the retry bound. It signals an exhausted id space and is not recoverable.
type IDSpaceExhaustedError struct {
	Entity   EntityType
	Attempts int
}

func (e IDSpaceExhaustedError) Error() string {
	return fmt.Sprintf("id space exhausted for %s after %d attempts", e.Entity, e.Attempts)
}
