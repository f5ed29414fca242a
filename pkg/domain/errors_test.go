package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{NotFoundError{Entity: EntityEquipment, ID: "#E100001"}, "equipment #E100001 not found"},
		{ValidationError{Entity: EntityEquipment, ID: "#E100001", Field: "serial_number", Code: CodeDuplicateValue, ConflictID: "#E100002"}, "equipment #E100001: serial_number conflicts with #E100002"},
		{ValidationError{Entity: EntityCartridge, ID: "#C1001", Field: "color", Code: CodeInvalidEnum}, "cartridge #C1001: invalid color (invalid_enum)"},
		{StateError{Entity: EntityEquipment, ID: "#E100001", Code: CodeAlreadyArchived}, "equipment #E100001: transition rejected (already_archived)"},
		{LinkConflictError{AccessoryID: "#A100001", HeldByID: "#E100001"}, "accessory #A100001 is already linked to equipment #E100001"},
		{LinkConflictError{AccessoryID: "#A100001"}, "accessory #A100001 is not available"},
		{ImportError{Section: "###CARTRIDGES###", Line: 3, Reason: "blank id"}, "import failed in section ###CARTRIDGES### at line 3: blank id"},
		{ImportError{Line: 2, Reason: "unterminated quoted field"}, "import failed at line 2: unterminated quoted field"},
		{ImportError{Reason: "section missing"}, "import failed: section missing"},
		{IDSpaceExhaustedError{Entity: EntityCartridge, Attempts: 10000}, "id space exhausted for cartridge after 10000 attempts"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := PersistenceError{Op: "upsert equipment", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("persistence error must unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("cause missing from message: %q", err.Error())
	}
}

func TestNormalizeSerial(t *testing.T) {
	if got := NormalizeSerial("  AbC-123 "); got != "abc-123" {
		t.Fatalf("got %q", got)
	}
}

func TestInActivePoolScopes(t *testing.T) {
	if !(Equipment{}).InActivePool() {
		t.Fatal("fresh equipment must be active")
	}
	if (Equipment{Archived: true}).InActivePool() || (Equipment{Deleted: true}).InActivePool() {
		t.Fatal("archived or deleted equipment must not be active")
	}
	if !(Accessory{}).InActivePool() || (Accessory{Deleted: true}).InActivePool() {
		t.Fatal("accessory scope narrows on deletion only")
	}
	if (Cartridge{Archived: true}).InActivePool() {
		t.Fatal("archived cartridge must not be active")
	}
}
