package interchange

import (
	"errors"
	"strings"
	"testing"

	"inventorycore/pkg/domain"
)

func TestJSONRoundTrip(t *testing.T) {
	original := sampleSnapshot()
	data, err := EncodeJSON(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Equipment) != 3 || len(decoded.Accessories) != 2 || len(decoded.Cartridges) != 1 {
		t.Fatalf("record counts changed: %d/%d/%d", len(decoded.Equipment), len(decoded.Accessories), len(decoded.Cartridges))
	}
	for _, e := range decoded.Equipment {
		if e.RegistrationID == "#E100001" && e.Notes != "first line\nsecond line" {
			t.Fatalf("notes corrupted: %q", e.Notes)
		}
	}
}

func TestDecodeJSONBareArray(t *testing.T) {
	data := []byte(`[
		{"registration_id": "#E100001", "equipment_type": "notebook", "serial_number": "SN-1", "operational_status": "available"},
		{"id": "#A100001", "category": "monitors", "serial_number": "AC-1"},
		{"id": "#C1001", "serial_number": "CR-1", "color": "black", "status": "available"}
	]`)
	decoded, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Equipment) != 1 || len(decoded.Accessories) != 1 || len(decoded.Cartridges) != 1 {
		t.Fatalf("records misclassified: %d/%d/%d", len(decoded.Equipment), len(decoded.Accessories), len(decoded.Cartridges))
	}
	if decoded.Equipment[0].RegistrationID != "#E100001" || decoded.Accessories[0].ID != "#A100001" || decoded.Cartridges[0].ID != "#C1001" {
		t.Fatalf("array records lost identity: %+v", decoded)
	}

	_, err = DecodeJSON([]byte(`[{"model": "no identity"}]`))
	var ierr domain.ImportError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected import error for unclassifiable record, got %v", err)
	}
}

func TestDecodeJSONRejectsMalformedDocument(t *testing.T) {
	_, err := DecodeJSON([]byte("{not json"))
	var ierr domain.ImportError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected import error, got %v", err)
	}
}

func TestDecodeJSONRejectsBlankPrimaryKey(t *testing.T) {
	data, err := EncodeJSON(sampleSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	mutated := strings.Replace(string(data), `"#C1001"`, `""`, 1)

	_, err = DecodeJSON([]byte(mutated))
	var ierr domain.ImportError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected import error, got %v", err)
	}
}
