package core

import (
	"strings"

	"inventorycore/pkg/domain"
)

// Conflict identifies the record already holding a unique value.
type Conflict struct {
	Field      UniqueField
	Value      string
	ExistingID string
}

// CheckUnique scans records of kind within their uniqueness scope for a value
// collision: serial numbers compare case-insensitively, asset tags exactly.
// Blank values never conflict. excludeID lets an edit compare against all
// records except itself. The scope excludes archived and deleted records for
// equipment and cartridges, and deleted records only for accessories.
func CheckUnique(view RuleView, kind EntityType, field UniqueField, value string, excludeID string) (Conflict, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Conflict{}, false
	}
	matches := func(candidate string) bool {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return false
		}
		if field == FieldSerialNumber {
			return domain.NormalizeSerial(candidate) == domain.NormalizeSerial(value)
		}
		return candidate == value
	}

	switch kind {
	case EntityEquipment:
		for _, e := range view.ListEquipment() {
			if e.RegistrationID == excludeID || !e.InActivePool() {
				continue
			}
			if matches(fieldValueEquipment(e, field)) {
				return Conflict{Field: field, Value: value, ExistingID: e.RegistrationID}, true
			}
		}
	case EntityAccessory:
		for _, a := range view.ListAccessories() {
			if a.ID == excludeID || !a.InActivePool() {
				continue
			}
			if matches(fieldValueAccessory(a, field)) {
				return Conflict{Field: field, Value: value, ExistingID: a.ID}, true
			}
		}
	case EntityCartridge:
		for _, c := range view.ListCartridges() {
			if c.ID == excludeID || !c.InActivePool() {
				continue
			}
			if matches(fieldValueCartridge(c, field)) {
				return Conflict{Field: field, Value: value, ExistingID: c.ID}, true
			}
		}
	}
	return Conflict{}, false
}

func fieldValueEquipment(e Equipment, field UniqueField) string {
	if field == FieldSerialNumber {
		return e.SerialNumber
	}
	return e.AssetTag
}

func fieldValueAccessory(a Accessory, field UniqueField) string {
	if field == FieldSerialNumber {
		return a.SerialNumber
	}
	return a.AssetTag
}

func fieldValueCartridge(c Cartridge, field UniqueField) string {
	if field == FieldSerialNumber {
		return c.SerialNumber
	}
	return c.AssetTag
}

// checkUniqueFields validates both guarded fields for a record about to enter
// or change within the active scope, returning a typed validation error on
// the first collision.
func checkUniqueFields(view RuleView, kind EntityType, id, serial, assetTag string) error {
	if conflict, found := CheckUnique(view, kind, FieldSerialNumber, serial, id); found {
		return domain.ValidationError{
			Entity:     kind,
			ID:         id,
			Field:      string(FieldSerialNumber),
			Code:       domain.CodeDuplicateValue,
			ConflictID: conflict.ExistingID,
		}
	}
	if conflict, found := CheckUnique(view, kind, FieldAssetTag, assetTag, id); found {
		return domain.ValidationError{
			Entity:     kind,
			ID:         id,
			Field:      string(FieldAssetTag),
			Code:       domain.CodeDuplicateValue,
			ConflictID: conflict.ExistingID,
		}
	}
	return nil
}
