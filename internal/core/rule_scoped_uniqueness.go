package core

import (
	"context"
	"fmt"

	"inventorycore/pkg/domain"
)

// NewScopedUniquenessRule returns the rule enforcing one serial number
// (case-insensitive) and one asset tag (exact) per active pool. Archived and
// deleted records sit outside the scope and never conflict.
func NewScopedUniquenessRule() domain.Rule {
	return scopedUniquenessRule{}
}

type scopedUniquenessRule struct{}

func (scopedUniquenessRule) Name() string { return "scoped_uniqueness" }

func (scopedUniquenessRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	type seenKey struct {
		field domain.UniqueField
		value string
	}
	for _, kind := range []domain.EntityType{domain.EntityEquipment, domain.EntityAccessory, domain.EntityCartridge} {
		seen := make(map[seenKey]string)
		record := func(id, serial, assetTag string) {
			for _, probe := range []struct {
				field domain.UniqueField
				value string
			}{
				{domain.FieldSerialNumber, domain.NormalizeSerial(serial)},
				{domain.FieldAssetTag, assetTag},
			} {
				if probe.value == "" {
					continue
				}
				key := seenKey{probe.field, probe.value}
				if first, dup := seen[key]; dup {
					res.Violations = append(res.Violations, domain.Violation{
						Rule:     "scoped_uniqueness",
						Severity: domain.SeverityBlock,
						Message:  fmt.Sprintf("%s %s duplicates %s of %s", kind, id, probe.field, first),
						Entity:   kind,
						EntityID: id,
					})
					continue
				}
				seen[key] = id
			}
		}
		switch kind {
		case domain.EntityEquipment:
			for _, e := range view.ListEquipment() {
				if e.InActivePool() {
					record(e.RegistrationID, e.SerialNumber, e.AssetTag)
				}
			}
		case domain.EntityAccessory:
			for _, a := range view.ListAccessories() {
				if a.InActivePool() {
					record(a.ID, a.SerialNumber, a.AssetTag)
				}
			}
		case domain.EntityCartridge:
			for _, c := range view.ListCartridges() {
				if c.InActivePool() {
					record(c.ID, c.SerialNumber, c.AssetTag)
				}
			}
		}
	}
	return res, nil
}
