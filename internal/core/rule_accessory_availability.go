package core

import (
	"context"
	"fmt"

	"inventorycore/pkg/domain"
)

// NewAccessoryAvailabilityRule returns the rule keeping the equipment and
// accessory sides of the linkage consistent: a live accessory is available
// exactly when no non-deleted equipment lists it, and no accessory is listed
// by two machines at once. Entries pointing at soft-deleted accessories are
// tolerated; entries pointing at ids that no longer exist are surfaced as
// warnings.
func NewAccessoryAvailabilityRule() domain.Rule {
	return accessoryAvailabilityRule{}
}

type accessoryAvailabilityRule struct{}

func (accessoryAvailabilityRule) Name() string { return "accessory_availability" }

func (accessoryAvailabilityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	holders := make(map[string]string)
	for _, e := range view.ListEquipment() {
		if e.Deleted {
			continue
		}
		for _, aid := range e.AccessoryIDs {
			if first, dup := holders[aid]; dup {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "accessory_availability",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("accessory %s listed by both %s and %s", aid, first, e.RegistrationID),
					Entity:   domain.EntityAccessory,
					EntityID: aid,
				})
				continue
			}
			holders[aid] = e.RegistrationID
			if _, ok := view.FindAccessory(aid); !ok {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "accessory_availability",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("equipment %s lists unknown accessory %s", e.RegistrationID, aid),
					Entity:   domain.EntityEquipment,
					EntityID: e.RegistrationID,
				})
			}
		}
	}

	for _, a := range view.ListAccessories() {
		if a.Deleted {
			continue
		}
		holder, held := holders[a.ID]
		if a.Available == !held {
			continue
		}
		msg := fmt.Sprintf("accessory %s marked available while held by %s", a.ID, holder)
		if !held {
			msg = fmt.Sprintf("accessory %s marked unavailable while held by no equipment", a.ID)
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "accessory_availability",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityAccessory,
			EntityID: a.ID,
		})
	}
	return res, nil
}
