package core

import (
	"context"
	"fmt"

	"inventorycore/pkg/domain"
)

// NewCartridgeLinkageRule returns the rule pairing a cartridge's in-use status
// with its printer link. A linked cartridge must name the room label of some
// active-pool printer; an archived cartridge must be unlinked and replaced.
func NewCartridgeLinkageRule() domain.Rule {
	return cartridgeLinkageRule{}
}

type cartridgeLinkageRule struct{}

func (cartridgeLinkageRule) Name() string { return "cartridge_linkage" }

func (cartridgeLinkageRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	printerRooms := make(map[string]struct{})
	for _, e := range view.ListEquipment() {
		if e.Type == domain.TypePrinter && e.InActivePool() {
			printerRooms[e.Room] = struct{}{}
		}
	}

	block := func(c domain.Cartridge, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "cartridge_linkage",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityCartridge,
			EntityID: c.ID,
		})
	}

	for _, c := range view.ListCartridges() {
		if c.Deleted {
			continue
		}
		if c.Archived {
			if c.Status != domain.CartridgeReplaced {
				block(c, fmt.Sprintf("archived cartridge %s has status %s", c.ID, c.Status))
			}
			if c.PrinterKey != nil {
				block(c, fmt.Sprintf("archived cartridge %s still linked to printer %s", c.ID, *c.PrinterKey))
			}
			continue
		}
		linked := c.PrinterKey != nil
		if linked != (c.Status == domain.CartridgeInUse) {
			block(c, fmt.Sprintf("cartridge %s status %s does not match its printer link", c.ID, c.Status))
		}
		if linked {
			if _, ok := printerRooms[*c.PrinterKey]; !ok {
				block(c, fmt.Sprintf("cartridge %s linked to unknown printer room %s", c.ID, *c.PrinterKey))
			}
		}
	}
	return res, nil
}
