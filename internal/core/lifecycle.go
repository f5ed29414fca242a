package core

import (
	"strings"

	"inventorycore/pkg/domain"
)

// Lifecycle transitions. Archival and deletion are orthogonal: archiving
// retires a record from operational use, soft deletion moves it to the trash,
// and permanent deletion removes it with cascading cleanup of links.

// ArchiveEquipment retires an equipment record. Linked accessories are
// released back to the available pool before the status flips.
func (tx *transaction) ArchiveEquipment(id, reason string) (Equipment, error) {
	e, ok := tx.state.equipment[id]
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: EntityEquipment, ID: id}
	}
	if e.Deleted {
		return Equipment{}, domain.StateError{Entity: EntityEquipment, ID: id, Code: domain.CodeAlreadyDeleted}
	}
	if e.Archived {
		return Equipment{}, domain.StateError{Entity: EntityEquipment, ID: id, Code: domain.CodeAlreadyArchived}
	}
	before := cloneEquipment(e)
	tx.releaseAccessories(&e)
	now := tx.now
	e.Archived = true
	e.ArchiveDate = &now
	e.ArchiveReason = reason
	e.Status = StatusArchived
	e.MaintenanceEntryDate = nil
	e.MaintenanceReason = ""
	tx.state.equipment[id] = cloneEquipment(e)
	tx.recordChange(Change{Entity: EntityEquipment, Action: ActionUpdate, Before: before, After: cloneEquipment(e)})
	return cloneEquipment(e), nil
}

// UnarchiveEquipment returns an archived record to the available pool.
// Accessory links are not restored; re-linking is an explicit assignment.
func (tx *transaction) UnarchiveEquipment(id string) (Equipment, error) {
	e, ok := tx.state.equipment[id]
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: EntityEquipment, ID: id}
	}
	if e.Deleted {
		return Equipment{}, domain.StateError{Entity: EntityEquipment, ID: id, Code: domain.CodeAlreadyDeleted}
	}
	if !e.Archived {
		return Equipment{}, domain.StateError{Entity: EntityEquipment, ID: id, Code: domain.CodeNotArchived}
	}
	if err := checkUniqueFields(tx.Snapshot(), EntityEquipment, id, e.SerialNumber, e.AssetTag); err != nil {
		return Equipment{}, err
	}
	before := cloneEquipment(e)
	e.Archived = false
	e.ArchiveDate = nil
	e.ArchiveReason = ""
	e.Status = StatusAvailable
	tx.state.equipment[id] = cloneEquipment(e)
	tx.recordChange(Change{Entity: EntityEquipment, Action: ActionUpdate, Before: before, After: cloneEquipment(e)})
	return cloneEquipment(e), nil
}

// SendToMaintenance moves a notebook or desktop into maintenance. Other
// hardware types have no maintenance workflow and are rejected.
func (tx *transaction) SendToMaintenance(id, reason string) (Equipment, error) {
	e, ok := tx.state.equipment[id]
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: EntityEquipment, ID: id}
	}
	if !e.InActivePool() {
		return Equipment{}, domain.StateError{Entity: EntityEquipment, ID: id, Code: domain.CodeAlreadyArchived}
	}
	if e.Type != TypeNotebook && e.Type != TypeDesktop {
		return Equipment{}, domain.StateError{Entity: EntityEquipment, ID: id, Code: domain.CodeUnsupportedType}
	}
	if strings.TrimSpace(reason) == "" {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, ID: id, Field: "maintenance_reason", Code: domain.CodeMissingReason}
	}
	before := cloneEquipment(e)
	now := tx.now
	e.Status = StatusInMaintenance
	e.MaintenanceEntryDate = &now
	e.MaintenanceReason = reason
	tx.state.equipment[id] = cloneEquipment(e)
	tx.recordChange(Change{Entity: EntityEquipment, Action: ActionUpdate, Before: before, After: cloneEquipment(e)})
	return cloneEquipment(e), nil
}

// CompleteMaintenance returns a machine from maintenance to the available
// status and clears the maintenance fields.
func (tx *transaction) CompleteMaintenance(id string) (Equipment, error) {
	e, ok := tx.state.equipment[id]
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: EntityEquipment, ID: id}
	}
	if e.Status != StatusInMaintenance {
		return Equipment{}, domain.StateError{Entity: EntityEquipment, ID: id, Code: domain.CodeNotInMaintenance}
	}
	before := cloneEquipment(e)
	e.Status = StatusAvailable
	e.MaintenanceEntryDate = nil
	e.MaintenanceReason = ""
	tx.state.equipment[id] = cloneEquipment(e)
	tx.recordChange(Change{Entity: EntityEquipment, Action: ActionUpdate, Before: before, After: cloneEquipment(e)})
	return cloneEquipment(e), nil
}

// ArchiveCartridge marks a cartridge replaced. The printer link is severed so
// an archived cartridge never reads as in use.
func (tx *transaction) ArchiveCartridge(id string) (Cartridge, error) {
	c, ok := tx.state.cartridges[id]
	if !ok {
		return Cartridge{}, domain.NotFoundError{Entity: EntityCartridge, ID: id}
	}
	if c.Deleted {
		return Cartridge{}, domain.StateError{Entity: EntityCartridge, ID: id, Code: domain.CodeAlreadyDeleted}
	}
	if c.Archived {
		return Cartridge{}, domain.StateError{Entity: EntityCartridge, ID: id, Code: domain.CodeAlreadyArchived}
	}
	before := cloneCartridge(c)
	now := tx.now
	c.Archived = true
	c.ArchiveDate = &now
	c.Status = CartridgeReplaced
	c.PrinterKey = nil
	tx.state.cartridges[id] = cloneCartridge(c)
	tx.recordChange(Change{Entity: EntityCartridge, Action: ActionUpdate, Before: before, After: cloneCartridge(c)})
	return cloneCartridge(c), nil
}

// UnarchiveCartridge returns a cartridge to the available pool unlinked.
func (tx *transaction) UnarchiveCartridge(id string) (Cartridge, error) {
	c, ok := tx.state.cartridges[id]
	if !ok {
		return Cartridge{}, domain.NotFoundError{Entity: EntityCartridge, ID: id}
	}
	if c.Deleted {
		return Cartridge{}, domain.StateError{Entity: EntityCartridge, ID: id, Code: domain.CodeAlreadyDeleted}
	}
	if !c.Archived {
		return Cartridge{}, domain.StateError{Entity: EntityCartridge, ID: id, Code: domain.CodeNotArchived}
	}
	if err := checkUniqueFields(tx.Snapshot(), EntityCartridge, id, c.SerialNumber, c.AssetTag); err != nil {
		return Cartridge{}, err
	}
	before := cloneCartridge(c)
	c.Archived = false
	c.ArchiveDate = nil
	c.Status = CartridgeAvailable
	c.PrinterKey = nil
	tx.state.cartridges[id] = cloneCartridge(c)
	tx.recordChange(Change{Entity: EntityCartridge, Action: ActionUpdate, Before: before, After: cloneCartridge(c)})
	return cloneCartridge(c), nil
}

// SoftDelete moves a record to the trash. Deleting equipment releases its
// accessories; deleting an accessory leaves stale list entries behind, which
// is reconciled on restore or permanent delete.
func (tx *transaction) SoftDelete(kind EntityType, id string) error {
	now := tx.now
	switch kind {
	case EntityEquipment:
		e, ok := tx.state.equipment[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		if e.Deleted {
			return domain.StateError{Entity: kind, ID: id, Code: domain.CodeAlreadyDeleted}
		}
		before := cloneEquipment(e)
		tx.releaseAccessories(&e)
		e.Deleted = true
		e.DeletionDate = &now
		tx.state.equipment[id] = cloneEquipment(e)
		tx.recordChange(Change{Entity: kind, Action: ActionDelete, Before: before, After: cloneEquipment(e)})
		return nil
	case EntityAccessory:
		a, ok := tx.state.accessories[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		if a.Deleted {
			return domain.StateError{Entity: kind, ID: id, Code: domain.CodeAlreadyDeleted}
		}
		before := cloneAccessory(a)
		a.Deleted = true
		a.DeletionDate = &now
		tx.state.accessories[id] = cloneAccessory(a)
		tx.recordChange(Change{Entity: kind, Action: ActionDelete, Before: before, After: cloneAccessory(a)})
		return nil
	case EntityCartridge:
		c, ok := tx.state.cartridges[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		if c.Deleted {
			return domain.StateError{Entity: kind, ID: id, Code: domain.CodeAlreadyDeleted}
		}
		before := cloneCartridge(c)
		c.Deleted = true
		c.DeletionDate = &now
		tx.state.cartridges[id] = cloneCartridge(c)
		tx.recordChange(Change{Entity: kind, Action: ActionDelete, Before: before, After: cloneCartridge(c)})
		return nil
	}
	return domain.NotFoundError{Entity: kind, ID: id}
}

// Restore brings a record back from the trash. A restored accessory's
// availability is recomputed against the surviving equipment lists; a restored
// record must not reintroduce a duplicate serial or asset tag.
func (tx *transaction) Restore(kind EntityType, id string) error {
	switch kind {
	case EntityEquipment:
		e, ok := tx.state.equipment[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		if !e.Deleted {
			return domain.StateError{Entity: kind, ID: id, Code: domain.CodeNotDeleted}
		}
		if !e.Archived {
			if err := checkUniqueFields(tx.Snapshot(), EntityEquipment, id, e.SerialNumber, e.AssetTag); err != nil {
				return err
			}
		}
		before := cloneEquipment(e)
		e.Deleted = false
		e.DeletionDate = nil
		tx.state.equipment[id] = cloneEquipment(e)
		tx.recordChange(Change{Entity: kind, Action: ActionUpdate, Before: before, After: cloneEquipment(e)})
		return nil
	case EntityAccessory:
		a, ok := tx.state.accessories[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		if !a.Deleted {
			return domain.StateError{Entity: kind, ID: id, Code: domain.CodeNotDeleted}
		}
		if err := checkUniqueFields(tx.Snapshot(), EntityAccessory, id, a.SerialNumber, a.AssetTag); err != nil {
			return err
		}
		before := cloneAccessory(a)
		a.Deleted = false
		a.DeletionDate = nil
		a.Available = !tx.accessoryHeld(id)
		tx.state.accessories[id] = cloneAccessory(a)
		tx.recordChange(Change{Entity: kind, Action: ActionUpdate, Before: before, After: cloneAccessory(a)})
		return nil
	case EntityCartridge:
		c, ok := tx.state.cartridges[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		if !c.Deleted {
			return domain.StateError{Entity: kind, ID: id, Code: domain.CodeNotDeleted}
		}
		if !c.Archived {
			if err := checkUniqueFields(tx.Snapshot(), EntityCartridge, id, c.SerialNumber, c.AssetTag); err != nil {
				return err
			}
		}
		before := cloneCartridge(c)
		c.Deleted = false
		c.DeletionDate = nil
		tx.state.cartridges[id] = cloneCartridge(c)
		tx.recordChange(Change{Entity: kind, Action: ActionUpdate, Before: before, After: cloneCartridge(c)})
		return nil
	}
	return domain.NotFoundError{Entity: kind, ID: id}
}

// PermanentlyDelete removes a record outright. Equipment releases its
// surviving accessories first; an accessory is scrubbed from every equipment
// list that still references it.
func (tx *transaction) PermanentlyDelete(kind EntityType, id string) error {
	switch kind {
	case EntityEquipment:
		e, ok := tx.state.equipment[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		before := cloneEquipment(e)
		tx.releaseAccessories(&e)
		delete(tx.state.equipment, id)
		tx.recordChange(Change{Entity: kind, Action: ActionDelete, Before: before})
		return nil
	case EntityAccessory:
		a, ok := tx.state.accessories[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		before := cloneAccessory(a)
		for eid, e := range tx.state.equipment {
			trimmed := removeID(e.AccessoryIDs, id)
			if len(trimmed) != len(e.AccessoryIDs) {
				eBefore := cloneEquipment(e)
				e.AccessoryIDs = trimmed
				tx.state.equipment[eid] = cloneEquipment(e)
				tx.recordChange(Change{Entity: EntityEquipment, Action: ActionUpdate, Before: eBefore, After: cloneEquipment(e)})
			}
		}
		delete(tx.state.accessories, id)
		tx.recordChange(Change{Entity: kind, Action: ActionDelete, Before: before})
		return nil
	case EntityCartridge:
		c, ok := tx.state.cartridges[id]
		if !ok {
			return domain.NotFoundError{Entity: kind, ID: id}
		}
		before := cloneCartridge(c)
		delete(tx.state.cartridges, id)
		tx.recordChange(Change{Entity: kind, Action: ActionDelete, Before: before})
		return nil
	}
	return domain.NotFoundError{Entity: kind, ID: id}
}

// releaseAccessories clears the equipment's list and marks each still-present,
// non-deleted accessory available again.
func (tx *transaction) releaseAccessories(e *Equipment) {
	for _, aid := range e.AccessoryIDs {
		a, ok := tx.state.accessories[aid]
		if !ok || a.Deleted {
			continue
		}
		aBefore := cloneAccessory(a)
		a.Available = true
		tx.state.accessories[aid] = cloneAccessory(a)
		tx.recordChange(Change{Entity: EntityAccessory, Action: ActionUpdate, Before: aBefore, After: cloneAccessory(a)})
	}
	e.AccessoryIDs = nil
}

// accessoryHeld reports whether any non-deleted equipment still lists the
// accessory.
func (tx *transaction) accessoryHeld(accessoryID string) bool {
	for _, e := range tx.state.equipment {
		if e.Deleted {
			continue
		}
		for _, aid := range e.AccessoryIDs {
			if aid == accessoryID {
				return true
			}
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
