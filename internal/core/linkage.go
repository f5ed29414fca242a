package core

import (
	"strings"

	"inventorycore/pkg/domain"
)

// Linkage operations keep the equipment-accessory relation bidirectional and
// the cartridge printer link paired with its status.

// AssignAccessories replaces an equipment record's accessory list. Newly added
// accessories must be available and not deleted; the whole assignment fails if
// any of them is held elsewhere. Removed accessories are released.
func (tx *transaction) AssignAccessories(equipmentID string, accessoryIDs []string) (Equipment, error) {
	e, ok := tx.state.equipment[equipmentID]
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: EntityEquipment, ID: equipmentID}
	}
	if !e.InActivePool() {
		code := domain.CodeAlreadyArchived
		if e.Deleted {
			code = domain.CodeAlreadyDeleted
		}
		return Equipment{}, domain.StateError{Entity: EntityEquipment, ID: equipmentID, Code: code}
	}
	if err := tx.applyAccessoryAssignment(equipmentID, dedupeIDs(accessoryIDs)); err != nil {
		return Equipment{}, err
	}
	updated := tx.state.equipment[equipmentID]
	tx.recordChange(Change{Entity: EntityEquipment, Action: ActionUpdate, Before: cloneEquipment(e), After: cloneEquipment(updated)})
	return cloneEquipment(updated), nil
}

// applyAccessoryAssignment performs the symmetric diff between the current and
// desired lists. Validation runs before any mutation so a rejected assignment
// leaves the state untouched.
func (tx *transaction) applyAccessoryAssignment(equipmentID string, desired []string) error {
	e := tx.state.equipment[equipmentID]
	current := make(map[string]struct{}, len(e.AccessoryIDs))
	for _, aid := range e.AccessoryIDs {
		current[aid] = struct{}{}
	}
	var added []string
	for _, aid := range desired {
		if _, ok := current[aid]; !ok {
			added = append(added, aid)
		}
	}
	for _, aid := range added {
		a, ok := tx.state.accessories[aid]
		if !ok {
			return domain.NotFoundError{Entity: EntityAccessory, ID: aid}
		}
		if a.Deleted {
			return domain.StateError{Entity: EntityAccessory, ID: aid, Code: domain.CodeAlreadyDeleted}
		}
		if !a.Available {
			if holder, held := tx.accessoryHolder(aid); held {
				return domain.LinkConflictError{AccessoryID: aid, HeldByID: holder}
			}
			return domain.LinkConflictError{AccessoryID: aid}
		}
	}

	desiredSet := make(map[string]struct{}, len(desired))
	for _, aid := range desired {
		desiredSet[aid] = struct{}{}
	}
	for _, aid := range e.AccessoryIDs {
		if _, keep := desiredSet[aid]; keep {
			continue
		}
		a, ok := tx.state.accessories[aid]
		if !ok || a.Deleted {
			continue
		}
		aBefore := cloneAccessory(a)
		a.Available = true
		tx.state.accessories[aid] = cloneAccessory(a)
		tx.recordChange(Change{Entity: EntityAccessory, Action: ActionUpdate, Before: aBefore, After: cloneAccessory(a)})
	}
	for _, aid := range added {
		a := tx.state.accessories[aid]
		aBefore := cloneAccessory(a)
		a.Available = false
		tx.state.accessories[aid] = cloneAccessory(a)
		tx.recordChange(Change{Entity: EntityAccessory, Action: ActionUpdate, Before: aBefore, After: cloneAccessory(a)})
	}
	if len(desired) == 0 {
		e.AccessoryIDs = nil
	} else {
		e.AccessoryIDs = append([]string(nil), desired...)
	}
	tx.state.equipment[equipmentID] = cloneEquipment(e)
	return nil
}

// accessoryHolder finds the non-deleted equipment currently listing the
// accessory, if any.
func (tx *transaction) accessoryHolder(accessoryID string) (string, bool) {
	for id, e := range tx.state.equipment {
		if e.Deleted {
			continue
		}
		for _, aid := range e.AccessoryIDs {
			if aid == accessoryID {
				return id, true
			}
		}
	}
	return "", false
}

// LinkCartridge ties a cartridge to a printer by the printer's room label and
// flips the status to in use. The key is matched against printers in the
// active pool. Room labels are not unique among printers; the first match
// suffices and the ambiguity is accepted as is.
func (tx *transaction) LinkCartridge(id, printerKey string) (Cartridge, error) {
	c, ok := tx.state.cartridges[id]
	if !ok {
		return Cartridge{}, domain.NotFoundError{Entity: EntityCartridge, ID: id}
	}
	if !c.InActivePool() {
		code := domain.CodeAlreadyArchived
		if c.Deleted {
			code = domain.CodeAlreadyDeleted
		}
		return Cartridge{}, domain.StateError{Entity: EntityCartridge, ID: id, Code: code}
	}
	if strings.TrimSpace(printerKey) == "" {
		return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: id, Field: "linked_printer_key", Code: domain.CodeBlankField}
	}
	if !tx.printerKeyExists(printerKey) {
		return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: id, Field: "linked_printer_key", Code: domain.CodeUnknownPrinterKey}
	}
	before := cloneCartridge(c)
	key := printerKey
	c.PrinterKey = &key
	c.Status = CartridgeInUse
	tx.state.cartridges[id] = cloneCartridge(c)
	tx.recordChange(Change{Entity: EntityCartridge, Action: ActionUpdate, Before: before, After: cloneCartridge(c)})
	return cloneCartridge(c), nil
}

// UnlinkCartridge severs the printer link and returns the cartridge to the
// available status.
func (tx *transaction) UnlinkCartridge(id string) (Cartridge, error) {
	c, ok := tx.state.cartridges[id]
	if !ok {
		return Cartridge{}, domain.NotFoundError{Entity: EntityCartridge, ID: id}
	}
	if c.Deleted {
		return Cartridge{}, domain.StateError{Entity: EntityCartridge, ID: id, Code: domain.CodeAlreadyDeleted}
	}
	before := cloneCartridge(c)
	c.PrinterKey = nil
	if !c.Archived {
		c.Status = CartridgeAvailable
	}
	tx.state.cartridges[id] = cloneCartridge(c)
	tx.recordChange(Change{Entity: EntityCartridge, Action: ActionUpdate, Before: before, After: cloneCartridge(c)})
	return cloneCartridge(c), nil
}

// printerKeyExists reports whether some active-pool printer carries the room
// label.
func (tx *transaction) printerKeyExists(key string) bool {
	for _, e := range tx.state.equipment {
		if e.Type == TypePrinter && e.InActivePool() && e.Room == key {
			return true
		}
	}
	return false
}
