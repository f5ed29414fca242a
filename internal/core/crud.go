package core

import (
	"strings"

	"inventorycore/pkg/domain"
)

// Validated constructors and update operations. Records are whitelisted and
// type-checked before admission to the store; ad hoc field bags are rejected
// at the type level.

func validEquipmentStatus(status OperationalStatus) bool {
	switch status {
	case StatusAvailable, StatusActive, StatusInactive, StatusInMaintenance:
		return true
	}
	return false
}

// CreateEquipment admits a new equipment record into the active pool. The id
// is generated when empty. The Type field must hold a canonical type or the
// resolved free-text label for "other" hardware; the raw "other" marker is
// rejected so every stored record names what it is.
func (tx *transaction) CreateEquipment(e Equipment) (Equipment, error) {
	if strings.TrimSpace(string(e.Type)) == "" || e.Type == TypeOther {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, ID: e.RegistrationID, Field: "equipment_type", Code: domain.CodeBlankField}
	}
	if strings.TrimSpace(e.SerialNumber) == "" {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, ID: e.RegistrationID, Field: "serial_number", Code: domain.CodeBlankField}
	}
	if !validEquipmentStatus(e.Status) {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, ID: e.RegistrationID, Field: "operational_status", Code: domain.CodeInvalidEnum}
	}
	if err := checkUniqueFields(tx.Snapshot(), EntityEquipment, e.RegistrationID, e.SerialNumber, e.AssetTag); err != nil {
		return Equipment{}, err
	}
	if e.RegistrationID == "" {
		id, err := tx.store.idgen.Generate(EntityEquipment, tx.equipmentIDExists)
		if err != nil {
			return Equipment{}, err
		}
		e.RegistrationID = id
	} else if tx.equipmentIDExists(e.RegistrationID) {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, ID: e.RegistrationID, Field: "registration_id", Code: domain.CodeDuplicateValue, ConflictID: e.RegistrationID}
	}
	e.Archived = false
	e.ArchiveDate = nil
	e.ArchiveReason = ""
	e.Deleted = false
	e.DeletionDate = nil

	requested := dedupeIDs(e.AccessoryIDs)
	e.AccessoryIDs = nil
	tx.state.equipment[e.RegistrationID] = cloneEquipment(e)
	if len(requested) > 0 {
		if err := tx.applyAccessoryAssignment(e.RegistrationID, requested); err != nil {
			delete(tx.state.equipment, e.RegistrationID)
			return Equipment{}, err
		}
		e = tx.state.equipment[e.RegistrationID]
	}
	tx.recordChange(Change{Entity: EntityEquipment, Action: ActionCreate, After: cloneEquipment(e)})
	return cloneEquipment(e), nil
}

// UpdateEquipment mutates scalar fields of an equipment record. Lifecycle
// flags and the accessory list are owned by their dedicated operations; any
// changes the mutator makes to them are discarded.
func (tx *transaction) UpdateEquipment(id string, mutator func(*Equipment) error) (Equipment, error) {
	current, ok := tx.state.equipment[id]
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: EntityEquipment, ID: id}
	}
	before := cloneEquipment(current)
	if err := mutator(&current); err != nil {
		return Equipment{}, err
	}
	current.RegistrationID = id
	current.AccessoryIDs = before.AccessoryIDs
	current.Archived = before.Archived
	current.ArchiveDate = before.ArchiveDate
	current.ArchiveReason = before.ArchiveReason
	current.Deleted = before.Deleted
	current.DeletionDate = before.DeletionDate
	if strings.TrimSpace(string(current.Type)) == "" || current.Type == TypeOther {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, ID: id, Field: "equipment_type", Code: domain.CodeBlankField}
	}
	if strings.TrimSpace(current.SerialNumber) == "" {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, ID: id, Field: "serial_number", Code: domain.CodeBlankField}
	}
	if !current.InActivePool() {
		// Archived and deleted records keep the status their lifecycle
		// transition assigned; edits may not move it.
		current.Status = before.Status
	} else if !validEquipmentStatus(current.Status) {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, ID: id, Field: "operational_status", Code: domain.CodeInvalidEnum}
	}
	if current.InActivePool() {
		if err := checkUniqueFields(tx.Snapshot(), EntityEquipment, id, current.SerialNumber, current.AssetTag); err != nil {
			return Equipment{}, err
		}
	}
	tx.state.equipment[id] = cloneEquipment(current)
	tx.recordChange(Change{Entity: EntityEquipment, Action: ActionUpdate, Before: before, After: cloneEquipment(current)})
	return cloneEquipment(current), nil
}

// CreateAccessory admits a new accessory. Accessories start available; the
// screen size attribute is meaningful only for monitors and is cleared for
// every other category.
func (tx *transaction) CreateAccessory(a Accessory) (Accessory, error) {
	if strings.TrimSpace(string(a.Category)) == "" {
		return Accessory{}, domain.ValidationError{Entity: EntityAccessory, ID: a.ID, Field: "category", Code: domain.CodeBlankField}
	}
	if a.Category != domain.CategoryMonitors {
		a.ScreenSize = ""
	}
	if err := checkUniqueFields(tx.Snapshot(), EntityAccessory, a.ID, a.SerialNumber, a.AssetTag); err != nil {
		return Accessory{}, err
	}
	if a.ID == "" {
		id, err := tx.store.idgen.Generate(EntityAccessory, tx.accessoryIDExists)
		if err != nil {
			return Accessory{}, err
		}
		a.ID = id
	} else if tx.accessoryIDExists(a.ID) {
		return Accessory{}, domain.ValidationError{Entity: EntityAccessory, ID: a.ID, Field: "id", Code: domain.CodeDuplicateValue, ConflictID: a.ID}
	}
	a.Available = true
	a.Deleted = false
	a.DeletionDate = nil
	tx.state.accessories[a.ID] = cloneAccessory(a)
	tx.recordChange(Change{Entity: EntityAccessory, Action: ActionCreate, After: cloneAccessory(a)})
	return cloneAccessory(a), nil
}

// UpdateAccessory mutates an accessory. Availability and deletion flags are
// owned by linkage and lifecycle operations and are preserved.
func (tx *transaction) UpdateAccessory(id string, mutator func(*Accessory) error) (Accessory, error) {
	current, ok := tx.state.accessories[id]
	if !ok {
		return Accessory{}, domain.NotFoundError{Entity: EntityAccessory, ID: id}
	}
	before := cloneAccessory(current)
	if err := mutator(&current); err != nil {
		return Accessory{}, err
	}
	current.ID = id
	current.Available = before.Available
	current.Deleted = before.Deleted
	current.DeletionDate = before.DeletionDate
	if strings.TrimSpace(string(current.Category)) == "" {
		return Accessory{}, domain.ValidationError{Entity: EntityAccessory, ID: id, Field: "category", Code: domain.CodeBlankField}
	}
	if current.Category != domain.CategoryMonitors {
		current.ScreenSize = ""
	}
	if current.InActivePool() {
		if err := checkUniqueFields(tx.Snapshot(), EntityAccessory, id, current.SerialNumber, current.AssetTag); err != nil {
			return Accessory{}, err
		}
	}
	tx.state.accessories[id] = cloneAccessory(current)
	tx.recordChange(Change{Entity: EntityAccessory, Action: ActionUpdate, Before: before, After: cloneAccessory(current)})
	return cloneAccessory(current), nil
}

// CreateCartridge admits a new cartridge. Status is derived from the printer
// link: a non-nil key means in use, otherwise available.
func (tx *transaction) CreateCartridge(c Cartridge) (Cartridge, error) {
	if strings.TrimSpace(c.SerialNumber) == "" {
		return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: c.ID, Field: "serial_number", Code: domain.CodeBlankField}
	}
	if !domain.IsValidCartridgeColor(c.Color) {
		return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: c.ID, Field: "color", Code: domain.CodeInvalidEnum}
	}
	if err := checkUniqueFields(tx.Snapshot(), EntityCartridge, c.ID, c.SerialNumber, c.AssetTag); err != nil {
		return Cartridge{}, err
	}
	if c.PrinterKey != nil {
		if !tx.printerKeyExists(*c.PrinterKey) {
			return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: c.ID, Field: "linked_printer_key", Code: domain.CodeUnknownPrinterKey}
		}
		c.Status = CartridgeInUse
	} else {
		c.Status = CartridgeAvailable
	}
	if c.ID == "" {
		id, err := tx.store.idgen.Generate(EntityCartridge, tx.cartridgeIDExists)
		if err != nil {
			return Cartridge{}, err
		}
		c.ID = id
	} else if tx.cartridgeIDExists(c.ID) {
		return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: c.ID, Field: "id", Code: domain.CodeDuplicateValue, ConflictID: c.ID}
	}
	c.Archived = false
	c.ArchiveDate = nil
	c.Deleted = false
	c.DeletionDate = nil
	tx.state.cartridges[c.ID] = cloneCartridge(c)
	tx.recordChange(Change{Entity: EntityCartridge, Action: ActionCreate, After: cloneCartridge(c)})
	return cloneCartridge(c), nil
}

// UpdateCartridge mutates a cartridge. The status/link pairing is normalized
// after mutation so the in-use invariant keeps holding; lifecycle flags are
// preserved.
func (tx *transaction) UpdateCartridge(id string, mutator func(*Cartridge) error) (Cartridge, error) {
	current, ok := tx.state.cartridges[id]
	if !ok {
		return Cartridge{}, domain.NotFoundError{Entity: EntityCartridge, ID: id}
	}
	before := cloneCartridge(current)
	if err := mutator(&current); err != nil {
		return Cartridge{}, err
	}
	current.ID = id
	current.Archived = before.Archived
	current.ArchiveDate = before.ArchiveDate
	current.Deleted = before.Deleted
	current.DeletionDate = before.DeletionDate
	if strings.TrimSpace(current.SerialNumber) == "" {
		return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: id, Field: "serial_number", Code: domain.CodeBlankField}
	}
	if !domain.IsValidCartridgeColor(current.Color) {
		return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: id, Field: "color", Code: domain.CodeInvalidEnum}
	}
	if current.Archived {
		// Archived cartridges stay replaced and unlinked regardless of the mutator.
		current.Status = CartridgeReplaced
		current.PrinterKey = nil
	} else if current.PrinterKey != nil {
		if !tx.printerKeyExists(*current.PrinterKey) {
			return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, ID: id, Field: "linked_printer_key", Code: domain.CodeUnknownPrinterKey}
		}
		current.Status = CartridgeInUse
	} else if current.Status == CartridgeInUse {
		current.Status = CartridgeAvailable
	}
	if current.InActivePool() {
		if err := checkUniqueFields(tx.Snapshot(), EntityCartridge, id, current.SerialNumber, current.AssetTag); err != nil {
			return Cartridge{}, err
		}
	}
	tx.state.cartridges[id] = cloneCartridge(current)
	tx.recordChange(Change{Entity: EntityCartridge, Action: ActionUpdate, Before: before, After: cloneCartridge(current)})
	return cloneCartridge(current), nil
}

// Upserts -------------------------------------------------------------------
// Import merges decoded records by primary key: last-parsed wins, ids are
// preserved. Invariants are still enforced by the rules engine at commit.

func (tx *transaction) UpsertEquipment(e Equipment) (Equipment, error) {
	if e.RegistrationID == "" {
		return Equipment{}, domain.ValidationError{Entity: EntityEquipment, Field: "registration_id", Code: domain.CodeBlankField}
	}
	action := ActionCreate
	var before any
	if existing, ok := tx.state.equipment[e.RegistrationID]; ok {
		action = ActionUpdate
		before = cloneEquipment(existing)
	}
	e.AccessoryIDs = dedupeIDs(e.AccessoryIDs)
	tx.state.equipment[e.RegistrationID] = cloneEquipment(e)
	tx.recordChange(Change{Entity: EntityEquipment, Action: action, Before: before, After: cloneEquipment(e)})
	return cloneEquipment(e), nil
}

func (tx *transaction) UpsertAccessory(a Accessory) (Accessory, error) {
	if a.ID == "" {
		return Accessory{}, domain.ValidationError{Entity: EntityAccessory, Field: "id", Code: domain.CodeBlankField}
	}
	action := ActionCreate
	var before any
	if existing, ok := tx.state.accessories[a.ID]; ok {
		action = ActionUpdate
		before = cloneAccessory(existing)
	}
	tx.state.accessories[a.ID] = cloneAccessory(a)
	tx.recordChange(Change{Entity: EntityAccessory, Action: action, Before: before, After: cloneAccessory(a)})
	return cloneAccessory(a), nil
}

func (tx *transaction) UpsertCartridge(c Cartridge) (Cartridge, error) {
	if c.ID == "" {
		return Cartridge{}, domain.ValidationError{Entity: EntityCartridge, Field: "id", Code: domain.CodeBlankField}
	}
	action := ActionCreate
	var before any
	if existing, ok := tx.state.cartridges[c.ID]; ok {
		action = ActionUpdate
		before = cloneCartridge(existing)
	}
	tx.state.cartridges[c.ID] = cloneCartridge(c)
	tx.recordChange(Change{Entity: EntityCartridge, Action: action, Before: before, After: cloneCartridge(c)})
	return cloneCartridge(c), nil
}

func dedupeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
