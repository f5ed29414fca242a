package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Every operation either fully applies
// or fully fails; callers never observe partial state.
type Transaction interface {
	Snapshot() TransactionView

	CreateEquipment(Equipment) (Equipment, error)
	UpdateEquipment(id string, mutator func(*Equipment) error) (Equipment, error)
	ArchiveEquipment(id, reason string) (Equipment, error)
	UnarchiveEquipment(id string) (Equipment, error)
	SendToMaintenance(id, reason string) (Equipment, error)
	CompleteMaintenance(id string) (Equipment, error)
	AssignAccessories(equipmentID string, accessoryIDs []string) (Equipment, error)

	CreateAccessory(Accessory) (Accessory, error)
	UpdateAccessory(id string, mutator func(*Accessory) error) (Accessory, error)

	CreateCartridge(Cartridge) (Cartridge, error)
	UpdateCartridge(id string, mutator func(*Cartridge) error) (Cartridge, error)
	LinkCartridge(id, printerKey string) (Cartridge, error)
	UnlinkCartridge(id string) (Cartridge, error)
	ArchiveCartridge(id string) (Cartridge, error)
	UnarchiveCartridge(id string) (Cartridge, error)

	SoftDelete(kind EntityType, id string) error
	Restore(kind EntityType, id string) error
	PermanentlyDelete(kind EntityType, id string) error

	UpsertEquipment(Equipment) (Equipment, error)
	UpsertAccessory(Accessory) (Accessory, error)
	UpsertCartridge(Cartridge) (Cartridge, error)

	FindEquipment(id string) (Equipment, bool)
	FindAccessory(id string) (Accessory, bool)
	FindCartridge(id string) (Cartridge, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers. The dirty
// flag tracks unsaved mutations: it is set on every committed transaction and
// cleared only once persistence acknowledges success.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetEquipment(id string) (Equipment, bool)
	GetAccessory(id string) (Accessory, bool)
	GetCartridge(id string) (Cartridge, bool)
	ListEquipment() []Equipment
	ListAccessories() []Accessory
	ListCartridges() []Cartridge
	Dirty() bool
	MarkClean()
}
