package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"inventorycore/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "inventory.db")
	ctx := context.Background()

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	var equipmentID, accessoryID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		a, err := tx.CreateAccessory(domain.Accessory{Category: domain.CategoryKeyboards, Model: "MX Keys"})
		if err != nil {
			return err
		}
		accessoryID = a.ID
		e, err := tx.CreateEquipment(domain.Equipment{
			Type:         domain.TypeNotebook,
			SerialNumber: "SN-1",
			Status:       domain.StatusActive,
			AccessoryIDs: []string{a.ID},
		})
		if err != nil {
			return err
		}
		equipmentID = e.RegistrationID
		_, err = tx.CreateCartridge(domain.Cartridge{SerialNumber: "CART-1", Color: domain.ColorBlack})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if store.Dirty() {
		t.Fatal("snapshot write must clear the dirty flag")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	e, ok := reopened.GetEquipment(equipmentID)
	if !ok {
		t.Fatalf("equipment %s not hydrated", equipmentID)
	}
	if len(e.AccessoryIDs) != 1 || e.AccessoryIDs[0] != accessoryID {
		t.Fatalf("accessory linkage lost: %v", e.AccessoryIDs)
	}
	a, ok := reopened.GetAccessory(accessoryID)
	if !ok || a.Available {
		t.Fatalf("accessory state lost: %+v", a)
	}
	if got := len(reopened.ListCartridges()); got != 1 {
		t.Fatalf("expected 1 cartridge, got %d", got)
	}
	if reopened.Dirty() {
		t.Fatal("hydration must not mark the store dirty")
	}

	// Lifecycle transitions keep persisting through the same snapshot path.
	if _, err := reopened.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.ArchiveEquipment(equipmentID, "retired")
		return err
	}); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := reopened.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	final, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("final reopen: %v", err)
	}
	defer func() { _ = final.Close() }()
	e, _ = final.GetEquipment(equipmentID)
	if !e.Archived || e.Status != domain.StatusArchived {
		t.Fatalf("archive state lost: %+v", e)
	}
}

func TestNewStoreRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.DB().Exec(`INSERT INTO state(bucket,payload) VALUES('equipment','{broken')`); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := NewStore(path, nil); err == nil {
		t.Fatal("corrupt snapshot must fail hydration")
	}
}
