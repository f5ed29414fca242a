package interchange

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"inventorycore/internal/blob"
	"inventorycore/internal/core"
	"inventorycore/pkg/domain"
)

func TestExporterWritesTimestampedBlob(t *testing.T) {
	store := core.NewMemoryStore(nil)
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateEquipment(domain.Equipment{Type: domain.TypeNotebook, SerialNumber: "SN-1", Status: domain.StatusAvailable}); err != nil {
			return err
		}
		_, err := tx.CreateCartridge(domain.Cartridge{SerialNumber: "CART-1", Color: domain.ColorBlack})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !store.Dirty() {
		t.Fatal("seeded store must be dirty")
	}

	blobs := blob.NewMemory()
	exporter := NewExporter(store, blobs)
	exporter.SetNowFunc(func() time.Time {
		return time.Date(2025, 6, 5, 4, 3, 2, 0, time.UTC)
	})

	info, err := exporter.Export(ctx, FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.Key != "exports/inventory-20250605T040302Z.csv" {
		t.Fatalf("unexpected export key %q", info.Key)
	}
	if info.Metadata["equipment"] != "1" || info.Metadata["cartridges"] != "1" {
		t.Fatalf("unexpected metadata: %+v", info.Metadata)
	}
	if store.Dirty() {
		t.Fatal("successful export must clear the dirty flag")
	}

	_, rc, err := blobs.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get blob: %v", err)
	}
	payload, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !strings.HasPrefix(string(payload), "\xef\xbb\xbf") || !strings.Contains(string(payload), "SN-1") {
		t.Fatalf("stored payload corrupted: %q", string(payload[:40]))
	}

	if _, err := exporter.Export(ctx, FormatJSON); err != nil {
		t.Fatalf("json export: %v", err)
	}
	exports, err := exporter.ListExports(ctx)
	if err != nil {
		t.Fatalf("list exports: %v", err)
	}
	if len(exports) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(exports))
	}
}

type failingBlobStore struct {
	blob.Store
}

func (failingBlobStore) Put(context.Context, string, io.Reader, blob.PutOptions) (blob.Info, error) {
	return blob.Info{}, io.ErrClosedPipe
}

func TestExporterKeepsDirtyOnFailure(t *testing.T) {
	store := core.NewMemoryStore(nil)
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateEquipment(domain.Equipment{Type: domain.TypeNotebook, SerialNumber: "SN-1", Status: domain.StatusAvailable})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	exporter := NewExporter(store, failingBlobStore{Store: blob.NewMemory()})
	if _, err := exporter.Export(ctx, FormatCSV); err == nil {
		t.Fatal("expected export failure")
	}
	if !store.Dirty() {
		t.Fatal("failed export must leave the dirty flag set")
	}
}
