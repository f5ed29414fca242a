package interchange

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"inventorycore/internal/blob"
	"inventorycore/internal/core"
	"inventorycore/pkg/domain"
)

// Exporter writes full-inventory interchange files to blob storage. A
// successful write acknowledges persistence and clears the store's dirty
// flag; on failure the flag stays set so unsaved changes remain visible.
type Exporter struct {
	store domain.PersistentStore
	blobs blob.Store
	nowFn func() time.Time
}

// NewExporter constructs an exporter over the given store and blob backend.
func NewExporter(store domain.PersistentStore, blobs blob.Store) *Exporter {
	return &Exporter{store: store, blobs: blobs, nowFn: time.Now}
}

// SetNowFunc overrides the clock used for export keys in tests.
func (x *Exporter) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		x.nowFn = fn
	}
}

// Export encodes the current store state in the given format and stores it
// under a timestamped key.
func (x *Exporter) Export(ctx context.Context, format Format) (blob.Info, error) {
	snapshot := core.Snapshot{
		Equipment:   x.store.ListEquipment(),
		Accessories: x.store.ListAccessories(),
		Cartridges:  x.store.ListCartridges(),
	}

	var payload []byte
	var contentType string
	switch format {
	case FormatCSV:
		payload = EncodeCSV(snapshot)
		contentType = "text/csv; charset=utf-8"
	case FormatJSON:
		encoded, err := EncodeJSON(snapshot)
		if err != nil {
			return blob.Info{}, domain.PersistenceError{Op: "encode json", Err: err}
		}
		payload = encoded
		contentType = "application/json"
	default:
		return blob.Info{}, fmt.Errorf("unknown export format %s", format)
	}

	key := fmt.Sprintf("exports/inventory-%s.%s", x.nowFn().UTC().Format("20060102T150405Z"), format)
	info, err := x.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"equipment":   strconv.Itoa(len(snapshot.Equipment)),
			"accessories": strconv.Itoa(len(snapshot.Accessories)),
			"cartridges":  strconv.Itoa(len(snapshot.Cartridges)),
		},
	})
	if err != nil {
		return blob.Info{}, domain.PersistenceError{Op: "store export", Err: err}
	}
	x.store.MarkClean()
	return info, nil
}

// ListExports returns the stored export artifacts.
func (x *Exporter) ListExports(ctx context.Context) ([]blob.Info, error) {
	return x.blobs.List(ctx, "exports/")
}
