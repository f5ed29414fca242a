package interchange

import (
	"context"

	"inventorycore/internal/core"
	"inventorycore/pkg/domain"
)

// Format identifies an interchange encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Decode parses data in the given format.
func Decode(format Format, data []byte) (core.Snapshot, error) {
	switch format {
	case FormatCSV:
		return DecodeCSV(data)
	case FormatJSON:
		return DecodeJSON(data)
	default:
		return core.Snapshot{}, domain.ImportError{Reason: "unknown format " + string(format)}
	}
}

// Import merges the decoded snapshot into the store by upsert on primary key
// within a single transaction. Invariant rules evaluate against the merged
// state at commit, so a file that would corrupt the inventory is rejected
// whole.
func Import(ctx context.Context, store domain.PersistentStore, format Format, data []byte) (domain.Result, error) {
	snapshot, err := Decode(format, data)
	if err != nil {
		return domain.Result{}, err
	}
	return store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, e := range snapshot.Equipment {
			if _, err := tx.UpsertEquipment(e); err != nil {
				return err
			}
		}
		for _, a := range snapshot.Accessories {
			if _, err := tx.UpsertAccessory(a); err != nil {
				return err
			}
		}
		for _, c := range snapshot.Cartridges {
			if _, err := tx.UpsertCartridge(c); err != nil {
				return err
			}
		}
		return nil
	})
}
