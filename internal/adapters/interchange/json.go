package interchange

import (
	"bytes"
	"encoding/json"

	"inventorycore/internal/core"
	"inventorycore/pkg/domain"
)

// Document is the combined JSON interchange form of the inventory.
type Document struct {
	Equipment   []domain.Equipment `json:"equipment"`
	Accessories []domain.Accessory `json:"accessories"`
	Cartridges  []domain.Cartridge `json:"cartridges"`
}

// EncodeJSON renders the snapshot as the combined JSON document.
func EncodeJSON(snapshot core.Snapshot) ([]byte, error) {
	doc := Document{
		Equipment:   snapshot.Equipment,
		Accessories: snapshot.Accessories,
		Cartridges:  snapshot.Cartridges,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeJSON parses the combined JSON document, or a bare array of entity
// objects sorted into the snapshot by shape. Records missing a primary key
// fail the whole decode, matching the CSV path.
func DecodeJSON(data []byte) (core.Snapshot, error) {
	var snapshot core.Snapshot
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		decoded, err := decodeJSONArray(trimmed)
		if err != nil {
			return core.Snapshot{}, err
		}
		snapshot = decoded
	} else {
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return core.Snapshot{}, domain.ImportError{Reason: err.Error()}
		}
		snapshot = core.Snapshot{
			Equipment:   doc.Equipment,
			Accessories: doc.Accessories,
			Cartridges:  doc.Cartridges,
		}
	}
	for _, e := range snapshot.Equipment {
		if e.RegistrationID == "" {
			return core.Snapshot{}, domain.ImportError{Section: "equipment", Reason: "blank registrationId"}
		}
	}
	for _, a := range snapshot.Accessories {
		if a.ID == "" {
			return core.Snapshot{}, domain.ImportError{Section: "accessories", Reason: "blank id"}
		}
	}
	for _, c := range snapshot.Cartridges {
		if c.ID == "" {
			return core.Snapshot{}, domain.ImportError{Section: "cartridges", Reason: "blank id"}
		}
	}
	return snapshot, nil
}

// decodeJSONArray classifies each object by its discriminating field:
// registration_id marks equipment, color marks a cartridge, category an
// accessory.
func decodeJSONArray(data []byte) (core.Snapshot, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return core.Snapshot{}, domain.ImportError{Reason: err.Error()}
	}
	var snapshot core.Snapshot
	for _, item := range items {
		var kind struct {
			RegistrationID string `json:"registration_id"`
			Color          string `json:"color"`
			Category       string `json:"category"`
		}
		if err := json.Unmarshal(item, &kind); err != nil {
			return core.Snapshot{}, domain.ImportError{Reason: err.Error()}
		}
		switch {
		case kind.RegistrationID != "":
			var e domain.Equipment
			if err := json.Unmarshal(item, &e); err != nil {
				return core.Snapshot{}, domain.ImportError{Section: "equipment", Reason: err.Error()}
			}
			snapshot.Equipment = append(snapshot.Equipment, e)
		case kind.Color != "":
			var c domain.Cartridge
			if err := json.Unmarshal(item, &c); err != nil {
				return core.Snapshot{}, domain.ImportError{Section: "cartridges", Reason: err.Error()}
			}
			snapshot.Cartridges = append(snapshot.Cartridges, c)
		case kind.Category != "":
			var a domain.Accessory
			if err := json.Unmarshal(item, &a); err != nil {
				return core.Snapshot{}, domain.ImportError{Section: "accessories", Reason: err.Error()}
			}
			snapshot.Accessories = append(snapshot.Accessories, a)
		default:
			return core.Snapshot{}, domain.ImportError{Reason: "array record has no recognizable entity fields"}
		}
	}
	return snapshot, nil
}
