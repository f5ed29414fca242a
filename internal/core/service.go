package core

import (
	"context"
	"time"

	"inventorycore/pkg/domain"
)

// Service exposes the transactional inventory operations. Every call runs
// inside a single store transaction so invariants hold at each commit
// boundary, and is wrapped with the configured metrics, tracing, and logging.
type Service struct {
	store   domain.PersistentStore
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store using the
// given rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(NewMemoryStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

func (s *Service) run(ctx context.Context, op string, fn func(tx Transaction) error) (Result, error) {
	start := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, op)
	}
	res, err := s.store.RunInTransaction(ctx, fn)
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	}
	if span != nil {
		span.End(err)
	}
	if err != nil {
		s.logger.Warn("operation failed", "operation", op, "error", err)
		return res, err
	}
	for _, v := range res.Violations {
		s.logger.Warn("rule violation", "operation", op, "rule", v.Rule, "severity", v.Severity, "entity", v.Entity, "entity_id", v.EntityID, "message", v.Message)
	}
	s.logger.Debug("operation committed", "operation", op)
	return res, nil
}

// CreateEquipment persists a new equipment record.
func (s *Service) CreateEquipment(ctx context.Context, e Equipment) (Equipment, Result, error) {
	var created Equipment
	res, err := s.run(ctx, "create_equipment", func(tx Transaction) error {
		var err error
		created, err = tx.CreateEquipment(e)
		return err
	})
	return created, res, err
}

// UpdateEquipment mutates an equipment record using the provided mutator.
func (s *Service) UpdateEquipment(ctx context.Context, id string, mutator func(*Equipment) error) (Equipment, Result, error) {
	var updated Equipment
	res, err := s.run(ctx, "update_equipment", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateEquipment(id, mutator)
		return err
	})
	return updated, res, err
}

// ArchiveEquipment retires an equipment record and releases its accessories.
func (s *Service) ArchiveEquipment(ctx context.Context, id, reason string) (Equipment, Result, error) {
	var archived Equipment
	res, err := s.run(ctx, "archive_equipment", func(tx Transaction) error {
		var err error
		archived, err = tx.ArchiveEquipment(id, reason)
		return err
	})
	return archived, res, err
}

// UnarchiveEquipment returns an archived record to the available pool.
func (s *Service) UnarchiveEquipment(ctx context.Context, id string) (Equipment, Result, error) {
	var restored Equipment
	res, err := s.run(ctx, "unarchive_equipment", func(tx Transaction) error {
		var err error
		restored, err = tx.UnarchiveEquipment(id)
		return err
	})
	return restored, res, err
}

// SendToMaintenance moves a notebook or desktop into maintenance.
func (s *Service) SendToMaintenance(ctx context.Context, id, reason string) (Equipment, Result, error) {
	var updated Equipment
	res, err := s.run(ctx, "send_to_maintenance", func(tx Transaction) error {
		var err error
		updated, err = tx.SendToMaintenance(id, reason)
		return err
	})
	return updated, res, err
}

// CompleteMaintenance returns a machine from maintenance.
func (s *Service) CompleteMaintenance(ctx context.Context, id string) (Equipment, Result, error) {
	var updated Equipment
	res, err := s.run(ctx, "complete_maintenance", func(tx Transaction) error {
		var err error
		updated, err = tx.CompleteMaintenance(id)
		return err
	})
	return updated, res, err
}

// AssignAccessories replaces an equipment record's accessory list.
func (s *Service) AssignAccessories(ctx context.Context, equipmentID string, accessoryIDs []string) (Equipment, Result, error) {
	var updated Equipment
	res, err := s.run(ctx, "assign_accessories", func(tx Transaction) error {
		var err error
		updated, err = tx.AssignAccessories(equipmentID, accessoryIDs)
		return err
	})
	return updated, res, err
}

// CreateAccessory persists a new accessory.
func (s *Service) CreateAccessory(ctx context.Context, a Accessory) (Accessory, Result, error) {
	var created Accessory
	res, err := s.run(ctx, "create_accessory", func(tx Transaction) error {
		var err error
		created, err = tx.CreateAccessory(a)
		return err
	})
	return created, res, err
}

// UpdateAccessory mutates an accessory using the provided mutator.
func (s *Service) UpdateAccessory(ctx context.Context, id string, mutator func(*Accessory) error) (Accessory, Result, error) {
	var updated Accessory
	res, err := s.run(ctx, "update_accessory", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateAccessory(id, mutator)
		return err
	})
	return updated, res, err
}

// CreateCartridge persists a new cartridge.
func (s *Service) CreateCartridge(ctx context.Context, c Cartridge) (Cartridge, Result, error) {
	var created Cartridge
	res, err := s.run(ctx, "create_cartridge", func(tx Transaction) error {
		var err error
		created, err = tx.CreateCartridge(c)
		return err
	})
	return created, res, err
}

// UpdateCartridge mutates a cartridge using the provided mutator.
func (s *Service) UpdateCartridge(ctx context.Context, id string, mutator func(*Cartridge) error) (Cartridge, Result, error) {
	var updated Cartridge
	res, err := s.run(ctx, "update_cartridge", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateCartridge(id, mutator)
		return err
	})
	return updated, res, err
}

// LinkCartridge ties a cartridge to a printer room.
func (s *Service) LinkCartridge(ctx context.Context, id, printerKey string) (Cartridge, Result, error) {
	var linked Cartridge
	res, err := s.run(ctx, "link_cartridge", func(tx Transaction) error {
		var err error
		linked, err = tx.LinkCartridge(id, printerKey)
		return err
	})
	return linked, res, err
}

// UnlinkCartridge severs a cartridge's printer link.
func (s *Service) UnlinkCartridge(ctx context.Context, id string) (Cartridge, Result, error) {
	var unlinked Cartridge
	res, err := s.run(ctx, "unlink_cartridge", func(tx Transaction) error {
		var err error
		unlinked, err = tx.UnlinkCartridge(id)
		return err
	})
	return unlinked, res, err
}

// ArchiveCartridge marks a cartridge replaced.
func (s *Service) ArchiveCartridge(ctx context.Context, id string) (Cartridge, Result, error) {
	var archived Cartridge
	res, err := s.run(ctx, "archive_cartridge", func(tx Transaction) error {
		var err error
		archived, err = tx.ArchiveCartridge(id)
		return err
	})
	return archived, res, err
}

// UnarchiveCartridge returns a cartridge to the available pool.
func (s *Service) UnarchiveCartridge(ctx context.Context, id string) (Cartridge, Result, error) {
	var restored Cartridge
	res, err := s.run(ctx, "unarchive_cartridge", func(tx Transaction) error {
		var err error
		restored, err = tx.UnarchiveCartridge(id)
		return err
	})
	return restored, res, err
}

// SoftDelete moves a record to the trash.
func (s *Service) SoftDelete(ctx context.Context, kind EntityType, id string) (Result, error) {
	return s.run(ctx, "soft_delete", func(tx Transaction) error {
		return tx.SoftDelete(kind, id)
	})
}

// Restore brings a record back from the trash.
func (s *Service) Restore(ctx context.Context, kind EntityType, id string) (Result, error) {
	return s.run(ctx, "restore", func(tx Transaction) error {
		return tx.Restore(kind, id)
	})
}

// PermanentlyDelete removes a record outright with cascading link cleanup.
func (s *Service) PermanentlyDelete(ctx context.Context, kind EntityType, id string) (Result, error) {
	return s.run(ctx, "permanently_delete", func(tx Transaction) error {
		return tx.PermanentlyDelete(kind, id)
	})
}

// BulkSoftDelete moves a batch of records of one kind to the trash in a single
// transaction; any failure rolls the whole batch back.
func (s *Service) BulkSoftDelete(ctx context.Context, kind EntityType, ids []string) (Result, error) {
	return s.run(ctx, "bulk_soft_delete", func(tx Transaction) error {
		for _, id := range ids {
			if err := tx.SoftDelete(kind, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetEquipment fetches an equipment record by id.
func (s *Service) GetEquipment(ctx context.Context, id string) (Equipment, error) {
	e, ok := s.store.GetEquipment(id)
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: EntityEquipment, ID: id}
	}
	return e, nil
}

// GetAccessory fetches an accessory by id.
func (s *Service) GetAccessory(ctx context.Context, id string) (Accessory, error) {
	a, ok := s.store.GetAccessory(id)
	if !ok {
		return Accessory{}, domain.NotFoundError{Entity: EntityAccessory, ID: id}
	}
	return a, nil
}

// GetCartridge fetches a cartridge by id.
func (s *Service) GetCartridge(ctx context.Context, id string) (Cartridge, error) {
	c, ok := s.store.GetCartridge(id)
	if !ok {
		return Cartridge{}, domain.NotFoundError{Entity: EntityCartridge, ID: id}
	}
	return c, nil
}

// ListEquipment returns the equipment records in the active pool.
func (s *Service) ListEquipment(ctx context.Context) []Equipment {
	return filterEquipment(s.store.ListEquipment(), func(e Equipment) bool { return e.InActivePool() })
}

// ListArchivedEquipment returns archived, non-deleted equipment.
func (s *Service) ListArchivedEquipment(ctx context.Context) []Equipment {
	return filterEquipment(s.store.ListEquipment(), func(e Equipment) bool { return e.Archived && !e.Deleted })
}

// ListDeletedEquipment returns equipment sitting in the trash.
func (s *Service) ListDeletedEquipment(ctx context.Context) []Equipment {
	return filterEquipment(s.store.ListEquipment(), func(e Equipment) bool { return e.Deleted })
}

// ListPrinters returns the active-pool printers.
func (s *Service) ListPrinters(ctx context.Context) []Equipment {
	return filterEquipment(s.store.ListEquipment(), func(e Equipment) bool {
		return e.Type == TypePrinter && e.InActivePool()
	})
}

// ListAccessories returns the accessories in the active pool.
func (s *Service) ListAccessories(ctx context.Context) []Accessory {
	return filterAccessories(s.store.ListAccessories(), func(a Accessory) bool { return a.InActivePool() })
}

// ListAvailableAccessories returns active-pool accessories not held by any
// equipment.
func (s *Service) ListAvailableAccessories(ctx context.Context) []Accessory {
	return filterAccessories(s.store.ListAccessories(), func(a Accessory) bool { return a.InActivePool() && a.Available })
}

// ListDeletedAccessories returns accessories sitting in the trash.
func (s *Service) ListDeletedAccessories(ctx context.Context) []Accessory {
	return filterAccessories(s.store.ListAccessories(), func(a Accessory) bool { return a.Deleted })
}

// ListCartridges returns the cartridges in the active pool.
func (s *Service) ListCartridges(ctx context.Context) []Cartridge {
	return filterCartridges(s.store.ListCartridges(), func(c Cartridge) bool { return c.InActivePool() })
}

// ListArchivedCartridges returns replaced, non-deleted cartridges.
func (s *Service) ListArchivedCartridges(ctx context.Context) []Cartridge {
	return filterCartridges(s.store.ListCartridges(), func(c Cartridge) bool { return c.Archived && !c.Deleted })
}

// ListDeletedCartridges returns cartridges sitting in the trash.
func (s *Service) ListDeletedCartridges(ctx context.Context) []Cartridge {
	return filterCartridges(s.store.ListCartridges(), func(c Cartridge) bool { return c.Deleted })
}

// CountEquipmentByStatus tallies active-pool equipment per operational status.
func (s *Service) CountEquipmentByStatus(ctx context.Context) map[OperationalStatus]int {
	counts := make(map[OperationalStatus]int)
	for _, e := range s.store.ListEquipment() {
		if e.InActivePool() {
			counts[e.Status]++
		}
	}
	return counts
}

// CountAvailableCartridgesByColor tallies unlinked active-pool cartridges per
// color, the figure the supply reorder report runs on.
func (s *Service) CountAvailableCartridgesByColor(ctx context.Context) map[CartridgeColor]int {
	counts := make(map[CartridgeColor]int)
	for _, c := range s.store.ListCartridges() {
		if c.InActivePool() && c.Status == CartridgeAvailable {
			counts[c.Color]++
		}
	}
	return counts
}

func filterEquipment(in []Equipment, keep func(Equipment) bool) []Equipment {
	out := make([]Equipment, 0, len(in))
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func filterAccessories(in []Accessory, keep func(Accessory) bool) []Accessory {
	out := make([]Accessory, 0, len(in))
	for _, a := range in {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func filterCartridges(in []Cartridge, keep func(Cartridge) bool) []Cartridge {
	out := make([]Cartridge, 0, len(in))
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
