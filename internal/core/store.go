package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"inventorycore/pkg/domain"
)

type memoryState struct {
	equipment   map[string]Equipment
	accessories map[string]Accessory
	cartridges  map[string]Cartridge
}

func newMemoryState() memoryState {
	return memoryState{
		equipment:   make(map[string]Equipment),
		accessories: make(map[string]Accessory),
		cartridges:  make(map[string]Cartridge),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.equipment {
		cloned.equipment[k] = cloneEquipment(v)
	}
	for k, v := range s.accessories {
		cloned.accessories[k] = cloneAccessory(v)
	}
	for k, v := range s.cartridges {
		cloned.cartridges[k] = cloneCartridge(v)
	}
	return cloned
}

func cloneEquipment(e Equipment) Equipment {
	cp := e
	cp.AccessoryIDs = append([]string(nil), e.AccessoryIDs...)
	cp.ArchiveDate = cloneTime(e.ArchiveDate)
	cp.DeletionDate = cloneTime(e.DeletionDate)
	cp.MaintenanceEntryDate = cloneTime(e.MaintenanceEntryDate)
	return cp
}

func cloneAccessory(a Accessory) Accessory {
	cp := a
	cp.DeletionDate = cloneTime(a.DeletionDate)
	return cp
}

func cloneCartridge(c Cartridge) Cartridge {
	cp := c
	cp.ArchiveDate = cloneTime(c.ArchiveDate)
	cp.DeletionDate = cloneTime(c.DeletionDate)
	if c.PrinterKey != nil {
		key := *c.PrinterKey
		cp.PrinterKey = &key
	}
	return cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Snapshot captures the full store state for persistence and interchange.
type Snapshot struct {
	Equipment   []Equipment `json:"equipment"`
	Accessories []Accessory `json:"accessories"`
	Cartridges  []Cartridge `json:"cartridges"`
}

// Observer receives the change set of every committed transaction.
type Observer func(changes []Change)

// MemoryStore provides an in-memory transactional store for the core domain.
// Mutations run against a cloned state and commit atomically; observers never
// see a half-applied transition.
type MemoryStore struct {
	mu        sync.RWMutex
	state     memoryState
	engine    *RulesEngine
	idgen     *IDGenerator
	nowFn     func() time.Time
	dirty     bool
	observers []Observer
}

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*MemoryStore)(nil)

// NewMemoryStore constructs an in-memory store backed by the provided rules
// engine. A nil engine gets the default invariant rules registered.
func NewMemoryStore(engine *RulesEngine) *MemoryStore {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return &MemoryStore{
		state:  newMemoryState(),
		engine: engine,
		idgen:  NewIDGenerator(),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the transaction clock; used by tests.
func (s *MemoryStore) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// SetIDGenerator swaps the id generator; used by tests for determinism.
func (s *MemoryStore) SetIDGenerator(g *IDGenerator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idgen = g
}

// RulesEngine exposes the engine evaluating invariants at commit.
func (s *MemoryStore) RulesEngine() *RulesEngine { return s.engine }

// Subscribe registers an observer notified after every committed transaction.
func (s *MemoryStore) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// Dirty reports whether committed mutations await persistence acknowledgement.
func (s *MemoryStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// MarkClean clears the dirty flag once persistence acknowledges success.
func (s *MemoryStore) MarkClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// transaction implements domain.Transaction over a cloned state.
type transaction struct {
	store   *MemoryStore
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Rules evaluate against the mutated snapshot; blocking violations abort the
// commit. On success the dirty flag is set and observers are notified.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return Result{}, err
	}

	var result Result
	if s.engine != nil && len(tx.changes) > 0 {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			s.mu.Unlock()
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			s.mu.Unlock()
			return res, RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	if len(tx.changes) > 0 {
		s.dirty = true
	}
	observers := append([]Observer(nil), s.observers...)
	changes := append([]Change(nil), tx.changes...)
	s.mu.Unlock()

	for _, obs := range observers {
		obs(changes)
	}
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *MemoryStore) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTransactionView(&snapshot))
}

// ExportState returns a deterministic snapshot of the committed state.
func (s *MemoryStore) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces the committed state wholesale without touching the
// dirty flag; persistence drivers use it to hydrate from durable snapshots.
func (s *MemoryStore) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for _, e := range snapshot.Equipment {
		state.equipment[e.RegistrationID] = cloneEquipment(e)
	}
	for _, a := range snapshot.Accessories {
		state.accessories[a.ID] = cloneAccessory(a)
	}
	for _, c := range snapshot.Cartridges {
		state.cartridges[c.ID] = cloneCartridge(c)
	}
	s.state = state
}

func snapshotFromState(state memoryState) Snapshot {
	snapshot := Snapshot{}
	for _, e := range state.equipment {
		snapshot.Equipment = append(snapshot.Equipment, cloneEquipment(e))
	}
	for _, a := range state.accessories {
		snapshot.Accessories = append(snapshot.Accessories, cloneAccessory(a))
	}
	for _, c := range state.cartridges {
		snapshot.Cartridges = append(snapshot.Cartridges, cloneCartridge(c))
	}
	sort.Slice(snapshot.Equipment, func(i, j int) bool {
		return snapshot.Equipment[i].RegistrationID < snapshot.Equipment[j].RegistrationID
	})
	sort.Slice(snapshot.Accessories, func(i, j int) bool {
		return snapshot.Accessories[i].ID < snapshot.Accessories[j].ID
	})
	sort.Slice(snapshot.Cartridges, func(i, j int) bool {
		return snapshot.Cartridges[i].ID < snapshot.Cartridges[j].ID
	})
	return snapshot
}

// Transaction view ----------------------------------------------------------

func (v transactionView) ListEquipment() []Equipment {
	out := make([]Equipment, 0, len(v.state.equipment))
	for _, e := range v.state.equipment {
		out = append(out, cloneEquipment(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrationID < out[j].RegistrationID })
	return out
}

func (v transactionView) ListAccessories() []Accessory {
	out := make([]Accessory, 0, len(v.state.accessories))
	for _, a := range v.state.accessories {
		out = append(out, cloneAccessory(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v transactionView) ListCartridges() []Cartridge {
	out := make([]Cartridge, 0, len(v.state.cartridges))
	for _, c := range v.state.cartridges {
		out = append(out, cloneCartridge(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v transactionView) FindEquipment(id string) (Equipment, bool) {
	e, ok := v.state.equipment[id]
	if !ok {
		return Equipment{}, false
	}
	return cloneEquipment(e), true
}

func (v transactionView) FindAccessory(id string) (Accessory, bool) {
	a, ok := v.state.accessories[id]
	if !ok {
		return Accessory{}, false
	}
	return cloneAccessory(a), true
}

func (v transactionView) FindCartridge(id string) (Cartridge, bool) {
	c, ok := v.state.cartridges[id]
	if !ok {
		return Cartridge{}, false
	}
	return cloneCartridge(c), true
}

// Read helpers ---------------------------------------------------------------

// GetEquipment retrieves an equipment record by id from committed state.
func (s *MemoryStore) GetEquipment(id string) (Equipment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.equipment[id]
	if !ok {
		return Equipment{}, false
	}
	return cloneEquipment(e), true
}

// GetAccessory retrieves an accessory by id from committed state.
func (s *MemoryStore) GetAccessory(id string) (Accessory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.accessories[id]
	if !ok {
		return Accessory{}, false
	}
	return cloneAccessory(a), true
}

// GetCartridge retrieves a cartridge by id from committed state.
func (s *MemoryStore) GetCartridge(id string) (Cartridge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.cartridges[id]
	if !ok {
		return Cartridge{}, false
	}
	return cloneCartridge(c), true
}

// ListEquipment returns all equipment records from committed state.
func (s *MemoryStore) ListEquipment() []Equipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListEquipment()
}

// ListAccessories returns all accessories from committed state.
func (s *MemoryStore) ListAccessories() []Accessory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListAccessories()
}

// ListCartridges returns all cartridges from committed state.
func (s *MemoryStore) ListCartridges() []Cartridge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListCartridges()
}

// Transaction basics ---------------------------------------------------------

func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *transaction) FindEquipment(id string) (Equipment, bool) {
	return newTransactionView(&tx.state).FindEquipment(id)
}

func (tx *transaction) FindAccessory(id string) (Accessory, bool) {
	return newTransactionView(&tx.state).FindAccessory(id)
}

func (tx *transaction) FindCartridge(id string) (Cartridge, bool) {
	return newTransactionView(&tx.state).FindCartridge(id)
}

func (tx *transaction) equipmentIDExists(id string) bool {
	_, ok := tx.state.equipment[id]
	return ok
}

func (tx *transaction) accessoryIDExists(id string) bool {
	_, ok := tx.state.accessories[id]
	return ok
}

func (tx *transaction) cartridgeIDExists(id string) bool {
	_, ok := tx.state.cartridges[id]
	return ok
}
