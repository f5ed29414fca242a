package core

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"inventorycore/pkg/domain"
)

// idMaxAttempts bounds the probabilistic retry loop. With expected dataset
// sizes far below the per-kind id space, hitting the bound means the space is
// effectively exhausted and the generator fails loudly.
const idMaxAttempts = 10000

type idSpec struct {
	prefix string
	min    int
	span   int
}

// Per-kind id shapes kept compatible with ids issued by earlier revisions of
// the inventory file format.
var idSpecs = map[EntityType]idSpec{
	EntityEquipment: {prefix: "#E", min: 100000, span: 900000},
	EntityAccessory: {prefix: "#A", min: 100000, span: 900000},
	EntityCartridge: {prefix: "#C", min: 1000, span: 9000},
}

// IDGenerator produces short human-readable identifiers per entity kind,
// retrying while a candidate collides with any existing id of that kind
// (active, archived, or deleted). The random source is injectable so tests
// can make generation deterministic.
type IDGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewIDGenerator returns a generator seeded from the current time.
func NewIDGenerator() *IDGenerator {
	return NewSeededIDGenerator(time.Now().UnixNano())
}

// NewSeededIDGenerator returns a generator with a deterministic seed.
func NewSeededIDGenerator(seed int64) *IDGenerator {
	return &IDGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns a fresh id for kind, calling exists to test candidates
// against the full id space of that kind. It returns IDSpaceExhaustedError
// once the retry bound is hit.
func (g *IDGenerator) Generate(kind EntityType, exists func(string) bool) (string, error) {
	spec, ok := idSpecs[kind]
	if !ok {
		return "", fmt.Errorf("no id spec for entity type %s", kind)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for attempt := 0; attempt < idMaxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%d", spec.prefix, spec.min+g.rng.Intn(spec.span))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", domain.IDSpaceExhaustedError{Entity: kind, Attempts: idMaxAttempts}
}
