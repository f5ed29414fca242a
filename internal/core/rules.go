package core

import "inventorycore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in invariant set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewScopedUniquenessRule())
	engine.Register(NewAccessoryAvailabilityRule())
	engine.Register(NewCartridgeLinkageRule())
	return engine
}
