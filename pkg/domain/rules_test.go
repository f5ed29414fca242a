package domain

import (
	"context"
	"errors"
	"testing"
)

type fixedRule struct {
	name string
	res  Result
	err  error
}

func (r fixedRule) Name() string { return r.name }

func (r fixedRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return r.res, r.err
}

func TestRulesEngineAggregatesResults(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(fixedRule{name: "a", res: Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}}})
	engine.Register(fixedRule{name: "b", res: Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected merged violations, got %+v", res)
	}
	if !res.HasBlocking() {
		t.Fatal("blocking violation lost in merge")
	}
}

func TestRulesEngineStopsOnRuleError(t *testing.T) {
	sentinel := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(fixedRule{name: "a", err: sentinel})
	engine.Register(fixedRule{name: "b", res: Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected rule error, got %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("failed evaluation must not carry violations: %+v", res)
	}
}

func TestResultHasBlocking(t *testing.T) {
	var res Result
	if res.HasBlocking() {
		t.Fatal("empty result must not block")
	}
	res.Merge(Result{Violations: []Violation{{Severity: SeverityLog}}})
	if res.HasBlocking() {
		t.Fatal("log severity must not block")
	}
	res.Merge(Result{Violations: []Violation{{Severity: SeverityBlock}}})
	if !res.HasBlocking() {
		t.Fatal("block severity lost")
	}
}
