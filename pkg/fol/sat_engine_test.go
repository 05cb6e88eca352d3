package fol

import (
	"context"
	"testing"
)

func TestSatEngineProvesSimpleEntailment(t *testing.T) {
	e := NewSatEngine(nil)
	premises := []*Node{
		mustParse(t, "all x (Man(x) -> Mortal(x))"),
		mustParse(t, "Man(socrates)"),
	}
	goal := mustParse(t, "Mortal(socrates)")

	result := e.Prove(context.Background(), premises, goal, DefaultProveOptions())
	if !result.Success || result.Result != ResultProved {
		t.Fatalf("expected entailment to be proved, got %+v (err=%v)", result, result.Err)
	}
}

func TestSatEngineFindsCounterModelForNonEntailment(t *testing.T) {
	e := NewSatEngine(nil)
	premises := []*Node{mustParse(t, "Man(socrates)")}
	goal := mustParse(t, "Mortal(socrates)")

	result := e.Prove(context.Background(), premises, goal, DefaultProveOptions())
	if result.Success {
		t.Fatalf("did not expect an unrelated goal to be entailed")
	}
	if result.Result != ResultFailed {
		t.Errorf("expected ResultFailed with a counter-model, got %v", result.Result)
	}
}

func TestSatEngineCheckSatDetectsUnsatisfiableClauseSet(t *testing.T) {
	e := NewSatEngine(nil)
	n := mustParse(t, "P(a) & -P(a)")
	cs, err := ClausifyStandard(n, nil)
	if err != nil {
		t.Fatal(err)
	}
	result := e.CheckSat(context.Background(), cs)
	if result.Sat {
		t.Fatalf("expected P(a) & -P(a) to be unsatisfiable")
	}
}

func TestSatEngineCheckSatFindsModelForSatisfiableClauseSet(t *testing.T) {
	e := NewSatEngine(nil)
	n := mustParse(t, "P(a) | Q(a)")
	cs, err := ClausifyStandard(n, nil)
	if err != nil {
		t.Fatal(err)
	}
	result := e.CheckSat(context.Background(), cs)
	if !result.Sat {
		t.Fatalf("expected P(a) | Q(a) to be satisfiable")
	}
}

func TestSatEngineHasNoSession(t *testing.T) {
	e := NewSatEngine(nil)
	if _, ok := e.Session(); ok {
		t.Fatalf("spec §4.4.5: the SAT engine has no scoped push/pop and must not offer a session")
	}
}
