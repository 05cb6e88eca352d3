package fol

import (
	"context"
	"testing"
)

// TestManagerAutoSelectsHornForHornInput and its SAT counterpart check
// the refutation-equivalence invariant from spec §8.4: auto mode's
// engine choice never changes the yes/no answer, only which engine
// produces it.
func TestManagerAutoSelectsHornForHornInput(t *testing.T) {
	m := NewEngineManager(nil)
	premises := []*Node{
		mustParse(t, "all x (Man(x) -> Mortal(x))"),
		mustParse(t, "Man(socrates)"),
	}
	goal := mustParse(t, "Mortal(socrates)")

	result := m.Prove(context.Background(), premises, goal, ModeAuto, DefaultProveOptions())
	if !result.Success {
		t.Fatalf("expected auto mode to prove the syllogism, got %+v", result)
	}
	if result.EngineUsed != "horn" {
		t.Errorf("expected auto mode to pick horn for Horn-clausifiable premises and a quantifier-free goal, got %q", result.EngineUsed)
	}
}

func TestManagerAutoSelectsSatForNonHornInput(t *testing.T) {
	m := NewEngineManager(nil)
	premises := []*Node{mustParse(t, "P(a) | Q(a)")}
	goal := mustParse(t, "P(a) | Q(a)")

	result := m.Prove(context.Background(), premises, goal, ModeAuto, DefaultProveOptions())
	if !result.Success {
		t.Fatalf("expected auto mode to prove a tautological restatement of the premise, got %+v", result)
	}
	if result.EngineUsed != "sat" {
		t.Errorf("expected auto mode to pick sat for non-Horn premises, got %q", result.EngineUsed)
	}
}

// TestManagerHornAndSatAgree checks refutation equivalence directly:
// forcing each engine explicitly on the same Horn-compatible input must
// agree on provability (spec §8.4).
func TestManagerHornAndSatAgree(t *testing.T) {
	cases := []struct {
		premises []string
		goal     string
		want     bool
	}{
		{[]string{"all x (Man(x) -> Mortal(x))", "Man(socrates)"}, "Mortal(socrates)", true},
		{[]string{"all x (Man(x) -> Mortal(x))", "Man(socrates)"}, "Mortal(plato)", false},
	}
	for _, c := range cases {
		m := NewEngineManager(nil)
		var premises []*Node
		for _, p := range c.premises {
			premises = append(premises, mustParse(t, p))
		}
		goal := mustParse(t, c.goal)

		hornResult := m.Prove(context.Background(), premises, goal, ModeHorn, DefaultProveOptions())
		satResult := m.Prove(context.Background(), premises, goal, ModeSat, DefaultProveOptions())

		if hornResult.Success != c.want {
			t.Errorf("horn: goal %q success=%v, want %v", c.goal, hornResult.Success, c.want)
		}
		if satResult.Success != c.want {
			t.Errorf("sat: goal %q success=%v, want %v", c.goal, satResult.Success, c.want)
		}
	}
}

func TestManagerExplicitHornRejectsNonHornAsCapabilityMismatch(t *testing.T) {
	m := NewEngineManager(nil)
	premises := []*Node{mustParse(t, "P(a) | Q(a)")}
	goal := mustParse(t, "P(a)")

	result := m.Prove(context.Background(), premises, goal, ModeHorn, DefaultProveOptions())
	if result.Err == nil || result.Err.Kind != CapabilityMismatch {
		t.Fatalf("expected CAPABILITY_MISMATCH when horn is forced against non-Horn premises, got %+v", result)
	}
}

func TestManagerRaceReturnsOnFirstDecisiveResult(t *testing.T) {
	m := NewEngineManager(nil)
	premises := []*Node{
		mustParse(t, "all x (Man(x) -> Mortal(x))"),
		mustParse(t, "Man(socrates)"),
	}
	goal := mustParse(t, "Mortal(socrates)")

	result := m.Prove(context.Background(), premises, goal, ModeRace, DefaultProveOptions())
	if !result.Success || result.Result != ResultProved {
		t.Fatalf("expected race mode to prove the syllogism via whichever engine finishes first, got %+v", result)
	}
}

func TestManagerCheckSatDispatchesByClauseShape(t *testing.T) {
	m := NewEngineManager(nil)

	hornClauses, err := ClausifyStandard(mustParse(t, "-P(a) | Q(a)"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !hornClauses.IsHorn() {
		t.Fatal("test setup: expected a Horn clause set")
	}
	result := m.CheckSat(context.Background(), hornClauses)
	if !result.Sat {
		t.Errorf("expected -P(a) | Q(a) to be satisfiable, got %+v", result)
	}

	nonHorn, err := ClausifyStandard(mustParse(t, "P(a) | Q(a)"), nil)
	if err != nil {
		t.Fatal(err)
	}
	result = m.CheckSat(context.Background(), nonHorn)
	if !result.Sat {
		t.Errorf("expected P(a) | Q(a) to be satisfiable via the sat-engine path, got %+v", result)
	}
}
