package fol

import "testing"

func TestNodeEqual(t *testing.T) {
	a := Forall(Var("x"), Implies(Pred("P", Var("x")), Pred("Q", Var("x"))))
	b := Forall(Var("x"), Implies(Pred("P", Var("x")), Pred("Q", Var("x"))))
	c := Forall(Var("y"), Implies(Pred("P", Var("y")), Pred("Q", Var("y"))))

	if !a.Equal(b) {
		t.Fatalf("expected structurally identical trees to be Equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected Equal to be sensitive to variable names, not just shape")
	}
}

func TestNodeClone(t *testing.T) {
	orig := And(Pred("P", Const("a")), Not(Pred("Q", Var("x"))))
	clone := orig.Clone()

	if !orig.Equal(clone) {
		t.Fatalf("clone should be structurally Equal to the original")
	}
	clone.Left.Name = "R"
	if orig.Left.Name == "R" {
		t.Fatalf("mutating the clone should not affect the original")
	}
}

func TestIsAtomIsTerm(t *testing.T) {
	if !Pred("P", Const("a")).IsAtom() {
		t.Errorf("predicate node should be an atom")
	}
	if !Eq(Const("a"), Const("b")).IsAtom() {
		t.Errorf("equals node should be an atom")
	}
	if Not(Pred("P")).IsAtom() {
		t.Errorf("not node should not be an atom")
	}
	if !Var("x").IsTerm() {
		t.Errorf("variable node should be a term")
	}
	if !Fn("f", Var("x")).IsTerm() {
		t.Errorf("function node should be a term")
	}
	if Pred("P").IsTerm() {
		t.Errorf("predicate node should not be a term")
	}
}

// TestParsePrintRoundTrip is the round-trip invariant from spec §8.1:
// parsing a formula's String() back produces a structurally Equal tree.
func TestParsePrintRoundTrip(t *testing.T) {
	cases := []string{
		"all x (P(x) -> Q(x))",
		"exists x (P(x) & -Q(x))",
		"P(a) | Q(b) | R(c)",
		"f(x) = g(y,z)",
		"all x (all y (P(x,y) <-> Q(y,x)))",
		"-(P(a) & Q(b))",
	}
	for _, src := range cases {
		n, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", src, err)
		}
		printed := n.String()
		reparsed, err := Parse(printed)
		if err != nil {
			t.Fatalf("Parse(%q) (printed from %q) failed: %v", printed, src, err)
		}
		if !n.Equal(reparsed) {
			t.Errorf("round trip mismatch for %q: printed %q reparsed to a different tree", src, printed)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindForall.String() != "forall" {
		t.Errorf("expected KindForall.String() == \"forall\", got %q", KindForall.String())
	}
	if Kind(999).String() != "unknown" {
		t.Errorf("expected out-of-range Kind to stringify as \"unknown\"")
	}
}
