package fol

import "testing"

// groundEval evaluates a ground, quantifier-free formula under an
// assignment keyed by each atom's printed form -- used to check that
// clausification preserves meaning (spec §8.3) without needing a full
// model.
func groundEval(n *Node, assign map[string]bool) bool {
	switch n.Kind {
	case KindPredicate, KindEquals:
		return assign[printNode(n, precAtom)]
	case KindNot:
		return !groundEval(n.Operand, assign)
	case KindAnd:
		return groundEval(n.Left, assign) && groundEval(n.Right, assign)
	case KindOr:
		return groundEval(n.Left, assign) || groundEval(n.Right, assign)
	case KindImplies:
		return !groundEval(n.Left, assign) || groundEval(n.Right, assign)
	case KindIff:
		return groundEval(n.Left, assign) == groundEval(n.Right, assign)
	default:
		return false
	}
}

func literalHolds(l Literal, assign map[string]bool) bool {
	v := assign[l.Key()]
	if l.Negated {
		return !v
	}
	return v
}

func clauseSetHolds(cs ClauseSet, assign map[string]bool) bool {
	for _, c := range cs {
		held := false
		for _, l := range c.Literals {
			if literalHolds(l, assign) {
				held = true
				break
			}
		}
		if !held {
			return false
		}
	}
	return true
}

func collectAtomKeys(n *Node, keys map[string]bool) {
	switch n.Kind {
	case KindPredicate, KindEquals:
		keys[printNode(n, precAtom)] = true
	case KindNot:
		collectAtomKeys(n.Operand, keys)
	case KindAnd, KindOr, KindImplies, KindIff:
		collectAtomKeys(n.Left, keys)
		collectAtomKeys(n.Right, keys)
	}
}

func forEachAssignment(names []string, visit func(map[string]bool)) {
	n := len(names)
	for mask := 0; mask < (1 << n); mask++ {
		assign := make(map[string]bool, n)
		for i, name := range names {
			assign[name] = mask&(1<<i) != 0
		}
		visit(assign)
	}
}

// TestClausifyStandardIsEquivalent checks spec §8.3: for every truth
// assignment to the formula's own atoms, the clausified ClauseSet agrees
// with the original ground formula.
func TestClausifyStandardIsEquivalent(t *testing.T) {
	cases := []string{
		"P(a) & (Q(a) | R(a))",
		"(P(a) -> Q(a)) & (Q(a) -> R(a))",
		"P(a) <-> Q(a)",
		"-(P(a) & Q(a)) | R(a)",
		"(P(a) | Q(a)) & (-P(a) | R(a)) & (-Q(a) | R(a))",
	}
	for _, src := range cases {
		n, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		nnf := ToNNF(n)
		cs, err := ClausifyStandard(nnf, nil)
		if err != nil {
			t.Fatalf("ClausifyStandard(%q): %v", src, err)
		}

		keys := map[string]bool{}
		collectAtomKeys(n, keys)
		names := make([]string, 0, len(keys))
		for k := range keys {
			names = append(names, k)
		}

		forEachAssignment(names, func(assign map[string]bool) {
			want := groundEval(n, assign)
			got := clauseSetHolds(cs, assign)
			if want != got {
				t.Errorf("%q under %v: formula=%v clauses=%v, expected agreement", src, assign, want, got)
			}
		})
	}
}

func TestClausifyStandardBudgetExceeded(t *testing.T) {
	// A handful of nested ANDs inside ORs is enough to blow a tiny budget.
	n, err := Parse("(P(a) & Q(a)) | (R(a) & S(a)) | (P(b) & Q(b)) | (R(b) & S(b))")
	if err != nil {
		t.Fatal(err)
	}
	_, err = ClausifyStandard(n, &ClausifyOptions{NodeBudget: 1})
	if err == nil {
		t.Fatal("expected clausification to exceed a node budget of 1")
	}
	fe, ok := AsFolError(err)
	if !ok || fe.Kind != ClausificationBlowup {
		t.Fatalf("expected ClausificationBlowup, got %v", err)
	}
}

func TestClauseIsHorn(t *testing.T) {
	n, err := Parse("-P(a) | -Q(a) | R(a)")
	if err != nil {
		t.Fatal(err)
	}
	cs, err := ClausifyStandard(n, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !cs.IsHorn() {
		t.Errorf("expected a clause with exactly one positive literal to be Horn")
	}

	n2, _ := Parse("P(a) | Q(a)")
	cs2, err := ClausifyStandard(n2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cs2.IsHorn() {
		t.Errorf("expected a clause with two positive literals to be non-Horn")
	}
}

// TestClausifyTseitinPreservesSatisfiability checks the weaker
// Tseitin-specific property: the original formula is true under an
// assignment to its own atoms iff the Tseitin clause set is satisfiable
// by extending that assignment over the fresh definitional atoms.
func TestClausifyTseitinPreservesSatisfiability(t *testing.T) {
	src := "(P(a) & Q(a)) | (R(a) <-> S(a))"
	n, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	cs, err := ClausifyTseitin(n)
	if err != nil {
		t.Fatal(err)
	}

	origKeys := map[string]bool{}
	collectAtomKeys(n, origKeys)
	origNames := make([]string, 0, len(origKeys))
	for k := range origKeys {
		origNames = append(origNames, k)
	}

	allKeys := map[string]bool{}
	for _, c := range cs {
		for _, l := range c.Literals {
			allKeys[l.Key()] = true
		}
	}
	var freshNames []string
	for k := range allKeys {
		if !origKeys[k] {
			freshNames = append(freshNames, k)
		}
	}

	forEachAssignment(origNames, func(fixed map[string]bool) {
		want := groundEval(n, fixed)

		satisfiable := false
		forEachAssignment(freshNames, func(extra map[string]bool) {
			if satisfiable {
				return
			}
			full := map[string]bool{}
			for k, v := range fixed {
				full[k] = v
			}
			for k, v := range extra {
				full[k] = v
			}
			if clauseSetHolds(cs, full) {
				satisfiable = true
			}
		})

		if want != satisfiable {
			t.Errorf("%q under %v: formula=%v, Tseitin-extendable=%v", src, fixed, want, satisfiable)
		}
	})
}
