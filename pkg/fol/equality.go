package fol

import "fmt"

// EqualityAxioms synthesizes the reflexivity, symmetry, transitivity,
// per-function-arity congruence, and per-predicate-arity substitution
// clauses for sig (spec §4.3 "Equality handling"). These are static,
// finite clause sets — the depth limit spec §9 calls for against
// non-termination applies to the Horn engine's derived eq_d(X,Y,D)
// relation (horn_engine.go), not to this generator, which always
// produces exactly 3 + len(Functions) + len(Predicates) clauses.
func EqualityAxioms(sig *FormulaSignature) ClauseSet {
	var clauses ClauseSet
	clauses = append(clauses, reflexivityAxiom(), symmetryAxiom(), transitivityAxiom())
	for name, arity := range sig.Functions {
		clauses = append(clauses, congruenceAxiom(name, arity))
	}
	for name, arity := range sig.Predicates {
		clauses = append(clauses, substitutionAxiom(name, arity))
	}
	return clauses
}

func eqVar(prefix string, i int) *Node {
	return Var(fmt.Sprintf("%s%d", prefix, i))
}

// reflexivityAxiom: X = X.
func reflexivityAxiom() Clause {
	x := eqVar("X", 0)
	return clauseOf(Eq(x, x))
}

// symmetryAxiom: X = Y -> Y = X.
func symmetryAxiom() Clause {
	x, y := eqVar("X", 0), eqVar("Y", 0)
	return clauseOf(Not(Eq(x, y)), Eq(y, x))
}

// transitivityAxiom: X = Y & Y = Z -> X = Z.
func transitivityAxiom() Clause {
	x, y, z := eqVar("X", 0), eqVar("Y", 0), eqVar("Z", 0)
	return clauseOf(Not(Eq(x, y)), Not(Eq(y, z)), Eq(x, z))
}

// congruenceAxiom: X1=Y1 & ... & Xn=Yn -> f(X1..Xn) = f(Y1..Yn).
func congruenceAxiom(name string, arity int) Clause {
	xs := make([]*Node, arity)
	ys := make([]*Node, arity)
	var atoms []*Node
	for i := 0; i < arity; i++ {
		xs[i] = eqVar("X", i)
		ys[i] = eqVar("Y", i)
		atoms = append(atoms, Not(Eq(xs[i], ys[i])))
	}
	atoms = append(atoms, Eq(Fn(name, xs...), Fn(name, ys...)))
	return clauseOf(atoms...)
}

// substitutionAxiom: X1=Y1 & ... & Xn=Yn & p(X1..Xn) -> p(Y1..Yn).
func substitutionAxiom(name string, arity int) Clause {
	xs := make([]*Node, arity)
	ys := make([]*Node, arity)
	var atoms []*Node
	for i := 0; i < arity; i++ {
		xs[i] = eqVar("X", i)
		ys[i] = eqVar("Y", i)
		atoms = append(atoms, Not(Eq(xs[i], ys[i])))
	}
	atoms = append(atoms, Not(Pred(name, xs...)), Pred(name, ys...))
	return clauseOf(atoms...)
}
