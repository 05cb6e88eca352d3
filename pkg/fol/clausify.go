package fol

import (
	"fmt"
	"time"
)

// Literal is an atom or its negation (GLOSSARY). Atom is always a
// KindPredicate or KindEquals node.
type Literal struct {
	Atom    *Node
	Negated bool
}

func asLiteral(n *Node) Literal {
	if n.Kind == KindNot {
		return Literal{Atom: n.Operand, Negated: true}
	}
	return Literal{Atom: n, Negated: false}
}

// negateNode flips the polarity of an atom-or-negated-atom node,
// collapsing a double negation rather than nesting Not(Not(...)).
func negateNode(n *Node) *Node {
	if n.Kind == KindNot {
		return n.Operand
	}
	return Not(n)
}

// Key renders the literal's atom (ignoring polarity) as a canonical
// string, used to test whether two literals are complementary.
func (l Literal) Key() string {
	return printNode(l.Atom, precAtom)
}

// Complementary reports whether l and other share the same atom but
// differ in polarity (spec §3 Literal).
func (l Literal) Complementary(other Literal) bool {
	return l.Negated != other.Negated && l.Key() == other.Key()
}

func (l Literal) String() string {
	if l.Negated {
		return "-" + printNode(l.Atom, precNot)
	}
	return printNode(l.Atom, precAtom)
}

// Clause is an ordered multiset of literals interpreted as their
// disjunction (spec §3). An empty clause is the canonical contradiction.
type Clause struct {
	Literals []Literal
}

func clauseOf(atoms ...*Node) Clause {
	lits := make([]Literal, len(atoms))
	for i, a := range atoms {
		lits[i] = asLiteral(a)
	}
	return Clause{Literals: lits}
}

// IsHorn reports whether c has at most one positive literal.
func (c Clause) IsHorn() bool {
	positives := 0
	for _, l := range c.Literals {
		if !l.Negated {
			positives++
		}
	}
	return positives <= 1
}

// IsEmpty reports whether c is the empty clause (⊥).
func (c Clause) IsEmpty() bool { return len(c.Literals) == 0 }

func (c Clause) String() string {
	if c.IsEmpty() {
		return "[]"
	}
	s := ""
	for i, l := range c.Literals {
		if i > 0 {
			s += " | "
		}
		s += l.String()
	}
	return s
}

// ClauseSet is a conjunction of clauses (CNF, GLOSSARY).
type ClauseSet []Clause

// IsHorn reports whether every clause in the set is Horn.
func (cs ClauseSet) IsHorn() bool {
	for _, c := range cs {
		if !c.IsHorn() {
			return false
		}
	}
	return true
}

// Strategy selects the clausification algorithm (spec §4.3).
type Strategy int

const (
	StrategyStandard Strategy = iota
	StrategyTseitin
)

// ClausifyOptions bounds the clausifier's work (spec §5 resource
// bounds). A zero value is invalid; use DefaultClausifyOptions.
type ClausifyOptions struct {
	NodeBudget int
	Timeout    time.Duration
}

// DefaultClausifyOptions returns the package defaults: a node budget
// generous enough for realistic formulas but well short of pathological
// distribution blowup, and a ten-second wall-clock ceiling.
func DefaultClausifyOptions() *ClausifyOptions {
	return &ClausifyOptions{NodeBudget: 200_000, Timeout: 10 * time.Second}
}

func resolveOptions(opts *ClausifyOptions) *ClausifyOptions {
	if opts == nil {
		return DefaultClausifyOptions()
	}
	return opts
}

// Clausify dispatches to the requested strategy. n must already be
// quantifier-free NNF (the output of Normalize): every not wraps an
// atom, and no forall/exists node remains.
func Clausify(n *Node, strategy Strategy, opts *ClausifyOptions) (ClauseSet, error) {
	switch strategy {
	case StrategyTseitin:
		return ClausifyTseitin(n)
	default:
		return ClausifyStandard(n, opts)
	}
}

// ClausifyStandard repeatedly applies A|(B&C) => (A|B)&(A|C) (and its
// mirror) until the formula is a conjunction of disjunctions of
// literals (spec §4.3). Distribution is worst-case exponential in the
// source, so every recursive step is metered against NodeBudget and
// Timeout; exceeding either aborts with CLAUSIFICATION_BLOWUP/TIMEOUT
// rather than continuing to allocate.
func ClausifyStandard(n *Node, opts *ClausifyOptions) (ClauseSet, error) {
	opts = resolveOptions(opts)
	d := &distributor{budget: opts.NodeBudget}
	if opts.Timeout > 0 {
		d.deadline = time.Now().Add(opts.Timeout)
	}
	result, err := d.distribute(n)
	if err != nil {
		return nil, err
	}
	return extractClauses(result), nil
}

// distributor carries the node budget and deadline across the
// recursive distribute/orDistribute calls of one ClausifyStandard run.
type distributor struct {
	created  int
	budget   int
	deadline time.Time
}

func (d *distributor) checkBudget() error {
	d.created++
	if d.created > d.budget {
		return newError(ClausificationBlowup, "clausification exceeded node budget of %d", d.budget)
	}
	if !d.deadline.IsZero() && time.Now().After(d.deadline) {
		return newError(Timeout, "clausification exceeded timeout")
	}
	return nil
}

func (d *distributor) distribute(n *Node) (*Node, error) {
	if err := d.checkBudget(); err != nil {
		return nil, err
	}
	switch n.Kind {
	case KindAnd:
		left, err := d.distribute(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.distribute(n.Right)
		if err != nil {
			return nil, err
		}
		return And(left, right), nil
	case KindOr:
		left, err := d.distribute(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.distribute(n.Right)
		if err != nil {
			return nil, err
		}
		return d.orDistribute(left, right)
	default:
		return n, nil
	}
}

func (d *distributor) orDistribute(left, right *Node) (*Node, error) {
	if err := d.checkBudget(); err != nil {
		return nil, err
	}
	if left.Kind == KindAnd {
		a, err := d.orDistribute(left.Left, right)
		if err != nil {
			return nil, err
		}
		b, err := d.orDistribute(left.Right, right)
		if err != nil {
			return nil, err
		}
		return And(a, b), nil
	}
	if right.Kind == KindAnd {
		a, err := d.orDistribute(left, right.Left)
		if err != nil {
			return nil, err
		}
		b, err := d.orDistribute(left, right.Right)
		if err != nil {
			return nil, err
		}
		return And(a, b), nil
	}
	return Or(left, right), nil
}

// extractClauses flattens a conjunction-of-disjunctions-of-literals tree
// into a ClauseSet.
func extractClauses(n *Node) ClauseSet {
	var conjuncts []*Node
	var collectAnd func(*Node)
	collectAnd = func(n *Node) {
		if n.Kind == KindAnd {
			collectAnd(n.Left)
			collectAnd(n.Right)
			return
		}
		conjuncts = append(conjuncts, n)
	}
	collectAnd(n)

	clauses := make(ClauseSet, 0, len(conjuncts))
	for _, c := range conjuncts {
		clauses = append(clauses, extractClause(c))
	}
	return clauses
}

func extractClause(n *Node) Clause {
	var atoms []*Node
	var collectOr func(*Node)
	collectOr = func(n *Node) {
		if n.Kind == KindOr {
			collectOr(n.Left)
			collectOr(n.Right)
			return
		}
		atoms = append(atoms, n)
	}
	collectOr(n)
	return clauseOf(atoms...)
}

// ClausifyTseitin introduces one fresh predicate per non-atomic
// sub-formula and emits its definitional clauses plus a unit clause
// asserting the root, growing linearly in the size of n rather than
// risking the exponential blowup of standard distribution (spec §4.3).
// n must already be quantifier-free; it may still contain implies/iff,
// since Tseitin defines those connectives directly rather than
// requiring prior NNF.
func ClausifyTseitin(n *Node) (ClauseSet, error) {
	ts := &tseitinState{}
	root := ts.encode(n)
	ts.clauses = append(ts.clauses, clauseOf(root))
	return ts.clauses, nil
}

type tseitinState struct {
	counter int
	clauses ClauseSet
}

func (ts *tseitinState) freshAtom(free []string) *Node {
	name := fmt.Sprintf("_tseitin_%d", ts.counter)
	ts.counter++
	args := make([]*Node, len(free))
	for i, v := range free {
		args[i] = Var(v)
	}
	return Pred(name, args...)
}

// encode returns an atom-or-negated-atom node standing for n's truth
// value, emitting whatever definitional clauses were needed to make
// that stand-in node equivalent to n.
func (ts *tseitinState) encode(n *Node) *Node {
	switch n.Kind {
	case KindPredicate, KindEquals:
		return n
	case KindNot:
		return negateNode(ts.encode(n.Operand))
	case KindAnd:
		a := ts.encode(n.Left)
		b := ts.encode(n.Right)
		p := ts.freshAtom(FreeVariables(n))
		ts.clauses = append(ts.clauses,
			clauseOf(negateNode(p), a),
			clauseOf(negateNode(p), b),
			clauseOf(p, negateNode(a), negateNode(b)),
		)
		return p
	case KindOr:
		a := ts.encode(n.Left)
		b := ts.encode(n.Right)
		p := ts.freshAtom(FreeVariables(n))
		ts.clauses = append(ts.clauses,
			clauseOf(negateNode(p), a, b),
			clauseOf(p, negateNode(a)),
			clauseOf(p, negateNode(b)),
		)
		return p
	case KindImplies:
		a := ts.encode(n.Left)
		b := ts.encode(n.Right)
		p := ts.freshAtom(FreeVariables(n))
		ts.clauses = append(ts.clauses,
			clauseOf(negateNode(p), negateNode(a), b),
			clauseOf(p, a),
			clauseOf(p, negateNode(b)),
		)
		return p
	case KindIff:
		a := ts.encode(n.Left)
		b := ts.encode(n.Right)
		p := ts.freshAtom(FreeVariables(n))
		ts.clauses = append(ts.clauses,
			clauseOf(negateNode(p), negateNode(a), b),
			clauseOf(negateNode(p), a, negateNode(b)),
			clauseOf(p, a, b),
			clauseOf(p, negateNode(a), negateNode(b)),
		)
		return p
	default:
		// forall/exists should not reach the clausifier; treat
		// defensively as an opaque atom rather than panicking.
		return n
	}
}
