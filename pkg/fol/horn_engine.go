package fol

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// hornEqualityDepth is the default depth cap on the derived eq_d(X,Y,D)
// equality relation (spec §4.4.2, §9): deep enough for realistic
// congruence chains, shallow enough that a cyclic set of user equalities
// cannot recurse forever.
const hornEqualityDepth = 5

// HornEngine is a Prolog-style SLD resolution prover over Horn clauses
// (spec §4.4.2). It never constructs or parses an actual Prolog program
// text; "translate to a Prolog-like program" is realised directly as
// unification over the AST, renaming each clause's variables apart on
// every use the way a real Prolog interpreter renames on each clause
// invocation.
type HornEngine struct {
	logger *zap.Logger
}

// NewHornEngine returns a HornEngine. A nil logger is replaced with a
// no-op logger (ambient-stack convention, see SPEC_FULL.md §A).
func NewHornEngine(logger *zap.Logger) *HornEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HornEngine{logger: logger}
}

func (e *HornEngine) Name() string { return "horn" }

func (e *HornEngine) Capabilities() EngineCapabilities {
	return EngineCapabilities{Horn: true, Equality: true, Arithmetic: true}
}

func (e *HornEngine) Session() (EngineSession, bool) {
	return newHornSession(e.logger), true
}

// Prove clausifies every premise, rejects non-Horn input and universal
// goals, then runs bounded SLD resolution against the conjunction of
// goal atoms extracted from conclusion (spec §4.4.2). conclusion is
// expected to be, after NNF, a conjunction of atoms/negated-atoms; a
// richer goal shape (embedded quantifiers, disjunctive goals) is outside
// what SLD resolution over Horn clauses can express and belongs to the
// SAT engine instead, which the manager promotes to automatically.
func (e *HornEngine) Prove(ctx context.Context, premises []*Node, conclusion *Node, opts *ProveOptions) ProveResult {
	start := time.Now()
	opts = resolveProveOptions(opts)

	if containsForall(conclusion) {
		e.logger.Debug("horn engine: universal goal, deferring to manager")
		return ProveResult{
			Result: ResultError,
			Err:    newError(UniversalGoal, "horn engine cannot resolve a universally-quantified goal"),
		}
	}

	env := NewSkolemEnv()
	var clauses ClauseSet
	for _, premise := range premises {
		normalized := Normalize(premise, env)
		cs, err := Clausify(normalized, opts.Strategy, nil)
		if err != nil {
			fe, _ := AsFolError(err)
			return ProveResult{Result: ResultError, Err: fe, Statistics: Statistics{TimeMs: time.Since(start).Milliseconds()}}
		}
		clauses = append(clauses, cs...)
	}

	if opts.EnableEquality {
		sig := ExtractSignature(premises...)
		clauses = append(clauses, EqualityAxioms(sig)...)
	}

	if !clauses.IsHorn() {
		return ProveResult{
			Result: ResultError,
			Err:    newError(NonHorn, "premise set clausifies to a non-Horn clause"),
		}
	}

	solver := &hornSolver{
		clauses:          clauses,
		maxInferences:    opts.MaxInferences,
		depthLimit:       hornEqualityDepth,
		enableEquality:   opts.EnableEquality,
		enableArithmetic: opts.EnableArithmetic,
		deadline:         opts.deadline(),
		userEqualities:   collectUserEqualities(clauses),
		logger:           e.logger,
	}

	goals := goalAtomsOf(ToNNF(conclusion))
	_, proved, err := solver.solve(ctx, goals, Subst{})
	stats := Statistics{TimeMs: time.Since(start).Milliseconds(), Inferences: solver.inferences, Clauses: len(clauses)}

	if err != nil {
		fe, _ := AsFolError(err)
		switch fe.Kind {
		case Timeout:
			return ProveResult{Result: ResultTimeout, Statistics: stats, Err: fe, Message: "timeout"}
		case InferenceLimitExceeded:
			return ProveResult{Result: ResultFailed, Message: "inference_limit_exceeded", Statistics: stats, Err: fe}
		default:
			return ProveResult{Result: ResultError, Statistics: stats, Err: fe}
		}
	}
	if proved {
		return ProveResult{Success: true, Result: ResultProved, EngineUsed: e.Name(), Statistics: stats}
	}
	return ProveResult{Success: false, Result: ResultFailed, EngineUsed: e.Name(), Statistics: stats, Message: "no proof found"}
}

// CheckSat runs propositional-style forward chaining over the (assumed
// ground) clause set: a Horn clause set is unsatisfiable iff chaining
// derives every literal of some headless "denial" clause. Clauses with
// free variables are treated atom-by-atom on their printed key, which
// under-approximates true first-order entailment but matches the
// propositional cases (Tseitin-encoded input, ground facts) this path
// is actually exercised against.
func (e *HornEngine) CheckSat(ctx context.Context, clauses ClauseSet) SatResult {
	start := time.Now()
	known := map[string]bool{}
	changed := true
	for changed {
		changed = false
		for _, c := range clauses {
			head, body := splitHornClause(c)
			allBodyTrue := true
			for _, b := range body {
				if !known[CanonicalArgString(b)] {
					allBodyTrue = false
					break
				}
			}
			if !allBodyTrue {
				continue
			}
			if head == nil {
				return SatResult{Sat: false, Statistics: Statistics{TimeMs: time.Since(start).Milliseconds()}}
			}
			key := CanonicalArgString(head)
			if !known[key] {
				known[key] = true
				changed = true
			}
		}
	}
	model := make(map[string]bool, len(known))
	for k := range known {
		model[k] = true
	}
	return SatResult{Sat: true, Model: model, Statistics: Statistics{TimeMs: time.Since(start).Milliseconds()}}
}

func resolveProveOptions(opts *ProveOptions) *ProveOptions {
	if opts == nil {
		return DefaultProveOptions()
	}
	return opts
}

func containsForall(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindForall:
		return true
	case KindExists:
		return containsForall(n.Body)
	case KindNot:
		return containsForall(n.Operand)
	case KindAnd, KindOr, KindImplies, KindIff:
		return containsForall(n.Left) || containsForall(n.Right)
	default:
		return false
	}
}

// goalAtomsOf flattens a top-level conjunction into its atom/negated-
// atom conjuncts, the goal shape SLD resolution consumes.
func goalAtomsOf(n *Node) []*Node {
	if n.Kind == KindAnd {
		return append(goalAtomsOf(n.Left), goalAtomsOf(n.Right)...)
	}
	return []*Node{n}
}

// collectUserEqualities extracts ground eq_fact-style unit clauses (a
// bare positive equals literal with no other literals) from the clause
// set, the facts the depth-limited equality relation chains through.
func collectUserEqualities(clauses ClauseSet) []*Node {
	var out []*Node
	for _, c := range clauses {
		if len(c.Literals) == 1 && !c.Literals[0].Negated && c.Literals[0].Atom.Kind == KindEquals {
			out = append(out, c.Literals[0].Atom)
		}
	}
	return out
}

func splitHornClause(c Clause) (head *Node, body []*Node) {
	for _, l := range c.Literals {
		if !l.Negated {
			head = l.Atom
		} else {
			body = append(body, l.Atom)
		}
	}
	return head, body
}

// hornSolver is the per-Prove SLD resolution state: the clause
// database, resolution-step counter, and the equality/arithmetic
// built-ins consulted before falling back to ordinary clause
// resolution.
type hornSolver struct {
	clauses          ClauseSet
	maxInferences    int
	inferences       int
	depthLimit       int
	enableEquality   bool
	enableArithmetic bool
	deadline         time.Time
	userEqualities   []*Node
	renameCounter    int
	logger           *zap.Logger
}

func (s *hornSolver) solve(ctx context.Context, goals []*Node, subst Subst) (Subst, bool, error) {
	select {
	case <-ctx.Done():
		return subst, false, newError(Timeout, "horn engine cancelled")
	default:
	}
	if len(goals) == 0 {
		return subst, true, nil
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return subst, false, newError(Timeout, "horn engine exceeded its deadline")
	}
	s.inferences++
	if s.inferences > s.maxInferences {
		return subst, false, newError(InferenceLimitExceeded, "exceeded %d inference steps", s.maxInferences)
	}

	goal := goals[0]
	rest := goals[1:]

	if s.enableEquality && goal.Kind == KindEquals {
		if s.proveEquality(deepWalkTerm(goal.Left, subst), deepWalkTerm(goal.Right, subst), s.depthLimit) {
			return s.solve(ctx, rest, subst)
		}
		return subst, false, nil
	}

	if goal.Kind == KindPredicate && s.enableArithmetic {
		if handled, ns, ok := s.tryArithmetic(goal, subst); handled {
			if !ok {
				return subst, false, nil
			}
			return s.solve(ctx, rest, ns)
		}
	}

	for _, clause := range s.clauses {
		head, _ := splitHornClause(clause)
		if head == nil {
			continue
		}
		renamed := renameClause(clause, fmt.Sprintf("_%d", s.renameCounter))
		s.renameCounter++
		rHead, rBody := splitHornClause(renamed)

		ns, ok := unify(goal, rHead, subst)
		if !ok {
			continue
		}
		newGoals := make([]*Node, 0, len(rBody)+len(rest))
		newGoals = append(newGoals, rBody...)
		newGoals = append(newGoals, rest...)
		result, proved, err := s.solve(ctx, newGoals, ns)
		if err != nil {
			return subst, false, err
		}
		if proved {
			return result, true, nil
		}
	}
	return subst, false, nil
}

// tryArithmetic recognizes comparison and `is` goals; handled reports
// whether goal was an arithmetic built-in at all (so the caller falls
// through to ordinary clause resolution otherwise).
func (s *hornSolver) tryArithmetic(goal *Node, subst Subst) (handled bool, ns Subst, ok bool) {
	if len(goal.Args) == 2 && IsArithmeticComparison(goal.Name) {
		a := deepWalkTerm(goal.Args[0], subst)
		b := deepWalkTerm(goal.Args[1], subst)
		holds, recognized := EvalComparison(goal.Name, a, b)
		if recognized {
			return true, subst, holds
		}
	}
	if goal.Name == "is" && len(goal.Args) == 2 {
		expr := deepWalkTerm(goal.Args[1], subst)
		if expr.Kind == KindFunction && IsArithmeticFunction(expr.Name) && len(expr.Args) == 2 {
			val, evaluated := EvalFunction(expr.Name, deepWalkTerm(expr.Args[0], subst), deepWalkTerm(expr.Args[1], subst))
			if evaluated {
				bound, unified := unify(goal.Args[0], val, subst)
				return true, bound, unified
			}
		}
		return true, subst, false
	}
	return false, subst, false
}

// proveEquality implements the depth-limited eq_d(X,Y,D) relation (spec
// §4.4.2, §9): structural equality, then functional congruence, then
// one step through a user-asserted equality fact, recursing with the
// depth budget decremented on every step so a cyclic fact set cannot
// loop forever.
func (s *hornSolver) proveEquality(a, b *Node, depth int) bool {
	if a.Equal(b) {
		return true
	}
	if depth <= 0 {
		return false
	}
	if a.Kind == KindFunction && b.Kind == KindFunction && a.Name == b.Name && len(a.Args) == len(b.Args) {
		allEqual := true
		for i := range a.Args {
			if !s.proveEquality(a.Args[i], b.Args[i], depth-1) {
				allEqual = false
				break
			}
		}
		if allEqual {
			return true
		}
	}
	for _, fact := range s.userEqualities {
		if fact.Left.Equal(a) && s.proveEquality(fact.Right, b, depth-1) {
			return true
		}
		if fact.Right.Equal(a) && s.proveEquality(fact.Left, b, depth-1) {
			return true
		}
	}
	return false
}

// renameClause returns a copy of c with every variable name suffixed,
// so the same program clause can be instantiated repeatedly during SLD
// resolution without its variables clashing across instantiations.
func renameClause(c Clause, suffix string) Clause {
	mapping := map[string]string{}
	var rename func(*Node) *Node
	rename = func(n *Node) *Node {
		switch n.Kind {
		case KindVariable:
			fresh, ok := mapping[n.Name]
			if !ok {
				fresh = n.Name + suffix
				mapping[n.Name] = fresh
			}
			return Var(fresh)
		case KindConstant:
			return n
		case KindFunction:
			args := make([]*Node, len(n.Args))
			for i, a := range n.Args {
				args[i] = rename(a)
			}
			return Fn(n.Name, args...)
		case KindPredicate:
			args := make([]*Node, len(n.Args))
			for i, a := range n.Args {
				args[i] = rename(a)
			}
			return Pred(n.Name, args...)
		case KindEquals:
			return Eq(rename(n.Left), rename(n.Right))
		default:
			return n
		}
	}
	lits := make([]Literal, len(c.Literals))
	for i, l := range c.Literals {
		lits[i] = Literal{Atom: rename(l.Atom), Negated: l.Negated}
	}
	return Clause{Literals: lits}
}

// unify is textbook Robinson unification over the term sub-language of
// Node (variable, constant, function), with an occurs check.
func unify(a, b *Node, s Subst) (Subst, bool) {
	a = walkVar(a, s)
	b = walkVar(b, s)
	switch {
	case a.Kind == KindVariable && b.Kind == KindVariable && a.Name == b.Name:
		return s, true
	case a.Kind == KindVariable:
		return bindVar(a.Name, b, s)
	case b.Kind == KindVariable:
		return bindVar(b.Name, a, s)
	case a.Kind == KindConstant && b.Kind == KindConstant:
		return s, a.Name == b.Name
	case a.Kind == KindFunction && b.Kind == KindFunction:
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return s, false
		}
		cur := s
		for i := range a.Args {
			ns, ok := unify(a.Args[i], b.Args[i], cur)
			if !ok {
				return s, false
			}
			cur = ns
		}
		return cur, true
	case a.Kind == KindPredicate && b.Kind == KindPredicate:
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return s, false
		}
		cur := s
		for i := range a.Args {
			ns, ok := unify(a.Args[i], b.Args[i], cur)
			if !ok {
				return s, false
			}
			cur = ns
		}
		return cur, true
	case a.Kind == KindEquals && b.Kind == KindEquals:
		cur, ok := unify(a.Left, b.Left, s)
		if !ok {
			return s, false
		}
		return unify(a.Right, b.Right, cur)
	default:
		return s, false
	}
}

func walkVar(n *Node, s Subst) *Node {
	for n.Kind == KindVariable {
		repl, ok := s[n.Name]
		if !ok {
			break
		}
		n = repl
	}
	return n
}

func bindVar(name string, val *Node, s Subst) (Subst, bool) {
	if occursCheck(name, val, s) {
		return s, false
	}
	ns := make(Subst, len(s)+1)
	for k, v := range s {
		ns[k] = v
	}
	ns[name] = val
	return ns, true
}

func occursCheck(name string, n *Node, s Subst) bool {
	n = walkVar(n, s)
	switch n.Kind {
	case KindVariable:
		return n.Name == name
	case KindFunction:
		for _, a := range n.Args {
			if occursCheck(name, a, s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// deepWalkTerm fully resolves n (and, recursively, every argument of a
// compound term) against s, unlike walkVar which only resolves the top
// node.
func deepWalkTerm(n *Node, s Subst) *Node {
	n = walkVar(n, s)
	if n.Kind != KindFunction {
		return n
	}
	args := make([]*Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = deepWalkTerm(a, s)
	}
	return Fn(n.Name, args...)
}
