package fol

import (
	"context"
	"sort"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"go.uber.org/zap"
)

// defaultMaxGroundVars is the default ceiling on distinct variables per
// clause before grounding gives up instantiating it, drops it from the
// ground set and reports it as a diagnostic instead (spec §4.4.3 step 4,
// §9 Open Question: a bounded-Herbrand approximation with a surfaced
// diagnostic).
const defaultMaxGroundVars = 3

// SatEngine refutes by grounding the Herbrand base over the constants
// that appear in the clause set and delegating the resulting
// propositional CNF to a real SAT kernel (go-air/gini), rather than a
// hand-rolled DPLL loop (spec §4.4.3).
type SatEngine struct {
	logger       *zap.Logger
	maxGroundVars int
}

// NewSatEngine returns a SatEngine. A nil logger is replaced with a
// no-op logger.
func NewSatEngine(logger *zap.Logger) *SatEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SatEngine{logger: logger, maxGroundVars: defaultMaxGroundVars}
}

func (e *SatEngine) Name() string { return "sat" }

func (e *SatEngine) Capabilities() EngineCapabilities {
	return EngineCapabilities{FullFOL: true, Equality: true}
}

// Session reports false: the SAT engine has no scoped push/pop, and a
// ModeSat SessionManager session reports RETRACTION_UNSUPPORTED on
// retract (spec §4.4.5).
func (e *SatEngine) Session() (EngineSession, bool) { return nil, false }

// Prove builds (⋀ premises) ∧ ¬conclusion, clausifies it with Tseitin,
// and refutes it: UNSAT means the conclusion follows (spec §4.4.3).
func (e *SatEngine) Prove(ctx context.Context, premises []*Node, conclusion *Node, opts *ProveOptions) ProveResult {
	start := time.Now()
	opts = resolveProveOptions(opts)

	// (⋀ premises) ∧ ¬conclusion; order does not matter for
	// clausification or grounding.
	refutation := Not(conclusion)
	if len(premises) > 0 {
		body := premises[0]
		for _, p := range premises[1:] {
			body = And(body, p)
		}
		refutation = And(body, Not(conclusion))
	}

	env := NewSkolemEnv()
	normalized := Normalize(refutation, env)
	clauses, err := ClausifyTseitin(normalized)
	if err != nil {
		fe, _ := AsFolError(err)
		return ProveResult{Result: ResultError, Err: fe, Statistics: Statistics{TimeMs: time.Since(start).Milliseconds()}}
	}

	if opts.EnableEquality {
		sig := ExtractSignature(append(append([]*Node{}, premises...), conclusion)...)
		clauses = append(clauses, EqualityAxioms(sig)...)
	}

	result := e.refute(ctx, clauses, opts.deadline())
	result.Statistics.TimeMs = time.Since(start).Milliseconds()
	result.EngineUsed = e.Name()
	return result
}

// CheckSat runs the same grounding-and-solve pipeline from step 4
// onward (spec §4.4.3) directly on a caller-supplied clause set.
func (e *SatEngine) CheckSat(ctx context.Context, clauses ClauseSet) SatResult {
	start := time.Now()
	groundClauses, diagnostics := e.ground(clauses)
	for _, d := range diagnostics {
		e.logger.Warn("sat engine: clause dropped from grounding", zap.String("reason", d))
	}
	solver := gini.New()
	atomVars := assignVariables(solver, groundClauses)
	addGroundClauses(solver, groundClauses, atomVars)

	switch solver.Solve() {
	case 1:
		model := extractModel(solver, atomVars)
		return SatResult{Sat: true, Model: model, Statistics: Statistics{TimeMs: time.Since(start).Milliseconds()}}
	default:
		return SatResult{Sat: false, Statistics: Statistics{TimeMs: time.Since(start).Milliseconds()}}
	}
}

// refute runs checkSat-equivalent grounding on clauses and interprets
// UNSAT/SAT as proved/failed for a refutation-style Prove call.
func (e *SatEngine) refute(ctx context.Context, clauses ClauseSet, deadline time.Time) ProveResult {
	select {
	case <-ctx.Done():
		return ProveResult{Result: ResultTimeout, Message: "cancelled"}
	default:
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		return ProveResult{Result: ResultTimeout, Message: "timeout"}
	}

	groundClauses, diagnostics := e.ground(clauses)
	for _, d := range diagnostics {
		e.logger.Warn("sat engine: clause dropped from grounding", zap.String("reason", d))
	}

	solver := gini.New()
	atomVars := assignVariables(solver, groundClauses)
	addGroundClauses(solver, groundClauses, atomVars)

	switch solver.Solve() {
	case -1:
		return ProveResult{Success: true, Result: ResultProved, Statistics: Statistics{Clauses: len(groundClauses), Variables: len(atomVars)}}
	case 1:
		witness := extractModel(solver, atomVars)
		return ProveResult{
			Success:    false,
			Result:     ResultFailed,
			Message:    "counter-model found",
			Bindings:   stringifyWitness(witness),
			Statistics: Statistics{Clauses: len(groundClauses), Variables: len(atomVars)},
		}
	default:
		return ProveResult{Result: ResultTimeout, Message: "sat kernel returned undetermined"}
	}
}

func stringifyWitness(model map[string]bool) map[string]string {
	out := make(map[string]string, len(model))
	for k, v := range model {
		if v {
			out[k] = "true"
		}
	}
	return out
}

// ground implements spec §4.4.3 step 4: collect constants (introducing
// a fresh one if none exist), then enumerate ground instances of every
// clause whose distinct-variable count is within maxGroundVars; clauses
// exceeding it are dropped from the ground set and reported as
// diagnostics rather than silently discarded.
func (e *SatEngine) ground(clauses ClauseSet) (ClauseSet, []string) {
	constants := collectConstants(clauses)
	if len(constants) == 0 {
		constants = []string{"c"}
	}

	var grounded ClauseSet
	var diagnostics []string
	for _, c := range clauses {
		vars := clauseVariables(c)
		if len(vars) == 0 {
			grounded = append(grounded, c)
			continue
		}
		if len(vars) > e.maxGroundVars {
			diagnostics = append(diagnostics, c.String())
			continue
		}
		for _, sub := range groundSubstitutions(vars, constants) {
			grounded = append(grounded, groundClause(c, sub))
		}
	}
	return grounded, diagnostics
}

func collectConstants(clauses ClauseSet) []string {
	seen := map[string]bool{}
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindConstant:
			seen[n.Name] = true
		case KindFunction, KindPredicate:
			for _, a := range n.Args {
				walk(a)
			}
		case KindEquals:
			walk(n.Left)
			walk(n.Right)
		}
	}
	for _, c := range clauses {
		for _, l := range c.Literals {
			walk(l.Atom)
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func clauseVariables(c Clause) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range c.Literals {
		for _, v := range FreeVariables(l.Atom) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

// groundSubstitutions enumerates the cartesian product of constants
// over vars.
func groundSubstitutions(vars []string, constants []string) []Subst {
	subs := []Subst{{}}
	for _, v := range vars {
		var next []Subst
		for _, s := range subs {
			for _, c := range constants {
				extended := make(Subst, len(s)+1)
				for k, val := range s {
					extended[k] = val
				}
				extended[v] = Const(c)
				next = append(next, extended)
			}
		}
		subs = next
	}
	return subs
}

func groundClause(c Clause, sub Subst) Clause {
	lits := make([]Literal, len(c.Literals))
	for i, l := range c.Literals {
		lits[i] = Literal{Atom: sub.Apply(l.Atom), Negated: l.Negated}
	}
	return Clause{Literals: lits}
}

// assignVariables allocates one gini literal per distinct ground atom
// (canonical key: pred(arg1,arg2,...) via the canonical printer, spec
// §4.4.3 step 5).
func assignVariables(solver *gini.Gini, clauses ClauseSet) map[string]z.Lit {
	vars := map[string]z.Lit{}
	for _, c := range clauses {
		for _, l := range c.Literals {
			key := CanonicalArgString(l.Atom)
			if _, ok := vars[key]; !ok {
				vars[key] = solver.Lit()
			}
		}
	}
	return vars
}

func addGroundClauses(solver *gini.Gini, clauses ClauseSet, vars map[string]z.Lit) {
	for _, c := range clauses {
		for _, l := range c.Literals {
			lit := vars[CanonicalArgString(l.Atom)]
			if l.Negated {
				lit = lit.Not()
			}
			solver.Add(lit)
		}
		solver.Add(z.LitNull)
	}
}

func extractModel(solver *gini.Gini, vars map[string]z.Lit) map[string]bool {
	model := make(map[string]bool, len(vars))
	for key, lit := range vars {
		model[key] = solver.Value(lit)
	}
	return model
}
