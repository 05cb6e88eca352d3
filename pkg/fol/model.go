package fol

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gokfol/fol/internal/parallel"
)

// DefaultMaxDomainSize is the ceiling findModel sweeps up to when the
// caller does not pin an exact domain size (spec §5).
const DefaultMaxDomainSize = 10

// isomorphismCeiling is the domain size beyond which isomorphism
// rejection is skipped: n! becomes intractable past n=8 (spec §9).
const isomorphismCeiling = 8

// enumerationBudget caps the number of candidate interpretations
// evaluated per domain size, mirroring the clausifier's node budget
// (spec §9 "a concrete budget gates blow-up"). Exceeding it does not
// fail the search; it simply stops exploring that size.
const enumerationBudget = 2_000_000

// Model is one finite interpretation over {0,...,DomainSize-1} (spec
// §4.5). Function and predicate tables are keyed by the comma-joined
// decimal arguments of the tuple they interpret.
type Model struct {
	DomainSize int
	Constants  map[string]int
	Functions  map[string]map[string]int
	Predicates map[string]map[string]bool
}

func newModel(n int) *Model {
	return &Model{
		DomainSize: n,
		Constants:  map[string]int{},
		Functions:  map[string]map[string]int{},
		Predicates: map[string]map[string]bool{},
	}
}

func tupleKey(args []int) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}

func (m *Model) evalFunction(name string, args []int) int {
	table, ok := m.Functions[name]
	if !ok {
		return 0
	}
	v, ok := table[tupleKey(args)]
	if !ok {
		return 0
	}
	return v
}

func (m *Model) evalPredicate(name string, args []int) bool {
	set, ok := m.Predicates[name]
	if !ok {
		return false
	}
	return set[tupleKey(args)]
}

// evalTerm evaluates a term to a domain element under assignment (spec
// §4.5 "equality compares domain integers").
func evalTerm(n *Node, m *Model, assignment map[string]int) int {
	switch n.Kind {
	case KindVariable:
		return assignment[n.Name]
	case KindConstant:
		return m.Constants[n.Name]
	case KindFunction:
		args := make([]int, len(n.Args))
		for i, a := range n.Args {
			args[i] = evalTerm(a, m, assignment)
		}
		return m.evalFunction(n.Name, args)
	default:
		return 0
	}
}

// satisfies evaluates a formula under m by structural recursion, folding
// quantifiers over the full domain (spec §4.5 step d).
func satisfies(n *Node, m *Model, assignment map[string]int) bool {
	switch n.Kind {
	case KindPredicate:
		args := make([]int, len(n.Args))
		for i, a := range n.Args {
			args[i] = evalTerm(a, m, assignment)
		}
		return m.evalPredicate(n.Name, args)
	case KindEquals:
		return evalTerm(n.Left, m, assignment) == evalTerm(n.Right, m, assignment)
	case KindNot:
		return !satisfies(n.Operand, m, assignment)
	case KindAnd:
		return satisfies(n.Left, m, assignment) && satisfies(n.Right, m, assignment)
	case KindOr:
		return satisfies(n.Left, m, assignment) || satisfies(n.Right, m, assignment)
	case KindImplies:
		return !satisfies(n.Left, m, assignment) || satisfies(n.Right, m, assignment)
	case KindIff:
		return satisfies(n.Left, m, assignment) == satisfies(n.Right, m, assignment)
	case KindForall:
		for v := 0; v < m.DomainSize; v++ {
			extended := extendAssignment(assignment, n.Var, v)
			if !satisfies(n.Body, m, extended) {
				return false
			}
		}
		return true
	case KindExists:
		for v := 0; v < m.DomainSize; v++ {
			extended := extendAssignment(assignment, n.Var, v)
			if satisfies(n.Body, m, extended) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func extendAssignment(a map[string]int, v string, value int) map[string]int {
	out := make(map[string]int, len(a)+1)
	for k, val := range a {
		out[k] = val
	}
	out[v] = value
	return out
}

// ModelOptions configures findModel/findCounterexample (spec §6).
type ModelOptions struct {
	// DomainSize pins the search to a single size. Zero means sweep
	// 1..MaxDomainSize.
	DomainSize int
	// MaxDomainSize bounds the sweep (default 10).
	MaxDomainSize int
	// EnableSymmetry applies the least-number heuristic to constant
	// assignment (default true). Disabling it falls back to the naive
	// n^k enumeration (spec §8 invariant 6 only holds when enabled).
	EnableSymmetry bool
	// Count is how many non-isomorphic models are returned (default 1).
	// Every domain size in the sweep is searched in full; the search
	// does not stop once Count models have been found.
	Count int
	// Timeout bounds total search wall-clock time.
	Timeout time.Duration
}

// DefaultModelOptions returns the spec's defaults (§5).
func DefaultModelOptions() *ModelOptions {
	return &ModelOptions{
		MaxDomainSize:  DefaultMaxDomainSize,
		EnableSymmetry: true,
		Count:          1,
		Timeout:        10 * time.Second,
	}
}

func resolveModelOptions(opts *ModelOptions) *ModelOptions {
	if opts == nil {
		return DefaultModelOptions()
	}
	out := *opts
	if out.MaxDomainSize <= 0 {
		out.MaxDomainSize = DefaultMaxDomainSize
	}
	if out.Count <= 0 {
		out.Count = 1
	}
	if out.Timeout <= 0 {
		out.Timeout = 10 * time.Second
	}
	return &out
}

// ModelResult is the outcome of findModel/findCounterexample (spec §6).
type ModelResult struct {
	Success          bool
	Result           SatResultKind
	Model            *Model
	Models           []*Model
	Interpretation   string
	IsCounterexample bool
	Statistics       Statistics
	Err              *Error
}

// ModelFinder enumerates finite interpretations per spec §4.5: for each
// candidate domain size, it applies the least-number heuristic to
// constant assignment, enumerates every function table and predicate
// extension, and structurally evaluates every formula against the
// resulting interpretation.
type ModelFinder struct {
	logger *zap.Logger
}

// NewModelFinder returns a ModelFinder. A nil logger is replaced with a
// no-op logger.
func NewModelFinder(logger *zap.Logger) *ModelFinder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelFinder{logger: logger}
}

// FindModel searches for interpretations satisfying every formula in
// formulas (spec §4.5). The domain-size sweep runs on the adapted
// internal/parallel worker pool (SPEC_FULL.md §B); sizes complete out of
// order, so results are re-sorted by size before trimming to Count.
func (f *ModelFinder) FindModel(ctx context.Context, formulas []*Node, opts *ModelOptions) ModelResult {
	start := time.Now()
	opts = resolveModelOptions(opts)
	deadline := time.Now().Add(opts.Timeout)

	sig := ExtractSignature(formulas...)
	constantNames := sig.ConstantNames()
	functionNames, functionArity := sortedArityNames(sig.Functions)
	predicateNames, predicateArity := sortedArityNames(sig.Predicates)

	sizes := sizesToSearch(opts)

	type sizeOutcome struct {
		size   int
		models []*Model
	}
	outcomes := make([]sizeOutcome, len(sizes))

	pool := parallel.NewWorkerPool(0)
	var wg sync.WaitGroup
	for i, n := range sizes {
		i, n := i, n
		wg.Add(1)
		submitErr := pool.Submit(ctx, func() {
			defer wg.Done()
			found := f.searchSize(ctx, formulas, n, constantNames, functionNames, functionArity, predicateNames, predicateArity, opts, deadline)
			outcomes[i] = sizeOutcome{size: n, models: found}
		})
		if submitErr != nil {
			wg.Done()
		}
	}
	wg.Wait()
	pool.Shutdown()
	f.logger.Debug("model finder: sweep complete", zap.String("stats", pool.GetStats().String()))

	var searched []int
	var distinct []*Model
	for _, o := range outcomes {
		searched = append(searched, o.size)
		for _, m := range o.models {
			if opts.EnableSymmetry && m.DomainSize <= isomorphismCeiling && anyIsomorphic(distinct, m) {
				continue
			}
			distinct = append(distinct, m)
		}
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i].DomainSize < distinct[j].DomainSize })
	if len(distinct) > opts.Count {
		distinct = distinct[:opts.Count]
	}

	stats := Statistics{TimeMs: time.Since(start).Milliseconds(), SearchedSizes: searched}
	if len(distinct) == 0 {
		return ModelResult{Success: false, Result: ModelResultNone, Statistics: stats}
	}
	stats.DomainSize = distinct[0].DomainSize
	return ModelResult{
		Success:        true,
		Result:         ModelResultFound,
		Model:          distinct[0],
		Models:         distinct,
		Interpretation: CanonicalModelString(distinct[0]),
		Statistics:     stats,
	}
}

// FindCounterexample is findModel(premises ∪ {¬conclusion}) with the
// result flagged as a counter-example witness (spec §4.5).
func (f *ModelFinder) FindCounterexample(ctx context.Context, premises []*Node, conclusion *Node, opts *ModelOptions) ModelResult {
	formulas := append(append([]*Node{}, premises...), Not(conclusion))
	result := f.FindModel(ctx, formulas, opts)
	result.IsCounterexample = true
	return result
}

func sizesToSearch(opts *ModelOptions) []int {
	if opts.DomainSize > 0 {
		return []int{opts.DomainSize}
	}
	sizes := make([]int, opts.MaxDomainSize)
	for i := range sizes {
		sizes[i] = i + 1
	}
	return sizes
}

func sortedArityNames(m map[string]int) ([]string, map[string]int) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, m
}

// searchSize enumerates every candidate interpretation at domain size n
// and returns every one under which all of formulas holds (spec §4.5
// steps 2a-2d), honouring both the enumeration budget and the caller's
// deadline/context.
func (f *ModelFinder) searchSize(ctx context.Context, formulas []*Node, n int, constantNames, functionNames []string, functionArity map[string]int, predicateNames []string, predicateArity map[string]int, opts *ModelOptions, deadline time.Time) []*Model {
	constantAssignments := enumerateConstantAssignments(len(constantNames), n, opts.EnableSymmetry)

	var functionTableLists [][]map[string]int
	for _, name := range functionNames {
		functionTableLists = append(functionTableLists, enumerateFunctionTables(functionArity[name], n))
	}
	var predicateSetLists [][]map[string]bool
	for _, name := range predicateNames {
		predicateSetLists = append(predicateSetLists, enumeratePredicateSets(predicateArity[name], n))
	}

	var found []*Model
	budget := 0
	stopped := false

	var assignFunctions func(fi int, m *Model) bool
	var assignPredicates func(pi int, m *Model) bool

	evaluate := func(m *Model) bool {
		if stopped {
			return false
		}
		budget++
		if budget > enumerationBudget {
			return false
		}
		if budget%4096 == 0 {
			select {
			case <-ctx.Done():
				stopped = true
				return false
			default:
			}
			if time.Now().After(deadline) {
				stopped = true
				return false
			}
		}
		for _, phi := range formulas {
			if !satisfies(phi, m, map[string]int{}) {
				return false
			}
		}
		return true
	}

	assignPredicates = func(pi int, m *Model) bool {
		if pi == len(predicateNames) {
			if evaluate(m) {
				clone := cloneModel(m)
				found = append(found, clone)
			}
			return budget <= enumerationBudget && !stopped
		}
		for _, set := range predicateSetLists[pi] {
			m.Predicates[predicateNames[pi]] = set
			if !assignPredicates(pi+1, m) {
				return false
			}
		}
		return true
	}

	assignFunctions = func(fi int, m *Model) bool {
		if fi == len(functionNames) {
			return assignPredicates(0, m)
		}
		for _, table := range functionTableLists[fi] {
			m.Functions[functionNames[fi]] = table
			if !assignFunctions(fi+1, m) {
				return false
			}
		}
		return true
	}

	for _, assignment := range constantAssignments {
		m := newModel(n)
		for i, name := range constantNames {
			m.Constants[name] = assignment[i]
		}
		if !assignFunctions(0, m) {
			break
		}
	}

	if budget > enumerationBudget {
		f.logger.Warn("model finder: enumeration budget exhausted", zap.Int("domainSize", n), zap.Int("budget", enumerationBudget))
	}
	return found
}

func cloneModel(m *Model) *Model {
	out := newModel(m.DomainSize)
	for k, v := range m.Constants {
		out.Constants[k] = v
	}
	for k, v := range m.Functions {
		table := make(map[string]int, len(v))
		for tk, tv := range v {
			table[tk] = tv
		}
		out.Functions[k] = table
	}
	for k, v := range m.Predicates {
		set := make(map[string]bool, len(v))
		for tk, tv := range v {
			set[tk] = tv
		}
		out.Predicates[k] = set
	}
	return out
}

// enumerateConstantAssignments implements the least-number heuristic
// (spec §4.5 step 2a, §8 invariant 6): the k-th constant may take any
// value in {0..max_used+1}, capped at n-1, producing one assignment per
// partition of the k constants into at most n blocks (B(k) assignments
// when k <= n) instead of n^k. When symmetry is disabled it falls back
// to the naive cartesian product.
func enumerateConstantAssignments(k, n int, symmetry bool) [][]int {
	if k == 0 {
		return [][]int{{}}
	}
	var out [][]int
	current := make([]int, k)
	if symmetry {
		var assign func(i, maxUsed int)
		assign = func(i, maxUsed int) {
			if i == k {
				out = append(out, append([]int{}, current...))
				return
			}
			limit := maxUsed + 1
			if limit > n-1 {
				limit = n - 1
			}
			for v := 0; v <= limit; v++ {
				current[i] = v
				next := maxUsed
				if v > next {
					next = v
				}
				assign(i+1, next)
			}
		}
		assign(0, -1)
		return out
	}
	var assign func(i int)
	assign = func(i int) {
		if i == k {
			out = append(out, append([]int{}, current...))
			return
		}
		for v := 0; v < n; v++ {
			current[i] = v
			assign(i + 1)
		}
	}
	assign(0)
	return out
}

// allTuples enumerates every arity-length tuple over {0..n-1}.
func allTuples(arity, n int) [][]int {
	if arity == 0 {
		return [][]int{{}}
	}
	var out [][]int
	current := make([]int, arity)
	var assign func(i int)
	assign = func(i int) {
		if i == arity {
			out = append(out, append([]int{}, current...))
			return
		}
		for v := 0; v < n; v++ {
			current[i] = v
			assign(i + 1)
		}
	}
	assign(0)
	return out
}

// enumerateFunctionTables returns every total function {0..n-1}^arity ->
// {0..n-1} (spec §4.5 step 2b).
func enumerateFunctionTables(arity, n int) []map[string]int {
	tuples := allTuples(arity, n)
	keys := make([]string, len(tuples))
	for i, t := range tuples {
		keys[i] = tupleKey(t)
	}
	var out []map[string]int
	values := make([]int, len(keys))
	var assign func(i int)
	assign = func(i int) {
		if i == len(keys) {
			table := make(map[string]int, len(keys))
			for j, k := range keys {
				table[k] = values[j]
			}
			out = append(out, table)
			return
		}
		for v := 0; v < n; v++ {
			values[i] = v
			assign(i + 1)
		}
	}
	assign(0)
	return out
}

// enumeratePredicateSets returns every subset of {0..n-1}^arity (spec
// §4.5 step 2c).
func enumeratePredicateSets(arity, n int) []map[string]bool {
	tuples := allTuples(arity, n)
	keys := make([]string, len(tuples))
	for i, t := range tuples {
		keys[i] = tupleKey(t)
	}
	var out []map[string]bool
	present := make([]bool, len(keys))
	var assign func(i int)
	assign = func(i int) {
		if i == len(keys) {
			set := make(map[string]bool, len(keys))
			for j, k := range keys {
				if present[j] {
					set[k] = true
				}
			}
			out = append(out, set)
			return
		}
		for _, v := range [...]bool{false, true} {
			present[i] = v
			assign(i + 1)
		}
	}
	assign(0)
	return out
}

// anyIsomorphic reports whether candidate is isomorphic to any model
// already in found (spec §4.5 step 2e). Brute-force over all n!
// permutations of the domain; only called for domain sizes within
// isomorphismCeiling.
func anyIsomorphic(found []*Model, candidate *Model) bool {
	for _, existing := range found {
		if isomorphic(existing, candidate) {
			return true
		}
	}
	return false
}

func isomorphic(a, b *Model) bool {
	if a.DomainSize != b.DomainSize {
		return false
	}
	n := a.DomainSize
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	matched := false
	permute(perm, 0, func(p []int) bool {
		if modelMatchesUnderPermutation(a, b, p) {
			matched = true
			return false
		}
		return true
	})
	return matched
}

// permute invokes visit on every permutation of perm in place
// (recursive swap-and-restore enumeration), stopping early when visit
// returns false.
func permute(perm []int, k int, visit func([]int) bool) bool {
	if k == len(perm) {
		return visit(perm)
	}
	if !permute(perm, k+1, visit) {
		return false
	}
	for i := k + 1; i < len(perm); i++ {
		perm[k], perm[i] = perm[i], perm[k]
		if !permute(perm, k+1, visit) {
			return false
		}
		perm[k], perm[i] = perm[i], perm[k]
	}
	return true
}

// modelMatchesUnderPermutation checks whether relabelling a's domain
// elements by perm (perm[x] is x's image) reproduces b exactly.
func modelMatchesUnderPermutation(a, b *Model, perm []int) bool {
	for name, v := range a.Constants {
		if perm[v] != b.Constants[name] {
			return false
		}
	}
	for name, table := range a.Functions {
		bTable := b.Functions[name]
		for key, v := range table {
			args := parseTupleKey(key)
			permArgs := make([]int, len(args))
			for i, x := range args {
				permArgs[i] = perm[x]
			}
			if bTable[tupleKey(permArgs)] != perm[v] {
				return false
			}
		}
	}
	for name, set := range a.Predicates {
		bSet := b.Predicates[name]
		aHeld := 0
		for key, held := range set {
			if !held {
				continue
			}
			aHeld++
			args := parseTupleKey(key)
			permArgs := make([]int, len(args))
			for i, x := range args {
				permArgs[i] = perm[x]
			}
			if !bSet[tupleKey(permArgs)] {
				return false
			}
		}
		bHeld := 0
		for _, held := range bSet {
			if held {
				bHeld++
			}
		}
		if aHeld != bHeld {
			return false
		}
	}
	return true
}

func parseTupleKey(key string) []int {
	if key == "" {
		return nil
	}
	parts := strings.Split(key, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			panic(fmt.Sprintf("model: malformed tuple key %q", key))
		}
		out[i] = v
	}
	return out
}
