package fol

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mode selects how the EngineManager picks an engine for a Prove call
// (spec §4.4.4).
type Mode int

const (
	ModeAuto Mode = iota
	ModeHorn
	ModeSat
	ModeRace
)

// EngineManager selects or races engines based on formula shape (spec
// §4.4.4). It owns one instance of each engine and is safe for
// concurrent use: engines hold no mutable state of their own, only
// Sessions do.
type EngineManager struct {
	horn   Engine
	sat    Engine
	logger *zap.Logger
}

// NewEngineManager wires the Horn and SAT engines behind one manager. A
// nil logger is replaced with a no-op logger.
func NewEngineManager(logger *zap.Logger) *EngineManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngineManager{horn: NewHornEngine(logger), sat: NewSatEngine(logger), logger: logger}
}

// Prove selects an engine per mode and proves premises ⊢ conclusion
// (spec §4.4.4).
func (m *EngineManager) Prove(ctx context.Context, premises []*Node, conclusion *Node, mode Mode, opts *ProveOptions) ProveResult {
	opts = resolveProveOptions(opts)
	switch mode {
	case ModeHorn:
		return m.proveExplicit(ctx, m.horn, premises, conclusion, opts)
	case ModeSat:
		return m.proveExplicit(ctx, m.sat, premises, conclusion, opts)
	case ModeRace:
		return m.proveRace(ctx, premises, conclusion, opts)
	default:
		return m.proveAuto(ctx, premises, conclusion, opts)
	}
}

// proveExplicit bypasses engine selection; a clause-shape or goal-shape
// the chosen engine cannot service surfaces as CAPABILITY_MISMATCH
// rather than the engine's own internal error kind (spec §4.4.4).
func (m *EngineManager) proveExplicit(ctx context.Context, engine Engine, premises []*Node, conclusion *Node, opts *ProveOptions) ProveResult {
	result := engine.Prove(ctx, premises, conclusion, opts)
	if result.Err != nil && (result.Err.Kind == NonHorn || result.Err.Kind == UniversalGoal) {
		return ProveResult{
			Result: ResultError,
			Err:    wrapError(CapabilityMismatch, result.Err, "%s engine cannot service this input", engine.Name()),
		}
	}
	return result
}

// proveAuto picks horn when every clausified premise is Horn and the
// goal is quantifier-free, else sat (spec §4.4.4).
func (m *EngineManager) proveAuto(ctx context.Context, premises []*Node, conclusion *Node, opts *ProveOptions) ProveResult {
	env := NewSkolemEnv()
	var clauses ClauseSet
	for _, p := range premises {
		cs, err := Clausify(Normalize(p, env), opts.Strategy, nil)
		if err != nil {
			fe, _ := AsFolError(err)
			return ProveResult{Result: ResultError, Err: fe}
		}
		clauses = append(clauses, cs...)
	}
	if clauses.IsHorn() && !containsQuantifier(conclusion) {
		m.logger.Debug("engine manager: auto selected horn")
		return m.horn.Prove(ctx, premises, conclusion, opts)
	}
	m.logger.Debug("engine manager: auto selected sat")
	return m.sat.Prove(ctx, premises, conclusion, opts)
}

// proveRace launches both engines concurrently; the first to return
// proved or failed (never error) wins and the other is cancelled (spec
// §4.4.4, §5).
func (m *EngineManager) proveRace(ctx context.Context, premises []*Node, conclusion *Node, opts *ProveOptions) ProveResult {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result ProveResult
		from   string
	}
	outcomes := make(chan outcome, 2)

	var g errgroup.Group
	g.Go(func() error {
		outcomes <- outcome{m.horn.Prove(raceCtx, premises, conclusion, opts), "horn"}
		return nil
	})
	g.Go(func() error {
		outcomes <- outcome{m.sat.Prove(raceCtx, premises, conclusion, opts), "sat"}
		return nil
	})

	var last ProveResult
	for i := 0; i < 2; i++ {
		o := <-outcomes
		if o.result.Result == ResultProved || o.result.Result == ResultFailed {
			m.logger.Debug("engine manager: race won", zap.String("engine", o.from))
			cancel()
			return o.result
		}
		last = o.result
	}
	return last
}

// CheckSat selects horn or sat the same way Prove's auto mode does,
// based purely on clause shape.
func (m *EngineManager) CheckSat(ctx context.Context, clauses ClauseSet) SatResult {
	if clauses.IsHorn() {
		return m.horn.CheckSat(ctx, clauses)
	}
	return m.sat.CheckSat(ctx, clauses)
}

func containsQuantifier(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindForall, KindExists:
		return true
	case KindNot:
		return containsQuantifier(n.Operand)
	case KindAnd, KindOr, KindImplies, KindIff:
		return containsQuantifier(n.Left) || containsQuantifier(n.Right)
	default:
		return false
	}
}
