package fol

import (
	"context"
	"time"
)

// Verbosity selects how much of a ProveResult/ModelResult is populated
// at the API boundary (spec §6). Statistics and intermediate detail are
// always collected internally; Verbosity only controls what survives
// Trim.
type Verbosity int

const (
	VerbosityMinimal Verbosity = iota
	VerbosityStandard
	VerbosityDetailed
)

// ResultKind is the outcome variant of a prove call (spec §4.4.1, §7).
type ResultKind string

const (
	ResultProved  ResultKind = "proved"
	ResultFailed  ResultKind = "failed"
	ResultTimeout ResultKind = "timeout"
	ResultError   ResultKind = "error"
)

// SatResultKind is the outcome variant of a findModel/findCounterexample
// call (ModelResult.Result).
type SatResultKind string

const (
	ModelResultFound   SatResultKind = "model_found"
	ModelResultNone    SatResultKind = "no_model"
	ModelResultTimeout SatResultKind = "timeout"
	ModelResultError   SatResultKind = "error"
)

// Statistics is always populated internally and trimmed by Verbosity at
// the boundary (SPEC_FULL supplement 1, grounded on
// internal/parallel.ExecutionStats's "always collect, format on
// demand").
type Statistics struct {
	TimeMs        int64
	Inferences    int
	Clauses       int
	Variables     int
	DomainSize    int
	SearchedSizes []int
}

// InferenceStep records one resolution/derivation step for detailed
// verbosity diagnostics.
type InferenceStep struct {
	Description string
	Clause      string
}

// ProveResult is the outcome of a prove call (spec §6).
type ProveResult struct {
	Success        bool
	Result         ResultKind
	Message        string
	EngineUsed     string
	Bindings       map[string]string
	Proof          []string
	Statistics     Statistics
	InferenceSteps []InferenceStep
	Err            *Error
}

// Trim returns a copy of r with fields dropped per v (spec §6: minimal
// keeps only success/result; standard additionally omits proof,
// inferenceSteps, and detailed statistics).
func (r ProveResult) Trim(v Verbosity) ProveResult {
	switch v {
	case VerbosityMinimal:
		return ProveResult{Success: r.Success, Result: r.Result}
	case VerbosityStandard:
		out := r
		out.Proof = nil
		out.InferenceSteps = nil
		out.Statistics = Statistics{TimeMs: r.Statistics.TimeMs}
		return out
	default:
		return r
	}
}

// SatResult is the outcome of a checkSat call (spec §4.4.1).
type SatResult struct {
	Sat        bool
	Model      map[string]bool
	Statistics Statistics
	Err        *Error
}

// EngineCapabilities lets the manager consult what an engine supports
// before selecting it (spec §4.4.1; SPEC_FULL supplement 4, grounded on
// the teacher's ModelConstraint capability-describing interface).
type EngineCapabilities struct {
	Horn       bool
	FullFOL    bool
	Equality   bool
	Arithmetic bool
	Streaming  bool
}

// ProveOptions configures a prove call (spec §6).
type ProveOptions struct {
	Strategy         Strategy
	MaxInferences    int
	MaxSeconds       float64
	EnableEquality   bool
	EnableArithmetic bool
	Verbosity        Verbosity
}

// DefaultProveOptions returns the "standard power" defaults (spec §5):
// maxInferences 1000, maxSeconds 10.
func DefaultProveOptions() *ProveOptions {
	return &ProveOptions{
		Strategy:      StrategyStandard,
		MaxInferences: 1000,
		MaxSeconds:    10,
		Verbosity:     VerbosityStandard,
	}
}

// HighPowerProveOptions returns the "high power" defaults (spec §5):
// maxInferences 100000, maxSeconds 300.
func HighPowerProveOptions() *ProveOptions {
	opts := DefaultProveOptions()
	opts.MaxInferences = 100_000
	opts.MaxSeconds = 300
	return opts
}

func (o *ProveOptions) deadline() time.Time {
	if o == nil || o.MaxSeconds <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(o.MaxSeconds * float64(time.Second)))
}

// Engine is the uniform contract every reasoning back-end implements
// (spec §4.4.1).
type Engine interface {
	Name() string
	Capabilities() EngineCapabilities
	Prove(ctx context.Context, premises []*Node, conclusion *Node, opts *ProveOptions) ProveResult
	CheckSat(ctx context.Context, clauses ClauseSet) SatResult
	// Session returns a fresh EngineSession, or (nil, false) if the
	// engine does not support incremental/scoped state.
	Session() (EngineSession, bool)
}

// EngineSession is the optional incremental-state extension of Engine
// (spec §4.4.1, §4.4.5).
type EngineSession interface {
	Assert(formula *Node) error
	Retract(formula *Node) error
	Prove(ctx context.Context, goal *Node, opts *ProveOptions) ProveResult
	Close() error
}
