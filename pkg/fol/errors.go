package fol

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the error conditions this package can raise (spec
// §7). Callers switch on Error.Kind (via AsFolError) rather than on error
// strings.
type ErrorKind int

const (
	// ParseError covers lexical and syntactic failures in Parse.
	ParseError ErrorKind = iota
	// ValidationError covers well-formed input that the requested
	// operation cannot accept, such as retracting a premise that was
	// never asserted.
	ValidationError
	// ClausificationBlowup fires when CNF distribution would exceed the
	// configured node budget (§4.3, §9).
	ClausificationBlowup
	// ClausificationFailed covers clausifier-internal failures other than
	// a budget blowup (malformed input after normalisation, for example).
	ClausificationFailed
	// Timeout fires when an engine or the clausifier exceeds its
	// configured wall-clock budget.
	Timeout
	// InferenceLimitExceeded fires when the Horn engine's resolution-step
	// counter exceeds its configured ceiling before reaching a proof.
	InferenceLimitExceeded
	// NonHorn fires when a clause set requested against the Horn engine
	// contains a clause with more than one positive literal.
	NonHorn
	// UniversalGoal fires when a prove goal itself contains a universal
	// quantifier reachable only by the Horn engine (spec §9 Open
	// Question: Horn engine always raises this and lets the manager fall
	// through to SAT rather than attempting a partial translation).
	UniversalGoal
	// CapabilityMismatch fires when an explicitly selected engine cannot
	// service a request (e.g. "horn" selected against a non-Horn clause
	// set or a universally-quantified goal).
	CapabilityMismatch
	// RetractionUnsupported fires when a session's active engine has no
	// scoped-pop mechanism for the premise being retracted.
	RetractionUnsupported
	// SessionNotFound fires when a session ID does not resolve to a live
	// session (expired, swept, or never created).
	SessionNotFound
	// SessionLimit fires when session creation would exceed MAX_SESSIONS.
	SessionLimit
	// EngineInternal covers anything else: a recovered panic inside a
	// worker, an invariant violated deep in the search, and so on.
	EngineInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "PARSE_ERROR"
	case ValidationError:
		return "VALIDATION_ERROR"
	case ClausificationBlowup:
		return "CLAUSIFICATION_BLOWUP"
	case ClausificationFailed:
		return "CLAUSIFICATION_FAILED"
	case Timeout:
		return "TIMEOUT"
	case InferenceLimitExceeded:
		return "INFERENCE_LIMIT_EXCEEDED"
	case NonHorn:
		return "NON_HORN"
	case UniversalGoal:
		return "UNIVERSAL_GOAL"
	case CapabilityMismatch:
		return "CAPABILITY_MISMATCH"
	case RetractionUnsupported:
		return "RETRACTION_UNSUPPORTED"
	case SessionNotFound:
		return "SESSION_NOT_FOUND"
	case SessionLimit:
		return "SESSION_LIMIT"
	case EngineInternal:
		return "ENGINE_INTERNAL"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Position marks a location in source text, used by PARSE_ERROR.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p *Position) String() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is the one error type every exported operation in this package
// returns. It carries a closed Kind, a human-readable Message, an
// optional source Position, and an optional wrapped Cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     *Position
	Cause   error
}

func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// newError builds an *Error with no position or cause.
func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// newErrorAt builds an *Error positioned at pos.
func newErrorAt(kind ErrorKind, pos Position, format string, args ...any) *Error {
	p := pos
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: &p}
}

// wrapError builds an *Error wrapping cause.
func wrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// AsFolError reports whether err is (or wraps) an *Error, returning it.
func AsFolError(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}
