package fol

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// hornSession is the HornEngine's EngineSession implementation (spec
// §4.4.5): a mutex-guarded premise list reclausified fresh on every
// Prove call, which is also why retract needs no special-case handling
// here (the SAT engine offers no EngineSession at all).
type hornSession struct {
	mu       sync.Mutex
	engine   *HornEngine
	premises []*Node
	closed   bool
}

func newHornSession(logger *zap.Logger) *hornSession {
	return &hornSession{engine: NewHornEngine(logger)}
}

func (s *hornSession) Assert(formula *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return newError(SessionNotFound, "session is closed")
	}
	s.premises = append(s.premises, formula)
	return nil
}

func (s *hornSession) Retract(formula *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return newError(SessionNotFound, "session is closed")
	}
	idx := -1
	for i, p := range s.premises {
		if p.Equal(formula) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return newError(ValidationError, "formula is not asserted in this session")
	}
	s.premises = append(append([]*Node{}, s.premises[:idx]...), s.premises[idx+1:]...)
	return nil
}

func (s *hornSession) Prove(ctx context.Context, goal *Node, opts *ProveOptions) ProveResult {
	s.mu.Lock()
	premises := append([]*Node{}, s.premises...)
	s.mu.Unlock()
	return s.engine.Prove(ctx, premises, goal, opts)
}

func (s *hornSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.premises = nil
	return nil
}
