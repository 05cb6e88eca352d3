package fol

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxSessions is the hard cap on live sessions (spec §5): a new
// session call fails with SESSION_LIMIT rather than evicting one.
const DefaultMaxSessions = 1000

// DefaultSessionTTL is the idle lifetime a session receives when its
// caller does not request one explicitly.
const DefaultSessionTTL = 30 * time.Minute

// defaultSweepInterval is how often the sweeper goroutine scans for
// expired sessions.
const defaultSweepInterval = time.Minute

// Session holds one client's accumulated premise list (spec §3). The
// session manager exclusively owns Session; clients hold only the id.
// SkolemEnv is held per session and reset by Retract and Clear; Prove
// does not pass it to the engine manager, whose engines each clausify
// with a fresh SkolemEnv on every call.
type Session struct {
	mu             sync.Mutex
	ID             string
	Premises       []*Node
	CreatedAt      time.Time
	LastAccessedAt time.Time
	TTL            time.Duration
	SkolemEnv      *SkolemEnv
	// Mode fixes which engine this session proves against. A session
	// bound to ModeSat reports RETRACTION_UNSUPPORTED (spec §4.4.5):
	// a real SAT/SMT back-end holds compiled incremental solver state
	// with no scoped pop, unlike the Horn engine which simply
	// re-clausifies its premise list fresh on every prove.
	Mode Mode
}

func (s *Session) touch() { s.LastAccessedAt = time.Now() }

func (s *Session) expired() bool {
	if s.TTL <= 0 {
		return false
	}
	return time.Since(s.LastAccessedAt) > s.TTL
}

// CreateOptions configures a new session (spec §6 `create({ttl?})`).
type CreateOptions struct {
	TTL  time.Duration
	Mode Mode
}

// SessionManager owns every live Session and runs the TTL sweeper (spec
// §3 Session lifetime, §5 "periodic sweeper for TTL expiry").
type SessionManager struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	maxSessions   int
	defaultTTL    time.Duration
	sweepInterval time.Duration
	manager       *EngineManager
	logger        *zap.Logger
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewSessionManager returns a SessionManager wired to manager and
// starts its sweeper goroutine. A nil logger is replaced with a no-op
// logger.
func NewSessionManager(manager *EngineManager, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SessionManager{
		sessions:      map[string]*Session{},
		maxSessions:   DefaultMaxSessions,
		defaultTTL:    DefaultSessionTTL,
		sweepInterval: defaultSweepInterval,
		manager:       manager,
		logger:        logger,
		stop:          make(chan struct{}),
	}
	go sm.sweepLoop()
	return sm
}

// Close stops the sweeper goroutine. Safe to call more than once.
func (sm *SessionManager) Close() {
	sm.stopOnce.Do(func() { close(sm.stop) })
}

func (sm *SessionManager) sweepLoop() {
	ticker := time.NewTicker(sm.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sm.sweepExpired()
		case <-sm.stop:
			return
		}
	}
}

func (sm *SessionManager) sweepExpired() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, s := range sm.sessions {
		s.mu.Lock()
		expired := s.expired()
		s.mu.Unlock()
		if expired {
			delete(sm.sessions, id)
			sm.logger.Debug("session swept on TTL expiry", zap.String("session", id))
		}
	}
}

// Create allocates a new session, failing with SESSION_LIMIT once
// maxSessions live sessions already exist (spec §3).
func (sm *SessionManager) Create(opts CreateOptions) (string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if len(sm.sessions) >= sm.maxSessions {
		return "", newError(SessionLimit, "session limit of %d reached", sm.maxSessions)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = sm.defaultTTL
	}
	now := time.Now()
	id := uuid.NewString()
	sm.sessions[id] = &Session{
		ID:             id,
		CreatedAt:      now,
		LastAccessedAt: now,
		TTL:            ttl,
		SkolemEnv:      NewSkolemEnv(),
		Mode:           opts.Mode,
	}
	return id, nil
}

func (sm *SessionManager) get(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	if !ok {
		return nil, newError(SessionNotFound, "session %q not found", id)
	}
	return s, nil
}

// Assert parses text and appends it to the session's premise list (spec
// §4.4.5: "performs syntax validation and appends; no re-clausification
// yet"). assert calls on one session are totally ordered by the
// session's own mutex (spec §5).
func (sm *SessionManager) Assert(id string, text string) error {
	sess, err := sm.get(id)
	if err != nil {
		return err
	}
	formula, perr := Parse(text)
	if perr != nil {
		return perr
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.Premises = append(sess.Premises, formula)
	sess.touch()
	return nil
}

// Retract removes the first premise structurally equal to text's parse
// and resets the session's SkolemEnv (spec §4.4.5). SAT-mode sessions
// report RETRACTION_UNSUPPORTED.
func (sm *SessionManager) Retract(id string, text string) error {
	sess, err := sm.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.Mode == ModeSat {
		return newError(RetractionUnsupported, "sat-mode sessions do not support scoped retraction")
	}
	formula, perr := Parse(text)
	if perr != nil {
		return perr
	}
	idx := -1
	for i, p := range sess.Premises {
		if p.Equal(formula) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return newError(ValidationError, "premise %q is not asserted in this session", text)
	}
	sess.Premises = append(append([]*Node{}, sess.Premises[:idx]...), sess.Premises[idx+1:]...)
	sess.SkolemEnv = NewSkolemEnv()
	sess.touch()
	return nil
}

// ListPremises returns the session's premises in assertion order, in
// their Prover9-style surface form.
func (sm *SessionManager) ListPremises(id string) ([]string, error) {
	sess, err := sm.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]string, len(sess.Premises))
	for i, p := range sess.Premises {
		out[i] = p.String()
	}
	return out, nil
}

// Clear empties the session's premise list and resets its SkolemEnv.
func (sm *SessionManager) Clear(id string) error {
	sess, err := sm.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.Premises = nil
	sess.SkolemEnv = NewSkolemEnv()
	sess.touch()
	return nil
}

// Delete destroys a session immediately.
func (sm *SessionManager) Delete(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.sessions[id]; !ok {
		return newError(SessionNotFound, "session %q not found", id)
	}
	delete(sm.sessions, id)
	return nil
}

// Prove parses goalText and delegates to the engine manager with the
// session's current premise snapshot and bound mode (spec §4.4.5:
// "concurrent prove calls... observe the premise list snapshot at call
// time; no mutation is visible mid-proof").
func (sm *SessionManager) Prove(ctx context.Context, id string, goalText string, opts *ProveOptions) (ProveResult, error) {
	sess, err := sm.get(id)
	if err != nil {
		return ProveResult{}, err
	}
	goal, perr := Parse(goalText)
	if perr != nil {
		return ProveResult{}, perr
	}
	sess.mu.Lock()
	premises := append([]*Node{}, sess.Premises...)
	mode := sess.Mode
	sess.touch()
	sess.mu.Unlock()

	return sm.manager.Prove(ctx, premises, goal, mode, opts), nil
}
