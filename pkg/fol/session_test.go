package fol

import (
	"context"
	"testing"
	"time"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	sm := NewSessionManager(NewEngineManager(nil), nil)
	t.Cleanup(sm.Close)
	return sm
}

func TestSessionAssertProveRetract(t *testing.T) {
	sm := newTestSessionManager(t)
	id, err := sm.Create(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if err := sm.Assert(id, "all x (Man(x) -> Mortal(x))"); err != nil {
		t.Fatal(err)
	}
	if err := sm.Assert(id, "Man(socrates)"); err != nil {
		t.Fatal(err)
	}

	result, err := sm.Prove(context.Background(), id, "Mortal(socrates)", DefaultProveOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected Mortal(socrates) to be provable, got %+v", result)
	}

	if err := sm.Retract(id, "Man(socrates)"); err != nil {
		t.Fatal(err)
	}
	result, err = sm.Prove(context.Background(), id, "Mortal(socrates)", DefaultProveOptions())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatalf("expected Mortal(socrates) to no longer be provable after retracting Man(socrates)")
	}
}

func TestSessionRetractUnknownPremiseIsValidationError(t *testing.T) {
	sm := newTestSessionManager(t)
	id, err := sm.Create(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	err = sm.Retract(id, "Man(socrates)")
	if err == nil {
		t.Fatal("expected an error retracting a premise that was never asserted")
	}
	fe, ok := AsFolError(err)
	if !ok || fe.Kind != ValidationError {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSessionSatModeRejectsRetraction(t *testing.T) {
	sm := newTestSessionManager(t)
	id, err := sm.Create(CreateOptions{Mode: ModeSat})
	if err != nil {
		t.Fatal(err)
	}
	if err := sm.Assert(id, "Man(socrates)"); err != nil {
		t.Fatal(err)
	}
	err = sm.Retract(id, "Man(socrates)")
	fe, ok := AsFolError(err)
	if !ok || fe.Kind != RetractionUnsupported {
		t.Fatalf("expected RETRACTION_UNSUPPORTED for a sat-mode session, got %v", err)
	}
}

func TestSessionNotFound(t *testing.T) {
	sm := newTestSessionManager(t)
	_, err := sm.ListPremises("does-not-exist")
	fe, ok := AsFolError(err)
	if !ok || fe.Kind != SessionNotFound {
		t.Fatalf("expected SESSION_NOT_FOUND, got %v", err)
	}
}

func TestSessionLimitEnforced(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.maxSessions = 2

	if _, err := sm.Create(CreateOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := sm.Create(CreateOptions{}); err != nil {
		t.Fatal(err)
	}
	_, err := sm.Create(CreateOptions{})
	fe, ok := AsFolError(err)
	if !ok || fe.Kind != SessionLimit {
		t.Fatalf("expected SESSION_LIMIT once the cap is reached, got %v", err)
	}
}

func TestSessionClearEmptiesPremises(t *testing.T) {
	sm := newTestSessionManager(t)
	id, _ := sm.Create(CreateOptions{})
	if err := sm.Assert(id, "Man(socrates)"); err != nil {
		t.Fatal(err)
	}
	if err := sm.Clear(id); err != nil {
		t.Fatal(err)
	}
	premises, err := sm.ListPremises(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(premises) != 0 {
		t.Errorf("expected no premises after Clear, got %v", premises)
	}
}

func TestSessionDeleteThenNotFound(t *testing.T) {
	sm := newTestSessionManager(t)
	id, _ := sm.Create(CreateOptions{})
	if err := sm.Delete(id); err != nil {
		t.Fatal(err)
	}
	if err := sm.Assert(id, "Man(socrates)"); err == nil {
		t.Fatal("expected asserting against a deleted session to fail")
	}
}

func TestSessionSweepExpiresIdleSessions(t *testing.T) {
	sm := newTestSessionManager(t)
	id, err := sm.Create(CreateOptions{TTL: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	sm.sweepExpired()

	_, err = sm.ListPremises(id)
	fe, ok := AsFolError(err)
	if !ok || fe.Kind != SessionNotFound {
		t.Fatalf("expected the idle session to be swept and report SESSION_NOT_FOUND, got %v", err)
	}
}
