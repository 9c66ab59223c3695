package lock

import (
	"testing"
	"time"
)

func TestAcquire_SerialisesSameScope(t *testing.T) {
	reg := NewRegistry()
	release := reg.Acquire("industry:software")

	acquired := make(chan struct{})
	go func() {
		r := reg.Acquire("industry:software")
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatalf("expected the second Acquire for the same scope to block")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("expected the second Acquire to proceed after release")
	}
}

func TestAcquire_DifferentScopesNeverBlock(t *testing.T) {
	reg := NewRegistry()
	releaseA := reg.Acquire("industry:software")
	defer releaseA()

	done := make(chan struct{})
	go func() {
		r := reg.Acquire("industry:healthcare")
		defer r()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected a different scope to acquire without blocking")
	}
}

func TestTryAcquire_FailsWhenHeld(t *testing.T) {
	reg := NewRegistry()
	release := reg.Acquire("global")
	defer release()

	_, ok := reg.TryAcquire("global")
	if ok {
		t.Errorf("expected TryAcquire to fail while the scope is held")
	}
}

func TestRelease_IsIdempotent(t *testing.T) {
	reg := NewRegistry()
	release := reg.Acquire("global")
	release()
	release() // must not panic or double-unlock
}
