package apperr

import (
	"errors"
	"testing"
)

func TestIs_MatchesOnKindAlone(t *testing.T) {
	err := New(InsufficientData, "fewer than 100 samples")
	if !errors.Is(err, New(InsufficientData, "different reason")) {
		t.Errorf("expected errors.Is to match on Kind regardless of Reason")
	}
	if errors.Is(err, New(TrainingUnstable, "fewer than 100 samples")) {
		t.Errorf("expected errors.Is to not match across different Kinds")
	}
}

func TestKindOf_ExtractsKind(t *testing.T) {
	err := Wrap(UpstreamUnavailable, "circuit open", errors.New("boom"))
	kind, ok := KindOf(err)
	if !ok || kind != UpstreamUnavailable {
		t.Errorf("expected to extract UpstreamUnavailable, got %v, %v", kind, ok)
	}

	if _, ok := KindOf(errors.New("plain error")); ok {
		t.Errorf("expected KindOf to report false for a non-apperr error")
	}
}

func TestUnwrap_ExposesCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Wrap(StaleInputs, "data too old", cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to reach the wrapped cause")
	}
}

func TestEnvelope_AddReasonDowngradesStatus(t *testing.T) {
	var env Envelope
	env.Status = StatusOK
	env.AddReason("model X undefined")
	if env.Status != StatusDegraded {
		t.Errorf("expected AddReason to downgrade status to degraded, got %v", env.Status)
	}
	if len(env.Reasons) != 1 {
		t.Errorf("expected 1 reason recorded, got %d", len(env.Reasons))
	}
}

func TestEnvelope_FailSetsFailedStatus(t *testing.T) {
	var env Envelope
	env.Fail("catastrophic input error")
	if env.Status != StatusFailed {
		t.Errorf("expected Fail to set status to failed, got %v", env.Status)
	}
}
