// Package apperr defines the typed error kinds every component returns
// instead of panicking or bubbling a raw error across a boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error kinds a request can surface.
type Kind string

const (
	InsufficientData    Kind = "insufficient_data"
	UndefinedFormula    Kind = "undefined_formula"
	UpstreamUnavailable Kind = "upstream_unavailable"
	StaleInputs         Kind = "stale_inputs"
	InvariantViolation  Kind = "invariant_violation"
	TrainingUnstable    Kind = "training_unstable"
	DeadlineExceeded    Kind = "deadline_exceeded"
)

// Error wraps a Kind with a human-readable reason and an optional cause.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match on Kind alone, e.g. errors.Is(err, apperr.InsufficientData).
func (e *Error) Is(target error) bool {
	var k *Error
	if errors.As(target, &k) {
		return k.Kind == e.Kind
	}
	return false
}

// New builds an *Error with no underlying cause.
func New(kind Kind, reason string) error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap builds an *Error carrying an underlying cause.
func Wrap(kind Kind, reason string, cause error) error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// KindOf extracts the Kind from err, ok=false if err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Status is the coarse-grained outcome every response carries.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
)

// Envelope is the machine-readable status/reasons pair attached to every
// response, per the error-handling design: no exception crosses a
// package boundary, every exported operation returns a status and a
// reasons list alongside its result.
type Envelope struct {
	Status  Status   `json:"status"`
	Reasons []string `json:"reasons,omitempty"`
}

// AddReason appends a reason and downgrades status to at least degraded.
func (e *Envelope) AddReason(reason string) {
	e.Reasons = append(e.Reasons, reason)
	if e.Status == StatusOK {
		e.Status = StatusDegraded
	}
}

// Fail marks the envelope failed with the given reason.
func (e *Envelope) Fail(reason string) {
	e.Reasons = append(e.Reasons, reason)
	e.Status = StatusFailed
}
