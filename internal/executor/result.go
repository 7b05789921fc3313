// Package executor dispatches validated, confirmed actions to the file
// operations library and the system snapshot collector, and produces
// the structured Result the session renders and records.
package executor

import "github.com/robotcli/robotcli/internal/action"

// ErrorKind classifies a failed Result. The empty string means no
// error. Nothing in this taxonomy is process-fatal; every kind is
// rendered to the user and the session continues.
type ErrorKind string

const (
	ErrNone               ErrorKind = ""
	ErrValidation         ErrorKind = "validation"
	ErrServiceUnavailable ErrorKind = "service_unavailable"
	ErrCancelled          ErrorKind = "cancelled"
	ErrPartialFailure     ErrorKind = "partial_failure"
	ErrRecycleUnavailable ErrorKind = "recycle_unavailable"
	ErrIOFailure          ErrorKind = "io_failure"
	ErrScopeViolation     ErrorKind = "scope_violation"
)

// Result is the outcome of one executed (or denied/cancelled) action.
// Created exclusively here and by the session's cancellation paths;
// never mutated after creation.
type Result struct {
	ActionKind    action.Kind
	Success       bool
	Summary       string
	AffectedPaths []string
	Err           ErrorKind
}

// Cancelled builds the standard result for a declined confirmation.
func Cancelled(kind action.Kind, summary string) *Result {
	return &Result{ActionKind: kind, Summary: summary, Err: ErrCancelled}
}

// Denied builds the standard result for a safety gate denial.
func Denied(kind action.Kind, reason string) *Result {
	return &Result{ActionKind: kind, Summary: reason, Err: ErrScopeViolation}
}
