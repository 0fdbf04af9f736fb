// Package lease computes and validates access lease windows.
// A lease window is the validity interval of a granted access request:
// it starts when access begins and ends when access expires.
//
// Windows come in two forms:
//   - fixed: a positive hour count starting now (presets 1h to 120h)
//   - custom: an explicit future start and end supplied by the requester
//
// The maximum lease length is 120 hours (5 days) for both forms. Violations
// are never clamped; every rule failure is reported as an InvalidWindowError
// carrying the specific reason so the caller can correct the input.
package lease

import (
	"fmt"
	"time"
)

// MaxLeaseHours is the system-wide maximum lease length in hours (5 days).
const MaxLeaseHours = 120

// PresetHours lists the fixed-duration choices offered to requesters.
// Any positive hour count up to MaxLeaseHours is accepted; the presets
// exist for interface layers that present a duration picker.
var PresetHours = []int{1, 2, 4, 8, 24, 72, 120}

// Invalid window reasons. Each maps to exactly one validation rule.
const (
	// ReasonNonPositive indicates a fixed duration of zero or fewer hours.
	ReasonNonPositive = "duration must be at least 1 hour"
	// ReasonExceedsMaximum indicates a window longer than MaxLeaseHours.
	ReasonExceedsMaximum = "exceeds maximum of 120 hours (5 days)"
	// ReasonStartNotFuture indicates a custom start at or before now.
	ReasonStartNotFuture = "start must be in the future"
	// ReasonEndBeforeStart indicates a custom end at or before its start.
	ReasonEndBeforeStart = "end must be after start"
)

// InvalidWindowError reports a lease window rule violation.
// Reason is one of the Reason* constants and is safe to surface verbatim.
type InvalidWindowError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid lease window: %s", e.Reason)
}

// Window is a validated lease window. End is always after Start and the
// spanned duration never exceeds MaxLeaseHours.
type Window struct {
	// Start is when access begins.
	Start time.Time
	// End is when access expires.
	End time.Time
	// Hours is the window length rounded to whole hours.
	Hours int
}

// Duration returns the exact window span.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// CustomWindow is a requester-supplied explicit schedule.
type CustomWindow struct {
	Start time.Time
	End   time.Time
}

// Input selects either a fixed duration or a custom schedule.
// When Custom is non-nil it takes precedence and Hours is ignored.
type Input struct {
	// Hours is the fixed duration in hours (1..MaxLeaseHours).
	Hours int
	// Custom, when set, requests an explicit start/end schedule.
	Custom *CustomWindow
}

// ComputeWindow validates the input and produces the lease window.
// The now argument anchors fixed windows and the start-in-future check;
// callers pass time.Now() outside of tests.
//
// Fixed windows run [now, now+hours]. Custom windows are validated in
// order: start after now, end after start, span at most MaxLeaseHours.
// The first violated rule is returned as an *InvalidWindowError.
func ComputeWindow(input Input, now time.Time) (Window, error) {
	if input.Custom != nil {
		return computeCustom(*input.Custom, now)
	}
	return computeFixed(input.Hours, now)
}

func computeFixed(hours int, now time.Time) (Window, error) {
	if hours < 1 {
		return Window{}, &InvalidWindowError{Reason: ReasonNonPositive}
	}
	if hours > MaxLeaseHours {
		return Window{}, &InvalidWindowError{Reason: ReasonExceedsMaximum}
	}

	return Window{
		Start: now,
		End:   now.Add(time.Duration(hours) * time.Hour),
		Hours: hours,
	}, nil
}

func computeCustom(custom CustomWindow, now time.Time) (Window, error) {
	if !custom.Start.After(now) {
		return Window{}, &InvalidWindowError{Reason: ReasonStartNotFuture}
	}
	if !custom.End.After(custom.Start) {
		return Window{}, &InvalidWindowError{Reason: ReasonEndBeforeStart}
	}

	span := custom.End.Sub(custom.Start)
	if span > MaxLeaseHours*time.Hour {
		return Window{}, &InvalidWindowError{Reason: ReasonExceedsMaximum}
	}

	return Window{
		Start: custom.Start,
		End:   custom.End,
		Hours: int(span.Round(time.Hour) / time.Hour),
	}, nil
}
