// Package risk scores access requests so approvers can triage them.
//
// Scoring is additive over a small set of signals: destructive actions,
// off-hours submission, thin justifications, and broad action fan-out.
// The total is clamped to [0, 10] and bucketed into Low/Medium/High bands.
package risk

import (
	"strings"
	"time"
)

// Band labels a score range for display and policy decisions.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 10
)

// ActionClass pairs an action-name pattern with the score it contributes.
// Matching is case-sensitive substring against the action portion (after
// the service prefix, if any); the first matching class in a table wins.
type ActionClass struct {
	Pattern string
	Weight  int
}

// DestructiveActionWeight is the default weight for destructive or
// privilege-escalating actions.
const DestructiveActionWeight = 2

// DefaultClassification returns the standard action classification table.
func DefaultClassification() []ActionClass {
	return []ActionClass{
		{Pattern: "Delete", Weight: DestructiveActionWeight},
		{Pattern: "Create", Weight: DestructiveActionWeight},
		{Pattern: "Admin", Weight: DestructiveActionWeight},
		{Pattern: "Terminate", Weight: DestructiveActionWeight},
		{Pattern: "*", Weight: DestructiveActionWeight},
	}
}

// Config holds the tunable thresholds for scoring. The zero value is not
// usable; call DefaultConfig.
type Config struct {
	// Classification maps action patterns to score weights.
	Classification []ActionClass

	// BusinessStartHour and BusinessEndHour bound the working day in the
	// requester's local time. Requests outside [start, end] score higher.
	BusinessStartHour int
	BusinessEndHour   int

	// MinJustificationLength is the minimum justification length that
	// does not attract a penalty.
	MinJustificationLength int

	// ActionFanOut is the number of actions above which a request is
	// considered overly broad.
	ActionFanOut int

	// HighAbove and MediumAbove set the band boundaries: a score strictly
	// greater than HighAbove is high, strictly greater than MediumAbove
	// is medium, anything else is low.
	HighAbove   int
	MediumAbove int
}

// DefaultConfig returns the standard scoring thresholds.
func DefaultConfig() Config {
	return Config{
		Classification:         DefaultClassification(),
		BusinessStartHour:      9,
		BusinessEndHour:        17,
		MinJustificationLength: 20,
		ActionFanOut:           10,
		HighAbove:              7,
		MediumAbove:            4,
	}
}

// Input is the subset of a request relevant to scoring.
type Input struct {
	Actions       []string
	Justification string
	SubmittedAt   time.Time
}

// Score computes the risk score for a request, clamped to [MinScore, MaxScore].
func Score(in Input, cfg Config) int {
	score := 0

	for _, action := range in.Actions {
		score += ClassifyAction(action, cfg.Classification)
	}

	hour := in.SubmittedAt.Hour()
	if hour < cfg.BusinessStartHour || hour > cfg.BusinessEndHour {
		score++
	}

	if len(in.Justification) < cfg.MinJustificationLength {
		score++
	}

	if len(in.Actions) > cfg.ActionFanOut {
		score++
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// BandFor maps a score to its band under the given thresholds.
func BandFor(score int, cfg Config) Band {
	switch {
	case score > cfg.HighAbove:
		return BandHigh
	case score > cfg.MediumAbove:
		return BandMedium
	default:
		return BandLow
	}
}

// ClassifyAction returns the weight an action contributes under the given
// table. The service prefix (e.g. "s3:") is ignored so that
// "s3:DeleteObject" and "DeleteObject" classify identically. Actions
// matching no class contribute nothing.
func ClassifyAction(action string, table []ActionClass) int {
	name := action
	if idx := strings.Index(action, ":"); idx >= 0 {
		name = action[idx+1:]
	}
	for _, class := range table {
		if strings.Contains(name, class.Pattern) {
			return class.Weight
		}
	}
	return 0
}

// IsDestructive reports whether an action carries weight under the
// standard classification table.
func IsDestructive(action string) bool {
	return ClassifyAction(action, DefaultClassification()) > 0
}
