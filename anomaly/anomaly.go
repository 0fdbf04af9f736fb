// Package anomaly flags suspicious access request patterns for security review.
//
// Detection is rule-based: each rule inspects the candidate request (and the
// requester's recent history) and contributes at most one flag. Flags never
// block a request; they are attached to the security notification so a human
// can weigh them during approval.
package anomaly

import (
	"fmt"
	"strings"
	"time"
)

// Flag identifies a single detection rule.
type Flag string

const (
	FlagOffHours          Flag = "off_hours"
	FlagSensitiveActions  Flag = "sensitive_actions"
	FlagProductionAccount Flag = "production_account"
	FlagRequestBurst      Flag = "request_burst"
)

// Level grades the overall severity of a detection.
type Level string

const (
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Defaults for the detection thresholds.
const (
	DefaultQuietStartHour = 22
	DefaultQuietEndHour   = 6
	DefaultBurstWindow    = 30 * time.Minute
	DefaultBurstThreshold = 2
)

// sensitivePatterns are substrings of an action name that mark it as
// privilege-sensitive.
var sensitivePatterns = []string{"Admin", "Full", "*"}

// Config holds the detection thresholds. Use DefaultConfig for the
// standard values.
type Config struct {
	// QuietStartHour and QuietEndHour bound the overnight quiet window.
	// Hours strictly before QuietEndHour or strictly after QuietStartHour
	// are considered off-hours.
	QuietStartHour int
	QuietEndHour   int

	// BurstWindow and BurstThreshold control the rapid-request rule:
	// more than BurstThreshold requests within BurstWindow flags a burst.
	BurstWindow    time.Duration
	BurstThreshold int

	// ProductionPattern is the substring of an account name that marks
	// it as production.
	ProductionPattern string
}

// DefaultConfig returns the standard detection thresholds.
func DefaultConfig() Config {
	return Config{
		QuietStartHour:    DefaultQuietStartHour,
		QuietEndHour:      DefaultQuietEndHour,
		BurstWindow:       DefaultBurstWindow,
		BurstThreshold:    DefaultBurstThreshold,
		ProductionPattern: "prod",
	}
}

// Candidate is the subset of a request relevant to detection.
type Candidate struct {
	RequesterEmail string
	AccountName    string
	Actions        []string
	SubmittedAt    time.Time
}

// Detection is the result of evaluating a candidate request.
type Detection struct {
	Flags []Flag
	Level Level
}

// Flagged reports whether any rule fired.
func (d Detection) Flagged() bool {
	return len(d.Flags) > 0
}

// Has reports whether a specific flag fired.
func (d Detection) Has(flag Flag) bool {
	for _, f := range d.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Describe returns a human-readable summary line for each flag, suitable
// for a notification body.
func (d Detection) Describe() []string {
	lines := make([]string, 0, len(d.Flags))
	for _, f := range d.Flags {
		switch f {
		case FlagOffHours:
			lines = append(lines, "submitted during overnight quiet hours")
		case FlagSensitiveActions:
			lines = append(lines, "requests privilege-sensitive actions")
		case FlagProductionAccount:
			lines = append(lines, "targets a production account")
		case FlagRequestBurst:
			lines = append(lines, "rapid succession of requests from this user")
		default:
			lines = append(lines, fmt.Sprintf("flag: %s", f))
		}
	}
	return lines
}

// Evaluate runs every rule against the candidate. recent holds the
// submission times of the requester's prior requests; only times within
// the burst window of the candidate's submission count toward a burst.
func Evaluate(candidate Candidate, recent []time.Time, cfg Config) Detection {
	var flags []Flag

	hour := candidate.SubmittedAt.Hour()
	if hour < cfg.QuietEndHour || hour > cfg.QuietStartHour {
		flags = append(flags, FlagOffHours)
	}

	if hasSensitiveAction(candidate.Actions) {
		flags = append(flags, FlagSensitiveActions)
	}

	if cfg.ProductionPattern != "" &&
		strings.Contains(strings.ToLower(candidate.AccountName), cfg.ProductionPattern) {
		flags = append(flags, FlagProductionAccount)
	}

	if countWithin(recent, candidate.SubmittedAt, cfg.BurstWindow) > cfg.BurstThreshold {
		flags = append(flags, FlagRequestBurst)
	}

	level := LevelMedium
	if len(flags) > 2 {
		level = LevelHigh
	}

	return Detection{Flags: flags, Level: level}
}

func hasSensitiveAction(actions []string) bool {
	for _, action := range actions {
		name := action
		if idx := strings.Index(action, ":"); idx >= 0 {
			name = action[idx+1:]
		}
		for _, pattern := range sensitivePatterns {
			if strings.Contains(name, pattern) {
				return true
			}
		}
	}
	return false
}

// countWithin counts timestamps in (at-window, at], inclusive of the
// candidate itself.
func countWithin(recent []time.Time, at time.Time, window time.Duration) int {
	cutoff := at.Add(-window)
	count := 1
	for _, ts := range recent {
		if ts.After(cutoff) && !ts.After(at) {
			count++
		}
	}
	return count
}
