// Package audit verifies against CloudTrail that grant teardown actually
// happened. The store says a grant is revoked or expired; CloudTrail says
// whether the IAM policy and role really came down.
package audit

import (
	"time"

	"github.com/byteness/leasegate/grant"
)

// Issue severities.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// TeardownCheck is the verification outcome for one request.
type TeardownCheck struct {
	// RequestID identifies the request checked.
	RequestID string

	// PolicyDeleted and RoleDeleted report whether CloudTrail shows the
	// corresponding delete call after the grant ended.
	PolicyDeleted bool
	RoleDeleted   bool

	// PolicyDeletedAt / RoleDeletedAt are the CloudTrail event times,
	// zero when the event was not found.
	PolicyDeletedAt time.Time
	RoleDeletedAt   time.Time
}

// Verified reports whether every provisioned artifact is confirmed gone.
func (c TeardownCheck) Verified() bool {
	return c.PolicyDeleted && c.RoleDeleted
}

// Finding is an unverified teardown surfaced to operators.
type Finding struct {
	Severity  Severity
	RequestID string
	Message   string
}

// Report aggregates a batch verification run.
type Report struct {
	Checked  int
	Verified int
	Findings []Finding
}

// Clean reports whether every checked teardown was confirmed.
func (r Report) Clean() bool {
	return len(r.Findings) == 0
}

// verifiable reports whether the request is in a state whose teardown can
// be checked at all.
func verifiable(req *grant.AccessRequest) bool {
	if req.Handle == nil {
		return false
	}
	return req.Status == grant.StatusRevoked || req.Status == grant.StatusExpired
}
