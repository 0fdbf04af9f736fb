package logging

import (
	"time"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/iso8601"
	"github.com/byteness/leasegate/notification"
)

// GrantLogEntry captures all context for a grant lifecycle event.
// Events include: grant.submitted, grant.approved, grant.denied,
// grant.revoked, grant.expired, grant.deleted.
type GrantLogEntry struct {
	Timestamp     string `json:"timestamp"`                  // ISO8601 format
	Event         string `json:"event"`                      // "grant.submitted", "grant.approved", etc.
	RequestID     string `json:"request_id"`                 // 16-char hex request ID
	Requester     string `json:"requester"`                  // Who requested access
	Account       string `json:"account"`                    // Target cloud account ID
	Status        string `json:"status"`                     // Current status after event
	Actor         string `json:"actor"`                      // Who triggered event (requester, approver, or "system")
	RiskScore     int    `json:"risk_score"`                 // Risk score fixed at submission
	Justification string `json:"justification,omitempty"`    // Reason for request (on submit)
	Duration      int    `json:"duration_hours,omitempty"`   // Requested lease length (on submit)
	Approver      string `json:"approver,omitempty"`         // Who approved/denied
	ApproverRole  string `json:"approver_role,omitempty"`    // Role the approver acted under
	Reason        string `json:"reason,omitempty"`           // Denial or revocation reason
	SelfApproved  bool   `json:"self_approved,omitempty"`    // True if requester approved their own request
}

// NewGrantLogEntry creates a GrantLogEntry from a notification event.
// It populates fields based on the event type:
//   - grant.submitted: includes justification, duration
//   - grant.approved: includes approver, approver_role, self_approved
//   - grant.denied: includes approver, approver_role, denial reason
//   - grant.revoked: includes revocation reason
//   - grant.expired/deleted: no additional optional fields
func NewGrantLogEntry(event notification.EventType, req *grant.AccessRequest, actor string) GrantLogEntry {
	entry := GrantLogEntry{
		Timestamp: iso8601.Format(time.Now()),
		Event:     string(event),
		RequestID: req.ID,
		Requester: req.RequesterEmail,
		Account:   req.AccountID,
		Status:    string(req.Status),
		Actor:     actor,
		RiskScore: req.RiskScore,
	}

	// Populate optional fields based on event type
	switch event {
	case notification.EventGrantSubmitted:
		entry.Justification = req.Justification
		entry.Duration = req.DurationHours

	case notification.EventGrantApproved:
		entry.Approver = actor
		if n := len(req.Approvals); n > 0 {
			entry.Approver = req.Approvals[n-1].Approver
			entry.ApproverRole = string(req.Approvals[n-1].Role)
		}
		// Self-approved if the approver is the requester (allowed by
		// policy for low-risk requests)
		if entry.Approver == req.RequesterEmail {
			entry.SelfApproved = true
		}

	case notification.EventGrantDenied:
		entry.Approver = actor
		entry.Reason = req.DenialReason

	case notification.EventGrantRevoked:
		entry.Reason = req.RevokeReason
	}

	return entry
}
