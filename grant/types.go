// Package grant defines the access-request schema at the heart of the
// grant lifecycle. An AccessRequest captures who wants temporary cloud
// access, to which account, with what permissions, and for how long. Each
// request flows through a state machine from pending to terminal states.
//
// # Request State Machine
//
// Valid state transitions:
//   - pending -> approved (by approver)
//   - pending -> denied (by approver)
//   - approved -> revoked (by admin, immediate teardown)
//   - approved -> expired (by the expiration sweep)
//   - any state -> deleted (admin-only, destroys the record)
//
// denied, revoked, expired and deleted are terminal.
//
// # Request ID Format
//
// Request IDs are 16-character lowercase hexadecimal strings (64 bits of
// entropy), providing uniqueness and correlation across lifecycle
// operations and audit logs.
package grant

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"time"

	"github.com/byteness/leasegate/lease"
	"github.com/byteness/leasegate/synth"
)

const (
	// MaxJustificationLength is the maximum length for justification text.
	MaxJustificationLength = 500

	// RequestIDLength is the exact length for request IDs (16 hex chars).
	RequestIDLength = 16

	// MinRiskScore and MaxRiskScore bound the risk score stored on a request.
	MinRiskScore = 0
	MaxRiskScore = 10
)

// Status represents the current state of an access request.
type Status string

const (
	// StatusPending indicates the request is awaiting approval.
	StatusPending Status = "pending"
	// StatusApproved indicates access is (or is being) granted.
	StatusApproved Status = "approved"
	// StatusDenied indicates the request was denied by an approver.
	StatusDenied Status = "denied"
	// StatusRevoked indicates an approved grant was torn down early.
	StatusRevoked Status = "revoked"
	// StatusDeleted indicates an admin destroyed the record.
	StatusDeleted Status = "deleted"
	// StatusExpired indicates the lease window lapsed.
	StatusExpired Status = "expired"
)

// IsValid returns true if the Status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusRevoked, StatusDeleted, StatusExpired:
		return true
	}
	return false
}

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the status is a terminal state that cannot
// transition.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDenied, StatusRevoked, StatusDeleted, StatusExpired:
		return true
	}
	return false
}

// transitions is the single source of truth for legal one-step
// status changes. Deletion is reachable from every state because an admin
// may purge any record; the lifecycle controller gates it separately.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusDenied, StatusDeleted},
	StatusApproved: {StatusRevoked, StatusExpired, StatusDeleted},
	StatusDenied:   {StatusDeleted},
	StatusRevoked:  {StatusDeleted},
	StatusExpired:  {StatusDeleted},
	StatusDeleted:  {},
}

// CanTransitionTo reports whether a one-step transition from s to next is
// legal under the request state machine.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// ApproverRole identifies the capacity in which an approval was recorded.
// Self-approval is a distinct role: the system records it rather than
// silently allowing or hiding it, and governance policy decides when it is
// permitted.
type ApproverRole string

const (
	// RoleSelf is the requester approving their own request.
	RoleSelf ApproverRole = "self"
	// RoleManager is the requester's manager.
	RoleManager ApproverRole = "manager"
	// RoleSecurityLead is a member of the security team.
	RoleSecurityLead ApproverRole = "security_lead"
	// RoleAdmin is a platform administrator.
	RoleAdmin ApproverRole = "admin"
)

// IsValid returns true if the ApproverRole is a known value.
func (r ApproverRole) IsValid() bool {
	switch r {
	case RoleSelf, RoleManager, RoleSecurityLead, RoleAdmin:
		return true
	}
	return false
}

// Approval records one approver's sign-off on a request.
type Approval struct {
	Approver  string       `json:"approver"`
	Role      ApproverRole `json:"role"`
	Timestamp time.Time    `json:"timestamp"`
}

// GrantSpec is the permission portion of a request. Exactly one of the two
// forms is populated once the request is submitted: a reference to a
// pre-approved permission set, or explicit service selections that the
// policy synthesizer turns into a policy document.
type GrantSpec struct {
	// PermissionSetRef names a pre-approved permission set.
	PermissionSetRef string `json:"permission_set_ref,omitempty"`

	// Services are explicit per-service resource/action selections.
	Services []synth.ServiceSelection `json:"services,omitempty"`
}

// HasPermissionSet reports whether the permission-set form is populated.
func (g GrantSpec) HasPermissionSet() bool {
	return g.PermissionSetRef != ""
}

// HasServices reports whether the service-selection form is populated.
func (g GrantSpec) HasServices() bool {
	return len(g.Services) > 0
}

// GrantHandle identifies the cloud artifacts provisioned for an approved
// request so teardown can find them later.
type GrantHandle struct {
	PolicyARN string `json:"policy_arn"`
	RoleName  string `json:"role_name"`

	// PolicyOwned is true when the policy was created for this grant and
	// must be deleted on teardown. Pre-approved permission sets are shared:
	// teardown detaches them but leaves the policy in place.
	PolicyOwned bool `json:"policy_owned"`
}

// AccessRequest represents a request for temporary cloud access. It is the
// central entity of the lifecycle: created pending, mutated only through
// the lifecycle controller, retained after expiry or revocation for audit.
type AccessRequest struct {
	// ID is the unique request identifier (16 lowercase hex chars).
	ID string `json:"id"`

	// RequesterEmail identifies who is asking for access.
	RequesterEmail string `json:"requester_email"`

	// AccountID is the target cloud account.
	AccountID string `json:"account_id"`

	// Region is the target region for resource qualification.
	Region string `json:"region"`

	// Provider is the cloud provider key for policy synthesis ("aws").
	Provider string `json:"provider"`

	// Spec is the permission portion of the request.
	Spec GrantSpec `json:"spec"`

	// Justification explains why access is needed. Required, non-empty.
	Justification string `json:"justification"`

	// DurationHours is the lease length in whole hours (1..120).
	DurationHours int `json:"duration_hours"`

	// CustomWindow is set only when the requester chose an explicit
	// start/end schedule instead of a fixed duration.
	CustomWindow *lease.CustomWindow `json:"custom_window,omitempty"`

	// Policy is the synthesized policy document for service-selection
	// requests. Nil when Spec references a permission set.
	Policy *synth.PolicyDocument `json:"policy,omitempty"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// RiskScore is the 0-10 risk assessment fixed at submission and
	// re-derived only on modification.
	RiskScore int `json:"risk_score"`

	// Approvals lists recorded approvals in order. Cleared on modification.
	Approvals []Approval `json:"approvals,omitempty"`

	// AIGenerated marks a grant spec produced by policy synthesis from a
	// generated candidate rather than a pre-existing permission set.
	AIGenerated bool `json:"ai_generated"`

	// CreatedAt is when the request was submitted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the request was last modified. Used for
	// optimistic locking by Store implementations.
	UpdatedAt time.Time `json:"updated_at"`

	// ExpiresAt is when access lapses: the custom window's end if present,
	// otherwise CreatedAt + DurationHours. Always after CreatedAt.
	// Recomputed only by the duration engine.
	ExpiresAt time.Time `json:"expires_at"`

	// DenialReason is set when the request is denied.
	DenialReason string `json:"denial_reason,omitempty"`

	// RevokeReason is set when an approved grant is revoked early.
	RevokeReason string `json:"revoke_reason,omitempty"`

	// Handle identifies provisioned cloud artifacts, set on approval.
	Handle *GrantHandle `json:"handle,omitempty"`
}

// requestIDRegex matches valid request IDs (16 lowercase hex chars).
var requestIDRegex = regexp.MustCompile(`^[0-9a-f]{16}$`)

// NewRequestID generates a new 16-character lowercase hex request ID using
// crypto/rand.
func NewRequestID() string {
	bytes := make([]byte, 8)
	_, err := rand.Read(bytes)
	if err != nil {
		// crypto/rand read failures are effectively impossible; return a
		// sentinel rather than panic.
		return "0000000000000000"
	}
	return hex.EncodeToString(bytes)
}

// ValidateRequestID checks if the given string is a valid request ID.
func ValidateRequestID(id string) bool {
	return requestIDRegex.MatchString(id)
}
