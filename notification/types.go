// Package notification provides event types and interfaces for leasegate's
// notification system. It enables pluggable notification delivery on grant
// lifecycle events such as submission, approval, denial, revocation,
// expiration, and deletion, plus security anomaly alerts.
//
// # Event Types
//
// Events are emitted when request state changes:
//   - grant.submitted: A new access request was submitted
//   - grant.approved: A request was approved and access provisioned
//   - grant.denied: A request was denied by an approver
//   - grant.revoked: Active access was revoked before expiry
//   - grant.expired: An active grant reached the end of its window
//   - grant.deleted: A request record was deleted
//   - anomaly.detected: The anomaly detector flagged a request
//
// # Notification Delivery
//
// The Notifier interface allows pluggable notification backends (SNS,
// webhooks, etc.). MultiNotifier composes multiple backends for fanout
// delivery.
package notification

import (
	"time"

	"github.com/byteness/leasegate/grant"
)

// EventType represents the type of notification event.
// Events correspond to grant lifecycle state changes.
type EventType string

const (
	// EventGrantSubmitted is emitted when a new access request is submitted.
	EventGrantSubmitted EventType = "grant.submitted"
	// EventGrantApproved is emitted when a request is approved and access provisioned.
	EventGrantApproved EventType = "grant.approved"
	// EventGrantDenied is emitted when a request is denied by an approver.
	EventGrantDenied EventType = "grant.denied"
	// EventGrantRevoked is emitted when active access is revoked before expiry.
	EventGrantRevoked EventType = "grant.revoked"
	// EventGrantExpired is emitted when an active grant reaches the end of its window.
	EventGrantExpired EventType = "grant.expired"
	// EventGrantDeleted is emitted when a request record is deleted.
	EventGrantDeleted EventType = "grant.deleted"
	// EventAnomalyDetected is emitted when the anomaly detector flags a request.
	EventAnomalyDetected EventType = "anomaly.detected"
)

// IsValid returns true if the EventType is a known value.
func (t EventType) IsValid() bool {
	switch t {
	case EventGrantSubmitted, EventGrantApproved, EventGrantDenied,
		EventGrantRevoked, EventGrantExpired, EventGrantDeleted,
		EventAnomalyDetected:
		return true
	}
	return false
}

// String returns the string representation of the EventType.
func (t EventType) String() string {
	return string(t)
}

// Event represents a notification event triggered by a grant state change.
type Event struct {
	// Type is the event type.
	Type EventType `json:"type"`

	// Request is the request that triggered this event.
	Request *grant.AccessRequest `json:"request"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Actor is who triggered the event:
	//   - requester email for submitted/deleted
	//   - approver email for approved/denied/revoked
	//   - "system" for expired and anomaly detections
	Actor string `json:"actor"`

	// Detail carries event-specific context, such as a denial reason or
	// a summary of anomaly flags.
	Detail string `json:"detail,omitempty"`
}

// NewEvent creates a new notification event.
// The timestamp is set to the current time.
func NewEvent(eventType EventType, req *grant.AccessRequest, actor string) *Event {
	return &Event{
		Type:      eventType,
		Request:   req,
		Timestamp: time.Now(),
		Actor:     actor,
	}
}
