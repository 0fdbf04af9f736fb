package logging

import (
	"time"

	"github.com/byteness/leasegate/iso8601"
)

// AdminLogEntry records a privileged admin action. Destructive actions
// (record deletion, forced revocation) are logged before they execute so
// the audit trail survives even if the action itself fails partway.
type AdminLogEntry struct {
	Timestamp string `json:"timestamp"`           // ISO8601 format
	Event     string `json:"event"`               // "admin.delete", "admin.policy_push", etc.
	Actor     string `json:"actor"`               // Admin performing the action
	RequestID string `json:"request_id,omitempty"` // Affected request, if any
	Target    string `json:"target,omitempty"`    // Affected resource (policy name, account)
	Detail    string `json:"detail,omitempty"`    // Free-form context
}

// NewAdminLogEntry creates an AdminLogEntry with the current timestamp.
func NewAdminLogEntry(event, actor string) AdminLogEntry {
	return AdminLogEntry{
		Timestamp: iso8601.Format(time.Now()),
		Event:     event,
		Actor:     actor,
	}
}
