package logging

import (
	"time"

	"github.com/byteness/leasegate/anomaly"
	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/iso8601"
)

// AnomalyLogEntry captures an anomaly detection raised during submission.
// These entries feed the security review queue, so they carry the full
// detection detail alongside the request context.
type AnomalyLogEntry struct {
	Timestamp string   `json:"timestamp"`        // ISO8601 format
	Event     string   `json:"event"`            // Always "anomaly.detected"
	RequestID string   `json:"request_id"`       // 16-char hex request ID
	Requester string   `json:"requester"`        // Who submitted the flagged request
	Account   string   `json:"account"`          // Target cloud account ID
	Flags     []string `json:"flags"`            // Raised anomaly flags
	Level     string   `json:"level"`            // MEDIUM or HIGH
	RiskScore int      `json:"risk_score"`       // Risk score of the flagged request
	Detail    []string `json:"detail,omitempty"` // Human-readable flag descriptions
}

// NewAnomalyLogEntry creates an AnomalyLogEntry from a flagged request and
// its detection result.
func NewAnomalyLogEntry(req *grant.AccessRequest, det anomaly.Detection) AnomalyLogEntry {
	flags := make([]string, len(det.Flags))
	for i, f := range det.Flags {
		flags[i] = string(f)
	}

	return AnomalyLogEntry{
		Timestamp: iso8601.Format(time.Now()),
		Event:     "anomaly.detected",
		RequestID: req.ID,
		Requester: req.RequesterEmail,
		Account:   req.AccountID,
		Flags:     flags,
		Level:     string(det.Level),
		RiskScore: req.RiskScore,
		Detail:    det.Describe(),
	}
}
