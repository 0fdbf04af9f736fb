package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/byteness/leasegate/anomaly"
	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/lease"
	"github.com/byteness/leasegate/logging"
	"github.com/byteness/leasegate/notification"
	"github.com/byteness/leasegate/policy"
	"github.com/byteness/leasegate/risk"
	"github.com/byteness/leasegate/synth"
)

// Draft is a submission input. Exactly one of PermissionSetRef or Services
// must be populated.
type Draft struct {
	RequesterEmail string
	AccountID      string
	AccountName    string
	Region         string
	Provider       string

	PermissionSetRef string
	Services         []synth.ServiceSelection

	Justification string
	DurationHours int
	Window        *lease.CustomWindow

	// AIGenerated marks drafts produced by the assist generator. They are
	// treated as untrusted input and re-verified like any other draft.
	AIGenerated bool
}

// Submit validates a draft, assesses its risk, runs anomaly detection, and
// persists the pending request. The returned entity is the authoritative
// persisted record.
func (c *Controller) Submit(ctx context.Context, draft Draft) (*grant.AccessRequest, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	now := c.now()

	window, err := lease.ComputeWindow(lease.Input{
		Hours:  draft.DurationHours,
		Custom: draft.Window,
	}, now)
	if err != nil {
		return nil, &ValidationError{Field: "duration", Reason: err.Error()}
	}

	provider := draft.Provider
	if provider == "" {
		provider = "aws"
	}

	var doc *synth.PolicyDocument
	if len(draft.Services) > 0 {
		doc, err = synth.Synthesize(provider, draft.Region, draft.AccountID, draft.Services)
		if err != nil {
			return nil, &ValidationError{Field: "services", Reason: err.Error()}
		}
	}

	pol, err := c.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}

	actions := collectActions(draft.Services)
	score := risk.Score(risk.Input{
		Actions:       actions,
		Justification: draft.Justification,
		SubmittedAt:   now,
	}, pol.RiskConfig())

	req := &grant.AccessRequest{
		ID:             grant.NewRequestID(),
		RequesterEmail: draft.RequesterEmail,
		AccountID:      draft.AccountID,
		Region:         draft.Region,
		Provider:       provider,
		Spec: grant.GrantSpec{
			PermissionSetRef: draft.PermissionSetRef,
			Services:         draft.Services,
		},
		Justification: draft.Justification,
		DurationHours: window.Hours,
		CustomWindow:  draft.Window,
		Policy:        doc,
		Status:        grant.StatusPending,
		RiskScore:     score,
		AIGenerated:   draft.AIGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     window.End,
	}

	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Field: "request", Reason: err.Error()}
	}

	if err := c.store.Create(ctx, req); err != nil {
		return nil, err
	}

	c.logGrant(notification.EventGrantSubmitted, req, req.RequesterEmail)
	c.detectAnomalies(ctx, req, draft.AccountName, actions, pol)

	return req, nil
}

// detectAnomalies runs the detector over the new submission. Detection is
// a side effect: flags are logged and alerted but never block submission,
// so listing failures degrade to burst-blind detection.
func (c *Controller) detectAnomalies(ctx context.Context, req *grant.AccessRequest, accountName string, actions []string, pol *policy.GovernancePolicy) {
	var recent []time.Time
	history, err := c.store.ListByRequester(ctx, req.RequesterEmail, grant.DefaultQueryLimit)
	if err == nil {
		for _, prior := range history {
			if prior.ID == req.ID {
				continue
			}
			recent = append(recent, prior.CreatedAt)
		}
	}

	det := anomaly.Evaluate(anomaly.Candidate{
		RequesterEmail: req.RequesterEmail,
		AccountName:    accountName,
		Actions:        actions,
		SubmittedAt:    req.CreatedAt,
	}, recent, pol.AnomalyConfig())

	if !det.Flagged() {
		return
	}

	c.logger.LogAnomaly(logging.NewAnomalyLogEntry(req, det))
	c.notifyAnomaly(req, strings.Join(det.Describe(), "; "))
}

// validateDraft checks the required fields and the exactly-one grant-spec
// rule before any expensive work.
func validateDraft(draft Draft) error {
	if draft.RequesterEmail == "" {
		return &ValidationError{Field: "requester_email", Reason: "cannot be empty"}
	}
	if draft.AccountID == "" {
		return &ValidationError{Field: "account_id", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(draft.Justification) == "" {
		return &ValidationError{Field: "justification", Reason: "cannot be empty"}
	}

	hasSet := draft.PermissionSetRef != ""
	hasServices := len(draft.Services) > 0
	switch {
	case hasSet && hasServices:
		return &ValidationError{Field: "spec", Reason: "choose a permission set or service selections, not both"}
	case !hasSet && !hasServices:
		return &ValidationError{Field: "spec", Reason: "a permission set or service selections are required"}
	}

	return nil
}

// collectActions flattens the per-service action lists for scoring and
// anomaly detection.
func collectActions(services []synth.ServiceSelection) []string {
	var actions []string
	for _, sel := range services {
		actions = append(actions, sel.Actions...)
	}
	return actions
}
