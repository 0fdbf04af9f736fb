package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/risk"
	"github.com/byteness/leasegate/synth"
)

// restrictedModifyPatterns are action fragments that may not be introduced
// through modification. A request needing them must be resubmitted so it
// goes through fresh scoring and review.
var restrictedModifyPatterns = []string{"delete", "create", "admin", "terminate"}

// Modify replaces the service selections of a pending request. The policy
// is re-synthesized, the risk score re-derived, and all previously
// recorded approvals are cleared: approvers saw a different request.
// Only the requester may modify their own request.
func (c *Controller) Modify(ctx context.Context, id, actor string, services []synth.ServiceSelection) (*grant.AccessRequest, error) {
	req, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != grant.StatusPending {
		return nil, &IllegalTransitionError{From: req.Status, To: grant.StatusPending}
	}
	if actor != req.RequesterEmail {
		return nil, &ForbiddenError{
			Actor:  actor,
			Action: "modify",
			Reason: "only the requester may modify their request",
		}
	}

	if len(services) == 0 {
		return nil, &ValidationError{Field: "services", Reason: "cannot be empty"}
	}
	if restricted := restrictedActions(services); len(restricted) > 0 {
		return nil, &ValidationError{
			Field:  "services",
			Reason: fmt.Sprintf("restricted actions not allowed: %s", strings.Join(restricted, ", ")),
		}
	}

	doc, err := synth.Synthesize(req.Provider, req.Region, req.AccountID, services)
	if err != nil {
		return nil, &ValidationError{Field: "services", Reason: err.Error()}
	}

	pol, err := c.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}

	req.Spec = grant.GrantSpec{Services: services}
	req.Policy = doc
	req.RiskScore = risk.Score(risk.Input{
		Actions:       collectActions(services),
		Justification: req.Justification,
		SubmittedAt:   req.CreatedAt,
	}, pol.RiskConfig())
	req.Approvals = nil

	if err := c.update(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// restrictedActions returns the actions that match a restricted pattern,
// case-insensitively, in selection order.
func restrictedActions(services []synth.ServiceSelection) []string {
	var restricted []string
	for _, sel := range services {
		for _, action := range sel.Actions {
			lower := strings.ToLower(action)
			for _, pattern := range restrictedModifyPatterns {
				if strings.Contains(lower, pattern) {
					restricted = append(restricted, action)
					break
				}
			}
		}
	}
	return restricted
}
