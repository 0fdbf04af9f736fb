package lifecycle

import (
	"context"
	"fmt"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/notification"
	"github.com/byteness/leasegate/risk"
)

// Approve records an approval on a pending request and provisions the
// cloud grant.
//
// Self-approval (the approver is the requester) is permitted only when
// governance policy allows it for the request's risk score; it is recorded
// under RoleSelf regardless of the role argument. Third-party approvers
// must act under a role the policy accepts for the request's risk band.
//
// Provisioning failure does not roll back the approval: the request stays
// approved without a handle and the error is returned so the caller can
// retry provisioning or revoke.
func (c *Controller) Approve(ctx context.Context, id, approver string, role grant.ApproverRole) (*grant.AccessRequest, error) {
	req, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != grant.StatusPending {
		return nil, &IllegalTransitionError{From: req.Status, To: grant.StatusApproved}
	}

	pol, err := c.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}
	band := risk.BandFor(req.RiskScore, pol.RiskConfig())

	if approver == req.RequesterEmail {
		if !pol.AllowsSelfApproval(approver, req.RiskScore) {
			return nil, &ForbiddenError{
				Actor:  approver,
				Action: "self-approve",
				Reason: fmt.Sprintf("risk score %d exceeds the self-approval threshold", req.RiskScore),
			}
		}
		role = grant.RoleSelf
	} else {
		if !role.IsValid() || role == grant.RoleSelf {
			return nil, &ValidationError{Field: "role", Reason: fmt.Sprintf("invalid approver role %q", role)}
		}
		if !pol.RoleSatisfies(band, role) {
			return nil, &ForbiddenError{
				Actor:  approver,
				Action: "approve",
				Reason: fmt.Sprintf("role %s cannot approve %s-risk requests", role, band),
			}
		}
	}

	now := c.now()
	req.Approvals = append(req.Approvals, grant.Approval{
		Approver:  approver,
		Role:      role,
		Timestamp: now,
	})
	req.Status = grant.StatusApproved

	if err := c.update(ctx, req); err != nil {
		return nil, err
	}
	c.logGrant(notification.EventGrantApproved, req, approver)

	handle, err := c.provisioner.Apply(ctx, req)
	if err != nil {
		return req, fmt.Errorf("request %s approved but provisioning failed: %w", req.ID, err)
	}

	req.Handle = handle
	if err := c.update(ctx, req); err != nil {
		return req, err
	}

	return req, nil
}

// Deny denies a pending request with a reason.
func (c *Controller) Deny(ctx context.Context, id, approver, reason string) (*grant.AccessRequest, error) {
	req, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != grant.StatusPending {
		return nil, &IllegalTransitionError{From: req.Status, To: grant.StatusDenied}
	}

	if reason == "" {
		reason = "denied by approver"
	}

	req.Status = grant.StatusDenied
	req.DenialReason = reason

	if err := c.update(ctx, req); err != nil {
		return nil, err
	}
	c.logGrant(notification.EventGrantDenied, req, approver)

	return req, nil
}
