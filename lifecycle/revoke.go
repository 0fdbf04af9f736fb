package lifecycle

import (
	"context"
	"fmt"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/logging"
	"github.com/byteness/leasegate/notification"
)

// Revoke ends an approved grant before its window lapses. The record is
// marked revoked with expires_at set to now before teardown runs, so a
// teardown failure never leaves the grant looking active. Revoking a
// request that is already revoked or expired is an idempotent no-op.
func (c *Controller) Revoke(ctx context.Context, id, actor, reason string) (*grant.AccessRequest, error) {
	req, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case grant.StatusRevoked, grant.StatusExpired:
		return req, nil
	case grant.StatusApproved:
		// proceed
	default:
		return nil, &IllegalTransitionError{From: req.Status, To: grant.StatusRevoked}
	}

	if reason == "" {
		return nil, &ValidationError{Field: "reason", Reason: "cannot be empty"}
	}

	now := c.now()
	req.Status = grant.StatusRevoked
	req.RevokeReason = reason
	req.ExpiresAt = now

	if err := c.update(ctx, req); err != nil {
		return nil, err
	}
	c.logGrant(notification.EventGrantRevoked, req, actor)

	if err := c.provisioner.Revoke(ctx, req); err != nil {
		return req, fmt.Errorf("request %s revoked but teardown failed: %w", req.ID, err)
	}

	return req, nil
}

// Delete removes a request record in any state. Admin only. The deletion
// is audit-logged before the destructive store call so the trail survives
// even a partial failure.
func (c *Controller) Delete(ctx context.Context, id, actor string) error {
	isAdmin, err := c.admins.IsAdmin(ctx, actor)
	if err != nil {
		return err
	}
	if !isAdmin {
		return &ForbiddenError{
			Actor:  actor,
			Action: "delete",
			Reason: "record deletion requires admin privileges",
		}
	}

	req, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}

	entry := logging.NewAdminLogEntry("admin.delete", actor)
	entry.RequestID = req.ID
	entry.Target = req.AccountID
	entry.Detail = fmt.Sprintf("deleted request in status %s", req.Status)
	c.logger.LogAdmin(entry)

	return c.store.Delete(ctx, id)
}
