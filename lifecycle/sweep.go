package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/notification"
)

// SweepResult summarizes one expiration sweep.
type SweepResult struct {
	// Examined is how many approved requests were inspected.
	Examined int
	// Expired is how many transitioned to expired this sweep.
	Expired int
	// Skipped counts optimistic-lock losers: another writer (usually a
	// concurrent revoke) got there first, which is fine.
	Skipped int
	// Failures lists request IDs whose teardown failed; their records
	// are already marked expired and the next sweep will not retry them,
	// so failures need operator attention.
	Failures []string
}

// SweepExpirations transitions approved requests whose window has lapsed
// to expired and tears down their cloud grants. It processes every due
// request even when some fail; the result carries the tallies.
func (c *Controller) SweepExpirations(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	approved, err := c.store.ListByStatus(ctx, grant.StatusApproved, grant.MaxQueryLimit)
	if err != nil {
		return result, err
	}

	for _, req := range approved {
		result.Examined++
		if req.ExpiresAt.After(now) {
			continue
		}

		req.Status = grant.StatusExpired

		if err := c.store.Update(ctx, req); err != nil {
			if errors.Is(err, grant.ErrConcurrentModification) {
				// Concurrent revoke wins
				result.Skipped++
				continue
			}
			result.Failures = append(result.Failures, req.ID)
			continue
		}

		result.Expired++
		c.logGrant(notification.EventGrantExpired, req, SystemActor)

		if err := c.provisioner.Revoke(ctx, req); err != nil {
			result.Failures = append(result.Failures, req.ID)
		}
	}

	return result, nil
}
