package cli

import (
	"context"
	"testing"
	"time"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/lifecycle"
	"github.com/byteness/leasegate/sweep"
	"github.com/byteness/leasegate/testutil"
)

func TestSweepCommandOnce(t *testing.T) {
	h := newTestHarness(t)
	req := h.submitPending(t)
	h.approveSelf(t, req.ID)

	// Rebuild the controller clock past the grant's expiry so the sweep
	// finds it due.
	later := monday.Add(9 * time.Hour)
	controller := lifecycle.NewController(h.store, h.provisioner, testutil.NewMockPolicyLoader(),
		lifecycle.WithClock(testutil.FixedClock(later)),
		lifecycle.WithLogger(h.logger),
	)

	input := SweepCommandInput{
		Once:    true,
		Sweeper: sweep.NewSweeper(controller, sweep.WithClock(testutil.FixedClock(later))),
	}
	if err := SweepCommand(context.Background(), input, h.leasegate); err != nil {
		t.Fatalf("SweepCommand() error: %v", err)
	}

	stored, err := h.store.Get(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if stored.Status != grant.StatusExpired {
		t.Errorf("Status = %q, want expired", stored.Status)
	}
}

func TestSweepCommandOnceNothingDue(t *testing.T) {
	h := newTestHarness(t)
	req := h.submitPending(t)
	h.approveSelf(t, req.ID)

	input := SweepCommandInput{
		Once:    true,
		Sweeper: sweep.NewSweeper(h.controller, sweep.WithClock(testutil.FixedClock(monday))),
	}
	if err := SweepCommand(context.Background(), input, h.leasegate); err != nil {
		t.Fatalf("SweepCommand() error: %v", err)
	}

	stored, err := h.store.Get(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if stored.Status != grant.StatusApproved {
		t.Errorf("Status = %q, the live grant must survive the sweep", stored.Status)
	}
}
