package cli

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/byteness/leasegate/assist"
	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/synth"
)

type staticGenerator struct {
	draft *assist.Draft
	err   error
}

func (g *staticGenerator) Generate(ctx context.Context, useCase string) (*assist.Draft, error) {
	return g.draft, g.err
}

func TestSelectionsFromDraft(t *testing.T) {
	draft := assist.Draft{
		Actions:   []string{"s3:GetObject", "s3:ListBucket", "dynamodb:Query", "unscoped"},
		Resources: []string{"order-exports"},
	}

	got := selectionsFromDraft(draft)
	want := []synth.ServiceSelection{
		{
			ServiceID: "s3",
			Actions:   []string{"s3:GetObject", "s3:ListBucket"},
			Resources: []synth.ResourceRef{{ID: "order-exports", Name: "order-exports"}},
		},
		{
			ServiceID: "dynamodb",
			Actions:   []string{"dynamodb:Query"},
			Resources: []synth.ResourceRef{{ID: "order-exports", Name: "order-exports"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selections mismatch (-want +got):\n%s", diff)
	}
}

func TestDraftCommandPrintsDraft(t *testing.T) {
	h := newTestHarness(t)

	input := DraftCommandInput{
		UseCase: "read order exports from s3",
		Generator: &staticGenerator{draft: &assist.Draft{
			Description: "read order exports",
			Actions:     []string{"s3:GetObject", "s3:*"},
			Resources:   []string{"order-exports", "*"},
		}},
	}
	if err := DraftCommand(context.Background(), input, h.leasegate); err != nil {
		t.Fatalf("DraftCommand() error: %v", err)
	}
}

func TestDraftCommandSubmit(t *testing.T) {
	h := newTestHarness(t)

	input := DraftCommandInput{
		UseCase:   "read order exports for reconciliation",
		AccountID: "123456789012",
		Submit:    true,
		Generator: &staticGenerator{draft: &assist.Draft{
			Actions:   []string{"s3:GetObject", "s3:ListBucket"},
			Resources: []string{"order-exports"},
		}},
		Controller:    h.controller,
		Actor:         "alice@example.com",
		DurationHours: 4,
	}
	if err := DraftCommand(context.Background(), input, h.leasegate); err != nil {
		t.Fatalf("DraftCommand() error: %v", err)
	}

	if len(h.store.CreateCalls) != 1 {
		t.Fatalf("CreateCalls = %d, want 1", len(h.store.CreateCalls))
	}
	req := h.store.CreateCalls[0]
	if !req.AIGenerated {
		t.Error("AIGenerated = false, generated drafts must be marked")
	}
	if req.Status != grant.StatusPending {
		t.Errorf("Status = %q, want pending", req.Status)
	}
	if req.Justification != "read order exports for reconciliation" {
		t.Errorf("Justification = %q, want the use case as fallback", req.Justification)
	}
}

func TestDraftCommandSubmitRequiresAccount(t *testing.T) {
	h := newTestHarness(t)

	input := DraftCommandInput{
		UseCase: "read order exports",
		Submit:  true,
		Generator: &staticGenerator{draft: &assist.Draft{
			Actions: []string{"s3:GetObject"},
		}},
		Controller: h.controller,
		Actor:      "alice@example.com",
	}
	if err := DraftCommand(context.Background(), input, h.leasegate); err == nil {
		t.Fatal("DraftCommand() submitted without an account")
	}
}
