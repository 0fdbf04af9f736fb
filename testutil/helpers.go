package testutil

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/synth"
)

// ============================================================================
// Time helpers
// ============================================================================

// MustParseTime parses a time string using the given layout and panics on error.
// Useful for test data initialization where parse errors indicate a test bug.
//
// Example:
//
//	t := MustParseTime(time.RFC3339, "2025-06-10T10:00:00Z")
func MustParseTime(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic("testutil.MustParseTime: " + err.Error())
	}
	return t
}

// FixedClock returns a function that always returns the given time.
// Useful for testing time-dependent logic with deterministic values.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// ============================================================================
// Request helpers
// ============================================================================

// MakeRequest creates a pending test request with sensible defaults:
// a single read-only S3 selection, an 8-hour duration, and a justification
// long enough to avoid risk penalties.
//
// Example:
//
//	req := MakeRequest("alice@example.com", "123456789012")
func MakeRequest(requester, accountID string) *grant.AccessRequest {
	now := time.Now()
	return &grant.AccessRequest{
		ID:             grant.NewRequestID(),
		RequesterEmail: requester,
		AccountID:      accountID,
		Region:         "us-east-1",
		Provider:       "aws",
		Spec: grant.GrantSpec{
			Services: []synth.ServiceSelection{
				{
					ServiceID: "s3",
					Resources: []synth.ResourceRef{{ID: "test-bucket", Name: "test-bucket", Type: "bucket"}},
					Actions:   []string{"s3:GetObject", "s3:ListBucket"},
				},
			},
		},
		Justification: "Investigating customer ticket 4821 in the order pipeline",
		DurationHours: 8,
		Status:        grant.StatusPending,
		RiskScore:     0,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(8 * time.Hour),
	}
}

// MakeApprovedRequest creates a test request in approved status with a
// recorded manager approval and provisioned handle.
func MakeApprovedRequest(requester, accountID string) *grant.AccessRequest {
	req := MakeRequest(requester, accountID)
	now := time.Now()
	req.Status = grant.StatusApproved
	req.CreatedAt = now.Add(-10 * time.Minute)
	req.Approvals = []grant.Approval{
		{Approver: "manager@example.com", Role: grant.RoleManager, Timestamp: now},
	}
	req.Handle = &grant.GrantHandle{
		PolicyARN:   "arn:aws:iam::" + accountID + ":policy/JIT_test",
		RoleName:    "JIT_test",
		PolicyOwned: true,
	}
	return req
}

// MakeExpiredGrant creates a test request whose approved window has
// already ended.
func MakeExpiredGrant(requester, accountID string) *grant.AccessRequest {
	req := MakeApprovedRequest(requester, accountID)
	req.CreatedAt = time.Now().Add(-48 * time.Hour)
	req.ExpiresAt = time.Now().Add(-1 * time.Hour)
	return req
}

// ============================================================================
// Assertion helpers
// ============================================================================

// AssertErrorIs checks if got error matches want error using errors.Is.
func AssertErrorIs(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("error mismatch:\n  got:  %v\n  want: %v", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertContains checks if got string contains substr.
func AssertContains(t *testing.T, got, substr string) {
	t.Helper()
	if !strings.Contains(got, substr) {
		t.Errorf("string does not contain expected substring:\n  got:    %q\n  substr: %q", got, substr)
	}
}

// AssertEqual checks if got equals want.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("value mismatch:\n  got:  %v\n  want: %v", got, want)
	}
}

// Ptr returns a pointer to the given value.
// Useful for constructing test data with pointer fields.
func Ptr[T any](v T) *T {
	return &v
}
