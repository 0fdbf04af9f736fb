package grant_test

import (
	"strings"
	"testing"
	"time"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/testutil"
)

func TestValidate(t *testing.T) {
	if err := testutil.MakeRequest("alice@example.com", "123456789012").Validate(); err != nil {
		t.Fatalf("Validate() on a well-formed request: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(req *grant.AccessRequest)
		wantErr string
	}{
		{
			name:    "bad id",
			mutate:  func(req *grant.AccessRequest) { req.ID = "short" },
			wantErr: "invalid request ID",
		},
		{
			name:    "empty requester",
			mutate:  func(req *grant.AccessRequest) { req.RequesterEmail = "" },
			wantErr: "requester email",
		},
		{
			name:    "malformed requester email",
			mutate:  func(req *grant.AccessRequest) { req.RequesterEmail = "not-an-address" },
			wantErr: "invalid requester email",
		},
		{
			name:    "empty account",
			mutate:  func(req *grant.AccessRequest) { req.AccountID = "" },
			wantErr: "account",
		},
		{
			name:    "empty provider",
			mutate:  func(req *grant.AccessRequest) { req.Provider = "" },
			wantErr: "provider",
		},
		{
			name:    "empty justification",
			mutate:  func(req *grant.AccessRequest) { req.Justification = "" },
			wantErr: "justification",
		},
		{
			name: "justification too long",
			mutate: func(req *grant.AccessRequest) {
				req.Justification = strings.Repeat("x", grant.MaxJustificationLength+1)
			},
			wantErr: "justification too long",
		},
		{
			name: "both spec forms",
			mutate: func(req *grant.AccessRequest) {
				req.Spec.PermissionSetRef = "ReadOnlyAccess"
			},
			wantErr: "must not contain both",
		},
		{
			name: "neither spec form",
			mutate: func(req *grant.AccessRequest) {
				req.Spec = grant.GrantSpec{}
			},
			wantErr: "permission set or service selections",
		},
		{
			name:    "unknown status",
			mutate:  func(req *grant.AccessRequest) { req.Status = "granted" },
			wantErr: "invalid status",
		},
		{
			name:    "zero duration",
			mutate:  func(req *grant.AccessRequest) { req.DurationHours = 0 },
			wantErr: "duration",
		},
		{
			name:    "risk score out of range",
			mutate:  func(req *grant.AccessRequest) { req.RiskScore = 11 },
			wantErr: "risk score",
		},
		{
			name:    "zero created_at",
			mutate:  func(req *grant.AccessRequest) { req.CreatedAt = time.Time{} },
			wantErr: "created_at",
		},
		{
			name:    "expiry before creation",
			mutate:  func(req *grant.AccessRequest) { req.ExpiresAt = req.CreatedAt },
			wantErr: "expires_at must be after created_at",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("alice@example.com", "123456789012")
			tc.mutate(req)

			err := req.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}
