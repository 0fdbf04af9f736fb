package grant_test

import (
	"testing"

	"github.com/byteness/leasegate/grant"
)

func TestNewRequestID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := grant.NewRequestID()
		if !grant.ValidateRequestID(id) {
			t.Fatalf("NewRequestID() = %q, not a valid request ID", id)
		}
		if seen[id] {
			t.Fatalf("NewRequestID() repeated %q", id)
		}
		seen[id] = true
	}
}

func TestValidateRequestID(t *testing.T) {
	testCases := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "a1b2c3d4e5f60718", true},
		{"all digits", "0123456789012345", true},
		{"empty", "", false},
		{"too short", "a1b2c3d4e5f6071", false},
		{"too long", "a1b2c3d4e5f607181", false},
		{"uppercase hex", "A1B2C3D4E5F60718", false},
		{"non-hex", "g1b2c3d4e5f60718", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := grant.ValidateRequestID(tc.id); got != tc.want {
				t.Errorf("ValidateRequestID(%q) = %v, want %v", tc.id, got, tc.want)
			}
		})
	}
}

func TestStatusIsValid(t *testing.T) {
	valid := []grant.Status{
		grant.StatusPending, grant.StatusApproved, grant.StatusDenied,
		grant.StatusRevoked, grant.StatusDeleted, grant.StatusExpired,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("Status(%q).IsValid() = false, want true", s)
		}
	}
	if grant.Status("granted").IsValid() {
		t.Error(`Status("granted").IsValid() = true, want false`)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	testCases := []struct {
		status grant.Status
		want   bool
	}{
		{grant.StatusPending, false},
		{grant.StatusApproved, false},
		{grant.StatusDenied, true},
		{grant.StatusRevoked, true},
		{grant.StatusDeleted, true},
		{grant.StatusExpired, true},
	}

	for _, tc := range testCases {
		if got := tc.status.IsTerminal(); got != tc.want {
			t.Errorf("Status(%q).IsTerminal() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestStatusCanTransitionTo(t *testing.T) {
	testCases := []struct {
		name string
		from grant.Status
		to   grant.Status
		want bool
	}{
		{"pending to approved", grant.StatusPending, grant.StatusApproved, true},
		{"pending to denied", grant.StatusPending, grant.StatusDenied, true},
		{"pending to expired", grant.StatusPending, grant.StatusExpired, false},
		{"pending to revoked", grant.StatusPending, grant.StatusRevoked, false},
		{"approved to revoked", grant.StatusApproved, grant.StatusRevoked, true},
		{"approved to expired", grant.StatusApproved, grant.StatusExpired, true},
		{"approved to denied", grant.StatusApproved, grant.StatusDenied, false},
		{"denied to approved", grant.StatusDenied, grant.StatusApproved, false},
		{"expired to approved", grant.StatusExpired, grant.StatusApproved, false},
		{"denied to deleted", grant.StatusDenied, grant.StatusDeleted, true},
		{"expired to deleted", grant.StatusExpired, grant.StatusDeleted, true},
		{"deleted is final", grant.StatusDeleted, grant.StatusPending, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
				t.Errorf("Status(%q).CanTransitionTo(%q) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestApproverRoleIsValid(t *testing.T) {
	for _, r := range []grant.ApproverRole{grant.RoleSelf, grant.RoleManager, grant.RoleSecurityLead, grant.RoleAdmin} {
		if !r.IsValid() {
			t.Errorf("ApproverRole(%q).IsValid() = false, want true", r)
		}
	}
	if grant.ApproverRole("owner").IsValid() {
		t.Error(`ApproverRole("owner").IsValid() = true, want false`)
	}
}

func TestGrantSpecForms(t *testing.T) {
	var empty grant.GrantSpec
	if empty.HasPermissionSet() || empty.HasServices() {
		t.Error("empty GrantSpec should have neither form populated")
	}

	ps := grant.GrantSpec{PermissionSetRef: "ReadOnlyAccess"}
	if !ps.HasPermissionSet() || ps.HasServices() {
		t.Error("permission-set spec misreported its form")
	}
}
