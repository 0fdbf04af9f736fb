package policy

import (
	"strings"
	"testing"
)

const samplePolicyYAML = `
version: "1"
self_approve:
  max_risk_score: 4
risk:
  business_start_hour: 9
  business_end_hour: 17
anomaly:
  production_pattern: prod
approvals:
  - band: medium
    roles: [manager]
  - band: high
    roles: [security_lead, admin]
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(samplePolicyYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if p.Version != "1" {
		t.Errorf("Version = %q, want 1", p.Version)
	}
	if p.SelfApprove.MaxRiskScore != 4 {
		t.Errorf("SelfApprove.MaxRiskScore = %d, want 4", p.SelfApprove.MaxRiskScore)
	}
	if len(p.Approvals) != 2 {
		t.Fatalf("len(Approvals) = %d, want 2", len(p.Approvals))
	}
	if len(p.Approvals[1].Roles) != 2 {
		t.Errorf("high tier roles = %v, want two roles", p.Approvals[1].Roles)
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: "empty policy",
		},
		{
			name:    "whitespace only",
			input:   "   \n\t  ",
			wantErr: "empty policy",
		},
		{
			name:    "invalid yaml",
			input:   "version: [unclosed",
			wantErr: "yaml",
		},
		{
			name:    "missing version",
			input:   "self_approve:\n  max_risk_score: 4\n",
			wantErr: "missing version",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestParseFromReader(t *testing.T) {
	p, err := ParseFromReader(strings.NewReader(samplePolicyYAML))
	if err != nil {
		t.Fatalf("ParseFromReader() error: %v", err)
	}
	if p.Version != "1" {
		t.Errorf("Version = %q, want 1", p.Version)
	}
}
