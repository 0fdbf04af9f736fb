// Package policy defines the governance policy schema for leasegate.
// A governance policy controls who may self-approve, how requests are
// risk-scored and anomaly-checked, and which approver roles are required
// per risk band. Policies are stored in AWS Systems Manager Parameter
// Store and fetched on demand using the Loader type.
package policy

import (
	"time"

	"github.com/byteness/leasegate/anomaly"
	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/risk"
)

// SupportedVersions lists the policy schema versions this binary understands.
var SupportedVersions = []string{"1"}

// GovernancePolicy is the top-level governance document.
type GovernancePolicy struct {
	Version     string           `yaml:"version" json:"version"`
	SelfApprove SelfApproveRule  `yaml:"self_approve,omitempty" json:"self_approve,omitempty"`
	Risk        RiskThresholds   `yaml:"risk,omitempty" json:"risk,omitempty"`
	Anomaly     AnomalySettings  `yaml:"anomaly,omitempty" json:"anomaly,omitempty"`
	Approvals   []ApprovalTier   `yaml:"approvals,omitempty" json:"approvals,omitempty"`
}

// SelfApproveRule controls when a requester may approve their own request.
// Self-approval is permitted only if the request's risk score is at or
// below MaxRiskScore, and, when Users is non-empty, the requester appears
// in Users.
type SelfApproveRule struct {
	MaxRiskScore int      `yaml:"max_risk_score" json:"max_risk_score"`
	Users        []string `yaml:"users,omitempty" json:"users,omitempty"`
}

// ActionClassRule is one entry of a policy-supplied action
// classification table.
type ActionClassRule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Weight  int    `yaml:"weight" json:"weight"`
}

// RiskThresholds tunes the risk scoring engine. Zero-valued fields fall
// back to the engine defaults, and a non-empty Classification replaces
// the default action table entirely.
type RiskThresholds struct {
	Classification         []ActionClassRule `yaml:"classification,omitempty" json:"classification,omitempty"`
	BusinessStartHour      int               `yaml:"business_start_hour,omitempty" json:"business_start_hour,omitempty"`
	BusinessEndHour        int               `yaml:"business_end_hour,omitempty" json:"business_end_hour,omitempty"`
	MinJustificationLength int               `yaml:"min_justification_length,omitempty" json:"min_justification_length,omitempty"`
	ActionFanOut           int               `yaml:"action_fan_out,omitempty" json:"action_fan_out,omitempty"`
	HighAbove              int               `yaml:"high_above,omitempty" json:"high_above,omitempty"`
	MediumAbove            int               `yaml:"medium_above,omitempty" json:"medium_above,omitempty"`
}

// AnomalySettings tunes the anomaly detector. Zero-valued fields fall
// back to the detector defaults.
type AnomalySettings struct {
	QuietStartHour     int    `yaml:"quiet_start_hour,omitempty" json:"quiet_start_hour,omitempty"`
	QuietEndHour       int    `yaml:"quiet_end_hour,omitempty" json:"quiet_end_hour,omitempty"`
	BurstWindowMinutes int    `yaml:"burst_window_minutes,omitempty" json:"burst_window_minutes,omitempty"`
	BurstThreshold     int    `yaml:"burst_threshold,omitempty" json:"burst_threshold,omitempty"`
	ProductionPattern  string `yaml:"production_pattern,omitempty" json:"production_pattern,omitempty"`
}

// ApprovalTier names the approver roles required for a risk band. Any one
// of the listed roles is sufficient.
type ApprovalTier struct {
	Band  risk.Band            `yaml:"band" json:"band"`
	Roles []grant.ApproverRole `yaml:"roles" json:"roles"`
}

// Default returns the governance policy used when no parameter is
// published: self-approval up to a risk score of 4, engine defaults for
// scoring and detection, manager approval for medium risk and security
// lead approval for high risk.
func Default() *GovernancePolicy {
	return &GovernancePolicy{
		Version: "1",
		SelfApprove: SelfApproveRule{
			MaxRiskScore: 4,
		},
		Approvals: []ApprovalTier{
			{Band: risk.BandMedium, Roles: []grant.ApproverRole{grant.RoleManager, grant.RoleAdmin}},
			{Band: risk.BandHigh, Roles: []grant.ApproverRole{grant.RoleSecurityLead, grant.RoleAdmin}},
		},
	}
}

// RiskConfig converts the policy's risk thresholds to an engine config,
// filling unset fields from the defaults.
func (p *GovernancePolicy) RiskConfig() risk.Config {
	cfg := risk.DefaultConfig()
	if len(p.Risk.Classification) > 0 {
		table := make([]risk.ActionClass, len(p.Risk.Classification))
		for i, rule := range p.Risk.Classification {
			table[i] = risk.ActionClass{Pattern: rule.Pattern, Weight: rule.Weight}
		}
		cfg.Classification = table
	}
	if p.Risk.BusinessStartHour != 0 {
		cfg.BusinessStartHour = p.Risk.BusinessStartHour
	}
	if p.Risk.BusinessEndHour != 0 {
		cfg.BusinessEndHour = p.Risk.BusinessEndHour
	}
	if p.Risk.MinJustificationLength != 0 {
		cfg.MinJustificationLength = p.Risk.MinJustificationLength
	}
	if p.Risk.ActionFanOut != 0 {
		cfg.ActionFanOut = p.Risk.ActionFanOut
	}
	if p.Risk.HighAbove != 0 {
		cfg.HighAbove = p.Risk.HighAbove
	}
	if p.Risk.MediumAbove != 0 {
		cfg.MediumAbove = p.Risk.MediumAbove
	}
	return cfg
}

// AnomalyConfig converts the policy's anomaly settings to a detector
// config, filling unset fields from the defaults.
func (p *GovernancePolicy) AnomalyConfig() anomaly.Config {
	cfg := anomaly.DefaultConfig()
	if p.Anomaly.QuietStartHour != 0 {
		cfg.QuietStartHour = p.Anomaly.QuietStartHour
	}
	if p.Anomaly.QuietEndHour != 0 {
		cfg.QuietEndHour = p.Anomaly.QuietEndHour
	}
	if p.Anomaly.BurstWindowMinutes != 0 {
		cfg.BurstWindow = time.Duration(p.Anomaly.BurstWindowMinutes) * time.Minute
	}
	if p.Anomaly.BurstThreshold != 0 {
		cfg.BurstThreshold = p.Anomaly.BurstThreshold
	}
	if p.Anomaly.ProductionPattern != "" {
		cfg.ProductionPattern = p.Anomaly.ProductionPattern
	}
	return cfg
}

// AllowsSelfApproval reports whether the requester may approve their own
// request at the given risk score.
func (p *GovernancePolicy) AllowsSelfApproval(requester string, riskScore int) bool {
	if riskScore > p.SelfApprove.MaxRiskScore {
		return false
	}
	if len(p.SelfApprove.Users) == 0 {
		return true
	}
	for _, user := range p.SelfApprove.Users {
		if user == requester {
			return true
		}
	}
	return false
}

// RequiredRoles returns the approver roles that may approve a request in
// the given risk band. An empty result means any valid approver role is
// acceptable.
func (p *GovernancePolicy) RequiredRoles(band risk.Band) []grant.ApproverRole {
	for _, tier := range p.Approvals {
		if tier.Band == band {
			return tier.Roles
		}
	}
	return nil
}

// RoleSatisfies reports whether the given role meets the approval
// requirement for the band.
func (p *GovernancePolicy) RoleSatisfies(band risk.Band, role grant.ApproverRole) bool {
	required := p.RequiredRoles(band)
	if len(required) == 0 {
		return role.IsValid()
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}

func versionSupported(version string) bool {
	for _, v := range SupportedVersions {
		if v == version {
			return true
		}
	}
	return false
}
