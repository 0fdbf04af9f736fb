package policy

import (
	"fmt"
	"io"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/risk"
)

// Validate checks if the GovernancePolicy is semantically correct.
// It verifies the version is supported and every threshold and approval
// tier is well-formed.
func (p *GovernancePolicy) Validate() error {
	if !versionSupported(p.Version) {
		return fmt.Errorf("unsupported policy version '%s', supported versions: %v", p.Version, SupportedVersions)
	}

	if p.SelfApprove.MaxRiskScore < risk.MinScore || p.SelfApprove.MaxRiskScore > risk.MaxScore {
		return fmt.Errorf("self_approve.max_risk_score %d out of range [%d, %d]",
			p.SelfApprove.MaxRiskScore, risk.MinScore, risk.MaxScore)
	}

	if err := p.Risk.validate(); err != nil {
		return err
	}
	if err := p.Anomaly.validate(); err != nil {
		return err
	}

	seen := make(map[risk.Band]bool, len(p.Approvals))
	for i, tier := range p.Approvals {
		if err := tier.validate(i); err != nil {
			return err
		}
		if seen[tier.Band] {
			return fmt.Errorf("duplicate approval tier for band '%s'", tier.Band)
		}
		seen[tier.Band] = true
	}

	return nil
}

func (r *RiskThresholds) validate() error {
	if err := validateHour("risk.business_start_hour", r.BusinessStartHour); err != nil {
		return err
	}
	if err := validateHour("risk.business_end_hour", r.BusinessEndHour); err != nil {
		return err
	}
	if r.HighAbove != 0 && r.MediumAbove != 0 && r.MediumAbove > r.HighAbove {
		return fmt.Errorf("risk.medium_above %d exceeds risk.high_above %d", r.MediumAbove, r.HighAbove)
	}
	if r.MinJustificationLength < 0 {
		return fmt.Errorf("risk.min_justification_length must not be negative")
	}
	if r.ActionFanOut < 0 {
		return fmt.Errorf("risk.action_fan_out must not be negative")
	}
	for i, rule := range r.Classification {
		if rule.Pattern == "" {
			return fmt.Errorf("risk.classification entry %d has an empty pattern", i)
		}
		if rule.Weight < 0 {
			return fmt.Errorf("risk.classification pattern %q has negative weight %d", rule.Pattern, rule.Weight)
		}
	}
	return nil
}

func (a *AnomalySettings) validate() error {
	if err := validateHour("anomaly.quiet_start_hour", a.QuietStartHour); err != nil {
		return err
	}
	if err := validateHour("anomaly.quiet_end_hour", a.QuietEndHour); err != nil {
		return err
	}
	if a.BurstWindowMinutes < 0 {
		return fmt.Errorf("anomaly.burst_window_minutes must not be negative")
	}
	if a.BurstThreshold < 0 {
		return fmt.Errorf("anomaly.burst_threshold must not be negative")
	}
	return nil
}

func (t *ApprovalTier) validate(index int) error {
	switch t.Band {
	case risk.BandLow, risk.BandMedium, risk.BandHigh:
	default:
		return fmt.Errorf("approval tier at index %d has invalid band '%s'", index, t.Band)
	}
	if len(t.Roles) == 0 {
		return fmt.Errorf("approval tier for band '%s' has no roles", t.Band)
	}
	for _, role := range t.Roles {
		if !role.IsValid() {
			return fmt.Errorf("invalid approver role '%s' in tier for band '%s'", role, t.Band)
		}
		if role == grant.RoleSelf {
			return fmt.Errorf("approval tier for band '%s' must not require the self role", t.Band)
		}
	}
	return nil
}

func validateHour(field string, hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%s %d out of range [0, 23]", field, hour)
	}
	return nil
}

// ValidatePolicy validates a policy from raw YAML bytes.
// Returns a detailed error if validation fails, nil if valid.
// This is the entry point for CLI validation commands.
func ValidatePolicy(data []byte) error {
	p, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// ValidatePolicyFromReader validates a policy from an io.Reader.
// Convenient for validating files.
func ValidatePolicyFromReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read policy: %w", err)
	}
	return ValidatePolicy(data)
}
