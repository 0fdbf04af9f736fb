package grant

import (
	"fmt"
	"net/mail"
)

// Validate checks if the AccessRequest is semantically correct.
// It verifies all required fields are present, exactly one grant-spec form
// is populated, and the lease arithmetic invariants hold.
func (r *AccessRequest) Validate() error {
	if !ValidateRequestID(r.ID) {
		return fmt.Errorf("invalid request ID: must be %d lowercase hex characters", RequestIDLength)
	}

	if r.RequesterEmail == "" {
		return fmt.Errorf("requester email cannot be empty")
	}
	if _, err := mail.ParseAddress(r.RequesterEmail); err != nil {
		return fmt.Errorf("invalid requester email %q", r.RequesterEmail)
	}

	if r.AccountID == "" {
		return fmt.Errorf("account cannot be empty")
	}
	if r.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}

	if r.Justification == "" {
		return fmt.Errorf("justification cannot be empty")
	}
	if len(r.Justification) > MaxJustificationLength {
		return fmt.Errorf("justification too long: maximum %d characters", MaxJustificationLength)
	}

	// Exactly one grant-spec form: permission set XOR service selections.
	switch {
	case r.Spec.HasPermissionSet() && r.Spec.HasServices():
		return fmt.Errorf("grant spec must not contain both a permission set and service selections")
	case !r.Spec.HasPermissionSet() && !r.Spec.HasServices():
		return fmt.Errorf("grant spec must contain a permission set or service selections")
	}

	if !r.Status.IsValid() {
		return fmt.Errorf("invalid status: %q", r.Status)
	}

	if r.DurationHours < 1 {
		return fmt.Errorf("duration must be at least 1 hour")
	}

	if r.RiskScore < MinRiskScore || r.RiskScore > MaxRiskScore {
		return fmt.Errorf("risk score %d outside range [%d, %d]", r.RiskScore, MinRiskScore, MaxRiskScore)
	}

	if r.CreatedAt.IsZero() {
		return fmt.Errorf("created_at cannot be zero")
	}
	if r.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at cannot be zero")
	}
	if r.ExpiresAt.IsZero() {
		return fmt.Errorf("expires_at cannot be zero")
	}
	if !r.ExpiresAt.After(r.CreatedAt) {
		return fmt.Errorf("expires_at must be after created_at")
	}

	return nil
}
