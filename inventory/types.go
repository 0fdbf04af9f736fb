// Package inventory discovers what a requester can ask for: the accounts
// in the organization, the pre-approved permission sets in an account,
// and the concrete resources a service selection can name.
package inventory

// Account is a member account of the organization.
type Account struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Status string `json:"status"`
}

// Active reports whether the account can receive grants.
func (a Account) Active() bool {
	return a.Status == "ACTIVE"
}

// PermissionSet is a pre-approved, customer-managed policy a request can
// reference instead of explicit service selections.
type PermissionSet struct {
	Name        string `json:"name"`
	ARN         string `json:"arn"`
	Description string `json:"description,omitempty"`
}
