// Package identity resolves who is calling. Requests and approvals are
// keyed by email, so the main job is turning an STS caller identity into
// a usable actor identifier.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// CallerType classifies the identity behind an ARN.
type CallerType string

const (
	TypeUser          CallerType = "user"
	TypeAssumedRole   CallerType = "assumed-role"
	TypeFederatedUser CallerType = "federated-user"
	TypeRoot          CallerType = "root"
)

var (
	// ErrEmptyARN indicates an empty ARN was provided.
	ErrEmptyARN = errors.New("ARN cannot be empty")
	// ErrInvalidARN indicates the ARN format is invalid.
	ErrInvalidARN = errors.New("invalid ARN format")
	// ErrUnsupportedIdentity indicates the ARN names an identity kind
	// that cannot act on requests.
	ErrUnsupportedIdentity = errors.New("unsupported identity in ARN")
)

// Caller is the parsed identity of whoever holds the current credentials.
type Caller struct {
	// ARN is the full caller ARN.
	ARN string
	// AccountID is the 12-digit account the credentials belong to.
	AccountID string
	// Type classifies the identity.
	Type CallerType
	// Username is the last path component: the IAM user name, the
	// assumed-role session name, or the federated user name.
	Username string
}

// Actor returns the identifier used for requests and approvals. SSO
// session names are the user's email, which is exactly what the request
// records key on; for anything else the username stands in.
func (c Caller) Actor() string {
	return c.Username
}

// IsEmail reports whether the username looks like an email address, as
// SSO-issued session names do.
func (c Caller) IsEmail() bool {
	at := strings.Index(c.Username, "@")
	return at > 0 && at < len(c.Username)-1
}

// ParseARN extracts the caller identity from an IAM or STS ARN.
//
// Recognized forms:
//   - arn:aws:iam::123456789012:user/alice
//   - arn:aws:iam::123456789012:user/team/alice
//   - arn:aws:iam::123456789012:root
//   - arn:aws:sts::123456789012:assumed-role/RoleName/alice@example.com
//   - arn:aws:sts::123456789012:federated-user/alice
func ParseARN(arn string) (*Caller, error) {
	if arn == "" {
		return nil, ErrEmptyARN
	}

	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[0] != "arn" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidARN, arn)
	}

	service := parts[2]
	accountID := parts[4]
	resource := parts[5]

	if len(accountID) != 12 {
		return nil, fmt.Errorf("%w: account ID must be 12 digits, got %q", ErrInvalidARN, accountID)
	}

	caller := &Caller{ARN: arn, AccountID: accountID}

	switch {
	case service == "iam" && resource == "root":
		caller.Type = TypeRoot
		caller.Username = "root"

	case service == "iam" && strings.HasPrefix(resource, "user/"):
		caller.Type = TypeUser
		caller.Username = lastPathComponent(strings.TrimPrefix(resource, "user/"))

	case service == "sts" && strings.HasPrefix(resource, "assumed-role/"):
		caller.Type = TypeAssumedRole
		rolePath := strings.TrimPrefix(resource, "assumed-role/")
		segments := strings.SplitN(rolePath, "/", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("%w: assumed-role needs role-name/session-name", ErrInvalidARN)
		}
		caller.Username = segments[1]

	case service == "sts" && strings.HasPrefix(resource, "federated-user/"):
		caller.Type = TypeFederatedUser
		caller.Username = strings.TrimPrefix(resource, "federated-user/")

	default:
		return nil, fmt.Errorf("%w: %s %q", ErrUnsupportedIdentity, service, resource)
	}

	if caller.Username == "" {
		return nil, fmt.Errorf("%w: empty identity name", ErrInvalidARN)
	}
	return caller, nil
}

func lastPathComponent(path string) string {
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}
