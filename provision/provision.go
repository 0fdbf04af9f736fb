// Package provision is the cloud boundary for granting and revoking
// temporary access. The lifecycle controller hands it an approved request;
// it creates the IAM artifacts that make the grant real and tears them
// down again on revocation or expiry.
package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/byteness/leasegate/grant"
)

// Provisioner applies and revokes cloud grants for access requests.
type Provisioner interface {
	// Apply provisions cloud access for an approved request and returns
	// a handle identifying the created artifacts.
	Apply(ctx context.Context, req *grant.AccessRequest) (*grant.GrantHandle, error)

	// Revoke tears down the artifacts recorded on the request's handle.
	// Revoking an already-removed grant is not an error.
	Revoke(ctx context.Context, req *grant.AccessRequest) error
}

// GrantName derives the IAM artifact name for a request:
// JIT_{last 6 of account}_{first 8 of user}_{first 6 of request ID}.
// The user portion is the email local part with non-alphanumerics removed,
// keeping names valid for IAM and still traceable to the requester.
func GrantName(req *grant.AccessRequest) string {
	account := req.AccountID
	if len(account) > 6 {
		account = account[len(account)-6:]
	}

	user := req.RequesterEmail
	if at := strings.Index(user, "@"); at >= 0 {
		user = user[:at]
	}
	user = sanitizeNamePart(user)
	if len(user) > 8 {
		user = user[:8]
	}

	id := req.ID
	if len(id) > 6 {
		id = id[:6]
	}

	return fmt.Sprintf("JIT_%s_%s_%s", account, user, id)
}

func sanitizeNamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}
