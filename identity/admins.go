package identity

import (
	"context"
	"strings"
)

// StaticAuthorizer authorizes admin actions against a fixed actor list,
// typically loaded from tool configuration. Matching is case-insensitive
// because emails arrive in whatever case the identity provider used.
type StaticAuthorizer struct {
	admins map[string]struct{}
}

// NewStaticAuthorizer builds an authorizer over the given actors.
func NewStaticAuthorizer(admins []string) *StaticAuthorizer {
	set := make(map[string]struct{}, len(admins))
	for _, admin := range admins {
		set[strings.ToLower(strings.TrimSpace(admin))] = struct{}{}
	}
	return &StaticAuthorizer{admins: set}
}

// IsAdmin reports whether the actor is in the admin list.
func (a *StaticAuthorizer) IsAdmin(ctx context.Context, actor string) (bool, error) {
	_, ok := a.admins[strings.ToLower(strings.TrimSpace(actor))]
	return ok, nil
}
