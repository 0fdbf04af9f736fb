package inventory

import (
	"context"
	"fmt"

	"github.com/byteness/leasegate/synth"
)

// ResourceResolver discovers the concrete resources a service selection
// can name in an account (bucket names, table names, function names).
// Implementations typically query per-service list APIs in the target
// account; a static catalog works for small fleets.
type ResourceResolver interface {
	Resolve(ctx context.Context, accountID, serviceID string) ([]synth.ResourceRef, error)
}

// UnknownServiceError is returned when no resources are catalogued for a
// service in an account.
type UnknownServiceError struct {
	AccountID string
	ServiceID string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("no resources catalogued for service %q in account %s", e.ServiceID, e.AccountID)
}

// StaticResolver serves resources from a fixed catalog, keyed by account
// then service. Useful when the fleet is small enough to describe in
// configuration.
type StaticResolver struct {
	catalog map[string]map[string][]synth.ResourceRef
}

// NewStaticResolver builds a resolver over the given catalog.
func NewStaticResolver(catalog map[string]map[string][]synth.ResourceRef) *StaticResolver {
	return &StaticResolver{catalog: catalog}
}

// Resolve returns the catalogued resources for the account/service pair.
func (r *StaticResolver) Resolve(ctx context.Context, accountID, serviceID string) ([]synth.ResourceRef, error) {
	services, ok := r.catalog[accountID]
	if !ok {
		return nil, &UnknownServiceError{AccountID: accountID, ServiceID: serviceID}
	}
	refs, ok := services[serviceID]
	if !ok || len(refs) == 0 {
		return nil, &UnknownServiceError{AccountID: accountID, ServiceID: serviceID}
	}

	out := make([]synth.ResourceRef, len(refs))
	copy(out, refs)
	return out, nil
}
