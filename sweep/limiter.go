package sweep

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/provision"
)

// Default teardown pacing: the IAM control plane throttles aggressively,
// and a large sweep can queue hundreds of detach/delete sequences.
const (
	DefaultTeardownRate  = rate.Limit(5)
	DefaultTeardownBurst = 5
)

// RateLimitedProvisioner wraps a Provisioner and paces its cloud calls.
// A sweep that expires many grants at once otherwise hammers IAM with
// teardown bursts.
type RateLimitedProvisioner struct {
	inner   provision.Provisioner
	limiter *rate.Limiter
}

// NewRateLimitedProvisioner wraps inner with the default pacing.
func NewRateLimitedProvisioner(inner provision.Provisioner) *RateLimitedProvisioner {
	return &RateLimitedProvisioner{
		inner:   inner,
		limiter: rate.NewLimiter(DefaultTeardownRate, DefaultTeardownBurst),
	}
}

// NewRateLimitedProvisionerWithLimiter wraps inner with an explicit limiter.
func NewRateLimitedProvisionerWithLimiter(inner provision.Provisioner, limiter *rate.Limiter) *RateLimitedProvisioner {
	return &RateLimitedProvisioner{inner: inner, limiter: limiter}
}

// Apply waits for a limiter token, then provisions.
func (p *RateLimitedProvisioner) Apply(ctx context.Context, req *grant.AccessRequest) (*grant.GrantHandle, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for provisioning slot: %w", err)
	}
	return p.inner.Apply(ctx, req)
}

// Revoke waits for a limiter token, then tears down.
func (p *RateLimitedProvisioner) Revoke(ctx context.Context, req *grant.AccessRequest) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for teardown slot: %w", err)
	}
	return p.inner.Revoke(ctx, req)
}
