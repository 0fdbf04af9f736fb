package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/byteness/leasegate/policy"
)

// countingLoader counts Load calls and serves canned results.
type countingLoader struct {
	calls    int
	policies map[string]*policy.GovernancePolicy
	err      error
}

func (l *countingLoader) Load(ctx context.Context, parameterName string) (*policy.GovernancePolicy, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	p, ok := l.policies[parameterName]
	if !ok {
		return nil, policy.ErrPolicyNotFound
	}
	return p, nil
}

func TestCachedLoaderServesFromCache(t *testing.T) {
	underlying := &countingLoader{
		policies: map[string]*policy.GovernancePolicy{
			"/leasegate/policies/default": policy.Default(),
		},
	}
	cached := policy.NewCachedLoader(underlying, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := cached.Load(context.Background(), "/leasegate/policies/default"); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
	}

	if underlying.calls != 1 {
		t.Errorf("underlying calls = %d, want 1", underlying.calls)
	}
}

func TestCachedLoaderExpiredEntryReloads(t *testing.T) {
	underlying := &countingLoader{
		policies: map[string]*policy.GovernancePolicy{
			"/leasegate/policies/default": policy.Default(),
		},
	}
	cached := policy.NewCachedLoader(underlying, -time.Second)

	cached.Load(context.Background(), "/leasegate/policies/default")
	cached.Load(context.Background(), "/leasegate/policies/default")

	if underlying.calls != 2 {
		t.Errorf("underlying calls = %d, want 2", underlying.calls)
	}
}

func TestCachedLoaderDoesNotCacheErrors(t *testing.T) {
	underlying := &countingLoader{err: errors.New("ThrottlingException: rate exceeded")}
	cached := policy.NewCachedLoader(underlying, time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := cached.Load(context.Background(), "/leasegate/policies/default"); err == nil {
			t.Fatal("expected error")
		}
	}

	if underlying.calls != 2 {
		t.Errorf("underlying calls = %d, want 2 (errors not cached)", underlying.calls)
	}
}

func TestCachedLoaderInvalidate(t *testing.T) {
	underlying := &countingLoader{
		policies: map[string]*policy.GovernancePolicy{
			"/leasegate/policies/default": policy.Default(),
		},
	}
	cached := policy.NewCachedLoader(underlying, time.Hour)

	cached.Load(context.Background(), "/leasegate/policies/default")
	cached.Invalidate("/leasegate/policies/default")
	cached.Load(context.Background(), "/leasegate/policies/default")

	if underlying.calls != 2 {
		t.Errorf("underlying calls = %d, want 2 after invalidation", underlying.calls)
	}
}

func TestCachedLoaderSeparateParameters(t *testing.T) {
	underlying := &countingLoader{
		policies: map[string]*policy.GovernancePolicy{
			"/leasegate/policies/default": policy.Default(),
			"/leasegate/policies/strict":  policy.Default(),
		},
	}
	cached := policy.NewCachedLoader(underlying, time.Hour)

	cached.Load(context.Background(), "/leasegate/policies/default")
	cached.Load(context.Background(), "/leasegate/policies/strict")
	cached.Load(context.Background(), "/leasegate/policies/default")

	if underlying.calls != 2 {
		t.Errorf("underlying calls = %d, want 2 (one per parameter)", underlying.calls)
	}
}
