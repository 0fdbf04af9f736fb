package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/byteness/leasegate/inventory"
	"github.com/byteness/leasegate/synth"
)

func TestStaticResolver(t *testing.T) {
	catalog := map[string]map[string][]synth.ResourceRef{
		"123456789012": {
			"s3": {
				{ID: "data-bucket", Name: "data-bucket", Type: "bucket"},
				{ID: "logs-bucket", Name: "logs-bucket", Type: "bucket"},
			},
		},
	}
	resolver := inventory.NewStaticResolver(catalog)

	testCases := []struct {
		name      string
		accountID string
		serviceID string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "known pair",
			accountID: "123456789012",
			serviceID: "s3",
			wantCount: 2,
		},
		{
			name:      "unknown service",
			accountID: "123456789012",
			serviceID: "dynamodb",
			wantErr:   true,
		},
		{
			name:      "unknown account",
			accountID: "999999999999",
			serviceID: "s3",
			wantErr:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			refs, err := resolver.Resolve(context.Background(), tc.accountID, tc.serviceID)

			if tc.wantErr {
				var uerr *inventory.UnknownServiceError
				if !errors.As(err, &uerr) {
					t.Fatalf("error = %v, want *UnknownServiceError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if len(refs) != tc.wantCount {
				t.Errorf("refs = %d, want %d", len(refs), tc.wantCount)
			}
		})
	}
}

func TestStaticResolverCopies(t *testing.T) {
	catalog := map[string]map[string][]synth.ResourceRef{
		"123456789012": {"s3": {{ID: "data-bucket"}}},
	}
	resolver := inventory.NewStaticResolver(catalog)

	refs, err := resolver.Resolve(context.Background(), "123456789012", "s3")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	refs[0].ID = "mutated"

	again, _ := resolver.Resolve(context.Background(), "123456789012", "s3")
	if again[0].ID != "data-bucket" {
		t.Error("callers must not be able to mutate the catalog")
	}
}
