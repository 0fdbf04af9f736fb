package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/lifecycle"
	"github.com/byteness/leasegate/testutil"
)

// monday is a weekday morning inside business hours so submissions do not
// pick up time-based risk points unless a test wants them.
var monday = time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)

// testHarness bundles a controller built on mocks with the global state
// commands need.
type testHarness struct {
	store       *testutil.MockGrantStore
	provisioner *testutil.MockProvisioner
	logger      *testutil.MockLogger
	controller  *lifecycle.Controller
	leasegate   *Leasegate
}

type testAdmins []string

func (a testAdmins) IsAdmin(ctx context.Context, actor string) (bool, error) {
	for _, admin := range a {
		if admin == actor {
			return true, nil
		}
	}
	return false, nil
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	h := &testHarness{
		store:       testutil.NewMockGrantStore(),
		provisioner: testutil.NewMockProvisioner(),
		logger:      testutil.NewMockLogger(),
	}
	h.controller = lifecycle.NewController(h.store, h.provisioner, testutil.NewMockPolicyLoader(),
		lifecycle.WithClock(testutil.FixedClock(monday)),
		lifecycle.WithLogger(h.logger),
		lifecycle.WithAdminAuthorizer(testAdmins{"root@example.com"}),
	)

	// A config path that does not exist loads pure defaults.
	h.leasegate = &Leasegate{ConfigFile: filepath.Join(t.TempDir(), "config.yaml")}
	return h
}

// submitPending seeds a pending request through the real controller.
func (h *testHarness) submitPending(t *testing.T) *grant.AccessRequest {
	t.Helper()

	input := SubmitCommandInput{
		AccountID:     "123456789012",
		Services:      []string{"s3"},
		Actions:       []string{"s3:GetObject", "s3:ListBucket"},
		Resources:     []string{"data-bucket"},
		Justification: "investigating customer ticket 4821 in the order pipeline",
		DurationHours: 8,
		Controller:    h.controller,
		Actor:         "alice@example.com",
	}
	if err := SubmitCommand(context.Background(), input, h.leasegate); err != nil {
		t.Fatalf("SubmitCommand() error: %v", err)
	}
	if len(h.store.CreateCalls) == 0 {
		t.Fatal("no request was created")
	}
	return h.store.CreateCalls[len(h.store.CreateCalls)-1]
}
