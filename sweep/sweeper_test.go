package sweep_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/byteness/leasegate/lifecycle"
	"github.com/byteness/leasegate/sweep"
	"github.com/byteness/leasegate/testutil"
)

// mockRunner records sweep invocations.
type mockRunner struct {
	mu sync.Mutex

	SweepFunc func(ctx context.Context, now time.Time) (lifecycle.SweepResult, error)

	Result lifecycle.SweepResult
	Err    error

	Calls []time.Time
}

func (m *mockRunner) SweepExpirations(ctx context.Context, now time.Time) (lifecycle.SweepResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, now)
	m.mu.Unlock()

	if m.SweepFunc != nil {
		return m.SweepFunc(ctx, now)
	}
	return m.Result, m.Err
}

func (m *mockRunner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// mockPublisher records published results.
type mockPublisher struct {
	mu sync.Mutex

	Err     error
	Results []lifecycle.SweepResult
}

func (m *mockPublisher) PublishSweep(ctx context.Context, result lifecycle.SweepResult) error {
	m.mu.Lock()
	m.Results = append(m.Results, result)
	m.mu.Unlock()
	return m.Err
}

func TestSweepOnce(t *testing.T) {
	now := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)
	runner := &mockRunner{Result: lifecycle.SweepResult{Examined: 3, Expired: 2}}
	publisher := &mockPublisher{}

	s := sweep.NewSweeper(runner,
		sweep.WithClock(testutil.FixedClock(now)),
		sweep.WithMetrics(publisher),
	)

	result, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce() error: %v", err)
	}
	if result.Expired != 2 {
		t.Errorf("Expired = %d, want 2", result.Expired)
	}

	if len(runner.Calls) != 1 {
		t.Fatalf("runner calls = %d, want 1", len(runner.Calls))
	}
	if !runner.Calls[0].Equal(now) {
		t.Errorf("sweep time = %v, want %v", runner.Calls[0], now)
	}
	if len(publisher.Results) != 1 {
		t.Fatalf("published results = %d, want 1", len(publisher.Results))
	}
	if publisher.Results[0].Examined != 3 {
		t.Errorf("published Examined = %d, want 3", publisher.Results[0].Examined)
	}
}

func TestSweepOnceRunnerError(t *testing.T) {
	runner := &mockRunner{Err: errors.New("store unavailable")}
	publisher := &mockPublisher{}

	s := sweep.NewSweeper(runner, sweep.WithMetrics(publisher))

	if _, err := s.SweepOnce(context.Background()); err == nil {
		t.Fatal("expected runner error")
	}
	if len(publisher.Results) != 0 {
		t.Error("no metrics should be published for a failed sweep")
	}
}

func TestSweepOncePublishFailureIsNonFatal(t *testing.T) {
	runner := &mockRunner{Result: lifecycle.SweepResult{Examined: 1}}
	publisher := &mockPublisher{Err: errors.New("cloudwatch throttled")}

	s := sweep.NewSweeper(runner, sweep.WithMetrics(publisher))

	if _, err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() error: %v, want metric failure swallowed", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	runner := &mockRunner{}
	s := sweep.NewSweeper(runner, sweep.WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// let at least one tick fire
	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	if runner.callCount() == 0 {
		t.Error("expected at least one sweep pass before cancellation")
	}
}

func TestRunKeepsGoingAfterSweepError(t *testing.T) {
	runner := &mockRunner{Err: errors.New("transient")}
	s := sweep.NewSweeper(runner, sweep.WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	_ = s.Run(ctx)

	if runner.callCount() < 2 {
		t.Errorf("runner calls = %d, want the loop to continue past errors", runner.callCount())
	}
}
