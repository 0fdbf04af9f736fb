// Package sweep runs the periodic expiration sweep that moves lapsed
// grants to expired and tears down their cloud artifacts.
package sweep

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/byteness/leasegate/lifecycle"
)

// DefaultInterval is how often the sweeper runs when no interval is
// configured.
const DefaultInterval = time.Minute

// Runner executes one expiration sweep. *lifecycle.Controller satisfies it.
type Runner interface {
	SweepExpirations(ctx context.Context, now time.Time) (lifecycle.SweepResult, error)
}

// Sweeper drives a Runner on a fixed interval and publishes the outcome
// of each pass as metrics.
type Sweeper struct {
	runner   Runner
	interval time.Duration
	metrics  Publisher
	now      func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithInterval overrides the sweep interval.
func WithInterval(interval time.Duration) Option {
	return func(s *Sweeper) {
		s.interval = interval
	}
}

// WithMetrics sets the metrics publisher.
func WithMetrics(metrics Publisher) Option {
	return func(s *Sweeper) {
		s.metrics = metrics
	}
}

// WithClock overrides the time source, for testing.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// NewSweeper returns a Sweeper for the given runner.
func NewSweeper(runner Runner, opts ...Option) *Sweeper {
	s := &Sweeper{
		runner:   runner,
		interval: DefaultInterval,
		metrics:  &NopPublisher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepOnce runs a single sweep pass and publishes its metrics. Metric
// publication failure does not fail the sweep; the result already stands
// in the store.
func (s *Sweeper) SweepOnce(ctx context.Context) (lifecycle.SweepResult, error) {
	result, err := s.runner.SweepExpirations(ctx, s.now())
	if err != nil {
		return result, fmt.Errorf("expiration sweep: %w", err)
	}

	if err := s.metrics.PublishSweep(ctx, result); err != nil {
		log.Printf("leasegate: publishing sweep metrics: %v", err)
	}
	return result, nil
}

// Run sweeps on the configured interval until the context is cancelled.
// Sweep errors are logged and the loop continues; a transient store or
// provisioning outage should not stop future passes.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				log.Printf("leasegate: %v", err)
			}
		}
	}
}
