package rollout

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
)

const (
	defaultTimeout      = 900 * time.Second
	defaultPollInterval = 5 * time.Second
)

var (
	// ErrDeploymentTimedOut is returned when the deployment is still active at the ceiling.
	ErrDeploymentTimedOut = errors.New("deployment timed out")
	// ErrDeploymentFailed is returned when the deployment ends in any state but COMPLETED.
	ErrDeploymentFailed = errors.New("deployment failed")
)

// StatusFetcher reads the current status of a deployment.
type StatusFetcher interface {
	Status(ctx context.Context, id string) (domain.DeploymentStatus, error)
}

// Clock abstracts time for the wait loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// WaiterOption configures a Waiter.
type WaiterOption func(*Waiter)

// WithTimeout sets the ceiling for the deployment to leave the ACTIVE state.
func WithTimeout(timeout time.Duration) WaiterOption {
	return func(w *Waiter) {
		if timeout > 0 {
			w.timeout = timeout
		}
	}
}

// WithPollInterval sets the delay between two status requests.
func WithPollInterval(interval time.Duration) WaiterOption {
	return func(w *Waiter) {
		if interval >= 0 {
			w.interval = interval
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) WaiterOption {
	return func(w *Waiter) {
		w.clock = clock
	}
}

// Waiter polls a deployment until it leaves the ACTIVE state.
type Waiter struct {
	fetcher  StatusFetcher
	timeout  time.Duration
	interval time.Duration
	clock    Clock
}

// NewWaiter creates a waiter with a 900 second ceiling and a 5 second poll interval.
func NewWaiter(fetcher StatusFetcher, options ...WaiterOption) *Waiter {
	w := &Waiter{
		fetcher:  fetcher,
		timeout:  defaultTimeout,
		interval: defaultPollInterval,
		clock:    realClock{},
	}

	for _, option := range options {
		option(w)
	}

	return w
}

// Wait blocks until deployment id completes, fails, times out or ctx is done.
// It returns the time spent waiting.
func (w *Waiter) Wait(ctx context.Context, id string) (time.Duration, error) {
	start := w.clock.Now()
	status := domain.DeploymentStatusActive

	for w.clock.Now().Sub(start) < w.timeout {
		var err error

		status, err = w.fetcher.Status(ctx, id)
		if err != nil {
			return w.clock.Now().Sub(start), err
		}

		if status.IsTerminal() {
			break
		}

		logger.DebugKV(ctx, "Deployment is still active", "deployment_id", id)

		select {
		case <-ctx.Done():
			return w.clock.Now().Sub(start), fmt.Errorf("wait for deployment %s: %w", id, ctx.Err())
		case <-w.clock.After(w.interval):
		}
	}

	elapsed := w.clock.Now().Sub(start)

	switch status {
	case domain.DeploymentStatusCompleted:
		return elapsed, nil
	case domain.DeploymentStatusActive:
		return elapsed, fmt.Errorf("deployment %s after %s: %w", id, elapsed, ErrDeploymentTimedOut)
	default:
		return elapsed, fmt.Errorf("deployment %s: %w: %s", id, ErrDeploymentFailed, status)
	}
}
