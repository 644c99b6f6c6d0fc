package campaign

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/ignite/mailflow/internal/domain"
)

// Dispatcher delivers one message. A nil error means the message was
// accepted. Implementations must return promptly once ctx is done.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *domain.EmailMessage) error
}

// RandSource yields uniform draws in [0, 1).
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// SimulatedDispatcher stands in for an SMTP transport. Each call waits
// BaseLatency plus a uniform share of Jitter, then succeeds when a second
// draw is greater than FailureRate. Message content is ignored.
type SimulatedDispatcher struct {
	BaseLatency time.Duration
	Jitter      time.Duration
	FailureRate float64
	Rand        RandSource
}

// NewSimulatedDispatcher returns a dispatcher using the global random source.
func NewSimulatedDispatcher(base, jitter time.Duration, failureRate float64) *SimulatedDispatcher {
	return &SimulatedDispatcher{
		BaseLatency: base,
		Jitter:      jitter,
		FailureRate: failureRate,
		Rand:        globalRand{},
	}
}

func (d *SimulatedDispatcher) rand() RandSource {
	if d.Rand == nil {
		return globalRand{}
	}
	return d.Rand
}

// Dispatch waits out the simulated latency and draws the outcome.
func (d *SimulatedDispatcher) Dispatch(ctx context.Context, _ *domain.EmailMessage) error {
	delay := d.BaseLatency + time.Duration(d.rand().Float64()*float64(d.Jitter))
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	if d.rand().Float64() > d.FailureRate {
		return nil
	}
	return ErrSMTPTimeout
}
