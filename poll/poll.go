// Package poll implements bounded busy-waits on hardware status bits.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when a condition did not become true in time.
var ErrTimeout = errors.New("poll timeout")

// Clock is the time source a Poller measures its timeout against.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// StepClock advances by Step every time it is read. A poll loop driven by it
// times out after a fixed number of iterations regardless of host speed.
type StepClock struct {
	Step time.Duration

	mu  sync.Mutex
	now time.Time
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.Step)
	return c.now
}

// Poller waits for hardware conditions.
//
// A zero Timeout waits forever, as bare firmware does; cancellation through
// the context is still honoured.
type Poller struct {
	Timeout time.Duration
	Clock   Clock
}

// DefaultTimeout is generous for any on-chip oscillator; crystals start in
// milliseconds.
const DefaultTimeout = 100 * time.Millisecond

// Default returns a Poller with DefaultTimeout on the system clock.
func Default() Poller {
	return Poller{Timeout: DefaultTimeout, Clock: SystemClock}
}

// Until polls cond until it returns true, the context is done or the
// timeout expires.
func (p Poller) Until(ctx context.Context, cond func() bool) error {
	clock := p.Clock
	if clock == nil {
		clock = SystemClock
	}

	var deadline time.Time
	if p.Timeout > 0 {
		deadline = clock.Now().Add(p.Timeout)
	}

	for !cond() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !deadline.IsZero() && clock.Now().After(deadline) {
			// The condition may have settled while the clock was read.
			if cond() {
				return nil
			}
			return ErrTimeout
		}
	}
	return nil
}
