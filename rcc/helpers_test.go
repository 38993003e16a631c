package rcc

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"omibyte.io/g0hal/poll"
	"omibyte.io/g0hal/sim"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// testPoller times out after 50 polls regardless of host speed.
func testPoller() poll.Poller {
	return poll.Poller{Timeout: 50 * time.Millisecond, Clock: &poll.StepClock{Step: time.Millisecond}}
}

func newTestRaw(t *testing.T, opts sim.Options, extra ...Option) (*sim.Device, *Raw) {
	t.Helper()
	opts.Logger = quietLogger
	dev := sim.New(opts)
	options := append([]Option{WithPoller(testPoller()), WithLogger(quietLogger)}, extra...)
	return dev, New(dev, options...)
}

func mustFreeze(t *testing.T, raw *Raw, cfg Config) *Rcc {
	t.Helper()
	rcc, err := raw.Freeze(testContext(t), cfg)
	if err != nil {
		t.Fatalf("Freeze(%v): %v", cfg.Source, err)
	}
	return rcc
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
