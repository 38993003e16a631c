// Package rcc configures the STM32G0 clock tree and gates peripheral
// clocks.
//
// A Raw handle owns the RCC register block until it is frozen with a Config.
// Freezing moves the registers into an Rcc handle that carries the resulting
// Clocks; the Raw handle is spent afterwards. Peripheral drivers take the
// frozen handle to enable and reset their peripheral and to read the
// frequencies they derive timing from.
package rcc

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/logging"
	"omibyte.io/g0hal/mmio"
	"omibyte.io/g0hal/poll"
	"omibyte.io/g0hal/targets"
)

// registers is the register block and everything needed to drive it. Exactly
// one handle points at it at a time.
type registers struct {
	cr       mmio.Register
	cfgr     mmio.Register
	pllcfgr  mmio.Register
	apbenr1  mmio.Register
	bdcr     mmio.Register
	csr      mmio.Register
	flashACR mmio.Register
	pwrCR1   mmio.Register
	bus      mmio.Bus

	// ctrl serializes oscillator, PLL and CFGR sequences.
	ctrl sync.Mutex
	// busLocks serialize read-modify-write on each bus's enable, reset and
	// sleep registers.
	busLocks [numBuses]sync.Mutex

	poller poll.Poller
	log    *slog.Logger
	target *targets.TargetInfo
}

// Option customizes a Raw handle.
type Option func(*registers)

// WithPoller bounds every hardware wait. The default is poll.Default().
func WithPoller(p poll.Poller) Option {
	return func(r *registers) {
		r.poller = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *registers) {
		r.log = logger
	}
}

// WithTarget checks configurations against the limits of a chip line.
func WithTarget(t targets.TargetInfo) Option {
	return func(r *registers) {
		r.target = &t
	}
}

// New takes ownership of the RCC behind bus.
func New(bus mmio.Bus, opts ...Option) *Raw {
	regs := &registers{
		cr:       mmio.NewRegister(bus, stm32g0.RCC_CR),
		cfgr:     mmio.NewRegister(bus, stm32g0.RCC_CFGR),
		pllcfgr:  mmio.NewRegister(bus, stm32g0.RCC_PLLCFGR),
		apbenr1:  mmio.NewRegister(bus, stm32g0.RCC_APBENR1),
		bdcr:     mmio.NewRegister(bus, stm32g0.RCC_BDCR),
		csr:      mmio.NewRegister(bus, stm32g0.RCC_CSR),
		flashACR: mmio.NewRegister(bus, stm32g0.FLASH_ACR),
		pwrCR1:   mmio.NewRegister(bus, stm32g0.PWR_CR1),
		bus:      bus,
		poller:   poll.Default(),
	}
	for _, opt := range opts {
		opt(regs)
	}
	if regs.log == nil {
		regs.log = logging.For(logging.ComponentRCC)
	}

	raw := &Raw{}
	raw.regs.Store(regs)
	return raw
}

// Raw is the unconfigured clock controller.
type Raw struct {
	regs atomic.Pointer[registers]
}

// Freeze programs cfg and returns the frozen handle. r is consumed on
// success. On failure r keeps the registers, but the hardware may be left
// partially configured if the failure happened after validation.
func (r *Raw) Freeze(ctx context.Context, cfg Config) (*Rcc, error) {
	return freezeFrom(ctx, &r.regs, cfg)
}

// Rcc is the frozen clock controller.
type Rcc struct {
	regs   atomic.Pointer[registers]
	clocks Clocks
}

// Clocks returns the snapshot taken when this handle was frozen.
func (r *Rcc) Clocks() Clocks { return r.clocks }

// Freeze reconfigures the clock tree. Like Raw.Freeze it consumes r on
// success and leaves r usable on failure.
func (r *Rcc) Freeze(ctx context.Context, cfg Config) (*Rcc, error) {
	return freezeFrom(ctx, &r.regs, cfg)
}

func freezeFrom(ctx context.Context, owner *atomic.Pointer[registers], cfg Config) (*Rcc, error) {
	regs := owner.Swap(nil)
	if regs == nil {
		return nil, ErrHandleConsumed
	}

	clocks, err := regs.freeze(ctx, cfg)
	if err != nil {
		owner.Store(regs)
		return nil, err
	}

	frozen := &Rcc{clocks: clocks}
	frozen.regs.Store(regs)
	return frozen, nil
}

// mustRegs returns the register block or panics if the handle was consumed.
func (r *Rcc) mustRegs() *registers {
	regs := r.regs.Load()
	if regs == nil {
		panic(ErrHandleConsumed)
	}
	return regs
}

func (r *Rcc) loadRegs() (*registers, error) {
	regs := r.regs.Load()
	if regs == nil {
		return nil, ErrHandleConsumed
	}
	return regs, nil
}
