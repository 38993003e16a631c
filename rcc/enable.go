package rcc

import (
	"omibyte.io/g0hal/mmio"
)

// modify sets or clears p's bit in one of its bus registers. The bus lock
// keeps concurrent callers from losing each other's bits.
func (r *registers) modify(p Peripheral, reg func(busRegisters) uint32, set bool) {
	info := p.info()
	register := mmio.NewRegister(r.bus, reg(busTable[info.bus]))

	r.busLocks[info.bus].Lock()
	defer r.busLocks[info.bus].Unlock()
	if set {
		register.SetBits(p.mask())
	} else {
		register.ClearBits(p.mask())
	}
}

func enr(b busRegisters) uint32   { return b.enr }
func rstr(b busRegisters) uint32  { return b.rstr }
func smenr(b busRegisters) uint32 { return b.smenr }

// Enable gates the clock of p on. It panics if the handle was consumed by
// a later Freeze.
func (r *Rcc) Enable(p Peripheral) {
	regs := r.mustRegs()
	regs.modify(p, enr, true)
	regs.log.Debug("peripheral enabled", "peripheral", p.String(), "bus", p.Bus().String())
}

func (r *Rcc) Disable(p Peripheral) {
	r.mustRegs().modify(p, enr, false)
}

// IsEnabled reports whether p's clock is gated on.
func (r *Rcc) IsEnabled(p Peripheral) bool {
	regs := r.mustRegs()
	info := p.info()
	return mmio.NewRegister(regs.bus, enr(busTable[info.bus])).HasBits(p.mask())
}

// Reset pulses p's reset line: the bit is set and cleared again under one
// bus lock, so no enable on the same bus interleaves with the pulse.
// Peripherals without a reset bit are left untouched.
func (r *Rcc) Reset(p Peripheral) {
	regs := r.mustRegs()
	info := p.info()
	if info.flags&hasReset == 0 {
		regs.log.Debug("peripheral has no reset line", "peripheral", info.name)
		return
	}
	register := mmio.NewRegister(regs.bus, rstr(busTable[info.bus]))

	regs.busLocks[info.bus].Lock()
	defer regs.busLocks[info.bus].Unlock()
	register.SetBits(p.mask())
	register.ClearBits(p.mask())
}

// SleepModeEnable keeps p clocked while the core sleeps.
func (r *Rcc) SleepModeEnable(p Peripheral) {
	if p.HasSleepMode() {
		r.mustRegs().modify(p, smenr, true)
	}
}

func (r *Rcc) SleepModeDisable(p Peripheral) {
	if p.HasSleepMode() {
		r.mustRegs().modify(p, smenr, false)
	}
}
