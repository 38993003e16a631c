package rcc

import (
	"context"
	"fmt"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/mmio"
)

// startOscillator sets on in reg and waits for ready.
func (r *registers) startOscillator(ctx context.Context, name string, reg mmio.Register, on, ready uint32) error {
	reg.SetBits(on)
	if err := r.poller.Until(ctx, func() bool {
		return reg.HasBits(ready)
	}); err != nil {
		r.log.Error("oscillator failed to start", "oscillator", name, "error", err)
		return &OscillatorError{Oscillator: name, Err: err}
	}
	r.log.Debug("oscillator ready", "oscillator", name)
	return nil
}

func (r *registers) enableHSI(ctx context.Context) error {
	return r.startOscillator(ctx, "HSI", r.cr, stm32g0.RCC_CR_HSION, stm32g0.RCC_CR_HSIRDY)
}

// enableHSE selects crystal or bypass mode before switching HSE on; HSEBYP
// is only writable while HSE is off.
func (r *registers) enableHSE(ctx context.Context, bypass bool) error {
	if r.cr.HasBits(stm32g0.RCC_CR_HSERDY) {
		if r.cr.HasBits(stm32g0.RCC_CR_HSEBYP) != bypass {
			return &ConfigError{Field: "hse", Reason: fmt.Sprintf("HSE already running with bypass=%t", !bypass)}
		}
		return nil
	}
	if bypass {
		r.cr.SetBits(stm32g0.RCC_CR_HSEBYP)
	} else {
		r.cr.ClearBits(stm32g0.RCC_CR_HSEBYP)
	}
	return r.startOscillator(ctx, "HSE", r.cr, stm32g0.RCC_CR_HSEON, stm32g0.RCC_CR_HSERDY)
}

// enableLSE unlocks the backup domain, where the LSE control bits live.
func (r *registers) enableLSE(ctx context.Context, bypass bool) error {
	if err := r.unlockRTC(ctx); err != nil {
		return err
	}
	if bypass {
		r.bdcr.SetBits(stm32g0.RCC_BDCR_LSEBYP)
	} else {
		r.bdcr.ClearBits(stm32g0.RCC_BDCR_LSEBYP)
	}
	return r.startOscillator(ctx, "LSE", r.bdcr, stm32g0.RCC_BDCR_LSEON, stm32g0.RCC_BDCR_LSERDY)
}

func (r *registers) enableLSI(ctx context.Context) error {
	return r.startOscillator(ctx, "LSI", r.csr, stm32g0.RCC_CSR_LSION, stm32g0.RCC_CSR_LSIRDY)
}

// unlockRTC clocks the PWR controller and clears backup domain write
// protection.
func (r *registers) unlockRTC(ctx context.Context) error {
	r.busLocks[APB1].Lock()
	r.apbenr1.SetBits(stm32g0.RCC_APBENR1_PWREN)
	r.busLocks[APB1].Unlock()

	r.pwrCR1.SetBits(stm32g0.PWR_CR1_DBP)
	if err := r.poller.Until(ctx, func() bool {
		return r.pwrCR1.HasBits(stm32g0.PWR_CR1_DBP)
	}); err != nil {
		return waitError(ErrBackupDomainLocked, "unlock backup domain", err)
	}
	return nil
}

// EnableHSI starts HSI16 and waits until it is stable.
func (r *Rcc) EnableHSI(ctx context.Context) error {
	return r.withCtrl(func(regs *registers) error { return regs.enableHSI(ctx) })
}

// EnableHSE starts HSE. With bypass set, an external clock drives OSC_IN
// instead of a crystal.
func (r *Rcc) EnableHSE(ctx context.Context, bypass bool) error {
	return r.withCtrl(func(regs *registers) error { return regs.enableHSE(ctx, bypass) })
}

// EnableLSE starts the 32.768 kHz oscillator, unlocking the backup domain
// first.
func (r *Rcc) EnableLSE(ctx context.Context, bypass bool) error {
	return r.withCtrl(func(regs *registers) error { return regs.enableLSE(ctx, bypass) })
}

func (r *Rcc) EnableLSI(ctx context.Context) error {
	return r.withCtrl(func(regs *registers) error { return regs.enableLSI(ctx) })
}

// UnlockRTC allows writes to the RTC and backup domain registers.
func (r *Rcc) UnlockRTC(ctx context.Context) error {
	return r.withCtrl(func(regs *registers) error { return regs.unlockRTC(ctx) })
}

func (r *Rcc) withCtrl(fn func(regs *registers) error) error {
	regs, err := r.loadRegs()
	if err != nil {
		return err
	}
	regs.ctrl.Lock()
	defer regs.ctrl.Unlock()
	return fn(regs)
}
