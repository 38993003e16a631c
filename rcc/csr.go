package rcc

import (
	"context"
	"fmt"
	"strings"

	"omibyte.io/g0hal/device/stm32g0"
)

// ResetReason is the set of RCC_CSR reset flags, in register order starting
// at OBLRSTF.
type ResetReason uint8

const (
	ResetOptionByte ResetReason = 1 << iota
	ResetPin
	ResetPowerOn
	ResetSoftware
	ResetIndependentWatchdog
	ResetWindowWatchdog
	ResetLowPower
)

const resetFlagsPos = 25

var resetNames = [...]string{"option-byte", "pin", "power-on", "software", "iwdg", "wwdg", "low-power"}

func (r ResetReason) Has(flag ResetReason) bool { return r&flag != 0 }

func (r ResetReason) String() string {
	if r == 0 {
		return "none"
	}
	var names []string
	for i, name := range resetNames {
		if r&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// ResetReason reads the flags latched by the last reset. They accumulate
// until ClearResetReason.
func (r *Rcc) ResetReason() ResetReason {
	return ResetReason(r.mustRegs().csr.Get() >> resetFlagsPos)
}

func (r *Rcc) ClearResetReason() {
	r.mustRegs().csr.SetBits(stm32g0.RCC_CSR_RMVF)
}

// MCOSource is the MCOSEL encoding of the microcontroller clock output.
type MCOSource uint8

const (
	MCONone   MCOSource = 0
	MCOSysClk MCOSource = 1
	MCOHSI16  MCOSource = 3
	MCOHSE    MCOSource = 4
	MCOPLLR   MCOSource = 5
	MCOLSI    MCOSource = 6
	MCOLSE    MCOSource = 7
)

// MCODiv divides the MCO output by 2^n.
type MCODiv uint8

const (
	MCODiv1 MCODiv = iota
	MCODiv2
	MCODiv4
	MCODiv8
	MCODiv16
	MCODiv32
	MCODiv64
	MCODiv128
)

// running reports whether the oscillator behind src is ready.
func (r *registers) running(src MCOSource) bool {
	switch src {
	case MCONone, MCOSysClk:
		return true
	case MCOHSI16:
		return r.cr.HasBits(stm32g0.RCC_CR_HSIRDY)
	case MCOHSE:
		return r.cr.HasBits(stm32g0.RCC_CR_HSERDY)
	case MCOPLLR:
		return r.cr.HasBits(stm32g0.RCC_CR_PLLRDY)
	case MCOLSI:
		return r.csr.HasBits(stm32g0.RCC_CSR_LSIRDY)
	case MCOLSE:
		return r.bdcr.HasBits(stm32g0.RCC_BDCR_LSERDY)
	}
	return false
}

// ConfigureMCO routes a clock to the MCO pin. The pin itself is muxed by
// the GPIO driver.
func (r *Rcc) ConfigureMCO(src MCOSource, div MCODiv) error {
	if src > MCOLSE || src == 2 || div > MCODiv128 {
		return &ConfigError{Field: "mco", Reason: fmt.Sprintf("invalid source %d or divider %d", src, div)}
	}
	return r.withCtrl(func(regs *registers) error {
		if !regs.running(src) {
			return fmt.Errorf("mco: %w", ErrSourceNotReady)
		}
		v := regs.cfgr.Get()
		v &^= stm32g0.RCC_CFGR_MCOSEL_Msk | stm32g0.RCC_CFGR_MCOPRE_Msk
		v |= uint32(src)<<stm32g0.RCC_CFGR_MCOSEL_Pos | uint32(div)<<stm32g0.RCC_CFGR_MCOPRE_Pos
		regs.cfgr.Set(v)
		return nil
	})
}

// LSCOSource selects the low-speed clock output.
type LSCOSource uint8

const (
	LSCOLSI LSCOSource = iota
	LSCOLSE
)

// ConfigureLSCO drives LSI or LSE onto the LSCO pin. The output lives in
// the backup domain, which is unlocked first.
func (r *Rcc) ConfigureLSCO(ctx context.Context, src LSCOSource) error {
	return r.withCtrl(func(regs *registers) error {
		if err := regs.unlockRTC(ctx); err != nil {
			return err
		}
		mco := MCOLSI
		if src == LSCOLSE {
			mco = MCOLSE
		}
		if !regs.running(mco) {
			return fmt.Errorf("lsco: %w", ErrSourceNotReady)
		}
		if src == LSCOLSE {
			regs.bdcr.SetBits(stm32g0.RCC_BDCR_LSCOSEL)
		} else {
			regs.bdcr.ClearBits(stm32g0.RCC_BDCR_LSCOSEL)
		}
		regs.bdcr.SetBits(stm32g0.RCC_BDCR_LSCOEN)
		return nil
	})
}

// RTCClock is the RTCSEL encoding.
type RTCClock uint8

const (
	RTCNoClock RTCClock = iota
	RTCLSE
	RTCLSI
	RTCHSEDiv32
)

const rtcselMask = stm32g0.RCC_BDCR_RTCSEL_Msk >> stm32g0.RCC_BDCR_RTCSEL_Pos

// SelectRTCClock chooses the RTC kernel clock and enables the RTC. RTCSEL
// can only change after a backup domain reset.
func (r *Rcc) SelectRTCClock(ctx context.Context, src RTCClock) error {
	if src > RTCHSEDiv32 {
		return &ConfigError{Field: "rtc", Reason: fmt.Sprintf("invalid clock %d", src)}
	}
	return r.withCtrl(func(regs *registers) error {
		if err := regs.unlockRTC(ctx); err != nil {
			return err
		}
		current := RTCClock(regs.bdcr.Field(rtcselMask, stm32g0.RCC_BDCR_RTCSEL_Pos))
		if current != RTCNoClock && current != src {
			return &ConfigError{Field: "rtc", Reason: "RTC clock already selected; reset the backup domain first"}
		}
		regs.bdcr.ReplaceBits(uint32(src), rtcselMask, stm32g0.RCC_BDCR_RTCSEL_Pos)
		regs.bdcr.SetBits(stm32g0.RCC_BDCR_RTCEN)
		return nil
	})
}

// ResetBackupDomain pulses BDRST, which clears RTCSEL and stops LSE. It is
// refused while LSE drives SYSCLK.
func (r *Rcc) ResetBackupDomain(ctx context.Context) error {
	return r.withCtrl(func(regs *registers) error {
		sws := regs.cfgr.Field(stm32g0.RCC_CFGR_SWS_Msk>>stm32g0.RCC_CFGR_SWS_Pos, stm32g0.RCC_CFGR_SWS_Pos)
		if sws == stm32g0.RCC_CFGR_SW_LSE {
			return &ConfigError{Field: "rtc", Reason: "backup domain reset would stop LSE, the system clock"}
		}
		if err := regs.unlockRTC(ctx); err != nil {
			return err
		}
		regs.bdcr.SetBits(stm32g0.RCC_BDCR_BDRST)
		regs.bdcr.ClearBits(stm32g0.RCC_BDCR_BDRST)
		return nil
	})
}
