package rcc

import (
	"context"
	"errors"
	"fmt"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/targets"
	"omibyte.io/g0hal/units"
)

// Oscillator limits used when no target is given.
const (
	hseMin    = 4_000_000
	hseMax    = 48_000_000
	lseMax    = 1_000_000
	maxSysClk = 64_000_000
)

// limits are the frequency bounds a configuration is checked against.
type limits struct {
	hseMin, hseMax units.Hertz
	vcoMin, vcoMax units.Hertz
	maxSysClk      units.Hertz
	pllQ, pllP     bool
}

func defaultLimits() limits {
	return limits{
		hseMin:    hseMin,
		hseMax:    hseMax,
		vcoMin:    vcoMin,
		vcoMax:    vcoMax,
		maxSysClk: maxSysClk,
		pllQ:      true,
		pllP:      true,
	}
}

func targetLimits(t targets.TargetInfo) limits {
	l := limits{
		hseMin:    units.Hz(t.HSEMin),
		hseMax:    units.Hz(t.HSEMax),
		vcoMin:    units.Hz(t.VCOMin),
		vcoMax:    units.Hz(t.VCOMax),
		maxSysClk: units.Hz(t.MaxSysClk),
		pllQ:      t.PLLQ,
		pllP:      t.PLLP,
	}
	def := defaultLimits()
	if l.hseMax == 0 {
		l.hseMin, l.hseMax = def.hseMin, def.hseMax
	}
	if l.vcoMax == 0 {
		l.vcoMin, l.vcoMax = def.vcoMin, def.vcoMax
	}
	if l.maxSysClk == 0 {
		l.maxSysClk = def.maxSysClk
	}
	return l
}

// Validate checks the configuration against the generic STM32G0 limits
// without touching hardware. Every violation is reported.
func (c Config) Validate() error {
	return c.validate(defaultLimits())
}

// ValidateFor also applies the limits of a specific chip line.
func (c Config) ValidateFor(t targets.TargetInfo) error {
	return c.validate(targetLimits(t))
}

func (c Config) validate(l limits) error {
	var errs []error
	if err := c.PLL.Validate(); err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, c.PLL.checkLimits(l)...)
	}

	switch c.Source.Kind {
	case KindHSI:
		if !c.Source.Div.valid() {
			errs = append(errs, &ConfigError{Field: "hsi_div", Reason: fmt.Sprintf("invalid divider %d", c.Source.Div)})
		}
	case KindHSE:
		if err := checkHSE("source", c.Source.Freq, l); err != nil {
			errs = append(errs, err)
		}
		// One HSE input feeds both SYSCLK and the PLL.
		if p := c.PLL.Source; p.Kind == KindHSE && (p.Freq != c.Source.Freq || p.Bypass != c.Source.Bypass) {
			errs = append(errs, &ConfigError{Field: "pll.source", Reason: fmt.Sprintf("%s disagrees with system clock source %s", p, c.Source)})
		}
	case KindLSE:
		if c.Source.Freq == 0 || c.Source.Freq > lseMax {
			errs = append(errs, &ConfigError{Field: "source", Reason: fmt.Sprintf("LSE frequency %s outside (0, %s]", c.Source.Freq, units.Hertz(lseMax))})
		}
	case KindLSI, KindPLL:
	default:
		errs = append(errs, &ConfigError{Field: "source", Reason: fmt.Sprintf("unknown source %s", c.Source.Kind)})
	}

	if !c.AHB.valid() {
		errs = append(errs, &ConfigError{Field: "ahb_div", Reason: fmt.Sprintf("invalid prescaler %d", c.AHB)})
	}
	if !c.APB.valid() {
		errs = append(errs, &ConfigError{Field: "apb_div", Reason: fmt.Sprintf("invalid prescaler %d", c.APB)})
	}

	if len(errs) == 0 {
		pll, _ := c.PLL.Outputs()
		if sys := c.Source.frequency(pll); sys > l.maxSysClk {
			errs = append(errs, &ConfigError{Field: "source", Reason: fmt.Sprintf("SYSCLK %s exceeds %s", sys, l.maxSysClk)})
		}
	}
	return errors.Join(errs...)
}

func checkHSE(field string, freq units.Hertz, l limits) error {
	if freq < l.hseMin || freq > l.hseMax {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("HSE frequency %s outside [%s, %s]", freq, l.hseMin, l.hseMax)}
	}
	return nil
}

// checkLimits applies the frequency bounds to an otherwise valid PLL
// configuration.
func (c PLLConfig) checkLimits(l limits) []error {
	var errs []error
	if c.Source.Kind == KindHSE {
		if err := checkHSE("pll.source", c.Source.Freq, l); err != nil {
			errs = append(errs, err)
		}
	}
	in := c.Source.Frequency().Div(c.M)
	if in < pllInputMin || in > pllInputMax {
		errs = append(errs, &ConfigError{Field: "pll.m", Reason: fmt.Sprintf("PLL input %s outside [%s, %s]", in, units.Hertz(pllInputMin), units.Hertz(pllInputMax))})
	}
	if vco := c.VCO(); vco < l.vcoMin || vco > l.vcoMax {
		errs = append(errs, &ConfigError{Field: "pll.n", Reason: fmt.Sprintf("VCO %s outside [%s, %s]", vco, l.vcoMin, l.vcoMax)})
	}
	if c.Q != 0 && !l.pllQ {
		errs = append(errs, &ConfigError{Field: "pll.q", Reason: "PLLQ output not implemented on this chip"})
	}
	if c.P != 0 && !l.pllP {
		errs = append(errs, &ConfigError{Field: "pll.p", Reason: "PLLP output not implemented on this chip"})
	}
	return errs
}

// frequency returns SYSCLK for the source, given the PLL taps.
func (s SysClockSrc) frequency(pll PLLClocks) units.Hertz {
	switch s.Kind {
	case KindHSI:
		return units.Hertz(stm32g0.HSI_FREQUENCY).Div(s.Div.Ratio())
	case KindHSE, KindLSE:
		return s.Freq
	case KindLSI:
		return stm32g0.LSI_FREQUENCY
	case KindPLL:
		return pll.R
	}
	return 0
}

// Plan computes the Clocks the configuration would produce.
func (c Config) Plan() (Clocks, error) {
	if err := c.Validate(); err != nil {
		return Clocks{}, err
	}
	pll, err := c.PLL.Outputs()
	if err != nil {
		return Clocks{}, err
	}
	return derive(c.Source.frequency(pll), c.AHB, c.APB, pll), nil
}

func (r *registers) validate(cfg Config) error {
	if r.target != nil {
		return cfg.ValidateFor(*r.target)
	}
	return cfg.Validate()
}

// freeze validates cfg, then runs the hardware sequence: PLL, source
// oscillator, flash latency (raised before the switch, lowered after),
// CFGR and the switch acknowledgement.
func (r *registers) freeze(ctx context.Context, cfg Config) (Clocks, error) {
	if err := r.validate(cfg); err != nil {
		return Clocks{}, err
	}

	r.ctrl.Lock()
	defer r.ctrl.Unlock()

	// The PLL is started even when it does not drive SYSCLK so its taps are
	// live for kernel clocks.
	pll, err := r.configurePLL(ctx, cfg.PLL)
	if err != nil {
		return Clocks{}, err
	}

	sys, err := r.startSource(ctx, cfg.Source, pll)
	if err != nil {
		return Clocks{}, err
	}

	latency := FlashLatency(sys)
	current := r.flashLatency()
	if latency > current {
		if err := r.setFlashLatency(ctx, latency); err != nil {
			return Clocks{}, err
		}
	}

	if err := r.switchSystemClock(ctx, cfg); err != nil {
		return Clocks{}, err
	}

	if latency < current {
		if err := r.setFlashLatency(ctx, latency); err != nil {
			return Clocks{}, err
		}
	}

	clocks := derive(sys, cfg.AHB, cfg.APB, pll)
	r.log.Info("clock tree frozen",
		"source", cfg.Source.String(),
		"sysclk", clocks.SysClk(),
		"hclk", clocks.AHBClk(),
		"pclk", clocks.APBClk(),
		"timpclk", clocks.APBTimClk(),
		"latency", latency)
	return clocks, nil
}

// startSource starts the oscillator behind src and returns SYSCLK.
func (r *registers) startSource(ctx context.Context, src SysClockSrc, pll PLLClocks) (units.Hertz, error) {
	var err error
	switch src.Kind {
	case KindHSI:
		if err = r.enableHSI(ctx); err == nil {
			r.cr.ReplaceBits(uint32(src.Div), stm32g0.RCC_CR_HSIDIV_Msk>>stm32g0.RCC_CR_HSIDIV_Pos, stm32g0.RCC_CR_HSIDIV_Pos)
		}
	case KindHSE:
		err = r.enableHSE(ctx, src.Bypass)
	case KindLSE:
		err = r.enableLSE(ctx, src.Bypass)
	case KindLSI:
		err = r.enableLSI(ctx)
	case KindPLL:
		// Locked by configurePLL.
	}
	if err != nil {
		return 0, err
	}
	return src.frequency(pll), nil
}

// switchSystemClock writes HPRE, PPRE and SW at once and waits for SWS to
// report the new source.
func (r *registers) switchSystemClock(ctx context.Context, cfg Config) error {
	sw := cfg.Source.switchBits()

	v := r.cfgr.Get()
	v &^= stm32g0.RCC_CFGR_HPRE_Msk | stm32g0.RCC_CFGR_PPRE_Msk | stm32g0.RCC_CFGR_SW_Msk
	v |= cfg.AHB.bits()<<stm32g0.RCC_CFGR_HPRE_Pos |
		cfg.APB.bits()<<stm32g0.RCC_CFGR_PPRE_Pos |
		sw<<stm32g0.RCC_CFGR_SW_Pos
	r.cfgr.Set(v)

	if err := r.poller.Until(ctx, func() bool {
		return r.cfgr.Field(stm32g0.RCC_CFGR_SWS_Msk>>stm32g0.RCC_CFGR_SWS_Pos, stm32g0.RCC_CFGR_SWS_Pos) == sw
	}); err != nil {
		return waitError(ErrClockSwitchTimeout, "switch to "+cfg.Source.String(), err)
	}
	r.log.Debug("system clock switched", "source", cfg.Source.String(), "cfgr", v)
	return nil
}
