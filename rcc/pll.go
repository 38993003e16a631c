package rcc

import (
	"context"
	"errors"
	"fmt"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/units"
)

// PLL divider and multiplier limits.
const (
	PLLMMin = 1
	PLLMMax = 8
	PLLNMin = 8
	PLLNMax = 86
	PLLRMin = 2
	PLLRMax = 8
	PLLQMin = 2
	PLLQMax = 8
	PLLPMin = 2
	PLLPMax = 8
)

// PLL input (after M) and VCO ranges of the STM32G0 at voltage range 1.
const (
	pllInputMin = 2_660_000
	pllInputMax = 16_000_000
	vcoMin      = 64_000_000
	vcoMax      = 344_000_000
)

// PLLSource is the oscillator feeding the PLL.
type PLLSource struct {
	Kind   SourceKind
	Freq   units.Hertz
	Bypass bool
}

func PLLSrcHSI() PLLSource { return PLLSource{Kind: KindHSI} }

func PLLSrcHSE(freq units.Hertz) PLLSource { return PLLSource{Kind: KindHSE, Freq: freq} }

func PLLSrcHSEBypass(freq units.Hertz) PLLSource {
	return PLLSource{Kind: KindHSE, Freq: freq, Bypass: true}
}

// Frequency returns the PLL input frequency before the M divider.
func (s PLLSource) Frequency() units.Hertz {
	if s.Kind == KindHSI {
		return stm32g0.HSI_FREQUENCY
	}
	return s.Freq
}

func (s PLLSource) String() string {
	if s.Kind == KindHSI {
		return "HSI16"
	}
	if s.Bypass {
		return fmt.Sprintf("HSE(%s, bypass)", s.Freq)
	}
	return fmt.Sprintf("HSE(%s)", s.Freq)
}

// PLLConfig describes the PLL: VCO = input / M * N, and each output tap
// divides the VCO. Q and P are optional; zero leaves the tap disabled.
type PLLConfig struct {
	Source PLLSource
	M      uint32
	N      uint32
	R      uint32
	Q      uint32
	P      uint32
}

// DefaultPLLConfig is HSI16 / 1 * 8 / 2 = 64 MHz on R.
func DefaultPLLConfig() PLLConfig {
	return PLLConfig{Source: PLLSrcHSI(), M: 1, N: 8, R: 2}
}

func checkRange(param string, value, min, max uint32) error {
	if value < min || value > max {
		return &ParamError{Param: param, Value: value, Min: min, Max: max}
	}
	return nil
}

// Validate checks every divider range. All violations are reported.
func (c PLLConfig) Validate() error {
	var errs []error
	if c.Source.Kind != KindHSI && c.Source.Kind != KindHSE {
		errs = append(errs, &ConfigError{Field: "pll.source", Reason: fmt.Sprintf("%s cannot drive the PLL", c.Source.Kind)})
	}
	if err := checkRange("m", c.M, PLLMMin, PLLMMax); err != nil {
		errs = append(errs, err)
	}
	if err := checkRange("n", c.N, PLLNMin, PLLNMax); err != nil {
		errs = append(errs, err)
	}
	if err := checkRange("r", c.R, PLLRMin, PLLRMax); err != nil {
		errs = append(errs, err)
	}
	if c.Q != 0 {
		if err := checkRange("q", c.Q, PLLQMin, PLLQMax); err != nil {
			errs = append(errs, err)
		}
	}
	if c.P != 0 {
		if err := checkRange("p", c.P, PLLPMin, PLLPMax); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// VCO returns the PLL internal frequency. The input is divided before it is
// multiplied, as the hardware does.
func (c PLLConfig) VCO() units.Hertz {
	if c.M == 0 {
		return 0
	}
	vco := uint64(c.Source.Frequency()/units.Hertz(c.M)) * uint64(c.N)
	if vco > uint64(^uint32(0)) {
		return units.Hertz(^uint32(0))
	}
	return units.Hertz(vco)
}

// Outputs computes the R, Q and P taps without touching hardware.
func (c PLLConfig) Outputs() (PLLClocks, error) {
	if err := c.Validate(); err != nil {
		return PLLClocks{}, err
	}
	vco := c.VCO()
	clocks := PLLClocks{R: vco.Div(c.R)}
	if c.Q != 0 {
		clocks.Q = vco.Div(c.Q)
	}
	if c.P != 0 {
		clocks.P = vco.Div(c.P)
	}
	return clocks, nil
}

// cfgrBits packs the whole PLLCFGR value, enable bits included, so it can be
// written at once.
func (c PLLConfig) cfgrBits() uint32 {
	src := uint32(stm32g0.RCC_PLLCFGR_PLLSRC_HSI16)
	if c.Source.Kind == KindHSE {
		src = stm32g0.RCC_PLLCFGR_PLLSRC_HSE
	}
	v := src<<stm32g0.RCC_PLLCFGR_PLLSRC_Pos |
		(c.M-1)<<stm32g0.RCC_PLLCFGR_PLLM_Pos |
		c.N<<stm32g0.RCC_PLLCFGR_PLLN_Pos |
		(c.R-1)<<stm32g0.RCC_PLLCFGR_PLLR_Pos |
		stm32g0.RCC_PLLCFGR_PLLREN
	if c.Q != 0 {
		v |= (c.Q-1)<<stm32g0.RCC_PLLCFGR_PLLQ_Pos | stm32g0.RCC_PLLCFGR_PLLQEN
	}
	if c.P != 0 {
		v |= (c.P-1)<<stm32g0.RCC_PLLCFGR_PLLP_Pos | stm32g0.RCC_PLLCFGR_PLLPEN
	}
	return v
}

func (c PLLConfig) String() string {
	s := fmt.Sprintf("%s /%d *%d /R%d", c.Source, c.M, c.N, c.R)
	if c.Q != 0 {
		s += fmt.Sprintf(" /Q%d", c.Q)
	}
	if c.P != 0 {
		s += fmt.Sprintf(" /P%d", c.P)
	}
	return s
}

// configurePLL stops the PLL, starts its input oscillator, programs the
// dividers and waits for lock. The configuration must already be valid.
func (r *registers) configurePLL(ctx context.Context, cfg PLLConfig) (PLLClocks, error) {
	log := r.log.With("step", "pll")

	// PLLON cannot be cleared while the PLL drives SYSCLK.
	if err := r.leavePLL(ctx); err != nil {
		return PLLClocks{}, err
	}

	r.cr.ClearBits(stm32g0.RCC_CR_PLLON)
	if err := r.poller.Until(ctx, func() bool {
		return !r.cr.HasBits(stm32g0.RCC_CR_PLLRDY)
	}); err != nil {
		return PLLClocks{}, waitError(ErrPLLLockTimeout, "stop PLL", err)
	}

	var err error
	switch cfg.Source.Kind {
	case KindHSE:
		err = r.enableHSE(ctx, cfg.Source.Bypass)
	default:
		err = r.enableHSI(ctx)
	}
	if err != nil {
		return PLLClocks{}, err
	}

	clocks, err := cfg.Outputs()
	if err != nil {
		return PLLClocks{}, err
	}

	r.pllcfgr.Set(cfg.cfgrBits())
	r.cr.SetBits(stm32g0.RCC_CR_PLLON)
	if err := r.poller.Until(ctx, func() bool {
		return r.cr.HasBits(stm32g0.RCC_CR_PLLRDY)
	}); err != nil {
		return PLLClocks{}, waitError(ErrPLLLockTimeout, "start PLL", err)
	}

	log.Debug("PLL locked", "config", cfg.String(), "vco", cfg.VCO(), "r", clocks.R, "q", clocks.Q, "p", clocks.P)
	return clocks, nil
}

// leavePLL moves SYSCLK to HSISYS if it currently runs from PLLR. The
// prescalers are kept; HSISYS is never faster than PLLR so the flash latency
// stays sufficient.
func (r *registers) leavePLL(ctx context.Context) error {
	swsMask := uint32(stm32g0.RCC_CFGR_SWS_Msk >> stm32g0.RCC_CFGR_SWS_Pos)
	if r.cfgr.Field(swsMask, stm32g0.RCC_CFGR_SWS_Pos) != stm32g0.RCC_CFGR_SW_PLLRCLK {
		return nil
	}
	if err := r.enableHSI(ctx); err != nil {
		return err
	}
	r.cfgr.ReplaceBits(stm32g0.RCC_CFGR_SW_HSISYS, stm32g0.RCC_CFGR_SW_Msk>>stm32g0.RCC_CFGR_SW_Pos, stm32g0.RCC_CFGR_SW_Pos)
	if err := r.poller.Until(ctx, func() bool {
		return r.cfgr.Field(swsMask, stm32g0.RCC_CFGR_SWS_Pos) == stm32g0.RCC_CFGR_SW_HSISYS
	}); err != nil {
		return waitError(ErrClockSwitchTimeout, "leave PLL", err)
	}
	r.log.Debug("system clock parked on HSISYS")
	return nil
}

// SolvePLL searches M, N and R for an R output as close to target as
// possible without exceeding it. Ties go to the lowest VCO frequency.
func SolvePLL(src PLLSource, target units.Hertz) (PLLConfig, error) {
	input := uint64(src.Frequency())
	if input == 0 || target == 0 {
		return PLLConfig{}, &ConfigError{Field: "pll", Reason: "input and target must be nonzero"}
	}

	var (
		best     PLLConfig
		bestErr  = ^uint64(0)
		bestVCO  uint64
		goal     = uint64(target)
		haveBest bool
	)
	for m := uint64(PLLMMin); m <= PLLMMax; m++ {
		in := input / m
		if in < pllInputMin || in > pllInputMax {
			continue
		}
		for n := uint64(PLLNMin); n <= PLLNMax; n++ {
			vco := in * n
			if vco < vcoMin || vco > vcoMax {
				continue
			}
			for r := uint64(PLLRMin); r <= PLLRMax; r++ {
				out := vco / r
				if out > goal {
					continue
				}
				diff := goal - out
				if diff < bestErr || (diff == bestErr && vco < bestVCO) {
					best = PLLConfig{Source: src, M: uint32(m), N: uint32(n), R: uint32(r)}
					bestErr, bestVCO, haveBest = diff, vco, true
				}
			}
		}
	}
	if !haveBest {
		return PLLConfig{}, &ConfigError{Field: "pll", Reason: fmt.Sprintf("no divider set reaches %s from %s", target, src)}
	}
	return best, nil
}
