package rcc

import (
	"fmt"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/units"
)

// SourceKind names an oscillator or the PLL as a clock source.
type SourceKind uint8

const (
	KindHSI SourceKind = iota
	KindHSE
	KindLSE
	KindLSI
	KindPLL
)

func (k SourceKind) String() string {
	switch k {
	case KindHSI:
		return "HSI"
	case KindHSE:
		return "HSE"
	case KindLSE:
		return "LSE"
	case KindLSI:
		return "LSI"
	case KindPLL:
		return "PLL"
	default:
		return fmt.Sprintf("SourceKind(%d)", uint8(k))
	}
}

// HSIDiv divides HSI16 before it becomes HSISYS.
type HSIDiv uint8

const (
	HSINotDivided HSIDiv = iota
	HSIDiv2
	HSIDiv4
	HSIDiv8
	HSIDiv16
	HSIDiv32
	HSIDiv64
	HSIDiv128
)

func (d HSIDiv) Ratio() uint32 { return 1 << d }

func (d HSIDiv) valid() bool { return d <= HSIDiv128 }

// HSIDivFor returns the divider with the given ratio.
func HSIDivFor(ratio uint32) (HSIDiv, error) {
	for d := HSINotDivided; d <= HSIDiv128; d++ {
		if d.Ratio() == ratio {
			return d, nil
		}
	}
	return 0, &ConfigError{Field: "hsi_div", Reason: fmt.Sprintf("unsupported ratio %d", ratio)}
}

// AHBPrescaler divides SYSCLK into HCLK. The hardware has no /32 setting.
type AHBPrescaler uint8

const (
	AHBNotDivided AHBPrescaler = iota
	AHBDiv2
	AHBDiv4
	AHBDiv8
	AHBDiv16
	AHBDiv64
	AHBDiv128
	AHBDiv256
	AHBDiv512

	numAHBPrescalers
)

var ahbRatios = [numAHBPrescalers]uint32{1, 2, 4, 8, 16, 64, 128, 256, 512}

func (p AHBPrescaler) Ratio() uint32 { return ahbRatios[p] }

// bits returns the HPRE encoding.
func (p AHBPrescaler) bits() uint32 {
	if p == AHBNotDivided {
		return 0
	}
	return 0x8 | uint32(p-1)
}

func (p AHBPrescaler) valid() bool { return p < numAHBPrescalers }

func AHBPrescalerFor(ratio uint32) (AHBPrescaler, error) {
	for p, r := range ahbRatios {
		if r == ratio {
			return AHBPrescaler(p), nil
		}
	}
	return 0, &ConfigError{Field: "ahb_div", Reason: fmt.Sprintf("unsupported ratio %d", ratio)}
}

// APBPrescaler divides HCLK into PCLK.
type APBPrescaler uint8

const (
	APBNotDivided APBPrescaler = iota
	APBDiv2
	APBDiv4
	APBDiv8
	APBDiv16

	numAPBPrescalers
)

func (p APBPrescaler) Ratio() uint32 { return 1 << p }

// bits returns the PPRE encoding.
func (p APBPrescaler) bits() uint32 {
	if p == APBNotDivided {
		return 0
	}
	return 0x4 | uint32(p-1)
}

func (p APBPrescaler) valid() bool { return p < numAPBPrescalers }

func APBPrescalerFor(ratio uint32) (APBPrescaler, error) {
	for p := APBNotDivided; p < numAPBPrescalers; p++ {
		if p.Ratio() == ratio {
			return p, nil
		}
	}
	return 0, &ConfigError{Field: "apb_div", Reason: fmt.Sprintf("unsupported ratio %d", ratio)}
}

// SysClockSrc selects what drives SYSCLK.
type SysClockSrc struct {
	Kind SourceKind
	// Freq is the external oscillator frequency for HSE and LSE.
	Freq units.Hertz
	// Bypass feeds an external clock instead of driving a crystal.
	Bypass bool
	// Div applies to HSI only.
	Div HSIDiv
}

func HSI(div HSIDiv) SysClockSrc { return SysClockSrc{Kind: KindHSI, Div: div} }

func HSE(freq units.Hertz) SysClockSrc { return SysClockSrc{Kind: KindHSE, Freq: freq} }

func HSEBypass(freq units.Hertz) SysClockSrc {
	return SysClockSrc{Kind: KindHSE, Freq: freq, Bypass: true}
}

func LSE(freq units.Hertz) SysClockSrc { return SysClockSrc{Kind: KindLSE, Freq: freq} }

func LSEBypass(freq units.Hertz) SysClockSrc {
	return SysClockSrc{Kind: KindLSE, Freq: freq, Bypass: true}
}

func LSI() SysClockSrc { return SysClockSrc{Kind: KindLSI} }

func PLL() SysClockSrc { return SysClockSrc{Kind: KindPLL} }

func (s SysClockSrc) String() string {
	switch s.Kind {
	case KindHSI:
		if s.Div == HSINotDivided {
			return "HSI16"
		}
		return fmt.Sprintf("HSI16/%d", s.Div.Ratio())
	case KindHSE, KindLSE:
		if s.Bypass {
			return fmt.Sprintf("%s(%s, bypass)", s.Kind, s.Freq)
		}
		return fmt.Sprintf("%s(%s)", s.Kind, s.Freq)
	case KindLSI:
		return "LSI"
	case KindPLL:
		return "PLLR"
	}
	return s.Kind.String()
}

// switchBits returns the CFGR.SW encoding of the source.
func (s SysClockSrc) switchBits() uint32 {
	switch s.Kind {
	case KindHSE:
		return stm32g0.RCC_CFGR_SW_HSE
	case KindPLL:
		return stm32g0.RCC_CFGR_SW_PLLRCLK
	case KindLSI:
		return stm32g0.RCC_CFGR_SW_LSI
	case KindLSE:
		return stm32g0.RCC_CFGR_SW_LSE
	default:
		return stm32g0.RCC_CFGR_SW_HSISYS
	}
}

// Config is the clock tree to freeze. The builder methods take and return
// values, so a Config can be shared and extended without aliasing.
type Config struct {
	Source SysClockSrc
	AHB    AHBPrescaler
	APB    APBPrescaler
	PLL    PLLConfig
}

// DefaultConfig runs everything from undivided HSI16, as after reset.
func DefaultConfig() Config {
	return NewConfig(HSI(HSINotDivided))
}

func NewConfig(src SysClockSrc) Config {
	return Config{
		Source: src,
		AHB:    AHBNotDivided,
		APB:    APBNotDivided,
		PLL:    DefaultPLLConfig(),
	}
}

// ConfigPLL runs SYSCLK from the PLL R output.
func ConfigPLL() Config { return NewConfig(PLL()) }

func ConfigHSI(div HSIDiv) Config { return NewConfig(HSI(div)) }

func ConfigLSI() Config { return NewConfig(LSI()) }

func (c Config) WithSource(src SysClockSrc) Config {
	c.Source = src
	return c
}

func (c Config) WithAHB(p AHBPrescaler) Config {
	c.AHB = p
	return c
}

func (c Config) WithAPB(p APBPrescaler) Config {
	c.APB = p
	return c
}

func (c Config) WithPLL(pll PLLConfig) Config {
	c.PLL = pll
	return c
}
