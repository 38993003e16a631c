package rcc

import (
	"fmt"
	"strings"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/units"
)

// PLLClocks are the PLL output taps. Q and P are zero when disabled.
type PLLClocks struct {
	R, Q, P units.Hertz
}

func (p PLLClocks) HasQ() bool { return p.Q != 0 }

func (p PLLClocks) HasP() bool { return p.P != 0 }

// Clocks is the frozen clock tree. Drivers derive every timing value from it.
type Clocks struct {
	sys    units.Hertz
	core   units.Hertz
	ahb    units.Hertz
	apb    units.Hertz
	apbTim units.Hertz
	pll    PLLClocks
}

// DefaultClocks is the tree after reset: HSI16 drives everything and the
// PLL taps are those of DefaultPLLConfig.
func DefaultClocks() Clocks {
	pll, _ := DefaultPLLConfig().Outputs()
	return Clocks{
		sys:    stm32g0.HSI_FREQUENCY,
		core:   stm32g0.HSI_FREQUENCY,
		ahb:    stm32g0.HSI_FREQUENCY,
		apb:    stm32g0.HSI_FREQUENCY,
		apbTim: stm32g0.HSI_FREQUENCY,
		pll:    pll,
	}
}

func (c Clocks) SysClk() units.Hertz { return c.sys }

// CoreClk is HCLK, the Cortex-M0+ core clock.
func (c Clocks) CoreClk() units.Hertz { return c.core }

func (c Clocks) AHBClk() units.Hertz { return c.ahb }

func (c Clocks) APBClk() units.Hertz { return c.apb }

// APBTimClk is TIMPCLK: twice PCLK when the APB prescaler divides.
func (c Clocks) APBTimClk() units.Hertz { return c.apbTim }

func (c Clocks) PLLClk() PLLClocks { return c.pll }

// BusClock returns the clock gating the given bus. IOP and AHB both run
// from HCLK, APB1 and APB2 share PCLK.
func (c Clocks) BusClock(bus Bus) units.Hertz {
	switch bus {
	case IOP, AHB:
		return c.ahb
	default:
		return c.apb
	}
}

// PeripheralClock returns the kernel clock of p assuming the reset kernel
// clock selection. Timers see TIMPCLK.
func (c Clocks) PeripheralClock(p Peripheral) units.Hertz {
	if p.IsTimer() {
		return c.apbTim
	}
	return c.BusClock(p.Bus())
}

func (c Clocks) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SYSCLK=%s HCLK=%s PCLK=%s TIMPCLK=%s PLLR=%s", c.sys, c.ahb, c.apb, c.apbTim, c.pll.R)
	if c.pll.HasQ() {
		fmt.Fprintf(&b, " PLLQ=%s", c.pll.Q)
	}
	if c.pll.HasP() {
		fmt.Fprintf(&b, " PLLP=%s", c.pll.P)
	}
	return b.String()
}

// derive computes the bus clocks below SYSCLK. APB divides HCLK.
func derive(sys units.Hertz, ahb AHBPrescaler, apb APBPrescaler, pll PLLClocks) Clocks {
	hclk := sys.Div(ahb.Ratio())
	pclk := hclk.Div(apb.Ratio())
	timclk := pclk
	if apb != APBNotDivided {
		timclk = pclk * 2
	}
	return Clocks{
		sys:    sys,
		core:   hclk,
		ahb:    hclk,
		apb:    pclk,
		apbTim: timclk,
		pll:    pll,
	}
}
