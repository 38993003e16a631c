// Package timing turns frozen clock frequencies into the divider values
// peripheral drivers program: USART baud rate registers, timer prescalers,
// SysTick reloads and busy-wait cycle counts.
package timing

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"omibyte.io/g0hal/units"
)

var (
	ErrZeroFrequency = errors.New("zero frequency")
	ErrOutOfRange    = errors.New("divider out of range")
)

// divRound divides rounding to nearest.
func divRound[T constraints.Unsigned](a, b T) T {
	return (a + b/2) / b
}

func absDiff[T constraints.Integer](a, b T) T {
	if a > b {
		return a - b
	}
	return b - a
}

// USARTDivider returns the BRR value for baud at the USART kernel clock.
// With over8 the low nibble holds USARTDIV[3:0] shifted right by one.
func USARTDivider(clk units.Hertz, baud units.Bps, over8 bool) (uint32, error) {
	if clk == 0 || baud == 0 {
		return 0, ErrZeroFrequency
	}
	if !over8 {
		div := divRound(uint64(clk), uint64(baud))
		if div < 16 || div > 0xFFFF {
			return 0, fmt.Errorf("%w: USARTDIV %d for %s at %s", ErrOutOfRange, div, baud, clk)
		}
		return uint32(div), nil
	}
	div := divRound(2*uint64(clk), uint64(baud))
	if div < 16 || div > 0xFFFF {
		return 0, fmt.Errorf("%w: USARTDIV %d for %s at %s", ErrOutOfRange, div, baud, clk)
	}
	return uint32(div&^0xF | (div&0xF)>>1), nil
}

// LPUARTDivider returns the LPUART BRR value, 256 * clk / baud.
func LPUARTDivider(clk units.Hertz, baud units.Bps) (uint32, error) {
	if clk == 0 || baud == 0 {
		return 0, ErrZeroFrequency
	}
	// The kernel clock must lie within [3 * baud, 4096 * baud].
	if uint64(clk) < 3*uint64(baud) || uint64(clk) > 4096*uint64(baud) {
		return 0, fmt.Errorf("%w: %s cannot clock %s", ErrOutOfRange, clk, baud)
	}
	div := divRound(256*uint64(clk), uint64(baud))
	if div < 0x300 || div > 0xFFFFF {
		return 0, fmt.Errorf("%w: LPUARTDIV %d", ErrOutOfRange, div)
	}
	return uint32(div), nil
}

// TimerSetting is a prescaler and auto-reload pair, both as written to the
// registers (one less than the divisor).
type TimerSetting struct {
	PSC uint32
	ARR uint32
}

// Frequency returns the update rate the setting produces from clk.
func (s TimerSetting) Frequency(clk units.Hertz) units.Hertz {
	return units.Hertz(uint64(clk) / ((uint64(s.PSC) + 1) * (uint64(s.ARR) + 1)))
}

// TimerPrescaler finds PSC and ARR for an update rate of target at the
// timer clock, preferring the smallest prescaler (best resolution) among
// the closest matches. maxARR is 0xFFFF for 16-bit timers and 0xFFFFFFFF for
// TIM2.
func TimerPrescaler(timclk, target units.Hertz, maxARR uint32) (TimerSetting, error) {
	if timclk == 0 || target == 0 {
		return TimerSetting{}, ErrZeroFrequency
	}
	if target > timclk {
		return TimerSetting{}, fmt.Errorf("%w: %s above timer clock %s", ErrOutOfRange, target, timclk)
	}

	ticks := divRound(uint64(timclk), uint64(target))
	var (
		best    TimerSetting
		bestErr = ^uint64(0)
	)
	for psc := uint64(1); psc <= 0x10000; psc++ {
		arr := divRound(ticks, psc)
		if arr == 0 {
			break
		}
		if arr > uint64(maxARR)+1 {
			continue
		}
		if diff := absDiff(psc*arr, ticks); diff < bestErr {
			best = TimerSetting{PSC: uint32(psc - 1), ARR: uint32(arr - 1)}
			bestErr = diff
			if diff == 0 {
				break
			}
		}
	}
	if bestErr == ^uint64(0) {
		return TimerSetting{}, fmt.Errorf("%w: %s from %s", ErrOutOfRange, target, timclk)
	}
	return best, nil
}

// SysTickReload returns the SysTick LOAD value for one tick every period.
func SysTickReload(core units.Hertz, period units.MicroSecond) (uint32, error) {
	if core == 0 {
		return 0, ErrZeroFrequency
	}
	cycles := period.Cycles(core)
	if cycles == 0 || cycles > 1<<24 {
		return 0, fmt.Errorf("%w: %d cycles per SysTick period", ErrOutOfRange, cycles)
	}
	return cycles - 1, nil
}

// DelayCycles returns the cycles a busy-wait needs to last d at clk.
func DelayCycles(clk units.Hertz, d units.MicroSecond) uint32 {
	return d.Cycles(clk)
}
