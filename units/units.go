// Package units provides the typed frequency, period and baud rate values
// consumed by every timing computation in the module.
package units

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrUnsupportedFrequencyConversion is returned when a Hertz/MicroSecond
// reciprocal conversion is requested outside the 1..1_000_000 band.
var ErrUnsupportedFrequencyConversion = errors.New("unsupported frequency conversion")

// ErrInvalidFrequency is returned by ParseHertz for malformed input.
var ErrInvalidFrequency = errors.New("invalid frequency")

const microsPerSecond = 1_000_000

// Hertz is a frequency in cycles per second.
type Hertz uint32

// MicroSecond is a duration in whole microseconds.
type MicroSecond uint32

// Bps is a baud rate in bits per second.
type Bps uint32

// Hz returns v hertz. Zero is a valid Hertz; rcc rejects a zero oscillator
// frequency when the clock configuration is validated.
func Hz(v uint32) Hertz { return Hertz(v) }

// KHz returns v kilohertz, saturating at the largest representable frequency.
func KHz(v uint32) Hertz { return Hertz(saturatingMul(v, 1_000)) }

// MHz returns v megahertz, saturating at the largest representable frequency.
func MHz(v uint32) Hertz { return Hertz(saturatingMul(v, 1_000_000)) }

func Us(v uint32) MicroSecond { return MicroSecond(v) }

// Ms returns v milliseconds expressed in microseconds, saturating on overflow.
func Ms(v uint32) MicroSecond { return MicroSecond(saturatingMul(v, 1_000)) }

func Baud(v uint32) Bps { return Bps(v) }

func saturatingMul(v, k uint32) uint32 {
	r := uint64(v) * uint64(k)
	if r > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(r)
}

func saturate64(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// Duration returns the time spanned by cycles at frequency h, truncated to
// whole microseconds. A zero frequency never completes a cycle and yields the
// maximum duration.
func (h Hertz) Duration(cycles uint32) MicroSecond {
	if h == 0 {
		return math.MaxUint32
	}
	return MicroSecond(saturate64(uint64(cycles) * microsPerSecond / uint64(h)))
}

// Div divides h by n. Dividing by zero returns h unchanged.
func (h Hertz) Div(n uint32) Hertz {
	if n == 0 {
		return h
	}
	return h / Hertz(n)
}

// Period converts a frequency into its period. Only 1..1_000_000 Hz have a
// period of at least one whole microsecond.
func (h Hertz) Period() (MicroSecond, error) {
	if h == 0 || h > microsPerSecond {
		return 0, ErrUnsupportedFrequencyConversion
	}
	return MicroSecond(microsPerSecond / uint32(h)), nil
}

func (h Hertz) String() string {
	switch {
	case h != 0 && h%1_000_000 == 0:
		return strconv.FormatUint(uint64(h/1_000_000), 10) + "MHz"
	case h != 0 && h%1_000 == 0:
		return strconv.FormatUint(uint64(h/1_000), 10) + "kHz"
	default:
		return strconv.FormatUint(uint64(h), 10) + "Hz"
	}
}

// Cycles returns the number of cycles of clk needed to span us, truncated.
func (us MicroSecond) Cycles(clk Hertz) uint32 {
	return saturate64(uint64(us) * uint64(clk) / microsPerSecond)
}

// Frequency converts a period into the frequency it repeats at. Only periods
// of 1..1_000_000 microseconds are supported.
func (us MicroSecond) Frequency() (Hertz, error) {
	if us == 0 || us > microsPerSecond {
		return 0, ErrUnsupportedFrequencyConversion
	}
	return Hertz(microsPerSecond / uint32(us)), nil
}

func (us MicroSecond) String() string {
	return strconv.FormatUint(uint64(us), 10) + "us"
}

func (b Bps) String() string {
	return strconv.FormatUint(uint64(b), 10) + "bps"
}

// ParseHertz parses a frequency such as "16MHz", "32.768kHz", "8 MHz" or a
// bare number of hertz.
func ParseHertz(s string) (Hertz, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidFrequency
	}

	multiplier := uint64(1)
	lower := strings.ToLower(s)
	for _, suffix := range []struct {
		unit string
		mul  uint64
	}{
		{"mhz", 1_000_000},
		{"khz", 1_000},
		{"hz", 1},
	} {
		if strings.HasSuffix(lower, suffix.unit) {
			multiplier = suffix.mul
			s = strings.TrimSpace(s[:len(s)-len(suffix.unit)])
			break
		}
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	value, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidFrequency, err)
	}
	if value > math.MaxUint32 {
		return 0, ErrInvalidFrequency
	}
	value *= multiplier

	if hasFrac {
		// Fractions below one hertz are dropped.
		scale := multiplier
		for _, c := range frac {
			if c < '0' || c > '9' {
				return 0, ErrInvalidFrequency
			}
			scale /= 10
			value += uint64(c-'0') * scale
		}
	}

	if value > math.MaxUint32 {
		return 0, ErrInvalidFrequency
	}
	return Hertz(value), nil
}
