package rcc

import (
	"fmt"
	"strings"
)

// Peripheral identifies a clock-gated peripheral. The identities and their
// bus positions are generated from the device SVD into peripherals_gen.go.
type Peripheral uint8

//go:generate go run ../cmd/svd-gen -o peripherals_gen.go ../cmd/svd-gen/testdata/stm32g0b1-rcc.svd

type peripheralFlags uint8

const (
	hasReset peripheralFlags = 1 << iota
	hasSleep
	timerClock
)

type peripheralInfo struct {
	name  string
	bus   Bus
	bit   uint8
	flags peripheralFlags
}

func (p Peripheral) info() peripheralInfo {
	if p >= numPeripherals {
		panic(fmt.Sprintf("rcc: invalid peripheral %d", p))
	}
	return peripherals[p]
}

func (p Peripheral) String() string {
	if p >= numPeripherals {
		return fmt.Sprintf("Peripheral(%d)", p)
	}
	return peripherals[p].name
}

// Bus returns the bus whose registers gate p.
func (p Peripheral) Bus() Bus { return p.info().bus }

// Bit returns p's bit position in its bus registers.
func (p Peripheral) Bit() uint8 { return p.info().bit }

func (p Peripheral) mask() uint32 { return 1 << p.info().bit }

// HasReset reports whether p has a bit in its bus reset register. RTCAPB and
// WWDG are only reset with the backup domain or the system.
func (p Peripheral) HasReset() bool { return p.info().flags&hasReset != 0 }

// HasSleepMode reports whether p has a sleep-mode clock enable bit.
func (p Peripheral) HasSleepMode() bool { return p.info().flags&hasSleep != 0 }

// IsTimer reports whether p is clocked from TIMPCLK instead of PCLK.
func (p Peripheral) IsTimer() bool { return p.info().flags&timerClock != 0 }

// Peripherals returns every known peripheral in table order.
func Peripherals() []Peripheral {
	list := make([]Peripheral, numPeripherals)
	for i := range list {
		list[i] = Peripheral(i)
	}
	return list
}

// ParsePeripheral looks a peripheral up by name, ignoring case.
func ParsePeripheral(name string) (Peripheral, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, info := range peripherals {
		if info.name == upper {
			return Peripheral(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPeripheral, name)
}
