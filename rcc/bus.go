package rcc

import (
	"omibyte.io/g0hal/device/stm32g0"
)

// Bus is the clock domain that gates a peripheral.
type Bus uint8

const (
	IOP Bus = iota
	AHB
	APB1
	APB2

	numBuses
)

func (b Bus) String() string {
	switch b {
	case IOP:
		return "IOP"
	case AHB:
		return "AHB"
	case APB1:
		return "APB1"
	case APB2:
		return "APB2"
	default:
		return "unknown"
	}
}

// busRegisters are the enable, reset and sleep-mode-enable registers of one
// bus.
type busRegisters struct {
	enr, rstr, smenr uint32
}

var busTable = [numBuses]busRegisters{
	IOP:  {enr: stm32g0.RCC_IOPENR, rstr: stm32g0.RCC_IOPRSTR, smenr: stm32g0.RCC_IOPSMENR},
	AHB:  {enr: stm32g0.RCC_AHBENR, rstr: stm32g0.RCC_AHBRSTR, smenr: stm32g0.RCC_AHBSMENR},
	APB1: {enr: stm32g0.RCC_APBENR1, rstr: stm32g0.RCC_APBRSTR1, smenr: stm32g0.RCC_APBSMENR1},
	APB2: {enr: stm32g0.RCC_APBENR2, rstr: stm32g0.RCC_APBRSTR2, smenr: stm32g0.RCC_APBSMENR2},
}

// ParseBus maps a register name prefix such as "APBENR1" or "APB1" to its
// bus.
func ParseBus(name string) (Bus, bool) {
	switch name {
	case "IOP", "IOPENR":
		return IOP, true
	case "AHB", "AHBENR":
		return AHB, true
	case "APB1", "APBENR1":
		return APB1, true
	case "APB2", "APBENR2":
		return APB2, true
	}
	return 0, false
}
