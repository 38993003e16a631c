package rcc

import (
	"errors"
	"sync"
	"testing"

	"omibyte.io/g0hal/sim"
)

func TestPeripheralTable(t *testing.T) {
	seen := make(map[Bus]uint32)
	for _, p := range Peripherals() {
		info := p.info()
		if info.bit > 31 {
			t.Errorf("%s: bit %d out of range", p, info.bit)
		}
		if p.mask() != 1<<info.bit {
			t.Errorf("%s: mask %#x, want bit %d", p, p.mask(), info.bit)
		}
		if seen[info.bus]&p.mask() != 0 {
			t.Errorf("%s: bit %d on %s used twice", p, info.bit, info.bus)
		}
		seen[info.bus] |= p.mask()
	}

	tests := []struct {
		p   Peripheral
		bus Bus
		bit uint8
	}{
		{GPIOA, IOP, 0},
		{GPIOF, IOP, 5},
		{DMA1, AHB, 0},
		{CRC, AHB, 12},
		{RNG, AHB, 18},
		{TIM2, APB1, 0},
		{USART2, APB1, 17},
		{I2C1, APB1, 21},
		{PWR, APB1, 28},
		{LPTIM1, APB1, 31},
		{SYSCFG, APB2, 0},
		{TIM1, APB2, 11},
		{ADC, APB2, 20},
	}
	for _, test := range tests {
		if test.p.Bus() != test.bus || test.p.Bit() != test.bit {
			t.Errorf("%s on %s bit %d, want %s bit %d", test.p, test.p.Bus(), test.p.Bit(), test.bus, test.bit)
		}
	}

	if RTCAPB.HasReset() || WWDG.HasReset() {
		t.Error("RTCAPB and WWDG have no reset bit")
	}
	if !TIM14.IsTimer() || USART1.IsTimer() {
		t.Error("timer classification wrong")
	}
}

func TestParsePeripheral(t *testing.T) {
	p, err := ParsePeripheral(" usart2 ")
	if err != nil || p != USART2 {
		t.Errorf("ParsePeripheral(usart2) = %v, %v", p, err)
	}
	if _, err := ParsePeripheral("UART9"); !errors.Is(err, ErrUnknownPeripheral) {
		t.Errorf("ParsePeripheral(UART9) error = %v", err)
	}
}

func TestEnableIsolation(t *testing.T) {
	dev, raw := newTestRaw(t, sim.Options{})
	rcc := mustFreeze(t, raw, DefaultConfig())

	for _, p := range Peripherals() {
		enr := busTable[p.Bus()].enr
		for _, background := range []uint32{0, ^uint32(0) &^ p.mask(), 0xA5A5A5A5 &^ p.mask()} {
			dev.Store(enr, background)
			before := dev.Registers()

			rcc.Enable(p)
			if got, want := dev.Peek(enr), background|p.mask(); got != want {
				t.Errorf("Enable(%s): %#08x, want %#08x", p, got, want)
			}
			if !rcc.IsEnabled(p) {
				t.Errorf("IsEnabled(%s) = false after Enable", p)
			}
			rcc.Disable(p)
			if got := dev.Peek(enr); got != background {
				t.Errorf("Disable(%s): %#08x, want %#08x", p, got, background)
			}

			for _, reg := range dev.Registers() {
				for _, old := range before {
					if reg.Addr == old.Addr && reg.Addr != enr && reg.Value != old.Value {
						t.Errorf("Enable(%s) changed %s from %#08x to %#08x", p, reg.Name, old.Value, reg.Value)
					}
				}
			}
		}
	}
}

func TestResetPulse(t *testing.T) {
	dev, raw := newTestRaw(t, sim.Options{})
	rcc := mustFreeze(t, raw, DefaultConfig())

	rstr := busTable[APB1].rstr
	dev.Store(rstr, 0x10)
	dev.ResetTrace()

	rcc.Reset(USART2)
	writes := dev.Writes()
	if len(writes) != 2 {
		t.Fatalf("%d writes, want set and clear: %v", len(writes), writes)
	}
	if writes[0].Addr != rstr || writes[0].Value != 0x10|USART2.mask() {
		t.Errorf("first write %v, want reset bit set", writes[0])
	}
	if writes[1].Addr != rstr || writes[1].Value != 0x10 {
		t.Errorf("second write %v, want reset bit cleared", writes[1])
	}

	dev.ResetTrace()
	rcc.Reset(WWDG)
	if n := len(dev.Writes()); n != 0 {
		t.Errorf("Reset(WWDG) wrote %d registers", n)
	}
}

func TestSleepMode(t *testing.T) {
	dev, raw := newTestRaw(t, sim.Options{})
	rcc := mustFreeze(t, raw, DefaultConfig())

	smenr := busTable[AHB].smenr
	rcc.SleepModeEnable(DMA1)
	rcc.SleepModeEnable(CRC)
	if got := dev.Peek(smenr); got != DMA1.mask()|CRC.mask() {
		t.Errorf("AHBSMENR = %#08x", got)
	}
	rcc.SleepModeDisable(DMA1)
	if got := dev.Peek(smenr); got != CRC.mask() {
		t.Errorf("AHBSMENR = %#08x after disable", got)
	}
	if dev.Peek(busTable[AHB].enr)&CRC.mask() != 0 {
		t.Error("sleep mode enable touched the enable register")
	}
}

func TestConcurrentEnable(t *testing.T) {
	dev, raw := newTestRaw(t, sim.Options{})
	rcc := mustFreeze(t, raw, DefaultConfig())

	var (
		wg   sync.WaitGroup
		want uint32
	)
	for _, p := range Peripherals() {
		if p.Bus() != APB1 {
			continue
		}
		want |= p.mask()
		wg.Add(1)
		go func(p Peripheral) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				rcc.Reset(p)
				rcc.Enable(p)
			}
		}(p)
	}
	wg.Wait()

	if got := dev.Peek(busTable[APB1].enr); got != want {
		t.Errorf("APBENR1 = %#08x, want %#08x", got, want)
	}
	if got := dev.Peek(busTable[APB1].rstr); got != 0 {
		t.Errorf("APBRSTR1 = %#08x, want all reset lines released", got)
	}
}
