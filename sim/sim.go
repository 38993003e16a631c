// Package sim is an in-memory STM32G0 RCC, FLASH and PWR that implements
// mmio.Bus. Status bits follow their control bits the way the silicon does,
// so the clock tree can be brought up and tested on a host.
package sim

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/logging"
)

// Options describe the board around the chip and the faults to inject.
type Options struct {
	// HSE and LSE report whether a crystal or external clock is fitted.
	HSE bool
	LSE bool

	// Dead oscillators never become ready, fitted or not.
	HSIDead bool
	LSIDead bool

	// PLLNoLock keeps PLLRDY clear.
	PLLNoLock bool
	// SwitchStuck keeps SWS at its previous value.
	SwitchStuck bool
	// FlashStuck keeps the FLASH LATENCY readback at its previous value.
	FlashStuck bool

	// ReadyDelay is the number of reads of a status register before a ready
	// flag appears after its oscillator is switched on.
	ReadyDelay int

	// ResetFlags are the RCC_CSR reset flags latched at power-up. Zero
	// means a power-on reset.
	ResetFlags uint32

	Logger *slog.Logger
}

// Write is one store on the bus.
type Write struct {
	Addr  uint32
	Value uint32
}

func (w Write) String() string {
	return fmt.Sprintf("%-9s <- %#08x", RegisterName(w.Addr), w.Value)
}

// oscillator is the model of one clock source.
type oscillator struct {
	on        bool
	countdown int
	dead      bool
}

func (o *oscillator) set(on bool, delay int) {
	if on && !o.on {
		o.countdown = delay
	}
	o.on = on
}

// ready advances the start-up countdown by one read.
func (o *oscillator) ready() bool {
	if !o.on || o.dead {
		return false
	}
	if o.countdown > 0 {
		o.countdown--
		return false
	}
	return true
}

// Device is the simulated register file. It is safe for concurrent use.
type Device struct {
	opts Options
	log  *slog.Logger

	mu     sync.Mutex
	mem    map[uint32]uint32
	hsi    oscillator
	hse    oscillator
	lse    oscillator
	lsi    oscillator
	pll    oscillator
	sws    uint32
	flash  uint32
	writes []Write
}

// New creates a device in its reset state: HSI16 running and selected,
// zero flash wait states, backup domain protected.
func New(opts Options) *Device {
	d := &Device{
		opts: opts,
		log:  opts.Logger,
		mem:  make(map[uint32]uint32),
	}
	if d.log == nil {
		d.log = logging.For(logging.ComponentSim)
	}

	d.hsi = oscillator{on: true, dead: opts.HSIDead}
	d.hse = oscillator{dead: !opts.HSE}
	d.lse = oscillator{dead: !opts.LSE}
	d.lsi = oscillator{dead: opts.LSIDead}
	d.pll = oscillator{dead: opts.PLLNoLock}

	d.mem[stm32g0.RCC_CR] = stm32g0.RCC_CR_HSION
	d.mem[stm32g0.RCC_PLLCFGR] = stm32g0.RCC_PLLCFGR_RESET
	d.mem[stm32g0.RCC_AHBENR] = 1 << 8
	flags := opts.ResetFlags
	if flags == 0 {
		flags = stm32g0.RCC_CSR_PWRRSTF | stm32g0.RCC_CSR_PINRSTF
	}
	d.mem[stm32g0.RCC_CSR] = flags & stm32g0.RCC_CSR_RSTF_Msk
	d.mem[stm32g0.FLASH_ACR] = stm32g0.FLASH_ACR_RESET
	d.mem[stm32g0.PWR_CR1] = stm32g0.PWR_CR1_RESET
	return d
}

// Load implements mmio.Bus.
func (d *Device) Load(addr uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(addr)
}

func (d *Device) load(addr uint32) uint32 {
	v := d.mem[addr]
	switch addr {
	case stm32g0.RCC_CR:
		v &^= stm32g0.RCC_CR_HSIRDY | stm32g0.RCC_CR_HSERDY | stm32g0.RCC_CR_PLLRDY
		if d.hsi.ready() {
			v |= stm32g0.RCC_CR_HSIRDY
		}
		if d.hse.ready() {
			v |= stm32g0.RCC_CR_HSERDY
		}
		if d.pllReady() {
			v |= stm32g0.RCC_CR_PLLRDY
		}
	case stm32g0.RCC_CFGR:
		d.updateSwitch()
		v = v&^stm32g0.RCC_CFGR_SWS_Msk | d.sws<<stm32g0.RCC_CFGR_SWS_Pos
	case stm32g0.RCC_BDCR:
		v &^= stm32g0.RCC_BDCR_LSERDY
		if d.lse.ready() {
			v |= stm32g0.RCC_BDCR_LSERDY
		}
	case stm32g0.RCC_CSR:
		v &^= stm32g0.RCC_CSR_LSIRDY
		if d.lsi.ready() {
			v |= stm32g0.RCC_CSR_LSIRDY
		}
	case stm32g0.FLASH_ACR:
		v = v&^stm32g0.FLASH_ACR_LATENCY_Msk | d.flash
	}
	return v
}

// pllReady locks the PLL only while its selected input is running.
func (d *Device) pllReady() bool {
	if !d.pll.on {
		return false
	}
	var input *oscillator
	switch (d.mem[stm32g0.RCC_PLLCFGR] & stm32g0.RCC_PLLCFGR_PLLSRC_Msk) >> stm32g0.RCC_PLLCFGR_PLLSRC_Pos {
	case stm32g0.RCC_PLLCFGR_PLLSRC_HSI16:
		input = &d.hsi
	case stm32g0.RCC_PLLCFGR_PLLSRC_HSE:
		input = &d.hse
	default:
		return false
	}
	if !input.on || input.dead {
		return false
	}
	return d.pll.ready()
}

// sourceReady reports whether the SW encoding names a running clock,
// without consuming start-up delay.
func (d *Device) sourceReady(sw uint32) bool {
	running := func(o *oscillator) bool { return o.on && !o.dead && o.countdown == 0 }
	switch sw {
	case stm32g0.RCC_CFGR_SW_HSISYS:
		return running(&d.hsi)
	case stm32g0.RCC_CFGR_SW_HSE:
		return running(&d.hse)
	case stm32g0.RCC_CFGR_SW_PLLRCLK:
		return running(&d.pll) && d.mem[stm32g0.RCC_PLLCFGR]&stm32g0.RCC_PLLCFGR_PLLREN != 0
	case stm32g0.RCC_CFGR_SW_LSI:
		return running(&d.lsi)
	case stm32g0.RCC_CFGR_SW_LSE:
		return running(&d.lse)
	}
	return false
}

func (d *Device) updateSwitch() {
	sw := (d.mem[stm32g0.RCC_CFGR] & stm32g0.RCC_CFGR_SW_Msk) >> stm32g0.RCC_CFGR_SW_Pos
	if sw != d.sws && !d.opts.SwitchStuck && d.sourceReady(sw) {
		d.log.Debug("system clock switched", "sws", sw)
		d.sws = sw
	}
}

// Store implements mmio.Bus.
func (d *Device) Store(addr, value uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes = append(d.writes, Write{Addr: addr, Value: value})

	switch addr {
	case stm32g0.RCC_CR:
		// The clock driving SYSCLK cannot be switched off, and HSEBYP is
		// frozen while HSE runs.
		if d.sws == stm32g0.RCC_CFGR_SW_HSISYS {
			value |= stm32g0.RCC_CR_HSION
		}
		if d.sws == stm32g0.RCC_CFGR_SW_HSE {
			value |= stm32g0.RCC_CR_HSEON
		}
		if d.sws == stm32g0.RCC_CFGR_SW_PLLRCLK {
			value |= stm32g0.RCC_CR_PLLON
		}
		if d.hse.on {
			value = value&^stm32g0.RCC_CR_HSEBYP | d.mem[addr]&stm32g0.RCC_CR_HSEBYP
		}
		d.hsi.set(value&stm32g0.RCC_CR_HSION != 0, d.opts.ReadyDelay)
		d.hse.set(value&stm32g0.RCC_CR_HSEON != 0, d.opts.ReadyDelay)
		d.pll.set(value&stm32g0.RCC_CR_PLLON != 0, d.opts.ReadyDelay)
	case stm32g0.RCC_PLLCFGR:
		if d.pll.on {
			d.log.Warn("PLLCFGR write ignored while the PLL runs", "value", value)
			return
		}
	case stm32g0.RCC_CSR:
		if d.sws == stm32g0.RCC_CFGR_SW_LSI {
			value |= stm32g0.RCC_CSR_LSION
		}
		d.lsi.set(value&stm32g0.RCC_CSR_LSION != 0, d.opts.ReadyDelay)
		flags := d.mem[addr] & stm32g0.RCC_CSR_RSTF_Msk
		if value&stm32g0.RCC_CSR_RMVF != 0 {
			flags = 0
		}
		value = value&^(stm32g0.RCC_CSR_RSTF_Msk|stm32g0.RCC_CSR_RMVF) | flags
	case stm32g0.RCC_BDCR:
		if d.mem[stm32g0.PWR_CR1]&stm32g0.PWR_CR1_DBP == 0 {
			d.log.Warn("BDCR write ignored, backup domain protected", "value", value)
			return
		}
		if value&stm32g0.RCC_BDCR_BDRST != 0 {
			value = stm32g0.RCC_BDCR_BDRST
		}
		if d.sws == stm32g0.RCC_CFGR_SW_LSE {
			value |= stm32g0.RCC_BDCR_LSEON
		}
		d.lse.set(value&stm32g0.RCC_BDCR_LSEON != 0, d.opts.ReadyDelay)
	case stm32g0.FLASH_ACR:
		if !d.opts.FlashStuck {
			d.flash = value & stm32g0.FLASH_ACR_LATENCY_Msk
		}
	case stm32g0.PWR_CR1:
		if d.mem[stm32g0.RCC_APBENR1]&stm32g0.RCC_APBENR1_PWREN == 0 {
			d.log.Warn("PWR write ignored, PWR clock disabled", "value", value)
			return
		}
	}
	d.mem[addr] = value
}

// Writes returns every store since creation or the last ResetTrace.
func (d *Device) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.writes)
}

func (d *Device) ResetTrace() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = nil
}

// Peek returns a register value without advancing any start-up delay.
func (d *Device) Peek(addr uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	saved := [...]oscillator{d.hsi, d.hse, d.lse, d.lsi, d.pll}
	v := d.load(addr)
	d.hsi, d.hse, d.lse, d.lsi, d.pll = saved[0], saved[1], saved[2], saved[3], saved[4]
	return v
}

// RegisterValue is a named register snapshot.
type RegisterValue struct {
	Name  string
	Addr  uint32
	Value uint32
}

// Registers returns every register that was written or has a nonzero reset
// value, ordered by address.
func (d *Device) Registers() []RegisterValue {
	d.mu.Lock()
	addrs := maps.Keys(d.mem)
	d.mu.Unlock()

	slices.Sort(addrs)
	values := make([]RegisterValue, 0, len(addrs))
	for _, addr := range addrs {
		values = append(values, RegisterValue{Name: RegisterName(addr), Addr: addr, Value: d.Peek(addr)})
	}
	return values
}

var registerNames = map[uint32]string{
	stm32g0.RCC_CR:        "RCC_CR",
	stm32g0.RCC_ICSCR:     "RCC_ICSCR",
	stm32g0.RCC_CFGR:      "RCC_CFGR",
	stm32g0.RCC_PLLCFGR:   "RCC_PLLCFGR",
	stm32g0.RCC_CIER:      "RCC_CIER",
	stm32g0.RCC_CIFR:      "RCC_CIFR",
	stm32g0.RCC_CICR:      "RCC_CICR",
	stm32g0.RCC_IOPRSTR:   "IOPRSTR",
	stm32g0.RCC_AHBRSTR:   "AHBRSTR",
	stm32g0.RCC_APBRSTR1:  "APBRSTR1",
	stm32g0.RCC_APBRSTR2:  "APBRSTR2",
	stm32g0.RCC_IOPENR:    "IOPENR",
	stm32g0.RCC_AHBENR:    "AHBENR",
	stm32g0.RCC_APBENR1:   "APBENR1",
	stm32g0.RCC_APBENR2:   "APBENR2",
	stm32g0.RCC_IOPSMENR:  "IOPSMENR",
	stm32g0.RCC_AHBSMENR:  "AHBSMENR",
	stm32g0.RCC_APBSMENR1: "APBSMENR1",
	stm32g0.RCC_APBSMENR2: "APBSMENR2",
	stm32g0.RCC_CCIPR:     "RCC_CCIPR",
	stm32g0.RCC_CCIPR2:    "RCC_CCIPR2",
	stm32g0.RCC_BDCR:      "RCC_BDCR",
	stm32g0.RCC_CSR:       "RCC_CSR",
	stm32g0.FLASH_ACR:     "FLASH_ACR",
	stm32g0.PWR_CR1:       "PWR_CR1",
}

// RegisterName returns the name of a modelled register or its address.
func RegisterName(addr uint32) string {
	if name, ok := registerNames[addr]; ok {
		return name
	}
	return fmt.Sprintf("%#08x", addr)
}
