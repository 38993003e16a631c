package sim

import (
	"io"
	"log/slog"
	"testing"

	"omibyte.io/g0hal/device/stm32g0"
)

func newDevice(opts Options) *Device {
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(opts)
}

func TestResetState(t *testing.T) {
	d := newDevice(Options{})

	cr := d.Load(stm32g0.RCC_CR)
	if cr&stm32g0.RCC_CR_HSION == 0 || cr&stm32g0.RCC_CR_HSIRDY == 0 {
		t.Errorf("CR = %#08x, want HSI on and ready", cr)
	}
	if sws := d.Load(stm32g0.RCC_CFGR) & stm32g0.RCC_CFGR_SWS_Msk; sws != 0 {
		t.Errorf("SWS = %#x, want HSISYS", sws)
	}
	if csr := d.Load(stm32g0.RCC_CSR); csr&stm32g0.RCC_CSR_PWRRSTF == 0 {
		t.Errorf("CSR = %#08x, want power-on flag", csr)
	}
}

func TestOscillatorReadyDelay(t *testing.T) {
	d := newDevice(Options{HSE: true, ReadyDelay: 3})
	d.Store(stm32g0.RCC_CR, d.Load(stm32g0.RCC_CR)|stm32g0.RCC_CR_HSEON)

	var reads int
	for d.Load(stm32g0.RCC_CR)&stm32g0.RCC_CR_HSERDY == 0 {
		reads++
		if reads > 10 {
			t.Fatal("HSE never became ready")
		}
	}
	if reads != 3 {
		t.Errorf("HSE ready after %d reads, want 3", reads)
	}
}

func TestMissingOscillator(t *testing.T) {
	d := newDevice(Options{})
	d.Store(stm32g0.RCC_CR, d.Load(stm32g0.RCC_CR)|stm32g0.RCC_CR_HSEON)
	for i := 0; i < 5; i++ {
		if d.Load(stm32g0.RCC_CR)&stm32g0.RCC_CR_HSERDY != 0 {
			t.Fatal("HSE ready without a crystal")
		}
	}

	// Switching to it never completes.
	d.Store(stm32g0.RCC_CFGR, stm32g0.RCC_CFGR_SW_HSE)
	if sws := (d.Load(stm32g0.RCC_CFGR) & stm32g0.RCC_CFGR_SWS_Msk) >> stm32g0.RCC_CFGR_SWS_Pos; sws != 0 {
		t.Errorf("SWS = %d, want HSISYS", sws)
	}
}

func TestPLLNeedsInput(t *testing.T) {
	d := newDevice(Options{})
	// PLLSRC = HSE, which is not fitted.
	d.Store(stm32g0.RCC_PLLCFGR, stm32g0.RCC_PLLCFGR_PLLSRC_HSE|8<<8|stm32g0.RCC_PLLCFGR_PLLREN)
	d.Store(stm32g0.RCC_CR, d.Load(stm32g0.RCC_CR)|stm32g0.RCC_CR_PLLON)
	if d.Load(stm32g0.RCC_CR)&stm32g0.RCC_CR_PLLRDY != 0 {
		t.Fatal("PLL locked without input")
	}

	d.Store(stm32g0.RCC_CR, d.Load(stm32g0.RCC_CR)&^stm32g0.RCC_CR_PLLON)
	d.Store(stm32g0.RCC_PLLCFGR, stm32g0.RCC_PLLCFGR_PLLSRC_HSI16|8<<8|stm32g0.RCC_PLLCFGR_PLLREN)
	d.Store(stm32g0.RCC_CR, d.Load(stm32g0.RCC_CR)|stm32g0.RCC_CR_PLLON)
	if d.Load(stm32g0.RCC_CR)&stm32g0.RCC_CR_PLLRDY == 0 {
		t.Fatal("PLL not locked on HSI16")
	}
}

func TestPLLConfigLockedWhileRunning(t *testing.T) {
	d := newDevice(Options{})
	d.Store(stm32g0.RCC_CR, d.Load(stm32g0.RCC_CR)|stm32g0.RCC_CR_PLLON)
	d.Store(stm32g0.RCC_PLLCFGR, 0x12345678)
	if got := d.Load(stm32g0.RCC_PLLCFGR); got != stm32g0.RCC_PLLCFGR_RESET {
		t.Errorf("PLLCFGR = %#08x, want write ignored", got)
	}
}

func TestSystemClockCannotStop(t *testing.T) {
	d := newDevice(Options{})
	d.Store(stm32g0.RCC_CR, 0)
	if d.Load(stm32g0.RCC_CR)&stm32g0.RCC_CR_HSION == 0 {
		t.Error("HSI switched off while it drives SYSCLK")
	}
}

func TestSystemClockLSECannotStop(t *testing.T) {
	d := newDevice(Options{LSE: true})
	d.Store(stm32g0.RCC_APBENR1, stm32g0.RCC_APBENR1_PWREN)
	d.Store(stm32g0.PWR_CR1, stm32g0.PWR_CR1_DBP)
	d.Store(stm32g0.RCC_BDCR, stm32g0.RCC_BDCR_LSEON)
	d.Load(stm32g0.RCC_BDCR)
	d.Store(stm32g0.RCC_CFGR, stm32g0.RCC_CFGR_SW_LSE)
	if sws := (d.Load(stm32g0.RCC_CFGR) & stm32g0.RCC_CFGR_SWS_Msk) >> stm32g0.RCC_CFGR_SWS_Pos; sws != stm32g0.RCC_CFGR_SW_LSE {
		t.Fatalf("SWS = %d, want LSE", sws)
	}

	d.Store(stm32g0.RCC_BDCR, stm32g0.RCC_BDCR_BDRST)
	if d.Load(stm32g0.RCC_BDCR)&stm32g0.RCC_BDCR_LSEON == 0 {
		t.Error("backup domain reset stopped LSE while it drives SYSCLK")
	}
	d.Store(stm32g0.RCC_BDCR, 0)
	if d.Load(stm32g0.RCC_BDCR)&stm32g0.RCC_BDCR_LSERDY == 0 {
		t.Error("LSE switched off while it drives SYSCLK")
	}
}

func TestBackupDomainProtection(t *testing.T) {
	d := newDevice(Options{LSE: true})

	d.Store(stm32g0.PWR_CR1, stm32g0.PWR_CR1_DBP)
	if d.Load(stm32g0.PWR_CR1)&stm32g0.PWR_CR1_DBP != 0 {
		t.Fatal("PWR written with its clock off")
	}

	d.Store(stm32g0.RCC_APBENR1, stm32g0.RCC_APBENR1_PWREN)
	d.Store(stm32g0.PWR_CR1, stm32g0.PWR_CR1_DBP)
	d.Store(stm32g0.RCC_BDCR, stm32g0.RCC_BDCR_LSEON)
	if d.Load(stm32g0.RCC_BDCR)&stm32g0.RCC_BDCR_LSERDY == 0 {
		t.Error("LSE not ready after unlock")
	}
}

func TestFaults(t *testing.T) {
	d := newDevice(Options{SwitchStuck: true, FlashStuck: true})
	d.Store(stm32g0.FLASH_ACR, 2)
	if got := d.Load(stm32g0.FLASH_ACR) & stm32g0.FLASH_ACR_LATENCY_Msk; got != 0 {
		t.Errorf("LATENCY = %d with a stuck flash", got)
	}

	d.Store(stm32g0.RCC_CSR, stm32g0.RCC_CSR_LSION)
	d.Store(stm32g0.RCC_CFGR, stm32g0.RCC_CFGR_SW_LSI)
	if sws := d.Load(stm32g0.RCC_CFGR) & stm32g0.RCC_CFGR_SWS_Msk; sws != 0 {
		t.Errorf("SWS = %#x with a stuck switch", sws)
	}
}

func TestResetFlags(t *testing.T) {
	d := newDevice(Options{ResetFlags: stm32g0.RCC_CSR_SFTRSTF})
	if got := d.Load(stm32g0.RCC_CSR) & stm32g0.RCC_CSR_RSTF_Msk; got != stm32g0.RCC_CSR_SFTRSTF {
		t.Fatalf("flags = %#08x", got)
	}
	// Writing the flags back does not set new ones.
	d.Store(stm32g0.RCC_CSR, stm32g0.RCC_CSR_RSTF_Msk)
	if got := d.Load(stm32g0.RCC_CSR) & stm32g0.RCC_CSR_RSTF_Msk; got != stm32g0.RCC_CSR_SFTRSTF {
		t.Errorf("flags = %#08x after write", got)
	}
	d.Store(stm32g0.RCC_CSR, stm32g0.RCC_CSR_RMVF)
	if got := d.Load(stm32g0.RCC_CSR); got != 0 {
		t.Errorf("CSR = %#08x after RMVF", got)
	}
}

func TestTraceAndRegisters(t *testing.T) {
	d := newDevice(Options{})
	d.Store(stm32g0.RCC_IOPENR, 1)
	d.Store(stm32g0.RCC_IOPENR, 3)

	writes := d.Writes()
	if len(writes) != 2 || writes[1].Value != 3 {
		t.Fatalf("Writes() = %v", writes)
	}
	if got := writes[0].String(); got != "IOPENR    <- 0x000001" {
		t.Errorf("String() = %q", got)
	}
	d.ResetTrace()
	if len(d.Writes()) != 0 {
		t.Error("trace not cleared")
	}

	regs := d.Registers()
	for i := 1; i < len(regs); i++ {
		if regs[i-1].Addr >= regs[i].Addr {
			t.Fatalf("Registers() not ordered at %d", i)
		}
	}
	if RegisterName(0x1234) != "0x001234" {
		t.Errorf("RegisterName(0x1234) = %s", RegisterName(0x1234))
	}
}
