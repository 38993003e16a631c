package rcc

import (
	"errors"
	"testing"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/sim"
	"omibyte.io/g0hal/units"
)

func TestEnableHSE(t *testing.T) {
	tests := []struct {
		name    string
		fitted  bool
		bypass  bool
		wantErr error
	}{
		{"crystal", true, false, nil},
		{"bypass", true, true, nil},
		{"absent", false, false, ErrOscillatorTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, raw := newTestRaw(t, sim.Options{HSE: tt.fitted})
			rcc := mustFreeze(t, raw, ConfigHSI(HSINotDivided))

			err := rcc.EnableHSE(testContext(t), tt.bypass)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("EnableHSE() = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				var oscErr *OscillatorError
				if !errors.As(err, &oscErr) || oscErr.Oscillator != "HSE" {
					t.Errorf("error %v does not name HSE", err)
				}
				return
			}

			cr := dev.Peek(stm32g0.RCC_CR)
			if cr&stm32g0.RCC_CR_HSERDY == 0 {
				t.Error("HSERDY clear after EnableHSE")
			}
			if got := cr&stm32g0.RCC_CR_HSEBYP != 0; got != tt.bypass {
				t.Errorf("HSEBYP = %v, want %v", got, tt.bypass)
			}
		})
	}
}

func TestEnableHSIAfterLSI(t *testing.T) {
	dev, raw := newTestRaw(t, sim.Options{})
	rcc := mustFreeze(t, raw, ConfigLSI())
	if err := rcc.EnableHSI(testContext(t)); err != nil {
		t.Fatal(err)
	}
	if dev.Peek(stm32g0.RCC_CR)&stm32g0.RCC_CR_HSIRDY == 0 {
		t.Error("HSIRDY clear after EnableHSI")
	}
}

func TestEnableLSIDead(t *testing.T) {
	_, raw := newTestRaw(t, sim.Options{LSIDead: true})
	rcc := mustFreeze(t, raw, ConfigHSI(HSINotDivided))
	if err := rcc.EnableLSI(testContext(t)); !errors.Is(err, ErrOscillatorTimeout) {
		t.Errorf("EnableLSI() = %v, want %v", err, ErrOscillatorTimeout)
	}
}

func TestEnableHSEModeConflict(t *testing.T) {
	dev, raw := newTestRaw(t, sim.Options{HSE: true})
	rcc := mustFreeze(t, raw, NewConfig(HSE(units.MHz(8))))

	dev.ResetTrace()
	err := rcc.EnableHSE(testContext(t), true)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "hse" {
		t.Fatalf("EnableHSE(bypass) on a running crystal = %v, want hse ConfigError", err)
	}
	if len(dev.Writes()) != 0 {
		t.Errorf("registers written: %v", dev.Writes())
	}
	if dev.Peek(stm32g0.RCC_CR)&stm32g0.RCC_CR_HSEBYP != 0 {
		t.Error("HSEBYP set")
	}

	// Asking for the mode already running is a no-op.
	if err := rcc.EnableHSE(testContext(t), false); err != nil {
		t.Errorf("EnableHSE(crystal) = %v", err)
	}
}
