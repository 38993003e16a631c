package rcc

import (
	"context"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/units"
)

// FlashLatency returns the wait states flash needs with SYSCLK at sys:
// zero up to 24 MHz, one up to 48 MHz, two above. HCLK never exceeds
// SYSCLK, so the count also covers every AHB prescaler.
func FlashLatency(sys units.Hertz) uint32 {
	switch {
	case sys <= 24_000_000:
		return 0
	case sys <= 48_000_000:
		return 1
	default:
		return 2
	}
}

const latencyMask = stm32g0.FLASH_ACR_LATENCY_Msk >> stm32g0.FLASH_ACR_LATENCY_Pos

func (r *registers) flashLatency() uint32 {
	return r.flashACR.Field(latencyMask, stm32g0.FLASH_ACR_LATENCY_Pos)
}

// setFlashLatency programs LATENCY and waits until flash reports it, which
// is when the new wait states take effect.
func (r *registers) setFlashLatency(ctx context.Context, latency uint32) error {
	r.flashACR.ReplaceBits(latency, latencyMask, stm32g0.FLASH_ACR_LATENCY_Pos)
	if err := r.poller.Until(ctx, func() bool {
		return r.flashLatency() == latency
	}); err != nil {
		return waitError(ErrFlashLatencyTimeout, "set flash latency", err)
	}
	r.log.Debug("flash latency set", "wait_states", latency)
	return nil
}
