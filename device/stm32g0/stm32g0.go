// Package stm32g0 holds the register addresses and bit fields of the
// STM32G0 clock-related peripherals: RCC, FLASH and PWR.
//
// Field constants follow the CMSIS naming: _Pos is the bit offset, _Msk the
// shifted mask.
package stm32g0

const (
	PWR_BASE   = 0x40007000
	RCC_BASE   = 0x40021000
	FLASH_BASE = 0x40022000
)

// RCC registers.
const (
	RCC_CR        = RCC_BASE + 0x00
	RCC_ICSCR     = RCC_BASE + 0x04
	RCC_CFGR      = RCC_BASE + 0x08
	RCC_PLLCFGR   = RCC_BASE + 0x0C
	RCC_CIER      = RCC_BASE + 0x18
	RCC_CIFR      = RCC_BASE + 0x1C
	RCC_CICR      = RCC_BASE + 0x20
	RCC_IOPRSTR   = RCC_BASE + 0x24
	RCC_AHBRSTR   = RCC_BASE + 0x28
	RCC_APBRSTR1  = RCC_BASE + 0x2C
	RCC_APBRSTR2  = RCC_BASE + 0x30
	RCC_IOPENR    = RCC_BASE + 0x34
	RCC_AHBENR    = RCC_BASE + 0x38
	RCC_APBENR1   = RCC_BASE + 0x3C
	RCC_APBENR2   = RCC_BASE + 0x40
	RCC_IOPSMENR  = RCC_BASE + 0x44
	RCC_AHBSMENR  = RCC_BASE + 0x48
	RCC_APBSMENR1 = RCC_BASE + 0x4C
	RCC_APBSMENR2 = RCC_BASE + 0x50
	RCC_CCIPR     = RCC_BASE + 0x54
	RCC_CCIPR2    = RCC_BASE + 0x58
	RCC_BDCR      = RCC_BASE + 0x5C
	RCC_CSR       = RCC_BASE + 0x60
)

// RCC_CR fields.
const (
	RCC_CR_HSION_Pos  = 8
	RCC_CR_HSION      = 1 << RCC_CR_HSION_Pos
	RCC_CR_HSIKERON   = 1 << 9
	RCC_CR_HSIRDY_Pos = 10
	RCC_CR_HSIRDY     = 1 << RCC_CR_HSIRDY_Pos
	RCC_CR_HSIDIV_Pos = 11
	RCC_CR_HSIDIV_Msk = 0x7 << RCC_CR_HSIDIV_Pos
	RCC_CR_HSEON      = 1 << 16
	RCC_CR_HSERDY     = 1 << 17
	RCC_CR_HSEBYP     = 1 << 18
	RCC_CR_CSSON      = 1 << 19
	RCC_CR_PLLON      = 1 << 24
	RCC_CR_PLLRDY     = 1 << 25

	RCC_CR_RESET = RCC_CR_HSION | RCC_CR_HSIRDY
)

// RCC_CFGR fields.
const (
	RCC_CFGR_SW_Pos     = 0
	RCC_CFGR_SW_Msk     = 0x7 << RCC_CFGR_SW_Pos
	RCC_CFGR_SWS_Pos    = 3
	RCC_CFGR_SWS_Msk    = 0x7 << RCC_CFGR_SWS_Pos
	RCC_CFGR_HPRE_Pos   = 8
	RCC_CFGR_HPRE_Msk   = 0xF << RCC_CFGR_HPRE_Pos
	RCC_CFGR_PPRE_Pos   = 12
	RCC_CFGR_PPRE_Msk   = 0x7 << RCC_CFGR_PPRE_Pos
	RCC_CFGR_MCOSEL_Pos = 24
	RCC_CFGR_MCOSEL_Msk = 0xF << RCC_CFGR_MCOSEL_Pos
	RCC_CFGR_MCOPRE_Pos = 28
	RCC_CFGR_MCOPRE_Msk = 0x7 << RCC_CFGR_MCOPRE_Pos

	// SW/SWS encodings.
	RCC_CFGR_SW_HSISYS  = 0
	RCC_CFGR_SW_HSE     = 1
	RCC_CFGR_SW_PLLRCLK = 2
	RCC_CFGR_SW_LSI     = 3
	RCC_CFGR_SW_LSE     = 4
)

// RCC_PLLCFGR fields.
const (
	RCC_PLLCFGR_PLLSRC_Pos = 0
	RCC_PLLCFGR_PLLSRC_Msk = 0x3 << RCC_PLLCFGR_PLLSRC_Pos
	RCC_PLLCFGR_PLLM_Pos   = 4
	RCC_PLLCFGR_PLLM_Msk   = 0x7 << RCC_PLLCFGR_PLLM_Pos
	RCC_PLLCFGR_PLLN_Pos   = 8
	RCC_PLLCFGR_PLLN_Msk   = 0x7F << RCC_PLLCFGR_PLLN_Pos
	RCC_PLLCFGR_PLLPEN     = 1 << 16
	RCC_PLLCFGR_PLLP_Pos   = 17
	RCC_PLLCFGR_PLLP_Msk   = 0x1F << RCC_PLLCFGR_PLLP_Pos
	RCC_PLLCFGR_PLLQEN     = 1 << 24
	RCC_PLLCFGR_PLLQ_Pos   = 25
	RCC_PLLCFGR_PLLQ_Msk   = 0x7 << RCC_PLLCFGR_PLLQ_Pos
	RCC_PLLCFGR_PLLREN     = 1 << 28
	RCC_PLLCFGR_PLLR_Pos   = 29
	RCC_PLLCFGR_PLLR_Msk   = 0x7 << RCC_PLLCFGR_PLLR_Pos

	RCC_PLLCFGR_PLLSRC_NONE  = 0
	RCC_PLLCFGR_PLLSRC_HSI16 = 2
	RCC_PLLCFGR_PLLSRC_HSE   = 3

	RCC_PLLCFGR_RESET = 0x10 << RCC_PLLCFGR_PLLN_Pos
)

// RCC_APBENR1 bits used by the clock tree itself.
const (
	RCC_APBENR1_PWREN = 1 << 28
)

// RCC_BDCR fields.
const (
	RCC_BDCR_LSEON      = 1 << 0
	RCC_BDCR_LSERDY     = 1 << 1
	RCC_BDCR_LSEBYP     = 1 << 2
	RCC_BDCR_RTCSEL_Pos = 8
	RCC_BDCR_RTCSEL_Msk = 0x3 << RCC_BDCR_RTCSEL_Pos
	RCC_BDCR_RTCEN      = 1 << 15
	RCC_BDCR_BDRST      = 1 << 16
	RCC_BDCR_LSCOEN     = 1 << 24
	RCC_BDCR_LSCOSEL    = 1 << 25
)

// RCC_CSR fields.
const (
	RCC_CSR_LSION    = 1 << 0
	RCC_CSR_LSIRDY   = 1 << 1
	RCC_CSR_RMVF     = 1 << 23
	RCC_CSR_OBLRSTF  = 1 << 25
	RCC_CSR_PINRSTF  = 1 << 26
	RCC_CSR_PWRRSTF  = 1 << 27
	RCC_CSR_SFTRSTF  = 1 << 28
	RCC_CSR_IWDGRSTF = 1 << 29
	RCC_CSR_WWDGRSTF = 1 << 30
	RCC_CSR_LPWRRSTF = 1 << 31

	RCC_CSR_RSTF_Msk = RCC_CSR_OBLRSTF | RCC_CSR_PINRSTF | RCC_CSR_PWRRSTF |
		RCC_CSR_SFTRSTF | RCC_CSR_IWDGRSTF | RCC_CSR_WWDGRSTF | RCC_CSR_LPWRRSTF
)

// FLASH registers.
const (
	FLASH_ACR = FLASH_BASE + 0x00

	FLASH_ACR_LATENCY_Pos = 0
	FLASH_ACR_LATENCY_Msk = 0x7 << FLASH_ACR_LATENCY_Pos
	FLASH_ACR_PRFTEN      = 1 << 8
	FLASH_ACR_ICEN        = 1 << 9

	FLASH_ACR_RESET = FLASH_ACR_ICEN | 1<<10
)

// PWR registers.
const (
	PWR_CR1 = PWR_BASE + 0x00

	PWR_CR1_DBP = 1 << 8

	PWR_CR1_RESET = 0x208
)

// Fixed oscillator frequencies in hertz.
const (
	HSI_FREQUENCY = 16_000_000
	LSI_FREQUENCY = 32_000
)
