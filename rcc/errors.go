package rcc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPLLParameter = errors.New("invalid PLL parameter")
	ErrInvalidConfig       = errors.New("invalid clock configuration")
	ErrOscillatorTimeout   = errors.New("oscillator did not become ready")
	ErrPLLLockTimeout      = errors.New("PLL did not lock")
	ErrClockSwitchTimeout  = errors.New("system clock switch did not complete")
	ErrFlashLatencyTimeout = errors.New("flash latency did not read back")
	ErrBackupDomainLocked  = errors.New("backup domain write protection did not clear")
	ErrSourceNotReady      = errors.New("clock source is not running")
	ErrHandleConsumed      = errors.New("rcc handle already consumed")
	ErrUnknownPeripheral   = errors.New("unknown peripheral")
)

// ParamError reports a PLL divider or multiplier outside its range.
type ParamError struct {
	Param    string
	Value    uint32
	Min, Max uint32
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("PLL %s = %d out of range [%d, %d]", e.Param, e.Value, e.Min, e.Max)
}

func (e *ParamError) Unwrap() error { return ErrInvalidPLLParameter }

// ConfigError reports a configuration value the hardware cannot realize.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// OscillatorError is returned when an oscillator's ready flag never sets.
// It matches ErrOscillatorTimeout and the underlying poll error, which is
// either poll.ErrTimeout or the context's error.
type OscillatorError struct {
	Oscillator string
	Err        error
}

func (e *OscillatorError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Oscillator, ErrOscillatorTimeout, e.Err)
}

func (e *OscillatorError) Unwrap() []error {
	return []error{ErrOscillatorTimeout, e.Err}
}

// waitError tags a poll failure with the sentinel of the step that failed.
func waitError(sentinel error, step string, err error) error {
	return fmt.Errorf("%s: %w: %w", step, sentinel, err)
}
