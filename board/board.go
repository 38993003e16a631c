// Package board reads board definition files: the chip, its clock tree and
// the peripherals to bring up, and applies them to an RCC.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"omibyte.io/g0hal/logging"
	"omibyte.io/g0hal/rcc"
	"omibyte.io/g0hal/targets"
	"omibyte.io/g0hal/units"
)

var (
	ErrInvalidBoard = errors.New("invalid board file")
	ErrNotOnChip    = errors.New("peripheral not present on chip")
)

// Frequency accepts "8MHz", "32.768kHz" or a plain number of hertz.
type Frequency units.Hertz

func (f *Frequency) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: frequency must be a scalar", value.Line)
	}
	hz, err := units.ParseHertz(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = Frequency(hz)
	return nil
}

func (f Frequency) MarshalYAML() (any, error) {
	return units.Hertz(f).String(), nil
}

// PLL is the pll block. When M is omitted and Target is set, the dividers
// are searched for.
type PLL struct {
	Source    string    `yaml:"source"`
	Frequency Frequency `yaml:"frequency,omitempty"`
	Bypass    bool      `yaml:"bypass,omitempty"`
	Target    Frequency `yaml:"target,omitempty"`
	M         uint32    `yaml:"m,omitempty"`
	N         uint32    `yaml:"n,omitempty"`
	R         uint32    `yaml:"r,omitempty"`
	Q         uint32    `yaml:"q,omitempty"`
	P         uint32    `yaml:"p,omitempty"`
}

type Clock struct {
	Source    string    `yaml:"source"`
	Frequency Frequency `yaml:"frequency,omitempty"`
	Bypass    bool      `yaml:"bypass,omitempty"`
	HSIDiv    uint32    `yaml:"hsi_div,omitempty"`
	AHBDiv    uint32    `yaml:"ahb_div,omitempty"`
	APBDiv    uint32    `yaml:"apb_div,omitempty"`
	PLL       *PLL      `yaml:"pll,omitempty"`
}

// File is a board definition.
type File struct {
	Name      string   `yaml:"name"`
	Chip      string   `yaml:"chip"`
	Clock     Clock    `yaml:"clock"`
	Enable    []string `yaml:"enable,omitempty"`
	SleepMode []string `yaml:"sleep,omitempty"`
}

// Decode parses a board file. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}
	if f.Chip == "" {
		return nil, fmt.Errorf("%w: chip is required", ErrInvalidBoard)
	}
	return &f, nil
}

func Load(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Target looks up the chip line of the board.
func (f *File) Target() (targets.TargetInfo, error) {
	return targets.All().FindByChip(f.Chip)
}

func ratio(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

func (p *PLL) config() (rcc.PLLConfig, error) {
	if p == nil {
		return rcc.DefaultPLLConfig(), nil
	}

	var src rcc.PLLSource
	switch strings.ToLower(p.Source) {
	case "", "hsi", "hsi16":
		src = rcc.PLLSrcHSI()
	case "hse":
		if p.Bypass {
			src = rcc.PLLSrcHSEBypass(units.Hertz(p.Frequency))
		} else {
			src = rcc.PLLSrcHSE(units.Hertz(p.Frequency))
		}
	default:
		return rcc.PLLConfig{}, fmt.Errorf("%w: unknown PLL source %q", ErrInvalidBoard, p.Source)
	}

	if p.M == 0 && p.Target != 0 {
		cfg, err := rcc.SolvePLL(src, units.Hertz(p.Target))
		if err != nil {
			return rcc.PLLConfig{}, err
		}
		cfg.Q, cfg.P = p.Q, p.P
		return cfg, nil
	}
	return rcc.PLLConfig{Source: src, M: p.M, N: p.N, R: p.R, Q: p.Q, P: p.P}, nil
}

// Config translates the clock section into an rcc.Config.
func (f *File) Config() (rcc.Config, error) {
	c := f.Clock
	freq := units.Hertz(c.Frequency)

	var src rcc.SysClockSrc
	switch strings.ToLower(c.Source) {
	case "", "hsi", "hsi16":
		div, err := rcc.HSIDivFor(ratio(c.HSIDiv))
		if err != nil {
			return rcc.Config{}, err
		}
		src = rcc.HSI(div)
	case "hse":
		src = rcc.HSE(freq)
		src.Bypass = c.Bypass
	case "lse":
		src = rcc.LSE(freq)
		src.Bypass = c.Bypass
	case "lsi":
		src = rcc.LSI()
	case "pll":
		src = rcc.PLL()
	default:
		return rcc.Config{}, fmt.Errorf("%w: unknown clock source %q", ErrInvalidBoard, c.Source)
	}

	ahb, err := rcc.AHBPrescalerFor(ratio(c.AHBDiv))
	if err != nil {
		return rcc.Config{}, err
	}
	apb, err := rcc.APBPrescalerFor(ratio(c.APBDiv))
	if err != nil {
		return rcc.Config{}, err
	}
	pll, err := c.PLL.config()
	if err != nil {
		return rcc.Config{}, err
	}
	return rcc.NewConfig(src).WithAHB(ahb).WithAPB(apb).WithPLL(pll), nil
}

func parseList(names []string, target *targets.TargetInfo) ([]rcc.Peripheral, error) {
	var (
		list []rcc.Peripheral
		errs []error
	)
	for _, name := range names {
		p, err := rcc.ParsePeripheral(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if target != nil && !target.HasPeripheral(p.String()) {
			errs = append(errs, fmt.Errorf("%w: %s on %s", ErrNotOnChip, p, target.Series))
			continue
		}
		list = append(list, p)
	}
	return list, errors.Join(errs...)
}

// Peripherals returns the enable list, checked against the chip.
func (f *File) Peripherals() ([]rcc.Peripheral, error) {
	target, err := f.Target()
	if err != nil {
		return nil, fmt.Errorf("chip %s: %w", f.Chip, err)
	}
	return parseList(f.Enable, &target)
}

// Bringup freezes the board's clock tree and enables its peripherals in
// file order. Everything is validated before the first register write.
func Bringup(ctx context.Context, raw *rcc.Raw, f *File) (*rcc.Rcc, error) {
	log := logging.For(logging.ComponentBoard).With("board", f.Name)

	cfg, err := f.Config()
	if err != nil {
		return nil, err
	}
	target, err := f.Target()
	if err != nil {
		return nil, fmt.Errorf("chip %s: %w", f.Chip, err)
	}
	if err := cfg.ValidateFor(target); err != nil {
		return nil, err
	}
	enable, err := parseList(f.Enable, &target)
	if err != nil {
		return nil, err
	}
	sleep, err := parseList(f.SleepMode, &target)
	if err != nil {
		return nil, err
	}

	handle, err := raw.Freeze(ctx, cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range enable {
		handle.Enable(p)
		handle.Reset(p)
	}
	for _, p := range sleep {
		handle.SleepModeEnable(p)
	}
	log.Info("board up", "chip", f.Chip, "clocks", handle.Clocks().String(), "enabled", len(enable))
	return handle, nil
}
