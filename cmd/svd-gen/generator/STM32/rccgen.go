package STM32

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/tools/imports"

	"omibyte.io/g0hal/cmd/svd-gen/generator"
	"omibyte.io/g0hal/cmd/svd-gen/svd"
	"omibyte.io/g0hal/logging"
)

var (
	ErrNoRCC               = errors.New("device has no RCC peripheral")
	ErrMissingRegister     = errors.New("missing RCC register")
	ErrDuplicatePeripheral = errors.New("duplicate peripheral")
	ErrNoPeripherals       = errors.New("no clock-gated peripherals found")
)

// busRegisters names the enable, reset and sleep-mode registers that gate one
// bus.
type busRegisters struct {
	bus   string
	enr   string
	rstr  string
	smenr string
}

var buses = []busRegisters{
	{"IOP", "IOPENR", "IOPRSTR", "IOPSMENR"},
	{"AHB", "AHBENR", "AHBRSTR", "AHBSMENR"},
	{"APB1", "APBENR1", "APBRSTR1", "APBSMENR1"},
	{"APB2", "APBENR2", "APBRSTR2", "APBSMENR2"},
}

type Options struct {
	// Package is the package clause of the output. Defaults to "rcc".
	Package string
	// Source is recorded in the generated-code header.
	Source string
	Logger *slog.Logger
}

type entry struct {
	name  string
	bus   int
	bit   uint64
	reset bool
	sleep bool
}

func (e entry) flags() string {
	var flags []string
	if e.reset {
		flags = append(flags, "hasReset")
	}
	if e.sleep {
		flags = append(flags, "hasSleep")
	}
	if strings.HasPrefix(e.name, "TIM") {
		flags = append(flags, "timerClock")
	}
	if len(flags) == 0 {
		return "0"
	}
	return strings.Join(flags, " | ")
}

type rccgen struct {
	device *svd.DeviceElement
	opts   Options
	log    *slog.Logger
}

func NewGenerator(device *svd.DeviceElement, opts Options) generator.Generator {
	if opts.Package == "" {
		opts.Package = "rcc"
	}
	log := opts.Logger
	if log == nil {
		log = logging.For(logging.ComponentSVDGen)
	}
	return &rccgen{device: device, opts: opts, log: log}
}

func (g *rccgen) Generate(w io.Writer) error {
	entries, err := g.collect()
	if err != nil {
		return err
	}

	var b strings.Builder
	g.writePreamble(&b)
	g.writeConstants(&b, entries)
	g.writeTable(&b, entries)

	// Format the final output
	src, err := imports.Process("peripherals_gen.go", []byte(b.String()), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return fmt.Errorf("error formatting generated table: %w", err)
	}
	_, err = w.Write(src)
	return err
}

// collect walks the bus enable registers. Every single-bit field named
// <PERIPH>EN is a peripheral; matching <PERIPH>RST and <PERIPH>SMEN fields at
// the same position mark reset and sleep-mode support.
func (g *rccgen) collect() ([]entry, error) {
	rcc, ok := g.device.Peripheral("RCC")
	if !ok {
		return nil, ErrNoRCC
	}

	var entries []entry
	seen := map[string]bool{}
	for i, b := range buses {
		enr, ok := rcc.Registers.Find(b.enr)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRegister, b.enr)
		}
		rstr, ok := rcc.Registers.Find(b.rstr)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRegister, b.rstr)
		}
		smenr, ok := rcc.Registers.Find(b.smenr)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRegister, b.smenr)
		}

		for _, f := range enr.Fields.Elements {
			if !strings.HasSuffix(f.Name, "EN") || f.BitWidth != 1 {
				g.log.Debug("skipping field", "register", b.enr, "field", f.Name)
				continue
			}
			name := strings.TrimSuffix(f.Name, "EN")
			if seen[name] {
				return nil, fmt.Errorf("%w: %s", ErrDuplicatePeripheral, name)
			}
			seen[name] = true

			e := entry{name: name, bus: i, bit: uint64(f.BitOffset)}
			if rst, ok := rstr.Field(name + "RST"); ok && rst.BitOffset == f.BitOffset {
				e.reset = true
			}
			if sm, ok := smenr.Field(name + "SMEN"); ok && sm.BitOffset == f.BitOffset {
				e.sleep = true
			}
			entries = append(entries, e)
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoPeripherals
	}

	slices.SortStableFunc(entries, func(a, b entry) bool {
		if a.bus != b.bus {
			return a.bus < b.bus
		}
		return a.bit < b.bit
	})

	g.log.Info("collected peripherals", "device", g.device.Name, "count", len(entries))
	return entries, nil
}

func (g *rccgen) writePreamble(w io.Writer) {
	source := g.device.Name
	if g.opts.Source != "" {
		source = filepath.Base(g.opts.Source)
	}
	fmt.Fprintf(w, "// Code generated by svd-gen from %s. DO NOT EDIT.\n\n", source)
	fmt.Fprintf(w, "package %s\n\n", g.opts.Package)
}

func (g *rccgen) writeConstants(w io.Writer, entries []entry) {
	fmt.Fprintln(w, "const (")
	for i, e := range entries {
		if i == 0 {
			fmt.Fprintf(w, "%s Peripheral = iota\n", e.name)
			continue
		}
		fmt.Fprintln(w, e.name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "numPeripherals")
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)
}

func (g *rccgen) writeTable(w io.Writer, entries []entry) {
	fmt.Fprintln(w, "var peripherals = [numPeripherals]peripheralInfo{")
	for _, e := range entries {
		fmt.Fprintf(w, "%s: {name: %q, bus: %s, bit: %d, flags: %s},\n",
			e.name, e.name, buses[e.bus].bus, e.bit, e.flags())
	}
	fmt.Fprintln(w, "}")
}
