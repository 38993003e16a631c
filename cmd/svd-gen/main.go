// Command svd-gen generates the RCC peripheral table from a CMSIS-SVD file.
//
//	svd-gen [-o peripherals_gen.go] [-pkg rcc] device.svd
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"omibyte.io/g0hal/cmd/svd-gen/generator"
	"omibyte.io/g0hal/cmd/svd-gen/generator/STM32"
	"omibyte.io/g0hal/cmd/svd-gen/svd"
	"omibyte.io/g0hal/logging"
)

var errUsage = errors.New("usage: svd-gen [-o output] [-pkg name] device.svd")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		logging.Error(logging.ComponentSVDGen, "generation failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("svd-gen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	output := fs.String("o", "", "output file (stdout when empty)")
	pkg := fs.String("pkg", "rcc", "package name of the generated file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	svdIn := fs.Arg(0)

	device, err := svd.ReadFile(svdIn)
	if err != nil {
		return err
	}

	log := logging.For(logging.ComponentSVDGen)
	log.Info("generating peripheral table",
		"device", device.Name,
		"series", device.Series,
		"cpu", device.CPU.Name,
		"revision", device.CPU.Revision,
		"width", uint64(device.BitWidth))

	var gen generator.Generator
	// Choose the generator based on series
	switch device.Series {
	case "STM32G0":
		gen = STM32.NewGenerator(device, STM32.Options{Package: *pkg, Source: svdIn, Logger: log})
	default:
		return fmt.Errorf("unsupported device series %q", device.Series)
	}

	var buf bytes.Buffer
	if err = gen.Generate(&buf); err != nil {
		return fmt.Errorf("generator error: %w", err)
	}

	if *output == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err = os.WriteFile(*output, buf.Bytes(), 0644); err != nil {
		return err
	}
	log.Info("wrote table", "file", *output)
	return nil
}
