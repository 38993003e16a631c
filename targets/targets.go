// Package targets describes the STM32G0 lines the clock tree supports: the
// frequency limits every configuration is checked against and the
// peripherals each line implements.
package targets

import (
	_ "embed"
	"errors"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

var ErrTargetNotFound = errors.New("target not found")

func All() Targets {
	return targets
}

type Targets []TargetInfo

type TargetInfo struct {
	Series      string   `yaml:"series"`
	Chips       []string `yaml:"chips"`
	MaxSysClk   uint32   `yaml:"maxSysClk"`
	HSEMin      uint32   `yaml:"hseMin"`
	HSEMax      uint32   `yaml:"hseMax"`
	VCOMin      uint32   `yaml:"vcoMin"`
	VCOMax      uint32   `yaml:"vcoMax"`
	PLLQ        bool     `yaml:"pllq"`
	PLLP        bool     `yaml:"pllp"`
	Peripherals []string `yaml:"peripherals"`
}

// HasPeripheral reports whether the line implements the named peripheral.
func (t TargetInfo) HasPeripheral(name string) bool {
	return slices.Contains(t.Peripherals, strings.ToUpper(name))
}

func (t Targets) FindBySeries(name string) (TargetInfo, error) {
	for _, target := range t {
		if target.Series == strings.ToLower(name) {
			return target, nil
		}
	}
	return TargetInfo{}, ErrTargetNotFound
}

func (t Targets) FindByChip(name string) (TargetInfo, error) {
	for _, target := range t {
		if slices.Contains(target.Chips, strings.ToLower(name)) {
			return target, nil
		}
	}

	// Accept an ordering code such as stm32g071rbt6 by its chip prefix.
	name = strings.ToLower(name)
	for _, target := range t {
		for _, chip := range target.Chips {
			if strings.HasPrefix(name, chip) {
				return target, nil
			}
		}
	}
	return TargetInfo{}, ErrTargetNotFound
}

func init() {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(rawTargets, &t); err != nil {
		panic(err)
	}

	targets = t.Elements
}
