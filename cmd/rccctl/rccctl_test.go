package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"omibyte.io/g0hal/rcc"
)

const (
	nucleo    = "../../board/testdata/nucleo-g071rb.yaml"
	hseSolver = "../../board/testdata/hse-solver.yaml"
)

// resetFlags restores every flag to its default; the command tree is shared
// between test cases.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, stderr bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFreeze(t *testing.T) {
	out, err := execute(t, "freeze", "-f", nucleo)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"board:   NUCLEO-G071RB (stm32g071rb)",
		"SYSCLK=64MHz HCLK=64MHz PCLK=32MHz TIMPCLK=64MHz",
		"PLLQ=32MHz",
		"enabled: GPIOA GPIOC USART2 TIM3 DMA1",
		"reset:   pin|power-on",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "trace:") {
		t.Error("trace printed without --trace")
	}
}

func TestFreezeTrace(t *testing.T) {
	out, err := execute(t, "freeze", "-f", nucleo, "--trace", "--registers")
	if err != nil {
		t.Fatal(err)
	}
	trace := out[strings.Index(out, "trace:"):strings.Index(out, "registers:")]
	pll := strings.Index(trace, "RCC_PLLCFGR")
	cfgr := strings.Index(trace, "RCC_CFGR")
	if pll < 0 || cfgr < 0 || cfgr < pll {
		t.Errorf("PLLCFGR must be written before CFGR:\n%s", trace)
	}
	if !strings.Contains(out[strings.Index(out, "registers:"):], "FLASH_ACR") {
		t.Errorf("register dump missing FLASH_ACR:\n%s", out)
	}
}

func TestFreezeMissingCrystal(t *testing.T) {
	_, err := execute(t, "freeze", "-f", hseSolver, "--hse=false", "--timeout", "5ms")
	if !errors.Is(err, rcc.ErrOscillatorTimeout) {
		t.Errorf("error = %v, want %v", err, rcc.ErrOscillatorTimeout)
	}
}

func TestFreezeNoBoard(t *testing.T) {
	_, err := execute(t, "freeze", "--board=")
	if !errors.Is(err, errNoBoard) {
		t.Errorf("error = %v, want %v", err, errNoBoard)
	}
}

func firstColumn(out string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		names = append(names, strings.Fields(line)[0])
	}
	return names
}

func TestTree(t *testing.T) {
	out, err := execute(t, "tree", "--board=")
	if err != nil {
		t.Fatal(err)
	}
	names := firstColumn(out)
	if names[0] != "HSI16" {
		t.Errorf("first signal = %s, want HSI16", names[0])
	}
	pos := map[string]int{}
	for i, n := range names {
		pos[n] = i
	}
	for _, pair := range [][2]string{{"HSI16", "HSISYS"}, {"HSISYS", "SYSCLK"}, {"SYSCLK", "HCLK"}, {"HCLK", "PCLK"}, {"PCLK", "APB2"}} {
		if pos[pair[0]] >= pos[pair[1]] {
			t.Errorf("%s listed after %s:\n%s", pair[0], pair[1], out)
		}
	}
}

func TestTreePath(t *testing.T) {
	out, err := execute(t, "tree", "-f", nucleo, "--path", "APB1")
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(firstColumn(out), " ")
	if want := "HSI16 PLL PLLR SYSCLK HCLK PCLK APB1"; got != want {
		t.Errorf("path = %s, want %s", got, want)
	}
}

func TestTreeDOT(t *testing.T) {
	out, err := execute(t, "tree", "-f", nucleo, "--dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph clocks {") || !strings.Contains(out, "PLLQ") {
		t.Errorf("unexpected DOT output:\n%s", out)
	}
}

func TestPLLSolve(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"64MHz"}, "pllr: 64MHz"},
		{[]string{"--source", "hse", "--input", "8MHz", "56MHz"}, "pllr: 56MHz"},
		{[]string{"--source", "hse", "--input", "24MHz", "--bypass", "48MHz"}, "pllr: 48MHz"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, append([]string{"pll", "solve"}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
			if strings.Contains(out, "error:") {
				t.Errorf("exact target reported an error:\n%s", out)
			}
		})
	}
}

func TestPLLSolveErrors(t *testing.T) {
	tests := [][]string{
		{"fast"},
		{"--source", "lse", "32MHz"},
		{"--source", "hse", "--input", "none", "32MHz"},
		{"1MHz"},
	}
	for _, args := range tests {
		if _, err := execute(t, append([]string{"pll", "solve"}, args...)...); err == nil {
			t.Errorf("pll solve %q succeeded", args)
		}
	}
}

func TestPeripherals(t *testing.T) {
	all, err := execute(t, "peripherals", "--chip=")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(all, "NAME") || !strings.Contains(all, "FDCAN") {
		t.Errorf("full table:\n%s", all)
	}

	g031, err := execute(t, "peripherals", "--chip", "stm32g031")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(g031, "FDCAN") || !strings.Contains(g031, "LPUART1") {
		t.Errorf("stm32g031 table:\n%s", g031)
	}
	for _, line := range strings.Split(g031, "\n") {
		if f := strings.Fields(line); len(f) == 6 && f[0] == "TIM2" {
			if f[1] != "APB1" || f[2] != "0" || f[5] != "yes" {
				t.Errorf("TIM2 row = %q", line)
			}
		}
	}

	if _, err := execute(t, "peripherals", "--chip", "stm32f405"); err == nil {
		t.Error("unknown chip accepted")
	}
}

func TestLogFlags(t *testing.T) {
	if _, err := execute(t, "--log-level", "loud", "env"); err == nil {
		t.Error("invalid log level accepted")
	}
	if _, err := execute(t, "--log-format", "xml", "env"); err == nil {
		t.Error("invalid log format accepted")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("G0HAL_CHIP", "stm32g0b1")
	out, err := execute(t, "env")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "G0HAL_CHIP=stm32g0b1\n") {
		t.Errorf("env output:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] {
			t.Errorf("env not sorted:\n%s", out)
		}
	}
}
