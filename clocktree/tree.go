// Package clocktree models a frozen clock configuration as a directed graph
// from oscillators down to the bus clocks.
package clocktree

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"omibyte.io/g0hal/device/stm32g0"
	"omibyte.io/g0hal/rcc"
	"omibyte.io/g0hal/units"
)

var ErrUnknownNode = errors.New("unknown clock node")

type Kind int

const (
	Oscillator Kind = iota
	PLL
	Divider
	Mux
	Bus
)

func (k Kind) String() string {
	switch k {
	case Oscillator:
		return "oscillator"
	case PLL:
		return "pll"
	case Divider:
		return "divider"
	case Mux:
		return "mux"
	case Bus:
		return "bus"
	}
	return "unknown"
}

var shapes = map[Kind]string{
	Oscillator: "ellipse",
	PLL:        "box3d",
	Divider:    "box",
	Mux:        "trapezium",
	Bus:        "note",
}

// Node is one clock signal.
type Node struct {
	id   int64
	Name string
	Kind Kind
	Freq units.Hertz
}

func (n *Node) ID() int64 { return n.id }

func (n *Node) DOTID() string { return n.Name }

func (n *Node) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%s\n%s", n.Name, n.Freq)},
		{Key: "shape", Value: shapes[n.Kind]},
	}
}

// Edge carries the operation applied between two signals.
type Edge struct {
	F, T  *Node
	Label string
}

func (e Edge) From() graph.Node { return e.F }

func (e Edge) To() graph.Node { return e.T }

func (e Edge) ReversedEdge() graph.Edge { return Edge{F: e.T, T: e.F, Label: e.Label} }

func (e Edge) Attributes() []encoding.Attribute {
	if e.Label == "" {
		return nil
	}
	return []encoding.Attribute{{Key: "label", Value: e.Label}}
}

// Tree is the clock graph of one configuration.
type Tree struct {
	g      *simple.DirectedGraph
	byName map[string]*Node
}

func (t *Tree) add(name string, kind Kind, freq units.Hertz) *Node {
	n := &Node{id: int64(len(t.byName)), Name: name, Kind: kind, Freq: freq}
	t.byName[name] = n
	t.g.AddNode(n)
	return n
}

func (t *Tree) connect(from, to *Node, label string) {
	t.g.SetEdge(Edge{F: from, T: to, Label: label})
}

// Build lays out the clock tree of cfg, labelled with the frequencies in
// clocks.
func Build(cfg rcc.Config, clocks rcc.Clocks) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Tree{g: simple.NewDirectedGraph(), byName: make(map[string]*Node)}

	hsi := t.add("HSI16", Oscillator, stm32g0.HSI_FREQUENCY)

	var hse *Node
	if cfg.PLL.Source.Kind == rcc.KindHSE {
		hse = t.add("HSE", Oscillator, cfg.PLL.Source.Freq)
	} else if cfg.Source.Kind == rcc.KindHSE {
		hse = t.add("HSE", Oscillator, cfg.Source.Freq)
	}

	pllIn := hsi
	if cfg.PLL.Source.Kind == rcc.KindHSE {
		pllIn = hse
	}
	taps := clocks.PLLClk()
	vco := t.add("PLL", PLL, cfg.PLL.VCO())
	t.connect(pllIn, vco, fmt.Sprintf("/%d x%d", cfg.PLL.M, cfg.PLL.N))
	pllr := t.add("PLLR", Divider, taps.R)
	t.connect(vco, pllr, fmt.Sprintf("/%d", cfg.PLL.R))
	if taps.HasQ() {
		t.connect(vco, t.add("PLLQ", Divider, taps.Q), fmt.Sprintf("/%d", cfg.PLL.Q))
	}
	if taps.HasP() {
		t.connect(vco, t.add("PLLP", Divider, taps.P), fmt.Sprintf("/%d", cfg.PLL.P))
	}

	var source *Node
	switch cfg.Source.Kind {
	case rcc.KindHSI:
		source = t.add("HSISYS", Divider, clocks.SysClk())
		t.connect(hsi, source, fmt.Sprintf("/%d", cfg.Source.Div.Ratio()))
	case rcc.KindHSE:
		source = hse
	case rcc.KindLSE:
		source = t.add("LSE", Oscillator, cfg.Source.Freq)
	case rcc.KindLSI:
		source = t.add("LSI", Oscillator, stm32g0.LSI_FREQUENCY)
	case rcc.KindPLL:
		source = pllr
	}

	sys := t.add("SYSCLK", Mux, clocks.SysClk())
	t.connect(source, sys, "SW")
	hclk := t.add("HCLK", Divider, clocks.AHBClk())
	t.connect(sys, hclk, fmt.Sprintf("/%d", cfg.AHB.Ratio()))
	pclk := t.add("PCLK", Divider, clocks.APBClk())
	t.connect(hclk, pclk, fmt.Sprintf("/%d", cfg.APB.Ratio()))
	timpclk := t.add("TIMPCLK", Divider, clocks.APBTimClk())
	if cfg.APB == rcc.APBNotDivided {
		t.connect(pclk, timpclk, "x1")
	} else {
		t.connect(pclk, timpclk, "x2")
	}

	for _, bus := range []rcc.Bus{rcc.IOP, rcc.AHB, rcc.APB1, rcc.APB2} {
		n := t.add(bus.String(), Bus, clocks.BusClock(bus))
		if bus == rcc.IOP || bus == rcc.AHB {
			t.connect(hclk, n, "")
		} else {
			t.connect(pclk, n, "")
		}
	}
	return t, nil
}

// Node returns the named signal.
func (t *Tree) Node(name string) (*Node, error) {
	n, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	return n, nil
}

// Order returns the signals in propagation order: every node comes after the
// node it is derived from. Independent nodes are ordered by creation.
func (t *Tree) Order() ([]*Node, error) {
	sorted, err := topo.SortStabilized(t.g, nil)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, len(sorted))
	for i, n := range sorted {
		nodes[i] = n.(*Node)
	}
	return nodes, nil
}

// Path returns the chain of signals from an oscillator down to name.
func (t *Tree) Path(name string) ([]*Node, error) {
	n, err := t.Node(name)
	if err != nil {
		return nil, err
	}
	path := []*Node{n}
	for {
		parents := t.g.To(n.ID())
		if !parents.Next() {
			break
		}
		n = parents.Node().(*Node)
		path = append([]*Node{n}, path...)
	}
	return path, nil
}

// DOT renders the tree in Graphviz format.
func (t *Tree) DOT() ([]byte, error) {
	return dot.Marshal(t.g, "clocks", "", "  ")
}
