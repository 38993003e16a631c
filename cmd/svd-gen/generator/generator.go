package generator

import "io"

// Generator renders Go source for a decoded device.
type Generator interface {
	Generate(w io.Writer) error
}
