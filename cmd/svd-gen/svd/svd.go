// Package svd decodes the subset of CMSIS-SVD device descriptions needed to
// generate register tables.
package svd

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

func Decode(r io.Reader) (*DeviceElement, error) {
	var device DeviceElement
	if err := xml.NewDecoder(r).Decode(&device); err != nil {
		return nil, fmt.Errorf("xml decode error: %w", err)
	}
	return &device, nil
}

func ReadFile(name string) (*DeviceElement, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
