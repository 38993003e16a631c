package svd

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Integer is an SVD scaledNonNegativeInteger: decimal, 0x hexadecimal or
// #binary.
type Integer uint64

func (h *Integer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}
	value, err := ParseInteger(v)
	if err != nil {
		return err
	}
	*h = value
	return nil
}

func ParseInteger(v string) (Integer, error) {
	v = strings.TrimSpace(v)
	base := 10
	switch {
	case strings.HasPrefix(v, "0x"), strings.HasPrefix(v, "0X"):
		v, base = v[2:], 16
	case strings.HasPrefix(v, "#"):
		v, base = v[1:], 2
	}
	value, err := strconv.ParseUint(v, base, 64)
	if err != nil {
		return 0, err
	}
	return Integer(value), nil
}

// Bool accepts the SVD spellings true/false/1/0.
type Bool bool

func (b *Bool) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*b = Bool(parsed)
	return nil
}
