package svd

type DeviceElement struct {
	Name             string             `xml:"name"`
	Description      string             `xml:"description"`
	Series           string             `xml:"series"`
	Version          string             `xml:"version"`
	Vendor           string             `xml:"vendor"`
	CPU              CPUElement         `xml:"cpu"`
	AddressableWidth Integer            `xml:"addressUnitBits"`
	BitWidth         Integer            `xml:"width"`
	Peripherals      PeripheralsElement `xml:"peripherals"`
}

type CPUElement struct {
	Name       string `xml:"name"`
	Revision   string `xml:"revision"`
	Endian     string `xml:"endian"`
	FPUPresent Bool   `xml:"fpuPresent"`
}

type PeripheralsElement struct {
	Elements []PeripheralElement `xml:"peripheral"`
}

// Peripheral returns the named peripheral. A peripheral declared with
// derivedFrom takes its register block from the base peripheral.
func (d *DeviceElement) Peripheral(name string) (PeripheralElement, bool) {
	p, ok := d.Peripherals.find(name)
	if !ok {
		return PeripheralElement{}, false
	}
	if p.DerivedFrom != "" && len(p.Registers.Elements) == 0 {
		base, ok := d.Peripherals.find(p.DerivedFrom)
		if !ok {
			return PeripheralElement{}, false
		}
		p.Registers = base.Registers
	}
	return p, true
}

func (p PeripheralsElement) find(name string) (PeripheralElement, bool) {
	for _, pp := range p.Elements {
		if pp.Name == name {
			return pp, true
		}
	}
	return PeripheralElement{}, false
}

type PeripheralElement struct {
	Name        string           `xml:"name"`
	Description string           `xml:"description"`
	Group       string           `xml:"groupName"`
	BaseAddress Integer          `xml:"baseAddress"`
	Registers   RegistersElement `xml:"registers"`
	DerivedFrom string           `xml:"derivedFrom,attr"`
}

type RegistersElement struct {
	Elements []RegisterElement `xml:"register"`
}

func (r RegistersElement) Find(name string) (RegisterElement, bool) {
	for _, reg := range r.Elements {
		if reg.Name == name {
			return reg, true
		}
	}
	return RegisterElement{}, false
}

type RegisterElement struct {
	Name          string        `xml:"name"`
	Description   string        `xml:"description"`
	AddressOffset Integer       `xml:"addressOffset"`
	Size          Integer       `xml:"size"`
	ResetValue    Integer       `xml:"resetValue"`
	Access        string        `xml:"access"`
	Fields        FieldElements `xml:"fields"`
}

// Field returns the named bit field of the register.
func (r RegisterElement) Field(name string) (FieldElement, bool) {
	for _, f := range r.Fields.Elements {
		if f.Name == name {
			return f, true
		}
	}
	return FieldElement{}, false
}

type FieldElements struct {
	Elements []FieldElement `xml:"field"`
}

type FieldElement struct {
	Name        string  `xml:"name"`
	Description string  `xml:"description"`
	BitOffset   Integer `xml:"bitOffset"`
	BitWidth    Integer `xml:"bitWidth"`
}
