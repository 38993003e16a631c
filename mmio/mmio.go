// Package mmio is the register access layer. Everything above it talks to
// hardware through a Bus, which is either the real memory map (TinyGo) or a
// simulator.
package mmio

// Bus loads and stores 32-bit words at absolute peripheral addresses.
type Bus interface {
	Load(addr uint32) uint32
	Store(addr uint32, value uint32)
}

// Register is a single 32-bit register on a Bus.
type Register struct {
	bus  Bus
	addr uint32
}

func NewRegister(bus Bus, addr uint32) Register {
	return Register{bus: bus, addr: addr}
}

func (r Register) Address() uint32 { return r.addr }

func (r Register) Get() uint32 {
	return r.bus.Load(r.addr)
}

func (r Register) Set(value uint32) {
	r.bus.Store(r.addr, value)
}

// SetBits reads the register, sets the bits in mask and writes it back.
func (r Register) SetBits(mask uint32) {
	r.bus.Store(r.addr, r.bus.Load(r.addr)|mask)
}

// ClearBits reads the register, clears the bits in mask and writes it back.
func (r Register) ClearBits(mask uint32) {
	r.bus.Store(r.addr, r.bus.Load(r.addr)&^mask)
}

// HasBits reports whether any bit of mask is set.
func (r Register) HasBits(mask uint32) bool {
	return r.bus.Load(r.addr)&mask != 0
}

// ReplaceBits replaces the field selected by mask (unshifted) at pos with
// value, in one read-modify-write.
func (r Register) ReplaceBits(value uint32, mask uint32, pos uint8) {
	v := r.bus.Load(r.addr)
	v &^= mask << pos
	v |= (value & mask) << pos
	r.bus.Store(r.addr, v)
}

// Field extracts the field selected by mask (unshifted) at pos.
func (r Register) Field(mask uint32, pos uint8) uint32 {
	return (r.bus.Load(r.addr) >> pos) & mask
}
