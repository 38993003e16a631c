//go:build tinygo && cortexm

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Direct accesses the physical memory map.
type Direct struct{}

func (Direct) Load(addr uint32) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

func (Direct) Store(addr uint32, value uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), value)
}
