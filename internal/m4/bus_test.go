// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the memory-mapped bus, including unmapped-access
// fault synthesis (spec §4.2).

package m4

import "testing"

func newTestBus() (*Bus, *NVIC) {
	flash := NewRegion(FlashBase, FlashSize)
	sram := NewRegion(SRAMBase, SRAMSize)
	regs := NewRegisterFile()
	nvic := NewNVIC()
	return NewBus(flash, sram, regs, nvic), nvic
}

func TestBusReadWriteRoundTrip(t *testing.T) {
	bus, _ := newTestBus()

	bus.WriteU32(SRAMBase, 0x1122_3344)
	if got := bus.ReadU32(SRAMBase); got != 0x1122_3344 {
		t.Errorf("ReadU32 = 0x%X, want 0x11223344", got)
	}
	if got := bus.ReadU8(SRAMBase); got != 0x44 {
		t.Errorf("ReadU8 (little-endian low byte) = 0x%X, want 0x44", got)
	}
}

func TestBusUnmappedAccessFaults(t *testing.T) {
	bus, nvic := newTestBus()

	if nvic.Pending() {
		t.Fatalf("NVIC should start empty")
	}
	v := bus.ReadU32(0x1000_0000)
	if v != 0 {
		t.Errorf("unmapped read should return 0, got 0x%X", v)
	}
	e, ok := nvic.Poll()
	if !ok || e.Kind != KindBusFault {
		t.Errorf("unmapped read should raise BusFault, got %v, ok=%v", e, ok)
	}
}

func TestBusVTORRegisterDispatch(t *testing.T) {
	bus, _ := newTestBus()
	bus.WriteU32(VTORAddr, 0x2000_1000)
	if got := bus.ReadU32(VTORAddr); got != 0x2000_1000 {
		t.Errorf("VTOR readback = 0x%X, want 0x20001000", got)
	}
}

func TestRegionContainsBounds(t *testing.T) {
	r := NewRegion(SRAMBase, SRAMSize)
	if !r.contains(SRAMBase, 4) {
		t.Errorf("start of region should be contained")
	}
	if r.contains(SRAMBase+uint32(SRAMSize)-3, 4) {
		t.Errorf("access straddling the end of the region should not be contained")
	}
	if r.contains(SRAMBase-4, 4) {
		t.Errorf("access before the region should not be contained")
	}
}
