// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the register file: PC bias, slot-15 alignment and
// banked SP routing (spec §8 tests 5-7).

package m4

import "testing"

func TestPCReadBias(t *testing.T) {
	r := NewRegisterFile()
	r.Set(SlotPC, func(uint32) uint32 { return 0x1000 }, ModeThread)
	if got := r.Get(SlotPC, ModeThread); got != 0x1004 {
		t.Errorf("Get(PC) = 0x%X, want 0x1004", got)
	}
}

func TestSlot15Alignment(t *testing.T) {
	r := NewRegisterFile()
	r.Set(SlotPC, func(uint32) uint32 { return 0x1003 }, ModeThread)
	if got := r.PCStored(); got != 0x1002 {
		t.Errorf("PCStored = 0x%X, want 0x1002", got)
	}
}

func TestBankedSP(t *testing.T) {
	r := NewRegisterFile()
	r.Control.Spsel = true

	r.Set(SlotSP, func(uint32) uint32 { return 0x2000_1000 }, ModeThread)
	if r.PSP() != 0x2000_1000 {
		t.Errorf("PSP = 0x%X, want 0x20001000", r.PSP())
	}
	if r.MSP() != 0 {
		t.Errorf("MSP should be untouched, got 0x%X", r.MSP())
	}

	r.Control.Spsel = false
	if got := r.Get(SlotSP, ModeThread); got != 0 {
		t.Errorf("with spsel=false, slot 13 should expose MSP (0), got 0x%X", got)
	}
}

func TestActiveSPIgnoredInHandlerMode(t *testing.T) {
	r := NewRegisterFile()
	r.Control.Spsel = true
	r.Set(SlotSP, func(uint32) uint32 { return 0x2000_2000 }, ModeHandler)
	if r.MSP() != 0x2000_2000 {
		t.Errorf("Handler mode always uses MSP regardless of spsel, got MSP=0x%X", r.MSP())
	}
	if r.PSP() != 0 {
		t.Errorf("PSP should be untouched in Handler mode, got 0x%X", r.PSP())
	}
}

func TestVTORBaseAddr(t *testing.T) {
	var v VTOR
	v.Write(0x2000_0000)
	if got := v.BaseAddr(); got != SRAMBase {
		t.Errorf("BaseAddr with base bit set = 0x%X, want 0x%X", got, SRAMBase)
	}

	v.Write(0x0000_0080)
	if got := v.BaseAddr(); got != 0x80 {
		t.Errorf("BaseAddr anchored at code = 0x%X, want 0x80", got)
	}
}
