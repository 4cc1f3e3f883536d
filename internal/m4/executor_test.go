// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// End-to-end scenario tests, one per spec §8 worked example (S1-S6).

package m4

import (
	"bytes"
	"testing"
)

func newTestProcessor() *Processor {
	return NewProcessor()
}

func TestS1_MovImm(t *testing.T) {
	p := newTestProcessor()
	p.Bus.WriteFlash(0, encode16(0x2042)) // MOV r0, #0x42
	p.Reset()

	p.Step()

	if got := p.Regs.Get(0, ModeThread); got != 0x42 {
		t.Errorf("R0 = 0x%X, want 0x42", got)
	}
	if got := p.Regs.PCStored(); got != 2 {
		t.Errorf("PC_stored = %d, want 2", got)
	}
}

func TestS2_AddReg(t *testing.T) {
	p := newTestProcessor()
	p.Bus.WriteFlash(0, encode16(0x1888)) // ADD r0, r1, r2
	p.Reset()

	p.Regs.Set(1, func(uint32) uint32 { return 3 }, ModeThread)
	p.Regs.Set(2, func(uint32) uint32 { return 4 }, ModeThread)

	p.Step()

	if got := p.Regs.Get(0, ModeThread); got != 7 {
		t.Errorf("R0 = %d, want 7", got)
	}
}

func TestS3_LdrLiteral(t *testing.T) {
	p := newTestProcessor()
	p.Bus.WriteFlash(0, encode16(0x4803)) // LDR r0, [PC, #12]
	p.Bus.WriteFlash(0x10, encode32(0xDEAD_BEEF))
	p.Reset()

	p.Step()

	if got := p.Regs.Get(0, ModeThread); got != 0xDEAD_BEEF {
		t.Errorf("R0 = 0x%X, want 0xDEADBEEF", got)
	}
}

func TestS4_StrLdrRoundTrip(t *testing.T) {
	p := newTestProcessor()
	p.Bus.WriteFlash(0, encode16(0x6008)) // STR r0, [r1, #0]
	p.Bus.WriteFlash(2, encode16(0x6808)) // LDR r0, [r1, #0]
	p.Reset()

	p.Regs.Set(0, func(uint32) uint32 { return 0xCAFE_BABE }, ModeThread)
	p.Regs.Set(1, func(uint32) uint32 { return 0x2000_0100 }, ModeThread)

	p.Step()
	p.Step()

	if got := p.Regs.Get(0, ModeThread); got != 0xCAFE_BABE {
		t.Errorf("R0 after round trip = 0x%X, want 0xCAFEBABE", got)
	}
	raw := make([]byte, 4)
	raw[0] = p.SRAM.read8(0x2000_0100)
	raw[1] = p.SRAM.read8(0x2000_0101)
	raw[2] = p.SRAM.read8(0x2000_0102)
	raw[3] = p.SRAM.read8(0x2000_0103)
	if !bytes.Equal(raw, []byte{0xBE, 0xBA, 0xFE, 0xCA}) {
		t.Errorf("SRAM bytes = % X, want BE BA FE CA", raw)
	}
}

func TestS5_UnmappedAccessFaults(t *testing.T) {
	p := newTestProcessor()
	p.Bus.WriteFlash(0, encode16(0x6008)) // STR r0, [r1, #0]
	p.Reset()

	p.Regs.Set(1, func(uint32) uint32 { return 0x4000_0000 }, ModeThread)

	p.Step()

	snap := p.Snapshot()
	if snap.Mode != ModeHandler {
		t.Errorf("mode = %v, want Handler", snap.Mode)
	}
	excNum := extractBits(snap.PSR, psrExcNumLo, psrExcNumHi)
	if excNum != 5 {
		t.Errorf("PSR exception number = %d, want 5 (BusFault)", excNum)
	}
}

func TestS6_ResetFromImage(t *testing.T) {
	p := newTestProcessor()
	p.Bus.WriteFlash(0x00, encode32(0x2000_1004))   // MSP
	p.Bus.WriteFlash(0x04, encode32(0x0000_0101))   // PC (bit0 set, thumb)

	hex := ":020000040000FA\n" +
		":0400000300000008F1\n" +
		":00000001FF\n"

	if err := p.LoadHex(bytes.NewBufferString(hex)); err != nil {
		t.Fatalf("LoadHex: %v", err)
	}
	p.Reset()

	if got := p.Regs.PCStored(); got != 0x0000_0100 {
		t.Errorf("PC_stored = 0x%X, want 0x100", got)
	}
	if got := p.Regs.MSP(); got != 0x2000_1004 {
		t.Errorf("MSP = 0x%X, want 0x20001004", got)
	}
	if p.Mode != ModeThread {
		t.Errorf("mode = %v, want Thread", p.Mode)
	}
}
