// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

package m4

import "log"

// handleException drains at most one pending exception per step (spec
// §4.5, §9's "one exception per step" Design Note). Reset is handled
// as a full processor reset rather than a stacking exception — spec §3
// gives it no stack frame, only absolute priority.
func (p *Processor) handleException() {
	e, ok := p.NVIC.Poll()
	if !ok {
		return
	}
	if e.Kind == KindReset {
		p.Reset()
		return
	}
	p.pushStack(e)
	p.exceptionEntry(e)
}

// pushStack builds the 8-word exception frame on the active stack and
// sets LR to the EXC_RETURN encoding exception_return() will later
// read back (spec §4.5). Frame layout, offsets from the new SP:
// R0, R1, R2, R3, R12, LR, ReturnAddress, PSR at 0x00..0x1C.
func (p *Processor) pushStack(e Exception) {
	regs, mode := p.Regs, p.Mode

	sp := regs.Get(SlotSP, mode)
	align := (sp >> 2) & 1
	newSP := (sp - 0x20) &^ 0x4

	p.Bus.WriteU32(newSP+0x00, regs.Get(0, mode))
	p.Bus.WriteU32(newSP+0x04, regs.Get(1, mode))
	p.Bus.WriteU32(newSP+0x08, regs.Get(2, mode))
	p.Bus.WriteU32(newSP+0x0C, regs.Get(3, mode))
	p.Bus.WriteU32(newSP+0x10, regs.Get(12, mode))
	p.Bus.WriteU32(newSP+0x14, regs.Get(SlotLR, mode))
	p.Bus.WriteU32(newSP+0x18, regs.PCStored())

	savedPSR := regs.PSR.Read()
	savedPSR = (savedPSR &^ (1 << psrAlignBit)) | (align << psrAlignBit)
	p.Bus.WriteU32(newSP+0x1C, savedPSR)

	regs.Set(SlotSP, func(uint32) uint32 { return newSP }, mode)

	var excReturn uint32
	switch {
	case p.Mode == ModeHandler:
		excReturn = ExcReturnHandlerMSP
	case !regs.Control.Spsel:
		excReturn = ExcReturnThreadMSP
	default:
		excReturn = ExcReturnThreadPSP
	}
	regs.Set(SlotLR, func(uint32) uint32 { return excReturn }, mode)
}

// exceptionEntry switches to Handler mode, banks onto MSP, loads the
// handler address out of the vector table and transfers control to it
// (spec §4.5).
func (p *Processor) exceptionEntry(e Exception) {
	p.Mode = ModeHandler
	p.Regs.Control.Spsel = false
	p.Regs.PSR.SetExceptionNumber(e.Number())
	p.NVIC.Enter(e)

	base := p.Regs.VTOR.BaseAddr()
	handler := p.Bus.ReadU32(base + 4*e.Number())

	if handler&1 != 0 {
		p.Regs.PSR.SetBit(psrThumbBit)
	} else {
		p.Regs.PSR.ClearBit(psrThumbBit)
	}
	p.Regs.SetPCStored(handler)
}

// exceptionReturn classifies an EXC_RETURN value written to PC (via BX
// or a POP that restores PC) and unwinds the matching stack frame
// (spec §4.5). An unrecognized low nibble raises UsageFault rather
// than corrupting processor state.
func (p *Processor) exceptionReturn(excReturn uint32) {
	var frame uint32
	var toMode Mode
	var toPSP bool

	switch excReturn & 0xF {
	case 0x1:
		toMode, toPSP = ModeHandler, false
		frame = p.Regs.MSP()
	case 0x9:
		toMode, toPSP = ModeThread, false
		frame = p.Regs.MSP()
	case 0xD:
		toMode, toPSP = ModeThread, true
		frame = p.Regs.PSP()
	default:
		log.Printf("[m4] malformed EXC_RETURN 0x%08X at PC=0x%08X", excReturn, p.Regs.PCStored())
		p.NVIC.Raise(ExcUsageFault)
		return
	}

	p.popStack(frame, toMode, toPSP)
	p.NVIC.Exit()
}

// popStack restores registers from the exception frame at frame and
// switches the processor into the returned-to mode/stack.
func (p *Processor) popStack(frame uint32, toMode Mode, toPSP bool) {
	r0 := p.Bus.ReadU32(frame + 0x00)
	r1 := p.Bus.ReadU32(frame + 0x04)
	r2 := p.Bus.ReadU32(frame + 0x08)
	r3 := p.Bus.ReadU32(frame + 0x0C)
	r12 := p.Bus.ReadU32(frame + 0x10)
	lr := p.Bus.ReadU32(frame + 0x14)
	pc := p.Bus.ReadU32(frame + 0x18)
	psrVal := p.Bus.ReadU32(frame + 0x1C)

	p.Mode = toMode
	p.Regs.Control.Spsel = toPSP

	regs := p.Regs
	regs.Set(0, func(uint32) uint32 { return r0 }, toMode)
	regs.Set(1, func(uint32) uint32 { return r1 }, toMode)
	regs.Set(2, func(uint32) uint32 { return r2 }, toMode)
	regs.Set(3, func(uint32) uint32 { return r3 }, toMode)
	regs.Set(12, func(uint32) uint32 { return r12 }, toMode)
	regs.Set(SlotLR, func(uint32) uint32 { return lr }, toMode)
	regs.SetPCStored(pc)
	regs.PSR.Write(psrVal)

	// Literal per spec §9 Design Notes: SP is restored with an OR against
	// the saved alignment bit, not an addition — see DESIGN.md.
	align := extractBits(psrVal, psrAlignBit, psrAlignBit+1)
	newSP := (frame + 0x20) | (align << 2)
	regs.Set(SlotSP, func(uint32) uint32 { return newSP }, toMode)
}
