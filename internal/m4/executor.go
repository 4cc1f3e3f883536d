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

// Step fetches, decodes and executes one instruction, then drains at
// most one pending exception (spec §4.5's step() sequence). It never
// panics: an Undefined decode raises UsageFault rather than crashing
// the host, per spec §7's note that implementers should prefer that
// over a hard stop.
func (p *Processor) Step() {
	pcStored := p.Regs.PCStored()
	h1 := p.Bus.ReadU16(pcStored)

	var inst Instruction
	if IsThumb32(h1) {
		h2 := p.Bus.ReadU16(pcStored + 2)
		inst = DecodeThumb32(h1, h2, pcStored)
	} else {
		inst = DecodeThumb16(h1, pcStored)
	}

	if p.Tracer != nil {
		p.Tracer.BeforeStep(p, inst)
	}

	wrotePC := p.execute(inst)
	if !wrotePC {
		p.Regs.SetPCStored(pcStored + uint32(inst.Size))
	}

	p.handleException()
}

// execute runs the semantics for one decoded instruction and reports
// whether it wrote PC itself (branches, BX, BL, POP{..,pc}), in which
// case Step must not also advance it.
func (p *Processor) execute(inst Instruction) (wrotePC bool) {
	regs, mode := p.Regs, p.Mode

	switch inst.Kind {
	case KindMovImm:
		regs.Set(int(inst.Rd), func(uint32) uint32 { return inst.Imm32 }, mode)

	case KindMovReg:
		v := regs.Get(int(inst.Rm), mode)
		regs.Set(int(inst.Rd), func(uint32) uint32 { return v }, mode)
		wrotePC = int(inst.Rd) == SlotPC

	case KindAddReg:
		rn, rm := regs.Get(int(inst.Rn), mode), regs.Get(int(inst.Rm), mode)
		regs.Set(int(inst.Rd), func(uint32) uint32 { return rn + rm }, mode)

	case KindSubReg:
		rn, rm := regs.Get(int(inst.Rn), mode), regs.Get(int(inst.Rm), mode)
		regs.Set(int(inst.Rd), func(uint32) uint32 { return rn - rm }, mode)

	case KindCmpImm:
		p.updateFlagsSub(regs.Get(int(inst.Rn), mode), inst.Imm32)

	case KindCmpReg:
		p.updateFlagsSub(regs.Get(int(inst.Rn), mode), regs.Get(int(inst.Rm), mode))

	case KindBX:
		target := regs.Get(int(inst.Rm), mode)
		if target&0xF000_0000 == 0xF000_0000 {
			p.exceptionReturn(target)
		} else {
			regs.Set(SlotPC, func(uint32) uint32 { return target }, mode)
		}
		wrotePC = true

	case KindBLX:
		target := regs.Get(int(inst.Rm), mode)
		ret := (regs.Get(SlotPC, mode) - 2) | 1
		regs.Set(SlotLR, func(uint32) uint32 { return ret }, mode)
		regs.Set(SlotPC, func(uint32) uint32 { return target }, mode)
		wrotePC = true

	case KindBUncond:
		pcVal := regs.Get(SlotPC, mode)
		target := uint32(int32(pcVal) + inst.SImm32)
		regs.Set(SlotPC, func(uint32) uint32 { return target }, mode)
		wrotePC = true

	case KindBCond:
		if p.evalCond(inst.Cond) {
			pcVal := regs.Get(SlotPC, mode)
			target := uint32(int32(pcVal) + inst.SImm32)
			regs.Set(SlotPC, func(uint32) uint32 { return target }, mode)
			wrotePC = true
		}

	case KindLdrLiteral:
		base := regs.Get(SlotPC, mode) &^ 3
		v := p.Bus.ReadU32(base + inst.Imm32)
		regs.Set(int(inst.Rt), func(uint32) uint32 { return v }, mode)

	case KindLdrReg:
		addr := regs.Get(int(inst.Rn), mode) + regs.Get(int(inst.Rm), mode)
		v := p.Bus.ReadU32(addr)
		regs.Set(int(inst.Rt), func(uint32) uint32 { return v }, mode)

	case KindLdrImm:
		addr := regs.Get(int(inst.Rn), mode) + inst.Imm32
		v := p.Bus.ReadU32(addr)
		regs.Set(int(inst.Rt), func(uint32) uint32 { return v }, mode)

	case KindStrImm:
		addr := regs.Get(int(inst.Rn), mode) + inst.Imm32
		p.Bus.WriteU32(addr, regs.Get(int(inst.Rt), mode))

	case KindPush:
		p.executePush(inst)

	case KindPop:
		wrotePC = p.executePop(inst)

	case KindBL:
		ret := (inst.Addr + uint32(inst.Size)) | 1
		target := uint32(int32(regs.Get(SlotPC, mode)) + inst.SImm32)
		regs.Set(SlotLR, func(uint32) uint32 { return ret }, mode)
		regs.Set(SlotPC, func(uint32) uint32 { return target }, mode)
		wrotePC = true

	case KindUndefined:
		p.NVIC.Raise(ExcUsageFault)
	}

	return wrotePC
}

// executePush implements STMDB SP!, {reglist[, LR]}: registers are
// written low-to-high starting at the decremented SP, lowest-numbered
// register at the lowest address, with LR (if included) last.
func (p *Processor) executePush(inst Instruction) {
	regs, mode := p.Regs, p.Mode
	count := popcount8(inst.RegList)
	if inst.IncludeExtra {
		count++
	}
	sp := regs.Get(SlotSP, mode)
	newSP := sp - uint32(count)*4

	addr := newSP
	for i := 0; i < 8; i++ {
		if inst.RegList&(1<<uint(i)) != 0 {
			p.Bus.WriteU32(addr, regs.Get(i, mode))
			addr += 4
		}
	}
	if inst.IncludeExtra {
		p.Bus.WriteU32(addr, regs.Get(SlotLR, mode))
	}
	regs.Set(SlotSP, func(uint32) uint32 { return newSP }, mode)
}

// executePop implements LDM SP!, {reglist[, PC]}, reporting whether it
// wrote PC.
func (p *Processor) executePop(inst Instruction) (wrotePC bool) {
	regs, mode := p.Regs, p.Mode
	addr := regs.Get(SlotSP, mode)

	for i := 0; i < 8; i++ {
		if inst.RegList&(1<<uint(i)) != 0 {
			v := p.Bus.ReadU32(addr)
			regs.Set(i, func(uint32) uint32 { return v }, mode)
			addr += 4
		}
	}
	if inst.IncludeExtra {
		v := p.Bus.ReadU32(addr)
		addr += 4
		if v&0xF000_0000 == 0xF000_0000 {
			regs.Set(SlotSP, func(uint32) uint32 { return addr }, mode)
			p.exceptionReturn(v)
			return true
		}
		regs.Set(SlotPC, func(uint32) uint32 { return v }, mode)
		wrotePC = true
	}
	regs.Set(SlotSP, func(uint32) uint32 { return addr }, mode)
	return wrotePC
}

func popcount8(v uint8) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

// updateFlagsSub sets N/Z/C/V as a CMP (a-b, result discarded) would.
func (p *Processor) updateFlagsSub(a, b uint32) {
	result := a - b
	z := result == 0
	n := result&0x8000_0000 != 0
	c := a >= b
	v := ((a^b)&(a^result))&0x8000_0000 != 0

	setFlag(&p.Regs.PSR, psrZBit, z)
	setFlag(&p.Regs.PSR, psrNBit, n)
	setFlag(&p.Regs.PSR, psrCBit, c)
	setFlag(&p.Regs.PSR, psrVBit, v)
}

func setFlag(psr *PSR, bit uint, v bool) {
	if v {
		psr.SetBit(bit)
	} else {
		psr.ClearBit(bit)
	}
}

// evalCond evaluates one of the 14 usable Thumb-1 condition codes
// against the current flags.
func (p *Processor) evalCond(cond uint8) bool {
	n := p.Regs.PSR.GetBit(psrNBit)
	z := p.Regs.PSR.GetBit(psrZBit)
	c := p.Regs.PSR.GetBit(psrCBit)
	v := p.Regs.PSR.GetBit(psrVBit)

	switch cond {
	case 0x0: // EQ
		return z
	case 0x1: // NE
		return !z
	case 0x2: // CS/HS
		return c
	case 0x3: // CC/LO
		return !c
	case 0x4: // MI
		return n
	case 0x5: // PL
		return !n
	case 0x6: // VS
		return v
	case 0x7: // VC
		return !v
	case 0x8: // HI
		return c && !z
	case 0x9: // LS
		return !c || z
	case 0xA: // GE
		return n == v
	case 0xB: // LT
		return n != v
	case 0xC: // GT
		return !z && n == v
	case 0xD: // LE
		return z || n != v
	default:
		return false
	}
}
