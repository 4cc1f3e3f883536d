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

// IsThumb32 classifies the first halfword of an instruction: bits [11..16)
// in {0b11101, 0b11110, 0b11111} mean a 32-bit Thumb-2 encoding follows;
// anything else is a complete 16-bit Thumb-1 instruction (spec §4.4 step 1,
// testable property §8.8).
func IsThumb32(h uint16) bool {
	top5 := extractBits(uint32(h), 11, 16)
	return top5 == 0b11101 || top5 == 0b11110 || top5 == 0b11111
}

// thumb16Entry is one row of the table-driven 16-bit decoder: mask/pattern
// over the halfword, and the decode function invoked on a match. Tried in
// order, first match wins — the idiomatic table-driven generalization of
// the teacher's chained `if (inst >> n) == k` tests (spec §9 Design Notes
// explicitly sanctions this).
type thumb16Entry struct {
	mask    uint16
	pattern uint16
	decode  func(h uint16, addr uint32) Instruction
}

var thumb16Table = []thumb16Entry{
	// MOV immediate: 00100 ddd iiiiiiii
	{0xF800, 0x2000, decodeMovImm},
	// CMP immediate: 00101 nnn iiiiiiii
	{0xF800, 0x2800, decodeCmpImm},
	// ADD register / SUB register: 0001100 mmm nnn ddd / 0001101 mmm nnn ddd
	{0xFE00, 0x1800, decodeAddReg},
	{0xFE00, 0x1A00, decodeSubReg},
	// MOV register (hi-register move): 01000110 D mmmm ddd
	{0xFF00, 0x4600, decodeMovReg},
	// CMP register (low registers): 0100001010 mmm nnn
	{0xFFC0, 0x4280, decodeCmpReg},
	// BX Rm: 010001110 mmmm 000
	{0xFF87, 0x4700, decodeBX},
	// BLX Rm: 010001111 mmmm 000
	{0xFF87, 0x4780, decodeBLX},
	// B unconditional: 11100 iiiiiiiiiii
	{0xF800, 0xE000, decodeBUncond},
	// B<cond>: 1101 cccc iiiiiiii (cond 1110/1111 excluded below)
	{0xF000, 0xD000, decodeBCond},
	// LDR literal: 01001 ttt iiiiiiii
	{0xF800, 0x4800, decodeLdrLiteral},
	// LDR register: 0101100 mmm nnn ttt
	{0xFE00, 0x5800, decodeLdrReg},
	// STR immediate: 01100 iiiii nnn ttt
	{0xF800, 0x6000, decodeStrImm},
	// LDR immediate: 01101 iiiii nnn ttt
	{0xF800, 0x6800, decodeLdrImm},
	// PUSH: 1011010 R rrrrrrrr
	{0xFE00, 0xB400, decodePush},
	// POP: 1011110 R rrrrrrrr
	{0xFE00, 0xBC00, decodePop},
}

// DecodeThumb16 decodes a complete 16-bit Thumb instruction.
func DecodeThumb16(h uint16, addr uint32) Instruction {
	if h == 0x0000 || h == 0xFFFF {
		return Instruction{Kind: KindUndefined, Addr: addr, Size: 2, Raw16: h}
	}
	for _, e := range thumb16Table {
		if h&e.mask == e.pattern {
			inst := e.decode(h, addr)
			inst.Raw16 = h
			return inst
		}
	}
	return Instruction{Kind: KindUndefined, Addr: addr, Size: 2, Raw16: h}
}

// DecodeThumb32 decodes a 32-bit Thumb-2 instruction from its two
// halfwords. Only BL is supported (spec §4.4: "Thumb-2 decoding is
// stubbed to Undefined"; SPEC_FULL.md §4.4 carves out BL since it's the
// one 32-bit instruction every non-leaf Cortex-M function call needs).
func DecodeThumb32(h1, h2 uint16, addr uint32) Instruction {
	raw32 := uint32(h1)<<16 | uint32(h2)
	if isBLEncoding(h1, h2) {
		return decodeBL(h1, h2, addr, raw32)
	}
	return Instruction{Kind: KindUndefined, Addr: addr, Size: 4, Raw32: raw32}
}

func isBLEncoding(h1, h2 uint16) bool {
	top5 := extractBits(uint32(h1), 11, 16)
	if top5 != 0b11110 {
		return false
	}
	h2top2 := extractBits(uint32(h2), 14, 16)
	bit12 := extractBits(uint32(h2), 12, 13)
	return h2top2 == 0b11 && bit12 == 1
}

func decodeMovImm(h uint16, addr uint32) Instruction {
	rd := uint8(extractBits(uint32(h), 8, 11))
	imm8 := extractBits(uint32(h), 0, 8)
	return Instruction{Kind: KindMovImm, Addr: addr, Size: 2, Rd: rd, Imm32: zeroExtend32(imm8, 8)}
}

func decodeCmpImm(h uint16, addr uint32) Instruction {
	rn := uint8(extractBits(uint32(h), 8, 11))
	imm8 := extractBits(uint32(h), 0, 8)
	return Instruction{Kind: KindCmpImm, Addr: addr, Size: 2, Rn: rn, Imm32: zeroExtend32(imm8, 8)}
}

func decodeAddReg(h uint16, addr uint32) Instruction {
	rm := uint8(extractBits(uint32(h), 6, 9))
	rn := uint8(extractBits(uint32(h), 3, 6))
	rd := uint8(extractBits(uint32(h), 0, 3))
	return Instruction{Kind: KindAddReg, Addr: addr, Size: 2, Rd: rd, Rn: rn, Rm: rm}
}

func decodeSubReg(h uint16, addr uint32) Instruction {
	rm := uint8(extractBits(uint32(h), 6, 9))
	rn := uint8(extractBits(uint32(h), 3, 6))
	rd := uint8(extractBits(uint32(h), 0, 3))
	return Instruction{Kind: KindSubReg, Addr: addr, Size: 2, Rd: rd, Rn: rn, Rm: rm}
}

func decodeMovReg(h uint16, addr uint32) Instruction {
	d := extractBits(uint32(h), 7, 8)
	rm := uint8(extractBits(uint32(h), 3, 7))
	rd := uint8(extractBits(uint32(h), 0, 3)) | uint8(d<<3)
	return Instruction{Kind: KindMovReg, Addr: addr, Size: 2, Rd: rd, Rm: rm}
}

func decodeCmpReg(h uint16, addr uint32) Instruction {
	rm := uint8(extractBits(uint32(h), 3, 6))
	rn := uint8(extractBits(uint32(h), 0, 3))
	return Instruction{Kind: KindCmpReg, Addr: addr, Size: 2, Rn: rn, Rm: rm}
}

func decodeBX(h uint16, addr uint32) Instruction {
	rm := uint8(extractBits(uint32(h), 3, 7))
	return Instruction{Kind: KindBX, Addr: addr, Size: 2, Rm: rm}
}

func decodeBLX(h uint16, addr uint32) Instruction {
	rm := uint8(extractBits(uint32(h), 3, 7))
	return Instruction{Kind: KindBLX, Addr: addr, Size: 2, Rm: rm}
}

func decodeBUncond(h uint16, addr uint32) Instruction {
	imm11 := extractBits(uint32(h), 0, 11)
	s := signExtend32(imm11, 11)
	return Instruction{Kind: KindBUncond, Addr: addr, Size: 2, SImm32: s}
}

func decodeBCond(h uint16, addr uint32) Instruction {
	cond := uint8(extractBits(uint32(h), 8, 12))
	imm8 := extractBits(uint32(h), 0, 8)
	s := signExtend32(imm8, 8)
	if cond >= 0xE {
		// 0b1110/0b1111 are reserved (UDF/SVC territory), not a
		// conditional branch.
		return Instruction{Kind: KindUndefined, Addr: addr, Size: 2}
	}
	return Instruction{Kind: KindBCond, Addr: addr, Size: 2, Cond: cond, SImm32: s}
}

func decodeLdrLiteral(h uint16, addr uint32) Instruction {
	rt := uint8(extractBits(uint32(h), 8, 11))
	imm8 := extractBits(uint32(h), 0, 8)
	return Instruction{Kind: KindLdrLiteral, Addr: addr, Size: 2, Rt: rt, Imm32: imm8 << 2}
}

func decodeLdrReg(h uint16, addr uint32) Instruction {
	rm := uint8(extractBits(uint32(h), 6, 9))
	rn := uint8(extractBits(uint32(h), 3, 6))
	rt := uint8(extractBits(uint32(h), 0, 3))
	return Instruction{Kind: KindLdrReg, Addr: addr, Size: 2, Rt: rt, Rn: rn, Rm: rm}
}

func decodeLdrImm(h uint16, addr uint32) Instruction {
	imm5 := extractBits(uint32(h), 6, 11)
	rn := uint8(extractBits(uint32(h), 3, 6))
	rt := uint8(extractBits(uint32(h), 0, 3))
	return Instruction{Kind: KindLdrImm, Addr: addr, Size: 2, Rt: rt, Rn: rn, Imm32: imm5 << 2}
}

func decodeStrImm(h uint16, addr uint32) Instruction {
	imm5 := extractBits(uint32(h), 6, 11)
	rn := uint8(extractBits(uint32(h), 3, 6))
	rt := uint8(extractBits(uint32(h), 0, 3))
	return Instruction{Kind: KindStrImm, Addr: addr, Size: 2, Rt: rt, Rn: rn, Imm32: imm5 << 2}
}

func decodePush(h uint16, addr uint32) Instruction {
	r := extractBits(uint32(h), 8, 9)
	list := uint8(extractBits(uint32(h), 0, 8))
	return Instruction{Kind: KindPush, Addr: addr, Size: 2, RegList: list, IncludeExtra: r == 1}
}

func decodePop(h uint16, addr uint32) Instruction {
	r := extractBits(uint32(h), 8, 9)
	list := uint8(extractBits(uint32(h), 0, 8))
	return Instruction{Kind: KindPop, Addr: addr, Size: 2, RegList: list, IncludeExtra: r == 1}
}

func decodeBL(h1, h2 uint16, addr uint32, raw32 uint32) Instruction {
	s := extractBits(uint32(h1), 10, 11)
	imm10 := extractBits(uint32(h1), 0, 10)
	j1 := extractBits(uint32(h2), 13, 14)
	j2 := extractBits(uint32(h2), 11, 12)
	imm11 := extractBits(uint32(h2), 0, 11)
	i1 := (^(j1 ^ s)) & 1
	i2 := (^(j2 ^ s)) & 1
	imm := (s << 24) | (i1 << 23) | (i2 << 22) | (imm10 << 12) | (imm11 << 1)
	return Instruction{Kind: KindBL, Addr: addr, Size: 4, SImm32: signExtend32(imm, 25), Raw32: raw32}
}
