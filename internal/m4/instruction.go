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

// Kind tags the variant of a decoded instruction (spec §3's "tagged
// variant"). The minimum Thumb-1 set from spec §4.4 plus the supplements
// recorded in SPEC_FULL.md §4.4, plus the one Thumb-2 carve-out (BL).
type Kind int

const (
	KindUndefined Kind = iota
	KindMovImm
	KindMovReg
	KindAddReg
	KindSubReg
	KindCmpImm
	KindCmpReg
	KindBX
	KindBLX
	KindBUncond
	KindBCond
	KindLdrLiteral
	KindLdrReg
	KindLdrImm
	KindStrImm
	KindPush
	KindPop
	KindBL
)

// Instruction is a decoded instruction: its kind, its address, its size
// in bytes (2 or 4), and whichever operand fields its kind uses.
type Instruction struct {
	Kind Kind
	Addr uint32
	Size uint16

	Rd, Rn, Rm, Rt uint8
	Imm32          uint32
	SImm32         int32
	RegList        uint8 // r0..r7 bitmap for PUSH/POP
	IncludeExtra   bool  // PUSH's LR bit / POP's PC bit
	Cond           uint8

	Raw16 uint16 // first halfword, kept for disassembly/tracing
	Raw32 uint32 // both halfwords packed, for Thumb-2 instructions
}
