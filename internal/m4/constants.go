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

// Fixed address map (spec §3). Flash backs code/rodata, SRAM is general
// read/write memory, and VTOR is the one system-control register the core
// models; everything else faults.
const (
	FlashBase uint32 = 0x0000_0000
	FlashSize int    = 0x0001_0004

	SRAMBase uint32 = 0x2000_0000
	SRAMSize int    = 0x0000_4000

	VTORAddr uint32 = 0xE000_ED08
)

// Register slot numbers with architectural meaning beyond "general
// purpose".
const (
	SlotSP = 13
	SlotLR = 14
	SlotPC = 15
)

// EXC_RETURN encodings (spec §4.5).
const (
	ExcReturnHandlerMSP uint32 = 0xFFFF_FFF1
	ExcReturnThreadMSP  uint32 = 0xFFFF_FFF9
	ExcReturnThreadPSP  uint32 = 0xFFFF_FFFD
)

// PSR bit positions (spec §3).
const (
	psrThumbBit = 24
	psrAlignBit = 9
	psrExcNumLo = 0
	psrExcNumHi = 9
)

// APSR condition flag bit positions. The minimum instruction set in
// spec §4.4 leaves flag updates out of scope; SPEC_FULL.md §4.4 adds
// CMP and B<cond> and needs somewhere to keep N/Z/C/V, so these follow
// the real ARMv7-M APSR layout rather than inventing a new one.
const (
	psrNBit = 31
	psrZBit = 30
	psrCBit = 29
	psrVBit = 28
)
