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

// Bus routes typed reads and writes to whichever Region owns an address,
// or to the register file for the handful of system-control registers it
// hosts directly. An access that lands nowhere synthesizes a BusFault on
// the attached NVIC rather than panicking — spec §4.2's "bus operations
// never panic on valid access; unmapped access is recoverable through
// exception machinery."
type Bus struct {
	flash *Region
	sram  *Region
	regs  *RegisterFile
	nvic  *NVIC
}

// NewBus wires a Bus to its backing regions, the register file (for
// system-control register dispatch) and the NVIC (for fault reporting).
func NewBus(flash, sram *Region, regs *RegisterFile, nvic *NVIC) *Bus {
	return &Bus{flash: flash, sram: sram, regs: regs, nvic: nvic}
}

func (b *Bus) regionFor(addr uint32, size uint32) *Region {
	if b.flash.contains(addr, size) {
		return b.flash
	}
	if b.sram.contains(addr, size) {
		return b.sram
	}
	return nil
}

func (b *Bus) fault() {
	b.nvic.Raise(ExcBusFault)
}

// ReadU8 reads a byte from addr. An unmapped address raises BusFault and
// returns 0.
func (b *Bus) ReadU8(addr uint32) uint8 {
	if addr == VTORAddr {
		return uint8(b.regs.VTOR.Read())
	}
	if r := b.regionFor(addr, 1); r != nil {
		return r.read8(addr)
	}
	b.fault()
	return 0
}

// ReadU16 reads a little-endian halfword from addr.
func (b *Bus) ReadU16(addr uint32) uint16 {
	if addr == VTORAddr {
		return uint16(b.regs.VTOR.Read())
	}
	if r := b.regionFor(addr, 2); r != nil {
		return r.read16(addr)
	}
	b.fault()
	return 0
}

// ReadU32 reads a little-endian word from addr.
func (b *Bus) ReadU32(addr uint32) uint32 {
	if addr == VTORAddr {
		return b.regs.VTOR.Read()
	}
	if r := b.regionFor(addr, 4); r != nil {
		return r.read32(addr)
	}
	b.fault()
	return 0
}

// WriteU8 writes a byte to addr, raising BusFault and discarding the
// value on an unmapped address.
func (b *Bus) WriteU8(addr uint32, v uint8) {
	if addr == VTORAddr {
		b.regs.VTOR.Write(uint32(v))
		return
	}
	if r := b.regionFor(addr, 1); r != nil {
		r.write8(addr, v)
		return
	}
	b.fault()
}

// WriteU16 writes a little-endian halfword to addr.
func (b *Bus) WriteU16(addr uint32, v uint16) {
	if addr == VTORAddr {
		b.regs.VTOR.Write(uint32(v))
		return
	}
	if r := b.regionFor(addr, 2); r != nil {
		r.write16(addr, v)
		return
	}
	b.fault()
}

// WriteU32 writes a little-endian word to addr.
func (b *Bus) WriteU32(addr uint32, v uint32) {
	if addr == VTORAddr {
		b.regs.VTOR.Write(v)
		return
	}
	if r := b.regionFor(addr, 4); r != nil {
		r.write32(addr, v)
		return
	}
	b.fault()
}

// WriteFlash writes raw bytes into flash unconditionally, bypassing the
// fault path — used only by the image loader, which owns flash during
// load (spec §3: "writable only during loading").
func (b *Bus) WriteFlash(addr uint32, data []byte) error {
	return b.flash.writeBytes(addr, data)
}
