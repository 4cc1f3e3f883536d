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

import (
	"debug/elf"
	"fmt"
	"io"
)

// LoadELF loads every allocatable PROGBITS section (Text, carrying
// SHF_EXECINSTR, and Data, everything else with SHF_ALLOC) into flash
// at its recorded address (SPEC_FULL.md §4.6's ELF supplement). Unlike
// HEX, an ELF file's own entry point is almost always used directly:
// it falls back to the reset vector at VTOR_base+4 only when the
// header's entry point is zero, since a linker that never set one
// leaves firmware with nothing else to start from.
func (p *Processor) LoadELF(r io.ReaderAt) error {
	f, err := elf.NewFile(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	for _, sec := range f.Sections {
		if sec.Type != elf.SHT_PROGBITS || sec.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		data, err := sec.Data()
		if err != nil {
			return fmt.Errorf("%w: section %s: %v", ErrParse, sec.Name, err)
		}
		if len(data) == 0 {
			continue
		}
		if err := p.Bus.WriteFlash(uint32(sec.Addr), data); err != nil {
			return fmt.Errorf("%w: section %s: %v", ErrParse, sec.Name, err)
		}
	}

	entry := uint32(f.Entry)
	if entry == 0 {
		base := p.Regs.VTOR.BaseAddr()
		entry = p.Bus.ReadU32(base + 4)
	}
	p.Regs.SetPCStored(entry)
	return nil
}
