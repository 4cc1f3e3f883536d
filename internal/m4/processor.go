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

// Processor ties the register file, bus and NVIC together into the
// stepping engine (spec §4.5's "Processor", DESIGN.md's Processor
// aggregate). It's the one type cmd/cortexm4 drives directly.
type Processor struct {
	Flash *Region
	SRAM  *Region
	Regs  *RegisterFile
	NVIC  *NVIC
	Bus   *Bus
	Mode  Mode

	Tracer *Tracer
}

// NewProcessor builds a Processor with the fixed address map wired up
// and everything at its power-on value.
func NewProcessor() *Processor {
	flash := NewRegion(FlashBase, FlashSize)
	sram := NewRegion(SRAMBase, SRAMSize)
	regs := NewRegisterFile()
	nvic := NewNVIC()
	bus := NewBus(flash, sram, regs, nvic)
	return &Processor{
		Flash: flash,
		SRAM:  sram,
		Regs:  regs,
		NVIC:  nvic,
		Bus:   bus,
		Mode:  ModeThread,
	}
}

// Reset reinitializes the register file and primes MSP/PC from the
// vector table at VTOR_base (spec §4.6).
func (p *Processor) Reset() {
	p.Regs.Reset()
	p.Mode = ModeThread

	base := p.Regs.VTOR.BaseAddr()
	msp := p.Bus.ReadU32(base) &^ 3
	p.Regs.SetMSP(msp)
	p.Regs.SetPSP(0)
	p.Regs.SetPCStored(p.Bus.ReadU32(base + 4))

	if p.Tracer != nil {
		p.Tracer.Reset(p)
	}
}

// Snapshot captures an independent copy of externally observable state,
// for the TUI and for tests that assert on processor state without
// holding a reference into live storage (spec §5, §9).
type Snapshot struct {
	Mode    Mode
	Regs    [16]uint32
	PSR     uint32
	Control Control
	VTOR    uint32
	Pending []Exception
	Flash   *Region
	SRAM    *Region
}

// Snapshot returns a deep copy of the processor's observable state.
func (p *Processor) Snapshot() Snapshot {
	return Snapshot{
		Mode:    p.Mode,
		Regs:    p.Regs.All(p.Mode),
		PSR:     p.Regs.PSR.Read(),
		Control: p.Regs.Control,
		VTOR:    p.Regs.VTOR.Read(),
		Pending: p.NVIC.snapshot(),
		Flash:   p.Flash.snapshot(),
		SRAM:    p.SRAM.snapshot(),
	}
}
