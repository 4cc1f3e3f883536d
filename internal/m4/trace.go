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
	"fmt"
	"io"
)

// Tracer writes a line-per-step execution trace, wired to the CLI's
// -trace flag (SPEC_FULL.md §6). Grounded on the teacher's trace.go,
// generalized from its 8-register, flags-word model to this core's
// 16-slot register file and per-bit PSR.
type Tracer struct {
	out      io.Writer
	prevRegs [16]uint32
	prevPSR  uint32
	steps    uint64
}

// NewTracer returns a Tracer writing to out.
func NewTracer(out io.Writer) *Tracer {
	return &Tracer{out: out}
}

// Reset clears the step counter and baseline, called from
// Processor.Reset so traces restart cleanly across a reload.
func (t *Tracer) Reset(p *Processor) {
	t.steps = 0
	t.prevRegs = p.Regs.All(p.Mode)
	t.prevPSR = p.Regs.PSR.Read()
}

// BeforeStep prints the registers and PSR that changed since the previous
// call (the effect of the previous instruction), then the about-to-execute
// instruction (the teacher's Pre/Post split collapsed into one call since
// Step() doesn't expose a mid-instruction hook).
func (t *Tracer) BeforeStep(p *Processor, inst Instruction) {
	regs := p.Regs.All(p.Mode)
	psr := p.Regs.PSR.Read()

	changed := regs != t.prevRegs || psr != t.prevPSR
	if changed {
		fmt.Fprintf(t.out, "STEP %d: ", t.steps)
		for i := 0; i < 16; i++ {
			if regs[i] != t.prevRegs[i] {
				fmt.Fprintf(t.out, "r%d<-0x%08X ", i, regs[i])
			}
		}
		if psr != t.prevPSR {
			fmt.Fprintf(t.out, "psr<-0x%08X ", psr)
		}
		fmt.Fprintf(t.out, "\n")
	}

	fmt.Fprintf(t.out, "  0x%08X [%s]: %s\n", inst.Addr, p.Mode, Disassemble(inst))

	t.prevRegs = regs
	t.prevPSR = psr
	t.steps++
}
