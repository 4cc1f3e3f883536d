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

import "fmt"

var condNames = []string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le",
}

// Disassemble renders a decoded instruction as a human-readable mnemonic
// string, which the TUI's disassembly pane prints after each address,
// grounded on the teacher's disasm.go.
func Disassemble(inst Instruction) string {
	switch inst.Kind {
	case KindMovImm:
		return fmt.Sprintf("movs r%d, #%d", inst.Rd, inst.Imm32)
	case KindMovReg:
		return fmt.Sprintf("mov r%d, r%d", inst.Rd, inst.Rm)
	case KindAddReg:
		return fmt.Sprintf("adds r%d, r%d, r%d", inst.Rd, inst.Rn, inst.Rm)
	case KindSubReg:
		return fmt.Sprintf("subs r%d, r%d, r%d", inst.Rd, inst.Rn, inst.Rm)
	case KindCmpImm:
		return fmt.Sprintf("cmp r%d, #%d", inst.Rn, inst.Imm32)
	case KindCmpReg:
		return fmt.Sprintf("cmp r%d, r%d", inst.Rn, inst.Rm)
	case KindBX:
		return fmt.Sprintf("bx r%d", inst.Rm)
	case KindBLX:
		return fmt.Sprintf("blx r%d", inst.Rm)
	case KindBUncond:
		return fmt.Sprintf("b 0x%X", uint32(int32(inst.Addr)+4+inst.SImm32))
	case KindBCond:
		name := "??"
		if int(inst.Cond) < len(condNames) {
			name = condNames[inst.Cond]
		}
		return fmt.Sprintf("b%s 0x%X", name, uint32(int32(inst.Addr)+4+inst.SImm32))
	case KindLdrLiteral:
		return fmt.Sprintf("ldr r%d, [pc, #%d]", inst.Rt, inst.Imm32)
	case KindLdrReg:
		return fmt.Sprintf("ldr r%d, [r%d, r%d]", inst.Rt, inst.Rn, inst.Rm)
	case KindLdrImm:
		return fmt.Sprintf("ldr r%d, [r%d, #%d]", inst.Rt, inst.Rn, inst.Imm32)
	case KindStrImm:
		return fmt.Sprintf("str r%d, [r%d, #%d]", inst.Rt, inst.Rn, inst.Imm32)
	case KindPush:
		return fmt.Sprintf("push {%s}", regListString(inst.RegList, inst.IncludeExtra, "lr"))
	case KindPop:
		return fmt.Sprintf("pop {%s}", regListString(inst.RegList, inst.IncludeExtra, "pc"))
	case KindBL:
		return "bl <imm>"
	default:
		return fmt.Sprintf("undefined (0x%04X)", inst.Raw16)
	}
}

func regListString(list uint8, extra bool, extraName string) string {
	s := ""
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			if s != "" {
				s += ", "
			}
			s += fmt.Sprintf("r%d", i)
		}
	}
	if extra {
		if s != "" {
			s += ", "
		}
		s += extraName
	}
	return s
}
