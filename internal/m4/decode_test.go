// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for instruction decoding (spec §8 test 8's Thumb-1/Thumb-2
// classification, plus per-kind field extraction).

package m4

import "testing"

func TestIsThumb32Classification(t *testing.T) {
	tests := []struct {
		name string
		h    uint16
		want bool
	}{
		{"MOV imm is Thumb-1", 0x2042, false},
		{"BL first halfword is Thumb-2", 0xF000, true},
		{"top5=0b11110", 0b1111_0000_0000_0000, true},
		{"top5=0b11101", 0b1110_1000_0000_0000, true},
		{"top5=0b11111", 0b1111_1000_0000_0000, true},
		{"top5=0b11100 (plain B) is Thumb-1", 0b1110_0000_0000_0000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsThumb32(tt.h); got != tt.want {
				t.Errorf("IsThumb32(0x%04X) = %v, want %v", tt.h, got, tt.want)
			}
		})
	}
}

func TestDecodeThumb16MovImm(t *testing.T) {
	inst := DecodeThumb16(0x2042, 0)
	if inst.Kind != KindMovImm {
		t.Fatalf("Kind = %v, want KindMovImm", inst.Kind)
	}
	if inst.Rd != 0 || inst.Imm32 != 0x42 {
		t.Errorf("Rd=%d Imm32=0x%X, want Rd=0 Imm32=0x42", inst.Rd, inst.Imm32)
	}
}

func TestDecodeThumb16UndefinedSentinels(t *testing.T) {
	for _, h := range []uint16{0x0000, 0xFFFF} {
		inst := DecodeThumb16(h, 0)
		if inst.Kind != KindUndefined {
			t.Errorf("DecodeThumb16(0x%04X).Kind = %v, want KindUndefined", h, inst.Kind)
		}
	}
}

func TestDecodePushPop(t *testing.T) {
	push := DecodeThumb16(0xB500, 0) // PUSH {lr}
	if push.Kind != KindPush || push.RegList != 0 || !push.IncludeExtra {
		t.Errorf("PUSH {lr} decoded as %+v", push)
	}

	pop := DecodeThumb16(0xBD03, 0) // POP {r0, r1, pc}
	if pop.Kind != KindPop || pop.RegList != 0b11 || !pop.IncludeExtra {
		t.Errorf("POP {r0,r1,pc} decoded as %+v", pop)
	}
}

func TestDecodeBL(t *testing.T) {
	// A forward BL with a small positive displacement: S=0, imm10=0,
	// J1=1, J2=1, imm11=2 -> I1=I2=0, imm = 2 << 1 = 4.
	h1 := uint16(0xF000)
	h2 := uint16(0xF802)
	inst := DecodeThumb32(h1, h2, 0)
	if inst.Kind != KindBL {
		t.Fatalf("Kind = %v, want KindBL", inst.Kind)
	}
	if inst.SImm32 <= 0 {
		t.Errorf("expected a small positive forward displacement, got %d", inst.SImm32)
	}
}

func TestDecodeBCondReservedEncodings(t *testing.T) {
	// cond=0xF (1111) is reserved (SVC territory), not B<cond>.
	h := uint16(0xDF00)
	inst := DecodeThumb16(h, 0)
	if inst.Kind != KindUndefined {
		t.Errorf("cond=0xF should decode Undefined, got %v", inst.Kind)
	}
}
