// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the bit primitives.

package m4

import "testing"

func TestExtractBits(t *testing.T) {
	tests := []struct {
		name     string
		v        uint32
		lo, hi   uint
		expected uint32
	}{
		{"low byte", 0xABCD, 0, 8, 0xCD},
		{"high byte", 0xABCD, 8, 16, 0xAB},
		{"single bit set", 0x8000_0000, 31, 32, 1},
		{"single bit clear", 0x7FFF_FFFF, 31, 32, 0},
		{"mid-range", 0b1111_0000, 4, 8, 0xF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBits(tt.v, tt.lo, tt.hi)
			if got != tt.expected {
				t.Errorf("extractBits(0x%X, %d, %d) = 0x%X, want 0x%X", tt.v, tt.lo, tt.hi, got, tt.expected)
			}
		})
	}
}

func TestSignExtend32(t *testing.T) {
	tests := []struct {
		name     string
		v        uint32
		topBit   uint
		expected int32
	}{
		{"positive 8-bit", 0x7F, 8, 127},
		{"negative 8-bit", 0xFF, 8, -1},
		{"negative 11-bit branch offset", 0x400, 11, -1024},
		{"positive 11-bit branch offset", 0x3FF, 11, 1023},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := signExtend32(tt.v, tt.topBit)
			if got != tt.expected {
				t.Errorf("signExtend32(0x%X, %d) = %d, want %d", tt.v, tt.topBit, got, tt.expected)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	v := uint32(0xDEADBEEF)
	if got := decode32(encode32(v)); got != v {
		t.Errorf("decode32(encode32(0x%X)) = 0x%X", v, got)
	}
	h := uint16(0xBEEF)
	if got := decode16(encode16(h)); got != h {
		t.Errorf("decode16(encode16(0x%X)) = 0x%X", h, got)
	}
}
