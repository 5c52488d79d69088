package z80

import "testing"

func TestDisassemble(t *testing.T) {
	testCases := []struct {
		name   string
		bytes  []byte
		text   string
		length int
	}{
		{"nop", []byte{0x00}, "NOP", 1},
		{"ld a imm", []byte{0x3E, 0x42}, "LD A,$42", 2},
		{"ld hl imm16", []byte{0x21, 0x34, 0x12}, "LD HL,$1234", 3},
		{"jp", []byte{0xC3, 0x00, 0x80}, "JP $8000", 3},
		{"jr negative", []byte{0x18, 0xFE}, "JR -2", 2},
		{"cb bit", []byte{0xCB, 0x7E}, "BIT 7,(HL)", 2},
		{"ed ldir", []byte{0xED, 0xB0}, "LDIR", 2},
		{"dd load disp", []byte{0xDD, 0x7E, 0x05}, "LD A,(IX+5)", 3},
		{"fd store disp neg", []byte{0xFD, 0x77, 0xFB}, "LD (IY-5),A", 3},
		{"ddcb set", []byte{0xDD, 0xCB, 0x03, 0xC6}, "SET 0,(IX+3)", 4},
		{"out", []byte{0xD3, 0x7F}, "OUT ($7F),A", 2},
		{"ed undefined", []byte{0xED, 0x00}, "NONI", 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mem := make([]byte, 16)
			copy(mem, tc.bytes)
			read := func(addr uint16) uint8 { return mem[addr&0x0F] }

			text, length := Disassemble(read, 0)
			if text != tc.text {
				t.Errorf("text: expected %q, got %q", tc.text, text)
			}
			if length != tc.length {
				t.Errorf("length: expected %d, got %d", tc.length, length)
			}
		})
	}
}
