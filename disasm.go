package z80

import (
	"fmt"
	"strings"
)

// Disassemble decodes the instruction at addr through the supplied read
// function and returns its text and byte length. It never fails: undefined
// encodings come back as their defined-cost no-op forms.
func Disassemble(read func(uint16) uint8, addr uint16) (string, int) {
	text, in := disassembleAt(read, addr)
	return text, int(in.length)
}

// disassembleAt resolves the instruction at addr and formats its mnemonic
// with operand values substituted for the nn/n/d placeholders.
func disassembleAt(read func(uint16) uint8, addr uint16) (string, *instruction) {
	var (
		in     *instruction
		hdrLen uint16 // bytes before trailing operands
		disp   int8   // DDCB/FDCB displacement, consumed inside the header
		hasDD  bool
	)

	op := read(addr)
	switch op {
	case 0xCB:
		in = &cbTable[read(addr+1)]
		hdrLen = 2
	case 0xED:
		in = &edTable[read(addr+1)]
		hdrLen = 2
	case 0xDD, 0xFD:
		tbl, bitTbl := &ddTable, &ddcbTable
		if op == 0xFD {
			tbl, bitTbl = &fdTable, &fdcbTable
		}
		op2 := read(addr + 1)
		if op2 == 0xDD || op2 == 0xFD || op2 == 0xED {
			in = &prefixNoni
			hdrLen = 1
			break
		}
		if op2 == 0xCB {
			disp = int8(read(addr + 2))
			in = &bitTbl[read(addr+3)]
			hdrLen = 4
			hasDD = true
		} else {
			in = &tbl[op2]
			hdrLen = 2
		}
	default:
		in = &baseTable[op]
		hdrLen = 1
	}

	next := addr + hdrLen
	operand := func() uint8 {
		v := read(next)
		next++
		return v
	}

	mn := in.mnemonic
	var b strings.Builder
	for i := 0; i < len(mn); i++ {
		ch := mn[i]
		prev := byte(0)
		if i > 0 {
			prev = mn[i-1]
		}
		switch {
		case ch == 'n' && !isWordChar(prev) && i+1 < len(mn) && mn[i+1] == 'n' &&
			(i+2 >= len(mn) || !isWordChar(mn[i+2])):
			lo := operand()
			hi := operand()
			fmt.Fprintf(&b, "$%04X", uint16(hi)<<8|uint16(lo))
			i++
		case ch == 'n' && !isWordChar(prev) && (i+1 >= len(mn) || !isWordChar(mn[i+1])):
			fmt.Fprintf(&b, "$%02X", operand())
		case ch == '+' && i+1 < len(mn) && mn[i+1] == 'd' &&
			(i+2 >= len(mn) || !isWordChar(mn[i+2])):
			// The sign comes from the displacement substitution below.
		case ch == 'd' && !isWordChar(prev) && (i+1 >= len(mn) || !isWordChar(mn[i+1])):
			d := disp
			if !hasDD {
				d = int8(operand())
			}
			fmt.Fprintf(&b, "%+d", d)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), in
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
