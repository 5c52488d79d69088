package z80

// CB-prefixed opcodes: rotates/shifts on the low quarter, then BIT, RES and
// SET. The whole table is regular enough to generate.

// cbRotOps maps bits 5-3 of a CB rotate/shift opcode to its operation.
var cbRotOps = [8]struct {
	name string
	fn   func(c *CPU, v uint8) uint8
}{
	{"RLC", (*CPU).rlc},
	{"RRC", (*CPU).rrc},
	{"RL", (*CPU).rl},
	{"RR", (*CPU).rr},
	{"SLA", (*CPU).sla},
	{"SRA", (*CPU).sra},
	{"SLL", (*CPU).sll},
	{"SRL", (*CPU).srl},
}

var bitNames = [8]string{"0", "1", "2", "3", "4", "5", "6", "7"}

func buildCBTable() {
	t := &cbTable

	// Rotates and shifts, 0x00-0x3F.
	for i := uint8(0); i < 8; i++ {
		rot := cbRotOps[i]
		for y := uint8(0); y < 8; y++ {
			y := y
			var cycles uint8 = 8
			if y == 6 {
				cycles = 15
			}
			op(t, i<<3|y, rot.name+" "+regNames[y], 2, cycles, 0, func(c *CPU) {
				c.setReg8(y, rot.fn(c, c.getReg8(y)))
			})
		}
	}

	// BIT b,r at 0x40-0x7F. The (HL) form costs 12, not 15: there is no
	// write-back.
	for bit := uint8(0); bit < 8; bit++ {
		for y := uint8(0); y < 8; y++ {
			bit, y := bit, y
			var cycles uint8 = 8
			if y == 6 {
				cycles = 12
			}
			op(t, 0x40|bit<<3|y, "BIT "+bitNames[bit]+","+regNames[y], 2, cycles, 0, func(c *CPU) {
				c.bitTest(bit, c.getReg8(y))
			})
		}
	}

	// RES b,r at 0x80 and SET b,r at 0xC0.
	for bit := uint8(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		for y := uint8(0); y < 8; y++ {
			mask, y := mask, y
			var cycles uint8 = 8
			if y == 6 {
				cycles = 12
			}
			op(t, 0x80|bit<<3|y, "RES "+bitNames[bit]+","+regNames[y], 2, cycles, 0, func(c *CPU) {
				c.setReg8(y, c.getReg8(y)&^mask)
			})
			op(t, 0xC0|bit<<3|y, "SET "+bitNames[bit]+","+regNames[y], 2, cycles, 0, func(c *CPU) {
				c.setReg8(y, c.getReg8(y)|mask)
			})
		}
	}
}
