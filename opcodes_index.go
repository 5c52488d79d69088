package z80

// DD- and FD-prefixed opcodes. The two tables are identical in shape, so one
// generator builds both around IX or IY. Opcodes the prefix does not affect
// fall through to their base-table behavior with 4 cycles added for the
// wasted prefix fetch, which is what hardware does.

// indexReg abstracts over IX and IY for table generation.
type indexReg struct {
	name string
	get  func(*CPU) uint16
	set  func(*CPU, uint16)
}

var ixReg = indexReg{
	name: "IX",
	get:  func(c *CPU) uint16 { return c.IX },
	set:  func(c *CPU, v uint16) { c.IX = v },
}

var iyReg = indexReg{
	name: "IY",
	get:  func(c *CPU) uint16 { return c.IY },
	set:  func(c *CPU, v uint16) { c.IY = v },
}

func buildIndexTables() {
	buildIndexTable(&ddTable, ixReg)
	buildIndexTable(&fdTable, iyReg)
	buildIndexBitTable(&ddcbTable, ixReg)
	buildIndexBitTable(&fdcbTable, iyReg)
}

func buildIndexTable(t *[256]instruction, reg indexReg) {
	// Fallback: base behavior plus the prefix byte and its 4 cycles.
	for i := 0; i < 256; i++ {
		e := baseTable[i]
		e.length++
		e.cycles += 4
		if e.altCycles != 0 {
			e.altCycles += 4
		}
		t[i] = e
	}

	ir := reg.name
	hi := func(c *CPU) uint8 { return uint8(reg.get(c) >> 8) }
	lo := func(c *CPU) uint8 { return uint8(reg.get(c)) }
	setHi := func(c *CPU, v uint8) { reg.set(c, uint16(v)<<8|reg.get(c)&0x00FF) }
	setLo := func(c *CPU, v uint8) { reg.set(c, reg.get(c)&0xFF00|uint16(v)) }

	// ea fetches the displacement operand and forms the effective address.
	ea := func(c *CPU) uint16 {
		return reg.get(c) + uint16(int16(int8(c.operand())))
	}

	// half reads register slot i with H/L remapped to the index halves.
	half := func(c *CPU, i uint8) uint8 {
		switch i {
		case 4:
			return hi(c)
		case 5:
			return lo(c)
		default:
			return c.getReg8(i)
		}
	}
	setHalf := func(c *CPU, i, v uint8) {
		switch i {
		case 4:
			setHi(c, v)
		case 5:
			setLo(c, v)
		default:
			c.setReg8(i, v)
		}
	}
	halfNames := [8]string{"B", "C", "D", "E", ir + "H", ir + "L", "", "A"}

	// ADD IX,rr with HL replaced by the index register itself.
	addPairNames := [4]string{"BC", "DE", ir, "SP"}
	for p := uint8(0); p < 4; p++ {
		p := p
		op(t, 0x09|p<<4, "ADD "+ir+","+addPairNames[p], 2, 15, 0, func(c *CPU) {
			v := c.pairGet(p)
			if p == 2 {
				v = reg.get(c)
			}
			reg.set(c, c.add16(reg.get(c), v))
		})
	}

	// 16-bit loads and inc/dec of the index register.
	op(t, 0x21, "LD "+ir+",nn", 4, 14, 0, func(c *CPU) { reg.set(c, c.operand16()) })
	op(t, 0x22, "LD (nn),"+ir, 4, 20, 0, func(c *CPU) { c.writeMem16(c.operand16(), reg.get(c)) })
	op(t, 0x2A, "LD "+ir+",(nn)", 4, 20, 0, func(c *CPU) { reg.set(c, c.readMem16(c.operand16())) })
	op(t, 0x23, "INC "+ir, 2, 10, 0, func(c *CPU) { reg.set(c, reg.get(c)+1) })
	op(t, 0x2B, "DEC "+ir, 2, 10, 0, func(c *CPU) { reg.set(c, reg.get(c)-1) })

	// Undocumented half-register arithmetic and loads.
	for _, i := range []uint8{4, 5} {
		i := i
		op(t, 0x04|i<<3, "INC "+halfNames[i], 2, 8, 0, func(c *CPU) {
			setHalf(c, i, c.inc8(half(c, i)))
		})
		op(t, 0x05|i<<3, "DEC "+halfNames[i], 2, 8, 0, func(c *CPU) {
			setHalf(c, i, c.dec8(half(c, i)))
		})
		op(t, 0x06|i<<3, "LD "+halfNames[i]+",n", 3, 11, 0, func(c *CPU) {
			setHalf(c, i, c.operand())
		})
	}

	// Displaced memory inc/dec/load.
	op(t, 0x34, "INC ("+ir+"+d)", 3, 23, 0, func(c *CPU) {
		addr := ea(c)
		c.writeMem(addr, c.inc8(c.readMem(addr)))
	})
	op(t, 0x35, "DEC ("+ir+"+d)", 3, 23, 0, func(c *CPU) {
		addr := ea(c)
		c.writeMem(addr, c.dec8(c.readMem(addr)))
	})
	op(t, 0x36, "LD ("+ir+"+d),n", 4, 19, 0, func(c *CPU) {
		addr := ea(c)
		c.writeMem(addr, c.operand())
	})

	// The LD block: slot 6 becomes (IX+d) with the real H and L as the
	// other operand; otherwise H and L become the index halves.
	for x := uint8(0); x < 8; x++ {
		for y := uint8(0); y < 8; y++ {
			code := 0x40 | x<<3 | y
			if code == 0x76 {
				continue
			}
			x, y := x, y
			switch {
			case x == 6:
				op(t, code, "LD ("+ir+"+d),"+regNames[y], 3, 19, 0, func(c *CPU) {
					c.writeMem(ea(c), c.getReg8(y))
				})
			case y == 6:
				op(t, code, "LD "+regNames[x]+",("+ir+"+d)", 3, 19, 0, func(c *CPU) {
					c.setReg8(x, c.readMem(ea(c)))
				})
			case x == 4 || x == 5 || y == 4 || y == 5:
				op(t, code, "LD "+halfNames[x]+","+halfNames[y], 2, 8, 0, func(c *CPU) {
					setHalf(c, x, half(c, y))
				})
			}
		}
	}

	// ALU against the index halves and (IX+d).
	for i := uint8(0); i < 8; i++ {
		alu := aluOps[i]
		for _, y := range []uint8{4, 5} {
			y := y
			op(t, 0x80|i<<3|y, alu.name+halfNames[y], 2, 8, 0, func(c *CPU) {
				alu.fn(c, half(c, y))
			})
		}
		op(t, 0x80|i<<3|6, alu.name+"("+ir+"+d)", 3, 19, 0, func(c *CPU) {
			alu.fn(c, c.readMem(ea(c)))
		})
	}

	// Stack and jump forms.
	op(t, 0xE1, "POP "+ir, 2, 14, 0, func(c *CPU) { reg.set(c, c.pop()) })
	op(t, 0xE5, "PUSH "+ir, 2, 15, 0, func(c *CPU) { c.push(reg.get(c)) })
	op(t, 0xE3, "EX (SP),"+ir, 2, 23, 0, func(c *CPU) {
		v := c.readMem16(c.SP)
		c.writeMem16(c.SP, reg.get(c))
		reg.set(c, v)
	})
	op(t, 0xE9, "JP ("+ir+")", 2, 8, 0, func(c *CPU) { c.PC = reg.get(c) })
	op(t, 0xF9, "LD SP,"+ir, 2, 10, 0, func(c *CPU) { c.SP = reg.get(c) })
}

// buildIndexBitTable builds a DDCB/FDCB table. The displacement byte sits
// between the CB prefix and the final opcode; decode stashes it in c.disp
// before the handler runs. All operations work on (IX+d); the undocumented
// non-(HL) register slots additionally copy the result into that register.
func buildIndexBitTable(t *[256]instruction, reg indexReg) {
	ir := reg.name
	mem := "(" + ir + "+d)"

	ea := func(c *CPU) uint16 {
		return reg.get(c) + uint16(int16(c.disp))
	}

	for i := uint8(0); i < 8; i++ {
		rot := cbRotOps[i]
		for y := uint8(0); y < 8; y++ {
			y := y
			mn := rot.name + " " + mem
			if y != 6 {
				mn += "," + regNames[y]
			}
			op(t, i<<3|y, mn, 4, 23, 0, func(c *CPU) {
				addr := ea(c)
				r := rot.fn(c, c.readMem(addr))
				c.writeMem(addr, r)
				if y != 6 {
					c.setReg8(y, r)
				}
			})
		}
	}

	for bit := uint8(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		for y := uint8(0); y < 8; y++ {
			bit, mask, y := bit, mask, y
			op(t, 0x40|bit<<3|y, "BIT "+bitNames[bit]+","+mem, 4, 20, 0, func(c *CPU) {
				c.bitTest(bit, c.readMem(ea(c)))
			})

			resMn := "RES " + bitNames[bit] + "," + mem
			setMn := "SET " + bitNames[bit] + "," + mem
			if y != 6 {
				resMn += "," + regNames[y]
				setMn += "," + regNames[y]
			}
			op(t, 0x80|bit<<3|y, resMn, 4, 23, 0, func(c *CPU) {
				addr := ea(c)
				r := c.readMem(addr) &^ mask
				c.writeMem(addr, r)
				if y != 6 {
					c.setReg8(y, r)
				}
			})
			op(t, 0xC0|bit<<3|y, setMn, 4, 23, 0, func(c *CPU) {
				addr := ea(c)
				r := c.readMem(addr) | mask
				c.writeMem(addr, r)
				if y != 6 {
					c.setReg8(y, r)
				}
			})
		}
	}
}
