package z80

// The unprefixed opcode table. Register-file blocks (LD r,r', the ALU rows,
// INC/DEC r, the 16-bit pair rows) are generated; everything irregular is
// spelled out. Cycle counts are official Z80 T-states with the taken-branch
// cost in altCycles.

// op installs one table entry.
func op(tbl *[256]instruction, code uint8, mn string, length, cycles, alt uint8, h func(*CPU)) {
	tbl[code] = instruction{mnemonic: mn, length: length, cycles: cycles, altCycles: alt, handler: h}
}

func opNop(*CPU) {}

// aluOps maps bits 5-3 of an ALU-block opcode to its operation. The index
// tables reuse it for the IXH/IXL and (IX+d) forms.
var aluOps = [8]struct {
	name string
	fn   func(c *CPU, v uint8)
}{
	{"ADD A,", func(c *CPU, v uint8) { c.addA(v, false) }},
	{"ADC A,", func(c *CPU, v uint8) { c.addA(v, true) }},
	{"SUB ", func(c *CPU, v uint8) { c.subA(v, false) }},
	{"SBC A,", func(c *CPU, v uint8) { c.subA(v, true) }},
	{"AND ", (*CPU).andA},
	{"XOR ", (*CPU).xorA},
	{"OR ", (*CPU).orA},
	{"CP ", (*CPU).cpA},
}

func buildBaseTable() {
	b := &baseTable

	op(b, 0x00, "NOP", 1, 4, 0, opNop)

	// 16-bit pair rows: LD rr,nn / INC rr / DEC rr / ADD HL,rr.
	for p := uint8(0); p < 4; p++ {
		p := p
		op(b, 0x01|p<<4, "LD "+pairNames[p]+",nn", 3, 10, 0, func(c *CPU) {
			c.pairSet(p, c.operand16())
		})
		op(b, 0x03|p<<4, "INC "+pairNames[p], 1, 6, 0, func(c *CPU) {
			c.pairSet(p, c.pairGet(p)+1)
		})
		op(b, 0x0B|p<<4, "DEC "+pairNames[p], 1, 6, 0, func(c *CPU) {
			c.pairSet(p, c.pairGet(p)-1)
		})
		op(b, 0x09|p<<4, "ADD HL,"+pairNames[p], 1, 11, 0, func(c *CPU) {
			c.SetHL(c.add16(c.HL(), c.pairGet(p)))
		})
	}

	// Accumulator load/store through pairs and absolute addresses.
	op(b, 0x02, "LD (BC),A", 1, 7, 0, func(c *CPU) { c.writeMem(c.BC(), c.A) })
	op(b, 0x0A, "LD A,(BC)", 1, 7, 0, func(c *CPU) { c.A = c.readMem(c.BC()) })
	op(b, 0x12, "LD (DE),A", 1, 7, 0, func(c *CPU) { c.writeMem(c.DE(), c.A) })
	op(b, 0x1A, "LD A,(DE)", 1, 7, 0, func(c *CPU) { c.A = c.readMem(c.DE()) })
	op(b, 0x22, "LD (nn),HL", 3, 16, 0, func(c *CPU) { c.writeMem16(c.operand16(), c.HL()) })
	op(b, 0x2A, "LD HL,(nn)", 3, 16, 0, func(c *CPU) { c.SetHL(c.readMem16(c.operand16())) })
	op(b, 0x32, "LD (nn),A", 3, 13, 0, func(c *CPU) { c.writeMem(c.operand16(), c.A) })
	op(b, 0x3A, "LD A,(nn)", 3, 13, 0, func(c *CPU) { c.A = c.readMem(c.operand16()) })

	// INC r / DEC r / LD r,n. (HL) forms cost more.
	for i := uint8(0); i < 8; i++ {
		i := i
		var inc, dec, ldn uint8 = 4, 4, 7
		if i == 6 {
			inc, dec, ldn = 11, 11, 10
		}
		op(b, 0x04|i<<3, "INC "+regNames[i], 1, inc, 0, func(c *CPU) {
			c.setReg8(i, c.inc8(c.getReg8(i)))
		})
		op(b, 0x05|i<<3, "DEC "+regNames[i], 1, dec, 0, func(c *CPU) {
			c.setReg8(i, c.dec8(c.getReg8(i)))
		})
		op(b, 0x06|i<<3, "LD "+regNames[i]+",n", 2, ldn, 0, func(c *CPU) {
			c.setReg8(i, c.operand())
		})
	}

	// Accumulator rotates and flag ops.
	op(b, 0x07, "RLCA", 1, 4, 0, (*CPU).rlca)
	op(b, 0x0F, "RRCA", 1, 4, 0, (*CPU).rrca)
	op(b, 0x17, "RLA", 1, 4, 0, (*CPU).rla)
	op(b, 0x1F, "RRA", 1, 4, 0, (*CPU).rra)
	op(b, 0x27, "DAA", 1, 4, 0, (*CPU).daa)
	op(b, 0x2F, "CPL", 1, 4, 0, func(c *CPU) {
		c.A = ^c.A
		c.F = c.F&(FlagS|FlagZ|FlagPV|FlagC) | FlagH | FlagN | c.A&(FlagX|FlagY)
	})
	op(b, 0x37, "SCF", 1, 4, 0, func(c *CPU) {
		c.F = c.F&(FlagS|FlagZ|FlagPV) | FlagC | c.A&(FlagX|FlagY)
	})
	op(b, 0x3F, "CCF", 1, 4, 0, func(c *CPU) {
		f := c.F&(FlagS|FlagZ|FlagPV) | c.A&(FlagX|FlagY)
		if c.F&FlagC != 0 {
			f |= FlagH
		} else {
			f |= FlagC
		}
		c.F = f
	})

	// Exchanges.
	op(b, 0x08, "EX AF,AF'", 1, 4, 0, func(c *CPU) {
		c.A, c.Ax = c.Ax, c.A
		c.F, c.Fx = c.Fx, c.F
	})
	op(b, 0xD9, "EXX", 1, 4, 0, func(c *CPU) {
		c.B, c.Bx = c.Bx, c.B
		c.C, c.Cx = c.Cx, c.C
		c.D, c.Dx = c.Dx, c.D
		c.E, c.Ex = c.Ex, c.E
		c.H, c.Hx = c.Hx, c.H
		c.L, c.Lx = c.Lx, c.L
	})
	op(b, 0xEB, "EX DE,HL", 1, 4, 0, func(c *CPU) {
		d, e := c.D, c.E
		c.D, c.E = c.H, c.L
		c.H, c.L = d, e
	})
	op(b, 0xE3, "EX (SP),HL", 1, 19, 0, func(c *CPU) {
		v := c.readMem16(c.SP)
		c.writeMem16(c.SP, c.HL())
		c.SetHL(v)
	})

	// Relative jumps and DJNZ.
	op(b, 0x10, "DJNZ d", 2, 8, 13, func(c *CPU) {
		d := int8(c.operand())
		c.B--
		if c.B != 0 {
			c.PC += uint16(int16(d))
			c.branchTaken = true
		}
	})
	op(b, 0x18, "JR d", 2, 12, 0, func(c *CPU) {
		d := int8(c.operand())
		c.PC += uint16(int16(d))
	})
	for i := uint8(0); i < 4; i++ {
		i := i
		op(b, 0x20|i<<3, "JR "+condNames[i]+",d", 2, 7, 12, func(c *CPU) {
			d := int8(c.operand())
			if c.cond(i) {
				c.PC += uint16(int16(d))
				c.branchTaken = true
			}
		})
	}

	// LD r,r' block. 0x76 is HALT, not LD (HL),(HL).
	for x := uint8(0); x < 8; x++ {
		for y := uint8(0); y < 8; y++ {
			code := 0x40 | x<<3 | y
			if code == 0x76 {
				continue
			}
			x, y := x, y
			var cycles uint8 = 4
			if x == 6 || y == 6 {
				cycles = 7
			}
			op(b, code, "LD "+regNames[x]+","+regNames[y], 1, cycles, 0, func(c *CPU) {
				c.setReg8(x, c.getReg8(y))
			})
		}
	}
	op(b, 0x76, "HALT", 1, 4, 0, func(c *CPU) { c.Halted = true })

	// 8-bit ALU block and the immediate forms at 0xC6|i<<3.
	for i := uint8(0); i < 8; i++ {
		alu := aluOps[i]
		for y := uint8(0); y < 8; y++ {
			y := y
			var cycles uint8 = 4
			if y == 6 {
				cycles = 7
			}
			op(b, 0x80|i<<3|y, alu.name+regNames[y], 1, cycles, 0, func(c *CPU) {
				alu.fn(c, c.getReg8(y))
			})
		}
		op(b, 0xC6|i<<3, alu.name+"n", 2, 7, 0, func(c *CPU) {
			alu.fn(c, c.operand())
		})
	}

	// Conditional and unconditional control flow.
	for i := uint8(0); i < 8; i++ {
		i := i
		op(b, 0xC0|i<<3, "RET "+condNames[i], 1, 5, 11, func(c *CPU) {
			if c.cond(i) {
				c.PC = c.pop()
				c.branchTaken = true
			}
		})
		op(b, 0xC2|i<<3, "JP "+condNames[i]+",nn", 3, 10, 0, func(c *CPU) {
			addr := c.operand16()
			if c.cond(i) {
				c.PC = addr
			}
		})
		op(b, 0xC4|i<<3, "CALL "+condNames[i]+",nn", 3, 10, 17, func(c *CPU) {
			addr := c.operand16()
			if c.cond(i) {
				c.push(c.PC)
				c.PC = addr
				c.branchTaken = true
			}
		})
	}
	op(b, 0xC3, "JP nn", 3, 10, 0, func(c *CPU) { c.PC = c.operand16() })
	op(b, 0xC9, "RET", 1, 10, 0, func(c *CPU) { c.PC = c.pop() })
	op(b, 0xCD, "CALL nn", 3, 17, 0, func(c *CPU) {
		addr := c.operand16()
		c.push(c.PC)
		c.PC = addr
	})
	op(b, 0xE9, "JP (HL)", 1, 4, 0, func(c *CPU) { c.PC = c.HL() })

	// RST vectors.
	for i := uint8(0); i < 8; i++ {
		vec := uint16(i) << 3
		op(b, 0xC7|i<<3, rstName(uint8(vec)), 1, 11, 0, func(c *CPU) {
			c.push(c.PC)
			c.PC = vec
		})
	}

	// PUSH/POP use AF in the last slot instead of SP.
	pushNames := [4]string{"BC", "DE", "HL", "AF"}
	pushGet := [4]func(*CPU) uint16{(*CPU).BC, (*CPU).DE, (*CPU).HL, (*CPU).AF}
	popSet := [4]func(*CPU, uint16){(*CPU).SetBC, (*CPU).SetDE, (*CPU).SetHL, (*CPU).SetAF}
	for p := uint8(0); p < 4; p++ {
		p := p
		op(b, 0xC5|p<<4, "PUSH "+pushNames[p], 1, 11, 0, func(c *CPU) {
			c.push(pushGet[p](c))
		})
		op(b, 0xC1|p<<4, "POP "+pushNames[p], 1, 10, 0, func(c *CPU) {
			popSet[p](c, c.pop())
		})
	}

	// IO through an immediate port. The accumulator supplies the upper
	// address bus byte. These are the fast-path candidates: the cache
	// layer may route hot ports straight to a device callback.
	op(b, 0xD3, "OUT (n),A", 2, 11, 0, func(c *CPU) {
		n := c.operand()
		port := uint16(c.A)<<8 | uint16(n)
		if c.opt != nil && c.opt.Enabled {
			if out := c.opt.fastOut(n); out != nil {
				if c.debug != nil {
					c.debug.onAccess(BreakIOWrite, port, c.A)
				}
				if c.timing != nil {
					c.penalty += c.timing.ioPenalty(port)
				}
				out(port, c.A)
				return
			}
		}
		c.writeIO(port, c.A)
	})
	op(b, 0xDB, "IN A,(n)", 2, 11, 0, func(c *CPU) {
		n := c.operand()
		port := uint16(c.A)<<8 | uint16(n)
		if c.opt != nil && c.opt.Enabled {
			if in := c.opt.fastIn(n); in != nil {
				v := in(port)
				if c.timing != nil {
					c.penalty += c.timing.ioPenalty(port)
				}
				if c.debug != nil {
					c.debug.onAccess(BreakIORead, port, v)
				}
				c.A = v
				return
			}
		}
		c.A = c.readIO(port)
	})

	// Interrupt flip-flops. EI takes effect after the next instruction.
	op(b, 0xF3, "DI", 1, 4, 0, func(c *CPU) {
		c.IFF1, c.IFF2 = false, false
	})
	op(b, 0xFB, "EI", 1, 4, 0, func(c *CPU) {
		c.IFF1, c.IFF2 = true, true
		c.eiDelay = 2
	})

	op(b, 0xF9, "LD SP,HL", 1, 6, 0, func(c *CPU) { c.SP = c.HL() })

	// Prefix bytes are intercepted by decode and never dispatched here.
	op(b, 0xCB, "DB 0xCB", 1, 4, 0, opNop)
	op(b, 0xDD, "DB 0xDD", 1, 4, 0, opNop)
	op(b, 0xED, "DB 0xED", 1, 4, 0, opNop)
	op(b, 0xFD, "DB 0xFD", 1, 4, 0, opNop)
}

func rstName(vec uint8) string {
	const hex = "0123456789ABCDEF"
	return "RST " + string([]byte{hex[vec>>4], hex[vec&0x0F]}) + "H"
}
