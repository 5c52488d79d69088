package z80

// ED-prefixed opcodes. Undefined slots behave as two-byte no-ops costing 8
// cycles: a real Z80 does nothing useful but never stops, so neither do we.

func buildEDTable() {
	t := &edTable

	// Fill everything with the defined-cost no-op first, then overlay the
	// real instructions.
	for i := 0; i < 256; i++ {
		op(t, uint8(i), "NONI", 2, 8, 0, opNop)
	}

	// IN r,(C) / OUT (C),r across 0x40-0x78. Slot 6 is the flags-only
	// input and the zero output.
	for i := uint8(0); i < 8; i++ {
		i := i
		inName := "IN " + regNames[i] + ",(C)"
		outName := "OUT (C)," + regNames[i]
		if i == 6 {
			inName = "IN (C)"
			outName = "OUT (C),0"
		}
		op(t, 0x40|i<<3, inName, 2, 12, 0, func(c *CPU) {
			v := c.readIO(c.BC())
			c.F = szp(v) | c.F&FlagC
			if i != 6 {
				c.setReg8(i, v)
			}
		})
		op(t, 0x41|i<<3, outName, 2, 12, 0, func(c *CPU) {
			var v uint8
			if i != 6 {
				v = c.getReg8(i)
			}
			c.writeIO(c.BC(), v)
		})
	}

	// 16-bit arithmetic and absolute 16-bit loads.
	for p := uint8(0); p < 4; p++ {
		p := p
		op(t, 0x42|p<<4, "SBC HL,"+pairNames[p], 2, 15, 0, func(c *CPU) {
			c.sbc16(c.pairGet(p))
		})
		op(t, 0x4A|p<<4, "ADC HL,"+pairNames[p], 2, 15, 0, func(c *CPU) {
			c.adc16(c.pairGet(p))
		})
		op(t, 0x43|p<<4, "LD (nn),"+pairNames[p], 4, 20, 0, func(c *CPU) {
			c.writeMem16(c.operand16(), c.pairGet(p))
		})
		op(t, 0x4B|p<<4, "LD "+pairNames[p]+",(nn)", 4, 20, 0, func(c *CPU) {
			c.pairSet(p, c.readMem16(c.operand16()))
		})
	}

	// NEG and its undocumented mirrors.
	for _, code := range []uint8{0x44, 0x4C, 0x54, 0x5C, 0x64, 0x6C, 0x74, 0x7C} {
		op(t, code, "NEG", 2, 8, 0, (*CPU).neg)
	}

	// RETN restores IFF1 from IFF2; RETI behaves identically from the
	// CPU's point of view (the distinction matters to peripherals).
	retn := func(c *CPU) {
		c.IFF1 = c.IFF2
		c.PC = c.pop()
	}
	for _, code := range []uint8{0x45, 0x55, 0x65, 0x75} {
		op(t, code, "RETN", 2, 14, 0, retn)
	}
	for _, code := range []uint8{0x4D, 0x5D, 0x6D, 0x7D} {
		op(t, code, "RETI", 2, 14, 0, retn)
	}

	// Interrupt modes, including the undocumented mirrors.
	setIM := func(m uint8) func(*CPU) {
		return func(c *CPU) { c.IM = m }
	}
	for _, code := range []uint8{0x46, 0x4E, 0x66, 0x6E} {
		op(t, code, "IM 0", 2, 8, 0, setIM(0))
	}
	for _, code := range []uint8{0x56, 0x76} {
		op(t, code, "IM 1", 2, 8, 0, setIM(1))
	}
	for _, code := range []uint8{0x5E, 0x7E} {
		op(t, code, "IM 2", 2, 8, 0, setIM(2))
	}

	// Interrupt-vector and refresh register transfers. LD A,I and LD A,R
	// expose IFF2 through the PV flag.
	op(t, 0x47, "LD I,A", 2, 9, 0, func(c *CPU) { c.I = c.A })
	op(t, 0x4F, "LD R,A", 2, 9, 0, func(c *CPU) { c.R = c.A })
	ldAIR := func(c *CPU, v uint8) {
		c.A = v
		f := szxy(v) | c.F&FlagC
		if c.IFF2 {
			f |= FlagPV
		}
		c.F = f
	}
	op(t, 0x57, "LD A,I", 2, 9, 0, func(c *CPU) { ldAIR(c, c.I) })
	op(t, 0x5F, "LD A,R", 2, 9, 0, func(c *CPU) { ldAIR(c, c.R) })

	op(t, 0x67, "RRD", 2, 18, 0, (*CPU).rrd)
	op(t, 0x6F, "RLD", 2, 18, 0, (*CPU).rld)

	// Block transfer, compare, input and output. The repeating forms cost
	// 21 cycles per iteration (altCycles) and 16 on the final one.
	op(t, 0xA0, "LDI", 2, 16, 0, func(c *CPU) { c.blockLD(1, false) })
	op(t, 0xA8, "LDD", 2, 16, 0, func(c *CPU) { c.blockLD(-1, false) })
	op(t, 0xB0, "LDIR", 2, 16, 21, func(c *CPU) { c.blockLD(1, true) })
	op(t, 0xB8, "LDDR", 2, 16, 21, func(c *CPU) { c.blockLD(-1, true) })

	op(t, 0xA1, "CPI", 2, 16, 0, func(c *CPU) { c.blockCP(1, false) })
	op(t, 0xA9, "CPD", 2, 16, 0, func(c *CPU) { c.blockCP(-1, false) })
	op(t, 0xB1, "CPIR", 2, 16, 21, func(c *CPU) { c.blockCP(1, true) })
	op(t, 0xB9, "CPDR", 2, 16, 21, func(c *CPU) { c.blockCP(-1, true) })

	op(t, 0xA2, "INI", 2, 16, 0, func(c *CPU) { c.blockIN(1, false) })
	op(t, 0xAA, "IND", 2, 16, 0, func(c *CPU) { c.blockIN(-1, false) })
	op(t, 0xB2, "INIR", 2, 16, 21, func(c *CPU) { c.blockIN(1, true) })
	op(t, 0xBA, "INDR", 2, 16, 21, func(c *CPU) { c.blockIN(-1, true) })

	op(t, 0xA3, "OUTI", 2, 16, 0, func(c *CPU) { c.blockOUT(1, false) })
	op(t, 0xAB, "OUTD", 2, 16, 0, func(c *CPU) { c.blockOUT(-1, false) })
	op(t, 0xB3, "OTIR", 2, 16, 21, func(c *CPU) { c.blockOUT(1, true) })
	op(t, 0xBB, "OTDR", 2, 16, 21, func(c *CPU) { c.blockOUT(-1, true) })
}

// blockLD is LDI/LDD and their repeating forms: (DE) <- (HL), both pointers
// stepped, BC counted down. The undocumented X/Y bits come from A plus the
// transferred byte.
func (c *CPU) blockLD(dir int16, repeat bool) {
	v := c.readMem(c.HL())
	c.writeMem(c.DE(), v)
	c.SetHL(c.HL() + uint16(dir))
	c.SetDE(c.DE() + uint16(dir))
	bc := c.BC() - 1
	c.SetBC(bc)

	n := v + c.A
	f := c.F & (FlagS | FlagZ | FlagC)
	f |= n & FlagX
	if n&0x02 != 0 {
		f |= FlagY
	}
	if bc != 0 {
		f |= FlagPV
	}
	c.F = f

	if repeat && bc != 0 {
		c.PC -= 2
		c.branchTaken = true
	}
}

// blockCP is CPI/CPD and their repeating forms: compare A with (HL), step
// HL, count BC down. Repeating stops on a match or on BC reaching zero.
func (c *CPU) blockCP(dir int16, repeat bool) {
	m := c.readMem(c.HL())
	c.SetHL(c.HL() + uint16(dir))
	bc := c.BC() - 1
	c.SetBC(bc)

	r := c.A - m
	f := c.F&FlagC | FlagN
	f |= r & FlagS
	if r == 0 {
		f |= FlagZ
	}
	var h uint8
	if (c.A^m^r)&0x10 != 0 {
		f |= FlagH
		h = 1
	}
	if bc != 0 {
		f |= FlagPV
	}
	n := r - h
	f |= n & FlagX
	if n&0x02 != 0 {
		f |= FlagY
	}
	c.F = f

	if repeat && bc != 0 && r != 0 {
		c.PC -= 2
		c.branchTaken = true
	}
}

// blockIN is INI/IND and their repeating forms: (HL) <- port (C), B counted
// down as the byte counter. S/Z/X/Y come from the new B, N from bit 7 of
// the transferred byte, and H/C/PV from the byte plus the stepped C.
func (c *CPU) blockIN(dir int16, repeat bool) {
	v := c.readIO(c.BC())
	c.writeMem(c.HL(), v)
	c.SetHL(c.HL() + uint16(dir))
	c.B--

	c.F = blockIOFlags(c.B, v, uint16(v)+uint16(c.C+uint8(dir)))

	if repeat && c.B != 0 {
		c.PC -= 2
		c.branchTaken = true
	}
}

// blockOUT is OUTI/OUTD and their repeating forms: port (C) <- (HL), B
// counted down before the port address is formed. The H/C/PV sum uses L
// after HL has stepped.
func (c *CPU) blockOUT(dir int16, repeat bool) {
	v := c.readMem(c.HL())
	c.B--
	c.writeIO(c.BC(), v)
	c.SetHL(c.HL() + uint16(dir))

	c.F = blockIOFlags(c.B, v, uint16(v)+uint16(c.L))

	if repeat && c.B != 0 {
		c.PC -= 2
		c.branchTaken = true
	}
}

// blockIOFlags builds the flag byte shared by the block IO instructions
// from the new counter, the transferred byte, and the carry sum k.
func blockIOFlags(b, v uint8, k uint16) uint8 {
	f := szxy(b)
	if v&0x80 != 0 {
		f |= FlagN
	}
	if k > 0xFF {
		f |= FlagH | FlagC
	}
	f |= parityTable[uint8(k)&7^b]
	return f
}
