package z80

// parityTable holds the PV flag value for each byte: set when the number of
// one bits is even.
var parityTable [256]uint8

func init() {
	for i := 0; i < 256; i++ {
		v := uint8(i)
		v ^= v >> 4
		v ^= v >> 2
		v ^= v >> 1
		if v&1 == 0 {
			parityTable[i] = FlagPV
		}
	}
}

// szxy returns the S, Z, X and Y flag bits for an 8-bit result.
func szxy(r uint8) uint8 {
	f := r & (FlagS | FlagX | FlagY)
	if r == 0 {
		f |= FlagZ
	}
	return f
}

// addA adds v (plus carry-in when useCarry) to the accumulator.
func (c *CPU) addA(v uint8, useCarry bool) {
	var cin uint16
	if useCarry && c.F&FlagC != 0 {
		cin = 1
	}
	a := c.A
	sum := uint16(a) + uint16(v) + cin
	r := uint8(sum)

	f := szxy(r)
	if (a^v^r)&0x10 != 0 {
		f |= FlagH
	}
	if (^(a^v))&(a^r)&0x80 != 0 {
		f |= FlagPV
	}
	if sum > 0xFF {
		f |= FlagC
	}
	c.A, c.F = r, f
}

// sub8 computes a-v(-carry) and the resulting flags without storing.
func (c *CPU) sub8(a, v uint8, useCarry bool) (uint8, uint8) {
	var cin uint16
	if useCarry && c.F&FlagC != 0 {
		cin = 1
	}
	diff := uint16(a) - uint16(v) - cin
	r := uint8(diff)

	f := szxy(r) | FlagN
	if (a^v^r)&0x10 != 0 {
		f |= FlagH
	}
	if (a^v)&(a^r)&0x80 != 0 {
		f |= FlagPV
	}
	if diff > 0xFF {
		f |= FlagC
	}
	return r, f
}

// subA subtracts v (plus carry-in when useCarry) from the accumulator.
func (c *CPU) subA(v uint8, useCarry bool) {
	c.A, c.F = c.sub8(c.A, v, useCarry)
}

// cpA compares the accumulator with v. Flags are those of a subtraction,
// except the undocumented X/Y bits come from the operand, not the result.
func (c *CPU) cpA(v uint8) {
	_, f := c.sub8(c.A, v, false)
	c.F = f&^(FlagX|FlagY) | v&(FlagX|FlagY)
}

// andA bitwise-ands v into the accumulator. H is always set, PV is parity.
func (c *CPU) andA(v uint8) {
	c.A &= v
	c.F = szxy(c.A) | FlagH | parityTable[c.A]
}

// orA bitwise-ors v into the accumulator.
func (c *CPU) orA(v uint8) {
	c.A |= v
	c.F = szxy(c.A) | parityTable[c.A]
}

// xorA bitwise-xors v into the accumulator.
func (c *CPU) xorA(v uint8) {
	c.A ^= v
	c.F = szxy(c.A) | parityTable[c.A]
}

// inc8 increments v, preserving carry. PV flags the 0x7F->0x80 overflow.
func (c *CPU) inc8(v uint8) uint8 {
	r := v + 1
	f := szxy(r) | c.F&FlagC
	if r&0x0F == 0 {
		f |= FlagH
	}
	if r == 0x80 {
		f |= FlagPV
	}
	c.F = f
	return r
}

// dec8 decrements v, preserving carry. PV flags the 0x80->0x7F overflow.
func (c *CPU) dec8(v uint8) uint8 {
	r := v - 1
	f := szxy(r) | FlagN | c.F&FlagC
	if v&0x0F == 0 {
		f |= FlagH
	}
	if r == 0x7F {
		f |= FlagPV
	}
	c.F = f
	return r
}

// add16 is ADD HL/IX/IY,rr: only C, H, N and the undocumented bits change,
// H from the bit-11 carry, X/Y from the high byte of the result.
func (c *CPU) add16(a, v uint16) uint16 {
	sum := uint32(a) + uint32(v)
	r := uint16(sum)

	f := c.F & (FlagS | FlagZ | FlagPV)
	f |= uint8(r>>8) & (FlagX | FlagY)
	if (a^v^r)&0x1000 != 0 {
		f |= FlagH
	}
	if sum > 0xFFFF {
		f |= FlagC
	}
	c.F = f
	return r
}

// adc16 is ADC HL,rr with the full flag set computed on the 16-bit result.
func (c *CPU) adc16(v uint16) {
	a := c.HL()
	var cin uint32
	if c.F&FlagC != 0 {
		cin = 1
	}
	sum := uint32(a) + uint32(v) + cin
	r := uint16(sum)

	f := uint8(r>>8) & (FlagS | FlagX | FlagY)
	if r == 0 {
		f |= FlagZ
	}
	if (a^v^r)&0x1000 != 0 {
		f |= FlagH
	}
	if (^(a^v))&(a^r)&0x8000 != 0 {
		f |= FlagPV
	}
	if sum > 0xFFFF {
		f |= FlagC
	}
	c.F = f
	c.SetHL(r)
}

// sbc16 is SBC HL,rr with the full flag set computed on the 16-bit result.
func (c *CPU) sbc16(v uint16) {
	a := c.HL()
	var cin uint32
	if c.F&FlagC != 0 {
		cin = 1
	}
	diff := uint32(a) - uint32(v) - cin
	r := uint16(diff)

	f := uint8(r>>8)&(FlagS|FlagX|FlagY) | FlagN
	if r == 0 {
		f |= FlagZ
	}
	if (a^v^r)&0x1000 != 0 {
		f |= FlagH
	}
	if (a^v)&(a^r)&0x8000 != 0 {
		f |= FlagPV
	}
	if diff > 0xFFFF {
		f |= FlagC
	}
	c.F = f
	c.SetHL(r)
}

// daa decimal-adjusts the accumulator after a BCD add or subtract.
func (c *CPU) daa() {
	a := c.A
	var adjust uint8
	carry := c.F&FlagC != 0

	if c.F&FlagH != 0 || a&0x0F > 9 {
		adjust = 0x06
	}
	if carry || a > 0x99 {
		adjust |= 0x60
		carry = true
	}

	var r uint8
	if c.F&FlagN != 0 {
		r = a - adjust
	} else {
		r = a + adjust
	}

	f := szxy(r) | parityTable[r] | c.F&FlagN
	if (a^r)&0x10 != 0 {
		f |= FlagH
	}
	if carry {
		f |= FlagC
	}
	c.A, c.F = r, f
}

// neg is NEG: A = 0 - A with subtraction flags.
func (c *CPU) neg() {
	a := c.A
	c.A, c.F = c.sub8(0, a, false)
}

// Accumulator rotates (RLCA/RRCA/RLA/RRA) touch only C, H, N, X and Y.

func (c *CPU) rlca() {
	c.A = c.A<<1 | c.A>>7
	c.F = c.F&(FlagS|FlagZ|FlagPV) | c.A&(FlagX|FlagY|FlagC)
}

func (c *CPU) rrca() {
	carry := c.A & 1
	c.A = c.A>>1 | c.A<<7
	c.F = c.F&(FlagS|FlagZ|FlagPV) | c.A&(FlagX|FlagY) | carry
}

func (c *CPU) rla() {
	carry := c.A >> 7
	c.A = c.A<<1 | c.F&FlagC
	c.F = c.F&(FlagS|FlagZ|FlagPV) | c.A&(FlagX|FlagY) | carry
}

func (c *CPU) rra() {
	carry := c.A & 1
	c.A = c.A>>1 | (c.F&FlagC)<<7
	c.F = c.F&(FlagS|FlagZ|FlagPV) | c.A&(FlagX|FlagY) | carry
}

// CB-prefixed rotates and shifts compute the full flag set.

// szp is the common CB-result flag pattern: S, Z, X, Y and parity.
func szp(r uint8) uint8 {
	return szxy(r) | parityTable[r]
}

func (c *CPU) rlc(v uint8) uint8 {
	r := v<<1 | v>>7
	c.F = szp(r) | v>>7
	return r
}

func (c *CPU) rrc(v uint8) uint8 {
	r := v>>1 | v<<7
	c.F = szp(r) | v&1
	return r
}

func (c *CPU) rl(v uint8) uint8 {
	r := v<<1 | c.F&FlagC
	c.F = szp(r) | v>>7
	return r
}

func (c *CPU) rr(v uint8) uint8 {
	r := v>>1 | (c.F&FlagC)<<7
	c.F = szp(r) | v&1
	return r
}

func (c *CPU) sla(v uint8) uint8 {
	r := v << 1
	c.F = szp(r) | v>>7
	return r
}

func (c *CPU) sra(v uint8) uint8 {
	r := v>>1 | v&0x80
	c.F = szp(r) | v&1
	return r
}

// sll is the undocumented shift-left that sets bit 0.
func (c *CPU) sll(v uint8) uint8 {
	r := v<<1 | 1
	c.F = szp(r) | v>>7
	return r
}

func (c *CPU) srl(v uint8) uint8 {
	r := v >> 1
	c.F = szp(r) | v&1
	return r
}

// bitTest is BIT b,v. Z and PV reflect the tested bit, H is set, X/Y come
// from the examined value.
func (c *CPU) bitTest(bit, v uint8) {
	m := v & (1 << bit)
	f := FlagH | c.F&FlagC | v&(FlagX|FlagY)
	if m == 0 {
		f |= FlagZ | FlagPV
	}
	f |= m & FlagS
	c.F = f
}

// rrd rotates the low nibble of (HL) through the low nibble of A, rightward.
func (c *CPU) rrd() {
	addr := c.HL()
	m := c.readMem(addr)
	c.writeMem(addr, m>>4|c.A<<4)
	c.A = c.A&0xF0 | m&0x0F
	c.F = szp(c.A) | c.F&FlagC
}

// rld rotates the low nibble of (HL) through the low nibble of A, leftward.
func (c *CPU) rld() {
	addr := c.HL()
	m := c.readMem(addr)
	c.writeMem(addr, m<<4|c.A&0x0F)
	c.A = c.A&0xF0 | m>>4
	c.F = szp(c.A) | c.F&FlagC
}
