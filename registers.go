package z80

// Flag bits in the F register. Bits 3 and 5 (FlagX, FlagY) are
// architecturally undocumented but real programs observe them, so handlers
// copy them from results rather than synthesizing them.
const (
	FlagC  uint8 = 1 << 0 // Carry
	FlagN  uint8 = 1 << 1 // Add/Subtract
	FlagPV uint8 = 1 << 2 // Parity/Overflow
	FlagX  uint8 = 1 << 3 // Undocumented (copy of result bit 3)
	FlagH  uint8 = 1 << 4 // Half carry
	FlagY  uint8 = 1 << 5 // Undocumented (copy of result bit 5)
	FlagZ  uint8 = 1 << 6 // Zero
	FlagS  uint8 = 1 << 7 // Sign
)

// Reg names one 8-bit architectural register for GetReg/SetReg.
type Reg uint8

const (
	RegA Reg = iota
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegAShadow
	RegFShadow
	RegBShadow
	RegCShadow
	RegDShadow
	RegEShadow
	RegHShadow
	RegLShadow
	RegI
	RegR
	RegIXH
	RegIXL
	RegIYH
	RegIYL
	RegSPH
	RegSPL
	RegPCH
	RegPCL
)

// GetReg returns the current value of the named 8-bit register.
func (c *CPU) GetReg(r Reg) uint8 {
	switch r {
	case RegA:
		return c.A
	case RegF:
		return c.F
	case RegB:
		return c.B
	case RegC:
		return c.C
	case RegD:
		return c.D
	case RegE:
		return c.E
	case RegH:
		return c.H
	case RegL:
		return c.L
	case RegAShadow:
		return c.Ax
	case RegFShadow:
		return c.Fx
	case RegBShadow:
		return c.Bx
	case RegCShadow:
		return c.Cx
	case RegDShadow:
		return c.Dx
	case RegEShadow:
		return c.Ex
	case RegHShadow:
		return c.Hx
	case RegLShadow:
		return c.Lx
	case RegI:
		return c.I
	case RegR:
		return c.R
	case RegIXH:
		return uint8(c.IX >> 8)
	case RegIXL:
		return uint8(c.IX)
	case RegIYH:
		return uint8(c.IY >> 8)
	case RegIYL:
		return uint8(c.IY)
	case RegSPH:
		return uint8(c.SP >> 8)
	case RegSPL:
		return uint8(c.SP)
	case RegPCH:
		return uint8(c.PC >> 8)
	case RegPCL:
		return uint8(c.PC)
	}
	return 0
}

// SetReg sets the named 8-bit register.
func (c *CPU) SetReg(r Reg, v uint8) {
	switch r {
	case RegA:
		c.A = v
	case RegF:
		c.F = v
	case RegB:
		c.B = v
	case RegC:
		c.C = v
	case RegD:
		c.D = v
	case RegE:
		c.E = v
	case RegH:
		c.H = v
	case RegL:
		c.L = v
	case RegAShadow:
		c.Ax = v
	case RegFShadow:
		c.Fx = v
	case RegBShadow:
		c.Bx = v
	case RegCShadow:
		c.Cx = v
	case RegDShadow:
		c.Dx = v
	case RegEShadow:
		c.Ex = v
	case RegHShadow:
		c.Hx = v
	case RegLShadow:
		c.Lx = v
	case RegI:
		c.I = v
	case RegR:
		c.R = v
	case RegIXH:
		c.IX = uint16(v)<<8 | c.IX&0x00FF
	case RegIXL:
		c.IX = c.IX&0xFF00 | uint16(v)
	case RegIYH:
		c.IY = uint16(v)<<8 | c.IY&0x00FF
	case RegIYL:
		c.IY = c.IY&0xFF00 | uint16(v)
	case RegSPH:
		c.SP = uint16(v)<<8 | c.SP&0x00FF
	case RegSPL:
		c.SP = c.SP&0xFF00 | uint16(v)
	case RegPCH:
		c.PC = uint16(v)<<8 | c.PC&0x00FF
	case RegPCL:
		c.PC = c.PC&0xFF00 | uint16(v)
	}
}

// 16-bit pair accessors. Reading recomposes the two 8-bit halves, writing
// decomposes into them.

// AF returns the A and F registers as a 16-bit pair.
func (c *CPU) AF() uint16 { return uint16(c.A)<<8 | uint16(c.F) }

// BC returns the B and C registers as a 16-bit pair.
func (c *CPU) BC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }

// DE returns the D and E registers as a 16-bit pair.
func (c *CPU) DE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }

// HL returns the H and L registers as a 16-bit pair.
func (c *CPU) HL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

// SetAF sets the A and F registers from a 16-bit pair.
func (c *CPU) SetAF(v uint16) { c.A, c.F = uint8(v>>8), uint8(v) }

// SetBC sets the B and C registers from a 16-bit pair.
func (c *CPU) SetBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }

// SetDE sets the D and E registers from a 16-bit pair.
func (c *CPU) SetDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }

// SetHL sets the H and L registers from a 16-bit pair.
func (c *CPU) SetHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }

// Flag reports whether the given flag bit is set in F.
func (c *CPU) Flag(f uint8) bool { return c.F&f != 0 }

// SetFlag sets or clears the given flag bit in F.
func (c *CPU) SetFlag(f uint8, set bool) {
	if set {
		c.F |= f
	} else {
		c.F &^= f
	}
}

// incR increments the memory-refresh register. Only the low 7 bits count;
// bit 7 is preserved across increments.
func (c *CPU) incR() {
	c.R = c.R&0x80 | (c.R+1)&0x7F
}

// getReg8 reads an 8-bit register by its 3-bit opcode encoding
// (B C D E H L (HL) A). Index 6 reads memory at HL.
func (c *CPU) getReg8(i uint8) uint8 {
	switch i & 7 {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.readMem(c.HL())
	default:
		return c.A
	}
}

// setReg8 writes an 8-bit register by its 3-bit opcode encoding.
func (c *CPU) setReg8(i, v uint8) {
	switch i & 7 {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.writeMem(c.HL(), v)
	default:
		c.A = v
	}
}

// regNames maps the 3-bit register encoding to mnemonic text.
var regNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// pairNames maps the 2-bit register-pair encoding to mnemonic text.
var pairNames = [4]string{"BC", "DE", "HL", "SP"}

// pairGet reads a 16-bit pair by its 2-bit opcode encoding (BC DE HL SP).
func (c *CPU) pairGet(p uint8) uint16 {
	switch p & 3 {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

// pairSet writes a 16-bit pair by its 2-bit opcode encoding.
func (c *CPU) pairSet(p uint8, v uint16) {
	switch p & 3 {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

// condNames maps the 3-bit condition encoding to mnemonic text.
var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

// cond evaluates a 3-bit condition-code encoding (NZ Z NC C PO PE P M)
// against the current flags.
func (c *CPU) cond(i uint8) bool {
	switch i & 7 {
	case 0:
		return c.F&FlagZ == 0
	case 1:
		return c.F&FlagZ != 0
	case 2:
		return c.F&FlagC == 0
	case 3:
		return c.F&FlagC != 0
	case 4:
		return c.F&FlagPV == 0
	case 5:
		return c.F&FlagPV != 0
	case 6:
		return c.F&FlagS == 0
	default:
		return c.F&FlagS != 0
	}
}
