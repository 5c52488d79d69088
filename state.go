package z80

import (
	"encoding/binary"
	"errors"
)

// SerializeSize is the fixed size of a serialized CPU state blob. The
// layout below uses 30 bytes; the remainder is zero padding so the size can
// stay stable if fields are ever added.
const SerializeSize = 64

// ErrStateTooSmall is returned when a serialize/deserialize buffer is
// smaller than SerializeSize.
var ErrStateTooSmall = errors.New("z80: state buffer too small")

// Serialize writes the complete register file and execution flags into buf
// and returns the number of bytes written (always SerializeSize). buf must
// be at least SerializeSize bytes; otherwise ErrStateTooSmall is returned
// and buf is untouched.
//
// Layout, little-endian for 16-bit fields:
//
//	0x00 A F B C D E H L        main registers
//	0x08 A' F' B' C' D' E' H' L' shadow registers
//	0x10 I R                    interrupt vector, refresh
//	0x12 IX IY                  index registers
//	0x16 SP PC
//	0x1A IFF1 IFF2 IM HALT
//	0x1E..0x3F                  zero padding
func (c *CPU) Serialize(buf []byte) (int, error) {
	if len(buf) < SerializeSize {
		return 0, ErrStateTooSmall
	}

	buf[0x00] = c.A
	buf[0x01] = c.F
	buf[0x02] = c.B
	buf[0x03] = c.C
	buf[0x04] = c.D
	buf[0x05] = c.E
	buf[0x06] = c.H
	buf[0x07] = c.L

	buf[0x08] = c.Ax
	buf[0x09] = c.Fx
	buf[0x0A] = c.Bx
	buf[0x0B] = c.Cx
	buf[0x0C] = c.Dx
	buf[0x0D] = c.Ex
	buf[0x0E] = c.Hx
	buf[0x0F] = c.Lx

	buf[0x10] = c.I
	buf[0x11] = c.R

	binary.LittleEndian.PutUint16(buf[0x12:], c.IX)
	binary.LittleEndian.PutUint16(buf[0x14:], c.IY)
	binary.LittleEndian.PutUint16(buf[0x16:], c.SP)
	binary.LittleEndian.PutUint16(buf[0x18:], c.PC)

	buf[0x1A] = boolByte(c.IFF1)
	buf[0x1B] = boolByte(c.IFF2)
	buf[0x1C] = c.IM
	buf[0x1D] = boolByte(c.Halted)

	for i := 0x1E; i < SerializeSize; i++ {
		buf[i] = 0
	}
	return SerializeSize, nil
}

// Deserialize restores state previously written by Serialize. On error no
// state is modified.
func (c *CPU) Deserialize(buf []byte) error {
	if len(buf) < SerializeSize {
		return ErrStateTooSmall
	}

	c.A = buf[0x00]
	c.F = buf[0x01]
	c.B = buf[0x02]
	c.C = buf[0x03]
	c.D = buf[0x04]
	c.E = buf[0x05]
	c.H = buf[0x06]
	c.L = buf[0x07]

	c.Ax = buf[0x08]
	c.Fx = buf[0x09]
	c.Bx = buf[0x0A]
	c.Cx = buf[0x0B]
	c.Dx = buf[0x0C]
	c.Ex = buf[0x0D]
	c.Hx = buf[0x0E]
	c.Lx = buf[0x0F]

	c.I = buf[0x10]
	c.R = buf[0x11]

	c.IX = binary.LittleEndian.Uint16(buf[0x12:])
	c.IY = binary.LittleEndian.Uint16(buf[0x14:])
	c.SP = binary.LittleEndian.Uint16(buf[0x16:])
	c.PC = binary.LittleEndian.Uint16(buf[0x18:])

	c.IFF1 = buf[0x1A] != 0
	c.IFF2 = buf[0x1B] != 0
	c.IM = buf[0x1C]
	c.Halted = buf[0x1D] != 0

	c.eiDelay = 0
	c.penalty = 0
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
