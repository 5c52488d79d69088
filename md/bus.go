// Package md runs a Z80 as the Mega Drive sound coprocessor: 8KB of local
// RAM, the FM and PSG sound chips memory-mapped into the address space, a
// banked window onto the 68K bus, and the BUSREQ/RESET gating the 68K side
// uses to take the Z80 on and off the bus.
package md

import (
	"github.com/user-none/go-chip-sn76489"
)

// FM is the YM2612 register interface. The package ships no FM synth; a
// host attaches one here. A nil FM reads as not-busy and swallows writes.
type FM interface {
	ReadPort(port uint8) uint8
	WritePort(port uint8, v uint8)
}

// Host68K is the 68K side of the banked window at 0x8000-0xFFFF. A nil
// host reads as open bus.
type Host68K interface {
	ReadByte(addr uint32) uint8
	WriteByte(addr uint32, v uint8)
}

// Bus is the Mega Drive Z80 address space:
//
//	0x0000-0x1FFF  Z80 RAM (8KB)
//	0x2000-0x3FFF  RAM mirror
//	0x4000-0x5FFF  YM2612 (four ports, mirrored)
//	0x6000         bank register (write only, one bit per write)
//	0x7F11         PSG
//	0x8000-0xFFFF  68K bank window (32KB)
//
// Everything unmapped reads 0xFF. The Z80 IO space is not wired to
// anything on this machine.
type Bus struct {
	ram  [0x2000]uint8
	bank uint16 // 9-bit shift register, 68K address bits 15-23

	fm   FM
	psg  *sn76489.SN76489
	host Host68K
}

// NewBus builds the coprocessor address space. Any of the peripherals may
// be nil.
func NewBus(fm FM, psg *sn76489.SN76489, host Host68K) *Bus {
	return &Bus{fm: fm, psg: psg, host: host}
}

func (b *Bus) Fetch(addr uint16) uint8 { return b.Read(addr) }

func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return b.ram[addr&0x1FFF]
	case addr < 0x6000:
		if b.fm != nil {
			return b.fm.ReadPort(uint8(addr & 0x03))
		}
		return 0x00 // YM2612 status with busy clear
	case addr < 0x8000:
		// Bank register and the PSG are write only.
		return 0xFF
	default:
		if b.host != nil {
			return b.host.ReadByte(b.bankedAddr(addr))
		}
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x4000:
		b.ram[addr&0x1FFF] = v
	case addr < 0x6000:
		if b.fm != nil {
			b.fm.WritePort(uint8(addr&0x03), v)
		}
	case addr == 0x6000:
		// One bit per write, shifting toward bit 8. Nine writes set the
		// full window base.
		b.bank = (b.bank >> 1) | (uint16(v&1) << 8)
	case addr == 0x7F11:
		if b.psg != nil {
			b.psg.Write(v)
		}
	case addr < 0x8000:
		// Unused and reserved regions ignore writes.
	default:
		if b.host != nil {
			b.host.WriteByte(b.bankedAddr(addr), v)
		}
	}
}

// In reads an IO port. The Mega Drive Z80 has no IO devices; everything is
// memory mapped.
func (b *Bus) In(port uint16) uint8 { return 0xFF }

// Out writes an IO port. No-op on this machine.
func (b *Bus) Out(port uint16, v uint8) {}

// bankedAddr translates a window address into the 24-bit 68K address.
func (b *Bus) bankedAddr(addr uint16) uint32 {
	return uint32(b.bank)<<15 | uint32(addr&0x7FFF)
}

// Bank returns the current 9-bit bank register value.
func (b *Bus) Bank() uint16 { return b.bank }

// SetBank loads the bank register directly, for state restore.
func (b *Bus) SetBank(bank uint16) { b.bank = bank & 0x1FF }

// RAM exposes the 8KB of Z80 RAM for state capture.
func (b *Bus) RAM() *[0x2000]uint8 { return &b.ram }
