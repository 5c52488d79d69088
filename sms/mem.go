package sms

import "hash/crc32"

// MapperType identifies the cartridge memory mapper.
type MapperType int

const (
	MapperSega        MapperType = iota // bank registers at $FFFC-$FFFF
	MapperCodemasters                   // bank registers at $0000/$4000/$8000
)

const (
	bankSize    = 0x4000
	systemRAM   = 0x2000 // 8KB at $C000, mirrored to $E000
	cartRAMSize = 0x8000 // two 16KB pages of battery-backed RAM
)

// Memory is the SMS address space: cartridge ROM behind a bank mapper,
// optional cartridge RAM in slot 2, and 8KB of system RAM mirrored across
// the top of the map.
type Memory struct {
	rom        []uint8
	ram        [systemRAM]uint8
	cartRAM    [cartRAMSize]uint8
	bankSlot   [3]uint8
	ramControl uint8 // $FFFC, Sega mapper only
	bankMask   uint8
	mapper     MapperType
	romCRC     uint32
}

// NewMemory wraps a ROM image. The mapper type comes from the ROM database;
// unknown ROMs get the standard Sega mapper.
func NewMemory(rom []byte) *Memory {
	m := &Memory{rom: make([]uint8, len(rom))}
	copy(m.rom, rom)
	m.romCRC = crc32.ChecksumIEEE(rom)

	// Bank numbers wrap at the next power of two of the ROM's bank count.
	banks := (len(rom) + bankSize - 1) / bankSize
	if banks == 0 {
		banks = 1
	}
	pow2 := 1
	for pow2 < banks {
		pow2 <<= 1
	}
	m.bankMask = uint8(pow2 - 1)

	if info, ok := romDatabase[m.romCRC]; ok {
		m.mapper = info.Mapper
	}

	m.bankSlot[0] = 0
	m.bankSlot[1] = 1
	if m.mapper == MapperCodemasters {
		// Codemasters games start with bank 0 visible in slot 2.
		m.bankSlot[2] = 0
	} else {
		m.bankSlot[2] = 2
	}
	return m
}

// romByte resolves a banked ROM address. Reads past the image return 0xFF,
// matching an open bus.
func (m *Memory) romByte(slot int, offset uint16) uint8 {
	addr := uint32(m.bankSlot[slot]&m.bankMask)*bankSize + uint32(offset)
	if addr < uint32(len(m.rom)) {
		return m.rom[addr]
	}
	return 0xFF
}

// Read returns the byte at addr through the active mapper.
func (m *Memory) Read(addr uint16) uint8 {
	if m.mapper == MapperCodemasters {
		return m.readCodemasters(addr)
	}
	return m.readSega(addr)
}

// Write stores a byte at addr through the active mapper.
func (m *Memory) Write(addr uint16, v uint8) {
	if m.mapper == MapperCodemasters {
		m.writeCodemasters(addr, v)
		return
	}
	m.writeSega(addr, v)
}

// Sega mapper layout:
//
//	$0000-$03FF  ROM, first 1KB of bank 0, never banked
//	$0400-$3FFF  slot 0, bank register $FFFD
//	$4000-$7FFF  slot 1, bank register $FFFE
//	$8000-$BFFF  slot 2, bank register $FFFF, or cartridge RAM via $FFFC
//	$C000-$FFFF  8KB system RAM, mirrored
func (m *Memory) readSega(addr uint16) uint8 {
	switch {
	case addr < 0x0400:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x4000:
		return m.romByte(0, addr)
	case addr < 0x8000:
		return m.romByte(1, addr-0x4000)
	case addr < 0xC000:
		if m.ramControl&0x08 != 0 {
			return m.cartRAM[m.cartRAMAddr(addr)]
		}
		return m.romByte(2, addr-0x8000)
	default:
		return m.ram[addr&(systemRAM-1)]
	}
}

func (m *Memory) writeSega(addr uint16, v uint8) {
	switch {
	case addr < 0x8000:
		// ROM, writes ignored
	case addr < 0xC000:
		if m.ramControl&0x08 != 0 {
			m.cartRAM[m.cartRAMAddr(addr)] = v
		}
	default:
		m.ram[addr&(systemRAM-1)] = v
		switch addr {
		case 0xFFFC:
			m.ramControl = v
		case 0xFFFD:
			m.bankSlot[0] = v
		case 0xFFFE:
			m.bankSlot[1] = v
		case 0xFFFF:
			m.bankSlot[2] = v
		}
	}
}

// cartRAMAddr maps a slot 2 address into cartridge RAM. Bit 2 of $FFFC
// selects which of the two 16KB pages is visible.
func (m *Memory) cartRAMAddr(addr uint16) uint32 {
	page := uint32(m.ramControl>>2) & 1
	return page*bankSize + uint32(addr-0x8000)
}

// Codemasters mapper layout: all three slots bank the full 16KB, and the
// bank registers sit at the base of each slot instead of in RAM.
func (m *Memory) readCodemasters(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return m.romByte(0, addr)
	case addr < 0x8000:
		return m.romByte(1, addr-0x4000)
	case addr < 0xC000:
		return m.romByte(2, addr-0x8000)
	default:
		return m.ram[addr&(systemRAM-1)]
	}
}

func (m *Memory) writeCodemasters(addr uint16, v uint8) {
	switch addr {
	case 0x0000:
		m.bankSlot[0] = v
	case 0x4000:
		m.bankSlot[1] = v
	case 0x8000:
		m.bankSlot[2] = v
	default:
		if addr >= 0xC000 {
			m.ram[addr&(systemRAM-1)] = v
		}
	}
}

// Mapper returns the active mapper type.
func (m *Memory) Mapper() MapperType { return m.mapper }

// BankSlot returns the bank number currently mapped into a slot.
func (m *Memory) BankSlot(slot int) uint8 { return m.bankSlot[slot] }

// ROMCRC32 returns the checksum of the loaded ROM, used to pair save states
// with the ROM they were taken from.
func (m *Memory) ROMCRC32() uint32 { return m.romCRC }
