package sms

import "testing"

// bankedROM builds a ROM of n 16KB banks where every byte of a bank holds
// the bank number.
func bankedROM(n int) []byte {
	rom := make([]byte, n*bankSize)
	for bank := 0; bank < n; bank++ {
		for i := 0; i < bankSize; i++ {
			rom[bank*bankSize+i] = uint8(bank)
		}
	}
	return rom
}

func TestMemory_SegaDefaults(t *testing.T) {
	m := NewMemory(bankedROM(4))
	if m.Mapper() != MapperSega {
		t.Fatal("unknown ROM should get the Sega mapper")
	}
	if m.Read(0x0400) != 0 || m.Read(0x4000) != 1 || m.Read(0x8000) != 2 {
		t.Errorf("default banks: %d %d %d",
			m.Read(0x0400), m.Read(0x4000), m.Read(0x8000))
	}
}

func TestMemory_SegaBankSwitch(t *testing.T) {
	m := NewMemory(bankedROM(4))

	m.Write(0xFFFE, 3)
	if m.Read(0x4000) != 3 {
		t.Errorf("slot 1: expected bank 3, got %d", m.Read(0x4000))
	}
	if m.BankSlot(1) != 3 {
		t.Errorf("BankSlot: got %d", m.BankSlot(1))
	}

	// The first 1KB never banks.
	m.Write(0xFFFD, 2)
	if m.Read(0x0000) != 0 {
		t.Errorf("fixed region: expected bank 0, got %d", m.Read(0x0000))
	}
	if m.Read(0x0400) != 2 {
		t.Errorf("slot 0: expected bank 2, got %d", m.Read(0x0400))
	}
}

func TestMemory_BankMaskWraps(t *testing.T) {
	m := NewMemory(bankedROM(2))
	m.Write(0xFFFE, 5) // 5 & 1 = 1
	if m.Read(0x4000) != 1 {
		t.Errorf("expected wrap to bank 1, got %d", m.Read(0x4000))
	}
}

func TestMemory_ROMWritesIgnored(t *testing.T) {
	m := NewMemory(bankedROM(2))
	m.Write(0x1234, 0x99)
	if m.Read(0x1234) != 0 {
		t.Error("ROM should be read only")
	}
}

func TestMemory_CartRAM(t *testing.T) {
	m := NewMemory(bankedROM(4))

	// Slot 2 is ROM until $FFFC bit 3 maps cart RAM in.
	m.Write(0x8000, 0x55)
	if m.Read(0x8000) != 2 {
		t.Fatal("slot 2 should still be ROM")
	}

	m.Write(0xFFFC, 0x08)
	m.Write(0x8000, 0x55)
	if m.Read(0x8000) != 0x55 {
		t.Errorf("cart RAM page 0: got %02X", m.Read(0x8000))
	}

	// Bit 2 selects the second 16KB page.
	m.Write(0xFFFC, 0x0C)
	if m.Read(0x8000) == 0x55 {
		t.Error("page 1 should be distinct from page 0")
	}
	m.Write(0x8000, 0xAA)
	m.Write(0xFFFC, 0x08)
	if m.Read(0x8000) != 0x55 {
		t.Error("page 0 contents lost")
	}
}

func TestMemory_RAMMirror(t *testing.T) {
	m := NewMemory(bankedROM(2))
	m.Write(0xC123, 0x42)
	if m.Read(0xE123) != 0x42 {
		t.Error("RAM should mirror at $E000")
	}
	m.Write(0xE456, 0x24)
	if m.Read(0xC456) != 0x24 {
		t.Error("mirror writes should land in RAM")
	}
}

func TestMemory_Codemasters(t *testing.T) {
	m := NewMemory(bankedROM(4))
	m.mapper = MapperCodemasters
	m.bankSlot = [3]uint8{0, 1, 0}

	if m.Read(0x8000) != 0 {
		t.Error("slot 2 should start at bank 0")
	}

	// Bank registers sit at the slot bases.
	m.Write(0x0000, 3)
	if m.Read(0x0000) != 3 {
		t.Errorf("slot 0: expected bank 3, got %d", m.Read(0x0000))
	}
	m.Write(0x4000, 2)
	if m.Read(0x4000) != 2 {
		t.Errorf("slot 1: expected bank 2, got %d", m.Read(0x4000))
	}

	// No bank registers in RAM: $FFFD is plain storage.
	m.Write(0xFFFD, 7)
	if m.BankSlot(0) != 3 {
		t.Error("RAM write must not touch bank registers")
	}
	if m.Read(0xFFFD) != 7 {
		t.Error("RAM write lost")
	}
}

func TestMemory_MapperDetection(t *testing.T) {
	// Synthesize a ROM and register its CRC as Codemasters for the test.
	rom := bankedROM(2)
	crc := NewMemory(rom).ROMCRC32()
	romDatabase[crc] = ROMInfo{MapperCodemasters, RegionPAL}
	defer delete(romDatabase, crc)

	m := NewMemory(rom)
	if m.Mapper() != MapperCodemasters {
		t.Error("database mapper not applied")
	}
	if m.BankSlot(2) != 0 {
		t.Error("Codemasters slot 2 should default to bank 0")
	}

	if r, ok := DetectRegionFromROM(rom); !ok || r != RegionPAL {
		t.Errorf("region: %v ok=%t", r, ok)
	}
}
