package sms

import (
	"bytes"
	"testing"

	emucore "github.com/user-none/eblitui/api"
)

// nopROM returns a two-bank ROM of NOPs so the CPU can free-run a frame.
func nopROM() []byte {
	return make([]byte, 2*bankSize)
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := NewMachine(nopROM(), RegionNTSC)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

func TestMachine_RunFrameCycles(t *testing.T) {
	m := newTestMachine(t)
	m.RunFrame()

	// One NTSC frame is CPUClockHz/FPS cycles, give or take instruction
	// overshoot at scanline edges.
	expected := uint64(NTSCTiming.CPUClockHz / NTSCTiming.FPS)
	got := m.CPU().TotalCycles
	if got < expected-300 || got > expected+300 {
		t.Errorf("frame cycles: expected ~%d, got %d", expected, got)
	}
}

func TestMachine_ScanlineCallback(t *testing.T) {
	m := newTestMachine(t)
	lines := 0
	last := -1
	m.Scanline = func(line int) {
		lines++
		last = line
	}
	m.RunFrame()

	if lines != NTSCTiming.Scanlines {
		t.Errorf("callbacks: expected %d, got %d", NTSCTiming.Scanlines, lines)
	}
	if last != NTSCTiming.Scanlines-1 {
		t.Errorf("last line: got %d", last)
	}
}

func TestMachine_AudioOutput(t *testing.T) {
	m := newTestMachine(t)
	m.RunFrame()

	// ~800 mono samples per NTSC frame, doubled to stereo.
	n := len(m.AudioSamples())
	if n < 1500 || n > 1700 {
		t.Errorf("samples: got %d", n)
	}
	if n%2 != 0 {
		t.Error("stereo output must be an even sample count")
	}
}

func TestMachine_PALTiming(t *testing.T) {
	m, err := NewMachine(nopROM(), RegionPAL)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if m.Timing().Scanlines != 313 {
		t.Errorf("scanlines: got %d", m.Timing().Scanlines)
	}

	m.SetRegion(RegionNTSC)
	if m.Region() != RegionNTSC || m.Timing().FPS != 60 {
		t.Error("SetRegion did not switch timing")
	}
}

func TestMachine_PauseNMI(t *testing.T) {
	m := newTestMachine(t)

	m.SetInput(0, 1<<7)
	if m.CPU().PC != 0x0066 {
		t.Errorf("pause press: PC=%04X", m.CPU().PC)
	}

	// Held pause must not retrigger.
	m.CPU().PC = 0x1000
	m.SetInput(0, 1<<7)
	if m.CPU().PC != 0x1000 {
		t.Error("held pause retriggered the NMI")
	}

	// Release and press again.
	m.SetInput(0, 0)
	m.SetInput(0, 1<<7)
	if m.CPU().PC != 0x0066 {
		t.Error("second press should trigger")
	}
}

func TestMachine_InputMapping(t *testing.T) {
	m := newTestMachine(t)
	m.SetInput(0, 1<<emucore.ButtonUp|1<<4)
	port1 := m.IO().Input.Port1
	if port1&0x01 != 0 || port1&0x10 != 0 {
		t.Errorf("Port1: got %02X", port1)
	}
}

type testIRQ struct{ pending bool }

func (s *testIRQ) Pending() bool { return s.pending }

func TestMachine_InterruptSource(t *testing.T) {
	m := newTestMachine(t)
	src := &testIRQ{pending: true}
	m.SetInterruptSource(src)

	cpu := m.CPU()
	cpu.IM = 1
	cpu.IFF1, cpu.IFF2 = true, true
	m.RunFrame()

	// A NOP ROM never re-enables interrupts, so acceptance shows as the
	// flip-flop staying clear.
	if cpu.IFF1 {
		t.Error("pending interrupt was never accepted")
	}
}

func TestMachine_SaveStateRoundTrip(t *testing.T) {
	m := newTestMachine(t)
	m.RunFrame()
	m.mem.Write(0xC100, 0xAB)
	m.mem.Write(0xFFFE, 1)

	state, err := m.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if len(state) != SerializeSize() {
		t.Fatalf("size: expected %d, got %d", SerializeSize(), len(state))
	}

	pc := m.CPU().PC
	m.mem.Write(0xC100, 0x00)
	m.CPU().Reset()

	if err := m.Deserialize(state); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if m.CPU().PC != pc {
		t.Errorf("PC: expected %04X, got %04X", pc, m.CPU().PC)
	}
	if m.mem.Read(0xC100) != 0xAB {
		t.Error("RAM not restored")
	}
	if m.mem.BankSlot(1) != 1 {
		t.Error("bank registers not restored")
	}

	second, err := m.Serialize()
	if err != nil {
		t.Fatalf("second serialize: %v", err)
	}
	if !bytes.Equal(state, second) {
		t.Error("round trip is not bit stable")
	}
}

func TestMachine_VerifyState(t *testing.T) {
	m := newTestMachine(t)
	state, _ := m.Serialize()

	if err := m.VerifyState(state[:10]); err == nil {
		t.Error("short state accepted")
	}

	bad := append([]byte(nil), state...)
	bad[0] = 'X'
	if err := m.VerifyState(bad); err == nil {
		t.Error("bad magic accepted")
	}

	bad = append([]byte(nil), state...)
	bad[14] ^= 0xFF
	if err := m.VerifyState(bad); err == nil {
		t.Error("wrong ROM CRC accepted")
	}

	bad = append([]byte(nil), state...)
	bad[stateHeaderSize+100] ^= 0xFF
	if err := m.VerifyState(bad); err == nil {
		t.Error("corrupted body accepted")
	}

	if err := m.VerifyState(state); err != nil {
		t.Errorf("valid state rejected: %v", err)
	}
}

func TestMachine_SRAM(t *testing.T) {
	m := newTestMachine(t)
	if !m.HasSRAM() {
		t.Fatal("SMS carts always expose SRAM")
	}

	data := make([]byte, cartRAMSize)
	data[0] = 0x12
	data[cartRAMSize-1] = 0x34
	m.SetSRAM(data)

	out := m.GetSRAM()
	if out[0] != 0x12 || out[cartRAMSize-1] != 0x34 {
		t.Error("SRAM round trip failed")
	}

	// The copy must be detached from machine state.
	out[0] = 0xFF
	if m.GetSRAM()[0] != 0x12 {
		t.Error("GetSRAM should return a copy")
	}
}

func TestMachine_MemoryInspection(t *testing.T) {
	m := newTestMachine(t)
	m.mem.Write(0xC000, 0x11)
	m.mem.Write(0xC001, 0x22)

	buf := make([]byte, 4)
	if n := m.ReadMemory(0, buf); n != 4 {
		t.Fatalf("read: got %d bytes", n)
	}
	if buf[0] != 0x11 || buf[1] != 0x22 {
		t.Errorf("buf: % X", buf)
	}

	// Reads clamp at the end of system RAM.
	if n := m.ReadMemory(systemRAM-2, buf); n != 2 {
		t.Errorf("clamped read: got %d bytes", n)
	}

	regions := m.MemoryMap()
	if len(regions) != 2 {
		t.Fatalf("regions: %+v", regions)
	}

	ram := m.ReadRegion(emucore.MemorySystemRAM)
	if len(ram) != systemRAM || ram[0] != 0x11 {
		t.Error("ReadRegion system RAM")
	}

	ram[5] = 0x99
	m.WriteRegion(emucore.MemorySystemRAM, ram)
	if m.mem.Read(0xC005) != 0x99 {
		t.Error("WriteRegion system RAM")
	}
}
