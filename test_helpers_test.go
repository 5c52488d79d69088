package z80

import "testing"

// testBus is a flat 64KB RAM bus with recording IO ports.
type testBus struct {
	mem [0x10000]uint8

	inValues  map[uint16]uint8
	outPorts  []uint16
	outValues []uint8
}

func newTestBus(program []byte) *testBus {
	b := &testBus{inValues: make(map[uint16]uint8)}
	copy(b.mem[:], program)
	return b
}

func (b *testBus) Fetch(addr uint16) uint8    { return b.mem[addr] }
func (b *testBus) Read(addr uint16) uint8     { return b.mem[addr] }
func (b *testBus) Write(addr uint16, v uint8) { b.mem[addr] = v }

func (b *testBus) In(port uint16) uint8 {
	if v, ok := b.inValues[port]; ok {
		return v
	}
	return 0xFF
}

func (b *testBus) Out(port uint16, v uint8) {
	b.outPorts = append(b.outPorts, port)
	b.outValues = append(b.outValues, v)
}

// newTestCPU creates a CPU over a fresh bus seeded with the given program
// at address 0. SP is parked in high RAM so stack traffic is usable
// immediately.
func newTestCPU(t *testing.T, program ...byte) (*CPU, *testBus) {
	t.Helper()
	bus := newTestBus(program)
	cpu, err := New(bus)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cpu.SP = 0xDFF0
	return cpu, bus
}
