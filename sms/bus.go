package sms

// Bus glues Memory and IO into the CPU's bus interface. The Z80 only drives
// the low byte of the port address on the SMS, so the high byte is dropped
// here.
type Bus struct {
	mem *Memory
	io  *IO
}

// NewBus creates the system bus.
func NewBus(mem *Memory, io *IO) *Bus {
	return &Bus{mem: mem, io: io}
}

func (b *Bus) Fetch(addr uint16) uint8    { return b.mem.Read(addr) }
func (b *Bus) Read(addr uint16) uint8     { return b.mem.Read(addr) }
func (b *Bus) Write(addr uint16, v uint8) { b.mem.Write(addr, v) }
func (b *Bus) In(port uint16) uint8       { return b.io.In(uint8(port)) }
func (b *Bus) Out(port uint16, v uint8)   { b.io.Out(uint8(port), v) }
