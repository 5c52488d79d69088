package sms

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/go-chip-sn76489"
	"github.com/user-none/go-core-z80"
)

// Compile-time interface checks. The Machine carries no video hardware, so
// it implements the state, save and memory surfaces but not the full
// frontend emulator interface.
var _ emucore.SaveStater = (*Machine)(nil)
var _ emucore.BatterySaver = (*Machine)(nil)
var _ emucore.MemoryInspector = (*Machine)(nil)
var _ emucore.MemoryMapper = (*Machine)(nil)

const sampleRate = 48000

// Save state container constants.
const (
	stateVersion    = 1
	stateMagic      = "Z80CoreState"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// InterruptSource drives the CPU's INT line. The SMS line is level
// triggered, so Pending is polled after every CPU slice rather than edge
// reported.
type InterruptSource interface {
	Pending() bool
}

// Machine is a headless Master System: CPU, mapper, port decoder and PSG,
// clocked in scanline slices. Video is the host's problem; it can attach a
// VideoPort for the IO traffic and an InterruptSource for the INT line.
type Machine struct {
	cpu *z80.CPU
	mem *Memory
	io  *IO
	psg *sn76489.SN76489
	opt *z80.Optimizer

	region    Region
	timing    RegionTiming
	scanlines int

	// cyclesPerScanlineFP keeps the fractional scanline pace in 16.16
	// fixed point so frames stay cycle exact over time.
	cyclesPerScanlineFP int

	irq InterruptSource

	// Scanline, when set, is called once per scanline with its index,
	// after the CPU has run that line's budget.
	Scanline func(line int)

	pausePrev bool

	frameSamples []float32
	audioBuffer  []int16
}

// NewMachine builds a machine around a ROM image. The region argument wins
// over database detection so hosts can force PAL.
func NewMachine(rom []byte, region Region) (*Machine, error) {
	mem := NewMemory(rom)
	timing := TimingForRegion(region)

	samplesPerFrame := sampleRate / timing.FPS
	psg := sn76489.New(timing.CPUClockHz, sampleRate, samplesPerFrame*2, sn76489.Sega)

	io := NewIO(psg, DetectNationalityFromROM(rom))
	cpu, err := z80.New(NewBus(mem, io))
	if err != nil {
		return nil, err
	}

	m := &Machine{
		cpu:          cpu,
		mem:          mem,
		io:           io,
		psg:          psg,
		opt:          z80.NewOptimizer(cpu),
		region:       region,
		timing:       timing,
		scanlines:    timing.Scanlines,
		frameSamples: make([]float32, 0, 1024),
		audioBuffer:  make([]int16, 0, 2048),
	}
	m.cyclesPerScanlineFP = (timing.CPUClockHz * 65536) / timing.FPS / timing.Scanlines
	m.cpu.SetTiming(z80.NewTimingConfig(z80.PlatformMasterSystem))

	// PSG writes land on $40-$7F; route them straight to the port decoder
	// so cached IO instructions skip generic bus dispatch.
	m.opt.AddFastPort(z80.FastPort{
		Lo: 0x40, Hi: 0x7F,
		Out: func(port uint16, v uint8) { io.Out(uint8(port), v) },
	})

	return m, nil
}

// CPU exposes the core for debugger and tracing attachment.
func (m *Machine) CPU() *z80.CPU { return m.cpu }

// IO exposes the port decoder so hosts can attach a VideoPort and feed
// controller input.
func (m *Machine) IO() *IO { return m.io }

// Optimizer exposes the decode cache layer.
func (m *Machine) Optimizer() *z80.Optimizer { return m.opt }

// SetInterruptSource attaches the INT line driver. Pass nil to detach.
func (m *Machine) SetInterruptSource(s InterruptSource) { m.irq = s }

// Region returns the active region.
func (m *Machine) Region() Region { return m.region }

// Timing returns the active region timing.
func (m *Machine) Timing() RegionTiming { return m.timing }

// SetRegion switches the machine's region timing in place.
func (m *Machine) SetRegion(region Region) {
	m.region = region
	m.timing = TimingForRegion(region)
	m.scanlines = m.timing.Scanlines
	m.cyclesPerScanlineFP = (m.timing.CPUClockHz * 65536) / m.timing.FPS / m.timing.Scanlines
}

// checkInterrupt polls the level-triggered INT line and returns the cycles
// the response consumed, if any.
func (m *Machine) checkInterrupt() int {
	if m.irq != nil && m.irq.Pending() {
		return m.cpu.INT(0xFF)
	}
	return 0
}

// RunFrame executes one frame of emulation in scanline slices and converts
// the frame's PSG output to 16-bit stereo PCM.
func (m *Machine) RunFrame() {
	m.frameSamples = m.frameSamples[:0]
	m.audioBuffer = m.audioBuffer[:0]

	targetFP := 0
	prevTarget := 0
	for line := 0; line < m.scanlines; line++ {
		targetFP += m.cyclesPerScanlineFP
		target := targetFP >> 16
		budget := target - prevTarget
		prevTarget = target

		consumed := m.checkInterrupt()
		for consumed < budget {
			n := m.cpu.Execute(budget - consumed)
			if n == 0 {
				// Debugger stopped the CPU; abandon the frame.
				return
			}
			consumed += n + m.checkInterrupt()
		}

		if m.Scanline != nil {
			m.Scanline(line)
		}

		m.psg.GenerateSamples(budget)
		buffer, count := m.psg.GetBuffer()
		if count > 0 {
			m.frameSamples = append(m.frameSamples, buffer[:count]...)
		}
	}

	// Mono PSG duplicated to both channels, attenuated so the doubled
	// signal does not read louder than the hardware.
	for _, s := range m.frameSamples {
		v := int16(s * 32767 * 0.5)
		m.audioBuffer = append(m.audioBuffer, v, v)
	}
}

// AudioSamples returns the PCM generated by the last RunFrame.
func (m *Machine) AudioSamples() []int16 { return m.audioBuffer }

// SetInput unpacks a frontend button bitmask for the given player. A rising
// edge on the pause bit delivers the console's pause NMI.
func (m *Machine) SetInput(player int, buttons uint32) {
	up := buttons&(1<<emucore.ButtonUp) != 0
	down := buttons&(1<<emucore.ButtonDown) != 0
	left := buttons&(1<<emucore.ButtonLeft) != 0
	right := buttons&(1<<emucore.ButtonRight) != 0
	btn1 := buttons&(1<<4) != 0
	btn2 := buttons&(1<<5) != 0

	switch player {
	case 0:
		m.io.Input.SetP1(up, down, left, right, btn1, btn2)
		pause := buttons&(1<<7) != 0
		if pause && !m.pausePrev {
			m.cpu.NMI()
		}
		m.pausePrev = pause
	case 1:
		m.io.Input.SetP2(up, down, left, right, btn1, btn2)
	}
}

// SerializeSize returns the byte size of a machine save state.
func SerializeSize() int {
	return stateHeaderSize +
		z80.SerializeSize +
		systemRAM +
		cartRAMSize +
		3 + // bankSlot
		1 + // ramControl
		sn76489.SerializeSize +
		3 // Port1, Port2, ioControl
}

// Serialize captures the complete machine state into a self-describing
// container: magic, version, ROM CRC and a CRC over the state body.
func (m *Machine) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], m.mem.ROMCRC32())

	offset := stateHeaderSize
	if _, err := m.cpu.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += z80.SerializeSize

	copy(data[offset:], m.mem.ram[:])
	offset += systemRAM
	copy(data[offset:], m.mem.cartRAM[:])
	offset += cartRAMSize
	copy(data[offset:], m.mem.bankSlot[:])
	offset += 3
	data[offset] = m.mem.ramControl
	offset++

	m.psg.Serialize(data[offset:])
	offset += sn76489.SerializeSize

	data[offset] = m.io.Input.Port1
	data[offset+1] = m.io.Input.Port2
	data[offset+2] = m.io.ioControl

	binary.LittleEndian.PutUint32(data[18:22], crc32.ChecksumIEEE(data[stateHeaderSize:]))
	return data, nil
}

// Deserialize restores machine state captured by Serialize. The region
// setting is deliberately not part of the state.
func (m *Machine) Deserialize(data []byte) error {
	if err := m.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	if err := m.cpu.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += z80.SerializeSize

	copy(m.mem.ram[:], data[offset:offset+systemRAM])
	offset += systemRAM
	copy(m.mem.cartRAM[:], data[offset:offset+cartRAMSize])
	offset += cartRAMSize
	copy(m.mem.bankSlot[:], data[offset:offset+3])
	offset += 3
	m.mem.ramControl = data[offset]
	offset++

	m.psg.Deserialize(data[offset:])
	offset += sn76489.SerializeSize

	m.io.Input.Port1 = data[offset]
	m.io.Input.Port2 = data[offset+1]
	m.io.ioControl = data[offset+2]

	// Cached decodes may straddle remapped banks now.
	m.opt.Clear()
	return nil
}

// VerifyState validates a save state without loading it.
func (m *Machine) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.New("save state too short")
	}
	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}
	if binary.LittleEndian.Uint16(data[12:14]) > stateVersion {
		return errors.New("unsupported save state version")
	}
	if binary.LittleEndian.Uint32(data[14:18]) != m.mem.ROMCRC32() {
		return errors.New("save state is for a different ROM")
	}
	if binary.LittleEndian.Uint32(data[18:22]) != crc32.ChecksumIEEE(data[stateHeaderSize:]) {
		return errors.New("save state data is corrupted")
	}
	return nil
}

// HasSRAM reports battery-backed save support. The 32KB cartridge RAM is
// always present on the SMS mapper.
func (m *Machine) HasSRAM() bool { return true }

// GetSRAM returns a copy of the cartridge RAM.
func (m *Machine) GetSRAM() []byte {
	out := make([]byte, cartRAMSize)
	copy(out, m.mem.cartRAM[:])
	return out
}

// SetSRAM loads cartridge RAM contents.
func (m *Machine) SetSRAM(data []byte) {
	copy(m.mem.cartRAM[:], data)
}

// ReadMemory reads from the flat inspection address space into buf and
// returns the bytes read. 0x0000-0x1FFF maps to system RAM.
func (m *Machine) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur >= systemRAM {
			break
		}
		buf[i] = m.mem.ram[cur]
		count++
	}
	return count
}

// MemoryMap lists the inspectable memory regions.
func (m *Machine) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: systemRAM},
		{Type: emucore.MemorySaveRAM, Size: cartRAMSize},
	}
}

// ReadRegion returns a copy of a memory region.
func (m *Machine) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		out := make([]byte, systemRAM)
		copy(out, m.mem.ram[:])
		return out
	case emucore.MemorySaveRAM:
		return m.GetSRAM()
	default:
		return nil
	}
}

// WriteRegion replaces the contents of a memory region.
func (m *Machine) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		copy(m.mem.ram[:], data)
	case emucore.MemorySaveRAM:
		m.SetSRAM(data)
	}
}
