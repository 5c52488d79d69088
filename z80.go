// Package z80 emulates a Z80 CPU with cycle counting, prefixed-opcode
// dispatch, the three maskable interrupt modes plus NMI, a pluggable timing
// layer, a breakpoint/trace debugger, and an optional decoded-instruction
// cache. The CPU owns no memory: every memory and IO access goes through a
// host-supplied Bus on the calling goroutine.
package z80

import "errors"

// ErrNoBus is returned by New when no bus is supplied.
var ErrNoBus = errors.New("z80: nil bus")

// Bus is the memory and IO capability the host supplies to the CPU.
// Fetch is used for opcode (M1) reads so hosts can distinguish them from
// data reads; most implementations simply forward it to Read.
//
// In should return 0xFF for unmapped ports and Out should ignore writes to
// unmapped ports.
type Bus interface {
	Fetch(addr uint16) uint8
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
	In(port uint16) uint8
	Out(port uint16, v uint8)
}

// CPU is a single Z80 core. All fields are exported so hosts and tests can
// inspect and seed state directly; instruction handlers, interrupt
// acceptance, and explicit SetReg calls are the only mutators during normal
// execution.
//
// A CPU is not safe for concurrent use. Emulating multiple CPUs (a main CPU
// plus a sound coprocessor) means one CPU value each.
type CPU struct {
	// Main register set.
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8

	// Shadow register set (EX AF,AF' / EXX).
	Ax, Fx uint8
	Bx, Cx uint8
	Dx, Ex uint8
	Hx, Lx uint8

	IX, IY uint16
	SP, PC uint16

	I, R uint8

	IFF1, IFF2 bool
	IM         uint8
	Halted     bool

	// TotalCycles accumulates every cycle consumed since Reset.
	TotalCycles uint64

	bus    Bus
	timing *TimingConfig
	debug  *Debugger
	opt    *Optimizer

	// branchTaken is set by conditional handlers when the alternate
	// (taken/repeating) cycle count applies.
	branchTaken bool

	// penalty accumulates wait-state and contention cycles added by the
	// timing layer during the current instruction.
	penalty int

	// eiDelay blocks maskable-interrupt acceptance until the instruction
	// after EI has completed.
	eiDelay uint8

	// disp holds the displacement byte for DDCB/FDCB handlers, which
	// receive it before their final opcode byte.
	disp int8
}

// New creates a CPU attached to the given bus and resets it.
func New(bus Bus) (*CPU, error) {
	if bus == nil {
		return nil, ErrNoBus
	}
	c := &CPU{bus: bus}
	c.Reset()
	return c, nil
}

// Reset puts the CPU in its power-on state: SP=0xFFFF, everything else
// zeroed, interrupts disabled, mode 0, not halted.
func (c *CPU) Reset() {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0, 0, 0
	c.Ax, c.Fx, c.Bx, c.Cx, c.Dx, c.Ex, c.Hx, c.Lx = 0, 0, 0, 0, 0, 0, 0, 0
	c.IX, c.IY = 0, 0
	c.SP = 0xFFFF
	c.PC = 0
	c.I, c.R = 0, 0
	c.IFF1, c.IFF2 = false, false
	c.IM = 0
	c.Halted = false
	c.TotalCycles = 0
	c.branchTaken = false
	c.penalty = 0
	c.eiDelay = 0
}

// SetTiming replaces the timing configuration. Register state is never
// touched; nil restores flat base-table timing.
func (c *CPU) SetTiming(t *TimingConfig) { c.timing = t }

// Timing returns the current timing configuration, or nil.
func (c *CPU) Timing() *TimingConfig { return c.timing }

// fetch reads the next opcode byte, advancing PC and the refresh register.
func (c *CPU) fetch() uint8 {
	v := c.bus.Fetch(c.PC)
	if c.timing != nil {
		c.penalty += c.timing.memoryPenalty(c.PC)
	}
	c.PC++
	c.incR()
	return v
}

// operand reads the next instruction operand byte, advancing PC.
// Unlike fetch it does not touch the refresh register.
func (c *CPU) operand() uint8 {
	v := c.bus.Read(c.PC)
	if c.timing != nil {
		c.penalty += c.timing.memoryPenalty(c.PC)
	}
	c.PC++
	return v
}

// operand16 reads a little-endian 16-bit operand.
func (c *CPU) operand16() uint16 {
	lo := c.operand()
	hi := c.operand()
	return uint16(hi)<<8 | uint16(lo)
}

// readMem reads a data byte, applying timing penalties and notifying the
// debugger of the access.
func (c *CPU) readMem(addr uint16) uint8 {
	v := c.bus.Read(addr)
	if c.timing != nil {
		c.penalty += c.timing.memoryPenalty(addr)
	}
	if c.debug != nil {
		c.debug.onAccess(BreakMemRead, addr, v)
	}
	return v
}

// readMem16 reads a little-endian word.
func (c *CPU) readMem16(addr uint16) uint16 {
	lo := c.readMem(addr)
	hi := c.readMem(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// writeMem writes a data byte, applying timing penalties and notifying the
// debugger of the access.
func (c *CPU) writeMem(addr uint16, v uint8) {
	if c.debug != nil {
		c.debug.onAccess(BreakMemWrite, addr, v)
	}
	if c.timing != nil {
		c.penalty += c.timing.memoryPenalty(addr)
	}
	c.bus.Write(addr, v)
}

// writeMem16 writes a little-endian word.
func (c *CPU) writeMem16(addr, v uint16) {
	c.writeMem(addr, uint8(v))
	c.writeMem(addr+1, uint8(v>>8))
}

// readIO reads an IO port, applying timing penalties and notifying the
// debugger.
func (c *CPU) readIO(port uint16) uint8 {
	v := c.bus.In(port)
	if c.timing != nil {
		c.penalty += c.timing.ioPenalty(port)
	}
	if c.debug != nil {
		c.debug.onAccess(BreakIORead, port, v)
	}
	return v
}

// writeIO writes an IO port, applying timing penalties and notifying the
// debugger.
func (c *CPU) writeIO(port uint16, v uint8) {
	if c.debug != nil {
		c.debug.onAccess(BreakIOWrite, port, v)
	}
	if c.timing != nil {
		c.penalty += c.timing.ioPenalty(port)
	}
	c.bus.Out(port, v)
}

// push pushes a word on the stack, low byte at the lower address, SP
// pre-decremented by 2.
func (c *CPU) push(v uint16) {
	c.SP -= 2
	c.writeMem(c.SP, uint8(v))
	c.writeMem(c.SP+1, uint8(v>>8))
}

// pop pops a word off the stack.
func (c *CPU) pop() uint16 {
	v := c.readMem16(c.SP)
	c.SP += 2
	return v
}

// Step executes a single instruction and returns the cycles it consumed.
// While halted the CPU burns 4 cycles per step without advancing PC; only
// interrupt acceptance leaves the halt state.
func (c *CPU) Step() int {
	pc := c.PC
	if c.debug != nil {
		c.debug.beforeInstruction(pc)
		if c.debug.breakHit {
			// Halted by the debugger before execution: the
			// instruction at pc has not run and no cycles pass
			// until the host continues or steps.
			return 0
		}
	}

	if c.Halted {
		return c.retire(haltCycles)
	}

	if c.opt != nil && c.opt.Enabled {
		if cycles, ok := c.opt.run(pc); ok {
			return cycles
		}
	}

	in, meta := c.decode()

	// The cache snapshot must be taken before the handler runs: an
	// instruction that overwrites its own encoding has to be cached as
	// it executed, not as memory looks afterwards.
	caching := c.opt != nil && c.opt.Enabled
	var snap [4]uint8
	var snapLen uint8
	if caching {
		snap, snapLen = c.opt.snapshot(pc, in)
	}

	c.branchTaken = false
	in.handler(c)
	cycles := int(in.cycles)
	if c.branchTaken && in.altCycles != 0 {
		cycles = int(in.altCycles)
	}
	if c.timing != nil {
		cycles = c.timing.overrideCycles(meta.table, meta.opcode, cycles, c.branchTaken)
	}

	if caching {
		c.opt.record(pc, in, meta, snap, snapLen)
	}
	return c.retire(cycles)
}

// retire finishes an instruction or halt step: folds in access penalties,
// winds down the EI delay, advances the cycle counter, and fires the
// periodic sync hook.
func (c *CPU) retire(cycles int) int {
	cycles += c.penalty
	c.penalty = 0
	if c.eiDelay > 0 {
		c.eiDelay--
	}
	c.TotalCycles += uint64(cycles)
	if c.timing != nil {
		c.timing.tick(cycles)
	}
	return cycles
}

// Execute runs instructions until at least the requested number of cycles
// has been consumed and returns the actual total, which may overshoot by up
// to one instruction. A zero or negative budget executes nothing. If an
// attached debugger halts the CPU, Execute returns early with whatever was
// consumed so far.
func (c *CPU) Execute(cycles int) int {
	consumed := 0
	for consumed < cycles {
		n := c.Step()
		if n == 0 {
			break
		}
		consumed += n
	}
	return consumed
}

// intAccepted reports whether a maskable interrupt would currently be
// accepted. EI enables acceptance only after the following instruction.
func (c *CPU) intAccepted() bool {
	return c.IFF1 && c.eiDelay == 0
}

// INT requests a maskable interrupt with the given data-bus byte. It
// returns the cycles consumed servicing the interrupt, or 0 if the request
// was ignored (IFF1 clear or EI delay pending), in which case no state
// changes.
func (c *CPU) INT(data uint8) int {
	if !c.intAccepted() {
		return 0
	}
	c.Halted = false
	c.IFF1, c.IFF2 = false, false
	c.incR()

	var cycles int
	switch c.IM {
	case 1:
		c.push(c.PC)
		c.PC = 0x0038
		cycles = 13
	case 2:
		addr := uint16(c.I)<<8 | uint16(data)
		target := c.readMem16(addr)
		c.push(c.PC)
		c.PC = target
		cycles = 19
	default:
		// Mode 0 executes the byte placed on the bus. Anything but an
		// RST pattern degenerates to a one-byte no-op.
		if data&0xC7 == 0xC7 {
			c.push(c.PC)
			c.PC = uint16(data & 0x38)
			cycles = 13
		} else {
			cycles = 12
		}
	}

	if c.debug != nil {
		c.debug.onAccess(BreakInterrupt, c.PC, data)
	}
	return c.retireInterrupt(cycles)
}

// NMI delivers a non-maskable interrupt. It is always accepted: IFF1 is
// copied to IFF2 and cleared, PC is pushed, and execution continues at
// 0x0066. Returns the 11 cycles the response consumes.
func (c *CPU) NMI() int {
	c.Halted = false
	c.IFF2 = c.IFF1
	c.IFF1 = false
	c.incR()
	c.push(c.PC)
	c.PC = 0x0066

	if c.debug != nil {
		c.debug.onAccess(BreakInterrupt, c.PC, 0)
	}
	return c.retireInterrupt(11)
}

// retireInterrupt accounts for an interrupt response the way retire does
// for an instruction, without touching the EI delay.
func (c *CPU) retireInterrupt(cycles int) int {
	cycles += c.penalty
	c.penalty = 0
	c.TotalCycles += uint64(cycles)
	if c.timing != nil {
		c.timing.tick(cycles)
	}
	return cycles
}
