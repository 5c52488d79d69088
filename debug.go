package z80

import (
	"fmt"
	"strings"
)

// MaxBreakpoints bounds the breakpoint set. Add returns -1 once full.
const MaxBreakpoints = 64

// TraceCapacity is the number of entries the circular trace retains.
const TraceCapacity = 1024

// BreakKind classifies what event a breakpoint watches.
type BreakKind uint8

const (
	BreakExecution BreakKind = iota
	BreakMemRead
	BreakMemWrite
	BreakIORead
	BreakIOWrite
	BreakInterrupt
)

var breakKindNames = [...]string{"exec", "mem-read", "mem-write", "io-read", "io-write", "interrupt"}

// BreakCondition refines a breakpoint beyond an address match. The observed
// value is the current PC for execution breakpoints and the transferred byte
// for access breakpoints.
type BreakCondition uint8

const (
	CondAlways BreakCondition = iota
	CondEquals
	CondNotEquals
	CondGreater
	CondLess
	CondMaskMatch
)

// Breakpoint watches an address range for an event kind. IDs are assigned
// monotonically and remain stable; positions in the set do not (removal
// swaps with the last element).
type Breakpoint struct {
	ID          int
	Kind        BreakKind
	Start, End  uint16
	Condition   BreakCondition
	Value       uint16
	Mask        uint16
	Enabled     bool
	OneShot     bool
	Description string
}

func (bp *Breakpoint) contains(addr uint16) bool {
	return addr >= bp.Start && addr <= bp.End
}

func (bp *Breakpoint) match(v uint16) bool {
	switch bp.Condition {
	case CondEquals:
		return v == bp.Value
	case CondNotEquals:
		return v != bp.Value
	case CondGreater:
		return v > bp.Value
	case CondLess:
		return v < bp.Value
	case CondMaskMatch:
		return v&bp.Mask == bp.Value&bp.Mask
	default:
		return true
	}
}

// TraceEntry is one retained snapshot of pre-execution CPU state plus the
// instruction about to run.
type TraceEntry struct {
	PC     uint16
	Bytes  [4]uint8
	Length uint8
	Cycles uint8
	AF, BC uint16
	DE, HL uint16
	IX, IY uint16
	SP     uint16
	Text   string
}

// Observer receives debugger notifications. Both methods are called
// synchronously on the goroutine driving the CPU, before the instruction at
// the reported location executes; implementations must not retain the
// breakpoint pointer past the call.
type Observer interface {
	BreakpointHit(c *CPU, bp *Breakpoint)
	TraceCaptured(e *TraceEntry)
}

// Debugger attaches breakpoints, stepping control and an execution trace to
// one CPU. Create one with NewDebugger; it hooks itself into the CPU's
// fetch and access paths until Detach.
type Debugger struct {
	cpu *CPU

	breakpoints []Breakpoint
	nextID      int

	observer Observer

	stepping bool
	breakHit bool
	resume   bool // exempt the pending instruction from evaluation

	stepOverActive bool
	stepOverTarget uint16

	stepOutActive bool
	stepOutSP     uint16
	prevWasRet    bool

	traceEnabled bool
	trace        []TraceEntry // ring of TraceCapacity
	traceHead    int          // next write position
	traceCount   int
}

// NewDebugger creates a debugger bound to the CPU.
func NewDebugger(c *CPU) *Debugger {
	d := &Debugger{
		cpu:         c,
		breakpoints: make([]Breakpoint, 0, MaxBreakpoints),
		trace:       make([]TraceEntry, TraceCapacity),
	}
	c.debug = d
	return d
}

// Detach unhooks the debugger from its CPU.
func (d *Debugger) Detach() {
	if d.cpu != nil && d.cpu.debug == d {
		d.cpu.debug = nil
	}
}

// SetObserver registers the notification sink. Pass nil to clear.
func (d *Debugger) SetObserver(o Observer) { d.observer = o }

// Add inserts a breakpoint, assigning its ID and enabling it. It returns
// the ID, or -1 if the set is at capacity.
func (d *Debugger) Add(bp Breakpoint) int {
	if len(d.breakpoints) >= MaxBreakpoints {
		return -1
	}
	bp.ID = d.nextID
	d.nextID++
	bp.Enabled = true
	if bp.End < bp.Start {
		bp.End = bp.Start
	}
	d.breakpoints = append(d.breakpoints, bp)
	return bp.ID
}

// AddBreakpoint inserts a simple always-firing breakpoint at one address.
func (d *Debugger) AddBreakpoint(kind BreakKind, addr uint16) int {
	return d.Add(Breakpoint{Kind: kind, Start: addr, End: addr})
}

// Remove deletes a breakpoint by ID, compacting the set by swapping the
// last element into the hole. Returns false for an unknown ID.
func (d *Debugger) Remove(id int) bool {
	for i := range d.breakpoints {
		if d.breakpoints[i].ID == id {
			last := len(d.breakpoints) - 1
			d.breakpoints[i] = d.breakpoints[last]
			d.breakpoints = d.breakpoints[:last]
			return true
		}
	}
	return false
}

// Enable sets a breakpoint's enabled flag. Returns false for an unknown ID.
func (d *Debugger) Enable(id int, enabled bool) bool {
	for i := range d.breakpoints {
		if d.breakpoints[i].ID == id {
			d.breakpoints[i].Enabled = enabled
			return true
		}
	}
	return false
}

// Breakpoint returns a copy of the breakpoint with the given ID.
func (d *Debugger) Breakpoint(id int) (Breakpoint, bool) {
	for i := range d.breakpoints {
		if d.breakpoints[i].ID == id {
			return d.breakpoints[i], true
		}
	}
	return Breakpoint{}, false
}

// Breakpoints returns a copy of the current breakpoint set.
func (d *Debugger) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(d.breakpoints))
	copy(out, d.breakpoints)
	return out
}

// ShouldBreak reports whether a breakpoint or step condition has fired.
// It stays set until Continue or one of the Step methods clears it.
func (d *Debugger) ShouldBreak() bool { return d.breakHit }

// Continue resumes free running: stepping mode and any pending step-over or
// step-out state are cleared. The instruction the debugger stopped on runs
// without being re-evaluated, so a still-matching breakpoint does not
// immediately re-fire.
func (d *Debugger) Continue() {
	d.resume = d.breakHit
	d.breakHit = false
	d.stepping = false
	d.stepOverActive = false
	d.stepOutActive = false
}

// StepInto executes exactly one instruction and breaks at the next fetch.
func (d *Debugger) StepInto() {
	d.Continue()
	d.resume = true
	d.stepping = true
}

// StepOver behaves like StepInto except at a CALL or RST: there it runs the
// callee to completion and breaks at the instruction following the call.
func (d *Debugger) StepOver() {
	d.Continue()
	pc := d.cpu.PC
	d.resume = true
	if n, ok := callLength(d.cpu.bus.Read(pc)); ok {
		d.stepOverActive = true
		d.stepOverTarget = pc + n
		return
	}
	d.stepping = true
}

// StepOut runs until a RET-family instruction unwinds the stack above the
// current SP, i.e. until the current subroutine returns.
func (d *Debugger) StepOut() {
	d.Continue()
	d.resume = true
	d.stepOutActive = true
	d.stepOutSP = d.cpu.SP
	d.prevWasRet = false
}

// callLength reports the byte length of a CALL/RST-family opcode and
// whether the opcode is one.
func callLength(op uint8) (uint16, bool) {
	if op == 0xCD {
		return 3, true
	}
	if op&0xC7 == 0xC4 { // CALL cc,nn
		return 3, true
	}
	if op&0xC7 == 0xC7 { // RST
		return 1, true
	}
	return 0, false
}

// isRetOpcode reports whether op (with next, the following byte, for ED
// forms) returns from a subroutine.
func isRetOpcode(op, next uint8) bool {
	if op == 0xC9 {
		return true
	}
	if op&0xC7 == 0xC0 { // RET cc
		return true
	}
	if op == 0xED && (next&0xC7 == 0x45) { // RETN/RETI and mirrors
		return true
	}
	return false
}

// beforeInstruction is the per-fetch hook: it evaluates step conditions and
// execution breakpoints against the PC about to execute, and appends a
// trace entry when nothing fires.
func (d *Debugger) beforeInstruction(pc uint16) {
	read := d.cpu.bus.Read

	if d.resume {
		// The instruction the debugger stopped on gets to run: skip
		// evaluation once, but keep the step-out RET tracking and the
		// trace current.
		d.resume = false
		d.prevWasRet = isRetOpcode(read(pc), read(pc+1))
		if d.traceEnabled {
			d.capture(pc)
		}
		return
	}

	if d.stepOutActive && d.prevWasRet && d.cpu.SP > d.stepOutSP {
		d.stepOutActive = false
		d.fire(nil)
	}
	d.prevWasRet = isRetOpcode(read(pc), read(pc+1))

	if d.stepOverActive && pc == d.stepOverTarget {
		d.stepOverActive = false
		d.fire(nil)
	}

	if d.stepping {
		d.breakHit = true
	}

	for i := 0; i < len(d.breakpoints); i++ {
		bp := &d.breakpoints[i]
		if bp.Kind != BreakExecution || !bp.Enabled || !bp.contains(pc) || !bp.match(pc) {
			continue
		}
		d.fire(bp)
		if bp.OneShot {
			d.Remove(bp.ID)
			i--
		}
	}

	if d.traceEnabled && !d.breakHit {
		d.capture(pc)
	}
}

// onAccess is the memory/IO/interrupt hook. addr is the accessed address or
// port (the post-acceptance PC for interrupts) and v the transferred byte.
func (d *Debugger) onAccess(kind BreakKind, addr uint16, v uint8) {
	for i := 0; i < len(d.breakpoints); i++ {
		bp := &d.breakpoints[i]
		if bp.Kind != kind || !bp.Enabled || !bp.contains(addr) || !bp.match(uint16(v)) {
			continue
		}
		d.fire(bp)
		if bp.OneShot {
			d.Remove(bp.ID)
			i--
		}
	}
}

// fire records a break and notifies the observer. A nil bp means a step
// condition rather than a breakpoint fired.
func (d *Debugger) fire(bp *Breakpoint) {
	d.breakHit = true
	d.stepping = true
	if bp != nil && d.observer != nil {
		d.observer.BreakpointHit(d.cpu, bp)
	}
}

// EnableTrace turns trace capture on or off. The retained entries survive
// disabling; use ClearTrace to drop them.
func (d *Debugger) EnableTrace(enabled bool) { d.traceEnabled = enabled }

// ClearTrace discards all retained trace entries.
func (d *Debugger) ClearTrace() {
	d.traceHead = 0
	d.traceCount = 0
}

// TraceCount returns the number of retained trace entries.
func (d *Debugger) TraceCount() int { return d.traceCount }

// TraceEntryAt returns the trace entry at the given logical index, where 0
// is the oldest retained entry. ok is false past the retained count.
func (d *Debugger) TraceEntryAt(i int) (TraceEntry, bool) {
	if i < 0 || i >= d.traceCount {
		return TraceEntry{}, false
	}
	pos := (d.traceHead - d.traceCount + i + TraceCapacity*2) % TraceCapacity
	return d.trace[pos], true
}

func (d *Debugger) capture(pc uint16) {
	c := d.cpu
	text, in := disassembleAt(c.bus.Read, pc)

	e := TraceEntry{
		PC:     pc,
		Length: in.length,
		Cycles: in.cycles,
		AF:     c.AF(),
		BC:     c.BC(),
		DE:     c.DE(),
		HL:     c.HL(),
		IX:     c.IX,
		IY:     c.IY,
		SP:     c.SP,
		Text:   text,
	}
	n := in.length
	if n > 4 {
		n = 4
	}
	for i := uint8(0); i < n; i++ {
		e.Bytes[i] = c.bus.Read(pc + uint16(i))
	}

	d.trace[d.traceHead] = e
	d.traceHead = (d.traceHead + 1) % TraceCapacity
	if d.traceCount < TraceCapacity {
		d.traceCount++
	}
	if d.observer != nil {
		d.observer.TraceCaptured(&d.trace[(d.traceHead+TraceCapacity-1)%TraceCapacity])
	}
}

// DumpState renders the full register file as human-readable text. The
// format is diagnostic only and not parsed by anything.
func (d *Debugger) DumpState() string {
	c := d.cpu
	var b strings.Builder
	fmt.Fprintf(&b, "AF=%04X BC=%04X DE=%04X HL=%04X\n", c.AF(), c.BC(), c.DE(), c.HL())
	fmt.Fprintf(&b, "AF'=%04X BC'=%04X DE'=%04X HL'=%04X\n",
		uint16(c.Ax)<<8|uint16(c.Fx), uint16(c.Bx)<<8|uint16(c.Cx),
		uint16(c.Dx)<<8|uint16(c.Ex), uint16(c.Hx)<<8|uint16(c.Lx))
	fmt.Fprintf(&b, "IX=%04X IY=%04X SP=%04X PC=%04X\n", c.IX, c.IY, c.SP, c.PC)
	fmt.Fprintf(&b, "I=%02X R=%02X IM=%d IFF1=%t IFF2=%t HALT=%t\n",
		c.I, c.R, c.IM, c.IFF1, c.IFF2, c.Halted)
	fmt.Fprintf(&b, "FLAGS=[%s] CYCLES=%d\n", flagString(c.F), c.TotalCycles)
	return b.String()
}

func flagString(f uint8) string {
	names := "SZYHXPNC"
	out := []byte("--------")
	for i := 0; i < 8; i++ {
		if f&(0x80>>i) != 0 {
			out[i] = names[i]
		}
	}
	return string(out)
}

// DumpMemory renders [start,end] as a hex dump, 16 bytes per row.
func (d *Debugger) DumpMemory(start, end uint16) string {
	var b strings.Builder
	for addr := uint32(start) &^ 0x0F; addr <= uint32(end); addr += 16 {
		fmt.Fprintf(&b, "%04X:", addr)
		for i := uint32(0); i < 16; i++ {
			a := addr + i
			if a < uint32(start) || a > uint32(end) {
				b.WriteString("   ")
			} else {
				fmt.Fprintf(&b, " %02X", d.cpu.bus.Read(uint16(a)))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// DisassembleRange renders the instructions covering [start,end], one per
// line with address, raw bytes and mnemonic.
func (d *Debugger) DisassembleRange(start, end uint16) string {
	var b strings.Builder
	addr := uint32(start)
	for addr <= uint32(end) {
		text, length := Disassemble(d.cpu.bus.Read, uint16(addr))
		fmt.Fprintf(&b, "%04X: ", addr)
		for i := 0; i < 4; i++ {
			if i < length {
				fmt.Fprintf(&b, "%02X ", d.cpu.bus.Read(uint16(addr)+uint16(i)))
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" ")
		b.WriteString(text)
		b.WriteByte('\n')
		addr += uint32(length)
	}
	return b.String()
}
