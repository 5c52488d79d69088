package md

import (
	"github.com/user-none/go-core-z80"
)

// Coprocessor is the Z80 sound CPU with the 68K-side bus controls. The 68K
// stops the Z80 by asserting BUSREQ before touching its RAM, and holds
// RESET across bank or program changes; while either line is down the Z80
// makes no progress.
type Coprocessor struct {
	cpu *z80.CPU
	bus *Bus

	busreq    bool
	resetHeld bool
}

// NewCoprocessor wires a Z80 to the coprocessor bus. The Z80 comes out of
// the box with RESET held, matching the console at power-on.
func NewCoprocessor(bus *Bus) (*Coprocessor, error) {
	cpu, err := z80.New(bus)
	if err != nil {
		return nil, err
	}
	cpu.SetTiming(z80.NewTimingConfig(z80.PlatformMegaDrive))
	return &Coprocessor{cpu: cpu, bus: bus, resetHeld: true}, nil
}

// CPU exposes the core for debugger attachment and state capture.
func (p *Coprocessor) CPU() *z80.CPU { return p.cpu }

// Bus exposes the coprocessor address space.
func (p *Coprocessor) Bus() *Bus { return p.bus }

// SetBusRequest asserts or releases the 68K's BUSREQ line.
func (p *Coprocessor) SetBusRequest(asserted bool) { p.busreq = asserted }

// BusRequested reports whether the 68K currently owns the bus.
func (p *Coprocessor) BusRequested() bool { return p.busreq }

// SetReset asserts or releases the Z80 RESET line. The release edge resets
// the CPU and clears the bank register, the state the 68K-side boot code
// expects before it starts the sound driver.
func (p *Coprocessor) SetReset(asserted bool) {
	if p.resetHeld && !asserted {
		p.cpu.Reset()
		p.bus.SetBank(0)
	}
	p.resetHeld = asserted
}

// ResetHeld reports whether RESET is currently asserted.
func (p *Coprocessor) ResetHeld() bool { return p.resetHeld }

// Running reports whether the Z80 makes progress when clocked.
func (p *Coprocessor) Running() bool { return !p.busreq && !p.resetHeld }

// RunCycles clocks the Z80 for at least the given cycle budget and returns
// the cycles actually consumed. While BUSREQ or RESET is asserted the Z80
// is off the bus and consumes nothing.
func (p *Coprocessor) RunCycles(cycles int) int {
	if !p.Running() {
		return 0
	}
	return p.cpu.Execute(cycles)
}

// INT drives the Z80 INT line, used by the VDP's vertical interrupt. The
// line is ignored while the Z80 is stopped.
func (p *Coprocessor) INT(data uint8) int {
	if !p.Running() {
		return 0
	}
	return p.cpu.INT(data)
}
