package z80

// Platform selects a timing preset. The base cycle tables are the same
// everywhere; platforms differ in wait states, contention and how often the
// CPU needs to sync with the rest of the machine.
type Platform uint8

const (
	PlatformGeneric Platform = iota
	PlatformMasterSystem
	PlatformGameGear
	PlatformMegaDrive
)

// TimingConfig layers platform timing behavior over the base cycle tables.
// One CPU holds at most one TimingConfig; it can be swapped at any time via
// SetTiming without touching register state. The zero value adds nothing to
// base timing.
//
// All hooks run synchronously on the goroutine driving the CPU.
type TimingConfig struct {
	Platform Platform

	// MemoryWaitStates is a flat penalty added to every memory access.
	// WaitStates, when set, is consulted instead.
	MemoryWaitStates int
	WaitStates       func(addr uint16) int

	// IOWaitStates is the flat penalty for IO accesses.
	IOWaitStates int

	// Contention, when set, returns extra cycles for a contended memory
	// address. When nil, ContentionMap (if any) is consulted instead.
	Contention    func(addr uint16) int
	ContentionMap []uint8 // indexed by address, length 0x10000 when used

	// Sync is invoked whenever SyncThreshold cycles have accumulated
	// since the last invocation, letting a video subsystem stay
	// phase-locked with the CPU without the CPU knowing its type.
	SyncThreshold int
	Sync          func(cycles int)

	sinceSync int

	// overrides replaces the base cycle count for specific opcodes,
	// keyed by table and opcode.
	overrides map[uint16]cycleOverride

	// TotalCycles counts every cycle retired while this configuration
	// was attached.
	TotalCycles uint64
}

type cycleOverride struct {
	cycles      uint8
	branchTaken uint8 // 0 means use cycles for both paths
}

// NewTimingConfig returns the preset timing configuration for a platform.
func NewTimingConfig(p Platform) *TimingConfig {
	t := &TimingConfig{Platform: p}
	switch p {
	case PlatformMasterSystem, PlatformGameGear:
		// One scanline of the 228-cycle line pace between video syncs.
		t.SyncThreshold = 228
	case PlatformMegaDrive:
		// The Z80 runs as a sound coprocessor; sync with the 68K side
		// roughly once per scanline slice.
		t.SyncThreshold = 171
	}
	return t
}

// SetCycleOverride replaces the base cycle cost of one opcode in one table.
// branchTaken of 0 applies cycles to both paths.
func (t *TimingConfig) SetCycleOverride(table tableID, opcode uint8, cycles, branchTaken uint8) {
	if t.overrides == nil {
		t.overrides = make(map[uint16]cycleOverride)
	}
	t.overrides[uint16(table)<<8|uint16(opcode)] = cycleOverride{cycles: cycles, branchTaken: branchTaken}
}

// ClearCycleOverrides removes all custom cycle costs.
func (t *TimingConfig) ClearCycleOverrides() {
	t.overrides = nil
}

func (t *TimingConfig) overrideCycles(table tableID, opcode uint8, cycles int, taken bool) int {
	if t.overrides == nil {
		return cycles
	}
	o, ok := t.overrides[uint16(table)<<8|uint16(opcode)]
	if !ok {
		return cycles
	}
	if taken && o.branchTaken != 0 {
		return int(o.branchTaken)
	}
	return int(o.cycles)
}

// memoryPenalty returns the wait-state and contention cycles for one memory
// access.
func (t *TimingConfig) memoryPenalty(addr uint16) int {
	extra := t.MemoryWaitStates
	if t.WaitStates != nil {
		extra = t.WaitStates(addr)
	}
	if t.Contention != nil {
		extra += t.Contention(addr)
	} else if t.ContentionMap != nil {
		extra += int(t.ContentionMap[addr])
	}
	return extra
}

// ioPenalty returns the wait-state cycles for one IO access.
func (t *TimingConfig) ioPenalty(port uint16) int {
	return t.IOWaitStates
}

// tick retires cycles against the sync threshold.
func (t *TimingConfig) tick(cycles int) {
	t.TotalCycles += uint64(cycles)
	if t.Sync == nil || t.SyncThreshold <= 0 {
		return
	}
	t.sinceSync += cycles
	for t.sinceSync >= t.SyncThreshold {
		t.sinceSync -= t.SyncThreshold
		t.Sync(t.SyncThreshold)
	}
}
