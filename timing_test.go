package z80

import "testing"

func TestTiming_MemoryWaitStates(t *testing.T) {
	cpu, _ := newTestCPU(t, 0x00) // NOP, one memory access
	cpu.SetTiming(&TimingConfig{MemoryWaitStates: 2})

	if cycles := cpu.Step(); cycles != 6 {
		t.Errorf("cycles: expected 4+2, got %d", cycles)
	}
}

func TestTiming_WaitStatesFunc(t *testing.T) {
	cpu, _ := newTestCPU(t, 0x3E, 0x42) // LD A,n, two memory accesses
	cpu.SetTiming(&TimingConfig{
		WaitStates: func(addr uint16) int {
			if addr == 0x0001 {
				return 3
			}
			return 0
		},
	})

	if cycles := cpu.Step(); cycles != 10 {
		t.Errorf("cycles: expected 7+3, got %d", cycles)
	}
}

func TestTiming_ContentionMap(t *testing.T) {
	cm := make([]uint8, 0x10000)
	cm[0x0000] = 5
	cpu, _ := newTestCPU(t, 0x00, 0x00)
	cpu.SetTiming(&TimingConfig{ContentionMap: cm})

	if cycles := cpu.Step(); cycles != 9 {
		t.Errorf("contended NOP: expected 9, got %d", cycles)
	}
	if cycles := cpu.Step(); cycles != 4 {
		t.Errorf("uncontended NOP: expected 4, got %d", cycles)
	}
}

func TestTiming_IOWaitStates(t *testing.T) {
	cpu, _ := newTestCPU(t, 0xD3, 0x42) // OUT (n),A: two memory, one IO access
	cpu.SetTiming(&TimingConfig{IOWaitStates: 3})

	if cycles := cpu.Step(); cycles != 14 {
		t.Errorf("cycles: expected 11+3, got %d", cycles)
	}
}

func TestTiming_Sync(t *testing.T) {
	cpu, _ := newTestCPU(t, 0x00, 0x00, 0x00, 0x00, 0x00)
	fired := 0
	cpu.SetTiming(&TimingConfig{
		SyncThreshold: 10,
		Sync:          func(cycles int) { fired++ },
	})

	cpu.Execute(20) // five NOPs
	if fired != 2 {
		t.Errorf("sync: expected 2 firings over 20 cycles, got %d", fired)
	}
	if cpu.Timing().TotalCycles != 20 {
		t.Errorf("TotalCycles: expected 20, got %d", cpu.Timing().TotalCycles)
	}
}

func TestTiming_CycleOverride(t *testing.T) {
	cpu, _ := newTestCPU(t, 0x00, 0x20, 0x02) // NOP; JR NZ,+2
	tc := &TimingConfig{}
	tc.SetCycleOverride(tableBase, 0x00, 6, 0)
	tc.SetCycleOverride(tableBase, 0x20, 8, 13)
	cpu.SetTiming(tc)

	if cycles := cpu.Step(); cycles != 6 {
		t.Errorf("NOP override: expected 6, got %d", cycles)
	}

	cpu.F = 0 // branch taken
	if cycles := cpu.Step(); cycles != 13 {
		t.Errorf("JR taken override: expected 13, got %d", cycles)
	}

	cpu.PC = 0x0001
	cpu.F = FlagZ // not taken
	if cycles := cpu.Step(); cycles != 8 {
		t.Errorf("JR not taken override: expected 8, got %d", cycles)
	}

	tc.ClearCycleOverrides()
	cpu.PC = 0x0000
	if cycles := cpu.Step(); cycles != 4 {
		t.Errorf("NOP after clear: expected 4, got %d", cycles)
	}
}

func TestTiming_SwapPreservesState(t *testing.T) {
	cpu, _ := newTestCPU(t, 0x3E, 0x42)
	cpu.SetTiming(NewTimingConfig(PlatformMasterSystem))
	cpu.Step()

	cpu.SetTiming(NewTimingConfig(PlatformMegaDrive))
	if cpu.A != 0x42 || cpu.PC != 0x0002 {
		t.Error("swapping timing config must not touch register state")
	}
	if cpu.Timing().Platform != PlatformMegaDrive {
		t.Error("new config is not attached")
	}

	cpu.SetTiming(nil)
	cpu.PC = 0
	if cycles := cpu.Step(); cycles != 7 {
		t.Errorf("detached timing: expected base 7, got %d", cycles)
	}
}

func TestTiming_Presets(t *testing.T) {
	if NewTimingConfig(PlatformMasterSystem).SyncThreshold != 228 {
		t.Error("SMS preset threshold")
	}
	if NewTimingConfig(PlatformGameGear).SyncThreshold != 228 {
		t.Error("GG preset threshold")
	}
	if NewTimingConfig(PlatformMegaDrive).SyncThreshold != 171 {
		t.Error("MD preset threshold")
	}
	if NewTimingConfig(PlatformGeneric).SyncThreshold != 0 {
		t.Error("generic preset should add nothing")
	}
}
