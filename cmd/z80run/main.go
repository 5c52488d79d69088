// Command z80run runs a Master System ROM headlessly: no video, no audio
// output, just the CPU, mapper and sound chip ticking for a requested
// number of frames. Useful for tracing, regression runs against save
// states, and driver development.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/user-none/go-core-z80"
	"github.com/user-none/go-core-z80/romloader"
	"github.com/user-none/go-core-z80/sms"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file or archive (required)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	frames := flag.Int("frames", 60, "number of frames to run")
	cycles := flag.Int("cycles", 0, "run this many raw CPU cycles instead of frames")
	trace := flag.Int("trace", 0, "print the last N executed instructions")
	dump := flag.Bool("dump", false, "dump CPU state after the run")
	saveState := flag.String("savestate", "", "write a save state here after the run")
	loadState := flag.String("loadstate", "", "load a save state before the run")
	breakAt := flag.Int("break", -1, "stop at this PC (hex accepted via 0x prefix)")
	flag.Parse()

	if *romPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	rom, name, err := romloader.LoadROM(*romPath)
	if err != nil {
		log.Fatalf("load rom: %v", err)
	}

	region := pickRegion(*regionFlag, rom)
	machine, err := sms.NewMachine(rom, region)
	if err != nil {
		log.Fatalf("create machine: %v", err)
	}
	log.Printf("loaded %s (%d bytes, %v)", name, len(rom), regionName(region))

	if *loadState != "" {
		data, err := os.ReadFile(*loadState)
		if err != nil {
			log.Fatalf("read state: %v", err)
		}
		if err := machine.Deserialize(data); err != nil {
			log.Fatalf("load state: %v", err)
		}
	}

	var dbg *z80.Debugger
	if *trace > 0 || *dump || *breakAt >= 0 {
		dbg = z80.NewDebugger(machine.CPU())
		if *trace > 0 {
			dbg.EnableTrace(true)
		}
		if *breakAt >= 0 {
			dbg.AddBreakpoint(z80.BreakExecution, uint16(*breakAt))
		}
	}

	if *cycles > 0 {
		machine.CPU().Execute(*cycles)
		if dbg != nil && dbg.ShouldBreak() {
			log.Printf("breakpoint hit, PC=%04X", machine.CPU().PC)
		}
	} else {
		for i := 0; i < *frames; i++ {
			machine.RunFrame()
			if dbg != nil && dbg.ShouldBreak() {
				log.Printf("breakpoint hit at frame %d, PC=%04X", i, machine.CPU().PC)
				break
			}
		}
	}

	if *trace > 0 && dbg != nil {
		n := dbg.TraceCount()
		start := n - *trace
		if start < 0 {
			start = 0
		}
		for i := start; i < n; i++ {
			e, _ := dbg.TraceEntryAt(i)
			fmt.Printf("%04X  %-16s AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X\n",
				e.PC, e.Text, e.AF, e.BC, e.DE, e.HL, e.SP)
		}
	}

	if *dump && dbg != nil {
		fmt.Print(dbg.DumpState())
		stats := machine.Optimizer().Stats()
		fmt.Printf("CACHE hits=%d misses=%d\n", stats.Hits, stats.Misses)
	}

	if *saveState != "" {
		data, err := machine.Serialize()
		if err != nil {
			log.Fatalf("serialize: %v", err)
		}
		if err := os.WriteFile(*saveState, data, 0644); err != nil {
			log.Fatalf("write state: %v", err)
		}
		log.Printf("wrote %s (%d bytes)", *saveState, len(data))
	}
}

func pickRegion(flagValue string, rom []byte) sms.Region {
	switch flagValue {
	case "ntsc":
		return sms.RegionNTSC
	case "pal":
		return sms.RegionPAL
	default:
		region, _ := sms.DetectRegionFromROM(rom)
		return region
	}
}

func regionName(r sms.Region) string {
	if r == sms.RegionPAL {
		return "PAL"
	}
	return "NTSC"
}
