package z80

// CacheSize is the number of decoded-instruction cache slots.
const CacheSize = 64

// cacheEntry remembers one decoded instruction. Entries are never
// explicitly invalidated: a hit is only honored after every stored byte is
// re-verified against live memory, which keeps self-modifying code correct.
type cacheEntry struct {
	valid  bool
	pc     uint16
	bytes  [4]uint8
	verify uint8 // number of bytes to compare, min(length, 4)
	in     *instruction
	meta   decodeMeta
	disp   int8
	hits   uint64
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}

// FastPort routes IN A,(n) / OUT (n),A on a contiguous range of low port
// addresses straight to device callbacks, skipping generic IO dispatch.
// The callbacks must behave exactly like the bus would for those ports:
// the fast path is an optimization, never a semantic variant.
type FastPort struct {
	Lo, Hi uint8
	Out    func(port uint16, v uint8)
	In     func(port uint16) uint8
}

// Optimizer layers the decode cache and IO fast paths over a CPU. Attach
// one with NewOptimizer; toggling Enabled turns the whole layer on or off
// without detaching it.
type Optimizer struct {
	Enabled bool

	cpu     *CPU
	entries [CacheSize]cacheEntry
	stats   CacheStats
	ports   []FastPort
}

// NewOptimizer creates an optimizer bound to the CPU, enabled.
func NewOptimizer(c *CPU) *Optimizer {
	o := &Optimizer{cpu: c, Enabled: true}
	c.opt = o
	return o
}

// Detach unhooks the optimizer from its CPU.
func (o *Optimizer) Detach() {
	if o.cpu != nil && o.cpu.opt == o {
		o.cpu.opt = nil
	}
}

// AddFastPort registers a hot IO port range. Either callback may be nil to
// leave that direction on the generic path.
func (o *Optimizer) AddFastPort(fp FastPort) {
	o.ports = append(o.ports, fp)
}

func (o *Optimizer) fastOut(port uint8) func(uint16, uint8) {
	for i := range o.ports {
		if port >= o.ports[i].Lo && port <= o.ports[i].Hi {
			return o.ports[i].Out
		}
	}
	return nil
}

func (o *Optimizer) fastIn(port uint8) func(uint16) uint8 {
	for i := range o.ports {
		if port >= o.ports[i].Lo && port <= o.ports[i].Hi {
			return o.ports[i].In
		}
	}
	return nil
}

// Stats returns the hit/miss counters.
func (o *Optimizer) Stats() CacheStats { return o.stats }

// EntryHits returns the per-slot hit counter for the cache entry covering
// pc, or 0 when the slot holds a different address.
func (o *Optimizer) EntryHits(pc uint16) uint64 {
	e := &o.entries[pc%CacheSize]
	if e.valid && e.pc == pc {
		return e.hits
	}
	return 0
}

// Clear drops every cache entry and resets the counters.
func (o *Optimizer) Clear() {
	o.entries = [CacheSize]cacheEntry{}
	o.stats = CacheStats{}
}

// run attempts a cached execution of the instruction at pc. It returns the
// cycles consumed and true on a verified hit; on a miss the caller decodes
// normally and record refills the slot.
func (o *Optimizer) run(pc uint16) (int, bool) {
	c := o.cpu
	e := &o.entries[pc%CacheSize]
	if !e.valid || e.pc != pc {
		o.stats.Misses++
		return 0, false
	}
	for i := uint8(0); i < e.verify; i++ {
		if c.bus.Read(pc+uint16(i)) != e.bytes[i] {
			o.stats.Misses++
			return 0, false
		}
	}
	o.stats.Hits++
	e.hits++

	// Replay the decode the slow path would have done: consume the header
	// bytes, bump R the same number of times, restore the displacement.
	c.PC = pc + uint16(e.meta.hdrLen)
	for i := uint8(0); i < e.meta.rIncs; i++ {
		c.incR()
	}
	if c.timing != nil {
		for i := uint8(0); i < e.meta.hdrLen; i++ {
			c.penalty += c.timing.memoryPenalty(pc + uint16(i))
		}
	}
	c.disp = e.disp

	c.branchTaken = false
	e.in.handler(c)
	cycles := int(e.in.cycles)
	if c.branchTaken && e.in.altCycles != 0 {
		cycles = int(e.in.altCycles)
	}
	if c.timing != nil {
		cycles = c.timing.overrideCycles(e.meta.table, e.meta.opcode, cycles, c.branchTaken)
	}
	return c.retire(cycles), true
}

// snapshot captures the instruction bytes at pc. Step calls it between
// decode and the handler so the recorded bytes are the ones that executed.
func (o *Optimizer) snapshot(pc uint16, in *instruction) ([4]uint8, uint8) {
	n := in.length
	if n > 4 {
		n = 4
	}
	var bytes [4]uint8
	for i := uint8(0); i < n; i++ {
		bytes[i] = o.cpu.bus.Read(pc + uint16(i))
	}
	return bytes, n
}

// record fills the cache slot for an instruction the slow path just
// decoded at pc, using the pre-execution byte snapshot.
func (o *Optimizer) record(pc uint16, in *instruction, meta decodeMeta, bytes [4]uint8, n uint8) {
	if in == &prefixNoni {
		// A superseded prefix is only a no-op because of the byte after
		// it, which a one-byte entry could not verify.
		return
	}
	e := &o.entries[pc%CacheSize]
	*e = cacheEntry{
		valid:  true,
		pc:     pc,
		bytes:  bytes,
		verify: n,
		in:     in,
		meta:   meta,
		disp:   o.cpu.disp,
	}
}
