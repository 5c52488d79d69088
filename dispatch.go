package z80

// haltCycles is the cost of one halted step; the CPU effectively executes
// internal NOPs until an interrupt is accepted.
const haltCycles = 4

// tableID identifies which dispatch table an opcode was resolved through.
type tableID uint8

const (
	tableBase tableID = iota
	tableCB
	tableED
	tableDD
	tableFD
	tableDDCB
	tableFDCB
)

// instruction is one dispatch-table entry. Tables are populated once at
// package init and read-only afterwards.
//
// length is the full instruction size in bytes, prefixes and operands
// included; it feeds the trace buffer, the instruction cache, and the
// disassembler, not execution (handlers consume their own operands).
// altCycles, when non-zero, replaces cycles if the handler reports a taken
// branch or a repeating block operation.
type instruction struct {
	mnemonic  string
	length    uint8
	cycles    uint8
	altCycles uint8
	handler   func(*CPU)
}

var (
	baseTable [256]instruction
	cbTable   [256]instruction
	edTable   [256]instruction
	ddTable   [256]instruction
	fdTable   [256]instruction
	ddcbTable [256]instruction
	fdcbTable [256]instruction
)

// Table construction order matters: the index tables start from copies of
// the base table for prefix fall-through.
func init() {
	buildBaseTable()
	buildCBTable()
	buildEDTable()
	buildIndexTables()
}

// decodeMeta records how an instruction was reached so the cache and the
// timing override table can replay or reprice it.
type decodeMeta struct {
	table  tableID
	opcode uint8
	hdrLen uint8 // bytes consumed by decode itself
	rIncs  uint8 // refresh-register increments performed by decode
}

// decode resolves the prefix chain at PC to a dispatch-table entry. On
// return PC points at the first operand byte. The DDCB/FDCB displacement
// is consumed by decode itself and stashed in c.disp.
//
// Every prefix byte is an M1 fetch and bumps R; the displacement and final
// opcode of DDCB/FDCB forms are plain reads, so those instructions bump R
// by exactly 2, matching hardware.
func (c *CPU) decode() (*instruction, decodeMeta) {
	op := c.fetch()
	switch op {
	case 0xCB:
		op2 := c.fetch()
		return &cbTable[op2], decodeMeta{tableCB, op2, 2, 2}
	case 0xED:
		op2 := c.fetch()
		return &edTable[op2], decodeMeta{tableED, op2, 2, 2}
	case 0xDD:
		return c.decodeIndex(&ddTable, &ddcbTable, tableDD, tableDDCB)
	case 0xFD:
		return c.decodeIndex(&fdTable, &fdcbTable, tableFD, tableFDCB)
	default:
		return &baseTable[op], decodeMeta{tableBase, op, 1, 1}
	}
}

// prefixNoni stands in for a DD/FD prefix superseded by another prefix
// byte. Hardware discards the first prefix after 4 cycles and restarts
// decoding at the second, so the discarded prefix executes as a one-byte
// no-op and the next step picks up the surviving prefix.
var prefixNoni = instruction{mnemonic: "NONI", length: 1, cycles: 4, handler: opNop}

func (c *CPU) decodeIndex(tbl, bitTbl *[256]instruction, tid, bitTid tableID) (*instruction, decodeMeta) {
	if next := c.bus.Read(c.PC); next == 0xDD || next == 0xFD || next == 0xED {
		return &prefixNoni, decodeMeta{tid, next, 1, 1}
	}
	op2 := c.fetch()
	if op2 == 0xCB {
		c.disp = int8(c.operand())
		op3 := c.operand()
		return &bitTbl[op3], decodeMeta{bitTid, op3, 4, 2}
	}
	return &tbl[op2], decodeMeta{tid, op2, 2, 2}
}
