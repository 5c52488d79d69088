package z80

import (
	"bytes"
	"testing"
)

func TestSerialize_RoundTrip(t *testing.T) {
	src, _ := newTestCPU(t)
	src.A, src.F = 0x12, 0x34
	src.B, src.C = 0x56, 0x78
	src.D, src.E = 0x9A, 0xBC
	src.H, src.L = 0xDE, 0xF0
	src.Ax, src.Fx = 0x21, 0x43
	src.Bx, src.Cx = 0x65, 0x87
	src.Dx, src.Ex = 0xA9, 0xCB
	src.Hx, src.Lx = 0xED, 0x0F
	src.I, src.R = 0x7E, 0x55
	src.IX, src.IY = 0x1111, 0x2222
	src.SP, src.PC = 0xDFF0, 0x4321
	src.IFF1, src.IFF2 = true, true
	src.IM = 2
	src.Halted = true

	buf := make([]byte, SerializeSize)
	n, err := src.Serialize(buf)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if n != SerializeSize {
		t.Fatalf("size: expected %d, got %d", SerializeSize, n)
	}

	dst, _ := newTestCPU(t)
	if err := dst.Deserialize(buf); err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	buf2 := make([]byte, SerializeSize)
	dst.Serialize(buf2)
	if !bytes.Equal(buf, buf2) {
		t.Error("round-trip blobs differ")
	}
	if dst.PC != 0x4321 || dst.SP != 0xDFF0 {
		t.Errorf("PC/SP: got %04X/%04X", dst.PC, dst.SP)
	}
	if !dst.Halted || dst.IM != 2 || !dst.IFF1 {
		t.Error("execution flags not restored")
	}
}

func TestSerialize_Layout(t *testing.T) {
	cpu, _ := newTestCPU(t)
	cpu.A, cpu.F = 0xAA, 0xBB
	cpu.PC = 0x1234
	cpu.IX = 0xBEEF

	buf := make([]byte, SerializeSize)
	cpu.Serialize(buf)

	if buf[0x00] != 0xAA || buf[0x01] != 0xBB {
		t.Errorf("A F at 0x00: got %02X %02X", buf[0x00], buf[0x01])
	}
	if buf[0x12] != 0xEF || buf[0x13] != 0xBE {
		t.Errorf("IX at 0x12: got %02X %02X", buf[0x12], buf[0x13])
	}
	if buf[0x18] != 0x34 || buf[0x19] != 0x12 {
		t.Errorf("PC at 0x18: got %02X %02X", buf[0x18], buf[0x19])
	}
	for i := 0x1E; i < SerializeSize; i++ {
		if buf[i] != 0 {
			t.Fatalf("padding at 0x%02X not zero", i)
		}
	}
}

func TestSerialize_ShortBuffer(t *testing.T) {
	cpu, _ := newTestCPU(t)
	buf := make([]byte, SerializeSize-1)
	if _, err := cpu.Serialize(buf); err != ErrStateTooSmall {
		t.Errorf("serialize: expected ErrStateTooSmall, got %v", err)
	}

	cpu.PC = 0x1234
	if err := cpu.Deserialize(buf); err != ErrStateTooSmall {
		t.Errorf("deserialize: expected ErrStateTooSmall, got %v", err)
	}
	if cpu.PC != 0x1234 {
		t.Error("failed deserialize must not modify state")
	}
}
