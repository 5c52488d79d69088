package sms

import "testing"

// stubVideo records VDP-side port traffic.
type stubVideo struct {
	data, control []uint8
	status        uint8
}

func (v *stubVideo) ReadVCounter() uint8  { return 0x11 }
func (v *stubVideo) ReadHCounter() uint8  { return 0x22 }
func (v *stubVideo) ReadData() uint8      { return 0x33 }
func (v *stubVideo) ReadStatus() uint8    { return v.status }
func (v *stubVideo) WriteData(b uint8)    { v.data = append(v.data, b) }
func (v *stubVideo) WriteControl(b uint8) { v.control = append(v.control, b) }

func TestIO_Decode(t *testing.T) {
	io := NewIO(nil, NationalityExport)
	video := &stubVideo{status: 0x44}
	io.SetVideo(video)

	if got := io.In(0x7E); got != 0x11 {
		t.Errorf("V counter: got %02X", got)
	}
	if got := io.In(0x7F); got != 0x22 {
		t.Errorf("H counter: got %02X", got)
	}
	if got := io.In(0xBE); got != 0x33 {
		t.Errorf("VDP data: got %02X", got)
	}
	if got := io.In(0xBF); got != 0x44 {
		t.Errorf("VDP status: got %02X", got)
	}

	io.Out(0xBE, 0xAB)
	io.Out(0xBF, 0xCD)
	if len(video.data) != 1 || video.data[0] != 0xAB {
		t.Errorf("data writes: %v", video.data)
	}
	if len(video.control) != 1 || video.control[0] != 0xCD {
		t.Errorf("control writes: %v", video.control)
	}
}

func TestIO_PartialDecodeMirrors(t *testing.T) {
	io := NewIO(nil, NationalityExport)
	io.Input.Port1 = 0xA5

	// Only bits 7, 6 and 0 are decoded, so $C0, $DC and $FE all hit the
	// same register.
	for _, port := range []uint8{0xC0, 0xDC, 0xFE} {
		if got := io.In(port); got != 0xA5 {
			t.Errorf("port %02X: got %02X", port, got)
		}
	}
}

func TestIO_NoVideoAttached(t *testing.T) {
	io := NewIO(nil, NationalityExport)
	if got := io.In(0xBE); got != 0xFF {
		t.Errorf("unattached VDP read: got %02X", got)
	}
	io.Out(0xBE, 0x12) // must not panic
}

func TestIO_THLines(t *testing.T) {
	io := NewIO(nil, NationalityExport)

	// Both TH pins as outputs driven low: bits 6 and 7 of $DD read 0.
	io.Out(0x3F, 0x00)
	if got := io.In(0xDD); got != 0x3F {
		t.Errorf("TH low: got %02X", got)
	}

	// Driven high: bits read 1.
	io.Out(0x3F, 0xA0)
	if got := io.In(0xDD); got != 0xFF {
		t.Errorf("TH high: got %02X", got)
	}

	// As inputs the pad value passes through regardless of levels.
	io.Out(0x3F, 0x0A)
	io.Input.Port2 = 0x7F
	if got := io.In(0xDD); got != 0x7F {
		t.Errorf("TH input: got %02X", got)
	}
}

func TestIO_JapaneseIgnoresTH(t *testing.T) {
	io := NewIO(nil, NationalityJapanese)
	io.Out(0x3F, 0x00)
	if got := io.In(0xDD); got != 0xFF {
		t.Errorf("Japanese console: got %02X", got)
	}
}

func TestInput_SetP1(t *testing.T) {
	in := &Input{Port1: 0xFF, Port2: 0xFF}
	in.SetP1(true, false, false, false, true, false)
	if in.Port1 != 0xFF&^0x01&^0x10 {
		t.Errorf("Port1: got %02X", in.Port1)
	}

	// Releasing everything restores the idle value without touching the
	// P2 bits.
	in.Port1 &^= 0xC0 // pretend P2 holds up+down
	in.SetP1(false, false, false, false, false, false)
	if in.Port1 != 0x3F {
		t.Errorf("Port1 after release: got %02X", in.Port1)
	}
}

func TestInput_SetP2(t *testing.T) {
	in := &Input{Port1: 0xFF, Port2: 0xFF}
	in.SetP2(true, true, true, false, false, true)
	if in.Port1 != 0xFF&^0x40&^0x80 {
		t.Errorf("Port1: got %02X", in.Port1)
	}
	if in.Port2 != 0xFF&^0x01&^0x08 {
		t.Errorf("Port2: got %02X", in.Port2)
	}
}
