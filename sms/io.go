package sms

import "github.com/user-none/go-chip-sn76489"

// VideoPort receives the VDP-side IO traffic. The machine itself carries no
// video hardware; a host that has one plugs it in here. A nil VideoPort
// reads as 0xFF and swallows writes.
type VideoPort interface {
	ReadVCounter() uint8
	ReadHCounter() uint8
	ReadData() uint8
	ReadStatus() uint8
	WriteData(v uint8)
	WriteControl(v uint8)
}

// Input holds controller state in port form, active low.
type Input struct {
	Port1 uint8 // $DC: P1 pad + P2 up/down
	Port2 uint8 // $DD: rest of P2 + TH lines
}

// IO decodes the SMS port map. The hardware decodes only bits 7, 6 and 0 of
// the port address, so each region of the map repeats across its range.
type IO struct {
	psg   *sn76489.SN76489
	video VideoPort
	Input *Input

	nationality Nationality
	ioControl   uint8 // $3F
}

// NewIO builds the port decoder around the PSG. Attach a VideoPort with
// SetVideo when the host has one.
func NewIO(psg *sn76489.SN76489, nationality Nationality) *IO {
	return &IO{
		psg:         psg,
		nationality: nationality,
		Input: &Input{
			Port1: 0xFF, // nothing pressed
			Port2: 0xFF,
		},
	}
}

// SetVideo attaches or detaches (nil) the VDP-side port handler.
func (e *IO) SetVideo(v VideoPort) { e.video = v }

// In services a Z80 IN for the low byte of the port address.
func (e *IO) In(port uint8) uint8 {
	switch port & 0xC1 {
	case 0x40: // $40-$7F even: V counter
		if e.video != nil {
			return e.video.ReadVCounter()
		}
	case 0x41: // $40-$7F odd: H counter
		if e.video != nil {
			return e.video.ReadHCounter()
		}
	case 0x80: // $80-$BF even: VDP data
		if e.video != nil {
			return e.video.ReadData()
		}
	case 0x81: // $80-$BF odd: VDP status
		if e.video != nil {
			return e.video.ReadStatus()
		}
	case 0xC0: // $C0-$FF even: controller port A
		return e.Input.Port1
	case 0xC1: // $C0-$FF odd: controller port B + TH
		return e.portB()
	}
	return 0xFF
}

// Out services a Z80 OUT for the low byte of the port address.
func (e *IO) Out(port uint8, v uint8) {
	switch port & 0xC1 {
	case 0x01: // $00-$3F odd: IO control
		e.ioControl = v
	case 0x40, 0x41: // $40-$7F: PSG
		if e.psg != nil {
			e.psg.Write(v)
		}
	case 0x80: // $80-$BF even: VDP data
		if e.video != nil {
			e.video.WriteData(v)
		}
	case 0x81: // $80-$BF odd: VDP control
		if e.video != nil {
			e.video.WriteControl(v)
		}
	}
}

// portB folds the TH line state into bits 6 and 7 of port $DD. On export
// consoles a TH pin driven as an output reads back the level written to the
// IO control register; Japanese consoles always read the pad.
func (e *IO) portB() uint8 {
	v := e.Input.Port2
	if e.nationality == NationalityJapanese {
		return v
	}
	if e.ioControl&0x02 == 0 { // port A TH is an output
		if e.ioControl&0x20 != 0 {
			v |= 0x40
		} else {
			v &^= 0x40
		}
	}
	if e.ioControl&0x08 == 0 { // port B TH is an output
		if e.ioControl&0x80 != 0 {
			v |= 0x80
		} else {
			v &^= 0x80
		}
	}
	return v
}

// SetP1 updates the player 1 pad bits of port $DC, leaving the player 2
// bits alone. Pressed means the bit drops to 0.
func (i *Input) SetP1(up, down, left, right, btn1, btn2 bool) {
	i.Port1 |= 0x3F
	if up {
		i.Port1 &^= 0x01
	}
	if down {
		i.Port1 &^= 0x02
	}
	if left {
		i.Port1 &^= 0x04
	}
	if right {
		i.Port1 &^= 0x08
	}
	if btn1 {
		i.Port1 &^= 0x10
	}
	if btn2 {
		i.Port1 &^= 0x20
	}
}

// SetP2 updates the player 2 pad, which straddles both ports: up and down
// live in the top bits of $DC, the rest in the low bits of $DD.
func (i *Input) SetP2(up, down, left, right, btn1, btn2 bool) {
	i.Port1 |= 0xC0
	if up {
		i.Port1 &^= 0x40
	}
	if down {
		i.Port1 &^= 0x80
	}

	i.Port2 |= 0x0F
	if left {
		i.Port2 &^= 0x01
	}
	if right {
		i.Port2 &^= 0x02
	}
	if btn1 {
		i.Port2 &^= 0x04
	}
	if btn2 {
		i.Port2 &^= 0x08
	}
}
