// Package joypad models the FF00 key matrix: two selectable 4-key banks,
// active-low reads, and a falling-edge interrupt on any key-down.
package joypad

import "github.com/hollow-bender/pocketcore/internal/ic"

const (
	Right = 1 << iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

type Joypad struct {
	selectBits byte // bits 4-5 as last written
	pressed    byte // bitmask of currently pressed keys, see constants above
	lowNibble  byte // last computed active-low lower nibble, for edge detection

	irq *ic.Controller
}

func New(irq *ic.Controller) *Joypad {
	j := &Joypad{irq: irq}
	j.lowNibble = 0x0F
	return j
}

// SetPressed replaces the full set of currently pressed keys (bitmask using
// the constants above; set bit = pressed) and raises the joypad interrupt on
// any newly-pressed key.
func (j *Joypad) SetPressed(mask byte) {
	j.pressed = mask
	j.recompute()
}

func (j *Joypad) recompute() {
	lower := byte(0x0F)
	if j.selectBits&0x10 == 0 { // P14 low selects D-pad
		if j.pressed&Right != 0 {
			lower &^= 0x01
		}
		if j.pressed&Left != 0 {
			lower &^= 0x02
		}
		if j.pressed&Up != 0 {
			lower &^= 0x04
		}
		if j.pressed&Down != 0 {
			lower &^= 0x08
		}
	}
	if j.selectBits&0x20 == 0 { // P15 low selects buttons
		if j.pressed&A != 0 {
			lower &^= 0x01
		}
		if j.pressed&B != 0 {
			lower &^= 0x02
		}
		if j.pressed&Select != 0 {
			lower &^= 0x04
		}
		if j.pressed&Start != 0 {
			lower &^= 0x08
		}
	}
	// A falling 1->0 transition on any bit is a key-down edge.
	if falling := j.lowNibble &^ lower; falling != 0 && j.irq != nil {
		j.irq.RequestJoypad()
	}
	j.lowNibble = lower
}

func (j *Joypad) ReadByte(addr uint16) (byte, bool) {
	if addr != 0xFF00 {
		return 0, false
	}
	return 0xC0 | (j.selectBits & 0x30) | j.lowNibble, true
}

func (j *Joypad) WriteByte(addr uint16, value byte) bool {
	if addr != 0xFF00 {
		return false
	}
	j.selectBits = value & 0x30
	j.recompute()
	return true
}
