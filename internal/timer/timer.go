// Package timer models the divider and programmable timer counter (FF04-FF07),
// driven one T-cycle at a time from the CPU clock.
package timer

import (
	"bytes"
	"encoding/gob"

	"github.com/hollow-bender/pocketcore/internal/ic"
)

// Timer holds the 16-bit internal divider (whose top byte is exposed as DIV)
// plus TIMA/TMA/TAC.
type Timer struct {
	divInternal uint16
	tima        byte
	tma         byte
	tac         byte

	// On overflow TIMA reads 0x00 for a few cycles before reloading from TMA;
	// a write to TIMA during that window cancels the reload.
	reloadDelay int

	irq *ic.Controller
}

func New(irq *ic.Controller) *Timer {
	return &Timer{irq: irq}
}

// selectedBit maps TAC's low two bits to the divider bit that gates TIMA.
var selectedBit = [4]uint{9, 3, 5, 7}

func (t *Timer) input() bool {
	if t.tac&0x04 == 0 {
		return false
	}
	bit := selectedBit[t.tac&0x03]
	return (t.divInternal>>bit)&1 != 0
}

// Tick advances the timer by cycles T-cycles, one at a time so falling-edge
// detection on the selected divider bit stays exact.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		before := t.input()

		if t.reloadDelay > 0 {
			t.reloadDelay--
			if t.reloadDelay == 0 {
				t.tima = t.tma
				if t.irq != nil {
					t.irq.RequestTimer()
				}
			}
		}

		t.divInternal++

		if before && !t.input() {
			t.increment()
		}
	}
}

func (t *Timer) increment() {
	if t.reloadDelay > 0 {
		return
	}
	if t.tima == 0xFF {
		t.tima = 0x00
		t.reloadDelay = 4
		return
	}
	t.tima++
}

func (t *Timer) ReadByte(addr uint16) (byte, bool) {
	switch addr {
	case 0xFF04:
		return byte(t.divInternal >> 8), true
	case 0xFF05:
		return t.tima, true
	case 0xFF06:
		return t.tma, true
	case 0xFF07:
		return 0xF8 | t.tac&0x07, true
	}
	return 0, false
}

func (t *Timer) WriteByte(addr uint16, value byte) bool {
	switch addr {
	case 0xFF04:
		before := t.input()
		t.divInternal = 0
		if before && !t.input() {
			t.increment()
		}
		return true
	case 0xFF05:
		t.tima = value
		t.reloadDelay = 0
		return true
	case 0xFF06:
		t.tma = value
		return true
	case 0xFF07:
		before := t.input()
		t.tac = value & 0x07
		if before && !t.input() {
			t.increment()
		}
		return true
	}
	return false
}

type timerState struct {
	DivInternal uint16
	TIMA, TMA, TAC byte
	ReloadDelay int
}

// SaveState gob-encodes the divider, TIMA/TMA/TAC, and the pending reload
// countdown.
func (t *Timer) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(timerState{
		DivInternal: t.divInternal, TIMA: t.tima, TMA: t.tma, TAC: t.tac,
		ReloadDelay: t.reloadDelay,
	})
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState.
func (t *Timer) LoadState(data []byte) {
	var s timerState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	t.divInternal, t.tima, t.tma, t.tac = s.DivInternal, s.TIMA, s.TMA, s.TAC
	t.reloadDelay = s.ReloadDelay
}
