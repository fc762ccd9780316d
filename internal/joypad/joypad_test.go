package joypad

import (
	"testing"

	"github.com/hollow-bender/pocketcore/internal/ic"
)

func TestJoypad_DPadSelectReadsActiveLow(t *testing.T) {
	j := New(ic.New())
	j.WriteByte(0xFF00, 0x20) // P14=0 selects D-pad, P15=1
	j.SetPressed(Right | Up)

	got, _ := j.ReadByte(0xFF00)
	want := byte(0xC0 | 0x20 | 0x0A) // bits for Right(0) and Up(2) cleared -> 1010 = 0xA
	if got != want {
		t.Fatalf("got %02x, want %02x", got, want)
	}
}

func TestJoypad_KeyDownRaisesInterrupt(t *testing.T) {
	irqc := ic.New()
	irqc.WriteByte(0xFFFF, 0xFF)
	j := New(irqc)
	j.WriteByte(0xFF00, 0x20) // select D-pad

	j.SetPressed(Down)

	if _, pending := irqc.Peek(); !pending {
		t.Fatalf("expected joypad interrupt on key-down edge")
	}
}

func TestJoypad_NoButtonsPressedReadsAllOnes(t *testing.T) {
	j := New(ic.New())
	j.WriteByte(0xFF00, 0x30) // neither group selected
	got, _ := j.ReadByte(0xFF00)
	if got != 0xFF {
		t.Fatalf("got %02x, want FF", got)
	}
}
