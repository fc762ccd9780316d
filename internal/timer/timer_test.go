package timer

import (
	"testing"

	"github.com/hollow-bender/pocketcore/internal/ic"
)

func TestTimer_DIVIncrementsEvery256TCycles(t *testing.T) {
	tm := New(ic.New())
	tm.Tick(255)
	if v, _ := tm.ReadByte(0xFF04); v != 0 {
		t.Fatalf("DIV got %02x before 256 cycles, want 00", v)
	}
	tm.Tick(1)
	if v, _ := tm.ReadByte(0xFF04); v != 1 {
		t.Fatalf("DIV got %02x after 256 cycles, want 01", v)
	}
}

func TestTimer_DIVWriteResetsToZero(t *testing.T) {
	tm := New(ic.New())
	tm.Tick(600)
	tm.WriteByte(0xFF04, 0x99) // value is irrelevant; any write resets
	if v, _ := tm.ReadByte(0xFF04); v != 0 {
		t.Fatalf("DIV after write got %02x, want 00", v)
	}
}

func TestTimer_TIMAOverflowReloadsAndRequestsInterrupt(t *testing.T) {
	irqc := ic.New()
	irqc.WriteByte(0xFFFF, 0xFF)
	tm := New(irqc)
	tm.WriteByte(0xFF06, 0x7F)   // TMA
	tm.WriteByte(0xFF07, 0x05)  // enabled, every 16 T-cycles (bit3)
	tm.tima = 0xFF

	// Drive enough cycles to cross a falling edge on bit 3 plus the 4-cycle reload delay.
	// The edge falls on cycle 16; the reload lands 4 cycles later, at 20.
	tm.Tick(20)

	if v, _ := tm.ReadByte(0xFF05); v != 0x7F {
		t.Fatalf("TIMA after overflow+reload got %02x, want 7F", v)
	}
	if _, pending := irqc.Peek(); !pending {
		t.Fatalf("expected timer interrupt to be requested")
	}
}

func TestTimer_DisabledCounterDoesNotIncrement(t *testing.T) {
	tm := New(ic.New())
	tm.WriteByte(0xFF07, 0x00) // disabled
	tm.Tick(10000)
	if v, _ := tm.ReadByte(0xFF05); v != 0 {
		t.Fatalf("TIMA got %02x while disabled, want 00", v)
	}
}
