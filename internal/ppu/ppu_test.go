package ppu

import (
	"testing"

	"github.com/hollow-bender/pocketcore/internal/ic"
)

func statMode(p *PPU) byte { v, _ := p.ReadByte(0xFF41); return v & 0x03 }

func TestPPUModeSequenceOneLine(t *testing.T) {
	irq := ic.New()
	p := New(Classic, irq, nil)
	p.WriteByte(0xFF40, 0x80)
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 after LCD on, got %d", m)
	}
	p.Tick(80)
	if m := statMode(p); m != 3 {
		t.Fatalf("expected mode 3 at dot 80, got %d", m)
	}
	p.Tick(172)
	if m := statMode(p); m != 0 {
		t.Fatalf("expected mode 0 at dot 252, got %d", m)
	}
	p.Tick(456 - 252)
	ly, _ := p.ReadByte(0xFF44)
	if ly != 1 {
		t.Fatalf("expected LY=1, got %d", ly)
	}
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 at new line, got %d", m)
	}
}

func TestPPUVBlankAndSTATOnVBlank(t *testing.T) {
	irq := ic.New()
	irq.WriteByte(0xFFFF, 0xFF) // Pending/Peek only report enabled lines
	p := New(Classic, irq, nil)
	p.WriteByte(0xFF41, 1<<4) // STAT IRQ on VBlank entry
	p.WriteByte(0xFF40, 0x80)
	p.Tick(144 * 456)

	if !irq.Pending() {
		t.Fatalf("expected a pending interrupt after entering VBlank")
	}
	bit, ok := irq.Peek()
	if !ok || bit != ic.VBlank {
		t.Fatalf("expected VBlank to be the highest-priority pending line, got bit=%d ok=%v", bit, ok)
	}
}

func TestSTATModeAndLYCCoincidence(t *testing.T) {
	irq := ic.New()
	irq.WriteByte(0xFFFF, 0xFF) // Pending/Peek only report enabled lines
	p := New(Classic, irq, nil)
	p.WriteByte(0xFF41, (1<<3)|(1<<5)|(1<<6))
	p.WriteByte(0xFF45, 2)
	p.WriteByte(0xFF40, 0x80)

	p.Tick(80 + 172) // entering HBlank of line 0
	if !irq.Pending() {
		t.Fatalf("expected STAT IRQ on HBlank when enabled")
	}
	irq.Consume()
	p.WriteByte(0xFF41, 1<<6) // leave only the LYC source enabled

	p.Tick((456 - (80 + 172)) + 456 + 1) // line 0 end, full line 1, into line 2
	if !irq.Pending() {
		t.Fatalf("expected STAT IRQ on LYC coincidence at LY=2")
	}
}
