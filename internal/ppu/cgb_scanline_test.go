package ppu

// Tests for CGB BG/window attribute resolution: palette, flips, bank, priority.
import "testing"

func TestCGB_BG_Attrs_Flips_Bank_Palette(t *testing.T) {
	p := New(Color, nil, nil)
	p.WriteByte(0xFF40, 0x80|0x01|0x10) // LCD+BG on, unsigned tile addressing

	// Tile 1's row 7 (selected after Y-flip) holds color index 2 at pixel 7
	// (X-flip shows it at screen x=0) in bank 1; bank 0's data is irrelevant
	// once bank=1 is selected.
	base := 0x8000 + uint16(1)*16
	p.vram[1][base+14-0x8000] = 0x00 // lo
	p.vram[1][base+15-0x8000] = 0x01 // hi, bit0 set -> rightmost pixel before xflip

	// BG map entry 0 -> tile 1.
	p.vram[0][0x9800-0x8000] = 0x01
	// Attribute byte: priority=1, yflip=1, xflip=1, bank=1, palette=5.
	p.vram[1][0x9800-0x8000] = 0x80 | 0x40 | 0x20 | 0x08 | 0x05

	row := p.renderBackgroundAndWindow(0)
	if !row[0].attr.priority() {
		t.Fatalf("expected BG-to-OAM priority bit set")
	}
	if row[0].attr.palette() != 5 {
		t.Fatalf("palette got %d want 5", row[0].attr.palette())
	}
	if row[0].colorIndex == 0 {
		t.Fatalf("expected nonzero color index with xflip+yflip applied")
	}
}

func TestCGB_Window_Basic(t *testing.T) {
	p := New(Color, nil, nil)
	p.WriteByte(0xFF40, 0x80|0x01|0x20|0x10) // LCD+BG+Window on

	base := 0x8000 + uint16(2)*16
	p.vram[0][base-0x8000] = 0xFF
	p.vram[0][base+1-0x8000] = 0x00
	p.vram[0][0x9800-0x8000] = 0x02 // window map defaults to 0x9800 here
	p.vram[1][0x9800-0x8000] = 0x00 // bank 0, palette 0, no priority

	p.WriteByte(0xFF4A, 0) // WY=0
	p.WriteByte(0xFF4B, 7) // WX=7 -> window starts at x=0

	row := p.renderBackgroundAndWindow(0)
	if row[0].attr.palette() != 0 || row[0].attr.priority() {
		t.Fatalf("unexpected attrs palette=%d priority=%v", row[0].attr.palette(), row[0].attr.priority())
	}
	if row[0].colorIndex == 0 {
		t.Fatalf("expected nonzero window color index")
	}
}
