package ppu

import "testing"

func setTile(p *PPU, bank int, tileIdx byte, rowPattern [8]byte) {
	base := 0x8000 + uint16(tileIdx)*16
	for row := 0; row < 8; row++ {
		var lo, hi byte
		for bit := 0; bit < 8; bit++ {
			ci := rowPattern[bit]
			lo |= (ci & 0x01) << (7 - bit)
			hi |= ((ci >> 1) & 0x01) << (7 - bit)
		}
		p.vram[bank][base+uint16(row)*2-0x8000] = lo
		p.vram[bank][base+uint16(row)*2+1-0x8000] = hi
	}
}

// allColor3 is a full 8x8 tile of color index 3 (opaque, darkest mono shade).
var allColor3 = [8]byte{3, 3, 3, 3, 3, 3, 3, 3}

func TestWindowOverridesBackgroundOncePastWY(t *testing.T) {
	p := New(Classic, nil, nil)
	// LCD+BG+Window on, unsigned tile addressing, window uses the 0x9C00 map
	// so it can point at a different tile than the (zeroed, blank) BG map.
	p.WriteByte(0xFF40, 0x80|0x01|0x20|0x10|0x40)

	// BG map (0x9800) stays all-zero -> tile 0, which is left blank (color 0).
	// Window map (0x9C00) tile 0 is remapped to tile 1, fully color 3.
	setTile(p, 0, 1, allColor3)
	p.vram[0][0x9C00-0x8000] = 1

	p.WriteByte(0xFF4A, 10) // WY
	p.WriteByte(0xFF4B, 7)  // WX=7 -> window starts at screen x=0

	above := p.renderBackgroundAndWindow(9)
	if above[0].colorIndex != 0 {
		t.Fatalf("expected BG color 0 above WY, got %d", above[0].colorIndex)
	}

	below := p.renderBackgroundAndWindow(10)
	if below[0].colorIndex != 3 {
		t.Fatalf("expected window color 3 at WY line, got %d", below[0].colorIndex)
	}
}

func TestWindowNotVisibleWhenWXTooLarge(t *testing.T) {
	p := New(Classic, nil, nil)
	// Window on the 0x9C00 map, pointing at an opaque tile 1; the BG map
	// keeps blank tile 0, so any nonzero pixel would come from the window.
	p.WriteByte(0xFF40, 0x80|0x01|0x20|0x10|0x40)
	setTile(p, 0, 1, allColor3)
	p.vram[0][0x9C00-0x8000] = 1

	p.WriteByte(0xFF4A, 5)
	p.WriteByte(0xFF4B, 200) // off the visible 160-pixel line

	row := p.renderBackgroundAndWindow(5)
	for x := 0; x < 160; x++ {
		if row[x].colorIndex != 0 {
			t.Fatalf("expected window inactive at x=%d when WX=200", x)
		}
	}
}
