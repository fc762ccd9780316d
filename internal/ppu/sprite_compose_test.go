package ppu

import "testing"

func setOAM(p *PPU, index int, y, x, tile, flags byte) {
	p.oam[index*4+0] = y
	p.oam[index*4+1] = x
	p.oam[index*4+2] = tile
	p.oam[index*4+3] = flags
}

func TestComposeSpriteLinePriorityAndTransparency(t *testing.T) {
	p := New(Classic, nil, nil)
	p.WriteByte(0xFF40, 0x80|0x02) // LCD+OBJ on, BG off so bg color index stays 0
	p.WriteByte(0xFF48, 0xE4)      // identity OBP0

	// Sprite tile with a single opaque leftmost pixel: lo=0x80, hi=0x00 -> color 1.
	p.vram[0][0] = 0x80
	p.vram[0][1] = 0x00
	setOAM(p, 0, 16+5, 8+10, 0, 0) // screen y=5, screen x=10, tile 0, no flags

	out := p.renderScanline(5)
	if out[10] != monoShades[1] {
		t.Fatalf("expected sprite color 1 at x=10, got %+v", out[10])
	}

	// Now mark the sprite as behind BG colors 1-3, and give the BG an opaque
	// pixel there so the priority bit actually has something to hide behind.
	setOAM(p, 0, 16+5, 8+10, 0, 1<<7)
	// The opaque BG tile is tile 1, so the sprite's tile 0 keeps its color-1 pixel.
	p.WriteByte(0xFF40, 0x80|0x02|0x01|0x10)
	setTile(p, 0, 1, allColor3)
	p.vram[0][0x9801-0x8000] = 1 // BG map entry under screen x=8-15
	out = p.renderScanline(5)
	if out[10] == monoShades[1] {
		t.Fatalf("expected sprite hidden behind opaque BG pixel when OAM priority bit set")
	}
}

func TestComposeSpriteLineTieBreaker(t *testing.T) {
	p := New(Classic, nil, nil)
	p.WriteByte(0xFF40, 0x80|0x02)
	p.WriteByte(0xFF48, 0xE4)

	p.vram[0][0] = 0xFF
	p.vram[0][1] = 0x00

	// OBP1 stays 0x00, so a pixel from the OBP1 sprite would be shade 0.
	setOAM(p, 0, 16+0, 8+20, 0, 1<<4) // OAM index 0, x=20, OBP1
	setOAM(p, 1, 16+0, 8+19, 0, 0)    // OAM index 1, x=19, OBP0

	out := p.renderScanline(0)
	if out[20] != monoShades[1] {
		t.Fatalf("expected the lower-X sprite's color at x=20, got %+v", out[20])
	}
}
