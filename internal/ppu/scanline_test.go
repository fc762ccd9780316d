package ppu

import "testing"

func TestScanline_SCXOffsetAndTileWrap(t *testing.T) {
	p := New(Classic, nil, nil)
	p.WriteByte(0xFF40, 0x80|0x01|0x10) // LCD+BG on, unsigned addressing

	for tile := 0; tile < 32; tile++ {
		p.vram[0][0x9800-0x8000+uint16(tile)] = byte(tile)
		base := 0x8000 + uint16(tile)*16
		p.vram[0][base-0x8000] = byte(tile)
		p.vram[0][base+1-0x8000] = ^byte(tile)
	}
	p.WriteByte(0xFF43, 5) // SCX=5

	row := p.renderBackgroundAndWindow(0)
	lo0, hi0 := byte(0), ^byte(0)
	for i := 0; i < 3; i++ {
		b := byte(2 - i)
		want := ((hi0>>b)&1)<<1 | ((lo0 >> b) & 1)
		if row[i].colorIndex != want {
			t.Fatalf("px %d got %d want %d", i, row[i].colorIndex, want)
		}
	}
	lo1, hi1 := byte(1), ^byte(1)
	for i := 0; i < 8; i++ {
		b := byte(7 - i)
		want := ((hi1>>b)&1)<<1 | ((lo1 >> b) & 1)
		if row[3+i].colorIndex != want {
			t.Fatalf("tile1 px %d got %d want %d", i, row[3+i].colorIndex, want)
		}
	}
}

func TestScanline_SCYRowSelectAndMapWrap(t *testing.T) {
	p := New(Classic, nil, nil)
	p.WriteByte(0xFF40, 0x80|0x01|0x10)

	// ly=0, scy=11 -> bgY=11, map row 1 (tiles 32..63), fineY=3
	p.vram[0][0x9800-0x8000+32+0] = 0
	p.vram[0][0x9800-0x8000+32+1] = 1
	base0 := 0x8000 + uint16(0)*16 + uint16(3)*2
	p.vram[0][base0-0x8000] = 0x12
	p.vram[0][base0+1-0x8000] = 0x34
	base1 := 0x8000 + uint16(1)*16 + uint16(3)*2
	p.vram[0][base1-0x8000] = 0x56
	p.vram[0][base1+1-0x8000] = 0x78
	p.WriteByte(0xFF42, 11) // SCY=11

	row := p.renderBackgroundAndWindow(0)
	lo0, hi0 := byte(0x12), byte(0x34)
	for i := 0; i < 8; i++ {
		b := byte(7 - i)
		want := ((hi0>>b)&1)<<1 | ((lo0 >> b) & 1)
		if row[i].colorIndex != want {
			t.Fatalf("tile0 px %d got %d want %d", i, row[i].colorIndex, want)
		}
	}
	lo1, hi1 := byte(0x56), byte(0x78)
	for i := 0; i < 8; i++ {
		b := byte(7 - i)
		want := ((hi1>>b)&1)<<1 | ((lo1 >> b) & 1)
		if row[8+i].colorIndex != want {
			t.Fatalf("tile1 px %d got %d want %d", i, row[8+i].colorIndex, want)
		}
	}
}

func TestScanline_SignedTileAddressing8800(t *testing.T) {
	p := New(Classic, nil, nil)
	p.WriteByte(0xFF40, 0x80|0x01) // LCD+BG on, bit4=0 -> signed addressing

	p.vram[0][0x9800-0x8000] = 0xFF // tile index -1 -> base 0x8FF0
	rowAddr := uint16(0x8FF0) + uint16(0)*2
	p.vram[0][rowAddr-0x8000] = 0xA5
	p.vram[0][rowAddr+1-0x8000] = 0x5A

	row := p.renderBackgroundAndWindow(0)
	lo, hi := byte(0xA5), byte(0x5A)
	for i := 0; i < 8; i++ {
		b := byte(7 - i)
		want := ((hi>>b)&1)<<1 | ((lo >> b) & 1)
		if row[i].colorIndex != want {
			t.Fatalf("px %d got %d want %d", i, row[i].colorIndex, want)
		}
	}
}
