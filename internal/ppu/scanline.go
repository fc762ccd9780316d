package ppu

// spriteAttr mirrors one 4-byte OAM entry.
type spriteAttr struct {
	y, x, tile, flags byte
}

func (s spriteAttr) priority() bool  { return s.flags&0x80 != 0 } // 1: behind BG colors 1-3
func (s spriteAttr) yFlip() bool     { return s.flags&0x40 != 0 }
func (s spriteAttr) xFlip() bool     { return s.flags&0x20 != 0 }
func (s spriteAttr) dmgPalette() int { return int((s.flags >> 4) & 0x01) }
func (s spriteAttr) cgbBank() int    { return int((s.flags >> 3) & 0x01) }
func (s spriteAttr) cgbPalette() int { return int(s.flags & 0x07) }

// bgAttr mirrors a CGB background tile-map attribute byte, stored in VRAM
// bank 1 at the same offset as the tile index in bank 0.
type bgAttr struct{ raw byte }

func (a bgAttr) palette() int   { return int(a.raw & 0x07) }
func (a bgAttr) bank() int      { return int((a.raw >> 3) & 0x01) }
func (a bgAttr) xFlip() bool    { return a.raw&0x20 != 0 }
func (a bgAttr) yFlip() bool    { return a.raw&0x40 != 0 }
func (a bgAttr) priority() bool { return a.raw&0x80 != 0 } // drawn above sprites regardless of OBJ priority bit

type bgPixel struct {
	colorIndex byte
	attr       bgAttr
}

// renderScanline composes one visible line: background, window, and up to
// ten sprites, resolved with the hardware priority table:
//
//	BG color 0             -> always behind sprites
//	sprite OAM priority=0  -> sprite drawn above BG colors 1-3
//	sprite OAM priority=1  -> sprite behind BG colors 1-3
//	CGB BG-to-OAM priority -> when LCDC bit0 is set, the BG attribute's own
//	                          priority bit overrides the sprite's OAM bit
func (p *PPU) renderScanline(ly byte) [160]RGB {
	var out [160]RGB
	bg := p.renderBackgroundAndWindow(ly)

	monoBG := monoPalette{p.bgp}
	for x := 0; x < 160; x++ {
		px := bg[x]
		if p.model == Color {
			out[x] = p.bcp.color(px.attr.palette(), int(px.colorIndex))
		} else {
			out[x] = monoBG.rgb(px.colorIndex, p.shades)
		}
	}

	if p.lcdc&0x02 != 0 {
		p.renderSprites(ly, bg, &out)
	}
	return out
}

func (p *PPU) renderBackgroundAndWindow(ly byte) [160]bgPixel {
	var row [160]bgPixel

	bgWinEnabled := p.model == Color || p.lcdc&0x01 != 0
	if !bgWinEnabled {
		return row
	}

	bgMapBase := uint16(0x9800)
	if p.lcdc&0x08 != 0 {
		bgMapBase = 0x9C00
	}
	winMapBase := uint16(0x9800)
	if p.lcdc&0x40 != 0 {
		winMapBase = 0x9C00
	}
	signedTiles := p.lcdc&0x10 == 0
	windowEnabled := p.lcdc&0x20 != 0 && p.wy <= ly

	y := ly + p.scy
	for x := 0; x < 160; x++ {
		useWindow := windowEnabled && int(x) >= int(p.wx)-7
		var mapBase uint16
		var tx, ty, px, py byte
		if useWindow {
			mapBase = winMapBase
			wx := byte(int(x) - (int(p.wx) - 7))
			wy := ly - p.wy
			tx, ty = wx/8, wy/8
			px, py = wx%8, wy%8
		} else {
			mapBase = bgMapBase
			bx := byte(x) + p.scx
			tx, ty = bx/8, y/8
			px, py = bx%8, y%8
		}

		mapAddr := mapBase + uint16(ty)*32 + uint16(tx)
		tileIdx := p.VRAMBankRead(0, mapAddr)

		var attr bgAttr
		if p.model == Color {
			attr = bgAttr{p.VRAMBankRead(1, mapAddr)}
		}

		tileAddr := tileDataAddr(tileIdx, signedTiles)

		if attr.xFlip() {
			px = 7 - px
		}
		if attr.yFlip() {
			py = 7 - py
		}

		lo := p.VRAMBankRead(attr.bank(), tileAddr+uint16(py)*2)
		hi := p.VRAMBankRead(attr.bank(), tileAddr+uint16(py)*2+1)
		colorIndex := tilePixel(lo, hi, px)

		row[x] = bgPixel{colorIndex: colorIndex, attr: attr}
	}
	return row
}

// tileDataAddr resolves a tile index to its VRAM base address. LCDC bit 4
// selects between the 0x8000-unsigned and 0x8800-signed addressing modes.
func tileDataAddr(idx byte, signed bool) uint16 {
	if !signed {
		return 0x8000 + uint16(idx)*16
	}
	return uint16(int32(0x9000) + int32(int8(idx))*16)
}

// tilePixel decodes one pixel (0-7, 0 = leftmost) from a tile row's two
// bitplane bytes.
func tilePixel(lo, hi byte, px byte) byte {
	bit := 7 - px
	l := (lo >> bit) & 0x01
	h := (hi >> bit) & 0x01
	return (h << 1) | l
}

func (p *PPU) renderSprites(ly byte, bg [160]bgPixel, out *[160]RGB) {
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}

	var visible []spriteAttr
	for i := 0; i < 40 && len(visible) < 10; i++ {
		e := spriteAttr{
			y:     p.oam[i*4],
			x:     p.oam[i*4+1],
			tile:  p.oam[i*4+2],
			flags: p.oam[i*4+3],
		}
		top := int(e.y) - 16
		if int(ly) >= top && int(ly) < top+height {
			visible = append(visible, e)
		}
	}

	// DMG breaks ties by X coordinate (stable sort, lower X drawn on top);
	// CGB uses pure OAM order, which `visible` already preserves.
	if p.model == Classic {
		for i := 1; i < len(visible); i++ {
			v := visible[i]
			j := i - 1
			for j >= 0 && visible[j].x > v.x {
				visible[j+1] = visible[j]
				j--
			}
			visible[j+1] = v
		}
	}

	monoOBP := [2]monoPalette{{p.obp0}, {p.obp1}}
	bgWinMaster := p.model == Color && p.lcdc&0x01 != 0

	for x := 0; x < 160; x++ {
		for _, s := range visible {
			left := int(s.x) - 8
			if int(x) < left || int(x) >= left+8 {
				continue
			}
			row := byte(int(ly) - (int(s.y) - 16))
			if s.yFlip() {
				row = byte(height-1) - row
			}
			tile := s.tile
			if height == 16 {
				tile &^= 0x01
				if row >= 8 {
					tile |= 0x01
					row -= 8
				}
			}
			col := byte(int(x) - left)
			if s.xFlip() {
				col = 7 - col
			}
			bank := 0
			if p.model == Color {
				bank = s.cgbBank()
			}
			tileAddr := 0x8000 + uint16(tile)*16
			lo := p.VRAMBankRead(bank, tileAddr+uint16(row)*2)
			hi := p.VRAMBankRead(bank, tileAddr+uint16(row)*2+1)
			ci := tilePixel(lo, hi, col)
			if ci == 0 {
				continue // transparent
			}

			bgPx := bg[x]
			bgAboveSprite := bgPx.colorIndex != 0 && s.priority()
			if bgWinMaster && bgPx.attr.priority() {
				bgAboveSprite = bgPx.colorIndex != 0
			}
			if bgAboveSprite {
				break
			}

			if p.model == Color {
				out[x] = p.ocp.color(s.cgbPalette(), int(ci))
			} else {
				out[x] = monoOBP[s.dmgPalette()].rgb(ci, p.shades)
			}
			break
		}
	}
}
