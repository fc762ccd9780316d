// Package ppu implements the picture-processing unit: VRAM/OAM storage, the
// four-state mode machine, the per-scanline background/window/sprite
// renderer, and mono/Color palettes.
package ppu

import (
	"bytes"
	"encoding/gob"

	"github.com/hollow-bender/pocketcore/internal/ic"
)

type Model int

const (
	Classic Model = iota
	Color
)

// Mode is the PPU's current display-controller state.
type Mode byte

const (
	HBlank Mode = 0
	VBlank Mode = 1
	OAM    Mode = 2
	VRAM   Mode = 3
)

const (
	oamDuration    = 80
	vramDuration   = 172
	hblankDuration = 204
	lineDuration   = oamDuration + vramDuration + hblankDuration // 456
	visibleLines   = 144
	totalLines     = 154
)

// DrawLineFunc is called once per visible scanline with its 160 composed
// pixels, matching the host interface's draw_line callback.
type DrawLineFunc func(line int, pixels [160]RGB)

type PPU struct {
	model Model
	irq   *ic.Controller
	draw  DrawLineFunc

	vram [2][0x2000]byte // two banks of 8 KiB; bank 1 only meaningful in Color mode
	oam  [0xA0]byte

	vbk byte // FF4F bit 0: visible VRAM bank

	lcdc byte
	stat byte
	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	bcp colorPaletteRAM
	ocp colorPaletteRAM

	shades [4]RGB // DMG shade substitution, used for CGB boot-compat colorization

	dot int
}

func New(model Model, irq *ic.Controller, draw DrawLineFunc) *PPU {
	p := &PPU{model: model, irq: irq, draw: draw, shades: monoShades}
	p.stat = byte(OAM)
	return p
}

// SetMonoShades substitutes the four shades used to render DMG-style
// (non-CGB-palette) pixels, letting a CGB running in DMG-compatibility mode
// recolor the classic grayscale output the way real CGB hardware's
// boot-time palette selection does.
func (p *PPU) SetMonoShades(s [4]RGB) { p.shades = s }

// ResetMonoShades restores the plain grayscale DMG shades.
func (p *PPU) ResetMonoShades() { p.shades = monoShades }

func (p *PPU) mode() Mode { return Mode(p.stat & 0x03) }

func (p *PPU) setMode(m Mode) {
	p.stat = (p.stat &^ 0x03) | byte(m)
}

func (p *PPU) lcdEnabled() bool { return p.lcdc&0x80 != 0 }

// Tick advances the PPU by cycles T-cycles, driving the mode machine and
// invoking the draw callback once per scanline at HBLANK entry.
func (p *PPU) Tick(cycles int) {
	if !p.lcdEnabled() {
		return
	}
	for i := 0; i < cycles; i++ {
		p.dot++
		switch p.mode() {
		case OAM:
			if p.dot >= oamDuration {
				p.dot = 0
				p.setMode(VRAM)
			}
		case VRAM:
			if p.dot >= vramDuration {
				p.dot = 0
				p.setMode(HBlank)
				if p.stat&(1<<3) != 0 {
					p.requestStat()
				}
				p.renderCurrentLine()
			}
		case HBlank:
			if p.dot >= hblankDuration {
				p.dot = 0
				p.ly++
				if p.ly < visibleLines {
					p.setMode(OAM)
					if p.stat&(1<<5) != 0 {
						p.requestStat()
					}
				} else {
					p.setMode(VBlank)
					p.requestVBlank()
					if p.stat&(1<<4) != 0 {
						p.requestStat()
					}
				}
				p.checkLYC()
			}
		case VBlank:
			if p.dot >= lineDuration {
				p.dot = 0
				p.ly++
				if p.ly > totalLines-1 {
					p.ly = 0
					p.setMode(OAM)
					if p.stat&(1<<5) != 0 {
						p.requestStat()
					}
				}
				p.checkLYC()
			}
		}
	}
}

func (p *PPU) requestVBlank() {
	if p.irq != nil {
		p.irq.RequestVBlank()
	}
}

func (p *PPU) requestStat() {
	if p.irq != nil {
		p.irq.RequestLCDStat()
	}
}

func (p *PPU) checkLYC() {
	if p.stat&(1<<6) != 0 && p.ly == p.lyc {
		p.requestStat()
	}
}

func (p *PPU) renderCurrentLine() {
	if p.draw == nil || p.ly >= visibleLines {
		return
	}
	pixels := p.renderScanline(p.ly)
	p.draw(int(p.ly), pixels)
}

// --- CPU-facing register/memory access ---

func (p *PPU) vramBank() int {
	if p.model == Classic {
		return 0
	}
	return int(p.vbk & 0x01)
}

func (p *PPU) ReadByte(addr uint16) (byte, bool) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode() == VRAM {
			return 0xFF, true
		}
		return p.vram[p.vramBank()][addr-0x8000], true
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m := p.mode(); m == OAM || m == VRAM {
			return 0xFF, true
		}
		return p.oam[addr-0xFE00], true
	case addr == 0xFF40:
		return p.lcdc, true
	case addr == 0xFF41:
		return 0x80 | p.stat, true
	case addr == 0xFF42:
		return p.scy, true
	case addr == 0xFF43:
		return p.scx, true
	case addr == 0xFF44:
		return p.ly, true
	case addr == 0xFF45:
		return p.lyc, true
	case addr == 0xFF47:
		return p.bgp, true
	case addr == 0xFF48:
		return p.obp0, true
	case addr == 0xFF49:
		return p.obp1, true
	case addr == 0xFF4A:
		return p.wy, true
	case addr == 0xFF4B:
		return p.wx, true
	case addr == 0xFF4F:
		return 0xFE | (p.vbk & 0x01), true
	case addr == 0xFF68:
		return p.bcp.readIndex(), true
	case addr == 0xFF69:
		return p.bcp.readData(), true
	case addr == 0xFF6A:
		return p.ocp.readIndex(), true
	case addr == 0xFF6B:
		return p.ocp.readData(), true
	}
	return 0, false
}

func (p *PPU) WriteByte(addr uint16, value byte) bool {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode() == VRAM {
			return true
		}
		p.vram[p.vramBank()][addr-0x8000] = value
		return true
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m := p.mode(); m == OAM || m == VRAM {
			return true
		}
		p.oam[addr-0xFE00] = value
		return true
	case addr == 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		if prev&0x80 != 0 && value&0x80 == 0 {
			p.ly, p.dot = 0, 0
			p.setMode(HBlank)
		} else if prev&0x80 == 0 && value&0x80 != 0 {
			p.ly, p.dot = 0, 0
			p.setMode(OAM)
		}
		return true
	case addr == 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
		return true
	case addr == 0xFF42:
		p.scy = value
		return true
	case addr == 0xFF43:
		p.scx = value
		return true
	case addr == 0xFF44:
		// LY is read-only on hardware; writes are ignored.
		return true
	case addr == 0xFF45:
		p.lyc = value
		p.checkLYC()
		return true
	case addr == 0xFF47:
		p.bgp = value
		return true
	case addr == 0xFF48:
		p.obp0 = value
		return true
	case addr == 0xFF49:
		p.obp1 = value
		return true
	case addr == 0xFF4A:
		p.wy = value
		return true
	case addr == 0xFF4B:
		p.wx = value
		return true
	case addr == 0xFF4F:
		if p.model == Color {
			p.vbk = value & 0x01
		}
		return true
	case addr == 0xFF68:
		p.bcp.writeIndex(value)
		return true
	case addr == 0xFF69:
		p.bcp.writeData(value)
		return true
	case addr == 0xFF6A:
		p.ocp.writeIndex(value)
		return true
	case addr == 0xFF6B:
		p.ocp.writeData(value)
		return true
	}
	return false
}

// VRAMBankRead reads a byte directly from a specific VRAM bank, bypassing
// the CPU-visible bank selector and mode gating — used by the renderer,
// which needs bank-1 attribute bytes and unconditional access.
func (p *PPU) VRAMBankRead(bank int, addr uint16) byte {
	return p.vram[bank&1][addr-0x8000]
}

// VRAMBankWrite writes directly into the given VRAM bank, bypassing CPU
// mode gating. Used by the HDMA/GDMA engine, which is the one device
// allowed to touch VRAM during mode 3.
func (p *PPU) VRAMBankWrite(bank int, addr uint16, value byte) {
	p.vram[bank&1][addr-0x8000] = value
}

// OAMRaw exposes the 40 sprite entries for the renderer and OAM DMA.
func (p *PPU) OAMRaw() *[0xA0]byte { return &p.oam }

// CurrentVRAMBank returns the CPU-selected VRAM bank (FF4F), the bank HDMA
// and GDMA transfers target.
func (p *PPU) CurrentVRAMBank() int { return p.vramBank() }

// Mode exposes the current display-controller state for the HDMA engine,
// which only transfers one row per HBlank period.
func (p *PPU) Mode() Mode { return p.mode() }

type ppuState struct {
	VRAM [2][0x2000]byte
	OAM  [0xA0]byte
	VBK  byte

	LCDC, STAT, SCY, SCX, LY, LYC byte
	BGP, OBP0, OBP1               byte
	WY, WX                        byte

	BCPBytes, OCPBytes     [8 * 4 * 2]byte
	BCPIndex, OCPIndex     byte
	BCPAutoInc, OCPAutoInc bool

	Shades [4]RGB
	Dot    int
}

// SaveState gob-encodes VRAM, OAM, every CPU-visible register, and both
// color-palette RAMs.
func (p *PPU) SaveState() []byte {
	var buf bytes.Buffer
	s := ppuState{
		VRAM: p.vram, OAM: p.oam, VBK: p.vbk,
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx, LY: p.ly, LYC: p.lyc,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1, WY: p.wy, WX: p.wx,
		BCPBytes: p.bcp.bytes, BCPIndex: p.bcp.index, BCPAutoInc: p.bcp.autoInc,
		OCPBytes: p.ocp.bytes, OCPIndex: p.ocp.index, OCPAutoInc: p.ocp.autoInc,
		Shades: p.shades, Dot: p.dot,
	}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState. The model and the
// interrupt/draw callbacks are not touched; the caller must have
// constructed this PPU with those already in place.
func (p *PPU) LoadState(data []byte) {
	var s ppuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	p.vram, p.oam, p.vbk = s.VRAM, s.OAM, s.VBK
	p.lcdc, p.stat, p.scy, p.scx, p.ly, p.lyc = s.LCDC, s.STAT, s.SCY, s.SCX, s.LY, s.LYC
	p.bgp, p.obp0, p.obp1, p.wy, p.wx = s.BGP, s.OBP0, s.OBP1, s.WY, s.WX
	p.bcp = colorPaletteRAM{bytes: s.BCPBytes, index: s.BCPIndex, autoInc: s.BCPAutoInc}
	p.ocp = colorPaletteRAM{bytes: s.OCPBytes, index: s.OCPIndex, autoInc: s.OCPAutoInc}
	p.shades, p.dot = s.Shades, s.Dot
}

func (p *PPU) LCDC() byte   { return p.lcdc }
func (p *PPU) SCY() byte    { return p.scy }
func (p *PPU) SCX() byte    { return p.scx }
func (p *PPU) WY() byte     { return p.wy }
func (p *PPU) WX() byte     { return p.wx }
func (p *PPU) LY() byte     { return p.ly }
func (p *PPU) Model() Model { return p.model }
