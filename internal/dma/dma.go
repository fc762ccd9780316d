// Package dma implements OAM DMA and the CGB VRAM DMA engine (general-purpose
// and H-blank-paced transfers), wired onto the bus like any other device but
// also ticked by the top-level machine loop after every CPU instruction with
// that instruction's T-cycle count.
package dma

import "github.com/hollow-bender/pocketcore/internal/ppu"

const (
	oamDuration = 640 // T-cycles for a 160-byte OAM transfer
	rowDuration = 8   // T-cycles per 16-byte VRAM DMA row
)

// Reader is the subset of the bus a DMA engine needs to pull source bytes
// from (ROM, WRAM, etc. — anything but OAM/VRAM, which it writes directly).
type Reader interface {
	ReadByte(addr uint16) byte
}

type kind int

const (
	none kind = iota
	oam
	gdma
	hdma
)

// Controller models the Game Boy's two independent DMA engines: the classic
// OAM DMA (FF46) and, on CGB, the VRAM-to-VRAM general-purpose/H-blank DMA
// (FF51-FF55).
type Controller struct {
	bus Reader
	ppu *ppu.PPU

	active  kind
	clock   int
	oamBase uint16

	vramSrc uint16
	vramDst uint16
	lenReg  byte // FF55 bits 0-6: (length/16)-1
}

func New(bus Reader, p *ppu.PPU) *Controller {
	return &Controller{bus: bus, ppu: p}
}

// TriggerOAM starts a 160-byte OAM transfer from value*0x100.
func (c *Controller) TriggerOAM(value byte) {
	c.oamBase = uint16(value) << 8
	c.active = oam
	c.clock = 0
}

// Tick advances whichever DMA is active by the given number of T-cycles.
// gameboy.Machine.Cycle calls it once per CPU instruction, after the CPU
// step and before the PPU advances. An H-blank transfer copies one row per
// HBlank period, rowDuration cycles after the period begins.
func (c *Controller) Tick(cycles int) {
	switch c.active {
	case oam:
		c.clock += cycles
		if c.clock >= oamDuration {
			c.clock -= oamDuration
			oamDst := c.ppu.OAMRaw()
			for i := 0; i < 0xA0; i++ {
				oamDst[i] = c.bus.ReadByte(c.oamBase + uint16(i))
			}
			c.active = none
		}
	case gdma:
		rows := int(c.lenReg) + 1
		c.clock += cycles
		if c.clock >= rows*rowDuration {
			c.clock -= rows * rowDuration
			for i := 0; i < rows; i++ {
				c.transferRow()
			}
			c.active = none
		}
	case hdma:
		if c.ppu.Mode() != ppu.HBlank {
			c.clock = 0
			return
		}
		before := c.clock
		c.clock += cycles
		if before < rowDuration && c.clock >= rowDuration {
			c.transferRow()
			if c.lenReg == 0x7F {
				c.active = none
			}
		}
	}
}

func (c *Controller) transferRow() {
	bank := c.ppu.CurrentVRAMBank()
	for i := uint16(0); i < 0x10; i++ {
		v := c.bus.ReadByte(c.vramSrc + i)
		c.ppu.VRAMBankWrite(bank, c.vramDst+i, v)
	}
	c.vramSrc += 0x10
	c.vramDst += 0x10
	if c.lenReg == 0 {
		c.lenReg = 0x7F
	} else {
		c.lenReg--
	}
}

// OAMBusy reports whether OAM DMA is in flight. The bus does not consult
// it, so CPU reads outside HRAM are not blocked during the transfer and
// return their normal values.
func (c *Controller) OAMBusy() bool { return c.active == oam }

func (c *Controller) ReadByte(addr uint16) (byte, bool) {
	switch addr {
	case 0xFF46:
		return 0, true // write-only trigger register
	case 0xFF51, 0xFF52:
		return 0xFF, true // source registers are write-only
	case 0xFF53, 0xFF54:
		return 0xFF, true // target registers are write-only
	case 0xFF55:
		active := byte(0x80)
		if c.active == hdma {
			active = 0
		}
		return active | (c.lenReg & 0x7F), true
	}
	return 0, false
}

func (c *Controller) WriteByte(addr uint16, value byte) bool {
	switch addr {
	case 0xFF46:
		c.TriggerOAM(value)
		return true
	case 0xFF51:
		c.vramSrc = (c.vramSrc & 0x00FF) | uint16(value)<<8
		return true
	case 0xFF52:
		c.vramSrc = (c.vramSrc & 0xFF00) | uint16(value&0xF0)
		return true
	case 0xFF53:
		c.vramDst = 0x8000 | (c.vramDst&0x00FF) | uint16(value&0x1F)<<8
		return true
	case 0xFF54:
		c.vramDst = (c.vramDst &^ 0x00FF) | uint16(value&0xF0)
		return true
	case 0xFF55:
		c.lenReg = value & 0x7F
		if value&0x80 == 0 {
			if c.active == hdma {
				// Writing with bit7 clear while an H-blank transfer is in
				// flight aborts it instead of starting a new GDMA.
				c.active = none
				return true
			}
			c.active = gdma
		} else {
			c.active = hdma
		}
		c.clock = 0
		return true
	}
	return false
}
