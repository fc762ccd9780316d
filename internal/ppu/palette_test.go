package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonoPaletteRGB(t *testing.T) {
	// BGP = 0b11_10_01_00: index0->shade0, index1->shade1, index2->shade2, index3->shade3
	p := monoPalette{raw: 0b11_10_01_00}
	custom := [4]RGB{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}}

	assert.Equal(t, custom[0], p.rgb(0, custom))
	assert.Equal(t, custom[1], p.rgb(1, custom))
	assert.Equal(t, custom[2], p.rgb(2, custom))
	assert.Equal(t, custom[3], p.rgb(3, custom))
}

func TestMonoPaletteDefaultShades(t *testing.T) {
	p := monoPalette{raw: 0b00_00_00_01} // index0 -> shade1, everything else -> shade0
	assert.Equal(t, monoShades[1], p.rgb(0, monoShades))
	assert.Equal(t, monoShades[0], p.rgb(1, monoShades))
}

func TestColorPaletteRAMAutoIncrement(t *testing.T) {
	var c colorPaletteRAM
	c.writeIndex(0x80) // index 0, auto-increment on

	c.writeData(0xFF) // low byte of palette 0 color 0
	c.writeData(0x7F) // high byte -> full white in RGB555

	assert.Equal(t, RGB{0xFF, 0xFF, 0xFF}, c.color(0, 0))
	assert.Equal(t, byte(0x82), c.readIndex()) // advanced to index 2, auto-inc bit still set
}

func TestRGB555ToRGBExpandsBits(t *testing.T) {
	// All bits set in the 5-bit red channel only: lo=0b00011111, hi=0b00000000
	got := rgb555ToRGB(0x1F, 0x00)
	assert.Equal(t, byte(0xFF), got.R)
	assert.Equal(t, byte(0x00), got.G)
	assert.Equal(t, byte(0x00), got.B)
}
