package gameboy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hollow-bender/pocketcore/internal/cart"
)

func TestAutoCompatPaletteExactTitle(t *testing.T) {
	h := &cart.Header{Title: "TETRIS", OldLicensee: 0x01}
	id, ok := autoCompatPaletteFromHeader(h)
	assert.True(t, ok)
	assert.Equal(t, 2, id)
	assert.Equal(t, "Blue", cgbCompatSetNames[id])
}

func TestAutoCompatPaletteSubstringFallback(t *testing.T) {
	h := &cart.Header{Title: "SUPER MARIO LAND 3", OldLicensee: 0x01}
	id, ok := autoCompatPaletteFromHeader(h)
	assert.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestAutoCompatPaletteNintendoChecksumFallback(t *testing.T) {
	h := &cart.Header{Title: "UNKNOWN GAME", OldLicensee: 0x01, HeaderChecksum: 7}
	id, ok := autoCompatPaletteFromHeader(h)
	assert.True(t, ok)
	assert.Equal(t, 7%len(cgbCompatSets), id)
}

func TestAutoCompatPaletteNonNintendoDefaultsToZero(t *testing.T) {
	h := &cart.Header{Title: "THIRD PARTY GAME", OldLicensee: 0x99, HeaderChecksum: 42}
	id, ok := autoCompatPaletteFromHeader(h)
	assert.True(t, ok)
	assert.Equal(t, 0, id)
}

func TestAutoCompatPaletteNilHeader(t *testing.T) {
	id, ok := autoCompatPaletteFromHeader(nil)
	assert.False(t, ok)
	assert.Equal(t, 0, id)
}

func TestCompatPaletteNameWraps(t *testing.T) {
	assert.Equal(t, cgbCompatSetNames[0], (&Machine{}).CompatPaletteName(len(cgbCompatSets)))
	assert.Equal(t, cgbCompatSetNames[len(cgbCompatSetNames)-1], (&Machine{}).CompatPaletteName(-1))
}
