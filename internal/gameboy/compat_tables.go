package gameboy

import (
	"strings"

	"github.com/hollow-bender/pocketcore/internal/cart"
	"github.com/hollow-bender/pocketcore/internal/ppu"
)

// cgbCompatSetNames and cgbCompatSets back Machine.CompatPaletteName/
// SetCompatPalette/CycleCompatPalette: a small curated set of DMG shade
// substitutions a real CGB applies when it boots a Classic cartridge,
// picked by title or, failing that, by a stable hash of the header. Real
// hardware ships about a dozen of these, keyed by a lookup ROM this
// project has no access to; this set covers the handful of franchises the
// title table below recognizes plus a couple of general-purpose choices,
// which is enough to reproduce the "just works" compatibility coloring
// without claiming bit-exact hardware parity.
var cgbCompatSetNames = []string{
	"Green", "Sepia", "Blue", "Red", "Pastel", "Orange",
}

var cgbCompatSets = [][4]ppu.RGB{
	{ // Green — Zelda-style
		{R: 0xF7, G: 0xFF, B: 0xC9},
		{R: 0x9B, G: 0xE8, B: 0x5B},
		{R: 0x3E, G: 0x8E, B: 0x4A},
		{R: 0x13, G: 0x3B, B: 0x1F},
	},
	{ // Sepia — Donkey Kong/Wario-style
		{R: 0xFB, G: 0xEF, B: 0xD3},
		{R: 0xD9, G: 0xB4, B: 0x81},
		{R: 0x9C, G: 0x6B, B: 0x3E},
		{R: 0x4A, G: 0x2E, B: 0x1A},
	},
	{ // Blue — Tetris/Mega Man-style
		{R: 0xE6, G: 0xF4, B: 0xFF},
		{R: 0x8F, G: 0xC6, B: 0xF0},
		{R: 0x3E, G: 0x78, B: 0xB8},
		{R: 0x14, G: 0x2B, B: 0x5C},
	},
	{ // Red — Mario/Metroid-style
		{R: 0xFF, G: 0xEC, B: 0xE6},
		{R: 0xF2, G: 0x9A, B: 0x8C},
		{R: 0xC6, G: 0x3E, B: 0x3E},
		{R: 0x5C, G: 0x12, B: 0x12},
	},
	{ // Pastel — Kirby/Pokemon-style
		{R: 0xFF, G: 0xF4, B: 0xFA},
		{R: 0xF2, G: 0xB6, B: 0xDE},
		{R: 0xAD, G: 0x8A, B: 0xD6},
		{R: 0x4E, G: 0x3B, B: 0x6E},
	},
	{ // Orange — generic fallback
		{R: 0xFF, G: 0xF1, B: 0xD6},
		{R: 0xF5, G: 0xB8, B: 0x61},
		{R: 0xCF, G: 0x72, B: 0x2A},
		{R: 0x5E, G: 0x30, B: 0x0D},
	},
}

// compatTitleExact maps exact, normalized titles to a preferred palette ID
// indexing into cgbCompatSets/cgbCompatSetNames.
var compatTitleExact = map[string]int{
	"TETRIS":              2,
	"TETRIS DX":           2,
	"SUPER MARIO LAND":    3,
	"SUPER MARIO LAND 2":  3,
	"DR. MARIO":           4,
	"DONKEY KONG":         1,
	"THE LEGEND OF ZELDA": 0,
	"ZELDA":               0,
	"METROID II":          3,
	"KIRBY'S DREAM LAND":  4,
	"MEGA MAN":            2,
	"MEGAMAN":             2,
	"WARIO LAND":          1,
	"POKEMON YELLOW":      4,
	"POKEMON RED":         4,
	"POKEMON BLUE":        4,
	"POCKET MONSTERS":     4,
}

type containsRule struct {
	substr string
	id     int
}

// compatTitleContains applies broader substring heuristics for families
// whose titles vary by region/revision.
var compatTitleContains = []containsRule{
	{"TETRIS", 2},
	{"MARIO", 3},
	{"ZELDA", 0},
	{"KIRBY", 4},
	{"DONKEY KONG", 1},
	{"METROID", 3},
	{"MEGA MAN", 2},
	{"MEGAMAN", 2},
	{"WARIO", 1},
	{"POKEMON", 4},
	{"POCKET MONSTERS", 4},
}

// autoCompatPaletteFromHeader picks a default palette ID using the title
// tables above and, failing that, a stable hash of the header checksum for
// Nintendo-published titles so the same cartridge always lands on the same
// palette across runs.
func autoCompatPaletteFromHeader(h *cart.Header) (int, bool) {
	if h == nil {
		return 0, false
	}
	t := strings.ToUpper(strings.TrimSpace(strings.TrimRight(h.Title, "\x00")))
	if id, ok := compatTitleExact[t]; ok {
		return id, true
	}
	for _, r := range compatTitleContains {
		if strings.Contains(t, r.substr) {
			return r.id, true
		}
	}
	nintendo := false
	if h.OldLicensee == 0x33 {
		nintendo = strings.ToUpper(h.NewLicensee) == "01"
	} else {
		nintendo = h.OldLicensee == 0x01
	}
	if nintendo {
		return int(h.HeaderChecksum) % len(cgbCompatSets), true
	}
	return 0, true
}
