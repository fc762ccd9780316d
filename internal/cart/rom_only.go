package cart

// ROMOnly implements cart type 0x00: a single fixed 32 KiB bank, no bank
// switching, no external RAM. This is the only Cartridge that also serves
// as the fallback for headers NewCartridge can't classify.
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	default: // 0xA000-0xBFFF external RAM region: unpopulated
		return 0xFF
	}
}

// Write is a no-op: there are no banking registers to latch and no RAM to
// accept the value, matching real ROM-only hardware.
func (c *ROMOnly) Write(addr uint16, value byte) {}

// SaveState/LoadState are no-ops: ROMOnly carries no banking registers or
// RAM, so there is nothing beyond the ROM bytes themselves to persist.
func (c *ROMOnly) SaveState() []byte     { return nil }
func (c *ROMOnly) LoadState(data []byte) {}
