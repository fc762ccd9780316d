package cart

// Device adapts a Cartridge plus the boot-ROM overlay into the bus's
// IoDevice contract. It owns the 0x0000-0x7FFF and 0xA000-0xBFFF ranges
// (ROM, MBC control, external RAM) and the 0xFF50 boot-ROM disable register.
type Device struct {
	cart Cartridge

	boot        []byte // boot ROM image, nil if none loaded
	bootEnabled bool
	cgbBoot     bool // Color boot ROM also overlays 0x0200-0x08FF
}

// NewDevice wraps a Cartridge. If boot is non-nil it is mapped over
// 0x0000-0x00FF (and, when cgb is true, also 0x0200-0x08FF) until the first
// write to 0xFF50.
func NewDevice(c Cartridge, boot []byte, cgb bool) *Device {
	d := &Device{cart: c, boot: boot, cgbBoot: cgb}
	d.bootEnabled = len(boot) > 0
	return d
}

func (d *Device) Cartridge() Cartridge { return d.cart }

func (d *Device) inBootOverlay(addr uint16) bool {
	if !d.bootEnabled || len(d.boot) == 0 {
		return false
	}
	if addr < 0x0100 {
		return true
	}
	if d.cgbBoot && addr >= 0x0200 && addr <= 0x08FF {
		return true
	}
	return false
}

func (d *Device) ReadByte(addr uint16) (byte, bool) {
	switch {
	case addr == 0xFF50:
		return 0xFF, true
	case d.inBootOverlay(addr):
		if int(addr) < len(d.boot) {
			return d.boot[addr], true
		}
		return 0xFF, true
	case addr <= 0x7FFF, addr >= 0xA000 && addr <= 0xBFFF:
		return d.cart.Read(addr), true
	}
	return 0, false
}

func (d *Device) WriteByte(addr uint16, value byte) bool {
	switch {
	case addr == 0xFF50:
		d.bootEnabled = false
		return true
	case addr <= 0x7FFF, addr >= 0xA000 && addr <= 0xBFFF:
		d.cart.Write(addr, value)
		return true
	}
	return false
}
