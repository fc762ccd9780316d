package cart

import "testing"

func TestDevice_BootROMOverlayUntilFF50Write(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0xAA
	boot := make([]byte, 0x100)
	boot[0x0000] = 0xBB

	d := NewDevice(NewROMOnly(rom), boot, false)

	if v, _ := d.ReadByte(0x0000); v != 0xBB {
		t.Fatalf("expected boot overlay byte, got %02x", v)
	}

	d.WriteByte(0xFF50, 0x01)

	if v, _ := d.ReadByte(0x0000); v != 0xAA {
		t.Fatalf("expected cartridge byte after boot disable, got %02x", v)
	}
}

func TestDevice_NoBootROMFallsThroughToCartridge(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0x42
	d := NewDevice(NewROMOnly(rom), nil, false)

	if v, _ := d.ReadByte(0x0000); v != 0x42 {
		t.Fatalf("got %02x, want 42", v)
	}
}

func TestValidate_RejectsShortROM(t *testing.T) {
	if err := Validate(make([]byte, 100), false); err == nil {
		t.Fatalf("expected error for short ROM")
	}
}

func TestValidate_AllowBadChecksumSkipsCheck(t *testing.T) {
	rom := make([]byte, 0x8000)
	// deliberately wrong checksum byte
	rom[0x014D] = 0x00
	if err := Validate(rom, true); err != nil {
		t.Fatalf("expected no error with allowBadChecksum=true, got %v", err)
	}
	if err := Validate(rom, false); err == nil {
		t.Fatalf("expected checksum error with allowBadChecksum=false")
	}
}
