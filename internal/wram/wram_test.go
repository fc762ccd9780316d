package wram

import "testing"

func TestRAM_Bank0FixedAtC000(t *testing.T) {
	r := New(Color)
	r.WriteByte(0xC000, 0x11)
	if v, _ := r.ReadByte(0xC000); v != 0x11 {
		t.Fatalf("got %02x, want 11", v)
	}
}

func TestRAM_ColorModeBankSwitchAtD000(t *testing.T) {
	r := New(Color)
	r.WriteByte(0xFF70, 0x02)
	r.WriteByte(0xD000, 0xAA)
	r.WriteByte(0xFF70, 0x03)
	r.WriteByte(0xD000, 0xBB)

	r.WriteByte(0xFF70, 0x02)
	if v, _ := r.ReadByte(0xD000); v != 0xAA {
		t.Fatalf("bank2 got %02x, want AA", v)
	}
	r.WriteByte(0xFF70, 0x03)
	if v, _ := r.ReadByte(0xD000); v != 0xBB {
		t.Fatalf("bank3 got %02x, want BB", v)
	}
}

func TestRAM_BankZeroSubstitutedToOne(t *testing.T) {
	r := New(Color)
	r.WriteByte(0xFF70, 0x00)
	if v, _ := r.ReadByte(0xFF70); v&0x07 != 1 {
		t.Fatalf("FF70 readback got %02x, want low bits = 1", v)
	}
}

func TestRAM_ClassicModeIgnoresBankSelect(t *testing.T) {
	r := New(Classic)
	r.WriteByte(0xD000, 0x01)
	r.WriteByte(0xFF70, 0x05) // has no effect in Classic mode
	if v, _ := r.ReadByte(0xD000); v != 0x01 {
		t.Fatalf("got %02x, want 01", v)
	}
}

func TestRAM_EchoMirrorsWorkRAM(t *testing.T) {
	r := New(Classic)
	r.WriteByte(0xE000, 0x55)
	if v, _ := r.ReadByte(0xC000); v != 0x55 {
		t.Fatalf("echo write did not mirror to WRAM, got %02x", v)
	}
}

func TestRAM_HighRAM(t *testing.T) {
	r := New(Classic)
	r.WriteByte(0xFF80, 0xAB)
	if v, _ := r.ReadByte(0xFF80); v != 0xAB {
		t.Fatalf("got %02x, want AB", v)
	}
}
