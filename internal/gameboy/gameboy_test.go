package gameboy

import "testing"

// blankROM builds a minimal 32 KiB ROM-only cartridge image. Validate is
// called with AllowBadChecksum so the header checksum byte doesn't need to
// be computed for these wiring-level tests.
func blankROM() []byte {
	rom := make([]byte, 32*1024)
	rom[0x0147] = 0x00 // ROM ONLY
	rom[0x0148] = 0x00 // 32 KiB
	rom[0x0149] = 0x00 // no RAM
	return rom
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m := New(Config{AllowBadChecksum: true})
	if err := m.LoadCartridge(blankROM(), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	return m
}

func TestNewMachineStartsInPostBootState(t *testing.T) {
	m := newTestMachine(t)
	if got := m.Bus().ReadByte(0xFF40); got != 0x91 {
		t.Fatalf("LCDC after post-boot reset = %#02x, want 0x91", got)
	}
	if got := m.CPU().PC; got != 0x0100 {
		t.Fatalf("PC after post-boot reset = %#04x, want 0x0100", got)
	}
}

func TestLoadCartridgeWithBootROMStartsAtZero(t *testing.T) {
	m := New(Config{AllowBadChecksum: true})
	boot := make([]byte, 0x100)
	if err := m.LoadCartridge(blankROM(), boot); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	if got := m.CPU().PC; got != 0x0000 {
		t.Fatalf("PC with boot ROM = %#04x, want 0x0000", got)
	}
}

func TestCycleAdvancesPC(t *testing.T) {
	m := newTestMachine(t)
	pc0 := m.CPU().PC
	m.Cycle()
	if m.CPU().PC == pc0 {
		t.Fatalf("PC did not advance after Cycle()")
	}
}

func TestSetButtonsReflectsOnBus(t *testing.T) {
	m := newTestMachine(t)
	m.Bus().WriteByte(0xFF00, 0x20) // bit4=0 selects direction keys
	m.SetButtons(Buttons{Right: true})
	if got := m.Bus().ReadByte(0xFF00) & 0x01; got != 0 {
		t.Fatalf("Right bit should read low (pressed) when Right held, got %#02x", got)
	}
}

func TestSaveAndLoadStateRoundTrip(t *testing.T) {
	m := newTestMachine(t)
	for i := 0; i < 100; i++ {
		m.Cycle()
	}
	path := t.TempDir() + "/state.bin"
	if err := m.SaveStateToFile(path); err != nil {
		t.Fatalf("SaveStateToFile: %v", err)
	}
	pcBefore := m.CPU().PC

	// Mutate state, then restore it.
	m.CPU().SetPC(0x1234)
	if err := m.LoadStateFromFile(path); err != nil {
		t.Fatalf("LoadStateFromFile: %v", err)
	}
	if m.CPU().PC != pcBefore {
		t.Fatalf("PC after LoadStateFromFile = %#04x, want %#04x", m.CPU().PC, pcBefore)
	}
}

func TestBatteryRAMRoundTripsThroughROMOnly(t *testing.T) {
	m := newTestMachine(t)
	// ROM-only cartridges have no battery-backed RAM.
	if _, ok := m.SaveBattery(); ok {
		t.Fatalf("ROM-only cartridge should report no battery RAM")
	}
	if m.LoadBattery([]byte{1, 2, 3}) {
		t.Fatalf("LoadBattery should fail for a non-battery-backed cartridge")
	}
}
