package cpu

import (
	"testing"

	"github.com/hollow-bender/pocketcore/internal/mmu"
)

// flatRAM is a 64KiB IoDevice spanning the whole address space, used to
// isolate CPU opcode behavior from the rest of the device tree.
type flatRAM struct {
	mem [0x10000]byte
}

func newFlatBus(code []byte) (*mmu.Bus, *flatRAM) {
	r := &flatRAM{}
	copy(r.mem[:], code)
	b := mmu.New()
	b.RegisterDevice(0x0000, 0xFFFF, r)
	return b, r
}

func (r *flatRAM) ReadByte(addr uint16) (byte, bool)    { return r.mem[addr], true }
func (r *flatRAM) WriteByte(addr uint16, value byte) bool { r.mem[addr] = value; return true }

func newCPUWithROM(code []byte) *CPU {
	b, _ := newFlatBus(code)
	return New(b)
}

func TestCPU_NopAndPC(t *testing.T) {
	c := newCPUWithROM([]byte{0x00}) // NOP
	if cycles := c.Step(); cycles != 4 {
		t.Fatalf("NOP cycles got %d want 4", cycles)
	}
	if c.PC != 1 {
		t.Fatalf("PC after NOP got %#04x want 0x0001", c.PC)
	}
}

func TestCPU_STOP_ConsumesPaddingByte(t *testing.T) {
	c := newCPUWithROM([]byte{0x10, 0x00, 0x00}) // STOP, padding, NOP
	c.Step()                                     // STOP
	if c.PC != 2 {
		t.Fatalf("PC after STOP got %#04x want 0x0002 (padding byte consumed)", c.PC)
	}
}

func TestCPU_LD_A_d8_And_XOR_A(t *testing.T) {
	c := newCPUWithROM([]byte{0x3E, 0x12, 0xAF}) // LD A,0x12; XOR A
	c.Step()                                      // LD
	if c.A != 0x12 {
		t.Fatalf("A after LD got %02x want 12", c.A)
	}
	c.Step() // XOR A
	if c.A != 0x00 {
		t.Fatalf("A after XOR got %02x want 00", c.A)
	}
	if (c.F & 0x80) == 0 { // Z flag
		t.Fatalf("Z flag not set after XOR A")
	}
}

func TestCPU_LD_a16_A_and_LD_A_a16(t *testing.T) {
	// Program: LD A,0x77; LD (0xC000),A; LD A,0x00; LD A,(0xC000)
	prog := []byte{0x3E, 0x77, 0xEA, 0x00, 0xC0, 0x3E, 0x00, 0xFA, 0x00, 0xC0}
	c := newCPUWithROM(prog)
	c.Step() // LD A,77
	c.Step() // LD (C000),A
	if a := c.bus.ReadByte(0xC000); a != 0x77 {
		t.Fatalf("RAM at C000 got %02x want 77", a)
	}
	c.Step() // LD A,00
	c.Step() // LD A,(C000)
	if c.A != 0x77 {
		t.Fatalf("A after LD A,(C000) got %02x want 77", c.A)
	}
}

func TestCPU_JP_and_JR(t *testing.T) {
	prog := make([]byte, 0x8000)
	prog[0x0000] = 0xC3 // JP 0x0010
	prog[0x0001] = 0x10
	prog[0x0002] = 0x00
	prog[0x0010] = 0x18 // JR -2 (loops on itself)
	prog[0x0011] = 0xFE
	c := newCPUWithROM(prog)
	cycles := c.Step() // JP
	if cycles != 16 || c.PC != 0x0010 {
		t.Fatalf("JP cycles=%d PC=%#04x want cycles=16 PC=0x0010", cycles, c.PC)
	}
	pcBefore := c.PC
	c.Step()              // JR -2
	if c.PC != pcBefore { // stays at 0x0010
		t.Fatalf("JR -2 PC got %#04x want %#04x", c.PC, pcBefore)
	}
}

func TestCPU_INC_B_Flags(t *testing.T) {
	c := newCPUWithROM([]byte{0x04, 0x04}) // INC B twice
	c.B = 0x0F
	c.F = 0x10 // carry set initially
	c.Step()
	if c.B != 0x10 {
		t.Fatalf("INC B result got %02x want 10", c.B)
	}
	if (c.F & 0x20) == 0 { // H set
		t.Fatalf("INC B should set H flag")
	}
	if (c.F & 0x10) == 0 { // C preserved
		t.Fatalf("INC B should preserve C flag")
	}
	c.B = 0xFF
	c.Step()
	if c.B != 0x00 || (c.F&0x80) == 0 { // Z set
		t.Fatalf("INC B to 0 should set Z flag, B=%02x, F=%02x", c.B, c.F)
	}
}

func TestCPU_LD_16bit_and_LDH(t *testing.T) {
	// LD HL,0xC000; LD (HL),0x5A; LD A,0x00; LD A,(0xFF00+0); LD (0xFF00+1),A
	prog := []byte{
		0x21, 0x00, 0xC0, // LD HL, C000
		0x36, 0x5A, // LD (HL), 5A
		0x3E, 0x00, // LD A, 00
		0xF0, 0x00, // LD A, (FF00+0)
		0xE0, 0x01, // LD (FF00+1), A
	}
	c := newCPUWithROM(prog)
	c.Bus().WriteByte(0xFF80, 0xA7) // HRAM base, unused by this program

	for i := 0; i < 5; i++ {
		c.Step()
	}
	if v := c.Bus().ReadByte(0xC000); v != 0x5A {
		t.Fatalf("RAM C000 got %02x want 5A", v)
	}
	if v := c.Bus().ReadByte(0xFF01); v != c.A {
		t.Fatalf("LDH (FF00+1),A expected write to FF01 with A=%02x got %02x", c.A, v)
	}
}

func TestCPU_LD_r_HL(t *testing.T) {
	// LD HL,0xC000; LD (HL),0x99; LD B,(HL); LD A,(HL)
	prog := []byte{
		0x21, 0x00, 0xC0, // LD HL, C000
		0x36, 0x99, // LD (HL), 99
		0x46, // LD B,(HL)
		0x7E, // LD A,(HL)
	}
	c := newCPUWithROM(prog)
	c.Step() // LD HL,C000
	c.Step() // LD (HL),99
	cycles := c.Step()
	if cycles != 8 {
		t.Fatalf("LD B,(HL) cycles got %d want 8", cycles)
	}
	if c.B != 0x99 {
		t.Fatalf("B after LD B,(HL) got %02x want 99", c.B)
	}
	c.Step() // LD A,(HL)
	if c.A != 0x99 {
		t.Fatalf("A after LD A,(HL) got %02x want 99", c.A)
	}
}

func TestCPU_UndefinedOpcodePanics(t *testing.T) {
	c := newCPUWithROM([]byte{0xD3}) // undefined opcode
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on undefined opcode 0xD3")
		}
	}()
	c.Step()
}

func TestCPU_CB_BIT_HL_Takes12Cycles(t *testing.T) {
	// LD HL,0xC000; CB 46 = BIT 0,(HL)
	prog := []byte{0x21, 0x00, 0xC0, 0xCB, 0x46}
	c := newCPUWithROM(prog)
	c.Step() // LD HL,C000
	cycles := c.Step()
	if cycles != 12 {
		t.Fatalf("BIT 0,(HL) cycles got %d want 12", cycles)
	}
}

func TestCPU_CALL_RET(t *testing.T) {
	// 0000: CALL 0005; NOP; NOP; 0005: RET
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0xCD
	rom[0x0001] = 0x05
	rom[0x0002] = 0x00
	rom[0x0005] = 0xC9 // RET
	c := newCPUWithROM(rom)
	c.Step() // CALL
	if c.PC != 0x0005 {
		t.Fatalf("PC after CALL got %04x want 0005", c.PC)
	}
	retCycles := c.Step()
	if c.PC != 0x0003 || retCycles != 16 {
		t.Fatalf("RET did not return to 0003; PC=%04x cyc=%d", c.PC, retCycles)
	}
}
