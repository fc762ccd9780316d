package apu

import "testing"

func TestNR52ReportsChannelEnabledOnTrigger(t *testing.T) {
	a := New(48000)
	a.CPUWrite(0xFF12, 0xF0) // NR12: max volume, DAC on
	a.CPUWrite(0xFF14, 0x80) // NR14: trigger CH1
	if got := a.CPURead(0xFF26) & 0x01; got == 0 {
		t.Fatalf("NR52 CH1 flag should be set after trigger with DAC on")
	}
}

func TestEnvelopeDACOffPreventsTrigger(t *testing.T) {
	a := New(48000)
	a.CPUWrite(0xFF17, 0x00) // NR22: vol=0, dir=decrease -> DAC off
	a.CPUWrite(0xFF19, 0x80) // NR24: trigger CH2
	if got := a.CPURead(0xFF26) & 0x02; got != 0 {
		t.Fatalf("NR52 CH2 flag should stay clear when DAC is off")
	}
}

func TestPowerOffResetsRegisters(t *testing.T) {
	a := New(48000)
	a.CPUWrite(0xFF24, 0x77)
	a.CPUWrite(0xFF26, 0x00) // power off
	if a.CPURead(0xFF24) != 0x00 {
		t.Fatalf("NR50 should reset to 0 on power-off")
	}
	if a.CPURead(0xFF26)&0x80 != 0 {
		t.Fatalf("NR52 power bit should read 0 after power-off")
	}
}

func TestWaveRAMReadWrite(t *testing.T) {
	a := New(48000)
	a.WriteByte(0xFF30, 0xAB)
	if v, ok := a.ReadByte(0xFF30); !ok || v != 0xAB {
		t.Fatalf("wave RAM byte 0 got %02x ok=%v want AB", v, ok)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	a := New(48000)
	a.CPUWrite(0xFF11, 0x80) // duty=2
	a.CPUWrite(0xFF13, 0x55)
	data := a.SaveState()

	b := New(48000)
	b.LoadState(data)
	if got := b.CPURead(0xFF11); got != a.CPURead(0xFF11) {
		t.Fatalf("NR11 after LoadState got %02x want %02x", got, a.CPURead(0xFF11))
	}
}

func TestStereoPullAlwaysSilent(t *testing.T) {
	a := New(48000)
	a.Tick(1000)
	if a.StereoAvailable() != 0 {
		t.Fatalf("StereoAvailable should always be 0 without PCM synthesis")
	}
	if frames := a.PullStereo(16); frames != nil {
		t.Fatalf("PullStereo should always return nil without PCM synthesis")
	}
}
