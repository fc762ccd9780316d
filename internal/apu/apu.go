// Package apu models the DMG/CGB sound registers' bus-interface shape:
// address decode, read-back masking, and save-state serialization for
// FF10-FF26/FF30-FF3F. It does not synthesize PCM audio; channel-mixing DSP
// (envelope/sweep/length clocking, frequency timers, waveform generation)
// is out of scope, so Tick is a no-op and the stereo pull side always
// reports silence.
package apu

import (
	"bytes"
	"encoding/gob"
)

// APU answers reads/writes across the sound register range and tracks just
// enough per-channel register state to make read-back (duty, length,
// envelope, frequency, NR52 channel-enabled bits) match real hardware.
type APU struct {
	enabled bool

	nr50 byte // 0xFF24 master volume/vin
	nr51 byte // 0xFF25 channel-to-terminal routing

	ch1 chSquare
	ch2 chSquare
	ch3 chWave
	ch4 chNoise
}

type chSquare struct {
	enabled bool
	duty    byte
	length  byte // raw 6-bit length load value
	lenEn   bool
	vol     byte
	envDir  int8
	envPer  byte
	freq    uint16

	// CH1-only sweep register state (zero and unused on CH2).
	sweepPer   byte
	sweepNeg   bool
	sweepShift byte
}

type chWave struct {
	enabled bool
	dacEn   bool
	length  byte // raw 8-bit length load value
	lenEn   bool
	volCode byte
	freq    uint16
	ram     [16]byte // FF30-FF3F, 32 packed 4-bit samples
}

type chNoise struct {
	enabled bool
	length  byte
	lenEn   bool
	vol     byte
	envDir  int8
	envPer  byte
	shift   byte
	width7  bool
	divSel  byte
}

func New(sampleRate int) *APU {
	a := &APU{enabled: true}
	// Sensible post-boot defaults: route all channels to both terminals at
	// max master volume, matching the DMG boot ROM's final register state.
	a.nr50 = 0x77
	a.nr51 = 0xFF
	return a
}

// CPURead reads an APU register, applying the same "unused bits read 1"
// masking real hardware uses.
func (a *APU) CPURead(addr uint16) byte {
	switch addr {
	case 0xFF10: // NR10 sweep (CH1)
		n := (a.ch1.sweepPer & 7) << 4
		if a.ch1.sweepNeg {
			n |= 1 << 3
		}
		n |= a.ch1.sweepShift & 7
		return 0x80 | n
	case 0xFF11: // NR11 duty/length (CH1)
		return (a.ch1.duty << 6) | 0x3F
	case 0xFF12: // NR12 envelope (CH1)
		return a.envByte(a.ch1.vol, a.ch1.envDir, a.ch1.envPer)
	case 0xFF13:
		return 0xFF // NR13 is write-only
	case 0xFF14: // NR14 (CH1)
		return 0xBF | (boolToByte(a.ch1.lenEn) << 6)
	case 0xFF16: // NR21 duty/length (CH2)
		return (a.ch2.duty << 6) | 0x3F
	case 0xFF17: // NR22 envelope (CH2)
		return a.envByte(a.ch2.vol, a.ch2.envDir, a.ch2.envPer)
	case 0xFF18:
		return 0xFF // NR23 write-only
	case 0xFF19: // NR24
		return 0xBF | (boolToByte(a.ch2.lenEn) << 6)
	case 0xFF1A: // NR30 (CH3 DAC)
		if a.ch3.dacEn {
			return 0xFF
		}
		return 0x7F
	case 0xFF1B:
		return 0xFF // NR31 write-only
	case 0xFF1C: // NR32 volume (CH3)
		return 0x9F | (a.ch3.volCode << 5)
	case 0xFF1D:
		return 0xFF // NR33 write-only
	case 0xFF1E: // NR34
		return 0xBF | (boolToByte(a.ch3.lenEn) << 6)
	case 0xFF30, 0xFF31, 0xFF32, 0xFF33, 0xFF34, 0xFF35, 0xFF36, 0xFF37,
		0xFF38, 0xFF39, 0xFF3A, 0xFF3B, 0xFF3C, 0xFF3D, 0xFF3E, 0xFF3F:
		return a.ch3.ram[addr-0xFF30]
	case 0xFF20:
		return 0xFF // NR41 write-only
	case 0xFF21: // NR42 envelope (CH4)
		return a.envByte(a.ch4.vol, a.ch4.envDir, a.ch4.envPer)
	case 0xFF22: // NR43 poly counter (CH4)
		w := byte(0)
		if a.ch4.width7 {
			w = 1
		}
		return (a.ch4.shift << 4) | (w << 3) | (a.ch4.divSel & 7)
	case 0xFF23: // NR44
		return 0xBF | (boolToByte(a.ch4.lenEn) << 6)
	case 0xFF24:
		return a.nr50
	case 0xFF25:
		return a.nr51
	case 0xFF26: // NR52: power + per-channel enabled flags
		chFlags := byte(0)
		if a.ch1.enabled {
			chFlags |= 1 << 0
		}
		if a.ch2.enabled {
			chFlags |= 1 << 1
		}
		if a.ch3.enabled {
			chFlags |= 1 << 2
		}
		if a.ch4.enabled {
			chFlags |= 1 << 3
		}
		return 0x70 | (boolToByte(a.enabled) << 7) | chFlags
	default:
		return 0xFF
	}
}

func (a *APU) envByte(vol byte, dir int8, per byte) byte {
	d := byte(0)
	if dir > 0 {
		d = 1
	}
	return (vol << 4) | (d << 3) | (per & 7)
}

// CPUWrite writes an APU register. Writes while powered off (NR52 bit 7
// clear) are ignored except to the length-load fields and wave RAM, as on
// real hardware.
func (a *APU) CPUWrite(addr uint16, v byte) {
	if !a.enabled && addr != 0xFF26 && (addr < 0xFF30 || addr > 0xFF3F) {
		switch addr {
		case 0xFF11:
			a.ch1.length = v & 0x3F
		case 0xFF16:
			a.ch2.length = v & 0x3F
		case 0xFF1B:
			a.ch3.length = v
		case 0xFF20:
			a.ch4.length = v & 0x3F
		}
		return
	}
	switch addr {
	case 0xFF10:
		a.ch1.sweepPer = (v >> 4) & 7
		a.ch1.sweepNeg = (v & (1 << 3)) != 0
		a.ch1.sweepShift = v & 7
	case 0xFF11:
		a.ch1.duty = (v >> 6) & 3
		a.ch1.length = v & 0x3F
	case 0xFF12:
		a.setEnvelope(&a.ch1.vol, &a.ch1.envDir, &a.ch1.envPer, v)
		if (v & 0xF8) == 0 {
			a.ch1.enabled = false
		}
	case 0xFF13:
		a.ch1.freq = (a.ch1.freq & 0x0700) | uint16(v)
	case 0xFF14:
		a.ch1.lenEn = (v & (1 << 6)) != 0
		a.ch1.freq = (a.ch1.freq & 0x00FF) | (uint16(v&7) << 8)
		if (v & (1 << 7)) != 0 {
			a.trigger(&a.ch1.enabled, a.ch1.vol, a.ch1.envDir)
		}
	case 0xFF16:
		a.ch2.duty = (v >> 6) & 3
		a.ch2.length = v & 0x3F
	case 0xFF17:
		a.setEnvelope(&a.ch2.vol, &a.ch2.envDir, &a.ch2.envPer, v)
		if (v & 0xF8) == 0 {
			a.ch2.enabled = false
		}
	case 0xFF18:
		a.ch2.freq = (a.ch2.freq & 0x0700) | uint16(v)
	case 0xFF19:
		a.ch2.lenEn = (v & (1 << 6)) != 0
		a.ch2.freq = (a.ch2.freq & 0x00FF) | (uint16(v&7) << 8)
		if (v & (1 << 7)) != 0 {
			a.trigger(&a.ch2.enabled, a.ch2.vol, a.ch2.envDir)
		}
	case 0xFF1A:
		a.ch3.dacEn = (v & 0x80) != 0
		if !a.ch3.dacEn {
			a.ch3.enabled = false
		}
	case 0xFF1B:
		a.ch3.length = v
	case 0xFF1C:
		a.ch3.volCode = (v >> 5) & 3
	case 0xFF1D:
		a.ch3.freq = (a.ch3.freq & 0x0700) | uint16(v)
	case 0xFF1E:
		a.ch3.lenEn = (v & (1 << 6)) != 0
		a.ch3.freq = (a.ch3.freq & 0x00FF) | (uint16(v&7) << 8)
		if (v & (1 << 7)) != 0 {
			a.ch3.enabled = a.ch3.dacEn
		}
	case 0xFF30, 0xFF31, 0xFF32, 0xFF33, 0xFF34, 0xFF35, 0xFF36, 0xFF37,
		0xFF38, 0xFF39, 0xFF3A, 0xFF3B, 0xFF3C, 0xFF3D, 0xFF3E, 0xFF3F:
		a.ch3.ram[addr-0xFF30] = v
	case 0xFF24:
		a.nr50 = v
	case 0xFF25:
		a.nr51 = v
	case 0xFF26:
		pwr := (v & (1 << 7)) != 0
		if !pwr {
			*a = APU{enabled: false}
		} else {
			a.enabled = true
		}
	case 0xFF20:
		a.ch4.length = v & 0x3F
	case 0xFF21:
		a.setEnvelope(&a.ch4.vol, &a.ch4.envDir, &a.ch4.envPer, v)
		if (v & 0xF8) == 0 {
			a.ch4.enabled = false
		}
	case 0xFF22:
		a.ch4.shift = (v >> 4) & 0x0F
		a.ch4.width7 = (v & (1 << 3)) != 0
		a.ch4.divSel = v & 7
	case 0xFF23:
		a.ch4.lenEn = (v & (1 << 6)) != 0
		if (v & (1 << 7)) != 0 {
			a.trigger(&a.ch4.enabled, a.ch4.vol, a.ch4.envDir)
		}
	}
}

func (a *APU) setEnvelope(vol *byte, dir *int8, per *byte, v byte) {
	*vol = (v >> 4) & 0x0F
	if (v & (1 << 3)) != 0 {
		*dir = 1
	} else {
		*dir = -1
	}
	*per = v & 7
}

// trigger marks a square/noise channel active unless its DAC (the upper
// five envelope bits) is off.
func (a *APU) trigger(enabled *bool, vol byte, dir int8) {
	*enabled = !(vol == 0 && dir < 0)
}

// Tick is a no-op: without channel-mixing DSP there is no frame sequencer,
// frequency timer, or LFSR to advance. Kept so callers can tick every
// device uniformly.
func (a *APU) Tick(cycles int) {}

// ReadByte implements mmu.IoDevice over the NR10-NR52/wave-RAM range
// (FF10-FF26, FF30-FF3F), delegating to CPURead.
func (a *APU) ReadByte(addr uint16) (byte, bool) {
	if !inAPURange(addr) {
		return 0, false
	}
	return a.CPURead(addr), true
}

// WriteByte implements mmu.IoDevice over the same range, delegating to
// CPUWrite.
func (a *APU) WriteByte(addr uint16, value byte) bool {
	if !inAPURange(addr) {
		return false
	}
	a.CPUWrite(addr, value)
	return true
}

func inAPURange(addr uint16) bool {
	return (addr >= 0xFF10 && addr <= 0xFF26) || (addr >= 0xFF30 && addr <= 0xFF3F)
}

// StereoAvailable always reports no buffered audio: PCM synthesis isn't
// implemented, so there is nothing for the host audio sink to pull.
func (a *APU) StereoAvailable() int { return 0 }

// PullStereo always returns nil; see StereoAvailable.
func (a *APU) PullStereo(max int) []int16 { return nil }

// CapStereo and ClearStereo are no-ops kept so the host audio sink doesn't
// need to special-case a DSP-less APU.
func (a *APU) CapStereo(max int) {}
func (a *APU) ClearStereo()      {}

// --- Save/Load state ---

type apuState struct {
	Enabled    bool
	NR50, NR51 byte
	Ch1        ch1State
	Ch2        ch2State
	Ch3        ch3State
	Ch4        ch4State
}

type ch1State struct {
	Enabled                       bool
	Duty, Length                  byte
	LenEn                         bool
	Vol                           byte
	EnvDir                        int8
	EnvPer                        byte
	Freq                          uint16
	SweepPer, SweepShift          byte
	SweepNeg                      bool
}

type ch2State struct {
	Enabled      bool
	Duty, Length byte
	LenEn        bool
	Vol          byte
	EnvDir       int8
	EnvPer       byte
	Freq         uint16
}

type ch3State struct {
	Enabled bool
	DAC     bool
	Length  byte
	LenEn   bool
	VolCode byte
	Freq    uint16
	RAM     [16]byte
}

type ch4State struct {
	Enabled bool
	Length  byte
	LenEn   bool
	Vol     byte
	EnvDir  int8
	EnvPer  byte
	Shift   byte
	Width7  bool
	DivSel  byte
}

func (a *APU) SaveState() []byte {
	var buf bytes.Buffer
	s := apuState{
		Enabled: a.enabled,
		NR50:    a.nr50, NR51: a.nr51,
		Ch1: ch1State{
			Enabled: a.ch1.enabled, Duty: a.ch1.duty, Length: a.ch1.length, LenEn: a.ch1.lenEn,
			Vol: a.ch1.vol, EnvDir: a.ch1.envDir, EnvPer: a.ch1.envPer, Freq: a.ch1.freq,
			SweepPer: a.ch1.sweepPer, SweepNeg: a.ch1.sweepNeg, SweepShift: a.ch1.sweepShift,
		},
		Ch2: ch2State{
			Enabled: a.ch2.enabled, Duty: a.ch2.duty, Length: a.ch2.length, LenEn: a.ch2.lenEn,
			Vol: a.ch2.vol, EnvDir: a.ch2.envDir, EnvPer: a.ch2.envPer, Freq: a.ch2.freq,
		},
		Ch3: ch3State{
			Enabled: a.ch3.enabled, DAC: a.ch3.dacEn, Length: a.ch3.length, LenEn: a.ch3.lenEn,
			VolCode: a.ch3.volCode, Freq: a.ch3.freq, RAM: a.ch3.ram,
		},
		Ch4: ch4State{
			Enabled: a.ch4.enabled, Length: a.ch4.length, LenEn: a.ch4.lenEn,
			Vol: a.ch4.vol, EnvDir: a.ch4.envDir, EnvPer: a.ch4.envPer,
			Shift: a.ch4.shift, Width7: a.ch4.width7, DivSel: a.ch4.divSel,
		},
	}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

func (a *APU) LoadState(data []byte) {
	var s apuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	a.enabled = s.Enabled
	a.nr50, a.nr51 = s.NR50, s.NR51
	a.ch1 = chSquare{
		enabled: s.Ch1.Enabled, duty: s.Ch1.Duty, length: s.Ch1.Length, lenEn: s.Ch1.LenEn,
		vol: s.Ch1.Vol, envDir: s.Ch1.EnvDir, envPer: s.Ch1.EnvPer, freq: s.Ch1.Freq,
		sweepPer: s.Ch1.SweepPer, sweepNeg: s.Ch1.SweepNeg, sweepShift: s.Ch1.SweepShift,
	}
	a.ch2 = chSquare{
		enabled: s.Ch2.Enabled, duty: s.Ch2.Duty, length: s.Ch2.Length, lenEn: s.Ch2.LenEn,
		vol: s.Ch2.Vol, envDir: s.Ch2.EnvDir, envPer: s.Ch2.EnvPer, freq: s.Ch2.Freq,
	}
	a.ch3 = chWave{
		enabled: s.Ch3.Enabled, dacEn: s.Ch3.DAC, length: s.Ch3.Length, lenEn: s.Ch3.LenEn,
		volCode: s.Ch3.VolCode, freq: s.Ch3.Freq, ram: s.Ch3.RAM,
	}
	a.ch4 = chNoise{
		enabled: s.Ch4.Enabled, length: s.Ch4.Length, lenEn: s.Ch4.LenEn,
		vol: s.Ch4.Vol, envDir: s.Ch4.EnvDir, envPer: s.Ch4.EnvPer,
		shift: s.Ch4.Shift, width7: s.Ch4.Width7, divSel: s.Ch4.DivSel,
	}
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
