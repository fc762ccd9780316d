// Package gameboy wires every subsystem package onto a bus and drives the
// cooperative cycle loop: one CPU instruction, then DMA/PPU/timer/APU
// advanced by its cycle count, once per call to Cycle. StepFrame repeats
// that until a full 144-line frame has been drawn. This is the Machine the
// rest of the tree (internal/ui, cmd/gbemu, cmd/cpurunner) talks to instead
// of reaching into the subsystem packages directly.
package gameboy

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hollow-bender/pocketcore/internal/apu"
	"github.com/hollow-bender/pocketcore/internal/cart"
	"github.com/hollow-bender/pocketcore/internal/cpu"
	"github.com/hollow-bender/pocketcore/internal/dma"
	"github.com/hollow-bender/pocketcore/internal/freq"
	"github.com/hollow-bender/pocketcore/internal/ic"
	"github.com/hollow-bender/pocketcore/internal/joypad"
	"github.com/hollow-bender/pocketcore/internal/mmu"
	"github.com/hollow-bender/pocketcore/internal/ppu"
	"github.com/hollow-bender/pocketcore/internal/timer"
	"github.com/hollow-bender/pocketcore/internal/wram"
)

const apuSampleRate = 48000

// Machine owns every subsystem and the bus connecting them, and exposes the
// operations a host front end drives a Game Boy with.
type Machine struct {
	cfg Config

	bus         *mmu.Bus
	cpuCore     *cpu.CPU
	irq         *ic.Controller
	timerDev    *timer.Timer
	joypadDev   *joypad.Joypad
	ppuDev      *ppu.PPU
	dmaDev      *dma.Controller
	wramDev     *wram.RAM
	apuDev      *apu.APU
	serial      *serialPort
	cartDevice  *cart.Device
	cartridge   cart.Cartridge

	fc *freq.Controller

	bootROM []byte

	romPath  string
	romTitle string
	header   *cart.Header

	compatPaletteID int
	useCGBBG        bool // force-render the CGB BG palette even while in compat mode

	framebuffer [160 * 144 * 4]byte
	renderLine  bool // false during StepFrameNoRender
	frameCount  int
}

// New builds a Machine with every device registered on a fresh bus but no
// cartridge loaded yet; call LoadCartridge (or LoadROMFromFile) before
// stepping.
func New(cfg Config) *Machine {
	cfg.Defaults()
	m := &Machine{cfg: cfg}
	m.irq = ic.New()
	m.timerDev = timer.New(m.irq)
	m.joypadDev = joypad.New(m.irq)
	m.dmaDev = nil // needs the PPU, built below
	m.serial = newSerialPort(m.irq)
	m.apuDev = apu.New(apuSampleRate)
	m.fc = freq.New(cfg.CPUPeriodNS, cfg.NativeSpeed)
	m.renderLine = true

	model := ppu.Classic
	if cfg.Model == Color {
		model = ppu.Color
	}
	m.ppuDev = ppu.New(model, m.irq, m.drawLine)

	wmodel := wram.Classic
	if cfg.Model == Color {
		wmodel = wram.Color
	}
	m.wramDev = wram.New(wmodel)

	m.dmaDev = dma.New(busReader{m}, m.ppuDev)

	m.rebuildBus()
	return m
}

// busReader adapts Machine to dma.Reader, letting the DMA engine pull
// source bytes through the same bus every other device sees.
type busReader struct{ m *Machine }

func (r busReader) ReadByte(addr uint16) byte { return r.m.bus.ReadByte(addr) }

// rebuildBus re-registers every device on a fresh Bus, following the device
// ranges in the original emulator's device-registration list, and points
// the CPU at it. Called at construction and whenever the cartridge is
// (re)loaded.
func (m *Machine) rebuildBus() {
	b := mmu.New()

	if m.cartDevice != nil {
		b.RegisterDevice(0x0000, 0x7FFF, m.cartDevice)
		b.RegisterDevice(0xA000, 0xBFFF, m.cartDevice)
		b.RegisterDevice(0xFF50, 0xFF50, m.cartDevice)
	}

	b.RegisterDevice(0x8000, 0x9FFF, m.ppuDev)
	b.RegisterDevice(0xFE00, 0xFE9F, m.ppuDev)
	b.RegisterDevice(0xFF40, 0xFF4B, m.ppuDev)
	b.RegisterDevice(0xFF4F, 0xFF4F, m.ppuDev)
	b.RegisterDevice(0xFF68, 0xFF6B, m.ppuDev)

	b.RegisterDevice(0xFF46, 0xFF46, m.dmaDev)
	b.RegisterDevice(0xFF51, 0xFF55, m.dmaDev)

	b.RegisterDevice(0xFF0F, 0xFF0F, m.irq)
	b.RegisterDevice(0xFFFF, 0xFFFF, m.irq)

	b.RegisterDevice(0xFF00, 0xFF00, m.joypadDev)
	b.RegisterDevice(0xFF04, 0xFF07, m.timerDev)
	b.RegisterDevice(0xFF01, 0xFF02, m.serial)
	b.RegisterDevice(0xFF4D, 0xFF4D, speedSwitchStub{})

	b.RegisterDevice(0xFF10, 0xFF26, m.apuDev)
	b.RegisterDevice(0xFF30, 0xFF3F, m.apuDev)

	b.RegisterDevice(0xC000, 0xFDFF, m.wramDev)
	b.RegisterDevice(0xFF70, 0xFF70, m.wramDev)
	b.RegisterDevice(0xFF80, 0xFFFE, m.wramDev)

	m.bus = b
	m.cpuCore = cpu.New(b)
}

func (m *Machine) drawLine(line int, pixels [160]ppu.RGB) {
	if line == 143 {
		m.frameCount++ // the last visible line of a frame has been drawn
	}
	if !m.renderLine || line < 0 || line >= 144 {
		return
	}
	base := line * 160 * 4
	for x, px := range pixels {
		o := base + x*4
		m.framebuffer[o] = px.R
		m.framebuffer[o+1] = px.G
		m.framebuffer[o+2] = px.B
		m.framebuffer[o+3] = 0xFF
	}
}

// SetBootROM installs a boot ROM image to overlay on the next
// LoadCartridge/ResetWithBoot call.
func (m *Machine) SetBootROM(boot []byte) { m.bootROM = boot }

// LoadCartridge parses rom's header, builds the matching Cartridge/MBC
// implementation, and wires it onto the bus. boot, if non-empty, overlays
// the low address range until the game writes FF50.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	if err := cart.Validate(rom, m.cfg.AllowBadChecksum); err != nil {
		return fmt.Errorf("gameboy: %w", err)
	}
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return fmt.Errorf("gameboy: %w", err)
	}
	m.header = h
	m.romTitle = h.Title

	m.cartridge = cart.NewCartridge(rom)
	m.cartDevice = cart.NewDevice(m.cartridge, boot, m.cfg.Model == Color)

	m.computeCompatState()
	m.resetCore(len(boot) > 0)
	return nil
}

// LoadROMFromFile reads path and loads it as the active cartridge, using
// whatever boot ROM was previously installed via SetBootROM, and records
// path as ROMPath().
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("gameboy: read ROM: %w", err)
	}
	if err := m.LoadCartridge(data, m.bootROM); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

func (m *Machine) computeCompatState() {
	m.compatPaletteID = 0
	if m.cfg.Model != Color || m.header == nil {
		return
	}
	if id, ok := autoCompatPaletteFromHeader(m.header); ok {
		m.compatPaletteID = id
	}
	if m.IsCGBCompat() {
		m.ppuDev.SetMonoShades(cgbCompatSets[m.compatPaletteID%len(cgbCompatSets)])
	}
}

// resetCore rebuilds the bus (picking up the freshly-loaded cartridge) and
// puts the CPU in either boot-ROM-start or post-boot state.
func (m *Machine) resetCore(withBoot bool) {
	m.rebuildBus()
	if withBoot {
		m.cpuCore.SetPC(0x0000)
	} else if m.cfg.Model == Color {
		m.resetCGBPostBootRegisters()
	} else {
		m.resetDMGPostBootRegisters()
	}
	m.frameCount = 0
}

// ResetPostBoot restarts the CPU in typical post-boot register state (the
// DMG set, plus the CGB bank registers on a Color machine), skipping the
// boot ROM entirely.
func (m *Machine) ResetPostBoot() {
	m.resetCore(false)
}

// ResetWithBoot restarts and runs the installed boot ROM from 0x0000,
// falling back to a post-boot reset if none was installed.
func (m *Machine) ResetWithBoot() {
	m.resetCore(len(m.bootROM) > 0)
}

// ResetCGBPostBoot restarts in CGB post-boot state. useCGBBG selects
// whether the CGB background color palette renders even for a
// DMG-compatibility cartridge (normally such carts render through the
// substituted mono shades instead).
func (m *Machine) ResetCGBPostBoot(useCGBBG bool) {
	m.useCGBBG = useCGBBG
	m.cfg.Model = Color
	m.resetCore(false)
}

func (m *Machine) resetDMGPostBootRegisters() {
	m.cpuCore.ResetNoBoot()
	m.cpuCore.SetPC(0x0100)
	for addr, v := range map[uint16]byte{
		0xFF00: 0xCF, 0xFF05: 0x00, 0xFF06: 0x00, 0xFF07: 0x00,
		0xFF40: 0x91, 0xFF42: 0x00, 0xFF43: 0x00, 0xFF45: 0x00,
		0xFF47: 0xFC, 0xFF48: 0xFF, 0xFF49: 0xFF, 0xFF4A: 0x00, 0xFF4B: 0x00,
		0xFFFF: 0x00,
	} {
		m.bus.WriteByte(addr, v)
	}
}

func (m *Machine) resetCGBPostBootRegisters() {
	m.resetDMGPostBootRegisters()
	m.bus.WriteByte(0xFF4F, 0x00)
	m.bus.WriteByte(0xFF70, 0x01)
}

// SetUseCGBBG toggles whether a DMG-compatibility cartridge renders through
// the real CGB BG palette instead of the substituted mono shades.
func (m *Machine) SetUseCGBBG(v bool) {
	m.useCGBBG = v
	if m.IsCGBCompat() {
		if v {
			m.ppuDev.ResetMonoShades()
		} else {
			m.ppuDev.SetMonoShades(cgbCompatSets[m.compatPaletteID%len(cgbCompatSets)])
		}
	}
}

// UseCGBBG reports the current SetUseCGBBG state.
func (m *Machine) UseCGBBG() bool { return m.useCGBBG }

// WantCGBColors reports whether this Machine is running as a Color
// console with a cartridge that actually declares CGB support (CGBFlag bit
// 0x80 or 0xC0), as opposed to compatibility-mode coloring of a plain DMG
// cartridge.
func (m *Machine) WantCGBColors() bool {
	return m.cfg.Model == Color && m.header != nil && m.header.CGBFlag&0x80 != 0
}

// IsCGBCompat reports whether this Machine is a Color console running a
// cartridge with no native CGB support, the case DMG-compatibility
// palettes apply to.
func (m *Machine) IsCGBCompat() bool {
	return m.cfg.Model == Color && m.header != nil && m.header.CGBFlag&0x80 == 0
}

// SetCompatPalette selects one of the named compatibility palettes by
// index (wrapping), applying it immediately if compat coloring is active.
func (m *Machine) SetCompatPalette(id int) {
	n := len(cgbCompatSets)
	m.compatPaletteID = ((id % n) + n) % n
	if m.IsCGBCompat() && !m.useCGBBG {
		m.ppuDev.SetMonoShades(cgbCompatSets[m.compatPaletteID])
	}
}

// CurrentCompatPalette returns the active palette index.
func (m *Machine) CurrentCompatPalette() int { return m.compatPaletteID }

// CycleCompatPalette advances the active palette by delta (wrapping) and
// applies it.
func (m *Machine) CycleCompatPalette(delta int) {
	m.SetCompatPalette(m.compatPaletteID + delta)
}

// CompatPaletteName returns the display name for palette index id.
func (m *Machine) CompatPaletteName(id int) string {
	n := len(cgbCompatSetNames)
	id = ((id % n) + n) % n
	return cgbCompatSetNames[id]
}

// SetUseFetcherBG is a deprecated no-op, kept because internal/ui still
// calls it: the pixel-FIFO background fetcher it used to toggle was
// replaced by the direct per-pixel scanline renderer (see internal/ppu).
func (m *Machine) SetUseFetcherBG(bool) {}

// ROMPath returns the path LoadROMFromFile was last called with, or "" if
// the cartridge was loaded via LoadCartridge directly.
func (m *Machine) ROMPath() string { return m.romPath }

// ROMTitle returns the loaded cartridge's header title, or "" if none is
// loaded.
func (m *Machine) ROMTitle() string { return m.romTitle }

// SetButtons replaces the full set of currently-held buttons.
func (m *Machine) SetButtons(b Buttons) {
	var mask byte
	if b.Right {
		mask |= joypad.Right
	}
	if b.Left {
		mask |= joypad.Left
	}
	if b.Up {
		mask |= joypad.Up
	}
	if b.Down {
		mask |= joypad.Down
	}
	if b.A {
		mask |= joypad.A
	}
	if b.B {
		mask |= joypad.B
	}
	if b.Select {
		mask |= joypad.Select
	}
	if b.Start {
		mask |= joypad.Start
	}
	m.joypadDev.SetPressed(mask)
}

// Framebuffer returns the current 160x144 RGBA frame, row-major, 4 bytes
// per pixel. The backing array is owned by the Machine; callers that need
// to retain it across further Cycle/StepFrame calls must copy it.
func (m *Machine) Framebuffer() []byte { return m.framebuffer[:] }

// Cycle executes exactly one CPU instruction (servicing a pending
// interrupt first, same as the original design's cycle()) and advances
// every other device by its cycle count. It does not apply real-time
// pacing; StepFrame does that once per frame instead of once per
// instruction, since sleeping on every instruction would dominate wall
// time. Returns the T-cycles the instruction took.
func (m *Machine) Cycle() int {
	cycles := m.cpuCore.Step()
	m.dmaDev.Tick(cycles)
	m.ppuDev.Tick(cycles)
	m.timerDev.Tick(cycles)
	m.apuDev.Tick(cycles)
	m.fc.Add(cycles)
	return cycles
}

// StepFrame runs until one full 144-line frame has been drawn through the
// host draw callback, then paces to real time (unless NativeSpeed).
func (m *Machine) StepFrame() {
	m.renderLine = true
	m.stepOneFrame()
}

// StepFrameNoRender behaves like StepFrame but skips copying pixels into
// the framebuffer, used by hosts doing frame-skip/turbo.
func (m *Machine) StepFrameNoRender() {
	m.renderLine = false
	m.stepOneFrame()
}

func (m *Machine) stepOneFrame() {
	target := m.frameCount + 1
	for m.frameCount < target {
		m.Cycle()
	}
	m.fc.Sync()
}

// LoadBattery loads cartridge RAM from a prior SaveBattery blob. Returns
// false if the cartridge has no battery-backed RAM.
func (m *Machine) LoadBattery(data []byte) bool {
	bb, ok := m.cartridge.(cart.BatteryBacked)
	if !ok {
		return false
	}
	bb.LoadRAM(data)
	return true
}

// SaveBattery returns a copy of the cartridge's battery-backed RAM. ok is
// false if the cartridge has none.
func (m *Machine) SaveBattery() (data []byte, ok bool) {
	bb, isBattery := m.cartridge.(cart.BatteryBacked)
	if !isBattery {
		return nil, false
	}
	return bb.SaveRAM(), true
}

type machineState struct {
	CPU struct {
		A, F, B, C, D, E, H, L byte
		SP, PC                 uint16
		IME                    bool
	}
	IF, IE byte
	Timer  []byte
	PPU    []byte
	WRAM   []byte
	APU    []byte
	Cart   []byte
	Frames int
}

// SaveStateToFile gob-encodes every device's serializable state (CPU
// registers, IC, timer, PPU, WRAM, APU, and cartridge banking/RAM) to path.
// Persistence to disk is outside this core's required scope, but the hooks
// exist end-to-end since internal/ui already calls them from its save-slot
// menu.
func (m *Machine) SaveStateToFile(path string) error {
	if m.cartridge == nil {
		return errors.New("gameboy: no cartridge loaded")
	}
	var s machineState
	s.CPU.A, s.CPU.F = m.cpuCore.A, m.cpuCore.F
	s.CPU.B, s.CPU.C = m.cpuCore.B, m.cpuCore.C
	s.CPU.D, s.CPU.E = m.cpuCore.D, m.cpuCore.E
	s.CPU.H, s.CPU.L = m.cpuCore.H, m.cpuCore.L
	s.CPU.SP, s.CPU.PC = m.cpuCore.SP, m.cpuCore.PC
	s.CPU.IME = m.cpuCore.IME

	s.IF = m.bus.ReadByte(0xFF0F)
	s.IE = m.bus.ReadByte(0xFFFF)
	s.Timer = m.timerDev.SaveState()
	s.PPU = m.ppuDev.SaveState()
	s.WRAM = m.wramDev.SaveState()
	s.APU = m.apuDev.SaveState()
	s.Cart = m.cartridge.SaveState()
	s.Frames = m.frameCount

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("gameboy: encode state: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadStateFromFile restores a blob written by SaveStateToFile.
func (m *Machine) LoadStateFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("gameboy: read state: %w", err)
	}
	var s machineState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gameboy: decode state: %w", err)
	}
	if m.cartridge == nil {
		return errors.New("gameboy: no cartridge loaded")
	}
	m.cpuCore.A, m.cpuCore.F = s.CPU.A, s.CPU.F
	m.cpuCore.B, m.cpuCore.C = s.CPU.B, s.CPU.C
	m.cpuCore.D, m.cpuCore.E = s.CPU.D, s.CPU.E
	m.cpuCore.H, m.cpuCore.L = s.CPU.H, s.CPU.L
	m.cpuCore.SP, m.cpuCore.PC = s.CPU.SP, s.CPU.PC
	m.cpuCore.IME = s.CPU.IME

	m.ppuDev.LoadState(s.PPU)
	m.wramDev.LoadState(s.WRAM)
	m.apuDev.LoadState(s.APU)
	m.timerDev.LoadState(s.Timer)
	m.cartridge.LoadState(s.Cart)
	m.bus.WriteByte(0xFF0F, s.IF)
	m.bus.WriteByte(0xFFFF, s.IE)
	m.frameCount = s.Frames
	return nil
}

// --- Audio bus surface, consumed by internal/ui/audio.go ---

// APUBufferedStereo returns the number of stereo frames currently queued.
func (m *Machine) APUBufferedStereo() int { return m.apuDev.StereoAvailable() }

// APUPullStereo drains up to max buffered stereo frames as interleaved
// [L0,R0,L1,R1,...] int16 samples.
func (m *Machine) APUPullStereo(max int) []int16 { return m.apuDev.PullStereo(max) }

// APUCapBufferedStereo discards the oldest queued frames past max, bounding
// audio latency after a pause or during fast-forward.
func (m *Machine) APUCapBufferedStereo(max int) { m.apuDev.CapStereo(max) }

// APUClearAudioLatency drops all buffered audio immediately.
func (m *Machine) APUClearAudioLatency() { m.apuDev.ClearStereo() }

// --- Lower-level accessors for cmd/cpurunner's tracing loop ---

// CPU exposes the underlying processor core for instruction-level tracing.
func (m *Machine) CPU() *cpu.CPU { return m.cpuCore }

// Bus exposes the underlying memory bus.
func (m *Machine) Bus() *mmu.Bus { return m.bus }

// SetSerialWriter installs a sink that receives each byte written over the
// serial port (FF01/FF02), used by cmd/cpurunner to capture blargg-style
// test-ROM output.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.serial.SetWriter(w)
}
