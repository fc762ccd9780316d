package gameboy

// Model selects which console this Machine emulates, governing VRAM
// banking, palette type, and boot ROM variant.
type Model int

const (
	Classic Model = iota
	Color
)

// Config is the Machine's configuration record, matching spec section 6.2:
// model, bad-checksum tolerance, real-time pacing, and the pacing period.
type Config struct {
	Model            Model
	AllowBadChecksum bool
	NativeSpeed      bool
	CPUPeriodNS      int64 // nanoseconds per T-cycle when pacing; ~238 at 4.194304 MHz

	// Trace enables per-instruction CPU logging, consumed by cmd/cpurunner.
	Trace bool
	// LimitFPS mirrors the teacher's emu.Config field. Machine never reads
	// it; pacing is governed by NativeSpeed alone.
	LimitFPS bool
}

// Defaults fills in zero-valued fields with their DMG-accurate defaults,
// following internal/ui/config.go's Defaults() pattern.
func (c *Config) Defaults() {
	if c.CPUPeriodNS == 0 {
		c.CPUPeriodNS = 238 // 1 / 4.194304 MHz, rounded to whole nanoseconds
	}
}

// Buttons is the host-facing input snapshot for SetButtons: one bool per
// physical key.
type Buttons struct {
	Right, Left, Up, Down bool
	A, B, Select, Start   bool
}
