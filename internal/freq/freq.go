// Package freq paces real-time emulation to the Game Boy's native clock
// rate by sleeping off the difference between wall-clock elapsed time and
// the time a given number of T-cycles should have taken.
package freq

import "time"

// Controller accumulates T-cycles since the last sync point and sleeps long
// enough to keep the emulated clock from running ahead of wall-clock time.
// Grounded on the original FrequencyController's add_delay: that version
// busy-polls a hardware clock in a spin loop; this one uses time.Sleep,
// which is the idiomatic Go equivalent and doesn't peg a CPU core.
type Controller struct {
	periodNS     int64 // nanoseconds of wall-clock time per T-cycle at native speed
	nativeSpeed  bool  // when true, Sync never sleeps
	lastSync     time.Time
	cyclesPassed int64
}

// New builds a Controller targeting periodNS nanoseconds per T-cycle
// (roughly 238 for the DMG's 4.194304 MHz clock). nativeSpeed disables all
// pacing, letting the machine run as fast as the host allows.
func New(periodNS int64, nativeSpeed bool) *Controller {
	return &Controller{periodNS: periodNS, nativeSpeed: nativeSpeed, lastSync: time.Now()}
}

// Reset clears the accumulator and rebases the wall-clock anchor to now,
// used after a pause/resume so the paused interval isn't charged as lag.
func (c *Controller) Reset() {
	c.lastSync = time.Now()
	c.cyclesPassed = 0
}

// Add records that cycles T-cycles of emulated time have just elapsed. It
// never sleeps; the accumulated total is paid off by the next Sync call.
func (c *Controller) Add(cycles int) {
	c.cyclesPassed += int64(cycles)
}

// Sync blocks until wall-clock time matches the emulated time accumulated
// via Add since the last Sync (or Reset), then resets the accumulator. Call
// once per frame (or per instruction, for finer-grained pacing) rather than
// after every Add to avoid oversleeping in small increments.
func (c *Controller) Sync() {
	if c.nativeSpeed || c.cyclesPassed == 0 {
		c.cyclesPassed = 0
		c.lastSync = time.Now()
		return
	}
	target := time.Duration(c.periodNS * c.cyclesPassed)
	elapsed := time.Since(c.lastSync)
	if remaining := target - elapsed; remaining > 0 {
		time.Sleep(remaining)
	}
	c.cyclesPassed = 0
	c.lastSync = time.Now()
}
