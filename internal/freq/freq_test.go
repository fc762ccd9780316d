package freq

import (
	"testing"
	"time"
)

func TestNativeSpeedNeverSleeps(t *testing.T) {
	c := New(1_000_000, true)
	c.Add(1_000_000)
	start := time.Now()
	c.Sync()
	if time.Since(start) > 10*time.Millisecond {
		t.Fatalf("native speed controller slept")
	}
}

func TestSyncWaitsForTarget(t *testing.T) {
	c := New(1000, false) // 1us per cycle
	c.Add(2000)           // 2ms target
	start := time.Now()
	c.Sync()
	if elapsed := time.Since(start); elapsed < 1*time.Millisecond {
		t.Fatalf("expected Sync to block for roughly the target duration, elapsed %v", elapsed)
	}
}

func TestResetClearsAccumulator(t *testing.T) {
	c := New(1_000_000_000, false)
	c.Add(100)
	c.Reset()
	start := time.Now()
	c.Sync()
	if time.Since(start) > 10*time.Millisecond {
		t.Fatalf("Reset should have cleared pending cycles before Sync")
	}
}
