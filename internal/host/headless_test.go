package host

import "testing"

func TestHeadlessDrawLineFillsFramebuffer(t *testing.T) {
	h := NewHeadless(0)
	var line [160]RGB
	line[0] = RGB{R: 1, G: 2, B: 3}
	h.DrawLine(5, line)

	if h.Framebuffer[5][0] != line[0] {
		t.Fatalf("Framebuffer[5][0] = %+v, want %+v", h.Framebuffer[5][0], line[0])
	}
	if h.Lines != 1 {
		t.Fatalf("Lines = %d, want 1", h.Lines)
	}
}

func TestHeadlessDrawLineIgnoresOutOfRange(t *testing.T) {
	h := NewHeadless(0)
	var line [160]RGB
	h.DrawLine(-1, line)
	h.DrawLine(144, line)
	if h.Lines != 2 {
		t.Fatalf("Lines = %d, want 2 (out-of-range lines still count)", h.Lines)
	}
}

func TestHeadlessJoypadPressed(t *testing.T) {
	h := NewHeadless(0)
	if h.JoypadPressed(A) {
		t.Fatalf("A should start unpressed")
	}
	h.SetPressed(A, true)
	if !h.JoypadPressed(A) {
		t.Fatalf("A should be pressed after SetPressed")
	}
	if h.JoypadPressed(Button(99)) {
		t.Fatalf("out-of-range button should report unpressed, not panic")
	}
}

func TestHeadlessClockAdvancesByStep(t *testing.T) {
	h := NewHeadless(100)
	if got := h.Clock(); got != 100 {
		t.Fatalf("Clock() = %d, want 100", got)
	}
	if got := h.Clock(); got != 200 {
		t.Fatalf("Clock() = %d, want 200", got)
	}
}

func TestHeadlessFrozenClock(t *testing.T) {
	h := NewHeadless(0)
	if h.Clock() != 0 || h.Clock() != 0 {
		t.Fatalf("a zero clockTag should freeze Clock() at 0")
	}
}

func TestHeadlessRunStop(t *testing.T) {
	h := NewHeadless(0)
	if !h.Run() {
		t.Fatalf("Run() should be true before Stop")
	}
	h.Stop()
	if h.Run() {
		t.Fatalf("Run() should be false after Stop")
	}
}
