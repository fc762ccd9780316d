package gameboy

import (
	"io"

	"github.com/hollow-bender/pocketcore/internal/ic"
)

// serialPort models FF01 (SB)/FF02 (SC). Real hardware shifts one bit at a
// time over several hundred T-cycles; test ROMs and the rest of the pack
// only care that a byte written with the start bit set shows up on the
// sink and raises the serial interrupt, so this completes a transfer
// immediately rather than modeling the bit clock — link-cable emulation
// (two consoles trading bytes) is explicitly out of scope.
type serialPort struct {
	irq *ic.Controller
	sb  byte
	sc  byte
	w   io.Writer
}

func newSerialPort(irq *ic.Controller) *serialPort {
	return &serialPort{irq: irq}
}

// SetWriter installs (or clears, with nil) the sink that receives each byte
// transferred over the serial port.
func (s *serialPort) SetWriter(w io.Writer) { s.w = w }

func (s *serialPort) ReadByte(addr uint16) (byte, bool) {
	switch addr {
	case 0xFF01:
		return s.sb, true
	case 0xFF02:
		return 0x7E | (s.sc & 0x81), true
	}
	return 0, false
}

func (s *serialPort) WriteByte(addr uint16, value byte) bool {
	switch addr {
	case 0xFF01:
		s.sb = value
		return true
	case 0xFF02:
		s.sc = value & 0x81
		if s.sc&0x80 != 0 {
			if s.w != nil {
				_, _ = s.w.Write([]byte{s.sb})
			}
			if s.irq != nil {
				s.irq.RequestSerial()
			}
			s.sc &^= 0x80
		}
		return true
	}
	return false
}
