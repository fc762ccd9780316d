// Package wram models work RAM and high RAM: in Classic mode two fixed 4 KiB
// banks, in Color mode eight switchable 4 KiB banks (FF70 selects 1-7, 0
// substituted to 1), plus the 127-byte high-page and the echo mirror.
package wram

import (
	"bytes"
	"encoding/gob"
)

// Model selects how many WRAM banks are addressable.
type Model int

const (
	Classic Model = iota
	Color
)

const bankSize = 0x1000

type RAM struct {
	model Model
	banks [8][bankSize]byte
	bank  byte // FF70 selection, Color mode only (1-7, 0 substituted to 1)
	hram  [0x7F]byte
}

func New(model Model) *RAM {
	r := &RAM{model: model}
	r.bank = 1
	return r
}

func (r *RAM) selectedBank() byte {
	if r.model == Classic {
		return 1
	}
	return r.bank
}

// addr is one of the C000-CFFF/D000-DFFF/E000-FDFF forms; this returns the
// owning bank (0 for the fixed low bank) and offset within it.
func (r *RAM) resolve(addr uint16) (bank byte, off uint16) {
	a := addr
	if a >= 0xE000 && a <= 0xFDFF {
		a -= 0x2000
	}
	if a < 0xD000 {
		return 0, a - 0xC000
	}
	return r.selectedBank(), a - 0xD000
}

func (r *RAM) ReadByte(addr uint16) (byte, bool) {
	switch {
	case addr == 0xFF70:
		return 0xF8 | r.bank, true
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return r.hram[addr-0xFF80], true
	case addr >= 0xC000 && addr <= 0xFDFF:
		bank, off := r.resolve(addr)
		return r.banks[bank][off], true
	}
	return 0, false
}

func (r *RAM) WriteByte(addr uint16, value byte) bool {
	switch {
	case addr == 0xFF70:
		b := value & 0x07
		if b == 0 {
			b = 1
		}
		r.bank = b
		return true
	case addr >= 0xFF80 && addr <= 0xFFFE:
		r.hram[addr-0xFF80] = value
		return true
	case addr >= 0xC000 && addr <= 0xFDFF:
		bank, off := r.resolve(addr)
		r.banks[bank][off] = value
		return true
	}
	return false
}

type ramState struct {
	Banks [8][bankSize]byte
	Bank  byte
	HRAM  [0x7F]byte
}

// SaveState gob-encodes the full bank set, the selected bank, and HRAM.
func (r *RAM) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(ramState{Banks: r.banks, Bank: r.bank, HRAM: r.hram})
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState. The model is not
// restored; the caller is expected to have constructed this RAM with the
// correct Model already.
func (r *RAM) LoadState(data []byte) {
	var s ramState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	r.banks = s.Banks
	r.bank = s.Bank
	r.hram = s.HRAM
}
