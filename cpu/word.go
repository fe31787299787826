// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// A Word is a 16-bit value whose high and low bytes may be read and
// written independently. It is used for the YA register pair, for
// addresses, and for 16-bit memory operands.
type Word uint16

// NewWord builds a word from its high and low bytes.
func NewWord(hi, lo byte) Word {
	return Word(hi)<<8 | Word(lo)
}

// Low returns the low byte of the word.
func (w Word) Low() byte {
	return byte(w & 0xff)
}

// High returns the high byte of the word.
func (w Word) High() byte {
	return byte(w >> 8)
}

// SetLow replaces the low byte of the word.
func (w *Word) SetLow(v byte) {
	*w = (*w & 0xff00) | Word(v)
}

// SetHigh replaces the high byte of the word.
func (w *Word) SetHigh(v byte) {
	*w = (*w & 0x00ff) | Word(v)<<8
}

// Inc increments the word, wrapping from $FFFF to $0000.
func (w *Word) Inc() {
	*w++
}

// Dec decrements the word, wrapping from $0000 to $FFFF.
func (w *Word) Dec() {
	*w--
}

// Add returns w + v modulo 2^16.
func (w Word) Add(v Word) Word {
	return w + v
}

// Sub returns w - v modulo 2^16.
func (w Word) Sub(v Word) Word {
	return w - v
}

// Int8 returns the low byte interpreted as a signed value.
func (w Word) Int8() int8 {
	return int8(w.Low())
}

// Int16 returns the word interpreted as a signed value.
func (w Word) Int16() int16 {
	return int16(w)
}

// Int32 returns the word zero-extended to a signed 32-bit value.
func (w Word) Int32() int32 {
	return int32(w)
}

// Uint32 returns the word zero-extended to 32 bits. Addresses are passed
// to memory as uint32 values.
func (w Word) Uint32() uint32 {
	return uint32(w)
}
