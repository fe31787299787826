// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "fmt"

// Registers contains the state of all SPC700 registers. The A and Y
// registers together form the 16-bit YA pair, with Y in the high byte.
type Registers struct {
	A   byte   // accumulator
	X   byte   // X indexing register
	Y   byte   // Y indexing register
	SP  byte   // stack pointer ($100 + SP = stack memory location)
	PC  uint16 // program counter
	PSW byte   // program status word
}

// Bits assigned to the program status word
const (
	CarryBit      = 1 << 0
	ZeroBit       = 1 << 1
	InterruptBit  = 1 << 2 // unused
	HalfCarryBit  = 1 << 3
	BreakBit      = 1 << 4
	DirectPageBit = 1 << 5
	OverflowBit   = 1 << 6
	NegativeBit   = 1 << 7
)

// Init initializes all registers to zero.
func (r *Registers) Init() {
	*r = Registers{}
}

// Load copies every register value from another register file.
func (r *Registers) Load(other *Registers) {
	*r = *other
}

// YA returns the 16-bit YA register pair.
func (r *Registers) YA() Word {
	return NewWord(r.Y, r.A)
}

// SetYA stores a 16-bit value into the YA register pair.
func (r *Registers) SetYA(w Word) {
	r.Y, r.A = w.High(), w.Low()
}

// Flag returns true if every bit in 'bit' is set in the status word.
func (r *Registers) Flag(bit byte) bool {
	return r.PSW&bit == bit
}

// SetFlag sets or clears the status bits in 'bit'.
func (r *Registers) SetFlag(bit byte, on bool) {
	if on {
		r.PSW |= bit
	} else {
		r.PSW &^= bit
	}
}

// ToggleFlag inverts the status bits in 'bit'.
func (r *Registers) ToggleFlag(bit byte) {
	r.PSW ^= bit
}

func (r *Registers) Carry() bool      { return r.Flag(CarryBit) }
func (r *Registers) Zero() bool       { return r.Flag(ZeroBit) }
func (r *Registers) Interrupt() bool  { return r.Flag(InterruptBit) }
func (r *Registers) HalfCarry() bool  { return r.Flag(HalfCarryBit) }
func (r *Registers) Break() bool      { return r.Flag(BreakBit) }
func (r *Registers) DirectPage() bool { return r.Flag(DirectPageBit) }
func (r *Registers) Overflow() bool   { return r.Flag(OverflowBit) }
func (r *Registers) Negative() bool   { return r.Flag(NegativeBit) }

func (r *Registers) SetCarry(v bool)      { r.SetFlag(CarryBit, v) }
func (r *Registers) SetZero(v bool)       { r.SetFlag(ZeroBit, v) }
func (r *Registers) SetInterrupt(v bool)  { r.SetFlag(InterruptBit, v) }
func (r *Registers) SetHalfCarry(v bool)  { r.SetFlag(HalfCarryBit, v) }
func (r *Registers) SetBreak(v bool)      { r.SetFlag(BreakBit, v) }
func (r *Registers) SetDirectPage(v bool) { r.SetFlag(DirectPageBit, v) }
func (r *Registers) SetOverflow(v bool)   { r.SetFlag(OverflowBit, v) }
func (r *Registers) SetNegative(v bool)   { r.SetFlag(NegativeBit, v) }

// Increment and decrement helpers. Each wraps within the width of its
// register.
func (r *Registers) IncA()  { r.A++ }
func (r *Registers) DecA()  { r.A-- }
func (r *Registers) IncX()  { r.X++ }
func (r *Registers) DecX()  { r.X-- }
func (r *Registers) IncY()  { r.Y++ }
func (r *Registers) DecY()  { r.Y-- }
func (r *Registers) IncSP() { r.SP++ }
func (r *Registers) DecSP() { r.SP-- }
func (r *Registers) IncPC() { r.PC++ }

// AddPC moves the program counter by a signed offset.
func (r *Registers) AddPC(offset int8) {
	r.PC = uint16(int32(r.PC) + int32(offset))
}

var flagNames = "NVPBHIZC"

// FlagString returns the status word as a string of flag letters, with
// cleared flags shown as '-'.
func (r *Registers) FlagString() string {
	b := []byte(flagNames)
	for i := 0; i < 8; i++ {
		if r.PSW&(0x80>>i) == 0 {
			b[i] = '-'
		}
	}
	return string(b)
}

func (r Registers) String() string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X SP=%02X PC=%04X PSW=%s",
		r.A, r.X, r.Y, r.SP, r.PC, r.FlagString())
}

func boolToByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
