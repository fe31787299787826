// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// An aluop combines two bytes into a result, updating the status flags.
type aluop func(c *CPU, a, b byte) byte

// A modop transforms a single byte, updating the status flags.
type modop func(c *CPU, v byte) byte

// Set Overflow when a full-width result falls outside [-127, 127].
func (c *CPU) updateOverflow(result int) {
	c.Reg.SetOverflow(result < -127 || result > 127)
}

// Add 'a', 'b' and the carry flag.
func (c *CPU) addWithCarry(a, b byte) byte {
	result := int(a) + int(b) + int(boolToByte(c.Reg.Carry()))

	c.Reg.SetCarry(result > 0xff)
	c.Reg.SetHalfCarry((int(a)^int(b)^result)&0x10 != 0)
	c.updateOverflow(result)
	c.updateNZ(byte(result))
	return byte(result)
}

// Subtract 'b' from 'a'. A clear carry flag adds one to the result.
// Carry is cleared when the result borrows past bit 7.
func (c *CPU) subtractWithCarry(a, b byte) byte {
	result := int(a) - int(b) + int(boolToByte(!c.Reg.Carry()))

	c.Reg.SetCarry(uint16(result)>>8 == 0)
	c.Reg.SetHalfCarry((int(a)^int(b)^result)&0x10 == 0)
	c.updateOverflow(result)
	c.updateNZ(byte(result))
	return byte(result)
}

// Compare 'a' with 'b' and update the flags. Returns 'a' unchanged.
func (c *CPU) compare(a, b byte) byte {
	result := int(a) - int(b)

	c.Reg.SetCarry(result >= 0)
	c.updateOverflow(result)
	c.updateNZ(byte(result))
	return a
}

func (c *CPU) and(a, b byte) byte {
	c.updateNZ(a & b)
	return a & b
}

func (c *CPU) or(a, b byte) byte {
	c.updateNZ(a | b)
	return a | b
}

func (c *CPU) eor(a, b byte) byte {
	c.updateNZ(a ^ b)
	return a ^ b
}

// Arithmetic shift left. Bit 7 moves into the carry.
func (c *CPU) asl(v byte) byte {
	c.Reg.SetCarry(v&0x80 != 0)
	v <<= 1
	c.updateNZ(v)
	return v
}

// Logical shift right. Bit 0 moves into the carry.
func (c *CPU) lsr(v byte) byte {
	c.Reg.SetCarry(v&0x01 != 0)
	v >>= 1
	c.updateNZ(v)
	return v
}

// Rotate left through the carry.
func (c *CPU) rol(v byte) byte {
	carry := boolToByte(c.Reg.Carry())
	c.Reg.SetCarry(v&0x80 != 0)
	v = v<<1 | carry
	c.updateNZ(v)
	return v
}

// Rotate right through the carry.
func (c *CPU) ror(v byte) byte {
	carry := boolToByte(c.Reg.Carry())
	c.Reg.SetCarry(v&0x01 != 0)
	v = v>>1 | carry<<7
	c.updateNZ(v)
	return v
}

func (c *CPU) inc(v byte) byte {
	v++
	c.updateNZ(v)
	return v
}

func (c *CPU) dec(v byte) byte {
	v--
	c.updateNZ(v)
	return v
}

// Add a word to YA. The carry flag is ignored on input.
func (c *CPU) addWord(ya, w Word) Word {
	result := int(ya) + int(w)

	c.Reg.SetCarry(result > 0xffff)
	c.Reg.SetHalfCarry((int(ya)^int(w)^result)&0x1000 != 0)
	c.Reg.SetOverflow(^(int(ya)^int(w))&(int(ya)^result)&0x8000 != 0)
	c.updateNZ16(Word(result))
	return Word(result)
}

// Subtract a word from YA without borrow in. Carry is set when no borrow
// occurred.
func (c *CPU) subtractWord(ya, w Word) Word {
	result := int(ya) - int(w)

	c.Reg.SetCarry(result >= 0)
	c.Reg.SetHalfCarry((int(ya)^int(w)^result)&0x1000 == 0)
	c.Reg.SetOverflow((int(ya)^int(w))&(int(ya)^result)&0x8000 != 0)
	c.updateNZ16(Word(result))
	return Word(result)
}

// Compare YA with a word.
func (c *CPU) compareWord(ya, w Word) {
	result := int(ya) - int(w)

	c.Reg.SetCarry(result >= 0)
	c.updateNZ16(Word(result))
}

// Multiply Y by A into YA. Zero and Negative follow the low byte of the
// product.
func (c *CPU) multiply() {
	ya := Word(c.Reg.Y) * Word(c.Reg.A)
	c.Reg.SetYA(ya)
	c.updateNZ(c.Reg.A)
}

// Divide YA by X, leaving the quotient in A and the remainder in Y. Both
// are truncated to a byte. Overflow is bit 8 of the new YA, and HalfCarry
// is set when the low nibble of X does not exceed that of the remainder.
//
// A zero divisor leaves A = $FF - Y and Y = old A, with Overflow set.
func (c *CPU) divide() {
	x := uint32(c.Reg.X)
	if x == 0 {
		y, a := c.Reg.Y, c.Reg.A
		c.Reg.A = 0xff - y
		c.Reg.Y = a
		c.Reg.SetOverflow(true)
		c.Reg.SetHalfCarry(true)
		c.updateNZ(c.Reg.A)
		return
	}

	ya := uint32(c.Reg.YA())
	c.Reg.A = byte(ya / x)
	c.Reg.Y = byte(ya % x)

	c.Reg.SetOverflow(c.Reg.YA()&0x0100 != 0)
	c.Reg.SetHalfCarry(x&0x0f <= uint32(c.Reg.Y&0x0f))
	c.updateNZ(c.Reg.A)
}

// Decimal adjust A after an addition.
func (c *CPU) decimalAdjustAdd() {
	if c.Reg.Carry() || c.Reg.A > 0x99 {
		c.Reg.A += 0x60
		c.Reg.SetCarry(true)
	}
	if c.Reg.HalfCarry() || c.Reg.A&0x0f > 9 {
		c.Reg.A += 0x06
	}
	c.updateNZ(c.Reg.A)
}

// Decimal adjust A after a subtraction.
func (c *CPU) decimalAdjustSubtract() {
	if !c.Reg.Carry() || c.Reg.A > 0x99 {
		c.Reg.A -= 0x60
		c.Reg.SetCarry(false)
	}
	if !c.Reg.HalfCarry() || c.Reg.A&0x0f > 9 {
		c.Reg.A -= 0x06
	}
	c.updateNZ(c.Reg.A)
}
