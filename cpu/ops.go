// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

//
// Instruction handler factories. Several SPC700 instructions share their
// behavior across many opcodes, differing only by addressing mode or by
// the register they target.
//

// Combine A with the instruction's operand and store the result in A.
func aluA(op aluop) instfunc {
	return func(c *CPU, inst *Instruction) {
		v := c.loadOperand(inst.Mode)
		c.Reg.A = op(c, c.Reg.A, v)
	}
}

// Combine two memory operands, optionally storing the result into the
// destination. Handles the (X),(Y), dp,dp and dp,#imm forms.
func aluMem(op aluop, store bool) instfunc {
	return func(c *CPU, inst *Instruction) {
		var src byte
		var dst uint32
		switch inst.Mode {
		case XYI:
			src = c.load(c.decodeAddress(YIN))
			dst = c.decodeAddress(XIN)
		case DDP:
			src = c.load(c.decodeAddress(DPG))
			dst = c.decodeAddress(DPG)
		case DIM:
			src = c.fetch()
			dst = c.decodeAddress(DPG)
		default:
			panic("invalid addressing mode")
		}
		result := op(c, c.load(dst), src)
		if store {
			c.store(dst, result)
		}
	}
}

// Apply a single-byte operation to A.
func modifyA(op modop) instfunc {
	return func(c *CPU, inst *Instruction) {
		c.Reg.A = op(c, c.Reg.A)
	}
}

// Apply a single-byte operation to X.
func modifyX(op modop) instfunc {
	return func(c *CPU, inst *Instruction) {
		c.Reg.X = op(c, c.Reg.X)
	}
}

// Apply a single-byte operation to Y.
func modifyY(op modop) instfunc {
	return func(c *CPU, inst *Instruction) {
		c.Reg.Y = op(c, c.Reg.Y)
	}
}

// Apply a single-byte operation to a byte of memory.
func modifyMem(op modop) instfunc {
	return func(c *CPU, inst *Instruction) {
		addr := c.decodeAddress(inst.Mode)
		c.store(addr, op(c, c.load(addr)))
	}
}

// Branch when the status bit matches 'set'.
func branchIf(bit byte, set bool) instfunc {
	return func(c *CPU, inst *Instruction) {
		target := c.decodeRelative()
		if c.Reg.Flag(bit) == set {
			c.Reg.PC = target
		}
	}
}

//
// Loads, stores and transfers
//

// Load Accumulator
func (c *CPU) movA(inst *Instruction) {
	c.Reg.A = c.loadOperand(inst.Mode)
	c.updateNZ(c.Reg.A)
}

// Load X register
func (c *CPU) movX(inst *Instruction) {
	c.Reg.X = c.loadOperand(inst.Mode)
	c.updateNZ(c.Reg.X)
}

// Load Y register
func (c *CPU) movY(inst *Instruction) {
	c.Reg.Y = c.loadOperand(inst.Mode)
	c.updateNZ(c.Reg.Y)
}

// Store Accumulator
func (c *CPU) stA(inst *Instruction) {
	c.store(c.decodeAddress(inst.Mode), c.Reg.A)
}

// Store X register
func (c *CPU) stX(inst *Instruction) {
	c.store(c.decodeAddress(inst.Mode), c.Reg.X)
}

// Store Y register
func (c *CPU) stY(inst *Instruction) {
	c.store(c.decodeAddress(inst.Mode), c.Reg.Y)
}

// Transfer X to A
func (c *CPU) movAX(inst *Instruction) {
	c.Reg.A = c.Reg.X
	c.updateNZ(c.Reg.A)
}

// Transfer Y to A
func (c *CPU) movAY(inst *Instruction) {
	c.Reg.A = c.Reg.Y
	c.updateNZ(c.Reg.A)
}

// Transfer A to X
func (c *CPU) movXA(inst *Instruction) {
	c.Reg.X = c.Reg.A
	c.updateNZ(c.Reg.X)
}

// Transfer A to Y
func (c *CPU) movYA(inst *Instruction) {
	c.Reg.Y = c.Reg.A
	c.updateNZ(c.Reg.Y)
}

// Transfer SP to X
func (c *CPU) movXSP(inst *Instruction) {
	c.Reg.X = c.Reg.SP
	c.updateNZ(c.Reg.X)
}

// Transfer X to SP. Flags are unaffected.
func (c *CPU) movSPX(inst *Instruction) {
	c.Reg.SP = c.Reg.X
}

// Copy one direct page byte to another. The source byte precedes the
// destination byte in the instruction stream.
func (c *CPU) movDpDp(inst *Instruction) {
	v := c.load(c.decodeAddress(DPG))
	c.store(c.decodeAddress(DPG), v)
}

// Store an immediate byte to the direct page. The immediate precedes the
// destination in the instruction stream.
func (c *CPU) movDpImm(inst *Instruction) {
	v := c.fetch()
	c.store(c.decodeAddress(DPG), v)
}

//
// Compares
//

// Compare X register
func (c *CPU) cmpX(inst *Instruction) {
	c.compare(c.Reg.X, c.loadOperand(inst.Mode))
}

// Compare Y register
func (c *CPU) cmpY(inst *Instruction) {
	c.compare(c.Reg.Y, c.loadOperand(inst.Mode))
}

//
// 16-bit operations
//

// Load YA from a direct page word
func (c *CPU) movwYA(inst *Instruction) {
	w := c.loadWord(c.decodeAddress(inst.Mode))
	c.Reg.SetYA(w)
	c.updateNZ16(w)
}

// Store YA to a direct page word
func (c *CPU) movwDp(inst *Instruction) {
	c.storeWord(c.decodeAddress(inst.Mode), c.Reg.YA())
}

// Increment a direct page word
func (c *CPU) incw(inst *Instruction) {
	addr := c.decodeAddress(inst.Mode)
	w := c.loadWord(addr) + 1
	c.storeWord(addr, w)
	c.updateNZ16(w)
}

// Decrement a direct page word
func (c *CPU) decw(inst *Instruction) {
	addr := c.decodeAddress(inst.Mode)
	w := c.loadWord(addr) - 1
	c.storeWord(addr, w)
	c.updateNZ16(w)
}

// Add a direct page word to YA
func (c *CPU) addw(inst *Instruction) {
	w := c.loadWord(c.decodeAddress(inst.Mode))
	c.Reg.SetYA(c.addWord(c.Reg.YA(), w))
}

// Subtract a direct page word from YA
func (c *CPU) subw(inst *Instruction) {
	w := c.loadWord(c.decodeAddress(inst.Mode))
	c.Reg.SetYA(c.subtractWord(c.Reg.YA(), w))
}

// Compare YA with a direct page word
func (c *CPU) cmpw(inst *Instruction) {
	w := c.loadWord(c.decodeAddress(inst.Mode))
	c.compareWord(c.Reg.YA(), w)
}

// Multiply Y by A
func (c *CPU) mul(inst *Instruction) {
	c.multiply()
}

// Divide YA by X
func (c *CPU) div(inst *Instruction) {
	c.divide()
}

// Decimal Adjust for Addition
func (c *CPU) daa(inst *Instruction) {
	c.decimalAdjustAdd()
}

// Decimal Adjust for Subtraction
func (c *CPU) das(inst *Instruction) {
	c.decimalAdjustSubtract()
}

// Exchange the nibbles of A
func (c *CPU) xcn(inst *Instruction) {
	c.Reg.A = c.Reg.A>>4 | c.Reg.A<<4
	c.updateNZ(c.Reg.A)
}

//
// Branches
//

// Branch Always
func (c *CPU) bra(inst *Instruction) {
	c.Reg.PC = c.decodeRelative()
}

// Branch if direct page Bit Set
func (c *CPU) bbs(inst *Instruction) {
	v := c.load(c.decodeAddress(DPG))
	target := c.decodeRelative()
	if v&(1<<(inst.Opcode>>5)) != 0 {
		c.Reg.PC = target
	}
}

// Branch if direct page Bit Clear
func (c *CPU) bbc(inst *Instruction) {
	v := c.load(c.decodeAddress(DPG))
	target := c.decodeRelative()
	if v&(1<<(inst.Opcode>>5)) == 0 {
		c.Reg.PC = target
	}
}

// Compare A with memory and Branch if Not Equal
func (c *CPU) cbne(inst *Instruction) {
	var addr uint32
	if inst.Mode == DXR {
		addr = c.decodeAddress(DPX)
	} else {
		addr = c.decodeAddress(DPG)
	}
	v := c.load(addr)
	target := c.decodeRelative()
	if c.Reg.A != v {
		c.Reg.PC = target
	}
}

// Decrement memory and Branch if Not Zero
func (c *CPU) dbnz(inst *Instruction) {
	addr := c.decodeAddress(DPG)
	v := c.load(addr) - 1
	c.store(addr, v)
	target := c.decodeRelative()
	if v != 0 {
		c.Reg.PC = target
	}
}

// Decrement Y and Branch if Not Zero
func (c *CPU) dbnzY(inst *Instruction) {
	target := c.decodeRelative()
	c.Reg.Y--
	if c.Reg.Y != 0 {
		c.Reg.PC = target
	}
}

//
// Jumps, calls and returns
//

// Jump
func (c *CPU) jmp(inst *Instruction) {
	c.Reg.PC = uint16(c.fetchWord())
}

// Jump indirect through [abs+X]
func (c *CPU) jmpIndexed(inst *Instruction) {
	ptr := c.fetchWord().Uint32() + uint32(c.Reg.X)
	c.Reg.PC = uint16(c.loadWord(ptr))
}

// Call subroutine
func (c *CPU) call(inst *Instruction) {
	target := c.fetchWord()
	c.pushWord(Word(c.Reg.PC))
	c.Reg.PC = uint16(target)
}

// Call subroutine in the uppermost page
func (c *CPU) pcall(inst *Instruction) {
	offset := c.fetch()
	c.pushWord(Word(c.Reg.PC))
	c.Reg.PC = uPageBase | uint16(offset)
}

// Call subroutine through the table at $FFC0-$FFDF
func (c *CPU) tcall(inst *Instruction) {
	n := uint32(inst.Opcode >> 4)
	c.pushWord(Word(c.Reg.PC))
	c.Reg.PC = uint16(c.loadWord(vectorTCALL - 2*n))
	if c.debugger != nil {
		c.debugger.onTcall(c, byte(n))
	}
}

// Software Break
func (c *CPU) brk(inst *Instruction) {
	c.pushWord(Word(c.Reg.PC))
	c.push(c.Reg.PSW)
	c.Reg.SetBreak(true)
	c.Reg.SetInterrupt(false)
	c.Reg.PC = uint16(c.loadWord(vectorBRK))
}

// Return from Subroutine
func (c *CPU) ret(inst *Instruction) {
	c.Reg.PC = uint16(c.popWord())
}

// Return from Interrupt
func (c *CPU) reti(inst *Instruction) {
	c.Reg.PSW = c.pop()
	c.Reg.PC = uint16(c.popWord())
}

//
// Stack
//

func (c *CPU) pushA(inst *Instruction)   { c.push(c.Reg.A) }
func (c *CPU) pushX(inst *Instruction)   { c.push(c.Reg.X) }
func (c *CPU) pushY(inst *Instruction)   { c.push(c.Reg.Y) }
func (c *CPU) pushPSW(inst *Instruction) { c.push(c.Reg.PSW) }
func (c *CPU) popA(inst *Instruction)    { c.Reg.A = c.pop() }
func (c *CPU) popX(inst *Instruction)    { c.Reg.X = c.pop() }
func (c *CPU) popY(inst *Instruction)    { c.Reg.Y = c.pop() }
func (c *CPU) popPSW(inst *Instruction)  { c.Reg.PSW = c.pop() }

//
// Bit operations
//

// Set a direct page bit
func (c *CPU) set1(inst *Instruction) {
	addr := c.decodeAddress(DPB)
	c.store(addr, c.load(addr)|1<<(inst.Opcode>>5))
}

// Clear a direct page bit
func (c *CPU) clr1(inst *Instruction) {
	addr := c.decodeAddress(DPB)
	c.store(addr, c.load(addr)&^(1<<(inst.Opcode>>5)))
}

// Test and Set bits with A
func (c *CPU) tset1(inst *Instruction) {
	addr := c.decodeAddress(ABS)
	v := c.load(addr)
	c.updateNZ(c.Reg.A - v)
	c.store(addr, v|c.Reg.A)
}

// Test and Clear bits with A
func (c *CPU) tclr1(inst *Instruction) {
	addr := c.decodeAddress(ABS)
	v := c.load(addr)
	c.updateNZ(c.Reg.A - v)
	c.store(addr, v&^c.Reg.A)
}

// Load the memory bit addressed by a mem.bit operand.
func (c *CPU) loadMemBit() bool {
	addr, bit := c.decodeMemBit()
	return c.load(addr)&(1<<bit) != 0
}

// AND memory bit into Carry
func (c *CPU) and1(inst *Instruction) {
	if !c.loadMemBit() {
		c.Reg.SetCarry(false)
	}
}

// AND inverted memory bit into Carry
func (c *CPU) and1Not(inst *Instruction) {
	if c.loadMemBit() {
		c.Reg.SetCarry(false)
	}
}

// OR memory bit into Carry
func (c *CPU) or1(inst *Instruction) {
	if c.loadMemBit() {
		c.Reg.SetCarry(true)
	}
}

// OR inverted memory bit into Carry
func (c *CPU) or1Not(inst *Instruction) {
	if !c.loadMemBit() {
		c.Reg.SetCarry(true)
	}
}

// Exclusive OR memory bit into Carry
func (c *CPU) eor1(inst *Instruction) {
	if c.loadMemBit() {
		c.Reg.ToggleFlag(CarryBit)
	}
}

// Invert a memory bit
func (c *CPU) not1(inst *Instruction) {
	addr, bit := c.decodeMemBit()
	c.store(addr, c.load(addr)^1<<bit)
}

// Copy a memory bit into Carry
func (c *CPU) mov1C(inst *Instruction) {
	c.Reg.SetCarry(c.loadMemBit())
}

// Copy Carry into a memory bit
func (c *CPU) mov1Mem(inst *Instruction) {
	addr, bit := c.decodeMemBit()
	v := c.load(addr)
	if c.Reg.Carry() {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	c.store(addr, v)
}

//
// Status flags
//

// Clear Carry
func (c *CPU) clrc(inst *Instruction) { c.Reg.SetCarry(false) }

// Set Carry
func (c *CPU) setc(inst *Instruction) { c.Reg.SetCarry(true) }

// Complement Carry
func (c *CPU) notc(inst *Instruction) { c.Reg.ToggleFlag(CarryBit) }

// Clear Overflow and Half-carry
func (c *CPU) clrv(inst *Instruction) {
	c.Reg.SetOverflow(false)
	c.Reg.SetHalfCarry(false)
}

// Clear Direct Page
func (c *CPU) clrp(inst *Instruction) { c.Reg.SetDirectPage(false) }

// Set Direct Page
func (c *CPU) setp(inst *Instruction) { c.Reg.SetDirectPage(true) }

// Enable Interrupts
func (c *CPU) ei(inst *Instruction) { c.Reg.SetInterrupt(true) }

// Disable Interrupts
func (c *CPU) di(inst *Instruction) { c.Reg.SetInterrupt(false) }

// No Operation. SLEEP and STOP share it since halting is not emulated.
func (c *CPU) nop(inst *Instruction) {}
