// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements the instruction set of the SPC700, the sound
// co-processor of the Super Nintendo, and an emulator that executes it.
package cpu

import (
	"io"
	"log"
)

// CPU represents a single SPC700 CPU. It owns its registers and is bound
// to the memory it executes against.
type CPU struct {
	Reg         Registers       // CPU registers
	Mem         Memory          // assigned memory
	Steps       uint64          // total executed instructions
	LastPC      uint16          // address of the most recently executed instruction
	InstSet     *InstructionSet // instruction set used by the CPU
	lastAddress uint32
	log         *log.Logger
	debugger    *Debugger
	storeByte   func(cpu *CPU, addr uint32, v byte)
}

// Vectors
const (
	vectorBRK   = 0xffde
	vectorTCALL = 0xffde // TCALL n reads its target from vectorTCALL - 2n
	uPageBase   = 0xff00
)

// An Option configures a CPU.
type Option func(c *CPU)

// WithLogger sends the CPU's diagnostics, such as reports of unknown
// opcodes, to the provided logger. By default they are discarded.
func WithLogger(l *log.Logger) Option {
	return func(c *CPU) {
		c.log = l
	}
}

// NewCPU creates an emulated SPC700 CPU bound to the specified memory.
// All registers start at zero.
func NewCPU(m Memory, opts ...Option) *CPU {
	c := &CPU{
		Mem:       m,
		InstSet:   GetInstructionSet(),
		log:       log.New(io.Discard, "", 0),
		storeByte: (*CPU).storeByteNormal,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Reg.Init()
	return c
}

// SetPC updates the CPU program counter to 'addr'.
func (c *CPU) SetPC(addr uint16) {
	c.Reg.PC = addr
}

// LastAddress returns the address of the most recent data read or write
// performed by the CPU. Instruction and operand fetches are not counted.
func (c *CPU) LastAddress() uint32 {
	return c.lastAddress
}

// GetInstruction returns the instruction whose opcode is stored at the
// requested address.
func (c *CPU) GetInstruction(addr uint16) *Instruction {
	opcode := c.Mem.LoadByte(uint32(addr))
	return c.InstSet.Lookup(opcode)
}

// NextAddr returns the address of the next instruction following the
// instruction at addr.
func (c *CPU) NextAddr(addr uint16) uint16 {
	inst := c.GetInstruction(addr)
	return addr + uint16(inst.Length)
}

// Step the cpu by one instruction.
func (c *CPU) Step() {
	c.LastPC = c.Reg.PC

	// Grab the next opcode at the current PC and look up its instruction.
	opcode := c.fetch()
	inst := c.InstSet.Lookup(opcode)

	// An instruction without an implementation is reported and skipped.
	// The PC has already moved past its opcode byte.
	if inst.fn == nil {
		c.log.Printf("unknown opcode $%02X at $%04X", opcode, c.LastPC)
	} else {
		inst.fn(c, inst)
	}
	c.Steps++

	// Update the debugger so it can handle breakpoints.
	if c.debugger != nil {
		c.debugger.onUpdatePC(c, c.Reg.PC)
	}
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU executes an instruction or stores a byte
// to memory.
func (c *CPU) AttachDebugger(debugger *Debugger) {
	c.debugger = debugger
	c.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger detaches the currently attached debugger from the CPU.
func (c *CPU) DetachDebugger() {
	c.debugger = nil
	c.storeByte = (*CPU).storeByteNormal
}

// DirectPageAddress converts a direct page index into an address. The
// DirectPage status flag selects page 1 ($0100-$01FF) instead of page 0.
func (c *CPU) DirectPageAddress(index byte) uint32 {
	if c.Reg.DirectPage() {
		return 0x100 | uint32(index)
	}
	return uint32(index)
}

// Fetch the next byte of the instruction stream and advance the PC.
func (c *CPU) fetch() byte {
	v := c.Mem.LoadByte(uint32(c.Reg.PC))
	c.Reg.PC++
	return v
}

// Fetch the next two bytes of the instruction stream as a little-endian
// word.
func (c *CPU) fetchWord() Word {
	lo := c.fetch()
	hi := c.fetch()
	return NewWord(hi, lo)
}

// Resolve the address of an instruction's memory operand, consuming
// operand bytes from the instruction stream as needed. Index registers
// are added without masking, so the result may exceed a page or the
// address space.
func (c *CPU) decodeAddress(mode Mode) uint32 {
	switch mode {
	case XIN:
		return c.DirectPageAddress(c.Reg.X)
	case XIP:
		addr := c.DirectPageAddress(c.Reg.X)
		c.Reg.X++
		return addr
	case YIN:
		return c.DirectPageAddress(c.Reg.Y)
	case DPG, DPB:
		return c.DirectPageAddress(c.fetch())
	case DPX:
		return c.DirectPageAddress(c.fetch()) + uint32(c.Reg.X)
	case DPY:
		return c.DirectPageAddress(c.fetch()) + uint32(c.Reg.Y)
	case ABS:
		return c.fetchWord().Uint32()
	case ABX:
		return c.fetchWord().Uint32() + uint32(c.Reg.X)
	case ABY:
		return c.fetchWord().Uint32() + uint32(c.Reg.Y)
	case IDX:
		ptr := c.DirectPageAddress(c.fetch()) + uint32(c.Reg.X)
		return c.loadWord(ptr).Uint32()
	case IDY:
		ptr := c.DirectPageAddress(c.fetch())
		return c.loadWord(ptr).Uint32() + uint32(c.Reg.Y)
	default:
		panic("invalid addressing mode")
	}
}

// Consume a relative branch offset and return the target it designates.
// The offset is relative to the PC after the offset byte.
func (c *CPU) decodeRelative() uint16 {
	offset := int8(c.fetch())
	return uint16(int32(c.Reg.PC) + int32(offset))
}

// Consume a mem.bit operand: a 13-bit address and a 3-bit bit index packed
// into one word.
func (c *CPU) decodeMemBit() (addr uint32, bit byte) {
	w := c.fetchWord()
	return uint32(w & 0x1fff), byte(w >> 13)
}

// Load the byte operand of an instruction using its addressing mode.
func (c *CPU) loadOperand(mode Mode) byte {
	if mode == IMM {
		return c.fetch()
	}
	return c.load(c.decodeAddress(mode))
}

// Load a byte from memory, recording the access.
func (c *CPU) load(addr uint32) byte {
	c.lastAddress = addr
	return c.Mem.LoadByte(addr)
}

// Load a word from memory, recording the access.
func (c *CPU) loadWord(addr uint32) Word {
	c.lastAddress = addr
	return c.Mem.LoadWord(addr)
}

// Store a byte to memory, recording the access.
func (c *CPU) store(addr uint32, v byte) {
	c.lastAddress = addr
	c.storeByte(c, addr, v)
}

// Store a word to memory, recording the access.
func (c *CPU) storeWord(addr uint32, v Word) {
	c.lastAddress = addr
	if c.debugger != nil {
		hi := addr + 1
		if m, ok := c.Mem.(interface{ highByteAddress(uint32) uint32 }); ok {
			hi = m.highByteAddress(addr)
		}
		c.debugger.onDataStore(c, addr, v.Low())
		c.debugger.onDataStore(c, hi, v.High())
	}
	c.Mem.StoreWord(addr, v)
}

// Store the byte value 'v' at the address 'addr'.
func (c *CPU) storeByteNormal(addr uint32, v byte) {
	c.Mem.StoreByte(addr, v)
}

// Store the byte value 'v' at the address 'addr', notifying the debugger.
func (c *CPU) storeByteDebugger(addr uint32, v byte) {
	c.debugger.onDataStore(c, addr, v)
	c.Mem.StoreByte(addr, v)
}

// Push a value 'v' onto the stack.
func (c *CPU) push(v byte) {
	c.store(stackAddress(c.Reg.SP), v)
	c.Reg.SP--
}

// Push a word onto the stack, low byte first.
func (c *CPU) pushWord(w Word) {
	c.push(w.Low())
	c.push(w.High())
}

// Pop a value from the stack and return it.
func (c *CPU) pop() byte {
	c.Reg.SP++
	return c.load(stackAddress(c.Reg.SP))
}

// Pop a word off the stack, high byte first.
func (c *CPU) popWord() Word {
	hi := c.pop()
	lo := c.pop()
	return NewWord(hi, lo)
}

// Update the Zero and Negative flags based on the value of 'v'.
func (c *CPU) updateNZ(v byte) {
	c.Reg.SetZero(v == 0)
	c.Reg.SetNegative(v&0x80 != 0)
}

// Update the Zero and Negative flags based on a 16-bit value.
func (c *CPU) updateNZ16(w Word) {
	c.Reg.SetZero(w == 0)
	c.Reg.SetNegative(w&0x8000 != 0)
}
