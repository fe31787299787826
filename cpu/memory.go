// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "errors"

// Errors
var (
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
)

// MemorySize is the size of the SPC700 address space in bytes.
const MemorySize = 0x10000

// The Memory interface presents an interface to the CPU through which all
// memory accesses occur. Addresses are 32-bit so that indexed address
// computations that run past $FFFF reach the memory unmasked; an
// implementation must treat such addresses as out of range.
type Memory interface {
	// LoadByte loads a single byte from the address and returns it.
	// Addresses beyond $FFFF read as zero.
	LoadByte(addr uint32) byte

	// LoadBytes loads multiple bytes from the address and stores them into
	// the buffer 'b'.
	LoadBytes(addr uint32, b []byte)

	// LoadWord loads a 16-bit value with its low byte at 'addr' and its high
	// byte at 'addr+1'.
	LoadWord(addr uint32) Word

	// StoreByte stores a byte to the requested address. Stores beyond
	// $FFFF are ignored.
	StoreByte(addr uint32, v byte)

	// StoreBytes stores multiple bytes starting at the requested address.
	StoreBytes(addr uint32, b []byte)

	// StoreWord stores a 16-bit value to the requested address.
	StoreWord(addr uint32, v Word)
}

// FlatMemory represents the entire SPC700 address space as a singular
// 64K buffer.
type FlatMemory struct {
	b           [MemorySize]byte
	legacyWords bool
}

// A MemoryOption configures a FlatMemory.
type MemoryOption func(m *FlatMemory)

// WithLegacyWordStores makes StoreWord write both bytes of the word to the
// same address, low byte first. Older SPC tooling behaved this way, and
// some test vectors depend on it.
func WithLegacyWordStores() MemoryOption {
	return func(m *FlatMemory) {
		m.legacyWords = true
	}
}

// NewFlatMemory creates a new zero-filled 64K memory space.
func NewFlatMemory(opts ...MemoryOption) *FlatMemory {
	m := &FlatMemory{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadByte loads a single byte from the address and returns it.
func (m *FlatMemory) LoadByte(addr uint32) byte {
	if addr >= MemorySize {
		return 0
	}
	return m.b[addr]
}

// LoadBytes loads multiple bytes from the address. Bytes past the end of
// the address space read as zero.
func (m *FlatMemory) LoadBytes(addr uint32, b []byte) {
	if addr >= MemorySize {
		clear(b)
		return
	}
	n := copy(b, m.b[addr:])
	clear(b[n:])
}

// LoadWord loads a 16-bit value from the requested address. There is no
// wrap at the end of memory: the high byte of a word loaded from $FFFF
// reads as zero.
func (m *FlatMemory) LoadWord(addr uint32) Word {
	return NewWord(m.LoadByte(addr+1), m.LoadByte(addr))
}

// StoreByte stores a byte at the requested address.
func (m *FlatMemory) StoreByte(addr uint32, v byte) {
	if addr < MemorySize {
		m.b[addr] = v
	}
}

// StoreBytes stores multiple bytes to the requested address.
func (m *FlatMemory) StoreBytes(addr uint32, b []byte) {
	for i, v := range b {
		m.StoreByte(addr+uint32(i), v)
	}
}

// StoreWord stores a 16-bit value to the requested address, low byte
// first.
func (m *FlatMemory) StoreWord(addr uint32, v Word) {
	m.StoreByte(addr, v.Low())
	m.StoreByte(m.highByteAddress(addr), v.High())
}

// Return the address receiving the high byte of a word stored at 'addr'.
func (m *FlatMemory) highByteAddress(addr uint32) uint32 {
	if m.legacyWords {
		return addr
	}
	return addr + 1
}

// StoreImage copies a block of bytes into memory. Unlike StoreBytes, it
// fails without writing anything if the block does not fit.
func StoreImage(m Memory, addr uint32, b []byte) error {
	if uint64(addr)+uint64(len(b)) > MemorySize {
		return ErrMemoryOutOfBounds
	}
	m.StoreBytes(addr, b)
	return nil
}

// Given a 1-byte stack pointer register, return the corresponding stack
// memory address.
func stackAddress(offset byte) uint32 {
	return 0x100 | uint32(offset)
}
