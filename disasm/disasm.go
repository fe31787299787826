// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements an SPC700 instruction set disassembler.
package disasm

import (
	"fmt"
	"strings"

	"github.com/beevik/spc700/cpu"
)

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of a byte slice, most
// significant byte first.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Operand bytes of a decoded instruction, in the order they appear in
// the instruction stream.
type operands struct {
	addr uint16
	inst *cpu.Instruction
	b    []byte
}

// Return the relative branch target encoded by the final operand byte.
func (o *operands) target() string {
	offset := int8(o.b[len(o.b)-1])
	t := o.addr + uint16(o.inst.Length) + uint16(offset)
	return hexString([]byte{byte(t), byte(t >> 8)})
}

// Return the text substituted for the operand letter 'c'.
func (o *operands) field(c byte) string {
	switch c {
	case 'i':
		// The immediate is the first operand byte, also in the d,#i form.
		return "$" + hexString(o.b[:1])
	case 'd':
		// dp,dp and dp,#imm encode the destination last.
		if o.inst.Mode == cpu.DDP || o.inst.Mode == cpu.DIM {
			return "$" + hexString(o.b[1:2])
		}
		return "$" + hexString(o.b[:1])
	case 's':
		return "$" + hexString(o.b[:1])
	case 'a':
		return "$" + hexString(o.b[:2])
	case 'u':
		return "$FF" + hexString(o.b[:1])
	case 'r':
		return "$" + o.target()
	case 'm':
		w := cpu.NewWord(o.b[1], o.b[0])
		return fmt.Sprintf("$%04X.%d", uint16(w&0x1fff), w>>13)
	}
	return string(c)
}

// Disassemble the machine code in memory 'm' at address 'addr'. Return a
// 'line' string representing the disassembled instruction and a 'next'
// address that starts the following line of machine code.
func Disassemble(m cpu.Memory, addr uint16) (line string, next uint16) {
	set := cpu.GetInstructionSet()
	inst := set.Lookup(m.LoadByte(uint32(addr)))

	o := &operands{addr: addr, inst: inst, b: make([]byte, inst.Length-1)}
	m.LoadBytes(uint32(addr)+1, o.b)

	var sb strings.Builder
	sb.WriteString(inst.Name)
	if inst.Operands != "" {
		sb.WriteByte(' ')
		for i := 0; i < len(inst.Operands); i++ {
			sb.WriteString(o.field(inst.Operands[i]))
		}
	}

	return sb.String(), addr + uint16(inst.Length)
}

// GetRegisterString returns a string describing the contents of the CPU
// registers.
func GetRegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PSW=[%s] SP=%02X PC=%04X",
		r.A, r.X, r.Y, r.FlagString(), r.SP, r.PC)
}

// GetCompactRegisterString returns a compact string describing the
// contents of the CPU registers, suitable for trace output.
func GetCompactRegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=[%s] SP=%02X", r.A, r.X, r.Y, r.FlagString(), r.SP)
}
