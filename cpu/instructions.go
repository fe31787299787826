// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"strings"
	"sync"
)

// Mode describes the way an instruction locates its operands.
type Mode byte

// Addressing modes
const (
	IMP Mode = iota // implied or register operands
	IMM             // #$nn
	XIN             // (X)
	XIP             // (X)+, X incremented after the access
	YIN             // (Y)
	DPG             // $nn
	DPX             // $nn+X
	DPY             // $nn+Y
	ABS             // !$nnnn
	ABX             // !$nnnn+X
	ABY             // !$nnnn+Y
	IDX             // [$nn+X]
	IDY             // [$nn]+Y
	REL             // relative branch target
	XYI             // (X),(Y)
	DDP             // $dd,$ss (source byte encoded first)
	DIM             // $dd,#$ii (immediate encoded first)
	MBT             // $aaaa.b, a 13-bit address and a 3-bit bit index
	DPB             // $nn.b, bit index taken from the opcode
	DBR             // $nn.b,rel
	DPR             // $nn,rel
	DXR             // $nn+X,rel
	IAX             // [!$nnnn+X]
	UPG             // $FFnn
)

type instfunc func(c *CPU, inst *Instruction)

// Opcode data for the SPC700 instruction set. The operand template uses
// lowercase letters for operand values: i (immediate), d (direct page or
// destination), s (source direct page), a (absolute), r (relative
// target), m (mem.bit) and u (uppermost page offset). Uppercase letters
// name registers.
type opcodeData struct {
	opcode   byte
	name     string
	operands string
	mode     Mode
	length   byte
	fn       instfunc
}

var data = []opcodeData{
	{0x00, "NOP", "", IMP, 1, (*CPU).nop},
	{0x01, "TCALL", "0", IMP, 1, (*CPU).tcall},
	{0x02, "SET1", "d.0", DPB, 2, (*CPU).set1},
	{0x03, "BBS", "d.0,r", DBR, 3, (*CPU).bbs},
	{0x04, "OR", "A,d", DPG, 2, aluA((*CPU).or)},
	{0x05, "OR", "A,!a", ABS, 3, aluA((*CPU).or)},
	{0x06, "OR", "A,(X)", XIN, 1, aluA((*CPU).or)},
	{0x07, "OR", "A,[d+X]", IDX, 2, aluA((*CPU).or)},
	{0x08, "OR", "A,#i", IMM, 2, aluA((*CPU).or)},
	{0x09, "OR", "d,s", DDP, 3, aluMem((*CPU).or, true)},
	{0x0a, "OR1", "C,m", MBT, 3, (*CPU).or1},
	{0x0b, "ASL", "d", DPG, 2, modifyMem((*CPU).asl)},
	{0x0c, "ASL", "!a", ABS, 3, modifyMem((*CPU).asl)},
	{0x0d, "PUSH", "PSW", IMP, 1, (*CPU).pushPSW},
	{0x0e, "TSET1", "!a", ABS, 3, (*CPU).tset1},
	{0x0f, "BRK", "", IMP, 1, (*CPU).brk},
	{0x10, "BPL", "r", REL, 2, branchIf(NegativeBit, false)},
	{0x11, "TCALL", "1", IMP, 1, (*CPU).tcall},
	{0x12, "CLR1", "d.0", DPB, 2, (*CPU).clr1},
	{0x13, "BBC", "d.0,r", DBR, 3, (*CPU).bbc},
	{0x14, "OR", "A,d+X", DPX, 2, aluA((*CPU).or)},
	{0x15, "OR", "A,!a+X", ABX, 3, aluA((*CPU).or)},
	{0x16, "OR", "A,!a+Y", ABY, 3, aluA((*CPU).or)},
	{0x17, "OR", "A,[d]+Y", IDY, 2, aluA((*CPU).or)},
	{0x18, "OR", "d,#i", DIM, 3, aluMem((*CPU).or, true)},
	{0x19, "OR", "(X),(Y)", XYI, 1, aluMem((*CPU).or, true)},
	{0x1a, "DECW", "d", DPG, 2, (*CPU).decw},
	{0x1b, "ASL", "d+X", DPX, 2, modifyMem((*CPU).asl)},
	{0x1c, "ASL", "A", IMP, 1, modifyA((*CPU).asl)},
	{0x1d, "DEC", "X", IMP, 1, modifyX((*CPU).dec)},
	{0x1e, "CMP", "X,!a", ABS, 3, (*CPU).cmpX},
	{0x1f, "JMP", "[!a+X]", IAX, 3, (*CPU).jmpIndexed},
	{0x20, "CLRP", "", IMP, 1, (*CPU).clrp},
	{0x21, "TCALL", "2", IMP, 1, (*CPU).tcall},
	{0x22, "SET1", "d.1", DPB, 2, (*CPU).set1},
	{0x23, "BBS", "d.1,r", DBR, 3, (*CPU).bbs},
	{0x24, "AND", "A,d", DPG, 2, aluA((*CPU).and)},
	{0x25, "AND", "A,!a", ABS, 3, aluA((*CPU).and)},
	{0x26, "AND", "A,(X)", XIN, 1, aluA((*CPU).and)},
	{0x27, "AND", "A,[d+X]", IDX, 2, aluA((*CPU).and)},
	{0x28, "AND", "A,#i", IMM, 2, aluA((*CPU).and)},
	{0x29, "AND", "d,s", DDP, 3, aluMem((*CPU).and, true)},
	{0x2a, "OR1", "C,/m", MBT, 3, (*CPU).or1Not},
	{0x2b, "ROL", "d", DPG, 2, modifyMem((*CPU).rol)},
	{0x2c, "ROL", "!a", ABS, 3, modifyMem((*CPU).rol)},
	{0x2d, "PUSH", "A", IMP, 1, (*CPU).pushA},
	{0x2e, "CBNE", "d,r", DPR, 3, (*CPU).cbne},
	{0x2f, "BRA", "r", REL, 2, (*CPU).bra},
	{0x30, "BMI", "r", REL, 2, branchIf(NegativeBit, true)},
	{0x31, "TCALL", "3", IMP, 1, (*CPU).tcall},
	{0x32, "CLR1", "d.1", DPB, 2, (*CPU).clr1},
	{0x33, "BBC", "d.1,r", DBR, 3, (*CPU).bbc},
	{0x34, "AND", "A,d+X", DPX, 2, aluA((*CPU).and)},
	{0x35, "AND", "A,!a+X", ABX, 3, aluA((*CPU).and)},
	{0x36, "AND", "A,!a+Y", ABY, 3, aluA((*CPU).and)},
	{0x37, "AND", "A,[d]+Y", IDY, 2, aluA((*CPU).and)},
	{0x38, "AND", "d,#i", DIM, 3, aluMem((*CPU).and, true)},
	{0x39, "AND", "(X),(Y)", XYI, 1, aluMem((*CPU).and, true)},
	{0x3a, "INCW", "d", DPG, 2, (*CPU).incw},
	{0x3b, "ROL", "d+X", DPX, 2, modifyMem((*CPU).rol)},
	{0x3c, "ROL", "A", IMP, 1, modifyA((*CPU).rol)},
	{0x3d, "INC", "X", IMP, 1, modifyX((*CPU).inc)},
	{0x3e, "CMP", "X,d", DPG, 2, (*CPU).cmpX},
	{0x3f, "CALL", "!a", ABS, 3, (*CPU).call},
	{0x40, "SETP", "", IMP, 1, (*CPU).setp},
	{0x41, "TCALL", "4", IMP, 1, (*CPU).tcall},
	{0x42, "SET1", "d.2", DPB, 2, (*CPU).set1},
	{0x43, "BBS", "d.2,r", DBR, 3, (*CPU).bbs},
	{0x44, "EOR", "A,d", DPG, 2, aluA((*CPU).eor)},
	{0x45, "EOR", "A,!a", ABS, 3, aluA((*CPU).eor)},
	{0x46, "EOR", "A,(X)", XIN, 1, aluA((*CPU).eor)},
	{0x47, "EOR", "A,[d+X]", IDX, 2, aluA((*CPU).eor)},
	{0x48, "EOR", "A,#i", IMM, 2, aluA((*CPU).eor)},
	{0x49, "EOR", "d,s", DDP, 3, aluMem((*CPU).eor, true)},
	{0x4a, "AND1", "C,m", MBT, 3, (*CPU).and1},
	{0x4b, "LSR", "d", DPG, 2, modifyMem((*CPU).lsr)},
	{0x4c, "LSR", "!a", ABS, 3, modifyMem((*CPU).lsr)},
	{0x4d, "PUSH", "X", IMP, 1, (*CPU).pushX},
	{0x4e, "TCLR1", "!a", ABS, 3, (*CPU).tclr1},
	{0x4f, "PCALL", "u", UPG, 2, (*CPU).pcall},
	{0x50, "BVC", "r", REL, 2, branchIf(OverflowBit, false)},
	{0x51, "TCALL", "5", IMP, 1, (*CPU).tcall},
	{0x52, "CLR1", "d.2", DPB, 2, (*CPU).clr1},
	{0x53, "BBC", "d.2,r", DBR, 3, (*CPU).bbc},
	{0x54, "EOR", "A,d+X", DPX, 2, aluA((*CPU).eor)},
	{0x55, "EOR", "A,!a+X", ABX, 3, aluA((*CPU).eor)},
	{0x56, "EOR", "A,!a+Y", ABY, 3, aluA((*CPU).eor)},
	{0x57, "EOR", "A,[d]+Y", IDY, 2, aluA((*CPU).eor)},
	{0x58, "EOR", "d,#i", DIM, 3, aluMem((*CPU).eor, true)},
	{0x59, "EOR", "(X),(Y)", XYI, 1, aluMem((*CPU).eor, true)},
	{0x5a, "CMPW", "YA,d", DPG, 2, (*CPU).cmpw},
	{0x5b, "LSR", "d+X", DPX, 2, modifyMem((*CPU).lsr)},
	{0x5c, "LSR", "A", IMP, 1, modifyA((*CPU).lsr)},
	{0x5d, "MOV", "X,A", IMP, 1, (*CPU).movXA},
	{0x5e, "CMP", "Y,!a", ABS, 3, (*CPU).cmpY},
	{0x5f, "JMP", "!a", ABS, 3, (*CPU).jmp},
	{0x60, "CLRC", "", IMP, 1, (*CPU).clrc},
	{0x61, "TCALL", "6", IMP, 1, (*CPU).tcall},
	{0x62, "SET1", "d.3", DPB, 2, (*CPU).set1},
	{0x63, "BBS", "d.3,r", DBR, 3, (*CPU).bbs},
	{0x64, "CMP", "A,d", DPG, 2, aluA((*CPU).compare)},
	{0x65, "CMP", "A,!a", ABS, 3, aluA((*CPU).compare)},
	{0x66, "CMP", "A,(X)", XIN, 1, aluA((*CPU).compare)},
	{0x67, "CMP", "A,[d+X]", IDX, 2, aluA((*CPU).compare)},
	{0x68, "CMP", "A,#i", IMM, 2, aluA((*CPU).compare)},
	{0x69, "CMP", "d,s", DDP, 3, aluMem((*CPU).compare, false)},
	{0x6a, "AND1", "C,/m", MBT, 3, (*CPU).and1Not},
	{0x6b, "ROR", "d", DPG, 2, modifyMem((*CPU).ror)},
	{0x6c, "ROR", "!a", ABS, 3, modifyMem((*CPU).ror)},
	{0x6d, "PUSH", "Y", IMP, 1, (*CPU).pushY},
	{0x6e, "DBNZ", "d,r", DPR, 3, (*CPU).dbnz},
	{0x6f, "RET", "", IMP, 1, (*CPU).ret},
	{0x70, "BVS", "r", REL, 2, branchIf(OverflowBit, true)},
	{0x71, "TCALL", "7", IMP, 1, (*CPU).tcall},
	{0x72, "CLR1", "d.3", DPB, 2, (*CPU).clr1},
	{0x73, "BBC", "d.3,r", DBR, 3, (*CPU).bbc},
	{0x74, "CMP", "A,d+X", DPX, 2, aluA((*CPU).compare)},
	{0x75, "CMP", "A,!a+X", ABX, 3, aluA((*CPU).compare)},
	{0x76, "CMP", "A,!a+Y", ABY, 3, aluA((*CPU).compare)},
	{0x77, "CMP", "A,[d]+Y", IDY, 2, aluA((*CPU).compare)},
	{0x78, "CMP", "d,#i", DIM, 3, aluMem((*CPU).compare, false)},
	{0x79, "CMP", "(X),(Y)", XYI, 1, aluMem((*CPU).compare, false)},
	{0x7a, "ADDW", "YA,d", DPG, 2, (*CPU).addw},
	{0x7b, "ROR", "d+X", DPX, 2, modifyMem((*CPU).ror)},
	{0x7c, "ROR", "A", IMP, 1, modifyA((*CPU).ror)},
	{0x7d, "MOV", "A,X", IMP, 1, (*CPU).movAX},
	{0x7e, "CMP", "Y,d", DPG, 2, (*CPU).cmpY},
	{0x7f, "RETI", "", IMP, 1, (*CPU).reti},
	{0x80, "SETC", "", IMP, 1, (*CPU).setc},
	{0x81, "TCALL", "8", IMP, 1, (*CPU).tcall},
	{0x82, "SET1", "d.4", DPB, 2, (*CPU).set1},
	{0x83, "BBS", "d.4,r", DBR, 3, (*CPU).bbs},
	{0x84, "ADC", "A,d", DPG, 2, aluA((*CPU).addWithCarry)},
	{0x85, "ADC", "A,!a", ABS, 3, aluA((*CPU).addWithCarry)},
	{0x86, "ADC", "A,(X)", XIN, 1, aluA((*CPU).addWithCarry)},
	{0x87, "ADC", "A,[d+X]", IDX, 2, aluA((*CPU).addWithCarry)},
	{0x88, "ADC", "A,#i", IMM, 2, aluA((*CPU).addWithCarry)},
	{0x89, "ADC", "d,s", DDP, 3, aluMem((*CPU).addWithCarry, true)},
	{0x8a, "EOR1", "C,m", MBT, 3, (*CPU).eor1},
	{0x8b, "DEC", "d", DPG, 2, modifyMem((*CPU).dec)},
	{0x8c, "DEC", "!a", ABS, 3, modifyMem((*CPU).dec)},
	{0x8d, "MOV", "Y,#i", IMM, 2, (*CPU).movY},
	{0x8e, "POP", "PSW", IMP, 1, (*CPU).popPSW},
	{0x8f, "MOV", "d,#i", DIM, 3, (*CPU).movDpImm},
	{0x90, "BCC", "r", REL, 2, branchIf(CarryBit, false)},
	{0x91, "TCALL", "9", IMP, 1, (*CPU).tcall},
	{0x92, "CLR1", "d.4", DPB, 2, (*CPU).clr1},
	{0x93, "BBC", "d.4,r", DBR, 3, (*CPU).bbc},
	{0x94, "ADC", "A,d+X", DPX, 2, aluA((*CPU).addWithCarry)},
	{0x95, "ADC", "A,!a+X", ABX, 3, aluA((*CPU).addWithCarry)},
	{0x96, "ADC", "A,!a+Y", ABY, 3, aluA((*CPU).addWithCarry)},
	{0x97, "ADC", "A,[d]+Y", IDY, 2, aluA((*CPU).addWithCarry)},
	{0x98, "ADC", "d,#i", DIM, 3, aluMem((*CPU).addWithCarry, true)},
	{0x99, "ADC", "(X),(Y)", XYI, 1, aluMem((*CPU).addWithCarry, true)},
	{0x9a, "SUBW", "YA,d", DPG, 2, (*CPU).subw},
	{0x9b, "DEC", "d+X", DPX, 2, modifyMem((*CPU).dec)},
	{0x9c, "DEC", "A", IMP, 1, modifyA((*CPU).dec)},
	{0x9d, "MOV", "X,SP", IMP, 1, (*CPU).movXSP},
	{0x9e, "DIV", "YA,X", IMP, 1, (*CPU).div},
	{0x9f, "XCN", "A", IMP, 1, (*CPU).xcn},
	{0xa0, "EI", "", IMP, 1, (*CPU).ei},
	{0xa1, "TCALL", "10", IMP, 1, (*CPU).tcall},
	{0xa2, "SET1", "d.5", DPB, 2, (*CPU).set1},
	{0xa3, "BBS", "d.5,r", DBR, 3, (*CPU).bbs},
	{0xa4, "SBC", "A,d", DPG, 2, aluA((*CPU).subtractWithCarry)},
	{0xa5, "SBC", "A,!a", ABS, 3, aluA((*CPU).subtractWithCarry)},
	{0xa6, "SBC", "A,(X)", XIN, 1, aluA((*CPU).subtractWithCarry)},
	{0xa7, "SBC", "A,[d+X]", IDX, 2, aluA((*CPU).subtractWithCarry)},
	{0xa8, "SBC", "A,#i", IMM, 2, aluA((*CPU).subtractWithCarry)},
	{0xa9, "SBC", "d,s", DDP, 3, aluMem((*CPU).subtractWithCarry, true)},
	{0xaa, "MOV1", "C,m", MBT, 3, (*CPU).mov1C},
	{0xab, "INC", "d", DPG, 2, modifyMem((*CPU).inc)},
	{0xac, "INC", "!a", ABS, 3, modifyMem((*CPU).inc)},
	{0xad, "CMP", "Y,#i", IMM, 2, (*CPU).cmpY},
	{0xae, "POP", "A", IMP, 1, (*CPU).popA},
	{0xaf, "MOV", "(X)+,A", XIP, 1, (*CPU).stA},
	{0xb0, "BCS", "r", REL, 2, branchIf(CarryBit, true)},
	{0xb1, "TCALL", "11", IMP, 1, (*CPU).tcall},
	{0xb2, "CLR1", "d.5", DPB, 2, (*CPU).clr1},
	{0xb3, "BBC", "d.5,r", DBR, 3, (*CPU).bbc},
	{0xb4, "SBC", "A,d+X", DPX, 2, aluA((*CPU).subtractWithCarry)},
	{0xb5, "SBC", "A,!a+X", ABX, 3, aluA((*CPU).subtractWithCarry)},
	{0xb6, "SBC", "A,!a+Y", ABY, 3, aluA((*CPU).subtractWithCarry)},
	{0xb7, "SBC", "A,[d]+Y", IDY, 2, aluA((*CPU).subtractWithCarry)},
	{0xb8, "SBC", "d,#i", DIM, 3, aluMem((*CPU).subtractWithCarry, true)},
	{0xb9, "SBC", "(X),(Y)", XYI, 1, aluMem((*CPU).subtractWithCarry, true)},
	{0xba, "MOVW", "YA,d", DPG, 2, (*CPU).movwYA},
	{0xbb, "INC", "d+X", DPX, 2, modifyMem((*CPU).inc)},
	{0xbc, "INC", "A", IMP, 1, modifyA((*CPU).inc)},
	{0xbd, "MOV", "SP,X", IMP, 1, (*CPU).movSPX},
	{0xbe, "DAS", "A", IMP, 1, (*CPU).das},
	{0xbf, "MOV", "A,(X)+", XIP, 1, (*CPU).movA},
	{0xc0, "DI", "", IMP, 1, (*CPU).di},
	{0xc1, "TCALL", "12", IMP, 1, (*CPU).tcall},
	{0xc2, "SET1", "d.6", DPB, 2, (*CPU).set1},
	{0xc3, "BBS", "d.6,r", DBR, 3, (*CPU).bbs},
	{0xc4, "MOV", "d,A", DPG, 2, (*CPU).stA},
	{0xc5, "MOV", "!a,A", ABS, 3, (*CPU).stA},
	{0xc6, "MOV", "(X),A", XIN, 1, (*CPU).stA},
	{0xc7, "MOV", "[d+X],A", IDX, 2, (*CPU).stA},
	{0xc8, "CMP", "X,#i", IMM, 2, (*CPU).cmpX},
	{0xc9, "MOV", "!a,X", ABS, 3, (*CPU).stX},
	{0xca, "MOV1", "m,C", MBT, 3, (*CPU).mov1Mem},
	{0xcb, "MOV", "d,Y", DPG, 2, (*CPU).stY},
	{0xcc, "MOV", "!a,Y", ABS, 3, (*CPU).stY},
	{0xcd, "MOV", "X,#i", IMM, 2, (*CPU).movX},
	{0xce, "POP", "X", IMP, 1, (*CPU).popX},
	{0xcf, "MUL", "YA", IMP, 1, (*CPU).mul},
	{0xd0, "BNE", "r", REL, 2, branchIf(ZeroBit, false)},
	{0xd1, "TCALL", "13", IMP, 1, (*CPU).tcall},
	{0xd2, "CLR1", "d.6", DPB, 2, (*CPU).clr1},
	{0xd3, "BBC", "d.6,r", DBR, 3, (*CPU).bbc},
	{0xd4, "MOV", "d+X,A", DPX, 2, (*CPU).stA},
	{0xd5, "MOV", "!a+X,A", ABX, 3, (*CPU).stA},
	{0xd6, "MOV", "!a+Y,A", ABY, 3, (*CPU).stA},
	{0xd7, "MOV", "[d]+Y,A", IDY, 2, (*CPU).stA},
	{0xd8, "MOV", "d,X", DPG, 2, (*CPU).stX},
	{0xd9, "MOV", "d+Y,X", DPY, 2, (*CPU).stX},
	{0xda, "MOVW", "d,YA", DPG, 2, (*CPU).movwDp},
	{0xdb, "MOV", "d+X,Y", DPX, 2, (*CPU).stY},
	{0xdc, "DEC", "Y", IMP, 1, modifyY((*CPU).dec)},
	{0xdd, "MOV", "A,Y", IMP, 1, (*CPU).movAY},
	{0xde, "CBNE", "d+X,r", DXR, 3, (*CPU).cbne},
	{0xdf, "DAA", "A", IMP, 1, (*CPU).daa},
	{0xe0, "CLRV", "", IMP, 1, (*CPU).clrv},
	{0xe1, "TCALL", "14", IMP, 1, (*CPU).tcall},
	{0xe2, "SET1", "d.7", DPB, 2, (*CPU).set1},
	{0xe3, "BBS", "d.7,r", DBR, 3, (*CPU).bbs},
	{0xe4, "MOV", "A,d", DPG, 2, (*CPU).movA},
	{0xe5, "MOV", "A,!a", ABS, 3, (*CPU).movA},
	{0xe6, "MOV", "A,(X)", XIN, 1, (*CPU).movA},
	{0xe7, "MOV", "A,[d+X]", IDX, 2, (*CPU).movA},
	{0xe8, "MOV", "A,#i", IMM, 2, (*CPU).movA},
	{0xe9, "MOV", "X,!a", ABS, 3, (*CPU).movX},
	{0xea, "NOT1", "m", MBT, 3, (*CPU).not1},
	{0xeb, "MOV", "Y,d", DPG, 2, (*CPU).movY},
	{0xec, "MOV", "Y,!a", ABS, 3, (*CPU).movY},
	{0xed, "NOTC", "", IMP, 1, (*CPU).notc},
	{0xee, "POP", "Y", IMP, 1, (*CPU).popY},
	{0xef, "SLEEP", "", IMP, 1, (*CPU).nop},
	{0xf0, "BEQ", "r", REL, 2, branchIf(ZeroBit, true)},
	{0xf1, "TCALL", "15", IMP, 1, (*CPU).tcall},
	{0xf2, "CLR1", "d.7", DPB, 2, (*CPU).clr1},
	{0xf3, "BBC", "d.7,r", DBR, 3, (*CPU).bbc},
	{0xf4, "MOV", "A,d+X", DPX, 2, (*CPU).movA},
	{0xf5, "MOV", "A,!a+X", ABX, 3, (*CPU).movA},
	{0xf6, "MOV", "A,!a+Y", ABY, 3, (*CPU).movA},
	{0xf7, "MOV", "A,[d]+Y", IDY, 2, (*CPU).movA},
	{0xf8, "MOV", "X,d", DPG, 2, (*CPU).movX},
	{0xf9, "MOV", "X,d+Y", DPY, 2, (*CPU).movX},
	{0xfa, "MOV", "d,s", DDP, 3, (*CPU).movDpDp},
	{0xfb, "MOV", "Y,d+X", DPX, 2, (*CPU).movY},
	{0xfc, "INC", "Y", IMP, 1, modifyY((*CPU).inc)},
	{0xfd, "MOV", "Y,A", IMP, 1, (*CPU).movYA},
	{0xfe, "DBNZ", "Y,r", REL, 2, (*CPU).dbnzY},
	{0xff, "STOP", "", IMP, 1, (*CPU).nop},
}

// An Instruction describes a CPU instruction, including its name, its
// operand syntax, its addressing mode, its opcode value and its size.
type Instruction struct {
	Name     string   // all-caps name of the instruction
	Operands string   // operand template
	Mode     Mode     // addressing mode
	Opcode   byte     // hexadecimal opcode value
	Length   byte     // combined size of opcode and operand, in bytes
	fn       instfunc // emulator implementation of the instruction
}

// An InstructionSet defines the set of all possible instructions that
// can run on the emulated CPU.
type InstructionSet struct {
	instructions [256]Instruction          // all instructions by opcode
	variants     map[string][]*Instruction // variants of each instruction
}

// Lookup retrieves a CPU instruction corresponding to the requested opcode.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return &s.instructions[opcode]
}

// GetInstructions returns all CPU instructions whose name matches the
// provided string.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[strings.ToUpper(name)]
}

// Create the SPC700 instruction set.
func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		variants: make(map[string][]*Instruction),
	}

	for _, d := range data {
		inst := &set.instructions[d.opcode]
		inst.Name = d.name
		inst.Operands = d.operands
		inst.Mode = d.mode
		inst.Opcode = d.opcode
		inst.Length = d.length
		inst.fn = d.fn

		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
	}

	for i := 0; i < 256; i++ {
		if set.instructions[i].Name == "" {
			panic("missing instruction")
		}
	}
	return set
}

var (
	instructionSet     *InstructionSet
	instructionSetOnce sync.Once
)

// GetInstructionSet returns the SPC700 instruction set. It is created on
// first use and shared by all CPUs.
func GetInstructionSet() *InstructionSet {
	instructionSetOnce.Do(func() {
		instructionSet = newInstructionSet()
	})
	return instructionSet
}
