package cpu_test

import (
	"testing"

	"github.com/beevik/spc700/cpu"
)

func loadCPU(t *testing.T, origin uint16, code ...byte) *cpu.CPU {
	t.Helper()
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	mem.StoreBytes(uint32(origin), code)
	c.SetPC(origin)
	return c
}

func stepCPU(c *cpu.CPU, steps int) {
	for i := 0; i < steps; i++ {
		c.Step()
	}
}

func runCPU(t *testing.T, origin uint16, steps int, code ...byte) *cpu.CPU {
	t.Helper()
	c := loadCPU(t, origin, code...)
	stepCPU(c, steps)
	return c
}

func expectPC(t *testing.T, c *cpu.CPU, pc uint16) {
	t.Helper()
	if c.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, c.Reg.PC)
	}
}

func expectACC(t *testing.T, c *cpu.CPU, acc byte) {
	t.Helper()
	if c.Reg.A != acc {
		t.Errorf("Accumulator incorrect. exp: $%02X, got: $%02X", acc, c.Reg.A)
	}
}

func expectX(t *testing.T, c *cpu.CPU, x byte) {
	t.Helper()
	if c.Reg.X != x {
		t.Errorf("X register incorrect. exp: $%02X, got: $%02X", x, c.Reg.X)
	}
}

func expectY(t *testing.T, c *cpu.CPU, y byte) {
	t.Helper()
	if c.Reg.Y != y {
		t.Errorf("Y register incorrect. exp: $%02X, got: $%02X", y, c.Reg.Y)
	}
}

func expectSP(t *testing.T, c *cpu.CPU, sp byte) {
	t.Helper()
	if c.Reg.SP != sp {
		t.Errorf("stack pointer incorrect. exp: $%02X, got: $%02X", sp, c.Reg.SP)
	}
}

func expectMem(t *testing.T, c *cpu.CPU, addr uint32, v byte) {
	t.Helper()
	got := c.Mem.LoadByte(addr)
	if got != v {
		t.Errorf("Memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

func expectFlag(t *testing.T, c *cpu.CPU, name string, bit byte, set bool) {
	t.Helper()
	if c.Reg.Flag(bit) != set {
		t.Errorf("%s flag incorrect. exp: %v, got: %v", name, set, !set)
	}
}

func TestImmediateLoad(t *testing.T) {
	c := runCPU(t, 0x0000, 1, 0xe8, 0xf1) // MOV A,#$F1

	expectACC(t, c, 0xf1)
	expectPC(t, c, 0x0002)
	expectFlag(t, c, "Zero", cpu.ZeroBit, false)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
}

func TestImmediateLoadSequence(t *testing.T) {
	c := runCPU(t, 0x0200, 4,
		0xe8, 0x00, // MOV A,#$00
		0xcd, 0x80, // MOV X,#$80
		0x8d, 0x7f, // MOV Y,#$7F
		0xe8, 0x01, // MOV A,#$01
	)

	expectPC(t, c, 0x0208)
	expectACC(t, c, 0x01)
	expectX(t, c, 0x80)
	expectY(t, c, 0x7f)
	expectFlag(t, c, "Zero", cpu.ZeroBit, false)
	expectFlag(t, c, "Negative", cpu.NegativeBit, false)
}

func TestIndirectAutoIncrement(t *testing.T) {
	ram := []byte{0x3f, 0x23, 0x24, 0x25, 0x56, 0x02}
	code := []byte{0xcd, 0x00} // MOV X,#$00
	for i := 0; i < len(ram); i++ {
		code = append(code, 0xbf) // MOV A,(X)+
	}

	c := loadCPU(t, 0x0006, code...)
	c.Mem.StoreBytes(0, ram)
	stepCPU(c, 1)
	expectX(t, c, 0x00)

	for i, v := range ram {
		c.Step()
		expectACC(t, c, v)
		expectX(t, c, byte(i+1))
	}
	expectX(t, c, 0x06)
	expectPC(t, c, 0x000e)
}

func TestIndirectStores(t *testing.T) {
	c := runCPU(t, 0x0006, 4,
		0xcd, 0x02, // MOV X,#$02
		0xe6,       // MOV A,(X)
		0xe8, 0x45, // MOV A,#$45
		0xc6, // MOV (X),A
	)
	expectMem(t, c, 0x0002, 0x45)

	c = runCPU(t, 0x0200, 3,
		0xcd, 0x10, // MOV X,#$10
		0xe8, 0x99, // MOV A,#$99
		0xaf, // MOV (X)+,A
	)
	expectMem(t, c, 0x0010, 0x99)
	expectX(t, c, 0x11)
}

func TestDbnzY(t *testing.T) {
	c := loadCPU(t, 0x0000, 0xfe, 0xf1) // DBNZ Y,-15
	c.Reg.Y = 3
	c.Step()

	expectY(t, c, 0x02)
	expectPC(t, c, 0xfff3)
}

func TestDbnzYFallThrough(t *testing.T) {
	c := loadCPU(t, 0x0300, 0xfe, 0xf1)
	c.Reg.Y = 1
	c.Reg.PSW = 0
	c.Step()

	expectY(t, c, 0x00)
	expectPC(t, c, 0x0302)
	if c.Reg.PSW != 0 {
		t.Errorf("DBNZ changed flags: %s", c.Reg.FlagString())
	}
}

func TestAdcOverflow(t *testing.T) {
	c := loadCPU(t, 0x0000, 0x88, 0x01) // ADC A,#$01
	c.Reg.A = 0x7f
	c.Step()

	expectACC(t, c, 0x80)
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
	expectFlag(t, c, "Zero", cpu.ZeroBit, false)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
	expectFlag(t, c, "Overflow", cpu.OverflowBit, true)
}

func TestSbcCarryClear(t *testing.T) {
	c := loadCPU(t, 0x0000, 0xa8, 0x01) // SBC A,#$01
	c.Reg.A = 0x7f
	c.Step()

	expectACC(t, c, 0x7f)
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	expectFlag(t, c, "Zero", cpu.ZeroBit, false)
	expectFlag(t, c, "Negative", cpu.NegativeBit, false)
}

func TestCompareLeavesRegisters(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x68, 0x50, // CMP A,#$50
		0xc8, 0x10, // CMP X,#$10
		0xad, 0x01, // CMP Y,#$01
		0x3e, 0x40, // CMP X,$40
	)
	c.Reg.A, c.Reg.X, c.Reg.Y = 0x40, 0x10, 0x20
	c.Mem.StoreByte(0x40, 0x11)

	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)

	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	expectFlag(t, c, "Zero", cpu.ZeroBit, true)

	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	expectFlag(t, c, "Zero", cpu.ZeroBit, false)

	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, false)

	expectACC(t, c, 0x40)
	expectX(t, c, 0x10)
	expectY(t, c, 0x20)
	expectMem(t, c, 0x40, 0x11)
}

func TestCompareMemoryForms(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x69, 0x10, 0x20, // CMP $20,$10
		0x78, 0x33, 0x20, // CMP $20,#$33
		0x79, // CMP (X),(Y)
	)
	c.Mem.StoreByte(0x10, 0x05)
	c.Mem.StoreByte(0x20, 0x33)
	c.Reg.X, c.Reg.Y = 0x10, 0x20

	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	expectFlag(t, c, "Zero", cpu.ZeroBit, false)
	c.Step()
	expectFlag(t, c, "Zero", cpu.ZeroBit, true)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, false)

	expectMem(t, c, 0x10, 0x05)
	expectMem(t, c, 0x20, 0x33)
}

func TestDirectPageSelect(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xe4, 0x20, // MOV A,$20
		0x40,       // SETP
		0xe4, 0x20, // MOV A,$20
		0x20, // CLRP
	)
	c.Mem.StoreByte(0x0020, 0x11)
	c.Mem.StoreByte(0x0120, 0x22)

	c.Step()
	expectACC(t, c, 0x11)
	if got := c.DirectPageAddress(0x20); got != 0x0020 {
		t.Errorf("direct page address incorrect. exp: $0020, got: $%04X", got)
	}

	stepCPU(c, 2)
	expectACC(t, c, 0x22)
	if got := c.DirectPageAddress(0x20); got != 0x0120 {
		t.Errorf("direct page address incorrect. exp: $0120, got: $%04X", got)
	}

	c.Step()
	expectFlag(t, c, "DirectPage", cpu.DirectPageBit, false)
}

func TestAddressingModes(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xcd, 0x02, // MOV X,#$02
		0x8d, 0x03, // MOV Y,#$03
		0xf4, 0x10, // MOV A,$10+X
		0xf5, 0x00, 0x30, // MOV A,!$3000+X
		0xf6, 0x00, 0x30, // MOV A,!$3000+Y
		0xe7, 0x20, // MOV A,[$20+X]
		0xf7, 0x30, // MOV A,[$30]+Y
		0xf9, 0x10, // MOV X,$10+Y
	)
	mem := c.Mem
	mem.StoreByte(0x0012, 0xa1)
	mem.StoreByte(0x3002, 0xa2)
	mem.StoreByte(0x3003, 0xa3)
	mem.StoreWord(0x0022, 0x4000)
	mem.StoreByte(0x4000, 0xa4)
	mem.StoreWord(0x0030, 0x5000)
	mem.StoreByte(0x5003, 0xa5)
	mem.StoreByte(0x0013, 0x07)

	stepCPU(c, 3)
	expectACC(t, c, 0xa1)
	c.Step()
	expectACC(t, c, 0xa2)
	c.Step()
	expectACC(t, c, 0xa3)
	c.Step()
	expectACC(t, c, 0xa4)
	c.Step()
	expectACC(t, c, 0xa5)
	c.Step()
	expectX(t, c, 0x07)
	expectPC(t, c, 0x0212)
}

func TestIndexedAddressNotMasked(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xf4, 0xff, // MOV A,$FF+X
		0xf5, 0xff, 0xff, // MOV A,!$FFFF+X
		0xd5, 0xff, 0xff, // MOV !$FFFF+X,A
	)
	c.Reg.X = 0x02
	c.Mem.StoreByte(0x0101, 0x5a)

	c.Step()
	expectACC(t, c, 0x5a)
	if c.LastAddress() != 0x0101 {
		t.Errorf("last address incorrect. exp: $0101, got: $%X", c.LastAddress())
	}

	c.Step()
	expectACC(t, c, 0x00)
	if c.LastAddress() != 0x10001 {
		t.Errorf("last address incorrect. exp: $10001, got: $%X", c.LastAddress())
	}

	c.Reg.A = 0x77
	c.Step()
	expectMem(t, c, 0x0001, 0x00)
	expectPC(t, c, 0x0208)
}

func TestLastAddress(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xe5, 0x34, 0x12, // MOV A,!$1234
		0xc4, 0x56, // MOV $56,A
	)
	c.Step()
	if c.LastAddress() != 0x1234 {
		t.Errorf("last address incorrect. exp: $1234, got: $%04X", c.LastAddress())
	}
	c.Step()
	if c.LastAddress() != 0x0056 {
		t.Errorf("last address incorrect. exp: $0056, got: $%04X", c.LastAddress())
	}
}

func TestStack(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xe8, 0x11, // MOV A,#$11
		0x2d,       // PUSH A
		0xe8, 0x12, // MOV A,#$12
		0x2d,       // PUSH A
		0xcd, 0x13, // MOV X,#$13
		0x4d, // PUSH X

		0xae, // POP A
		0xee, // POP Y
		0xce, // POP X
	)
	c.Reg.SP = 0xff

	stepCPU(c, 6)
	expectSP(t, c, 0xfc)
	expectMem(t, c, 0x1ff, 0x11)
	expectMem(t, c, 0x1fe, 0x12)
	expectMem(t, c, 0x1fd, 0x13)

	stepCPU(c, 3)
	expectSP(t, c, 0xff)
	expectACC(t, c, 0x13)
	expectY(t, c, 0x12)
	expectX(t, c, 0x11)
}

func TestPushPopPSW(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x0d, // PUSH PSW
		0x60, // CLRC
		0x8e, // POP PSW
	)
	c.Reg.SP = 0xff
	c.Reg.PSW = cpu.CarryBit | cpu.NegativeBit

	stepCPU(c, 2)
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
	c.Step()
	if c.Reg.PSW != cpu.CarryBit|cpu.NegativeBit {
		t.Errorf("PSW incorrect. exp: $81, got: $%02X", c.Reg.PSW)
	}
}

func TestCallReturn(t *testing.T) {
	c := loadCPU(t, 0x0200, 0x3f, 0x00, 0x12) // CALL !$1200
	c.Mem.StoreByte(0x1200, 0x6f)            // RET
	c.Reg.SP = 0xff

	c.Step()
	expectPC(t, c, 0x1200)
	expectSP(t, c, 0xfd)
	expectMem(t, c, 0x1ff, 0x03)
	expectMem(t, c, 0x1fe, 0x02)

	c.Step()
	expectPC(t, c, 0x0203)
	expectSP(t, c, 0xff)
}

func TestPcall(t *testing.T) {
	c := loadCPU(t, 0x0200, 0x4f, 0x40) // PCALL $40
	c.Reg.SP = 0xff
	c.Step()

	expectPC(t, c, 0xff40)
	expectMem(t, c, 0x1ff, 0x02)
	expectMem(t, c, 0x1fe, 0x02)
}

func TestTcall(t *testing.T) {
	for n := 0; n < 16; n++ {
		c := loadCPU(t, 0x0200, byte(n<<4|0x01)) // TCALL n
		c.Reg.SP = 0xff
		vector := uint32(0xffde - 2*n)
		c.Mem.StoreWord(vector, cpu.Word(0x1000+n))

		c.Step()
		expectPC(t, c, uint16(0x1000+n))
		expectMem(t, c, 0x1ff, 0x01)
		expectMem(t, c, 0x1fe, 0x02)
	}
}

func TestBrkReti(t *testing.T) {
	c := loadCPU(t, 0x0200, 0x0f) // BRK
	c.Mem.StoreWord(0xffde, 0x3000)
	c.Mem.StoreByte(0x3000, 0x7f) // RETI
	c.Reg.SP = 0xff
	c.Reg.PSW = cpu.InterruptBit | cpu.CarryBit

	c.Step()
	expectPC(t, c, 0x3000)
	expectSP(t, c, 0xfc)
	expectMem(t, c, 0x1fd, cpu.InterruptBit|cpu.CarryBit)
	expectFlag(t, c, "Break", cpu.BreakBit, true)
	expectFlag(t, c, "Interrupt", cpu.InterruptBit, false)

	c.Step()
	expectPC(t, c, 0x0201)
	expectSP(t, c, 0xff)
	if c.Reg.PSW != cpu.InterruptBit|cpu.CarryBit {
		t.Errorf("PSW incorrect. exp: $05, got: $%02X", c.Reg.PSW)
	}
}

func TestJumps(t *testing.T) {
	c := runCPU(t, 0x0200, 1, 0x5f, 0x34, 0x12) // JMP !$1234
	expectPC(t, c, 0x1234)

	c = loadCPU(t, 0x0200, 0x1f, 0x00, 0x30) // JMP [!$3000+X]
	c.Reg.X = 0x04
	c.Mem.StoreWord(0x3004, 0x4567)
	c.Step()
	expectPC(t, c, 0x4567)
}

func TestBranches(t *testing.T) {
	tests := []struct {
		opcode byte
		psw    byte
		taken  bool
	}{
		{0x2f, 0, true},               // BRA
		{0xf0, cpu.ZeroBit, true},     // BEQ
		{0xf0, 0, false},              // BEQ
		{0xd0, 0, true},               // BNE
		{0xb0, cpu.CarryBit, true},    // BCS
		{0x90, cpu.CarryBit, false},   // BCC
		{0x70, cpu.OverflowBit, true}, // BVS
		{0x50, cpu.OverflowBit, false},
		{0x30, cpu.NegativeBit, true}, // BMI
		{0x10, cpu.NegativeBit, false},
	}

	for _, test := range tests {
		c := loadCPU(t, 0x0200, test.opcode, 0x10)
		c.Reg.PSW = test.psw
		c.Step()
		if test.taken {
			expectPC(t, c, 0x0212)
		} else {
			expectPC(t, c, 0x0202)
		}
	}

	c := runCPU(t, 0x0200, 1, 0x2f, 0xfe) // BRA -2
	expectPC(t, c, 0x0200)
}

func TestBitBranches(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x63, 0x12, 0x10, // BBS $12.3,+16
	)
	c.Mem.StoreByte(0x12, 0x08)
	c.Step()
	expectPC(t, c, 0x0213)

	c = loadCPU(t, 0x0200,
		0x73, 0x12, 0x10, // BBC $12.3,+16
	)
	c.Mem.StoreByte(0x12, 0x08)
	c.Step()
	expectPC(t, c, 0x0203)
}

func TestCbneDbnz(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x2e, 0x10, 0x20, // CBNE $10,+32
		0xde, 0x10, 0x20, // CBNE $10+X,+32
	)
	c.Reg.A = 0x05
	c.Reg.X = 0x01
	c.Mem.StoreByte(0x10, 0x05)
	c.Mem.StoreByte(0x11, 0x06)

	c.Step()
	expectPC(t, c, 0x0203)
	c.Step()
	expectPC(t, c, 0x0226)

	c = loadCPU(t, 0x0200, 0x6e, 0x10, 0xfd) // DBNZ $10,-3
	c.Mem.StoreByte(0x10, 0x02)
	c.Step()
	expectMem(t, c, 0x10, 0x01)
	expectPC(t, c, 0x0200)
	c.Step()
	expectMem(t, c, 0x10, 0x00)
	expectPC(t, c, 0x0203)
}

func TestDirectPageToDirectPage(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xfa, 0x10, 0x20, // MOV $20,$10
		0x8f, 0x55, 0x30, // MOV $30,#$55
		0x89, 0x10, 0x30, // ADC $30,$10
		0x98, 0x01, 0x30, // ADC $30,#$01
	)
	c.Mem.StoreByte(0x10, 0x0a)

	stepCPU(c, 2)
	expectMem(t, c, 0x20, 0x0a)
	expectMem(t, c, 0x30, 0x55)

	stepCPU(c, 2)
	expectMem(t, c, 0x30, 0x60)
	expectMem(t, c, 0x10, 0x0a)
}

func TestIndirectXY(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x99, // ADC (X),(Y)
		0x19, // OR (X),(Y)
	)
	c.Reg.X, c.Reg.Y = 0x40, 0x41
	c.Mem.StoreByte(0x40, 0x10)
	c.Mem.StoreByte(0x41, 0x21)

	c.Step()
	expectMem(t, c, 0x40, 0x31)
	c.Step()
	expectMem(t, c, 0x40, 0x31)
	expectMem(t, c, 0x41, 0x21)
}

func TestLogicOps(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x28, 0x0f, // AND A,#$0F
		0x08, 0x80, // OR A,#$80
		0x48, 0x8a, // EOR A,#$8A
	)
	c.Reg.A = 0x3a
	c.Reg.PSW = cpu.CarryBit | cpu.OverflowBit

	c.Step()
	expectACC(t, c, 0x0a)
	c.Step()
	expectACC(t, c, 0x8a)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
	c.Step()
	expectACC(t, c, 0x00)
	expectFlag(t, c, "Zero", cpu.ZeroBit, true)
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	expectFlag(t, c, "Overflow", cpu.OverflowBit, true)
}

func TestShifts(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x1c, // ASL A
		0x5c, // LSR A
		0x3c, // ROL A
		0x7c, // ROR A
		0x4b, 0x10, // LSR $10
		0x5b, 0x10, // LSR $10+X
		0x4c, 0x00, 0x30, // LSR !$3000
	)
	c.Reg.A = 0x81
	c.Reg.X = 0x01
	c.Mem.StoreByte(0x10, 0x03)
	c.Mem.StoreByte(0x11, 0x80)
	c.Mem.StoreByte(0x3000, 0x02)

	c.Step()
	expectACC(t, c, 0x02)
	expectFlag(t, c, "Carry", cpu.CarryBit, true)

	c.Step()
	expectACC(t, c, 0x01)
	expectFlag(t, c, "Carry", cpu.CarryBit, false)

	c.Reg.SetCarry(true)
	c.Step()
	expectACC(t, c, 0x03)
	expectFlag(t, c, "Carry", cpu.CarryBit, false)

	c.Reg.SetCarry(true)
	c.Step()
	expectACC(t, c, 0x81)
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)

	stepCPU(c, 3)
	expectMem(t, c, 0x10, 0x01)
	expectMem(t, c, 0x11, 0x40)
	expectMem(t, c, 0x3000, 0x01)
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
}

func TestIncDec(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xbc,       // INC A
		0x1d,       // DEC X
		0xfc,       // INC Y
		0xab, 0x10, // INC $10
		0x8c, 0x00, 0x30, // DEC !$3000
	)
	c.Reg.A = 0xff
	c.Mem.StoreByte(0x10, 0x7f)

	c.Step()
	expectACC(t, c, 0x00)
	expectFlag(t, c, "Zero", cpu.ZeroBit, true)
	c.Step()
	expectX(t, c, 0xff)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
	c.Step()
	expectY(t, c, 0x01)
	c.Step()
	expectMem(t, c, 0x10, 0x80)
	c.Step()
	expectMem(t, c, 0x3000, 0xff)
}

func TestTransfers(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x5d, // MOV X,A
		0xfd, // MOV Y,A
		0xbd, // MOV SP,X
		0xe8, 0x00, // MOV A,#$00
		0x9d, // MOV X,SP
		0xdd, // MOV A,Y
	)
	c.Reg.A = 0x8e

	stepCPU(c, 3)
	expectX(t, c, 0x8e)
	expectY(t, c, 0x8e)
	expectSP(t, c, 0x8e)

	c.Step()
	expectFlag(t, c, "Zero", cpu.ZeroBit, true)
	c.Step()
	expectX(t, c, 0x8e)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
	c.Step()
	expectACC(t, c, 0x8e)
}

func TestWordOps(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xba, 0x10, // MOVW YA,$10
		0x7a, 0x12, // ADDW YA,$12
		0xda, 0x14, // MOVW $14,YA
		0x9a, 0x12, // SUBW YA,$12
		0x5a, 0x10, // CMPW YA,$10
		0x3a, 0x16, // INCW $16
		0x1a, 0x18, // DECW $18
	)
	c.Mem.StoreWord(0x10, 0x12f0)
	c.Mem.StoreWord(0x12, 0x0120)
	c.Mem.StoreWord(0x16, 0x00ff)
	c.Mem.StoreWord(0x18, 0x0000)

	c.Step()
	expectY(t, c, 0x12)
	expectACC(t, c, 0xf0)

	c.Step()
	expectY(t, c, 0x14)
	expectACC(t, c, 0x10)
	expectFlag(t, c, "Carry", cpu.CarryBit, false)

	c.Step()
	expectMem(t, c, 0x14, 0x10)
	expectMem(t, c, 0x15, 0x14)

	c.Step()
	expectY(t, c, 0x12)
	expectACC(t, c, 0xf0)
	expectFlag(t, c, "Carry", cpu.CarryBit, true)

	c.Step()
	expectFlag(t, c, "Zero", cpu.ZeroBit, true)
	expectFlag(t, c, "Carry", cpu.CarryBit, true)

	c.Step()
	expectMem(t, c, 0x16, 0x00)
	expectMem(t, c, 0x17, 0x01)

	c.Step()
	expectMem(t, c, 0x18, 0xff)
	expectMem(t, c, 0x19, 0xff)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
}

func TestMultiply(t *testing.T) {
	c := loadCPU(t, 0x0200, 0xcf) // MUL YA
	c.Reg.Y, c.Reg.A = 0x12, 0x34
	c.Step()

	expectY(t, c, 0x03)
	expectACC(t, c, 0xa8)
	expectFlag(t, c, "Zero", cpu.ZeroBit, false)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
}

func TestDivide(t *testing.T) {
	c := loadCPU(t, 0x0200, 0x9e) // DIV YA,X
	c.Reg.SetYA(0x0123)
	c.Reg.X = 0x10
	c.Step()

	expectACC(t, c, 0x12)
	expectY(t, c, 0x03)
	expectFlag(t, c, "Overflow", cpu.OverflowBit, true)
	expectFlag(t, c, "HalfCarry", cpu.HalfCarryBit, true)

	c = loadCPU(t, 0x0200, 0x9e)
	c.Reg.SetYA(0x0500)
	c.Reg.X = 0x01
	c.Step()

	expectACC(t, c, 0x00)
	expectY(t, c, 0x00)
	expectFlag(t, c, "Zero", cpu.ZeroBit, true)
	expectFlag(t, c, "Overflow", cpu.OverflowBit, false)
}

func TestDivideByZero(t *testing.T) {
	c := loadCPU(t, 0x0200, 0x9e) // DIV YA,X
	c.Reg.SetYA(0x1234)
	c.Reg.X = 0
	c.Step()

	expectACC(t, c, 0xed)
	expectY(t, c, 0x34)
	expectFlag(t, c, "Overflow", cpu.OverflowBit, true)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
	expectPC(t, c, 0x0201)
}

func TestDecimalAdjust(t *testing.T) {
	c := loadCPU(t, 0x0200, 0xdf) // DAA A
	c.Reg.A = 0x1a
	c.Step()
	expectACC(t, c, 0x20)
	expectFlag(t, c, "Carry", cpu.CarryBit, false)

	c = loadCPU(t, 0x0200, 0xdf)
	c.Reg.A = 0x9a
	c.Step()
	expectACC(t, c, 0x00)
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	expectFlag(t, c, "Zero", cpu.ZeroBit, true)

	c = loadCPU(t, 0x0200, 0xbe) // DAS A
	c.Reg.A = 0x1f
	c.Reg.PSW = cpu.CarryBit | cpu.HalfCarryBit
	c.Step()
	expectACC(t, c, 0x19)
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
}

func TestExchangeNibbles(t *testing.T) {
	c := loadCPU(t, 0x0200, 0x9f) // XCN A
	c.Reg.A = 0x3c
	c.Step()
	expectACC(t, c, 0xc3)
	expectFlag(t, c, "Negative", cpu.NegativeBit, true)
}

func TestDirectPageBits(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x62, 0x12, // SET1 $12.3
		0xe2, 0x12, // SET1 $12.7
		0x12, 0x12, // CLR1 $12.0
	)
	c.Mem.StoreByte(0x12, 0x01)

	stepCPU(c, 3)
	expectMem(t, c, 0x12, 0x88)
}

func TestTestAndSetBits(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x0e, 0x00, 0x30, // TSET1 !$3000
		0x4e, 0x01, 0x30, // TCLR1 !$3001
	)
	c.Reg.A = 0x0f
	c.Mem.StoreByte(0x3000, 0xf0)
	c.Mem.StoreByte(0x3001, 0xff)

	c.Step()
	expectMem(t, c, 0x3000, 0xff)
	expectFlag(t, c, "Negative", cpu.NegativeBit, false)
	expectFlag(t, c, "Zero", cpu.ZeroBit, false)

	c.Step()
	expectMem(t, c, 0x3001, 0xf0)
	expectFlag(t, c, "Negative", cpu.NegativeBit, false)
	expectACC(t, c, 0x0f)
}

func TestMemoryBits(t *testing.T) {
	// $0123.5 packs into the word $A123.
	c := loadCPU(t, 0x0200,
		0xaa, 0x23, 0xa1, // MOV1 C,$0123.5
		0x4a, 0x23, 0xa1, // AND1 C,$0123.5
		0x6a, 0x23, 0xa1, // AND1 C,/$0123.5
		0x0a, 0x23, 0xa1, // OR1 C,$0123.5
		0x8a, 0x23, 0xa1, // EOR1 C,$0123.5
		0xca, 0x23, 0xa1, // MOV1 $0123.5,C
		0xea, 0x23, 0xa1, // NOT1 $0123.5
		0x2a, 0x23, 0xa1, // OR1 C,/$0123.5
	)
	c.Mem.StoreByte(0x0123, 0x20)

	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
	c.Step()
	expectMem(t, c, 0x0123, 0x00)
	c.Step()
	expectMem(t, c, 0x0123, 0x20)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
}

func TestFlagOps(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x80, // SETC
		0xed, // NOTC
		0xed, // NOTC
		0x60, // CLRC
		0xa0, // EI
		0xc0, // DI
		0xe0, // CLRV
	)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, true)
	c.Step()
	expectFlag(t, c, "Carry", cpu.CarryBit, false)
	c.Step()
	expectFlag(t, c, "Interrupt", cpu.InterruptBit, true)
	c.Step()
	expectFlag(t, c, "Interrupt", cpu.InterruptBit, false)

	c.Reg.PSW |= cpu.OverflowBit | cpu.HalfCarryBit
	c.Step()
	expectFlag(t, c, "Overflow", cpu.OverflowBit, false)
	expectFlag(t, c, "HalfCarry", cpu.HalfCarryBit, false)
}

func TestNoOps(t *testing.T) {
	c := runCPU(t, 0x0200, 3, 0x00, 0xef, 0xff) // NOP, SLEEP, STOP
	expectPC(t, c, 0x0203)
	if c.Reg.PSW != 0 {
		t.Errorf("PSW incorrect. exp: $00, got: $%02X", c.Reg.PSW)
	}
}

func TestEveryOpcodeAdvances(t *testing.T) {
	set := cpu.GetInstructionSet()
	for op := 0; op < 256; op++ {
		inst := set.Lookup(byte(op))
		if inst.Opcode != byte(op) {
			t.Errorf("opcode $%02X stored as $%02X", op, inst.Opcode)
		}

		// Execute the opcode with operands that keep branches in place.
		c := loadCPU(t, 0x0200, byte(op), 0x00, 0x00)
		c.Reg.SP = 0xff
		c.Step()

		if c.Steps != 1 {
			t.Errorf("opcode $%02X did not execute", op)
		}
	}
}

func TestGetInstructions(t *testing.T) {
	set := cpu.GetInstructionSet()
	if n := len(set.GetInstructions("tcall")); n != 16 {
		t.Errorf("TCALL variants incorrect. exp: 16, got: %d", n)
	}
	if n := len(set.GetInstructions("SET1")); n != 8 {
		t.Errorf("SET1 variants incorrect. exp: 8, got: %d", n)
	}
	if inst := set.Lookup(0xe8); inst.Name != "MOV" || inst.Length != 2 || inst.Mode != cpu.IMM {
		t.Errorf("MOV A,#imm instruction data incorrect: %+v", inst)
	}
}

type breakHandler struct {
	breaks      []uint16
	dataBreaks  []uint16
	dataValues  []byte
	tcallBreaks []byte
}

func (h *breakHandler) OnBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	h.breaks = append(h.breaks, b.Address)
}

func (h *breakHandler) OnDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	h.dataBreaks = append(h.dataBreaks, b.Address)
	h.dataValues = append(h.dataValues, b.Value)
}

func (h *breakHandler) OnTcallBreakpoint(c *cpu.CPU, b *cpu.TcallBreakpoint) {
	h.tcallBreaks = append(h.tcallBreaks, b.Index)
}

func TestDebugger(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0xe8, 0x01, // MOV A,#$01
		0xc4, 0x10, // MOV $10,A
		0xc4, 0x11, // MOV $11,A
		0xda, 0x20, // MOVW $20,YA
	)
	h := &breakHandler{}
	d := cpu.NewDebugger(h)
	c.AttachDebugger(d)

	d.AddBreakpoint(0x0204)
	d.AddDataBreakpoint(0x0010)
	d.AddConditionalDataBreakpoint(0x0011, 0x02)
	d.AddDataBreakpoint(0x0021)

	stepCPU(c, 4)

	if len(h.breaks) != 1 || h.breaks[0] != 0x0204 {
		t.Errorf("breakpoints incorrect: %v", h.breaks)
	}
	if len(h.dataBreaks) != 2 || h.dataBreaks[0] != 0x0010 || h.dataBreaks[1] != 0x0021 {
		t.Errorf("data breakpoints incorrect: %v", h.dataBreaks)
	}

	bps := d.GetDataBreakpoints()
	if len(bps) != 3 || bps[0].Address != 0x0010 || bps[2].Address != 0x0021 {
		t.Errorf("data breakpoint list incorrect")
	}

	c.DetachDebugger()
	c.SetPC(0x0202)
	c.Step()
	if len(h.dataBreaks) != 2 {
		t.Errorf("detached debugger still notified")
	}
}

func TestTcallBreakpoint(t *testing.T) {
	c := loadCPU(t, 0x0200,
		0x31, // TCALL 3
		0x00, // NOP
		0x51, // TCALL 5
	)
	c.Mem.StoreWord(0xffd8, 0x0201)
	c.Mem.StoreWord(0xffd4, 0x0202)
	c.Reg.SP = 0xef

	h := &breakHandler{}
	d := cpu.NewDebugger(h)
	c.AttachDebugger(d)
	d.AddTcallBreakpoint(3)
	d.AddTcallBreakpoint(0x15).Disabled = true

	stepCPU(c, 2)
	expectPC(t, c, 0x0202)
	if len(h.tcallBreaks) != 1 || h.tcallBreaks[0] != 3 {
		t.Errorf("TCALL breakpoints incorrect: %v", h.tcallBreaks)
	}

	c.Step()
	expectPC(t, c, 0x0202)
	if len(h.tcallBreaks) != 1 {
		t.Errorf("disabled TCALL breakpoint was hit: %v", h.tcallBreaks)
	}

	bps := d.GetTcallBreakpoints()
	if len(bps) != 2 || bps[0].Index != 3 || bps[1].Index != 5 {
		t.Errorf("TCALL breakpoint list incorrect")
	}
	d.RemoveTcallBreakpoint(3)
	if d.GetTcallBreakpoint(3) != nil {
		t.Error("TCALL breakpoint not removed")
	}
}

func TestLegacyWordStoreDataBreakpoint(t *testing.T) {
	mem := cpu.NewFlatMemory(cpu.WithLegacyWordStores())
	c := cpu.NewCPU(mem)
	mem.StoreBytes(0x0200, []byte{0xda, 0x20}) // MOVW $20,YA
	c.SetPC(0x0200)
	c.Reg.SetYA(0x1234)

	h := &breakHandler{}
	d := cpu.NewDebugger(h)
	c.AttachDebugger(d)
	d.AddConditionalDataBreakpoint(0x0020, 0x12)
	d.AddDataBreakpoint(0x0021)

	c.Step()
	if len(h.dataBreaks) != 1 || h.dataBreaks[0] != 0x0020 || h.dataValues[0] != 0x12 {
		t.Errorf("data breakpoints incorrect: %v", h.dataBreaks)
	}
	expectMem(t, c, 0x0020, 0x12)
	expectMem(t, c, 0x0021, 0x00)
}
