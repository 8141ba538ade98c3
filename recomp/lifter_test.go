package recomp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, instr DisassembledInstruction) *Method {
	t.Helper()
	ctx := NewLiftContext(nil)
	stmts, err := Lift(instr, ctx)
	require.NoError(t, err)
	m, err := Generate("test", stmts, instr.CPUAddress, instr.CPUAddress+uint16(len(instr.Bytes))-1)
	require.NoError(t, err)
	return m
}

func runOn(t *testing.T, h *TestHal, m *Method) {
	t.Helper()
	d := NewDriver()
	require.NoError(t, m.Run(d, h))
}

func immediate(mnem Mnemonic, opcode, operand byte) DisassembledInstruction {
	return DisassembledInstruction{
		Opcode:     opcode,
		Mnemonic:   mnem,
		Mode:       Immediate,
		Bytes:      []byte{opcode, operand},
		CPUAddress: 0x8000,
	}
}

// Scenario 1: ADC binary, no overflow. A=10, C=1, opcode 69 34. Expect
// A=63, C=0, Z=0, V=0, N=0.
func TestADCBinaryNoOverflow(t *testing.T) {
	h := NewTestHal()
	h.WriteRegister(RegA, 10)
	h.WriteFlag(FlagC, true)

	m := compile(t, immediate(ADC, 0x69, 0x34))
	runOn(t, h, m)

	require.Equal(t, byte(63), h.ReadRegister(RegA))
	require.False(t, h.ReadFlag(FlagC))
	require.False(t, h.ReadFlag(FlagZ))
	require.False(t, h.ReadFlag(FlagV))
	require.False(t, h.ReadFlag(FlagN))
}

// Scenario 2: ADC binary, signed overflow. A=0x50, C=0, opcode 69 50.
// Expect A=0xA0, C=0, V=1, N=1, Z=0.
func TestADCBinarySignedOverflow(t *testing.T) {
	h := NewTestHal()
	h.WriteRegister(RegA, 0x50)
	h.WriteFlag(FlagC, false)

	m := compile(t, immediate(ADC, 0x69, 0x50))
	runOn(t, h, m)

	require.Equal(t, byte(0xA0), h.ReadRegister(RegA))
	require.False(t, h.ReadFlag(FlagC))
	require.True(t, h.ReadFlag(FlagV))
	require.True(t, h.ReadFlag(FlagN))
	require.False(t, h.ReadFlag(FlagZ))
}

// Scenario 3: ADC decimal, Z/N/V from binary. A=0x05, C=0, D=1, opcode
// 69 99. Expect N=1 (from binary sum 0x9E) and BCD-correct A.
func TestADCDecimalFlagsFromBinaryResult(t *testing.T) {
	h := NewTestHal()
	h.WriteRegister(RegA, 0x05)
	h.WriteFlag(FlagC, false)
	h.WriteFlag(FlagD, true)

	m := compile(t, immediate(ADC, 0x69, 0x99))
	runOn(t, h, m)

	require.True(t, h.ReadFlag(FlagN))
	// BCD: 05 + 99 = 104 decimal -> stored as 0x04 with carry set.
	require.Equal(t, byte(0x04), h.ReadRegister(RegA))
	require.True(t, h.ReadFlag(FlagC))
}

// Scenario 4: CMP equal. A=0x42, opcode C9 42. Expect A unchanged, C=1,
// Z=1, N=0.
func TestCMPEqual(t *testing.T) {
	h := NewTestHal()
	h.WriteRegister(RegA, 0x42)

	m := compile(t, immediate(CMP, 0xC9, 0x42))
	runOn(t, h, m)

	require.Equal(t, byte(0x42), h.ReadRegister(RegA))
	require.True(t, h.ReadFlag(FlagC))
	require.True(t, h.ReadFlag(FlagZ))
	require.False(t, h.ReadFlag(FlagN))
}

// Scenario 5: zero-page,X wraparound read via LDA. X=2, mem[0x01]=0x77,
// mem[0x101]=0x88, opcode B5 FF. Expect A=0x77.
func TestLDAZeroPageXWraparound(t *testing.T) {
	h := NewTestHal()
	h.WriteRegister(RegX, 2)
	h.WriteMemory(0x01, 0x77)
	h.WriteMemory(0x101, 0x88)

	instr := DisassembledInstruction{
		Opcode:     0xB5,
		Mnemonic:   LDA,
		Mode:       ZeroPageX,
		Bytes:      []byte{0xB5, 0xFF},
		CPUAddress: 0x8000,
	}
	m := compile(t, instr)
	runOn(t, h, m)

	require.Equal(t, byte(0x77), h.ReadRegister(RegA))
}

// The lifter is deterministic: lift(op, ctx) = lift(op, ctx) pointwise.
func TestLiftIsDeterministic(t *testing.T) {
	instr := immediate(LDA, 0xA9, 0x42)
	ctx1 := NewLiftContext(nil)
	stmts1, err := Lift(instr, ctx1)
	require.NoError(t, err)
	ctx2 := NewLiftContext(nil)
	stmts2, err := Lift(instr, ctx2)
	require.NoError(t, err)
	require.Equal(t, stmts1, stmts2)
}

func TestLiftUnsupportedOpcode(t *testing.T) {
	instr := DisassembledInstruction{Opcode: 0xFF, Mnemonic: "???", Mode: Implicit, Bytes: []byte{0xFF}}
	_, err := Lift(instr, NewLiftContext(nil))
	require.ErrorIs(t, err, ErrUnsupportedOp)
}

func TestLiftBranchMissingTarget(t *testing.T) {
	instr := DisassembledInstruction{
		Opcode: 0xD0, Mnemonic: BNE, Mode: Relative,
		Bytes: []byte{0xD0, 0x02}, CPUAddress: 0x8000, HasTarget: false,
	}
	_, err := Lift(instr, NewLiftContext(nil))
	require.ErrorIs(t, err, ErrMissingTarget)
}

func TestSTADirtiesAndPollsRecompilation(t *testing.T) {
	instr := DisassembledInstruction{
		Opcode: 0x8D, Mnemonic: STA, Mode: Absolute,
		Bytes: []byte{0x8D, 0x00, 0x40}, CPUAddress: 0x8000,
	}
	ctx := NewLiftContext(nil)
	stmts, err := Lift(instr, ctx)
	require.NoError(t, err)
	last := stmts[len(stmts)-1]
	poll, ok := last.(PollForRecompilationStmt)
	require.True(t, ok)
	require.Equal(t, uint16(0x8003), poll.FallbackAddress)
}
