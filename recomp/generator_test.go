package recomp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRejectsInvalidIR(t *testing.T) {
	_, err := Generate("bad", []Statement{JumpStmt{Target: "missing"}}, 0, 0)
	require.ErrorIs(t, err, ErrUndefinedLabel)
}

func TestGenerateSizesScratchFrame(t *testing.T) {
	stmts := []Statement{
		CopyStmt{Src: ConstantOperand{1}, Dst: VariableOperand{Index: 0}},
		CopyStmt{Src: ConstantOperand{2}, Dst: VariableOperand{Index: 1}},
		CopyStmt{Src: ConstantOperand{3}, Dst: VariableOperand{Index: 2}},
	}
	m, err := Generate("sized", stmts, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 3+scratchSurplus, m.NumLocals)
}

func TestMethodRunHandlesJumpsAndLabels(t *testing.T) {
	stmts := []Statement{
		CopyStmt{Src: ConstantOperand{0}, Dst: RegisterOperand{RegA}},
		JumpStmt{Target: "skip"},
		CopyStmt{Src: ConstantOperand{0xFF}, Dst: RegisterOperand{RegA}},
		LabelStmt{Name: "skip"},
		CopyStmt{Src: ConstantOperand{5}, Dst: RegisterOperand{RegX}},
	}
	m, err := Generate("jumper", stmts, 0, 0)
	require.NoError(t, err)

	h := NewTestHal()
	d := NewDriver()
	require.NoError(t, m.Run(d, h))

	require.Equal(t, byte(0), h.ReadRegister(RegA))
	require.Equal(t, byte(5), h.ReadRegister(RegX))
}

func TestEvalBinaryShiftsSaturateAtEight(t *testing.T) {
	require.Equal(t, byte(0), evalBinary(OpShiftLeft, 0xFF, 8))
	require.Equal(t, byte(0), evalBinary(OpShiftRight, 0xFF, 9))
	require.Equal(t, byte(0xFE), evalBinary(OpShiftLeft, 0xFF, 1))
}

func TestEvalBinaryWrapsModulo256(t *testing.T) {
	require.Equal(t, byte(0), evalBinary(OpAdd, 0xFF, 1))
	require.Equal(t, byte(0xFF), evalBinary(OpSubtract, 0x00, 1))
}
