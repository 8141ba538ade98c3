package recomp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsDuplicateLabel(t *testing.T) {
	stmts := []Statement{
		LabelStmt{Name: "loop"},
		LabelStmt{Name: "loop"},
	}
	require.ErrorIs(t, validate(stmts), ErrDuplicateLabel)
}

func TestValidateRejectsUndefinedLabel(t *testing.T) {
	stmts := []Statement{
		JumpStmt{Target: "nowhere"},
	}
	require.ErrorIs(t, validate(stmts), ErrUndefinedLabel)
}

func TestValidateRejectsSparseVariables(t *testing.T) {
	stmts := []Statement{
		CopyStmt{Src: ConstantOperand{1}, Dst: VariableOperand{Index: 2}},
	}
	require.ErrorIs(t, validate(stmts), ErrNonDenseVariable)
}

func TestValidateAcceptsDenseVariablesAndReachableLabels(t *testing.T) {
	stmts := []Statement{
		CopyStmt{Src: ConstantOperand{1}, Dst: VariableOperand{Index: 0}},
		CopyStmt{Src: ConstantOperand{2}, Dst: VariableOperand{Index: 1}},
		JumpIfZeroStmt{Src: VariableOperand{Index: 0}, Target: "end"},
		LabelStmt{Name: "end"},
	}
	require.NoError(t, validate(stmts))
}

func TestMaxVariableIndex(t *testing.T) {
	stmts := []Statement{
		CopyStmt{Src: ConstantOperand{1}, Dst: VariableOperand{Index: 0}},
		BinaryStmt{Op: OpAdd, Lhs: VariableOperand{Index: 0}, Rhs: VariableOperand{Index: 3}, Dst: VariableOperand{Index: 3}},
	}
	idx, any := MaxVariableIndex(stmts)
	require.True(t, any)
	require.EqualValues(t, 3, idx)
}

func TestMaxVariableIndexEmpty(t *testing.T) {
	_, any := MaxVariableIndex(nil)
	require.False(t, any)
}
