package recomp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// JSR -> stack-redirection. A routine at 0x1234 executes JSR $9000; the
// routine at $9000 sets Y=25 then pushes 0x98, 0x76 (high then low) before
// returning. After the caller finishes, mem[0x4000]=99 (written only by
// the routine at $9876), confirming the driver honours the redirected
// return target instead of the caller's original return address.
func TestJSRStackRedirection(t *testing.T) {
	ctx := NewLiftContext(nil)

	callerAddr := uint16(0x1234)
	jsrInstr := DisassembledInstruction{
		Opcode: 0x20, Mnemonic: JSR, Mode: Absolute,
		Bytes: []byte{0x20, 0x00, 0x90}, CPUAddress: callerAddr,
		HasTarget: true, TargetAddr: 0x9000,
	}
	callerStmts, err := Lift(jsrInstr, ctx)
	require.NoError(t, err)
	caller, err := Generate("caller", callerStmts, callerAddr, callerAddr+2)
	require.NoError(t, err)

	calleeStmts := []Statement{
		CopyStmt{Src: ConstantOperand{25}, Dst: RegisterOperand{RegY}},
		BinaryStmt{Op: OpEquals, Lhs: RegisterOperand{RegY}, Rhs: ConstantOperand{0}, Dst: FlagOperand{FlagZ}},
		BinaryStmt{Op: OpGreaterThanOrEqualTo, Lhs: RegisterOperand{RegY}, Rhs: ConstantOperand{0x80}, Dst: FlagOperand{FlagN}},
		PushStackValueStmt{Src: ConstantOperand{0x98}},
		PushStackValueStmt{Src: ConstantOperand{0x76}},
	}
	rtsCtx := NewLiftContext(nil)
	lo := rtsCtx.AllocVariable()
	hi := rtsCtx.AllocVariable()
	calleeStmts = append(calleeStmts,
		PopStackValueStmt{Dst: lo},
		PopStackValueStmt{Dst: hi},
		CallMethodStmt{Dynamic: true, Hi: hi, Lo: lo, IncrementTarget: true},
	)
	callee, err := Generate("callee", calleeStmts, 0x9000, 0x900A)
	require.NoError(t, err)

	redirected, err := Generate("redirected", []Statement{
		CopyStmt{Src: ConstantOperand{99}, Dst: MemoryOperand{Base: 0x4000}},
	}, 0x9876, 0x9878)
	require.NoError(t, err)

	h := NewTestHal()
	d := NewDriver()
	d.Register(callerAddr, caller)
	d.Register(0x9000, callee)
	d.Register(0x9876, redirected)

	require.NoError(t, d.Invoke(callerAddr, h))

	require.Equal(t, byte(25), h.ReadRegister(RegY))
	require.Equal(t, byte(99), h.ReadMemory(0x4000))
}

func TestInvokeUnmappedTarget(t *testing.T) {
	h := NewTestHal()
	d := NewDriver()
	err := d.Invoke(0xDEAD, h)
	require.ErrorIs(t, err, ErrUnmappedTarget)
}

func TestPollForRecompilationInvalidatesOverlappingMethods(t *testing.T) {
	h := NewTestHal()
	h.SetCodeSpan(0x2000, 0x2010)

	d := NewDriver()
	victim, err := Generate("victim", []Statement{
		CopyStmt{Src: ConstantOperand{1}, Dst: RegisterOperand{RegA}},
	}, 0x2000, 0x2005)
	require.NoError(t, err)
	d.Register(0x2000, victim)

	fallback, err := Generate("fallback", []Statement{
		CopyStmt{Src: ConstantOperand{7}, Dst: RegisterOperand{RegX}},
	}, 0x3000, 0x3002)
	require.NoError(t, err)
	d.Register(0x3000, fallback)

	poller, err := Generate("poller", []Statement{
		CopyStmt{Src: ConstantOperand{42}, Dst: MemoryOperand{Base: 0x2004}},
		PollForRecompilationStmt{FallbackAddress: 0x3000},
	}, 0x4000, 0x4002)
	require.NoError(t, err)
	d.Register(0x4000, poller)

	require.NoError(t, d.Invoke(0x4000, h))

	require.Equal(t, byte(7), h.ReadRegister(RegX))
	_, stillRegistered := d.methods[0x2000]
	require.False(t, stillRegistered)
}

func TestPollForInterruptDispatchesVector(t *testing.T) {
	h := NewTestHal()
	h.WriteMemory(0xFFFE, 0x00)
	h.WriteMemory(0xFFFF, 0x50)
	h.RaiseInterrupt(0xFFFE)

	d := NewDriver()
	handler, err := Generate("irqHandler", []Statement{
		CopyStmt{Src: ConstantOperand{9}, Dst: RegisterOperand{RegX}},
	}, 0x5000, 0x5002)
	require.NoError(t, err)
	d.Register(0x5000, handler)

	m, err := Generate("main", []Statement{
		PollForInterruptStmt{FallbackAddress: 0x8010},
	}, 0x8000, 0x8010)
	require.NoError(t, err)

	require.NoError(t, m.Run(d, h))

	require.Equal(t, byte(9), h.ReadRegister(RegX))
	require.True(t, h.ReadFlag(FlagI))
	// Push order was fallback-hi, fallback-lo, status; pop reverses it.
	// The pushed status predates WriteFlag(I, true), so it carries only
	// the bit-5-always-1 invariant.
	require.Equal(t, byte(0x20), h.Pop())
	require.Equal(t, byte(0x10), h.Pop())
	require.Equal(t, byte(0x80), h.Pop())
}
