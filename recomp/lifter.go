package recomp

import "fmt"

// liftFunc is one entry in the mnemonic-to-lifter table: a pure function
// (instr, ctx) -> IR sequence. A data-driven table keyed by Mnemonic reads
// more directly than a per-family handler hierarchy, and keeps each
// opcode's lowering self-contained and independently testable.
type liftFunc func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error)

var lifters = map[Mnemonic]liftFunc{
	LDA: liftLoad(RegA), LDX: liftLoad(RegX), LDY: liftLoad(RegY),
	STA: liftStore(RegA), STX: liftStore(RegX), STY: liftStore(RegY),
	TAX: liftTransfer(RegisterOperand{RegA}, RegX),
	TAY: liftTransfer(RegisterOperand{RegA}, RegY),
	TXA: liftTransfer(RegisterOperand{RegX}, RegA),
	TYA: liftTransfer(RegisterOperand{RegY}, RegA),
	TSX: liftTransfer(StackPointerOperand{}, RegX),
	TXS: liftTXS,
	PHA: liftPush(RegisterOperand{RegA}),
	PHP: liftPHP,
	PLA: liftPLA,
	PLP: liftPLP,
	CLC: liftFlagConst(FlagC, false), SEC: liftFlagConst(FlagC, true),
	CLI: liftFlagConst(FlagI, false), SEI: liftFlagConst(FlagI, true),
	CLD: liftFlagConst(FlagD, false), SED: liftFlagConst(FlagD, true),
	CLV: liftFlagConst(FlagV, false),
	AND: liftLogical(OpAnd), ORA: liftLogical(OpOr), EOR: liftLogical(OpXor),
	BIT: liftBIT,
	ASL: liftShiftRotate(shiftASL), LSR: liftShiftRotate(shiftLSR),
	ROL: liftShiftRotate(shiftROL), ROR: liftShiftRotate(shiftROR),
	INC: liftIncDecMem(OpAdd), DEC: liftIncDecMem(OpSubtract),
	INX: liftIncDecReg(RegX, OpAdd), DEX: liftIncDecReg(RegX, OpSubtract),
	INY: liftIncDecReg(RegY, OpAdd), DEY: liftIncDecReg(RegY, OpSubtract),
	CMP: liftCompare(RegA), CPX: liftCompare(RegX), CPY: liftCompare(RegY),
	ADC: liftADC,
	SBC: liftSBC,
	BCC: liftBranch(FlagC, false), BCS: liftBranch(FlagC, true),
	BNE: liftBranch(FlagZ, false), BEQ: liftBranch(FlagZ, true),
	BPL: liftBranch(FlagN, false), BMI: liftBranch(FlagN, true),
	BVC: liftBranch(FlagV, false), BVS: liftBranch(FlagV, true),
	JMP: liftJMP,
	JSR: liftJSR,
	RTS: liftRTS,
	RTI: liftRTI,
	BRK: liftBRK,
	NOP: liftNOP,
}

// dirtyingMnemonics names the instructions whose write could hit
// code-bearing memory, so the lifter must emit a PollForRecompilation
// after any of these to catch self-modifying code.
var dirtyingMnemonics = map[Mnemonic]bool{
	STA: true, STX: true, STY: true,
	ASL: true, LSR: true, ROL: true, ROR: true, INC: true, DEC: true,
	PHA: true, PHP: true,
}

// Lift maps one decoded 6502 instruction to an ordered IR sequence.
func Lift(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	fn, ok := lifters[instr.Mnemonic]
	if !ok {
		return nil, UnsupportedOpcodeError(instr.Opcode)
	}
	stmts, err := fn(instr, ctx)
	if err != nil {
		return nil, err
	}
	if dirtyingMnemonics[instr.Mnemonic] {
		next := instr.CPUAddress + uint16(len(instr.Bytes))
		stmts = append(stmts, PollForRecompilationStmt{FallbackAddress: next})
	}
	return stmts, nil
}

// decodeOperand produces the operand representing the effective memory
// cell an instruction's addressing mode resolves to.
func decodeOperand(instr DisassembledInstruction) (Operand, error) {
	switch instr.Mode {
	case Immediate:
		return ConstantOperand{instr.Operand1()}, nil
	case ZeroPage:
		return MemoryOperand{Base: uint16(instr.Operand1()), ZeroPageWrap: true}, nil
	case ZeroPageX:
		idx := RegX
		return MemoryOperand{Base: uint16(instr.Operand1()), Index: &idx, ZeroPageWrap: true}, nil
	case ZeroPageY:
		idx := RegY
		return MemoryOperand{Base: uint16(instr.Operand1()), Index: &idx, ZeroPageWrap: true}, nil
	case Absolute:
		return MemoryOperand{Base: instr.AbsoluteOperand(), ZeroPageWrap: false}, nil
	case AbsoluteX:
		idx := RegX
		return MemoryOperand{Base: instr.AbsoluteOperand(), Index: &idx, ZeroPageWrap: false}, nil
	case AbsoluteY:
		idx := RegY
		return MemoryOperand{Base: instr.AbsoluteOperand(), Index: &idx, ZeroPageWrap: false}, nil
	case IndirectX:
		return IndirectMemoryOperand{ZeroPage: instr.Operand1(), PostIndex: false}, nil
	case IndirectY:
		return IndirectMemoryOperand{ZeroPage: instr.Operand1(), PostIndex: true}, nil
	case Accumulator:
		return RegisterOperand{RegA}, nil
	default:
		return nil, fmt.Errorf("%w: addressing mode %s has no effective-address operand", ErrTypeMismatch, instr.Mode)
	}
}

func zn(target Operand) []Statement {
	return []Statement{
		BinaryStmt{Op: OpEquals, Lhs: target, Rhs: ConstantOperand{0}, Dst: FlagOperand{FlagZ}},
		BinaryStmt{Op: OpGreaterThanOrEqualTo, Lhs: target, Rhs: ConstantOperand{0x80}, Dst: FlagOperand{FlagN}},
	}
}

func liftLoad(reg Register) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		src, err := decodeOperand(instr)
		if err != nil {
			return nil, err
		}
		dst := RegisterOperand{reg}
		stmts := []Statement{CopyStmt{Src: src, Dst: dst}}
		return append(stmts, zn(dst)...), nil
	}
}

func liftStore(reg Register) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		dst, err := decodeOperand(instr)
		if err != nil {
			return nil, err
		}
		return []Statement{CopyStmt{Src: RegisterOperand{reg}, Dst: dst}}, nil
	}
}

func liftTransfer(src Operand, dstReg Register) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		dst := RegisterOperand{dstReg}
		stmts := []Statement{CopyStmt{Src: src, Dst: dst}}
		return append(stmts, zn(dst)...), nil
	}
}

func liftTXS(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	return []Statement{CopyStmt{Src: RegisterOperand{RegX}, Dst: StackPointerOperand{}}}, nil
}

func liftPush(src Operand) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		return []Statement{PushStackValueStmt{Src: src}}, nil
	}
}

func liftPHP(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	t0 := ctx.AllocVariable()
	return []Statement{
		CopyStmt{Src: AllFlagsOperand{}, Dst: t0},
		BinaryStmt{Op: OpOr, Lhs: t0, Rhs: ConstantOperand{0x10}, Dst: t0},
		PushStackValueStmt{Src: t0},
	}, nil
}

func liftPLA(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	a := RegisterOperand{RegA}
	stmts := []Statement{PopStackValueStmt{Dst: a}}
	return append(stmts, zn(a)...), nil
}

func liftPLP(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	oldB := ctx.AllocVariable()
	popped := ctx.AllocVariable()
	bShifted := ctx.AllocVariable()
	return []Statement{
		CopyStmt{Src: FlagOperand{FlagB}, Dst: oldB},
		PopStackValueStmt{Dst: popped},
		BinaryStmt{Op: OpAnd, Lhs: popped, Rhs: ConstantOperand{0xCF}, Dst: popped},
		BinaryStmt{Op: OpShiftLeft, Lhs: oldB, Rhs: ConstantOperand{4}, Dst: bShifted},
		BinaryStmt{Op: OpOr, Lhs: popped, Rhs: bShifted, Dst: popped},
		BinaryStmt{Op: OpOr, Lhs: popped, Rhs: ConstantOperand{0x20}, Dst: popped},
		CopyStmt{Src: popped, Dst: AllFlagsOperand{}},
	}, nil
}

func liftFlagConst(f Flag, value bool) liftFunc {
	v := byte(0)
	if value {
		v = 1
	}
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		return []Statement{CopyStmt{Src: ConstantOperand{v}, Dst: FlagOperand{f}}}, nil
	}
}

func liftLogical(op BinaryOp) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		src, err := decodeOperand(instr)
		if err != nil {
			return nil, err
		}
		a := RegisterOperand{RegA}
		stmts := []Statement{BinaryStmt{Op: op, Lhs: a, Rhs: src, Dst: a}}
		return append(stmts, zn(a)...), nil
	}
}

func liftBIT(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	src, err := decodeOperand(instr)
	if err != nil {
		return nil, err
	}
	t0 := ctx.AllocVariable()
	return []Statement{
		BinaryStmt{Op: OpAnd, Lhs: RegisterOperand{RegA}, Rhs: src, Dst: t0},
		BinaryStmt{Op: OpEquals, Lhs: t0, Rhs: ConstantOperand{0}, Dst: FlagOperand{FlagZ}},
		BinaryStmt{Op: OpShiftRight, Lhs: src, Rhs: ConstantOperand{7}, Dst: FlagOperand{FlagN}},
		BinaryStmt{Op: OpShiftRight, Lhs: src, Rhs: ConstantOperand{6}, Dst: FlagOperand{FlagV}},
	}, nil
}

type shiftKind int

const (
	shiftASL shiftKind = iota
	shiftLSR
	shiftROL
	shiftROR
)

func liftShiftRotate(kind shiftKind) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		target, err := decodeOperand(instr)
		if err != nil {
			return nil, err
		}
		var stmts []Statement
		switch kind {
		case shiftASL:
			stmts = []Statement{
				BinaryStmt{Op: OpShiftRight, Lhs: target, Rhs: ConstantOperand{7}, Dst: FlagOperand{FlagC}},
				BinaryStmt{Op: OpShiftLeft, Lhs: target, Rhs: ConstantOperand{1}, Dst: target},
			}
		case shiftLSR:
			stmts = []Statement{
				CopyStmt{Src: target, Dst: FlagOperand{FlagC}},
				BinaryStmt{Op: OpShiftRight, Lhs: target, Rhs: ConstantOperand{1}, Dst: target},
			}
		case shiftROL:
			oldC := ctx.AllocVariable()
			stmts = []Statement{
				CopyStmt{Src: FlagOperand{FlagC}, Dst: oldC},
				BinaryStmt{Op: OpShiftRight, Lhs: target, Rhs: ConstantOperand{7}, Dst: FlagOperand{FlagC}},
				BinaryStmt{Op: OpShiftLeft, Lhs: target, Rhs: ConstantOperand{1}, Dst: target},
				BinaryStmt{Op: OpOr, Lhs: target, Rhs: oldC, Dst: target},
			}
		case shiftROR:
			oldC := ctx.AllocVariable()
			oldCHi := ctx.AllocVariable()
			stmts = []Statement{
				CopyStmt{Src: FlagOperand{FlagC}, Dst: oldC},
				CopyStmt{Src: target, Dst: FlagOperand{FlagC}},
				BinaryStmt{Op: OpShiftLeft, Lhs: oldC, Rhs: ConstantOperand{7}, Dst: oldCHi},
				BinaryStmt{Op: OpShiftRight, Lhs: target, Rhs: ConstantOperand{1}, Dst: target},
				BinaryStmt{Op: OpOr, Lhs: target, Rhs: oldCHi, Dst: target},
			}
		}
		return append(stmts, zn(target)...), nil
	}
}

func liftIncDecMem(op BinaryOp) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		target, err := decodeOperand(instr)
		if err != nil {
			return nil, err
		}
		stmts := []Statement{BinaryStmt{Op: op, Lhs: target, Rhs: ConstantOperand{1}, Dst: target}}
		return append(stmts, zn(target)...), nil
	}
}

func liftIncDecReg(reg Register, op BinaryOp) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		target := RegisterOperand{reg}
		stmts := []Statement{BinaryStmt{Op: op, Lhs: target, Rhs: ConstantOperand{1}, Dst: target}}
		return append(stmts, zn(target)...), nil
	}
}

func liftCompare(reg Register) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		src, err := decodeOperand(instr)
		if err != nil {
			return nil, err
		}
		r := RegisterOperand{reg}
		t0 := ctx.AllocVariable()
		return []Statement{
			BinaryStmt{Op: OpGreaterThanOrEqualTo, Lhs: r, Rhs: src, Dst: FlagOperand{FlagC}},
			BinaryStmt{Op: OpEquals, Lhs: r, Rhs: src, Dst: FlagOperand{FlagZ}},
			BinaryStmt{Op: OpSubtract, Lhs: r, Rhs: src, Dst: t0},
			BinaryStmt{Op: OpShiftRight, Lhs: t0, Rhs: ConstantOperand{7}, Dst: FlagOperand{FlagN}},
		}, nil
	}
}

// adcLower emits the full ADC sequence for `src` (already inverted by the
// caller for SBC, since SBC is just ADC against the one's complement of
// its operand). On real 6502 hardware, Z/N/V are always computed from the
// binary-mode result even when D is set — only the final A and C differ
// between binary and decimal mode. That choice has to be made at run time
// rather than at lift time, since D can change between invocations of the
// same compiled opcode. BCD nibble-correction follows the same add-then-
// adjust-nibbles shape as other_examples/newhook-6502-cpu.go's adc().
func adcLower(ctx *LiftContext, src Operand) []Statement {
	a := RegisterOperand{RegA}
	oldA := ctx.AllocVariable()
	sum1 := ctx.AllocVariable()
	sum2 := ctx.AllocVariable()
	carry1 := ctx.AllocVariable()
	carry2 := ctx.AllocVariable()
	carryBin := ctx.AllocVariable()
	xor1 := ctx.AllocVariable()
	xor2 := ctx.AllocVariable()
	overflowBits := ctx.AllocVariable()
	cin := ctx.AllocVariable()

	stmts := []Statement{
		CopyStmt{Src: a, Dst: oldA},
		CopyStmt{Src: FlagOperand{FlagC}, Dst: cin},

		BinaryStmt{Op: OpAdd, Lhs: oldA, Rhs: src, Dst: sum1},
		BinaryStmt{Op: OpLessThan, Lhs: sum1, Rhs: oldA, Dst: carry1},
		BinaryStmt{Op: OpAdd, Lhs: sum1, Rhs: cin, Dst: sum2},
		BinaryStmt{Op: OpLessThan, Lhs: sum2, Rhs: sum1, Dst: carry2},
		BinaryStmt{Op: OpOr, Lhs: carry1, Rhs: carry2, Dst: carryBin},

		BinaryStmt{Op: OpXor, Lhs: oldA, Rhs: sum2, Dst: xor1},
		BinaryStmt{Op: OpXor, Lhs: src, Rhs: sum2, Dst: xor2},
		BinaryStmt{Op: OpAnd, Lhs: xor1, Rhs: xor2, Dst: overflowBits},

		BinaryStmt{Op: OpEquals, Lhs: sum2, Rhs: ConstantOperand{0}, Dst: FlagOperand{FlagZ}},
		BinaryStmt{Op: OpShiftRight, Lhs: sum2, Rhs: ConstantOperand{7}, Dst: FlagOperand{FlagN}},
		BinaryStmt{Op: OpShiftRight, Lhs: overflowBits, Rhs: ConstantOperand{7}, Dst: FlagOperand{FlagV}},
	}

	decimalLabel := ctx.AllocLabel("adc_dec")
	endLabel := ctx.AllocLabel("adc_end")

	stmts = append(stmts, JumpIfNotZeroStmt{Src: FlagOperand{FlagD}, Target: decimalLabel})

	// Binary-mode final write.
	stmts = append(stmts,
		CopyStmt{Src: sum2, Dst: a},
		CopyStmt{Src: carryBin, Dst: FlagOperand{FlagC}},
		JumpStmt{Target: endLabel},
	)

	// Decimal-mode BCD nibble correction.
	lo := ctx.AllocVariable()
	hi := ctx.AllocVariable()
	loFixup := ctx.AllocVariable()
	loOver9 := ctx.AllocVariable()
	hiOver9 := ctx.AllocVariable()
	result := ctx.AllocVariable()
	loNoHigh := ctx.AllocVariable()
	skipLoFix := ctx.AllocLabel("adc_dec_skiplo")
	skipHiFix := ctx.AllocLabel("adc_dec_skiphi")

	stmts = append(stmts,
		LabelStmt{Name: decimalLabel},
		BinaryStmt{Op: OpAnd, Lhs: oldA, Rhs: ConstantOperand{0x0F}, Dst: lo},
		BinaryStmt{Op: OpAnd, Lhs: src, Rhs: ConstantOperand{0x0F}, Dst: loFixup},
		BinaryStmt{Op: OpAdd, Lhs: lo, Rhs: loFixup, Dst: lo},
		BinaryStmt{Op: OpAdd, Lhs: lo, Rhs: cin, Dst: lo},
		BinaryStmt{Op: OpGreaterThan, Lhs: lo, Rhs: ConstantOperand{9}, Dst: loOver9},
		JumpIfZeroStmt{Src: loOver9, Target: skipLoFix},
		BinaryStmt{Op: OpAdd, Lhs: lo, Rhs: ConstantOperand{6}, Dst: lo},
		LabelStmt{Name: skipLoFix},

		BinaryStmt{Op: OpShiftRight, Lhs: oldA, Rhs: ConstantOperand{4}, Dst: hi},
		BinaryStmt{Op: OpShiftRight, Lhs: src, Rhs: ConstantOperand{4}, Dst: loFixup},
		BinaryStmt{Op: OpAdd, Lhs: hi, Rhs: loFixup, Dst: hi},
		BinaryStmt{Op: OpAdd, Lhs: hi, Rhs: loOver9, Dst: hi},

		BinaryStmt{Op: OpGreaterThan, Lhs: hi, Rhs: ConstantOperand{9}, Dst: hiOver9},
		CopyStmt{Src: hiOver9, Dst: FlagOperand{FlagC}},
		JumpIfZeroStmt{Src: hiOver9, Target: skipHiFix},
		BinaryStmt{Op: OpAdd, Lhs: hi, Rhs: ConstantOperand{6}, Dst: hi},
		LabelStmt{Name: skipHiFix},

		BinaryStmt{Op: OpAnd, Lhs: lo, Rhs: ConstantOperand{0x0F}, Dst: loNoHigh},
		BinaryStmt{Op: OpShiftLeft, Lhs: hi, Rhs: ConstantOperand{4}, Dst: result},
		BinaryStmt{Op: OpOr, Lhs: result, Rhs: loNoHigh, Dst: result},
		CopyStmt{Src: result, Dst: a},

		LabelStmt{Name: endLabel},
	)

	return stmts
}

func liftADC(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	src, err := decodeOperand(instr)
	if err != nil {
		return nil, err
	}
	return adcLower(ctx, src), nil
}

func liftSBC(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	src, err := decodeOperand(instr)
	if err != nil {
		return nil, err
	}
	inv := ctx.AllocVariable()
	stmts := []Statement{UnaryStmt{Op: OpBitwiseNot, Src: src, Dst: inv}}
	return append(stmts, adcLower(ctx, inv)...), nil
}

func liftBranch(f Flag, jumpWhenSet bool) liftFunc {
	return func(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
		if !instr.HasTarget {
			return nil, MissingTargetError(instr.Mnemonic, instr.CPUAddress)
		}
		target := ctx.LabelFor(instr.TargetAddr)
		if jumpWhenSet {
			return []Statement{JumpIfNotZeroStmt{Src: FlagOperand{f}, Target: target}}, nil
		}
		return []Statement{JumpIfZeroStmt{Src: FlagOperand{f}, Target: target}}, nil
	}
}

func liftJMP(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	if !instr.HasTarget {
		return nil, MissingTargetError(instr.Mnemonic, instr.CPUAddress)
	}
	return []Statement{CallMethodStmt{Address: instr.TargetAddr}}, nil
}

func liftJSR(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	if !instr.HasTarget {
		return nil, MissingTargetError(instr.Mnemonic, instr.CPUAddress)
	}
	ret := instr.CPUAddress + 2
	return []Statement{
		PushStackValueStmt{Src: ConstantOperand{byte(ret >> 8)}},
		PushStackValueStmt{Src: ConstantOperand{byte(ret)}},
		CallMethodStmt{
			Address:                 instr.TargetAddr,
			PushesReturnExpectation: true,
			ExpectedReturn:          ret + 1,
		},
	}, nil
}

func liftRTS(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	lo := ctx.AllocVariable()
	hi := ctx.AllocVariable()
	return []Statement{
		PopStackValueStmt{Dst: lo},
		PopStackValueStmt{Dst: hi},
		CallMethodStmt{Dynamic: true, Hi: hi, Lo: lo, IncrementTarget: true},
	}, nil
}

func liftRTI(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	lo := ctx.AllocVariable()
	hi := ctx.AllocVariable()
	return []Statement{
		PopStackValueStmt{Dst: AllFlagsOperand{}},
		PopStackValueStmt{Dst: lo},
		PopStackValueStmt{Dst: hi},
		CallMethodStmt{Dynamic: true, Hi: hi, Lo: lo, IncrementTarget: false},
	}, nil
}

func liftBRK(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	return []Statement{
		CopyStmt{Src: ConstantOperand{1}, Dst: FlagOperand{FlagB}},
		PollForInterruptStmt{FallbackAddress: instr.CPUAddress + 2},
	}, nil
}

func liftNOP(instr DisassembledInstruction, ctx *LiftContext) ([]Statement, error) {
	return nil, nil
}
