package recomp

// scratchSurplus is a small backend-defined surplus of extra locals
// allocated beyond the highest Variable index a method's IR references, as
// headroom for expression lowering that needs a temporary the lifter
// didn't account for.
const scratchSurplus = 4

// Method is a callable unit of emitted code corresponding to one 6502
// subroutine entry. It is immutable once generated.
type Method struct {
	Name       string
	Statements []Statement
	NumLocals  uint32

	// Lo/Hi is the 6502 address span this method was lifted from. Hal
	// write-dirtying only reports "something changed", not where, so the
	// driver needs these (together with Hal.DirtyRange, see hal.go) to
	// know which already-compiled methods a self-modifying write
	// invalidates.
	Lo, Hi uint16

	labelIndex map[Identifier]int
}

// Generate compiles an IR sequence into a callable Method: validates the
// IR, sizes the scratch-local frame, and resolves every jump target to a
// statement index. lo/hi bound the 6502 addresses the source instructions
// occupied, for later overlap-based invalidation.
func Generate(name string, statements []Statement, lo, hi uint16) (*Method, error) {
	if err := validate(statements); err != nil {
		return nil, err
	}

	numLocals := uint32(0)
	if maxIdx, any := MaxVariableIndex(statements); any {
		numLocals = maxIdx + 1
	}
	numLocals += scratchSurplus

	labelIndex := make(map[Identifier]int)
	for i, st := range statements {
		if l, ok := st.(LabelStmt); ok {
			labelIndex[l.Name] = i
		}
	}
	for _, st := range statements {
		var target Identifier
		switch s := st.(type) {
		case JumpStmt:
			target = s.Target
		case JumpIfZeroStmt:
			target = s.Target
		case JumpIfNotZeroStmt:
			target = s.Target
		default:
			continue
		}
		if _, ok := labelIndex[target]; !ok {
			return nil, ErrUndefinedLabel
		}
	}

	return &Method{
		Name:       name,
		Statements: statements,
		NumLocals:  numLocals,
		Lo:         lo,
		Hi:         hi,
		labelIndex: labelIndex,
	}, nil
}

// Overlaps reports whether this method's source span intersects [lo, hi].
func (m *Method) Overlaps(lo, hi uint16) bool {
	return m.Lo <= hi && lo <= m.Hi
}

// Run executes the method's IR to completion, a control transfer, or an
// interrupt dispatch, against the given Driver and Hal. It walks the IR
// with an explicit statement-vector program counter, performing each
// operation in an unsigned integer domain and truncating on write per the
// operand's width.
func (m *Method) Run(d *Driver, h Hal) error {
	locals := make([]byte, m.NumLocals)
	pc := 0
	for pc < len(m.Statements) {
		switch s := m.Statements[pc].(type) {
		case CopyStmt:
			writeOperand(s.Dst, h, locals, readOperand(s.Src, h, locals))
			pc++

		case UnaryStmt:
			v := readOperand(s.Src, h, locals)
			var r byte
			switch s.Op {
			case OpBitwiseNot:
				r = ^v
			}
			writeOperand(s.Dst, h, locals, r)
			pc++

		case BinaryStmt:
			lhs := readOperand(s.Lhs, h, locals)
			rhs := readOperand(s.Rhs, h, locals)
			writeOperand(s.Dst, h, locals, evalBinary(s.Op, lhs, rhs))
			pc++

		case LabelStmt:
			pc++

		case JumpIfZeroStmt:
			if readOperand(s.Src, h, locals) == 0 {
				pc = m.labelIndex[s.Target]
			} else {
				pc++
			}

		case JumpIfNotZeroStmt:
			if readOperand(s.Src, h, locals) != 0 {
				pc = m.labelIndex[s.Target]
			} else {
				pc++
			}

		case JumpStmt:
			pc = m.labelIndex[s.Target]

		case PushStackValueStmt:
			h.Push(readOperand(s.Src, h, locals))
			pc++

		case PopStackValueStmt:
			writeOperand(s.Dst, h, locals, h.Pop())
			pc++

		case CallMethodStmt:
			if !s.Dynamic {
				if s.PushesReturnExpectation {
					d.pushExpectedReturn(s.ExpectedReturn)
				}
				if err := d.Invoke(s.Address, h); err != nil {
					return err
				}
				if !s.PushesReturnExpectation {
					// JMP: a tail transfer, so this method ends once the
					// jump target returns.
					return nil
				}
				pc++
				continue
			}

			hi := readOperand(s.Hi, h, locals)
			lo := readOperand(s.Lo, h, locals)
			raw := uint16(hi)<<8 | uint16(lo)

			if !s.IncrementTarget {
				// RTI: unconditional redirect to the popped resume address,
				// not gated by the JSR/RTS expected-return convention.
				if err := d.Invoke(raw, h); err != nil {
					return err
				}
				return nil
			}

			candidate := raw + 1
			if expected, ok := d.peekExpectedReturn(); ok && candidate == expected {
				d.popExpectedReturn()
				return nil
			}
			// RTS-redirection: the callee overwrote its return address on
			// the stack, a classic 6502 trick for tail-dispatching
			// elsewhere without a JMP. Dispatch to the raw popped address
			// directly rather than the +1'd candidate, since that's the
			// exact address the callee pushed.
			if err := d.Invoke(raw, h); err != nil {
				return err
			}
			return nil

		case PollForRecompilationStmt:
			if h.PollRecompile() {
				d.invalidateOverlapping(h)
				if err := d.Invoke(s.FallbackAddress, h); err != nil {
					return err
				}
				return nil
			}
			pc++

		case PollForInterruptStmt:
			if v := h.PollInterrupt(); v != 0 {
				h.Push(byte(s.FallbackAddress >> 8))
				h.Push(byte(s.FallbackAddress))
				h.Push(h.ReadStatus())
				h.WriteFlag(FlagI, true)
				target := uint16(h.ReadMemory(v)) | uint16(h.ReadMemory(v+1))<<8
				if err := d.Invoke(target, h); err != nil {
					return err
				}
			}
			pc++

		default:
			pc++
		}
	}
	return nil
}

func evalBinary(op BinaryOp, lhs, rhs byte) byte {
	switch op {
	case OpAdd:
		return byte(int(lhs) + int(rhs))
	case OpSubtract:
		return byte(int(lhs) - int(rhs) + 256)
	case OpAnd:
		return lhs & rhs
	case OpOr:
		return lhs | rhs
	case OpXor:
		return lhs ^ rhs
	case OpShiftLeft:
		if rhs >= 8 {
			return 0
		}
		return byte(int(lhs) << rhs)
	case OpShiftRight:
		if rhs >= 8 {
			return 0
		}
		return lhs >> rhs
	case OpEquals:
		return boolByte(lhs == rhs)
	case OpNotEquals:
		return boolByte(lhs != rhs)
	case OpGreaterThan:
		return boolByte(lhs > rhs)
	case OpGreaterThanOrEqualTo:
		return boolByte(lhs >= rhs)
	case OpLessThan:
		return boolByte(lhs < rhs)
	case OpLessThanOrEqualTo:
		return boolByte(lhs <= rhs)
	default:
		return 0
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func readOperand(op Operand, h Hal, locals []byte) byte {
	switch o := op.(type) {
	case ConstantOperand:
		return o.Value
	case RegisterOperand:
		return h.ReadRegister(o.Reg)
	case StackPointerOperand:
		return h.ReadSP()
	case FlagOperand:
		return boolByte(h.ReadFlag(o.Flag))
	case AllFlagsOperand:
		return h.ReadStatus()
	case MemoryOperand:
		return h.ReadMemory(effectiveAddress(o, h))
	case IndirectMemoryOperand:
		return h.ReadMemory(indirectAddress(o, h))
	case VariableOperand:
		return locals[o.Index]
	default:
		return 0
	}
}

func writeOperand(op Operand, h Hal, locals []byte, value byte) {
	switch o := op.(type) {
	case ConstantOperand:
		// Read-only; writes are a lifter bug, not a runtime condition.
	case RegisterOperand:
		h.WriteRegister(o.Reg, value)
	case StackPointerOperand:
		h.WriteSP(value)
	case FlagOperand:
		h.WriteFlag(o.Flag, value&1 != 0)
	case AllFlagsOperand:
		h.WriteStatus(value)
	case MemoryOperand:
		h.WriteMemory(effectiveAddress(o, h), value)
	case IndirectMemoryOperand:
		h.WriteMemory(indirectAddress(o, h), value)
	case VariableOperand:
		locals[o.Index] = value
	}
}

func effectiveAddress(o MemoryOperand, h Hal) uint16 {
	var idx byte
	if o.Index != nil {
		idx = h.ReadRegister(*o.Index)
	}
	return o.EffectiveAddress(idx)
}

func indirectAddress(o IndirectMemoryOperand, h Hal) uint16 {
	if !o.PostIndex {
		x := h.ReadRegister(RegX)
		ptrLo := o.ZeroPage + x
		ptrHi := ptrLo + 1
		lo := h.ReadMemory(uint16(ptrLo))
		hi := h.ReadMemory(uint16(ptrHi))
		return uint16(hi)<<8 | uint16(lo)
	}
	lo := h.ReadMemory(uint16(o.ZeroPage))
	hi := h.ReadMemory(uint16(o.ZeroPage + 1))
	base := uint16(hi)<<8 | uint16(lo)
	y := h.ReadRegister(RegY)
	return base + uint16(y)
}
