// Package recomp implements a static recompiler for 6502 machine code: it
// lifts disassembled instructions into an architecture-neutral IR, compiles
// that IR into callable methods, and drives their execution against a Hal.
package recomp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Lifting and IR-validation errors. Lift returns one of the "lifter:"
// errors, optionally wrapped to attach the opcode or address that
// triggered it; validate (and so Generate) returns the "ir:" ones.
var (
	ErrMissingTarget    = errors.New("lifter: missing target address")
	ErrUnsupportedOp    = errors.New("lifter: unsupported opcode")
	ErrTypeMismatch     = errors.New("lifter: operand width mismatch")
	ErrDuplicateLabel   = errors.New("ir: duplicate label")
	ErrUndefinedLabel   = errors.New("ir: jump to undefined label")
	ErrNonDenseVariable = errors.New("ir: variable indices are not dense from zero")
)

// Dispatch errors. Driver.Invoke and Method.Run return one of these,
// wrapped with the 6502 address in question. A popped return address with
// no registered method covers both an outright corrupt stack and a
// legitimate RTS-redirection whose target hasn't been compiled yet, so
// there's no separate "corrupt return" case to distinguish — ErrUnmappedTarget
// is the one error both report.
var (
	ErrUnmappedTarget = errors.New("driver: call target has no registered method")
)

// UnsupportedOpcodeError names the offending byte for ErrUnsupportedOp.
func UnsupportedOpcodeError(opcode byte) error {
	return errors.Wrapf(ErrUnsupportedOp, "opcode 0x%02X", opcode)
}

// MissingTargetError names the instruction whose target_address is unset.
func MissingTargetError(mnemonic Mnemonic, cpuAddress uint16) error {
	return errors.Wrapf(ErrMissingTarget, "%s at $%04X", mnemonic, cpuAddress)
}

// UnmappedTargetError names the 6502 address the driver could not dispatch to.
func UnmappedTargetError(addr uint16) error {
	return errors.Wrapf(ErrUnmappedTarget, "$%04X", addr)
}

// CompileError reports the ROM offset and opcode a compilation pass failed
// on, so a host driving the lifter over a whole ROM image can report
// exactly where translation broke down instead of a bare lifter error.
type CompileError struct {
	Offset int
	Opcode byte
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile: offset %d opcode 0x%02X: %v", e.Offset, e.Opcode, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
