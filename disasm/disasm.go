package disasm

import (
	"github.com/pkg/errors"

	"github.com/n-ulricksen/sixfive-recomp/recomp"
)

// ErrUnknownOpcode is returned for any byte outside the documented 6502
// opcode set this package decodes.
var ErrUnknownOpcode = errors.New("disasm: unknown opcode")

// MemReader is the minimal read-only memory view this package needs; any
// Hal's ReadMemory method value, or a plain byte slice via BytesReader,
// fits it.
type MemReader func(addr uint16) byte

// BytesReader adapts a flat byte slice (e.g. a loaded PRG ROM) to MemReader.
func BytesReader(b []byte) MemReader {
	return func(addr uint16) byte {
		if int(addr) >= len(b) {
			return 0
		}
		return b[addr]
	}
}

// DecodeOne decodes the single instruction at addr, resolving the target
// address for branches, JMP, and JSR so the lifter never has to re-derive
// it. Indirect JMP resolves its target here too, honoring the 6502's
// page-boundary bug: if the low byte of the pointer is 0xFF, the high byte
// is fetched from the same page, not the next.
func DecodeOne(mem MemReader, addr uint16) (recomp.DisassembledInstruction, error) {
	opcode := mem(addr)
	info, ok := opcodeTable[opcode]
	if !ok {
		return recomp.DisassembledInstruction{}, errors.Wrapf(ErrUnknownOpcode, "0x%02X at $%04X", opcode, addr)
	}

	bytes := make([]byte, info.length)
	bytes[0] = opcode
	for i := 1; i < info.length; i++ {
		bytes[i] = mem(addr + uint16(i))
	}

	instr := recomp.DisassembledInstruction{
		Opcode:     opcode,
		Mnemonic:   info.mnemonic,
		Mode:       info.mode,
		Bytes:      bytes,
		CPUAddress: addr,
	}

	switch info.mode {
	case recomp.Relative:
		offset := int8(bytes[1])
		nextAddr := addr + uint16(info.length)
		instr.HasTarget = true
		instr.TargetAddr = uint16(int32(nextAddr) + int32(offset))
	case recomp.Absolute:
		if info.mnemonic == recomp.JMP || info.mnemonic == recomp.JSR {
			instr.HasTarget = true
			instr.TargetAddr = instr.AbsoluteOperand()
		}
	case recomp.Indirect:
		ptr := instr.AbsoluteOperand()
		lo := mem(ptr)
		var hiAddr uint16
		if byte(ptr) == 0xFF {
			hiAddr = ptr & 0xFF00
		} else {
			hiAddr = ptr + 1
		}
		hi := mem(hiAddr)
		instr.HasTarget = true
		instr.TargetAddr = uint16(hi)<<8 | uint16(lo)
	}

	return instr, nil
}

// Disassemble decodes every instruction from startAddr through endAddr
// (inclusive), in program order, skipping past each instruction's own byte
// length. This mirrors the teacher's nes/cpuDisassembler.go walk, adapted
// to return a recomp-ready instruction stream instead of display strings.
func Disassemble(mem MemReader, startAddr, endAddr uint16) ([]recomp.DisassembledInstruction, error) {
	var out []recomp.DisassembledInstruction
	addr := uint32(startAddr)
	for addr <= uint32(endAddr) {
		instr, err := DecodeOne(mem, uint16(addr))
		if err != nil {
			return out, err
		}
		out = append(out, instr)
		addr += uint32(len(instr.Bytes))
	}
	return out, nil
}
