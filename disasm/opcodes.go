// Package disasm turns a raw byte stream into the
// recomp.DisassembledInstruction values the lifter consumes, resolving the
// target address for every control-flow opcode so the lifter never has to.
// Adapted from the teacher's nes/cpuDisassembler.go walk (same
// byte-advancing-cursor shape) and its InstLookup opcode table, driven
// here by a static opcode table instead of per-opcode Execute/AddrMode
// closures, since this package only decodes — it never executes.
package disasm

import "github.com/n-ulricksen/sixfive-recomp/recomp"

type opcodeInfo struct {
	mnemonic recomp.Mnemonic
	mode     recomp.AddressingMode
	length   int
}

// opcodeTable covers the documented 6502 opcode set; undocumented
// ("illegal") opcodes are out of scope. Grounded on the teacher's
// nes/cpu.go InstLookup ordering and cross-checked against
// other_examples/newhook-6502's instructionSet map.
var opcodeTable = map[byte]opcodeInfo{
	0x69: {recomp.ADC, recomp.Immediate, 2}, 0x65: {recomp.ADC, recomp.ZeroPage, 2},
	0x75: {recomp.ADC, recomp.ZeroPageX, 2}, 0x6D: {recomp.ADC, recomp.Absolute, 3},
	0x7D: {recomp.ADC, recomp.AbsoluteX, 3}, 0x79: {recomp.ADC, recomp.AbsoluteY, 3},
	0x61: {recomp.ADC, recomp.IndirectX, 2}, 0x71: {recomp.ADC, recomp.IndirectY, 2},

	0x29: {recomp.AND, recomp.Immediate, 2}, 0x25: {recomp.AND, recomp.ZeroPage, 2},
	0x35: {recomp.AND, recomp.ZeroPageX, 2}, 0x2D: {recomp.AND, recomp.Absolute, 3},
	0x3D: {recomp.AND, recomp.AbsoluteX, 3}, 0x39: {recomp.AND, recomp.AbsoluteY, 3},
	0x21: {recomp.AND, recomp.IndirectX, 2}, 0x31: {recomp.AND, recomp.IndirectY, 2},

	0x0A: {recomp.ASL, recomp.Accumulator, 1}, 0x06: {recomp.ASL, recomp.ZeroPage, 2},
	0x16: {recomp.ASL, recomp.ZeroPageX, 2}, 0x0E: {recomp.ASL, recomp.Absolute, 3},
	0x1E: {recomp.ASL, recomp.AbsoluteX, 3},

	0x90: {recomp.BCC, recomp.Relative, 2}, 0xB0: {recomp.BCS, recomp.Relative, 2},
	0xF0: {recomp.BEQ, recomp.Relative, 2}, 0x30: {recomp.BMI, recomp.Relative, 2},
	0xD0: {recomp.BNE, recomp.Relative, 2}, 0x10: {recomp.BPL, recomp.Relative, 2},
	0x50: {recomp.BVC, recomp.Relative, 2}, 0x70: {recomp.BVS, recomp.Relative, 2},

	0x24: {recomp.BIT, recomp.ZeroPage, 2}, 0x2C: {recomp.BIT, recomp.Absolute, 3},

	0x00: {recomp.BRK, recomp.Implicit, 1},

	0x18: {recomp.CLC, recomp.Implicit, 1}, 0xD8: {recomp.CLD, recomp.Implicit, 1},
	0x58: {recomp.CLI, recomp.Implicit, 1}, 0xB8: {recomp.CLV, recomp.Implicit, 1},

	0xC9: {recomp.CMP, recomp.Immediate, 2}, 0xC5: {recomp.CMP, recomp.ZeroPage, 2},
	0xD5: {recomp.CMP, recomp.ZeroPageX, 2}, 0xCD: {recomp.CMP, recomp.Absolute, 3},
	0xDD: {recomp.CMP, recomp.AbsoluteX, 3}, 0xD9: {recomp.CMP, recomp.AbsoluteY, 3},
	0xC1: {recomp.CMP, recomp.IndirectX, 2}, 0xD1: {recomp.CMP, recomp.IndirectY, 2},

	0xE0: {recomp.CPX, recomp.Immediate, 2}, 0xE4: {recomp.CPX, recomp.ZeroPage, 2}, 0xEC: {recomp.CPX, recomp.Absolute, 3},
	0xC0: {recomp.CPY, recomp.Immediate, 2}, 0xC4: {recomp.CPY, recomp.ZeroPage, 2}, 0xCC: {recomp.CPY, recomp.Absolute, 3},

	0xC6: {recomp.DEC, recomp.ZeroPage, 2}, 0xD6: {recomp.DEC, recomp.ZeroPageX, 2},
	0xCE: {recomp.DEC, recomp.Absolute, 3}, 0xDE: {recomp.DEC, recomp.AbsoluteX, 3},
	0xCA: {recomp.DEX, recomp.Implicit, 1}, 0x88: {recomp.DEY, recomp.Implicit, 1},

	0x49: {recomp.EOR, recomp.Immediate, 2}, 0x45: {recomp.EOR, recomp.ZeroPage, 2},
	0x55: {recomp.EOR, recomp.ZeroPageX, 2}, 0x4D: {recomp.EOR, recomp.Absolute, 3},
	0x5D: {recomp.EOR, recomp.AbsoluteX, 3}, 0x59: {recomp.EOR, recomp.AbsoluteY, 3},
	0x41: {recomp.EOR, recomp.IndirectX, 2}, 0x51: {recomp.EOR, recomp.IndirectY, 2},

	0xE6: {recomp.INC, recomp.ZeroPage, 2}, 0xF6: {recomp.INC, recomp.ZeroPageX, 2},
	0xEE: {recomp.INC, recomp.Absolute, 3}, 0xFE: {recomp.INC, recomp.AbsoluteX, 3},
	0xE8: {recomp.INX, recomp.Implicit, 1}, 0xC8: {recomp.INY, recomp.Implicit, 1},

	0x4C: {recomp.JMP, recomp.Absolute, 3}, 0x6C: {recomp.JMP, recomp.Indirect, 3},
	0x20: {recomp.JSR, recomp.Absolute, 3},

	0xA9: {recomp.LDA, recomp.Immediate, 2}, 0xA5: {recomp.LDA, recomp.ZeroPage, 2},
	0xB5: {recomp.LDA, recomp.ZeroPageX, 2}, 0xAD: {recomp.LDA, recomp.Absolute, 3},
	0xBD: {recomp.LDA, recomp.AbsoluteX, 3}, 0xB9: {recomp.LDA, recomp.AbsoluteY, 3},
	0xA1: {recomp.LDA, recomp.IndirectX, 2}, 0xB1: {recomp.LDA, recomp.IndirectY, 2},

	0xA2: {recomp.LDX, recomp.Immediate, 2}, 0xA6: {recomp.LDX, recomp.ZeroPage, 2},
	0xB6: {recomp.LDX, recomp.ZeroPageY, 2}, 0xAE: {recomp.LDX, recomp.Absolute, 3},
	0xBE: {recomp.LDX, recomp.AbsoluteY, 3},

	0xA0: {recomp.LDY, recomp.Immediate, 2}, 0xA4: {recomp.LDY, recomp.ZeroPage, 2},
	0xB4: {recomp.LDY, recomp.ZeroPageX, 2}, 0xAC: {recomp.LDY, recomp.Absolute, 3},
	0xBC: {recomp.LDY, recomp.AbsoluteX, 3},

	0x4A: {recomp.LSR, recomp.Accumulator, 1}, 0x46: {recomp.LSR, recomp.ZeroPage, 2},
	0x56: {recomp.LSR, recomp.ZeroPageX, 2}, 0x4E: {recomp.LSR, recomp.Absolute, 3},
	0x5E: {recomp.LSR, recomp.AbsoluteX, 3},

	0xEA: {recomp.NOP, recomp.Implicit, 1},

	0x09: {recomp.ORA, recomp.Immediate, 2}, 0x05: {recomp.ORA, recomp.ZeroPage, 2},
	0x15: {recomp.ORA, recomp.ZeroPageX, 2}, 0x0D: {recomp.ORA, recomp.Absolute, 3},
	0x1D: {recomp.ORA, recomp.AbsoluteX, 3}, 0x19: {recomp.ORA, recomp.AbsoluteY, 3},
	0x01: {recomp.ORA, recomp.IndirectX, 2}, 0x11: {recomp.ORA, recomp.IndirectY, 2},

	0x48: {recomp.PHA, recomp.Implicit, 1}, 0x08: {recomp.PHP, recomp.Implicit, 1},
	0x68: {recomp.PLA, recomp.Implicit, 1}, 0x28: {recomp.PLP, recomp.Implicit, 1},

	0x2A: {recomp.ROL, recomp.Accumulator, 1}, 0x26: {recomp.ROL, recomp.ZeroPage, 2},
	0x36: {recomp.ROL, recomp.ZeroPageX, 2}, 0x2E: {recomp.ROL, recomp.Absolute, 3},
	0x3E: {recomp.ROL, recomp.AbsoluteX, 3},

	0x6A: {recomp.ROR, recomp.Accumulator, 1}, 0x66: {recomp.ROR, recomp.ZeroPage, 2},
	0x76: {recomp.ROR, recomp.ZeroPageX, 2}, 0x6E: {recomp.ROR, recomp.Absolute, 3},
	0x7E: {recomp.ROR, recomp.AbsoluteX, 3},

	0x40: {recomp.RTI, recomp.Implicit, 1}, 0x60: {recomp.RTS, recomp.Implicit, 1},

	0xE9: {recomp.SBC, recomp.Immediate, 2}, 0xE5: {recomp.SBC, recomp.ZeroPage, 2},
	0xF5: {recomp.SBC, recomp.ZeroPageX, 2}, 0xED: {recomp.SBC, recomp.Absolute, 3},
	0xFD: {recomp.SBC, recomp.AbsoluteX, 3}, 0xF9: {recomp.SBC, recomp.AbsoluteY, 3},
	0xE1: {recomp.SBC, recomp.IndirectX, 2}, 0xF1: {recomp.SBC, recomp.IndirectY, 2},

	0x38: {recomp.SEC, recomp.Implicit, 1}, 0xF8: {recomp.SED, recomp.Implicit, 1},
	0x78: {recomp.SEI, recomp.Implicit, 1},

	0x85: {recomp.STA, recomp.ZeroPage, 2}, 0x95: {recomp.STA, recomp.ZeroPageX, 2},
	0x8D: {recomp.STA, recomp.Absolute, 3}, 0x9D: {recomp.STA, recomp.AbsoluteX, 3},
	0x99: {recomp.STA, recomp.AbsoluteY, 3}, 0x81: {recomp.STA, recomp.IndirectX, 2},
	0x91: {recomp.STA, recomp.IndirectY, 2},

	0x86: {recomp.STX, recomp.ZeroPage, 2}, 0x96: {recomp.STX, recomp.ZeroPageY, 2}, 0x8E: {recomp.STX, recomp.Absolute, 3},
	0x84: {recomp.STY, recomp.ZeroPage, 2}, 0x94: {recomp.STY, recomp.ZeroPageX, 2}, 0x8C: {recomp.STY, recomp.Absolute, 3},

	0xAA: {recomp.TAX, recomp.Implicit, 1}, 0xA8: {recomp.TAY, recomp.Implicit, 1},
	0xBA: {recomp.TSX, recomp.Implicit, 1}, 0x8A: {recomp.TXA, recomp.Implicit, 1},
	0x9A: {recomp.TXS, recomp.Implicit, 1}, 0x98: {recomp.TYA, recomp.Implicit, 1},
}
