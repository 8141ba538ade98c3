// Command recompile is a minimal demonstration of wiring the recomp
// package's lifter, generator, and driver together. ROM parsing and a real
// disassembler aren't part of this core; this demo hand-feeds a handful of
// DisassembledInstruction values to show the lift -> generate -> register
// -> invoke pipeline end to end.
package main

import (
	"flag"
	"log"

	"github.com/n-ulricksen/sixfive-recomp/recomp"
)

var flagVerbose bool

func main() {
	flag.BoolVar(&flagVerbose, "v", false, "log register state after running")
	flag.Parse()

	hal := recomp.NewTestHal()
	driver := recomp.NewDriver()

	entry := uint16(0x8000)
	program := []recomp.DisassembledInstruction{
		{Opcode: 0xA9, Mnemonic: recomp.LDA, Mode: recomp.Immediate, Bytes: []byte{0xA9, 0x2A}, CPUAddress: entry},
		{Opcode: 0x69, Mnemonic: recomp.ADC, Mode: recomp.Immediate, Bytes: []byte{0x69, 0x05}, CPUAddress: entry + 2},
	}

	if err := compileAndRegister(driver, "main", entry, program); err != nil {
		log.Fatalf("compiling entry $%04X: %v", entry, err)
	}

	if err := driver.Invoke(entry, hal); err != nil {
		log.Fatalf("invoking entry $%04X: %v", entry, err)
	}

	if flagVerbose {
		log.Printf("A=%#02x X=%#02x Y=%#02x SP=%#02x P=%#08b",
			hal.ReadRegister(recomp.RegA), hal.ReadRegister(recomp.RegX),
			hal.ReadRegister(recomp.RegY), hal.ReadSP(), hal.ReadStatus())
	}
}

// compileAndRegister lifts every instruction in program against a shared
// LiftContext (so Variable indices stay dense across the whole method),
// concatenates the resulting IR, and registers the compiled Method under
// entry. A lift failure is reported as a CompileError naming the byte
// offset (from entry) and opcode it broke on, not a bare lifter error, so a
// host walking a full ROM image can say exactly where translation stopped.
func compileAndRegister(driver *recomp.Driver, name string, entry uint16, program []recomp.DisassembledInstruction) error {
	ctx := recomp.NewLiftContext(nil)
	var stmts []recomp.Statement
	for _, instr := range program {
		s, err := recomp.Lift(instr, ctx)
		if err != nil {
			offset := int(instr.CPUAddress - entry)
			return &recomp.CompileError{Offset: offset, Opcode: instr.Opcode, Err: err}
		}
		stmts = append(stmts, s...)
	}

	last := program[len(program)-1]
	hi := last.CPUAddress + uint16(len(last.Bytes)) - 1

	method, err := recomp.Generate(name, stmts, entry, hi)
	if err != nil {
		return err
	}
	driver.Register(entry, method)
	return nil
}
