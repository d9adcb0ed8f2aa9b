// Package disasm renders a retired pipeline instruction as a single
// human-readable line, per spec.md's external interface "to the
// disassembler (outbound)".
package disasm

import "fmt"

// Instr is the minimal view of a retired instruction disasm needs:
// its address, raw word, and decoded mnemonic/operand pieces. It is
// deliberately a plain value type so callers never have to import the
// core package's internal latch types just to print a trace line.
type Instr struct {
	PC       uint64
	Word     uint32
	Mnemonic string
	Operands string
	Status   string
}

// Line formats i the way a disassembly trace would: address, raw hex
// word, mnemonic and operands, and the retiring status if not AOK.
func (i Instr) Line() string {
	s := fmt.Sprintf("%#016x: %08x  %-8s %s", i.PC, i.Word, i.Mnemonic, i.Operands)
	if i.Status != "" && i.Status != "AOK" {
		s += fmt.Sprintf("  [%s]", i.Status)
	}
	return s
}

// Disassembler renders a stream of retired instructions.
type Disassembler struct {
	out []string
}

// Append records i for later retrieval via Lines.
func (d *Disassembler) Append(i Instr) {
	d.out = append(d.out, i.Line())
}

// Lines returns every line recorded so far, in retirement order.
func (d *Disassembler) Lines() []string {
	return d.out
}
