// Package isa holds the Instruction data model shared by the entry
// builder and the gadget family. It deliberately carries no execution
// logic — semantics live in pkg/builder, alongside the replay that needs
// them.
package isa

import "github.com/rv0-labs/rv0prove/pkg/opcode"

// Instruction is the decoded form of one RISC-V instruction as produced
// by the host trace. Semantics of OpA/OpB/OpC depend on Opcode's shape:
//
//	R:            (rd, rs1, rs2)           -> (OpA, OpB, OpC)
//	I (ALU/load): (rd, rs1, imm)           -> (OpA, OpB, OpC)
//	S:            (rs2, rs1, imm)          -> (OpA, OpB, OpC)  [reordered]
//	B:            (rs1, rs2, imm)          -> (OpA, OpB, OpC)
//	U, J:         (rd, imm)                -> (OpA, OpC)
type Instruction struct {
	Opcode    opcode.Opcode
	Length    uint64 // 2 or 4 bytes
	OpA       uint64
	OpB       uint64
	OpC       uint64
	ImmB      bool // OpB is an immediate rather than a register index
	ImmC      bool // OpC is an immediate rather than a register index
}

// Shape is a convenience forward to opcode.Classify(i.Opcode).
func (i Instruction) Shape() opcode.Shape {
	return opcode.Classify(i.Opcode)
}
