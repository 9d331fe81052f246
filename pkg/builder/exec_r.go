package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// executeR replays an R-shape step: (rd, rs1, rs2) -> (OpA, OpB, OpC).
// Reads rs1 then rs2, computes per opcode, writes rd; falls straight
// through to pc + instruction_length.
func (b *EntryBuilder) executeR(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	rs1 := b.entries.readRegisterRaw(regs, instr.OpB)
	rs2 := b.entries.readRegisterRaw(regs, instr.OpC)
	result := computeArith(instr.Opcode, rs1, rs2)
	b.entries.writeRegisterRaw(regs, instr.OpA, result)
	return pc + instr.Length, nil
}
