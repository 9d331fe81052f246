package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// executeJ replays a J-shape step: (rd, imm) -> (OpA, OpC). JAL writes
// rd = pc + instruction_length, then jumps to pc + imm.
func (b *EntryBuilder) executeJ(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	b.entries.writeRegisterRaw(regs, instr.OpA, pc+instr.Length)
	return pc + instr.OpC, nil
}
