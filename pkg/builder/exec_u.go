package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// executeU replays a U-shape step: (rd, imm) -> (OpA, OpC). LUI writes
// the immediate directly; AUIPC writes pc + imm and additionally informs
// Entries of a pc mutation outside the normal sequential/branch/jump
// paths (currently a no-op placeholder — see the AUIPC design note).
func (b *EntryBuilder) executeU(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	switch instr.Opcode {
	case opcode.LUI:
		b.entries.writeRegisterRaw(regs, instr.OpA, instr.OpC)
	case opcode.AUIPC:
		value := pc + instr.OpC
		b.entries.writeRegisterRaw(regs, instr.OpA, value)
		b.entries.updatePCRegister(gc, pc)
	default:
		return 0, newBuildError(gc, "unhandled U-shape opcode: %s", instr.Opcode)
	}
	return pc + instr.Length, nil
}
