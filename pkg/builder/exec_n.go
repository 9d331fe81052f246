package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// executeN replays an N-shape (no-operand) step. FENCE is a pure no-op.
// ECALL sets the resync flag: the host may have mutated registers as a
// syscall side effect that replay has no way to compute. EBREAK and
// UNIMP are treated as terminal: a trace that reaches either is
// rejected, on the reasoning that both mark states this core has no
// defined continuation for (see design notes).
func (b *EntryBuilder) executeN(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	switch instr.Opcode {
	case opcode.FENCE:
		return pc + instr.Length, nil
	case opcode.ECALL:
		b.entries.shouldCopyRegisters = true
		return pc + instr.Length, nil
	case opcode.EBREAK:
		return 0, newBuildError(gc, "EBREAK reached: no defined continuation for this trace")
	case opcode.UNIMP:
		return 0, newBuildError(gc, "UNIMP reached: no defined continuation for this trace")
	default:
		return 0, newBuildError(gc, "unhandled N-shape opcode: %s", instr.Opcode)
	}
}
