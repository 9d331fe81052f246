package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// executeB replays a B-shape step: (rs1, rs2, imm) -> (OpA, OpB, OpC).
// Reads rs1 (OpA) then rs2 (OpB) — consistent with every other
// two-register shape except S. Evaluates the branch predicate and picks
// the next pc.
func (b *EntryBuilder) executeB(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	rs1 := b.entries.readRegisterRaw(regs, instr.OpA)
	rs2 := b.entries.readRegisterRaw(regs, instr.OpB)

	taken, err := evalBranch(gc, instr.Opcode, rs1, rs2)
	if err != nil {
		return 0, err
	}
	if taken {
		return pc + instr.OpC, nil
	}
	return pc + instr.Length, nil
}

func evalBranch(gc uint64, op opcode.Opcode, rs1, rs2 uint64) (bool, error) {
	switch op {
	case opcode.BEQ:
		return rs1 == rs2, nil
	case opcode.BNE:
		return rs1 != rs2, nil
	case opcode.BLT:
		return int64(rs1) < int64(rs2), nil
	case opcode.BGE:
		return int64(rs1) >= int64(rs2), nil
	case opcode.BLTU:
		return rs1 < rs2, nil
	case opcode.BGEU:
		return rs1 >= rs2, nil
	default:
		return false, newBuildError(gc, "not a branch opcode: %s", op)
	}
}
