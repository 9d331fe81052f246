package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// executeS replays an S-shape step. Note the reordered operand
// convention: (rs2, rs1, imm) -> (OpA, OpB, OpC). Reads are logged rs2
// then rs1 — the reverse of every other two-register shape — and that
// ordering is preserved deliberately, not silently normalized to
// rs1-then-rs2 (see the design notes on this divergence).
func (b *EntryBuilder) executeS(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	rs2 := b.entries.readRegisterRaw(regs, instr.OpA)
	rs1 := b.entries.readRegisterRaw(regs, instr.OpB)
	address := rs1 + instr.OpC

	width, ok := opcode.StoreWidth(instr.Opcode)
	if !ok {
		return 0, newBuildError(gc, "S-shape opcode %s has no store width", instr.Opcode)
	}
	value := truncateToWidth(rs2, width)
	if err := b.entries.writeMemoryRaw(gc, address, value, uint8(width)); err != nil {
		return 0, err
	}
	return pc + instr.Length, nil
}

func truncateToWidth(v uint64, width int) uint64 {
	switch width {
	case 8:
		return v & 0xFF
	case 16:
		return v & 0xFFFF
	case 32:
		return v & 0xFFFFFFFF
	default:
		return v
	}
}
