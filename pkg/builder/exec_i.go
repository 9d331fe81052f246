package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// executeI replays an I-shape step. Three sub-families share the shape
// but diverge in behavior: ALU-immediate, load, and JALR.
func (b *EntryBuilder) executeI(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	if instr.Opcode == opcode.JALR {
		return b.executeJALR(gc, pc, instr, regs)
	}
	if width, signExtend, ok := opcode.LoadWidth(instr.Opcode); ok {
		return b.executeLoad(gc, pc, instr, regs, width, signExtend)
	}
	return b.executeALUImmediate(gc, pc, instr, regs)
}

// executeALUImmediate: read rs1 (OpB), compute with the already
// sign-extended immediate (OpC), write rd (OpA).
func (b *EntryBuilder) executeALUImmediate(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	rs1 := b.entries.readRegisterRaw(regs, instr.OpB)
	result := computeArith(instr.Opcode, rs1, instr.OpC)
	b.entries.writeRegisterRaw(regs, instr.OpA, result)
	return pc + instr.Length, nil
}

// executeLoad: address = rs1 + imm; read memory of the opcode's width;
// set the resync flag, since the loaded value enters rd via a path
// replay cannot compute (the host owns the real memory image for
// anything beyond what this core's own writes populated).
func (b *EntryBuilder) executeLoad(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps, width int, signExtend bool) (uint64, error) {
	rs1 := b.entries.readRegisterRaw(regs, instr.OpB)
	address := rs1 + instr.OpC
	raw, err := b.entries.readMemoryRaw(gc, address, uint8(width))
	if err != nil {
		return 0, err
	}
	value := raw
	if signExtend {
		value = signExtendToWidth(raw, width)
	}
	b.entries.writeRegisterRaw(regs, instr.OpA, value)
	b.entries.shouldCopyRegisters = true
	return pc + instr.Length, nil
}

// executeJALR: write rd = pc + instruction_length; next pc = rs1 + imm.
func (b *EntryBuilder) executeJALR(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	rs1 := b.entries.readRegisterRaw(regs, instr.OpB)
	b.entries.writeRegisterRaw(regs, instr.OpA, pc+instr.Length)
	return rs1 + instr.OpC, nil
}

// signExtendToWidth replicates the sign bit of an N-bit loaded value
// into the remaining high bits of a 64-bit word.
func signExtendToWidth(v uint64, width int) uint64 {
	switch width {
	case 8:
		return uint64(int64(int8(v)))
	case 16:
		return uint64(int64(int16(v)))
	case 32:
		return uint64(int64(int32(v)))
	default:
		return v
	}
}
