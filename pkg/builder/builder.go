package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/ops"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/trace"
)

// EntryBuilder folds a Trace into an Entries and the derived op_steps
// sequence the circuit assigns witness cells from. It is the sole
// mutator of Entries; once Build returns successfully, the builder (and
// the Entries it owns) is handed off read-only to the circuit.
type EntryBuilder struct {
	entries *Entries
	steps   []OpStep
}

// NewEntryBuilder returns a builder over a fresh, empty Entries.
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{entries: NewEntries()}
}

// Entries returns the replay state accumulated so far. Call only after
// Build succeeds; the circuit borrows this immutably.
func (b *EntryBuilder) Entries() *Entries {
	return b.entries
}

// Build folds the trace's steps in order, replaying each against the
// shadow register file and memory image. It fails with a *BuildError on
// the first assertion violation, and emits no partial result: op_steps
// only reflects a fully successful build.
func (b *EntryBuilder) Build(tr *trace.Trace) error {
	steps := make([]OpStep, 0, len(tr.Steps))

	for _, step := range tr.Steps {
		gc := step.GlobalClk

		if b.entries.shouldCopyRegisters {
			b.entries.resyncRegisters(step.Registers)
		} else if err := b.entries.checkRegisters(gc, step.Registers); err != nil {
			return err
		}

		if err := b.entries.recordPC(gc, step.PC, step.Instruction); err != nil {
			return err
		}

		regs := &ops.PerStepRegisterOps{GlobalClk: gc}
		nextPC, err := b.dispatch(gc, step.PC, step.Instruction, regs)
		if err != nil {
			return err
		}

		var regPtr *ops.PerStepRegisterOps
		if len(regs.Ops) > 0 {
			b.entries.registerOps[gc] = regs
			regPtr = regs
		}

		var memPtr *ops.MemoryOp
		if m, ok := b.entries.memoryOps[gc]; ok {
			memCopy := m
			memPtr = &memCopy
		}

		steps = append(steps, OpStep{
			GlobalClk:   gc,
			PC:          step.PC,
			NextPC:      nextPC,
			Instruction: step.Instruction,
			RegisterOps: regPtr,
			MemoryOp:    memPtr,
		})
	}

	b.steps = append(b.steps, steps...)
	return nil
}

// dispatch routes a step to its shape's execute function. Within a step,
// operations are emitted reads-before-writes in the per-shape order
// fixed by each executeX function.
func (b *EntryBuilder) dispatch(gc, pc uint64, instr isa.Instruction, regs *ops.PerStepRegisterOps) (uint64, error) {
	switch instr.Shape() {
	case opcode.ShapeR:
		return b.executeR(gc, pc, instr, regs)
	case opcode.ShapeI:
		return b.executeI(gc, pc, instr, regs)
	case opcode.ShapeS:
		return b.executeS(gc, pc, instr, regs)
	case opcode.ShapeB:
		return b.executeB(gc, pc, instr, regs)
	case opcode.ShapeU:
		return b.executeU(gc, pc, instr, regs)
	case opcode.ShapeJ:
		return b.executeJ(gc, pc, instr, regs)
	case opcode.ShapeN:
		return b.executeN(gc, pc, instr, regs)
	default:
		return 0, newBuildError(gc, "unrecognized instruction shape for opcode %s", instr.Opcode)
	}
}
