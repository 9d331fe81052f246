package builder

import (
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// OpStep is one entry of the builder's output: everything the constraint
// system needs to assign witness cells for a single trace step, without
// reaching back into Entries' internal buffers.
type OpStep struct {
	GlobalClk   uint64
	PC          uint64
	NextPC      uint64
	Instruction isa.Instruction
	RegisterOps *ops.PerStepRegisterOps // nil if the step logged no register ops
	MemoryOp    *ops.MemoryOp           // nil if the step logged no memory op
}

// OpSteps returns every step's operation-log entry, in step order. It is
// the sole read surface the circuit needs from a built Entries.
func (b *EntryBuilder) OpSteps() []OpStep {
	return b.steps
}
