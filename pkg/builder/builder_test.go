package builder

import (
	"testing"

	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/ops"
	"github.com/rv0-labs/rv0prove/pkg/trace"
)

func buildOneStep(t *testing.T, step trace.Step) *EntryBuilder {
	t.Helper()
	b := NewEntryBuilder()
	tr := &trace.Trace{Steps: []trace.Step{step}}
	if err := b.Build(tr); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b
}

// TestS1AddNonZeroRegisters is the interface spec's literal S1 scenario.
func TestS1AddNonZeroRegisters(t *testing.T) {
	regs := [32]uint64{}
	regs[2] = 494288

	step := trace.Step{
		GlobalClk: 0,
		PC:        65772,
		Instruction: isa.Instruction{
			Opcode: opcode.ADD, Length: 4, OpA: 31, OpB: 1, OpC: 3,
		},
		Registers: regs,
	}

	b := buildOneStep(t, step)
	perStep, ok := b.Entries().RegisterOps(0)
	if !ok {
		t.Fatal("expected register ops logged at gc=0")
	}
	want := []ops.RegisterOp{
		{GlobalClk: 0, Rwc: 0, RW: ops.READ, Index: 1, Value: 0},
		{GlobalClk: 0, Rwc: 1, RW: ops.READ, Index: 3, Value: 0},
		{GlobalClk: 0, Rwc: 2, RW: ops.WRITE, Index: 31, Value: 0},
	}
	if len(perStep.Ops) != len(want) {
		t.Fatalf("got %d ops, want %d: %+v", len(perStep.Ops), len(want), perStep.Ops)
	}
	for i, op := range want {
		if perStep.Ops[i] != op {
			t.Errorf("op[%d] = %+v, want %+v", i, perStep.Ops[i], op)
		}
	}
}

// TestS2ADDIOverflow: ADDI with rs1 = 0xFFFF...FFFE, imm = 5, wraps to 3.
func TestS2ADDIOverflow(t *testing.T) {
	regs := [32]uint64{}
	regs[5] = 0xFFFFFFFFFFFFFFFE

	step := trace.Step{
		GlobalClk: 0,
		PC:        0,
		Instruction: isa.Instruction{
			Opcode: opcode.ADDI, Length: 4, OpA: 6, OpB: 5, OpC: 5,
		},
		Registers: regs,
	}

	b := buildOneStep(t, step)
	perStep, _ := b.Entries().RegisterOps(0)
	v, ok := perStep.Write(6)
	if !ok || v != 3 {
		t.Fatalf("WRITE(x6) = %d, ok=%v; want 3", v, ok)
	}
}

// TestS3StoreLoadRoundTrip: SD then LD from the same address returns
// the stored value.
func TestS3StoreLoadRoundTrip(t *testing.T) {
	const addr = 0x10000
	const val = 0xDEADBEEFCAFEBABE

	sdRegs := [32]uint64{}
	sdRegs[1] = addr // rs1 (base)
	sdRegs[2] = val  // rs2 (value to store)

	sdStep := trace.Step{
		GlobalClk: 0, PC: 0,
		Instruction: isa.Instruction{Opcode: opcode.SD, Length: 4, OpA: 2, OpB: 1, OpC: 0},
		Registers:   sdRegs,
	}

	b := NewEntryBuilder()
	ldRegs := sdRegs // unchanged except the resync from the load below
	ldStep := trace.Step{
		GlobalClk: 1, PC: 4,
		Instruction: isa.Instruction{Opcode: opcode.LD, Length: 4, OpA: 3, OpB: 1, OpC: 0},
		Registers:   ldRegs,
	}

	tr := &trace.Trace{Steps: []trace.Step{sdStep, ldStep}}
	if err := b.Build(tr); err != nil {
		t.Fatalf("Build: %v", err)
	}

	sdMem, ok := b.Entries().MemoryOps(0)
	if !ok || sdMem.RW != ops.WRITE || sdMem.Value != val {
		t.Fatalf("SD memory op = %+v", sdMem)
	}
	ldMem, ok := b.Entries().MemoryOps(1)
	if !ok || ldMem.RW != ops.READ || ldMem.Value != val {
		t.Fatalf("LD memory op = %+v, want value %d", ldMem, uint64(val))
	}
}

// TestS4DivideByZero covers DIVU and REMU by zero.
func TestS4DivideByZero(t *testing.T) {
	regs := [32]uint64{}
	regs[1] = 42 // rs1
	regs[2] = 0  // rs2

	divuStep := trace.Step{
		GlobalClk: 0, PC: 0,
		Instruction: isa.Instruction{Opcode: opcode.DIVU, Length: 4, OpA: 3, OpB: 1, OpC: 2},
		Registers:   regs,
	}
	b := buildOneStep(t, divuStep)
	perStep, _ := b.Entries().RegisterOps(0)
	v, _ := perStep.Write(3)
	if v != ^uint64(0) {
		t.Errorf("DIVU by zero = %d, want all-ones", v)
	}

	remuStep := trace.Step{
		GlobalClk: 0, PC: 0,
		Instruction: isa.Instruction{Opcode: opcode.REMU, Length: 4, OpA: 3, OpB: 1, OpC: 2},
		Registers:   regs,
	}
	b2 := buildOneStep(t, remuStep)
	perStep2, _ := b2.Entries().RegisterOps(0)
	v2, _ := perStep2.Write(3)
	if v2 != 42 {
		t.Errorf("REMU by zero = %d, want dividend 42", v2)
	}
}

// TestS5X0WritesAreSuppressed: a WRITE to x0 never mutates the shadow.
func TestS5X0WritesAreSuppressed(t *testing.T) {
	regs := [32]uint64{}
	regs[1] = 7
	regs[2] = 8

	step := trace.Step{
		GlobalClk: 0, PC: 0,
		Instruction: isa.Instruction{Opcode: opcode.ADD, Length: 4, OpA: 0, OpB: 1, OpC: 2},
		Registers:   regs,
	}
	b := buildOneStep(t, step)

	// A subsequent step reading x0 must still observe 0.
	readStep := trace.Step{
		GlobalClk: 1, PC: 4,
		Instruction: isa.Instruction{Opcode: opcode.ADDI, Length: 4, OpA: 3, OpB: 0, OpC: 0},
		Registers:   regs,
	}
	if err := b.Build(&trace.Trace{Steps: []trace.Step{readStep}}); err != nil {
		t.Fatalf("Build second step: %v", err)
	}
	perStep, _ := b.Entries().RegisterOps(1)
	v, ok := perStep.Read(0)
	if !ok || v != 0 {
		t.Errorf("READ(x0) after a WRITE to x0 = %d, ok=%v; want 0", v, ok)
	}
}

// TestS6BranchTakenVsNotTaken covers BEQ in both directions.
func TestS6BranchTakenVsNotTaken(t *testing.T) {
	regsEqual := [32]uint64{}
	regsEqual[1], regsEqual[2] = 5, 5

	taken := trace.Step{
		GlobalClk: 0, PC: 100,
		Instruction: isa.Instruction{Opcode: opcode.BEQ, Length: 4, OpA: 1, OpB: 2, OpC: 16},
		Registers:   regsEqual,
	}
	b := buildOneStep(t, taken)
	if got := b.OpSteps()[0].NextPC; got != 116 {
		t.Errorf("BEQ taken next pc = %d, want 116", got)
	}

	regsDiff := [32]uint64{}
	regsDiff[1], regsDiff[2] = 5, 6
	notTaken := trace.Step{
		GlobalClk: 0, PC: 100,
		Instruction: isa.Instruction{Opcode: opcode.BEQ, Length: 4, OpA: 1, OpB: 2, OpC: 16},
		Registers:   regsDiff,
	}
	b2 := buildOneStep(t, notTaken)
	if got := b2.OpSteps()[0].NextPC; got != 104 {
		t.Errorf("BEQ not-taken next pc = %d, want 104", got)
	}
}

// TestRegisterSnapshotMismatchIsFatal covers the I2 consistency check: a
// non-resync step whose snapshot disagrees with the shadow is rejected.
func TestRegisterSnapshotMismatchIsFatal(t *testing.T) {
	b := NewEntryBuilder()
	first := trace.Step{
		GlobalClk: 0, PC: 0,
		Instruction: isa.Instruction{Opcode: opcode.ADDI, Length: 4, OpA: 1, OpB: 0, OpC: 5},
	}
	if err := b.Build(&trace.Trace{Steps: []trace.Step{first}}); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	// Second step's snapshot doesn't reflect x1=5 written above, and no
	// resync condition (load/ecall) occurred — this must be fatal.
	bogus := trace.Step{
		GlobalClk: 1, PC: 4,
		Instruction: isa.Instruction{Opcode: opcode.ADDI, Length: 4, OpA: 2, OpB: 1, OpC: 0},
	}
	err := b.Build(&trace.Trace{Steps: []trace.Step{bogus}})
	if err == nil {
		t.Fatal("expected a BuildError for a register snapshot mismatch")
	}
	if _, ok := err.(*BuildError); !ok {
		t.Errorf("expected *BuildError, got %T", err)
	}
}

// TestPCInstructionDisagreementIsFatal covers the pc -> instruction
// idempotence check.
func TestPCInstructionDisagreementIsFatal(t *testing.T) {
	b := NewEntryBuilder()
	steps := []trace.Step{
		{GlobalClk: 0, PC: 100, Instruction: isa.Instruction{Opcode: opcode.ADDI, Length: 4, OpA: 1, OpB: 0, OpC: 1}},
		{GlobalClk: 1, PC: 100, Instruction: isa.Instruction{Opcode: opcode.ADDI, Length: 4, OpA: 1, OpB: 0, OpC: 2}, Registers: [32]uint64{0: 0, 1: 1}},
	}
	err := b.Build(&trace.Trace{Steps: steps})
	if err == nil {
		t.Fatal("expected a BuildError for a pc->instruction disagreement")
	}
}

// TestOutOfRangeMemoryAccessIsFatal covers the memory-bounds check.
func TestOutOfRangeMemoryAccessIsFatal(t *testing.T) {
	regs := [32]uint64{}
	regs[1] = MemoryBytes // one byte past the end of memory
	step := trace.Step{
		GlobalClk: 0, PC: 0,
		Instruction: isa.Instruction{Opcode: opcode.LB, Length: 4, OpA: 2, OpB: 1, OpC: 0},
		Registers:   regs,
	}
	b := NewEntryBuilder()
	err := b.Build(&trace.Trace{Steps: []trace.Step{step}})
	if err == nil {
		t.Fatal("expected a BuildError for an out-of-range memory access")
	}
}
