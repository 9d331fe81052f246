// Package circuit is the main circuit: it composes the execution table
// (pkg/exectable) and the memory table (pkg/memtable) into one
// constraint system and declares the two public instances a verifier
// binds a proof to — the program-code vector and the program-input
// vector, both length-prefixed per spec.
package circuit

import (
	"fmt"

	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/exectable"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/memtable"
)

// Main is the top-level circuit. It owns no replay logic of its own; it
// borrows a built EntryBuilder and assigns witness cells from its
// already-replayed operation log.
type Main struct {
	ProgramCode  []uint16
	ProgramInput []byte
	Builder      *builder.EntryBuilder

	codeCol  constraint.Column
	inputCol constraint.Column
	exec     *exectable.Table
	mem      *memtable.Table
}

// NewMain returns a Main ready for Configure + Synthesize (directly, or
// via constraint.Run for a mock-prover round trip).
func NewMain(eb *builder.EntryBuilder, programCode []uint16, programInput []byte) *Main {
	return &Main{Builder: eb, ProgramCode: programCode, ProgramInput: programInput}
}

// Configure allocates the two public-instance columns and wires the
// execution table and memory table. Intended to be passed as the
// configure closure to constraint.Run, or called directly ahead of
// Synthesize by a real proving backend's Keygen step.
func (m *Main) Configure(cs *constraint.ConstraintSystem) {
	m.codeCol = cs.InstanceColumn()
	m.inputCol = cs.InstanceColumn()
	m.exec = exectable.Configure(cs)
	m.mem = memtable.Configure(cs)

	// Every cell a load/store copy constraint will reference must be
	// marked equality-eligible, the same way a halo2 circuit enables
	// equality on a column before calling region.constrain_equal on it.
	cs.EnableEquality(m.exec.Columns.Lhs)
	cs.EnableEquality(m.exec.Columns.Rhs)
	cs.EnableEquality(m.mem.ValueColumn())
}

// Synthesize writes the public instances, then assigns the execution
// table and the memory table in that order, per spec.
func (m *Main) Synthesize(cs *constraint.ConstraintSystem, layouter *constraint.Layouter) error {
	assignment := layouter.Assignment()

	assignment.SetInstance(m.codeCol, 0, field.FromUint64(uint64(len(m.ProgramCode))))
	for i, halfWord := range m.ProgramCode {
		assignment.SetInstance(m.codeCol, i+1, field.FromUint64(uint64(halfWord)))
	}

	assignment.SetInstance(m.inputCol, 0, field.FromUint64(uint64(len(m.ProgramInput))))
	for i, b := range m.ProgramInput {
		assignment.SetInstance(m.inputCol, i+1, field.FromUint64(uint64(b)))
	}

	memCells, err := m.exec.Assign(layouter, m.Builder.OpSteps())
	if err != nil {
		return fmt.Errorf("circuit: execution table: %w", err)
	}
	memRows, err := m.mem.Assign(layouter, m.Builder.Entries().AllMemoryOps())
	if err != nil {
		return fmt.Errorf("circuit: memory table: %w", err)
	}

	// Tie every SD/LD register cell the execution table recorded to the
	// row pkg/memtable logged for the same step — the link review found
	// missing: without it, the two tables are witness-disjoint and a
	// malicious prover could substitute any store/load value.
	for clk, cell := range memCells {
		row, ok := memRows[clk]
		if !ok {
			return fmt.Errorf("circuit: global_clk %d: register cell recorded but no memory table row", clk)
		}
		layouter.ConstrainEqual(cell.Column, cell.Row, m.mem.ValueColumn(), row)
	}
	return nil
}
