// Package exectable is the execution table: the single constraint-system
// component every RV64IM-subset step lands a region in. It owns the
// shared lhs/rhs/step_start columns, wires every per-shape gadget's
// Configure call against them, and ties the whole family together with
// the Sigma-selectors=1 gate — on any row where a step starts, exactly
// one opcode's selector may be active.
package exectable

import (
	"fmt"

	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/gadget/btype"
	"github.com/rv0-labs/rv0prove/pkg/gadget/common"
	"github.com/rv0-labs/rv0prove/pkg/gadget/itype"
	"github.com/rv0-labs/rv0prove/pkg/gadget/jtype"
	"github.com/rv0-labs/rv0prove/pkg/gadget/ntype"
	"github.com/rv0-labs/rv0prove/pkg/gadget/rtype"
	"github.com/rv0-labs/rv0prove/pkg/gadget/stype"
	"github.com/rv0-labs/rv0prove/pkg/gadget/utype"
)

// gadget is the narrow surface every per-shape gadget package satisfies.
// Assign returns handled=false for any step outside the gadget's opcode
// set, letting Table try the next one.
type gadget interface {
	Assign(layouter *constraint.Layouter, step builder.OpStep) (bool, error)
}

// memCellSource is satisfied by the gadgets (itype, stype) that record a
// load/store value cell the memory table's logged value must match.
type memCellSource interface {
	MemCells() map[uint64]common.MemCell
}

// Table is the configured, assignable execution table.
type Table struct {
	Columns common.Columns
	gadgets []gadget
}

// Configure allocates the shared column set, wires every shape gadget,
// and registers the Sigma-selectors=1 gate.
func Configure(cs *constraint.ConstraintSystem) *Table {
	cols := common.Columns{
		Lhs:       cs.AdviceColumn(),
		Rhs:       cs.AdviceColumn(),
		StepStart: cs.FixedColumn(),
	}

	t := &Table{Columns: cols}
	var allSelectors []constraint.Selector
	wire := func(g gadget, sels []constraint.Selector) {
		t.gadgets = append(t.gadgets, g)
		allSelectors = append(allSelectors, sels...)
	}

	rg, rsels := rtype.Configure(cs, cols)
	wire(rg, rsels)
	ig, isels := itype.Configure(cs, cols)
	wire(ig, isels)
	sg, ssels := stype.Configure(cs, cols)
	wire(sg, ssels)
	bg, bsels := btype.Configure(cs, cols)
	wire(bg, bsels)
	ug, usels := utype.Configure(cs, cols)
	wire(ug, usels)
	jg, jsels := jtype.Configure(cs, cols)
	wire(jg, jsels)
	ng, nsels := ntype.Configure(cs, cols)
	wire(ng, nsels)

	cs.CreateGate("exectable/sigma-selectors", func(b *constraint.GateBuilder) []constraint.Expression {
		start := b.QueryFixed(cols.StepStart, constraint.Cur)
		sum := constraint.Const(field.Zero())
		for _, s := range allSelectors {
			sum = sum.Add(b.QuerySelector(s))
		}
		one := constraint.Const(field.One())
		return []constraint.Expression{start.Mul(sum.Sub(one))}
	})

	return t
}

// Assign dispatches every step to the gadget owning its opcode. Steps
// must be handled by exactly one gadget; an opcode with no registered
// gadget is a configuration bug, surfaced as an error rather than a
// silently-dropped row. It returns the merged load/store value cells
// every memCellSource gadget recorded, keyed by global_clk, for
// pkg/circuit to copy-constrain against the memory table.
func (t *Table) Assign(layouter *constraint.Layouter, steps []builder.OpStep) (map[uint64]common.MemCell, error) {
	for _, step := range steps {
		handled := false
		for _, g := range t.gadgets {
			ok, err := g.Assign(layouter, step)
			if err != nil {
				return nil, fmt.Errorf("exectable: global_clk %d: %w", step.GlobalClk, err)
			}
			if ok {
				handled = true
				break
			}
		}
		if !handled {
			return nil, fmt.Errorf("exectable: global_clk %d: opcode %s has no registered gadget",
				step.GlobalClk, step.Instruction.Opcode)
		}
	}

	cells := make(map[uint64]common.MemCell)
	for _, g := range t.gadgets {
		src, ok := g.(memCellSource)
		if !ok {
			continue
		}
		for clk, cell := range src.MemCells() {
			cells[clk] = cell
		}
	}
	return cells, nil
}
