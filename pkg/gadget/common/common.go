// Package common holds the shared column layout and gate templates every
// per-shape gadget package builds on. All shapes reuse the same two advice
// columns (lhs, rhs) across a two-row region; what each shape writes into
// those three addressable cells (lhs@row, rhs@row, lhs@row+1) is shape
// specific and documented in the owning package.
package common

import (
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
)

// Columns is the shared column set every opcode gadget builds on. A
// gadget never allocates its own lhs/rhs/StepStart column; the exectable
// aggregator allocates them once and hands the same set to every
// Configure call.
type Columns struct {
	Lhs constraint.Column
	Rhs constraint.Column
	// StepStart is a fixed marker column: every gadget's Assign sets it
	// to 1 at its region's first row and leaves it 0 elsewhere (including
	// the row+1 output slot most shapes use). The exectable aggregator's
	// Sigma-selectors=1 gate is scoped by this column, since a raw,
	// unconditional "exactly one selector fires" would also have to hold
	// on output rows, where no selector is ever enabled.
	StepStart constraint.Column
}

// AddOverflow registers "sel * (lhs + rhs - out - carry*2^64) = 0" plus a
// companion booleanity gate on carry, at the given selector. carry is a
// fresh advice column local to the caller (bit modeling a 64-bit wrap).
func AddOverflow(cs *constraint.ConstraintSystem, name string, sel constraint.Selector, cols Columns, carry constraint.Column) {
	two64 := field.Pow64()
	cs.CreateGate(name, func(g *constraint.GateBuilder) []constraint.Expression {
		s := g.QuerySelector(sel)
		lhs := g.QueryAdvice(cols.Lhs, constraint.Cur)
		rhs := g.QueryAdvice(cols.Rhs, constraint.Cur)
		out := g.QueryAdvice(cols.Lhs, constraint.Next)
		c := g.QueryAdvice(carry, constraint.Cur)
		identity := lhs.Add(rhs).Sub(out).Sub(c.Mul(constraint.Const(two64)))
		return []constraint.Expression{s.Mul(identity)}
	})
	cs.CreateGate(name+"/carry-bool", func(g *constraint.GateBuilder) []constraint.Expression {
		s := g.QuerySelector(sel)
		c := g.QueryAdvice(carry, constraint.Cur)
		return []constraint.Expression{s.Mul(c.Mul(c.Sub(constraint.Const(field.FromUint64(1)))))}
	})
}

// SubBorrow registers "sel * (lhs - rhs - out + borrow*2^64) = 0" plus a
// booleanity companion, the mirror of AddOverflow for subtraction.
func SubBorrow(cs *constraint.ConstraintSystem, name string, sel constraint.Selector, cols Columns, borrow constraint.Column) {
	two64 := field.Pow64()
	cs.CreateGate(name, func(g *constraint.GateBuilder) []constraint.Expression {
		s := g.QuerySelector(sel)
		lhs := g.QueryAdvice(cols.Lhs, constraint.Cur)
		rhs := g.QueryAdvice(cols.Rhs, constraint.Cur)
		out := g.QueryAdvice(cols.Lhs, constraint.Next)
		bw := g.QueryAdvice(borrow, constraint.Cur)
		identity := lhs.Sub(rhs).Sub(out).Add(bw.Mul(constraint.Const(two64)))
		return []constraint.Expression{s.Mul(identity)}
	})
	cs.CreateGate(name+"/borrow-bool", func(g *constraint.GateBuilder) []constraint.Expression {
		s := g.QuerySelector(sel)
		bw := g.QueryAdvice(borrow, constraint.Cur)
		return []constraint.Expression{s.Mul(bw.Mul(bw.Sub(constraint.Const(field.FromUint64(1)))))}
	})
}

// MemCell names an absolute (column, row) cell inside a gadget's own
// region that a copy constraint ties to the memory table's logged value
// for the same step — the load/store half of the link; pkg/memtable
// supplies the other half. Only opcodes whose register-side value is
// exactly the memory-table value (no width truncation or sign extension
// in between) can be linked this way; see pkg/gadget/stype and
// pkg/gadget/itype for which opcodes qualify.
type MemCell struct {
	Column constraint.Column
	Row    int
}

// MarkStepStart stamps cols.StepStart with 1 at a region's first row.
// Every shape gadget's Assign calls this once per region so the
// exectable aggregator's Sigma-selectors=1 gate knows which rows to check.
func MarkStepStart(r *constraint.Region, cols Columns) error {
	return r.AssignFixed("step_start", cols.StepStart, 0, field.One())
}

// Booleanity registers "sel * bit * (1 - bit) = 0".
func Booleanity(cs *constraint.ConstraintSystem, name string, sel constraint.Selector, bit constraint.Column) {
	cs.CreateGate(name, func(g *constraint.GateBuilder) []constraint.Expression {
		s := g.QuerySelector(sel)
		b := g.QueryAdvice(bit, constraint.Cur)
		return []constraint.Expression{s.Mul(b.Mul(b.Sub(constraint.Const(field.FromUint64(1)))))}
	})
}
