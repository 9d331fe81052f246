// Package memtable is the memory consistency table: every logged memory
// operation gets one row, sorted by (address, global_clk) the way the
// original core's memory argument requires, and two gates enforce RAM
// semantics over that ordering — a fresh address's first access, if a
// READ, must observe zero, and a READ at an address already touched
// this run must observe the value the most recent operation left there.
// Widths are not merged across overlapping addresses: each operation is
// checked against the exact address it logged, not a byte range, the
// same simplification pkg/gadget/stype documents for stored-value width.
package memtable

import (
	"sort"

	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// Table is the configured, assignable memory consistency table.
type Table struct {
	address   constraint.Column
	globalClk constraint.Column
	value     constraint.Column
	rw        constraint.Column // 0=READ, 1=WRITE
	addrInv   constraint.Column
	addrSame  constraint.Column // boolean witness: address[cur] == address[prev]
	valid     constraint.Column // fixed: 1 on every row this table assigned, 0 elsewhere
}

// Configure allocates the table's columns and registers its gates.
func Configure(cs *constraint.ConstraintSystem) *Table {
	t := &Table{
		address:   cs.AdviceColumn(),
		globalClk: cs.AdviceColumn(),
		value:     cs.AdviceColumn(),
		rw:        cs.AdviceColumn(),
		addrInv:   cs.AdviceColumn(),
		addrSame:  cs.AdviceColumn(),
		valid:     cs.FixedColumn(),
	}

	cs.CreateGate("memtable/rw-bool", func(b *constraint.GateBuilder) []constraint.Expression {
		v := b.QueryFixed(t.valid, constraint.Cur)
		rw := b.QueryAdvice(t.rw, constraint.Cur)
		one := constraint.Const(field.One())
		return []constraint.Expression{v.Mul(rw.Mul(rw.Sub(one)))}
	})

	// addrSame is the is-zero witness of (address[cur] - address[prev]),
	// the same inverse trick pkg/gadget/btype uses for BEQ/BNE.
	cs.CreateGate("memtable/addr-same/absorb", func(b *constraint.GateBuilder) []constraint.Expression {
		v := b.QueryFixed(t.valid, constraint.Cur)
		diff := b.QueryAdvice(t.address, constraint.Cur).Sub(b.QueryAdvice(t.address, constraint.Prev))
		same := b.QueryAdvice(t.addrSame, constraint.Cur)
		return []constraint.Expression{v.Mul(diff.Mul(same))}
	})
	cs.CreateGate("memtable/addr-same/pin", func(b *constraint.GateBuilder) []constraint.Expression {
		v := b.QueryFixed(t.valid, constraint.Cur)
		diff := b.QueryAdvice(t.address, constraint.Cur).Sub(b.QueryAdvice(t.address, constraint.Prev))
		same := b.QueryAdvice(t.addrSame, constraint.Cur)
		inv := b.QueryAdvice(t.addrInv, constraint.Cur)
		one := constraint.Const(field.One())
		return []constraint.Expression{v.Mul(one.Sub(same).Sub(diff.Mul(inv)))}
	})

	// continuation = valid[prev] * addrSame: true only when there really
	// was a previous row in this table and it shares this row's address.
	// At the table's own first row, valid[prev]=0 (the row above belongs
	// to whatever table the layouter placed before this one), so
	// continuation is 0 there regardless of addrSame — correctly treating
	// that row as a fresh address.
	cs.CreateGate("memtable/continuity", func(b *constraint.GateBuilder) []constraint.Expression {
		v := b.QueryFixed(t.valid, constraint.Cur)
		vPrev := b.QueryFixed(t.valid, constraint.Prev)
		same := b.QueryAdvice(t.addrSame, constraint.Cur)
		rw := b.QueryAdvice(t.rw, constraint.Cur)
		one := constraint.Const(field.One())
		isRead := one.Sub(rw)
		continuation := vPrev.Mul(same)

		value := b.QueryAdvice(t.value, constraint.Cur)
		prevValue := b.QueryAdvice(t.value, constraint.Prev)

		// Fresh address, READ: value must be zero.
		freshReadZero := v.Mul(one.Sub(continuation)).Mul(isRead).Mul(value)
		// Continued address, READ: value must match the previous op's.
		continuedReadMatch := v.Mul(continuation).Mul(isRead).Mul(value.Sub(prevValue))

		return []constraint.Expression{freshReadZero, continuedReadMatch}
	})

	return t
}

// ValueColumn returns the column holding each row's logged memory value,
// for pkg/circuit to copy-constrain against an execution-table cell.
func (t *Table) ValueColumn() constraint.Column {
	return t.value
}

// Assign sorts memOps by (address, global_clk) and writes one row per
// operation. Sorting is stable so operations sharing a (address,
// global_clk) pair (impossible in a well-formed trace, at most one memory
// op per step) keep their input order rather than being silently reordered.
// It returns each operation's absolute row, keyed by global_clk, so
// pkg/circuit can tie an execution-table register cell to the row logging
// the same step's memory access.
func (t *Table) Assign(layouter *constraint.Layouter, memOps []ops.MemoryOp) (map[uint64]int, error) {
	sorted := make([]ops.MemoryOp, len(memOps))
	copy(sorted, memOps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Address != sorted[j].Address {
			return sorted[i].Address < sorted[j].Address
		}
		return sorted[i].GlobalClk < sorted[j].GlobalClk
	})

	rows := make(map[uint64]int, len(sorted))
	// The gates read address[prev] on every row, including this table's
	// first, where the cell above is unassigned and therefore zero; the
	// is-zero witness is computed against that same zero.
	var prevAddress uint64
	for _, op := range sorted {
		op := op
		err := layouter.AssignRegion("memtable", func(r *constraint.Region) error {
			rows[op.GlobalClk] = r.Offset()
			if err := r.AssignAdvice("address", t.address, 0, field.FromUint64(op.Address)); err != nil {
				return err
			}
			if err := r.AssignAdvice("global_clk", t.globalClk, 0, field.FromUint64(op.GlobalClk)); err != nil {
				return err
			}
			if err := r.AssignAdvice("value", t.value, 0, field.FromUint64(op.Value)); err != nil {
				return err
			}
			if err := r.AssignAdvice("rw", t.rw, 0, field.Bool(op.RW == ops.WRITE)); err != nil {
				return err
			}
			if err := r.AssignFixed("valid", t.valid, 0, field.One()); err != nil {
				return err
			}

			same := op.Address == prevAddress
			diff := field.FromUint64(op.Address).Sub(field.FromUint64(prevAddress))
			inv := field.Zero()
			if !diff.IsZero() {
				inv = diff.Inverse()
			}
			if err := r.AssignAdvice("addrSame", t.addrSame, 0, field.Bool(same)); err != nil {
				return err
			}
			return r.AssignAdvice("addrInv", t.addrInv, 0, inv)
		})
		if err != nil {
			return nil, err
		}
		prevAddress = op.Address
	}
	return rows, nil
}
