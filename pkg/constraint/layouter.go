package constraint

import "github.com/rv0-labs/rv0prove/pkg/field"

// Region is a contiguous, gadget-local window into an Assignment. Offsets
// passed to AssignAdvice/AssignFixed/Enable are relative to the region's
// start row; the Layouter translates them to absolute rows.
type Region struct {
	assignment *Assignment
	start      int
	used       int
}

// AssignAdvice writes a witness cell at offset rows into the region.
// name is accepted for parity with the original halo2 call sites
// (`region.assign_advice(|| "lhs", ...)`) where it documents intent in
// trace output; this implementation does not need it for correctness.
func (r *Region) AssignAdvice(name string, c Column, offset int, v field.Element) error {
	r.assignment.setAdvice(c, r.start+offset, v)
	r.track(offset)
	return nil
}

// AssignFixed writes a circuit-baked cell at offset rows into the region.
func (r *Region) AssignFixed(name string, c Column, offset int, v field.Element) error {
	r.assignment.setFixed(c, r.start+offset, v)
	r.track(offset)
	return nil
}

// Enable turns on a selector at offset rows into the region.
func (r *Region) Enable(s Selector, offset int) error {
	r.assignment.enableSelector(s, r.start+offset)
	r.track(offset)
	return nil
}

func (r *Region) track(offset int) {
	if offset+1 > r.used {
		r.used = offset + 1
	}
}

// Offset returns the region's absolute starting row, for gadgets that need
// to record where their step landed (e.g. to cross-reference a PC column
// added later, per the AUIPC open question in the design notes).
func (r *Region) Offset() int {
	return r.start
}

// Layouter places successive regions into non-overlapping row ranges of a
// shared Assignment. The execution table aggregator (pkg/exectable) walks
// op_steps() and hands each step to one gadget, whose Assign calls
// AssignRegion once for that step.
type Layouter struct {
	assignment *Assignment
	next       int
}

// NewLayouter returns a Layouter writing into assignment, starting at row 0.
func NewLayouter(assignment *Assignment) *Layouter {
	return &Layouter{assignment: assignment}
}

// AssignRegion allocates a fresh region starting at the next free row,
// runs fn against it, and advances the cursor past the rows fn touched.
func (l *Layouter) AssignRegion(name string, fn func(r *Region) error) error {
	region := &Region{assignment: l.assignment, start: l.next}
	if err := fn(region); err != nil {
		return err
	}
	l.next += region.used
	if region.used == 0 {
		l.next++
	}
	return nil
}

// Assignment exposes the underlying row store, used by MockProver.
func (l *Layouter) Assignment() *Assignment {
	return l.assignment
}

// ConstrainEqual ties two absolute cells together once both have been
// placed — used by pkg/circuit to bind an execution-table register cell
// to the memory table's logged value for the same step, after both
// tables' regions have been laid out and their row numbers are known.
func (l *Layouter) ConstrainEqual(colA Column, rowA int, colB Column, rowB int) {
	l.assignment.ConstrainEqual(colA, rowA, colB, rowB)
}
