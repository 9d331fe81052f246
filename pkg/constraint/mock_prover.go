package constraint

import (
	"fmt"

	"github.com/rv0-labs/rv0prove/pkg/field"
)

// UnsatisfiedConstraint names a gate/row where a polynomial failed to
// vanish, analogous to the halo2 MockProver's VerifyFailure::ConstraintNotSatisfied.
type UnsatisfiedConstraint struct {
	Gate string
	Row  int
	Poly int
}

func (e *UnsatisfiedConstraint) Error() string {
	return fmt.Sprintf("constraint %q (poly %d) not satisfied at row %d", e.Gate, e.Poly, e.Row)
}

// UnsatisfiedEquality names a copy-constrained pair of cells whose
// witnessed values disagree — e.g. a store's logged register value
// doesn't match what pkg/memtable recorded for the same step.
type UnsatisfiedEquality struct {
	A, B CellRef
}

func (e *UnsatisfiedEquality) Error() string {
	return fmt.Sprintf("copy constraint violated: %+v != %+v", e.A, e.B)
}

// Synthesizable is implemented by a circuit that can configure a
// ConstraintSystem and assign a Layouter — pkg/circuit.Main is the sole
// implementation in this module.
type Synthesizable interface {
	Synthesize(cs *ConstraintSystem, layouter *Layouter) error
}

// Run configures circuit against a fresh ConstraintSystem, lets it
// synthesize its own witness into a fresh Assignment, then evaluates every
// registered gate on every used row. It returns every unsatisfied
// constraint found; an empty slice means the circuit is satisfied, the
// mock-prover round trip Testable Property 5 asks for.
func Run(configure func(cs *ConstraintSystem), synth Synthesizable) ([]error, error) {
	cs := NewConstraintSystem()
	configure(cs)

	assignment := NewAssignment(cs)
	layouter := NewLayouter(assignment)
	if err := synth.Synthesize(cs, layouter); err != nil {
		return nil, err
	}
	return Evaluate(cs, assignment), nil
}

// Evaluate checks every gate registered on cs against every row assignment
// has touched, returning one *UnsatisfiedConstraint per failing
// (gate, row, polynomial) triple. pkg/backend's MockBackend reuses this
// directly: it is the same check a real backend's Prove/Verify pair
// performs, just without a polynomial commitment wrapped around it.
func Evaluate(cs *ConstraintSystem, assignment *Assignment) []error {
	var failures []error
	for _, gate := range cs.Gates() {
		for row := 0; row < assignment.NumRows(); row++ {
			row := row
			for polyIdx, poly := range gate.Polys {
				v := poly.evaluate(
					func(c Column, r Rotation) field.Element {
						return assignment.Get(c, row+int(r))
					},
					func(s Selector) bool {
						return assignment.SelectorEnabled(s, row)
					},
				)
				if !v.IsZero() {
					failures = append(failures, &UnsatisfiedConstraint{Gate: gate.Name, Row: row, Poly: polyIdx})
				}
			}
		}
	}
	for _, eq := range assignment.equalities {
		va := assignment.Get(eq.A.Column, eq.A.Row)
		vb := assignment.Get(eq.B.Column, eq.B.Row)
		if !va.Equal(vb) {
			failures = append(failures, &UnsatisfiedEquality{A: eq.A, B: eq.B})
		}
	}
	return failures
}
