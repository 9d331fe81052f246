package constraint

import (
	"testing"

	"github.com/rv0-labs/rv0prove/pkg/field"
)

// addCircuit is a minimal two-row circuit: lhs + rhs - out = 0, used to
// exercise the gate/assignment/mock-prover plumbing before any real
// instruction gadget is layered on top.
type addCircuit struct {
	lhs, rhs, out int64
	col0, col1    Column
	sel           Selector
}

func (c *addCircuit) configure(cs *ConstraintSystem) {
	c.col0 = cs.AdviceColumn()
	c.col1 = cs.AdviceColumn()
	c.sel = cs.Selector()
	cs.EnableEquality(c.col0)
	cs.EnableEquality(c.col1)
	cs.CreateGate("add", func(b *GateBuilder) []Expression {
		lhs := b.QueryAdvice(c.col0, Cur)
		rhs := b.QueryAdvice(c.col1, Cur)
		out := b.QueryAdvice(c.col0, Next)
		s := b.QuerySelector(c.sel)
		return []Expression{s.Mul(lhs.Add(rhs).Sub(out))}
	})
}

func (c *addCircuit) Synthesize(cs *ConstraintSystem, layouter *Layouter) error {
	return layouter.AssignRegion("add", func(r *Region) error {
		if err := r.Enable(c.sel, 0); err != nil {
			return err
		}
		if err := r.AssignAdvice("lhs", c.col0, 0, field.FromInt64(c.lhs)); err != nil {
			return err
		}
		if err := r.AssignAdvice("rhs", c.col1, 0, field.FromInt64(c.rhs)); err != nil {
			return err
		}
		return r.AssignAdvice("out", c.col0, 1, field.FromInt64(c.out))
	})
}

func TestMockProverAcceptsSatisfiedGate(t *testing.T) {
	circuit := &addCircuit{lhs: 100, rhs: 20, out: 120}
	failures, err := Run(circuit.configure, circuit)
	if err != nil {
		t.Fatalf("synth error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no unsatisfied constraints, got %v", failures)
	}
}

func TestMockProverRejectsUnsatisfiedGate(t *testing.T) {
	circuit := &addCircuit{lhs: 100, rhs: 20, out: 121}
	failures, err := Run(circuit.configure, circuit)
	if err != nil {
		t.Fatalf("synth error: %v", err)
	}
	if len(failures) == 0 {
		t.Fatal("expected an unsatisfied constraint for a wrong output")
	}
}

// copyCircuit assigns two independent cells and optionally ties them
// together with ConstrainEqual, the way pkg/circuit links a store/load
// register cell to pkg/memtable's logged value for the same step.
type copyCircuit struct {
	a, b  int64
	link  bool
	colA  Column
	colB  Column
}

func (c *copyCircuit) configure(cs *ConstraintSystem) {
	c.colA = cs.AdviceColumn()
	c.colB = cs.AdviceColumn()
	cs.EnableEquality(c.colA)
	cs.EnableEquality(c.colB)
}

func (c *copyCircuit) Synthesize(cs *ConstraintSystem, layouter *Layouter) error {
	err := layouter.AssignRegion("copy", func(r *Region) error {
		if err := r.AssignAdvice("a", c.colA, 0, field.FromInt64(c.a)); err != nil {
			return err
		}
		return r.AssignAdvice("b", c.colB, 0, field.FromInt64(c.b))
	})
	if err != nil {
		return err
	}
	if c.link {
		layouter.ConstrainEqual(c.colA, 0, c.colB, 0)
	}
	return nil
}

func TestMockProverAcceptsMatchingCopyConstraint(t *testing.T) {
	circuit := &copyCircuit{a: 7, b: 7, link: true}
	failures, err := Run(circuit.configure, circuit)
	if err != nil {
		t.Fatalf("synth error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no unsatisfied constraints, got %v", failures)
	}
}

func TestMockProverRejectsMismatchedCopyConstraint(t *testing.T) {
	circuit := &copyCircuit{a: 7, b: 8, link: true}
	failures, err := Run(circuit.configure, circuit)
	if err != nil {
		t.Fatalf("synth error: %v", err)
	}
	if len(failures) == 0 {
		t.Fatal("expected an unsatisfied equality for mismatched linked cells")
	}
	if _, ok := failures[0].(*UnsatisfiedEquality); !ok {
		t.Fatalf("expected *UnsatisfiedEquality, got %T", failures[0])
	}
}
