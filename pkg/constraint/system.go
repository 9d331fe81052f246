package constraint

// Gate is a named collection of polynomial identities gated by a selector;
// every Expression in Polys must evaluate to zero on rows where the gate
// fires.
type Gate struct {
	Name  string
	Polys []Expression
}

// ConstraintSystem accumulates the column layout and gate set for one
// circuit. Configure methods on gadgets (pkg/gadget/*) call into a shared
// ConstraintSystem to register their columns and gates; assignment later
// happens against a Layouter built over the same column indices.
type ConstraintSystem struct {
	numAdvice   int
	numFixed    int
	numInstance int
	equality    map[Column]bool
	gates       []Gate
}

// NewConstraintSystem returns an empty system ready for Configure calls.
func NewConstraintSystem() *ConstraintSystem {
	return &ConstraintSystem{equality: make(map[Column]bool)}
}

// AdviceColumn allocates a new witness column.
func (cs *ConstraintSystem) AdviceColumn() Column {
	c := Column{Kind: Advice, Index: cs.numAdvice}
	cs.numAdvice++
	return c
}

// FixedColumn allocates a new circuit-baked column.
func (cs *ConstraintSystem) FixedColumn() Column {
	c := Column{Kind: Fixed, Index: cs.numFixed}
	cs.numFixed++
	return c
}

// InstanceColumn allocates a new public-input column.
func (cs *ConstraintSystem) InstanceColumn() Column {
	c := Column{Kind: Instance, Index: cs.numInstance}
	cs.numInstance++
	return c
}

// Selector allocates a new boolean selector column.
func (cs *ConstraintSystem) Selector() Selector {
	s := Selector{Index: cs.numFixed}
	cs.numFixed++
	return s
}

// EnableEquality marks a column as eligible for cross-region copy
// constraints, the way the original halo2 circuits do; pkg/circuit calls
// it on the columns it ties together with Layouter.ConstrainEqual. The
// mark is recorded only: ConstrainEqual and Evaluate do not consult it.
func (cs *ConstraintSystem) EnableEquality(c Column) {
	cs.equality[c] = true
}

// CreateGate registers a gate. build receives a GateBuilder bound to this
// system and returns the list of polynomials the gate imposes.
func (cs *ConstraintSystem) CreateGate(name string, build func(b *GateBuilder) []Expression) {
	b := &GateBuilder{cs: cs}
	cs.gates = append(cs.gates, Gate{Name: name, Polys: build(b)})
}

// Gates returns every gate registered so far.
func (cs *ConstraintSystem) Gates() []Gate {
	return cs.gates
}

// NumAdvice, NumFixed, NumInstance report the column counts, used by
// NewAssignment to size its row storage.
func (cs *ConstraintSystem) NumAdvice() int   { return cs.numAdvice }
func (cs *ConstraintSystem) NumFixed() int    { return cs.numFixed }
func (cs *ConstraintSystem) NumInstance() int { return cs.numInstance }

// GateBuilder is the narrow surface gate-construction closures use to
// query columns and selectors while building an Expression tree.
type GateBuilder struct {
	cs *ConstraintSystem
}

// QueryAdvice reads an advice column at a row rotation.
func (b *GateBuilder) QueryAdvice(c Column, r Rotation) Expression {
	return Query(c, r)
}

// QueryFixed reads a fixed column at a row rotation.
func (b *GateBuilder) QueryFixed(c Column, r Rotation) Expression {
	return Query(c, r)
}

// QueryInstance reads an instance column at a row rotation.
func (b *GateBuilder) QueryInstance(c Column, r Rotation) Expression {
	return Query(c, r)
}

// QuerySelector reads a selector as a 0/1 Expression.
func (b *GateBuilder) QuerySelector(s Selector) Expression {
	return QuerySelector(s)
}
