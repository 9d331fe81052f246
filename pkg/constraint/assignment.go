package constraint

import (
	"bytes"
	"encoding/gob"

	"github.com/rv0-labs/rv0prove/pkg/field"
)

// CellRef names one absolute (column, row) cell. pkg/circuit uses it to
// tie a register value in the execution table to the memory table's
// logged value for the same step, once both tables have been assigned
// and their absolute row numbers are known.
type CellRef struct {
	Column Column
	Row    int
}

// equality is one copy constraint: the two named cells must hold the
// same field element in every Assignment Synthesize produces.
type equality struct {
	A, B CellRef
}

// Assignment is the concrete row store a circuit's witness is written
// into. It grows rows on demand as regions are assigned.
type Assignment struct {
	advice     [][]field.Element // advice[col][row]
	fixed      [][]field.Element
	instance   [][]field.Element
	selectors  map[int]map[int]bool // selector index -> row -> enabled
	numRows    int
	equalities []equality
}

// NewAssignment returns an empty assignment sized for the given
// ConstraintSystem's column counts.
func NewAssignment(cs *ConstraintSystem) *Assignment {
	return &Assignment{
		advice:    make([][]field.Element, cs.NumAdvice()),
		fixed:     make([][]field.Element, cs.NumFixed()),
		instance:  make([][]field.Element, cs.NumInstance()),
		selectors: make(map[int]map[int]bool),
	}
}

func (a *Assignment) ensureRow(col []field.Element, row int) []field.Element {
	for len(col) <= row {
		col = append(col, field.Zero())
	}
	return col
}

func (a *Assignment) growTo(row int) {
	if row+1 > a.numRows {
		a.numRows = row + 1
	}
}

func (a *Assignment) setAdvice(col Column, row int, v field.Element) {
	a.advice[col.Index] = a.ensureRow(a.advice[col.Index], row)
	a.advice[col.Index][row] = v
	a.growTo(row)
}

func (a *Assignment) setFixed(col Column, row int, v field.Element) {
	a.fixed[col.Index] = a.ensureRow(a.fixed[col.Index], row)
	a.fixed[col.Index][row] = v
	a.growTo(row)
}

// SetInstance writes a public-input cell. Instance columns are populated
// once, ahead of synthesis, by the main circuit (pkg/circuit).
func (a *Assignment) SetInstance(col Column, row int, v field.Element) {
	a.instance[col.Index] = a.ensureRow(a.instance[col.Index], row)
	a.instance[col.Index][row] = v
	a.growTo(row)
}

func (a *Assignment) enableSelector(s Selector, row int) {
	rows, ok := a.selectors[s.Index]
	if !ok {
		rows = make(map[int]bool)
		a.selectors[s.Index] = rows
	}
	rows[row] = true
	a.growTo(row)
}

// Get reads back a cell at an absolute row; Evaluate adds a query's
// Rotation to the row being evaluated before calling it. Reads before
// row 0 or past the end of a column return zero, matching the halo2
// convention that unassigned cells are zero.
func (a *Assignment) Get(c Column, row int) field.Element {
	var plane [][]field.Element
	switch c.Kind {
	case Advice:
		plane = a.advice
	case Fixed:
		plane = a.fixed
	case Instance:
		plane = a.instance
	}
	if c.Index >= len(plane) || row < 0 || row >= len(plane[c.Index]) {
		return field.Zero()
	}
	return plane[c.Index][row]
}

// ConstrainEqual records a copy constraint between two absolute cells,
// the way a halo2 region's constrain_equal ties a cell to one assigned
// elsewhere. Evaluate checks every recorded pair the same way it checks
// a gate polynomial, failing if the two cells ever disagree.
func (a *Assignment) ConstrainEqual(colA Column, rowA int, colB Column, rowB int) {
	a.equalities = append(a.equalities, equality{A: CellRef{colA, rowA}, B: CellRef{colB, rowB}})
}

// SelectorEnabled reports whether a selector fires on an absolute row.
func (a *Assignment) SelectorEnabled(s Selector, row int) bool {
	rows, ok := a.selectors[s.Index]
	if !ok {
		return false
	}
	return rows[row]
}

// NumRows returns the number of rows touched by any assignment so far.
func (a *Assignment) NumRows() int {
	return a.numRows
}

// assignmentSnapshot mirrors Assignment with exported fields, the gob
// encoder's requirement; Assignment itself keeps its fields private so
// nothing outside this package can mutate a witness after synthesis.
type assignmentSnapshot struct {
	Advice     [][]field.Element
	Fixed      [][]field.Element
	Instance   [][]field.Element
	Selectors  map[int]map[int]bool
	NumRows    int
	Equalities []equality
}

// GobEncode serializes the full witness, the way pkg/result checkpoints
// search state: this is what pkg/backend's MockBackend treats as proof
// bytes, standing in for a real proof's opaque encoding.
func (a *Assignment) GobEncode() ([]byte, error) {
	snap := assignmentSnapshot{
		Advice: a.advice, Fixed: a.fixed, Instance: a.instance,
		Selectors: a.selectors, NumRows: a.numRows, Equalities: a.equalities,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores an Assignment from GobEncode's output.
func (a *Assignment) GobDecode(data []byte) error {
	var snap assignmentSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	a.advice, a.fixed, a.instance = snap.Advice, snap.Fixed, snap.Instance
	a.selectors, a.numRows = snap.Selectors, snap.NumRows
	a.equalities = snap.Equalities
	return nil
}
