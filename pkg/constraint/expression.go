package constraint

import "github.com/rv0-labs/rv0prove/pkg/field"

// Rotation addresses a row relative to the row a gate is being evaluated
// on. Cur is the overwhelming common case; Next lets a gate read the
// output slot of the following row, the way the execution table's
// two-row (input, output) layout requires.
type Rotation int

const (
	Cur  Rotation = 0
	Next Rotation = 1
	Prev Rotation = -1
)

// exprKind tags the node type of an Expression's internal tree.
type exprKind int

const (
	exprConstant exprKind = iota
	exprAdviceQuery
	exprFixedQuery
	exprInstanceQuery
	exprSelector
	exprNegated
	exprSum
	exprProduct
)

// Expression is a polynomial built out of column queries, selectors, and
// field constants, combined with Add/Sub/Mul/Neg. A Gate is a list of
// Expressions that must evaluate to zero on every row where its selector
// is active.
type Expression struct {
	kind     exprKind
	constant field.Element
	column   Column
	rotation Rotation
	selector Selector
	a, b     *Expression
}

// Const lifts a field constant into an Expression.
func Const(v field.Element) Expression {
	return Expression{kind: exprConstant, constant: v}
}

// QuerySelector wraps a selector as a 0/1 Expression.
func QuerySelector(s Selector) Expression {
	return Expression{kind: exprSelector, selector: s}
}

// Query wraps a column-at-rotation read as an Expression. The column kind
// determines which query variant is recorded; evaluation dispatches on it.
func Query(c Column, r Rotation) Expression {
	kind := exprAdviceQuery
	switch c.Kind {
	case Fixed:
		kind = exprFixedQuery
	case Instance:
		kind = exprInstanceQuery
	}
	return Expression{kind: kind, column: c, rotation: r}
}

// Add returns e + o.
func (e Expression) Add(o Expression) Expression {
	return Expression{kind: exprSum, a: &e, b: &o}
}

// Sub returns e - o.
func (e Expression) Sub(o Expression) Expression {
	neg := o.Neg()
	return Expression{kind: exprSum, a: &e, b: &neg}
}

// Mul returns e * o.
func (e Expression) Mul(o Expression) Expression {
	return Expression{kind: exprProduct, a: &e, b: &o}
}

// Neg returns -e.
func (e Expression) Neg() Expression {
	return Expression{kind: exprNegated, a: &e}
}

// evaluate walks the expression tree against a concrete row lookup.
// rowOf resolves a (kind, index, rotation) query to the field element
// assigned at that cell, relative to the row currently being evaluated.
func (e Expression) evaluate(rowOf func(c Column, r Rotation) field.Element, selOf func(s Selector) bool) field.Element {
	switch e.kind {
	case exprConstant:
		return e.constant
	case exprAdviceQuery, exprFixedQuery, exprInstanceQuery:
		return rowOf(e.column, e.rotation)
	case exprSelector:
		return field.Bool(selOf(e.selector))
	case exprNegated:
		return e.a.evaluate(rowOf, selOf).Neg()
	case exprSum:
		return e.a.evaluate(rowOf, selOf).Add(e.b.evaluate(rowOf, selOf))
	case exprProduct:
		return e.a.evaluate(rowOf, selOf).Mul(e.b.evaluate(rowOf, selOf))
	default:
		return field.Zero()
	}
}
