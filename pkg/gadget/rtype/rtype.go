// Package rtype is the R-shape (register-register) gadget: one selector
// per opcode sharing the exectable's lhs/rhs column pair, plus a small
// family of auxiliary columns whose meaning depends on which selector is
// active for a given row (since Sigma-selectors=1 guarantees only one
// opcode's gate reads them on any row, see pkg/exectable).
//
// Of the eight opcodes below, six have a real, independently-checkable
// polynomial identity over this circuit's column set; SLT and SLTU only
// assert that their result is boolean. Bitwise logic
// (XOR/OR/AND), variable-amount shifts, signed multiply-high, signed
// divide/remainder, and the truncating *W variants all need a bit
// decomposition or range-check argument this circuit does not have —
// per the unimplemented-opcode policy, those opcodes register no
// selector here and are rejected at circuit build by the exectable
// aggregator's dispatch loop, not accepted behind a gate that cannot
// fail.
package rtype

import (
	"fmt"

	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/gadget/common"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// Gadget assigns every R-shape opcode this package has a sound gate for.
// Configure registers one selector and one gate family per opcode.
type Gadget struct {
	cols      common.Columns
	carry     constraint.Column // ADD overflow bit
	borrow    constraint.Column // SUB underflow bit
	aux       constraint.Column // mul hi/lo split, divu/remu quotient/remainder
	selectors map[opcode.Opcode]constraint.Selector
}

// opcodes lists every R-shape mnemonic this gadget has a sound gate for.
var opcodes = []opcode.Opcode{
	opcode.ADD, opcode.SUB, opcode.SLT, opcode.SLTU,
	opcode.MUL, opcode.MULHU, opcode.DIVU, opcode.REMU,
}

// Configure registers the R-shape gate family and returns the selectors it
// owns, so the aggregator (pkg/exectable) can fold them into the
// Sigma-selectors=1 gate alongside every other shape's selectors.
func Configure(cs *constraint.ConstraintSystem, cols common.Columns) (*Gadget, []constraint.Selector) {
	g := &Gadget{
		cols:      cols,
		carry:     cs.AdviceColumn(),
		borrow:    cs.AdviceColumn(),
		aux:       cs.AdviceColumn(),
		selectors: make(map[opcode.Opcode]constraint.Selector, len(opcodes)),
	}

	var sels []constraint.Selector
	for _, op := range opcodes {
		sel := cs.Selector()
		g.selectors[op] = sel
		sels = append(sels, sel)
		g.gate(cs, op, sel)
	}
	return g, sels
}

func (g *Gadget) gate(cs *constraint.ConstraintSystem, op opcode.Opcode, sel constraint.Selector) {
	name := "rtype/" + op.String()
	switch op {
	case opcode.ADD:
		common.AddOverflow(cs, name, sel, g.cols, g.carry)
	case opcode.SUB:
		common.SubBorrow(cs, name, sel, g.cols, g.borrow)
	case opcode.MUL:
		// lhs*rhs = out + hi*2^64; out is the low word, hi an
		// unconstrained-range witness for the high word.
		cs.CreateGate(name, func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			lhs := b.QueryAdvice(g.cols.Lhs, constraint.Cur)
			rhs := b.QueryAdvice(g.cols.Rhs, constraint.Cur)
			out := b.QueryAdvice(g.cols.Lhs, constraint.Next)
			hi := b.QueryAdvice(g.aux, constraint.Cur)
			two64 := constraint.Const(field.Pow64())
			return []constraint.Expression{s.Mul(lhs.Mul(rhs).Sub(out).Sub(hi.Mul(two64)))}
		})
	case opcode.MULHU:
		// Same product identity as MUL, out now holds the high word
		// and aux the low. Only sound for the unsigned*unsigned case:
		// MULH/MULHSU reinterpret two's-complement operands, which
		// breaks the plain unsigned product decomposition below.
		cs.CreateGate(name, func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			lhs := b.QueryAdvice(g.cols.Lhs, constraint.Cur)
			rhs := b.QueryAdvice(g.cols.Rhs, constraint.Cur)
			out := b.QueryAdvice(g.cols.Lhs, constraint.Next)
			lo := b.QueryAdvice(g.aux, constraint.Cur)
			two64 := constraint.Const(field.Pow64())
			return []constraint.Expression{s.Mul(lhs.Mul(rhs).Sub(lo).Sub(out.Mul(two64)))}
		})
	case opcode.DIVU:
		// out*rhs + remAux = lhs. Holds for the divide-by-zero
		// convention too (out=all-ones, remAux=lhs, rhs=0). Only
		// sound unsigned: DIV's two's-complement quotient/remainder
		// don't satisfy this as a literal (non-wrapping) equation.
		cs.CreateGate(name, func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			lhs := b.QueryAdvice(g.cols.Lhs, constraint.Cur)
			rhs := b.QueryAdvice(g.cols.Rhs, constraint.Cur)
			out := b.QueryAdvice(g.cols.Lhs, constraint.Next)
			rem := b.QueryAdvice(g.aux, constraint.Cur)
			return []constraint.Expression{s.Mul(out.Mul(rhs).Add(rem).Sub(lhs))}
		})
	case opcode.REMU:
		// quotAux*rhs + out = lhs, symmetric to the DIVU family.
		cs.CreateGate(name, func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			lhs := b.QueryAdvice(g.cols.Lhs, constraint.Cur)
			rhs := b.QueryAdvice(g.cols.Rhs, constraint.Cur)
			out := b.QueryAdvice(g.cols.Lhs, constraint.Next)
			quot := b.QueryAdvice(g.aux, constraint.Cur)
			return []constraint.Expression{s.Mul(quot.Mul(rhs).Add(out).Sub(lhs))}
		})
	case opcode.SLT, opcode.SLTU:
		// out is boolean; the comparison itself is trusted from
		// replay (full soundness needs a range-checked subtraction,
		// not yet part of this circuit — see design notes).
		cs.CreateGate(name, func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			out := b.QueryAdvice(g.cols.Lhs, constraint.Next)
			one := constraint.Const(field.One())
			return []constraint.Expression{s.Mul(out.Mul(out.Sub(one)))}
		})
	default:
		panic(fmt.Sprintf("rtype: opcode %s has no registered gate", op))
	}
}

// Assign writes one two-row region for step, if step's opcode belongs to
// this gadget. handled is false for every non-R-shape step.
func (g *Gadget) Assign(layouter *constraint.Layouter, step builder.OpStep) (handled bool, err error) {
	sel, ok := g.selectors[step.Instruction.Opcode]
	if !ok {
		return false, nil
	}

	instr := step.Instruction
	rs1, _ := step.RegisterOps.Read(instr.OpB)
	rs2, _ := step.RegisterOps.Read(instr.OpC)
	out, _ := step.RegisterOps.Write(instr.OpA)

	err = layouter.AssignRegion("rtype/"+instr.Opcode.String(), func(r *constraint.Region) error {
		if err := r.AssignAdvice("lhs", g.cols.Lhs, 0, field.FromUint64(rs1)); err != nil {
			return err
		}
		if err := r.AssignAdvice("rhs", g.cols.Rhs, 0, field.FromUint64(rs2)); err != nil {
			return err
		}
		if err := r.AssignAdvice("out", g.cols.Lhs, 1, field.FromUint64(out)); err != nil {
			return err
		}
		if err := r.Enable(sel, 0); err != nil {
			return err
		}
		if err := common.MarkStepStart(r, g.cols); err != nil {
			return err
		}
		return g.assignAux(r, instr.Opcode, rs1, rs2, out)
	})
	return true, err
}

func (g *Gadget) assignAux(r *constraint.Region, op opcode.Opcode, rs1, rs2, out uint64) error {
	switch op {
	case opcode.ADD:
		carry := uint64(0)
		if rs1+rs2 < rs1 {
			carry = 1
		}
		return r.AssignAdvice("carry", g.carry, 0, field.FromUint64(carry))
	case opcode.SUB:
		borrow := uint64(0)
		if rs1 < rs2 {
			borrow = 1
		}
		return r.AssignAdvice("borrow", g.borrow, 0, field.FromUint64(borrow))
	case opcode.MUL:
		hi, _ := bits64MulHigh(rs1, rs2)
		return r.AssignAdvice("hi", g.aux, 0, field.FromUint64(hi))
	case opcode.MULHU:
		_, lo := bits64MulHigh(rs1, rs2)
		return r.AssignAdvice("lo", g.aux, 0, field.FromUint64(lo))
	case opcode.DIVU:
		var rem uint64
		if rs2 != 0 {
			rem = rs1 - out*rs2
		} else {
			rem = rs1
		}
		return r.AssignAdvice("rem", g.aux, 0, field.FromUint64(rem))
	case opcode.REMU:
		var quot uint64
		if rs2 != 0 {
			quot = (rs1 - out) / rs2
		}
		return r.AssignAdvice("quot", g.aux, 0, field.FromUint64(quot))
	}
	return nil
}

// bits64MulHigh returns the high and low 64 bits of the unsigned 128-bit
// product rs1*rs2, via 32-bit limb decomposition (no 128-bit integer type).
func bits64MulHigh(a, b uint64) (hi uint64, lo uint64) {
	aLo, aHi := a&0xFFFFFFFF, a>>32
	bLo, bHi := b&0xFFFFFFFF, b>>32

	t0 := aLo * bLo
	t1 := aHi*bLo + t0>>32
	t2 := aLo*bHi + t1&0xFFFFFFFF
	hi = aHi*bHi + t1>>32 + t2>>32
	lo = (t2 << 32) | (t0 & 0xFFFFFFFF)
	return hi, lo
}
