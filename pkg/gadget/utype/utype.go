// Package utype is the U-shape gadget: LUI and AUIPC. Both decode
// (rd, imm) -> (OpA, OpC); LUI writes the immediate straight into rd,
// AUIPC adds it to the current pc. Unlike most non-ADD/SUB arithmetic in
// this circuit, both identities hold exactly with only a carry bit to
// compensate 2^64 wraparound, so neither needs the trusted-echo treatment.
package utype

import (
	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/gadget/common"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// Gadget assigns LUI and AUIPC steps.
type Gadget struct {
	cols      common.Columns
	pc        constraint.Column
	carry     constraint.Column // AUIPC's pc+imm overflow bit
	selectors map[opcode.Opcode]constraint.Selector
}

// Configure registers the U-shape gate family and returns its selectors.
func Configure(cs *constraint.ConstraintSystem, cols common.Columns) (*Gadget, []constraint.Selector) {
	g := &Gadget{
		cols:      cols,
		pc:        cs.AdviceColumn(),
		carry:     cs.AdviceColumn(),
		selectors: make(map[opcode.Opcode]constraint.Selector, 2),
	}

	selLUI := cs.Selector()
	g.selectors[opcode.LUI] = selLUI
	cs.CreateGate("utype/LUI", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(selLUI)
		imm := b.QueryAdvice(cols.Rhs, constraint.Cur)
		out := b.QueryAdvice(cols.Lhs, constraint.Next)
		return []constraint.Expression{s.Mul(out.Sub(imm))}
	})

	selAUIPC := cs.Selector()
	g.selectors[opcode.AUIPC] = selAUIPC
	two64 := field.Pow64()
	cs.CreateGate("utype/AUIPC", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(selAUIPC)
		pc := b.QueryAdvice(g.pc, constraint.Cur)
		imm := b.QueryAdvice(cols.Rhs, constraint.Cur)
		out := b.QueryAdvice(cols.Lhs, constraint.Next)
		carry := b.QueryAdvice(g.carry, constraint.Cur)
		identity := pc.Add(imm).Sub(out).Sub(carry.Mul(constraint.Const(two64)))
		return []constraint.Expression{s.Mul(identity)}
	})
	cs.CreateGate("utype/AUIPC/carry-bool", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(selAUIPC)
		carry := b.QueryAdvice(g.carry, constraint.Cur)
		one := constraint.Const(field.One())
		return []constraint.Expression{s.Mul(carry.Mul(carry.Sub(one)))}
	})

	return g, []constraint.Selector{selLUI, selAUIPC}
}

// Assign writes one two-row region for step if it belongs to this gadget.
func (g *Gadget) Assign(layouter *constraint.Layouter, step builder.OpStep) (handled bool, err error) {
	sel, ok := g.selectors[step.Instruction.Opcode]
	if !ok {
		return false, nil
	}

	instr := step.Instruction
	imm := instr.OpC
	out, _ := step.RegisterOps.Write(instr.OpA)

	err = layouter.AssignRegion("utype/"+instr.Opcode.String(), func(r *constraint.Region) error {
		if err := r.AssignAdvice("imm", g.cols.Rhs, 0, field.FromUint64(imm)); err != nil {
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
		if instr.Opcode == opcode.AUIPC {
			if err := r.AssignAdvice("pc", g.pc, 0, field.FromUint64(step.PC)); err != nil {
				return err
			}
			carry := uint64(0)
			if step.PC+imm < step.PC {
				carry = 1
			}
			return r.AssignAdvice("carry", g.carry, 0, field.FromUint64(carry))
		}
		return nil
	})
	return true, err
}
