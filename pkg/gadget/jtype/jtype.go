// Package jtype is the J-shape gadget: JAL. It decodes (rd, imm) ->
// (OpA, OpC) like U-shape, but produces two results instead of one: the
// link value written to rd (pc+length) and the next pc (pc+imm). Both are
// real overflow-modeled affine identities, the same carry-bit technique
// pkg/gadget/common uses for ADD/SUB.
package jtype

import (
	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/gadget/common"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// Gadget assigns JAL steps.
type Gadget struct {
	cols       common.Columns
	pc         constraint.Column
	length     constraint.Column
	nextPC     constraint.Column
	linkCarry  constraint.Column
	jumpCarry  constraint.Column
	selector   constraint.Selector
}

// Configure registers the JAL gate family and returns its selector.
func Configure(cs *constraint.ConstraintSystem, cols common.Columns) (*Gadget, []constraint.Selector) {
	g := &Gadget{
		cols:      cols,
		pc:        cs.AdviceColumn(),
		length:    cs.AdviceColumn(),
		nextPC:    cs.AdviceColumn(),
		linkCarry: cs.AdviceColumn(),
		jumpCarry: cs.AdviceColumn(),
		selector:  cs.Selector(),
	}
	sel := g.selector
	two64 := field.Pow64()
	one := field.One()

	cs.CreateGate("jtype/JAL/link", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(sel)
		pc := b.QueryAdvice(g.pc, constraint.Cur)
		length := b.QueryAdvice(g.length, constraint.Cur)
		link := b.QueryAdvice(cols.Lhs, constraint.Next)
		carry := b.QueryAdvice(g.linkCarry, constraint.Cur)
		identity := pc.Add(length).Sub(link).Sub(carry.Mul(constraint.Const(two64)))
		return []constraint.Expression{s.Mul(identity)}
	})
	cs.CreateGate("jtype/JAL/link-carry-bool", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(sel)
		carry := b.QueryAdvice(g.linkCarry, constraint.Cur)
		return []constraint.Expression{s.Mul(carry.Mul(carry.Sub(constraint.Const(one))))}
	})
	cs.CreateGate("jtype/JAL/jump", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(sel)
		pc := b.QueryAdvice(g.pc, constraint.Cur)
		imm := b.QueryAdvice(cols.Rhs, constraint.Cur)
		nextPC := b.QueryAdvice(g.nextPC, constraint.Cur)
		carry := b.QueryAdvice(g.jumpCarry, constraint.Cur)
		identity := pc.Add(imm).Sub(nextPC).Sub(carry.Mul(constraint.Const(two64)))
		return []constraint.Expression{s.Mul(identity)}
	})
	cs.CreateGate("jtype/JAL/jump-carry-bool", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(sel)
		carry := b.QueryAdvice(g.jumpCarry, constraint.Cur)
		return []constraint.Expression{s.Mul(carry.Mul(carry.Sub(constraint.Const(one))))}
	})

	return g, []constraint.Selector{sel}
}

// Assign writes one two-row region for step if it belongs to this gadget.
func (g *Gadget) Assign(layouter *constraint.Layouter, step builder.OpStep) (handled bool, err error) {
	if step.Instruction.Opcode != opcode.JAL {
		return false, nil
	}

	instr := step.Instruction
	imm := instr.OpC
	link, _ := step.RegisterOps.Write(instr.OpA)

	err = layouter.AssignRegion("jtype/JAL", func(r *constraint.Region) error {
		if err := r.AssignAdvice("imm", g.cols.Rhs, 0, field.FromUint64(imm)); err != nil {
			return err
		}
		if err := r.AssignAdvice("link", g.cols.Lhs, 1, field.FromUint64(link)); err != nil {
			return err
		}
		if err := r.AssignAdvice("pc", g.pc, 0, field.FromUint64(step.PC)); err != nil {
			return err
		}
		if err := r.AssignAdvice("length", g.length, 0, field.FromUint64(instr.Length)); err != nil {
			return err
		}
		if err := r.AssignAdvice("nextPC", g.nextPC, 0, field.FromUint64(step.NextPC)); err != nil {
			return err
		}
		if err := r.Enable(g.selector, 0); err != nil {
			return err
		}
		if err := common.MarkStepStart(r, g.cols); err != nil {
			return err
		}
		linkCarry := uint64(0)
		if step.PC+instr.Length < step.PC {
			linkCarry = 1
		}
		if err := r.AssignAdvice("linkCarry", g.linkCarry, 0, field.FromUint64(linkCarry)); err != nil {
			return err
		}
		jumpCarry := uint64(0)
		if step.PC+imm < step.PC {
			jumpCarry = 1
		}
		return r.AssignAdvice("jumpCarry", g.jumpCarry, 0, field.FromUint64(jumpCarry))
	})
	return true, err
}
