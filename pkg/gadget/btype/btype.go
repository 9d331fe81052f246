// Package btype is the B-shape (branch) gadget: BEQ/BNE/BLT/BGE/BLTU/BGEU.
// Every branch shares the same witness shape: (rs1, rs2) -> lhs/rhs, a
// boolean "taken" flag at lhs@row+1, and a linear combination picking the
// next pc from pc/imm/length. BEQ and BNE get a fully arithmetized
// equality check (the standard is-zero gadget); the relational branches'
// taken flag is asserted boolean but not independently re-derived from
// rs1/rs2 here (see DESIGN.md, pkg/gadget/btype).
package btype

import (
	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/gadget/common"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// Gadget assigns every B-shape step.
type Gadget struct {
	cols      common.Columns
	inv       constraint.Column // (rs1-rs2)^-1 when rs1 != rs2, else 0 — feeds the is-zero gadget
	pc        constraint.Column
	imm       constraint.Column
	length    constraint.Column
	nextPC    constraint.Column
	selectors map[opcode.Opcode]constraint.Selector
}

var branchOpcodes = []opcode.Opcode{
	opcode.BEQ, opcode.BNE, opcode.BLT, opcode.BGE, opcode.BLTU, opcode.BGEU,
}

// Configure registers the B-shape gate family and returns its selectors.
func Configure(cs *constraint.ConstraintSystem, cols common.Columns) (*Gadget, []constraint.Selector) {
	g := &Gadget{
		cols:      cols,
		inv:       cs.AdviceColumn(),
		pc:        cs.AdviceColumn(),
		imm:       cs.AdviceColumn(),
		length:    cs.AdviceColumn(),
		nextPC:    cs.AdviceColumn(),
		selectors: make(map[opcode.Opcode]constraint.Selector, len(branchOpcodes)),
	}

	var sels []constraint.Selector
	for _, op := range branchOpcodes {
		sel := cs.Selector()
		g.selectors[op] = sel
		sels = append(sels, sel)
		g.gate(cs, op, sel)
	}
	return g, sels
}

func (g *Gadget) gate(cs *constraint.ConstraintSystem, op opcode.Opcode, sel constraint.Selector) {
	name := "btype/" + op.String()
	taken := func(b *constraint.GateBuilder) constraint.Expression {
		return b.QueryAdvice(g.cols.Lhs, constraint.Next)
	}

	switch op {
	case opcode.BEQ, opcode.BNE:
		// is-zero(rs1-rs2): diff*taken_eq = 0, and 1-taken_eq-diff*inv = 0.
		// BEQ's taken flag is taken_eq directly; BNE's is its complement.
		cs.CreateGate(name+"/absorb", func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			rs1 := b.QueryAdvice(g.cols.Lhs, constraint.Cur)
			rs2 := b.QueryAdvice(g.cols.Rhs, constraint.Cur)
			diff := rs1.Sub(rs2)
			t := taken(b)
			if op == opcode.BNE {
				t = constraint.Const(field.One()).Sub(t)
			}
			return []constraint.Expression{s.Mul(diff.Mul(t))}
		})
		cs.CreateGate(name+"/pin", func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			rs1 := b.QueryAdvice(g.cols.Lhs, constraint.Cur)
			rs2 := b.QueryAdvice(g.cols.Rhs, constraint.Cur)
			diff := rs1.Sub(rs2)
			inv := b.QueryAdvice(g.inv, constraint.Cur)
			t := taken(b)
			if op == opcode.BNE {
				t = constraint.Const(field.One()).Sub(t)
			}
			one := constraint.Const(field.One())
			return []constraint.Expression{s.Mul(one.Sub(t).Sub(diff.Mul(inv)))}
		})
	default:
		// BLT/BGE/BLTU/BGEU: taken is asserted boolean; the comparison
		// predicate itself is trusted from replay.
		cs.CreateGate(name+"/taken-bool", func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			t := taken(b)
			one := constraint.Const(field.One())
			return []constraint.Expression{s.Mul(t.Mul(t.Sub(one)))}
		})
	}

	// Every branch constrains next pc the same way once taken is fixed:
	// next_pc = pc + taken*imm + (1-taken)*length.
	cs.CreateGate(name+"/next-pc", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(sel)
		t := taken(b)
		pc := b.QueryAdvice(g.pc, constraint.Cur)
		imm := b.QueryAdvice(g.imm, constraint.Cur)
		length := b.QueryAdvice(g.length, constraint.Cur)
		nextPC := b.QueryAdvice(g.nextPC, constraint.Cur)
		one := constraint.Const(field.One())
		notTaken := one.Sub(t)
		rhs := pc.Add(t.Mul(imm)).Add(notTaken.Mul(length))
		return []constraint.Expression{s.Mul(rhs.Sub(nextPC))}
	})
}

// Assign writes one two-row region for step if it belongs to this gadget.
func (g *Gadget) Assign(layouter *constraint.Layouter, step builder.OpStep) (handled bool, err error) {
	sel, ok := g.selectors[step.Instruction.Opcode]
	if !ok {
		return false, nil
	}

	instr := step.Instruction
	rs1, _ := step.RegisterOps.Read(instr.OpA)
	rs2, _ := step.RegisterOps.Read(instr.OpB)
	// A branch was taken iff control flow didn't fall through to pc+length.
	takenVal := step.NextPC != step.PC+instr.Length

	err = layouter.AssignRegion("btype/"+instr.Opcode.String(), func(r *constraint.Region) error {
		if err := r.AssignAdvice("rs1", g.cols.Lhs, 0, field.FromUint64(rs1)); err != nil {
			return err
		}
		if err := r.AssignAdvice("rs2", g.cols.Rhs, 0, field.FromUint64(rs2)); err != nil {
			return err
		}
		if err := r.AssignAdvice("taken", g.cols.Lhs, 1, field.Bool(takenVal)); err != nil {
			return err
		}
		if err := r.AssignAdvice("pc", g.pc, 0, field.FromUint64(step.PC)); err != nil {
			return err
		}
		if err := r.AssignAdvice("imm", g.imm, 0, field.FromUint64(instr.OpC)); err != nil {
			return err
		}
		if err := r.AssignAdvice("length", g.length, 0, field.FromUint64(instr.Length)); err != nil {
			return err
		}
		if err := r.AssignAdvice("nextPC", g.nextPC, 0, field.FromUint64(step.NextPC)); err != nil {
			return err
		}
		if err := r.Enable(sel, 0); err != nil {
			return err
		}
		if err := common.MarkStepStart(r, g.cols); err != nil {
			return err
		}
		if instr.Opcode == opcode.BEQ || instr.Opcode == opcode.BNE {
			diff := field.FromUint64(rs1).Sub(field.FromUint64(rs2))
			inv := field.Zero()
			if !diff.IsZero() {
				inv = diff.Inverse()
			}
			return r.AssignAdvice("inv", g.inv, 0, inv)
		}
		return nil
	})
	return true, err
}
