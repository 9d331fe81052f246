// Package stype is the S-shape (store) gadget: SB/SH/SW/SD. Unlike every
// other shape, a store's three register-shaped operands (rs1, rs2, imm)
// don't fit the shared two-cell (lhs, rhs) convention with room to spare,
// so this gadget allocates its own extra immediate column.
package stype

import (
	"fmt"

	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/gadget/common"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// Gadget assigns every S-shape step: lhs@row=rs1, rhs@row=rs2,
// imm@row=immediate, lhs@row+1=effective address (rs1+imm). SB/SH/SW's
// stored value's width truncation is not independently re-derived here;
// it is carried verbatim into the memory table's own operation log
// (pkg/memtable). SD has no truncation to disclose (its width is the
// full register), so its rs2 cell is instead copy-constrained against
// the memory table's logged value by pkg/circuit — see MemCells.
type Gadget struct {
	cols      common.Columns
	imm       constraint.Column
	carry     constraint.Column
	selectors map[opcode.Opcode]constraint.Selector

	// memCells records, for SD only, the absolute cell holding the
	// stored register value, keyed by global_clk.
	memCells map[uint64]common.MemCell
}

var storeOpcodes = []opcode.Opcode{opcode.SB, opcode.SH, opcode.SW, opcode.SD}

// Configure registers the S-shape address gate and returns its selectors.
func Configure(cs *constraint.ConstraintSystem, cols common.Columns) (*Gadget, []constraint.Selector) {
	g := &Gadget{
		cols:      cols,
		imm:       cs.AdviceColumn(),
		carry:     cs.AdviceColumn(),
		selectors: make(map[opcode.Opcode]constraint.Selector, len(storeOpcodes)),
		memCells:  make(map[uint64]common.MemCell),
	}

	var sels []constraint.Selector
	two64 := field.Pow64()
	for _, op := range storeOpcodes {
		sel := cs.Selector()
		g.selectors[op] = sel
		sels = append(sels, sel)

		cs.CreateGate("stype/"+op.String(), func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			rs1 := b.QueryAdvice(cols.Lhs, constraint.Cur)
			imm := b.QueryAdvice(g.imm, constraint.Cur)
			addr := b.QueryAdvice(cols.Lhs, constraint.Next)
			carry := b.QueryAdvice(g.carry, constraint.Cur)
			identity := rs1.Add(imm).Sub(addr).Sub(carry.Mul(constraint.Const(two64)))
			return []constraint.Expression{s.Mul(identity)}
		})
		cs.CreateGate("stype/"+op.String()+"/carry-bool", func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			carry := b.QueryAdvice(g.carry, constraint.Cur)
			one := constraint.Const(field.One())
			return []constraint.Expression{s.Mul(carry.Mul(carry.Sub(one)))}
		})
	}
	return g, sels
}

// Assign writes one two-row region for step if it belongs to this gadget.
func (g *Gadget) Assign(layouter *constraint.Layouter, step builder.OpStep) (handled bool, err error) {
	sel, ok := g.selectors[step.Instruction.Opcode]
	if !ok {
		return false, nil
	}
	if step.MemoryOp == nil {
		return true, fmt.Errorf("stype: global_clk %d: store step logged no memory op", step.GlobalClk)
	}

	instr := step.Instruction
	rs2, _ := step.RegisterOps.Read(instr.OpA) // S-shape: rs2 is OpA
	rs1, _ := step.RegisterOps.Read(instr.OpB)
	imm := instr.OpC
	addr := step.MemoryOp.Address

	err = layouter.AssignRegion("stype/"+instr.Opcode.String(), func(r *constraint.Region) error {
		if err := r.AssignAdvice("rs1", g.cols.Lhs, 0, field.FromUint64(rs1)); err != nil {
			return err
		}
		if err := r.AssignAdvice("rs2", g.cols.Rhs, 0, field.FromUint64(rs2)); err != nil {
			return err
		}
		if err := r.AssignAdvice("imm", g.imm, 0, field.FromUint64(imm)); err != nil {
			return err
		}
		if err := r.AssignAdvice("addr", g.cols.Lhs, 1, field.FromUint64(addr)); err != nil {
			return err
		}
		if err := r.Enable(sel, 0); err != nil {
			return err
		}
		if err := common.MarkStepStart(r, g.cols); err != nil {
			return err
		}
		carry := uint64(0)
		if rs1+imm < rs1 {
			carry = 1
		}
		if err := r.AssignAdvice("carry", g.carry, 0, field.FromUint64(carry)); err != nil {
			return err
		}
		if instr.Opcode == opcode.SD {
			g.memCells[step.GlobalClk] = common.MemCell{Column: g.cols.Rhs, Row: r.Offset()}
		}
		return nil
	})
	return true, err
}

// MemCells returns the absolute cell holding SD's stored value, keyed by
// global_clk, for pkg/circuit to copy-constrain against the memory table.
func (g *Gadget) MemCells() map[uint64]common.MemCell {
	return g.memCells
}
