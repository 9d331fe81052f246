// Package ntype is the N-shape gadget: FENCE, ECALL, EBREAK, UNIMP. None
// of the four touch a register or memory operand, so there is nothing to
// arithmetize; this gadget exists only so every opcode has a selector that
// participates in the exectable's Sigma-selectors=1 gate. Replay rejects
// any trace that reaches EBREAK or UNIMP (see design notes), so in practice
// only FENCE and ECALL steps arrive here; the other two selectors are
// allocated all the same.
package ntype

import (
	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/gadget/common"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// Gadget assigns every N-shape step.
type Gadget struct {
	cols      common.Columns
	selectors map[opcode.Opcode]constraint.Selector
}

var noOperandOpcodes = []opcode.Opcode{
	opcode.FENCE, opcode.ECALL, opcode.EBREAK, opcode.UNIMP,
}

// Configure registers one selector per no-operand opcode. There is no
// arithmetic gate to attach: with nothing to read or write, the only
// constraint is that exactly one selector fires per step, which the
// aggregator's Sigma-selectors=1 gate enforces globally.
func Configure(cs *constraint.ConstraintSystem, cols common.Columns) (*Gadget, []constraint.Selector) {
	g := &Gadget{cols: cols, selectors: make(map[opcode.Opcode]constraint.Selector, len(noOperandOpcodes))}
	var sels []constraint.Selector
	for _, op := range noOperandOpcodes {
		sel := cs.Selector()
		g.selectors[op] = sel
		sels = append(sels, sel)
	}
	return g, sels
}

// Assign enables the opcode's selector on a single-row region if step
// belongs to this gadget.
func (g *Gadget) Assign(layouter *constraint.Layouter, step builder.OpStep) (handled bool, err error) {
	sel, ok := g.selectors[step.Instruction.Opcode]
	if !ok {
		return false, nil
	}
	err = layouter.AssignRegion("ntype/"+step.Instruction.Opcode.String(), func(r *constraint.Region) error {
		if err := r.Enable(sel, 0); err != nil {
			return err
		}
		return common.MarkStepStart(r, g.cols)
	})
	return true, err
}
