// Package itype is the I-shape gadget: ALU-immediate ops, loads, and
// JALR all decode rd/rs1/imm the same way (isa.Instruction's OpA/OpB/OpC),
// so they share one selector-per-opcode family and one lhs/rhs/aux column
// set, the same pattern rtype uses for register-register ops.
//
// ADDI and JALR have real polynomial identities; SLTI and SLTIU only
// assert that their result is boolean, the comparison itself is taken
// from replay. The remaining ALU-immediate opcodes (bitwise logic and shifts) need a bit
// decomposition this circuit does not have, so — per the
// unimplemented-opcode policy — they register no selector and are
// rejected at circuit build by the exectable aggregator's dispatch loop.
// Loads keep every width (LB through LD): the effective address is a
// real identity for all seven, but only LD's 64-bit value needs no
// truncation/sign-extension, so only LD's loaded value is copy-constrained
// against the memory table (see MemCells, pkg/circuit); the narrower
// loads' values are carried the same trusted way pkg/gadget/stype
// documents for narrower stores.
package itype

import (
	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
	"github.com/rv0-labs/rv0prove/pkg/field"
	"github.com/rv0-labs/rv0prove/pkg/gadget/common"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// Gadget assigns every I-shape opcode's witness row: (rs1, imm) -> lhs/rhs,
// (rd or loaded value) -> lhs@row+1.
type Gadget struct {
	cols      common.Columns
	carry     constraint.Column // ADDI overflow bit
	aux       constraint.Column // trusted echo for narrower loads
	addr      constraint.Column // load effective address
	addrCarry constraint.Column // load address overflow bit
	pc        constraint.Column // JALR's pc
	linkCarry constraint.Column // JALR's pc+length overflow bit
	selectors map[opcode.Opcode]constraint.Selector

	// memCells records, for LD only, the absolute cell holding the
	// loaded register value — the execution-table half of the copy
	// constraint pkg/circuit ties to the memory table's logged value
	// for the same global_clk.
	memCells map[uint64]common.MemCell
}

var aluOpcodes = []opcode.Opcode{opcode.ADDI, opcode.SLTI, opcode.SLTIU}

var loadOpcodes = []opcode.Opcode{
	opcode.LB, opcode.LH, opcode.LW, opcode.LD, opcode.LBU, opcode.LHU, opcode.LWU,
}

// Configure registers every I-shape gate and returns its selectors.
func Configure(cs *constraint.ConstraintSystem, cols common.Columns) (*Gadget, []constraint.Selector) {
	g := &Gadget{
		cols:      cols,
		carry:     cs.AdviceColumn(),
		aux:       cs.AdviceColumn(),
		addr:      cs.AdviceColumn(),
		addrCarry: cs.AdviceColumn(),
		pc:        cs.AdviceColumn(),
		linkCarry: cs.AdviceColumn(),
		selectors: make(map[opcode.Opcode]constraint.Selector),
		memCells:  make(map[uint64]common.MemCell),
	}

	var sels []constraint.Selector
	register := func(op opcode.Opcode) {
		sel := cs.Selector()
		g.selectors[op] = sel
		sels = append(sels, sel)
	}
	for _, op := range aluOpcodes {
		register(op)
	}
	for _, op := range loadOpcodes {
		register(op)
	}
	register(opcode.JALR)

	// ADDI is the one ALU-immediate op whose 2^64 truncation is exactly
	// compensated by a single carry bit.
	common.AddOverflow(cs, "itype/ADDI", g.selectors[opcode.ADDI], cols, g.carry)

	for _, op := range []opcode.Opcode{opcode.SLTI, opcode.SLTIU} {
		sel := g.selectors[op]
		cs.CreateGate("itype/"+op.String(), func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			out := b.QueryAdvice(cols.Lhs, constraint.Next)
			one := constraint.Const(field.One())
			return []constraint.Expression{s.Mul(out.Mul(out.Sub(one)))}
		})
	}

	// Every load's effective address is a real identity regardless of
	// width: addr = rs1 + imm, truncated mod 2^64 by a carry bit, the
	// same pattern pkg/gadget/stype uses for a store's address.
	two64 := field.Pow64()
	var loadSelectors []constraint.Selector
	for _, op := range loadOpcodes {
		loadSelectors = append(loadSelectors, g.selectors[op])
	}
	cs.CreateGate("itype/load-address", func(b *constraint.GateBuilder) []constraint.Expression {
		sum := constraint.Const(field.Zero())
		for _, sel := range loadSelectors {
			sum = sum.Add(b.QuerySelector(sel))
		}
		rs1 := b.QueryAdvice(cols.Lhs, constraint.Cur)
		imm := b.QueryAdvice(cols.Rhs, constraint.Cur)
		addr := b.QueryAdvice(g.addr, constraint.Cur)
		carry := b.QueryAdvice(g.addrCarry, constraint.Cur)
		identity := rs1.Add(imm).Sub(addr).Sub(carry.Mul(constraint.Const(two64)))
		return []constraint.Expression{sum.Mul(identity)}
	})
	cs.CreateGate("itype/load-address/carry-bool", func(b *constraint.GateBuilder) []constraint.Expression {
		sum := constraint.Const(field.Zero())
		for _, sel := range loadSelectors {
			sum = sum.Add(b.QuerySelector(sel))
		}
		carry := b.QueryAdvice(g.addrCarry, constraint.Cur)
		one := constraint.Const(field.One())
		return []constraint.Expression{sum.Mul(carry.Mul(carry.Sub(one)))}
	})

	// A narrower load's value is not independently re-derived: width
	// truncation and sign extension need the same bit-decomposition
	// argument the ALU-immediate bitwise ops are missing. LD needs
	// neither (the full 64-bit word passes through unchanged), so LD's
	// value is left for pkg/circuit to copy-constrain against the
	// memory table instead of echoing here.
	for _, op := range loadOpcodes {
		if op == opcode.LD {
			continue
		}
		sel := g.selectors[op]
		cs.CreateGate("itype/"+op.String()+"/echo", func(b *constraint.GateBuilder) []constraint.Expression {
			s := b.QuerySelector(sel)
			out := b.QueryAdvice(cols.Lhs, constraint.Next)
			w := b.QueryAdvice(g.aux, constraint.Cur)
			return []constraint.Expression{s.Mul(out.Sub(w))}
		})
	}

	// JALR: out = pc + length, a real affine identity (the same shape
	// as JAL's link gate), truncated mod 2^64 by a carry bit.
	selJALR := g.selectors[opcode.JALR]
	cs.CreateGate("itype/JALR", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(selJALR)
		pc := b.QueryAdvice(g.pc, constraint.Cur)
		out := b.QueryAdvice(cols.Lhs, constraint.Next)
		carry := b.QueryAdvice(g.linkCarry, constraint.Cur)
		// length is carried in g.aux for this opcode; see Assign.
		length := b.QueryAdvice(g.aux, constraint.Cur)
		identity := pc.Add(length).Sub(out).Sub(carry.Mul(constraint.Const(two64)))
		return []constraint.Expression{s.Mul(identity)}
	})
	cs.CreateGate("itype/JALR/carry-bool", func(b *constraint.GateBuilder) []constraint.Expression {
		s := b.QuerySelector(selJALR)
		carry := b.QueryAdvice(g.linkCarry, constraint.Cur)
		one := constraint.Const(field.One())
		return []constraint.Expression{s.Mul(carry.Mul(carry.Sub(one)))}
	})

	return g, sels
}

// Assign writes one two-row region for step if it belongs to this gadget.
func (g *Gadget) Assign(layouter *constraint.Layouter, step builder.OpStep) (handled bool, err error) {
	sel, ok := g.selectors[step.Instruction.Opcode]
	if !ok {
		return false, nil
	}

	instr := step.Instruction
	rs1, _ := step.RegisterOps.Read(instr.OpB)
	imm := instr.OpC
	out, _ := step.RegisterOps.Write(instr.OpA)

	err = layouter.AssignRegion("itype/"+instr.Opcode.String(), func(r *constraint.Region) error {
		if err := r.AssignAdvice("lhs", g.cols.Lhs, 0, field.FromUint64(rs1)); err != nil {
			return err
		}
		if err := r.AssignAdvice("rhs", g.cols.Rhs, 0, field.FromUint64(imm)); err != nil {
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

		if instr.Opcode == opcode.ADDI {
			carry := uint64(0)
			if rs1+imm < rs1 {
				carry = 1
			}
			return r.AssignAdvice("carry", g.carry, 0, field.FromUint64(carry))
		}

		if instr.Opcode == opcode.JALR {
			carry := uint64(0)
			if step.PC+instr.Length < step.PC {
				carry = 1
			}
			if err := r.AssignAdvice("pc", g.pc, 0, field.FromUint64(step.PC)); err != nil {
				return err
			}
			if err := r.AssignAdvice("length", g.aux, 0, field.FromUint64(instr.Length)); err != nil {
				return err
			}
			return r.AssignAdvice("linkCarry", g.linkCarry, 0, field.FromUint64(carry))
		}

		if _, _, isLoad := opcode.LoadWidth(instr.Opcode); isLoad {
			addr := step.MemoryOp.Address
			carry := uint64(0)
			if rs1+imm < rs1 {
				carry = 1
			}
			if err := r.AssignAdvice("addr", g.addr, 0, field.FromUint64(addr)); err != nil {
				return err
			}
			if err := r.AssignAdvice("addrCarry", g.addrCarry, 0, field.FromUint64(carry)); err != nil {
				return err
			}
			if instr.Opcode == opcode.LD {
				g.memCells[step.GlobalClk] = common.MemCell{Column: g.cols.Lhs, Row: r.Offset() + 1}
				return nil
			}
			return r.AssignAdvice("echo", g.aux, 0, field.FromUint64(out))
		}

		return nil
	})
	return true, err
}

// MemCells returns the absolute cell holding LD's loaded value, keyed by
// global_clk, for pkg/circuit to copy-constrain against the memory table.
func (g *Gadget) MemCells() map[uint64]common.MemCell {
	return g.memCells
}
