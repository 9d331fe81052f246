// Package trace decodes the host-produced execution trace JSON described
// in the interface spec. This package is intentionally thin: it only
// turns bytes into Go values, the same separation of concerns the
// teacher keeps between pkg/result (serialization) and pkg/search
// (semantics) — validating that a trace is *semantically* consistent is
// the entry builder's job (pkg/builder), not this one's.
package trace

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// wireInstruction mirrors the JSON shape of an instruction in a trace
// file; Opcode is a mnemonic string there, not the numeric Opcode this
// module uses internally.
type wireInstruction struct {
	Opcode string `json:"opcode"`
	Length uint64 `json:"length"`
	OpA    uint64 `json:"op_a"`
	OpB    uint64 `json:"op_b"`
	OpC    uint64 `json:"op_c"`
	ImmB   bool   `json:"imm_b"`
	ImmC   bool   `json:"imm_c"`
}

type wireStep struct {
	GlobalClk   uint64          `json:"global_clk"`
	PC          uint64          `json:"pc"`
	Instruction wireInstruction `json:"instruction"`
	Registers   [32]uint64      `json:"registers"`
}

type wireTrace struct {
	Cycles      uint64     `json:"cycles"`
	ReturnValue uint8      `json:"return_value"`
	Steps       []wireStep `json:"steps"`
}

// Step is one decoded trace step: a PC, the instruction issued there, and
// the full register snapshot taken before the step executes.
type Step struct {
	GlobalClk   uint64
	PC          uint64
	Instruction isa.Instruction
	Registers   [32]uint64
}

// Trace is a fully decoded host trace.
type Trace struct {
	Cycles      uint64
	ReturnValue uint8
	Steps       []Step
}

// Decode reads a trace JSON document from r. Decoding failures (malformed
// JSON, an unrecognized opcode mnemonic) are serialization errors,
// surfaced at this I/O boundary rather than deferred to replay.
func Decode(r io.Reader) (*Trace, error) {
	var wire wireTrace
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("trace: decode json: %w", err)
	}

	steps := make([]Step, len(wire.Steps))
	for i, ws := range wire.Steps {
		op, err := opcode.FromMnemonic(ws.Instruction.Opcode)
		if err != nil {
			return nil, fmt.Errorf("trace: step %d: %w", i, err)
		}
		steps[i] = Step{
			GlobalClk: ws.GlobalClk,
			PC:        ws.PC,
			Instruction: isa.Instruction{
				Opcode: op,
				Length: ws.Instruction.Length,
				OpA:    ws.Instruction.OpA,
				OpB:    ws.Instruction.OpB,
				OpC:    ws.Instruction.OpC,
				ImmB:   ws.Instruction.ImmB,
				ImmC:   ws.Instruction.ImmC,
			},
			Registers: ws.Registers,
		}
	}

	return &Trace{
		Cycles:      wire.Cycles,
		ReturnValue: wire.ReturnValue,
		Steps:       steps,
	}, nil
}
