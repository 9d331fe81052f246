package trace

import (
	"strings"
	"testing"

	"github.com/rv0-labs/rv0prove/pkg/opcode"
)

// TestDecodeS1 decodes the literal ADD scenario from the interface spec
// (S1: pc=65772, ADD x31, x1, x3).
func TestDecodeS1(t *testing.T) {
	doc := `{
		"cycles": 1, "return_value": 0,
		"steps": [
			{ "global_clk": 0, "pc": 65772,
			  "instruction": { "opcode": "ADD", "length": 4,
			                   "op_a": 31, "op_b": 1, "op_c": 3,
			                   "imm_b": false, "imm_c": false },
			  "registers": [0,0,494288,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0] }
		]
	}`

	tr, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(tr.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(tr.Steps))
	}
	step := tr.Steps[0]
	if step.PC != 65772 {
		t.Errorf("pc = %d, want 65772", step.PC)
	}
	if step.Instruction.Opcode != opcode.ADD {
		t.Errorf("opcode = %s, want ADD", step.Instruction.Opcode)
	}
	if step.Instruction.OpA != 31 || step.Instruction.OpB != 1 || step.Instruction.OpC != 3 {
		t.Errorf("operands = (%d,%d,%d), want (31,1,3)", step.Instruction.OpA, step.Instruction.OpB, step.Instruction.OpC)
	}
	if step.Registers[2] != 494288 {
		t.Errorf("x2 snapshot = %d, want 494288", step.Registers[2])
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	doc := `{"cycles":0,"return_value":0,"steps":[
		{"global_clk":0,"pc":0,"instruction":{"opcode":"NOTREAL","length":4,"op_a":0,"op_b":0,"op_c":0,"imm_b":false,"imm_c":false},"registers":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0]}
	]}`
	if _, err := Decode(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for an unknown opcode mnemonic")
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	if _, err := Decode(strings.NewReader("not json")); err == nil {
		t.Fatal("expected a decode error for malformed JSON")
	}
}
