package rverify

import (
	"testing"

	"github.com/rv0-labs/rv0prove/pkg/backend"
	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/circuit"
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/trace"
)

func buildMain(t *testing.T) *circuit.Main {
	t.Helper()
	tr := &trace.Trace{
		Steps: []trace.Step{
			{
				GlobalClk: 0,
				PC:        0,
				Instruction: isa.Instruction{
					Opcode: opcode.ADDI,
					Length: 4,
					OpA:    1,
					OpB:    0,
					OpC:    5,
					ImmC:   true,
				},
			},
		},
	}
	eb := builder.NewEntryBuilder()
	if err := eb.Build(tr); err != nil {
		t.Fatalf("build: %v", err)
	}
	return circuit.NewMain(eb, nil, nil)
}

func TestVerifyInProcessExitCodes(t *testing.T) {
	main := buildMain(t)
	var be backend.MockBackend

	vk, params, err := be.Keygen(4, main)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	instances := backend.Instances{}
	proof, err := be.Prove(params, main, instances)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	code, err := VerifyInProcess(be, params.Verifier(), vk, proof.MarshalHex(), instances)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if code != ExitSuccess {
		t.Fatalf("expected ExitSuccess, got %d", code)
	}

	code, err = VerifyInProcess(be, params.Verifier(), vk, "not-valid-hex", instances)
	if err == nil || code != ExitLoadFailure {
		t.Fatalf("expected ExitLoadFailure for corrupt proof hex, got code=%d err=%v", code, err)
	}

	code, err = VerifyInProcess(be, params.Verifier(), vk, proof.MarshalHex(), backend.Instances{ProgramCode: []uint16{1}})
	if err == nil || code != ExitVerifyFailure {
		t.Fatalf("expected ExitVerifyFailure for mismatched instances, got code=%d err=%v", code, err)
	}
}

func TestVerifyLoadsWitnessesInFixedOrder(t *testing.T) {
	main := buildMain(t)
	var be backend.MockBackend

	vk, params, err := be.Keygen(4, main)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	instances := backend.Instances{}
	proof, err := be.Prove(params, main, instances)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	vkHex, err := vk.MarshalHex()
	if err != nil {
		t.Fatalf("marshal vk: %v", err)
	}

	w := Witnesses{
		ParamsHex:       params.Verifier().MarshalHex(),
		VerifyingKeyHex: vkHex,
		ProofHex:        proof.MarshalHex(),
		ProgramCodeHex:  backend.EncodeProgramCodeHex(nil),
		ProgramInputHex: backend.EncodeProgramInputHex(nil),
	}

	// A vk round-tripped through hex carries no circuit shape (see
	// Verify's doc comment): MockBackend.Verify correctly reports this
	// as a verification failure rather than a load failure, since all
	// five witnesses decoded cleanly.
	code, err := Verify(be, w)
	if err == nil || code != ExitVerifyFailure {
		t.Fatalf("expected ExitVerifyFailure for a hex-round-tripped vk, got code=%d err=%v", code, err)
	}

	w.ParamsHex = "zz"
	code, err = Verify(be, w)
	if err == nil || code != ExitLoadFailure {
		t.Fatalf("expected ExitLoadFailure for corrupt params hex, got code=%d err=%v", code, err)
	}
}
