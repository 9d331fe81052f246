package backend

import (
	"testing"

	"github.com/rv0-labs/rv0prove/pkg/builder"
	"github.com/rv0-labs/rv0prove/pkg/circuit"
	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/opcode"
	"github.com/rv0-labs/rv0prove/pkg/trace"
)

// addiTrace is a one-step trace: x1 = x0 + 5.
func addiTrace() *trace.Trace {
	return &trace.Trace{
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
}

func buildMain(t *testing.T) *circuit.Main {
	t.Helper()
	eb := builder.NewEntryBuilder()
	if err := eb.Build(addiTrace()); err != nil {
		t.Fatalf("build: %v", err)
	}
	return circuit.NewMain(eb, nil, nil)
}

func TestMockBackendProveVerifyRoundTrip(t *testing.T) {
	main := buildMain(t)
	var be MockBackend

	vk, params, err := be.Keygen(4, main)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	instances := Instances{}
	proof, err := be.Prove(params, main, instances)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	if err := be.Verify(params.Verifier(), vk, proof, instances); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestMockBackendVerifyRejectsTamperedProof(t *testing.T) {
	main := buildMain(t)
	var be MockBackend

	vk, params, err := be.Keygen(4, main)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	instances := Instances{}
	proof, err := be.Prove(params, main, instances)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	tampered := &Proof{Bytes: append([]byte(nil), proof.Bytes...)}
	tampered.Bytes[0] ^= 0xff
	if err := be.Verify(params.Verifier(), vk, tampered, instances); err == nil {
		t.Fatal("expected tampered proof to fail verification")
	}
}

func TestMockBackendVerifyRejectsMismatchedInstances(t *testing.T) {
	main := buildMain(t)
	var be MockBackend

	vk, params, err := be.Keygen(4, main)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	proof, err := be.Prove(params, main, Instances{})
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	wrong := Instances{ProgramCode: []uint16{0xdead}}
	if err := be.Verify(params.Verifier(), vk, proof, wrong); err == nil {
		t.Fatal("expected mismatched instances to fail verification")
	}
}

func TestArtifactHexRoundTrip(t *testing.T) {
	vp := &VerifierParams{K: 17}
	got, err := UnmarshalVerifierParamsHex(vp.MarshalHex())
	if err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if got.K != vp.K {
		t.Fatalf("K mismatch: got %d want %d", got.K, vp.K)
	}

	code := []uint16{1, 2, 3, 0xffff}
	gotCode, err := DecodeProgramCodeHex(EncodeProgramCodeHex(code))
	if err != nil {
		t.Fatalf("decode program code: %v", err)
	}
	if len(gotCode) != len(code) {
		t.Fatalf("length mismatch: got %d want %d", len(gotCode), len(code))
	}
	for i := range code {
		if gotCode[i] != code[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, gotCode[i], code[i])
		}
	}

	input := []byte{0, 1, 2, 255}
	gotInput, err := DecodeProgramInputHex(EncodeProgramInputHex(input))
	if err != nil {
		t.Fatalf("decode program input: %v", err)
	}
	if len(gotInput) != len(input) {
		t.Fatalf("input length mismatch: got %d want %d", len(gotInput), len(input))
	}
}

func TestVerifyingKeyHexRoundTripPreservesShape(t *testing.T) {
	main := buildMain(t)
	var be MockBackend

	vk, _, err := be.Keygen(4, main)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	encoded, err := vk.MarshalHex()
	if err != nil {
		t.Fatalf("marshal vk: %v", err)
	}
	decoded, err := UnmarshalVerifyingKeyHex(encoded)
	if err != nil {
		t.Fatalf("unmarshal vk: %v", err)
	}
	if decoded.NumAdvice != vk.NumAdvice || decoded.NumFixed != vk.NumFixed || decoded.NumInstance != vk.NumInstance {
		t.Fatalf("shape mismatch: got %+v want %+v", decoded, vk)
	}
}
