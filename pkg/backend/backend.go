// Package backend is the black-box proving backend boundary: a
// keygen/prove/verify interface standing in for the polynomial
// commitment scheme, FFT, and Fiat-Shamir transcript the spec treats as
// an external collaborator. MockBackend is the one concrete
// implementation this module ships, grounded the same way the teacher
// treats its external CUDA solver in pkg/gpu.CUDAProcess: a narrow
// interface the rest of the program depends on, with a process/backend
// swapped in behind it.
package backend

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/rv0-labs/rv0prove/pkg/circuit"
	"github.com/rv0-labs/rv0prove/pkg/constraint"
)

// Instances is the public input vector a proof is bound to: the
// program-code half-words and the program-input bytes, the same two
// values pkg/circuit.Main writes into its instance columns.
type Instances struct {
	ProgramCode  []uint16
	ProgramInput []byte
}

func (a Instances) equal(b Instances) bool {
	if len(a.ProgramCode) != len(b.ProgramCode) || len(a.ProgramInput) != len(b.ProgramInput) {
		return false
	}
	for i := range a.ProgramCode {
		if a.ProgramCode[i] != b.ProgramCode[i] {
			return false
		}
	}
	for i := range a.ProgramInput {
		if a.ProgramInput[i] != b.ProgramInput[i] {
			return false
		}
	}
	return true
}

// ProverParams is the full parameter set Prove needs. K is the circuit's
// size parameter (log2 of the row count a real backend would pad to);
// MockBackend does not pad, so K here is advisory only, carried through
// because a real backend would need it at proving time.
type ProverParams struct {
	K uint32
}

// VerifierParams is the "shrunk to the minimum needed by the verifier"
// subset of ProverParams spec.md describes for params.hex.
type VerifierParams struct {
	K uint32
}

// Verifier derives the verifier's trimmed parameter set from the full
// prover parameters.
func (p *ProverParams) Verifier() *VerifierParams {
	return &VerifierParams{K: p.K}
}

// VerifyingKey snapshots a circuit's shape. configure replays the exact
// column/gate layout Keygen observed; a real backend would instead bake
// a cryptographic commitment to that layout into the exported bytes.
// MockBackend keeps the closure so Verify can re-evaluate gates without
// ever being handed the circuit again, the same minimal surface spec.md
// asks of an on-chain verifier.
type VerifyingKey struct {
	NumAdvice   int
	NumFixed    int
	NumInstance int

	configure func(cs *constraint.ConstraintSystem)
}

// Proof is the opaque blob Prove emits. Bytes is a gob encoding of the
// synthesized witness and the instances it was proved against; a real
// backend would instead emit a constant-size cryptographic argument.
type Proof struct {
	Bytes []byte
}

// proofPayload is what Proof.Bytes actually gob-encodes: the full
// witness assignment plus the instances it was synthesized against, so
// Verify can catch a caller passing instances that don't match what was
// proved (Testable Property 6's "tampering any instance field" case).
type proofPayload struct {
	Assignment *constraint.Assignment
	Instances  Instances
}

// Backend is the black-box proving backend surface pkg/circuit depends
// on. MockBackend is the sole implementation; a real KZG/Fiat-Shamir
// backend is explicitly out of scope.
type Backend interface {
	Keygen(k uint32, main *circuit.Main) (*VerifyingKey, *ProverParams, error)
	Prove(params *ProverParams, main *circuit.Main, instances Instances) (*Proof, error)
	Verify(params *VerifierParams, vk *VerifyingKey, proof *Proof, instances Instances) error
}

// MockBackend proves by evaluating the mock prover's check
// (pkg/constraint.Evaluate) and treats a clean evaluation as proof of satisfaction, the same
// harness pkg/constraint documents for Testable Property 5. Verify
// re-runs that same evaluation against the decoded witness.
type MockBackend struct{}

// Keygen configures main against a fresh ConstraintSystem to capture its
// shape, without synthesizing a witness.
func (MockBackend) Keygen(k uint32, main *circuit.Main) (*VerifyingKey, *ProverParams, error) {
	cs := constraint.NewConstraintSystem()
	main.Configure(cs)
	vk := &VerifyingKey{
		NumAdvice:   cs.NumAdvice(),
		NumFixed:    cs.NumFixed(),
		NumInstance: cs.NumInstance(),
		configure:   main.Configure,
	}
	return vk, &ProverParams{K: k}, nil
}

// Prove synthesizes main's witness, checks it against every registered
// gate (the mock-prover round trip), and on success gob-encodes the
// witness and instances as the proof's bytes.
func (MockBackend) Prove(params *ProverParams, main *circuit.Main, instances Instances) (*Proof, error) {
	cs := constraint.NewConstraintSystem()
	main.Configure(cs)

	assignment := constraint.NewAssignment(cs)
	layouter := constraint.NewLayouter(assignment)
	if err := main.Synthesize(cs, layouter); err != nil {
		return nil, fmt.Errorf("backend: prove: synthesize: %w", err)
	}

	if failures := constraint.Evaluate(cs, assignment); len(failures) > 0 {
		return nil, fmt.Errorf("backend: prove: %d unsatisfied constraints, first: %w", len(failures), failures[0])
	}

	var buf bytes.Buffer
	payload := proofPayload{Assignment: assignment, Instances: instances}
	if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("backend: prove: encode proof: %w", err)
	}
	return &Proof{Bytes: buf.Bytes()}, nil
}

// Verify decodes proof, rejects it if its embedded instances don't match
// the instances the caller supplies, then re-evaluates every gate vk's
// circuit shape registers against the decoded witness.
func (MockBackend) Verify(params *VerifierParams, vk *VerifyingKey, proof *Proof, instances Instances) error {
	var payload proofPayload
	if err := gob.NewDecoder(bytes.NewReader(proof.Bytes)).Decode(&payload); err != nil {
		return fmt.Errorf("backend: verify: corrupt proof: %w", err)
	}
	if !payload.Instances.equal(instances) {
		return fmt.Errorf("backend: verify: instances do not match the proof")
	}
	if vk.configure == nil {
		return fmt.Errorf("backend: verify: verifying key carries no circuit shape")
	}

	cs := constraint.NewConstraintSystem()
	vk.configure(cs)
	if failures := constraint.Evaluate(cs, payload.Assignment); len(failures) > 0 {
		return fmt.Errorf("backend: verify: %d unsatisfied constraints, first: %w", len(failures), failures[0])
	}
	return nil
}
