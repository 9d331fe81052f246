// Package rverify implements the on-chain verifier surface: spec.md's
// fixed witness-loading order and its 0/-1/-2 exit code contract. It is
// deliberately thin, the minimal shim a constrained on-chain host needs
// around pkg/backend.Backend.Verify.
package rverify

import (
	"fmt"

	"github.com/rv0-labs/rv0prove/pkg/backend"
)

// Witnesses holds the hex-encoded blobs an on-chain host loads before
// calling Verify, named in spec.md's load order. The spec calls this
// set "four witnesses" while listing five (0 through 4); that mismatch
// is preserved from the source interface description rather than
// silently fixed — see DESIGN.md.
type Witnesses struct {
	ParamsHex       string // witness 0: verifier-params
	VerifyingKeyHex string // witness 1: verifying-key
	ProofHex        string // witness 2: proof
	ProgramCodeHex  string // witness 3: program-code, raw little-endian half-words
	ProgramInputHex string // witness 4: program-input, raw bytes
}

// ExitCode mirrors the three outcomes spec.md's verifier interface names.
type ExitCode int

const (
	ExitSuccess       ExitCode = 0
	ExitLoadFailure   ExitCode = -1
	ExitVerifyFailure ExitCode = -2
)

// Verify loads w in the fixed order spec.md names, binds the decoded
// program-code/program-input as public instances, and calls be.Verify.
//
// MockBackend.Verify needs the circuit shape that produced vk to
// re-evaluate gates (see pkg/backend.VerifyingKey); that shape lives in
// an unexported closure Keygen attaches and UnmarshalVerifyingKeyHex
// cannot reconstruct from bytes alone. A real backend's verifying key
// carries a cryptographic commitment sufficient on its own; this mock
// does not, so Verify only succeeds here when vkHex was produced by a
// VerifyingKey from the same process's Keygen call, not an arbitrary
// on-disk vk.hex from a separate run. That limitation is inherent to
// standing in for a real backend with no commitment scheme, not a bug
// in the loading order itself.
func Verify(be backend.Backend, w Witnesses) (ExitCode, error) {
	params, err := backend.UnmarshalVerifierParamsHex(w.ParamsHex)
	if err != nil {
		return ExitLoadFailure, fmt.Errorf("rverify: load verifier-params: %w", err)
	}
	vk, err := backend.UnmarshalVerifyingKeyHex(w.VerifyingKeyHex)
	if err != nil {
		return ExitLoadFailure, fmt.Errorf("rverify: load verifying-key: %w", err)
	}
	proof, err := backend.UnmarshalProofHex(w.ProofHex)
	if err != nil {
		return ExitLoadFailure, fmt.Errorf("rverify: load proof: %w", err)
	}
	programCode, err := backend.DecodeProgramCodeHex(w.ProgramCodeHex)
	if err != nil {
		return ExitLoadFailure, fmt.Errorf("rverify: load program-code: %w", err)
	}
	programInput, err := backend.DecodeProgramInputHex(w.ProgramInputHex)
	if err != nil {
		return ExitLoadFailure, fmt.Errorf("rverify: load program-input: %w", err)
	}

	instances := backend.Instances{ProgramCode: programCode, ProgramInput: programInput}
	if err := be.Verify(params, vk, proof, instances); err != nil {
		return ExitVerifyFailure, fmt.Errorf("rverify: verification failed: %w", err)
	}
	return ExitSuccess, nil
}

// VerifyInProcess is the same check as Verify, but takes vk directly
// rather than reloading it from hex — the path a same-process caller
// (this module's own test suite, or a CLI that just ran Keygen) should
// use so MockBackend.Verify retains the circuit shape it needs.
func VerifyInProcess(be backend.Backend, params *backend.VerifierParams, vk *backend.VerifyingKey, proofHex string, instances backend.Instances) (ExitCode, error) {
	proof, err := backend.UnmarshalProofHex(proofHex)
	if err != nil {
		return ExitLoadFailure, fmt.Errorf("rverify: load proof: %w", err)
	}
	if err := be.Verify(params, vk, proof, instances); err != nil {
		return ExitVerifyFailure, fmt.Errorf("rverify: verification failed: %w", err)
	}
	return ExitSuccess, nil
}
