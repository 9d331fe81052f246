package backend

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"fmt"
)

// MarshalHex encodes the verifier parameters as spec.md's params.hex:
// little-endian k (4 bytes). A real backend would follow k with the
// G1/G2 basis points the commitment scheme needs; MockBackend carries no
// commitment scheme, so k is the whole of it.
func (p *VerifierParams) MarshalHex() string {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], p.K)
	return hex.EncodeToString(raw[:])
}

// UnmarshalVerifierParamsHex decodes params.hex.
func UnmarshalVerifierParamsHex(s string) (*VerifierParams, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("backend: params.hex: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("backend: params.hex: truncated, want at least 4 bytes, got %d", len(raw))
	}
	return &VerifierParams{K: binary.LittleEndian.Uint32(raw[:4])}, nil
}

// vkSnapshot is the gob-friendly exported mirror of VerifyingKey; the
// configure closure that lets MockBackend re-evaluate gates never
// crosses the wire, the same way a real verifying key's trusted-setup
// commitment doesn't carry the circuit description that produced it.
type vkSnapshot struct {
	NumAdvice   int
	NumFixed    int
	NumInstance int
}

// MarshalHex encodes the verifying key as spec.md's vk.hex.
func (vk *VerifyingKey) MarshalHex() (string, error) {
	var buf bytes.Buffer
	snap := vkSnapshot{NumAdvice: vk.NumAdvice, NumFixed: vk.NumFixed, NumInstance: vk.NumInstance}
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return "", fmt.Errorf("backend: vk.hex: encode: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// UnmarshalVerifyingKeyHex decodes vk.hex. The returned key has no
// configure closure: it can be used for shape comparisons but not passed
// to MockBackend.Verify directly — a caller that reloaded a verifying
// key from disk has, in this mock, lost the ability to re-derive gates
// from it, matching how a real verifier never holds the circuit either.
func UnmarshalVerifyingKeyHex(s string) (*VerifyingKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("backend: vk.hex: %w", err)
	}
	var snap vkSnapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("backend: vk.hex: decode: %w", err)
	}
	return &VerifyingKey{NumAdvice: snap.NumAdvice, NumFixed: snap.NumFixed, NumInstance: snap.NumInstance}, nil
}

// MarshalHex encodes the proof as spec.md's proof.hex.
func (p *Proof) MarshalHex() string {
	return hex.EncodeToString(p.Bytes)
}

// UnmarshalProofHex decodes proof.hex.
func UnmarshalProofHex(s string) (*Proof, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("backend: proof.hex: %w", err)
	}
	return &Proof{Bytes: raw}, nil
}

// EncodeProgramCodeHex renders the program-code witness spec.md's
// verifier interface loads fourth: raw little-endian half-words, no
// length prefix (the loader is handed the vector's length separately).
func EncodeProgramCodeHex(code []uint16) string {
	buf := make([]byte, 2*len(code))
	for i, w := range code {
		binary.LittleEndian.PutUint16(buf[2*i:], w)
	}
	return hex.EncodeToString(buf)
}

// DecodeProgramCodeHex is the inverse of EncodeProgramCodeHex.
func DecodeProgramCodeHex(s string) ([]uint16, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("backend: program-code witness: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("backend: program-code witness: odd byte length %d", len(raw))
	}
	code := make([]uint16, len(raw)/2)
	for i := range code {
		code[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return code, nil
}

// EncodeProgramInputHex renders the program-input witness spec.md's
// verifier interface loads fifth: raw bytes, hex-encoded.
func EncodeProgramInputHex(input []byte) string {
	return hex.EncodeToString(input)
}

// DecodeProgramInputHex is the inverse of EncodeProgramInputHex.
func DecodeProgramInputHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("backend: program-input witness: %w", err)
	}
	return raw, nil
}
