// Package field implements scalar-field arithmetic for the constraint
// system. Every advice, fixed, and instance cell in pkg/constraint holds
// an Element. The modulus is the BN254 scalar field, the field the
// original halo2 circuits this core replaces ran over. math/big is the
// only field-arithmetic dependency pulled in: github.com/consensys/gnark-crypto
// is the nearest ecosystem candidate (its bn254/fr package implements this
// exact field with assembly-optimized reduction), but it only turns up in
// two retrieved repos' go.mod require blocks with no source actually
// importing it, so there is nothing to ground a switch on.
package field

import "math/big"

// Modulus is the BN254 scalar field order.
var Modulus, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// Element is a field element, always kept reduced into [0, Modulus).
type Element struct {
	v *big.Int
}

// Zero returns the additive identity.
func Zero() Element { return Element{v: big.NewInt(0)} }

// One returns the multiplicative identity.
func One() Element { return Element{v: big.NewInt(1)} }

// FromUint64 lifts a machine word into the field.
func FromUint64(x uint64) Element {
	return Element{v: new(big.Int).SetUint64(x)}
}

// FromInt64 lifts a signed 64-bit value, wrapping negatives into [0, Modulus).
func FromInt64(x int64) Element {
	v := big.NewInt(x)
	return Element{v: v.Mod(v, Modulus)}
}

// FromBigInt reduces an arbitrary big.Int into the field.
func FromBigInt(x *big.Int) Element {
	v := new(big.Int).Mod(x, Modulus)
	return Element{v: v}
}

// Bool returns 1 or 0.
func Bool(b bool) Element {
	if b {
		return One()
	}
	return Zero()
}

func (e Element) reduced() *big.Int {
	if e.v == nil {
		return big.NewInt(0)
	}
	return e.v
}

// Add returns e + o mod Modulus.
func (e Element) Add(o Element) Element {
	r := new(big.Int).Add(e.reduced(), o.reduced())
	return Element{v: r.Mod(r, Modulus)}
}

// Sub returns e - o mod Modulus.
func (e Element) Sub(o Element) Element {
	r := new(big.Int).Sub(e.reduced(), o.reduced())
	return Element{v: r.Mod(r, Modulus)}
}

// Mul returns e * o mod Modulus.
func (e Element) Mul(o Element) Element {
	r := new(big.Int).Mul(e.reduced(), o.reduced())
	return Element{v: r.Mod(r, Modulus)}
}

// Neg returns -e mod Modulus.
func (e Element) Neg() Element {
	r := new(big.Int).Neg(e.reduced())
	return Element{v: r.Mod(r, Modulus)}
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e.reduced().Sign() == 0
}

// Equal reports whether e and o represent the same residue.
func (e Element) Equal(o Element) bool {
	return e.reduced().Cmp(o.reduced()) == 0
}

// Pow64 computes 2^64 mod Modulus, used by overflow-modeling gates that
// subtract a carry bit scaled by the native word size from a 128-bit-safe
// field sum.
func Pow64() Element {
	r := new(big.Int).Lsh(big.NewInt(1), 64)
	return Element{v: r.Mod(r, Modulus)}
}

// Inverse returns e^-1 mod Modulus. Callers must not invoke it on the zero
// element; the is-zero gadget in pkg/gadget/btype instead assigns Zero()
// as the witness inverse of a zero difference.
func (e Element) Inverse() Element {
	r := new(big.Int).ModInverse(e.reduced(), Modulus)
	return Element{v: r}
}

// GobEncode delegates to big.Int's own gob support, so an Element round
// trips through encoding/gob the way pkg/constraint.Assignment's witness
// snapshot and pkg/backend's proof bytes need it to.
func (e Element) GobEncode() ([]byte, error) {
	return e.reduced().GobEncode()
}

// GobDecode restores e from GobEncode's output.
func (e *Element) GobDecode(data []byte) error {
	v := new(big.Int)
	if err := v.GobDecode(data); err != nil {
		return err
	}
	e.v = v
	return nil
}

// Bytes returns the canonical big-endian encoding, left-padded to 32 bytes.
func (e Element) Bytes() [32]byte {
	var out [32]byte
	e.reduced().FillBytes(out[:])
	return out
}

// String renders the decimal residue, mostly useful in error messages.
func (e Element) String() string {
	return e.reduced().String()
}
