package imt

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// F is the scalar field element type the tree operates over. It is opaque
// byte-backed state (gnark-crypto's Montgomery-form representation of the
// BN254 scalar field) — never treat it as a native integer; compare with
// Equal/Cmp and construct it only through fromBigInt/fromUint64.
type F = fr.Element

// modulus is the BN254 scalar field prime p.
func modulus() *big.Int {
	return fr.Modulus()
}

// zero and one are small field constants used throughout the tree (the
// sentinel's fields, "no successor" markers, widening nextIdx into F).
var (
	zeroF F
	oneF  F
)

func init() {
	zeroF.SetZero()
	oneF.SetOne()
}

// fromBigInt converts a big.Int into F, validating it against the field
// modulus when failOnTruncation is set. Negative inputs are always
// rejected: the tree's keys and values are non-negative field elements.
func fromBigInt(v *big.Int, failOnTruncation bool) (F, error) {
	var out F
	if v.Sign() < 0 {
		return out, errInvalidRange
	}
	if failOnTruncation && v.Cmp(modulus()) > 0 {
		return out, errInvalidRange
	}
	out.SetBigInt(v)
	return out, nil
}

// errInvalidRange is a private sentinel translated by callers into the
// public ErrInvalidKey / ErrInvalidValue errors, which carry the
// offending argument's name.
var errInvalidRange = &rangeError{}

type rangeError struct{}

func (*rangeError) Error() string { return "imt: value out of field range" }

// fromUint64 lifts a small native integer (e.g. nextIdx) losslessly into F.
func fromUint64(v uint64) F {
	var out F
	out.SetUint64(v)
	return out
}

// cmpKey returns -1, 0 or 1 as a <, == or > b, treating both as field elements reduced
// mod p (the tree's keys are always validated to be canonical before
// being stored, so Cmp on the Montgomery form is consistent ordering).
func cmpKey(a, b *F) int {
	return a.Cmp(b)
}

func isZero(a *F) bool {
	return a.IsZero()
}

// bigIntOf renders a field element back to its canonical big.Int form,
// used only for error messages and the CLI driver.
func bigIntOf(a *F) *big.Int {
	var b big.Int
	a.BigInt(&b)
	return &b
}
