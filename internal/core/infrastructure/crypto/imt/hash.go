package imt

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Hasher is the pluggable hash capability the tree is built against: a
// 2-to-1 compression function for Merkle internal nodes and a 4-to-1
// compression function for leaf encoding. Implementations MUST be pure
// functions of their inputs (no hidden state carried between calls).
//
// The built-in instantiation (DefaultHasher) is MiMC over BN254; any
// ZK-friendly field hash with the right arities, such as Poseidon over
// BN254, can be substituted, as long as every
// implementation preserves Hash4's input ordering: (key, nextIdx, nextKey,
// value).
type Hasher interface {
	Hash2(a, b F) F
	Hash4(a, b, c, d F) F
}

// defaultHasher is the tree's built-in Hasher: a native (non-circuit)
// MiMC permutation over the BN254 scalar field, using Miyaguchi-Preneel
// chaining the way gnark-crypto's reference mimc hash does. It is
// stateless between calls — each Hash2/Hash4 call owns a fresh running
// hash — so a single defaultHasher value is safe to share across trees.
type defaultHasher struct{}

// DefaultHasher returns the tree's reference Hasher.
func DefaultHasher() Hasher {
	return defaultHasher{}
}

func (defaultHasher) Hash2(a, b F) F {
	return mimcSum(a, b)
}

func (defaultHasher) Hash4(a, b, c, d F) F {
	return mimcSum(a, b, c, d)
}

func mimcSum(elems ...F) F {
	h := mimc.NewMiMC()
	for i := range elems {
		b := elems[i].Bytes()
		h.Write(b[:])
	}
	var out F
	out.SetBytes(h.Sum(nil))
	return out
}

// zeroLeaf returns H4(0,0,0,0) for the given Hasher — the canonical
// placeholder hash for unused/padding leaf slots.
func zeroLeaf(h Hasher) F {
	return h.Hash4(zeroF, zeroF, zeroF, zeroF)
}
