// Package crypto exposes the indexed Merkle tree as an interface surface,
// so callers can depend on the capability without importing the concrete
// implementation package directly.
package crypto

import (
	"math/big"

	"github.com/nilhash/imt/internal/core/infrastructure/crypto/imt"
)

// IndexedMerkleTree is the mutation and proof surface a concrete tree
// implementation provides.
type IndexedMerkleTree interface {
	Init() error
	Depth() uint8
	NumLeaves() int
	Root() imt.F

	Insert(key, value *big.Int) (*imt.InsertionProof, error)
	InsertAt(prevIdx uint32, key, value *big.Int) (*imt.InsertionProof, error)
	InsertBatch(items []imt.Item) (*imt.BatchProof, error)
	InsertBatchAt(items []imt.Item, prevIdxs []uint32) (*imt.BatchProof, error)

	Prove(key *big.Int) (*imt.Proof, error)
	ProveExclusion(key *big.Int) (*imt.Proof, error)
}

// ProofVerifier groups the side-effect-free verification functions against
// an injected Hasher, independent of any particular tree instance.
type ProofVerifier interface {
	VerifyProof(p *imt.Proof) bool
	VerifyInsertionProof(p *imt.InsertionProof) bool
	VerifyBatchInsertionProof(p *imt.BatchProof) bool
}

// hasherVerifier adapts a fixed imt.Hasher into a ProofVerifier.
type hasherVerifier struct {
	h imt.Hasher
}

// NewProofVerifier returns a ProofVerifier bound to h. A nil h defaults to
// imt.DefaultHasher().
func NewProofVerifier(h imt.Hasher) ProofVerifier {
	if h == nil {
		h = imt.DefaultHasher()
	}
	return hasherVerifier{h: h}
}

func (v hasherVerifier) VerifyProof(p *imt.Proof) bool {
	return imt.VerifyProof(p, v.h)
}

func (v hasherVerifier) VerifyInsertionProof(p *imt.InsertionProof) bool {
	return imt.VerifyInsertionProof(p, v.h)
}

func (v hasherVerifier) VerifyBatchInsertionProof(p *imt.BatchProof) bool {
	return imt.VerifyBatchInsertionProof(p, v.h)
}

var _ IndexedMerkleTree = (*imt.Tree)(nil)
