package imt

import (
	"math/big"
	"math/bits"
)

// Proof is a membership proof: leaf content plus the sibling path from its
// position up to root.
type Proof struct {
	LeafIdx  uint32
	Leaf     Node
	Root     F
	Siblings []F
}

// InsertionProof is the transition proof emitted by a single Insert.
type InsertionProof struct {
	// OgBefore proves the predecessor at its pre-insertion position and root.
	OgBefore Proof
	// OgAfter proves the same predecessor, re-threaded, under rootAfter.
	OgAfter Proof
	// NewAfter proves the newly inserted leaf under rootAfter.
	NewAfter Proof
}

// BatchProof is the transition proof emitted by InsertBatch / InsertBatchAt.
type BatchProof struct {
	RootBefore F
	RootAfter  F

	// InsertionIdx is numOfLeaves at the start of the batch — the index
	// the first new leaf landed at.
	InsertionIdx uint32

	// EmptySubtreeRoot/EmptySubtreeSiblings prove that slot InsertionIdx —
	// the first of the m new leaves — held no data under RootBefore. When
	// InsertionIdx is itself an exact power of two, that slot does not
	// exist under RootBefore's own shape at all, so the path instead walks
	// the canonical all-zero subtree chain up to the level where RootBefore
	// becomes the sibling (the same one-level growth VerifyInsertionProof
	// already tolerates for a single Insert).
	EmptySubtreeRoot     F
	EmptySubtreeSiblings []F

	// OgLeaves are membership proofs (under RootBefore) of every distinct
	// predecessor that existed before the batch started.
	OgLeaves []Proof

	// PrevLeaves and NewLeaves are membership proofs of each updated
	// predecessor and each newly inserted leaf, aligned by insertion order.
	// Pair i is proven in the state right after item i was inserted, so
	// each pair carries its own root; the last NewLeaves root is RootAfter.
	PrevLeaves []Proof
	NewLeaves  []Proof
}

// nextPow2 returns the smallest power of two >= n, with nextPow2(0) == 1.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// padded returns leaves padded with zeroLeaf up to the smallest power of
// two >= len(leaves) (or size 1 if there are 0 or 1 leaves).
func padded(leaves []F, h Hasher) []F {
	size := nextPow2(len(leaves))
	out := make([]F, size)
	copy(out, leaves)
	z := zeroLeaf(h)
	for i := len(leaves); i < size; i++ {
		out[i] = z
	}
	return out
}

// merkleRoot computes the canonical root: leaves padded to the smallest
// power of two >= the current population, reduced level by level with
// H2. The root therefore depends on the current population, not on the
// tree's fixed depth.
func merkleRoot(leaves []F, h Hasher) F {
	level := padded(leaves, h)
	for len(level) > 1 {
		next := make([]F, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = h.Hash2(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}

// proofAt builds the membership path for idx against leaves, using the
// same padding scheme as merkleRoot, and returns the resulting root
// alongside the sibling list (ordered leaf-to-root).
func proofAt(leaves []F, idx int, h Hasher) (F, []F) {
	level := padded(leaves, h)
	i := idx
	var siblings []F
	for len(level) > 1 {
		sib := i ^ 1
		siblings = append(siblings, level[sib])
		next := make([]F, len(level)/2)
		for j := 0; j < len(next); j++ {
			next[j] = h.Hash2(level[2*j], level[2*j+1])
		}
		level = next
		i >>= 1
	}
	return level[0], siblings
}

// isPow2 reports whether n is an exact power of two. n == 0 is not.
func isPow2(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// ilog2 returns k such that n == 1<<k. n must be a power of two.
func ilog2(n uint32) int {
	return bits.TrailingZeros32(n)
}

// emptySubtreeProof proves that slot idx held no data under rootBefore,
// ahead of a batch about to append new leaves starting there. When idx
// already has room in leavesBefore's own padded shape, this is an
// ordinary membership path for a zero leaf. When idx sits exactly at that
// shape's boundary (idx is a power of two), the slot requires one more
// level than rootBefore's tree has — the path instead walks the canonical
// all-zero subtree chain (Hasher.Hash2 folded onto itself) up to the point
// where rootBefore itself is the sibling.
func emptySubtreeProof(leavesBefore []F, idx uint32, rootBefore F, h Hasher) (F, []F) {
	if !isPow2(idx) {
		return proofAt(leavesBefore, int(idx), h)
	}
	k := ilog2(idx)
	siblings := make([]F, k+1)
	z := zeroLeaf(h)
	for i := 0; i < k; i++ {
		siblings[i] = z
		z = h.Hash2(z, z)
	}
	siblings[k] = rootBefore
	root := verifyPath(zeroLeaf(h), idx, siblings, h)
	return root, siblings
}

// verifyPath recomputes the root from leaf and siblings following idx's
// bit pattern (bit 0 means leaf is the left child at that level).
func verifyPath(leaf F, idx uint32, siblings []F, h Hasher) F {
	hash := leaf
	i := idx
	for _, sib := range siblings {
		if i&1 == 0 {
			hash = h.Hash2(hash, sib)
		} else {
			hash = h.Hash2(sib, hash)
		}
		i >>= 1
	}
	return hash
}

// Prove returns a membership proof for key, rebuilding the leaf array
// fresh (matching the tree's current population and padding).
func (t *Tree) Prove(keyBig *big.Int) (*Proof, error) {
	if err := t.requireInit(); err != nil {
		return nil, err
	}
	key, err := fromBigInt(keyBig, t.failOnTruncation)
	if err != nil {
		return nil, wrapKey(ErrInvalidKey, &key)
	}
	idx := -1
	for i := range t.nodes {
		if t.nodes[i].Key.Equal(&key) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, wrapKey(ErrNotFound, &key)
	}
	root, siblings := proofAt(t.leaves, idx, t.cfg.Hasher)
	return &Proof{LeafIdx: uint32(idx), Leaf: t.nodes[idx], Root: root, Siblings: siblings}, nil
}

// ProveExclusion proves that key is absent by returning a membership
// proof of its predecessor: the node n with n.Key < key and
// (n.NextKey > key or n.NextKey == 0).
func (t *Tree) ProveExclusion(keyBig *big.Int) (*Proof, error) {
	if err := t.requireInit(); err != nil {
		return nil, err
	}
	if keyBig.Sign() <= 0 {
		return nil, ErrInvalidKey
	}
	key, err := fromBigInt(keyBig, t.failOnTruncation)
	if err != nil {
		return nil, ErrInvalidKey
	}

	for i := range t.nodes {
		n := &t.nodes[i]
		if cmpKey(&n.Key, &key) >= 0 {
			if n.Key.Equal(&key) {
				return nil, wrapKey(ErrKeyExists, &key)
			}
			continue
		}
		if isZero(&n.NextKey) || cmpKey(&n.NextKey, &key) > 0 {
			root, siblings := proofAt(t.leaves, i, t.cfg.Hasher)
			return &Proof{LeafIdx: uint32(i), Leaf: *n, Root: root, Siblings: siblings}, nil
		}
	}
	return nil, wrapKey(ErrNotFound, &key)
}

// VerifyProof recomputes the leaf hash from p.Leaf and checks that
// walking p.Siblings from p.LeafIdx reproduces p.Root. It never errors —
// a malformed proof simply fails to verify.
func VerifyProof(p *Proof, h Hasher) bool {
	if p == nil || h == nil {
		return false
	}
	hash := leafHash(h, &p.Leaf)
	computed := verifyPath(hash, p.LeafIdx, p.Siblings, h)
	return computed.Equal(&p.Root)
}

// VerifyInsertionProof checks a single-insertion transition proof per the
// rules pinned down in the tree's design: all three sub-proofs verify
// individually, the after-siblings agree in length, the before-siblings
// differ from the after-og-siblings by at most one level in length, and
// the new leaf's subtree is exactly the sibling that appears in the
// predecessor's post-update path at the first point the two diverge.
func VerifyInsertionProof(p *InsertionProof, h Hasher) bool {
	if p == nil || h == nil {
		return false
	}
	if !VerifyProof(&p.OgBefore, h) || !VerifyProof(&p.OgAfter, h) || !VerifyProof(&p.NewAfter, h) {
		return false
	}
	if len(p.OgAfter.Siblings) != len(p.NewAfter.Siblings) {
		return false
	}
	before, after := len(p.OgBefore.Siblings), len(p.OgAfter.Siblings)
	if before != after && before != after-1 {
		return false
	}

	diff := -1
	for i := 0; i < before; i++ {
		if !p.OgBefore.Siblings[i].Equal(&p.OgAfter.Siblings[i]) {
			diff = i
			break
		}
	}
	if diff < 0 {
		diff = before
	}
	for i := 0; i < diff; i++ {
		if !p.OgBefore.Siblings[i].Equal(&p.OgAfter.Siblings[i]) {
			return false
		}
	}
	if diff >= len(p.NewAfter.Siblings) || diff >= len(p.OgAfter.Siblings) {
		return false
	}

	newLeafHash := leafHash(h, &p.NewAfter.Leaf)
	newSubtreeRoot := verifyPath(newLeafHash, p.NewAfter.LeafIdx, p.NewAfter.Siblings[:diff], h)
	return newSubtreeRoot.Equal(&p.OgAfter.Siblings[diff])
}

// VerifyBatchInsertionProof checks a batch-insertion transition proof per
// the tree's design. The empty-subtree check binds InsertionIdx alone, not
// the whole [InsertionIdx, InsertionIdx+m) range: a single sibling path can
// only speak for one leaf slot. When InsertionIdx is an exact power of
// two, the path has to cross into a level RootBefore's own tree doesn't
// have yet, so the check against RootBefore walks the canonical all-zero
// subtree chain instead of a plain equality.
func VerifyBatchInsertionProof(p *BatchProof, h Hasher) bool {
	if p == nil || h == nil {
		return false
	}
	if len(p.PrevLeaves) != len(p.NewLeaves) || len(p.PrevLeaves) == 0 {
		return false
	}

	ogByIdx := make(map[uint32]*Proof, len(p.OgLeaves))
	for i := range p.OgLeaves {
		og := &p.OgLeaves[i]
		if !og.Root.Equal(&p.RootBefore) || !VerifyProof(og, h) {
			return false
		}
		if og.LeafIdx >= p.InsertionIdx {
			return false
		}
		ogByIdx[og.LeafIdx] = og
	}

	z := zeroLeaf(h)
	emptySubtreeComputed := verifyPath(z, p.InsertionIdx, p.EmptySubtreeSiblings, h)
	if !emptySubtreeComputed.Equal(&p.EmptySubtreeRoot) {
		return false
	}
	if isPow2(p.InsertionIdx) {
		k := ilog2(p.InsertionIdx)
		if len(p.EmptySubtreeSiblings) != k+1 {
			return false
		}
		chain := zeroLeaf(h)
		for i := 0; i < k; i++ {
			if !p.EmptySubtreeSiblings[i].Equal(&chain) {
				return false
			}
			chain = h.Hash2(chain, chain)
		}
		if !p.EmptySubtreeSiblings[k].Equal(&p.RootBefore) {
			return false
		}
	} else if !p.EmptySubtreeRoot.Equal(&p.RootBefore) {
		return false
	}

	for i := range p.NewLeaves {
		nl := &p.NewLeaves[i]
		pl := &p.PrevLeaves[i]

		if !VerifyProof(nl, h) || !VerifyProof(pl, h) {
			return false
		}
		if nl.LeafIdx != p.InsertionIdx+uint32(i) {
			return false
		}
		if !nl.Leaf.Key.Equal(&pl.Leaf.NextKey) {
			return false
		}
		if nl.LeafIdx != pl.Leaf.NextIdx {
			return false
		}

		if pl.LeafIdx < p.InsertionIdx {
			og, ok := ogByIdx[pl.LeafIdx]
			if !ok {
				return false
			}
			if !og.Leaf.Key.Equal(&pl.Leaf.Key) || !og.Leaf.Value.Equal(&pl.Leaf.Value) {
				return false
			}
			if !isZero(&og.Leaf.NextKey) && cmpKey(&og.Leaf.NextKey, &pl.Leaf.NextKey) <= 0 {
				return false
			}
		}
	}

	last := &p.NewLeaves[len(p.NewLeaves)-1]
	return last.Root.Equal(&p.RootAfter)
}
