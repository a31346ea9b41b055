package imt

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

// Item is one (key, value) pair submitted to InsertBatch / InsertBatchAt.
type Item struct {
	Key   *big.Int
	Value *big.Int
}

// InsertBatch inserts items atomically: either the whole batch succeeds
// and every item lands re-threaded into the linked list, or the tree is
// left exactly as it was. Predecessor search runs against the in-progress
// state, so an item's predecessor may be another item earlier in the
// same batch.
func (t *Tree) InsertBatch(items []Item) (*BatchProof, error) {
	return t.insertBatch(items, nil)
}

// InsertBatchAt is the "on-chain" batch variant: the caller supplies an
// explicit prevIdxs witness per item instead of letting the tree search
// for predecessors. An index < the batch's starting numOfLeaves names an
// existing node; an index >= that names a pending node earlier in the
// same batch (its position in the final array, i.e.
// startIdx + (index - startIdx)). Witnessed existing-node predecessors
// MUST be non-decreasing across the batch — this is a checked shortcut,
// not a trusted one.
func (t *Tree) InsertBatchAt(items []Item, prevIdxs []uint32) (*BatchProof, error) {
	if len(items) != len(prevIdxs) {
		return nil, fmt.Errorf("%w: prevIdxs length %d != items length %d", ErrBadPrev, len(prevIdxs), len(items))
	}
	return t.insertBatch(items, prevIdxs)
}

func (t *Tree) insertBatch(items []Item, prevIdxs []uint32) (*BatchProof, error) {
	if err := t.requireInit(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	if uint64(len(t.nodes)+len(items)) > t.capacity() {
		return nil, ErrFull
	}

	startIdx := uint32(len(t.nodes))
	h := t.cfg.Hasher
	leavesBefore := append([]F(nil), t.leaves...)
	rootBefore := t.root

	keys := make([]F, len(items))
	values := make([]F, len(items))
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		key, err := fromBigInt(it.Key, t.failOnTruncation)
		if err != nil || it.Key.Sign() <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKey, it.Key.String())
		}
		value, err := fromBigInt(it.Value, t.failOnTruncation)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, it.Value.String())
		}
		for j := range t.nodes {
			if t.nodes[j].Key.Equal(&key) {
				return nil, wrapKey(ErrDuplicateKey, &key)
			}
		}
		ks := bigIntOf(&key).String()
		if seen[ks] {
			return nil, wrapKey(ErrDuplicateKey, &key)
		}
		seen[ks] = true
		keys[i] = key
		values[i] = value
	}

	// Snapshot the node array, append the new records with placeholder
	// links, and re-thread everyone against this in-progress state. On
	// any error below we discard workNodes/workLeaves entirely, leaving
	// t untouched.
	workNodes := append([]Node(nil), t.nodes...)
	for i := range keys {
		workNodes = append(workNodes, Node{Key: keys[i], Value: values[i]})
	}

	usedPrevIdx := make([]uint32, len(items))
	stepLeaves := append([]F(nil), t.leaves...)
	prevProofs := make([]Proof, len(items))
	newProofs := make([]Proof, len(items))
	lastExistingPrev := int64(-1)
	for i := range keys {
		var prevIdx uint32
		if prevIdxs == nil {
			prevIdx = findPrevIn(workNodes, int(startIdx)+i, &keys[i])
		} else {
			raw := prevIdxs[i]
			if raw < startIdx {
				if int64(raw) < lastExistingPrev {
					return nil, wrapIndex(ErrBadPrev, raw)
				}
				lastExistingPrev = int64(raw)
				prevIdx = raw
			} else {
				prevIdx = raw
			}
			if prevIdx >= uint32(int(startIdx)+i) {
				return nil, wrapIndex(ErrBadPrev, prevIdx)
			}
			prev := workNodes[prevIdx]
			if cmpKey(&prev.Key, &keys[i]) >= 0 {
				return nil, wrapIndex(ErrBadPrev, prevIdx)
			}
			if !isZero(&prev.NextKey) && cmpKey(&prev.NextKey, &keys[i]) <= 0 {
				return nil, wrapIndex(ErrBadPrev, prevIdx)
			}
		}

		newIdx := uint32(int(startIdx) + i)
		prev := &workNodes[prevIdx]
		newNode := &workNodes[newIdx]
		newNode.NextIdx = prev.NextIdx
		newNode.NextKey = prev.NextKey
		prev.NextIdx = newIdx
		prev.NextKey = keys[i]
		usedPrevIdx[i] = prevIdx

		// Prove this item's predecessor/new-leaf pair in the state right
		// after the item is threaded in.
		stepLeaves[prevIdx] = leafHash(h, prev)
		stepLeaves = append(stepLeaves, leafHash(h, newNode))
		pRoot, pSib := proofAt(stepLeaves, int(prevIdx), h)
		nRoot, nSib := proofAt(stepLeaves, int(newIdx), h)
		prevProofs[i] = Proof{LeafIdx: prevIdx, Leaf: *prev, Root: pRoot, Siblings: pSib}
		newProofs[i] = Proof{LeafIdx: newIdx, Leaf: *newNode, Root: nRoot, Siblings: nSib}
	}

	// Build the pre-batch ("og") proofs before committing: t.nodes still
	// holds the original content for indices < startIdx at this point.
	emptyRoot, emptySib := emptySubtreeProof(leavesBefore, startIdx, rootBefore, h)

	ogByIdx := map[uint32]bool{}
	var ogProofs []Proof
	for _, idx := range usedPrevIdx {
		if idx >= startIdx || ogByIdx[idx] {
			continue
		}
		ogByIdx[idx] = true
		root, sib := proofAt(leavesBefore, int(idx), h)
		ogProofs = append(ogProofs, Proof{LeafIdx: idx, Leaf: t.nodes[idx], Root: root, Siblings: sib})
	}

	// Commit: replace the tree's node/leaf arrays and recompute hashes
	// for every touched slot.
	t.nodes = workNodes
	t.leaves = append(t.leaves, make([]F, len(items))...)
	touched := make(map[uint32]bool)
	for i := range items {
		touched[usedPrevIdx[i]] = true
		touched[startIdx+uint32(i)] = true
	}
	for idx := range touched {
		t.leaves[idx] = leafHash(h, &t.nodes[idx])
	}
	t.root = merkleRoot(t.leaves, h)
	rootAfter := t.root

	t.logDebug("insertBatch", zap.Int("items", len(items)), zap.Uint32("startIdx", startIdx))

	return &BatchProof{
		RootBefore:           rootBefore,
		RootAfter:            rootAfter,
		InsertionIdx:         startIdx,
		EmptySubtreeRoot:     emptyRoot,
		EmptySubtreeSiblings: emptySib,
		OgLeaves:             ogProofs,
		PrevLeaves:           prevProofs,
		NewLeaves:            newProofs,
	}, nil
}

// findPrevIn mirrors Tree.findPrev but against an arbitrary in-progress
// node array, scanning only indices below limit (the position the
// current item is being inserted at, so later pending items never act as
// another's predecessor before they exist).
func findPrevIn(nodes []Node, limit int, key *F) uint32 {
	prevIdx := uint32(0)
	prevKey := nodes[0].Key
	for i := 1; i < limit; i++ {
		nk := nodes[i].Key
		if cmpKey(&nk, key) >= 0 {
			continue
		}
		if cmpKey(&nk, &prevKey) > 0 {
			prevIdx = uint32(i)
			prevKey = nk
		}
	}
	return prevIdx
}
