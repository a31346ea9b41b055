package imt

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(pairs ...int64) []Item {
	out := make([]Item, len(pairs)/2)
	for i := range out {
		out[i] = Item{Key: big.NewInt(pairs[2*i]), Value: big.NewInt(pairs[2*i+1])}
	}
	return out
}

func TestInsertBatchRejectsEmpty(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.InsertBatch(nil)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestInsertBatchRejectsOverCapacity(t *testing.T) {
	tree := newTestTree(t, 1) // capacity 2, only room for the sentinel + 1
	_, err := tree.InsertBatch(items(1, 1, 2, 1))
	require.ErrorIs(t, err, ErrFull)
}

func TestInsertBatchRejectsDuplicateWithinBatch(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.InsertBatch(items(5, 1, 5, 2))
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsertBatchRejectsDuplicateOfExisting(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(5), big.NewInt(1))
	require.NoError(t, err)
	_, err = tree.InsertBatch(items(5, 2))
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsertBatchLeavesTreeUntouchedOnRejection(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(5), big.NewInt(1))
	require.NoError(t, err)
	before := tree.Root()
	beforeN := tree.NumLeaves()

	_, err = tree.InsertBatch(items(10, 1, 5, 2))
	require.Error(t, err)

	assert.True(t, before.Equal(ptr(tree.Root())))
	assert.Equal(t, beforeN, tree.NumLeaves())
}

func ptr[T any](v T) *T { return &v }

func TestInsertBatchVerifies(t *testing.T) {
	tree := newTestTree(t, 8)
	bp, err := tree.InsertBatch(items(30, 300, 10, 100, 20, 200))
	require.NoError(t, err)
	assert.True(t, VerifyBatchInsertionProof(bp, tree.Hasher()))
	assert.True(t, bp.RootAfter.Equal(ptr(tree.Root())))
}

func TestInsertBatchThreadsAgainstInProgressState(t *testing.T) {
	tree := newTestTree(t, 8)
	// 10 and 20 land in the same batch; 20's predecessor should resolve to
	// 10 (inserted earlier in the same batch), not the sentinel.
	bp, err := tree.InsertBatch(items(10, 100, 20, 200))
	require.NoError(t, err)
	require.True(t, VerifyBatchInsertionProof(bp, tree.Hasher()))

	require.Len(t, bp.NewLeaves, 2)
	tenLeaf := bp.NewLeaves[0]
	twentyLeaf := bp.NewLeaves[1]
	assert.Equal(t, twentyLeaf.LeafIdx, tenLeaf.Leaf.NextIdx)
}

func TestInsertBatchOntoPowerOfTwoPopulation(t *testing.T) {
	// Bring the tree to exactly 2 leaves (sentinel + one Insert), a
	// power-of-two population where the empty-subtree proof has to cross
	// into a level rootBefore's own tree doesn't have yet.
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(10), big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, 2, tree.NumLeaves())

	bp, err := tree.InsertBatch(items(20, 2))
	require.NoError(t, err)
	assert.True(t, VerifyBatchInsertionProof(bp, tree.Hasher()))
	assert.True(t, bp.RootAfter.Equal(ptr(tree.Root())))
}

func TestInsertBatchOntoFourLeafPopulation(t *testing.T) {
	// Population 4 is also a power of two; exercise it alongside 2 to
	// cover more than one level of growth.
	tree := newTestTree(t, 8)
	for _, k := range []int64{10, 20, 30} {
		_, err := tree.Insert(big.NewInt(k), big.NewInt(k*10))
		require.NoError(t, err)
	}
	require.Equal(t, 4, tree.NumLeaves())

	bp, err := tree.InsertBatch(items(40, 4, 50, 5))
	require.NoError(t, err)
	assert.True(t, VerifyBatchInsertionProof(bp, tree.Hasher()))
	assert.True(t, bp.RootAfter.Equal(ptr(tree.Root())))
}

func TestInsertBatchAtRejectsLengthMismatch(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.InsertBatchAt(items(10, 1, 20, 1), []uint32{0})
	require.ErrorIs(t, err, ErrBadPrev)
}

func TestInsertBatchAtAcceptsMonotonicExistingPredecessors(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(10), big.NewInt(1))
	require.NoError(t, err)
	_, err = tree.Insert(big.NewInt(30), big.NewInt(1))
	require.NoError(t, err)

	// node 1 is key 10, node 2 is key 30. Insert 15 (pred idx 1) then 40
	// (pred idx 2): existing predecessors 1, 2 are non-decreasing.
	bp, err := tree.InsertBatchAt(items(15, 1, 40, 1), []uint32{1, 2})
	require.NoError(t, err)
	assert.True(t, VerifyBatchInsertionProof(bp, tree.Hasher()))
}

func TestInsertBatchAtRejectsNonMonotonicExistingPredecessors(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(10), big.NewInt(1))
	require.NoError(t, err)
	_, err = tree.Insert(big.NewInt(30), big.NewInt(1))
	require.NoError(t, err)

	// 40's predecessor (idx 2, key 30) precedes 15's predecessor (idx 1,
	// key 10) in witness order — rejected even though both are individually
	// valid predecessors.
	_, err = tree.InsertBatchAt(items(40, 1, 15, 1), []uint32{2, 1})
	require.ErrorIs(t, err, ErrBadPrev)
}

func TestInsertBatchAtRejectsPredecessorNotLessThanKey(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(10), big.NewInt(1))
	require.NoError(t, err)

	_, err = tree.InsertBatchAt(items(5, 1), []uint32{1})
	require.ErrorIs(t, err, ErrBadPrev)
}

func TestInsertBatchAtAllowsPendingPredecessor(t *testing.T) {
	tree := newTestTree(t, 8)
	// Item 1 (key 10) lands at the batch's startIdx; item 2 (key 20) names
	// that pending slot as its predecessor via its in-batch position.
	startIdx := uint32(tree.NumLeaves())
	bp, err := tree.InsertBatchAt(items(10, 100, 20, 200), []uint32{0, startIdx})
	require.NoError(t, err)
	assert.True(t, VerifyBatchInsertionProof(bp, tree.Hasher()))
}

func TestBatchAndSequentialInsertProduceSameRoot(t *testing.T) {
	seq := newTestTree(t, 8)
	for _, k := range []int64{10, 20, 30} {
		_, err := seq.Insert(big.NewInt(k), big.NewInt(k*10))
		require.NoError(t, err)
	}

	batch := newTestTree(t, 8)
	_, err := batch.InsertBatch(items(10, 100, 20, 200, 30, 300))
	require.NoError(t, err)

	seqRoot := seq.Root()
	batchRoot := batch.Root()
	assert.True(t, seqRoot.Equal(&batchRoot))
}

func TestBatchAndSequentialInsertAgreeAcrossPowerOfTwoBoundary(t *testing.T) {
	// Same property as above, but the batch starts from a 2-leaf
	// (power-of-two) population, so both paths cross a tree-depth
	// boundary and must still land on the same root.
	seq := newTestTree(t, 8)
	for _, k := range []int64{10, 20, 30} {
		_, err := seq.Insert(big.NewInt(k), big.NewInt(k*10))
		require.NoError(t, err)
	}

	batch := newTestTree(t, 8)
	_, err := batch.Insert(big.NewInt(10), big.NewInt(100))
	require.NoError(t, err)
	_, err = batch.InsertBatch(items(20, 200, 30, 300))
	require.NoError(t, err)

	seqRoot := seq.Root()
	batchRoot := batch.Root()
	assert.True(t, seqRoot.Equal(&batchRoot))
}

func TestFindPrevInBoundsToLimit(t *testing.T) {
	nodes := []Node{
		{Key: zeroF},
		{Key: fromUint64(10)},
		{Key: fromUint64(30)},
	}
	target := fromUint64(40)
	// limit 2 excludes index 2 (key 30), so the best predecessor below the
	// limit is index 1 (key 10), even though 30 < 40 would otherwise win.
	prev := findPrevIn(nodes, 2, &target)
	assert.Equal(t, uint32(1), prev)
}
