package imt

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T, depth uint8) *Tree {
	t.Helper()
	tree := NewTree(Config{Depth: depth})
	require.NoError(t, tree.Init())
	return tree
}

func TestInitRejectsBadDepth(t *testing.T) {
	require.ErrorIs(t, NewTree(Config{Depth: 0}).Init(), ErrBadDepth)
	require.ErrorIs(t, NewTree(Config{Depth: 255}).Init(), ErrBadDepth)
}

func TestInitTwiceRejected(t *testing.T) {
	tree := newTestTree(t, 4)
	require.ErrorIs(t, tree.Init(), ErrAlreadyInit)
}

func TestMutatorsRejectUninit(t *testing.T) {
	tree := NewTree(Config{Depth: 4})
	_, err := tree.Insert(big.NewInt(1), big.NewInt(1))
	require.ErrorIs(t, err, ErrNotInit)
	_, err = tree.Prove(big.NewInt(1))
	require.ErrorIs(t, err, ErrNotInit)
}

func TestInitialStateIsSentinelOnly(t *testing.T) {
	tree := newTestTree(t, 4)
	assert.Equal(t, 1, tree.NumLeaves())
	root := tree.Root()
	assert.False(t, isZero(&root))
}

func TestInsertRejectsNonPositiveKey(t *testing.T) {
	tree := newTestTree(t, 4)
	_, err := tree.Insert(big.NewInt(0), big.NewInt(1))
	require.ErrorIs(t, err, ErrInvalidKey)
	_, err = tree.Insert(big.NewInt(-1), big.NewInt(1))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestInsertRejectsDuplicateKey(t *testing.T) {
	tree := newTestTree(t, 4)
	_, err := tree.Insert(big.NewInt(5), big.NewInt(50))
	require.NoError(t, err)
	_, err = tree.Insert(big.NewInt(5), big.NewInt(99))
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsertGrowsPopulationAndChangesRoot(t *testing.T) {
	tree := newTestTree(t, 4)
	before := tree.Root()
	_, err := tree.Insert(big.NewInt(7), big.NewInt(70))
	require.NoError(t, err)
	assert.Equal(t, 2, tree.NumLeaves())
	after := tree.Root()
	assert.False(t, before.Equal(&after))
}

func TestInsertFullTreeRejected(t *testing.T) {
	tree := newTestTree(t, 1) // capacity 2: sentinel + one user record
	_, err := tree.Insert(big.NewInt(1), big.NewInt(1))
	require.NoError(t, err)
	_, err = tree.Insert(big.NewInt(2), big.NewInt(1))
	require.ErrorIs(t, err, ErrFull)
}

func TestInsertAtRejectsOutOfBoundsIndex(t *testing.T) {
	tree := newTestTree(t, 4)
	_, err := tree.InsertAt(99, big.NewInt(1), big.NewInt(1))
	require.ErrorIs(t, err, ErrBadPrev)
}

func TestInsertAtRejectsOrderingViolation(t *testing.T) {
	tree := newTestTree(t, 4)
	_, err := tree.Insert(big.NewInt(10), big.NewInt(1))
	require.NoError(t, err)
	// prevIdx 0 is the sentinel (key 0), whose successor is key 10. Key 20
	// does not fit between 0 and 10, so naming the sentinel as its
	// predecessor skips past the existing successor and is rejected.
	_, err = tree.InsertAt(0, big.NewInt(20), big.NewInt(1))
	require.ErrorIs(t, err, ErrBadPrev)
}

func TestInsertRejectedLeavesStateUntouched(t *testing.T) {
	tree := newTestTree(t, 4)
	_, err := tree.Insert(big.NewInt(5), big.NewInt(50))
	require.NoError(t, err)

	beforeRoot := tree.Root()
	beforeN := tree.NumLeaves()

	_, err = tree.Insert(big.NewInt(5), big.NewInt(99))
	require.ErrorIs(t, err, ErrDuplicateKey)

	afterRoot := tree.Root()
	assert.True(t, beforeRoot.Equal(&afterRoot))
	assert.Equal(t, beforeN, tree.NumLeaves())
}

func TestNodeAndLeafArraysStayInLockstep(t *testing.T) {
	tree := newTestTree(t, 8)
	for _, k := range []int64{4, 1, 9, 2} {
		_, err := tree.Insert(big.NewInt(k), big.NewInt(k))
		require.NoError(t, err)
	}
	require.Equal(t, len(tree.nodes), len(tree.leaves))
	require.Equal(t, tree.NumLeaves(), len(tree.nodes))
	for i := range tree.nodes {
		want := leafHash(tree.Hasher(), &tree.nodes[i])
		got := tree.leaves[i]
		assert.True(t, want.Equal(&got))
	}
}

func TestInsertAdjacentKeysHitsEarlyExitPath(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(10), big.NewInt(1))
	require.NoError(t, err)
	_, err = tree.Insert(big.NewInt(11), big.NewInt(1))
	require.NoError(t, err)

	eleven := fromUint64(11)
	prevIdx, prevKey := tree.findPrev(&eleven)
	assert.Equal(t, uint32(1), prevIdx)
	want := fromUint64(10)
	assert.True(t, prevKey.Equal(&want))
}

func TestInsertSmallestKeyUpdatesSentinel(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(50), big.NewInt(1))
	require.NoError(t, err)
	_, err = tree.Insert(big.NewInt(10), big.NewInt(1))
	require.NoError(t, err)

	sentinel := tree.nodes[0]
	assert.Equal(t, uint32(2), sentinel.NextIdx)
	want := fromUint64(10)
	assert.True(t, sentinel.NextKey.Equal(&want))
}

func TestInsertLargestKeyYieldsTerminalNode(t *testing.T) {
	tree := newTestTree(t, 8)
	_, err := tree.Insert(big.NewInt(10), big.NewInt(1))
	require.NoError(t, err)
	_, err = tree.Insert(big.NewInt(50), big.NewInt(1))
	require.NoError(t, err)

	last := tree.nodes[len(tree.nodes)-1]
	assert.True(t, last.isTerminal())
}

func TestSequentialInsertsKeepAscendingLinkedList(t *testing.T) {
	tree := newTestTree(t, 8)
	keys := []int64{30, 10, 50, 20, 40}
	for _, k := range keys {
		_, err := tree.Insert(big.NewInt(k), big.NewInt(k*10))
		require.NoError(t, err)
	}

	idx := uint32(0)
	seen := []string{}
	for {
		n := tree.nodes[idx]
		seen = append(seen, bigIntOf(&n.Key).String())
		if n.isTerminal() {
			break
		}
		idx = n.NextIdx
	}
	assert.Equal(t, []string{"0", "10", "20", "30", "40", "50"}, seen)
}
