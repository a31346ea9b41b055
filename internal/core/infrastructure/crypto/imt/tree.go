package imt

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

// state is the tree's lifecycle: Uninit -> Init -> Populated. There is no
// terminal/closed state; every mutator simply rejects Uninit.
type state int

const (
	stateUninit state = iota
	stateInit
)

// Config is the library's construction surface.
type Config struct {
	// Depth is the fixed tree height, in [1, 254].
	Depth uint8

	// Hasher supplies {H2, H4}. Nil defaults to DefaultHasher().
	Hasher Hasher

	// FailOnTruncation rejects keys/values greater than the field modulus
	// immediately instead of silently reducing them. Nil defaults to true;
	// set explicitly to allow silent reduction mod p.
	FailOnTruncation *bool

	// Logger receives debug/warn events at mutation boundaries. Nil is a
	// valid no-op logger.
	Logger *zap.Logger
}

// Tree is an indexed Merkle tree: an append-only array of Node records,
// threaded into a sorted singly-linked list by key, plus the Merkle root
// of their leaf hashes.
type Tree struct {
	cfg              Config
	state            state
	failOnTruncation bool

	nodes  []Node
	leaves []F
	root   F
}

// NewTree allocates a Tree from cfg. The tree is Uninit until Init is
// called; Depth is validated there, not here, so a Config can be built
// and passed around before the caller decides to materialize the tree.
func NewTree(cfg Config) *Tree {
	if cfg.Hasher == nil {
		cfg.Hasher = DefaultHasher()
	}
	failOnTruncation := cfg.FailOnTruncation == nil || *cfg.FailOnTruncation
	return &Tree{cfg: cfg, state: stateUninit, failOnTruncation: failOnTruncation}
}

// Init installs the sentinel and moves the tree from Uninit to Init.
func (t *Tree) Init() error {
	if t.state != stateUninit {
		return ErrAlreadyInit
	}
	if t.cfg.Depth < 1 || t.cfg.Depth > 254 {
		return fmt.Errorf("%w: got %d", ErrBadDepth, t.cfg.Depth)
	}

	sentinel := Node{Key: zeroF, Value: zeroF, NextIdx: 0, NextKey: zeroF}
	t.nodes = []Node{sentinel}
	t.leaves = []F{leafHash(t.cfg.Hasher, &sentinel)}
	t.root = merkleRoot(t.leaves, t.cfg.Hasher)
	t.state = stateInit

	t.logDebug("init", zap.Uint8("depth", t.cfg.Depth))
	return nil
}

// Depth returns the tree's fixed height.
func (t *Tree) Depth() uint8 { return t.cfg.Depth }

// NumLeaves returns the current population (including the sentinel).
func (t *Tree) NumLeaves() int { return len(t.nodes) }

// Root returns the cached Merkle root.
func (t *Tree) Root() F { return t.root }

// Hasher returns the tree's configured hash capability.
func (t *Tree) Hasher() Hasher { return t.cfg.Hasher }

// capacity returns 2^depth, the maximum population, saturating at
// MaxUint64 for depths of 64 and above.
func (t *Tree) capacity() uint64 {
	if t.cfg.Depth >= 64 {
		return ^uint64(0)
	}
	return uint64(1) << t.cfg.Depth
}

func (t *Tree) requireInit() error {
	if t.state != stateInit {
		return ErrNotInit
	}
	return nil
}

// findPrev returns (prevIdx, prevKey) such that nodes[prevIdx].Key is the
// greatest existing key strictly less than key. For an empty (freshly
// initialized) tree it returns (0, 0) — the sentinel.
func (t *Tree) findPrev(key *F) (uint32, F) {
	prevIdx := uint32(0)
	prevKey := t.nodes[0].Key
	for i := 1; i < len(t.nodes); i++ {
		nk := t.nodes[i].Key
		if cmpKey(&nk, key) >= 0 {
			continue
		}
		if cmpKey(&nk, &prevKey) > 0 {
			prevIdx = uint32(i)
			prevKey = nk
		}
		var succ F
		succ.Add(&nk, &oneF)
		if succ.Equal(key) {
			break
		}
	}
	return prevIdx, prevKey
}

// validateNewItem checks the preconditions common to Insert/InsertAt: tree
// state, key/value range, capacity, and key uniqueness. It never mutates
// the tree, so a rejected insert leaves state untouched (atomicity).
func (t *Tree) validateNewItem(keyBig, valueBig *big.Int) (F, F, error) {
	var zero F
	if err := t.requireInit(); err != nil {
		return zero, zero, err
	}
	if uint64(len(t.nodes)) >= t.capacity() {
		return zero, zero, ErrFull
	}

	key, err := fromBigInt(keyBig, t.failOnTruncation)
	if err != nil || keyBig.Sign() <= 0 {
		return zero, zero, fmt.Errorf("%w: %s", ErrInvalidKey, keyBig.String())
	}
	value, err := fromBigInt(valueBig, t.failOnTruncation)
	if err != nil {
		return zero, zero, fmt.Errorf("%w: %s", ErrInvalidValue, valueBig.String())
	}

	for i := range t.nodes {
		if t.nodes[i].Key.Equal(&key) {
			return zero, zero, wrapKey(ErrDuplicateKey, &key)
		}
	}
	return key, value, nil
}

func (t *Tree) logDebug(msg string, fields ...zap.Field) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Debug("imt: "+msg, fields...)
	}
}

func (t *Tree) logWarn(msg string, fields ...zap.Field) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Warn("imt: "+msg, fields...)
	}
}

// Insert appends a new (key, value) record, re-threading the predecessor
// found by findPrev, and returns a proof of the transition.
func (t *Tree) Insert(keyBig, valueBig *big.Int) (*InsertionProof, error) {
	key, value, err := t.validateNewItem(keyBig, valueBig)
	if err != nil {
		t.logWarn("insert rejected", zap.Error(err))
		return nil, err
	}
	prevIdx, _ := t.findPrev(&key)
	return t.insertAt(prevIdx, key, value)
}

// InsertAt is Insert with a caller-supplied predecessor index, checked
// (not trusted) against the linked-list ordering constraint.
func (t *Tree) InsertAt(prevIdx uint32, keyBig, valueBig *big.Int) (*InsertionProof, error) {
	key, value, err := t.validateNewItem(keyBig, valueBig)
	if err != nil {
		t.logWarn("insertAt rejected", zap.Error(err))
		return nil, err
	}
	if int(prevIdx) >= len(t.nodes) {
		return nil, wrapIndex(ErrBadPrev, prevIdx)
	}
	prev := t.nodes[prevIdx]
	if cmpKey(&prev.Key, &key) >= 0 {
		return nil, wrapIndex(ErrBadPrev, prevIdx)
	}
	if !isZero(&prev.NextKey) && cmpKey(&prev.NextKey, &key) <= 0 {
		return nil, wrapIndex(ErrBadPrev, prevIdx)
	}
	return t.insertAt(prevIdx, key, value)
}

// insertAt performs the actual mutation once prevIdx has been validated,
// and produces the single-insertion transition proof.
func (t *Tree) insertAt(prevIdx uint32, key, value F) (*InsertionProof, error) {
	h := t.cfg.Hasher

	leavesBefore := append([]F(nil), t.leaves...)
	ogBefore := t.nodes[prevIdx]

	nextIdx := t.nodes[prevIdx].NextIdx
	nextKey := t.nodes[prevIdx].NextKey

	newIdx := uint32(len(t.nodes))
	newNode := Node{Key: key, Value: value, NextIdx: nextIdx, NextKey: nextKey}

	t.nodes[prevIdx].NextIdx = newIdx
	t.nodes[prevIdx].NextKey = key
	t.nodes = append(t.nodes, newNode)

	t.leaves[prevIdx] = leafHash(h, &t.nodes[prevIdx])
	t.leaves = append(t.leaves, leafHash(h, &newNode))
	t.root = merkleRoot(t.leaves, h)

	ogAfter := t.nodes[prevIdx]

	rootBefore, sibBefore := proofAt(leavesBefore, int(prevIdx), h)
	rootAfter, sibAfterOg := proofAt(t.leaves, int(prevIdx), h)
	_, sibAfterNew := proofAt(t.leaves, int(newIdx), h)

	t.logDebug("insert",
		zap.String("key", bigIntOf(&key).String()),
		zap.Uint32("newIdx", newIdx),
		zap.Uint32("prevIdx", prevIdx),
	)

	return &InsertionProof{
		OgBefore: Proof{LeafIdx: prevIdx, Leaf: ogBefore, Root: rootBefore, Siblings: sibBefore},
		OgAfter:  Proof{LeafIdx: prevIdx, Leaf: ogAfter, Root: rootAfter, Siblings: sibAfterOg},
		NewAfter: Proof{LeafIdx: newIdx, Leaf: newNode, Root: rootAfter, Siblings: sibAfterNew},
	}, nil
}
