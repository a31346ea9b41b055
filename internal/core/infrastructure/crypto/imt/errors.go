package imt

import (
	"errors"
	"fmt"
)

// Sentinel errors, grouped by the taxonomy in the tree's failure-mode
// design: precondition, input, capacity, and lookup errors.
var (
	// ErrNotInit is returned by any mutator called before Init.
	ErrNotInit = errors.New("imt: tree not initialized")

	// ErrAlreadyInit is returned by Init on an already-initialized tree.
	ErrAlreadyInit = errors.New("imt: tree already initialized")

	// ErrBadDepth is returned by Init when depth is outside [1, 254].
	ErrBadDepth = errors.New("imt: depth must be in [1, 254]")

	// ErrBadPrev is returned when a caller-supplied predecessor index
	// fails to satisfy the linked-list ordering constraint.
	ErrBadPrev = errors.New("imt: invalid predecessor index")

	// ErrEmptyBatch is returned by InsertBatch / InsertBatchAt with no items.
	ErrEmptyBatch = errors.New("imt: batch must contain at least one item")

	// ErrInvalidKey is returned for a key outside (0, p].
	ErrInvalidKey = errors.New("imt: key out of range")

	// ErrInvalidValue is returned for a value outside [0, p].
	ErrInvalidValue = errors.New("imt: value out of range")

	// ErrDuplicateKey is returned when a key is already present.
	ErrDuplicateKey = errors.New("imt: duplicate key")

	// ErrFull is returned when numOfLeaves has reached 2^depth.
	ErrFull = errors.New("imt: tree is full")

	// ErrNotFound is returned by Prove when the key is absent.
	ErrNotFound = errors.New("imt: key not found")

	// ErrKeyExists is returned by ProveExclusion when the key is present.
	ErrKeyExists = errors.New("imt: key already exists")
)

func wrapKey(base error, key fmt.Stringer) error {
	return fmt.Errorf("%w: key=%s", base, key)
}

func wrapIndex(base error, idx uint32) error {
	return fmt.Errorf("%w: index=%d", base, idx)
}
