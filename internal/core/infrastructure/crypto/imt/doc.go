// Package imt implements an append-only indexed Merkle tree: a sparse
// Merkle commitment to a set of (key, value) records whose leaves also
// form a singly-linked sorted list by key.
//
// The linked-list layer lets a verifier check membership, non-membership
// ("exclusion"), and the transition caused by a single or batch insertion,
// without reconstructing the whole tree — the low-nullifier pattern used
// by privacy-preserving protocols.
//
// The tree is single-threaded and synchronous: callers that share a Tree
// across goroutines must serialize mutations externally.
package imt
