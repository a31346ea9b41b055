package main

import (
	"encoding/json"
	"os"

	"github.com/nilhash/imt/internal/core/infrastructure/crypto/imt"
)

// nodeJSON and proofJSON mirror imt.Node/imt.Proof with F rendered as its
// decimal string, since fr.Element has no JSON marshaling of its own.
type nodeJSON struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	NextIdx uint32 `json:"nextIdx"`
	NextKey string `json:"nextKey"`
}

type proofJSON struct {
	LeafIdx  uint32   `json:"leafIdx"`
	Leaf     nodeJSON `json:"leaf"`
	Root     string   `json:"root"`
	Siblings []string `json:"siblings"`
}

func toNodeJSON(n imt.Node) nodeJSON {
	return nodeJSON{
		Key:     n.Key.String(),
		Value:   n.Value.String(),
		NextIdx: n.NextIdx,
		NextKey: n.NextKey.String(),
	}
}

func toProofJSON(p imt.Proof) proofJSON {
	sibs := make([]string, len(p.Siblings))
	for i, s := range p.Siblings {
		sibs[i] = s.String()
	}
	return proofJSON{LeafIdx: p.LeafIdx, Leaf: toNodeJSON(p.Leaf), Root: p.Root.String(), Siblings: sibs}
}

type insertionProofJSON struct {
	OgBefore proofJSON `json:"ogBefore"`
	OgAfter  proofJSON `json:"ogAfter"`
	NewAfter proofJSON `json:"newAfter"`
}

func toInsertionProofJSON(p *imt.InsertionProof) insertionProofJSON {
	return insertionProofJSON{
		OgBefore: toProofJSON(p.OgBefore),
		OgAfter:  toProofJSON(p.OgAfter),
		NewAfter: toProofJSON(p.NewAfter),
	}
}

type batchProofJSON struct {
	RootBefore           string      `json:"rootBefore"`
	RootAfter            string      `json:"rootAfter"`
	InsertionIdx         uint32      `json:"insertionIdx"`
	EmptySubtreeRoot     string      `json:"emptySubtreeRoot"`
	EmptySubtreeSiblings []string    `json:"emptySubtreeSiblings"`
	OgLeaves             []proofJSON `json:"ogLeaves"`
	PrevLeaves           []proofJSON `json:"prevLeaves"`
	NewLeaves            []proofJSON `json:"newLeaves"`
}

func toBatchProofJSON(p *imt.BatchProof) batchProofJSON {
	sibs := make([]string, len(p.EmptySubtreeSiblings))
	for i, s := range p.EmptySubtreeSiblings {
		sibs[i] = s.String()
	}
	og := make([]proofJSON, len(p.OgLeaves))
	for i, l := range p.OgLeaves {
		og[i] = toProofJSON(l)
	}
	prev := make([]proofJSON, len(p.PrevLeaves))
	for i, l := range p.PrevLeaves {
		prev[i] = toProofJSON(l)
	}
	newl := make([]proofJSON, len(p.NewLeaves))
	for i, l := range p.NewLeaves {
		newl[i] = toProofJSON(l)
	}
	return batchProofJSON{
		RootBefore:           p.RootBefore.String(),
		RootAfter:            p.RootAfter.String(),
		InsertionIdx:         p.InsertionIdx,
		EmptySubtreeRoot:     p.EmptySubtreeRoot.String(),
		EmptySubtreeSiblings: sibs,
		OgLeaves:             og,
		PrevLeaves:           prev,
		NewLeaves:            newl,
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
