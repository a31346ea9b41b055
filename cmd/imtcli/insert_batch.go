package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nilhash/imt/internal/core/infrastructure/crypto/imt"
)

var (
	batchItems    []string // "key=value", repeatable
	batchPrevIdxs []string // optional witnessed predecessor indices, aligned with batchItems
)

// insertBatchCmd replays --insert history, then inserts every --item as a
// single atomic batch and prints the resulting batch-insertion transition
// proof.
var insertBatchCmd = &cobra.Command{
	Use:   "insert-batch",
	Short: "Insert a batch of (key, value) records and print its transition proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := buildTree()
		if err != nil {
			return err
		}
		if len(batchItems) == 0 {
			return fmt.Errorf("at least one --item is required")
		}

		items := make([]imt.Item, len(batchItems))
		for i, kv := range batchItems {
			key, value, err := parseKV(kv)
			if err != nil {
				return err
			}
			items[i] = imt.Item{Key: key, Value: value}
		}

		if len(batchPrevIdxs) == 0 {
			proof, err := tree.InsertBatch(items)
			if err != nil {
				return err
			}
			return printJSON(toBatchProofJSON(proof))
		}

		if len(batchPrevIdxs) != len(items) {
			return fmt.Errorf("--prev-idx count %d must match --item count %d", len(batchPrevIdxs), len(items))
		}
		prevIdxs := make([]uint32, len(batchPrevIdxs))
		for i, s := range batchPrevIdxs {
			idx, err := parseUint32(s)
			if err != nil {
				return err
			}
			prevIdxs[i] = idx
		}
		proof, err := tree.InsertBatchAt(items, prevIdxs)
		if err != nil {
			return err
		}
		return printJSON(toBatchProofJSON(proof))
	},
}

func init() {
	insertBatchCmd.Flags().StringArrayVar(&batchItems, "item", nil, "key=value pair to insert as part of the batch (repeatable)")
	insertBatchCmd.Flags().StringArrayVar(&batchPrevIdxs, "prev-idx", nil, "witnessed predecessor index per --item, in order (on-chain variant)")
}
