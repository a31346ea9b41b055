package main

import (
	"github.com/spf13/cobra"
)

var (
	insertKey   string
	insertValue string
	insertAt    string // optional explicit predecessor index
)

// insertCmd replays --insert history, then performs one more insert and
// prints the resulting single-insertion transition proof.
var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert one (key, value) record and print its transition proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := buildTree()
		if err != nil {
			return err
		}
		key, value, err := parseKV(insertKey + "=" + insertValue)
		if err != nil {
			return err
		}

		if insertAt == "" {
			proof, err := tree.Insert(key, value)
			if err != nil {
				return err
			}
			return printJSON(toInsertionProofJSON(proof))
		}

		prevIdx, err := parseUint32(insertAt)
		if err != nil {
			return err
		}
		proof, err := tree.InsertAt(prevIdx, key, value)
		if err != nil {
			return err
		}
		return printJSON(toInsertionProofJSON(proof))
	},
}

func init() {
	insertCmd.Flags().StringVar(&insertKey, "key", "", "key to insert (required)")
	insertCmd.Flags().StringVar(&insertValue, "value", "", "value to insert (required)")
	insertCmd.Flags().StringVar(&insertAt, "at", "", "explicit predecessor index (witnessed, not trusted)")
	_ = insertCmd.MarkFlagRequired("key")
	_ = insertCmd.MarkFlagRequired("value")
}
