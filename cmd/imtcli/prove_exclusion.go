package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
)

var proveExclusionKey string

var proveExclusionCmd = &cobra.Command{
	Use:   "prove-exclusion",
	Short: "Prove absence of --key and print the predecessor's membership proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := buildTree()
		if err != nil {
			return err
		}
		key, ok := new(big.Int).SetString(proveExclusionKey, 10)
		if !ok {
			return fmt.Errorf("invalid --key %q", proveExclusionKey)
		}
		proof, err := tree.ProveExclusion(key)
		if err != nil {
			return err
		}
		return printJSON(toProofJSON(*proof))
	},
}

func init() {
	proveExclusionCmd.Flags().StringVar(&proveExclusionKey, "key", "", "key to prove absence of (required)")
	_ = proveExclusionCmd.MarkFlagRequired("key")
}
