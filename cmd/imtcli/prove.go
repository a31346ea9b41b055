package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
)

var proveKey string

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Prove membership of --key and print the resulting proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := buildTree()
		if err != nil {
			return err
		}
		key, ok := new(big.Int).SetString(proveKey, 10)
		if !ok {
			return fmt.Errorf("invalid --key %q", proveKey)
		}
		proof, err := tree.Prove(key)
		if err != nil {
			return err
		}
		return printJSON(toProofJSON(*proof))
	},
}

func init() {
	proveCmd.Flags().StringVar(&proveKey, "key", "", "key to prove membership for (required)")
	_ = proveCmd.MarkFlagRequired("key")
}
