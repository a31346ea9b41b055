package main

import "github.com/spf13/cobra"

// rootRootCmd is the "root" subcommand (named to avoid colliding with the
// package's rootCmd, cobra's entry point): it replays --insert history and
// prints only the resulting Merkle root.
var rootRootCmd = &cobra.Command{
	Use:   "root",
	Short: "Print the tree's root after replaying --insert history",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := buildTree()
		if err != nil {
			return err
		}
		root := tree.Root()
		return printJSON(map[string]string{"root": root.String()})
	},
}
