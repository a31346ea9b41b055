package main

import "github.com/spf13/cobra"

// initCmd replays --insert history against a fresh tree and reports its
// resulting population and root, without performing any further action.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a tree and report its state",
	Long:  "Replays --insert key=value flags against a fresh tree and prints its population and root.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := buildTree()
		if err != nil {
			return err
		}
		root := tree.Root()
		return printJSON(map[string]interface{}{
			"depth":     tree.Depth(),
			"numLeaves": tree.NumLeaves(),
			"root":      root.String(),
		})
	},
}
