package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nilhash/imt/internal/core/infrastructure/crypto/imt"
)

// globalFlags holds the flags shared by every subcommand: the tree's depth
// and the replayed insert history that reconstructs prior state (the CLI
// carries no persistence — each invocation starts from genesis).
type globalFlags struct {
	depth   uint8
	inserts []string // "key=value", applied in order before the subcommand runs
	verbose bool
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:   "imtcli",
	Short: "Drive an indexed Merkle tree from the command line",
	Long: `imtcli replays a sequence of single inserts against a fresh
indexed Merkle tree and then performs one action against the resulting
state: init, insert, insert-batch, prove, prove-exclusion, or root.

Every invocation starts from genesis; prior state is reconstructed by
replaying --insert key=value flags in the order given.`,
}

func init() {
	rootCmd.PersistentFlags().Uint8Var(&flags.depth, "depth", 16, "tree depth (max population 2^depth)")
	rootCmd.PersistentFlags().StringArrayVar(&flags.inserts, "insert", nil, "key=value pair to replay before the subcommand runs (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "emit debug logs to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(insertBatchCmd)
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(proveExclusionCmd)
	rootCmd.AddCommand(rootRootCmd)
}

// newLogger returns a *zap.Logger honoring --verbose, or nil (no-op) when
// quiet — imt.Config.Logger is nil-safe.
func newLogger() *zap.Logger {
	if !flags.verbose {
		return nil
	}
	cfg := zap.NewDevelopmentConfig()
	l, err := cfg.Build()
	if err != nil {
		return nil
	}
	return l
}

// buildTree replays flags.inserts against a freshly initialized tree at
// flags.depth, returning the resulting state ready for the subcommand's
// own action.
func buildTree() (*imt.Tree, error) {
	tree := imt.NewTree(imt.Config{Depth: flags.depth, Logger: newLogger()})
	if err := tree.Init(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	for _, kv := range flags.inserts {
		key, value, err := parseKV(kv)
		if err != nil {
			return nil, fmt.Errorf("--insert %q: %w", kv, err)
		}
		if _, err := tree.Insert(key, value); err != nil {
			return nil, fmt.Errorf("replay --insert %q: %w", kv, err)
		}
	}
	return tree, nil
}

func parseKV(s string) (key, value *big.Int, err error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("expected key=value")
	}
	k, ok := new(big.Int).SetString(strings.TrimSpace(parts[0]), 10)
	if !ok {
		return nil, nil, fmt.Errorf("invalid key %q", parts[0])
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(parts[1]), 10)
	if !ok {
		return nil, nil, fmt.Errorf("invalid value %q", parts[1])
	}
	return k, v, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
