// Package cli implements the logroute command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"logroute/internal/ruleconfig"
	"logroute/internal/ruleconfig/file"
	"logroute/internal/ruleconfig/memory"
	"logroute/internal/ruleconfig/sqlite"
)

// NewRootCommand builds the logroute command tree.
func NewRootCommand(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "logroute",
		Short: "Structured-log query routing service",
	}

	root.PersistentFlags().String("store-type", "sqlite", "rule store type: sqlite, json, or memory")
	root.PersistentFlags().String("store-path", "rules.db", "rule store file path (ignored for store-type=memory)")

	root.AddCommand(
		newRuleCmd(logger),
		newServeCmd(logger),
		newReplCmd(logger),
	)
	return root
}

// openStoreFromCmd opens the ruleconfig.Store configured by the root
// command's persistent --store-type/--store-path flags.
func openStoreFromCmd(cmd *cobra.Command) (ruleconfig.Store, func() error, error) {
	storeType, _ := cmd.Flags().GetString("store-type")
	storePath, _ := cmd.Flags().GetString("store-path")

	switch storeType {
	case "memory":
		return memory.New(), func() error { return nil }, nil
	case "json":
		s := file.New(storePath)
		return s, s.Close, nil
	case "sqlite":
		s, err := sqlite.Open(storePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite rule store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store-type %q", storeType)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
