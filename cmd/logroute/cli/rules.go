package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"logroute/internal/lql"
	"logroute/internal/router"
	"logroute/internal/ruleconfig"
	"logroute/internal/schema"
)

func newRuleCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage routing rules",
	}
	cmd.AddCommand(
		newRuleAddCmd(),
		newRuleListCmd(),
		newRuleRmCmd(),
		newRuleTestCmd(),
	)
	return cmd
}

func newRuleAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a routing rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			source, _ := cmd.Flags().GetString("source")
			query, _ := cmd.Flags().GetString("query")
			sinks, _ := cmd.Flags().GetStringSlice("sink")
			catchAll, _ := cmd.Flags().GetBool("catch-all")
			catchRest, _ := cmd.Flags().GetBool("catch-rest")

			store, closeStore, err := openStoreFromCmd(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			rule := ruleconfig.RuleRecord{
				ID:        uuid.New(),
				SourceID:  source,
				Name:      name,
				Query:     query,
				Sinks:     sinks,
				CatchAll:  catchAll,
				CatchRest: catchRest,
			}
			if err := store.Put(context.Background(), rule); err != nil {
				return err
			}
			fmt.Printf("Added rule %q (%s)\n", name, rule.ID)
			return nil
		},
	}
	cmd.Flags().String("name", "", "rule name (required)")
	cmd.Flags().String("source", "", "event source ID this rule applies to")
	cmd.Flags().String("query", "", "LQL query (ignored if --catch-all or --catch-rest is set)")
	cmd.Flags().StringSlice("sink", nil, "sink IDs to forward matches to (repeatable)")
	cmd.Flags().Bool("catch-all", false, "always match, regardless of --query")
	cmd.Flags().Bool("catch-rest", false, "match only events no other rule for this source matched")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRuleListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List routing rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			output, _ := cmd.Flags().GetString("output")

			store, closeStore, err := openStoreFromCmd(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			rules, err := store.List(context.Background(), source)
			if err != nil {
				return err
			}
			return newRuleWriter(output).write(rules)
		},
	}
	cmd.Flags().String("source", "", "filter by source ID (default: all)")
	cmd.Flags().StringP("output", "o", "table", "output format: table or json")
	return cmd
}

func newRuleRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a routing rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule ID %q: %w", args[0], err)
			}
			store, closeStore, err := openStoreFromCmd(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Delete(context.Background(), id); err != nil {
				return err
			}
			fmt.Printf("Removed rule %s\n", id)
			return nil
		},
	}
}

func newRuleTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Evaluate a rule's query against a sample event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule ID %q: %w", args[0], err)
			}
			eventPath, _ := cmd.Flags().GetString("event")
			if eventPath == "" {
				return fmt.Errorf("--event is required")
			}

			store, closeStore, err := openStoreFromCmd(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			rule, err := store.Get(context.Background(), id)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(eventPath)
			if err != nil {
				return fmt.Errorf("read event file: %w", err)
			}
			var ev router.Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				return fmt.Errorf("parse event file: %w", err)
			}

			s, err := schema.FromSampleEvents([][]byte{raw})
			if err != nil {
				return fmt.Errorf("build schema from event: %w", err)
			}

			if rule.CatchAll {
				reportMatch(cmd.OutOrStdout(), true, "")
				return nil
			}

			rs, err := lql.Parse(rule.Query, s)
			if err != nil {
				fmt.Printf("parse error: %v\n", err)
				return nil
			}
			cache := router.NewRegexCache(router.DefaultRegexCacheSize)
			matched := router.MatchesAll(ev, rs.Search, cache)
			reportMatch(cmd.OutOrStdout(), matched, lql.Serialize(rs))
			return nil
		},
	}
	cmd.Flags().String("event", "", "path to a JSON file containing one sample event (required)")
	return cmd
}
