package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"questlog/internal/metacache"
)

const cacheStampLayout = "2006-01-02 15:04"

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the resolution caches",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "list {hltb|score}",
		Short:     "List cached entries, fresh and stale",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"hltb", "score"},
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := ctx.ensureService()
			if err != nil {
				return err
			}

			var entries map[string]metacache.Entry
			switch args[0] {
			case "hltb":
				entries = service.CompletionTimeEntries()
			case "score":
				entries = service.CriticScoreEntries()
			default:
				return fmt.Errorf("unknown cache %q (expected hltb or score)", args[0])
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}

			keys := make([]string, 0, len(entries))
			for key := range entries {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				entry := entries[key]
				value := "—"
				if entry.Value != nil {
					value = fmt.Sprintf("%.2f", *entry.Value)
				}
				rows = append(rows, []string{
					key,
					value,
					entry.CachedAt.UTC().Format(cacheStampLayout),
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Value", "Cached At (UTC)"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "clear {hltb|score}",
		Short:     "Delete a cache document",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"hltb", "score"},
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := ctx.ensureService()
			if err != nil {
				return err
			}

			switch args[0] {
			case "hltb":
				err = service.ClearCompletionTimeCache()
			case "score":
				err = service.ClearCriticScoreCache()
			default:
				return fmt.Errorf("unknown cache %q (expected hltb or score)", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s cache\n", args[0])
			return nil
		},
	}
}
