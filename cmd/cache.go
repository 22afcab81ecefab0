/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/omniscript/pkg/cache"
	"github.com/fulmenhq/omniscript/pkg/exitcode"
	"github.com/fulmenhq/omniscript/pkg/logger"
	"github.com/spf13/cobra"
)

func newClearCacheCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Remove every cached registry response",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore(cmd)
			if err != nil {
				return err
			}
			removed, err := store.Clear()
			if err != nil {
				return exitcode.Wrap(exitcode.FileSystemError, err)
			}
			if removed {
				logger.Info("cache cleared", logger.String("dir", store.Root()))
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			}
			return nil
		},
	}
}

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the response cache",
	}
	cmd.AddCommand(newCacheListCommand())
	cmd.AddCommand(newCachePruneCommand())
	return cmd
}

func newCacheListCommand() *cobra.Command {
	var (
		match  string
		format outputFormat
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cache entries with their age",
		Example: `  regsearch cache list
  regsearch cache list --match 'tags_library_*' --json`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore(cmd)
			if err != nil {
				return err
			}
			entries, err := store.Entries(match)
			if errors.Is(err, cache.ErrInvalidPattern) {
				return exitcode.Wrap(exitcode.UsageError, err)
			}
			if err != nil {
				return exitcode.Wrap(exitcode.FileSystemError, err)
			}

			if entries == nil {
				entries = []cache.EntryInfo{}
			}

			out := cmd.OutOrStdout()
			if f := resolveFormat(cmd, format); f != outputText {
				return writeStructured(out, f, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No cache entries")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tAGE\tSIZE\tSTATE")
			for _, e := range entries {
				state := "fresh"
				switch {
				case e.Corrupt:
					state = "corrupt"
				case e.Expired:
					state = "expired"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Key, e.Age.Round(time.Second), e.Size, state)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "Only list keys matching this glob")
	addOutputFlags(cmd, &format)
	return cmd
}

func newCachePruneCommand() *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired and unreadable cache entries",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore(cmd)
			if err != nil {
				return err
			}
			removed, err := store.Prune(match)
			if errors.Is(err, cache.ErrInvalidPattern) {
				return exitcode.Wrap(exitcode.UsageError, err)
			}
			if err != nil {
				return exitcode.Wrap(exitcode.FileSystemError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d cache entries\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "Only prune keys matching this glob")
	return cmd
}
