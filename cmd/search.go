/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/omniscript/pkg/exitcode"
	"github.com/fulmenhq/omniscript/pkg/registry"
	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	var (
		choice = registryAll
		limit  int
		format outputFormat
	)

	cmd := &cobra.Command{
		Use:   "search TERM",
		Short: "Search registries for images",
		Long: `Search Docker Hub and Quay for images matching TERM.
A registry that cannot be reached contributes an empty result list.`,
		Example: `  regsearch search postgres
  regsearch search redis --registry docker --limit 5
  regsearch search prometheus -r quay --output yaml`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return exitcode.Wrap(exitcode.UsageError, fmt.Errorf("--limit must be at least 1, got %d", limit))
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return runSearch(cmd, s.searcher, args[0], choice, limit, resolveFormat(cmd, format))
		},
	}

	cmd.Flags().VarP(&choice, "registry", "r", "Registry to search (all|docker|quay)")
	cmd.Flags().IntVarP(&limit, "limit", "l", registry.DefaultSearchLimit, "Result limit")
	addOutputFlags(cmd, &format)
	return cmd
}

func runSearch(cmd *cobra.Command, searcher *registry.Searcher, term string, choice registryChoice, limit int, format outputFormat) error {
	out := cmd.OutOrStdout()

	if choice == registryAll {
		all := orderedResults{results: searcher.SearchAll(term, limit)}
		for _, a := range searcher.Adapters() {
			all.ids = append(all.ids, a.ID())
		}
		if format == outputText {
			writeAllText(out, all)
			return nil
		}
		return writeStructured(out, format, all)
	}

	results, err := searcher.Search(string(choice), term, limit)
	if err != nil {
		return exitcode.Wrap(exitcode.UsageError, err)
	}
	if format == outputText {
		writeResultsText(out, results)
		return nil
	}
	return writeStructured(out, format, results)
}
