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

func newTagsCommand() *cobra.Command {
	var (
		limit  int
		format outputFormat
	)

	cmd := &cobra.Command{
		Use:   "tags IMAGE",
		Short: "List image tags",
		Long: `List up to --limit tags of IMAGE in registry order.
Bare names resolve to the Docker Hub "library" namespace. Names that start
with a registry host (ghcr.io/org/app, localhost:5000/app) are listed through
the OCI distribution API.`,
		Example: `  regsearch tags nginx
  regsearch tags bitnami/redis -l 20 --json
  regsearch tags ghcr.io/fluxcd/flux-cli`,
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

			tags := s.searcher.Tags(args[0], limit)
			out := cmd.OutOrStdout()
			if f := resolveFormat(cmd, format); f != outputText {
				return writeStructured(out, f, tags)
			}
			for _, tag := range tags {
				fmt.Fprintln(out, tag)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", registry.DefaultTagLimit, "Tag limit")
	addOutputFlags(cmd, &format)
	return cmd
}

func newBestTagCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "best-tag IMAGE",
		Short: "Print the most recent release tag of an image",
		Long: `Pick the highest version-shaped tag among the first 50 tags of IMAGE,
skipping floating tags such as latest, edge or nightly. Falls back to the
first listed tag, or "latest" when no tags are found.`,
		Example: `  regsearch best-tag nginx
  regsearch best-tag bitnami/postgresql`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			_, err = fmt.Fprintln(cmd.OutOrStdout(), s.searcher.BestTag(args[0]))
			return err
		},
	}
}
