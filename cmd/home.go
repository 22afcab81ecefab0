/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/omniscript/pkg/config"
	"github.com/fulmenhq/omniscript/pkg/exitcode"
	"github.com/spf13/cobra"
)

func newHomeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the data directory and effective settings",
		Long: `Show where regsearch keeps its configuration and cache, and the settings
in effect after merging defaults, omniscript.yaml and OS_* variables.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: runHome,
	}
	cmd.Flags().Bool("init", false, "Write a default omniscript.yaml into the data directory")
	cmd.Flags().Bool("force", false, "With --init, overwrite an existing omniscript.yaml")
	return cmd
}

func runHome(cmd *cobra.Command, _ []string) error {
	initHome, _ := cmd.Flags().GetBool("init")
	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()

	cfg, store, err := openStore(cmd)
	if err != nil {
		return err
	}

	if initHome {
		path, written, err := config.WriteDefaultFile(cfg.DataDir, force)
		if err != nil {
			return exitcode.Wrap(exitcode.FileSystemError, err)
		}
		if written {
			fmt.Fprintf(out, "Wrote %s\n", path)
		} else {
			fmt.Fprintf(out, "%s already exists (use --force to overwrite)\n", path)
		}
		return nil
	}

	configFile := cfg.File
	if configFile == "" {
		configFile = "(none)"
	}
	cacheState := "enabled"
	if !store.Enabled() {
		cacheState = "disabled"
	}

	fmt.Fprintf(out, "Data dir:    %s\n", cfg.DataDir)
	fmt.Fprintf(out, "Config file: %s\n", configFile)
	fmt.Fprintf(out, "Cache dir:   %s (%s, ttl %s)\n", store.Root(), cacheState, store.TTL())
	fmt.Fprintf(out, "Timeout:     %s\n", cfg.HTTP.Timeout)
	fmt.Fprintf(out, "User agent:  %s\n", cfg.HTTP.UserAgent)
	fmt.Fprintf(out, "Docker Hub:  %s\n", cfg.Registries.DockerHubURL)
	fmt.Fprintf(out, "Quay:        %s\n", cfg.Registries.QuayURL)
	return nil
}
