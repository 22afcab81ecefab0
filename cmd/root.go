/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"os"

	"github.com/fulmenhq/omniscript/pkg/buildinfo"
	"github.com/fulmenhq/omniscript/pkg/exitcode"
	"github.com/fulmenhq/omniscript/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regsearch",
		Short: "Search container registries and resolve image tags",
		Long: `Regsearch queries public container registries (Docker Hub, Quay) for images,
lists image tags and picks the most recent release tag. Responses are cached on disk.

Examples:
   regsearch search postgres             # Search every registry
   regsearch search redis -r docker -l 5 # Search Docker Hub only
   regsearch tags nginx --json           # List tags as JSON
   regsearch best-tag bitnami/redis      # Most recent release tag
   regsearch clear-cache                 # Drop all cached responses`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "warn", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("cache-dir", "", "Cache directory (default <data_dir>/cache/python)")
	cmd.PersistentFlags().Bool("no-cache", false, "Bypass the on-disk cache for this run")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcode.Wrap(exitcode.UsageError, err)
	})

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("regsearch {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newSearchCommand())
	cmd.AddCommand(newTagsCommand())
	cmd.AddCommand(newBestTagCommand())
	cmd.AddCommand(newClearCacheCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newHomeCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitcode.FromError(err))
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "regsearch",
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}

// usageArgs marks positional argument errors as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return exitcode.Wrap(exitcode.UsageError, validate(cmd, args))
	}
}
