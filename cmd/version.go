/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/fulmenhq/omniscript/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show regsearch version",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show Go version, platform and module version")
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	out := cmd.OutOrStdout()
	version := buildinfo.Version()

	if jsonOutput {
		versionInfo := map[string]interface{}{
			"version":   version,
			"goVersion": runtime.Version(),
			"platform":  runtime.GOOS,
			"arch":      runtime.GOARCH,
		}
		if extended {
			versionInfo["moduleVersion"] = moduleVersionOrUnknown()
		}
		jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		fmt.Fprintln(out, string(jsonData))
		return nil
	}

	fmt.Fprintf(out, "regsearch %s\n", version)
	if extended {
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Module Version: %s\n", moduleVersionOrUnknown())
	}
	return nil
}

func moduleVersionOrUnknown() string {
	if mv := buildinfo.ModuleVersion(); mv != "" {
		return mv
	}
	return "unknown"
}
