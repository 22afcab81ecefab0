/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fulmenhq/omniscript/pkg/registry"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// outputFormat is the --output flag value
type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(v string) error {
	switch outputFormat(strings.ToLower(v)) {
	case outputText, outputJSON, outputYAML:
		*f = outputFormat(strings.ToLower(v))
		return nil
	}
	return fmt.Errorf("must be one of text, json, yaml")
}

func (f *outputFormat) Type() string { return "format" }

// registryChoice is the --registry flag value
type registryChoice string

const (
	registryAll    registryChoice = "all"
	registryDocker registryChoice = "docker"
	registryQuay   registryChoice = "quay"
)

func (r *registryChoice) String() string { return string(*r) }

func (r *registryChoice) Set(v string) error {
	switch registryChoice(strings.ToLower(v)) {
	case registryAll, registryDocker, registryQuay:
		*r = registryChoice(strings.ToLower(v))
		return nil
	}
	return fmt.Errorf("must be one of all, docker, quay")
}

func (r *registryChoice) Type() string { return "registry" }

var (
	_ pflag.Value = (*outputFormat)(nil)
	_ pflag.Value = (*registryChoice)(nil)
)

// Column widths of descriptions in text output
const (
	allDescriptionWidth    = 60
	singleDescriptionWidth = 50
)

// addOutputFlags registers --output and its --json shorthand
func addOutputFlags(cmd *cobra.Command, format *outputFormat) {
	*format = outputText
	cmd.Flags().VarP(format, "output", "o", "Output format (text|json|yaml)")
	cmd.Flags().Bool("json", false, "Output as JSON (same as --output json)")
}

// resolveFormat lets --json win over the default but not over an explicit --output
func resolveFormat(cmd *cobra.Command, format outputFormat) outputFormat {
	if cmd.Flags().Changed("output") {
		return format
	}
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return outputJSON
	}
	return format
}

// writeStructured renders v as JSON or YAML
func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to format YAML: %v", err)
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

// orderedResults keeps SearchAll output in adapter order for every format
type orderedResults struct {
	ids     []string
	results map[string][]registry.ImageResult
}

func (o orderedResults) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range o.ids {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.results[id])
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (o orderedResults) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range o.ids {
		var val yaml.Node
		if err := val.Encode(o.results[id]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: id},
			&val)
	}
	return node, nil
}

// writeAllText prints one block per registry
func writeAllText(w io.Writer, all orderedResults) {
	for _, id := range all.ids {
		fmt.Fprintf(w, "\n=== %s ===\n", strings.ToUpper(id))
		for _, r := range all.results[id] {
			parts := []string{r.Name}
			if s := starMark(r.Stars); s != "" {
				parts = append(parts, s)
			}
			if r.Official {
				parts = append(parts, "[OFFICIAL]")
			}
			fmt.Fprintf(w, "  %s\n", strings.Join(parts, " "))
			if r.Description != "" {
				fmt.Fprintf(w, "    %s\n", runewidth.Truncate(r.Description, allDescriptionWidth, "..."))
			}
		}
	}
}

// writeResultsText prints one line per result
func writeResultsText(w io.Writer, results []registry.ImageResult) {
	for _, r := range results {
		name := r.Name
		if s := starMark(r.Stars); s != "" {
			name += " " + s
		}
		fmt.Fprintf(w, "%s - %s\n", name, runewidth.Truncate(r.Description, singleDescriptionWidth, ""))
	}
}

func starMark(stars int) string {
	if stars <= 0 {
		return ""
	}
	return fmt.Sprintf("★%d", stars)
}
