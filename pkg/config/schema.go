package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/omniscript-config.schema.json
var configSchema []byte

// ValidateConfig validates a JSON configuration document against the
// omniscript.yaml schema. Unknown keys, malformed durations and non-http
// registry URLs are all reported in one error.
func ValidateConfig(configData []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(configData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

// validateFile checks the raw config file, which is the only place a
// misspelled key can come from.
func validateFile(path string) error {
	raw, err := os.ReadFile(path) // #nosec G304 -- path is the file viper just read
	if err != nil {
		return fmt.Errorf("error reading config %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("error reading config %s: %w", path, err)
	}
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config %s: %v", path, err)
	}
	if err := ValidateConfig(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// validateMerged checks the effective settings after defaults, file and
// environment are layered, so a bad OS_* value fails the same way a bad
// file value does.
func validateMerged(v *viper.Viper) error {
	doc := map[string]any{
		"data_dir": v.GetString("data_dir"),
		"cache": map[string]any{
			"dir":     v.GetString("cache.dir"),
			"ttl":     durationSetting(v, "cache.ttl"),
			"enabled": v.GetBool("cache.enabled"),
		},
		"http": map[string]any{
			"timeout":    durationSetting(v, "http.timeout"),
			"user_agent": v.GetString("http.user_agent"),
		},
		"registries": map[string]any{
			"docker_hub_url": v.GetString("registries.docker_hub_url"),
			"quay_url":       v.GetString("registries.quay_url"),
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %v", err)
	}
	return ValidateConfig(data)
}

// durationSetting renders defaults (time.Duration) and file or env values
// (strings) the same way.
func durationSetting(v *viper.Viper, key string) string {
	switch val := v.Get(key).(type) {
	case fmt.Stringer:
		return val.String()
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
