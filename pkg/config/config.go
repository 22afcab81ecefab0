package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/omniscript/pkg/safeio"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is shared with the rest of the toolset, so OS_DATA_DIR points
// every tool at the same data directory.
const EnvPrefix = "OS"

// DefaultCacheSubdir is the cache namespace under the data directory
var DefaultCacheSubdir = filepath.Join("cache", "python")

// Config holds all configuration for regsearch
type Config struct {
	DataDir    string           `mapstructure:"data_dir"`
	Cache      CacheConfig      `mapstructure:"cache"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Registries RegistriesConfig `mapstructure:"registries"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// CacheConfig holds on-disk cache settings
type CacheConfig struct {
	// Dir overrides <data_dir>/cache/python when set
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
	Enabled bool          `mapstructure:"enabled"`
}

// HTTPConfig holds request settings shared by every registry call
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// RegistriesConfig holds API base URLs, overridable for mirrors
type RegistriesConfig struct {
	DockerHubURL string `mapstructure:"docker_hub_url"`
	QuayURL      string `mapstructure:"quay_url"`
}

var defaultConfig = Config{
	Cache: CacheConfig{
		TTL:     time.Hour,
		Enabled: true,
	},
	HTTP: HTTPConfig{
		Timeout:   10 * time.Second,
		UserAgent: "OmniScript/1.0",
	},
	Registries: RegistriesConfig{
		DockerHubURL: "https://hub.docker.com",
		QuayURL:      "https://quay.io",
	},
}

// Defaults returns the built-in configuration with data_dir resolved
func Defaults() (*Config, error) {
	cfg := defaultConfig
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir
	return &cfg, nil
}

// LoadConfig loads configuration from defaults, an optional omniscript.yaml
// and OS_* environment variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	defaults, err := Defaults()
	if err != nil {
		return nil, err
	}

	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("http.timeout", defaults.HTTP.Timeout)
	v.SetDefault("http.user_agent", defaults.HTTP.UserAgent)
	v.SetDefault("registries.docker_hub_url", defaults.Registries.DockerHubURL)
	v.SetDefault("registries.quay_url", defaults.Registries.QuayURL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(strings.TrimSuffix(ConfigFileName, filepath.Ext(ConfigFileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(v.GetString("data_dir"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config %s: %w", v.ConfigFileUsed(), err)
		}
	}
	if file := v.ConfigFileUsed(); file != "" {
		if err := validateFile(file); err != nil {
			return nil, err
		}
	}
	if err := validateMerged(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %s", c.HTTP.Timeout)
	}
	return nil
}

// CacheDir returns the effective cache root
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(c.DataDir, DefaultCacheSubdir)
}

// ConfigFileName is the file LoadConfig looks for in "." and data_dir
const ConfigFileName = "omniscript.yaml"

// EnsureDataDir creates the data directory if needed
func EnsureDataDir(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}
	return nil
}

// WriteDefaultFile writes the built-in defaults to <data_dir>/omniscript.yaml.
// An existing file is left alone unless force is set. It returns the path and
// whether a file was written.
func WriteDefaultFile(dataDir string, force bool) (string, bool, error) {
	path := filepath.Join(dataDir, ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return path, false, nil
	}
	if err := EnsureDataDir(dataDir); err != nil {
		return "", false, err
	}

	doc := map[string]any{
		"cache": map[string]any{
			"ttl":     defaultConfig.Cache.TTL.String(),
			"enabled": defaultConfig.Cache.Enabled,
		},
		"http": map[string]any{
			"timeout":    defaultConfig.HTTP.Timeout.String(),
			"user_agent": defaultConfig.HTTP.UserAgent,
		},
		"registries": map[string]any{
			"docker_hub_url": defaultConfig.Registries.DockerHubURL,
			"quay_url":       defaultConfig.Registries.QuayURL,
		},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode default config: %v", err)
	}
	if err := safeio.WriteFileAtomic(path, data, 0644); err != nil {
		return "", false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, true, nil
}

// DefaultDataDir returns $OS_DATA_DIR, or ~/.omniscript
func DefaultDataDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_DATA_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	return filepath.Join(homeDir, ".omniscript"), nil
}
