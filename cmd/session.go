/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"github.com/fulmenhq/omniscript/pkg/cache"
	"github.com/fulmenhq/omniscript/pkg/config"
	"github.com/fulmenhq/omniscript/pkg/exitcode"
	"github.com/fulmenhq/omniscript/pkg/logger"
	"github.com/fulmenhq/omniscript/pkg/registry"
	"github.com/spf13/cobra"
)

// newSearcher builds the registry client for a command run. Tests replace it
// to inject a mock transport.
var newSearcher = registry.NewSearcher

// session is the per-invocation wiring shared by every command
type session struct {
	cfg      *config.Config
	store    *cache.Store
	searcher *registry.Searcher
}

// openSession loads configuration and builds one cache store and one
// searcher for this process run.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, store, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	searcher := newSearcher(registry.Options{
		Timeout:      cfg.HTTP.Timeout,
		UserAgent:    cfg.HTTP.UserAgent,
		Cache:        store,
		DockerHubURL: cfg.Registries.DockerHubURL,
		QuayURL:      cfg.Registries.QuayURL,
	})

	return &session{cfg: cfg, store: store, searcher: searcher}, nil
}

// openStore loads configuration and applies the global cache flags
func openStore(cmd *cobra.Command) (*config.Config, *cache.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, exitcode.Wrap(exitcode.ConfigError, err)
	}

	flags := cmd.Flags()
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir, _ = flags.GetString("cache-dir")
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	store := cache.NewStore(cache.Options{
		Root:     cfg.CacheDir(),
		TTL:      cfg.Cache.TTL,
		Disabled: !cfg.Cache.Enabled,
	})
	logger.Debug("cache store opened",
		logger.String("cache_dir", store.Root()),
		logger.Bool("cache_enabled", store.Enabled()),
		logger.Duration("ttl", store.TTL()))
	return cfg, store, nil
}

// close logs the cache traffic of the run
func (s *session) close() {
	stats := s.store.Stats()
	logger.Debug("cache stats",
		logger.Int("hits", stats.Hits),
		logger.Int("misses", stats.Misses),
		logger.Int("writes", stats.Writes))
}
