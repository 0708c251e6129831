// Package offline implements the asset-caching worker: its lifecycle controller,
// event handlers, the cache-first strategy and the cache storage it relies on.
package offline

import (
	"errors"
	"fmt"
	"strings"
)

// Config describes the worker's cache settings.
type Config struct {
	// CacheName is the versioned name of the cache used by this worker.
	CacheName string
	// CachePrefix groups every version of the cache; stale caches sharing it are deleted on activation.
	CachePrefix string
	// AssetsToCacheOnInstall are origin-relative paths stored during install.
	AssetsToCacheOnInstall []string
}

// DefaultConfig returns the application shell configuration.
func DefaultConfig() Config {
	return Config{
		CacheName:   "game-collection-v1",
		CachePrefix: "game-collection-",
		AssetsToCacheOnInstall: []string{
			"/",
			"/index.html",
			"/manifest.json",
			"/icon-192x192.png",
			"/icon-512x512.png",
			"/favicon.ico",
		},
	}
}

// Validate checks that the cache name belongs to the prefix family.
func (c Config) Validate() error {
	if c.CachePrefix == "" {
		return errors.New("cache prefix is required")
	}
	if !strings.HasPrefix(c.CacheName, c.CachePrefix) {
		return fmt.Errorf("cache name %q must start with prefix %q", c.CacheName, c.CachePrefix)
	}
	if strings.Contains(c.CacheName, "/") {
		return fmt.Errorf("cache name %q must not contain '/'", c.CacheName)
	}
	for _, asset := range c.AssetsToCacheOnInstall {
		if !strings.HasPrefix(asset, "/") {
			return fmt.Errorf("asset %q must be an absolute path", asset)
		}
	}
	return nil
}
