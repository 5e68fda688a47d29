// Package cache maps content-addressed artifact identities to file
// locations under a per-city cache directory and implements the done-flag
// protocol that decides recompute-vs-reuse.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/m4ra-routing/m4ra/pkg/util"
)

// EnvCacheDir overrides the platform cache directory when set.
const EnvCacheDir = "M4RA_CACHE_DIR"

const appDirName = "m4ra"

// Config holds the resolved cache root. It is an explicit value threaded
// through every entry point; nothing in this package reads the environment
// after construction, so tests can inject isolated temporary roots.
type Config struct {
	root string
}

// NewConfig resolves the cache root from the M4RA_CACHE_DIR override,
// falling back to the platform user cache directory.
func NewConfig() (*Config, error) {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return &Config{root: dir}, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolving user cache dir: %w", err)
	}
	return &Config{root: filepath.Join(base, appDirName)}, nil
}

// NewConfigWithRoot builds a config rooted at an explicit directory.
func NewConfigWithRoot(root string) *Config {
	return &Config{root: root}
}

func (c *Config) Root() string { return c.root }

// CityDir returns the per-city cache directory. The city name is
// normalized, so distinct spellings of one city share a directory and
// distinct cities never collide.
func (c *Config) CityDir(city string) string {
	return filepath.Join(c.root, util.NormalizeCity(city))
}

// EnsureCityDir creates the per-city directory if absent. Idempotent.
func (c *Config) EnsureCityDir(city string) (string, error) {
	dir := c.CityDir(city)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	return dir, nil
}
