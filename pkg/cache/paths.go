package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/m4ra-routing/m4ra/pkg/datastructure"
	"github.com/m4ra-routing/m4ra/pkg/util"
)

const (
	filePrefix  = "m4ra"
	artifactExt = ".bin"

	// ProfileFileName is the patched motorcar penalty configuration,
	// cached once per city directory.
	ProfileFileName = "wt_profile.json"
)

// WeightedNetworkPath returns the location of a per-mode weighted network
// artifact. Pure path construction.
func (c *Config) WeightedNetworkPath(city string, mode datastructure.Mode, hash string) string {
	city = util.NormalizeCity(city)
	name := fmt.Sprintf("%s-%s-%s-%s%s", filePrefix, city, mode, hash, artifactExt)
	return filepath.Join(c.CityDir(city), name)
}

// DoneFlagPath returns the location of the per-(city, fingerprint)
// completion sentinel.
func (c *Config) DoneFlagPath(city, hash string) string {
	city = util.NormalizeCity(city)
	name := fmt.Sprintf("%s-%s-%s-done", filePrefix, city, hash)
	return filepath.Join(c.CityDir(city), name)
}

// VertexIndexPath returns the location of the pairwise vertex-index
// artifact for the ordered mode pair (a, b). The key uses truncated
// fingerprints of both contracted networks; truncation collisions are an
// accepted risk.
func (c *Config) VertexIndexPath(city string, a, b datastructure.Mode, hashA6, hashB6 string) string {
	city = util.NormalizeCity(city)
	name := fmt.Sprintf("%s-%s-vert-index-%s-%s-%s-%s%s", filePrefix, city, a, b, hashA6, hashB6, artifactExt)
	return filepath.Join(c.CityDir(city), name)
}

// ProfilePath returns the location of the cached penalty configuration.
func (c *Config) ProfilePath(city string) string {
	return filepath.Join(c.CityDir(city), ProfileFileName)
}

// ListWeighted enumerates every cached per-mode weighted network file for
// a city, in deterministic order. Callers use this only as a return
// manifest, never as a completeness signal: the done flag is the sole
// trust anchor.
func (c *Config) ListWeighted(city string) ([]string, error) {
	city = util.NormalizeCity(city)
	var out []string
	for _, mode := range datastructure.Modes {
		pattern := filepath.Join(c.CityDir(city),
			fmt.Sprintf("%s-%s-%s-*%s", filePrefix, city, mode, artifactExt))
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("listing weighted networks for %s: %w", city, err)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// ListVertexIndices enumerates every cached pairwise vertex-index file
// for a city.
func (c *Config) ListVertexIndices(city string) ([]string, error) {
	city = util.NormalizeCity(city)
	pattern := filepath.Join(c.CityDir(city),
		fmt.Sprintf("%s-%s-vert-index-*%s", filePrefix, city, artifactExt))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing vertex indices for %s: %w", city, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ListDoneFlags enumerates every completion sentinel for a city.
func (c *Config) ListDoneFlags(city string) ([]string, error) {
	city = util.NormalizeCity(city)
	pattern := filepath.Join(c.CityDir(city),
		fmt.Sprintf("%s-%s-*-done", filePrefix, city))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing done flags for %s: %w", city, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// FindWeighted locates the cached weighted network for one mode. When
// multiple generations exist (stale files are never garbage-collected) the
// most recently written one wins.
func (c *Config) FindWeighted(city string, mode datastructure.Mode) (string, error) {
	city = util.NormalizeCity(city)
	pattern := filepath.Join(c.CityDir(city),
		fmt.Sprintf("%s-%s-%s-*%s", filePrefix, city, mode, artifactExt))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("locating weighted network for %s/%s: %w", city, mode, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	newest := matches[0]
	newestMtime := int64(-1)
	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil {
			continue
		}
		if t := info.ModTime().UnixNano(); t > newestMtime {
			newest, newestMtime = m, t
		}
	}
	return newest, nil
}
