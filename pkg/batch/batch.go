// Package batch drives the weighting orchestrator over a directory of raw
// per-city network files.
package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m4ra-routing/m4ra/pkg/cache"
	"github.com/m4ra-routing/m4ra/pkg/datastructure"
)

var (
	ErrAmbiguousCityMatch = errors.New("multiple raw network files match city")
	ErrNoCityMatch        = errors.New("no raw network file matches city")
)

// multiWordPrefix marks city names whose first segment does not identify
// them: "new-york-network.bin" is the city "new-york", not "new".
const multiWordPrefix = "new"

const rawNetworkExt = ".bin"

// Orchestrator is the per-city weighting entry point driven by the batch.
type Orchestrator interface {
	WeightNetworks(network *datastructure.Network, city string, quiet bool) ([]string, error)
}

type Driver struct {
	orch   Orchestrator
	logger *slog.Logger
}

func NewDriver(orch Orchestrator) *Driver {
	return &Driver{orch: orch, logger: slog.Default()}
}

func (d *Driver) SetLogger(l *slog.Logger) { d.logger = l }

// CityFromFilename derives the city identifier from a raw network file
// name: the first hyphen/space-delimited segment, or the first two joined
// when the name begins with the multi-word prefix token.
func CityFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	segments := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	if len(segments) == 0 {
		return ""
	}
	if segments[0] == multiWordPrefix && len(segments) > 1 {
		return segments[0] + "-" + segments[1]
	}
	return segments[0]
}

// ListCities returns the deduplicated city identifiers derived from the
// raw network files in dir, in directory order.
func ListCities(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading network directory %s: %w", dir, err)
	}
	var cities []string
	seen := map[string]bool{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != rawNetworkExt {
			continue
		}
		city := CityFromFilename(entry.Name())
		if city == "" || seen[city] {
			continue
		}
		seen[city] = true
		cities = append(cities, city)
	}
	return cities, nil
}

// BatchWeight weights every city found in dir, excluding the named
// cities. A city that matches zero or more than one raw-network file is a
// fatal error for the whole invocation; the driver never skips to the
// next city past a failure.
func (d *Driver) BatchWeight(dir string, excluded []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading network directory %s: %w", dir, err)
	}

	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}

	var files []string
	var cities []string
	seen := map[string]bool{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != rawNetworkExt {
			continue
		}
		files = append(files, entry.Name())
		city := CityFromFilename(entry.Name())
		if city == "" || skip[city] || seen[city] {
			continue
		}
		seen[city] = true
		cities = append(cities, city)
	}

	var manifest []string
	for i, city := range cities {
		path, err := resolveCityFile(dir, city, files)
		if err != nil {
			return nil, err
		}

		d.logger.Info("weighting city", "city", city, "file", path,
			"progress", fmt.Sprintf("%d/%d", i+1, len(cities)))

		network, err := cache.ReadNetwork(path)
		if err != nil {
			return nil, fmt.Errorf("loading raw network for %s: %w", city, err)
		}
		paths, err := d.orch.WeightNetworks(network, city, false)
		if err != nil {
			return nil, err
		}
		manifest = append(manifest, paths...)
	}
	return manifest, nil
}

// resolveCityFile finds the single raw-network file whose name contains
// the city identifier.
func resolveCityFile(dir, city string, files []string) (string, error) {
	var matches []string
	for _, f := range files {
		if strings.Contains(f, city) {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q in %s", ErrNoCityMatch, city, dir)
	case 1:
		return filepath.Join(dir, matches[0]), nil
	default:
		return "", fmt.Errorf("%w: %q matches %s", ErrAmbiguousCityMatch, city, strings.Join(matches, ", "))
	}
}
