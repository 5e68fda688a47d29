package vertexindex

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/m4ra-routing/m4ra/pkg/cache"
	"github.com/m4ra-routing/m4ra/pkg/datastructure"
	"github.com/m4ra-routing/m4ra/pkg/fingerprint"
	"github.com/m4ra-routing/m4ra/pkg/util"
)

var ErrMissingPrerequisite = errors.New("contracted weighted network not available in cache")

// Builder computes pairwise vertex indices from the cached per-mode
// contracted networks. It must only run after the weighting phase has
// produced all three; a missing mode is a hard failure, not a skip.
type Builder struct {
	cfg     *cache.Config
	matcher Matcher
	logger  *slog.Logger
}

func NewBuilder(cfg *cache.Config, matcher Matcher) *Builder {
	return &Builder{cfg: cfg, matcher: matcher, logger: slog.Default()}
}

func (b *Builder) SetLogger(l *slog.Logger) { b.logger = l }

type modeNetwork struct {
	coords []datastructure.Coordinate
	hash6  string
}

// BuildVertexIndices produces the 6 directional vertex-index artifacts for
// a city, reusing any that already exist for the current truncated
// fingerprints. Returns all 6 paths regardless of hit or miss.
func (b *Builder) BuildVertexIndices(city string) ([]string, error) {
	city = util.NormalizeCity(city)

	loaded := make(map[datastructure.Mode]modeNetwork, len(datastructure.Modes))
	for _, mode := range datastructure.Modes {
		path, err := b.cfg.FindWeighted(city, mode)
		if err != nil {
			return nil, err
		}
		if path == "" {
			return nil, fmt.Errorf("%w: %s/%s", ErrMissingPrerequisite, city, mode)
		}
		w, err := cache.ReadWeightedNetwork(path)
		if err != nil {
			return nil, err
		}
		if !w.Contracted {
			return nil, fmt.Errorf("%w: %s/%s is not contracted (%s)", ErrMissingPrerequisite, city, mode, path)
		}

		coords := make([]datastructure.Coordinate, len(w.Network.Vertices))
		for i, v := range w.Network.Vertices {
			coords[i] = datastructure.NewCoordinate(v.Lat, v.Lon)
		}
		loaded[mode] = modeNetwork{coords: coords, hash6: fingerprint.Truncate(w.Hash)}
	}

	var out []string
	for _, pair := range datastructure.ModePairs() {
		a, bb := pair[0], pair[1]
		from, to := loaded[a], loaded[bb]

		path := b.cfg.VertexIndexPath(city, a, bb, from.hash6, to.hash6)
		if _, err := os.Stat(path); err == nil {
			out = append(out, path)
			continue
		}

		b.logger.Info("matching vertices", "city", city, "from", a.String(), "to", bb.String())
		nearest, err := b.matcher.Match(from.coords, to.coords)
		if err != nil {
			return nil, fmt.Errorf("matching %s->%s for %s: %w", a, bb, city, err)
		}
		idx := &datastructure.VertexIndex{
			From:    a,
			To:      bb,
			HashA:   from.hash6,
			HashB:   to.hash6,
			Nearest: nearest,
		}
		if err := cache.WriteVertexIndex(path, idx); err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, nil
}
