package vertexindex

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4ra-routing/m4ra/pkg/cache"
	"github.com/m4ra-routing/m4ra/pkg/datastructure"
)

func writeModeNetwork(t *testing.T, cfg *cache.Config, city string, mode datastructure.Mode, lats []float64) {
	t.Helper()
	vertices := make([]datastructure.Vertex, len(lats))
	for i, lat := range lats {
		vertices[i] = datastructure.Vertex{ID: int32(i), OsmID: int64(100*int(mode) + i + 1), Lat: lat, Lon: 2.35}
	}
	w := &datastructure.WeightedNetwork{
		Network:    *datastructure.NewNetwork(vertices, []datastructure.Edge{{FromOsmID: 1, ToOsmID: 2, WayID: 1, Distance: 1}}),
		Mode:       mode,
		Contracted: true,
		Hash:       fmt.Sprintf("%x00000000000000", 0xa0+int(mode))[:16],
	}
	_, err := cfg.EnsureCityDir(city)
	require.NoError(t, err)
	require.NoError(t, cache.WriteWeightedNetwork(cfg.WeightedNetworkPath(city, mode, w.Hash), w))
}

type countingMatcher struct {
	inner Matcher
	calls int
}

func (c *countingMatcher) Match(q, cand []datastructure.Coordinate) ([]int32, error) {
	c.calls++
	return c.inner.Match(q, cand)
}

func TestBuildVertexIndicesRequiresAllModes(t *testing.T) {
	cfg := cache.NewConfigWithRoot(t.TempDir())
	b := NewBuilder(cfg, NewRtreeMatcher())

	writeModeNetwork(t, cfg, "paris", datastructure.ModeFoot, []float64{48.85, 48.86})
	writeModeNetwork(t, cfg, "paris", datastructure.ModeBicycle, []float64{48.851, 48.861})
	// motorcar deliberately absent

	_, err := b.BuildVertexIndices("paris")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPrerequisite))
	assert.Contains(t, err.Error(), "motorcar")
}

func TestBuildVertexIndicesRejectsUncontracted(t *testing.T) {
	cfg := cache.NewConfigWithRoot(t.TempDir())
	b := NewBuilder(cfg, NewRtreeMatcher())

	writeModeNetwork(t, cfg, "paris", datastructure.ModeFoot, []float64{48.85})
	writeModeNetwork(t, cfg, "paris", datastructure.ModeBicycle, []float64{48.851})

	w := &datastructure.WeightedNetwork{
		Network: *datastructure.NewNetwork(
			[]datastructure.Vertex{{OsmID: 1, Lat: 48.85, Lon: 2.35}},
			[]datastructure.Edge{{FromOsmID: 1, ToOsmID: 1, WayID: 1, Distance: 1}}),
		Mode:       datastructure.ModeMotorcar,
		Contracted: false,
		Hash:       "cc00000000000000",
	}
	require.NoError(t, cache.WriteWeightedNetwork(
		cfg.WeightedNetworkPath("paris", datastructure.ModeMotorcar, w.Hash), w))

	_, err := b.BuildVertexIndices("paris")
	assert.True(t, errors.Is(err, ErrMissingPrerequisite))
}

func TestBuildVertexIndicesProducesSixDirectionalFiles(t *testing.T) {
	cfg := cache.NewConfigWithRoot(t.TempDir())
	matcher := &countingMatcher{inner: NewRtreeMatcher()}
	b := NewBuilder(cfg, matcher)

	// different vertex counts per mode make directionality observable
	writeModeNetwork(t, cfg, "paris", datastructure.ModeFoot, []float64{48.850, 48.860, 48.870})
	writeModeNetwork(t, cfg, "paris", datastructure.ModeBicycle, []float64{48.851, 48.871})
	writeModeNetwork(t, cfg, "paris", datastructure.ModeMotorcar, []float64{48.8605})

	paths, err := b.BuildVertexIndices("paris")
	require.NoError(t, err)
	require.Len(t, paths, 6)
	assert.Equal(t, 6, matcher.calls)

	// foot->bicycle maps each of the 3 foot vertices into the 2-element
	// bicycle set; bicycle->foot is the 2-element reverse query
	var footBike, bikeFoot *datastructure.VertexIndex
	for _, p := range paths {
		idx, readErr := cache.ReadVertexIndex(p)
		require.NoError(t, readErr)
		if idx.From == datastructure.ModeFoot && idx.To == datastructure.ModeBicycle {
			footBike = idx
		}
		if idx.From == datastructure.ModeBicycle && idx.To == datastructure.ModeFoot {
			bikeFoot = idx
		}
	}
	require.NotNil(t, footBike)
	require.NotNil(t, bikeFoot)
	assert.Equal(t, []int32{0, 0, 1}, footBike.Nearest)
	assert.Equal(t, []int32{0, 2}, bikeFoot.Nearest)

	// a second build reuses every cached index
	again, err := b.BuildVertexIndices("paris")
	require.NoError(t, err)
	assert.Equal(t, paths, again)
	assert.Equal(t, 6, matcher.calls)
}
