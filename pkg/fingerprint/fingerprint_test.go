package fingerprint

import (
	"errors"
	"testing"

	"github.com/m4ra-routing/m4ra/pkg/datastructure"
)

func smallNetwork() *datastructure.Network {
	vertices := []datastructure.Vertex{
		{ID: 0, OsmID: 101, Lat: -7.556702, Lon: 110.821985},
		{ID: 1, OsmID: 102, Lat: -7.559635, Lon: 110.856429, TrafficLight: true},
		{ID: 2, OsmID: 103, Lat: -7.561000, Lon: 110.830000},
	}
	edges := []datastructure.Edge{
		{EdgeID: 0, FromVertex: 0, ToVertex: 1, FromOsmID: 101, ToOsmID: 102, WayID: 900, Distance: 3811.2},
		{EdgeID: 1, FromVertex: 1, ToVertex: 2, FromOsmID: 102, ToOsmID: 103, WayID: 901, Distance: 2930.4},
	}
	return datastructure.NewNetwork(vertices, edges)
}

func TestComputeDeterministic(t *testing.T) {
	a, err := Compute(smallNetwork(), false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(smallNetwork(), false)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("fingerprint not deterministic: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %q", a)
	}
}

func TestComputeIgnoresInternalIDs(t *testing.T) {
	want, _ := Compute(smallNetwork(), false)

	// reassign internal ids the way the weighting collaborator does
	n := smallNetwork()
	for i := range n.Vertices {
		n.Vertices[i].ID += 1000
	}
	for i := range n.Edges {
		n.Edges[i].EdgeID += 1000
		n.Edges[i].FromVertex += 1000
		n.Edges[i].ToVertex += 1000
	}
	got, _ := Compute(n, false)
	if got != want {
		t.Errorf("internal ids leaked into fingerprint: %s vs %s", got, want)
	}
}

func TestComputeInvalidation(t *testing.T) {
	want, _ := Compute(smallNetwork(), false)

	n := smallNetwork()
	n.Edges = append(n.Edges, datastructure.Edge{
		EdgeID: 2, FromVertex: 2, ToVertex: 0, FromOsmID: 103, ToOsmID: 101, WayID: 902, Distance: 120,
	})
	got, _ := Compute(n, false)
	if got == want {
		t.Error("adding an edge did not change the fingerprint")
	}
}

func TestComputeCachedHash(t *testing.T) {
	n := smallNetwork()
	n.SetCachedHash("deadbeefdeadbeef")

	got, _ := Compute(n, false)
	if got != "deadbeefdeadbeef" {
		t.Errorf("cached hash not honored: %s", got)
	}

	forced, _ := Compute(n, true)
	if forced == "deadbeefdeadbeef" {
		t.Error("force did not bypass the cached hash")
	}
	if n.CachedHash() != forced {
		t.Error("forced recompute did not replace the cached hash")
	}
}

func TestComputeWeightedStableAcrossRuns(t *testing.T) {
	// two weighting runs over fingerprint-identical inputs assign
	// different internal edge ids; the weighted fingerprints must agree
	mkWeighted := func(offset int32) *datastructure.WeightedNetwork {
		n := smallNetwork()
		weights := make([]datastructure.EdgeWeight, len(n.Edges))
		for i := range n.Edges {
			n.Edges[i].EdgeID += offset
			weights[i] = datastructure.EdgeWeight{EdgeID: n.Edges[i].EdgeID, Weight: n.Edges[i].Distance * 1.2, Time: 60}
		}
		return &datastructure.WeightedNetwork{Network: *n, Mode: datastructure.ModeBicycle, Weights: weights}
	}

	a, err := ComputeWeighted(mkWeighted(0))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeWeighted(mkWeighted(5000))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("weighted fingerprint unstable across id reassignment: %s vs %s", a, b)
	}

	raw, _ := Compute(smallNetwork(), false)
	if a == raw {
		t.Error("weighted fingerprint should differ from the raw fingerprint")
	}
}

func TestMalformedNetwork(t *testing.T) {
	empty := datastructure.NewNetwork(nil, nil)
	if _, err := Compute(empty, false); !errors.Is(err, ErrMalformedNetwork) {
		t.Errorf("expected ErrMalformedNetwork, got %v", err)
	}

	n := smallNetwork()
	n.Vertices[1].OsmID = 0
	if _, err := Compute(n, true); !errors.Is(err, ErrMalformedNetwork) {
		t.Errorf("expected ErrMalformedNetwork, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("0123456789abcdef"); got != "012345" {
		t.Errorf("expected 012345, got %s", got)
	}
}
