// Package fingerprint derives a content-addressed identity for street
// networks. The fingerprint is a pure function of the routable structure
// (source-object identifiers, coordinates, weights when present) and
// deliberately excludes internal vertex/edge indices, which the weighting
// collaborator reassigns on every invocation.
package fingerprint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/m4ra-routing/m4ra/pkg/datastructure"
	"github.com/m4ra-routing/m4ra/pkg/util"
)

var ErrMalformedNetwork = errors.New("network lacks required structural fields")

// coordPrecision bounds the decimals that enter the digest, so float noise
// below mapping precision does not change the identity.
const coordPrecision = 7

// TruncatedLen is the length of the short fingerprint form used in
// vertex-index file names. Collisions at 6 hex chars are accepted.
const TruncatedLen = 6

// Compute returns the fingerprint of a network as a 16-char hex string.
// The cached hash attribute on the network is trusted unless force is set;
// force must be used on any network returned by the weighting collaborator,
// whose internal edge identifiers are run-specific.
func Compute(n *datastructure.Network, force bool) (string, error) {
	if !force {
		if h := n.CachedHash(); h != "" {
			return h, nil
		}
	}
	if err := validate(n); err != nil {
		return "", err
	}

	d := xxhash.New()
	writeVertices(d, n.Vertices)
	writeEdges(d, n.Edges, nil)

	h := fmt.Sprintf("%016x", d.Sum64())
	n.SetCachedHash(h)
	return h, nil
}

// ComputeWeighted fingerprints a weighted network. Always forced: the
// pre-weighting fingerprint is invalid here. Edge weights participate in
// the digest keyed by their edge's stable identity, not by internal id.
func ComputeWeighted(w *datastructure.WeightedNetwork) (string, error) {
	if err := validate(&w.Network); err != nil {
		return "", err
	}

	weightByEdge := make(map[int32]datastructure.EdgeWeight, len(w.Weights))
	for _, ew := range w.Weights {
		weightByEdge[ew.EdgeID] = ew
	}

	d := xxhash.New()
	writeU64(d, uint64(w.Mode))
	writeVertices(d, w.Network.Vertices)
	writeEdges(d, w.Network.Edges, weightByEdge)

	h := fmt.Sprintf("%016x", d.Sum64())
	w.Hash = h
	return h, nil
}

// Truncate shortens a fingerprint for use in vertex-index cache keys.
func Truncate(h string) string {
	if len(h) <= TruncatedLen {
		return h
	}
	return h[:TruncatedLen]
}

func validate(n *datastructure.Network) error {
	if len(n.Vertices) == 0 || len(n.Edges) == 0 {
		return fmt.Errorf("%w: empty vertex or edge table", ErrMalformedNetwork)
	}
	for _, v := range n.Vertices {
		if v.OsmID == 0 {
			return fmt.Errorf("%w: vertex %d has no source id", ErrMalformedNetwork, v.ID)
		}
	}
	for _, e := range n.Edges {
		if e.FromOsmID == 0 || e.ToOsmID == 0 {
			return fmt.Errorf("%w: edge %d has no source endpoint ids", ErrMalformedNetwork, e.EdgeID)
		}
	}
	return nil
}

func writeVertices(d *xxhash.Digest, vertices []datastructure.Vertex) {
	sorted := make([]datastructure.Vertex, len(vertices))
	copy(sorted, vertices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OsmID < sorted[j].OsmID })

	writeU64(d, uint64(len(sorted)))
	for _, v := range sorted {
		writeU64(d, uint64(v.OsmID))
		writeF64(d, util.RoundFloat(v.Lat, coordPrecision))
		writeF64(d, util.RoundFloat(v.Lon, coordPrecision))
		if v.TrafficLight {
			writeU64(d, 1)
		} else {
			writeU64(d, 0)
		}
	}
}

func writeEdges(d *xxhash.Digest, edges []datastructure.Edge, weights map[int32]datastructure.EdgeWeight) {
	sorted := make([]datastructure.Edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.FromOsmID != b.FromOsmID {
			return a.FromOsmID < b.FromOsmID
		}
		if a.ToOsmID != b.ToOsmID {
			return a.ToOsmID < b.ToOsmID
		}
		if a.WayID != b.WayID {
			return a.WayID < b.WayID
		}
		return a.Distance < b.Distance
	})

	writeU64(d, uint64(len(sorted)))
	for _, e := range sorted {
		writeU64(d, uint64(e.FromOsmID))
		writeU64(d, uint64(e.ToOsmID))
		writeU64(d, uint64(e.WayID))
		writeF64(d, util.RoundFloat(e.Distance, 3))
		if weights != nil {
			ew := weights[e.EdgeID]
			writeF64(d, util.RoundFloat(ew.Weight, 3))
			writeF64(d, util.RoundFloat(ew.Time, 3))
		}
	}
}

func writeU64(d *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	d.Write(buf[:])
}

func writeF64(d *xxhash.Digest, v float64) {
	writeU64(d, math.Float64bits(v))
}
