// Package streetweighter is a small built-in weighting collaborator so the
// m4ra binaries are usable without an external engine. It applies
// per-mode speeds, motorcar traffic-light and turn penalties from the
// penalty profile document, and contracts pass-through vertices. The cache
// core only ever sees it through the weighting.Weighter interface.
package streetweighter

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/m4ra-routing/m4ra/pkg/datastructure"
	"github.com/m4ra-routing/m4ra/pkg/geo"
	"github.com/m4ra-routing/m4ra/pkg/weighting"
)

// speeds in km/h per travel mode.
var modeSpeeds = map[datastructure.Mode]float64{
	datastructure.ModeFoot:     5,
	datastructure.ModeBicycle:  15,
	datastructure.ModeMotorcar: 40,
}

// runCounter makes internal edge identifiers run-specific, matching the
// documented behavior of the external weighting libraries this stands in
// for. Callers must re-fingerprint the result.
var runCounter atomic.Int64

type StreetWeighter struct {
	contract bool
}

func New() *StreetWeighter {
	return &StreetWeighter{contract: true}
}

// NewWithoutContraction keeps every vertex of the input network. Mostly
// useful in tests that need stable vertex tables.
func NewWithoutContraction() *StreetWeighter {
	return &StreetWeighter{contract: false}
}

type penaltyProfile struct {
	Penalties struct {
		Motorcar struct {
			TrafficLights float64 `json:"traffic_lights"`
			Turn          float64 `json:"turn"`
		} `json:"motorcar"`
	} `json:"penalties"`
}

func (sw *StreetWeighter) Weight(network *datastructure.Network, mode datastructure.Mode,
	opts weighting.WeightOptions) (*datastructure.WeightedNetwork, error) {

	speed, ok := modeSpeeds[mode]
	if !ok {
		return nil, fmt.Errorf("no speed configured for mode %s", mode)
	}

	var profile penaltyProfile
	if opts.ProfilePath != "" {
		raw, err := os.ReadFile(opts.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("reading penalty profile: %w", err)
		}
		if err := json.Unmarshal(raw, &profile); err != nil {
			return nil, fmt.Errorf("parsing penalty profile: %w", err)
		}
	}

	vertices, edges := cloneGraph(network)
	fillMissingDistances(vertices, edges)
	if sw.contract {
		vertices, edges = contractPassThrough(vertices, edges)
	}

	idBase := int32(runCounter.Add(1)%100000) * 1_000_000
	degree := make(map[int32]int, len(vertices))
	for _, e := range edges {
		degree[e.FromVertex]++
		degree[e.ToVertex]++
	}

	speedMS := speed / 3.6
	weights := make([]datastructure.EdgeWeight, len(edges))
	for i := range edges {
		edges[i].EdgeID = idBase + int32(i)

		t := edges[i].Distance / speedMS
		if mode == datastructure.ModeMotorcar {
			if vertices[edges[i].ToVertex].TrafficLight {
				t += profile.Penalties.Motorcar.TrafficLights
			}
			if opts.TurnPenalty && degree[edges[i].ToVertex] > 2 {
				t += profile.Penalties.Motorcar.Turn
			}
		}
		weights[i] = datastructure.EdgeWeight{
			EdgeID: edges[i].EdgeID,
			Weight: edges[i].Distance,
			Time:   t,
		}
	}

	return &datastructure.WeightedNetwork{
		Network:    *datastructure.NewNetwork(vertices, edges),
		Mode:       mode,
		Weights:    weights,
		Contracted: sw.contract,
	}, nil
}

// fillMissingDistances derives an edge's length from its endpoint and
// geometry coordinates when the ingestion step left it zero.
func fillMissingDistances(vertices []datastructure.Vertex, edges []datastructure.Edge) {
	for i := range edges {
		if edges[i].Distance > 0 {
			continue
		}
		from := vertices[edges[i].FromVertex]
		to := vertices[edges[i].ToVertex]
		coords, err := datastructure.DecodeGeometry(edges[i].Geometry)
		if err != nil {
			coords = nil
		}
		chain := make([]datastructure.Coordinate, 0, len(coords)+2)
		chain = append(chain, datastructure.NewCoordinate(from.Lat, from.Lon))
		chain = append(chain, coords...)
		chain = append(chain, datastructure.NewCoordinate(to.Lat, to.Lon))

		var dist float64
		for j := 1; j < len(chain); j++ {
			dist += geo.DistanceM(chain[j-1].Lat, chain[j-1].Lon, chain[j].Lat, chain[j].Lon)
		}
		edges[i].Distance = dist
	}
}

func cloneGraph(n *datastructure.Network) ([]datastructure.Vertex, []datastructure.Edge) {
	vertices := make([]datastructure.Vertex, len(n.Vertices))
	copy(vertices, n.Vertices)
	edges := make([]datastructure.Edge, len(n.Edges))
	copy(edges, n.Edges)
	return vertices, edges
}

// contractPassThrough merges chains through vertices with exactly one
// incoming and one outgoing edge. Traffic-light vertices are kept, they
// carry penalty semantics. Assumes vertices[i].ID == i, the layout the
// ingestion step produces.
func contractPassThrough(vertices []datastructure.Vertex, edges []datastructure.Edge) ([]datastructure.Vertex, []datastructure.Edge) {
	in := make([][]int, len(vertices))
	out := make([][]int, len(vertices))
	for i, e := range edges {
		in[e.ToVertex] = append(in[e.ToVertex], i)
		out[e.FromVertex] = append(out[e.FromVertex], i)
	}

	removable := make([]bool, len(vertices))
	for i, v := range vertices {
		if v.TrafficLight || len(in[i]) != 1 || len(out[i]) != 1 {
			continue
		}
		removable[i] = edges[in[i][0]].FromVertex != edges[out[i][0]].ToVertex
	}

	visited := make([]bool, len(edges))
	removed := make([]bool, len(vertices))
	var newEdges []datastructure.Edge
	for i, e := range edges {
		// chains are walked from their head edge only
		if visited[i] || removable[e.FromVertex] {
			continue
		}
		visited[i] = true
		cur := e
		for removable[cur.ToVertex] {
			next := out[cur.ToVertex][0]
			if visited[next] {
				break
			}
			visited[next] = true
			removed[cur.ToVertex] = true
			cur = mergeEdges(vertices, cur, edges[next])
		}
		newEdges = append(newEdges, cur)
	}
	// pure cycles of pass-through vertices have no chain head; keep them
	for i, e := range edges {
		if !visited[i] {
			newEdges = append(newEdges, e)
		}
	}

	// renumber surviving vertices, remap edge endpoints
	remap := make([]int32, len(vertices))
	var newVertices []datastructure.Vertex
	for i, v := range vertices {
		if removed[i] {
			continue
		}
		remap[i] = int32(len(newVertices))
		v.ID = int32(len(newVertices))
		newVertices = append(newVertices, v)
	}
	for i := range newEdges {
		newEdges[i].FromVertex = remap[newEdges[i].FromVertex]
		newEdges[i].ToVertex = remap[newEdges[i].ToVertex]
	}
	return newVertices, newEdges
}

func mergeEdges(vertices []datastructure.Vertex, a, b datastructure.Edge) datastructure.Edge {
	mid := vertices[a.ToVertex]

	aCoords, _ := datastructure.DecodeGeometry(a.Geometry)
	bCoords, _ := datastructure.DecodeGeometry(b.Geometry)
	geometry := make([]datastructure.Coordinate, 0, len(aCoords)+len(bCoords)+1)
	geometry = append(geometry, aCoords...)
	geometry = append(geometry, datastructure.NewCoordinate(mid.Lat, mid.Lon))
	geometry = append(geometry, bCoords...)

	return datastructure.Edge{
		FromVertex: a.FromVertex,
		ToVertex:   b.ToVertex,
		FromOsmID:  a.FromOsmID,
		ToOsmID:    b.ToOsmID,
		WayID:      a.WayID,
		Distance:   a.Distance + b.Distance,
		Geometry:   datastructure.EncodeGeometry(geometry),
	}
}

const defaultProfileDoc = `{
    "profiles": {
        "foot": {"speed": 5},
        "bicycle": {"speed": 15},
        "motorcar": {"speed": 40}
    },
    "penalties": {
        "motorcar": {
            "traffic_lights": 8,
            "turn": 7.5,
            "restrictions": true
        }
    }
}
`

// WriteDefaultProfile writes the fixed default penalty configuration into
// dir. The two motorcar penalty values are not injectable here; callers
// patch the written document.
func (sw *StreetWeighter) WriteDefaultProfile(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "wt-profile-default-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(defaultProfileDoc); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
