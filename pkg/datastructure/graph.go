package datastructure

import (
	"github.com/twpayne/go-polyline"
)

type Coordinate struct {
	Lat float64
	Lon float64
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

// Vertex is one routable intersection of a street network.
// ID is the internal index inside the containing network; the weighting
// collaborator reassigns these on every invocation. OsmID is the stable
// source-object identifier the fingerprint is derived from.
type Vertex struct {
	ID           int32
	OsmID        int64
	Lat          float64
	Lon          float64
	TrafficLight bool
}

// Edge is one directed street segment.
// EdgeID and the FromVertex/ToVertex indices are internal and unstable
// across weighting runs; FromOsmID/ToOsmID/WayID are stable.
type Edge struct {
	EdgeID     int32
	FromVertex int32
	ToVertex   int32
	FromOsmID  int64
	ToOsmID    int64
	WayID      int64
	Distance   float64 // meters
	Geometry   []byte  // polyline-encoded intermediate coordinates
}

// Network is a raw street network as produced by an external ingestion
// step. The caching layer treats it as read-only and never persists it.
type Network struct {
	Vertices []Vertex
	Edges    []Edge

	// hash is the cached content fingerprint, empty until computed.
	// Invalid after any weighting run (internal ids change).
	hash string
}

func NewNetwork(vertices []Vertex, edges []Edge) *Network {
	return &Network{Vertices: vertices, Edges: edges}
}

// CachedHash returns the memoized fingerprint, or "" if none was attached.
func (n *Network) CachedHash() string { return n.hash }

// SetCachedHash memoizes a computed fingerprint on the network.
func (n *Network) SetCachedHash(h string) { n.hash = h }

// EdgeWeight holds the mode-specific cost of one edge after weighting.
type EdgeWeight struct {
	EdgeID int32
	Weight float64 // weighted distance, meters
	Time   float64 // seconds
}

// WeightedNetwork is a network annotated with mode-specific edge weights.
// Hash is the fingerprint recomputed after weighting; any fingerprint of
// the input network is invalid here because the weighting step assigns new
// internal edge identifiers.
type WeightedNetwork struct {
	Network    Network
	Mode       Mode
	Weights    []EdgeWeight
	Contracted bool
	Hash       string
}

// VertexIndex maps each vertex of one mode's network to the nearest vertex
// of another mode's network by planar coordinates.
type VertexIndex struct {
	From    Mode
	To      Mode
	HashA   string // truncated fingerprint of the From network
	HashB   string // truncated fingerprint of the To network
	Nearest []int32
}

// EncodeGeometry packs intermediate edge coordinates into polyline bytes.
func EncodeGeometry(coords []Coordinate) []byte {
	if len(coords) == 0 {
		return nil
	}
	latLons := make([][]float64, len(coords))
	for i, c := range coords {
		latLons[i] = []float64{c.Lat, c.Lon}
	}
	return polyline.EncodeCoords(latLons)
}

// DecodeGeometry unpacks polyline bytes back into coordinates.
func DecodeGeometry(buf []byte) ([]Coordinate, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	latLons, _, err := polyline.DecodeCoords(buf)
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(latLons))
	for i, ll := range latLons {
		coords[i] = Coordinate{Lat: ll[0], Lon: ll[1]}
	}
	return coords, nil
}
