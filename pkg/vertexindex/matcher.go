// Package vertexindex builds and caches the nearest-vertex correspondence
// between the contracted networks of every ordered pair of travel modes.
package vertexindex

import (
	"fmt"

	"github.com/dhconnelly/rtreego"

	"github.com/m4ra-routing/m4ra/pkg/datastructure"
)

// Matcher is the external nearest-vertex collaborator: for every query
// coordinate it returns the index of the nearest candidate coordinate.
type Matcher interface {
	Match(queries []datastructure.Coordinate, candidates []datastructure.Coordinate) ([]int32, error)
}

// RtreeMatcher answers nearest-vertex queries from a 2-d r-tree over the
// candidate set.
type RtreeMatcher struct{}

func NewRtreeMatcher() *RtreeMatcher { return &RtreeMatcher{} }

const rtreePointTol = 1e-9

type vertexLeaf struct {
	idx  int32
	rect *rtreego.Rect
}

func (l *vertexLeaf) Bounds() *rtreego.Rect { return l.rect }

func (m *RtreeMatcher) Match(queries []datastructure.Coordinate, candidates []datastructure.Coordinate) ([]int32, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("empty candidate vertex set")
	}

	tree := rtreego.NewTree(2, 25, 50)
	for i, c := range candidates {
		p := rtreego.Point{c.Lon, c.Lat}
		rect, err := rtreego.NewRect(p, []float64{rtreePointTol, rtreePointTol})
		if err != nil {
			return nil, fmt.Errorf("building r-tree leaf %d: %w", i, err)
		}
		tree.Insert(&vertexLeaf{idx: int32(i), rect: rect})
	}

	out := make([]int32, len(queries))
	for i, q := range queries {
		nn := tree.NearestNeighbor(rtreego.Point{q.Lon, q.Lat})
		if nn == nil {
			return nil, fmt.Errorf("no nearest vertex for query %d", i)
		}
		out[i] = nn.(*vertexLeaf).idx
	}
	return out, nil
}
