package datastructure

import (
	"math"
	"testing"
)

func TestGeometryRoundtrip(t *testing.T) {
	coords := []Coordinate{
		{-7.565837, 110.831586},
		{-7.566063, 110.832379},
		{-7.566406, 110.833232},
	}

	buf := EncodeGeometry(coords)
	got, err := DecodeGeometry(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(coords) {
		t.Fatalf("expected %d coords, got %d", len(coords), len(got))
	}
	for i := range coords {
		if math.Abs(got[i].Lat-coords[i].Lat) > 1e-5 || math.Abs(got[i].Lon-coords[i].Lon) > 1e-5 {
			t.Errorf("coord %d: expected %v, got %v", i, coords[i], got[i])
		}
	}
}

func TestModePairs(t *testing.T) {
	pairs := ModePairs()
	if len(pairs) != 6 {
		t.Fatalf("expected 6 ordered pairs, got %d", len(pairs))
	}
	seen := map[[2]Mode]bool{}
	for _, p := range pairs {
		if p[0] == p[1] {
			t.Errorf("pair with identical modes: %v", p)
		}
		if seen[p] {
			t.Errorf("duplicate pair: %v", p)
		}
		seen[p] = true
	}
	// both directions of every pair must be present
	if !seen[[2]Mode{ModeFoot, ModeMotorcar}] || !seen[[2]Mode{ModeMotorcar, ModeFoot}] {
		t.Error("missing directional pair between foot and motorcar")
	}
}
