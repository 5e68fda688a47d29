package geo

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	// Solo balapan station -> UNS, roughly 4.8 km
	d := CalculateHaversineDistance(-7.556702, 110.821985, -7.559635, 110.856429)
	if d < 3.0 || d > 5.0 {
		t.Errorf("expected distance around 3.8 km, got %f", d)
	}
}

func TestDistanceMAgreesWithHaversine(t *testing.T) {
	km := CalculateHaversineDistance(-7.556702, 110.821985, -7.559635, 110.856429)
	m := DistanceM(-7.556702, 110.821985, -7.559635, 110.856429)
	if math.Abs(km*1000-m) > 50 {
		t.Errorf("s2 and haversine disagree: %f km vs %f m", km, m)
	}
}
