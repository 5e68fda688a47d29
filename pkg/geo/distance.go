package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = 6371007
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// CalculateHaversineDistance returns the great-circle distance in kilometers.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// DistanceM returns the distance between two coordinates in meters, using
// the s2 angle between the points.
func DistanceM(latOne, longOne, latTwo, longTwo float64) float64 {
	p1 := s2.LatLngFromDegrees(latOne, longOne)
	p2 := s2.LatLngFromDegrees(latTwo, longTwo)
	return p1.Distance(p2).Radians() * earthRadiusM
}
