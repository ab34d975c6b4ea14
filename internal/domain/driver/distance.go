package driver

import (
	"math"
	"sort"
)

const earthRadiusKM = 6371

// DistanceKM returns the great-circle (haversine) distance to other
func (l Location) DistanceKM(other Location) float64 {
	dLat := toRadians(other.Latitude - l.Latitude)
	dLon := toRadians(other.Longitude - l.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(l.Latitude))*math.Cos(toRadians(other.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// SortByDistance orders records nearest first from origin, in place.
// Display only; snapshots themselves carry no order.
func SortByDistance(records []*Record, origin Location) {
	sort.SliceStable(records, func(i, j int) bool {
		return origin.DistanceKM(records[i].Location) < origin.DistanceKM(records[j].Location)
	})
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
