package ranking

import "math"

// SearchRadiiKm is the escalation ladder for location search. Rows carry
// city-level coordinates, so the ladder starts at 50 km.
var SearchRadiiKm = []int{50, 100, 200, 500}

const earthRadiusKm = 6371.0

// distanceKm is the great-circle distance between two points.
func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	phi1 := lat1 * rad
	phi2 := lat2 * rad
	dPhi := (lat2 - lat1) * rad
	dLambda := (lon2 - lon1) * rad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// withinRadius keeps the rows at most km kilometers from the point.
func withinRadius(rows []Row, lat, lon float64, km int) []Row {
	kept := rows[:0:0]
	for _, r := range rows {
		if distanceKm(lat, lon, r.Lat, r.Lon) <= float64(km) {
			kept = append(kept, r)
		}
	}
	return kept
}
