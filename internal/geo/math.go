package geo

import "math"

const (
	// EarthRadiusKm is the equatorial WGS84 radius used by Distance.
	EarthRadiusKm = 6378.137

	// DefaultDecimals is the rounding applied when Distance gets decimals <= 0.
	DefaultDecimals = 3

	// MaxDecimals caps the rounding precision; float64 carries no more.
	MaxDecimals = 15
)

// DegreesToRadians converts degrees to radians.
func DegreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

// Distance returns the great-circle length in kilometres of the polyline
// through points, each given as [lat, lng]. Consecutive pairs are measured
// with the haversine formula and the sum is rounded half-up to decimals
// places, at most MaxDecimals. Fewer than two points yield 0.
func Distance(points [][]float64, decimals int) float64 {
	if decimals <= 0 {
		decimals = DefaultDecimals
	}

	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += haversine(points[i], points[i+1])
	}

	return roundHalfUp(total, decimals)
}

// DistanceOf is Distance over loosely typed input; numeric strings are
// accepted the same way the converter accepts them.
func DistanceOf(points any, decimals int) (float64, error) {
	pts, err := toPoints(points)
	if err != nil {
		return 0, err
	}
	return Distance(pts, decimals), nil
}

func haversine(a, b []float64) float64 {
	lat1, lon1 := a[0], a[1]
	lat2, lon2 := b[0], b[1]

	dLat := DegreesToRadians(lat2 - lat1)
	dLon := DegreesToRadians(lon2 - lon1)
	rLat1 := DegreesToRadians(lat1)
	rLat2 := DegreesToRadians(lat2)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(rLat1)*math.Cos(rLat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// roundHalfUp scales, rounds towards +Inf on .5 and unscales.
func roundHalfUp(v float64, decimals int) float64 {
	decimals = min(decimals, MaxDecimals)
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale+0.5) / scale
}
