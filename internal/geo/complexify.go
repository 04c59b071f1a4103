package geo

import (
	"math"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// MinDistanceKm is the smallest spacing Complexify accepts (10 m).
	MinDistanceKm = 0.01

	// ConvergenceEpsilon is the relative tolerance between the measured and
	// requested spacing of an interpolated point. Spacing is measured at
	// DefaultDecimals precision, so the test is exact equality of the rounded
	// distance up to float noise.
	ConvergenceEpsilon = 1e-9

	// MaxIterations caps the ratio refinement for one interpolated point.
	// When reached, the closest candidate seen is used.
	MaxIterations = 64
)

// Option tunes Complexify.
type Option func(*complexifier)

// WithLogger reports rejected calls and non-converging refinements to l.
func WithLogger(l zerolog.Logger) Option {
	return func(c *complexifier) { c.log = l }
}

// WithTolerance overrides ConvergenceEpsilon.
func WithTolerance(eps float64) Option {
	return func(c *complexifier) {
		if eps > 0 {
			c.epsilon = eps
		}
	}
}

// WithMaxIterations overrides MaxIterations.
func WithMaxIterations(n int) Option {
	return func(c *complexifier) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

type complexifier struct {
	log     zerolog.Logger
	epsilon float64
	maxIter int
}

func newComplexifier(opts []Option) *complexifier {
	c := &complexifier{
		log:     zerolog.Nop(),
		epsilon: ConvergenceEpsilon,
		maxIter: MaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complexify inserts interpolated points into line so that no two consecutive
// points are more than maxDistanceKm apart. line is either a sequence of
// [lat, lng] points or a GeoJSON LineString; the result has the same shape
// ([][]float64 or GeoJSONGeometry). line is not modified.
func Complexify(line any, maxDistanceKm float64, opts ...Option) (any, error) {
	c := newComplexifier(opts)
	if err := c.checkDistance(maxDistanceKm); err != nil {
		return nil, err
	}

	points, asGeoJSON, err := c.readLine(line)
	if err != nil {
		return nil, err
	}

	out := c.complexify(points, maxDistanceKm)
	if asGeoJSON {
		return ToGeoJSON(out, KindLineString.String())
	}
	return out, nil
}

// ComplexifyPoints is Complexify for a typed sequence of [lat, lng] points.
func ComplexifyPoints(points [][]float64, maxDistanceKm float64, opts ...Option) ([][]float64, error) {
	c := newComplexifier(opts)
	if err := c.checkDistance(maxDistanceKm); err != nil {
		return nil, err
	}
	for i, p := range points {
		if len(p) < 2 {
			return nil, newError(ErrKindInvalidCoordinates, "point %d: expected [lat, lng], received %v", i, p)
		}
	}
	return c.complexify(points, maxDistanceKm), nil
}

func (c *complexifier) checkDistance(maxDistanceKm float64) error {
	if math.IsNaN(maxDistanceKm) || math.IsInf(maxDistanceKm, 0) || maxDistanceKm < MinDistanceKm {
		err := newError(ErrKindDistanceTooSmall, "distance should be a number greater than 10 meters, received %v km", maxDistanceKm)
		c.log.Error().Err(err).Float64("max_distance_km", maxDistanceKm).Msg("Complexify rejected")
		return err
	}
	return nil
}

// readLine detects a plain point sequence or a GeoJSON LineString.
func (c *complexifier) readLine(line any) ([][]float64, bool, error) {
	if _, ok := asSlice(line); ok {
		points, err := toPoints(line)
		if err != nil {
			c.log.Error().Err(err).Msg("Complexify rejected")
			return nil, false, err
		}
		return points, false, nil
	}

	if m, ok := asObject(line); ok {
		typ, _ := m["type"].(string)
		if _, isSlice := asSlice(m["coordinates"]); isSlice && strings.EqualFold(typ, KindLineString.String()) {
			arr, err := ToArray(m)
			if err != nil {
				c.log.Error().Err(err).Msg("Complexify rejected")
				return nil, true, err
			}
			return arr.([][]float64), true, nil
		}
	}

	err := newError(ErrKindUnsupportedLine, "expected a GeoJSON LineString or an array of [lat, lng] coordinates")
	c.log.Error().Err(err).Msg("Complexify rejected")
	return nil, false, err
}

func (c *complexifier) complexify(points [][]float64, maxKm float64) [][]float64 {
	result := make([][]float64, 0, len(points))
	if len(points) == 0 {
		return result
	}

	result = append(result, []float64{points[0][0], points[0][1]})
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if d := Distance([][]float64{cur, prev}, DefaultDecimals); d > maxKm {
			result = c.fill(result, cur, d, maxKm)
		}
		result = append(result, []float64{cur[0], cur[1]})
	}
	return result
}

// fill appends interpolated points between the last point of result and cur,
// each maxKm after the previous one, until the rest of the segment is no
// longer than maxKm. The step count is capped by the per-axis path length,
// which bounds the interpolated path from above.
func (c *complexifier) fill(result [][]float64, cur []float64, d, maxKm float64) [][]float64 {
	start := result[len(result)-1]
	span := math.Abs(cur[0]-start[0]) + math.Abs(cur[1]-start[1])
	maxSteps := int(math.Ceil(EarthRadiusKm*DegreesToRadians(span)/maxKm))*2 + 4

	ratio := maxKm / d
	for step := 0; step < maxSteps; step++ {
		anchor := result[len(result)-1]
		next := c.seek(anchor, cur, &ratio, maxKm)
		if next[0] == anchor[0] && next[1] == anchor[1] {
			break
		}
		result = append(result, next)
		if Distance([][]float64{next, cur}, DefaultDecimals) <= maxKm {
			return result
		}
	}

	c.log.Warn().
		Floats64("from", start).
		Floats64("to", cur).
		Int("steps", maxSteps).
		Msg("Segment fill stopped before reaching target")
	return result
}

// seek refines ratio until the point at ratio along anchor→target lies
// maxKm from anchor. ratio carries over between calls for the same segment.
func (c *complexifier) seek(anchor, target []float64, ratio *float64, maxKm float64) []float64 {
	var best []float64
	bestDiff := math.Inf(1)

	for i := 0; i < c.maxIter; i++ {
		candidate := interpolate(anchor, target, *ratio)
		measured := Distance([][]float64{anchor, candidate}, DefaultDecimals)
		diff := math.Abs(measured - maxKm)
		if diff < bestDiff {
			best, bestDiff = candidate, diff
		}
		if diff <= c.epsilon*maxKm {
			return candidate
		}

		*ratio *= 2 - measured/maxKm
		if *ratio <= 0 || math.IsNaN(*ratio) {
			*ratio = 0.5
		}
	}

	c.log.Debug().
		Floats64("anchor", anchor).
		Floats64("target", target).
		Float64("off_by_km", bestDiff).
		Int("iterations", c.maxIter).
		Msg("Interpolation did not converge, using closest candidate")

	return best
}

// interpolate moves ratio of the per-axis displacement from a towards b,
// oriented by the bearing sign of each axis.
func interpolate(a, b []float64, ratio float64) []float64 {
	out := make([]float64, 2)
	for axis := 0; axis < 2; axis++ {
		bearing := 1.0
		if a[axis] > b[axis] {
			bearing = -1
		}
		out[axis] = a[axis] + bearing*math.Abs(b[axis]-a[axis])*ratio
	}
	return out
}
