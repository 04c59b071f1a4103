package geo

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spacingTolerance covers the rounding of the convergence measurement.
const spacingTolerance = 1e-3

func requireSpacing(t *testing.T, points [][]float64, maxKm float64) {
	t.Helper()
	for i := 1; i < len(points); i++ {
		d := Distance([][]float64{points[i-1], points[i]}, 6)
		require.LessOrEqualf(t, d, maxKm+spacingTolerance, "segment %d is %v km", i, d)
	}
}

func TestComplexifyPlainArray(t *testing.T) {
	// 1.8 degrees along a meridian, a little over 200 km.
	line := [][]float64{{0, 0}, {1.8, 0}}
	original := [][]float64{{0, 0}, {1.8, 0}}

	out, err := Complexify(line, 50)
	require.NoError(t, err)

	points, ok := out.([][]float64)
	require.True(t, ok, "expected [][]float64, got %T", out)
	require.Len(t, points, 6)
	assert.Equal(t, []float64{0, 0}, points[0])
	assert.Equal(t, []float64{1.8, 0}, points[len(points)-1])
	requireSpacing(t, points, 50)

	for i := 1; i < 5; i++ {
		assert.InDelta(t, 50, Distance([][]float64{points[i-1], points[i]}, 3), 1e-9)
	}

	assert.Equal(t, original, line, "input must not be modified")
}

func TestComplexifyLongSegments(t *testing.T) {
	tests := []struct {
		name  string
		line  [][]float64
		maxKm float64
	}{
		{name: "parallel at 70N", line: [][]float64{{70, -30}, {70, 30}}, maxKm: 50},
		{name: "parallel at 60N", line: [][]float64{{60, 0}, {60, 20}}, maxKm: 50},
		{name: "long diagonal", line: [][]float64{{-10, 10}, {40, 80}}, maxKm: 50},
		{name: "long diagonal coarse", line: [][]float64{{-10, 10}, {40, 80}}, maxKm: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Complexify(tt.line, tt.maxKm)
			require.NoError(t, err)

			points := out.([][]float64)
			assert.Equal(t, tt.line[0], points[0])
			assert.Equal(t, tt.line[1], points[len(points)-1])
			requireSpacing(t, points, tt.maxKm)
		})
	}
}

func TestComplexifyLineString(t *testing.T) {
	line := GeoJSONGeometry{Type: "LineString", Coordinates: [][]float64{{0, 0}, {0, 1.8}, {0.1, 1.8}}}

	out, err := Complexify(line, 50)
	require.NoError(t, err)

	g, ok := out.(GeoJSONGeometry)
	require.True(t, ok, "expected GeoJSONGeometry, got %T", out)
	assert.Equal(t, "LineString", g.Type)

	coords := g.Coordinates.([][]float64)
	assert.Equal(t, []float64{0, 0}, coords[0])
	assert.Equal(t, []float64{0.1, 1.8}, coords[len(coords)-1])
	assert.True(t, IsGeoJSON(g))

	back, err := ToArray(g)
	require.NoError(t, err)
	requireSpacing(t, back.([][]float64), 50)
}

func TestComplexifyDecodedLineString(t *testing.T) {
	line := decode(t, `{"type":"linestring","coordinates":[[-2.935,43.263],[-2.5,43.5]]}`)

	out, err := Complexify(line, 5)
	require.NoError(t, err)

	g := out.(GeoJSONGeometry)
	coords := g.Coordinates.([][]float64)
	assert.Greater(t, len(coords), 2)
	assert.Equal(t, []float64{-2.935, 43.263}, coords[0])
	assert.Equal(t, []float64{-2.5, 43.5}, coords[len(coords)-1])
}

func TestComplexifyShortSegmentsUntouched(t *testing.T) {
	line := [][]float64{{43.263, -2.935}, {43.264, -2.934}, {43.265, -2.933}}

	out, err := ComplexifyPoints(line, 1)
	require.NoError(t, err)
	assert.Equal(t, line, out)

	out[0][0] = 0
	assert.Equal(t, 43.263, line[0][0], "output must not alias input")
}

func TestComplexifyJustOverThreshold(t *testing.T) {
	// About 55.7 km: one interpolated point, then the original end.
	out, err := ComplexifyPoints([][]float64{{0, 0}, {0.5, 0}}, 50)
	require.NoError(t, err)
	require.Len(t, out, 3)
	requireSpacing(t, out, 50)
}

func TestComplexifyDiagonal(t *testing.T) {
	out, err := ComplexifyPoints([][]float64{{51.5, -0.12}, {48.85, 2.35}}, 25)
	require.NoError(t, err)
	assert.Greater(t, len(out), 10)
	assert.Equal(t, []float64{48.85, 2.35}, out[len(out)-1])
	requireSpacing(t, out, 25)
}

func TestComplexifyDistanceTooSmall(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	out, err := Complexify([][]float64{{0, 0}, {1, 1}}, 0.001, WithLogger(logger))
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrDistanceTooSmall)
	assert.Contains(t, buf.String(), "Complexify rejected")
	assert.Contains(t, buf.String(), `"level":"error"`)

	_, err = ComplexifyPoints([][]float64{{0, 0}, {1, 1}}, 0)
	require.ErrorIs(t, err, ErrDistanceTooSmall)
}

func TestComplexifyUnsupportedInput(t *testing.T) {
	_, err := Complexify(GeoJSONGeometry{Type: "Point", Coordinates: []float64{1, 2}}, 10)
	require.ErrorIs(t, err, ErrUnsupportedLine)

	_, err = Complexify("line", 10)
	require.ErrorIs(t, err, ErrUnsupportedLine)

	_, err = ComplexifyPoints([][]float64{{0, 0}, {1}}, 10)
	require.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestComplexifyEmptyAndSingle(t *testing.T) {
	out, err := ComplexifyPoints(nil, 10)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = ComplexifyPoints([][]float64{{1, 2}}, 10)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}}, out)
}

func TestComplexifyIterationCap(t *testing.T) {
	// A single refinement step cannot converge; the call must still finish
	// and keep the endpoints.
	out, err := ComplexifyPoints([][]float64{{0, 0}, {1.8, 0}}, 50, WithMaxIterations(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, out[0])
	assert.Equal(t, []float64{1.8, 0}, out[len(out)-1])
}

func TestComplexifyOddTarget(t *testing.T) {
	// 0.0125 km cannot be hit at 3-decimal precision; the cap ends the search.
	out, err := ComplexifyPoints([][]float64{{0, 0}, {0.001, 0}}, 0.0125)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.001, 0}, out[len(out)-1])
	assert.Greater(t, len(out), 2)
}

func TestInterpolate(t *testing.T) {
	assert.Equal(t, []float64{0.5, -1}, interpolate([]float64{0, 0}, []float64{1, -2}, 0.5))
	assert.Equal(t, []float64{2, 2}, interpolate([]float64{4, 0}, []float64{0, 4}, 0.5))
}
