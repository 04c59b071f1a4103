package geo

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGeoJSONPoint(t *testing.T) {
	tests := []struct {
		name  string
		input any
		kind  string
	}{
		{name: "floats", input: []float64{-20.225, 25.35}},
		{name: "strings", input: []string{"-20.225", "25.35"}},
		{name: "nested", input: []any{[]any{-20.225, 25.35}}, kind: "POINT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ToGeoJSON(tt.input, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, "Point", g.Type)
			assert.Equal(t, []float64{25.35, -20.225}, g.Coordinates)
		})
	}
}

func TestToGeoJSONPointInvalid(t *testing.T) {
	_, err := ToGeoJSON(map[string]any{"not": "valid"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
	assert.Contains(t, err.Error(), "expected a single set of coordinates in [lat, lng] format")

	_, err = ToGeoJSON([]float64{1, 2, 3}, "point")
	require.Error(t, err)

	_, err = ToGeoJSON([]string{"north", "east"}, "point")
	require.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestToGeoJSONUnknownKind(t *testing.T) {
	_, err := ToGeoJSON([]float64{1, 2}, "circle")
	require.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, "type not recognised or supported", err.Error())

	_, err = ToGeoJSON([]float64{1, 2}, "feature")
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestToGeoJSONLineStringAndMultiPoint(t *testing.T) {
	in := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	want := [][]float64{{2, 1}, {4, 3}, {6, 5}}

	line, err := ToGeoJSON(in, "linestring")
	require.NoError(t, err)
	assert.Equal(t, "LineString", line.Type)
	assert.Equal(t, want, line.Coordinates)

	mp, err := ToGeoJSON(in, "MultiPoint")
	require.NoError(t, err)
	assert.Equal(t, "MultiPoint", mp.Type)
	assert.Equal(t, want, mp.Coordinates)

	_, err = ToGeoJSON([]any{[]any{1.0, 2.0}, 7.0}, "linestring")
	require.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestToGeoJSONPolygonClosesRing(t *testing.T) {
	ring := [][]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	original := [][]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

	g, err := ToGeoJSON(ring, "polygon")
	require.NoError(t, err)
	assert.Equal(t, "Polygon", g.Type)
	assert.Equal(t, [][][]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}, g.Coordinates)
	assert.Equal(t, original, ring, "input ring must not be modified")

	closed := [][]float64{{0, 0}, {0, 1}, {1, 1}, {0, 0}}
	g, err = ToGeoJSON(closed, "polygon")
	require.NoError(t, err)
	assert.Len(t, g.Coordinates.([][][]float64)[0], 4)
}

func TestToGeoJSONPolygonNestedAndShort(t *testing.T) {
	rings := [][][]float64{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}},
		{{2, 2}, {2, 3}, {3, 3}},
	}
	g, err := ToGeoJSON(rings, "polygon")
	require.NoError(t, err)
	coords := g.Coordinates.([][][]float64)
	require.Len(t, coords, 2)
	assert.Len(t, coords[1], 4)

	_, err = ToGeoJSON([][]float64{{0, 0}, {1, 1}}, "polygon")
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestToGeoJSONMultiLineString(t *testing.T) {
	g, err := ToGeoJSON([][][]float64{{{1, 2}, {3, 4}}, {{5, 6}, {7, 8}}}, "multilinestring")
	require.NoError(t, err)
	assert.Equal(t, "MultiLineString", g.Type)
	assert.Equal(t, [][][]float64{{{2, 1}, {4, 3}}, {{6, 5}, {8, 7}}}, g.Coordinates)

	_, err = ToGeoJSON([][][]float64{{{1, 2}}}, "multilinestring")
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestToGeoJSONMultiPolygon(t *testing.T) {
	in := [][][][]float64{
		{{{0, 0}, {0, 1}, {1, 1}}},
		{{{5, 5}, {5, 6}, {6, 6}, {5, 5}}},
	}
	g, err := ToGeoJSON(in, "multipolygon")
	require.NoError(t, err)
	coords := g.Coordinates.([][][][]float64)
	require.Len(t, coords, 2)
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, coords[0][0])
	assert.Len(t, coords[1][0], 4)

	_, err = ToGeoJSON([][][][]float64{{{{0, 0}, {1, 1}}}}, "multipolygon")
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestToArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{
			name: "point",
			in:   `{"type":"Point","coordinates":[25.35,-20.225]}`,
			want: []float64{-20.225, 25.35},
		},
		{
			name: "linestring",
			in:   `{"type":"LineString","coordinates":[[2,1],[4,3]]}`,
			want: [][]float64{{1, 2}, {3, 4}},
		},
		{
			name: "multipoint",
			in:   `{"type":"MultiPoint","coordinates":[[2,1],[4,3]]}`,
			want: [][]float64{{1, 2}, {3, 4}},
		},
		{
			name: "polygon outer ring",
			in:   `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]],[[0.2,0.2],[0.3,0.2],[0.3,0.3],[0.2,0.2]]]}`,
			want: [][]float64{{0, 0}, {0, 1}, {1, 1}},
		},
		{
			name: "multilinestring",
			in:   `{"type":"MultiLineString","coordinates":[[[2,1],[4,3]],[[6,5],[8,7]]]}`,
			want: [][][]float64{{{1, 2}, {3, 4}}, {{5, 6}, {7, 8}}},
		},
		{
			name: "multipolygon flattened",
			in:   `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]],[[[5,5],[6,5],[6,6],[5,5]]]]}`,
			want: [][][]float64{{{0, 0}, {0, 1}, {1, 1}}, {{5, 5}, {5, 6}, {6, 6}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj any
			require.NoError(t, json.Unmarshal([]byte(tt.in), &obj))

			got, err := ToArray(obj)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToArrayErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind *Error
		msg  string
	}{
		{name: "missing coordinates", in: `{"type":"Point"}`, kind: ErrInvalidGeometry, msg: "not a valid GeoJSON object"},
		{name: "missing type", in: `{"coordinates":[1,2]}`, kind: ErrInvalidGeometry, msg: "not a valid GeoJSON object"},
		{name: "unknown type", in: `{"type":"Circle","coordinates":[1,2]}`, kind: ErrUnsupportedType, msg: "unknown GeoJSON type specified"},
		{name: "bad linestring", in: `{"type":"LineString","coordinates":[[1,2],3]}`, kind: ErrInvalidGeometry, msg: "not a valid GeoJSON LineString"},
		{name: "open polygon", in: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}`, kind: ErrInvalidGeometry, msg: "first and last coordinates"},
		{name: "short polygon", in: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}`, kind: ErrInvalidGeometry, msg: "minimum set of 4 points"},
		{name: "empty line", in: `{"type":"MultiLineString","coordinates":[[]]}`, kind: ErrInvalidGeometry, msg: "MultiLineString"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj any
			require.NoError(t, json.Unmarshal([]byte(tt.in), &obj))

			_, err := ToArray(obj)
			require.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestToArrayTypedGeometry(t *testing.T) {
	g := GeoJSONGeometry{Type: "LineString", Coordinates: [][]float64{{10, 50}, {11, 51}}}
	got, err := ToArray(&g)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{50, 10}, {51, 11}}, got)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		kind string
		in   any
	}{
		{kind: "point", in: []float64{43.263, -2.935}},
		{kind: "linestring", in: [][]float64{{43.263, -2.935}, {43.264, -2.934}, {43.3, -2.9}}},
		{kind: "polygon", in: [][]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}},
		{kind: "multipoint", in: [][]float64{{1, 2}, {3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			g, err := ToGeoJSON(tt.in, tt.kind)
			require.NoError(t, err)
			back, err := ToArray(g)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestPolygonRings(t *testing.T) {
	g, err := ToGeoJSON([][][]float64{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}},
		{{2, 2}, {2, 3}, {3, 3}},
	}, "polygon")
	require.NoError(t, err)

	rings, err := PolygonRings(g)
	require.NoError(t, err)
	require.Len(t, rings, 2)
	assert.Equal(t, [][]float64{{2, 2}, {2, 3}, {3, 3}}, rings[1])

	_, err = PolygonRings(GeoJSONGeometry{Type: "Point", Coordinates: []float64{1, 2}})
	require.ErrorIs(t, err, ErrUnsupportedType)
}
