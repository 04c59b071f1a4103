package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decode(t *testing.T, doc string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	return v
}

const (
	squareRing = `[[0,0],[1,0],[1,1],[0,1],[0,0]]`
	validPoint = `{"type":"Point","coordinates":[25.35,-20.225]}`
)

func TestValidateGeometries(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		valid   bool
		message string
	}{
		{name: "point", doc: validPoint, valid: true},
		{name: "point with altitude", doc: `{"type":"Point","coordinates":[1,2,3]}`, valid: true},
		{name: "point string lat", doc: `{"type":"Point","coordinates":[25.35,"-20.225"]}`, message: "invalid coordinates for GeoJSON Point"},
		{name: "point short", doc: `{"type":"Point","coordinates":[1]}`, message: "invalid coordinates for GeoJSON Point"},
		{name: "point no coordinates", doc: `{"type":"Point"}`, message: "invalid GeoJSON type supplied"},
		{name: "point coordinates not an array", doc: `{"type":"Point","coordinates":"1,2"}`, message: "invalid GeoJSON type supplied"},
		{name: "multipoint", doc: `{"type":"MultiPoint","coordinates":[[1,2],[3,4]]}`, valid: true},
		{name: "multipoint single", doc: `{"type":"MultiPoint","coordinates":[[1,2]]}`, message: "expecting array with at least 2 elements for GeoJSON MultiPoint"},
		{name: "multipoint bad member", doc: `{"type":"MultiPoint","coordinates":[[1,2],["3",4]]}`, message: "one of the coordinates of the GeoJSON MultiPoint are invalid"},
		{name: "linestring", doc: `{"type":"LineString","coordinates":[[1,2],[3,4]]}`, valid: true},
		{name: "linestring single", doc: `{"type":"LineString","coordinates":[[1,2]]}`, message: "expecting array with at least 2 elements for GeoJSON LineString"},
		{name: "linestring bad member", doc: `{"type":"LineString","coordinates":[[1,2],[3]]}`, message: "one of the coordinates of the LineString are invalid"},
		{name: "multilinestring", doc: `{"type":"MultiLineString","coordinates":[[[1,2],[3,4]],[[5,6],[7,8]]]}`, valid: true},
		{name: "multilinestring single", doc: `{"type":"MultiLineString","coordinates":[[[1,2],[3,4]]]}`, message: "expecting array of multiple set of coordinates for GeoJSON MultiLineString"},
		{name: "multilinestring bad line", doc: `{"type":"MultiLineString","coordinates":[[[1,2],[3,4]],[[5,6],[7,"8"]]]}`, message: "one of the coordinates of the GeoJSON MultiLineString are invalid"},
		{name: "polygon", doc: `{"type":"Polygon","coordinates":[` + squareRing + `]}`, valid: true},
		{name: "polygon open", doc: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0.5]]]}`, message: "the first and last positions of GeoJSON LinearRing are not the same"},
		{name: "polygon short", doc: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}`, message: "expecting coordinates of GeoJSON object to have at least 4 positions"},
		{name: "polygon bad position", doc: `{"type":"Polygon","coordinates":[[[0,0],[1,"0"],[1,1],[0,0]]]}`, message: "one of the positions of the GeoJSON LinearRing is invalid"},
		{name: "multipolygon", doc: `{"type":"MultiPolygon","coordinates":[[` + squareRing + `],[` + squareRing + `]]}`, valid: true},
		{name: "multipolygon bad ring", doc: `{"type":"MultiPolygon","coordinates":[[` + squareRing + `],[[[0,0],[1,1]]]]}`, message: "one of the coordinates of the GeoJSON MultiPolygon are invalid"},
		{name: "unknown type", doc: `{"type":"Circle","coordinates":[1,2]}`, message: "invalid GeoJSON type supplied"},
		{name: "lowercase type", doc: `{"type":"point","coordinates":[1,2]}`, message: "invalid GeoJSON type supplied"},
		{name: "missing type", doc: `{"coordinates":[1,2]}`, message: "invalid GeoJSON type supplied"},
		{name: "not an object", doc: `[1,2]`, message: "invalid GeoJSON type supplied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(decode(t, tt.doc))
			assert.Equal(t, tt.valid, r.Valid)
			assert.Equal(t, tt.message, r.Message)
			assert.Equal(t, tt.valid, IsGeoJSON(decode(t, tt.doc)))
		})
	}
}

func TestValidateFeature(t *testing.T) {
	r := Validate(decode(t, `{"type":"Feature","id":"x","properties":{},"geometry":`+validPoint+`}`))
	assert.True(t, r.Valid)

	r = Validate(decode(t, `{"type":"Feature","properties":{}}`))
	assert.Equal(t, "expected GeoJSON Feature to have a geometry", r.Message)

	r = Validate(decode(t, `{"type":"Feature","properties":null,"geometry":`+validPoint+`}`))
	assert.Equal(t, "expected GeoJSON Feature to have properties", r.Message)

	r = Validate(decode(t, `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,"2"]}}`))
	assert.False(t, r.Valid)
	assert.Equal(t, "invalid coordinates for GeoJSON Point", r.Message)
}

func TestValidateFeatureCollection(t *testing.T) {
	good := `{"type":"Feature","properties":{},"geometry":` + validPoint + `}`
	badRing := `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}}`
	noProps := `{"type":"Feature","geometry":` + validPoint + `}`

	r := Validate(decode(t, `{"type":"FeatureCollection","features":[`+good+`,`+good+`]}`))
	assert.True(t, r.Valid)

	r = Validate(decode(t, `{"type":"FeatureCollection","features":[]}`))
	assert.True(t, r.Valid)

	for _, bad := range []string{badRing, noProps} {
		r = Validate(decode(t, `{"type":"FeatureCollection","features":[`+good+`,`+bad+`]}`))
		assert.False(t, r.Valid)
		assert.Equal(t, "one of the GeoJSON FeatureCollection's features is invalid", r.Message)
		assert.Contains(t, r.Detail, "features[1]: ")
	}

	r = Validate(decode(t, `{"type":"FeatureCollection"}`))
	assert.Equal(t, "expected GeoJSON FeatureCollection to have features", r.Message)

	r = Validate(decode(t, `{"type":"FeatureCollection","features":{}}`))
	assert.Equal(t, "expected GeoJSON FeatureCollection's features to be an array", r.Message)
}

func TestValidateGeometryCollection(t *testing.T) {
	r := Validate(decode(t, `{"type":"GeometryCollection","geometries":[`+validPoint+`,{"type":"LineString","coordinates":[[1,2],[3,4]]}]}`))
	assert.True(t, r.Valid)

	r = Validate(decode(t, `{"type":"GeometryCollection","geometries":[`+validPoint+`,{"type":"LineString","coordinates":[[1,2]]}]}`))
	assert.False(t, r.Valid)
	assert.Equal(t, "one of the GeoJSON GeometryCollection's geometries is invalid", r.Message)
	assert.Equal(t, "geometries[1]: expecting array with at least 2 elements for GeoJSON LineString", r.Detail)

	r = Validate(decode(t, `{"type":"GeometryCollection"}`))
	assert.Equal(t, "expected GeoJSON GeometryCollection to have geometries", r.Message)

	r = Validate(decode(t, `{"type":"GeometryCollection","geometries":"none"}`))
	assert.Equal(t, "expected GeoJSON GeometryCollection's geometries to be an array", r.Message)
}

func TestValidateTypedAndYAML(t *testing.T) {
	fc := NewFeatureCollection(NewFeature(GeoJSONGeometry{Type: "Point", Coordinates: []float64{1, 2}}, nil))
	assert.True(t, IsGeoJSON(fc))
	assert.True(t, IsGeoJSON(&fc))

	doc := `
type: Polygon
coordinates:
  - - [0, 0]
    - [1, 0]
    - [1, 1]
    - [0.0, 0.0]
`
	var v any
	require.NoError(t, yaml.Unmarshal([]byte(doc), &v))
	assert.True(t, IsGeoJSON(v))

	quoted := `{type: Point, coordinates: ["1", "2"]}`
	var q any
	require.NoError(t, yaml.Unmarshal([]byte(quoted), &q))
	assert.False(t, IsGeoJSON(q))
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(Result{Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "true", string(data))

	data, err = json.Marshal(Result{Message: "invalid GeoJSON type supplied"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":false,"message":"invalid GeoJSON type supplied"}`, string(data))

	var r Result
	require.NoError(t, json.Unmarshal([]byte("true"), &r))
	assert.True(t, r.Valid)

	require.NoError(t, json.Unmarshal([]byte(`{"valid":false,"message":"m","detail":"d"}`), &r))
	assert.Equal(t, Result{Message: "m", Detail: "d"}, r)
}

func TestKindParsing(t *testing.T) {
	k, ok := ParseKind("GeometryCollection")
	require.True(t, ok)
	assert.Equal(t, KindGeometryCollection, k)
	assert.False(t, k.IsGeometry())

	_, ok = ParseKind("polygon")
	assert.False(t, ok)

	k, ok = ParseKindFold("polygon")
	require.True(t, ok)
	assert.Equal(t, "Polygon", k.String())
	assert.True(t, k.IsGeometry())
	assert.Equal(t, "Unknown", Kind(42).String())
}
