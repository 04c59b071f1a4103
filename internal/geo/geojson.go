// Package geo converts between plain [lat, lng] coordinate arrays and GeoJSON
// geometries, validates GeoJSON objects, measures great-circle distance and
// complexifies lines.
package geo

import "strings"

// Kind enumerates the GeoJSON object types in their fixed lookup order.
type Kind int

const (
	KindPoint Kind = iota
	KindMultiPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindMultiPolygon
	KindFeature
	KindFeatureCollection
	KindGeometryCollection
)

var kindNames = [...]string{
	KindPoint:              "Point",
	KindMultiPoint:         "MultiPoint",
	KindLineString:         "LineString",
	KindMultiLineString:    "MultiLineString",
	KindPolygon:            "Polygon",
	KindMultiPolygon:       "MultiPolygon",
	KindFeature:            "Feature",
	KindFeatureCollection:  "FeatureCollection",
	KindGeometryCollection: "GeometryCollection",
}

// String returns the GeoJSON type tag for the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// IsGeometry reports whether the kind carries a coordinates member.
func (k Kind) IsGeometry() bool {
	return k >= KindPoint && k <= KindMultiPolygon
}

// ParseKind resolves an exact GeoJSON type tag.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// ParseKindFold resolves a type tag ignoring case ("linestring", "LINESTRING").
func ParseKindFold(s string) (Kind, bool) {
	for i, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(i), true
		}
	}
	return 0, false
}

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	ID         any                    `json:"id,omitempty" yaml:"id,omitempty"`
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Type       string                 `json:"type" yaml:"type"`
	Geometry   *GeoJSONGeometry       `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometryCollection groups several geometries under one object.
type GeoJSONGeometryCollection struct {
	Type       string            `json:"type" yaml:"type"`
	Geometries []GeoJSONGeometry `json:"geometries" yaml:"geometries"`
}

// GeoJSONGeometry represents a geometry (Point, Polygon, etc.).
// Coordinates are always stored in [Lon, Lat] order; the nesting depth
// depends on Type.
type GeoJSONGeometry struct {
	Type        string `json:"type" yaml:"type"`
	Coordinates any    `json:"coordinates" yaml:"coordinates"`
}

// NewFeature wraps a geometry into a Feature with the given properties.
func NewFeature(g GeoJSONGeometry, props map[string]interface{}) GeoJSONFeature {
	if props == nil {
		props = map[string]interface{}{}
	}
	return GeoJSONFeature{
		Type:       KindFeature.String(),
		Geometry:   &g,
		Properties: props,
	}
}

// NewFeatureCollection builds a FeatureCollection from features.
func NewFeatureCollection(features ...GeoJSONFeature) GeoJSONFeatureCollection {
	if features == nil {
		features = []GeoJSONFeature{}
	}
	return GeoJSONFeatureCollection{
		Type:     KindFeatureCollection.String(),
		Features: features,
	}
}
