package geo

import "fmt"

// Geometries returns the geometries contained in a valid GeoJSON object in
// document order: the object itself for a geometry, the geometry of a
// Feature, and the members of collections, recursively.
func Geometries(obj any) ([]GeoJSONGeometry, error) {
	if r := Validate(obj); !r.Valid {
		if r.Detail != "" {
			return nil, newError(ErrKindInvalidGeometry, "%s: %s", r.Message, r.Detail)
		}
		return nil, newError(ErrKindInvalidGeometry, "%s", r.Message)
	}

	var out []GeoJSONGeometry
	if err := collect(obj, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func collect(obj any, out *[]GeoJSONGeometry) error {
	m, _ := asObject(obj)
	typ, _ := m["type"].(string)
	kind, _ := ParseKind(typ)

	switch kind {
	case KindFeature:
		return collect(m["geometry"], out)
	case KindFeatureCollection, KindGeometryCollection:
		member := "features"
		if kind == KindGeometryCollection {
			member = "geometries"
		}
		items, _ := asSlice(m[member])
		for _, item := range items {
			if err := collect(item, out); err != nil {
				return err
			}
		}
		return nil
	case KindPoint, KindMultiPoint, KindLineString, KindMultiLineString, KindPolygon, KindMultiPolygon:
		*out = append(*out, GeoJSONGeometry{Type: typ, Coordinates: m["coordinates"]})
		return nil
	}

	return fmt.Errorf("unexpected GeoJSON type %q", typ)
}
