package processor

import (
	"fmt"

	"github.com/woozymasta/geojsontools/internal/geo"
)

// record keys consumed by the conversion; everything else becomes a property.
var recordKeys = map[string]bool{"coordinates": true, "lat": true, "lng": true, "kind": true}

// arrayToFeatures converts an array source into a FeatureCollection. data is
// either one coordinate array in [lat, lng] order converted with kind, or a
// list of records such as
//
//	{"name": "Berezino", "lat": 12.4, "lng": 3.1}
//	{"name": "Road", "kind": "linestring", "coordinates": [[1, 2], [3, 4]]}
//
// where every record yields one feature and its other keys its properties.
func arrayToFeatures(data any, kind string) (geo.GeoJSONFeatureCollection, error) {
	items, ok := data.([]any)
	if !ok {
		return geo.GeoJSONFeatureCollection{}, fmt.Errorf("expected an array, received %T", data)
	}

	if len(items) == 0 || !isRecord(items[0]) {
		g, err := geo.ToGeoJSON(data, kind)
		if err != nil {
			return geo.GeoJSONFeatureCollection{}, err
		}
		return geo.NewFeatureCollection(geo.NewFeature(g, map[string]interface{}{})), nil
	}

	features := make([]geo.GeoJSONFeature, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return geo.GeoJSONFeatureCollection{}, fmt.Errorf("record %d: expected an object, received %T", i, item)
		}

		g, err := recordGeometry(rec, kind)
		if err != nil {
			return geo.GeoJSONFeatureCollection{}, fmt.Errorf("record %d: %w", i, err)
		}

		props := make(map[string]interface{}, len(rec))
		for k, v := range rec {
			if !recordKeys[k] {
				props[k] = v
			}
		}
		features = append(features, geo.NewFeature(g, props))
	}

	return geo.NewFeatureCollection(features...), nil
}

func isRecord(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func recordGeometry(rec map[string]any, kind string) (geo.GeoJSONGeometry, error) {
	if k, ok := rec["kind"].(string); ok && k != "" {
		kind = k
	}

	if coords, ok := rec["coordinates"]; ok {
		return geo.ToGeoJSON(coords, kind)
	}

	lat, hasLat := rec["lat"]
	lng, hasLng := rec["lng"]
	if !hasLat || !hasLng {
		return geo.GeoJSONGeometry{}, fmt.Errorf("expected coordinates or lat and lng")
	}
	return geo.ToGeoJSON([]any{lat, lng}, geo.KindPoint.String())
}
