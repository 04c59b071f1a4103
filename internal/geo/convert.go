package geo

import "strings"

// ToGeoJSON converts plain [lat, lng] coordinates into a GeoJSON geometry of
// the given kind. kind is matched case-insensitively and defaults to "point".
// Numeric strings are accepted. The input is never modified.
func ToGeoJSON(coords any, kind string) (GeoJSONGeometry, error) {
	if kind == "" {
		kind = KindPoint.String()
	}
	k, ok := ParseKindFold(kind)
	if !ok || !k.IsGeometry() {
		return GeoJSONGeometry{}, newError(ErrKindUnsupportedType, "type not recognised or supported")
	}

	var (
		out any
		err error
	)
	switch k {
	case KindPoint:
		out, err = pointToGeoJSON(coords)
	case KindMultiPoint, KindLineString:
		out, err = swapPairs(coords)
	case KindPolygon:
		out, err = polygonToGeoJSON(coords)
	case KindMultiLineString:
		out, err = multiLineToGeoJSON(coords)
	case KindMultiPolygon:
		out, err = multiPolygonToGeoJSON(coords)
	}
	if err != nil {
		return GeoJSONGeometry{}, err
	}

	return GeoJSONGeometry{Type: k.String(), Coordinates: out}, nil
}

func pointToGeoJSON(coords any) ([]float64, error) {
	flat := flatten(coords, nil)
	if len(flat) != 2 {
		return nil, newError(ErrKindInvalidCoordinates,
			"expected a single set of coordinates in [lat, lng] format, received %s", describe(coords))
	}
	return swapPair(flat)
}

// flatten collects the leaves of arbitrarily nested sequences.
func flatten(v any, acc []any) []any {
	s, ok := asSlice(v)
	if !ok {
		return append(acc, v)
	}
	for _, e := range s {
		acc = append(acc, flatten(e, nil)...)
	}
	return acc
}

// polygonToGeoJSON accepts a single ring or a sequence of rings.
func polygonToGeoJSON(coords any) ([][][]float64, error) {
	rings, ok := asSlice(coords)
	if !ok {
		return nil, newError(ErrKindInvalidCoordinates, "expected an array of coordinates, received %s", describe(coords))
	}
	if isSingleRing(rings) {
		rings = []any{coords}
	}

	out := make([][][]float64, 0, len(rings))
	for _, r := range rings {
		ring, err := closeRing(r, "expecting each ring of a Polygon to have at least 3 positions")
		if err != nil {
			return nil, err
		}
		out = append(out, ring)
	}
	return out, nil
}

// isSingleRing detects [[lat, lng], ...] as opposed to [[[lat, lng], ...], ...].
func isSingleRing(s []any) bool {
	if len(s) == 0 {
		return false
	}
	first, ok := asSlice(s[0])
	if !ok {
		return false
	}
	if len(first) == 0 {
		return true
	}
	_, nested := asSlice(first[0])
	return !nested
}

// closeRing swaps a ring of at least three positions and appends the first
// position when the ring is open.
func closeRing(v any, tooShort string) ([][]float64, error) {
	s, ok := asSlice(v)
	if !ok || len(s) < 3 {
		return nil, newError(ErrKindInvalidGeometry, "%s", tooShort)
	}
	ring, err := swapPairs(s)
	if err != nil {
		return nil, err
	}
	if !samePoint(ring[0], ring[len(ring)-1]) {
		closing := []float64{ring[0][0], ring[0][1]}
		ring = append(ring, closing)
	}
	return ring, nil
}

func multiLineToGeoJSON(coords any) ([][][]float64, error) {
	lines, ok := asSlice(coords)
	if !ok {
		return nil, newError(ErrKindInvalidCoordinates, "expected an array of coordinates, received %s", describe(coords))
	}

	out := make([][][]float64, 0, len(lines))
	for _, l := range lines {
		s, ok := asSlice(l)
		if !ok || len(s) < 2 {
			return nil, newError(ErrKindInvalidGeometry, "expecting each LineString in MultiLineString to have at least 2 points")
		}
		line, err := swapPairs(s)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func multiPolygonToGeoJSON(coords any) ([][][][]float64, error) {
	polygons, ok := asSlice(coords)
	if !ok {
		return nil, newError(ErrKindInvalidCoordinates, "expected an array of coordinates, received %s", describe(coords))
	}

	out := make([][][][]float64, 0, len(polygons))
	for _, p := range polygons {
		rings, ok := asSlice(p)
		if !ok {
			return nil, newError(ErrKindInvalidGeometry, "expecting each MultiPolygon member to be an array of rings")
		}
		polygon := make([][][]float64, 0, len(rings))
		for _, r := range rings {
			ring, err := closeRing(r, "expecting each array in MultiPolygon to have at least 3 points")
			if err != nil {
				return nil, err
			}
			polygon = append(polygon, ring)
		}
		out = append(out, polygon)
	}
	return out, nil
}

// ToArray converts a GeoJSON geometry back to plain [lat, lng] arrays.
//
// The result type depends on the geometry:
//
//	Point                       []float64
//	LineString, MultiPoint      [][]float64
//	Polygon                     [][]float64 (outer ring, closing point removed)
//	MultiLineString             [][][]float64
//	MultiPolygon                [][][]float64 (every ring of every polygon)
//
// Use PolygonRings to keep the holes of a Polygon.
func ToArray(obj any) (any, error) {
	m, ok := asObject(obj)
	if !ok {
		return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON object")
	}
	typ, _ := m["type"].(string)
	coords := m["coordinates"]
	if typ == "" || coords == nil {
		return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON object")
	}

	k, ok := ParseKindFold(typ)
	if !ok || !k.IsGeometry() {
		return nil, newError(ErrKindUnsupportedType, "unknown GeoJSON type specified")
	}

	switch k {
	case KindPoint:
		return swapPair(coords)
	case KindLineString:
		line, err := swapPairs(coords)
		if err != nil {
			return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON LineString")
		}
		return line, nil
	case KindMultiPoint:
		return swapPairs(coords)
	case KindPolygon:
		rings, err := openRings(coords)
		if err != nil {
			return nil, err
		}
		if len(rings) == 0 {
			return [][]float64{}, nil
		}
		return rings[0], nil
	case KindMultiLineString:
		return multiLineToArray(coords)
	case KindMultiPolygon:
		return multiPolygonToArray(coords)
	}

	return nil, newError(ErrKindUnsupportedType, "unknown GeoJSON type specified")
}

// PolygonRings returns every ring of a GeoJSON Polygon as [lat, lng] arrays,
// outer ring first, each without its closing point.
func PolygonRings(obj any) ([][][]float64, error) {
	m, ok := asObject(obj)
	if !ok {
		return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON object")
	}
	if typ, _ := m["type"].(string); !strings.EqualFold(typ, KindPolygon.String()) {
		return nil, newError(ErrKindUnsupportedType, "expected a GeoJSON Polygon, received %q", typ)
	}
	return openRings(m["coordinates"])
}

func openRings(coords any) ([][][]float64, error) {
	rings, ok := asSlice(coords)
	if !ok {
		return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON Polygon")
	}
	out := make([][][]float64, 0, len(rings))
	for _, r := range rings {
		ring, err := openRing(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ring)
	}
	return out, nil
}

// openRing checks closure and size, drops the closing position and swaps.
func openRing(v any) ([][]float64, error) {
	s, ok := asSlice(v)
	if !ok || len(s) == 0 {
		return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON Polygon")
	}
	if !deepEqual(s[0], s[len(s)-1]) {
		return nil, newError(ErrKindInvalidGeometry, "the first and last coordinates of the Polygon are not the same")
	}
	if len(s) < 4 {
		return nil, newError(ErrKindInvalidGeometry, "a valid Polygon should have a minimum set of 4 points")
	}
	return swapPairs(s[:len(s)-1])
}

func multiLineToArray(coords any) ([][][]float64, error) {
	lines, ok := asSlice(coords)
	if !ok {
		return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON MultiLineString")
	}
	out := make([][][]float64, 0, len(lines))
	for _, l := range lines {
		s, ok := asSlice(l)
		if !ok || len(s) == 0 {
			return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON MultiLineString")
		}
		line, err := swapPairs(s)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func multiPolygonToArray(coords any) ([][][]float64, error) {
	polygons, ok := asSlice(coords)
	if !ok {
		return nil, newError(ErrKindInvalidGeometry, "the object specified is not a valid GeoJSON MultiPolygon")
	}
	var out [][][]float64
	for _, p := range polygons {
		rings, err := openRings(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rings...)
	}
	if out == nil {
		out = [][][]float64{}
	}
	return out, nil
}
