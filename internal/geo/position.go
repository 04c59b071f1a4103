package geo

// IsPosition reports whether v holds at least two elements and the first two
// are true numbers. ["1", "2"] is not a position.
func IsPosition(v any) bool {
	s, ok := asSlice(v)
	if !ok || len(s) < 2 {
		return false
	}
	_, latOK := asNumber(s[0])
	_, lngOK := asNumber(s[1])
	return latOK && lngOK
}

// IsLinearRing reports whether v is a closed ring of at least four positions.
func IsLinearRing(v any) bool {
	return linearRingProblem(v) == ""
}

// IsLineStringCoords reports whether every element of v is a position.
func IsLineStringCoords(v any) bool {
	s, ok := asSlice(v)
	if !ok {
		return false
	}
	for _, p := range s {
		if !IsPosition(p) {
			return false
		}
	}
	return true
}

// linearRingProblem returns the first reason v is not a linear ring, or "".
func linearRingProblem(v any) string {
	s, ok := asSlice(v)
	if !ok || len(s) < 4 {
		return "expecting coordinates of GeoJSON object to have at least 4 positions"
	}
	if !deepEqual(s[0], s[len(s)-1]) {
		return "the first and last positions of GeoJSON LinearRing are not the same"
	}
	for _, p := range s {
		if !IsPosition(p) {
			return "one of the positions of the GeoJSON LinearRing is invalid"
		}
	}
	return ""
}
