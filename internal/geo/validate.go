package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const msgInvalidType = "invalid GeoJSON type supplied"

// Result is the outcome of Validate. Message holds the first failure reason.
// For collections Message stays the collection-level reason and Detail
// carries the nested one, prefixed with the member path.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// MarshalJSON encodes a valid result as the bare value true and an invalid
// one as {"valid":false,"message":...}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Valid {
		return []byte("true"), nil
	}
	type plain Result
	return json.Marshal(plain(r))
}

// MarshalYAML mirrors MarshalJSON.
func (r Result) MarshalYAML() (any, error) {
	if r.Valid {
		return true, nil
	}
	return struct {
		Valid   bool   `yaml:"valid"`
		Message string `yaml:"message,omitempty"`
		Detail  string `yaml:"detail,omitempty"`
	}{r.Valid, r.Message, r.Detail}, nil
}

// UnmarshalJSON accepts both shapes produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*r = Result{Valid: true}
		return nil
	case "false":
		*r = Result{}
		return nil
	}
	type plain Result
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Result(p)
	return nil
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(msg string) Result {
	return Result{Message: msg}
}

// IsGeoJSON reports whether obj is a structurally valid GeoJSON object.
func IsGeoJSON(obj any) bool {
	return Validate(obj).Valid
}

// Validate checks obj against the GeoJSON structure of its declared type and
// returns the first reason it fails. Coordinates must be true numbers;
// numeric strings are rejected. Feature ids are never checked.
func Validate(obj any) Result {
	m, ok := asObject(obj)
	if !ok {
		return invalid(msgInvalidType)
	}
	typ, _ := m["type"].(string)
	kind, ok := ParseKind(typ)
	if !ok {
		return invalid(msgInvalidType)
	}

	switch kind {
	case KindPoint, KindMultiPoint, KindLineString, KindMultiLineString, KindPolygon, KindMultiPolygon:
		coords, ok := asSlice(m["coordinates"])
		if !ok {
			return invalid(msgInvalidType)
		}
		return validateCoordinates(kind, coords)
	case KindFeature:
		return validateFeature(m)
	case KindFeatureCollection:
		return validateMembers(m, "features", "FeatureCollection")
	case KindGeometryCollection:
		return validateMembers(m, "geometries", "GeometryCollection")
	}

	return invalid(msgInvalidType)
}

func validateCoordinates(kind Kind, coords []any) Result {
	switch kind {
	case KindPoint:
		if !IsPosition(coords) {
			return invalid("invalid coordinates for GeoJSON Point")
		}
	case KindMultiPoint:
		if len(coords) < 2 {
			return invalid("expecting array with at least 2 elements for GeoJSON MultiPoint")
		}
		for _, p := range coords {
			if !IsPosition(p) {
				return invalid("one of the coordinates of the GeoJSON MultiPoint are invalid")
			}
		}
	case KindLineString:
		if len(coords) < 2 {
			return invalid("expecting array with at least 2 elements for GeoJSON LineString")
		}
		if !IsLineStringCoords(coords) {
			return invalid("one of the coordinates of the LineString are invalid")
		}
	case KindMultiLineString:
		if len(coords) < 2 {
			return invalid("expecting array of multiple set of coordinates for GeoJSON MultiLineString")
		}
		for i, line := range coords {
			s, ok := asSlice(line)
			if !ok || len(s) < 2 || !IsLineStringCoords(s) {
				r := invalid("one of the coordinates of the GeoJSON MultiLineString are invalid")
				r.Detail = fmt.Sprintf("coordinates[%d]: expecting a LineString of at least 2 valid positions", i)
				return r
			}
		}
	case KindPolygon:
		for i, ring := range coords {
			if problem := linearRingProblem(ring); problem != "" {
				r := invalid(problem)
				r.Detail = fmt.Sprintf("coordinates[%d]", i)
				return r
			}
		}
	case KindMultiPolygon:
		for i, polygon := range coords {
			rings, ok := asSlice(polygon)
			if !ok {
				r := invalid("one of the coordinates of the GeoJSON MultiPolygon are invalid")
				r.Detail = fmt.Sprintf("coordinates[%d]: expecting an array of linear rings", i)
				return r
			}
			for j, ring := range rings {
				if problem := linearRingProblem(ring); problem != "" {
					r := invalid("one of the coordinates of the GeoJSON MultiPolygon are invalid")
					r.Detail = fmt.Sprintf("coordinates[%d][%d]: %s", i, j, problem)
					return r
				}
			}
		}
	default:
		return invalid(msgInvalidType)
	}

	return valid()
}

func validateFeature(m map[string]any) Result {
	if m["geometry"] == nil {
		return invalid("expected GeoJSON Feature to have a geometry")
	}
	if m["properties"] == nil {
		return invalid("expected GeoJSON Feature to have properties")
	}
	return Validate(m["geometry"])
}

// validateMembers checks the member array of a FeatureCollection or
// GeometryCollection. The nested reason is kept out of Message.
func validateMembers(m map[string]any, member, typeName string) Result {
	raw, present := m[member]
	if !present || raw == nil {
		return invalid(fmt.Sprintf("expected GeoJSON %s to have %s", typeName, member))
	}
	items, ok := asSlice(raw)
	if !ok {
		return invalid(fmt.Sprintf("expected GeoJSON %s's %s to be an array", typeName, member))
	}

	for i, item := range items {
		nested := Validate(item)
		if nested.Valid {
			continue
		}
		detail := nested.Message
		if nested.Detail != "" {
			detail += " (" + nested.Detail + ")"
		}
		r := invalid(fmt.Sprintf("one of the GeoJSON %s's %s is invalid", typeName, member))
		r.Detail = fmt.Sprintf("%s[%d]: %s", member, i, detail)
		return r
	}

	return valid()
}
