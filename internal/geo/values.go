package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Decoded GeoJSON reaches this package as []any / map[string]any from
// encoding/json or yaml.v3, as typed Go slices, or as the structs in
// geojson.go. The helpers below give every caller one view of those shapes.

// asSlice returns the elements of any slice or array value.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil, string:
		return nil, false
	case []any:
		return s, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asNumber reports whether v is a true finite number. Numeric strings are not.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, false
		}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceFloat accepts numbers and numeric strings.
func coerceFloat(v any) (float64, error) {
	if f, ok := asNumber(v); ok {
		return f, nil
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, newError(ErrKindInvalidCoordinates, "invalid coordinate value %s", describe(v))
}

// asObject returns a GeoJSON-like object as a generic map. Typed values are
// normalised through encoding/json with UseNumber so numbers stay numbers.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return m, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, false
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// deepEqual compares two decoded values, treating numbers of different Go
// types as equal when their values are equal (yaml may yield int and float
// for the same coordinate).
func deepEqual(a, b any) bool {
	an, aNum := asNumber(a)
	bn, bNum := asNumber(b)
	if aNum || bNum {
		return aNum && bNum && an == bn
	}

	as, aok := asSlice(a)
	bs, bok := asSlice(b)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !deepEqual(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// swapPair reads a two-element position and returns it with its axes swapped.
// The same swap maps [lat, lng] to [lng, lat] and back.
func swapPair(v any) ([]float64, error) {
	s, ok := asSlice(v)
	if !ok || len(s) < 2 {
		return nil, newError(ErrKindInvalidCoordinates, "expected a coordinate pair, received %s", describe(v))
	}
	first, err := coerceFloat(s[0])
	if err != nil {
		return nil, err
	}
	second, err := coerceFloat(s[1])
	if err != nil {
		return nil, err
	}
	return []float64{second, first}, nil
}

// swapPairs applies swapPair to every member of a sequence.
func swapPairs(v any) ([][]float64, error) {
	s, ok := asSlice(v)
	if !ok {
		return nil, newError(ErrKindInvalidCoordinates, "expected an array of coordinates, received %s", describe(v))
	}
	out := make([][]float64, 0, len(s))
	for _, p := range s {
		pair, err := swapPair(p)
		if err != nil {
			return nil, err
		}
		out = append(out, pair)
	}
	return out, nil
}

// toPoints reads a sequence of [lat, lng] pairs without reordering.
func toPoints(v any) ([][]float64, error) {
	swapped, err := swapPairs(v)
	if err != nil {
		return nil, err
	}
	for _, p := range swapped {
		p[0], p[1] = p[1], p[0]
	}
	return swapped, nil
}

func samePoint(a, b []float64) bool {
	return len(a) >= 2 && len(b) >= 2 && a[0] == b[0] && a[1] == b[1]
}

func describe(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
