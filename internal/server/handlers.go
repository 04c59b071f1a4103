// Package server exposes the geometry operations over HTTP.
package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/woozymasta/geojsontools/internal/codec"
	"github.com/woozymasta/geojsontools/internal/geo"
	"github.com/woozymasta/geojsontools/internal/metrics"
	"github.com/woozymasta/geojsontools/internal/render"

	"github.com/rs/zerolog/log"
)

// APIError is the body of every failed request.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`    // bad_request, too_large, invalid_geometry, ...
	Message string `json:"message"` // human readable
}

// DistanceResponse is returned by /api/distance.
type DistanceResponse struct {
	Distance float64 `json:"distance" yaml:"distance"`
	Unit     string  `json:"unit" yaml:"unit"`
}

// HandleValidate reports whether the body is valid GeoJSON. With
// ?diagnostic=1 an invalid body yields {"valid":false,"message":...}.
func (s *ServerContext) HandleValidate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	res := geo.Validate(body)
	metrics.ObserveValidation(res.Valid)

	if flag(r, "diagnostic") {
		s.write(w, r, http.StatusOK, res)
		return
	}
	s.write(w, r, http.StatusOK, res.Valid)
}

// HandleToGeoJSON converts [lat, lng] coordinates into a geometry of ?kind=.
func (s *ServerContext) HandleToGeoJSON(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	g, err := geo.ToGeoJSON(body, r.URL.Query().Get("kind"))
	if err != nil {
		s.geoError(w, "togeojson", err)
		return
	}
	s.write(w, r, http.StatusOK, g)
}

// HandleToArray converts a GeoJSON geometry back into [lat, lng] arrays.
func (s *ServerContext) HandleToArray(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	v, err := geo.ToArray(body)
	if err != nil {
		s.geoError(w, "toarray", err)
		return
	}
	s.write(w, r, http.StatusOK, v)
}

// HandleDistance sums the great-circle length of a [lat, lng] sequence.
func (s *ServerContext) HandleDistance(w http.ResponseWriter, r *http.Request) {
	decimals, err := intParam(r, "decimals", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	d, err := geo.DistanceOf(body, decimals)
	if err != nil {
		s.geoError(w, "distance", err)
		return
	}
	s.write(w, r, http.StatusOK, DistanceResponse{Distance: d, Unit: "km"})
}

// HandleComplexify densifies a line so no segment exceeds ?max_km=.
func (s *ServerContext) HandleComplexify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("max_km")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "max_km query parameter is required")
		return
	}
	maxKm, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "max_km must be a number")
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	out, err := geo.Complexify(body, maxKm, geo.WithLogger(log.Logger))
	if err != nil {
		s.geoError(w, "complexify", err)
		return
	}
	s.write(w, r, http.StatusOK, out)
}

// HandleRender draws the body as a WebP preview.
func (s *ServerContext) HandleRender(w http.ResponseWriter, r *http.Request) {
	opts := render.FromConfig(s.Config.Render)

	var err error
	if opts.Width, err = intParam(r, "width", opts.Width); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if opts.Height, err = intParam(r, "height", opts.Height); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if opts.Width > maxRenderSide || opts.Height > maxRenderSide {
		writeError(w, http.StatusBadRequest, "bad_request", "width and height must not exceed "+strconv.Itoa(maxRenderSide))
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := render.Render(&buf, body, opts); err != nil {
		s.geoError(w, "render", err)
		return
	}
	metrics.RenderDuration.Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// HandleHealth is the liveness probe.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

const maxRenderSide = 2048

// readBody decodes a JSON or YAML request body, answering the request itself
// when that fails.
func (s *ServerContext) readBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Config.Server.MaxBodyBytes)

	v, err := codec.Read(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large",
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return nil, false
	}
	return v, true
}

func (s *ServerContext) write(w http.ResponseWriter, r *http.Request, status int, v any) {
	enc := s.encoder(r)
	data, err := enc.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode response")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", enc.ContentType())
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_, _ = w.Write(data)
}

// geoError maps geometry errors to 422 with the error kind as code.
func (s *ServerContext) geoError(w http.ResponseWriter, op string, err error) {
	var ge *geo.Error
	if !errors.As(err, &ge) {
		log.Error().Err(err).Str("operation", op).Msg("Operation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	metrics.OperationErrors.WithLabelValues(op, ge.Kind.String()).Inc()
	writeError(w, http.StatusUnprocessableEntity, ge.Kind.String(), ge.Message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	data, _ := codec.Encoder{Minify: true}.Marshal(APIError{Status: status, Code: code, Message: message})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

func flag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func acceptsYAML(accept string) bool {
	return strings.Contains(accept, "yaml")
}
