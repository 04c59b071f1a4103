// Package processor turns configured sources into validated GeoJSON files
// and optional WebP previews.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/geojsontools/internal/codec"
	"github.com/woozymasta/geojsontools/internal/config"
	"github.com/woozymasta/geojsontools/internal/geo"
	"github.com/woozymasta/geojsontools/internal/metrics"
	"github.com/woozymasta/geojsontools/internal/render"

	"github.com/rs/zerolog/log"
)

// Source outcomes.
const (
	StatusWritten = "written"
	StatusSkipped = "skipped"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

// ErrInvalidSource marks data that loaded fine but is not valid GeoJSON.
var ErrInvalidSource = errors.New("source is not valid GeoJSON")

// Processor holds the shared settings of a loader run.
type Processor struct {
	Client      *http.Client
	Output      string
	Render      config.Render
	Concurrency int
	Force       bool
	Minify      bool
}

// New returns a Processor writing into cfg.Output.
func New(client *http.Client, cfg *config.Config) *Processor {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Processor{
		Client:      client,
		Output:      cfg.Output,
		Render:      cfg.Render,
		Concurrency: 4,
	}
}

// Outcome reports what happened to one source.
type Outcome struct {
	Name     string
	Status   string
	Path     string
	Preview  string
	Features int
	Added    int
	Err      error
}

// Process fetches, converts, validates and writes a single source.
func (p *Processor) Process(ctx context.Context, s config.Source) Outcome {
	out := Outcome{Name: s.Name, Path: filepath.Join(p.Output, s.Name+".geojson")}
	if s.Preview {
		out.Preview = filepath.Join(p.Output, s.Name+".webp")
	}

	if !p.Force && exists(out.Path) && (out.Preview == "" || exists(out.Preview)) {
		log.Debug().Str("source", s.Name).Msg("Output exists, skipping")
		out.Status = StatusSkipped
		return out
	}

	doc, err := p.build(ctx, s)
	if err != nil {
		out.Err = err
		out.Status = StatusFailed
		if errors.Is(err, ErrInvalidSource) {
			out.Status = StatusInvalid
		}
		return out
	}

	if s.MaxDistanceKm > 0 {
		if doc, out.Added, err = densify(doc, s.MaxDistanceKm); err != nil {
			out.Err = fmt.Errorf("complexify: %w", err)
			out.Status = StatusFailed
			return out
		}
		metrics.ComplexifyAdded.Observe(float64(out.Added))
	}

	geoms, err := geo.Geometries(doc)
	if err != nil {
		out.Err = fmt.Errorf("%w: %v", ErrInvalidSource, err)
		out.Status = StatusInvalid
		return out
	}
	out.Features = len(geoms)

	if err := p.saveGeoJSON(out.Path, doc); err != nil {
		out.Err = err
		out.Status = StatusFailed
		return out
	}

	if out.Preview != "" {
		if err := p.savePreview(out.Preview, doc); err != nil {
			out.Err = err
			out.Status = StatusFailed
			return out
		}
	}

	out.Status = StatusWritten
	return out
}

// build loads the source data and returns a private, valid GeoJSON tree.
func (p *Processor) build(ctx context.Context, s config.Source) (any, error) {
	data, err := p.load(ctx, s)
	if err != nil {
		return nil, err
	}

	if s.Format == config.FormatArray {
		fc, err := arrayToFeatures(data, s.Kind)
		if err != nil {
			return nil, fmt.Errorf("convert %s source: %w", config.FormatArray, err)
		}
		data = fc
	}

	doc, err := toGeneric(data)
	if err != nil {
		return nil, err
	}

	r := geo.Validate(doc)
	metrics.ObserveValidation(r.Valid)
	if !r.Valid {
		if r.Detail != "" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidSource, r.Message, r.Detail)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, r.Message)
	}
	return doc, nil
}

// load reads inline data, a local file or a remote document.
func (p *Processor) load(ctx context.Context, s config.Source) (any, error) {
	switch {
	case s.Inline != nil:
		log.Debug().Str("source", s.Name).Msg("Using inline data from config")
		return s.Inline, nil
	case s.Path != "":
		log.Debug().Str("source", s.Name).Str("path", s.Path).Msg("Reading source file")
		v, err := codec.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.Path, err)
		}
		return v, nil
	case s.URL != "":
		log.Debug().Str("source", s.Name).Str("url", s.URL).Msg("Downloading source")
		return p.fetch(ctx, s.URL)
	}

	return nil, fmt.Errorf("source %q has no input", s.Name)
}

func (p *Processor) fetch(ctx context.Context, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return codec.Decode(body)
}

// saveGeoJSON encodes doc and writes it to disk.
func (p *Processor) saveGeoJSON(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return codec.Encoder{Format: codec.FormatJSON, Minify: p.Minify}.Encode(f, doc)
}

func (p *Processor) savePreview(path string, doc any) error {
	start := time.Now()

	var buf bytes.Buffer
	if err := render.Render(&buf, doc, render.FromConfig(p.Render)); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	metrics.RenderDuration.Observe(time.Since(start).Seconds())

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// toGeneric copies v into plain maps and slices so later stages may rewrite
// it without touching caller or config data.
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize source: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("normalize source: %w", err)
	}
	return out, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// densify complexifies every LineString and MultiLineString in doc in place
// and returns the number of inserted points.
func densify(doc any, maxKm float64) (any, int, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return doc, 0, nil
	}

	typ, _ := m["type"].(string)
	switch typ {
	case "LineString":
		return densifyLine(m, maxKm)
	case "MultiLineString":
		lines, _ := m["coordinates"].([]any)
		total := 0
		out := make([]any, 0, len(lines))
		for _, line := range lines {
			g, added, err := densifyLine(map[string]any{"type": "LineString", "coordinates": line}, maxKm)
			if err != nil {
				return nil, 0, err
			}
			total += added
			out = append(out, g.(geo.GeoJSONGeometry).Coordinates)
		}
		m["coordinates"] = out
		return m, total, nil
	case "Feature":
		g, added, err := densify(m["geometry"], maxKm)
		if err != nil {
			return nil, 0, err
		}
		m["geometry"] = g
		return m, added, nil
	case "FeatureCollection", "GeometryCollection":
		member := "features"
		if typ == "GeometryCollection" {
			member = "geometries"
		}
		items, _ := m[member].([]any)
		total := 0
		for i, item := range items {
			v, added, err := densify(item, maxKm)
			if err != nil {
				return nil, 0, err
			}
			items[i] = v
			total += added
		}
		return m, total, nil
	}

	return m, 0, nil
}

func densifyLine(m map[string]any, maxKm float64) (any, int, error) {
	before, _ := m["coordinates"].([]any)
	out, err := geo.Complexify(m, maxKm, geo.WithLogger(log.Logger))
	if err != nil {
		metrics.OperationErrors.WithLabelValues("complexify", errorKind(err)).Inc()
		return nil, 0, err
	}
	g := out.(geo.GeoJSONGeometry)
	return g, len(g.Coordinates.([][]float64)) - len(before), nil
}

func errorKind(err error) string {
	var ge *geo.Error
	if errors.As(err, &ge) {
		return ge.Kind.String()
	}
	return "unknown"
}
