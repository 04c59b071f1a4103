package server

import (
	"net/http"

	"github.com/woozymasta/geojsontools/internal/codec"
	"github.com/woozymasta/geojsontools/internal/config"
	"github.com/woozymasta/geojsontools/internal/metrics"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config *config.Config
}

// NewServerContext initializes the context from a loaded config. A nil
// config gets the same defaults as an empty config file.
func NewServerContext(cfg *config.Config) *ServerContext {
	if cfg == nil {
		cfg = config.Default()
	}

	log.Info().
		Int64("max_body_bytes", cfg.Server.MaxBodyBytes).
		Bool("minify", cfg.Server.Minify).
		Int("render_width", cfg.Render.Width).
		Int("render_height", cfg.Render.Height).
		Msg("Server context initialized")

	return &ServerContext{Config: cfg}
}

// Handler returns the API routes wrapped with metrics and request logging.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/validate", s.HandleValidate)
	mux.HandleFunc("POST /api/togeojson", s.HandleToGeoJSON)
	mux.HandleFunc("POST /api/toarray", s.HandleToArray)
	mux.HandleFunc("POST /api/distance", s.HandleDistance)
	mux.HandleFunc("POST /api/complexify", s.HandleComplexify)
	mux.HandleFunc("POST /api/render", s.HandleRender)
	mux.HandleFunc("GET /healthz", s.HandleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return RequestLogger(metrics.Middleware(mux))
}

// encoder picks YAML when the client asks for it and JSON otherwise.
func (s *ServerContext) encoder(r *http.Request) codec.Encoder {
	enc := codec.Encoder{Format: codec.FormatJSON, Minify: s.Config.Server.Minify}
	if r.URL.Query().Get("format") == codec.FormatYAML || acceptsYAML(r.Header.Get("Accept")) {
		enc.Format = codec.FormatYAML
	}
	return enc
}
