package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/geojsontools/internal/config"
	"github.com/woozymasta/geojsontools/internal/logger"
	"github.com/woozymasta/geojsontools/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	Limit       []string `short:"l" long:"limit"       env:"LIMIT_NAMES"  description:"Limit processing to specific source names"`
	Output      string   `short:"o" long:"out"         env:"OUTPUT_DIR"   description:"Override output directory from config"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY"  description:"Concurrency" default:"4"`
	Force       bool     `short:"f" long:"force"       description:"Force overwrite of existing files"`
	Minify      bool     `short:"m" long:"minify"      description:"Write minified GeoJSON"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 15 * time.Second,
	}

	p := processor.New(client, cfg)
	p.Force = opts.Force
	p.Minify = opts.Minify
	if opts.Concurrency > 0 {
		p.Concurrency = opts.Concurrency
	}

	// Filter sources if limit is set
	sources := cfg.Sources
	if len(opts.Limit) > 0 {
		sources = make([]config.Source, 0, len(opts.Limit))
		available := make(map[string]config.Source)
		for _, s := range cfg.Sources {
			available[s.Name] = s
		}

		seen := make(map[string]bool)

		for _, name := range opts.Limit {
			if seen[name] {
				continue
			}
			seen[name] = true

			if s, ok := available[name]; ok {
				sources = append(sources, s)
			} else {
				log.Error().
					Str("name", name).
					Msg("Source specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Int("sources_total", len(cfg.Sources)).
		Int("sources_queued", len(sources)).
		Int("concurrency", p.Concurrency).
		Str("output", cfg.Output).
		Msg("Starting loader")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, o := range p.Run(ctx, sources) {
		if o.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		log.Error().Int("failed", failed).Msg("Loader finished with errors")
		stop()
		os.Exit(1)
	}

	log.Info().Msg("Loader finished successfully")
}
