package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/geojsontools/internal/config"
	"github.com/woozymasta/geojsontools/internal/logger"
	"github.com/woozymasta/geojsontools/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile   string `short:"c" long:"config"         env:"CONFIG_FILE"    description:"Path to configuration file, built-in defaults when empty"`
	Addr         string `short:"a" long:"addr"           env:"LISTEN_ADDRESS" description:"Address to listen on"              default:"0.0.0.0"`
	Port         int    `short:"p" long:"port"           env:"LISTEN_PORT"    description:"Port to listen on"                 default:"8080"`
	MaxBodyBytes int64  `short:"b" long:"max-body-bytes" env:"MAX_BODY_BYTES" description:"Override request body limit in bytes"`
	Minify       bool   `short:"m" long:"minify"         env:"MINIFY"         description:"Minify JSON responses"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}
	if opts.MaxBodyBytes > 0 {
		cfg.Server.MaxBodyBytes = opts.MaxBodyBytes
	}
	if opts.Minify {
		cfg.Server.Minify = true
	}

	srvCtx := server.NewServerContext(cfg)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Int64("max_body_bytes", cfg.Server.MaxBodyBytes).
		Bool("minify", cfg.Server.Minify).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}
