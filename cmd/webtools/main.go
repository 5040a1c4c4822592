// Package main provides the webtools HTTP server entry point.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/webtools/internal/config"
	"github.com/thebtf/webtools/internal/server"
	"github.com/thebtf/webtools/internal/watcher"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Parse flags
	addr := flag.String("addr", "", "Listen address host:port (overrides WEBTOOLS_HOST/WEBTOOLS_PORT)")
	envFile := flag.String("env-file", ".env", "Optional KEY=VALUE file loaded into the environment")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Warn().Err(err).Str("path", *envFile).Msg("Failed to load env file")
	}

	if err := config.EnsureAll(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure data directory")
	}

	cfg := config.Get()
	if *debug || cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if *addr != "" {
		host, port, err := splitAddr(*addr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", *addr).Msg("Invalid --addr")
		}
		cfg.Host, cfg.Port = host, port
	}

	if cfg.InsecureSecret() {
		log.Warn().Msg("SECRET_KEY is not set; session cookies are signed with the public default key and can be forged. Set SECRET_KEY before exposing this server.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := server.New(cfg, Version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	startConfigWatcher()

	if err := svc.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("HTTP server error")
	}
	log.Info().Msg("Server stopped")
}

// startConfigWatcher exits the process when settings.json changes so a
// supervisor restarts it with the new settings.
func startConfigWatcher() {
	configPath := config.SettingsPath()
	configWatcher, err := watcher.New(configPath, func() {
		log.Warn().Str("path", configPath).Msg("Config file changed, exiting for restart...")
		time.Sleep(100 * time.Millisecond) // Give logs time to flush
		os.Exit(0)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create config watcher")
		return
	}
	if err := configWatcher.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start config watcher")
		return
	}
	log.Info().Str("path", configPath).Msg("Config file watcher started")
}
