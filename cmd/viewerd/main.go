package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"viewerd/internal/config"
	"viewerd/internal/httpapi"
	"viewerd/internal/studystore"
	"viewerd/internal/viewer"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("VIEWERD_ADDR"); v != "" {
		defaultAddr = v
	}
	defaultStudies := "~/studies"
	if v := os.Getenv("VIEWERD_STUDIES_DIR"); v != "" {
		defaultStudies = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	configPath := flag.String("config", os.Getenv("VIEWERD_CONFIG"), "Path to config file (.toml/.yaml/.json)")
	studiesDir := flag.String("studies-dir", defaultStudies, "Directory to scan for *.study.yaml manifests")
	imageBaseURL := flag.String("image-base-url", envOr("VIEWERD_IMAGE_BASE_URL", ""), "Base URL for resolving bare image ids")
	viewports := flag.Int("viewports", envInt("VIEWERD_VIEWPORTS", 4), "Number of viewport slots")
	prefetchWindow := flag.Int("prefetch-window", 0, "Neighbor images to prefetch around the cursor (0=default)")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
	}
	// Explicitly set flags win over file values; otherwise flags only fill
	// in what the file left empty.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if cfg.Addr == "" || set["addr"] {
		cfg.Addr = *addr
	}
	if cfg.StudiesDir == "" || set["studies-dir"] {
		cfg.StudiesDir = *studiesDir
	}
	if cfg.ImageBaseURL == "" || set["image-base-url"] {
		cfg.ImageBaseURL = *imageBaseURL
	}
	if cfg.Viewports == 0 || set["viewports"] {
		cfg.Viewports = *viewports
	}
	if cfg.PrefetchWindow == 0 || set["prefetch-window"] {
		cfg.PrefetchWindow = *prefetchWindow
	}

	store, err := studystore.LoadDir(cfg.StudiesDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.StudiesDir).Msg("load studies")
	}
	log.Info().Int("studies", len(store.List())).Str("dir", cfg.StudiesDir).Msg("study manifests loaded")

	fetcher := viewer.NewHTTPFetcher(cfg.ImageBaseURL)
	// Rough sizing: pixel payloads in the corpus average ~256 KiB each.
	entries := cfg.PrefetchCacheMB * 4
	engine, err := viewer.NewEngine(fetcher, entries, cfg.PrefetchWindow, log)
	if err != nil {
		log.Fatal().Err(err).Msg("prefetch engine")
	}
	events := httpapi.NewEventHub()

	coord := viewer.NewWithConfig(viewer.Config{
		Store:          store,
		Fetcher:        fetcher,
		Prefetch:       engine,
		Publisher:      events,
		Logger:         &log,
		MaxViewports:   cfg.Viewports,
		ReferenceLines: cfg.ReferenceLinesEnabled(),
	})
	defer coord.Close()

	httpapi.SetLogger(log)
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(coord, coord.SurfaceHub(), events)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("viewerd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	events.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
