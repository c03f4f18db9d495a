package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	zlog "github.com/rs/zerolog/log"
	"github.com/seanblong/ahkfinder/internal/ai"
	"github.com/seanblong/ahkfinder/internal/api"
	"github.com/seanblong/ahkfinder/internal/config"
	"github.com/seanblong/ahkfinder/internal/curated"
	"github.com/seanblong/ahkfinder/internal/github"
	"github.com/seanblong/ahkfinder/internal/library"
	"github.com/seanblong/ahkfinder/internal/ps99"
	"github.com/seanblong/ahkfinder/internal/search"
	"github.com/seanblong/ahkfinder/internal/store"
	"github.com/spf13/pflag"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	// Create flagset for configuration
	fs := pflag.NewFlagSet("ahkfinder-api", pflag.ExitOnError)

	// Load configuration
	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	// Set up logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	zlog.Logger = logger
	logger.Info().Str("provider", cfg.Provider).Str("log_level", cfg.LogLevel).Bool("persistent", cfg.Database != "").Msg("starting ahkfinder api")

	// Create AI client configuration
	var clientConfig *ai.ClientConfig
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		clientConfig = &ai.ClientConfig{
			APIKey:    cfg.APIKey,
			ChatModel: cfg.ChatModel,
			BaseURL:   cfg.BaseURL,
			ProjectID: cfg.ProjectID,
			Provider:  ai.ProviderOpenAI,
		}
	case "vertexai":
		clientConfig = &ai.ClientConfig{
			APIKey:    cfg.APIKey,
			ChatModel: cfg.ChatModel,
			BaseURL:   cfg.BaseURL,
			ProjectID: cfg.ProjectID,
			Location:  cfg.Location,
			Provider:  ai.ProviderVertexAI,
		}
	case "google":
		clientConfig = &ai.ClientConfig{
			APIKey:    cfg.APIKey,
			ChatModel: cfg.ChatModel,
			BaseURL:   cfg.BaseURL,
			Provider:  ai.ProviderGoogle,
		}
	case "stub":
		clientConfig = &ai.ClientConfig{Provider: ai.ProviderStub}
	default:
		log.Fatalf("unsupported provider: %s", cfg.Provider)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	c, err := ai.NewClient(clientConfig)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}
	logger.Info().Str("chat_model", clientConfig.ChatModel).Msg("AI client initialized")

	lib := library.NewService(st)
	scripts, err := curated.New(cfg.CuratedDir).Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.CuratedDir).Msg("curated scripts not loaded")
	} else if _, err := lib.SeedCurated(ctx, scripts); err != nil {
		log.Fatalf("Failed to seed curated scripts: %v", err)
	}

	gh := github.NewClient(cfg.Github.APIURL, cfg.Github.Token)
	enricher, err := github.NewEnricher(gh, cfg.Github.PreviewLines, cfg.Github.FetchConcurrency, cfg.Github.CacheSize)
	if err != nil {
		log.Fatalf("Failed to create enricher: %v", err)
	}
	if cfg.Github.Token == "" {
		logger.Warn().Msg("no GitHub token set; code search will be rate limited")
	}

	h := api.New(
		search.NewService(gh, enricher, cfg.Github.PerPage),
		lib,
		ai.NewAssistant(c),
		ps99.NewClient(cfg.PS99.URL, cfg.PS99.CacheTTL),
	)

	if p, ok := st.(api.Pinger); ok {
		h.SetPinger(p)
	}

	handler := hlog.NewHandler(logger)(
		hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Int("size", size).Dur("dur", dur).Msg("http")
		})(h.Routes()),
	)

	address := fmt.Sprintf(":%d", cfg.Port)
	s := &http.Server{Addr: address, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("addr", s.Addr).Msg("api server listening")
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	logger.Info().Msg("api server stopped")
}

// openStore connects to Postgres when a DSN is configured and falls back to
// the in-memory store otherwise.
func openStore(ctx context.Context, dsn string) (store.ScriptStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return store.NewMemory(), nil
	}
	st, err := store.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return st, nil
}
