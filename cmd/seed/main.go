package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/seanblong/ahkfinder/internal/config"
	"github.com/seanblong/ahkfinder/internal/curated"
	"github.com/seanblong/ahkfinder/internal/library"
	"github.com/seanblong/ahkfinder/internal/store"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("ahkfinder-seed", pflag.ExitOnError)

	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	zlog.Logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	// Seeding an in-memory store would be lost on exit.
	if strings.TrimSpace(cfg.Database) == "" {
		log.Fatal("a database URL is required (--db-url or AHKFINDER_DB_URL)")
	}

	ctx := context.Background()

	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	scripts, err := curated.New(cfg.CuratedDir).Load(ctx)
	if err != nil {
		log.Fatalf("load curated scripts from %s: %v", cfg.CuratedDir, err)
	}
	zlog.Info().Str("dir", cfg.CuratedDir).Int("found", len(scripts)).Msg("curated scripts loaded")

	n, err := library.NewService(st).SeedCurated(ctx, scripts)
	if err != nil {
		log.Fatal(err)
	}
	zlog.Info().Int("inserted", n).Msg("seed complete")
}
