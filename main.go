package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pairdown/go-server/internal/db"
	"github.com/pairdown/go-server/internal/httpserver"
	"github.com/pairdown/go-server/internal/store"
	"github.com/pairdown/go-server/internal/symbols"
	"github.com/pairdown/go-server/internal/watch"
	"os"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := symbols.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load symbol themes")
	}

	sqlDB, err := db.Open(getEnv("DB_PATH", "./data/pairdown.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := db.Migrate(sqlDB); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	mem := store.NewMemoryStore()
	hub := watch.NewHub()
	srv := httpserver.New(mem, sqlDB, hub)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" { return v }
	return def
}
