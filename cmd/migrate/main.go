package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kantong/kantong-backend/internal/repository/postgres"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-steps N] up|down|version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	switch flag.Arg(0) {
	case "up":
		if err := postgres.RunMigrations(databaseURL); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "down":
		if err := postgres.RollbackMigrations(databaseURL, *steps); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
		log.Info().Int("steps", *steps).Msg("Rolled back")
	case "version":
		version, dirty, err := postgres.MigrationVersion(databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read schema version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema version")
	default:
		flag.Usage()
		os.Exit(2)
	}
}
