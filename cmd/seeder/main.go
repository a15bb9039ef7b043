package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/foxxcyber/shopvoice/internal/config"
	"github.com/foxxcyber/shopvoice/internal/services"
)

func main() {
	// Command line flags
	dryRun := flag.Bool("dry-run", false, "Validate dataset files without uploading")
	dir := flag.String("dir", "", "Directory with dataset JSON files (defaults to the embedded copies)")
	flag.Parse()

	// Load .env
	godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})

	// Load config
	cfg := config.Load()
	if !*dryRun && !cfg.UsesDatasetBucket() {
		log.Fatal().Msg("S3_ACCESS_KEY and S3_SECRET_KEY are required to upload datasets")
	}

	files := make(map[string][]byte, len(services.DatasetFiles))
	for _, name := range services.DatasetFiles {
		data, err := readDataset(*dir, name)
		if err != nil {
			log.Fatal().Err(err).Str("dataset", name).Msg("failed to read dataset")
		}
		if !json.Valid(data) {
			log.Fatal().Str("dataset", name).Msg("dataset is not valid JSON")
		}
		files[name] = data
		log.Info().Str("dataset", name).Int("bytes", len(data)).Msg("dataset ready")
	}

	if *dryRun {
		log.Info().Msg("dry run, nothing uploaded")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := services.NewDatasetStorage(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.DatasetsPrefix, cfg.S3UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dataset storage")
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Str("bucket", cfg.S3Bucket).Msg("failed to ensure bucket")
	}

	for _, name := range services.DatasetFiles {
		if err := store.Upload(ctx, name, files[name]); err != nil {
			log.Fatal().Err(err).Str("dataset", name).Msg("upload failed")
		}
		log.Info().Str("dataset", name).Str("bucket", cfg.S3Bucket).Msg("uploaded")
	}

	// Read everything back so a broken upload fails here rather than at server start
	if _, err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("uploaded datasets do not decode")
	}
	log.Info().Msg("datasets seeded")
}

func readDataset(dir, name string) ([]byte, error) {
	if dir == "" {
		return services.DefaultDatasetFile(name)
	}
	return os.ReadFile(filepath.Join(dir, name))
}
