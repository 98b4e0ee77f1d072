package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"captioner/internal/captioning"
	"captioner/internal/infra"
)

func main() {
	inputPath := flag.String("input", "", "path to the input image archive (required)")
	outputPath := flag.String("output", "captions_and_csv.zip", "path the output archive is written to")
	flag.Parse()

	// Load .env when present.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if *inputPath == "" {
		flag.Usage()
		logger.Fatal().Msg("worker: -input is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Str("input", *inputPath).Msg("worker: failed to read input archive")
	}

	service := captioning.NewService(cfg, logger)
	batch, err := service.Run(ctx, raw, captioning.BatchOptions{
		Model:            cfg.Model,
		CaptionPrefix:    cfg.CaptionPrefix,
		CaptionSuffix:    cfg.CaptionSuffix,
		Resize:           cfg.ResizeImages,
		MaxDimension:     cfg.MaxDimension,
		IncludeOriginals: cfg.IncludeOriginals,
		SystemPrompt:     cfg.SystemPrompt,
		UserPrompt:       cfg.UserPrompt,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: batch failed")
	}

	if err := os.WriteFile(*outputPath, batch.Archive, 0o644); err != nil {
		logger.Fatal().Err(err).Str("output", *outputPath).Msg("worker: failed to write output archive")
	}

	for _, failure := range batch.Failures {
		logger.Warn().
			Str("filename", failure.Filename).
			Int("attempts", failure.Attempts).
			Str("reason", failure.Reason).
			Msg("worker: image failed captioning")
	}
	logger.Info().
		Str("batch_id", batch.ID).
		Str("output", *outputPath).
		Int("captioned", len(batch.Rows)).
		Int("failed", len(batch.Failures)).
		Msg("worker: batch complete")
}
