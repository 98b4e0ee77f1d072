package captioning

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"captioner/internal/domain"
	"captioner/internal/infra"
	"captioner/internal/providers/caption"
)

const (
	defaultConcurrency = 4
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
)

// Prompts is the prompt configuration shared by every image in a batch.
type Prompts struct {
	System      string
	UserMessage string
}

// Orchestrator dispatches one captioning call per asset with bounded
// concurrency. Each call retries internally up to the attempt cap; a
// retry-exhausted failure is recorded against that image only and never
// blocks the rest of the batch.
type Orchestrator struct {
	Captioner   caption.Captioner
	Concurrency int
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      infra.Logger
}

// Run produces exactly one terminal result per asset. It returns only after
// every dispatched call reached a terminal state; results are ordered like
// the input set.
func (o *Orchestrator) Run(ctx context.Context, assets []*domain.ImageAsset, prompts Prompts) []domain.CaptionResult {
	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([]domain.CaptionResult, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			results[i] = o.captionOne(gctx, asset, prompts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) captionOne(ctx context.Context, asset *domain.ImageAsset, prompts Prompts) domain.CaptionResult {
	result := domain.CaptionResult{Filename: asset.Filename}
	if asset.DecodeErr != nil {
		result.Err = asset.DecodeErr
		o.Logger.Warn().Str("filename", asset.Filename).Err(asset.DecodeErr).Msg("caption: skipping undecodable image")
		return result
	}

	maxAttempts := o.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	delay := o.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	req := caption.Request{
		Data:         asset.Data,
		Subtype:      asset.Subtype,
		SystemPrompt: prompts.System,
		UserMessage:  prompts.UserMessage,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt
		text, err := o.Captioner.Caption(ctx, req)
		if err == nil {
			result.Caption = text
			o.Logger.Info().Str("filename", asset.Filename).Int("attempts", attempt).Msg("caption: succeeded")
			return result
		}
		lastErr = err
		o.Logger.Warn().
			Str("filename", asset.Filename).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Err(err).
			Msg("caption: attempt failed")
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			result.Err = fmt.Errorf("caption %s: %w", asset.Filename, ctx.Err())
			return result
		case <-time.After(delay):
		}
	}
	result.Err = fmt.Errorf("caption %s after %d attempts: %w", asset.Filename, result.Attempts, lastErr)
	return result
}
