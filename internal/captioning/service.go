package captioning

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"captioner/internal/archive"
	"captioner/internal/assemble"
	"captioner/internal/domain"
	"captioner/internal/infra"
	"captioner/internal/infra/credentials"
	"captioner/internal/normalize"
	"captioner/internal/providers/caption"
	"captioner/internal/storage"
)

// BatchOptions is one invocation's parameter set. Callers fill defaults from
// configuration before handing it over.
type BatchOptions struct {
	Model            string
	CaptionPrefix    string
	CaptionSuffix    string
	Resize           bool
	MaxDimension     int
	IncludeOriginals bool
	SystemPrompt     string
	UserPrompt       string
}

// Failure summarizes one image's terminal captioning failure.
type Failure struct {
	Filename string
	Attempts int
	Reason   string
}

// BatchResult is the packaged outcome of one batch.
type BatchResult struct {
	ID       string
	Archive  []byte
	Rows     []domain.ManifestRow
	Failures []Failure
}

// Service composes the pipeline: extract, normalize, caption, assemble. A
// configuration or archive error aborts with no output; per-image errors are
// contained and reported in the result's failure summary.
type Service struct {
	cfg         *infra.Config
	credentials *credentials.Store
	logger      infra.Logger

	// httpClient overrides the provider transport; tests point it at fakes.
	httpClient *http.Client
}

// NewService wires a batch service from configuration.
func NewService(cfg *infra.Config, logger infra.Logger) *Service {
	return &Service{
		cfg:         cfg,
		credentials: credentials.FromConfig(cfg),
		logger:      logger,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Run executes one batch over the raw input archive.
func (s *Service) Run(ctx context.Context, raw []byte, opts BatchOptions) (*BatchResult, error) {
	opts = s.withDefaults(opts)
	batchID := uuid.NewString()
	logger := s.logger.With().Str("batch_id", batchID).Logger()

	// Model family and credential are validated before any extraction.
	captioner, err := caption.New(caption.Selection{
		Model:            opts.Model,
		Credentials:      s.credentials,
		OpenAIBaseURL:    s.cfg.OpenAIBaseURL,
		OpenAIOrg:        s.cfg.OpenAIOrg,
		AnthropicBaseURL: s.cfg.AnthropicBaseURL,
		GeminiBaseURL:    s.cfg.GeminiBaseURL,
		HTTPClient:       s.httpClient,
	})
	if err != nil {
		return nil, err
	}

	scratch, err := storage.NewScratch()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := scratch.Cleanup(); err != nil {
			logger.Warn().Err(err).Msg("batch: scratch cleanup failed")
		}
	}()

	extractor := &archive.Extractor{Store: scratch, Logger: logger}
	extracted, err := extractor.Extract(ctx, raw)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("images", len(extracted.Assets)).
		Int("collisions", len(extracted.Collisions)).
		Str("model", captioner.Model()).
		Msg("batch: working set extracted")

	if opts.IncludeOriginals {
		// The extractor staged the pre-normalization bytes on the scratch
		// store keyed by base name; recall them before any resizing mutates
		// the working set.
		for _, asset := range extracted.Assets {
			original, err := scratch.Read(ctx, asset.Filename)
			if err != nil {
				return nil, err
			}
			asset.Original = original
		}
	}

	if opts.Resize {
		normalizer := &normalize.Normalizer{
			MaxDimension: opts.MaxDimension,
			Concurrency:  s.cfg.Concurrency,
			Logger:       logger,
		}
		if err := normalizer.Apply(ctx, extracted.Assets); err != nil {
			return nil, err
		}
	}

	orchestrator := &Orchestrator{
		Captioner:   captioner,
		Concurrency: s.cfg.Concurrency,
		MaxAttempts: s.cfg.MaxAttempts,
		RetryDelay:  s.cfg.RetryDelay,
		Logger:      logger,
	}
	results := orchestrator.Run(ctx, extracted.Assets, Prompts{
		System:      opts.SystemPrompt,
		UserMessage: caption.BuildUserMessage(opts.UserPrompt, opts.CaptionPrefix, opts.CaptionSuffix),
	})

	assembler := &assemble.Assembler{IncludeOriginals: opts.IncludeOriginals, Logger: logger}
	output, err := assembler.Build(extracted.Assets, results)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{ID: batchID, Archive: output.Archive, Rows: output.Rows}
	for _, result := range results {
		if result.Succeeded() {
			continue
		}
		batch.Failures = append(batch.Failures, Failure{
			Filename: result.Filename,
			Attempts: result.Attempts,
			Reason:   result.Err.Error(),
		})
	}
	logger.Info().
		Int("succeeded", len(batch.Rows)).
		Int("failed", len(batch.Failures)).
		Msg("batch: completed")
	return batch, nil
}

// withDefaults fills unset options from configuration.
func (s *Service) withDefaults(opts BatchOptions) BatchOptions {
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = s.cfg.Model
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = s.cfg.MaxDimension
	}
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = s.cfg.SystemPrompt
	}
	if strings.TrimSpace(opts.UserPrompt) == "" {
		opts.UserPrompt = s.cfg.UserPrompt
	}
	return opts
}

// SetHTTPClient overrides the transport used for provider calls. A nil
// client restores the configured default.
func (s *Service) SetHTTPClient(client *http.Client) {
	if client == nil {
		client = &http.Client{Timeout: s.cfg.RequestTimeout}
	}
	s.httpClient = client
}
