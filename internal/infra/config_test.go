package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Fatalf("Model = %q, want gpt-4o-mini", cfg.Model)
	}
	if !cfg.ResizeImages {
		t.Fatal("ResizeImages default = false, want true")
	}
	if cfg.MaxDimension != 1024 {
		t.Fatalf("MaxDimension = %d, want 1024", cfg.MaxDimension)
	}
	if cfg.IncludeOriginals {
		t.Fatal("IncludeOriginals default = true, want false")
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Fatalf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Fatalf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.UserPrompt != DefaultUserPrompt {
		t.Fatalf("UserPrompt = %q", cfg.UserPrompt)
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("CAPTION_MODEL", "claude-3-5-sonnet-latest")
	t.Setenv("CAPTION_RESIZE_IMAGES", "false")
	t.Setenv("CAPTION_MAX_DIMENSION", "512")
	t.Setenv("CAPTION_CONCURRENCY", "8")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Model != "claude-3-5-sonnet-latest" {
		t.Fatalf("Model = %q", cfg.Model)
	}
	if cfg.ResizeImages {
		t.Fatal("ResizeImages override ignored")
	}
	if cfg.MaxDimension != 512 {
		t.Fatalf("MaxDimension = %d, want 512", cfg.MaxDimension)
	}
	if cfg.Concurrency != 8 {
		t.Fatalf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.AnthropicAPIKey != "ak-test" {
		t.Fatalf("AnthropicAPIKey = %q", cfg.AnthropicAPIKey)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("CAPTION_MAX_DIMENSION", "not-a-number")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxDimension != 1024 {
		t.Fatalf("MaxDimension = %d, want fallback 1024", cfg.MaxDimension)
	}
}
