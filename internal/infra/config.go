package infra

import (
	"os"
	"strconv"
	"time"
)

// DefaultSystemPrompt describes the caption style requested from the model
// when the caller does not supply one.
const DefaultSystemPrompt = "Write a two sentence caption for this image. " +
	"Describe in the first sentence the contents and composition of the image. " +
	"In the second sentence describe the style and type (painting, photo, etc) of the image. " +
	"Only use language that would be used to prompt a text to image model. Do not include usage."

// DefaultUserPrompt is the base user message sent alongside every image.
const DefaultUserPrompt = "Caption this image please"

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	Model            string
	SystemPrompt     string
	UserPrompt       string
	CaptionPrefix    string
	CaptionSuffix    string
	ResizeImages     bool
	MaxDimension     int
	IncludeOriginals bool

	Concurrency    int
	MaxAttempts    int
	RetryDelay     time.Duration
	RequestTimeout time.Duration

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIOrg        string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	GeminiAPIKey     string
	GeminiBaseURL    string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	MaxUploadBytes   int64
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		Model:            getEnv("CAPTION_MODEL", "gpt-4o-mini"),
		SystemPrompt:     getEnv("CAPTION_SYSTEM_PROMPT", DefaultSystemPrompt),
		UserPrompt:       getEnv("CAPTION_USER_PROMPT", DefaultUserPrompt),
		CaptionPrefix:    os.Getenv("CAPTION_PREFIX"),
		CaptionSuffix:    os.Getenv("CAPTION_SUFFIX"),
		ResizeImages:     getEnvBool("CAPTION_RESIZE_IMAGES", true),
		MaxDimension:     getEnvInt("CAPTION_MAX_DIMENSION", 1024),
		IncludeOriginals: getEnvBool("CAPTION_INCLUDE_ORIGINALS", false),

		Concurrency:    getEnvInt("CAPTION_CONCURRENCY", 4),
		MaxAttempts:    getEnvInt("CAPTION_MAX_ATTEMPTS", 3),
		RetryDelay:     time.Second * time.Duration(getEnvInt("CAPTION_RETRY_DELAY_SECONDS", 2)),
		RequestTimeout: time.Second * time.Duration(getEnvInt("CAPTION_REQUEST_TIMEOUT_SECONDS", 60)),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:        os.Getenv("OPENAI_ORG"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 120)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MEGABYTES", 256)) * 1024 * 1024,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
