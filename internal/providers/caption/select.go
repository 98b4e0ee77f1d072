package caption

import (
	"fmt"
	"net/http"
	"strings"

	"captioner/internal/domain"
	"captioner/internal/infra/credentials"
)

// Selection describes the provider+model a batch will use. The provider
// family is a pure function of the model identifier's prefix; the credential
// for that family is resolved and validated here, once, before any work.
type Selection struct {
	Model       string
	Credentials *credentials.Store

	OpenAIBaseURL    string
	OpenAIOrg        string
	AnthropicBaseURL string
	GeminiBaseURL    string

	// HTTPClient overrides the per-family default client, mainly for tests
	// and per-call deadlines.
	HTTPClient *http.Client
}

// New selects and constructs the captioner for the requested model.
func New(sel Selection) (Captioner, error) {
	model := strings.TrimSpace(sel.Model)
	switch {
	case strings.HasPrefix(model, "gpt"):
		key, err := sel.Credentials.Token(credentials.ProviderOpenAI)
		if err != nil {
			return nil, err
		}
		return NewOpenAICaptioner(OpenAIOptions{
			APIKey:       key,
			Model:        model,
			BaseURL:      sel.OpenAIBaseURL,
			Organization: sel.OpenAIOrg,
			HTTPClient:   sel.HTTPClient,
		})
	case strings.HasPrefix(model, "claude"):
		key, err := sel.Credentials.Token(credentials.ProviderAnthropic)
		if err != nil {
			return nil, err
		}
		return NewAnthropicCaptioner(AnthropicOptions{
			APIKey:     key,
			Model:      model,
			BaseURL:    sel.AnthropicBaseURL,
			HTTPClient: sel.HTTPClient,
		})
	case strings.HasPrefix(model, "gemini"):
		key, err := sel.Credentials.Token(credentials.ProviderGemini)
		if err != nil {
			return nil, err
		}
		return NewGeminiCaptioner(GeminiOptions{
			APIKey:     key,
			Model:      model,
			BaseURL:    sel.GeminiBaseURL,
			HTTPClient: sel.HTTPClient,
		})
	default:
		return nil, fmt.Errorf("%w: %q matches no known provider family", domain.ErrUnsupportedModel, model)
	}
}
