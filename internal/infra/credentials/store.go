package credentials

import (
	"fmt"
	"strings"

	"captioner/internal/domain"
	"captioner/internal/infra"
)

// Provider family identifiers. One credential is required per family, but
// only for the family the selected model actually belongs to.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Store resolves API credentials per provider family.
type Store struct {
	tokens map[string]string
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{tokens: map[string]string{}}
}

// FromConfig builds a store from the environment-backed configuration.
func FromConfig(cfg *infra.Config) *Store {
	s := NewStore()
	s.Set(ProviderOpenAI, cfg.OpenAIAPIKey)
	s.Set(ProviderAnthropic, cfg.AnthropicAPIKey)
	s.Set(ProviderGemini, cfg.GeminiAPIKey)
	return s
}

// Set records the credential for a provider family. Empty values are ignored
// so a later Token call reports the credential as missing.
func (s *Store) Set(provider, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	s.tokens[provider] = token
}

// Token returns the credential for a provider family, or a
// domain.ErrMissingCredential when none was supplied.
func (s *Store) Token(provider string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%w: no credential store", domain.ErrMissingCredential)
	}
	token, ok := s.tokens[provider]
	if !ok || token == "" {
		return "", fmt.Errorf("%w: no %s api key configured", domain.ErrMissingCredential, provider)
	}
	return token, nil
}
