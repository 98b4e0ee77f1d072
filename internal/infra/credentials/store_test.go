package credentials

import (
	"errors"
	"testing"

	"captioner/internal/domain"
	"captioner/internal/infra"
)

func TestTokenReturnsConfiguredKey(t *testing.T) {
	store := NewStore()
	store.Set(ProviderOpenAI, "  sk-test  ")

	token, err := store.Token(ProviderOpenAI)
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "sk-test" {
		t.Fatalf("token = %q, want sk-test", token)
	}
}

func TestTokenMissingCredential(t *testing.T) {
	store := NewStore()
	store.Set(ProviderGemini, "")

	if _, err := store.Token(ProviderGemini); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if _, err := store.Token(ProviderAnthropic); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestFromConfigMapsFamilies(t *testing.T) {
	cfg := &infra.Config{
		OpenAIAPIKey:    "sk",
		AnthropicAPIKey: "ak",
		GeminiAPIKey:    "gk",
	}
	store := FromConfig(cfg)
	for provider, want := range map[string]string{
		ProviderOpenAI:    "sk",
		ProviderAnthropic: "ak",
		ProviderGemini:    "gk",
	} {
		token, err := store.Token(provider)
		if err != nil {
			t.Fatalf("Token(%s) returned error: %v", provider, err)
		}
		if token != want {
			t.Fatalf("Token(%s) = %q, want %q", provider, token, want)
		}
	}
}
