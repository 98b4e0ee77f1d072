package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"captioner/internal/domain"
)

// AnthropicOptions controls how the Anthropic captioner is configured.
type AnthropicOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// AnthropicCaptioner captions images through the messages endpoint, embedding
// the image as a base64 source block ahead of the text instruction.
type AnthropicCaptioner struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

const (
	anthropicDefaultTimeout = 60 * time.Second
	anthropicVersion        = "2023-06-01"
)

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropicCaptioner validates the options and returns a ready captioner.
func NewAnthropicCaptioner(opts AnthropicOptions) (*AnthropicCaptioner, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("anthropic model is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: anthropicDefaultTimeout}
	}
	return &AnthropicCaptioner{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   strings.TrimSpace(opts.Model),
		baseURL: baseURL,
		client:  client,
	}, nil
}

// Model returns the configured model identifier.
func (a *AnthropicCaptioner) Model() string {
	return a.model
}

// Caption sends one image and returns the provider's caption text verbatim.
func (a *AnthropicCaptioner) Caption(ctx context.Context, req Request) (string, error) {
	payload := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxCaptionTokens,
		System:    req.SystemPrompt,
		Messages: []anthropicMessage{{
			Role: "user",
			Content: []anthropicBlock{
				{Type: "image", Source: &anthropicImageSource{
					Type:      "base64",
					MediaType: "image/" + req.Subtype,
					Data:      base64.StdEncoding.EncodeToString(req.Data),
				}},
				{Type: "text", Text: req.UserMessage},
			},
		}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: anthropic: encode request: %v", domain.ErrProvider, err)
	}
	endpoint := fmt.Sprintf("%s/v1/messages", a.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: build request: %v", domain.ErrProvider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %v", domain.ErrProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: anthropic status %d: %s", domain.ErrProvider, resp.StatusCode, readErrorBody(resp.Body))
	}
	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: anthropic: decode response: %v", domain.ErrProvider, err)
	}
	for _, block := range out.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: anthropic: response carried no text block", domain.ErrProvider)
}

var _ Captioner = (*AnthropicCaptioner)(nil)
