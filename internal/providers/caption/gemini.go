package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"captioner/internal/domain"
)

// GeminiOptions controls how the Gemini captioner is configured.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiCaptioner captions images through the generateContent endpoint,
// embedding the image as an inlineData part.
type GeminiCaptioner struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

const geminiDefaultTimeout = 60 * time.Second

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	CandidateCount  int `json:"candidateCount,omitempty"`
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiCaptioner validates the options and returns a ready captioner.
func NewGeminiCaptioner(opts GeminiOptions) (*GeminiCaptioner, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("gemini model is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiCaptioner{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   strings.TrimSpace(opts.Model),
		baseURL: baseURL,
		client:  client,
	}, nil
}

// Model returns the configured model identifier.
func (g *GeminiCaptioner) Model() string {
	return g.model
}

// Caption sends one image and returns the provider's caption text verbatim.
func (g *GeminiCaptioner) Caption(ctx context.Context, req Request) (string, error) {
	payload := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		},
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MimeType: "image/" + req.Subtype,
					Data:     base64.StdEncoding.EncodeToString(req.Data),
				}},
				{Text: req.UserMessage},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:  1,
			MaxOutputTokens: maxCaptionTokens,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: gemini: encode request: %v", domain.ErrProvider, err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: build request: %v", domain.ErrProvider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: gemini status %d: %s", domain.ErrProvider, resp.StatusCode, readErrorBody(resp.Body))
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: gemini: decode response: %v", domain.ErrProvider, err)
	}
	for _, candidate := range out.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("%w: gemini: response carried no text part", domain.ErrProvider)
}

var _ Captioner = (*GeminiCaptioner)(nil)
