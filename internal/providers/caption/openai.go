package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"captioner/internal/domain"
)

// OpenAIOptions controls how the OpenAI captioner is configured.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
}

// OpenAICaptioner captions images through the chat completions endpoint,
// embedding the image as a base64 data URL content part.
type OpenAICaptioner struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
}

const openAIDefaultTimeout = 60 * time.Second

type openAIChatRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAICaptioner validates the options and returns a ready captioner.
func NewOpenAICaptioner(opts OpenAIOptions) (*OpenAICaptioner, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("openai model is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAICaptioner{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        strings.TrimSpace(opts.Model),
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}, nil
}

// Model returns the configured model identifier.
func (o *OpenAICaptioner) Model() string {
	return o.model
}

// Caption sends one image and returns the provider's caption text verbatim.
func (o *OpenAICaptioner) Caption(ctx context.Context, req Request) (string, error) {
	dataURL := fmt.Sprintf("data:image/%s;base64,%s", req.Subtype, base64.StdEncoding.EncodeToString(req.Data))
	payload := openAIChatRequest{
		Model:     o.model,
		MaxTokens: maxCaptionTokens,
		Messages: []openAIMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: []openAIContentPart{
				{Type: "text", Text: req.UserMessage},
				{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL}},
			}},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: openai: encode request: %v", domain.ErrProvider, err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: openai: build request: %v", domain.ErrProvider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", domain.ErrProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: openai status %d: %s", domain.ErrProvider, resp.StatusCode, readErrorBody(resp.Body))
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: openai: decode response: %v", domain.ErrProvider, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: response carried no choices", domain.ErrProvider)
	}
	caption := out.Choices[0].Message.Content
	if caption == "" {
		return "", fmt.Errorf("%w: openai: response carried no caption text", domain.ErrProvider)
	}
	return caption, nil
}

var _ Captioner = (*OpenAICaptioner)(nil)

// readErrorBody returns a bounded snippet of a non-success response body for
// error messages.
func readErrorBody(body io.Reader) string {
	snippet, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(snippet) == 0 {
		return "<no body>"
	}
	return strings.TrimSpace(string(snippet))
}
