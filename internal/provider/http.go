package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/newsfuse/internal/logger"
)

const defaultHTTPTimeout = 60 * time.Second

// HTTPConfig configures the HTTP provider client.
type HTTPConfig struct {
	// BaseURL of the model service.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey sent as a bearer token when non-empty.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Timeout for a single call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// HTTPClient talks to a model service exposing text/image embedding and text
// generation endpoints. It implements both Embedder and Generator.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Interface
}

var (
	_ Embedder  = (*HTTPClient)(nil)
	_ Generator = (*HTTPClient)(nil)
)

// NewHTTPClient creates a new HTTP provider client.
func NewHTTPClient(cfg HTTPConfig, log logger.Interface) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("provider"),
	}
}

type embedTextRequest struct {
	Text string `json:"text"`
}

type embedImageRequest struct {
	ImageURL string `json:"image_url"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// EmbedText returns the embedding vector for the given text.
func (c *HTTPClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	if err := c.post(ctx, "/v1/embed/text", embedTextRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty text embedding", ErrProviderFailure)
	}
	return resp.Embedding, nil
}

// EmbedImage returns the embedding vector for the image at the given URL.
func (c *HTTPClient) EmbedImage(ctx context.Context, imageURL string) ([]float32, error) {
	var resp embedResponse
	if err := c.post(ctx, "/v1/embed/image", embedImageRequest{ImageURL: imageURL}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty image embedding", ErrProviderFailure)
	}
	return resp.Embedding, nil
}

// Generate produces text from the given prompt.
func (c *HTTPClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := generateRequest{
		Prompt:      prompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	var resp generateResponse
	if err := c.post(ctx, "/v1/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// post sends a JSON request and decodes a JSON response.
func (c *HTTPClient) post(ctx context.Context, path string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %w", ErrProviderFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrProviderFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProviderFailure, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return fmt.Errorf("%w: %s returned status %d", ErrProviderFailure, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrProviderFailure, path, err)
	}

	c.logger.Debug("provider call completed", "path", path, "duration", time.Since(start))
	return nil
}
