// Package codemaker is an HTTP client for the CodeMaker code generation API.
package codemaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the public API endpoint.
const DefaultEndpoint = "https://api.codemaker.ai"

// DefaultTimeout bounds a single API call. Generation over large files is slow.
const DefaultTimeout = 10 * time.Minute

// maxErrorBody caps how much of an error response is kept in APIError.
const maxErrorBody = 2048

// Config configures a Client.
type Config struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client calls the CodeMaker API. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	endpoint  string
	apiKey    string
	userAgent string
}

// NewClient creates a client. An empty endpoint selects DefaultEndpoint.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", cfg.Endpoint)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "codemaker-cli"
	}

	return &Client{
		http:      httpClient,
		endpoint:  endpoint,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		userAgent: userAgent,
	}, nil
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Process generates code or documentation for a source file.
func (c *Client) Process(ctx context.Context, req *ProcessRequest) (*ProcessResponse, error) {
	var resp ProcessResponse
	if err := c.do(ctx, "process", "/v2/process", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Predict starts predictive generation for a source file. The service
// returns no content.
func (c *Client) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	var resp PredictResponse
	if err := c.do(ctx, "predict", "/v2/predict", req, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Completion returns an inline suggestion at the locator in the request.
func (c *Client) Completion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	var resp CompletionResponse
	if err := c.do(ctx, "completion", "/v2/completion", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DiscoverContext returns the dependency references found in a file.
func (c *Client) DiscoverContext(ctx context.Context, req *DiscoverContextRequest) (*DiscoverContextResponse, error) {
	var resp DiscoverContextResponse
	if err := c.do(ctx, "discover context", "/v2/context/discover", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateContext opens a server-side context and returns its id.
func (c *Client) CreateContext(ctx context.Context, req *CreateContextRequest) (*CreateContextResponse, error) {
	var resp CreateContextResponse
	if err := c.do(ctx, "create context", "/v2/context/create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterContext attaches files to a context created by CreateContext.
func (c *Client) RegisterContext(ctx context.Context, req *RegisterContextRequest) (*RegisterContextResponse, error) {
	var resp RegisterContextResponse
	if err := c.do(ctx, "register context", "/v2/context/register", req, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssistantCompletion sends a chat message to the assistant.
func (c *Client) AssistantCompletion(ctx context.Context, req *AssistantCompletionRequest) (*AssistantCompletionResponse, error) {
	var resp AssistantCompletionResponse
	if err := c.do(ctx, "assistant completion", "/v2/assistant/completion", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssistantCodeCompletion sends a message about a file and returns the
// assistant's reply with a proposed rewrite.
func (c *Client) AssistantCodeCompletion(ctx context.Context, req *AssistantCodeCompletionRequest) (*AssistantCodeCompletionResponse, error) {
	var resp AssistantCodeCompletionResponse
	if err := c.do(ctx, "assistant code completion", "/v2/assistant/code-completion", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssistantSpeechCompletion is AssistantCompletion with a spoken reply.
func (c *Client) AssistantSpeechCompletion(ctx context.Context, req *AssistantSpeechCompletionRequest) (*AssistantSpeechCompletionResponse, error) {
	var resp AssistantSpeechCompletionResponse
	if err := c.do(ctx, "assistant speech completion", "/v2/assistant/speech-completion", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListModels returns the models available to the API key.
func (c *Client) ListModels(ctx context.Context, req *ListModelsRequest) (*ListModelsResponse, error) {
	var resp ListModelsResponse
	if err := c.do(ctx, "list models", "/v2/models/list", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do posts in as JSON to path and decodes the response body into out. A nil
// out discards the body; otherwise an empty body is ErrEmptyResponse.
func (c *Client) do(ctx context.Context, op, path string, in, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%s: %w: no API key configured", op, ErrUnauthorized)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(b)),
		}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
