// Package oaihttp is the chat-completions adapter shared by every
// supported vendor. It is deliberately retry-free: the orchestrator
// decides what to do with upstream failures.
package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/urbantwin/citytwin-backend/internal/ai"
)

type Config struct {
	Code    string
	Name    string
	BaseURL string
	APIKey  string

	// ChatCompletionsPath overrides the default /chat/completions,
	// for vendors that nest it differently.
	ChatCompletionsPath string
	Timeout             time.Duration

	// Models is the static catalog returned by ListModels when the
	// vendor has no usable models endpoint.
	Models []ai.ModelInfo
}

type Client struct {
	code    string
	name    string
	baseURL string
	apiKey  string

	chatCompletionsPath string
	timeout             time.Duration
	models              []ai.ModelInfo

	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oaihttp: base_url required")
	}
	if strings.TrimSpace(cfg.Code) == "" {
		return nil, errors.New("oaihttp: code required")
	}

	chatPath := strings.TrimSpace(cfg.ChatCompletionsPath)
	if chatPath == "" {
		chatPath = "/chat/completions"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		code:                cfg.Code,
		name:                cfg.Name,
		baseURL:             baseURL,
		apiKey:              strings.TrimSpace(cfg.APIKey),
		chatCompletionsPath: chatPath,
		timeout:             timeout,
		models:              cfg.Models,
		httpClient:          &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg Config, httpClient *http.Client) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

func (c *Client) Code() string { return c.code }

func (c *Client) Name() string {
	if c.name != "" {
		return c.name
	}
	return c.code
}

type chatCompletionRequest struct {
	Model       string       `json:"model"`
	Messages    []ai.Message `json:"messages"`
	Tools       []ai.Tool    `json:"tools,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content   string        `json:"content,omitempty"`
			ToolCalls []ai.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message,omitempty"`
		FinishReason string `json:"finish_reason,omitempty"`
		Text         string `json:"text,omitempty"`
	} `json:"choices"`
	Usage ai.Usage `json:"usage"`
}

func (c *Client) ChatCompletion(ctx context.Context, req ai.ChatRequest) (*ai.ChatCompletion, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("no messages")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return nil, errors.New("no model")
	}

	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    req.Messages,
		Tools:       req.Tools,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp chatCompletionResponse
	if err := c.doJSON(ctx, "POST", c.chatCompletionsPath, reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty upstream completion")
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	if content == "" {
		content = choice.Text
	}

	respModel := resp.Model
	if respModel == "" {
		respModel = model
	}

	return &ai.ChatCompletion{
		Content:      content,
		ToolCalls:    choice.Message.ToolCalls,
		FinishReason: choice.FinishReason,
		Model:        respModel,
		Usage:        resp.Usage,
	}, nil
}

// ListModels returns the static per-vendor catalog. Vendors expose
// wildly inconsistent /models endpoints, so the catalog is pinned at
// build time instead of probed.
func (c *Client) ListModels(_ context.Context) ([]ai.ModelInfo, error) {
	out := make([]ai.ModelInfo, len(c.models))
	copy(out, c.models)
	return out, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", c.code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
