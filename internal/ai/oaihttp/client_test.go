package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/urbantwin/citytwin-backend/internal/ai"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func testConfig() Config {
	return Config{
		Code:    "zhipu",
		Name:    "智谱AI",
		BaseURL: "http://upstream/api/paas/v4",
		APIKey:  "sk-test",
		Timeout: 2 * time.Second,
	}
}

func jsonResponse(status int, body any) *http.Response {
	b, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func TestChatCompletion(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/api/paas/v4/chat/completions" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
				t.Fatalf("authorization=%q", got)
			}

			var in chatCompletionRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if in.Model != "glm-4-flash" {
				t.Fatalf("model=%q", in.Model)
			}
			if len(in.Messages) != 2 || in.Messages[0].Role != "system" {
				t.Fatalf("messages=%+v", in.Messages)
			}

			return jsonResponse(http.StatusOK, map[string]any{
				"model": "glm-4-flash",
				"choices": []map[string]any{{
					"message":       map[string]any{"content": "你好"},
					"finish_reason": "stop",
				}},
				"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
			}), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := c.ChatCompletion(context.Background(), ai.ChatRequest{
		Model: "glm-4-flash",
		Messages: []ai.Message{
			{Role: "system", Content: "you are a city assistant"},
			{Role: "user", Content: "hi"},
		},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if out.Content != "你好" {
		t.Fatalf("content=%q", out.Content)
	}
	if out.FinishReason != "stop" {
		t.Fatalf("finish_reason=%q", out.FinishReason)
	}
	if out.Usage.TotalTokens != 15 {
		t.Fatalf("total_tokens=%d", out.Usage.TotalTokens)
	}
}

func TestChatCompletionToolCalls(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			var in chatCompletionRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if len(in.Tools) != 1 || in.Tools[0].Function.Name != "camera_flyTo" {
				t.Fatalf("tools=%+v", in.Tools)
			}

			return jsonResponse(http.StatusOK, map[string]any{
				"choices": []map[string]any{{
					"message": map[string]any{
						"content": "",
						"tool_calls": []map[string]any{{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "camera_flyTo",
								"arguments": `{"longitude":116.4074,"latitude":39.9042}`,
							},
						}},
					},
					"finish_reason": "tool_calls",
				}},
			}), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := c.ChatCompletion(context.Background(), ai.ChatRequest{
		Model:    "glm-4-flash",
		Messages: []ai.Message{{Role: "user", Content: "fly to beijing"}},
		Tools: []ai.Tool{{
			Type: "function",
			Function: ai.ToolFunction{
				Name:       "camera_flyTo",
				Parameters: map[string]any{"type": "object"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(out.ToolCalls) != 1 {
		t.Fatalf("tool_calls=%d", len(out.ToolCalls))
	}
	tc := out.ToolCalls[0]
	if tc.Function.Name != "camera_flyTo" {
		t.Fatalf("tool name=%q", tc.Function.Name)
	}
	if !strings.Contains(tc.Function.Arguments, "116.4074") {
		t.Fatalf("arguments=%q", tc.Function.Arguments)
	}
}

func TestChatCompletionUpstreamError(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusUnauthorized,
				Body:       io.NopCloser(strings.NewReader(`{"error":"invalid api key"}`)),
			}, nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err = c.ChatCompletion(context.Background(), ai.ChatRequest{
		Model:    "glm-4-flash",
		Messages: []ai.Message{{Role: "user", Content: "hi"}},
	})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d", httpErr.StatusCode)
	}
}

func TestListModelsReturnsStaticCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.Models = []ai.ModelInfo{{Name: "glm-4-flash"}, {Name: "glm-4-plus"}}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list models: %v", err)
	}
	if len(models) != 2 || models[0].Name != "glm-4-flash" {
		t.Fatalf("models=%+v", models)
	}
}
