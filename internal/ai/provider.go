// Package ai defines the vendor-neutral LLM provider contract. Every
// supported vendor speaks the OpenAI chat-completions dialect, so one
// HTTP adapter covers all of them and only base URL, key and model
// catalog differ per vendor.
package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool is one function the model may call, in OpenAI tool format.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name string `json:"name"`
	// Arguments is the raw JSON string the vendor returns; decoding is
	// the caller's problem because malformed payloads must not fail
	// the whole completion.
	Arguments string `json:"arguments"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Tools       []Tool    `json:"tools,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatCompletion struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
	Model        string     `json:"model"`
	Usage        Usage      `json:"usage"`
}

type ModelInfo struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	Description   string `json:"description,omitempty"`
	ContextLength int    `json:"context_length"`
	MaxTokens     int    `json:"max_tokens"`
	IsFree        bool   `json:"is_free"`
	// Prices are per 1K tokens in CNY; 0 for free and local models.
	InputPrice              float64 `json:"input_price"`
	OutputPrice             float64 `json:"output_price"`
	SupportsFunctionCalling bool    `json:"supports_function_calling"`
	SupportsVision          bool    `json:"supports_vision"`
}

type Provider interface {
	Code() string
	Name() string
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatCompletion, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
