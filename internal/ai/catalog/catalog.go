// Package catalog pins the supported LLM vendors: their wire codes,
// display names, OpenAI-compatible endpoints and model lists.
package catalog

import (
	"sort"

	"github.com/urbantwin/citytwin-backend/internal/ai"
)

type Vendor struct {
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	BaseURL      string         `json:"base_url"`
	DefaultModel string         `json:"default_model"`
	Models       []ai.ModelInfo `json:"models"`
	// RequiresKey is false only for local runtimes such as Ollama.
	RequiresKey bool `json:"requires_key"`
}

var vendors = map[string]Vendor{
	"zhipu": {
		Code:         "zhipu",
		Name:         "智谱AI",
		BaseURL:      "https://open.bigmodel.cn/api/paas/v4",
		DefaultModel: "glm-4-flash",
		RequiresKey:  true,
		Models: []ai.ModelInfo{
			{Name: "glm-4-flash", DisplayName: "GLM-4 Flash", Description: "智谱AI免费模型，快速响应", ContextLength: 128000, MaxTokens: 8000, IsFree: true, SupportsFunctionCalling: true},
			{Name: "glm-4-air", DisplayName: "GLM-4 Air", Description: "智谱AI轻量模型", ContextLength: 128000, MaxTokens: 8000, InputPrice: 0.001, OutputPrice: 0.001, SupportsFunctionCalling: true},
			{Name: "glm-4-plus", DisplayName: "GLM-4 Plus", Description: "智谱AI增强模型，深度推理", ContextLength: 128000, MaxTokens: 8000, InputPrice: 0.01, OutputPrice: 0.01, SupportsFunctionCalling: true, SupportsVision: true},
		},
	},
	"qwen": {
		Code:         "qwen",
		Name:         "通义千问",
		BaseURL:      "https://dashscope.aliyuncs.com/compatible-mode/v1",
		DefaultModel: "qwen-turbo",
		RequiresKey:  true,
		Models: []ai.ModelInfo{
			{Name: "qwen-turbo", DisplayName: "Qwen Turbo", Description: "通义千问超高速模型", ContextLength: 8000, MaxTokens: 2000, IsFree: true, SupportsFunctionCalling: true},
			{Name: "qwen-plus", DisplayName: "Qwen Plus", Description: "通义千问增强版", ContextLength: 32000, MaxTokens: 6000, InputPrice: 0.008, OutputPrice: 0.008, SupportsFunctionCalling: true},
			{Name: "qwen-max", DisplayName: "Qwen Max", Description: "通义千问旗舰模型", ContextLength: 32768, MaxTokens: 8192, InputPrice: 0.02, OutputPrice: 0.06, SupportsFunctionCalling: true},
		},
	},
	"deepseek": {
		Code:         "deepseek",
		Name:         "DeepSeek",
		BaseURL:      "https://api.deepseek.com/v1",
		DefaultModel: "deepseek-chat",
		RequiresKey:  true,
		Models: []ai.ModelInfo{
			{Name: "deepseek-chat", DisplayName: "DeepSeek Chat", Description: "DeepSeek对话模型", ContextLength: 16000, MaxTokens: 4000, IsFree: true, InputPrice: 0.0001, OutputPrice: 0.0002, SupportsFunctionCalling: true},
			{Name: "deepseek-reasoner", DisplayName: "DeepSeek Reasoner", Description: "DeepSeek推理模型", ContextLength: 65536, MaxTokens: 8000, InputPrice: 0.004, OutputPrice: 0.016},
		},
	},
	"moonshot": {
		Code:         "moonshot",
		Name:         "Kimi",
		BaseURL:      "https://api.moonshot.cn/v1",
		DefaultModel: "moonshot-v1-8k",
		RequiresKey:  true,
		Models: []ai.ModelInfo{
			{Name: "moonshot-v1-8k", DisplayName: "Moonshot v1 8K", Description: "Kimi短上下文模型", ContextLength: 8192, MaxTokens: 4096, InputPrice: 0.012, OutputPrice: 0.012, SupportsFunctionCalling: true},
			{Name: "moonshot-v1-32k", DisplayName: "Moonshot v1 32K", Description: "Kimi中上下文模型", ContextLength: 32768, MaxTokens: 4096, InputPrice: 0.024, OutputPrice: 0.024, SupportsFunctionCalling: true},
			{Name: "moonshot-v1-128k", DisplayName: "Moonshot v1 128K", Description: "Kimi长上下文模型", ContextLength: 131072, MaxTokens: 4096, InputPrice: 0.06, OutputPrice: 0.06, SupportsFunctionCalling: true},
		},
	},
	"doubao": {
		Code:         "doubao",
		Name:         "豆包",
		BaseURL:      "https://ark.cn-beijing.volces.com/api/v3",
		DefaultModel: "doubao-pro-32k",
		RequiresKey:  true,
		Models: []ai.ModelInfo{
			{Name: "doubao-lite-32k", DisplayName: "Doubao Lite 32K", Description: "豆包轻量模型", ContextLength: 32768, MaxTokens: 4096, InputPrice: 0.0003, OutputPrice: 0.0006, SupportsFunctionCalling: true},
			{Name: "doubao-pro-32k", DisplayName: "Doubao Pro 32K", Description: "豆包专业模型", ContextLength: 32768, MaxTokens: 4096, InputPrice: 0.0008, OutputPrice: 0.002, SupportsFunctionCalling: true},
		},
	},
	"openai": {
		Code:         "openai",
		Name:         "OpenAI",
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4o-mini",
		RequiresKey:  true,
		Models: []ai.ModelInfo{
			{Name: "gpt-4o-mini", DisplayName: "GPT-4o mini", Description: "OpenAI轻量多模态模型", ContextLength: 128000, MaxTokens: 16384, InputPrice: 0.0011, OutputPrice: 0.0044, SupportsFunctionCalling: true, SupportsVision: true},
			{Name: "gpt-4o", DisplayName: "GPT-4o", Description: "OpenAI旗舰多模态模型", ContextLength: 128000, MaxTokens: 16384, InputPrice: 0.018, OutputPrice: 0.072, SupportsFunctionCalling: true, SupportsVision: true},
		},
	},
	"ollama": {
		Code:         "ollama",
		Name:         "Ollama",
		BaseURL:      "http://localhost:11434/v1",
		DefaultModel: "qwen2.5",
		RequiresKey:  false,
		Models: []ai.ModelInfo{
			{Name: "qwen2.5", DisplayName: "Qwen 2.5", Description: "本地部署的通义千问模型", ContextLength: 32768, MaxTokens: 4096, IsFree: true, SupportsFunctionCalling: true},
			{Name: "llama3.1", DisplayName: "Llama 3.1", Description: "本地部署的Llama模型", ContextLength: 131072, MaxTokens: 4096, IsFree: true, SupportsFunctionCalling: true},
		},
	},
}

func Get(code string) (Vendor, bool) {
	v, ok := vendors[code]
	return v, ok
}

// All returns the vendor list sorted by code so responses are stable.
func All() []Vendor {
	out := make([]Vendor, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func Codes() []string {
	out := make([]string, 0, len(vendors))
	for code := range vendors {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
