package probe

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/optaimi/pulse/internal/domain/metric"
)

// OpenAIProber measures an OpenAI-compatible chat completion endpoint.
// A custom base URL points it at other providers speaking the same protocol,
// such as DeepSeek.
type OpenAIProber struct {
	model     string
	client    *openai.Client
	prompt    string
	maxTokens int
}

// NewOpenAIProber creates a prober for an OpenAI-compatible endpoint
func NewOpenAIProber(model, apiKey, baseURL, prompt string, maxTokens int) *OpenAIProber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProber{
		model:     model,
		client:    openai.NewClientWithConfig(cfg),
		prompt:    prompt,
		maxTokens: maxTokens,
	}
}

// Model returns the model identifier the prober tests
func (p *OpenAIProber) Model() string {
	return p.model
}

// Probe sends one chat completion and measures the round trip
func (p *OpenAIProber) Probe(ctx context.Context) metric.Sample {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: p.prompt,
		}},
		MaxTokens: p.maxTokens,
	})
	latency := time.Since(start)

	if err != nil {
		return sampleError(p.model, err)
	}

	return sampleResult(p.model, latency,
		int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens))
}
