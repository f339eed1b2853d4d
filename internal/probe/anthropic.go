package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/optaimi/pulse/internal/domain/metric"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// AnthropicProber measures the Anthropic messages endpoint
type AnthropicProber struct {
	model     string
	apiKey    string
	prompt    string
	maxTokens int
	client    *http.Client
}

// NewAnthropicProber creates a prober for the Anthropic messages API
func NewAnthropicProber(model, apiKey, prompt string, maxTokens int, timeout time.Duration) *AnthropicProber {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicProber{
		model:     model,
		apiKey:    apiKey,
		prompt:    prompt,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

// Model returns the model identifier the prober tests
func (p *AnthropicProber) Model() string {
	return p.model
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Probe sends one message and measures the round trip
func (p *AnthropicProber) Probe(ctx context.Context) metric.Sample {
	body, err := json.Marshal(anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: p.prompt}},
	})
	if err != nil {
		return sampleError(p.model, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return sampleError(p.model, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := p.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return sampleError(p.model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return sampleError(p.model, err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return sampleError(p.model, fmt.Errorf("decode response: %w", err))
	}

	if resp.StatusCode >= 400 {
		if parsed.Error != nil {
			return sampleError(p.model, fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message))
		}
		return sampleError(p.model, fmt.Errorf("anthropic returned status %d", resp.StatusCode))
	}

	return sampleResult(p.model, latency, parsed.Usage.InputTokens, parsed.Usage.OutputTokens)
}
