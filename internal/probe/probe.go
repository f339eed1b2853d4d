// Package probe measures live LLM endpoint performance. Each Prober sends a
// fixed prompt to one provider and reduces the exchange to a single metric
// sample: latency, tokens per second, token counts and estimated cost.
// Failures are captured in the sample's error field rather than returned, so
// an unreachable provider still produces a row.
package probe

import (
	"context"
	"sync"
	"time"

	"github.com/optaimi/pulse/internal/config"
	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/metrics"
)

// Prober measures one provider endpoint
type Prober interface {
	// Model returns the model identifier the prober tests
	Model() string

	// Probe runs one measurement. The returned sample always carries the
	// model and timestamp; on failure it carries the error text instead of
	// numbers.
	Probe(ctx context.Context) metric.Sample
}

// Set runs a group of probers and stores their samples
type Set struct {
	probers []Prober
	samples metric.Repository
	logger  *logger.Logger
	now     func() time.Time
}

// NewSet builds the probe set for every provider with a configured API key
func NewSet(cfg config.ProbeConfig, samples metric.Repository, log *logger.Logger) *Set {
	var probers []Prober

	if cfg.OpenAIAPIKey != "" {
		probers = append(probers, NewOpenAIProber(
			"gpt-4o-mini", cfg.OpenAIAPIKey, "", cfg.Prompt, cfg.MaxTokens,
		))
	}
	if cfg.AnthropicAPIKey != "" {
		probers = append(probers, NewAnthropicProber(
			"claude-3-5-haiku-20241022", cfg.AnthropicAPIKey, cfg.Prompt, cfg.MaxTokens, cfg.Timeout,
		))
	}
	if cfg.DeepSeekAPIKey != "" {
		probers = append(probers, NewOpenAIProber(
			"deepseek-chat", cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.Prompt, cfg.MaxTokens,
		))
	}

	return &Set{
		probers: probers,
		samples: samples,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock overrides the sample timestamp source
func (s *Set) WithClock(now func() time.Time) *Set {
	s.now = now
	return s
}

// Run probes every provider concurrently and inserts one sample per probe.
// It returns the samples and the count of storage failures.
func (s *Set) Run(ctx context.Context) ([]metric.Sample, int) {
	results := make([]metric.Sample, len(s.probers))

	var wg sync.WaitGroup
	for i, p := range s.probers {
		wg.Add(1)
		go func(i int, p Prober) {
			defer wg.Done()
			sample := p.Probe(ctx)
			sample.Timestamp = s.now()
			results[i] = sample

			status := "ok"
			if sample.Error != nil {
				status = "error"
			}
			metrics.RecordProbe(p.Model(), status)
			if sample.LatencyS != nil {
				metrics.RecordProbeLatency(p.Model(), *sample.LatencyS)
			}
		}(i, p)
	}
	wg.Wait()

	failed := 0
	for i := range results {
		if err := s.samples.Insert(ctx, &results[i]); err != nil {
			failed++
			s.logger.WithFields(map[string]interface{}{
				"model": results[i].Model,
			}).ErrorWithErr(err, "Failed to store probe result")
		}
	}

	return results, failed
}

// sampleError builds a failure sample for the given model
func sampleError(model string, err error) metric.Sample {
	msg := err.Error()
	return metric.Sample{Model: model, Error: &msg}
}

// sampleResult builds a success sample from raw measurements
func sampleResult(model string, latency time.Duration, inTokens, outTokens int64) metric.Sample {
	latencyS := latency.Seconds()
	s := metric.Sample{
		Model:     model,
		LatencyS:  &latencyS,
		InTokens:  &inTokens,
		OutTokens: &outTokens,
	}
	if latencyS > 0 {
		tps := float64(outTokens) / latencyS
		s.TPS = &tps
	}
	if cost, ok := Cost(model, inTokens, outTokens); ok {
		s.CostUSD = &cost
	}
	return s
}
