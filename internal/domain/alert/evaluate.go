package alert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/optaimi/pulse/internal/domain/metric"
)

var (
	// ErrThresholdMissing is returned when a kind that needs a threshold has none
	ErrThresholdMissing = errors.New("alert threshold is missing")
	// ErrThresholdInvalid is returned when the stored threshold does not parse
	ErrThresholdInvalid = errors.New("alert threshold is not a valid number")
	// ErrUnknownKind is returned for a kind outside the closed enum
	ErrUnknownKind = errors.New("unknown alert kind")
)

// Evaluate decides whether the rule triggers against the given samples.
// It is a pure function: no clock reads, no I/O, deterministic for identical
// input. A nil result with a nil error means "did not trigger". An empty
// sample set never triggers, digest included.
func Evaluate(r *Rule, samples []metric.Sample) (*TriggerResult, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	switch r.Kind {
	case KindLatency:
		return evalLatency(r, samples)
	case KindTPSDrop:
		return evalTPSDrop(r, samples)
	case KindCostPerMTok:
		return evalCostPerMTok(r, samples)
	case KindError:
		return evalErrors(samples), nil
	case KindDigest:
		return evalDigest(r, samples), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
}

// evalLatency triggers when the worst observed latency exceeds the threshold.
// Samples without a latency measurement count as zero.
func evalLatency(r *Rule, samples []metric.Sample) (*TriggerResult, error) {
	threshold, err := r.ThresholdValue()
	if err != nil {
		return nil, err
	}

	var max float64
	for _, s := range samples {
		v := 0.0
		if s.LatencyS != nil {
			v = *s.LatencyS
		}
		if v > max {
			max = v
		}
	}

	if max <= threshold {
		return nil, nil
	}
	return &TriggerResult{
		Triggered:  true,
		Metric:     "Latency",
		Value:      fmt.Sprintf("%.3fs", max),
		Threshold:  formatNum(threshold) + "s",
		Comparison: fmt.Sprintf("%.3fs > %ss", max, formatNum(threshold)),
	}, nil
}

// evalTPSDrop triggers when the gap between average and minimum throughput,
// as a percentage of the average, exceeds the threshold. Samples without a
// throughput measurement are ignored; if none carry one, nothing triggers.
func evalTPSDrop(r *Rule, samples []metric.Sample) (*TriggerResult, error) {
	threshold, err := r.ThresholdValue()
	if err != nil {
		return nil, err
	}

	var sum, min float64
	var n int
	for _, s := range samples {
		if s.TPS == nil {
			continue
		}
		v := *s.TPS
		if n == 0 || v < min {
			min = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return nil, nil
	}

	avg := sum / float64(n)
	drop := 0.0
	if avg > 0 {
		drop = (avg - min) / avg * 100
	}

	if drop <= threshold {
		return nil, nil
	}
	return &TriggerResult{
		Triggered:  true,
		Metric:     "TPS Drop",
		Value:      fmt.Sprintf("%.2f%%", drop),
		Threshold:  formatNum(threshold) + "%",
		Comparison: fmt.Sprintf("%.2f%% > %s%%", drop, formatNum(threshold)),
	}, nil
}

// evalCostPerMTok triggers when the worst per-sample cost per million tokens
// exceeds the threshold. Only samples carrying cost and both token counts
// participate; "cannot compute" is not a trigger.
func evalCostPerMTok(r *Rule, samples []metric.Sample) (*TriggerResult, error) {
	threshold, err := r.ThresholdValue()
	if err != nil {
		return nil, err
	}

	var max float64
	found := false
	for _, s := range samples {
		if s.CostUSD == nil || s.InTokens == nil || s.OutTokens == nil {
			continue
		}
		total := *s.InTokens + *s.OutTokens
		if total <= 0 {
			continue
		}
		costPerMTok := *s.CostUSD / float64(total) * 1_000_000
		if !found || costPerMTok > max {
			max = costPerMTok
		}
		found = true
	}
	if !found {
		return nil, nil
	}

	if max <= threshold {
		return nil, nil
	}
	return &TriggerResult{
		Triggered:  true,
		Metric:     "Cost per Million Tokens",
		Value:      fmt.Sprintf("$%.2f", max),
		Threshold:  "$" + formatNum(threshold),
		Comparison: fmt.Sprintf("$%.2f > $%s", max, formatNum(threshold)),
	}, nil
}

// evalErrors triggers on any sample whose probe failed. The rule threshold
// is ignored for this kind.
func evalErrors(samples []metric.Sample) *TriggerResult {
	var count int
	for _, s := range samples {
		if s.Error != nil {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return &TriggerResult{
		Triggered:  true,
		Metric:     "Errors",
		Value:      fmt.Sprintf("%d error(s)", count),
		Threshold:  "Any errors",
		Comparison: fmt.Sprintf("%d error(s) detected", count),
	}
}

// evalDigest always triggers; the evidence is a summary, not an anomaly.
func evalDigest(r *Rule, samples []metric.Sample) *TriggerResult {
	return &TriggerResult{
		Triggered:  true,
		Metric:     "Performance Summary",
		Value:      fmt.Sprintf("%d data points", len(samples)),
		Threshold:  "N/A",
		Comparison: fmt.Sprintf("%d tests in %s window", len(samples), r.Window.Normalize()),
	}
}

// formatNum renders a threshold in shortest decimal form, always keeping a
// decimal point (0.8 -> "0.8", 30 -> "30.0")
func formatNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
