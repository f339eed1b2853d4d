package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/optaimi/pulse/internal/domain/metric"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }
func sptr(s string) *string   { return &s }

func latencySamples(values ...float64) []metric.Sample {
	samples := make([]metric.Sample, len(values))
	for i, v := range values {
		samples[i] = metric.Sample{Timestamp: time.Now(), Model: "gpt-4o-mini", LatencyS: fptr(v)}
	}
	return samples
}

func tpsSamples(values ...float64) []metric.Sample {
	samples := make([]metric.Sample, len(values))
	for i, v := range values {
		samples[i] = metric.Sample{Timestamp: time.Now(), Model: "gpt-4o-mini", TPS: fptr(v)}
	}
	return samples
}

func TestEvaluate_EmptySamples(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			rule := &Rule{Kind: kind, Threshold: sptr("1")}
			result, err := Evaluate(rule, nil)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if result != nil {
				t.Errorf("Evaluate() = %+v, want no trigger for empty samples", result)
			}
		})
	}
}

func TestEvaluate_Latency(t *testing.T) {
	tests := []struct {
		name      string
		latencies []float64
		threshold string
		want      bool
		wantValue string
	}{
		{
			name:      "max above threshold triggers",
			latencies: []float64{0.2, 0.5, 0.9},
			threshold: "0.8",
			want:      true,
			wantValue: "0.900s",
		},
		{
			name:      "max below threshold does not trigger",
			latencies: []float64{0.2, 0.5},
			threshold: "0.8",
			want:      false,
		},
		{
			name:      "equality does not trigger",
			latencies: []float64{0.8},
			threshold: "0.8",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &Rule{Kind: KindLatency, Threshold: sptr(tt.threshold)}
			result, err := Evaluate(rule, latencySamples(tt.latencies...))
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if (result != nil) != tt.want {
				t.Fatalf("Evaluate() triggered = %v, want %v", result != nil, tt.want)
			}
			if result == nil {
				return
			}
			if result.Value != tt.wantValue {
				t.Errorf("Evaluate() value = %q, want %q", result.Value, tt.wantValue)
			}
			if result.Threshold != "0.8s" {
				t.Errorf("Evaluate() threshold = %q, want %q", result.Threshold, "0.8s")
			}
			if result.Comparison != "0.900s > 0.8s" {
				t.Errorf("Evaluate() comparison = %q, want %q", result.Comparison, "0.900s > 0.8s")
			}
		})
	}
}

func TestEvaluate_LatencyMissingTreatedAsZero(t *testing.T) {
	samples := []metric.Sample{
		{Model: "gpt-4o-mini"},
		{Model: "gpt-4o-mini", LatencyS: fptr(0.5)},
	}
	rule := &Rule{Kind: KindLatency, Threshold: sptr("0.4")}
	result, err := Evaluate(rule, samples)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result == nil || result.Value != "0.500s" {
		t.Errorf("Evaluate() = %+v, want trigger on 0.500s", result)
	}
}

func TestEvaluate_TPSDrop(t *testing.T) {
	// avg=80, min=40, drop=50%
	tests := []struct {
		name      string
		threshold string
		want      bool
	}{
		{name: "drop above threshold triggers", threshold: "30", want: true},
		{name: "drop below threshold does not trigger", threshold: "60", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &Rule{Kind: KindTPSDrop, Threshold: sptr(tt.threshold)}
			result, err := Evaluate(rule, tpsSamples(100, 100, 40))
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if (result != nil) != tt.want {
				t.Fatalf("Evaluate() triggered = %v, want %v", result != nil, tt.want)
			}
			if result != nil && result.Value != "50.00%" {
				t.Errorf("Evaluate() value = %q, want %q", result.Value, "50.00%")
			}
			if result != nil && result.Comparison != "50.00% > 30.0%" {
				t.Errorf("Evaluate() comparison = %q, want %q", result.Comparison, "50.00% > 30.0%")
			}
		})
	}
}

func TestEvaluate_TPSDropNoThroughputData(t *testing.T) {
	rule := &Rule{Kind: KindTPSDrop, Threshold: sptr("30")}
	result, err := Evaluate(rule, latencySamples(0.5, 0.9))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result != nil {
		t.Errorf("Evaluate() = %+v, want no trigger when no sample carries throughput", result)
	}
}

func TestEvaluate_CostPerMTok(t *testing.T) {
	samples := []metric.Sample{{
		Model:     "gpt-4o-mini",
		CostUSD:   fptr(0.002),
		InTokens:  iptr(500),
		OutTokens: iptr(500),
	}}

	rule := &Rule{Kind: KindCostPerMTok, Threshold: sptr("1.5")}
	result, err := Evaluate(rule, samples)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result == nil {
		t.Fatal("Evaluate() = nil, want trigger at $2.00 per MTok over $1.5")
	}
	if result.Value != "$2.00" {
		t.Errorf("Evaluate() value = %q, want %q", result.Value, "$2.00")
	}
	if result.Threshold != "$1.5" {
		t.Errorf("Evaluate() threshold = %q, want %q", result.Threshold, "$1.5")
	}
	if result.Comparison != "$2.00 > $1.5" {
		t.Errorf("Evaluate() comparison = %q, want %q", result.Comparison, "$2.00 > $1.5")
	}
}

func TestEvaluate_CostPerMTokIncompleteSamples(t *testing.T) {
	// Cost present but token counts missing: cannot compute, so no trigger
	samples := []metric.Sample{
		{Model: "gpt-4o-mini", CostUSD: fptr(5.0)},
		{Model: "gpt-4o-mini", CostUSD: fptr(5.0), InTokens: iptr(100)},
	}
	rule := &Rule{Kind: KindCostPerMTok, Threshold: sptr("0.01")}
	result, err := Evaluate(rule, samples)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result != nil {
		t.Errorf("Evaluate() = %+v, want no trigger when cost cannot be computed", result)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	samples := []metric.Sample{
		{Model: "gpt-4o-mini", LatencyS: fptr(0.3)},
		{Model: "gpt-4o-mini", Error: sptr("connection reset")},
		{Model: "claude-3-5-haiku", Error: sptr("timeout")},
	}

	// Threshold is irrelevant for the error kind
	rule := &Rule{Kind: KindError, Threshold: sptr("9999")}
	result, err := Evaluate(rule, samples)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result == nil {
		t.Fatal("Evaluate() = nil, want trigger when any sample carries an error")
	}
	if result.Value != "2 error(s)" {
		t.Errorf("Evaluate() value = %q, want %q", result.Value, "2 error(s)")
	}
	if result.Threshold != "Any errors" {
		t.Errorf("Evaluate() threshold = %q, want %q", result.Threshold, "Any errors")
	}
}

func TestEvaluate_ErrorsNoneDetected(t *testing.T) {
	rule := &Rule{Kind: KindError}
	result, err := Evaluate(rule, latencySamples(0.3))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result != nil {
		t.Errorf("Evaluate() = %+v, want no trigger without probe errors", result)
	}
}

func TestEvaluate_DigestAlwaysTriggers(t *testing.T) {
	rule := &Rule{Kind: KindDigest, Window: metric.Window7d}
	result, err := Evaluate(rule, latencySamples(0.3))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result == nil {
		t.Fatal("Evaluate() = nil, want digest to trigger with a single sample")
	}
	if result.Value != "1 data points" {
		t.Errorf("Evaluate() value = %q, want %q", result.Value, "1 data points")
	}
	if result.Comparison != "1 tests in 7d window" {
		t.Errorf("Evaluate() comparison = %q, want %q", result.Comparison, "1 tests in 7d window")
	}
}

func TestEvaluate_ThresholdErrors(t *testing.T) {
	tests := []struct {
		name      string
		threshold *string
		wantErr   error
	}{
		{name: "missing threshold", threshold: nil, wantErr: ErrThresholdMissing},
		{name: "malformed threshold", threshold: sptr("not-a-number"), wantErr: ErrThresholdInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &Rule{Kind: KindLatency, Threshold: tt.threshold}
			_, err := Evaluate(rule, latencySamples(0.9))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Evaluate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEvaluate_ThresholdRendering(t *testing.T) {
	// Integral thresholds keep a decimal point, fractional ones render
	// in shortest form. Pins the strings emails and the API expose.
	tests := []struct {
		name       string
		rule       *Rule
		samples    []metric.Sample
		threshold  string
		comparison string
	}{
		{
			name:       "integral latency threshold",
			rule:       &Rule{Kind: KindLatency, Threshold: sptr("2")},
			samples:    latencySamples(3.0),
			threshold:  "2.0s",
			comparison: "3.000s > 2.0s",
		},
		{
			name:       "fractional latency threshold",
			rule:       &Rule{Kind: KindLatency, Threshold: sptr("0.8")},
			samples:    latencySamples(0.9),
			threshold:  "0.8s",
			comparison: "0.900s > 0.8s",
		},
		{
			name:       "integral tps drop threshold",
			rule:       &Rule{Kind: KindTPSDrop, Threshold: sptr("30")},
			samples:    tpsSamples(100, 100, 40),
			threshold:  "30.0%",
			comparison: "50.00% > 30.0%",
		},
		{
			name: "integral cost threshold",
			rule: &Rule{Kind: KindCostPerMTok, Threshold: sptr("5")},
			samples: []metric.Sample{{
				Model:     "gpt-4o-mini",
				CostUSD:   fptr(0.006),
				InTokens:  iptr(500),
				OutTokens: iptr(500),
			}},
			threshold:  "$5.0",
			comparison: "$6.00 > $5.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Evaluate(tt.rule, tt.samples)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if result == nil {
				t.Fatal("Evaluate() = nil, want trigger")
			}
			if result.Threshold != tt.threshold {
				t.Errorf("Evaluate() threshold = %q, want %q", result.Threshold, tt.threshold)
			}
			if result.Comparison != tt.comparison {
				t.Errorf("Evaluate() comparison = %q, want %q", result.Comparison, tt.comparison)
			}
		})
	}
}

func TestEvaluate_UnknownKind(t *testing.T) {
	rule := &Rule{Kind: Kind("spike")}
	_, err := Evaluate(rule, latencySamples(0.9))
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Evaluate() error = %v, want %v", err, ErrUnknownKind)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	rule := &Rule{Kind: KindTPSDrop, Threshold: sptr("30")}
	samples := tpsSamples(100, 100, 40)

	first, err := Evaluate(rule, samples)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Evaluate(rule, samples)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if *again != *first {
			t.Fatalf("Evaluate() run %d = %+v, want identical %+v", i, again, first)
		}
	}
}
