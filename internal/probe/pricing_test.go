package probe

import (
	"math"
	"testing"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		inTokens  int64
		outTokens int64
		want      float64
		known     bool
	}{
		{
			name:      "gpt-4o-mini",
			model:     "gpt-4o-mini",
			inTokens:  1000,
			outTokens: 500,
			// 1000*0.15/1M + 500*0.60/1M
			want:  0.00045,
			known: true,
		},
		{
			name:      "haiku",
			model:     "claude-3-5-haiku-20241022",
			inTokens:  2000,
			outTokens: 1000,
			want:      0.0056,
			known:     true,
		},
		{
			name:      "zero tokens",
			model:     "deepseek-chat",
			inTokens:  0,
			outTokens: 0,
			want:      0,
			known:     true,
		},
		{
			name:  "unknown model",
			model: "unpriced-model",
			known: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Cost(tt.model, tt.inTokens, tt.outTokens)
			if ok != tt.known {
				t.Fatalf("Cost() known = %v, want %v", ok, tt.known)
			}
			if !tt.known {
				return
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Cost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleResult(t *testing.T) {
	s := sampleResult("gpt-4o-mini", 2_000_000_000, 1000, 500) // 2s
	if s.LatencyS == nil || *s.LatencyS != 2.0 {
		t.Fatalf("latency = %v, want 2.0", s.LatencyS)
	}
	if s.TPS == nil || *s.TPS != 250 {
		t.Fatalf("tps = %v, want 250", s.TPS)
	}
	if s.CostUSD == nil {
		t.Fatal("cost missing for priced model")
	}
	if s.InTokens == nil || *s.InTokens != 1000 || s.OutTokens == nil || *s.OutTokens != 500 {
		t.Errorf("token counts = %v/%v", s.InTokens, s.OutTokens)
	}
}

func TestSampleError(t *testing.T) {
	s := sampleError("deepseek-chat", errTest)
	if s.Error == nil || *s.Error != "connection refused" {
		t.Fatalf("error = %v", s.Error)
	}
	if s.LatencyS != nil || s.TPS != nil || s.CostUSD != nil {
		t.Error("failure sample carries measurements")
	}
}

type testErr string

func (e testErr) Error() string { return string(e) }

var errTest = testErr("connection refused")
