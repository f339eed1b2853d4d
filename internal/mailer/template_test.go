package mailer

import (
	"strings"
	"testing"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
)

func TestAlertSubject(t *testing.T) {
	tests := []struct {
		name string
		rule *alert.Rule
		want string
	}{
		{
			name: "model-scoped latency alert",
			rule: &alert.Rule{Kind: alert.KindLatency, Model: "gpt-4o-mini"},
			want: "Alert: High Latency for gpt-4o-mini",
		},
		{
			name: "all-models error alert",
			rule: &alert.Rule{Kind: alert.KindError},
			want: "Alert: Errors Detected for All Models",
		},
		{
			name: "digest has no model suffix",
			rule: &alert.Rule{Kind: alert.KindDigest, Model: "gpt-4o-mini"},
			want: "Alert: Performance Digest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlertSubject(tt.rule); got != tt.want {
				t.Errorf("AlertSubject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAlertBody(t *testing.T) {
	rule := &alert.Rule{Kind: alert.KindLatency, Model: "gpt-4o-mini"}
	result := &alert.TriggerResult{
		Triggered:  true,
		Metric:     "Latency",
		Value:      "0.900s",
		Threshold:  "0.8s",
		Comparison: "0.900s > 0.8s",
	}
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	body, err := AlertBody(rule, result, now, "https://pulse.example.com")
	if err != nil {
		t.Fatalf("AlertBody() error = %v", err)
	}

	for _, want := range []string{
		"High Latency",
		"gpt-4o-mini",
		"0.900s",
		"0.8s",
		"2025-06-15 10:30:00 UTC",
		"https://pulse.example.com/dashboard",
		"Alert Triggered",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("AlertBody() missing %q", want)
		}
	}
}

func TestAlertBody_DigestHeading(t *testing.T) {
	rule := &alert.Rule{Kind: alert.KindDigest}
	result := &alert.TriggerResult{Triggered: true, Metric: "Performance Summary", Value: "12 data points", Threshold: "N/A"}

	body, err := AlertBody(rule, result, time.Now(), "http://localhost:5000")
	if err != nil {
		t.Fatalf("AlertBody() error = %v", err)
	}
	if !strings.Contains(body, "Performance Digest") {
		t.Error("AlertBody() digest body missing digest heading")
	}
	if !strings.Contains(body, `class="digest"`) {
		t.Error("AlertBody() digest body missing digest styling")
	}
}
