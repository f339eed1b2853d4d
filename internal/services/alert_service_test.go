package services

import (
	"context"
	"testing"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/testutil"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func newAlertService(repo *testutil.MockAlertRepository, samples *testutil.MockMetricRepository) *AlertService {
	return &AlertService{
		repo:    repo,
		samples: samples,
		logger:  testLogger(),
		now:     func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func TestAlertService_Create(t *testing.T) {
	tests := []struct {
		name    string
		rule    alert.Rule
		wantErr bool
	}{
		{
			name: "valid latency rule",
			rule: alert.Rule{UserID: 1, Kind: alert.KindLatency, Threshold: strPtr("0.8")},
		},
		{
			name: "digest needs no threshold",
			rule: alert.Rule{UserID: 1, Kind: alert.KindDigest},
		},
		{
			name:    "unknown kind",
			rule:    alert.Rule{UserID: 1, Kind: "explosion"},
			wantErr: true,
		},
		{
			name:    "missing threshold",
			rule:    alert.Rule{UserID: 1, Kind: alert.KindTPSDrop},
			wantErr: true,
		},
		{
			name:    "non-numeric threshold",
			rule:    alert.Rule{UserID: 1, Kind: alert.KindLatency, Threshold: strPtr("high")},
			wantErr: true,
		},
		{
			name:    "negative threshold",
			rule:    alert.Rule{UserID: 1, Kind: alert.KindCostPerMTok, Threshold: strPtr("-2")},
			wantErr: true,
		},
		{
			name:    "bad window",
			rule:    alert.Rule{UserID: 1, Kind: alert.KindError, Window: "30d"},
			wantErr: true,
		},
		{
			name:    "bad cadence",
			rule:    alert.Rule{UserID: 1, Kind: alert.KindError, Cadence: "2m"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAlertService(testutil.NewMockAlertRepository(), testutil.NewMockMetricRepository())
			id, err := svc.Create(context.Background(), &tt.rule)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Create() error = nil, want validation failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if id == 0 {
				t.Error("Create() returned zero id")
			}
			if tt.rule.Window != metric.Window24h && tt.rule.Window != metric.Window7d {
				t.Errorf("Create() left window unnormalized: %q", tt.rule.Window)
			}
			if tt.rule.Cadence == "" {
				t.Error("Create() left cadence empty")
			}
		})
	}
}

func TestAlertService_Update(t *testing.T) {
	repo := testutil.NewMockAlertRepository()
	svc := newAlertService(repo, testutil.NewMockMetricRepository())

	rule := &alert.Rule{UserID: 1, Kind: alert.KindLatency, Threshold: strPtr("0.8"), Active: true}
	id, err := svc.Create(context.Background(), rule)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), 1, id, map[string]interface{}{
		"threshold": "1.5",
		"active":    false,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Threshold == nil || *updated.Threshold != "1.5" {
		t.Errorf("Update() threshold = %v, want 1.5", updated.Threshold)
	}
	if updated.Active {
		t.Error("Update() left rule active")
	}

	// Invalid values are rejected before any write
	if _, err := svc.Update(context.Background(), 1, id, map[string]interface{}{"threshold": "zero"}); err == nil {
		t.Error("Update() accepted a non-numeric threshold")
	}

	// Ownership is enforced
	if _, err := svc.Update(context.Background(), 2, id, map[string]interface{}{"active": true}); err == nil {
		t.Error("Update() crossed user boundary")
	}
}

func TestAlertService_Test(t *testing.T) {
	samples := testutil.NewMockMetricRepository()
	svc := newAlertService(testutil.NewMockAlertRepository(), samples)

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	samples.Samples = append(samples.Samples, metric.Sample{
		Timestamp: now.Add(-time.Hour),
		Model:     "gpt-4o-mini",
		LatencyS:  f64Ptr(1.2),
	})

	result, err := svc.Test(context.Background(), alert.Draft{
		Kind:      alert.KindLatency,
		Model:     "gpt-4o-mini",
		Threshold: strPtr("0.8"),
	})
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if result == nil || !result.Triggered {
		t.Fatalf("Test() result = %+v, want trigger", result)
	}
	if result.Value != "1.200s" {
		t.Errorf("Test() value = %q, want 1.200s", result.Value)
	}

	// Below threshold returns no trigger and no error
	result, err = svc.Test(context.Background(), alert.Draft{
		Kind:      alert.KindLatency,
		Model:     "gpt-4o-mini",
		Threshold: strPtr("2"),
	})
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if result != nil {
		t.Errorf("Test() = %+v, want nil for quiet rule", result)
	}

	// Validation failures surface as errors
	if _, err := svc.Test(context.Background(), alert.Draft{Kind: "explosion"}); err == nil {
		t.Error("Test() accepted an unknown kind")
	}
}
