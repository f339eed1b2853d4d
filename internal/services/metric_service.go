package services

import (
	"context"
	"time"

	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/domain/settings"
	"github.com/optaimi/pulse/internal/fx"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/probe"
)

// History is a window of samples with costs in the user's display currency
type History struct {
	Window   metric.Window  `json:"window"`
	Currency string         `json:"currency"`
	Samples  []HistoryPoint `json:"samples"`
}

// HistoryPoint is one sample with its converted cost
type HistoryPoint struct {
	metric.Sample
	Cost *float64 `json:"cost,omitempty"`
}

// MetricService serves metric history and runs probe passes
type MetricService struct {
	samples  metric.Repository
	settings settings.Repository
	rates    *fx.Cache
	probes   *probe.Set
	logger   *logger.Logger
	now      func() time.Time
}

// NewMetricService creates a new metric service
func NewMetricService(
	samples metric.Repository,
	sets settings.Repository,
	rates *fx.Cache,
	probes *probe.Set,
	log *logger.Logger,
) *MetricService {
	return &MetricService{
		samples:  samples,
		settings: sets,
		rates:    rates,
		probes:   probes,
		logger:   log,
		now:      time.Now,
	}
}

// History returns recent samples for the model and window, with costs
// converted to the user's currency. A failed rate lookup degrades to USD
// rather than failing the request.
func (s *MetricService) History(ctx context.Context, userID int64, model string, window metric.Window) (*History, error) {
	window = window.Normalize()

	samples, err := s.samples.Recent(ctx, model, window.Start(s.now()), metric.RecentLimit)
	if err != nil {
		return nil, err
	}

	currency := settings.DefaultCurrency
	if userID > 0 {
		stored, err := s.settings.Get(ctx, userID)
		if err != nil {
			s.logger.ErrorWithErr(err, "Failed to load settings for history")
		} else if stored != nil && stored.Currency != "" {
			currency = stored.Currency
		}
	}

	rate := 1.0
	if currency != "USD" {
		r, err := s.rates.Rate(ctx, currency)
		if err != nil {
			s.logger.With("currency", currency).ErrorWithErr(err, "Failed to fetch conversion rate")
			currency = "USD"
		} else {
			rate = r
		}
	}

	points := make([]HistoryPoint, 0, len(samples))
	for _, sample := range samples {
		p := HistoryPoint{Sample: sample}
		if sample.CostUSD != nil {
			cost := *sample.CostUSD * rate
			p.Cost = &cost
		}
		points = append(points, p)
	}

	return &History{Window: window, Currency: currency, Samples: points}, nil
}

// Models returns the model identifiers seen in the last 7 days
func (s *MetricService) Models(ctx context.Context) ([]string, error) {
	return s.samples.Models(ctx, metric.Window7d.Start(s.now()))
}

// RunProbes executes one probe pass and returns the fresh samples
func (s *MetricService) RunProbes(ctx context.Context) ([]metric.Sample, error) {
	samples, failed := s.probes.Run(ctx)
	if failed > 0 {
		s.logger.With("storage_errors", failed).Warn("Probe pass finished with storage errors")
	}
	return samples, nil
}
