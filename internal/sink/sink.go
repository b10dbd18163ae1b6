// Package sink receives the engine's output of record. Observations are
// additive: duplicates across runs are by design (a time-series of prices),
// so writers append rather than reconcile.
package sink

import (
	"context"
	"log/slog"
	"sync"

	"github.com/priceduck/pricewatch/internal/models"
)

type Sink interface {
	Emit(ctx context.Context, result *models.ScrapeResult) error
}

// MemorySink collects results in memory, for tests and dry runs.
type MemorySink struct {
	mu      sync.Mutex
	results []*models.ScrapeResult
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(ctx context.Context, result *models.ScrapeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func (s *MemorySink) Results() []*models.ScrapeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.ScrapeResult, len(s.results))
	copy(out, s.results)
	return out
}

// LogSink writes each observation to the run log. Used when no store is
// configured and alongside real sinks for operator visibility.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "log_sink")}
}

func (s *LogSink) Emit(ctx context.Context, result *models.ScrapeResult) error {
	if result.Succeeded {
		amount := 0.0
		if result.Amount != nil {
			amount = *result.Amount
		}
		s.logger.Info("price observed",
			"product", result.ProductName,
			"region", result.RegionCode,
			"amount", amount,
			"currency", result.CurrencyCode,
			"period", result.Period,
			"notes", result.Notes,
		)
		return nil
	}

	s.logger.Warn("scrape attempt failed",
		"product", result.ProductName,
		"region", result.RegionCode,
		"url", result.SourceURL,
		"notes", result.Notes,
	)
	return nil
}

// Multi fans an observation out to several sinks. The first error stops the
// fan-out; emitting is cheap enough that partial delivery is acceptable for
// additive observations.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Emit(ctx context.Context, result *models.ScrapeResult) error {
	for _, s := range m.sinks {
		if err := s.Emit(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
