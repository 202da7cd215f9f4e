// Package pipeline orchestrates the fetch-normalize-build loop: pull a
// payload from the rainfall API, normalize it into stations and readings,
// build the canonical table, and hand the rows to the optional sinks.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wxlabsg/rainfall-insights/internal/analytics"
	"github.com/wxlabsg/rainfall-insights/internal/domain"
	"github.com/wxlabsg/rainfall-insights/internal/export"
	"github.com/wxlabsg/rainfall-insights/internal/observability"
)

// Fetcher retrieves the latest rainfall payload.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.Payload, error)
}

// RowPublisher writes canonical rows to a downstream sink.
type RowPublisher interface {
	PublishRows(ctx context.Context, rows []domain.Row) error
}

// Pipeline refreshes the canonical table on an interval and serves the
// latest snapshot to readers.
type Pipeline struct {
	fetcher   Fetcher
	publisher RowPublisher // nil when publishing is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics

	interval        time.Duration
	alertMultiplier float64
	exportPath      string

	mu    sync.RWMutex
	table domain.Table
	ready atomic.Bool
}

// New creates a Pipeline. publisher may be nil; exportPath may be empty; a
// non-positive alertMultiplier selects the analytics default.
func New(f Fetcher, publisher RowPublisher, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration, alertMultiplier float64, exportPath string) *Pipeline {
	return &Pipeline{
		fetcher:         f,
		publisher:       publisher,
		logger:          logger,
		metrics:         metrics,
		interval:        interval,
		alertMultiplier: alertMultiplier,
		exportPath:      exportPath,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// successful refresh.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no rainfall data loaded yet")
	}
	return nil
}

// Latest returns a copy of the most recent canonical table. Empty until the
// first successful refresh.
func (p *Pipeline) Latest() domain.Table {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table.Clone()
}

// Run refreshes immediately, then on every interval tick until the context
// is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.refresh(ctx)

	ticker := clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.refresh(ctx)
		}
	}
}

// refresh runs one fetch-normalize-build cycle. Failures are logged and
// counted; the previous table snapshot stays in place.
func (p *Pipeline) refresh(ctx context.Context) {
	start := time.Now()

	payload, err := p.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("fetch failed", "error", err)
		p.metrics.Fetches.WithLabelValues("error").Inc()
		return
	}

	stations, readings, normErrs := domain.Normalize(payload)
	for _, ne := range normErrs {
		p.metrics.NormalizationErrors.WithLabelValues(string(ne.Kind)).Inc()
	}
	if len(normErrs) > 0 {
		p.logger.Warn("payload partially normalized",
			"errors", len(normErrs), "first", normErrs[0].Error())
	}
	p.metrics.ReadingsNormalized.Add(float64(len(readings)))

	table := domain.BuildTable(stations, readings)

	p.mu.Lock()
	p.table = table
	p.mu.Unlock()

	p.metrics.Fetches.WithLabelValues("success").Inc()
	p.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	p.metrics.TableRows.Set(float64(len(table)))
	p.ready.Store(true)

	alerts, threshold := analytics.AlertAreas(table, p.alertMultiplier)
	p.metrics.ActiveAlerts.Set(float64(len(alerts)))

	p.logger.Info("table refreshed",
		"stations", len(stations), "readings", len(readings), "rows", len(table),
		"alerts", len(alerts), "alert_threshold", threshold)

	p.publish(ctx, table)
	p.export(table)
}

func (p *Pipeline) publish(ctx context.Context, table domain.Table) {
	if p.publisher == nil || len(table) == 0 {
		return
	}
	if err := p.publisher.PublishRows(ctx, table); err != nil {
		p.logger.Error("publish rows failed", "error", err, "rows", len(table))
		p.metrics.PublishErrors.Inc()
		return
	}
	p.metrics.RowsPublished.Add(float64(len(table)))
}

func (p *Pipeline) export(table domain.Table) {
	if p.exportPath == "" {
		return
	}
	if err := export.WriteFile(p.exportPath, table); err != nil {
		p.logger.Error("export snapshot failed", "error", err, "path", p.exportPath)
		return
	}
	p.logger.Debug("snapshot exported", "path", p.exportPath, "rows", len(table))
}
