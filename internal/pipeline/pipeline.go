package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
	"github.com/couchcryptid/forecast-enrichment-service/internal/observability"
)

// ForecastSource produces one raw forecast in either source shape.
type ForecastSource interface {
	FetchForecast(ctx context.Context) (domain.SourceInput, error)
}

// Transformer turns a raw forecast into an enriched dataset.
type Transformer interface {
	Transform(ctx context.Context, input domain.SourceInput) (domain.ForecastDataset, error)
}

// DatasetLoader delivers an enriched dataset to a destination.
type DatasetLoader interface {
	LoadDataset(ctx context.Context, ds domain.ForecastDataset) error
}

// Pipeline orchestrates the fetch-normalize-enrich-load cycle on a fixed
// refresh interval. Each cycle rebuilds the dataset from scratch; there is
// no incremental state between refreshes.
type Pipeline struct {
	source      ForecastSource
	transformer Transformer
	loaders     []DatasetLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	interval    time.Duration
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability. Every
// loader receives each refreshed dataset.
func New(source ForecastSource, transformer Transformer, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration, loaders ...DatasetLoader) *Pipeline {
	return &Pipeline{
		source:      source,
		transformer: transformer,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		interval:    interval,
	}
}

// CheckReadiness returns nil once at least one refresh has succeeded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no forecast refresh has succeeded yet")
	}
	return nil
}

// Run refreshes immediately, then on every interval tick, until the
// context is cancelled. Failed refreshes retry with exponential backoff
// instead of waiting a full interval.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "refresh_interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Backoff for failed refreshes: start at 2s, double, cap at 1 minute.
	// Keeps retries prompt after a transient outage without hammering the
	// upstream API.
	const initialBackoff = 2 * time.Second
	const maxBackoff = time.Minute
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		if err := p.RefreshOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("forecast refresh failed", "error", err, "retry_in", backoff)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = initialBackoff
		p.ready.Store(true)

		if !sleepWithContext(ctx, p.interval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RefreshOnce executes a single fetch-transform-load cycle.
func (p *Pipeline) RefreshOnce(ctx context.Context) error {
	start := time.Now()

	input, err := p.source.FetchForecast(ctx)
	if err != nil {
		p.metrics.FetchErrors.Inc()
		return err
	}
	p.metrics.SamplesIngested.Add(float64(rawCount(input)))

	ds, err := p.transformer.Transform(ctx, input)
	if err != nil {
		p.metrics.TransformErrors.Inc()
		return err
	}

	for _, loader := range p.loaders {
		if err := p.loadWithContext(ctx, loader, ds); err != nil {
			p.metrics.LoadErrors.Inc()
			return err
		}
	}

	p.metrics.SamplesEnriched.Add(float64(len(ds.Samples)))
	p.metrics.SourceRefreshes.WithLabelValues(string(ds.Source)).Inc()
	p.metrics.DatasetSize.Observe(float64(len(ds.Samples)))
	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("forecast refreshed",
		"city", ds.City,
		"source", ds.Source,
		"samples", len(ds.Samples),
		"duration", time.Since(start),
	)
	return nil
}

func (p *Pipeline) loadWithContext(ctx context.Context, loader DatasetLoader, ds domain.ForecastDataset) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return loader.LoadDataset(ctx, ds)
}

func rawCount(input domain.SourceInput) int {
	if input.Mode == domain.SourceFallback {
		return len(input.Fallback)
	}
	return len(input.Live)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
