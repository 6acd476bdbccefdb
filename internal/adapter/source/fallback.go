package source

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
	"github.com/couchcryptid/forecast-enrichment-service/internal/pipeline"
)

// FallbackSource tries the primary source first and falls back to the
// secondary when the primary fails. The returned input carries its own
// source mode, so downstream consumers always know which path served the
// data.
type FallbackSource struct {
	primary   pipeline.ForecastSource
	secondary pipeline.ForecastSource
	logger    *slog.Logger
}

// New creates a FallbackSource.
func New(primary, secondary pipeline.ForecastSource, logger *slog.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, secondary: secondary, logger: logger}
}

// FetchForecast returns the primary forecast when available, the secondary
// otherwise. Both errors are joined when neither source can serve.
func (s *FallbackSource) FetchForecast(ctx context.Context) (domain.SourceInput, error) {
	input, primaryErr := s.primary.FetchForecast(ctx)
	if primaryErr == nil {
		return input, nil
	}
	if ctx.Err() != nil {
		return domain.SourceInput{}, primaryErr
	}

	s.logger.Warn("primary source failed, falling back to snapshot", "error", primaryErr)

	input, secondaryErr := s.secondary.FetchForecast(ctx)
	if secondaryErr != nil {
		return domain.SourceInput{}, errors.Join(primaryErr, secondaryErr)
	}
	return input, nil
}
