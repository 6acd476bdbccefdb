package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

// ForecastTransformer implements Transformer using the domain normalizer
// and enrichment functions.
type ForecastTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a ForecastTransformer.
func NewTransformer(logger *slog.Logger) *ForecastTransformer {
	return &ForecastTransformer{logger: logger}
}

// Transform normalizes the raw input into canonical samples and builds the
// enriched dataset. Normalization failures abort the whole batch; an empty
// input is valid and produces an empty dataset.
func (t *ForecastTransformer) Transform(_ context.Context, input domain.SourceInput) (domain.ForecastDataset, error) {
	canonical, err := domain.Normalize(input)
	if err != nil {
		return domain.ForecastDataset{}, err
	}

	if len(canonical) == 0 {
		t.logger.Warn("source returned zero forecast samples", "source", input.Mode, "city", input.City)
	}

	return domain.BuildDataset(input.City, input.Mode, canonical), nil
}
