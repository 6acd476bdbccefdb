package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
	"github.com/couchcryptid/forecast-enrichment-service/internal/observability"
	"github.com/couchcryptid/forecast-enrichment-service/internal/pipeline"
)

// --- mocks ---

type mockSource struct {
	input domain.SourceInput
	err   error
	calls int
}

func (m *mockSource) FetchForecast(_ context.Context) (domain.SourceInput, error) {
	m.calls++
	return m.input, m.err
}

type mockTransformer struct {
	ds  domain.ForecastDataset
	err error
}

func (m *mockTransformer) Transform(_ context.Context, _ domain.SourceInput) (domain.ForecastDataset, error) {
	return m.ds, m.err
}

type mockLoader struct {
	loaded []domain.ForecastDataset
	err    error
}

func (m *mockLoader) LoadDataset(_ context.Context, ds domain.ForecastDataset) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, ds)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use unregistered metrics to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func fptr(v float64) *float64 { return &v }

func liveInput() domain.SourceInput {
	return domain.SourceInput{
		Mode: domain.SourceLive,
		City: "London",
		Live: []domain.RawLiveSample{
			{
				Dt: 1740830400,
				Main: domain.LiveMain{
					Temp:     fptr(21.3),
					Humidity: fptr(55),
					Pressure: fptr(1014),
				},
				Wind: domain.LiveWind{Speed: fptr(2.5)},
			},
		},
	}
}

func enrichedDataset() domain.ForecastDataset {
	return domain.ForecastDataset{
		City:   "London",
		Source: domain.SourceLive,
		Samples: []domain.EnrichedSample{
			{
				CanonicalSample: domain.CanonicalSample{
					Timestamp:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
					TemperatureC: 21.3,
					HumidityPct:  55,
					PressureHPa:  1014,
					WindSpeedKMH: 9,
				},
			},
		},
	}
}

// --- tests ---

func TestPipeline_RefreshOnce_HappyPath(t *testing.T) {
	src := &mockSource{input: liveInput()}
	tfm := &mockTransformer{ds: enrichedDataset()}
	store := &mockLoader{}
	sink := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(src, tfm, slog.Default(), metrics, time.Minute, store, sink)

	err := p.RefreshOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, store.loaded, 1)
	require.Len(t, sink.loaded, 1)
	assert.Equal(t, "London", store.loaded[0].City)
}

func TestPipeline_RefreshOnce_FetchError(t *testing.T) {
	src := &mockSource{err: errors.New("connection refused")}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(src, tfm, slog.Default(), metrics, time.Minute, ldr)

	err := p.RefreshOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_RefreshOnce_TransformError(t *testing.T) {
	src := &mockSource{input: liveInput()}
	tfm := &mockTransformer{err: &domain.ShapeError{Index: 1, Field: "temp"}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(src, tfm, slog.Default(), metrics, time.Minute, ldr)

	err := p.RefreshOnce(context.Background())
	require.Error(t, err)

	var shapeErr *domain.ShapeError
	assert.ErrorAs(t, err, &shapeErr)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_RefreshOnce_LoaderError(t *testing.T) {
	src := &mockSource{input: liveInput()}
	tfm := &mockTransformer{ds: enrichedDataset()}
	failing := &mockLoader{err: errors.New("broker unavailable")}
	metrics := newTestMetrics()

	p := pipeline.New(src, tfm, slog.Default(), metrics, time.Minute, failing)

	err := p.RefreshOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestPipeline_Run_ImmediateCancel(t *testing.T) {
	src := &mockSource{input: liveInput()}
	tfm := &mockTransformer{ds: enrichedDataset()}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(src, tfm, slog.Default(), metrics, time.Minute, ldr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_RefreshesThenStops(t *testing.T) {
	src := &mockSource{input: liveInput()}
	tfm := &mockTransformer{ds: enrichedDataset()}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(src, tfm, slog.Default(), metrics, time.Hour, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	// One immediate refresh; the hour-long interval never elapses.
	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, 1, src.calls)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RetriesAfterFailure(t *testing.T) {
	src := &mockSource{err: errors.New("transient")}
	tfm := &mockTransformer{ds: enrichedDataset()}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(src, tfm, slog.Default(), metrics, time.Hour, ldr)

	// The first retry waits 2s, so within the window only failures occur.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

// --- transformer tests ---

func TestForecastTransformer_Transform(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	tfm := pipeline.NewTransformer(slog.Default())
	ds, err := tfm.Transform(context.Background(), liveInput())
	require.NoError(t, err)

	assert.Equal(t, "London", ds.City)
	assert.Equal(t, domain.SourceLive, ds.Source)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), ds.RetrievedAt)
	require.Len(t, ds.Samples, 1)
	assert.InDelta(t, 21.3, ds.Samples[0].TemperatureC, 1e-9)
	assert.InDelta(t, 9, ds.Samples[0].WindSpeedKMH, 1e-9)
}

func TestForecastTransformer_SortsByTimestamp(t *testing.T) {
	input := liveInput()
	later := input.Live[0]
	later.Dt = 1740841200
	earlier := input.Live[0]
	input.Live = []domain.RawLiveSample{later, earlier}

	tfm := pipeline.NewTransformer(slog.Default())
	ds, err := tfm.Transform(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, ds.Samples, 2)
	assert.True(t, ds.Samples[0].Timestamp.Before(ds.Samples[1].Timestamp))
}

func TestForecastTransformer_NormalizeErrorAbortsBatch(t *testing.T) {
	input := liveInput()
	input.Live[0].Main.Temp = nil

	tfm := pipeline.NewTransformer(slog.Default())
	_, err := tfm.Transform(context.Background(), input)
	require.Error(t, err)

	var shapeErr *domain.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 0, shapeErr.Index)
	assert.Equal(t, "main.temp", shapeErr.Field)
}

func TestForecastTransformer_EmptyInput(t *testing.T) {
	tfm := pipeline.NewTransformer(slog.Default())
	ds, err := tfm.Transform(context.Background(), domain.SourceInput{
		Mode: domain.SourceFallback,
		City: "London",
	})
	require.NoError(t, err)
	assert.NotNil(t, ds.Samples)
	assert.Empty(t, ds.Samples)
}

func TestForecastTransformer_Deterministic(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	tfm := pipeline.NewTransformer(slog.Default())
	first, err := tfm.Transform(context.Background(), liveInput())
	require.NoError(t, err)
	second, err := tfm.Transform(context.Background(), liveInput())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("transform not deterministic (-first +second):\n%s", diff)
	}
}
