package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

type stubSource struct {
	input domain.SourceInput
	err   error
	calls int
}

func (s *stubSource) FetchForecast(_ context.Context) (domain.SourceInput, error) {
	s.calls++
	return s.input, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallbackSource_PrimarySucceeds(t *testing.T) {
	primary := &stubSource{input: domain.SourceInput{Mode: domain.SourceLive, City: "London"}}
	secondary := &stubSource{input: domain.SourceInput{Mode: domain.SourceFallback}}

	fs := New(primary, secondary, discardLogger())
	input, err := fs.FetchForecast(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SourceLive, input.Mode)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackSource_PrimaryFails(t *testing.T) {
	primary := &stubSource{err: errors.New("connection refused")}
	secondary := &stubSource{input: domain.SourceInput{Mode: domain.SourceFallback, City: "London"}}

	fs := New(primary, secondary, discardLogger())
	input, err := fs.FetchForecast(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, input.Mode)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackSource_BothFail(t *testing.T) {
	primaryErr := errors.New("connection refused")
	secondaryErr := errors.New("no snapshot file")
	primary := &stubSource{err: primaryErr}
	secondary := &stubSource{err: secondaryErr}

	fs := New(primary, secondary, discardLogger())
	_, err := fs.FetchForecast(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, primaryErr)
	assert.ErrorIs(t, err, secondaryErr)
}

func TestFallbackSource_CancelledContextSkipsSecondary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &stubSource{err: context.Canceled}
	secondary := &stubSource{}

	fs := New(primary, secondary, discardLogger())
	_, err := fs.FetchForecast(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, secondary.calls)
}
