package snapshot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

const snapshotCSV = `time,temp,feels_like,temp_min,temp_max,humidity,pressure,wind_speed,wind_deg,clouds,pop,visibility_km,description,icon
2025-03-01 12:00:00,21.3,20.9,20.1,22.4,55,1014,2.5,180,40,60,10,scattered clouds,03d
2025-03-01 15:00:00,19.8,,,,60,1015,3.1,,,,,light rain,10d
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReaderFetchForecast(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weather_data_london.csv", snapshotCSV)

	r := NewReader(dir, "London", discardLogger())
	input, err := r.FetchForecast(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, input.Mode)
	assert.Equal(t, "London", input.City)
	require.Len(t, input.Fallback, 2)

	first := input.Fallback[0]
	assert.Equal(t, "2025-03-01 12:00:00", first.Time)
	require.NotNil(t, first.TempC)
	assert.InDelta(t, 21.3, *first.TempC, 1e-9)
	require.NotNil(t, first.WindSpeedMS)
	assert.InDelta(t, 2.5, *first.WindSpeedMS, 1e-9)
	require.NotNil(t, first.PopPct)
	assert.InDelta(t, 60, *first.PopPct, 1e-9)
	assert.Equal(t, "scattered clouds", first.Description)
	assert.Equal(t, "03d", first.Icon)

	// Empty cells stay nil instead of being coerced to zero.
	second := input.Fallback[1]
	assert.Nil(t, second.FeelsLikeC)
	assert.Nil(t, second.WindDeg)
	assert.Nil(t, second.PopPct)
	assert.Nil(t, second.VisibilityKM)
	require.NotNil(t, second.TempC)
	assert.InDelta(t, 19.8, *second.TempC, 1e-9)
}

func TestReaderPicksNewestMatchingFile(t *testing.T) {
	dir := t.TempDir()

	older := writeFile(t, dir, "weather_data_2025-02_london.csv", snapshotCSV)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	newest := `time,temp,humidity,pressure,wind_speed
2025-03-02 09:00:00,5.5,80,1002,4.0
`
	writeFile(t, dir, "weather_data_2025-03_london.csv", newest)

	r := NewReader(dir, "London", discardLogger())
	input, err := r.FetchForecast(context.Background())
	require.NoError(t, err)
	require.Len(t, input.Fallback, 1)
	assert.Equal(t, "2025-03-02 09:00:00", input.Fallback[0].Time)
}

func TestReaderIgnoresOtherCities(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weather_data_paris.csv", snapshotCSV)

	r := NewReader(dir, "London", discardLogger())
	_, err := r.FetchForecast(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no snapshot file for city "London"`)
}

func TestReaderCityWithSpaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weather_data_new_york.csv", snapshotCSV)

	r := NewReader(dir, "New York", discardLogger())
	input, err := r.FetchForecast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New York", input.City)
}

func TestReaderMalformedNumber(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weather_data_london.csv", "time,temp\n2025-03-01 12:00:00,not-a-number\n")

	r := NewReader(dir, "London", discardLogger())
	_, err := r.FetchForecast(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), `column "temp"`)
}

func TestReaderMissingTimeColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weather_data_london.csv", "temp,humidity\n21.3,55\n")

	r := NewReader(dir, "London", discardLogger())
	_, err := r.FetchForecast(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "time" column`)
}

func TestReaderHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weather_data_london.csv", "time,temp\n")

	r := NewReader(dir, "London", discardLogger())
	input, err := r.FetchForecast(context.Background())
	require.NoError(t, err)
	assert.Empty(t, input.Fallback)
}
