package snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

// snapshotColumns is the canonical CSV header for fallback snapshot files.
// Reader and Writer share it so a dataset written by one pipeline run can be
// replayed by the next.
var snapshotColumns = []string{
	"time",
	"temp",
	"feels_like",
	"temp_min",
	"temp_max",
	"humidity",
	"pressure",
	"wind_speed",
	"wind_deg",
	"clouds",
	"pop",
	"visibility_km",
	"description",
	"icon",
}

// Reader serves forecasts from the most recent CSV snapshot on disk. It is
// the fallback source when the live API is unreachable or disabled.
type Reader struct {
	dir    string
	city   string
	logger *slog.Logger
}

// NewReader creates a snapshot reader scanning dir for the given city.
func NewReader(dir, city string, logger *slog.Logger) *Reader {
	return &Reader{dir: dir, city: city, logger: logger}
}

// FetchForecast loads the newest matching snapshot file. Snapshot files are
// named weather_data_*<city>*.csv; when several match, the one with the
// latest modification time wins.
func (r *Reader) FetchForecast(ctx context.Context) (domain.SourceInput, error) {
	if ctx.Err() != nil {
		return domain.SourceInput{}, ctx.Err()
	}

	path, err := r.latestSnapshot()
	if err != nil {
		return domain.SourceInput{}, err
	}

	samples, err := readSnapshotFile(path)
	if err != nil {
		return domain.SourceInput{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	r.logger.Info("loaded fallback snapshot", "file", filepath.Base(path), "samples", len(samples))

	return domain.SourceInput{
		Mode:     domain.SourceFallback,
		City:     r.city,
		Fallback: samples,
	}, nil
}

func (r *Reader) latestSnapshot() (string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", fmt.Errorf("scan snapshot dir: %w", err)
	}

	cityToken := strings.ToLower(strings.ReplaceAll(r.city, " ", "_"))

	var best string
	var bestMod time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.HasPrefix(name, "weather_data_") || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if !strings.Contains(name, cityToken) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) {
			best = e.Name()
			bestMod = info.ModTime()
		}
	}

	if best == "" {
		return "", fmt.Errorf("no snapshot file for city %q in %s", r.city, r.dir)
	}
	return filepath.Join(r.dir, best), nil
}

func readSnapshotFile(path string) ([]domain.RawFallbackSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("empty snapshot file")
	}

	header := rows[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}
	if _, ok := colIdx["time"]; !ok {
		return nil, fmt.Errorf("missing %q column", "time")
	}

	samples := make([]domain.RawFallbackSample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		sample, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func parseRow(row []string, colIdx map[string]int) (domain.RawFallbackSample, error) {
	get := func(col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	sample := domain.RawFallbackSample{
		Time:        get("time"),
		Description: get("description"),
		Icon:        get("icon"),
	}

	numeric := []struct {
		col string
		dst **float64
	}{
		{"temp", &sample.TempC},
		{"feels_like", &sample.FeelsLikeC},
		{"temp_min", &sample.TempMinC},
		{"temp_max", &sample.TempMaxC},
		{"humidity", &sample.HumidityPct},
		{"pressure", &sample.PressureHPa},
		{"wind_speed", &sample.WindSpeedMS},
		{"wind_deg", &sample.WindDeg},
		{"clouds", &sample.CloudPct},
		{"pop", &sample.PopPct},
		{"visibility_km", &sample.VisibilityKM},
	}

	for _, n := range numeric {
		raw := get(n.col)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.RawFallbackSample{}, fmt.Errorf("column %q: %w", n.col, err)
		}
		*n.dst = &v
	}

	return sample, nil
}
