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

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

// Writer persists live datasets back to a CSV snapshot, keeping the fallback
// source fresh for the next outage. Fallback datasets are skipped so a stale
// snapshot is never rewritten with its own contents.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a snapshot writer targeting dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// LoadDataset writes the dataset as a CSV snapshot via a temp file and
// rename, so a crash mid-write never leaves a truncated snapshot behind.
func (w *Writer) LoadDataset(ctx context.Context, ds domain.ForecastDataset) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if ds.Source != domain.SourceLive {
		return nil
	}

	path := filepath.Join(w.dir, snapshotFileName(ds.City))
	tmp, err := os.CreateTemp(w.dir, ".snapshot-*.csv")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := cw.Write(snapshotColumns); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range ds.Samples {
		if err := cw.Write(snapshotRow(s)); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}

	w.logger.Debug("snapshot written", "file", filepath.Base(path), "samples", len(ds.Samples))
	return nil
}

func snapshotFileName(city string) string {
	token := strings.ToLower(strings.ReplaceAll(city, " ", "_"))
	return fmt.Sprintf("weather_data_%s.csv", token)
}

func snapshotRow(s domain.EnrichedSample) []string {
	// Wind goes back out in m/s; the canonical km/h value is derived, the
	// snapshot keeps source units.
	windMS := s.WindSpeedKMH / 3.6

	return []string{
		s.Timestamp.UTC().Format(domain.SnapshotTimeLayout),
		formatFloat(&s.TemperatureC),
		formatFloat(s.FeelsLikeC),
		formatFloat(s.TempMinC),
		formatFloat(s.TempMaxC),
		formatFloat(&s.HumidityPct),
		formatFloat(&s.PressureHPa),
		formatFloat(&windMS),
		formatFloat(s.WindDirectionDeg),
		formatFloat(s.CloudPct),
		formatInt(s.PrecipProbabilityPct),
		formatFloat(s.VisibilityKM),
		s.ConditionLabel,
		s.Icon,
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
