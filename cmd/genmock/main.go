// Command genmock generates a deterministic mock snapshot CSV plus the
// enriched JSON fixture the test suites compare against. It runs the actual
// domain normalization and enrichment so the fixture matches real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -city London
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

var baseDate = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

const slotCount = 40 // 5 days of 3-hourly slots

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "output directory for fixtures")
	city := flag.String("city", "London", "city name embedded in the fixtures")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}

	// Fix the clock for a reproducible retrieved_at stamp.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.March, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	samples := syntheticSamples()

	input := domain.SourceInput{
		Mode:     domain.SourceFallback,
		City:     *city,
		Fallback: samples,
	}
	canonical, err := domain.Normalize(input)
	if err != nil {
		return fmt.Errorf("normalize synthetic samples: %w", err)
	}
	ds := domain.BuildDataset(*city, domain.SourceFallback, canonical)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	csvPath := filepath.Join(*outDir, snapshotFileName(*city))
	if err := writeCSV(csvPath, samples); err != nil {
		return fmt.Errorf("writing snapshot CSV: %w", err)
	}
	log.Printf("wrote snapshot: %s (%d rows)", csvPath, len(samples))

	jsonPath := filepath.Join(*outDir, "enriched_forecast.json")
	if err := writeJSON(jsonPath, ds); err != nil {
		return fmt.Errorf("writing enriched fixture: %w", err)
	}
	log.Printf("wrote enriched fixture: %s (%d samples)", jsonPath, len(ds.Samples))

	summary := domain.ComputeSummary(ds)
	log.Printf("summary: slots=%d days=%d temp avg=%.1f°C max=%.1f°C min=%.1f°C",
		summary.TotalSlots, summary.DaysCovered, summary.TempAvgC, summary.TempMaxC, summary.TempMinC)
	return nil
}

// syntheticSamples produces a plausible 5-day forecast with a diurnal
// temperature wave, a cold snap at the end, and enough spread to exercise
// both apparent-temperature formulas.
func syntheticSamples() []domain.RawFallbackSample {
	samples := make([]domain.RawFallbackSample, 0, slotCount)
	for i := 0; i < slotCount; i++ {
		ts := baseDate.Add(time.Duration(i) * 3 * time.Hour)
		hour := float64(ts.Hour())
		day := float64(i / 8)

		// Warm start trending cold: day 0 peaks near 31°C, day 4 near 2°C.
		base := 24 - 6*day
		temp := round1(base + 7*math.Sin((hour-9)/24*2*math.Pi))
		humidity := round1(60 + 20*math.Sin(hour/24*2*math.Pi) + 2*day)
		pressure := round1(1010 + 4*math.Sin(float64(i)/5))
		windMS := round1(2 + 3*math.Abs(math.Sin(float64(i)/3)))
		pop := round1(50 + 40*math.Sin(float64(i)/4))
		if pop < 0 {
			pop = 0
		}
		clouds := round1(50 + 45*math.Sin(float64(i)/2))
		if clouds < 0 {
			clouds = 0
		}

		desc := "scattered clouds"
		icon := "03d"
		if pop > 70 {
			desc = "light rain"
			icon = "10d"
		}

		samples = append(samples, domain.RawFallbackSample{
			Time:         ts.Format(domain.SnapshotTimeLayout),
			TempC:        ptr(temp),
			FeelsLikeC:   ptr(round1(temp - 1.2)),
			TempMinC:     ptr(round1(temp - 1.8)),
			TempMaxC:     ptr(round1(temp + 1.5)),
			HumidityPct:  ptr(humidity),
			PressureHPa:  ptr(pressure),
			WindSpeedMS:  ptr(windMS),
			WindDeg:      ptr(float64((i * 37) % 360)),
			CloudPct:     ptr(clouds),
			PopPct:       ptr(pop),
			VisibilityKM: ptr(10.0),
			Description:  desc,
			Icon:         icon,
		})
	}
	return samples
}

func writeCSV(path string, samples []domain.RawFallbackSample) error {
	var b strings.Builder
	b.WriteString("time,temp,feels_like,temp_min,temp_max,humidity,pressure,wind_speed,wind_deg,clouds,pop,visibility_km,description,icon\n")
	for _, s := range samples {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			s.Time,
			num(s.TempC), num(s.FeelsLikeC), num(s.TempMinC), num(s.TempMaxC),
			num(s.HumidityPct), num(s.PressureHPa), num(s.WindSpeedMS),
			num(s.WindDeg), num(s.CloudPct), num(s.PopPct), num(s.VisibilityKM),
			s.Description, s.Icon,
		)
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func snapshotFileName(city string) string {
	token := strings.ToLower(strings.ReplaceAll(city, " ", "_"))
	return fmt.Sprintf("weather_data_%s.csv", token)
}

func num(p *float64) string {
	if p == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", *p), "0"), ".")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr(v float64) *float64 { return &v }
