// Command validate checks an enriched forecast fixture for internal
// consistency: ascending slot order, derived-field domain gates, unit
// ranges, and label agreement with the timestamps. It exists so regenerated
// fixtures can be vetted before tests start depending on them.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/enriched_forecast.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixture := flag.String("fixture", "", "path to enriched forecast JSON fixture")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixture); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read fixture: %v\n", err)
		return 1
	}

	var ds domain.ForecastDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse fixture: %v\n", err)
		return 1
	}

	fmt.Println("=== Forecast Fixture Validation ===")
	fmt.Println()

	phases := []*phase{
		validateOrdering(ds),
		validateRanges(ds),
		validateDerivedFields(ds),
		validateLabels(ds),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

	fmt.Println()
	summary := domain.ComputeSummary(ds)
	fmt.Printf("City: %s  Source: %s  Slots: %d  Days: %d\n",
		ds.City, ds.Source, summary.TotalSlots, summary.DaysCovered)
	fmt.Printf("Temp: avg %.1f°C, min %.1f°C, max %.1f°C  Wind max: %.1f km/h  Precip max: %d%%\n",
		summary.TempAvgC, summary.TempMinC, summary.TempMaxC, summary.WindMaxKMH, summary.PrecipMaxPct)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateOrdering(ds domain.ForecastDataset) *phase {
	p := &phase{name: "slot ordering"}
	for i := 1; i < len(ds.Samples); i++ {
		if ds.Samples[i].Timestamp.Before(ds.Samples[i-1].Timestamp) {
			p.errorf("sample %d: timestamp %s before previous %s",
				i, ds.Samples[i].Timestamp, ds.Samples[i-1].Timestamp)
		}
	}
	return p
}

func validateRanges(ds domain.ForecastDataset) *phase {
	p := &phase{name: "unit ranges"}
	for i, s := range ds.Samples {
		if s.HumidityPct < 0 || s.HumidityPct > 100 {
			p.errorf("sample %d: humidity %.1f%% out of range", i, s.HumidityPct)
		}
		if s.WindSpeedKMH < 0 {
			p.errorf("sample %d: negative wind speed %.1f km/h", i, s.WindSpeedKMH)
		}
		if s.PrecipProbabilityPct != nil && (*s.PrecipProbabilityPct < 0 || *s.PrecipProbabilityPct > 100) {
			p.errorf("sample %d: precip probability %d%% out of range", i, *s.PrecipProbabilityPct)
		}
		if s.CloudPct != nil && (*s.CloudPct < 0 || *s.CloudPct > 100) {
			p.errorf("sample %d: cloud cover %.1f%% out of range", i, *s.CloudPct)
		}
	}
	return p
}

func validateDerivedFields(ds domain.ForecastDataset) *phase {
	p := &phase{name: "derived-field gates"}
	for i, s := range ds.Samples {
		// Recompute from the canonical fields; the fixture must agree.
		wantHI := domain.HeatIndexC(s.TemperatureC, s.HumidityPct)
		if !matches(s.HeatIndexC, wantHI) {
			p.errorf("sample %d: heat index %s, want %s", i, show(s.HeatIndexC), show(wantHI))
		}
		wantWC := domain.WindChillC(s.TemperatureC, s.WindSpeedKMH)
		if !matches(s.WindChillC, wantWC) {
			p.errorf("sample %d: wind chill %s, want %s", i, show(s.WindChillC), show(wantWC))
		}
		wantDP := domain.DewPointC(s.TemperatureC, s.HumidityPct)
		if !matches(s.DewPointC, wantDP) {
			p.errorf("sample %d: dew point %s, want %s", i, show(s.DewPointC), show(wantDP))
		}
		if s.DewPointC != nil && *s.DewPointC > s.TemperatureC+1e-9 {
			p.errorf("sample %d: dew point %.2f°C exceeds temperature %.2f°C", i, *s.DewPointC, s.TemperatureC)
		}
		if s.HeatIndexC != nil && s.WindChillC != nil {
			p.errorf("sample %d: heat index and wind chill both set", i)
		}
	}
	return p
}

func validateLabels(ds domain.ForecastDataset) *phase {
	p := &phase{name: "display labels"}
	for i, s := range ds.Samples {
		if want := s.Timestamp.UTC().Format("Mon 02 Jan"); s.DayLabel != want {
			p.errorf("sample %d: day label %q, want %q", i, s.DayLabel, want)
		}
		if want := s.Timestamp.UTC().Format("15:04"); s.HourLabel != want {
			p.errorf("sample %d: hour label %q, want %q", i, s.HourLabel, want)
		}
	}
	return p
}

func matches(got, want *float64) bool {
	if (got == nil) != (want == nil) {
		return false
	}
	if got == nil {
		return true
	}
	diff := *got - *want
	return diff < 1e-6 && diff > -1e-6
}

func show(p *float64) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprintf("%.2f", *p)
}
