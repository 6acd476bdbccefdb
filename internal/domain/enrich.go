package domain

import (
	"sort"
)

// Display label layouts. The labels are derived presentation strings, not
// authoritative data; renderers may recompute their own.
const (
	dayLabelLayout  = "Mon 02 Jan"
	hourLabelLayout = "15:04"
	timeLabelLayout = "Mon 02 Jan 15:04"
)

// EnrichSample derives the secondary meteorological fields for one
// canonical sample. Pure and per-sample: no cross-sample state, identical
// input always yields identical output. Formula applicability is decided
// inside the formula functions; a nil result means "outside valid domain",
// never an error.
func EnrichSample(s CanonicalSample) EnrichedSample {
	return EnrichedSample{
		CanonicalSample: s,
		HeatIndexC:      HeatIndexC(s.TemperatureC, s.HumidityPct),
		WindChillC:      WindChillC(s.TemperatureC, s.WindSpeedKMH),
		DewPointC:       DewPointC(s.TemperatureC, s.HumidityPct),
		DayLabel:        s.Timestamp.UTC().Format(dayLabelLayout),
		HourLabel:       s.Timestamp.UTC().Format(hourLabelLayout),
		TimeLabel:       s.Timestamp.UTC().Format(timeLabelLayout),
	}
}

// EnrichSamples enriches a canonical batch, preserving length and order.
// An empty batch yields an empty (non-nil) slice.
func EnrichSamples(samples []CanonicalSample) []EnrichedSample {
	out := make([]EnrichedSample, len(samples))
	for i, s := range samples {
		out[i] = EnrichSample(s)
	}
	return out
}

// BuildDataset assembles the full forecast dataset from canonical samples:
// sorts them ascending by timestamp (stable, on a copy), enriches each,
// and stamps the retrieval time from the package clock.
func BuildDataset(city string, mode SourceMode, samples []CanonicalSample) ForecastDataset {
	sorted := make([]CanonicalSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	return ForecastDataset{
		City:        city,
		Source:      mode,
		RetrievedAt: clock.Now().UTC(),
		Samples:     EnrichSamples(sorted),
	}
}
