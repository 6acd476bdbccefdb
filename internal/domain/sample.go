package domain

import (
	"fmt"
	"time"
)

// SourceMode tags which raw shape a SourceInput carries. The normalizer
// dispatches on it exactly once; nothing downstream inspects raw shapes.
type SourceMode string

const (
	SourceLive     SourceMode = "live"
	SourceFallback SourceMode = "fallback"
)

// SourceInput is the raw forecast handed to the normalizer by a source
// adapter. Exactly one of Live or Fallback is populated, per Mode.
type SourceInput struct {
	Mode     SourceMode
	City     string
	Live     []RawLiveSample
	Fallback []RawFallbackSample
}

// RawLiveSample is one forecast point as the live feed delivers it: the
// nested 3-hourly item of an OpenWeatherMap-style /forecast response.
// Measurement fields are pointers so a missing reading is distinguishable
// from an actual zero.
type RawLiveSample struct {
	Dt         int64           `json:"dt"`     // UTC epoch seconds
	DtTxt      string          `json:"dt_txt"` // "2006-01-02 15:04:05", UTC
	Main       LiveMain        `json:"main"`
	Wind       LiveWind        `json:"wind"`
	Clouds     LiveClouds      `json:"clouds"`
	Weather    []LiveCondition `json:"weather"`
	Pop        *float64        `json:"pop"`        // precipitation probability, fraction 0.0–1.0
	Visibility *float64        `json:"visibility"` // metres
}

// LiveMain carries the thermodynamic block of a live sample. Units: °C, %, hPa.
type LiveMain struct {
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
	TempMin   *float64 `json:"temp_min"`
	TempMax   *float64 `json:"temp_max"`
	Humidity  *float64 `json:"humidity"`
	Pressure  *float64 `json:"pressure"`
}

// LiveWind carries wind speed in m/s and direction in degrees.
type LiveWind struct {
	Speed *float64 `json:"speed"`
	Deg   *float64 `json:"deg"`
}

// LiveClouds carries cloud coverage in percent.
type LiveClouds struct {
	All *float64 `json:"all"`
}

// LiveCondition is one entry of the live sample's weather array.
type LiveCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// RawFallbackSample is one forecast point from a stored snapshot CSV. The
// snapshot is flat and partly pre-converted: the timestamp is a display
// string, precipitation probability is already a percentage, visibility is
// already in kilometres. Wind speed stays in m/s like the live feed.
// Pointer fields are nil when the column is absent or empty.
type RawFallbackSample struct {
	Time         string // display timestamp, see SnapshotTimeLayout
	TempC        *float64
	FeelsLikeC   *float64
	TempMinC     *float64
	TempMaxC     *float64
	HumidityPct  *float64
	PressureHPa  *float64
	WindSpeedMS  *float64
	WindDeg      *float64
	CloudPct     *float64
	PopPct       *float64 // percent 0–100, unlike the live fraction
	VisibilityKM *float64
	Description  string
	Icon         string
}

// CanonicalSample is the unified per-interval record both sources normalize
// into. All instances share the same field set and units regardless of
// origin. Pointer fields are explicit "no data" markers; they are never
// defaulted to zero.
type CanonicalSample struct {
	Timestamp            time.Time `json:"timestamp"`
	TemperatureC         float64   `json:"temperature_c"`
	FeelsLikeC           *float64  `json:"feels_like_c"`
	TempMinC             *float64  `json:"temp_min_c"`
	TempMaxC             *float64  `json:"temp_max_c"`
	HumidityPct          float64   `json:"humidity_pct"`
	PressureHPa          float64   `json:"pressure_hpa"`
	WindSpeedKMH         float64   `json:"wind_speed_kmh"`
	WindDirectionDeg     *float64  `json:"wind_direction_deg"`
	CloudPct             *float64  `json:"cloud_pct"`
	PrecipProbabilityPct *int      `json:"precip_probability_pct"`
	VisibilityKM         *float64  `json:"visibility_km"`
	ConditionLabel       string    `json:"condition_label"`
	Icon                 string    `json:"icon,omitempty"`
}

// EnrichedSample is a CanonicalSample plus the derived meteorological fields.
// HeatIndexC and WindChillC are nil whenever the sample falls outside the
// formula's valid domain; DewPointC is nil only for zero humidity. The JSON
// keys deliberately omit omitempty so renderers see an explicit null rather
// than a fabricated value.
type EnrichedSample struct {
	CanonicalSample
	HeatIndexC *float64 `json:"heat_index_c"`
	WindChillC *float64 `json:"wind_chill_c"`
	DewPointC  *float64 `json:"dew_point_c"`
	DayLabel   string   `json:"day_label"`
	HourLabel  string   `json:"hour_label"`
	TimeLabel  string   `json:"time_label"`
}

// ForecastDataset is the enrichment pipeline's output: enriched samples in
// ascending timestamp order, rebuilt fully on every refresh.
type ForecastDataset struct {
	City        string           `json:"city"`
	Source      SourceMode       `json:"source"`
	RetrievedAt time.Time        `json:"retrieved_at"`
	Samples     []EnrichedSample `json:"samples"`
}

// ShapeError reports input that does not match the expected raw sample
// shape: a required field missing or carrying an out-of-range value.
// Normalization fails whole-batch on the first one.
type ShapeError struct {
	Index int
	Field string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("sample %d: missing or malformed field %q", e.Index, e.Field)
}

// TimestampError reports a timestamp that cannot be parsed with the fixed
// snapshot layout. Like ShapeError it fails the whole batch; dropping the
// sample would silently misalign every downstream row.
type TimestampError struct {
	Index int
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("sample %d: unparseable timestamp %q: %v", e.Index, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }
