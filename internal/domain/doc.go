// Package domain models interval-sampled weather forecasts and their
// meteorological enrichment.
//
// # Data Sources
//
// The live source is an OpenWeatherMap-style 5-day/3-hour forecast feed:
// 40 three-hourly samples in metric units, each a nested JSON item with
// main/wind/clouds/weather blocks. The fallback source is a flat snapshot
// CSV written by a previous run, used when the live feed is unreachable or
// no API key is configured. Both shapes normalize into the same
// [CanonicalSample] record; that reconciliation is the package's core
// guarantee. The pipeline never assumes the nominal 40-sample count — any
// non-negative count, including zero, is valid.
//
// # Units and Reconciliation
//
// Canonical units are fixed regardless of source:
//
//	temperature  °C        (both sources native)
//	humidity     %         0–100
//	pressure     hPa
//	wind speed   km/h      converted from the sources' m/s, ×3.6 exactly
//	precip prob  %         0–100 integer; the live feed supplies a 0.0–1.0
//	                       fraction, the snapshot a pre-scaled percentage.
//	                       Both round half-to-even (math.RoundToEven).
//	visibility   km        the live feed supplies metres, the snapshot km
//
// Timestamps are absolute UTC instants. The live feed carries an epoch
// (preferred) plus a "2006-01-02 15:04:05" display string; the snapshot
// stores only the display string, parsed back with [SnapshotTimeLayout].
// A string that does not parse fails the whole batch ([TimestampError]) —
// dropping or guessing would silently misorder the sequence.
//
// # Derived Fields
//
// Heat index: Rothfusz regression, evaluated in °F to match the published
// coefficients, valid only for T ≥ 27°C and RH ≥ 40%. Wind chill: JAG/TI
// formula, valid only for T ≤ 10°C and wind ≥ 4.8 km/h. Dew point: Magnus
// approximation with a=17.62, b=243.12 (°C form), undefined at zero
// humidity. Each function enforces its own domain guard and reports
// non-applicability as nil — callers never pre-filter, and a nil is a
// designed outcome, not an error.
//
// # Failure Policy
//
// Normalization is all-or-nothing: a missing required field or an
// out-of-range value ([ShapeError]) or an unparseable timestamp fails the
// batch. Silent coercion (clamping a negative humidity, defaulting a
// missing reading to zero) is deliberately absent; it would mask
// data-quality bugs in either source.
package domain
