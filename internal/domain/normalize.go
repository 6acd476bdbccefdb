package domain

import (
	"fmt"
	"math"
	"time"
)

// SnapshotTimeLayout is the fixed display-timestamp format stored in
// snapshot CSVs, identical to the live feed's dt_txt. Both are UTC.
// Pinned against a real snapshot; changing it breaks reconciliation.
const SnapshotTimeLayout = "2006-01-02 15:04:05"

// Normalize converts either raw shape into canonical samples, one-to-one
// and in input order. It fails whole-batch on the first structural or
// timestamp problem rather than returning a misaligned partial result.
// Zero samples is valid input and yields an empty (non-nil) slice.
func Normalize(input SourceInput) ([]CanonicalSample, error) {
	switch input.Mode {
	case SourceLive:
		return normalizeLive(input.Live)
	case SourceFallback:
		return normalizeFallback(input.Fallback)
	default:
		return nil, fmt.Errorf("normalize: unknown source mode %q", input.Mode)
	}
}

func normalizeLive(samples []RawLiveSample) ([]CanonicalSample, error) {
	out := make([]CanonicalSample, 0, len(samples))

	for i, raw := range samples {
		ts, err := liveTimestamp(i, raw)
		if err != nil {
			return nil, err
		}

		if raw.Main.Temp == nil {
			return nil, &ShapeError{Index: i, Field: "main.temp"}
		}
		if raw.Main.Humidity == nil {
			return nil, &ShapeError{Index: i, Field: "main.humidity"}
		}
		if raw.Main.Pressure == nil {
			return nil, &ShapeError{Index: i, Field: "main.pressure"}
		}
		if raw.Wind.Speed == nil {
			return nil, &ShapeError{Index: i, Field: "wind.speed"}
		}
		if *raw.Main.Humidity < 0 || *raw.Main.Humidity > 100 {
			return nil, &ShapeError{Index: i, Field: "main.humidity"}
		}
		if *raw.Wind.Speed < 0 {
			return nil, &ShapeError{Index: i, Field: "wind.speed"}
		}

		precip, err := popPctFromFraction(i, raw.Pop)
		if err != nil {
			return nil, err
		}

		var visibilityKM *float64
		if raw.Visibility != nil {
			km := *raw.Visibility / 1000
			visibilityKM = &km
		}

		condition, icon := liveCondition(raw.Weather)

		out = append(out, CanonicalSample{
			Timestamp:            ts,
			TemperatureC:         *raw.Main.Temp,
			FeelsLikeC:           cloneFloat(raw.Main.FeelsLike),
			TempMinC:             cloneFloat(raw.Main.TempMin),
			TempMaxC:             cloneFloat(raw.Main.TempMax),
			HumidityPct:          *raw.Main.Humidity,
			PressureHPa:          *raw.Main.Pressure,
			WindSpeedKMH:         WindSpeedKMH(*raw.Wind.Speed),
			WindDirectionDeg:     cloneFloat(raw.Wind.Deg),
			CloudPct:             cloneFloat(raw.Clouds.All),
			PrecipProbabilityPct: precip,
			VisibilityKM:         visibilityKM,
			ConditionLabel:       condition,
			Icon:                 icon,
		})
	}

	return out, nil
}

func normalizeFallback(samples []RawFallbackSample) ([]CanonicalSample, error) {
	out := make([]CanonicalSample, 0, len(samples))

	for i, raw := range samples {
		if raw.Time == "" {
			return nil, &ShapeError{Index: i, Field: "time"}
		}
		ts, err := time.ParseInLocation(SnapshotTimeLayout, raw.Time, time.UTC)
		if err != nil {
			return nil, &TimestampError{Index: i, Value: raw.Time, Err: err}
		}

		if raw.TempC == nil {
			return nil, &ShapeError{Index: i, Field: "temp"}
		}
		if raw.HumidityPct == nil {
			return nil, &ShapeError{Index: i, Field: "humidity"}
		}
		if raw.PressureHPa == nil {
			return nil, &ShapeError{Index: i, Field: "pressure"}
		}
		if raw.WindSpeedMS == nil {
			return nil, &ShapeError{Index: i, Field: "wind_speed"}
		}
		if *raw.HumidityPct < 0 || *raw.HumidityPct > 100 {
			return nil, &ShapeError{Index: i, Field: "humidity"}
		}
		if *raw.WindSpeedMS < 0 {
			return nil, &ShapeError{Index: i, Field: "wind_speed"}
		}

		precip, err := popPctFromPercent(i, raw.PopPct)
		if err != nil {
			return nil, err
		}

		out = append(out, CanonicalSample{
			Timestamp:            ts,
			TemperatureC:         *raw.TempC,
			FeelsLikeC:           cloneFloat(raw.FeelsLikeC),
			TempMinC:             cloneFloat(raw.TempMinC),
			TempMaxC:             cloneFloat(raw.TempMaxC),
			HumidityPct:          *raw.HumidityPct,
			PressureHPa:          *raw.PressureHPa,
			WindSpeedKMH:         WindSpeedKMH(*raw.WindSpeedMS),
			WindDirectionDeg:     cloneFloat(raw.WindDeg),
			CloudPct:             cloneFloat(raw.CloudPct),
			PrecipProbabilityPct: precip,
			VisibilityKM:         cloneFloat(raw.VisibilityKM),
			ConditionLabel:       raw.Description,
			Icon:                 raw.Icon,
		})
	}

	return out, nil
}

// liveTimestamp resolves a live sample's absolute time, preferring the
// epoch field and falling back to the dt_txt display string.
func liveTimestamp(index int, raw RawLiveSample) (time.Time, error) {
	if raw.Dt > 0 {
		return time.Unix(raw.Dt, 0).UTC(), nil
	}
	if raw.DtTxt == "" {
		return time.Time{}, &ShapeError{Index: index, Field: "dt"}
	}
	ts, err := time.ParseInLocation(SnapshotTimeLayout, raw.DtTxt, time.UTC)
	if err != nil {
		return time.Time{}, &TimestampError{Index: index, Value: raw.DtTxt, Err: err}
	}
	return ts, nil
}

// popPctFromFraction converts the live 0.0–1.0 precipitation probability
// into the canonical 0–100 integer percentage. Rounding is half-to-even.
func popPctFromFraction(index int, pop *float64) (*int, error) {
	if pop == nil {
		return nil, nil
	}
	if *pop < 0 || *pop > 1 {
		return nil, &ShapeError{Index: index, Field: "pop"}
	}
	pct := int(math.RoundToEven(*pop * 100))
	return &pct, nil
}

// popPctFromPercent validates and rounds a snapshot's pre-scaled 0–100
// percentage. Rounding is half-to-even, same as the live path.
func popPctFromPercent(index int, pop *float64) (*int, error) {
	if pop == nil {
		return nil, nil
	}
	if *pop < 0 || *pop > 100 {
		return nil, &ShapeError{Index: index, Field: "pop"}
	}
	pct := int(math.RoundToEven(*pop))
	return &pct, nil
}

func liveCondition(weather []LiveCondition) (description, icon string) {
	if len(weather) == 0 {
		return "", ""
	}
	return weather[0].Description, weather[0].Icon
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
