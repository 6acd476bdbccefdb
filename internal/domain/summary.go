package domain

// Summary aggregates a forecast dataset for the terminal report and the
// dashboard header. DewPointAvgC is nil when no sample had a dew point.
type Summary struct {
	TempAvgC       float64  `json:"temp_avg_c"`
	TempMaxC       float64  `json:"temp_max_c"`
	TempMinC       float64  `json:"temp_min_c"`
	HumidityAvgPct float64  `json:"humidity_avg_pct"`
	PressureAvgHPa float64  `json:"pressure_avg_hpa"`
	WindMaxKMH     float64  `json:"wind_max_kmh"`
	PrecipMaxPct   int      `json:"precip_max_pct"`
	DewPointAvgC   *float64 `json:"dew_point_avg_c"`
	TotalSlots     int      `json:"total_slots"`
	DaysCovered    int      `json:"days_covered"`
}

// ComputeSummary derives summary statistics from an enriched dataset.
// Min/max temperature use the per-slot min/max bands when present, the
// point temperature otherwise. An empty dataset yields a zero Summary.
func ComputeSummary(ds ForecastDataset) Summary {
	if len(ds.Samples) == 0 {
		return Summary{}
	}

	var s Summary
	var tempSum, humiditySum, pressureSum float64
	var dewSum float64
	var dewCount int
	days := make(map[string]struct{})

	for i, sample := range ds.Samples {
		tempSum += sample.TemperatureC
		humiditySum += sample.HumidityPct
		pressureSum += sample.PressureHPa

		maxC := sample.TemperatureC
		if sample.TempMaxC != nil {
			maxC = *sample.TempMaxC
		}
		minC := sample.TemperatureC
		if sample.TempMinC != nil {
			minC = *sample.TempMinC
		}
		if i == 0 || maxC > s.TempMaxC {
			s.TempMaxC = maxC
		}
		if i == 0 || minC < s.TempMinC {
			s.TempMinC = minC
		}

		if sample.WindSpeedKMH > s.WindMaxKMH {
			s.WindMaxKMH = sample.WindSpeedKMH
		}
		if sample.PrecipProbabilityPct != nil && *sample.PrecipProbabilityPct > s.PrecipMaxPct {
			s.PrecipMaxPct = *sample.PrecipProbabilityPct
		}
		if sample.DewPointC != nil {
			dewSum += *sample.DewPointC
			dewCount++
		}

		days[sample.Timestamp.UTC().Format("2006-01-02")] = struct{}{}
	}

	n := float64(len(ds.Samples))
	s.TempAvgC = tempSum / n
	s.HumidityAvgPct = humiditySum / n
	s.PressureAvgHPa = pressureSum / n
	if dewCount > 0 {
		avg := dewSum / float64(dewCount)
		s.DewPointAvgC = &avg
	}
	s.TotalSlots = len(ds.Samples)
	s.DaysCovered = len(days)

	return s
}
