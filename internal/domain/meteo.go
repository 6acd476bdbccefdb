package domain

import "math"

// Conversion and formula constants. These are physical constants, not
// configuration: they do not vary per deployment.
const (
	msToKMH = 3.6

	// Rothfusz regression calibration range.
	heatIndexMinTempC    = 27.0
	heatIndexMinHumidity = 40.0

	// JAG/TI wind chill validity range.
	windChillMaxTempC   = 10.0
	windChillMinWindKMH = 4.8

	// Magnus approximation constants, °C form.
	magnusA = 17.62
	magnusB = 243.12
)

// WindSpeedKMH converts metres per second to kilometres per hour. Exact
// multiplication, no rounding; rounding is a presentation concern.
func WindSpeedKMH(ms float64) float64 {
	return ms * msToKMH
}

// HeatIndexC computes the apparent temperature via the Rothfusz regression.
// Defined only for temperature ≥ 27°C and relative humidity ≥ 40%; outside
// that range the polynomial is physically meaningless and nil is returned.
// The regression is evaluated in Fahrenheit to match the published
// coefficients, then converted back.
func HeatIndexC(tempC, humidityPct float64) *float64 {
	if tempC < heatIndexMinTempC || humidityPct < heatIndexMinHumidity {
		return nil
	}

	t := tempC*9/5 + 32
	h := humidityPct
	hi := -42.379 +
		2.04901523*t +
		10.14333127*h -
		0.22475541*t*h -
		0.00683783*t*t -
		0.05481717*h*h +
		0.00122874*t*t*h +
		0.00085282*t*h*h -
		0.00000199*t*t*h*h

	c := (hi - 32) * 5 / 9
	return &c
}

// WindChillC computes the apparent temperature via the Canadian JAG/TI
// formula. Defined only for temperature ≤ 10°C and wind ≥ 4.8 km/h; nil
// otherwise.
func WindChillC(tempC, windKMH float64) *float64 {
	if tempC > windChillMaxTempC || windKMH < windChillMinWindKMH {
		return nil
	}

	v := math.Pow(windKMH, 0.16)
	wc := 13.12 + 0.6215*tempC - 11.37*v + 0.3965*tempC*v
	return &wc
}

// DewPointC computes the dew point via the Magnus approximation. Humidity
// of zero (or below) has no defined logarithm and returns nil.
func DewPointC(tempC, humidityPct float64) *float64 {
	if humidityPct <= 0 {
		return nil
	}

	gamma := math.Log(humidityPct/100) + magnusA*tempC/(magnusB+tempC)
	dp := magnusB * gamma / (magnusA - gamma)
	return &dp
}
