package weather

import (
	"math"

	"trailgo/pkg/model"
)

// TemperatureCalibration maps raw sensor temperatures onto actual ones using two reference pairs.
type TemperatureCalibration struct {
	MinActual float64 `yaml:"min_actual" json:"min_actual"`
	MinRaw    float64 `yaml:"min_raw" json:"min_raw"`
	MaxActual float64 `yaml:"max_actual" json:"max_actual"`
	MaxRaw    float64 `yaml:"max_raw" json:"max_raw"`
}

// CalibrateTemperature applies the linear two-point calibration.
// Identical raw references leave the value unchanged.
func CalibrateTemperature(temp float64, c TemperatureCalibration) float64 {
	if c.MinRaw == c.MaxRaw {
		return temp
	}
	return c.MinActual + (c.MaxActual-c.MinActual)*(c.MinRaw-temp)/(c.MinRaw-c.MaxRaw)
}

func toFahrenheit(c float64) float64 { return c*9/5 + 32 }
func toCelsius(f float64) float64    { return (f - 32) * 5 / 9 }

// HeatIndex returns the apparent temperature in Celsius using the NWS algorithm:
// Steadman's approximation, switching to the Rothfusz regression above 80°F.
// Below 27°C the air temperature is returned.
func HeatIndex(tempC, humidity float64) float64 {
	if tempC < 27 {
		return tempC
	}
	rh := clamp(humidity, 0, 100)
	t := toFahrenheit(tempC)

	hi := 0.5 * (t + 61 + (t-68)*1.2 + rh*0.094)
	if (hi+t)/2 < 80 {
		return toCelsius((hi + t) / 2)
	}

	hi = -42.379 + 2.04901523*t + 10.14333127*rh -
		0.22475541*t*rh - 0.00683783*t*t -
		0.05481717*rh*rh + 0.00122874*t*t*rh +
		0.00085282*t*rh*rh - 0.00000199*t*t*rh*rh

	switch {
	case rh < 13 && t >= 80 && t <= 112:
		hi -= ((13 - rh) / 4) * math.Sqrt((17-math.Abs(t-95))/17)
	case rh > 85 && t >= 80 && t <= 87:
		hi += ((rh - 85) / 10) * ((87 - t) / 5)
	}
	return toCelsius(hi)
}

// HeatAlertFor classifies a heat index in Celsius.
func HeatAlertFor(heatIndex float64) model.HeatAlert {
	switch {
	case heatIndex <= -25:
		return model.FrostbiteDanger
	case heatIndex <= -17:
		return model.FrostbiteWarning
	case heatIndex <= 5:
		return model.FrostbiteCaution
	case heatIndex < 27:
		return model.HeatNormal
	case heatIndex <= 32:
		return model.HeatCaution
	case heatIndex <= 39:
		return model.HeatWarning
	case heatIndex <= 51:
		return model.HeatAlertLevel
	default:
		return model.HeatDanger
	}
}

// Magnus coefficients (Sonntag 1990)
const (
	magnusA = 17.62
	magnusB = 243.12
)

// DewPoint returns the dew point in Celsius. Humidity is clamped to [1, 100] percent.
func DewPoint(tempC, humidity float64) float64 {
	rh := clamp(humidity, 1, 100)
	gamma := math.Log(rh/100) + magnusA*tempC/(magnusB+tempC)
	return magnusB * gamma / (magnusA - gamma)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
