package weather

import "math"

const (
	// KnotsPerKmh converts km/h to knots.
	KnotsPerKmh = 0.539957

	// DefaultWavePeriod is used whenever no marine period is available.
	DefaultWavePeriod = 5
)

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// KmhToKnots converts a wind speed from km/h to knots.
func KmhToKnots(kmh float64) float64 {
	return kmh * KnotsPerKmh
}

// EstimateWaveHeight guesses a wave height in metres from a wind speed in km/h.
func EstimateWaveHeight(windKmh float64) float64 {
	return WaveHeightForKnots(KmhToKnots(windKmh))
}

// WaveHeightForKnots is the piecewise wind-to-wave mapping used when no marine
// data is available. It is monotonic and capped at 1.5 m from 30 kt upward.
func WaveHeightForKnots(kt float64) float64 {
	var h float64
	switch {
	case kt < 5:
		h = 0.1
	case kt < 10:
		h = 0.2
	case kt < 15:
		h = 0.3 + (kt-10)*0.04
	case kt < 20:
		h = 0.5 + (kt-15)*0.06
	case kt < 30:
		h = 0.8 + (kt-20)*0.07
	default:
		h = 1.5
	}
	return round2(h)
}

// CompassPoint maps a bearing in degrees to one of 16 compass points.
func CompassPoint(deg float64) string {
	idx := int(math.Round(deg/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassPoints[idx]
}

// roundInt rounds half up, so -0.5 becomes 0 rather than -1.
func roundInt(x float64) int {
	return int(math.Floor(x + 0.5))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
