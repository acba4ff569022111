package weather

import "math"

// MergeWaves returns one wave reading per hourly index. Marine values are used
// only when the marine grid lines up with the hourly grid; otherwise, and for
// any null marine height, the wind-based estimate is used. The boolean reports
// whether marine data was aligned and used.
func MergeWaves(hourly HourlyFrame, marine *MarineFrame) ([]WavePoint, bool) {
	aligned := marineAligned(hourly, marine)

	waves := make([]WavePoint, hourly.Len())
	for i := range waves {
		if aligned {
			if h := marine.WaveHeight[i]; h != nil && !math.IsNaN(*h) {
				waves[i] = WavePoint{
					Height: round2(*h),
					Period: marinePeriod(marine, i),
				}
				continue
			}
		}
		waves[i] = WavePoint{
			Height: EstimateWaveHeight(valueAt(hourly.WindSpeed, i)),
			Period: DefaultWavePeriod,
		}
	}
	return waves, aligned
}

// marineAligned trusts positional alignment only when both grids have the same
// length and agree on their first and last timestamps.
func marineAligned(hourly HourlyFrame, marine *MarineFrame) bool {
	if marine == nil || marine.WaveHeight == nil {
		return false
	}
	n := hourly.Len()
	if n == 0 || len(marine.Time) != n || len(marine.WaveHeight) != n {
		return false
	}
	return marine.Time[0] == hourly.Time[0] && marine.Time[n-1] == hourly.Time[n-1]
}

func marinePeriod(marine *MarineFrame, i int) int {
	if i >= len(marine.WavePeriod) || marine.WavePeriod[i] == nil {
		return DefaultWavePeriod
	}
	return roundInt(*marine.WavePeriod[i])
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
