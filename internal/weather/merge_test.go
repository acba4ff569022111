package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func sampleHourly() HourlyFrame {
	return HourlyFrame{
		Time:          []string{"2026-10-19T10:00", "2026-10-19T11:00", "2026-10-19T12:00"},
		Temperature:   []float64{15, 16, 17},
		WindSpeed:     []float64{10, 22, 60},
		WindDirection: []float64{180, 190, 200},
		WindGusts:     []float64{20, 30, 80},
		Precipitation: []float64{0, 0, 0},
		CloudCover:    []float64{10, 20, 30},
	}
}

func TestMergeWavesPrefersAlignedMarine(t *testing.T) {
	hourly := sampleHourly()
	marine := &MarineFrame{
		Time:       append([]string(nil), hourly.Time...),
		WaveHeight: []*float64{ptr(1.234), nil, ptr(0.5)},
		WavePeriod: []*float64{ptr(7.6), ptr(8), nil},
	}

	waves, used := MergeWaves(hourly, marine)
	require.True(t, used)
	require.Len(t, waves, 3)

	assert.Equal(t, WavePoint{Height: 1.23, Period: 8}, waves[0])
	// null height falls back to the estimate for that index only
	assert.Equal(t, WavePoint{Height: EstimateWaveHeight(22), Period: DefaultWavePeriod}, waves[1])
	assert.Equal(t, WavePoint{Height: 0.5, Period: DefaultWavePeriod}, waves[2])
}

func TestMergeWavesFallsBackOnLengthMismatch(t *testing.T) {
	hourly := sampleHourly()
	marine := &MarineFrame{
		Time:       hourly.Time[:2],
		WaveHeight: []*float64{ptr(2), ptr(2)},
	}

	waves, used := MergeWaves(hourly, marine)
	assert.False(t, used)
	for i, w := range waves {
		assert.Equal(t, EstimateWaveHeight(hourly.WindSpeed[i]), w.Height)
		assert.Equal(t, DefaultWavePeriod, w.Period)
	}
}

func TestMergeWavesFallsBackOnShiftedGrid(t *testing.T) {
	hourly := sampleHourly()
	marine := &MarineFrame{
		Time:       []string{"2026-10-19T11:00", "2026-10-19T12:00", "2026-10-19T13:00"},
		WaveHeight: []*float64{ptr(2), ptr(2), ptr(2)},
	}

	_, used := MergeWaves(hourly, marine)
	assert.False(t, used)
}

func TestMergeWavesWithoutMarine(t *testing.T) {
	hourly := sampleHourly()

	waves, used := MergeWaves(hourly, nil)
	assert.False(t, used)
	assert.Equal(t, 1.5, waves[2].Height)

	waves, used = MergeWaves(hourly, &MarineFrame{Time: hourly.Time})
	assert.False(t, used)
	assert.Len(t, waves, 3)
}
