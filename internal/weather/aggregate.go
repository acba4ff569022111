package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	displayStartHour  = 5
	displayEndHour    = 22
	daylightStartHour = 8
	daylightEndHour   = 18

	thunderstormCode = 95
)

// BuildDays groups merged hourly data under each daily date, in the order the
// daily frame lists them. waves must be index-aligned with hourly.
func BuildDays(hourly HourlyFrame, daily DailyFrame, waves []WavePoint) []DaySummary {
	byDate := make(map[string][]int)
	for i, ts := range hourly.Time {
		if len(ts) < 10 {
			continue
		}
		date := ts[:10]
		byDate[date] = append(byDate[date], i)
	}

	days := make([]DaySummary, 0, len(daily.Time))
	for d, date := range daily.Time {
		var (
			hours    = make([]HourRecord, 0)
			daylight []int
		)
		for _, i := range byDate[date] {
			hour, ok := hourOf(hourly.Time[i])
			if !ok || hour < displayStartHour || hour > displayEndHour {
				continue
			}
			hours = append(hours, buildHour(hourly, waves, i, hour))
			if hour >= daylightStartHour && hour <= daylightEndHour {
				daylight = append(daylight, i)
			}
		}

		precip := valueAt(daily.PrecipitationSum, d)
		thunder := false
		for _, i := range daylight {
			if isThunderstorm(hourly, i) {
				thunder = true
				break
			}
		}

		days = append(days, DaySummary{
			Date:          date,
			Label:         DayLabel(d, date),
			TempMax:       roundInt(valueAt(daily.TemperatureMax, d)),
			TempMin:       roundInt(valueAt(daily.TemperatureMin, d)),
			Precipitation: round1(precip),
			WindDesc:      WindDescription(hourly, daylight),
			Summary:       daySummaryText(hourly, daylight, precip, thunder),
			Thunder:       thunder,
			Hours:         hours,
		})
	}
	return days
}

func buildHour(hourly HourlyFrame, waves []WavePoint, i, hour int) HourRecord {
	rec := HourRecord{
		Hour:    hour,
		Temp:    roundInt(valueAt(hourly.Temperature, i)),
		Wind:    roundInt(KmhToKnots(valueAt(hourly.WindSpeed, i))),
		WindDir: roundInt(valueAt(hourly.WindDirection, i)),
		Gust:    roundInt(KmhToKnots(valueAt(hourly.WindGusts, i))),
		Rain:    round1(valueAt(hourly.Precipitation, i)),
		Cloud:   roundInt(valueAt(hourly.CloudCover, i)),
		Thunder: isThunderstorm(hourly, i),
	}
	if i < len(waves) {
		rec.WaveHeight = waves[i].Height
		rec.WavePeriod = waves[i].Period
	}
	return rec
}

// hourOf reads the hour from an ISO-8601 local timestamp like 2026-10-19T14:00.
func hourOf(ts string) (int, bool) {
	if len(ts) < 13 || ts[10] != 'T' {
		return 0, false
	}
	h, err := strconv.Atoi(ts[11:13])
	if err != nil {
		return 0, false
	}
	return h, true
}

func isThunderstorm(hourly HourlyFrame, i int) bool {
	return i < len(hourly.WeatherCode) && hourly.WeatherCode[i] >= thunderstormCode
}

// WindDescription summarises wind over the given hour indices as
// "<DIR> <min>–<max> kts", or "<DIR1>→<DIR2> <min>–<max> kts" when the
// direction at the first and last index differ.
func WindDescription(hourly HourlyFrame, idx []int) string {
	if len(idx) == 0 {
		return ""
	}

	lo, hi := math.MaxInt, math.MinInt
	for _, i := range idx {
		kt := roundInt(KmhToKnots(valueAt(hourly.WindSpeed, i)))
		lo = min(lo, kt)
		hi = max(hi, kt)
	}

	start := CompassPoint(valueAt(hourly.WindDirection, idx[0]))
	end := CompassPoint(valueAt(hourly.WindDirection, idx[len(idx)-1]))
	dir := start
	if start != end {
		dir = start + "→" + end
	}
	return fmt.Sprintf("%s %d–%d kts", dir, lo, hi)
}

// SkyCondition describes mean cloud cover in percent.
func SkyCondition(meanCloud float64) string {
	switch {
	case meanCloud > 75:
		return "Cloudy"
	case meanCloud > 50:
		return "Mostly cloudy"
	case meanCloud > 25:
		return "Partly cloudy"
	default:
		return "Sunny"
	}
}

// RainClause returns the sentence appended to a summary for a daily rain total in mm.
func RainClause(precipSum float64) string {
	switch {
	case precipSum > 10:
		return " Heavy rain."
	case precipSum > 5:
		return " Rain likely."
	case precipSum > 2:
		return " Showers likely."
	case precipSum > 0.5:
		return " Chance of showers."
	default:
		return ""
	}
}

func daySummaryText(hourly HourlyFrame, daylight []int, precip float64, thunder bool) string {
	var b strings.Builder
	if len(daylight) > 0 {
		var sum float64
		for _, i := range daylight {
			sum += valueAt(hourly.CloudCover, i)
		}
		b.WriteString(SkyCondition(sum / float64(len(daylight))))
		b.WriteString(".")
	}
	b.WriteString(RainClause(precip))
	if thunder {
		b.WriteString(" Thunderstorms possible.")
	}
	return strings.TrimSpace(b.String())
}

// DayLabel returns "Today", "Tomorrow", or a short label like "Wed 12/2"
// derived from the date itself.
func DayLabel(index int, date string) string {
	switch index {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %d/%d", t.Format("Mon"), t.Day(), int(t.Month()))
}
