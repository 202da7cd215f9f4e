// Package analytics computes derived result sets over the canonical rainfall
// table: top/bottom-N rankings, hourly distribution, monthly-average alert
// thresholds, and summary statistics.
//
// Every operation treats the table as read-only and keeps grouping state in
// its own structures, so repeated or concurrent calls over a shared table
// never observe each other. An empty table yields empty results, never an
// error — that is the "no data loaded yet" state.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wxlabsg/rainfall-insights/internal/domain"
)

// DefaultThresholdMultiplier scales the monthly average into the alert
// threshold when the caller does not supply a multiplier.
const DefaultThresholdMultiplier = 1.5

// coordGroupPrecision is the decimal precision used when merging spatially
// close stations. Rounding to 2 decimals (~1.1 km) is an explicit
// approximation, not true geospatial clustering.
const coordGroupPrecision = 2

// AreaRank is one ranked group: a single station, or a coordinate cell when
// nearby grouping is enabled.
type AreaRank struct {
	StationID     string  `json:"station_id,omitempty"` // empty for coordinate groups
	StationName   string  `json:"station_name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	TotalRainfall float64 `json:"total_rainfall"`
	AvgRainfall   float64 `json:"avg_rainfall"`
	ReadingCount  int     `json:"reading_count"`
}

// RankOptions controls ranking behavior.
type RankOptions struct {
	// GroupNearby merges stations whose coordinates round to the same
	// 2-decimal cell into one group.
	GroupNearby bool
}

// TopAreas returns the n groups with the largest total rainfall.
// Ties break by station id ascending (coordinate groups: latitude, then
// longitude ascending) so the ordering is deterministic.
func TopAreas(t domain.Table, n int, opts RankOptions) []AreaRank {
	groups := groupAreas(t, opts.GroupNearby)
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].TotalRainfall != groups[j].TotalRainfall {
			return groups[i].TotalRainfall > groups[j].TotalRainfall
		}
		return areaLess(groups[i], groups[j])
	})
	return truncate(groups, n)
}

// BottomAreas returns the n station groups with the smallest total rainfall.
// Same tie-break as TopAreas, so for n covering all groups the two rankings
// partition the group set exactly.
func BottomAreas(t domain.Table, n int) []AreaRank {
	groups := groupAreas(t, false)
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].TotalRainfall != groups[j].TotalRainfall {
			return groups[i].TotalRainfall < groups[j].TotalRainfall
		}
		return areaLess(groups[i], groups[j])
	})
	return truncate(groups, n)
}

func areaLess(a, b AreaRank) bool {
	if a.StationID != b.StationID {
		return a.StationID < b.StationID
	}
	if a.Latitude != b.Latitude {
		return a.Latitude < b.Latitude
	}
	return a.Longitude < b.Longitude
}

func truncate(groups []AreaRank, n int) []AreaRank {
	if n < 0 {
		n = 0
	}
	if n > len(groups) {
		n = len(groups)
	}
	return groups[:n]
}

// groupAreas aggregates rows into per-station (or per-coordinate-cell)
// groups in first-seen order: sum/mean/count of rainfall, mean coordinates.
func groupAreas(t domain.Table, byCoords bool) []AreaRank {
	type acc struct {
		rank   AreaRank
		sumLat float64
		sumLon float64
	}
	var order []string
	accs := make(map[string]*acc)

	for _, row := range t {
		var key string
		if byCoords {
			key = fmt.Sprintf("%.*f|%.*f",
				coordGroupPrecision, roundTo(row.Latitude, coordGroupPrecision),
				coordGroupPrecision, roundTo(row.Longitude, coordGroupPrecision))
		} else {
			key = row.StationID
		}

		a, ok := accs[key]
		if !ok {
			a = &acc{rank: AreaRank{StationName: row.StationName}}
			if !byCoords {
				a.rank.StationID = row.StationID
			}
			accs[key] = a
			order = append(order, key)
		}
		a.rank.TotalRainfall += row.RainfallMM
		a.rank.ReadingCount++
		a.sumLat += row.Latitude
		a.sumLon += row.Longitude
	}

	groups := make([]AreaRank, 0, len(order))
	for _, key := range order {
		a := accs[key]
		n := float64(a.rank.ReadingCount)
		a.rank.AvgRainfall = a.rank.TotalRainfall / n
		a.rank.Latitude = a.sumLat / n
		a.rank.Longitude = a.sumLon / n
		groups = append(groups, a.rank)
	}
	return groups
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}

// HourlyStat summarizes rainfall for one hour of day across all stations.
type HourlyStat struct {
	Hour          int     `json:"hour"`
	TotalRainfall float64 `json:"total_rainfall"`
	AvgRainfall   float64 `json:"avg_rainfall"`
	ReadingCount  int     `json:"reading_count"`
	StdRainfall   float64 `json:"std_rainfall"`
}

// HourlyDistribution groups rows by hour of day and reports sum, mean,
// count, and sample standard deviation, sorted ascending by hour. Hours
// absent from the data are absent from the result — there is no
// zero-filling.
func HourlyDistribution(t domain.Table) []HourlyStat {
	byHour := make(map[int][]float64)
	for _, row := range t {
		byHour[row.Hour] = append(byHour[row.Hour], row.RainfallMM)
	}

	stats := make([]HourlyStat, 0, len(byHour))
	for hour, values := range byHour {
		stats = append(stats, HourlyStat{
			Hour:          hour,
			TotalRainfall: sum(values),
			AvgRainfall:   mean(values),
			ReadingCount:  len(values),
			StdRainfall:   sampleStd(values),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Hour < stats[j].Hour })
	return stats
}

// MonthlyAverage is the mean rainfall over rows whose calendar date falls in
// the current wall-clock month and year. When no rows match it falls back to
// the mean over the whole table; an empty table yields 0.
func MonthlyAverage(t domain.Table) float64 {
	if len(t) == 0 {
		return 0
	}

	now := clock.Now()
	var monthly, all []float64
	for _, row := range t {
		all = append(all, row.RainfallMM)
		if row.Timestamp.Month() == now.Month() && row.Timestamp.Year() == now.Year() {
			monthly = append(monthly, row.RainfallMM)
		}
	}
	if len(monthly) == 0 {
		return mean(all)
	}
	return mean(monthly)
}

// AlertArea flags a station whose mean rainfall exceeds the alert threshold.
type AlertArea struct {
	StationID      string  `json:"station_id"`
	StationName    string  `json:"station_name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AvgRainfall    float64 `json:"avg_rainfall"`
	Threshold      float64 `json:"threshold"`
	ExcessRainfall float64 `json:"excess_rainfall"`
}

// AlertAreas returns the stations whose mean rainfall exceeds
// MonthlyAverage × multiplier, sorted by excess descending (ties by station
// id ascending), together with the threshold itself. A non-positive
// multiplier selects the default of 1.5. No data yields an empty set and a
// zero threshold.
func AlertAreas(t domain.Table, multiplier float64) ([]AlertArea, float64) {
	if len(t) == 0 {
		return nil, 0
	}
	if multiplier <= 0 {
		multiplier = DefaultThresholdMultiplier
	}

	threshold := MonthlyAverage(t) * multiplier

	var alerts []AlertArea
	for _, g := range groupAreas(t, false) {
		if g.AvgRainfall <= threshold {
			continue
		}
		alerts = append(alerts, AlertArea{
			StationID:      g.StationID,
			StationName:    g.StationName,
			Latitude:       g.Latitude,
			Longitude:      g.Longitude,
			AvgRainfall:    g.AvgRainfall,
			Threshold:      threshold,
			ExcessRainfall: g.AvgRainfall - threshold,
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].ExcessRainfall != alerts[j].ExcessRainfall {
			return alerts[i].ExcessRainfall > alerts[j].ExcessRainfall
		}
		return alerts[i].StationID < alerts[j].StationID
	})
	return alerts, threshold
}

// Summary holds whole-table statistics.
type Summary struct {
	TotalStations            int       `json:"total_stations"`
	TotalReadings            int       `json:"total_readings"`
	AvgRainfall              float64   `json:"avg_rainfall"`
	MaxRainfall              float64   `json:"max_rainfall"`
	MinRainfall              float64   `json:"min_rainfall"`
	StdRainfall              float64   `json:"std_rainfall"`
	ZeroRainfallReadings     int       `json:"zero_rainfall_readings"`
	NegativeRainfallReadings int       `json:"negative_rainfall_readings"`
	TimeRangeStart           time.Time `json:"time_range_start"`
	TimeRangeEnd             time.Time `json:"time_range_end"`
}

// Summarize computes summary statistics for the table. An empty table yields
// the zero-value Summary rather than an error; std over fewer than two rows
// is 0.
func Summarize(t domain.Table) Summary {
	if len(t) == 0 {
		return Summary{}
	}

	s := Summary{
		TotalReadings:  len(t),
		TimeRangeStart: t[0].Timestamp,
		TimeRangeEnd:   t[0].Timestamp,
	}

	stations := make(map[string]struct{})
	values := make([]float64, 0, len(t))
	for _, row := range t {
		stations[row.StationID] = struct{}{}
		values = append(values, row.RainfallMM)
		if row.RainfallMM == 0 {
			s.ZeroRainfallReadings++
		}
		if row.RainfallMM < 0 {
			s.NegativeRainfallReadings++
		}
		if row.Timestamp.Before(s.TimeRangeStart) {
			s.TimeRangeStart = row.Timestamp
		}
		if row.Timestamp.After(s.TimeRangeEnd) {
			s.TimeRangeEnd = row.Timestamp
		}
	}

	s.TotalStations = len(stations)
	s.AvgRainfall = mean(values)
	s.StdRainfall = sampleStd(values)
	s.MaxRainfall = values[0]
	s.MinRainfall = values[0]
	for _, v := range values[1:] {
		s.MaxRainfall = math.Max(s.MaxRainfall, v)
		s.MinRainfall = math.Min(s.MinRainfall, v)
	}
	return s
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// sampleStd is the sample (n-1) standard deviation; fewer than two values
// yield 0 rather than NaN.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}
