package domain

import (
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"time"
)

const (
	DefaultSampleSize    = 1000
	DefaultMapPointLimit = 500
	DefaultWeatherTopN   = 10
)

// SummaryOptions bounds the sampled and truncated outputs of Summarize.
type SummaryOptions struct {
	SampleSize    int    // max scatter points
	MapPointLimit int    // max map points, first rows in table order
	WeatherTopN   int    // weather values kept
	Seed          uint64 // scatter sampling seed
}

// DefaultSummaryOptions returns the dashboard defaults.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		SampleSize:    DefaultSampleSize,
		MapPointLimit: DefaultMapPointLimit,
		WeatherTopN:   DefaultWeatherTopN,
	}
}

// ValueCount is the number of rows holding one value.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountTable is a value-count table over one column.
type CountTable struct {
	Column string       `json:"column"`
	Counts []ValueCount `json:"counts"`
}

// DayCount is the number of accidents on one calendar day.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ScatterPoint is one sampled (speed limit, casualties, road condition) row.
type ScatterPoint struct {
	SpeedLimit    float64 `json:"speed_limit"`
	Casualties    float64 `json:"casualties"`
	RoadCondition string  `json:"road_condition"`
}

// ScatterSample feeds the speed vs. casualties chart.
type ScatterSample struct {
	SpeedColumn         string         `json:"speed_column"`
	CasualtiesColumn    string         `json:"casualties_column"`
	RoadConditionColumn string         `json:"road_condition_column"`
	Points              []ScatterPoint `json:"points"`
}

// Geo is a WGS-84 latitude/longitude pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapPoint is one accident marker with its popup fields.
type MapPoint struct {
	Geo
	Date     time.Time `json:"date"`
	Location string    `json:"location,omitempty"`
	Severity string    `json:"severity,omitempty"`
}

// MapLayer holds the map markers and the point to center the map on.
type MapLayer struct {
	Center *Geo       `json:"center,omitempty"`
	Points []MapPoint `json:"points"`
}

// Metrics is everything the dashboard renders for one filter state. Pointer
// fields are nil when the roles they need are unresolved.
type Metrics struct {
	TotalCount              int            `json:"total_count"`
	MeanCasualties          *float64       `json:"mean_casualties"`
	MaxSpeedLimit           *float64       `json:"max_speed_limit"`
	DailyTrend              []DayCount     `json:"daily_trend"`
	DayOfWeekCounts         *CountTable    `json:"day_of_week_counts,omitempty"`
	SeverityCounts          *CountTable    `json:"severity_counts,omitempty"`
	WeatherTopN             *CountTable    `json:"weather_top_n,omitempty"`
	RoadConditionGroups     *CountTable    `json:"road_condition_groups,omitempty"`
	SpeedVsCasualtiesSample *ScatterSample `json:"speed_vs_casualties_sample,omitempty"`
	MapPoints               *MapLayer      `json:"map_points,omitempty"`
	Unavailable             []Role         `json:"unavailable,omitempty"`
}

// Summarize computes the dashboard metrics over v. It reads v's table and
// never modifies it; the result depends only on its arguments.
func Summarize(v View, s Schema, opts SummaryOptions) Metrics {
	m := Metrics{
		TotalCount:  v.Len(),
		DailyTrend:  dailyTrend(v),
		Unavailable: s.Unresolved(),
	}

	if col, ok := s.Column(RoleCasualties); ok {
		m.MeanCasualties = mean(v, col)
	}
	if col, ok := s.Column(RoleSpeedLimit); ok {
		m.MaxSpeedLimit = maxOf(v, col)
	}
	if col, ok := s.Column(RoleDayOfWeek); ok {
		m.DayOfWeekCounts = &CountTable{Column: col, Counts: weekdayCounts(v, col)}
	}
	if col, ok := s.Column(RoleSeverity); ok {
		m.SeverityCounts = &CountTable{Column: col, Counts: valueCounts(v, col)}
	}
	if col, ok := s.Column(RoleWeather); ok {
		counts := valueCounts(v, col)
		if opts.WeatherTopN > 0 && len(counts) > opts.WeatherTopN {
			counts = counts[:opts.WeatherTopN]
		}
		m.WeatherTopN = &CountTable{Column: col, Counts: counts}
	}
	if col, ok := s.Column(RoleRoadCondition); ok {
		m.RoadConditionGroups = &CountTable{Column: col, Counts: valueCounts(v, col)}
	}
	if s.Resolved(RoleSpeedLimit, RoleCasualties, RoleRoadCondition) {
		m.SpeedVsCasualtiesSample = scatterSample(v, s, opts)
	}
	if s.Resolved(RoleLatitude, RoleLongitude) {
		m.MapPoints = mapLayer(v, s, opts.MapPointLimit)
	}
	return m
}

func mean(v View, col string) *float64 {
	var sum float64
	var n int
	for i := 0; i < v.Len(); i++ {
		if f, ok := v.Record(i).Get(col).Float(); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	if math.IsInf(avg, 0) || math.IsNaN(avg) {
		return nil
	}
	return &avg
}

func maxOf(v View, col string) *float64 {
	var best float64
	found := false
	for i := 0; i < v.Len(); i++ {
		if f, ok := v.Record(i).Get(col).Float(); ok && (!found || f > best) {
			best = f
			found = true
		}
	}
	if !found {
		return nil
	}
	return &best
}

func dailyTrend(v View) []DayCount {
	counts := make(map[time.Time]int)
	for i := 0; i < v.Len(); i++ {
		counts[calendarDay(v.Record(i).Date)]++
	}
	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// countValues counts non-null values of col in first-encountered order.
func countValues(v View, col string) []ValueCount {
	index := make(map[string]int)
	out := make([]ValueCount, 0)
	for i := 0; i < v.Len(); i++ {
		val := v.Record(i).Get(col)
		if val.IsNull() {
			continue
		}
		key := val.Key()
		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, ValueCount{Value: key})
		}
		out[pos].Count++
	}
	return out
}

// valueCounts orders counts descending; ties keep first-encountered order.
func valueCounts(v View, col string) []ValueCount {
	out := countValues(v, col)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

var weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// weekdayRank places canonical day names first, Sunday through Saturday, and
// everything else after them.
func weekdayRank(label string) int {
	for i, day := range weekdays {
		if strings.EqualFold(strings.TrimSpace(label), day) {
			return i
		}
	}
	return len(weekdays)
}

// weekdayCounts orders by canonical week position. Unknown labels follow in
// first-encountered order.
func weekdayCounts(v View, col string) []ValueCount {
	out := countValues(v, col)
	sort.SliceStable(out, func(i, j int) bool { return weekdayRank(out[i].Value) < weekdayRank(out[j].Value) })
	return out
}

func scatterSample(v View, s Schema, opts SummaryOptions) *ScatterSample {
	speedCol, _ := s.Column(RoleSpeedLimit)
	casCol, _ := s.Column(RoleCasualties)
	roadCol, _ := s.Column(RoleRoadCondition)

	candidates := make([]ScatterPoint, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		r := v.Record(i)
		speed, ok1 := r.Get(speedCol).Float()
		cas, ok2 := r.Get(casCol).Float()
		road := r.Get(roadCol)
		if !ok1 || !ok2 || road.IsNull() {
			continue
		}
		candidates = append(candidates, ScatterPoint{SpeedLimit: speed, Casualties: cas, RoadCondition: road.Key()})
	}

	sample := &ScatterSample{
		SpeedColumn:         speedCol,
		CasualtiesColumn:    casCol,
		RoadConditionColumn: roadCol,
		Points:              candidates,
	}
	if opts.SampleSize <= 0 || len(candidates) <= opts.SampleSize {
		return sample
	}

	picked := sampleIndices(len(candidates), opts.SampleSize, opts.Seed)
	sample.Points = make([]ScatterPoint, len(picked))
	for i, idx := range picked {
		sample.Points[i] = candidates[idx]
	}
	return sample
}

// sampleIndices draws k distinct indices from [0, n) uniformly, returned in
// ascending order. Requires k <= n.
func sampleIndices(n, k int, seed uint64) []int {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	// Partial Fisher-Yates: the first k slots end up a uniform sample.
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	picked := pool[:k]
	slices.Sort(picked)
	return picked
}

func mapLayer(v View, s Schema, limit int) *MapLayer {
	latCol, _ := s.Column(RoleLatitude)
	lonCol, _ := s.Column(RoleLongitude)
	locCol, hasLoc := s.Column(RoleLocation)
	sevCol, hasSev := s.Column(RoleSeverity)

	layer := &MapLayer{Points: make([]MapPoint, 0)}
	var sumLat, sumLon float64
	for i := 0; i < v.Len(); i++ {
		if limit > 0 && len(layer.Points) >= limit {
			break
		}
		r := v.Record(i)
		lat, ok1 := r.Get(latCol).Float()
		lon, ok2 := r.Get(lonCol).Float()
		if !ok1 || !ok2 {
			continue
		}
		p := MapPoint{Geo: Geo{Lat: lat, Lon: lon}, Date: r.Date}
		if hasLoc {
			p.Location = r.Get(locCol).Key()
		}
		if hasSev {
			p.Severity = r.Get(sevCol).Key()
		}
		layer.Points = append(layer.Points, p)
		sumLat += lat
		sumLon += lon
	}
	if n := float64(len(layer.Points)); n > 0 {
		layer.Center = &Geo{Lat: sumLat / n, Lon: sumLon / n}
	}
	return layer
}
