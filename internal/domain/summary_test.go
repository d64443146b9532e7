package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullRow fills every scenario column for one accident.
func fullRow(date time.Time, i int) Record {
	return row(date,
		"Junction_Location", fmt.Sprintf("Junction %d", i%7),
		"Accident_Severity", []string{"Slight", "Serious", "Fatal"}[i%3],
		"Number_of_Casualties", 1+i%4,
		"Speed_limit", 20+10*(i%6),
		"Day_of_Week", weekdays[i%7],
		"Weather_Conditions", []string{"Fine", "Raining", "Snowing"}[i%3],
		"Road_Surface_Conditions", []string{"Dry", "Wet"}[i%2],
		"Latitude", 51.0+float64(i)/10000,
		"Longitude", -1.0-float64(i)/10000,
	)
}

func largeTable(n int) *Table {
	records := make([]Record, n)
	for i := range records {
		records[i] = fullRow(day(2021, 1, 1).AddDate(0, 0, i%30), i)
	}
	return newTable(scenarioColumns, records...)
}

func TestSummarize_EmptyView(t *testing.T) {
	tbl := newTable(scenarioColumns)
	s := Resolve(scenarioColumns)

	m := Summarize(tbl.All(), s, DefaultSummaryOptions())

	assert.Equal(t, 0, m.TotalCount)
	assert.Nil(t, m.MeanCasualties)
	assert.Nil(t, m.MaxSpeedLimit)
	assert.Empty(t, m.DailyTrend)
	require.NotNil(t, m.DayOfWeekCounts)
	assert.Empty(t, m.DayOfWeekCounts.Counts)
	require.NotNil(t, m.SeverityCounts)
	assert.Empty(t, m.SeverityCounts.Counts)
	require.NotNil(t, m.WeatherTopN)
	assert.Empty(t, m.WeatherTopN.Counts)
	require.NotNil(t, m.RoadConditionGroups)
	assert.Empty(t, m.RoadConditionGroups.Counts)
	require.NotNil(t, m.SpeedVsCasualtiesSample)
	assert.Empty(t, m.SpeedVsCasualtiesSample.Points)
	require.NotNil(t, m.MapPoints)
	assert.Empty(t, m.MapPoints.Points)
	assert.Nil(t, m.MapPoints.Center)
}

func TestSummarize_UnresolvedRolesAreOmitted(t *testing.T) {
	tbl := newTable([]string{testDateColumn, "Notes"},
		row(day(2020, 3, 1), "Notes", "a"),
		row(day(2020, 3, 1), "Notes", "b"),
	)

	m := Summarize(tbl.All(), Resolve(tbl.Columns()), DefaultSummaryOptions())

	assert.Equal(t, 2, m.TotalCount)
	assert.Nil(t, m.MeanCasualties)
	assert.Nil(t, m.MaxSpeedLimit)
	assert.Nil(t, m.DayOfWeekCounts)
	assert.Nil(t, m.SeverityCounts)
	assert.Nil(t, m.WeatherTopN)
	assert.Nil(t, m.RoadConditionGroups)
	assert.Nil(t, m.SpeedVsCasualtiesSample)
	assert.Nil(t, m.MapPoints)
	assert.Equal(t, Roles, m.Unavailable)
	assert.Equal(t, []DayCount{{Date: day(2020, 3, 1), Count: 2}}, m.DailyTrend)
}

func TestSummarize_MeanAndMaxSkipNulls(t *testing.T) {
	cols := []string{testDateColumn, "Casualties", "Speed_Limit"}
	tbl := newTable(cols,
		row(day(2020, 1, 1), "Casualties", 1, "Speed_Limit", 30),
		row(day(2020, 1, 1), "Casualties", nil, "Speed_Limit", "unknown"),
		row(day(2020, 1, 1), "Casualties", 4, "Speed_Limit", 70),
	)

	m := Summarize(tbl.All(), Resolve(cols), DefaultSummaryOptions())

	require.NotNil(t, m.MeanCasualties)
	assert.InDelta(t, 2.5, *m.MeanCasualties, 1e-9)
	require.NotNil(t, m.MaxSpeedLimit)
	assert.InDelta(t, 70.0, *m.MaxSpeedLimit, 1e-9)
}

func TestSummarize_AllNullColumnIsUndefined(t *testing.T) {
	cols := []string{testDateColumn, "Casualties"}
	tbl := newTable(cols, row(day(2020, 1, 1), "Casualties", nil))

	m := Summarize(tbl.All(), Resolve(cols), DefaultSummaryOptions())
	assert.Nil(t, m.MeanCasualties)
}

func TestSummarize_MeanOverflowIsUndefined(t *testing.T) {
	cols := []string{testDateColumn, "Casualties"}
	tbl := newTable(cols,
		row(day(2020, 1, 1), "Casualties", 1e308),
		row(day(2020, 1, 1), "Casualties", 1e308),
	)

	m := Summarize(tbl.All(), Resolve(cols), DefaultSummaryOptions())
	assert.Nil(t, m.MeanCasualties)

	_, err := json.Marshal(m)
	require.NoError(t, err)
}

func TestSummarize_DailyTrendOrderedByDate(t *testing.T) {
	tbl := newTable([]string{testDateColumn},
		row(time.Date(2020, 1, 3, 8, 0, 0, 0, time.UTC)),
		row(time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)),
		row(time.Date(2020, 1, 3, 17, 30, 0, 0, time.UTC)),
	)

	m := Summarize(tbl.All(), Resolve(tbl.Columns()), DefaultSummaryOptions())

	want := []DayCount{
		{Date: day(2020, 1, 1), Count: 1},
		{Date: day(2020, 1, 3), Count: 2},
	}
	if diff := cmp.Diff(want, m.DailyTrend); diff != "" {
		t.Fatalf("daily trend mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_DayOfWeekCanonicalOrder(t *testing.T) {
	cols := []string{testDateColumn, "Day_of_Week"}
	labels := []string{"Friday", "Holiday", "Monday", "Sunday", "Monday", "Unknown", "Saturday", "Holiday"}
	records := make([]Record, len(labels))
	for i, l := range labels {
		records[i] = row(day(2020, 1, 1), "Day_of_Week", l)
	}
	tbl := newTable(cols, records...)

	m := Summarize(tbl.All(), Resolve(cols), DefaultSummaryOptions())

	require.NotNil(t, m.DayOfWeekCounts)
	want := []ValueCount{
		{"Sunday", 1},
		{"Monday", 2},
		{"Friday", 1},
		{"Saturday", 1},
		{"Holiday", 2},
		{"Unknown", 1},
	}
	assert.Equal(t, "Day_of_Week", m.DayOfWeekCounts.Column)
	assert.Equal(t, want, m.DayOfWeekCounts.Counts)
}

func TestSummarize_WeatherTopN(t *testing.T) {
	cols := []string{testDateColumn, "Weather_Conditions"}
	counts := []ValueCount{
		{"Rain", 40}, {"Clear", 35}, {"Fog", 10}, {"Snow", 10}, {"Ice", 5}, {"Mist", 3},
		{"Wind", 2}, {"Hail", 1}, {"Sleet", 1}, {"Dust", 1}, {"Smoke", 1},
	}
	var records []Record
	for _, c := range counts {
		for i := 0; i < c.Count; i++ {
			records = append(records, row(day(2020, 1, 1), "Weather_Conditions", c.Value))
		}
	}
	tbl := newTable(cols, records...)

	m := Summarize(tbl.All(), Resolve(cols), DefaultSummaryOptions())

	require.NotNil(t, m.WeatherTopN)
	assert.Len(t, m.WeatherTopN.Counts, 10)
	assert.Equal(t, counts[:10], m.WeatherTopN.Counts)
}

func TestSummarize_SeverityCountsDescendingWithStableTies(t *testing.T) {
	cols := []string{testDateColumn, "Accident_Severity"}
	tbl := newTable(cols,
		row(day(2020, 1, 1), "Accident_Severity", "Serious"),
		row(day(2020, 1, 1), "Accident_Severity", "Slight"),
		row(day(2020, 1, 1), "Accident_Severity", "Slight"),
		row(day(2020, 1, 1), "Accident_Severity", "Fatal"),
		row(day(2020, 1, 1), "Accident_Severity", nil),
	)

	m := Summarize(tbl.All(), Resolve(cols), DefaultSummaryOptions())

	require.NotNil(t, m.SeverityCounts)
	assert.Equal(t, []ValueCount{{"Slight", 2}, {"Serious", 1}, {"Fatal", 1}}, m.SeverityCounts.Counts)
}

func TestSummarize_LargeTableCaps(t *testing.T) {
	tbl := largeTable(1200)
	s := Resolve(scenarioColumns)

	m := Summarize(tbl.All(), s, DefaultSummaryOptions())

	assert.Equal(t, 1200, m.TotalCount)
	require.NotNil(t, m.MapPoints)
	require.Len(t, m.MapPoints.Points, 500)
	for i, p := range m.MapPoints.Points {
		lat, _ := tbl.Record(i).Get("Latitude").Float()
		require.InDelta(t, lat, p.Lat, 1e-12, "map point %d out of order", i)
	}
	assert.Equal(t, "Junction 0", m.MapPoints.Points[0].Location)
	assert.Equal(t, "Slight", m.MapPoints.Points[0].Severity)
	require.NotNil(t, m.MapPoints.Center)

	require.NotNil(t, m.SpeedVsCasualtiesSample)
	assert.Len(t, m.SpeedVsCasualtiesSample.Points, 1000)
	assert.Equal(t, "Speed_limit", m.SpeedVsCasualtiesSample.SpeedColumn)
}

func TestSummarize_SmallTableUsesWholeSample(t *testing.T) {
	tbl := largeTable(40)

	m := Summarize(tbl.All(), Resolve(scenarioColumns), DefaultSummaryOptions())

	require.NotNil(t, m.SpeedVsCasualtiesSample)
	assert.Len(t, m.SpeedVsCasualtiesSample.Points, 40)
	assert.Len(t, m.MapPoints.Points, 40)
}

func TestSummarize_SampleIsSeeded(t *testing.T) {
	tbl := largeTable(1500)
	s := Resolve(scenarioColumns)
	opts := DefaultSummaryOptions()
	opts.Seed = 7

	a := Summarize(tbl.All(), s, opts)
	b := Summarize(tbl.All(), s, opts)
	assert.Equal(t, a.SpeedVsCasualtiesSample.Points, b.SpeedVsCasualtiesSample.Points)

	opts.Seed = 8
	c := Summarize(tbl.All(), s, opts)
	assert.NotEqual(t, a.SpeedVsCasualtiesSample.Points, c.SpeedVsCasualtiesSample.Points)
}

func TestSummarize_MapSkipsMissingCoordinates(t *testing.T) {
	cols := []string{testDateColumn, "Latitude", "Longitude"}
	tbl := newTable(cols,
		row(day(2020, 1, 1), "Latitude", 51.5, "Longitude", nil),
		row(day(2020, 1, 2), "Latitude", 52.0, "Longitude", -1.5),
		row(day(2020, 1, 3), "Latitude", "n/a", "Longitude", -2.0),
		row(day(2020, 1, 4), "Latitude", 54.0, "Longitude", -2.5),
	)

	m := Summarize(tbl.All(), Resolve(cols), DefaultSummaryOptions())

	require.NotNil(t, m.MapPoints)
	require.Len(t, m.MapPoints.Points, 2)
	assert.Equal(t, day(2020, 1, 2), m.MapPoints.Points[0].Date)
	assert.Equal(t, day(2020, 1, 4), m.MapPoints.Points[1].Date)
	assert.Equal(t, &Geo{Lat: 53.0, Lon: -2.0}, m.MapPoints.Center)
}

func TestSampleIndices(t *testing.T) {
	picked := sampleIndices(100, 10, 42)

	require.Len(t, picked, 10)
	seen := make(map[int]bool)
	for i, idx := range picked {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 100)
		assert.False(t, seen[idx], "duplicate index %d", idx)
		seen[idx] = true
		if i > 0 {
			assert.Less(t, picked[i-1], idx)
		}
	}
}
