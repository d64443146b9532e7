package dataset

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const dateColumn = "Accident Date"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // test helper
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, r := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, ref, &r))
	}
	path := filepath.Join(t.TempDir(), "accidents.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "accidents.csv",
		"Accident Date,Junction_Location,Accident_Severity,Number_of_Casualties,Speed_limit\n"+
			"2021-01-01,Leeds,Slight,1,30\n"+
			"1/2/2021,York,Serious,NA,60\n"+
			"not a date,Hull,Fatal,2,70\n"+
			"2021-01-03,,Slight,3.5,N/A\n")

	tbl, report, err := Load(context.Background(), path, Options{DateColumn: dateColumn})
	require.NoError(t, err)

	assert.Equal(t, "csv", report.Format)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 1, report.DroppedRows)
	assert.Equal(t, []string{dateColumn, "Junction_Location", "Accident_Severity", "Number_of_Casualties", "Speed_limit"}, tbl.Columns())
	assert.Equal(t, dateColumn, tbl.DateColumn())
	require.Equal(t, 3, tbl.Len())

	first := tbl.Record(0)
	assert.Equal(t, day(2021, 1, 1), first.Date)
	assert.Equal(t, domain.NewString("Leeds"), first.Get("Junction_Location"))
	assert.Equal(t, domain.NewNumber(1), first.Get("Number_of_Casualties"))
	assert.Equal(t, domain.NewTime(day(2021, 1, 1)), first.Get(dateColumn))

	second := tbl.Record(1)
	assert.Equal(t, day(2021, 1, 2), second.Date)
	assert.True(t, second.Get("Number_of_Casualties").IsNull())

	third := tbl.Record(2)
	assert.True(t, third.Get("Junction_Location").IsNull())
	assert.True(t, third.Get("Speed_limit").IsNull())
	assert.Equal(t, domain.NewNumber(3.5), third.Get("Number_of_Casualties"))
}

func TestLoad_CSVDuplicateAndBlankHeaders(t *testing.T) {
	path := writeFile(t, "accidents.csv",
		"Accident Date,Location,,Location,Latitude,Latitude,Accident Date\n"+
			"2021-01-01,Leeds,x,York,53.8,53.9,2021-02-02\n")

	tbl, report, err := Load(context.Background(), path, Options{DateColumn: dateColumn})
	require.NoError(t, err)

	want := []string{dateColumn, "Location", "Unnamed: 2", "Location.1", "Latitude", "Latitude.1", "Accident Date.1"}
	assert.Equal(t, want, tbl.Columns())
	assert.Equal(t, want, report.Columns)
	require.Equal(t, 1, tbl.Len())

	rec := tbl.Record(0)
	assert.Equal(t, day(2021, 1, 1), rec.Date)
	assert.Equal(t, domain.NewString("Leeds"), rec.Get("Location"))
	assert.Equal(t, domain.NewString("York"), rec.Get("Location.1"))
	assert.Equal(t, domain.NewString("x"), rec.Get("Unnamed: 2"))

	schema := domain.Resolve(tbl.Columns())
	col, ok := schema.Column(domain.RoleLatitude)
	require.True(t, ok)
	assert.Equal(t, "Latitude", col)
	col, ok = schema.Column(domain.RoleLocation)
	require.True(t, ok)
	assert.Equal(t, "Location", col)
}

func TestLoad_HeaderOnly(t *testing.T) {
	cases := map[string]string{
		"csv": writeFile(t, "accidents.csv", "Accident Date,Location\n"),
		"xlsx": writeWorkbook(t, "Data", [][]any{
			{dateColumn, "Location"},
		}),
	}
	for format, path := range cases {
		t.Run(format, func(t *testing.T) {
			tbl, report, err := Load(context.Background(), path, Options{DateColumn: dateColumn})
			require.NoError(t, err)
			assert.Equal(t, format, report.Format)
			assert.Equal(t, 0, tbl.Len())
			assert.Equal(t, 0, report.Rows)
			assert.Equal(t, []string{dateColumn, "Location"}, tbl.Columns())
		})
	}
}

func TestLoad_Workbook(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]any{
		{dateColumn, "Weather_Conditions", "Speed_limit", "Latitude"},
		{day(2022, 1, 1), "Fine", 30, 51.5},
		{day(2022, 3, 15), "Raining", 60},
		{"", "Snowing", 20, 52.1},
	})

	tbl, report, err := Load(context.Background(), path, Options{DateColumn: dateColumn, Sheet: "Data"})
	require.NoError(t, err)

	assert.Equal(t, "xlsx", report.Format)
	assert.Equal(t, "Data", report.Sheet)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 1, report.DroppedRows)
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, day(2022, 1, 1), tbl.Record(0).Date)
	assert.Equal(t, domain.NewString("Fine"), tbl.Record(0).Get("Weather_Conditions"))
	assert.Equal(t, domain.NewNumber(51.5), tbl.Record(0).Get("Latitude"))
	assert.Equal(t, day(2022, 3, 15), tbl.Record(1).Date)
	assert.True(t, tbl.Record(1).Get("Latitude").IsNull(), "ragged row is padded with nulls")
}

func TestLoad_WorkbookDefaultsToFirstSheet(t *testing.T) {
	path := writeWorkbook(t, "Export", [][]any{
		{dateColumn},
		{day(2022, 1, 1)},
	})

	tbl, report, err := Load(context.Background(), path, Options{DateColumn: dateColumn})
	require.NoError(t, err)
	assert.Equal(t, "Export", report.Sheet)
	assert.Equal(t, 1, tbl.Len())
}

func TestLoad_WorkbookMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Export", [][]any{{dateColumn}})

	_, _, err := Load(context.Background(), path, Options{DateColumn: dateColumn, Sheet: "Data"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Data" not found`)
}

func TestLoad_MissingDateColumn(t *testing.T) {
	path := writeFile(t, "accidents.csv", "Date,Location\n2021-01-01,Leeds\n")

	_, _, err := Load(context.Background(), path, Options{DateColumn: dateColumn})
	require.ErrorIs(t, err, ErrMissingDateColumn)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), Options{DateColumn: dateColumn})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_CanceledContext(t *testing.T) {
	path := writeFile(t, "accidents.csv", "Accident Date\n2021-01-01\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Load(ctx, path, Options{DateColumn: dateColumn})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFileLoader(t *testing.T) {
	path := writeFile(t, "accidents.csv", "Accident Date,Place\n2021-01-01,Leeds\nbad,York\n")
	loader := NewFileLoader(path, Options{DateColumn: dateColumn}, slog.New(slog.DiscardHandler))

	tbl, report, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, 1, report.DroppedRows)
	assert.Equal(t, path, report.Path)
}

func TestNormalizeHeader(t *testing.T) {
	got := normalizeHeader([]string{"\ufeffAccident Date", "Location", "", "Location", "Location"})
	assert.Equal(t, []string{"Accident Date", "Location", "Unnamed: 2", "Location.1", "Location.2"}, got)
}
