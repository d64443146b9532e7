// Package mockdata generates deterministic synthetic road accident records in
// the column layout of the public road safety extract. The output feeds test
// fixtures and local runs of the dashboard.
package mockdata

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// DateLayout is the layout of the date column in generated CSV files.
const DateLayout = "2006-01-02"

// Header is the column order of every generated table.
var Header = []string{
	"Accident_Index",
	"Accident Date",
	"Day_of_Week",
	"Junction_Location",
	"Accident_Severity",
	"Number_of_Casualties",
	"Number_of_Vehicles",
	"Speed_limit",
	"Weather_Conditions",
	"Road_Surface_Conditions",
	"Urban_or_Rural_Area",
	"Latitude",
	"Longitude",
}

type town struct {
	name     string
	lat, lon float64
}

var (
	towns = []town{
		{"Leeds", 53.8008, -1.5491},
		{"York", 53.9590, -1.0815},
		{"Hull", 53.7676, -0.3274},
		{"Bradford", 53.7960, -1.7594},
		{"Sheffield", 53.3811, -1.4701},
		{"Wakefield", 53.6833, -1.4977},
	}
	severities = []weighted{{"Slight", 80}, {"Serious", 17}, {"Fatal", 3}}
	weather    = []weighted{
		{"Fine no high winds", 70},
		{"Raining no high winds", 14},
		{"Other", 5},
		{"Raining + high winds", 3},
		{"Fine + high winds", 3},
		{"Snowing no high winds", 2},
		{"Fog or mist", 2},
		{"Snowing + high winds", 1},
	}
	surfaces = []weighted{
		{"Dry", 66},
		{"Wet or damp", 28},
		{"Frost or ice", 4},
		{"Snow", 1},
		{"Flood over 3cm. deep", 1},
	}
	speedLimits = []weighted{{"30", 60}, {"60", 15}, {"40", 9}, {"70", 8}, {"50", 5}, {"20", 3}}
	areas       = []weighted{{"Urban", 64}, {"Rural", 36}}
)

type weighted struct {
	value  string
	weight int
}

func pick(r *rand.Rand, choices []weighted) string {
	total := 0
	for _, c := range choices {
		total += c.weight
	}
	n := r.IntN(total)
	for _, c := range choices {
		if n < c.weight {
			return c.value
		}
		n -= c.weight
	}
	return choices[len(choices)-1].value
}

// Options controls the size and shape of a generated table.
type Options struct {
	Rows  int
	Seed  uint64
	Start time.Time // first accident date
	Days  int       // dates are spread over [Start, Start+Days)

	// NullEvery blanks the weather cell of every n-th row when positive.
	NullEvery int
}

// DefaultOptions returns a small table spanning January 2022.
func DefaultOptions() Options {
	return Options{
		Rows:  500,
		Seed:  42,
		Start: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:  31,
	}
}

// Generate returns the header followed by opts.Rows rows of cell text. The
// same options always produce the same records.
func Generate(opts Options) [][]string {
	if opts.Days <= 0 {
		opts.Days = 1
	}
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	records := make([][]string, 0, opts.Rows+1)
	records = append(records, append([]string(nil), Header...))
	for i := range opts.Rows {
		date := opts.Start.AddDate(0, 0, r.IntN(opts.Days))
		t := towns[r.IntN(len(towns))]
		casualties := 1 + r.IntN(3)
		if r.IntN(10) == 0 {
			casualties += r.IntN(5)
		}
		weatherCell := pick(r, weather)
		if opts.NullEvery > 0 && (i+1)%opts.NullEvery == 0 {
			weatherCell = ""
		}

		records = append(records, []string{
			fmt.Sprintf("MOCK%06d", i+1),
			date.Format(DateLayout),
			date.Weekday().String(),
			t.name,
			pick(r, severities),
			strconv.Itoa(casualties),
			strconv.Itoa(1 + r.IntN(3)),
			pick(r, speedLimits),
			weatherCell,
			pick(r, surfaces),
			pick(r, areas),
			formatCoord(t.lat + (r.Float64()-0.5)*0.1),
			formatCoord(t.lon + (r.Float64()-0.5)*0.1),
		})
	}
	return records
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// WriteCSV writes a generated table as CSV.
func WriteCSV(w io.Writer, opts Options) error {
	df := dataframe.LoadRecords(Generate(opts),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
	)
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteWorkbook saves a generated table to an .xlsx file on sheet. Dates are
// written as real date cells so they load back as Excel serial numbers.
func WriteWorkbook(path, sheet string, opts Options) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // closed after SaveAs

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, rec := range Generate(opts) {
		row := make([]any, len(rec))
		for j, cell := range rec {
			row[j] = workbookCell(i, j, cell)
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// workbookCell converts header-relative cell text into the value excelize
// should store: dates as time.Time, numeric columns as numbers.
func workbookCell(row, col int, cell string) any {
	if row == 0 || cell == "" {
		return cell
	}
	switch Header[col] {
	case "Accident Date":
		if t, err := time.Parse(DateLayout, cell); err == nil {
			return t
		}
	case "Number_of_Casualties", "Number_of_Vehicles", "Speed_limit", "Latitude", "Longitude":
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			return f
		}
	}
	return cell
}
