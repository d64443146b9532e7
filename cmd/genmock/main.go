// Command genmock writes a deterministic synthetic road accident dataset for
// local runs and test fixtures. The output format follows the file extension:
// .xlsx writes a workbook, anything else writes CSV. After writing, the file
// is loaded back through the dataset loader and the dashboard aggregator so the
// printed stats match what the service will report.
//
// Usage:
//
//	go run ./cmd/genmock -out data/road_accident_data.xlsx -rows 5000
//	go run ./cmd/genmock -out data/mock/accidents.csv -seed 7 -null-every 25
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/dataset"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/couchcryptid/accident-dashboard-service/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	defaults := mockdata.DefaultOptions()

	out := flag.String("out", "", "output path (.csv or .xlsx)")
	sheet := flag.String("sheet", "Data", "sheet name for .xlsx output")
	rows := flag.Int("rows", defaults.Rows, "number of accident rows")
	seed := flag.Uint64("seed", defaults.Seed, "random seed")
	start := flag.String("start", defaults.Start.Format(mockdata.DateLayout), "first accident date (YYYY-MM-DD)")
	days := flag.Int("days", defaults.Days, "number of days the dates span")
	nullEvery := flag.Int("null-every", 0, "blank the weather of every n-th row (0 = never)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *rows <= 0 || *days <= 0 {
		return fmt.Errorf("-rows and -days must be positive")
	}
	startDate, err := time.Parse(mockdata.DateLayout, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	opts := mockdata.Options{
		Rows:      *rows,
		Seed:      *seed,
		Start:     startDate,
		Days:      *days,
		NullEvery: *nullEvery,
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := write(*out, *sheet, opts); err != nil {
		return err
	}
	log.Printf("wrote %d rows to %s", opts.Rows, *out)

	return printStats(*out, *sheet)
}

func write(path, sheet string, opts mockdata.Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return mockdata.WriteWorkbook(path, sheet, opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := mockdata.WriteCSV(f, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// printStats loads the written file back and prints the numbers tests and
// dashboards are expected to show.
func printStats(path, sheet string) error {
	table, report, err := dataset.Load(context.Background(), path, dataset.Options{
		DateColumn: mockdata.Header[1],
		Sheet:      sheet,
	})
	if err != nil {
		return fmt.Errorf("load back %s: %w", path, err)
	}
	schema := domain.Resolve(table.Columns())
	m := domain.Summarize(table.All(), schema, domain.DefaultSummaryOptions())
	minDate, maxDate, _ := table.DateBounds()

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: %d (dropped %d)\n", report.Rows, report.DroppedRows)
	fmt.Printf("Dates: %s .. %s\n", minDate.Format(mockdata.DateLayout), maxDate.Format(mockdata.DateLayout))
	if m.MeanCasualties != nil {
		fmt.Printf("Mean casualties: %.4f\n", *m.MeanCasualties)
	}
	if m.MaxSpeedLimit != nil {
		fmt.Printf("Max speed limit: %g\n", *m.MaxSpeedLimit)
	}
	printCounts("By severity", m.SeverityCounts)
	printCounts("By weather", m.WeatherTopN)
	printCounts("By road surface", m.RoadConditionGroups)
	printCounts("By day of week", m.DayOfWeekCounts)
	return nil
}

func printCounts(title string, t *domain.CountTable) {
	if t == nil {
		return
	}
	parts := make([]string, 0, len(t.Counts))
	for _, c := range t.Counts {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Value, c.Count))
	}
	fmt.Printf("%s: %s\n", title, strings.Join(parts, ", "))
}
