// Package dataset reads the accident export into an immutable domain.Table.
//
// Workbooks (.xlsx, .xlsm) are read with excelize from a named sheet; any
// other file is treated as CSV and read with gota. Every cell is coerced to a
// typed domain.Value and the configured date column is parsed into
// Record.Date. Rows whose date cannot be parsed are dropped and counted.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
)

// ErrMissingDateColumn is returned when the header has no column named like
// the configured date column.
var ErrMissingDateColumn = errors.New("date column not found")

// Options controls how a file is read.
type Options struct {
	DateColumn string // header of the core date column
	Sheet      string // workbook sheet; empty selects the first sheet
}

// LoadReport describes the outcome of one load.
type LoadReport struct {
	Path        string   `json:"path"`
	Format      string   `json:"format"`
	Sheet       string   `json:"sheet,omitempty"`
	Columns     []string `json:"columns"`
	Rows        int      `json:"rows"`
	DroppedRows int      `json:"dropped_rows"`
}

const (
	formatXLSX = "xlsx"
	formatCSV  = "csv"
)

// Load reads path into a table. The header row gives the column order.
func Load(ctx context.Context, path string, opts Options) (*domain.Table, LoadReport, error) {
	report := LoadReport{Path: path, Format: formatOf(path)}

	var (
		rows [][]string
		err  error
	)
	if report.Format == formatXLSX {
		rows, report.Sheet, err = readWorkbook(path, opts.Sheet)
	} else {
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, report, err
	}
	if len(rows) == 0 {
		return nil, report, fmt.Errorf("read %s: no header row", path)
	}

	columns := normalizeHeader(rows[0])
	report.Columns = columns

	dateIdx := -1
	for i, c := range columns {
		if c == opts.DateColumn {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, report, fmt.Errorf("read %s: %w: %q", path, ErrMissingDateColumn, opts.DateColumn)
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for n, raw := range rows[1:] {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
		}

		date, ok := parseDate(cell(raw, dateIdx))
		if !ok {
			report.DroppedRows++
			continue
		}

		values := make(map[string]domain.Value, len(columns))
		for i, col := range columns {
			if i == dateIdx {
				values[col] = domain.NewTime(date)
				continue
			}
			if v := parseCell(cell(raw, i)); !v.IsNull() {
				values[col] = v
			}
		}
		records = append(records, domain.Record{Date: date, Values: values})
	}

	report.Rows = len(records)
	return domain.NewTable(opts.DateColumn, columns, records), report, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return formatXLSX
	default:
		return formatCSV
	}
}

// cell returns row[i], treating cells past the end of a ragged row as empty.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// normalizeHeader names blank headers "Unnamed: i" and suffixes repeated
// names with ".1", ".2", ... so every column name is unique.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for seen[name] > 0 {
			name = h + "." + strconv.Itoa(seen[h])
			seen[h]++
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// FileLoader loads one configured file on every call.
type FileLoader struct {
	path   string
	opts   Options
	logger *slog.Logger
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string, opts Options, logger *slog.Logger) *FileLoader {
	return &FileLoader{path: path, opts: opts, logger: logger}
}

// Load reads the configured file and logs rows dropped for unparseable dates.
func (l *FileLoader) Load(ctx context.Context) (*domain.Table, LoadReport, error) {
	table, report, err := Load(ctx, l.path, l.opts)
	if err != nil {
		return nil, report, err
	}
	if report.DroppedRows > 0 {
		l.logger.Warn("dropped rows with unparseable dates",
			"path", l.path,
			"date_column", l.opts.DateColumn,
			"dropped", report.DroppedRows,
		)
	}
	l.logger.Debug("dataset read",
		"path", l.path,
		"format", report.Format,
		"rows", report.Rows,
		"columns", len(report.Columns),
	)
	return table, report, nil
}
