package dataset

import (
	"fmt"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// readWorkbook returns the raw cell text of one sheet, header first. Cells
// are read unformatted, so dates arrive as Excel serial numbers.
func readWorkbook(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, "", fmt.Errorf("open workbook %s: no sheets", path)
		}
		sheet = sheets[0]
	}
	if !slices.Contains(sheets, sheet) {
		return nil, sheet, fmt.Errorf("open workbook %s: sheet %q not found", path, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, sheet, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, sheet, nil
}

// readCSV returns the raw cell text of a CSV file, header first. Type
// detection is off so every cell keeps its source text. The header is read
// as an ordinary row so its names reach normalizeHeader untouched; gota
// would otherwise rename duplicate and blank names its own way.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, df.Err)
	}

	// Records starts with the generated X0..Xn names.
	records := df.Records()
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}
