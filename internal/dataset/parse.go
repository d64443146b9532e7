package dataset

import (
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// nullTokens are cell texts read as missing values.
var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"n/a":  {},
	"null": {},
}

func isNull(s string) bool {
	_, ok := nullTokens[strings.ToLower(s)]
	return ok
}

// parseCell coerces raw cell text: null tokens become Null, finite numbers
// become Number, anything else stays a String.
func parseCell(raw string) domain.Value {
	s := strings.TrimSpace(raw)
	if isNull(s) {
		return domain.Value{}
	}
	if f, err := cast.ToFloat64E(s); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return domain.NewNumber(f)
	}
	return domain.NewString(s)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// Excel serial day numbers accepted as dates: 1900-01-01 through 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// parseDate parses a date cell. It tries the known layouts, then Excel serial
// day numbers, then cast's own layout list. Results are in UTC.
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if isNull(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		if f < minExcelSerial || f > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	if t, err := cast.ToTimeE(s); err == nil && !t.IsZero() {
		return t.UTC(), true
	}
	return time.Time{}, false
}
