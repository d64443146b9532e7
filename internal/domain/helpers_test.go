package domain

import (
	"io"
	"log/slog"
	"time"
)

const testDateColumn = "Accident Date"

// scenarioColumns is a full export header in which every role resolves.
var scenarioColumns = []string{
	testDateColumn,
	"Junction_Location",
	"Accident_Severity",
	"Number_of_Casualties",
	"Speed_limit",
	"Day_of_Week",
	"Weather_Conditions",
	"Road_Surface_Conditions",
	"Latitude",
	"Longitude",
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// row builds a record from alternating column/value pairs. Strings become
// string values, ints and floats become numbers, nil stays null.
func row(date time.Time, pairs ...any) Record {
	values := make(map[string]Value, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		col := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case string:
			values[col] = NewString(v)
		case int:
			values[col] = NewNumber(float64(v))
		case float64:
			values[col] = NewNumber(v)
		case nil:
		}
	}
	return Record{Date: date, Values: values}
}

func newTable(columns []string, records ...Record) *Table {
	return NewTable(testDateColumn, columns, records)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
