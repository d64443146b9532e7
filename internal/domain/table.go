package domain

import "time"

// Record is one accident row: the parsed core date plus every column value
// keyed by column name.
type Record struct {
	Date   time.Time
	Values map[string]Value
}

// Get returns the value of col, or null when the row has no such cell.
func (r Record) Get(col string) Value {
	return r.Values[col]
}

// Table is an immutable, ordered set of records sharing one column set.
type Table struct {
	dateColumn string
	columns    []string
	records    []Record
}

// NewTable builds a Table. It copies the column and record slices and takes
// ownership of the records' value maps, which must not be modified afterwards.
func NewTable(dateColumn string, columns []string, records []Record) *Table {
	return &Table{
		dateColumn: dateColumn,
		columns:    append([]string(nil), columns...),
		records:    append([]Record(nil), records...),
	}
}

func (t *Table) DateColumn() string { return t.dateColumn }

// Columns returns the column names in source order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

func (t *Table) Record(i int) Record { return t.records[i] }

// All returns a view over every row.
func (t *Table) All() View {
	indices := make([]int, t.Len())
	for i := range indices {
		indices[i] = i
	}
	return View{table: t, indices: indices}
}

// DateBounds returns the earliest and latest record dates. ok is false for an
// empty table.
func (t *Table) DateBounds() (minDate, maxDate time.Time, ok bool) {
	for i, r := range t.records {
		if i == 0 || r.Date.Before(minDate) {
			minDate = r.Date
		}
		if i == 0 || r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	return minDate, maxDate, t.Len() > 0
}

// View is an ordered subset of a Table's rows. It holds indices into the
// table, never copies of the records.
type View struct {
	table   *Table
	indices []int
}

// NewView returns a view of t restricted to indices, which must be ascending.
func NewView(t *Table, indices []int) View {
	return View{table: t, indices: indices}
}

func (v View) Len() int { return len(v.indices) }

// Record returns the i-th row of the view.
func (v View) Record(i int) Record { return v.table.records[v.indices[i]] }

// Index returns the source table position of the view's i-th row.
func (v View) Index(i int) int { return v.indices[i] }

func (v View) Table() *Table { return v.table }

func (v View) Columns() []string {
	if v.table == nil {
		return nil
	}
	return v.table.Columns()
}

// Mask holds one entry per table row, true when the row passed the filters.
type Mask []bool

// Count returns the number of selected rows.
func (m Mask) Count() int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}
