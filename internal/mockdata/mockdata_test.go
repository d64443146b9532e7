package mockdata

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/dataset"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 50

	a := Generate(opts)
	b := Generate(opts)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same options produced different records (-first +second):\n%s", diff)
	}

	opts.Seed++
	assert.NotEqual(t, a, Generate(opts))
}

func TestGenerate_Shape(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 200
	opts.NullEvery = 10

	records := Generate(opts)

	require.Len(t, records, 201)
	assert.Equal(t, Header, records[0])
	end := opts.Start.AddDate(0, 0, opts.Days)
	blank := 0
	for _, rec := range records[1:] {
		require.Len(t, rec, len(Header))
		d, err := time.Parse(DateLayout, rec[1])
		require.NoError(t, err)
		assert.False(t, d.Before(opts.Start))
		assert.True(t, d.Before(end))
		assert.Equal(t, d.Weekday().String(), rec[2])
		if rec[8] == "" {
			blank++
		}
	}
	assert.Equal(t, 20, blank)
}

func TestGenerate_ResolvesEveryRole(t *testing.T) {
	schema := domain.Resolve(Header)
	assert.Empty(t, schema.Unresolved())
}

func TestWriteCSV_LoadsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 25

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, opts))

	path := filepath.Join(t.TempDir(), "accidents.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	table, report, err := dataset.Load(context.Background(), path, dataset.Options{DateColumn: "Accident Date"})
	require.NoError(t, err)
	assert.Equal(t, 25, table.Len())
	assert.Equal(t, 0, report.DroppedRows)
	assert.Equal(t, Header, table.Columns())
}

func TestWriteWorkbook_LoadsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 25

	path := filepath.Join(t.TempDir(), "accidents.xlsx")
	require.NoError(t, WriteWorkbook(path, "Data", opts))

	table, report, err := dataset.Load(context.Background(), path, dataset.Options{DateColumn: "Accident Date", Sheet: "Data"})
	require.NoError(t, err)
	assert.Equal(t, 25, table.Len())
	assert.Equal(t, 0, report.DroppedRows)

	first := Generate(opts)[1]
	want, err := time.Parse(DateLayout, first[1])
	require.NoError(t, err)
	got := table.Record(0).Date
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}
