package dashboard

import "github.com/couchcryptid/accident-dashboard-service/internal/domain"

// Row is one filtered record with its position in the source table.
type Row struct {
	Index  int                     `json:"index"`
	Values map[string]domain.Value `json:"values"`
}

// Page is a window of filtered rows.
type Page struct {
	Version string   `json:"version"`
	Total   int      `json:"total"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Records returns up to limit rows selected by c, starting at offset. Every
// column appears in each row, null when the cell is missing.
func (s *Service) Records(c domain.Criteria, limit, offset int) (Page, error) {
	ds := s.current.Load()
	if ds == nil {
		return Page{}, ErrNotLoaded
	}
	r := s.summarize(ds, c)
	view := r.View
	columns := view.Columns()

	offset = max(offset, 0)
	limit = max(limit, 0)
	end := min(offset+limit, view.Len())

	page := Page{
		Version: ds.Version,
		Total:   view.Len(),
		Offset:  offset,
		Limit:   limit,
		Columns: columns,
		Rows:    []Row{},
	}
	for i := offset; i < end; i++ {
		rec := view.Record(i)
		values := make(map[string]domain.Value, len(columns))
		for _, col := range columns {
			values[col] = rec.Get(col)
		}
		page.Rows = append(page.Rows, Row{Index: view.Index(i), Values: values})
	}
	return page, nil
}
