package domain

import "time"

// FilterOptions lists the choices a user can filter on for a table.
// Location and severity lists are nil when their role is unresolved.
type FilterOptions struct {
	MinDate        time.Time `json:"min_date"`
	MaxDate        time.Time `json:"max_date"`
	LocationColumn string    `json:"location_column,omitempty"`
	Locations      []string  `json:"locations,omitempty"`
	SeverityColumn string    `json:"severity_column,omitempty"`
	Severities     []string  `json:"severities,omitempty"`
}

// Options collects the date bounds and the distinct non-null location and
// severity values of t, in first-encountered order.
func Options(t *Table, s Schema) FilterOptions {
	var opts FilterOptions
	opts.MinDate, opts.MaxDate, _ = t.DateBounds()

	all := t.All()
	if col, ok := s.Column(RoleLocation); ok {
		opts.LocationColumn = col
		opts.Locations = distinct(all, col)
	}
	if col, ok := s.Column(RoleSeverity); ok {
		opts.SeverityColumn = col
		opts.Severities = distinct(all, col)
	}
	return opts
}

func distinct(v View, col string) []string {
	counts := countValues(v, col)
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Value
	}
	return out
}
