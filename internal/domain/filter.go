package domain

import (
	"slices"
	"strings"
	"time"
)

// DateRange is an inclusive calendar-day interval. A zero Start or End leaves
// the range open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Active reports whether the range filters anything: both ends present and
// Start not after End.
func (r DateRange) Active() bool {
	if r.Start.IsZero() || r.End.IsZero() {
		return false
	}
	return !calendarDay(r.Start).After(calendarDay(r.End))
}

// Contains reports whether t falls on a day within the range. An inactive
// range contains every time.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Active() {
		return true
	}
	d := calendarDay(t)
	return !d.Before(calendarDay(r.Start)) && !d.After(calendarDay(r.End))
}

// calendarDay truncates t to midnight of its own wall-clock date, in UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Criteria holds the user's filter choices. Empty sets do not restrict.
type Criteria struct {
	Dates      DateRange
	Locations  []string
	Severities []string
}

const dateLayout = "2006-01-02"

// ParseCriteria builds Criteria from raw user input. Dates use YYYY-MM-DD;
// a missing or unparseable date leaves that end open, which disables date
// filtering. Blank set entries are ignored.
func ParseCriteria(start, end string, locations, severities []string) Criteria {
	return Criteria{
		Dates: DateRange{
			Start: parseDay(start),
			End:   parseDay(end),
		},
		Locations:  compact(locations),
		Severities: compact(severities),
	}
}

func parseDay(s string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Key returns a canonical string for the criteria, equal for criteria that
// select the same rows regardless of set ordering.
func (c Criteria) Key() string {
	var b strings.Builder
	if c.Dates.Active() {
		b.WriteString(calendarDay(c.Dates.Start).Format(dateLayout))
		b.WriteString("..")
		b.WriteString(calendarDay(c.Dates.End).Format(dateLayout))
	}
	b.WriteString("|loc=")
	b.WriteString(canonicalSet(c.Locations))
	b.WriteString("|sev=")
	b.WriteString(canonicalSet(c.Severities))
	return b.String()
}

func canonicalSet(values []string) string {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return strings.Join(sorted, "\x1f")
}

// memberPredicate returns a row test for "value of role's column is one of
// allowed". It always passes when the role is unresolved or allowed is empty.
func memberPredicate(s Schema, role Role, allowed []string) func(Record) bool {
	col, ok := s.Column(role)
	if !ok || len(allowed) == 0 {
		return func(Record) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return func(r Record) bool {
		v := r.Get(col)
		if v.IsNull() {
			return false
		}
		_, ok := set[v.Key()]
		return ok
	}
}

// Apply evaluates the criteria against every row of t and returns the row
// mask with the matching rows as a view, in table order. t is not modified.
func Apply(t *Table, s Schema, c Criteria) (Mask, View) {
	inLocation := memberPredicate(s, RoleLocation, c.Locations)
	inSeverity := memberPredicate(s, RoleSeverity, c.Severities)

	n := t.Len()
	mask := make(Mask, n)
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		r := t.Record(i)
		if c.Dates.Contains(r.Date) && inLocation(r) && inSeverity(r) {
			mask[i] = true
			indices = append(indices, i)
		}
	}
	return mask, NewView(t, indices)
}
