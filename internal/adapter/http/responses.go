package http

import (
	"strconv"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

type errorResponse struct {
	Error string `json:"error"`
}

type criteriaJSON struct {
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	DateFilter bool     `json:"date_filter"`
	Locations  []string `json:"locations"`
	Severities []string `json:"severities"`
}

func newCriteriaJSON(c domain.Criteria) criteriaJSON {
	out := criteriaJSON{
		DateFilter: c.Dates.Active(),
		Locations:  c.Locations,
		Severities: c.Severities,
	}
	if !c.Dates.Start.IsZero() {
		out.Start = c.Dates.Start.Format(time.DateOnly)
	}
	if !c.Dates.End.IsZero() {
		out.End = c.Dates.End.Format(time.DateOnly)
	}
	if out.Locations == nil {
		out.Locations = []string{}
	}
	if out.Severities == nil {
		out.Severities = []string{}
	}
	return out
}

// display holds the headline numbers formatted for the metric cards.
type display struct {
	TotalCount     string `json:"total_count"`
	MeanCasualties string `json:"mean_casualties"`
	MaxSpeedLimit  string `json:"max_speed_limit"`
}

func newDisplay(m domain.Metrics) display {
	d := display{
		TotalCount:     strconv.Itoa(m.TotalCount),
		MeanCasualties: notAvailable,
		MaxSpeedLimit:  notAvailable,
	}
	if m.MeanCasualties != nil {
		d.MeanCasualties = decimal.NewFromFloat(*m.MeanCasualties).StringFixed(2)
	}
	if m.MaxSpeedLimit != nil {
		d.MaxSpeedLimit = decimal.NewFromFloat(*m.MaxSpeedLimit).String()
	}
	return d
}

type summaryResponse struct {
	Version  string         `json:"version"`
	Criteria criteriaJSON   `json:"criteria"`
	Metrics  domain.Metrics `json:"metrics"`
	Display  display        `json:"display"`
}

type maskResponse struct {
	Version  string       `json:"version"`
	Criteria criteriaJSON `json:"criteria"`
	Selected int          `json:"selected"`
	Mask     domain.Mask  `json:"mask"`
}

type markersResponse struct {
	Markers []domain.LocationMarker `json:"markers"`
}

type reloadResponse struct {
	Version     string    `json:"version"`
	LoadedAt    time.Time `json:"loaded_at"`
	Rows        int       `json:"rows"`
	DroppedRows int       `json:"dropped_rows"`
}
