package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/accident-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/labstack/echo/v4"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

type handler struct {
	svc    DashboardService
	logger *slog.Logger
}

func (h *handler) registerRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/schema", h.getSchema)
	api.GET("/options", h.getOptions)
	api.GET("/summary", h.getSummary)
	api.GET("/mask", h.getMask)
	api.GET("/records", h.getRecords)
	api.GET("/markers", h.getMarkers)
	api.POST("/reload", h.postReload)
}

// criteriaFromQuery reads start, end and the repeatable location and
// severity parameters.
func criteriaFromQuery(c echo.Context) domain.Criteria {
	q := c.QueryParams()
	return domain.ParseCriteria(q.Get("start"), q.Get("end"), q["location"], q["severity"])
}

func getPaginationParams(c echo.Context) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultRecordLimit
	}
	limit = min(limit, maxRecordLimit)
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// fail maps service errors onto status codes.
func (h *handler) fail(c echo.Context, err error) error {
	if errors.Is(err, dashboard.ErrNotLoaded) {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	}
	h.logger.Error("api request failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func (h *handler) getSchema(c echo.Context) error {
	info, err := h.svc.Schema()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (h *handler) getOptions(c echo.Context) error {
	opts, err := h.svc.Options()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *handler) getSummary(c echo.Context) error {
	r, err := h.svc.Summary(criteriaFromQuery(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, summaryResponse{
		Version:  r.Version,
		Criteria: newCriteriaJSON(r.Criteria),
		Metrics:  r.Metrics,
		Display:  newDisplay(r.Metrics),
	})
}

func (h *handler) getMask(c echo.Context) error {
	r, err := h.svc.Summary(criteriaFromQuery(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, maskResponse{
		Version:  r.Version,
		Criteria: newCriteriaJSON(r.Criteria),
		Selected: r.Mask.Count(),
		Mask:     r.Mask,
	})
}

func (h *handler) getRecords(c echo.Context) error {
	limit, offset := getPaginationParams(c)
	page, err := h.svc.Records(criteriaFromQuery(c), limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *handler) getMarkers(c echo.Context) error {
	markers, err := h.svc.Markers(c.Request().Context(), criteriaFromQuery(c))
	if err != nil {
		return h.fail(c, err)
	}
	if markers == nil {
		markers = []domain.LocationMarker{}
	}
	return c.JSON(http.StatusOK, markersResponse{Markers: markers})
}

func (h *handler) postReload(c echo.Context) error {
	ds, err := h.svc.Reload(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, reloadResponse{
		Version:     ds.Version,
		LoadedAt:    ds.LoadedAt,
		Rows:        ds.Table.Len(),
		DroppedRows: ds.Report.DroppedRows,
	})
}
