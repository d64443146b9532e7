// Package dashboard holds the loaded accident dataset and answers filter and
// summary queries over it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/cache"
	"github.com/couchcryptid/accident-dashboard-service/internal/dataset"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/couchcryptid/accident-dashboard-service/internal/observability"
)

// ErrNotLoaded is returned by queries made before the first successful load.
var ErrNotLoaded = errors.New("dataset not loaded")

// Loader reads the accident table from its source.
type Loader interface {
	Load(ctx context.Context) (*domain.Table, dataset.LoadReport, error)
}

// Publisher receives a snapshot after every successful reload.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// Dataset is one loaded table with its resolved schema. It is never modified
// after it becomes current; a reload replaces it.
type Dataset struct {
	Version  string
	LoadedAt time.Time
	Table    *domain.Table
	Schema   domain.Schema
	Report   dataset.LoadReport
}

// Snapshot is the full-range summary of a dataset, published on reload.
type Snapshot struct {
	Version     string         `json:"version"`
	LoadedAt    time.Time      `json:"loaded_at"`
	Rows        int            `json:"rows"`
	DroppedRows int            `json:"dropped_rows"`
	Schema      domain.Schema  `json:"schema"`
	Metrics     domain.Metrics `json:"metrics"`
}

// Result is the outcome of filtering and summarizing one dataset.
type Result struct {
	Version  string
	Criteria domain.Criteria
	Mask     domain.Mask
	View     domain.View
	Metrics  domain.Metrics
}

// Config tunes summary computation and marker geocoding.
type Config struct {
	Summary     domain.SummaryOptions
	CacheSize   int    // memoized summaries kept
	MarkerLimit int    // max locations geocoded per request
	Region      string // qualifies location names sent to the geocoder
}

// Service serves dashboard queries over the current dataset.
type Service struct {
	loader    Loader
	publisher Publisher
	geocoder  domain.Geocoder
	cfg       Config
	logger    *slog.Logger
	metrics   *observability.Metrics

	current  atomic.Pointer[Dataset]
	memo     *cache.LRU[string, *Result]
	reloadMu sync.Mutex
	loads    atomic.Uint64
}

// New creates a Service. publisher and geocoder may be nil to disable
// snapshot publishing and marker geocoding.
func New(loader Loader, publisher Publisher, geocoder domain.Geocoder, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		loader:    loader,
		publisher: publisher,
		geocoder:  geocoder,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		memo:      cache.New[string, *Result](cfg.CacheSize),
	}
}

// Dataset returns the current dataset, or nil before the first load.
func (s *Service) Dataset() *Dataset {
	return s.current.Load()
}

// CheckReadiness returns nil once a dataset has been loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}

// Reload reads the source again and makes the result current. On failure the
// previous dataset stays in place.
func (s *Service) Reload(ctx context.Context) (*Dataset, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	table, report, err := s.loader.Load(ctx)
	if err != nil {
		s.metrics.DatasetLoads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	loadedAt := domain.Now()
	ds := &Dataset{
		Version:  loadedAt.UTC().Format("20060102T150405Z") + "-" + strconv.FormatUint(s.loads.Add(1), 10),
		LoadedAt: loadedAt,
		Table:    table,
		Schema:   domain.Resolve(table.Columns()),
		Report:   report,
	}

	if unresolved := ds.Schema.Unresolved(); len(unresolved) > 0 {
		s.logger.Warn("schema roles unresolved, dependent metrics will be unavailable",
			"roles", unresolved,
			"columns", table.Columns(),
		)
	}

	s.current.Store(ds)
	s.memo.Purge()

	s.metrics.DatasetLoads.WithLabelValues("success").Inc()
	s.metrics.DatasetLoadTime.Observe(time.Since(start).Seconds())
	s.metrics.DatasetRows.Set(float64(table.Len()))
	s.metrics.DatasetDropped.Set(float64(report.DroppedRows))
	s.metrics.ResolvedRoles.Set(float64(len(domain.Roles) - len(ds.Schema.Unresolved())))

	s.logger.Info("dataset loaded",
		"version", ds.Version,
		"rows", table.Len(),
		"dropped_rows", report.DroppedRows,
		"duration", time.Since(start),
	)

	s.publish(ctx, ds)
	return ds, nil
}

func (s *Service) publish(ctx context.Context, ds *Dataset) {
	if s.publisher == nil {
		return
	}
	r := s.summarize(ds, domain.Criteria{})
	snap := Snapshot{
		Version:     ds.Version,
		LoadedAt:    ds.LoadedAt,
		Rows:        ds.Table.Len(),
		DroppedRows: ds.Report.DroppedRows,
		Schema:      ds.Schema,
		Metrics:     r.Metrics,
	}
	if err := s.publisher.Publish(ctx, snap); err != nil {
		s.logger.Error("publish snapshot failed", "version", ds.Version, "error", err)
		s.metrics.SnapshotsFailed.Inc()
		return
	}
	s.metrics.SnapshotsPublished.Inc()
}

// Summary filters the current dataset by c and computes its metrics.
// Results are memoized per dataset version and canonical criteria; the
// returned Result always carries c as given.
func (s *Service) Summary(c domain.Criteria) (*Result, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	r := *s.summarize(ds, c)
	r.Criteria = c
	return &r, nil
}

func (s *Service) summarize(ds *Dataset, c domain.Criteria) *Result {
	key := ds.Version + "#" + c.Key()
	if r, ok := s.memo.Get(key); ok {
		s.metrics.SummaryRequests.WithLabelValues("hit").Inc()
		return r
	}
	s.metrics.SummaryRequests.WithLabelValues("miss").Inc()

	start := time.Now()
	mask, view := domain.Apply(ds.Table, ds.Schema, c)
	r := &Result{
		Version:  ds.Version,
		Criteria: c,
		Mask:     mask,
		View:     view,
		Metrics:  domain.Summarize(view, ds.Schema, s.cfg.Summary),
	}
	s.metrics.SummaryDuration.Observe(time.Since(start).Seconds())
	s.metrics.FilteredRows.Observe(float64(view.Len()))

	s.memo.Put(key, r)
	return r
}

// Options returns the filter choices of the current dataset.
func (s *Service) Options() (domain.FilterOptions, error) {
	ds := s.current.Load()
	if ds == nil {
		return domain.FilterOptions{}, ErrNotLoaded
	}
	return domain.Options(ds.Table, ds.Schema), nil
}

// SchemaInfo describes the current dataset and its role mapping.
type SchemaInfo struct {
	Version    string             `json:"version"`
	LoadedAt   time.Time          `json:"loaded_at"`
	DateColumn string             `json:"date_column"`
	Columns    []string           `json:"columns"`
	Roles      domain.Schema      `json:"roles"`
	Unresolved []domain.Role      `json:"unresolved"`
	Report     dataset.LoadReport `json:"report"`
}

// Schema returns the role mapping of the current dataset.
func (s *Service) Schema() (SchemaInfo, error) {
	ds := s.current.Load()
	if ds == nil {
		return SchemaInfo{}, ErrNotLoaded
	}
	unresolved := ds.Schema.Unresolved()
	if unresolved == nil {
		unresolved = []domain.Role{}
	}
	return SchemaInfo{
		Version:    ds.Version,
		LoadedAt:   ds.LoadedAt,
		DateColumn: ds.Table.DateColumn(),
		Columns:    ds.Table.Columns(),
		Roles:      ds.Schema,
		Unresolved: unresolved,
		Report:     ds.Report,
	}, nil
}

// Markers geocodes the most frequent locations among the rows selected by c.
// It returns no markers when the dataset has coordinate columns or no
// geocoder is configured.
func (s *Service) Markers(ctx context.Context, c domain.Criteria) ([]domain.LocationMarker, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	if s.geocoder == nil {
		return nil, nil
	}
	r := s.summarize(ds, c)
	return domain.GeocodeLocations(ctx, r.View, ds.Schema, s.geocoder, s.cfg.Region, s.cfg.MarkerLimit, s.logger), nil
}
