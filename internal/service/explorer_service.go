package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"explorer/internal/dataset"
	"explorer/internal/domain"
	"explorer/internal/query"
	"explorer/internal/schema"
)

// Query outcomes reported to a QueryObserver.
const (
	QueryOK      = "ok"
	QueryInvalid = "invalid"
	QueryError   = "error"
)

// QueryObserver is notified after every data query.
type QueryObserver func(status string, elapsed time.Duration)

// ─────────────────────────────────────────────────────────────
// ExplorerService — schema and data queries over the dataset
// ─────────────────────────────────────────────────────────────

// ExplorerService answers schema and data requests. It is shared by the
// HTTP API, the MCP server and the CLI.
type ExplorerService struct {
	store    *dataset.Store
	schema   *schema.Cache
	logger   *slog.Logger
	observer QueryObserver
}

// ExplorerOption configures an ExplorerService.
type ExplorerOption func(*ExplorerService)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ExplorerOption {
	return func(s *ExplorerService) { s.logger = l }
}

// WithQueryObserver registers a callback for completed queries.
func WithQueryObserver(fn QueryObserver) ExplorerOption {
	return func(s *ExplorerService) { s.observer = fn }
}

// NewExplorerService creates an ExplorerService over store.
func NewExplorerService(store *dataset.Store, opts ...ExplorerOption) *ExplorerService {
	s := &ExplorerService{
		store:  store,
		schema: schema.NewCache(store),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "explorer")
	return s
}

// Health is the liveness report.
type Health struct {
	Status        string        `json:"status"`
	DatasetLoaded bool          `json:"datasetLoaded"`
	DatasetState  dataset.State `json:"datasetState"`
	Source        string        `json:"source"`
}

// Schema returns the inferred fields, loading the dataset on first use.
func (s *ExplorerService) Schema(ctx context.Context) ([]domain.Field, error) {
	return s.schema.Fields(ctx)
}

// Query validates body against the schema and returns the requested page.
// Validation failures are *domain.ValidationError; dataset failures are
// *domain.DatasetFetchError.
func (s *ExplorerService) Query(ctx context.Context, body []byte) (domain.PaginatedResult, error) {
	start := time.Now()
	res, err := s.query(ctx, body)
	status := queryStatus(err)
	if s.observer != nil {
		s.observer(status, time.Since(start))
	}
	if status == QueryError {
		s.logger.ErrorContext(ctx, "query failed", "error", err)
	}
	return res, err
}

func (s *ExplorerService) query(ctx context.Context, body []byte) (domain.PaginatedResult, error) {
	rows, err := s.store.Rows(ctx)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	fields, err := s.schema.Fields(ctx)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	return query.Execute(rows, fields, body)
}

func queryStatus(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return QueryOK
	case errors.As(err, &ve):
		return QueryInvalid
	default:
		return QueryError
	}
}

// Warm loads the dataset and derives its schema.
func (s *ExplorerService) Warm(ctx context.Context) error {
	_, err := s.schema.Fields(ctx)
	return err
}

// Loaded reports whether the dataset is cached.
func (s *ExplorerService) Loaded() bool {
	return s.store.Loaded()
}

// Health reports liveness and the dataset state without triggering a fetch.
func (s *ExplorerService) Health() Health {
	return Health{
		Status:        "ok",
		DatasetLoaded: s.store.Loaded(),
		DatasetState:  s.store.State(),
		Source:        s.store.Source(),
	}
}

// Sources lists the registered dataset source types.
func (s *ExplorerService) Sources() []dataset.SourceSpec {
	return dataset.ListSources()
}
