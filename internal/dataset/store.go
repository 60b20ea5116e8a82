// Package dataset owns the in-memory snapshot of the raw dataset. The Store
// fetches it at most once per process through a registered Source and shares
// a single in-flight fetch between concurrent callers.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"explorer/internal/domain"
)

// State is the lifecycle position of a Store.
type State string

const (
	StateEmpty   State = "empty"
	StatePending State = "pending"
	StateReady   State = "ready"
)

// FetchObserver is notified after every completed fetch attempt.
type FetchObserver func(source string, elapsed time.Duration, rows int, err error)

// fetchCall is the shared handle every waiter of one fetch attaches to.
type fetchCall struct {
	done chan struct{}
	rows []domain.RawRow
	err  error
}

// Store caches the raw dataset rows.
//
// Empty → Pending on the first Rows call, Pending → Ready on success and
// Pending → Empty on failure, so the next caller retries. Ready is terminal.
type Store struct {
	sourceType string
	source     Source
	cfg        SourceConfig
	logger     *slog.Logger
	observer   FetchObserver

	mu    sync.Mutex
	call  *fetchCall
	ready atomic.Pointer[[]domain.RawRow]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for fetch lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithFetchObserver registers a callback for completed fetches.
func WithFetchObserver(fn FetchObserver) Option {
	return func(s *Store) { s.observer = fn }
}

// NewStore creates an empty Store backed by source.
func NewStore(source Source, cfg SourceConfig, opts ...Option) *Store {
	s := &Store{
		sourceType: source.Spec().Type,
		source:     source,
		cfg:        cfg,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "dataset", "source", s.sourceType)
	return s
}

// Open looks up the registered source type and creates a Store for it.
func Open(sourceType string, cfg SourceConfig, opts ...Option) (*Store, error) {
	src, err := GetSource(sourceType)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return NewStore(src, cfg, opts...), nil
}

// Rows returns the cached dataset, fetching it on first use. Concurrent
// callers during a fetch share its outcome. The fetch itself is detached
// from ctx: a caller whose ctx ends stops waiting, the fetch carries on for
// the others.
func (s *Store) Rows(ctx context.Context) ([]domain.RawRow, error) {
	if rows := s.ready.Load(); rows != nil {
		return *rows, nil
	}

	s.mu.Lock()
	if rows := s.ready.Load(); rows != nil {
		s.mu.Unlock()
		return *rows, nil
	}
	call := s.call
	if call == nil {
		call = &fetchCall{done: make(chan struct{})}
		s.call = call
		go s.fetch(context.WithoutCancel(ctx), call)
	}
	s.mu.Unlock()

	select {
	case <-call.done:
		return call.rows, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) fetch(ctx context.Context, call *fetchCall) {
	start := time.Now()
	s.logger.Info("fetching dataset")

	rows, err := s.fetchRows(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	if err == nil {
		s.ready.Store(&rows)
	}
	s.call = nil
	call.rows, call.err = rows, err
	s.mu.Unlock()
	close(call.done)

	if err != nil {
		s.logger.Error("dataset fetch failed", "error", err, "elapsed", elapsed)
	} else {
		s.logger.Info("dataset loaded", "rows", len(rows), "elapsed", elapsed)
	}
	if s.observer != nil {
		s.observer(s.sourceType, elapsed, len(rows), err)
	}
}

func (s *Store) fetchRows(ctx context.Context) (rows []domain.RawRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, domain.NewFetchError(s.sourceType, "Dataset source panicked", fmt.Errorf("%v", r))
		}
	}()

	rows, err = s.source.Fetch(ctx, s.cfg)
	if err != nil {
		var fe *domain.DatasetFetchError
		if !errors.As(err, &fe) {
			err = domain.NewFetchError(s.sourceType, "Failed to fetch dataset", err)
		}
		return nil, err
	}
	if rows == nil {
		rows = []domain.RawRow{}
	}
	return rows, nil
}

// Loaded reports whether the dataset is cached.
func (s *Store) Loaded() bool {
	return s.ready.Load() != nil
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	if s.Loaded() {
		return StateReady
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.Load() != nil {
		return StateReady
	}
	if s.call != nil {
		return StatePending
	}
	return StateEmpty
}

// Source returns the source type label.
func (s *Store) Source() string { return s.sourceType }

