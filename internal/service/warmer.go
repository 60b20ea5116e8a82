package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

const (
	warmKey          = "warmup"
	watchDebounce    = 500 * time.Millisecond
	defaultWarmLimit = 2 * time.Minute
)

// Warmable is what the Warmer pre-loads. *ExplorerService implements it.
type Warmable interface {
	Loaded() bool
	Warm(ctx context.Context) error
}

// WarmerConfig selects the warm-up triggers.
type WarmerConfig struct {
	// Schedule is a cron expression ("@every 1m", "*/5 * * * *"). Empty
	// disables the schedule.
	Schedule string
	// WatchPath is a file whose creation or change triggers a warm-up.
	// Empty disables watching.
	WatchPath string
	// Timeout bounds a single warm-up run.
	Timeout time.Duration
}

// ─────────────────────────────────────────────────────────────
// Warmer — loads the dataset in the background until it succeeds
// ─────────────────────────────────────────────────────────────

// Warmer pre-populates the dataset so the first request does not pay for
// the fetch. It runs once on Start, then on every cron tick and watched
// file change until a run succeeds. After that the schedule is removed
// and later triggers are no-ops.
type Warmer struct {
	target  Warmable
	cfg     WarmerConfig
	emitter EventEmitter
	logger  *slog.Logger
	running runningGuard

	mu          sync.Mutex
	cronSched   *cron.Cron
	cronEntry   cron.EntryID
	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
}

// NewWarmer creates a Warmer for target. A nil emitter logs events.
func NewWarmer(target Warmable, cfg WarmerConfig, emitter EventEmitter, logger *slog.Logger) *Warmer {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = LogEmitter{Logger: logger}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultWarmLimit
	}
	return &Warmer{
		target:  target,
		cfg:     cfg,
		emitter: emitter,
		logger:  logger.With("component", "warmer"),
	}
}

// Start installs the triggers and kicks off the first run in the
// background. ctx bounds the lifetime of every run.
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cfg.Schedule != "" {
		c := cron.New()
		id, err := c.AddFunc(w.cfg.Schedule, func() { w.Trigger(ctx, "schedule") })
		if err != nil {
			return fmt.Errorf("warmup schedule %q: %w", w.cfg.Schedule, err)
		}
		c.Start()
		w.cronSched, w.cronEntry = c, id
		w.logger.Info("warmup scheduled", "schedule", w.cfg.Schedule)
	}

	if w.cfg.WatchPath != "" {
		if err := w.startWatcherLocked(ctx); err != nil {
			w.stopLocked()
			return err
		}
	}

	go w.Trigger(ctx, "startup")
	return nil
}

func (w *Warmer) startWatcherLocked(ctx context.Context) error {
	absPath, err := filepath.Abs(w.cfg.WatchPath)
	if err != nil {
		return fmt.Errorf("warmup watch path %q: %w", w.cfg.WatchPath, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// The directory is watched so the file may be created later.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", filepath.Dir(absPath), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.watcher, w.watchCancel = watcher, cancel

	go func() {
		var timer *time.Timer
		for {
			select {
			case <-watchCtx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if p, _ := filepath.Abs(event.Name); p != absPath {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() { w.Trigger(watchCtx, "file change") })
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watcher error", "error", err)
			}
		}
	}()

	w.logger.Info("watching dataset file", "path", absPath)
	return nil
}

// Trigger runs one warm-up unless the dataset is already loaded or another
// run is in progress. It reports whether a run happened.
func (w *Warmer) Trigger(ctx context.Context, reason string) bool {
	if w.target.Loaded() {
		return false
	}
	if !w.running.TryLock(warmKey) {
		return false
	}
	defer w.running.Unlock(warmKey)

	runCtx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	w.logger.Info("warming dataset", "reason", reason)
	if err := w.target.Warm(runCtx); err != nil {
		w.logger.Warn("warmup failed", "reason", reason, "error", err)
		w.emitter.Emit(ctx, EventDatasetFetchFailed, err.Error())
		return true
	}

	w.emitter.Emit(ctx, EventDatasetLoaded, reason)
	w.mu.Lock()
	if w.cronSched != nil {
		w.cronSched.Remove(w.cronEntry)
	}
	w.mu.Unlock()
	return true
}

// Stop removes every trigger and waits for an in-progress run until ctx
// is done.
func (w *Warmer) Stop(ctx context.Context) {
	w.mu.Lock()
	w.stopLocked()
	w.mu.Unlock()
	w.running.WaitAll(ctx)
}

func (w *Warmer) stopLocked() {
	if w.watchCancel != nil {
		w.watchCancel()
		w.watchCancel = nil
	}
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
	if w.cronSched != nil {
		w.cronSched.Stop()
		w.cronSched = nil
	}
}

// Scheduled reports whether the cron trigger is still installed.
func (w *Warmer) Scheduled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cronSched != nil && len(w.cronSched.Entries()) > 0
}
