package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"explorer/internal/api"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// ServeHTTP runs the HTTP API until ctx is cancelled, then shuts the server
// down gracefully.
func (a *App) ServeHTTP(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(a.explorer, api.Options{
		Origin:            a.cfg.Server.Origin,
		RequestsPerMinute: a.cfg.Server.RPM,
		Burst:             a.cfg.Server.Burst,
	}, a.logger)
	srv := api.NewServer(a.cfg.Server.Port, router)

	if err := a.Startup(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr, "source", a.store.Source())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down server")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}
	a.Shutdown(shutdownCtx)
	return serveErr
}
