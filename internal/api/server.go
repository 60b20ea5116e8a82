// Package api exposes the explorer over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"explorer/internal/dataset"
	"explorer/internal/domain"
	"explorer/internal/metrics"
	"explorer/internal/service"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds the POST /data request body.
const maxBodyBytes = 1 << 20

// Explorer is the service the handlers delegate to.
// *service.ExplorerService implements it.
type Explorer interface {
	Schema(ctx context.Context) ([]domain.Field, error)
	Query(ctx context.Context, body []byte) (domain.PaginatedResult, error)
	Health() service.Health
	Sources() []dataset.SourceSpec
}

// Options configures the router middleware.
type Options struct {
	Origin            string
	RequestsPerMinute int
	Burst             int
}

// ─────────────────────────────────────────────────────────────
// Router
// ─────────────────────────────────────────────────────────────

// NewRouter builds the HTTP handler: POST /data, GET /schema, GET /health,
// GET /sources and GET /metrics.
func NewRouter(explorer Explorer, opts Options, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Origin == "" {
		opts.Origin = "*"
	}
	h := &handler{explorer: explorer, logger: logger.With("component", "api")}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestMiddleware(h.logger))
	router.Use(CORSMiddleware(opts.Origin))

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	limited := router.Group("")
	limited.Use(RateLimitMiddleware(opts.RequestsPerMinute, opts.Burst))
	limited.POST("/data", h.data)
	limited.GET("/schema", h.schema)
	limited.GET("/sources", h.sources)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return router
}

// NewServer wraps router in an http.Server listening on port.
func NewServer(port int, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ─────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────

type handler struct {
	explorer Explorer
	logger   *slog.Logger
}

func (h *handler) data(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body is too large"})
			return
		}
		h.fail(c, err)
		return
	}

	res, err := h.explorer.Query(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) schema(c *gin.Context) {
	fields, err := h.explorer.Schema(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fields)
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, h.explorer.Health())
}

func (h *handler) sources(c *gin.Context) {
	c.JSON(http.StatusOK, h.explorer.Sources())
}

// fail maps err onto a status: validation errors are 400, everything else
// is 500 with the error message.
func (h *handler) fail(c *gin.Context, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ve)
		return
	}

	message := err.Error()
	var fe *domain.DatasetFetchError
	if errors.As(err, &fe) {
		message = fe.Reason
	}
	h.logger.ErrorContext(c.Request.Context(), "request failed",
		"request_id", c.GetString("request_id"), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
