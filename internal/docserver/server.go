// Package docserver exposes a store.Store as the HTTP document service that
// the remote client talks to.
package docserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/docmerge/internal/logging"
	"github.com/danieljhkim/docmerge/internal/metrics"
	"github.com/danieljhkim/docmerge/internal/store"
)

const (
	defaultServiceName = "docmerge-docserver"
	shutdownTimeout    = 5 * time.Second
)

// Config wires a Server.
type Config struct {
	Store store.Store

	// ServiceName labels the otel spans
	ServiceName string

	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Gatherer backs /metrics; nil means the default registry
	Gatherer prometheus.Gatherer
}

// Server is the HTTP document service.
type Server struct {
	store    store.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	router   *gin.Engine
}

// New builds the router and registers every route.
func New(cfg Config) *Server {
	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		store:    cfg.Store,
		logger:   logging.OrDiscard(cfg.Logger),
		metrics:  cfg.Metrics,
		validate: validator.New(),
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(otelgin.Middleware(name))
	s.router.Use(s.observe())

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/v1")
	v1.GET("/documents", s.handleList)
	v1.POST("/documents", s.handleImport)
	v1.GET("/documents/:id", s.handleGet)
	v1.DELETE("/documents/:id", s.handleDelete)
	v1.POST("/documents/:id/batch", s.handleBatch)
	v1.POST("/documents/:id/annotations", s.handleAnnotate)

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("document service listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("document service shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.ObserveRequest(c.Request.Method, route, status)
		s.logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.Request.URL.Path), slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalid})
}
