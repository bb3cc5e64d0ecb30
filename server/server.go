// Package server exposes the engine over HTTP: catalog lookups,
// culture simulation, docking runs, dose-response prediction and run
// history, plus a prometheus metrics endpoint.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/history"
	"github.com/pthm-cable/petri/profile"
)

// Version is reported by the health endpoint.
const Version = "2.0"

// Server wires the profile catalog, the compute engines and the run
// store into a gin router.
type Server struct {
	cfg     *config.Config
	catalog *profile.Catalog
	store   *history.Store // nil disables run history
	metrics *Metrics
	limiter *rate.Limiter
	engine  *gin.Engine
}

// New assembles the router. A nil store turns the run history routes
// into 503s; everything else works without persistence.
func New(cfg *config.Config, catalog *profile.Catalog, store *history.Store) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		store:   store,
		metrics: NewMetrics(),
		limiter: rate.NewLimiter(rate.Limit(cfg.Limits.RatePerSecond), cfg.Limits.RateBurst),
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		requestID(),
		logRequests(),
		cors(cfg.Server.CORSOrigins),
		s.observe(),
	)

	api := engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		cells := api.Group("/cells")
		{
			cells.GET("/cell-lines", s.handleCellLines)
			cells.POST("/simulate", s.throttle(), s.handleSimulate)
		}

		docking := api.Group("/docking")
		{
			docking.GET("/proteins", s.handleProteins)
			docking.GET("/ligands", s.handleLigands)
			docking.POST("/run", s.throttle(), s.handleDock)
		}

		api.POST("/predict/drug-efficacy", s.handlePredict)

		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
	}

	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.engine = engine
	return s
}

// Engine returns the underlying router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start serves until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Derived.ReadTimeout,
		WriteTimeout: s.cfg.Derived.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("server listening", "addr", s.cfg.Server.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Derived.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
