package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"executive-analytics/ai"
	"executive-analytics/config"
	"executive-analytics/export"
	"executive-analytics/models"
	"executive-analytics/services"
	"executive-analytics/storage"
	"executive-analytics/utils"
)

// Source supplies the raw datasets of a run.
type Source interface {
	LoadAll() (map[models.Dataset][]models.RawRow, map[models.Dataset]error)
}

// state is one published pipeline run together with the rows it was built from.
type state struct {
	rc     *services.RunContext
	result *services.Result
}

// Server serves the latest pipeline run over HTTP and websocket.
type Server struct {
	cfg      *config.Config
	router   *mux.Router
	source   Source
	pipeline *services.Pipeline
	exporter *export.Exporter
	analyzer ai.Analyzer
	archive  *storage.SnapshotArchive
	hub      *Hub
	logger   *utils.Logger

	current   atomic.Pointer[state]
	refreshMu sync.Mutex
	now       func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithArchive stores every refreshed snapshot in a.
func WithArchive(a *storage.SnapshotArchive) Option {
	return func(s *Server) { s.archive = a }
}

// WithClock replaces time.Now as the run clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(cfg *config.Config, source Source, exporter *export.Exporter, analyzer ai.Analyzer, logger *utils.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		source:   source,
		pipeline: services.NewPipeline(logger),
		exporter: exporter,
		analyzer: analyzer,
		hub:      NewHub(logger),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(corsMiddleware)

	s.router.HandleFunc("/ws", s.handleWS)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/kpis", s.handleKPIs).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/insights", s.handleInsights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/charts/{chart}", s.handleChart).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/data/{dataset}", s.handleData).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/export/{format}", s.handleExport).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/ai/analyze", s.handleAnalyze).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost, http.MethodOptions)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Latest returns the most recent run, or nil before the first refresh.
func (s *Server) Latest() *services.Result {
	if st := s.current.Load(); st != nil {
		return st.result
	}
	return nil
}

// Refresh loads every dataset, runs the pipeline and publishes the result.
// Concurrent calls are serialised; readers keep seeing the previous run until
// the new one is published.
func (s *Server) Refresh(ctx context.Context) *services.Result {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	rows, errs := s.source.LoadAll()
	rc := &services.RunContext{Now: s.now(), Datasets: rows, LoadErrors: errs}
	result := s.pipeline.Run(rc)
	s.current.Store(&state{rc: rc, result: result})

	if s.archive != nil {
		if path, err := s.archive.Write(result.Snapshot); err != nil {
			s.logger.Warn("[api] archive snapshot: %v", err)
		} else {
			s.logger.Debug("[api] archived snapshot to %s", path)
		}
	}

	if ctx.Err() == nil {
		s.push(result.Snapshot)
	}
	return result
}

// PushLatest re-sends the current snapshot to every websocket client.
func (s *Server) PushLatest() {
	if r := s.Latest(); r != nil {
		s.push(r.Snapshot)
	}
}

func (s *Server) push(snap *models.KpiSnapshot) {
	if s.hub.Clients() == 0 {
		return
	}
	msg, err := metricsUpdate(snap)
	if err != nil {
		s.logger.Error("[ws] encode update: %v", err)
		return
	}
	s.hub.Broadcast(msg)
}

// ListenAndServe runs the hub, the refresh schedule and the HTTP server
// until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go s.hub.Run(ctx)
	s.Refresh(ctx)
	go s.StartScheduler(ctx)

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[api] listening on %s", s.cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("[api] shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
