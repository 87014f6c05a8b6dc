package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"job-insights/services"
	"job-insights/storage"
	"job-insights/utils"
)

// Options configures a Server.
type Options struct {
	Addr         string
	AllowOrigins []string
	FetchTimeout time.Duration
	FetchLimit   int // rows per analytics fetch; 0 means storage.MaxFetchLimit
}

// Server exposes the analyses over HTTP. Every request fetches fresh records.
type Server struct {
	store    storage.RecordStore
	analyzer *services.Analyzer
	logger   *utils.Logger
	opts     Options
	engine   *gin.Engine
}

func NewServer(store storage.RecordStore, analyzer *services.Analyzer, logger *utils.Logger, opts Options) *Server {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	s := &Server{store: store, analyzer: analyzer, logger: logger, opts: opts}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), observeRequests())

	config := cors.DefaultConfig()
	if len(s.opts.AllowOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = s.opts.AllowOrigins
	}
	config.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/views", s.listViews)
		api.GET("/analytics/:view", s.analytics)
		api.GET("/jobs", s.jobs)
	}
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[api] listening on %s", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("[api] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
