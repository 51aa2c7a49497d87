package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/riv/engine"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/server/endpoint"
	"github.com/kbukum/riv/server/middleware"
)

// Server is the HTTP control surface backed by Gin. The middleware stack
// wraps the whole engine.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
	listener   net.Listener
	workerDone <-chan struct{}
}

// New creates a Server from a config with defaults applied.
func New(cfg Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if gin.Mode() != gin.TestMode {
		if zerolog.GlobalLevel() <= zerolog.DebugLevel {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	engine := gin.New()
	stack := middleware.Chain(
		middleware.Recovery(log),
		middleware.Tracing("riv.http"),
		middleware.RequestID(),
		middleware.CORS(&cfg.CORS),
		middleware.BodySizeLimit(cfg.MaxBodySize),
		middleware.RequestLogger(log),
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      stack(engine),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		engine: engine,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the engine wrapped in the middleware stack.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", s.Addr()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// RegisterDefaultEndpoints registers the probe, info and metrics endpoints.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/alive", endpoint.Liveness(serviceName, s.workerStopped))
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
	s.engine.GET("/metrics", endpoint.Metrics())
}

// RegisterRuns mounts the pipeline run API under /api/v1 backed by w.
func (s *Server) RegisterRuns(w *engine.Worker) {
	s.workerDone = w.Done()
	h := newRunsHandler(w, s.config, s.log)
	api := s.engine.Group("/api/v1")
	api.POST("/runs", h.create)
	api.GET("/runs", h.list)
	api.GET("/runs/:id", h.get)
}

// workerStopped reports whether the mounted run worker has exited. It is
// false when no worker is mounted.
func (s *Server) workerStopped() bool {
	if s.workerDone == nil {
		return false
	}
	select {
	case <-s.workerDone:
		return true
	default:
		return false
	}
}
