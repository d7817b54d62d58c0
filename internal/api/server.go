// Package api provides the REST management API for bindzone.
// It exposes endpoints for health checks, statistics, the BIND host
// registry and zone file management via a Gin-based HTTP server.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/bindzone/internal/api/handlers"
	"github.com/jroosing/bindzone/internal/api/middleware"
	"github.com/jroosing/bindzone/internal/config"
	"github.com/jroosing/bindzone/internal/database"
	"github.com/jroosing/bindzone/internal/zones"
)

// minWriteTimeout bounds responses that never touch a remote host.
const minWriteTimeout = 15 * time.Second

// Server is the management REST API server.
//
// Security note: zone endpoints write files on BIND hosts over SSH. Do not
// expose the API to untrusted networks without an API key.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds the server. db and svc may be nil in tests that only exercise
// routes which do not need them.
func New(cfg *config.Config, db *database.DB, svc *zones.Service, logger *slog.Logger) *Server {
	if cfg == nil {
		panic("api.New: cfg is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if svc == nil {
		svc = zones.New(zones.Config{Logger: logger})
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(cfg, db, svc, logger)
	RegisterRoutes(engine, h, cfg)
	if cfg.API.UIDir != "" {
		MountUI(engine, cfg.API.UIDir, logger)
	}

	// A zone request may spend a connect timeout and an operation timeout on
	// the remote host before it can answer.
	writeTimeout := cfg.SSH.ConnectTimeoutDuration + cfg.SSH.OperationTimeoutDuration + 5*time.Second
	if writeTimeout < minWriteTimeout {
		writeTimeout = minWriteTimeout
	}

	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{cfg: cfg, logger: logger, engine: engine, httpServer: httpServer}
}

func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// WriteTimeout reports the HTTP write timeout derived from the SSH timeouts.
func (s *Server) WriteTimeout() time.Duration {
	return s.httpServer.WriteTimeout
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("api listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
