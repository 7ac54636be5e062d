// Package api exposes the task service over HTTP.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"todo-list/internal/config"
	"todo-list/internal/metrics"
	"todo-list/internal/services"
)

// Authenticator resolves the owner id from an Authorization header.
type Authenticator interface {
	OwnerFromHeader(header string) (string, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP front end of the task service.
type Server struct {
	echo    *echo.Echo
	cfg     config.ServerConfig
	tasks   services.TaskService
	auth    Authenticator
	health  Pinger
	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewServer builds the echo instance with middleware and routes. m may be
// nil, in which case no HTTP metrics are collected and /metrics is absent.
func NewServer(cfg config.ServerConfig, tasks services.TaskService, auth Authenticator, health Pinger, logger *logrus.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	s := &Server{
		echo:    e,
		cfg:     cfg,
		tasks:   tasks,
		auth:    auth,
		health:  health,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(s.requestLogger())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  cfg.CORSOrigins,
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			ExposeHeaders: []string{echo.HeaderXRequestID},
		}))
	}
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: cfg.RequestTimeout,
		}))
	}
	if m != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "todo",
			Subsystem:  "http",
			Registerer: m.Registry,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: m.Registry,
		}))
	}

	s.register()
	return s
}

func (s *Server) register() {
	s.echo.GET("/healthz", s.healthz)

	g := s.echo.Group("/api/tasks", s.requireOwner)
	g.POST("", s.createTask)
	g.GET("", s.listTasks)

	g.POST("/batch", s.batch)
	g.PATCH("/batch/status", s.batchUpdateStatus)
	g.POST("/batch/delete", s.batchDelete)
	g.PATCH("/batch/order", s.reorderTasks)

	g.GET("/:id", s.getTask)
	g.PUT("/:id", s.updateTask)
	g.PATCH("/:id/status", s.updateStatus)
	g.PATCH("/:id/order", s.moveTask)
	g.DELETE("/:id", s.deleteTask)
}

// Handler returns the server as an http.Handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("address", s.cfg.Address).Info("http server listening")
	if err := s.echo.Start(s.cfg.Address); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthz(c echo.Context) error {
	if s.health != nil {
		if err := s.health.Ping(c.Request().Context()); err != nil {
			s.logger.WithError(err).Warn("health check failed")
			return s.respond(c, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return s.respond(c, http.StatusOK, map[string]string{"status": "ok"})
}

// requireOwner authenticates the request and stores the owner id.
func (s *Server) requireOwner(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		owner, err := s.auth.OwnerFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Set(ownerKey, owner)
		return next(c)
	}
}

const ownerKey = "owner"

func ownerFrom(c echo.Context) string {
	owner, _ := c.Get(ownerKey).(string)
	return owner
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"method":      v.Method,
				"path":        v.URIPath,
				"status":      v.Status,
				"duration_ms": v.Latency.Milliseconds(),
				"request_id":  v.RequestID,
			}
			if owner := ownerFrom(c); owner != "" {
				fields["owner"] = owner
			}
			entry := s.logger.WithFields(fields)
			switch {
			case v.Status >= http.StatusInternalServerError:
				entry.WithError(v.Error).Error("request failed")
			case v.Status >= http.StatusBadRequest:
				entry.Info("request rejected")
			default:
				entry.Info("request handled")
			}
			return nil
		},
	})
}
