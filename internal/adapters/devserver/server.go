// Package devserver is an in-memory implementation of the taskboard REST
// service for local development and integration tests.
package devserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/taskboard/client/internal/infrastructure/config"
	"github.com/taskboard/client/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  config.DevServerConfig
	logger  *logger.Logger
	tokens  *Tokens
	handler *Handler
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg config.DevServerConfig, metricsEnabled bool, appLogger *logger.Logger) *Server {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	tokens := NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	s := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger.WithComponent("devserver"),
		tokens:  tokens,
		handler: NewHandler(NewData(), tokens, appLogger.WithComponent("devserver")),
	}

	s.setupMiddleware()
	if metricsEnabled {
		s.setupMetrics()
	}
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			latency := float64(values.Latency.Nanoseconds()) / 1000000
			if values.Error != nil {
				s.logger.Errorw("HTTP request failed",
					"method", values.Method,
					"uri", values.URI,
					"status", values.Status,
					"latency_ms", latency,
					"error", values.Error.Error(),
				)
				return nil
			}
			s.logger.LogHTTPRequest(values.Method, values.URI, values.UserAgent, values.RemoteIP, values.Status, latency)
			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: false,
	}))

	if s.config.RateLimitRequests > 0 {
		window := s.config.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		perSecond := rate.Limit(float64(s.config.RateLimitRequests) / window.Seconds())
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{Rate: perSecond, Burst: s.config.RateLimitRequests, ExpiresIn: window},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
			},
		}))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handler
	auth := s.authMiddleware()

	s.echo.GET("/health", s.healthCheck)

	// Account routes
	s.echo.POST("/user/register", h.Register)
	s.echo.POST("/user/login", h.Login)
	s.echo.GET("/user/logout", h.Logout, auth)
	s.echo.POST("/:provider/auth", h.OAuth)

	// Board routes
	s.echo.GET("/taskboards", h.ListTaskboards, auth)
	s.echo.POST("/taskboards", h.CreateTaskboard, auth)
	s.echo.PATCH("/taskboards/:id", h.PatchTaskboard, auth)
	s.echo.DELETE("/taskboards/:id", h.DeleteTaskboard, auth)

	// Card routes; :id is the board id for list, create and clear
	s.echo.GET("/taskcards/:id", h.ListTaskcards, auth)
	s.echo.POST("/taskCards/:id", h.CreateTaskcard, auth)
	s.echo.POST("/taskcards/:id", h.CreateTaskcard, auth)
	s.echo.PATCH("/taskcards/:id", h.RenameTaskcard, auth)
	s.echo.DELETE("/taskcards/:id", h.DeleteTaskcard, auth)
	s.echo.DELETE("/taskcards/clearTaskcards/:id", h.ClearTaskcards, auth)

	// Task routes; :id is the card id for list and create
	s.echo.GET("/tasks/:id", h.ListTasks, auth)
	s.echo.POST("/tasks/:id", h.CreateTask, auth)
	s.echo.PATCH("/tasks/:id", h.UpdateTask, auth)
	s.echo.DELETE("/tasks/:id", h.DeleteTask, auth)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(c.Response().Status),
			).Inc()
			requestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())

			return nil
		}
	})

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// authMiddleware validates JWT tokens
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := s.tokens.Validate(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(contextUserID, claims.UserID)
			c.Set(contextClaims, claims)

			return next(c)
		}
	}
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ServeHTTP lets the server run under httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting devserver", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down devserver")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := http.StatusText(code)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"message": message})
		}
		if err != nil {
			logger.Errorw("Error sending response", "error", err)
		}
	}
}
