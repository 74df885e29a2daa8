package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/apiforge/apiforge-server/docs"
	"github.com/apiforge/apiforge-server/internal/api/handler"
	"github.com/apiforge/apiforge-server/internal/api/middleware"
	"github.com/apiforge/apiforge-server/internal/core/ports"
	"github.com/apiforge/apiforge-server/internal/infrastructure/config"
	"github.com/apiforge/apiforge-server/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Log         zerolog.Logger
	Auth        ports.AuthService
	Collections ports.CollectionService
	Requests    ports.RequestService
	Proxy       ports.ProxyService
	Health      *handlers.HealthHandler
	// SessionTTL sets the cookie Max-Age.
	SessionTTL time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.Config.ClientURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(d.Config.BodyLimit))
	e.Use(echoprometheus.NewMiddleware("apiforge"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, handler.CookieOptions{
		Secure: !d.Config.IsDevelopment(),
		TTL:    d.SessionTTL,
	})
	collectionHandler := handler.NewCollectionHandler(d.Collections)
	requestHandler := handler.NewRequestHandler(d.Requests)
	executeHandler := handler.NewExecuteHandler(d.Proxy, d.Log)

	authMW := middleware.Auth(d.Auth)
	ownerMW := middleware.CollectionOwner(d.Collections)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, authMW)

	// --- Collections ---
	collections := e.Group("/collections", authMW)
	collections.POST("", collectionHandler.Create)
	collections.GET("", collectionHandler.List)
	collections.GET("/:id", collectionHandler.Get, ownerMW)
	collections.PUT("/:id", collectionHandler.Update, ownerMW)
	collections.DELETE("/:id", collectionHandler.Delete, ownerMW)
	collections.POST("/:id/requests", requestHandler.Create, ownerMW)
	collections.GET("/:id/requests", requestHandler.List, ownerMW)

	// --- Saved requests (ownership resolved through the parent collection) ---
	requests := e.Group("/requests", authMW)
	requests.GET("/:requestId", requestHandler.Get)
	requests.PUT("/:requestId", requestHandler.Update)
	requests.DELETE("/:requestId", requestHandler.Delete)

	e.POST("/execute", executeHandler.Execute, authMW)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", d.Health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", d.Health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	if d.Config.IsDevelopment() {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
