package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/authpractice/todo-service/docs"
	"github.com/authpractice/todo-service/internal/api/handler"
	"github.com/authpractice/todo-service/internal/api/metrics"
	"github.com/authpractice/todo-service/internal/api/middleware"
	"github.com/authpractice/todo-service/internal/core/guard"
	"github.com/authpractice/todo-service/internal/core/ports"
	"github.com/authpractice/todo-service/internal/infrastructure/http/handlers"
)

// Deps is everything the router needs; cmd/server builds it.
type Deps struct {
	Logger    zerolog.Logger
	Todos     ports.TodoService
	Gate      ports.AuthGate
	Cookie    handler.CookieConfig
	Readiness []handlers.Dependency
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.Session(d.Gate, d.Cookie.Name))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Gate, d.Cookie, d.Logger)
	e.GET(guard.SignInPath, authHandler.SignInPage)
	e.POST(guard.SignInPath, authHandler.SignIn)
	e.POST("/auth/signout", authHandler.SignOut)
	e.GET("/auth/session", authHandler.Session)

	// --- Todo routes, guarded; mirrored under every protected prefix ---
	todoHandler := handler.NewTodoHandler(d.Todos, d.Logger)
	for _, prefix := range guard.ProtectedPrefixes {
		g := e.Group(prefix, middleware.Guard())
		g.GET("", todoHandler.List)
		g.POST("", todoHandler.Create)
		g.GET("/:id", todoHandler.Get)
		g.PUT("/:id", todoHandler.Update)
		g.PATCH("/:id", todoHandler.Update)
		g.PUT("/:id/replace", todoHandler.Replace)
		g.DELETE("/:id", todoHandler.Delete)
		g.GET("/:id/history", todoHandler.History)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

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
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
