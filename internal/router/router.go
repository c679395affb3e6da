// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/config"
	"github.com/iliyamo/shastra-reservations/internal/handler"
	"github.com/iliyamo/shastra-reservations/internal/middleware"
)

// Deps carries everything the routes need.  Redis may be nil, which turns
// rate limiting and response caching off.
type Deps struct {
	Auth         *handler.AuthHandler
	Reservations *handler.ReservationHandler
	Health       *handler.HealthHandler
	Menu         *handler.MenuHandler
	Redis        *redis.Client
	Cache        config.CacheConfig
	RateLimit    config.RateLimitConfig
	Log          *zap.Logger
}

// New returns an Echo instance with the global middleware stack and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.CORS())

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes mounts the API under /api.  Health stays outside the rate
// limited group so health checks are never throttled.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/api/health", d.Health.Check)

	api := e.Group("/api", middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))
	RegisterAuth(api, d.Auth)
	RegisterReservations(api, d.Reservations)
	api.GET("/menu", d.Menu.Get, middleware.NewRedisCache(d.Cache, d.Redis, d.Log))
}

// RegisterAuth mounts signup and login.
func RegisterAuth(g *echo.Group, a *handler.AuthHandler) {
	g.POST("/auth/signup", a.Signup)
	g.POST("/auth/login", a.Login)
}

// RegisterReservations mounts booking creation and history.
func RegisterReservations(g *echo.Group, r *handler.ReservationHandler) {
	g.POST("/reservations", r.Create)
	g.GET("/reservations/:email", r.List)
}
