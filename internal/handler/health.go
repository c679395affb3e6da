package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// PingFunc reports whether a backing service answers.
type PingFunc func(ctx context.Context) error

// HealthHandler reports liveness plus database and cache connectivity.  It
// always answers 200 so load balancers keep routing while a dependency
// recovers.
type HealthHandler struct {
	db    PingFunc
	cache PingFunc // nil when Redis is not configured
}

func NewHealthHandler(db, cache PingFunc) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	cache := "Disabled"
	if h.cache != nil {
		cache = connState(ctx, h.cache)
	}
	db := connState(ctx, h.db)
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "OK",
		"message": "Shastra Backend Server is running",
		// mongodb is the key existing clients read; database carries the same state.
		"mongodb":  db,
		"database": db,
		"cache":    cache,
	})
}

func connState(ctx context.Context, ping PingFunc) string {
	if ping == nil || ping(ctx) != nil {
		return "Disconnected"
	}
	return "Connected"
}
