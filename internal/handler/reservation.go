package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shastra-reservations/internal/model"
	"github.com/iliyamo/shastra-reservations/internal/service"
)

// Idempotency headers.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// ReservationService is implemented by *service.ReservationService.
type ReservationService interface {
	Create(ctx context.Context, in service.CreateReservationInput) (model.Reservation, bool, error)
	List(ctx context.Context, email string) ([]model.Reservation, error)
}

// ReservationHandler serves booking creation and history.
type ReservationHandler struct {
	reservations ReservationService
}

func NewReservationHandler(reservations ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// Create books a table.  The request token may come from the body or from
// the Idempotency-Key header; a replayed booking is answered like the
// original with Idempotent-Replayed set.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req service.CreateReservationInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidBody})
	}
	if req.RequestToken == "" {
		req.RequestToken = c.Request().Header.Get(HeaderIdempotencyKey)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, replayed, err := h.reservations.Create(ctx, req)
	if err != nil {
		return writeError(c, err, msgUserNotFound, msgReservationFailed)
	}
	if replayed {
		c.Response().Header().Set(HeaderReplayed, "true")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "Reservation confirmed!",
		"reservation": res.Summary(),
	})
}

// List returns the latest reservations for the email in the path.
func (h *ReservationHandler) List(c echo.Context) error {
	email := c.Param("email")
	if unescaped, err := url.PathUnescape(email); err == nil {
		email = unescaped
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.reservations.List(ctx, email)
	if err != nil {
		return writeError(c, err, msgUserNotFound, msgListFailed)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}
