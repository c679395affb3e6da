package handler

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/service"
)

// Response messages shown to guests.
const (
	msgInvalidBody       = "Invalid request body."
	msgMissingFields     = "Please fill in all required fields."
	msgEmailTaken        = "Email already registered. Please login instead."
	msgBadPhone          = "Invalid credentials. Please check your phone number."
	msgTokenReused       = "This request token was already used for a different booking."
	msgInternal          = "Something went wrong. Please try again."
	msgAccountNotFound   = "Account not found. Please sign up first."
	msgUserNotFound      = "User not found. Please login first."
	msgSignupFailed      = "Failed to create account. Please try again."
	msgLoginFailed       = "Failed to login. Please try again."
	msgReservationFailed = "Failed to create reservation. Please try again."
	msgListFailed        = "Failed to fetch reservations."
)

// writeError maps a service error onto a response.  Unrecognised errors
// become a 500 carrying failMsg and are handed to the HTTP error handler
// for logging.
func writeError(c echo.Context, err error, notFoundMsg, failMsg string) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgMissingFields, "details": verr.Fields})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgEmailTaken})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMsg})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgBadPhone})
	case errors.Is(err, service.ErrIdempotencyConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": msgTokenReused})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, failMsg).SetInternal(err)
	}
}

// ErrorHandler renders every error as {"error": "..."} and reports server
// errors to the log and to Sentry.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := http.StatusInternalServerError, msgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(c.Request())
			hub.CaptureException(err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, echo.Map{"error": msg})
	}
}
