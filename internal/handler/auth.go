package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shastra-reservations/internal/model"
	"github.com/iliyamo/shastra-reservations/internal/service"
)

// AccountService is implemented by *service.AccountService.
type AccountService interface {
	Signup(ctx context.Context, in service.SignupInput) (model.Account, error)
	Login(ctx context.Context, in service.LoginInput) (model.Account, error)
}

// AuthHandler serves signup and login.
type AuthHandler struct {
	accounts AccountService
}

func NewAuthHandler(accounts AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Signup: create the account; the welcome e-mail is queued.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req service.SignupInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidBody})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.accounts.Signup(ctx, req)
	if err != nil {
		return writeError(c, err, msgAccountNotFound, msgSignupFailed)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Account created successfully!",
		"user":    acc.Public(),
	})
}

// Login: match email and phone; the welcome back e-mail is queued.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidBody})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.accounts.Login(ctx, req)
	if err != nil {
		return writeError(c, err, msgAccountNotFound, msgLoginFailed)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful!",
		"user":    acc.Public(),
	})
}
