package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/menu"
	"github.com/iliyamo/shastra-reservations/internal/model"
	"github.com/iliyamo/shastra-reservations/internal/service"
)

// ---- mocks ----

type mockAccounts struct {
	signupFn func(service.SignupInput) (model.Account, error)
	loginFn  func(service.LoginInput) (model.Account, error)
}

func (m *mockAccounts) Signup(_ context.Context, in service.SignupInput) (model.Account, error) {
	if m.signupFn != nil {
		return m.signupFn(in)
	}
	return model.Account{}, errors.New("not configured")
}

func (m *mockAccounts) Login(_ context.Context, in service.LoginInput) (model.Account, error) {
	if m.loginFn != nil {
		return m.loginFn(in)
	}
	return model.Account{}, errors.New("not configured")
}

type mockReservations struct {
	createFn func(service.CreateReservationInput) (model.Reservation, bool, error)
	listFn   func(string) ([]model.Reservation, error)
}

func (m *mockReservations) Create(_ context.Context, in service.CreateReservationInput) (model.Reservation, bool, error) {
	if m.createFn != nil {
		return m.createFn(in)
	}
	return model.Reservation{}, false, errors.New("not configured")
}

func (m *mockReservations) List(_ context.Context, email string) ([]model.Reservation, error) {
	if m.listFn != nil {
		return m.listFn(email)
	}
	return nil, errors.New("not configured")
}

// ---- helpers ----

var arjun = model.Account{ID: "acc-1", Name: "Arjun", Email: "arjun@x.com", Phone: "9000000000"}

func newTestEcho(acc AccountService, res ReservationService) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
	a := NewAuthHandler(acc)
	r := NewReservationHandler(res)
	e.POST("/api/auth/signup", a.Signup)
	e.POST("/api/auth/login", a.Login)
	e.POST("/api/reservations", r.Create)
	e.GET("/api/reservations/:email", r.List)
	return e
}

func doRequest(e *echo.Echo, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ---- tests ----

func TestSignup(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		signupFn  func(service.SignupInput) (model.Account, error)
		wantCode  int
		wantError string
	}{
		{
			name: "success",
			body: `{"name":"Arjun","email":"arjun@x.com","phone":"9000000000"}`,
			signupFn: func(in service.SignupInput) (model.Account, error) {
				return arjun, nil
			},
			wantCode: http.StatusCreated,
		},
		{
			name:      "email taken",
			body:      `{"name":"Arjun","email":"arjun@x.com","phone":"9000000000"}`,
			signupFn:  func(service.SignupInput) (model.Account, error) { return model.Account{}, service.ErrConflict },
			wantCode:  http.StatusBadRequest,
			wantError: "Email already registered. Please login instead.",
		},
		{
			name: "missing field",
			body: `{"name":"Arjun","email":"arjun@x.com"}`,
			signupFn: func(service.SignupInput) (model.Account, error) {
				return model.Account{}, &service.ValidationError{Fields: []service.FieldError{{Field: "phone", Message: "Phone number is required", Type: "required"}}}
			},
			wantCode:  http.StatusBadRequest,
			wantError: "Please fill in all required fields.",
		},
		{
			name:      "malformed body",
			body:      `{"name":`,
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid request body.",
		},
		{
			name: "database down",
			body: `{"name":"Arjun","email":"arjun@x.com","phone":"9000000000"}`,
			signupFn: func(service.SignupInput) (model.Account, error) {
				return model.Account{}, &service.DependencyError{Op: "signup", Err: errors.New("dial tcp: refused")}
			},
			wantCode:  http.StatusInternalServerError,
			wantError: "Failed to create account. Please try again.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(&mockAccounts{signupFn: tt.signupFn}, &mockReservations{})
			rec := doRequest(e, http.MethodPost, "/api/auth/signup", tt.body, nil)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			body := decode(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, "Account created successfully!", body["message"])
			assert.Equal(t, map[string]any{"id": "acc-1", "name": "Arjun", "email": "arjun@x.com", "phone": "9000000000"}, body["user"])
		})
	}
}

func TestSignup_ValidationDetails(t *testing.T) {
	e := newTestEcho(&mockAccounts{signupFn: func(service.SignupInput) (model.Account, error) {
		return model.Account{}, &service.ValidationError{Fields: []service.FieldError{{Field: "phone", Message: "Phone number is required", Type: "required"}}}
	}}, &mockReservations{})

	rec := doRequest(e, http.MethodPost, "/api/auth/signup", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{map[string]any{"field": "phone", "message": "Phone number is required", "type": "required"}}, decode(t, rec)["details"])
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		loginErr  error
		wantCode  int
		wantError string
	}{
		{"success", nil, http.StatusOK, ""},
		{"unknown email", service.ErrNotFound, http.StatusNotFound, "Account not found. Please sign up first."},
		{"wrong phone", service.ErrUnauthorized, http.StatusUnauthorized, "Invalid credentials. Please check your phone number."},
		{"store failure", &service.DependencyError{Op: "login", Err: errors.New("timeout")}, http.StatusInternalServerError, "Failed to login. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.LoginInput
			e := newTestEcho(&mockAccounts{loginFn: func(in service.LoginInput) (model.Account, error) {
				got = in
				if tt.loginErr != nil {
					return model.Account{}, tt.loginErr
				}
				return arjun, nil
			}}, &mockReservations{})

			rec := doRequest(e, http.MethodPost, "/api/auth/login", `{"email":"arjun@x.com","phone":"9000000000"}`, nil)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, service.LoginInput{Email: "arjun@x.com", Phone: "9000000000"}, got)

			body := decode(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, "Login successful!", body["message"])
		})
	}
}

func TestCreateReservation(t *testing.T) {
	const payload = `{"email":"arjun@x.com","name":"Arjun","phone":"9000000000","date":"2025-12-01","time":"19:30","guests":"4"}`
	res := model.Reservation{ID: "res-1", Date: "2025-12-01", Time: "19:30", Guests: "4", CreatedAt: time.Now()}

	t.Run("success", func(t *testing.T) {
		e := newTestEcho(&mockAccounts{}, &mockReservations{createFn: func(service.CreateReservationInput) (model.Reservation, bool, error) {
			return res, false, nil
		}})
		rec := doRequest(e, http.MethodPost, "/api/reservations", payload, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Equal(t, "Reservation confirmed!", body["message"])
		assert.Equal(t, map[string]any{"id": "res-1", "date": "2025-12-01", "time": "19:30", "guests": "4"}, body["reservation"])
		assert.Empty(t, rec.Header().Get(HeaderReplayed))
	})

	t.Run("idempotency key header is used and replay flagged", func(t *testing.T) {
		var token string
		e := newTestEcho(&mockAccounts{}, &mockReservations{createFn: func(in service.CreateReservationInput) (model.Reservation, bool, error) {
			token = in.RequestToken
			return res, true, nil
		}})
		rec := doRequest(e, http.MethodPost, "/api/reservations", payload, http.Header{HeaderIdempotencyKey: {"tok-9"}})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "tok-9", token)
		assert.Equal(t, "true", rec.Header().Get(HeaderReplayed))
	})

	t.Run("body token wins over header", func(t *testing.T) {
		var token string
		e := newTestEcho(&mockAccounts{}, &mockReservations{createFn: func(in service.CreateReservationInput) (model.Reservation, bool, error) {
			token = in.RequestToken
			return res, false, nil
		}})
		body := strings.TrimSuffix(payload, "}") + `,"requestToken":"tok-body"}`
		doRequest(e, http.MethodPost, "/api/reservations", body, http.Header{HeaderIdempotencyKey: {"tok-header"}})
		assert.Equal(t, "tok-body", token)
	})

	errCases := []struct {
		name      string
		err       error
		wantCode  int
		wantError string
	}{
		{"unknown account", service.ErrNotFound, http.StatusNotFound, "User not found. Please login first."},
		{"token reused", service.ErrIdempotencyConflict, http.StatusConflict, "This request token was already used for a different booking."},
		{"store failure", &service.DependencyError{Op: "create reservation", Err: errors.New("boom")}, http.StatusInternalServerError, "Failed to create reservation. Please try again."},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(&mockAccounts{}, &mockReservations{createFn: func(service.CreateReservationInput) (model.Reservation, bool, error) {
				return model.Reservation{}, false, tt.err
			}})
			rec := doRequest(e, http.MethodPost, "/api/reservations", payload, nil)
			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantError, decode(t, rec)["error"])
		})
	}
}

func TestListReservations(t *testing.T) {
	var asked string
	e := newTestEcho(&mockAccounts{}, &mockReservations{listFn: func(email string) ([]model.Reservation, error) {
		asked = email
		if email == "broken@x.com" {
			return nil, &service.DependencyError{Op: "list reservations", Err: errors.New("boom")}
		}
		return []model.Reservation{}, nil
	}})

	rec := doRequest(e, http.MethodGet, "/api/reservations/arjun%40x.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "arjun@x.com", asked)
	assert.Equal(t, []any{}, decode(t, rec)["reservations"])

	rec = doRequest(e, http.MethodGet, "/api/reservations/broken@x.com", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch reservations.", decode(t, rec)["error"])
}

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	tests := []struct {
		name      string
		db, cache PingFunc
		wantDB    string
		wantCache string
	}{
		{"all up", up, up, "Connected", "Connected"},
		{"no redis", up, nil, "Connected", "Disabled"},
		{"everything down", down, down, "Disconnected", "Disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/api/health", NewHealthHandler(tt.db, tt.cache).Check)
			rec := doRequest(e, http.MethodGet, "/api/health", "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, map[string]any{
				"status":   "OK",
				"message":  "Shastra Backend Server is running",
				"mongodb":  tt.wantDB,
				"database": tt.wantDB,
				"cache":    tt.wantCache,
			}, decode(t, rec))
		})
	}
}

func TestMenu(t *testing.T) {
	m, err := menu.Load()
	require.NoError(t, err)
	e := echo.New()
	e.GET("/api/menu", NewMenuHandler(m).Get)

	rec := doRequest(e, http.MethodGet, "/api/menu?category=Breads", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []any{"Breads"}, body["categories"])
	assert.Len(t, body["items"], 4)

	rec = doRequest(e, http.MethodGet, "/api/menu?signature=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]any)
	assert.Len(t, items, len(m.Signature()))
	for _, it := range items {
		assert.Equal(t, true, it.(map[string]any)["isSignature"])
	}
}

func TestErrorHandler_RouteNotFound(t *testing.T) {
	e := newTestEcho(&mockAccounts{}, &mockReservations{})
	rec := doRequest(e, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode(t, rec)["error"])
}
