// Package client talks to the reservations HTTP API.  It implements
// flow.API, so a terminal or test harness can drive the booking flow
// against a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/shastra-reservations/internal/flow"
)

const defaultTimeout = 10 * time.Second

// FieldError is one entry of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// APIError is any non-2xx answer.  Message is the server's "error" text.
type APIError struct {
	Status  int
	Message string
	Details []FieldError
}

func (e *APIError) Error() string {
	return e.Message
}

// Reservation is one entry of a guest's booking history.
type Reservation struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Guests         string    `json:"guests"`
	SpecialRequest string    `json:"specialRequest"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	MongoDB  string `json:"mongodb"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Client is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
}

var _ flow.API = (*Client)(nil)

// New returns a client for the server at baseURL (e.g.
// "http://localhost:3001").  A nil hc gets a client with a 10s timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

type authResponse struct {
	User flow.Account `json:"user"`
}

func (c *Client) Signup(ctx context.Context, name, email, phone string) (flow.Account, error) {
	var out authResponse
	body := map[string]string{"name": name, "email": email, "phone": phone}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", body, nil, &out); err != nil {
		return flow.Account{}, err
	}
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, phone string) (flow.Account, error) {
	var out authResponse
	body := map[string]string{"email": email, "phone": phone}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, nil, &out); err != nil {
		return flow.Account{}, err
	}
	return out.User, nil
}

// CreateReservation books a table.  The request token travels both in the
// body and as the Idempotency-Key header.
func (c *Client) CreateReservation(ctx context.Context, b flow.Booking) (flow.Confirmation, error) {
	var out struct {
		Reservation flow.Confirmation `json:"reservation"`
	}
	var hdr http.Header
	if b.RequestToken != "" {
		hdr = http.Header{"Idempotency-Key": []string{b.RequestToken}}
	}
	if err := c.do(ctx, http.MethodPost, "/api/reservations", b, hdr, &out); err != nil {
		return flow.Confirmation{}, err
	}
	return out.Reservation, nil
}

// ListReservations returns the latest bookings made with email.
func (c *Client) ListReservations(ctx context.Context, email string) ([]Reservation, error) {
	var out struct {
		Reservations []Reservation `json:"reservations"`
	}
	path := "/api/reservations/" + url.PathEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Reservations, nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, hdr http.Header, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) *APIError {
	var body struct {
		Error   string       `json:"error"`
		Details []FieldError `json:"details"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		return apiErr
	}
	apiErr.Message = http.StatusText(status)
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("unexpected status %d", status)
	}
	return apiErr
}
