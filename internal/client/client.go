// Package client is a typed HTTP client for the ByaheNow API. It backs the
// byahectl commands and satisfies poller.Fetcher.
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
	"sync"
	"time"

	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/fare"
	"github.com/maasin/byahenow/internal/domain/feedback"
	"github.com/maasin/byahenow/internal/domain/user"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to one API server
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent on authenticated calls
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for baseURL, e.g. http://localhost:8080
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Signup creates an account
func (c *Client) Signup(ctx context.Context, req dto.SignupRequest) (*user.Profile, error) {
	var resp dto.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/signup", false, req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login exchanges credentials for a token and keeps it for later calls
func (c *Client) Login(ctx context.Context, email, password string) (string, *user.Profile, error) {
	var resp dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", false, dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", nil, err
	}
	c.SetToken(resp.Token)
	return resp.Token, resp.User, nil
}

// Drivers returns the server-filtered snapshot
func (c *Client) Drivers(ctx context.Context, f driver.Filter) ([]*driver.Record, error) {
	path := "/drivers"
	if f.VehicleType != "" {
		path += "?vehicleType=" + url.QueryEscape(string(f.VehicleType))
	}
	var resp dto.DriversResponse
	if err := c.do(ctx, http.MethodGet, path, false, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drivers, nil
}

// FetchDrivers returns the unfiltered snapshot. The poller applies its
// own filter so it can re-filter without fetching.
func (c *Client) FetchDrivers(ctx context.Context) ([]*driver.Record, error) {
	return c.Drivers(ctx, driver.Filter{})
}

// Publish sends the caller's presence record
func (c *Client) Publish(ctx context.Context, req dto.PublishStatusRequest) (*driver.Record, error) {
	var resp dto.PublishStatusResponse
	if err := c.do(ctx, http.MethodPost, "/driver/update", true, req, &resp); err != nil {
		return nil, err
	}
	return resp.Driver, nil
}

// Fares returns the fare catalog
func (c *Client) Fares(ctx context.Context) (*fare.Catalog, error) {
	var resp dto.FaresResponse
	if err := c.do(ctx, http.MethodGet, "/fares", false, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Fares, nil
}

// SubmitFeedback rates a trip
func (c *Client) SubmitFeedback(ctx context.Context, req dto.FeedbackRequest) (*feedback.Feedback, error) {
	var resp dto.FeedbackResponse
	if err := c.do(ctx, http.MethodPost, "/feedback", true, req, &resp); err != nil {
		return nil, err
	}
	return resp.Feedback, nil
}

// Profile returns the caller's profile
func (c *Client) Profile(ctx context.Context) (*user.Profile, error) {
	var resp dto.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/profile", true, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

// UpdateProfile merges the given fields into the caller's profile
func (c *Client) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (*user.Profile, error) {
	var resp dto.ProfileResponse
	if err := c.do(ctx, http.MethodPut, "/profile", true, req, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.Token()
		if token == "" {
			return &APIError{Status: http.StatusUnauthorized, Code: "UNAUTHENTICATED", Message: "not logged in"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e dto.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Code = e.Code
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
