// Package api is the HTTP client for the remote vehicle-control service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/publicsuffix"

	"github.com/lockbar-io/lockbar/internal/buildinfo"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/models"
)

// Region endpoints. api.base_url in settings overrides these.
var regionURLs = map[string]string{
	models.RegionUS: "https://us.api.lockbar.io/v1",
	models.RegionCA: "https://ca.api.lockbar.io/v1",
	models.RegionEU: "https://eu.api.lockbar.io/v1",
}

const (
	sessionHeader   = "Sid"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

// retryLogger routes retryablehttp logging into zerolog.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

// Client talks to the vehicle-control service.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	userAgent  string
	log        *logging.Logger
}

// BaseURL resolves the endpoint for the configured region or override.
func BaseURL(cfg models.APIConfig) (string, error) {
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
		}
		return strings.TrimSuffix(cfg.BaseURL, "/"), nil
	}
	base, ok := regionURLs[strings.ToLower(cfg.Region)]
	if !ok {
		return "", fmt.Errorf("unknown API region %q", cfg.Region)
	}
	return base, nil
}

// NewClient creates a client from the api section of the settings.
func NewClient(cfg models.APIConfig, log *logging.Logger) (*Client, error) {
	base, err := BaseURL(cfg)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	log = log.Component("api")

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Jar = jar
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = &retryLogger{log: log}
	// Hand the final response back so non-2xx bodies can be decoded.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    base,
		userAgent:  buildinfo.UserAgent("lockbar"),
		log:        log,
	}, nil
}

// Endpoint returns the base URL the client talks to.
func (c *Client) Endpoint() string {
	return c.baseURL
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID string `json:"session_id"`
}

type vehiclesResponse struct {
	Vehicles []models.Vehicle `json:"vehicles"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (models.Token, error) {
	var out loginResponse
	resp, err := c.do(ctx, nethttp.MethodPost, "/auth/login", "", loginRequest{
		Username: username,
		Password: password,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	sid := out.SessionID
	if sid == "" {
		sid = resp.Header.Get(sessionHeader)
	}
	if sid == "" {
		return "", ErrEmptySession
	}

	c.log.Info().Str("user", username).Msg("Logged in")
	return models.Token(sid), nil
}

// ListVehicles returns the vehicles on the account in service order.
func (c *Client) ListVehicles(ctx context.Context, token models.Token) ([]models.Vehicle, error) {
	var out vehiclesResponse
	if _, err := c.do(ctx, nethttp.MethodGet, "/vehicles", token, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	if out.Vehicles == nil {
		out.Vehicles = []models.Vehicle{}
	}
	return out.Vehicles, nil
}

// Lock sends a remote door lock command.
func (c *Client) Lock(ctx context.Context, token models.Token, vehicleKey string) error {
	return c.command(ctx, token, vehicleKey, "lock")
}

// Unlock sends a remote door unlock command.
func (c *Client) Unlock(ctx context.Context, token models.Token, vehicleKey string) error {
	return c.command(ctx, token, vehicleKey, "unlock")
}

func (c *Client) command(ctx context.Context, token models.Token, vehicleKey, action string) error {
	if vehicleKey == "" {
		return fmt.Errorf("failed to %s vehicle: empty vehicle key", action)
	}
	path := "/vehicles/" + url.PathEscape(vehicleKey) + "/" + action
	if _, err := c.do(ctx, nethttp.MethodPost, path, token, nil, nil); err != nil {
		return fmt.Errorf("failed to %s vehicle %s: %w", action, vehicleKey, err)
	}
	c.log.Info().Str("vehicle", vehicleKey).Str("action", action).Msg("Command accepted")
	return nil
}

// do performs a JSON request. out may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, method, path string, token models.Token, body, out interface{}) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token.Valid() {
		req.Header.Set(sessionHeader, string(token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("Request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Str("request_id", requestID).
		Msg("Request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, decodeError(resp, requestID)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp, nil
}

func decodeError(resp *nethttp.Response, requestID string) error {
	apiErr := &Error{StatusCode: resp.StatusCode, RequestID: requestID}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorResponse
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	} else if text := strings.TrimSpace(string(data)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}
