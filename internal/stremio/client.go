package stremio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"stremsync/internal/logging"
)

// ErrTransport tags every remote call failure: network errors, non-2xx
// statuses, API-level errors, and malformed response bodies.
var ErrTransport = errors.New("stremio transport failure")

// DefaultBaseURL is the public Stremio API endpoint.
const DefaultBaseURL = "https://api.strem.io"

const defaultTimeout = 20 * time.Second

// Some addon gateways reject non-browser user agents outright.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the Stremio API and to addon endpoints. It is safe
// for concurrent use.
type Client struct {
	baseURL string
	authKey string
	http    HTTPDoer
	logger  *slog.Logger

	addons addonCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP backend.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger attaches a logger; requests log at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "stremio")
		}
	}
}

// New creates a client. An empty baseURL falls back to the public API;
// an empty authKey leaves requests anonymous, which the API answers
// with empty collections rather than errors.
func New(baseURL, authKey string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		authKey: strings.TrimSpace(authKey),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post calls an API method and decodes the unwrapped result into out,
// which may be nil when the caller only cares about success. The auth
// key is injected into the payload, never the URL.
func (c *Client) Post(ctx context.Context, path string, payload map[string]any, out any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	if c.authKey != "" {
		payload["authKey"] = c.authKey
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}

	url := c.baseURL + "/api/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	requestID := uuid.NewString()
	c.logger.Debug("api call",
		logging.String("path", path),
		logging.String(logging.FieldCorrelationID, requestID))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post %s: %w", ErrTransport, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api response",
		logging.String("path", path),
		logging.String(logging.FieldCorrelationID, requestID),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: post %s returned %d: %s", ErrTransport, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *apiError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrTransport, path, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%w: %s: %s", ErrTransport, path, envelope.Error)
	}
	if out == nil {
		return nil
	}
	if len(envelope.Result) == 0 || bytes.Equal(envelope.Result, []byte("null")) {
		return fmt.Errorf("%w: %s response carries no result", ErrTransport, path)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("%w: decode %s result: %w", ErrTransport, path, err)
	}
	return nil
}

// Get fetches an addon resource URL and decodes the JSON body into
// out. Addon transport urls are published with a manifest.json suffix,
// which is stripped before use.
func (c *Client) Get(ctx context.Context, url string, out any) error {
	url = strings.ReplaceAll(url, "/manifest.json", "")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	requestID := uuid.NewString()
	c.logger.Debug("addon call",
		logging.String("url", url),
		logging.String(logging.FieldCorrelationID, requestID))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: get %s: %w", ErrTransport, url, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("addon response",
		logging.String("url", url),
		logging.String(logging.FieldCorrelationID, requestID),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: get %s returned %d", ErrTransport, url, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrTransport, url, err)
	}
	return nil
}

type apiError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d", e.Code)
	}
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}
