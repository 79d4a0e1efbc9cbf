package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vlogdeck/vlogdeck/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "vlogdeck/1.0"

	// maxAttempts bounds transport retries: the initial call plus two
	// retries with 1s and 2s backoff (~3s worst case before failing).
	maxAttempts = 3
)

// NetworkErrorMessage is the fixed user-facing message for exhausted
// transport retries.
const NetworkErrorMessage = "Network error. Please check your connection and try again."

// Client is the HTTP facade over the vlog platform REST API. It attaches the
// bearer credential, retries transient network failures with bounded
// backoff, and normalizes server error payloads into *domain.APIError.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	logger        *slog.Logger
	token         func() string
	onAuthExpired func()

	// sleep is the backoff wait, a seam for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates an API client. token supplies the current bearer
// credential and may return "" when unauthenticated.
func NewClient(baseURL string, token func() string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
		token:      token,
		sleep:      sleepContext,
	}
}

// SetAuthExpiredHook registers the side effect fired on a 401 response:
// clearing the local credential and navigating to login. It runs exactly
// once per failing request and is not retried.
func (c *Client) SetAuthExpiredHook(fn func()) {
	c.onAuthExpired = fn
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Request performs an authenticated request and returns the raw response
// body. GETs carry a cache-busting timestamp parameter so intermediaries
// never serve stale reads; that is a transport concern, distinct from the
// cache layer's own staleness tracking.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	reqURL := c.baseURL + path
	if method == http.MethodGet {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		reqURL += sep + "_t=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		c.logger.Debug("api request", "method", method, "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("api request failed", "method", method, "path", path, "attempt", attempt, "error", err)
			if attempt < maxAttempts-1 {
				// delay = 2^attempt seconds: 1s after the first failure, 2s
				// after the second.
				delay := time.Duration(1<<attempt) * time.Second
				if err := c.sleep(ctx, delay); err != nil {
					return nil, err
				}
			}
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}

		if resp.StatusCode >= 400 {
			return nil, c.statusError(resp.StatusCode, data)
		}
		return data, nil
	}

	return nil, &domain.APIError{Kind: domain.KindNetwork, Message: NetworkErrorMessage}
}

// statusError maps an HTTP error response to the client taxonomy. Server
// errors are not retried; only transport failures are.
func (c *Client) statusError(status int, body []byte) error {
	kind := kindForStatus(status)
	msg := serverMessage(body)
	if msg == "" {
		msg = defaultMessage(status)
	}

	c.logger.Error("api error", "status", status, "kind", kind.String(), "message", msg)

	if status == http.StatusUnauthorized && c.onAuthExpired != nil {
		c.onAuthExpired()
	}

	return &domain.APIError{Status: status, Kind: kind, Message: msg}
}

func kindForStatus(status int) domain.ErrorKind {
	switch {
	case status == http.StatusBadRequest:
		return domain.KindInvalidInput
	case status == http.StatusUnauthorized:
		return domain.KindAuthExpired
	case status == http.StatusForbidden:
		return domain.KindForbidden
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusTooManyRequests:
		return domain.KindRateLimited
	default:
		return domain.KindServer
	}
}

// serverMessage extracts the error text from a response body, preferring
// the nested error.message field over the top-level message field.
func serverMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error.Message != "" {
		return payload.Error.Message
	}
	return payload.Message
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid request. Please check your input."
	case http.StatusUnauthorized:
		return "Your session has expired. Please log in again."
	case http.StatusForbidden:
		return "You don't have permission to do that."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusTooManyRequests:
		return "Too many requests. Please slow down."
	default:
		return "Something went wrong on our end. Please try again later."
	}
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, path, body)
}

func (c *Client) put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, path, body)
}

func (c *Client) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, path, nil)
}
