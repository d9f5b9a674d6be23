// Package transport provides the shared HTTP client used by every provider
// client. It retries transient failures with bounded exponential backoff and
// classifies everything else as permanent.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// retryableStatus is the set of HTTP status codes treated as transient.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
	599:                            true, // network connect timeout (non-standard)
}

// Error is a transport-level failure. Transient errors exhausted their retry
// budget; permanent errors were never retried.
type Error struct {
	StatusCode int // 0 for connection-level failures
	Transient  bool
	Err        error
}

func (e *Error) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport: %s failure: status %d: %v", kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport: %s failure: %v", kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client wraps an http.Client with transient-failure retries. The zero value
// is not usable; construct with NewClient.
type Client struct {
	httpClient  *http.Client
	maxRetries  int
	backoffBase time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxRetries sets how many additional attempts follow a transient failure.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackoffBase sets the first retry delay. Each subsequent retry doubles it.
func WithBackoffBase(d time.Duration) Option {
	return func(c *Client) {
		c.backoffBase = d
	}
}

// NewClient creates a Client with a 60s timeout, 3 retries, and a 2s backoff
// base unless overridden by options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		maxRetries:  3,
		backoffBase: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends the request, retrying on connection errors and retryable status
// codes with exponential backoff (base, 2x base, 4x base, ...). Non-retryable
// statuses >= 400 return immediately as a permanent *Error. On success the
// caller owns resp.Body.
//
// Requests with a body must set req.GetBody (http.NewRequest does this for
// the common body types) so the body can be replayed on retry.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffBase << (attempt - 1)
			if err := sleep(req.Context(), delay); err != nil {
				return nil, &Error{Transient: true, Err: err}
			}
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, &Error{Err: fmt.Errorf("replay request body: %w", err)}
				}
				req.Body = body
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Connection-level failure: retryable unless the context is done.
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, &Error{Transient: true, Err: ctxErr}
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 400 {
			return resp, nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()

		if !retryableStatus[resp.StatusCode] {
			return nil, &Error{
				StatusCode: resp.StatusCode,
				Transient:  false,
				Err:        fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, string(body)),
			}
		}

		lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	return nil, &Error{Transient: true, Err: fmt.Errorf("retries exhausted: %w", lastErr)}
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
