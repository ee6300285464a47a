package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/mmcdole/lectern/internal/domain"
)

const (
	defaultTimeout  = 30 * time.Second
	maxTries        = 4
	baseRetryDelay  = 500 * time.Millisecond
	maxResponseBody = 8 << 20
)

// Client talks to the course platform's REST API using a cookie session.
// Implements domain.CourseRepository, domain.AuthoringRepository and
// domain.SessionRepository.
type Client struct {
	baseURL    string
	httpClient *http.Client
	jar        *Jar
	logger     *slog.Logger

	// retryDelay is the first backoff interval for 5xx retries
	retryDelay time.Duration
}

// NewClient creates a REST client. jar may be nil for a session that is not
// persisted between runs.
func NewClient(baseURL string, jar *Jar, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if jar == nil {
		var err error
		jar, err = NewJar(baseURL, "")
		if err != nil {
			return nil, err
		}
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
		jar:        jar,
		logger:     logger,
		retryDelay: baseRetryDelay,
	}, nil
}

// statusError is a non-2xx response that is not worth retrying
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.status)
}

// doRequest performs a request against the API and returns the body.
// 5xx responses to GETs are retried with exponential backoff; writes are
// sent once. 401 and 403 map to
// domain.ErrAuthFailed; transport failures map to domain.ErrServerOffline.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	reqURL := c.baseURL + path

	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		var body io.Reader
		if reqBody != nil {
			body = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.logger.Debug("api request", "method", method, "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			c.logger.Error("api request failed", "error", err, "url", reqURL)
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrServerOffline, err))
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to read response: %w", err))
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, backoff.Permanent(domain.ErrAuthFailed)
		case resp.StatusCode >= 500:
			err := fmt.Errorf("server error: %d - %s", resp.StatusCode, string(respBody))
			if method != http.MethodGet {
				// the write may have been applied before the gateway failed
				c.logger.Error("api write failed", "status", resp.StatusCode, "path", path)
				return nil, backoff.Permanent(err)
			}
			return nil, err
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			c.logger.Error("api request error", "status", resp.StatusCode, "body", string(respBody), "path", path)
			return nil, backoff.Permanent(&statusError{status: resp.StatusCode, body: string(respBody)})
		}
		return respBody, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryDelay

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(func(err error, delay time.Duration) {
			c.logger.Warn("api server error, will retry", "error", err, "delay", delay, "path", path)
		}),
	)
	if err != nil {
		return nil, err
	}
	c.saveSession()
	return body, nil
}

// getJSON decodes a GET response into out
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// postJSON sends payload and decodes the response into out (if non-nil)
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) saveSession() {
	if err := c.jar.Save(); err != nil {
		c.logger.Warn("failed to persist session", "error", err)
	}
}
