// Package backend is the HTTP client for the survey REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrForbidden    = errors.New("backend: forbidden")
	ErrNotFound     = errors.New("backend: not found")
	ErrRateLimited  = errors.New("backend: rate limited")
)

// APIError is a non-2xx backend response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error %d", e.Status)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// Unwrap maps auth and lookup statuses to sentinel errors
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// IsAuthFailure reports whether err means the stored token is no longer
// accepted
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// Client wraps backend API calls
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	backoffBase time.Duration
	log         logrus.FieldLogger
}

// NewClient creates a backend client
func NewClient(baseURL string, timeout time.Duration, maxRetries int, log logrus.FieldLogger) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:  maxRetries,
		backoffBase: time.Second,
		log:         log.WithField("component", "backend"),
	}
}

// response is a fully read backend reply
type response struct {
	status int
	header http.Header
	body   []byte
}

// idempotent requests are retried on transport errors; everything is
// retried on 429
func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodPut || method == http.MethodDelete
}

// do performs an HTTP request with retry logic
func (c *Client) do(ctx context.Context, method, path, token string, in any) (*response, error) {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "path": path})

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.backoffBase
			log.Debugf("retry %d/%d in %v", attempt, c.maxRetries-1, backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || !idempotent(method) {
				return nil, fmt.Errorf("request failed: %w", err)
			}
			log.WithError(err).Warn("request failed")
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		log.Debugf("status %d, %d bytes", resp.StatusCode, len(respBody))

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = &APIError{Status: resp.StatusCode, Message: errorMessage(respBody)}
			log.Warn("rate limited")
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(respBody)}
		}
		return &response{status: resp.StatusCode, header: resp.Header, body: respBody}, nil
	}

	log.WithError(lastErr).Errorf("max retries (%d) exceeded", c.maxRetries)
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// errorMessage extracts {"error"} or {"details"} from an error body
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.Error != "":
			return e.Error
		case e.Message != "":
			return e.Message
		case e.Details != "":
			return e.Details
		}
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorLen)
}

const maxErrorLen = 200

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// call performs a request and decodes a JSON reply into out
func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	resp, err := c.do(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to parse %s %s response: %w", method, path, err)
	}
	return nil
}
