// Package budgea is a client for the Budgea banking API endpoints used to
// pay salaries: token authentication, accounts, recipients, transfers and OCR.
package budgea

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

	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://budgeapro.biapi.pro/2.0"

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 60 * time.Second

// Client talks to the banking API. Calls are synchronous; a rate limiter
// spaces them out.
type Client struct {
	baseURL     string
	application string
	scope       string
	client      *http.Client
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the timeout for HTTP requests.
// Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithApplication sets the application name and token scope sent on
// authentication.
func WithApplication(application, scope string) Option {
	return func(c *Client) {
		c.application = application
		c.scope = scope
	}
}

// NewClient creates a new API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		application: "Android",
		scope:       "transfer",
		timeout:     DefaultTimeout,
		limiter:     rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = logging.NewLogrusAdapter("info", "text", io.Discard)
	}
	return c
}

// errorBody is decoded from every response to detect provider errors, which
// may come with any HTTP status.
type errorBody struct {
	Code        *string `json:"code"`
	Message     string  `json:"message"`
	Description string  `json:"description"`
}

func (c *Client) postForm(ctx context.Context, sess models.Session, path string, form url.Values, out interface{}) error {
	return c.do(ctx, sess, http.MethodPost, path, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", out)
}

func (c *Client) get(ctx context.Context, sess models.Session, path string, out interface{}) error {
	return c.do(ctx, sess, http.MethodGet, path, nil, "", out)
}

func (c *Client) do(ctx context.Context, sess models.Session, method, path string, body io.Reader, contentType string, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WithError(cerr).Warn("Failed to close response body")
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	c.logger.Debug("API call",
		logging.F(logging.FieldOperation, method+" "+path),
		logging.F(logging.FieldStatus, resp.StatusCode),
		logging.F(logging.FieldDuration, time.Since(start).String()),
		logging.F(logging.FieldRunID, sess.RunID))

	var eb errorBody
	if len(bytes.TrimSpace(payload)) > 0 && json.Unmarshal(payload, &eb) == nil && eb.Code != nil {
		return &APIError{
			Status:      resp.StatusCode,
			Code:        *eb.Code,
			Message:     eb.Message,
			Description: eb.Description,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    fmt.Sprintf("http_%d", resp.StatusCode),
			Message: strings.TrimSpace(string(payload)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}
