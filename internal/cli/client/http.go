package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noterag/noterag/internal/logging"
)

const (
	envAPIURL  = "NOTERAG_API_URL"
	envTimeout = "NOTERAG_TIMEOUT"

	DefaultAPIURL    = "http://localhost:8080/api"
	DefaultTimeout   = 5 * time.Second
	DefaultQATimeout = 180 * time.Second
)

// APIClient issues one HTTP request per resource operation against the noterag API.
// It holds no per-call state and is safe for concurrent use.
type APIClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures an APIClient.
type Option func(*APIClient)

// WithHTTPClient replaces the underlying http.Client. Its Timeout should be zero;
// deadlines are applied per call through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *APIClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *APIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger enables debug logging of every request.
func WithLogger(logger *zap.Logger) Option {
	return func(c *APIClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewAPIClientWithCmd creates an APIClient with config cascade: flag → env → global config → default.
// If cmd is nil, skips flag checking.
func NewAPIClientWithCmd(cmd *cobra.Command, opts ...Option) (*APIClient, error) {
	_ = godotenv.Load()

	settings, err := ResolveSettings(cmd)
	if err != nil {
		return nil, err
	}

	if cmd != nil {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger, err := logging.New("debug", true)
			if err != nil {
				return nil, err
			}
			opts = append([]Option{WithLogger(logger)}, opts...)
		}
	}

	return NewAPIClientWithConfig(settings.APIURL, settings.Timeout, opts...)
}

// NewAPIClientWithConfig creates an APIClient with an explicit base URL and default timeout.
func NewAPIClientWithConfig(baseURL string, timeout time.Duration, opts ...Option) (*APIClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: missing host", baseURL)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the API root every path is resolved against.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Timeout returns the default per-call timeout.
func (c *APIClient) Timeout() time.Duration {
	return c.timeout
}

// APIResponse represents the standard API envelope.
type APIResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// TransportError reports a request that never produced an HTTP response:
// connection refused, DNS failure, timeout or cancellation.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was aborted by a deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// APIError represents an error status or a non-zero envelope code from the API.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// DecodeError reports a response body that is not the expected JSON.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// RequestOptions contains optional settings for a single request.
type RequestOptions struct {
	Query   url.Values
	Timeout time.Duration
}

// Get performs a GET request and decodes the envelope data into out.
func (c *APIClient) Get(ctx context.Context, path string, opts RequestOptions, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, opts, out)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body any, opts RequestOptions, out any) error {
	return c.do(ctx, http.MethodPost, path, body, opts, out)
}

// Put performs a PUT request with JSON body.
func (c *APIClient) Put(ctx context.Context, path string, body any, opts RequestOptions, out any) error {
	return c.do(ctx, http.MethodPut, path, body, opts, out)
}

// Delete performs a DELETE request.
func (c *APIClient) Delete(ctx context.Context, path string, opts RequestOptions, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, opts, out)
}

func (c *APIClient) do(ctx context.Context, method, path string, body any, opts RequestOptions, out any) error {
	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(opts.Query) > 0 {
		reqURL += "?" + opts.Query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("url", reqURL),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return &TransportError{Method: method, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, URL: reqURL, Err: err}
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var apiResp APIResponse
	decodeErr := json.Unmarshal(respBody, &apiResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: apiResp.Code, Message: apiResp.Msg}
		if decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if decodeErr != nil {
		return &DecodeError{Err: decodeErr, Body: respBody}
	}
	if apiResp.Code != 0 {
		return &APIError{StatusCode: resp.StatusCode, Code: apiResp.Code, Message: apiResp.Msg}
	}

	if out == nil || len(apiResp.Data) == 0 || string(apiResp.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(apiResp.Data, out); err != nil {
		return &DecodeError{Err: err, Body: respBody}
	}

	return nil
}
