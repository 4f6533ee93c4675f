// Package rest implements ports.RemoteAPI over the service's HTTP/JSON surface.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/infrastructure/metrics"
	"github.com/taskboard/client/internal/ports"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	Tokens    TokenSource
	Logger    *logger.Logger
	Metrics   *metrics.Metrics

	// HTTPClient overrides the default client. Its cookie jar is kept if set.
	HTTPClient *http.Client
}

// Client talks to the remote service.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	tokens  TokenSource
	logger  *logger.Logger
	metrics *metrics.Metrics
}

var _ ports.RemoteAPI = (*Client)(nil)

// New creates a client for the service at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		limiter: limiter,
		tokens:  opts.Tokens,
		logger:  log.WithComponent("rest"),
		metrics: opts.Metrics,
	}, nil
}

// errorBody is what the service sends with a non-2xx status.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends one request. route is the path template used for metrics.
func (c *Client) do(ctx context.Context, method, route, path string, body, out interface{}) error {
	requestID := uuid.NewString()
	start := time.Now()

	status, err := c.roundTrip(ctx, method, path, requestID, body, out)

	elapsed := time.Since(start)
	c.metrics.ObserveRequest(method, route, status, elapsed)
	c.logger.LogAPICall(method, route, requestID, status, float64(elapsed.Nanoseconds())/1e6, err)

	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, requestID string, body, out interface{}) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrNetwork, err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: reading response: %v", ports.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := statusError(resp.StatusCode, raw)
		c.logger.WithRequestID(requestID).Debugw("API error response", "status_code", se.StatusCode, "message", se.Message)
		return resp.StatusCode, se
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func statusError(code int, raw []byte) *ports.StatusError {
	se := &ports.StatusError{StatusCode: code}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		se.Message = eb.Message
		if se.Message == "" {
			se.Message = eb.Error
		}
		return se
	}

	// Short plain-text bodies are kept as the message.
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 {
		se.Message = text
	}
	return se
}
