package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amaumene/sonarr-mcp/internal/config"
	"github.com/amaumene/sonarr-mcp/internal/metrics"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	apiPrefix = "/api/v3"
	userAgent = "sonarr-mcp/1.0"

	// maxErrorBody caps how much of a failed response is echoed into errors
	maxErrorBody = 512
)

// UpstreamRequestError is the single error type returned for any failed
// Sonarr call: transport failures, non-2xx responses and undecodable bodies.
type UpstreamRequestError struct {
	Method     string
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamRequestError) Error() string {
	return fmt.Sprintf("Sonarr API request failed: %v", e.Err)
}

func (e *UpstreamRequestError) Unwrap() error {
	return e.Err
}

// Client wraps direct Sonarr API HTTP calls
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records upstream calls on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracerProvider sets the provider used for request spans
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer("github.com/amaumene/sonarr-mcp/internal/services/sonarr") }
}

// NewClient creates a new Sonarr client
func NewClient(cfg *config.Config, logger *logrus.Logger, opts ...Option) (*Client, error) {
	if cfg.SonarrURL == "" {
		return nil, fmt.Errorf("sonarr URL is required")
	}
	if cfg.SonarrAPIKey == "" {
		return nil, fmt.Errorf("sonarr API key is required")
	}

	timeout := cfg.SonarrTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Every call gets its own connection, nothing is pooled between calls.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = true

	c := &Client{
		baseURL: strings.TrimRight(cfg.SonarrURL, "/"),
		apiKey:  cfg.SonarrAPIKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
		tracer: otel.Tracer("github.com/amaumene/sonarr-mcp/internal/services/sonarr"),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the Sonarr URL without the API prefix
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins the API base with endpoint, normalizing slashes
func (c *Client) URL(endpoint string) string {
	return c.baseURL + apiPrefix + "/" + strings.TrimLeft(endpoint, "/")
}

// Get performs a GET request and decodes the response into out
func (c *Client) Get(ctx context.Context, endpoint string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response into out
func (c *Client) Post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out)
}

// Put performs a PUT request with a JSON body and decodes the response into out
func (c *Client) Put(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out)
}

// Delete performs a DELETE request. Sonarr may answer with an empty body, so
// the response is never decoded and a fixed marker is returned instead.
func (c *Client) Delete(ctx context.Context, endpoint string) (*DeleteResult, error) {
	if err := c.Do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return nil, err
	}
	return &DeleteResult{Status: "deleted"}, nil
}

// Do performs an authenticated request against the Sonarr API. The body of
// GET, POST and PUT responses is decoded into out when out is not nil.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out interface{}) (err error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return &UpstreamRequestError{Method: method, Endpoint: endpoint, Err: fmt.Errorf("unsupported method %q", method)}
	}

	route := metrics.Route(endpoint)
	ctx, span := c.tracer.Start(ctx, "sonarr "+method+" "+route, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("sonarr.route", route),
	)

	start := time.Now()
	statusCode := 0
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if statusCode != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
		}
		span.End()

		if c.metrics != nil {
			c.metrics.UpstreamRequests.WithLabelValues(method, route, outcome).Inc()
			c.metrics.UpstreamDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		}
	}()

	fail := func(cause error) error {
		c.logger.WithFields(logrus.Fields{
			"method":      method,
			"endpoint":    endpoint,
			"status_code": statusCode,
		}).WithError(cause).Error("Sonarr API request failed")
		return &UpstreamRequestError{Method: method, Endpoint: endpoint, StatusCode: statusCode, Err: cause}
	}

	var reqBody io.Reader
	if body != nil && method != http.MethodGet && method != http.MethodDelete {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fail(fmt.Errorf("failed to marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(jsonData)
	}

	fullURL := c.URL(endpoint)
	c.logger.WithFields(logrus.Fields{
		"method": method,
		"route":  route,
	}).Debug("Making Sonarr API request")

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}

	// Set headers
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	// Check status code
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(bodyBytes))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fail(fmt.Errorf("%d %s for url %s", resp.StatusCode, msg, fullURL))
	}

	if method == http.MethodDelete || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	// Decode the whole body before touching out so callers never see a
	// half-populated document.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}
