// Package tools implements the Sonarr MCP tools and resources. Each handler
// performs at most a couple of upstream calls and reshapes the JSON into a
// flatter, agent friendly document.
package tools

import (
	"context"
	"time"

	"github.com/amaumene/sonarr-mcp/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Upstream is the subset of the Sonarr client used by the handlers
type Upstream interface {
	Get(ctx context.Context, endpoint string, out interface{}) error
	Post(ctx context.Context, endpoint string, body, out interface{}) error
	BaseURL() string
}

// Result is the document every tool returns. Failures never escape as
// protocol errors; they are reported through Error instead.
type Result[T any] struct {
	Status string `json:"status,omitempty"`
	Data   *T     `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether the result carries data
func (r Result[T]) OK() bool {
	return r.Error == "" && r.Data != nil
}

// Tools holds the dependencies shared by every handler
type Tools struct {
	client   Upstream
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	now      func() time.Time
}

// Option customizes Tools
type Option func(*Tools)

// WithMetrics counts tool calls and resource reads on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tools) { t.metrics = m }
}

// WithClock overrides the clock used for default calendar ranges
func WithClock(now func() time.Time) Option {
	return func(t *Tools) { t.now = now }
}

// New creates the tool handlers on top of an upstream client
func New(client Upstream, logger *logrus.Logger, opts ...Option) *Tools {
	t := &Tools{
		client:   client,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func respond[T any](t *Tools, tool string, data *T, err error) Result[T] {
	if err != nil {
		t.logger.WithField("tool", tool).WithError(err).Error("Tool call failed")
		t.count(tool, metrics.OutcomeError)
		return Result[T]{Error: err.Error()}
	}
	t.count(tool, metrics.OutcomeSuccess)
	return Result[T]{Status: "success", Data: data}
}

func (t *Tools) count(tool, outcome string) {
	if t.metrics != nil {
		t.metrics.ToolCalls.WithLabelValues(tool, outcome).Inc()
	}
}

func (t *Tools) countRead(resource, outcome string) {
	if t.metrics != nil {
		t.metrics.ResourceReads.WithLabelValues(resource, outcome).Inc()
	}
}
