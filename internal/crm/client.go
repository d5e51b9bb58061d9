// Package crm talks to the dealership CRM. The CRM takes every lead field as
// an HTTP header on a body-less POST and answers with opaque text.
package crm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/legendmotors/skywell-leads/internal/leads"
	"github.com/legendmotors/skywell-leads/internal/observability/metrics"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 << 20
)

var tracer = otel.Tracer("skywell.internal.crm")

// Client is the CRM gateway client.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *metrics.LeadMetrics
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// WithMetrics records gateway latency.
func WithMetrics(m *metrics.LeadMetrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// NewClient creates a CRM client posting to endpoint.
func NewClient(endpoint string, logger *logging.Logger, opts ...Option) *Client {
	if endpoint == "" {
		panic("crm: endpoint cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forward sends headers to the CRM. A 2xx answer returns the body text;
// anything else returns *leads.GatewayError carrying the body text.
func (c *Client) Forward(ctx context.Context, headers leads.Headers) (string, error) {
	ctx, span := tracer.Start(ctx, "crm.Forward")
	defer span.End()
	span.SetAttributes(attribute.Int("crm.header_count", len(headers)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, http.NoBody)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("crm: build request: %w", err)
	}
	headers.Apply(req.Header)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveGatewayLatency("network_error", time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return "", &leads.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	c.metrics.ObserveGatewayLatency(strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		span.RecordError(err)
		return "", &leads.NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}
	body := string(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, "crm rejected lead")
		c.logger.Warn("crm rejected lead", "status", resp.StatusCode, "body", body)
		return "", &leads.GatewayError{StatusCode: resp.StatusCode, Body: body}
	}

	c.logger.Debug("crm accepted lead", "status", resp.StatusCode)
	return body, nil
}
