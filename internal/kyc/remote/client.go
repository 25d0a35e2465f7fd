// Package remote talks to the KYC authority over HTTP.
//
// The client performs no retries and no caching. Every failure comes back as
// a *Error so callers extract the display message in one place (MessageOf).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kycreview/internal/kyc/models"
	"kycreview/pkg/platform/circuit"
)

const (
	OpList    = "list"
	OpGet     = "get"
	OpApprove = "approve"
	OpReject  = "reject"

	maxErrorBody = 64 << 10
)

// Client calls the four KYC endpoints of the authority.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	breaker    *circuit.Breaker
	metrics    *Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Its Timeout bounds every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource sets the bearer token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithBreaker enables fail-fast when the authority keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the authority rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tracer:     otel.Tracer("kycreview/internal/kyc/remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListKYC fetches every record: GET /all-kyc.
func (c *Client) ListKYC(ctx context.Context) ([]models.KycRecord, error) {
	var body models.ListResponse
	if err := c.do(ctx, OpList, http.MethodGet, "/all-kyc", nil, &body, nil); err != nil {
		return nil, err
	}
	if body.Kycs == nil {
		return []models.KycRecord{}, nil
	}
	return body.Kycs, nil
}

// GetKYC fetches one record: GET /single-kyc/{id}. The request opts out of
// any intermediary cache. A nil record with a nil error means the authority
// answered without a record.
func (c *Client) GetKYC(ctx context.Context, id string) (*models.KycRecord, error) {
	var body models.SingleResponse
	headers := http.Header{"Cache-Control": []string{"no-store"}}
	if err := c.do(ctx, OpGet, http.MethodGet, "/single-kyc/"+url.PathEscape(id), nil, &body, headers); err != nil {
		return nil, err
	}
	return body.Kyc, nil
}

// ApproveKYC approves a record: PUT /admin-approve-kyc/{id} with no body.
func (c *Client) ApproveKYC(ctx context.Context, id string) error {
	return c.do(ctx, OpApprove, http.MethodPut, "/admin-approve-kyc/"+url.PathEscape(id), nil, nil, nil)
}

// RejectKYC rejects a record: PUT /admin-reject-kyc with {id, reasons}.
func (c *Client) RejectKYC(ctx context.Context, req models.RejectRequest) error {
	return c.do(ctx, OpReject, http.MethodPut, "/admin-reject-kyc", req, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any, headers http.Header) (err error) {
	ctx, span := c.tracer.Start(ctx, "kyc.remote."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("kyc.remote.path", path),
		),
	)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		c.metrics.observe(op, outcome, time.Since(start))
		span.End()
	}()

	if c.breaker != nil && !c.breaker.Allow() {
		return &Error{Kind: KindUnavailable, Op: op, Message: "KYC service is temporarily unavailable"}
	}

	req, err := c.newRequest(ctx, op, method, path, in, headers)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx, op)
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode >= 500 {
			c.recordFailure(ctx, op)
		} else {
			c.recordSuccess(ctx)
		}
		kind := KindHTTP
		if resp.StatusCode == http.StatusNotFound {
			kind = KindNotFound
		}
		return &Error{Kind: kind, Op: op, Status: resp.StatusCode, Message: messageFromBody(raw)}
	}
	c.recordSuccess(ctx)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, op, method, path string, in any, headers http.Header) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &Error{Kind: KindNetwork, Op: op, Err: fmt.Errorf("service token: %w", err)}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) recordFailure(ctx context.Context, op string) {
	if c.breaker == nil {
		return
	}
	open, change := c.breaker.RecordFailure()
	c.metrics.setBreakerOpen(open)
	if change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "kyc remote circuit opened", "op", op, "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if c.breaker == nil {
		return
	}
	closed, change := c.breaker.RecordSuccess()
	c.metrics.setBreakerOpen(!closed)
	if change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "kyc remote circuit closed", "breaker", c.breaker.Name())
	}
}
