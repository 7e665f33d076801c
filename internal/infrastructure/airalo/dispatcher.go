package airalo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/infrastructure/logger"
	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Request describes one authenticated call to the partner API.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    []byte
	Headers map[string]string
}

// TokenSource supplies bearer tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Requester performs authenticated partner API calls.
type Requester interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// Dispatcher attaches a bearer token to partner API calls and performs them.
// Every call is made exactly once; failures are never retried.
type Dispatcher struct {
	config     *Config
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *telemetry.GatewayMetrics
	logger     *zap.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) DispatcherOption {
	return func(d *Dispatcher) { d.httpClient = client }
}

// WithDispatcherMetrics records calls on metrics
func WithDispatcherMetrics(metrics *telemetry.GatewayMetrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = metrics }
}

// WithDispatcherLogger sets the logger
func WithDispatcherLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher creates a dispatcher that authenticates through tokens.
func NewDispatcher(config *Config, tokens TokenSource, opts ...DispatcherOption) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		config: config,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: config.Timeout(),
		},
		logger: zap.NewNop(),
	}
	if config.RequestsPerSecond > 0 {
		burst := max(int(config.RequestsPerSecond), 1)
		d.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("airalo.dispatcher")
	return d, nil
}

// Do performs req and returns the response body of a 2xx response.
//
// Errors: *esim.ValidationError for an unsupported method, the token source's
// error (an *esim.AuthError) unchanged, and *esim.UpstreamError for
// transport failures, timeouts and non-2xx responses.
func (d *Dispatcher) Do(ctx context.Context, req Request) ([]byte, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodPost {
		return nil, esim.NewValidationError("method", fmt.Sprintf("unsupported method %q", req.Method))
	}

	token, err := d.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout())
	defer cancel()

	ctx, span := telemetry.StartUpstreamSpan(ctx, req.Method, req.Path)
	defer span.End()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			// Wait fails early when the deadline cannot be met.
			upErr := &esim.UpstreamError{Timeout: !errors.Is(ctx.Err(), context.Canceled), NotSent: true, Err: err}
			telemetry.RecordError(span, upErr)
			return nil, upErr
		}
	}

	httpReq, err := d.newRequest(ctx, req, token)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, code, err := d.send(httpReq)
	status := upstreamStatus(err)
	if code != 0 {
		status = strconv.Itoa(code)
	}
	d.metrics.RecordUpstreamRequest(ctx, req.Method, req.Path, status, time.Since(start))
	telemetry.SetUpstreamStatus(span, status)

	if err != nil {
		telemetry.RecordError(span, err)
		logger.For(ctx, d.logger).Warn("Upstream request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("status", status),
			zap.Error(err),
		)
		return nil, err
	}
	return body, nil
}

func (d *Dispatcher) newRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	target := d.config.BaseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &esim.UpstreamError{NotSent: true, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	return httpReq, nil
}

// send performs the call and returns the body and the HTTP status code, which
// is zero when no response arrived.
func (d *Dispatcher) send(httpReq *http.Request) ([]byte, int, error) {
	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, &esim.UpstreamError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, &esim.UpstreamError{Timeout: isTimeout(err), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &esim.UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, resp.StatusCode, nil
}

// isTimeout reports whether err was caused by a deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// upstreamStatus labels a failed call for metrics.
func upstreamStatus(err error) string {
	if isTimeout(err) {
		return "timeout"
	}
	return "error"
}

var _ Requester = (*Dispatcher)(nil)
