package airalo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/infrastructure/cache"
	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
)

const (
	tokenPath      = "/v2/token"
	tokenFlightKey = "access_token"
	// maxTokenResponseSize limits the token response body
	maxTokenResponseSize = 1 << 20
)

// TokenManager issues provider access tokens, refreshing them on demand.
// Concurrent callers that find the cache stale share a single exchange.
type TokenManager struct {
	config     *Config
	httpClient *http.Client
	store      esim.TokenStore
	now        func() time.Time
	flight     singleflight.Group
	metrics    *telemetry.GatewayMetrics
	logger     *zap.Logger
}

// TokenManagerOption configures a TokenManager
type TokenManagerOption func(*TokenManager)

// WithTokenStore sets the store holding the cached token
func WithTokenStore(store esim.TokenStore) TokenManagerOption {
	return func(m *TokenManager) { m.store = store }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) TokenManagerOption {
	return func(m *TokenManager) { m.now = now }
}

// WithTokenHTTPClient overrides the HTTP client used for the exchange
func WithTokenHTTPClient(client *http.Client) TokenManagerOption {
	return func(m *TokenManager) { m.httpClient = client }
}

// WithTokenMetrics records exchanges on metrics
func WithTokenMetrics(metrics *telemetry.GatewayMetrics) TokenManagerOption {
	return func(m *TokenManager) { m.metrics = metrics }
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger *zap.Logger) TokenManagerOption {
	return func(m *TokenManager) { m.logger = logger }
}

// NewTokenManager creates a token manager. Without WithTokenStore the token
// is cached in process memory.
func NewTokenManager(config *Config, opts ...TokenManagerOption) (*TokenManager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &TokenManager{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout(),
		},
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = cache.NewMemoryTokenStore()
	}
	m.logger = m.logger.Named("airalo.token")
	return m, nil
}

// Token returns a bearer token valid for at least the safety margin.
// The cached token is returned without a network call while it is fresh.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if token := m.cached(ctx); token != nil {
		return token.Value, nil
	}

	// The exchange is shared by every waiting caller, so it must not be
	// cancelled by any single one of them.
	flightCtx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan(tokenFlightKey, func() (any, error) {
		if token := m.cached(flightCtx); token != nil {
			return *token, nil
		}
		return m.refresh(flightCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(esim.AccessToken).Value, nil
	}
}

// HasValidToken reports whether a fresh token is cached. It never calls the
// provider.
func (m *TokenManager) HasValidToken(ctx context.Context) bool {
	return m.cached(ctx) != nil
}

func (m *TokenManager) cached(ctx context.Context) *esim.AccessToken {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("Failed to load cached token, treating as miss", zap.Error(err))
		return nil
	}
	if !token.ValidAt(m.now(), m.config.TokenSafetyMargin) {
		return nil
	}
	return token
}

// refresh exchanges the client credentials for a new token. On failure the
// cache is left untouched.
func (m *TokenManager) refresh(ctx context.Context) (token esim.AccessToken, err error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout())
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "airalo.token.refresh")
	defer span.End()
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
			m.metrics.RecordTokenRefresh(ctx, telemetry.ResultFailure)
			m.logger.Error("Token exchange failed", zap.Error(err))
			return
		}
		m.metrics.RecordTokenRefresh(ctx, telemetry.ResultSuccess)
	}()

	issuedAt := m.now()
	data, err := m.exchange(ctx)
	if err != nil {
		return esim.AccessToken{}, err
	}

	lifetime := defaultTokenLifetime
	if data.ExpiresIn != nil {
		lifetime = time.Duration(*data.ExpiresIn) * time.Second
	}
	if lifetime <= m.config.TokenSafetyMargin {
		return esim.AccessToken{}, &esim.AuthError{
			Err: fmt.Errorf("token lifetime %s does not exceed safety margin %s", lifetime, m.config.TokenSafetyMargin),
		}
	}

	token = esim.AccessToken{
		Value:     data.AccessToken,
		ExpiresAt: issuedAt.Add(lifetime),
	}
	if err := m.store.Save(ctx, token); err != nil {
		m.logger.Warn("Failed to cache token", zap.Error(err))
	}
	m.metrics.RecordTokenLifetime(ctx, lifetime)

	m.logger.Info("Access token refreshed", zap.Time("expires_at", token.ExpiresAt))
	return token, nil
}

func (m *TokenManager) exchange(ctx context.Context) (*TokenData, error) {
	form := url.Values{}
	form.Set("client_id", m.config.ClientID)
	form.Set("client_secret", m.config.ClientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &esim.AuthError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.metrics.RecordUpstreamRequest(ctx, http.MethodPost, tokenPath, upstreamStatus(err), time.Since(start))
		return nil, &esim.AuthError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()
	m.metrics.RecordUpstreamRequest(ctx, http.MethodPost, tokenPath, strconv.Itoa(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, &esim.AuthError{StatusCode: resp.StatusCode, Timeout: isTimeout(err), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &esim.AuthError{StatusCode: resp.StatusCode, Body: body}
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, &esim.AuthError{StatusCode: resp.StatusCode, Body: body, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if tokenResp.Data == nil || tokenResp.Data.AccessToken == "" {
		return nil, &esim.AuthError{StatusCode: resp.StatusCode, Body: body, Err: errors.New("response has no access token")}
	}
	return tokenResp.Data, nil
}
