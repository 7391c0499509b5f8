// Package source talks to the third-party detection API: OAuth2
// client-credentials token exchange and the per-tenant alert list call.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/good-yellow-bee/alertcef/internal/models"
)

// Config holds client settings.
type Config struct {
	// Timeout bounds each HTTP call so a hung upstream cannot stall
	// the scheduler (default: 30s).
	Timeout time.Duration

	// RateLimit is the allowed requests per second against the vendor
	// API, shared across tenants (default: 5).
	RateLimit float64

	// RateBurst is the limiter burst size (default: 5).
	RateBurst int
}

func (c *Config) setDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 5
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 5
	}
}

// Client is the detection API client. Tokens are short-lived and are
// not cached: the caller re-authenticates every polling cycle.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewClient creates a detection API client.
func NewClient(cfg Config) *Client {
	cfg.setDefaults()
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		timeout:    cfg.Timeout,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token exchanges a tenant credential for a short-lived bearer token
// via the client-credentials grant against <datacenterUrl>/token.
func (c *Client) Token(ctx context.Context, cred *models.Credential) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &AuthError{TenantID: cred.CustomerTenantID, Err: err}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", cred.ClientID)
	form.Set("client_secret", cred.ClientSecret)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(cred.DatacenterURL, "/")+"/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{TenantID: cred.CustomerTenantID, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{TenantID: cred.CustomerTenantID, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &AuthError{TenantID: cred.CustomerTenantID, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{TenantID: cred.CustomerTenantID, Status: resp.StatusCode}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", &AuthError{TenantID: cred.CustomerTenantID, Err: fmt.Errorf("parse token response: %w", err)}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{TenantID: cred.CustomerTenantID, Err: fmt.Errorf("token response missing access_token")}
	}

	return tok.AccessToken, nil
}

type alertListResponse struct {
	Alerts []json.RawMessage `json:"alerts"`
}

// Alerts lists new alerts for one tenant using the bearer token. The
// raw payload of each alert is preserved verbatim in Alert.Raw.
func (c *Client) Alerts(ctx context.Context, cred *models.Credential, token string) ([]*models.Alert, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{TenantID: cred.CustomerTenantID, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(cred.DatacenterURL, "/")+"/alerts", nil)
	if err != nil {
		return nil, &FetchError{TenantID: cred.CustomerTenantID, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{TenantID: cred.CustomerTenantID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<14))
		return nil, &FetchError{TenantID: cred.CustomerTenantID, Status: resp.StatusCode}
	}

	var list alertListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &FetchError{TenantID: cred.CustomerTenantID, Err: fmt.Errorf("parse alert list: %w", err)}
	}

	alerts := make([]*models.Alert, 0, len(list.Alerts))
	for _, raw := range list.Alerts {
		alert := &models.Alert{}
		if err := json.Unmarshal(raw, alert); err != nil {
			return nil, &FetchError{TenantID: cred.CustomerTenantID, Err: fmt.Errorf("parse alert: %w", err)}
		}
		alert.Raw = raw
		alerts = append(alerts, alert)
	}

	return alerts, nil
}
