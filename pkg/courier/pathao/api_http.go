package pathao

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/deshship/courier/pkg/courier"
)

// envelope is the standard Pathao response wrapper.
type envelope struct {
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	config     *Config
	httpClient *http.Client

	maxRetries int
	retryDelay time.Duration

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	Config     *Config
	Timeout    time.Duration
	MaxRetries int           // Attempts for transient failures, default 3
	RetryDelay time.Duration // Base delay, grows linearly per attempt
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = time.Second
	}

	return &HTTPAPIClient{
		baseURL: cfg.Config.apiBaseURL(),
		config:  cfg.Config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// VerifyCredentials issues a fresh access token.
func (c *HTTPAPIClient) VerifyCredentials(ctx context.Context) error {
	c.mu.Lock()
	c.accessToken = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()

	_, err := c.token(ctx)
	return err
}

// CreateOrder books a consignment.
// POST /aladdin/api/v1/orders
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderData, error) {
	var data OrderData
	if err := c.call(ctx, http.MethodPost, "/aladdin/api/v1/orders", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// UpdateOrder modifies a consignment.
// PUT /aladdin/api/v1/orders/{consignment_id}
func (c *HTTPAPIClient) UpdateOrder(ctx context.Context, consignmentID string, req *OrderRequest) (*OrderData, error) {
	path := fmt.Sprintf("/aladdin/api/v1/orders/%s", consignmentID)

	var data OrderData
	if err := c.call(ctx, http.MethodPut, path, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CancelOrder cancels a consignment.
// DELETE /aladdin/api/v1/orders/{consignment_id}
func (c *HTTPAPIClient) CancelOrder(ctx context.Context, consignmentID, reason string) error {
	path := fmt.Sprintf("/aladdin/api/v1/orders/%s", consignmentID)

	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	return c.call(ctx, http.MethodDelete, path, body, nil)
}

// CreateBulkOrders books multiple consignments in one call.
// POST /aladdin/api/v1/orders/bulk
func (c *HTTPAPIClient) CreateBulkOrders(ctx context.Context, reqs []*OrderRequest) ([]*OrderData, error) {
	body := map[string]any{"orders": reqs}

	var data []*OrderData
	if err := c.call(ctx, http.MethodPost, "/aladdin/api/v1/orders/bulk", body, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetLabel returns a label URL for a consignment.
// GET /aladdin/api/v1/orders/{consignment_id}/label
func (c *HTTPAPIClient) GetLabel(ctx context.Context, consignmentID, format string) (string, error) {
	path := fmt.Sprintf("/aladdin/api/v1/orders/%s/label", consignmentID)
	if format != "" {
		path += "?format=" + format
	}

	var data struct {
		LabelURL string `json:"label_url"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return "", err
	}
	return data.LabelURL, nil
}

// RequestPickup schedules a pickup for a consignment.
// POST /aladdin/api/v1/orders/{consignment_id}/pickup
func (c *HTTPAPIClient) RequestPickup(ctx context.Context, consignmentID string, details map[string]any) error {
	path := fmt.Sprintf("/aladdin/api/v1/orders/%s/pickup", consignmentID)
	return c.call(ctx, http.MethodPost, path, details, nil)
}

// GetTracking returns tracking state for a consignment.
// GET /aladdin/api/v1/orders/{consignment_id}/track
func (c *HTTPAPIClient) GetTracking(ctx context.Context, consignmentID string) (*TrackingData, error) {
	path := fmt.Sprintf("/aladdin/api/v1/orders/%s/track", consignmentID)

	var data TrackingData
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	if data.ConsignmentID == "" {
		data.ConsignmentID = consignmentID
	}
	return &data, nil
}

// GetBulkTracking returns tracking state for multiple consignments.
// POST /aladdin/api/v1/orders/track/bulk
func (c *HTTPAPIClient) GetBulkTracking(ctx context.Context, consignmentIDs []string) ([]*TrackingData, error) {
	body := map[string]any{"consignment_ids": consignmentIDs}

	var data []*TrackingData
	if err := c.call(ctx, http.MethodPost, "/aladdin/api/v1/orders/track/bulk", body, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetRates returns a delivery charge estimate.
// POST /aladdin/api/v1/rates
func (c *HTTPAPIClient) GetRates(ctx context.Context, req *RateRequest) (*RateData, error) {
	var data RateData
	if err := c.call(ctx, http.MethodPost, "/aladdin/api/v1/rates", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetCod returns COD state for a consignment.
// GET /aladdin/api/v1/orders/{consignment_id}/cod
func (c *HTTPAPIClient) GetCod(ctx context.Context, consignmentID string) (*CodData, error) {
	path := fmt.Sprintf("/aladdin/api/v1/orders/%s/cod", consignmentID)

	var data CodData
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	if data.ConsignmentID == "" {
		data.ConsignmentID = consignmentID
	}
	return &data, nil
}

// GetCodLedger returns COD records matching the filters.
// GET /aladdin/api/v1/cod/ledger
func (c *HTTPAPIClient) GetCodLedger(ctx context.Context, filters map[string]string) ([]*CodData, error) {
	path := "/aladdin/api/v1/cod/ledger"
	if query := encodeQuery(filters); query != "" {
		path += "?" + query
	}

	var data []*CodData
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReconcileCod marks a batch of consignments as settled.
// POST /aladdin/api/v1/cod/reconcile
func (c *HTTPAPIClient) ReconcileCod(ctx context.Context, consignmentIDs []string, settlement map[string]any) error {
	body := map[string]any{"consignment_ids": consignmentIDs}
	for k, v := range settlement {
		body[k] = v
	}
	return c.call(ctx, http.MethodPost, "/aladdin/api/v1/cod/reconcile", body, nil)
}

// GetCities lists covered cities.
// GET /aladdin/api/v1/cities
func (c *HTTPAPIClient) GetCities(ctx context.Context) ([]CityData, error) {
	var data struct {
		Data []CityData `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/aladdin/api/v1/cities", nil, &data); err != nil {
		return nil, err
	}
	return data.Data, nil
}

// GetZones lists zones, optionally scoped to a city.
// GET /aladdin/api/v1/cities/{city_id}/zones
func (c *HTTPAPIClient) GetZones(ctx context.Context, cityID int) ([]ZoneData, error) {
	path := "/aladdin/api/v1/zones"
	if cityID > 0 {
		path = fmt.Sprintf("/aladdin/api/v1/cities/%d/zones", cityID)
	}

	var data struct {
		Data []ZoneData `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Data, nil
}

// GetAreas lists delivery areas within a zone.
// GET /aladdin/api/v1/zones/{zone_id}/areas
func (c *HTTPAPIClient) GetAreas(ctx context.Context, zoneID int) ([]AreaData, error) {
	path := fmt.Sprintf("/aladdin/api/v1/zones/%d/areas", zoneID)

	var data struct {
		Data []AreaData `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Data, nil
}

// GetStores lists merchant stores.
// GET /aladdin/api/v1/stores
func (c *HTTPAPIClient) GetStores(ctx context.Context, filters map[string]string) (*StorePage, error) {
	path := "/aladdin/api/v1/stores"
	if query := encodeQuery(filters); query != "" {
		path += "?" + query
	}

	var data StorePage
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// RegisterWebhook subscribes a URL to order events.
// POST /aladdin/api/v1/webhooks
func (c *HTTPAPIClient) RegisterWebhook(ctx context.Context, url string, events []string) error {
	return c.call(ctx, http.MethodPost, "/aladdin/api/v1/webhooks", &WebhookRequest{URL: url, Events: events}, nil)
}

// UnregisterWebhook removes a subscription.
// DELETE /aladdin/api/v1/webhooks
func (c *HTTPAPIClient) UnregisterWebhook(ctx context.Context, url string) error {
	return c.call(ctx, http.MethodDelete, "/aladdin/api/v1/webhooks", &WebhookRequest{URL: url}, nil)
}

// token returns a cached access token, issuing a new one when missing or
// within a minute of expiry.
func (c *HTTPAPIClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	body, err := json.Marshal(&TokenRequest{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		Username:     c.config.Username,
		Password:     c.config.Password,
		GrantType:    "password",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/aladdin/api/v1/issue-token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", courier.NewAPIError("pathao", 0, "token request failed").WithCause(err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", c.parseError(resp.StatusCode, raw)
	}

	var token TokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", courier.NewAPIError("pathao", resp.StatusCode, "token response missing access_token")
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// call performs an authenticated request, retries transient failures, and
// unmarshals the envelope's data field into out when out is non-nil.
func (c *HTTPAPIClient) call(ctx context.Context, method, path string, body, out any) error {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * c.retryDelay):
			}
		}

		status, raw, err := c.doRequest(ctx, method, path, jsonBody)
		if err != nil {
			lastErr = courier.NewAPIError("pathao", 0, "request failed").WithCause(err)
			continue
		}

		if status >= 400 {
			apiErr := c.parseError(status, raw)
			// Client errors never succeed on retry
			if status < 500 {
				return apiErr
			}
			lastErr = apiErr
			continue
		}

		if out == nil {
			return nil
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if len(env.Data) == 0 {
			// Some endpoints respond without the envelope wrapper
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("failed to decode response data: %w", err)
			}
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
		return nil
	}

	return lastErr
}

// doRequest performs a single HTTP request with proper headers and auth.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return 0, nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "deshship-courier/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// parseError extracts error information from a response body.
func (c *HTTPAPIClient) parseError(status int, body []byte) error {
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)

	msg := http.StatusText(status)
	if m, ok := raw["message"].(string); ok && m != "" {
		msg = m
	} else if trimmed := strings.TrimSpace(string(body)); trimmed != "" && raw == nil {
		msg = trimmed
	}

	apiErr := courier.NewAPIError("pathao", status, msg)
	if raw != nil {
		apiErr = apiErr.WithBody(raw)
	}
	return apiErr
}

func encodeQuery(filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range filters {
		values.Set(k, v)
	}
	return values.Encode()
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
