package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/deshship/courier/internal/server"
	"github.com/deshship/courier/internal/telemetry"
	"github.com/deshship/courier/pkg/courier"
	"github.com/deshship/courier/pkg/courier/mock"
	"github.com/deshship/courier/pkg/courier/pathao"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	manager := courier.NewManager(logger)

	pathaoClient := pathao.NewWithAPIClient(
		pathao.Config{StoreID: 148},
		pathao.NewMockAPIClient(),
		logger,
		nil,
	)
	manager.Register(pathaoClient)
	manager.Register(mock.New("bare", mock.WithCapabilities()))

	metrics := telemetry.NewMetricsWith(prometheus.NewRegistry())
	srv := server.NewWithMetrics(server.Config{}, manager, logger, metrics)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, payload any, out any) int {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func bookingPayload() map[string]any {
	return map[string]any{
		"courier": "pathao",
		"shipment": map[string]any{
			"recipientName":    "Rahim Uddin",
			"recipientPhone":   "01712345678",
			"recipientAddress": "House 7, Road 3, Dhanmondi, Dhaka",
			"recipientCity":    "1",
			"recipientZone":    "103",
			"senderName":       "DeshShip Store",
			"senderPhone":      "01811111111",
			"senderAddress":    "House 12, Road 5, Gulshan 1, Dhaka",
			"senderCity":       "1",
			"weight":           1.5,
			"codAmount":        1500,
		},
	}
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestServer_ListCouriers(t *testing.T) {
	ts := newTestServer(t)

	var payload struct {
		Couriers []struct {
			Name         string   `json:"name"`
			DisplayName  string   `json:"displayName"`
			Capabilities []string `json:"capabilities"`
		} `json:"couriers"`
	}
	status := getJSON(t, ts.URL+"/couriers", &payload)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, payload.Couriers, 2)
	assert.Equal(t, "pathao", payload.Couriers[0].Name)
	assert.Equal(t, "Pathao Courier", payload.Couriers[0].DisplayName)
	assert.NotEmpty(t, payload.Couriers[0].Capabilities)
	assert.Equal(t, "bare", payload.Couriers[1].Name)
	assert.Empty(t, payload.Couriers[1].Capabilities)
}

func TestServer_Capabilities(t *testing.T) {
	ts := newTestServer(t)

	var payload struct {
		Courier      string   `json:"courier"`
		Capabilities []string `json:"capabilities"`
		Missing      []string `json:"missing"`
	}
	status := getJSON(t, ts.URL+"/couriers/pathao/capabilities", &payload)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pathao", payload.Courier)
	assert.Contains(t, payload.Capabilities, "shipment.create")
	assert.Empty(t, payload.Missing)

	status = getJSON(t, ts.URL+"/couriers/bare/capabilities", &payload)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, payload.Capabilities)
	assert.Contains(t, payload.Missing, "shipment.create")
}

func TestServer_UnknownCourier(t *testing.T) {
	ts := newTestServer(t)

	status := getJSON(t, ts.URL+"/couriers/ghost/capabilities", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = getJSON(t, ts.URL+"/trackings/ghost/DL123", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_CreateShipment(t *testing.T) {
	ts := newTestServer(t)

	var result map[string]any
	status := postJSON(t, ts.URL+"/shipments", bookingPayload(), &result)

	assert.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, result["trackingId"])
	assert.Equal(t, "pathao", result["courierName"])
	assert.Equal(t, "CREATED", result["status"])
}

func TestServer_CreateShipment_ValidationError(t *testing.T) {
	ts := newTestServer(t)

	payload := map[string]any{
		"courier":  "pathao",
		"shipment": map[string]any{"recipientName": "Rahim"},
	}

	var report struct {
		Courier string `json:"courier"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	status := postJSON(t, ts.URL+"/shipments", payload, &report)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "pathao", report.Courier)
	assert.NotEmpty(t, report.Errors)

	fields := make([]string, 0, len(report.Errors))
	for _, item := range report.Errors {
		fields = append(fields, item.Field)
	}
	assert.Contains(t, fields, "recipientPhone")
	assert.Contains(t, fields, "senderName")
}

func TestServer_CreateShipment_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/shipments", "application/json", bytes.NewReader([]byte("{broken")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status := postJSON(t, ts.URL+"/shipments", map[string]any{"shipment": map[string]any{}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_CreateShipment_UnsupportedCapability(t *testing.T) {
	ts := newTestServer(t)

	payload := bookingPayload()
	payload["courier"] = "bare"

	var body map[string]any
	status := postJSON(t, ts.URL+"/shipments", payload, &body)

	assert.Equal(t, http.StatusNotImplemented, status)
	assert.Contains(t, body["error"], "does not support shipment creation")
}

func TestServer_CancelShipment(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete,
		ts.URL+"/shipments/pathao/DL123?reason=customer+request", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", body["status"])
	assert.Equal(t, "DL123", body["trackingId"])
}

func TestServer_Label(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]any
	status := getJSON(t, ts.URL+"/shipments/pathao/DL123/label?format=pdf", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["label"], "DL123")
}

func TestServer_Track(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]any
	status := getJSON(t, ts.URL+"/trackings/pathao/DL123", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "DL123", body["trackingId"])
	assert.Equal(t, "IN_TRANSIT", body["status"])
	history, ok := body["history"].([]any)
	require.True(t, ok)
	assert.Len(t, history, 3)
}

func TestServer_TrackAll(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		TrackingID string                    `json:"trackingId"`
		Results    map[string]map[string]any `json:"results"`
		Errors     []string                  `json:"errors"`
	}
	status := getJSON(t, ts.URL+"/trackings/DL123", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "DL123", body.TrackingID)
	// The bare courier lacks tracking and is skipped, not an error
	assert.Contains(t, body.Results, "pathao")
	assert.NotContains(t, body.Results, "bare")
}

func TestServer_EstimateRate(t *testing.T) {
	ts := newTestServer(t)

	payload := map[string]any{
		"courier": "pathao",
		"rate": map[string]any{
			"toCity":    "1",
			"toZone":    "103",
			"weight":    2,
			"codAmount": 1000,
		},
	}

	var body map[string]any
	status := postJSON(t, ts.URL+"/rates", payload, &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 80.0, body["deliveryCharge"])
	assert.Equal(t, 90.0, body["totalCharge"])
	assert.Equal(t, "BDT", body["currency"])
}

func TestServer_EstimateRate_ValidationError(t *testing.T) {
	ts := newTestServer(t)

	payload := map[string]any{
		"courier": "pathao",
		"rate":    map[string]any{"weight": 2},
	}

	status := postJSON(t, ts.URL+"/rates", payload, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestServer_Cod(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]any
	status := getJSON(t, ts.URL+"/cod/pathao/DL123", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "DL123", body["trackingId"])
	assert.Equal(t, "collected", body["status"])
}

func TestServer_Cities(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Cities map[string]string `json:"cities"`
	}
	status := getJSON(t, ts.URL+"/couriers/pathao/cities", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Dhaka", body.Cities["1"])
}

func TestServer_Stores(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Stores []struct {
			Name      string `json:"name"`
			IsDefault bool   `json:"isDefault"`
		} `json:"stores"`
		Total int `json:"total"`
	}
	status := getJSON(t, ts.URL+"/couriers/pathao/stores", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Stores, 2)
	assert.True(t, body.Stores[0].IsDefault)
}

func TestServer_Webhook(t *testing.T) {
	ts := newTestServer(t)

	payload := []byte(`{"consignment_id":"DL123","order_status":"Delivered"}`)
	resp, err := http.Post(ts.URL+"/webhooks/pathao", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Accepted bool           `json:"accepted"`
		Tracking map[string]any `json:"tracking"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Accepted)
	assert.Equal(t, "DL123", body.Tracking["trackingId"])
	assert.Equal(t, "DELIVERED", body.Tracking["status"])
}

func TestServer_Webhook_MalformedAcknowledged(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/webhooks/pathao", "application/json",
		bytes.NewReader([]byte("garbage")))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["accepted"])
}

func TestServer_Webhook_UnknownCourier(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/webhooks/ghost", "application/json",
		bytes.NewReader([]byte(`{"consignment_id":"DL1","order_status":"Picked"}`)))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "go_goroutines")
}
