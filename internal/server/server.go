package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/deshship/courier/internal/telemetry"
	"github.com/deshship/courier/pkg/courier"
	"github.com/deshship/courier/pkg/courier/validate"
)

// Server is the HTTP server exposing courier operations as a JSON API.
type Server struct {
	port    int
	manager *courier.Manager
	logger  *otelzap.Logger
	metrics *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, manager *courier.Manager, logger *otelzap.Logger) *Server {
	return &Server{
		port:    cfg.Port,
		manager: manager,
		logger:  logger,
		metrics: telemetry.NewMetrics(),
	}
}

// NewWithMetrics creates a server with externally constructed metrics.
// Useful in tests, where promauto registration must not collide.
func NewWithMetrics(cfg Config, manager *courier.Manager, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:    cfg.Port,
		manager: manager,
		logger:  logger,
		metrics: metrics,
	}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Courier discovery
	mux.HandleFunc("GET /couriers", s.handleListCouriers)
	mux.HandleFunc("GET /couriers/{name}/capabilities", s.handleCapabilities)
	mux.HandleFunc("GET /couriers/{name}/cities", s.handleCities)
	mux.HandleFunc("GET /couriers/{name}/stores", s.handleStores)

	// Shipments
	mux.HandleFunc("POST /shipments", s.handleCreateShipment)
	mux.HandleFunc("DELETE /shipments/{courier}/{trackingId}", s.handleCancelShipment)
	mux.HandleFunc("GET /shipments/{courier}/{trackingId}/label", s.handleLabel)

	// Tracking
	mux.HandleFunc("GET /trackings/{courier}/{trackingId}", s.handleTrack)
	mux.HandleFunc("GET /trackings/{trackingId}", s.handleTrackAll)

	// Rates
	mux.HandleFunc("POST /rates", s.handleEstimateRate)

	// COD
	mux.HandleFunc("GET /cod/{courier}/{trackingId}", s.handleCod)

	// Inbound courier webhooks
	mux.HandleFunc("POST /webhooks/{courier}", s.handleWebhook)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleListCouriers(w http.ResponseWriter, r *http.Request) {
	couriers, err := s.manager.Resolver().All()
	if err != nil {
		s.writeError(w, r, "list_couriers", "", err)
		return
	}

	type courierInfo struct {
		Name         string   `json:"name"`
		DisplayName  string   `json:"displayName"`
		Capabilities []string `json:"capabilities"`
	}

	list := make([]courierInfo, 0, len(couriers))
	for _, c := range couriers {
		caps := make([]string, 0, len(c.Capabilities()))
		for _, capability := range c.Capabilities() {
			caps = append(caps, string(capability))
		}
		list = append(list, courierInfo{
			Name:         c.Name(),
			DisplayName:  c.DisplayName(),
			Capabilities: caps,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"couriers": list})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	c, err := s.manager.Courier(name)
	if err != nil {
		s.writeError(w, r, "capabilities", name, err)
		return
	}

	declared := make([]string, 0, len(c.Capabilities()))
	for _, capability := range c.Capabilities() {
		declared = append(declared, string(capability))
	}
	missing := make([]string, 0)
	for _, capability := range courier.Missing(c) {
		missing = append(missing, string(capability))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"courier":      c.Name(),
		"capabilities": declared,
		"missing":      missing,
	})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	start := time.Now()
	cities, err := s.manager.GetSupportedCities(r.Context(), name)
	s.record("cities", name, start, err)
	if err != nil {
		s.writeError(w, r, "cities", name, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	filters := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	start := time.Now()
	stores, err := s.manager.GetStores(r.Context(), name, filters)
	s.record("stores", name, start, err)
	if err != nil {
		s.writeError(w, r, "stores", name, err)
		return
	}

	s.writeJSON(w, http.StatusOK, stores)
}

// createShipmentRequest is the loosely-typed booking payload. Shipment fields
// ride in the same flat camelCase shape Shipment.Fill accepts.
type createShipmentRequest struct {
	Courier  string         `json:"courier"`
	Shipment map[string]any `json:"shipment"`
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var req createShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Courier == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "courier is required"})
		return
	}

	shipment := courier.ShipmentFromMap(req.Shipment)

	start := time.Now()
	result, err := s.manager.CreateShipment(r.Context(), req.Courier, shipment)
	s.record("create_shipment", req.Courier, start, err)
	if err != nil {
		s.writeError(w, r, "create_shipment", req.Courier, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, result.ToMap())
}

func (s *Server) handleCancelShipment(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("courier")
	trackingID := r.PathValue("trackingId")
	reason := r.URL.Query().Get("reason")

	start := time.Now()
	err := s.manager.CancelShipment(r.Context(), name, trackingID, reason)
	s.record("cancel_shipment", name, start, err)
	if err != nil {
		s.writeError(w, r, "cancel_shipment", name, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"trackingId": trackingID, "status": "cancelled"})
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("courier")
	trackingID := r.PathValue("trackingId")
	format := r.URL.Query().Get("format")

	start := time.Now()
	label, err := s.manager.GenerateLabel(r.Context(), name, trackingID, format)
	s.record("label", name, start, err)
	if err != nil {
		s.writeError(w, r, "label", name, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"trackingId": trackingID, "label": label})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("courier")
	trackingID := r.PathValue("trackingId")

	start := time.Now()
	tracking, err := s.manager.Track(r.Context(), name, trackingID)
	s.record("track", name, start, err)
	if err != nil {
		s.writeError(w, r, "track", name, err)
		return
	}

	s.writeJSON(w, http.StatusOK, tracking.ToMap())
}

func (s *Server) handleTrackAll(w http.ResponseWriter, r *http.Request) {
	trackingID := r.PathValue("trackingId")

	start := time.Now()
	results, errs := s.manager.TrackAll(r.Context(), trackingID)
	s.record("track_all", "all", start, nil)

	payload := map[string]any{}
	for name, tracking := range results {
		payload[name] = tracking.ToMap()
	}

	failures := make([]string, 0, len(errs))
	for _, err := range errs {
		failures = append(failures, err.Error())
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"trackingId": trackingID,
		"results":    payload,
		"errors":     failures,
	})
}

type estimateRateRequest struct {
	Courier string         `json:"courier"`
	Rate    map[string]any `json:"rate"`
}

func (s *Server) handleEstimateRate(w http.ResponseWriter, r *http.Request) {
	var req estimateRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Courier == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "courier is required"})
		return
	}

	rate := courier.RateFromMap(req.Rate)

	start := time.Now()
	result, err := s.manager.EstimateRate(r.Context(), req.Courier, rate)
	s.record("estimate_rate", req.Courier, start, err)
	if err != nil {
		s.writeError(w, r, "estimate_rate", req.Courier, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result.ToMap())
}

func (s *Server) handleCod(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("courier")
	trackingID := r.PathValue("trackingId")

	start := time.Now()
	cod, err := s.manager.GetCodDetails(r.Context(), name, trackingID)
	s.record("cod", name, start, err)
	if err != nil {
		s.writeError(w, r, "cod", name, err)
		return
	}

	s.writeJSON(w, http.StatusOK, cod.ToMap())
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("courier")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable body"})
		return
	}

	tracking, err := s.manager.ParseWebhook(name, payload)
	if err != nil {
		s.metrics.RecordWebhook(name, "error")
		s.writeError(w, r, "webhook", name, err)
		return
	}
	if tracking == nil {
		// Malformed payloads are acknowledged so the courier stops retrying
		s.metrics.RecordWebhook(name, "discarded")
		s.writeJSON(w, http.StatusOK, map[string]any{"accepted": false})
		return
	}

	s.metrics.RecordWebhook(name, "accepted")
	s.logger.Ctx(r.Context()).Info("Webhook status update",
		zap.String("courier", name),
		zap.String("tracking_id", tracking.TrackingID),
		zap.String("status", string(tracking.Status)),
	)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"accepted": true,
		"tracking": tracking.ToMap(),
	})
}

// ============================================================================
// Response helpers
// ============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps domain error kinds to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, operation, courierName string, err error) {
	var validationErr *validate.Error
	var unsupportedErr *courier.UnsupportedCapabilityError
	var configErr *courier.ConfigError
	var apiErr *courier.APIError

	switch {
	case errors.As(err, &validationErr):
		s.metrics.RecordError(courierName, "validation")
		s.writeJSON(w, http.StatusUnprocessableEntity, validationErr)

	case errors.Is(err, courier.ErrNotRegistered):
		s.writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})

	case errors.As(err, &unsupportedErr):
		s.writeJSON(w, http.StatusNotImplemented, map[string]any{"error": err.Error()})

	case errors.As(err, &configErr):
		s.metrics.RecordError(courierName, "config")
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})

	case errors.As(err, &apiErr):
		s.metrics.RecordError(courierName, "api")
		s.logger.Ctx(r.Context()).Error("Courier API error",
			zap.String("operation", operation),
			zap.String("courier", courierName),
			zap.Error(err),
		)
		status := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = http.StatusBadRequest
		}
		s.writeJSON(w, status, map[string]any{"error": apiErr.Message})

	default:
		s.metrics.RecordError(courierName, "internal")
		s.logger.Ctx(r.Context()).Error("Unhandled error",
			zap.String("operation", operation),
			zap.String("courier", courierName),
			zap.Error(err),
		)
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func (s *Server) record(operation, courierName string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordRequest(operation, courierName, status, time.Since(start).Seconds())
}
