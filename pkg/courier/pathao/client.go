// Package pathao provides integration with the Pathao merchant courier API.
package pathao

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/deshship/courier/pkg/courier"
	"github.com/deshship/courier/pkg/courier/validate"
)

// Name is the machine identifier for the Pathao driver.
const Name = "pathao"

const displayName = "Pathao Courier"

// Client is the Pathao courier driver. It implements courier.Courier and
// every capability interface, delegating API calls to the underlying
// APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Pathao client. If cfg.UseMock is true, it uses a mock
// API client for testing; otherwise it uses the real HTTP API client.
// Incomplete credentials fail with a *courier.ConfigError.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			Config:  &cfg,
			Timeout: 30 * time.Second,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer), nil
}

// NewWithAPIClient creates a new Pathao client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer(Name)
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the courier machine identifier.
func (c *Client) Name() string {
	return Name
}

// DisplayName returns the human-readable courier name.
func (c *Client) DisplayName() string {
	return displayName
}

// Capabilities returns the capability tokens the driver declares. Pathao
// supports the full catalogue.
func (c *Client) Capabilities() []courier.Capability {
	return courier.AllCapabilities()
}

// Supports reports whether the driver declares a capability.
func (c *Client) Supports(capability courier.Capability) bool {
	for _, declared := range c.Capabilities() {
		if declared == capability {
			return true
		}
	}
	return false
}

// TestConnection issues a fresh access token to verify credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "pathao.TestConnection")
	defer span.End()

	if err := c.apiClient.VerifyCredentials(ctx); err != nil {
		c.logger.Ctx(ctx).Error("Pathao credential check failed", zap.Error(err))
		return err
	}
	return nil
}

// ============================================================================
// ShipmentService
// ============================================================================

// CreateShipment books a consignment with Pathao.
func (c *Client) CreateShipment(ctx context.Context, shipment *courier.Shipment) (*courier.Shipment, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.CreateShipment")
	defer span.End()

	c.logger.Ctx(ctx).Info("Creating Pathao shipment",
		zap.String("recipient", shipment.RecipientName),
		zap.String("recipient_city", shipment.RecipientCity),
		zap.Float64("cod_amount", shipment.CodAmount),
	)

	if err := c.validateShipment(shipment); err != nil {
		return nil, err
	}

	data, err := c.apiClient.CreateOrder(ctx, orderRequestFromShipment(shipment, c.config.StoreID))
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	applyOrderData(shipment, data)
	return shipment, nil
}

// UpdateShipment modifies an existing consignment.
func (c *Client) UpdateShipment(ctx context.Context, trackingID string, shipment *courier.Shipment) (*courier.Shipment, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.UpdateShipment")
	defer span.End()

	c.logger.Ctx(ctx).Info("Updating Pathao shipment", zap.String("tracking_id", trackingID))

	data, err := c.apiClient.UpdateOrder(ctx, trackingID, orderRequestFromShipment(shipment, c.config.StoreID))
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	applyOrderData(shipment, data)
	return shipment, nil
}

// CancelShipment cancels an existing consignment.
func (c *Client) CancelShipment(ctx context.Context, trackingID, reason string) error {
	ctx, span := c.tracer.Start(ctx, "pathao.CancelShipment")
	defer span.End()

	c.logger.Ctx(ctx).Info("Cancelling Pathao shipment",
		zap.String("tracking_id", trackingID),
		zap.String("reason", reason),
	)

	if err := c.apiClient.CancelOrder(ctx, trackingID, reason); err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return err
	}
	return nil
}

// CreateBulkShipments books multiple consignments in a single call. Every
// shipment is validated before any booking is attempted.
func (c *Client) CreateBulkShipments(ctx context.Context, shipments []*courier.Shipment) ([]*courier.Shipment, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.CreateBulkShipments")
	defer span.End()

	c.logger.Ctx(ctx).Info("Creating Pathao shipments in bulk", zap.Int("count", len(shipments)))

	reqs := make([]*OrderRequest, 0, len(shipments))
	for _, shipment := range shipments {
		if err := c.validateShipment(shipment); err != nil {
			return nil, err
		}
		reqs = append(reqs, orderRequestFromShipment(shipment, c.config.StoreID))
	}

	orders, err := c.apiClient.CreateBulkOrders(ctx, reqs)
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	for i, data := range orders {
		if i < len(shipments) {
			applyOrderData(shipments[i], data)
		}
	}
	return shipments, nil
}

// GenerateLabel returns a label URL for a consignment.
func (c *Client) GenerateLabel(ctx context.Context, trackingID, format string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.GenerateLabel")
	defer span.End()

	labelURL, err := c.apiClient.GetLabel(ctx, trackingID, format)
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return "", err
	}
	return labelURL, nil
}

// RequestPickup schedules a pickup for a consignment.
func (c *Client) RequestPickup(ctx context.Context, trackingID string, details map[string]any) error {
	ctx, span := c.tracer.Start(ctx, "pathao.RequestPickup")
	defer span.End()

	if err := c.apiClient.RequestPickup(ctx, trackingID, details); err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return err
	}
	return nil
}

// ============================================================================
// TrackingService
// ============================================================================

// Track returns the current tracking state of a consignment.
func (c *Client) Track(ctx context.Context, trackingID string) (*courier.Tracking, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.Track")
	defer span.End()

	data, err := c.apiClient.GetTracking(ctx, trackingID)
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}
	return trackingFromData(data), nil
}

// TrackBulk tracks multiple consignments, keyed by tracking ID.
func (c *Client) TrackBulk(ctx context.Context, trackingIDs []string) (map[string]*courier.Tracking, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.TrackBulk")
	defer span.End()

	data, err := c.apiClient.GetBulkTracking(ctx, trackingIDs)
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	result := make(map[string]*courier.Tracking, len(data))
	for _, item := range data {
		tracking := trackingFromData(item)
		result[tracking.TrackingID] = tracking
	}
	return result, nil
}

// GetStatus returns only the normalized status of a consignment.
func (c *Client) GetStatus(ctx context.Context, trackingID string) (courier.Status, error) {
	tracking, err := c.Track(ctx, trackingID)
	if err != nil {
		return "", err
	}
	return tracking.Status, nil
}

// ============================================================================
// RateService
// ============================================================================

// EstimateRate fills the response half of the given rate request.
func (c *Client) EstimateRate(ctx context.Context, rate *courier.Rate) (*courier.Rate, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.EstimateRate")
	defer span.End()

	if err := c.validateRate(rate); err != nil {
		return nil, err
	}

	data, err := c.apiClient.GetRates(ctx, rateRequestFromRate(rate, c.config.StoreID))
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	applyRateData(rate, data)
	return rate, nil
}

// GetServiceTypes lists the service types Pathao offers.
func (c *Client) GetServiceTypes(ctx context.Context) (map[string]courier.ServiceSLA, error) {
	return serviceTypeCatalogue(), nil
}

// ============================================================================
// CodService
// ============================================================================

// GetCodDetails returns the COD state for a single consignment.
func (c *Client) GetCodDetails(ctx context.Context, trackingID string) (*courier.Cod, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.GetCodDetails")
	defer span.End()

	data, err := c.apiClient.GetCod(ctx, trackingID)
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}
	return codFromData(data), nil
}

// GetCodLedger returns COD records matching the given filters.
func (c *Client) GetCodLedger(ctx context.Context, filters map[string]string) ([]*courier.Cod, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.GetCodLedger")
	defer span.End()

	data, err := c.apiClient.GetCodLedger(ctx, filters)
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	records := make([]*courier.Cod, 0, len(data))
	for _, item := range data {
		records = append(records, codFromData(item))
	}
	return records, nil
}

// ReconcileCod marks a batch of consignments as settled.
func (c *Client) ReconcileCod(ctx context.Context, trackingIDs []string, settlement map[string]any) error {
	ctx, span := c.tracer.Start(ctx, "pathao.ReconcileCod")
	defer span.End()

	c.logger.Ctx(ctx).Info("Reconciling Pathao COD", zap.Int("count", len(trackingIDs)))

	if err := c.apiClient.ReconcileCod(ctx, trackingIDs, settlement); err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return err
	}
	return nil
}

// ============================================================================
// WebhookService
// ============================================================================

// RegisterWebhook subscribes a URL to Pathao order events.
func (c *Client) RegisterWebhook(ctx context.Context, url string, events []string) error {
	ctx, span := c.tracer.Start(ctx, "pathao.RegisterWebhook")
	defer span.End()

	if err := c.apiClient.RegisterWebhook(ctx, url, events); err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return err
	}
	return nil
}

// UnregisterWebhook removes a subscription.
func (c *Client) UnregisterWebhook(ctx context.Context, url string) error {
	ctx, span := c.tracer.Start(ctx, "pathao.UnregisterWebhook")
	defer span.End()

	if err := c.apiClient.UnregisterWebhook(ctx, url); err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return err
	}
	return nil
}

// ParseWebhook converts an inbound Pathao webhook payload into a Tracking
// record. Returns nil when the payload is unrecognizable.
func (c *Client) ParseWebhook(payload []byte) *courier.Tracking {
	data := decodeWebhookPayload(payload)
	if data == nil {
		c.logger.Warn("Discarding malformed Pathao webhook", zap.Int("payload_bytes", len(payload)))
		return nil
	}

	tracking := webhookTracking(data)
	if tracking == nil {
		c.logger.Warn("Discarding Pathao webhook without consignment reference")
	}
	return tracking
}

// ============================================================================
// MetadataService
// ============================================================================

// GetSupportedCities returns city code to city name.
func (c *Client) GetSupportedCities(ctx context.Context) (map[string]string, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.GetSupportedCities")
	defer span.End()

	cities, err := c.apiClient.GetCities(ctx)
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	result := make(map[string]string, len(cities))
	for _, city := range cities {
		result[strconv.Itoa(city.CityID)] = city.CityName
	}
	return result, nil
}

// GetSupportedZones returns zone code to zone name for a city.
func (c *Client) GetSupportedZones(ctx context.Context, cityCode string) (map[string]string, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.GetSupportedZones")
	defer span.End()

	zones, err := c.apiClient.GetZones(ctx, locationID(cityCode))
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	result := make(map[string]string, len(zones))
	for _, zone := range zones {
		result[strconv.Itoa(zone.ZoneID)] = zone.ZoneName
	}
	return result, nil
}

// GetSupportedAreas returns area code to area name for a zone. Area IDs go
// into bookings via the shipment's CourierData "areaId" rider. This is a
// Pathao-specific lookup beyond the common metadata surface.
func (c *Client) GetSupportedAreas(ctx context.Context, zoneCode string) (map[string]string, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.GetSupportedAreas")
	defer span.End()

	areas, err := c.apiClient.GetAreas(ctx, locationID(zoneCode))
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	result := make(map[string]string, len(areas))
	for _, area := range areas {
		result[strconv.Itoa(area.AreaID)] = area.AreaName
	}
	return result, nil
}

// IsCitySupported reports whether Pathao covers a city. The city code may
// be a numeric Pathao city ID or a city name.
func (c *Client) IsCitySupported(ctx context.Context, cityCode string) (bool, error) {
	cities, err := c.GetSupportedCities(ctx)
	if err != nil {
		return false, err
	}

	if _, ok := cities[cityCode]; ok {
		return true, nil
	}
	for _, name := range cities {
		if strings.EqualFold(name, cityCode) {
			return true, nil
		}
	}
	return false, nil
}

// GetDeliverySLAs returns per-service-type delivery SLAs.
func (c *Client) GetDeliverySLAs(ctx context.Context) (map[string]courier.ServiceSLA, error) {
	return serviceTypeCatalogue(), nil
}

// ============================================================================
// StoreService
// ============================================================================

// GetStores lists merchant stores with optional query filters.
func (c *Client) GetStores(ctx context.Context, filters map[string]string) (*courier.StoreList, error) {
	ctx, span := c.tracer.Start(ctx, "pathao.GetStores")
	defer span.End()

	page, err := c.apiClient.GetStores(ctx, filters)
	if err != nil {
		c.logger.Ctx(ctx).Error("Pathao API error", zap.Error(err))
		return nil, err
	}

	list := &courier.StoreList{
		Total:   page.Total,
		Page:    page.CurrentPage,
		PerPage: page.PerPage,
	}
	for _, store := range page.Stores {
		list.Stores = append(list.Stores, storeFromData(store))
	}
	return list, nil
}

// GetStore returns one store by ID, or nil if not found.
func (c *Client) GetStore(ctx context.Context, storeID int) (*courier.Store, error) {
	list, err := c.GetStores(ctx, nil)
	if err != nil {
		return nil, err
	}

	for _, store := range list.Stores {
		if store.ID == storeID {
			return &store, nil
		}
	}
	return nil, nil
}

// GetDefaultStore returns the merchant's default store, or nil.
func (c *Client) GetDefaultStore(ctx context.Context) (*courier.Store, error) {
	list, err := c.GetStores(ctx, nil)
	if err != nil {
		return nil, err
	}

	for _, store := range list.Stores {
		if store.IsDefault {
			return &store, nil
		}
	}
	return nil, nil
}

// ============================================================================
// Validation
// ============================================================================

// validateShipment enforces the booking requirements Pathao rejects
// server-side, so callers get one aggregated report before any API call.
func (c *Client) validateShipment(shipment *courier.Shipment) error {
	return validate.New(shipment, validate.Rules{
		"recipientName":    "required|string",
		"recipientPhone":   "required|phone",
		"recipientAddress": "required|string|min:10",
		"recipientCity":    "required",
		"senderName":       "required|string",
		"senderPhone":      "required|phone",
		"senderAddress":    "required|string",
		"senderCity":       "required",
		// Weight 0 means unset and gets the driver default, so no lower bound here
		"weight":          "numeric|max:50",
		"quantity":        "integer|min:1",
		"codAmount":       "numeric|min:0",
		"itemDescription": "string|max:255",
	}).WithMessages(map[string]string{
		"recipientAddress.min": "Recipient address must be at least 10 characters for delivery routing",
		"weight.max":           "Pathao accepts parcels up to 50 kg",
	}).WithCourier(Name).Validate()
}

// validateRate enforces the rate query requirements.
func (c *Client) validateRate(rate *courier.Rate) error {
	return validate.New(rate, validate.Rules{
		"toCity":      "required",
		"toZone":      "required",
		"weight":      "required|numeric|min:0.1|max:50",
		"codAmount":   "numeric|min:0",
		"serviceType": "in:standard,next_day,express,same_day",
	}).WithMessages(map[string]string{
		"weight.min": "Weight must be at least 0.1 kg",
		"weight.max": "Pathao accepts parcels up to 50 kg",
	}).WithDescriptions(map[string]string{
		"weight": "Chargeable parcel weight in kilograms",
	}).WithCourier(Name).Validate()
}

// Interface guards.
var (
	_ courier.Courier         = (*Client)(nil)
	_ courier.ShipmentService = (*Client)(nil)
	_ courier.TrackingService = (*Client)(nil)
	_ courier.RateService     = (*Client)(nil)
	_ courier.CodService      = (*Client)(nil)
	_ courier.WebhookService  = (*Client)(nil)
	_ courier.MetadataService = (*Client)(nil)
	_ courier.StoreService    = (*Client)(nil)
)
