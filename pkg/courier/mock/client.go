// Package mock provides a configurable courier implementation for testing.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deshship/courier/pkg/courier"
)

// Client is a mock courier for testing. It declares every capability by
// default; use WithCapabilities to build partial drivers.
type Client struct {
	name         string
	capabilities []courier.Capability

	// Optional hooks for overriding canned behavior in tests.
	OnCreateShipment func(ctx context.Context, s *courier.Shipment) (*courier.Shipment, error)
	OnTrack          func(ctx context.Context, trackingID string) (*courier.Tracking, error)
	OnEstimateRate   func(ctx context.Context, r *courier.Rate) (*courier.Rate, error)
}

// Option configures a mock courier.
type Option func(*Client)

// WithCapabilities replaces the default full capability set.
func WithCapabilities(caps ...courier.Capability) Option {
	return func(c *Client) {
		c.capabilities = caps
	}
}

// New creates a new mock courier.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:         name,
		capabilities: courier.AllCapabilities(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the courier name.
func (c *Client) Name() string {
	return c.name
}

// DisplayName returns the human-readable courier name.
func (c *Client) DisplayName() string {
	return fmt.Sprintf("%s (mock)", c.name)
}

// Capabilities returns the declared capability set.
func (c *Client) Capabilities() []courier.Capability {
	return c.capabilities
}

// Supports reports whether a capability is declared.
func (c *Client) Supports(capability courier.Capability) bool {
	for _, declared := range c.capabilities {
		if declared == capability {
			return true
		}
	}
	return false
}

// TestConnection always succeeds.
func (c *Client) TestConnection(ctx context.Context) error {
	return nil
}

// CreateShipment books a mock shipment.
func (c *Client) CreateShipment(ctx context.Context, s *courier.Shipment) (*courier.Shipment, error) {
	if c.OnCreateShipment != nil {
		return c.OnCreateShipment(ctx, s)
	}
	now := time.Now()
	s.TrackingID = fmt.Sprintf("%s-%d", c.name, now.UnixNano())
	s.CourierName = c.name
	s.Status = courier.StatusCreated
	s.CourierStatus = "Pending"
	s.CreatedAt = &now
	return s, nil
}

// UpdateShipment updates a mock shipment.
func (c *Client) UpdateShipment(ctx context.Context, trackingID string, s *courier.Shipment) (*courier.Shipment, error) {
	now := time.Now()
	s.TrackingID = trackingID
	s.CourierName = c.name
	s.UpdatedAt = &now
	return s, nil
}

// CancelShipment cancels a mock shipment.
func (c *Client) CancelShipment(ctx context.Context, trackingID, reason string) error {
	return nil
}

// CreateBulkShipments books multiple mock shipments.
func (c *Client) CreateBulkShipments(ctx context.Context, shipments []*courier.Shipment) ([]*courier.Shipment, error) {
	results := make([]*courier.Shipment, 0, len(shipments))
	for _, s := range shipments {
		created, err := c.CreateShipment(ctx, s)
		if err != nil {
			return nil, err
		}
		results = append(results, created)
	}
	return results, nil
}

// GenerateLabel returns a mock label URL.
func (c *Client) GenerateLabel(ctx context.Context, trackingID, format string) (string, error) {
	if format == "" {
		format = "pdf"
	}
	return fmt.Sprintf("https://labels.%s.mock/%s.%s", c.name, trackingID, format), nil
}

// RequestPickup schedules a mock pickup.
func (c *Client) RequestPickup(ctx context.Context, trackingID string, details map[string]any) error {
	return nil
}

// Track returns canned tracking data.
func (c *Client) Track(ctx context.Context, trackingID string) (*courier.Tracking, error) {
	if c.OnTrack != nil {
		return c.OnTrack(ctx, trackingID)
	}
	now := time.Now()
	picked := now.Add(-48 * time.Hour)
	return &courier.Tracking{
		TrackingID:      trackingID,
		CourierName:     c.name,
		Status:          courier.StatusInTransit,
		CourierStatus:   "In Transit",
		CurrentLocation: "Dhaka Hub",
		PickedAt:        &picked,
		LastUpdatedAt:   &now,
		History: []courier.TrackingEvent{
			{Status: courier.StatusCreated, CourierStatus: "Pending", Timestamp: &picked},
			{Status: courier.StatusPicked, CourierStatus: "Picked", Location: "Dhaka Hub", Timestamp: &picked},
			{Status: courier.StatusInTransit, CourierStatus: "In Transit", Location: "Dhaka Hub", Timestamp: &now},
		},
	}, nil
}

// TrackBulk tracks multiple mock shipments.
func (c *Client) TrackBulk(ctx context.Context, trackingIDs []string) (map[string]*courier.Tracking, error) {
	results := make(map[string]*courier.Tracking, len(trackingIDs))
	for _, id := range trackingIDs {
		tracking, err := c.Track(ctx, id)
		if err != nil {
			return nil, err
		}
		results[id] = tracking
	}
	return results, nil
}

// GetStatus returns the mock shipment status.
func (c *Client) GetStatus(ctx context.Context, trackingID string) (courier.Status, error) {
	tracking, err := c.Track(ctx, trackingID)
	if err != nil {
		return "", err
	}
	return tracking.Status, nil
}

// EstimateRate returns canned rate data.
func (c *Client) EstimateRate(ctx context.Context, r *courier.Rate) (*courier.Rate, error) {
	if c.OnEstimateRate != nil {
		return c.OnEstimateRate(ctx, r)
	}
	r.DeliveryCharge = 60
	r.CodCharge = r.CodAmount * 0.01
	r.TotalCharge = r.DeliveryCharge + r.CodCharge
	r.EstimatedDays = 2
	r.CourierName = c.name
	r.Breakdown = map[string]float64{
		"delivery_charge": r.DeliveryCharge,
		"cod_charge":      r.CodCharge,
		"total":           r.TotalCharge,
	}
	return r, nil
}

// GetServiceTypes returns a canned service catalogue.
func (c *Client) GetServiceTypes(ctx context.Context) (map[string]courier.ServiceSLA, error) {
	return map[string]courier.ServiceSLA{
		"standard": {Name: "Standard Delivery", SLA: "2-3 days", Available: true},
		"express":  {Name: "Express Delivery", SLA: "Same day", Available: true},
	}, nil
}

// GetCodDetails returns canned COD data.
func (c *Client) GetCodDetails(ctx context.Context, trackingID string) (*courier.Cod, error) {
	return &courier.Cod{
		TrackingID:   trackingID,
		CourierName:  c.name,
		CodAmount:    1500,
		CodCollected: 1500,
		CodPending:   0,
		Status:       courier.CodCollected,
	}, nil
}

// GetCodLedger returns a canned COD ledger.
func (c *Client) GetCodLedger(ctx context.Context, filters map[string]string) ([]*courier.Cod, error) {
	cod, _ := c.GetCodDetails(ctx, fmt.Sprintf("%s-ledger-1", c.name))
	return []*courier.Cod{cod}, nil
}

// ReconcileCod settles a mock COD batch.
func (c *Client) ReconcileCod(ctx context.Context, trackingIDs []string, settlement map[string]any) error {
	return nil
}

// RegisterWebhook records a mock subscription.
func (c *Client) RegisterWebhook(ctx context.Context, url string, events []string) error {
	return nil
}

// UnregisterWebhook removes a mock subscription.
func (c *Client) UnregisterWebhook(ctx context.Context, url string) error {
	return nil
}

// ParseWebhook decodes a JSON payload of record-map shape, or nil.
func (c *Client) ParseWebhook(payload []byte) *courier.Tracking {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	return courier.TrackingFromMap(data)
}

// GetSupportedCities returns canned coverage data.
func (c *Client) GetSupportedCities(ctx context.Context) (map[string]string, error) {
	return map[string]string{"1": "Dhaka", "2": "Chattogram", "3": "Sylhet"}, nil
}

// GetSupportedZones returns canned zones for a city.
func (c *Client) GetSupportedZones(ctx context.Context, cityCode string) (map[string]string, error) {
	return map[string]string{"10": "Gulshan", "11": "Banani", "12": "Mirpur"}, nil
}

// IsCitySupported reports canned city coverage.
func (c *Client) IsCitySupported(ctx context.Context, cityCode string) (bool, error) {
	cities, err := c.GetSupportedCities(ctx)
	if err != nil {
		return false, err
	}
	_, ok := cities[cityCode]
	return ok, nil
}

// GetDeliverySLAs returns canned SLAs.
func (c *Client) GetDeliverySLAs(ctx context.Context) (map[string]courier.ServiceSLA, error) {
	return c.GetServiceTypes(ctx)
}

// GetStores returns a canned store page.
func (c *Client) GetStores(ctx context.Context, filters map[string]string) (*courier.StoreList, error) {
	return &courier.StoreList{
		Stores: []courier.Store{
			{ID: 1, Name: "Main Store", City: "Dhaka", Zone: "Gulshan", IsDefault: true},
			{ID: 2, Name: "Warehouse", City: "Chattogram", Zone: "Agrabad"},
		},
		Total:   2,
		Page:    1,
		PerPage: 50,
	}, nil
}

// GetStore returns one canned store by ID.
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

// GetDefaultStore returns the canned default store.
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
