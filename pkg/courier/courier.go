// Package courier provides an abstraction layer for Bangladeshi courier services.
package courier

import (
	"context"
)

// Courier defines the core interface that all courier drivers must implement.
// Drivers implement additional capability interfaces (ShipmentService,
// TrackingService, ...) for the operations they actually support.
type Courier interface {
	// Name returns the machine identifier (e.g., "pathao", "steadfast", "redx").
	Name() string

	// DisplayName returns the human-readable name (e.g., "Pathao Courier").
	DisplayName() string

	// Capabilities returns the capability tokens this driver declares.
	Capabilities() []Capability

	// Supports reports whether the driver declares a single capability.
	Supports(c Capability) bool

	// TestConnection verifies the driver can reach its upstream API.
	TestConnection(ctx context.Context) error
}

// ShipmentService covers shipment lifecycle operations.
type ShipmentService interface {
	// CreateShipment books a new shipment and returns it with the
	// courier-assigned tracking ID and raw courier data populated.
	CreateShipment(ctx context.Context, shipment *Shipment) (*Shipment, error)

	// UpdateShipment modifies an existing shipment.
	UpdateShipment(ctx context.Context, trackingID string, shipment *Shipment) (*Shipment, error)

	// CancelShipment cancels an existing shipment.
	CancelShipment(ctx context.Context, trackingID, reason string) error

	// CreateBulkShipments books multiple shipments in a single call.
	CreateBulkShipments(ctx context.Context, shipments []*Shipment) ([]*Shipment, error)

	// GenerateLabel returns a label URL or base64 payload for a shipment.
	GenerateLabel(ctx context.Context, trackingID, format string) (string, error)

	// RequestPickup schedules a pickup for a shipment.
	RequestPickup(ctx context.Context, trackingID string, details map[string]any) error
}

// TrackingService covers shipment tracking operations.
type TrackingService interface {
	// Track returns the current tracking state of a shipment.
	Track(ctx context.Context, trackingID string) (*Tracking, error)

	// TrackBulk tracks multiple shipments, keyed by tracking ID.
	TrackBulk(ctx context.Context, trackingIDs []string) (map[string]*Tracking, error)

	// GetStatus returns only the normalized status of a shipment.
	GetStatus(ctx context.Context, trackingID string) (Status, error)
}

// RateService covers delivery charge estimation.
type RateService interface {
	// EstimateRate fills the response half of the given rate request.
	EstimateRate(ctx context.Context, rate *Rate) (*Rate, error)

	// GetServiceTypes lists the service types the courier offers.
	GetServiceTypes(ctx context.Context) (map[string]ServiceSLA, error)
}

// CodService covers cash-on-delivery reconciliation.
type CodService interface {
	// GetCodDetails returns the COD state for a single shipment.
	GetCodDetails(ctx context.Context, trackingID string) (*Cod, error)

	// GetCodLedger returns COD records matching the given filters
	// (date range, status, etc.).
	GetCodLedger(ctx context.Context, filters map[string]string) ([]*Cod, error)

	// ReconcileCod marks a batch of shipments as settled.
	ReconcileCod(ctx context.Context, trackingIDs []string, settlement map[string]any) error
}

// WebhookService covers inbound status update subscriptions.
type WebhookService interface {
	// RegisterWebhook subscribes a URL to courier events.
	RegisterWebhook(ctx context.Context, url string, events []string) error

	// UnregisterWebhook removes a subscription.
	UnregisterWebhook(ctx context.Context, url string) error

	// ParseWebhook converts an inbound webhook payload into a Tracking
	// record. It returns nil when the payload is unrecognizable; malformed
	// webhooks are an expected operational occurrence, not an error.
	ParseWebhook(payload []byte) *Tracking
}

// MetadataService covers coverage area and SLA lookups.
type MetadataService interface {
	// GetSupportedCities returns city code to city name.
	GetSupportedCities(ctx context.Context) (map[string]string, error)

	// GetSupportedZones returns zone code to zone name for a city.
	GetSupportedZones(ctx context.Context, cityCode string) (map[string]string, error)

	// IsCitySupported reports whether the courier covers a city.
	IsCitySupported(ctx context.Context, cityCode string) (bool, error)

	// GetDeliverySLAs returns per-service-type delivery SLAs.
	GetDeliverySLAs(ctx context.Context) (map[string]ServiceSLA, error)
}

// StoreService covers merchant store (pickup point) management.
type StoreService interface {
	// GetStores lists merchant stores with optional query filters
	// (e.g., page, per_page).
	GetStores(ctx context.Context, filters map[string]string) (*StoreList, error)

	// GetStore returns one store by ID, or nil if not found.
	GetStore(ctx context.Context, storeID int) (*Store, error)

	// GetDefaultStore returns the merchant's default store, or nil.
	GetDefaultStore(ctx context.Context) (*Store, error)
}

// ServiceSLA describes one service type offered by a courier.
type ServiceSLA struct {
	Name      string
	SLA       string
	Available bool
}

// Store is a merchant pickup point registered with a courier.
type Store struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Zone      string `json:"zone"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"isDefault"`
}

// StoreList is a page of merchant stores.
type StoreList struct {
	Stores  []Store `json:"stores"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
}
