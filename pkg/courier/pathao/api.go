package pathao

import (
	"context"
)

// APIClient defines the Pathao merchant API operations. The abstraction
// allows a mock implementation in tests and the HTTP implementation in
// production.
type APIClient interface {
	// VerifyCredentials issues an access token to prove connectivity.
	VerifyCredentials(ctx context.Context) error

	// CreateOrder books a consignment.
	CreateOrder(ctx context.Context, req *OrderRequest) (*OrderData, error)

	// UpdateOrder modifies a consignment.
	UpdateOrder(ctx context.Context, consignmentID string, req *OrderRequest) (*OrderData, error)

	// CancelOrder cancels a consignment.
	CancelOrder(ctx context.Context, consignmentID, reason string) error

	// CreateBulkOrders books multiple consignments in one call.
	CreateBulkOrders(ctx context.Context, reqs []*OrderRequest) ([]*OrderData, error)

	// GetLabel returns a label URL or base64 payload for a consignment.
	GetLabel(ctx context.Context, consignmentID, format string) (string, error)

	// RequestPickup schedules a pickup for a consignment.
	RequestPickup(ctx context.Context, consignmentID string, details map[string]any) error

	// GetTracking returns tracking state for a consignment.
	GetTracking(ctx context.Context, consignmentID string) (*TrackingData, error)

	// GetBulkTracking returns tracking state for multiple consignments.
	GetBulkTracking(ctx context.Context, consignmentIDs []string) ([]*TrackingData, error)

	// GetRates returns a delivery charge estimate.
	GetRates(ctx context.Context, req *RateRequest) (*RateData, error)

	// GetCod returns COD state for a consignment.
	GetCod(ctx context.Context, consignmentID string) (*CodData, error)

	// GetCodLedger returns COD records matching the filters.
	GetCodLedger(ctx context.Context, filters map[string]string) ([]*CodData, error)

	// ReconcileCod marks a batch of consignments as settled.
	ReconcileCod(ctx context.Context, consignmentIDs []string, settlement map[string]any) error

	// GetCities lists covered cities.
	GetCities(ctx context.Context) ([]CityData, error)

	// GetZones lists zones, optionally scoped to a city.
	GetZones(ctx context.Context, cityID int) ([]ZoneData, error)

	// GetAreas lists delivery areas within a zone.
	GetAreas(ctx context.Context, zoneID int) ([]AreaData, error)

	// GetStores lists merchant stores.
	GetStores(ctx context.Context, filters map[string]string) (*StorePage, error)

	// RegisterWebhook subscribes a URL to order events.
	RegisterWebhook(ctx context.Context, url string, events []string) error

	// UnregisterWebhook removes a subscription.
	UnregisterWebhook(ctx context.Context, url string) error
}

// ============================================================================
// Wire types (match the Pathao merchant REST API structure)
// ============================================================================

// TokenRequest is the OAuth password-grant payload.
// POST /aladdin/api/v1/issue-token
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	GrantType    string `json:"grant_type"`
}

// TokenResponse is the OAuth token payload.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// OrderRequest books a consignment.
// POST /aladdin/api/v1/orders
type OrderRequest struct {
	StoreID                 int    `json:"store_id"`
	MerchantOrderID         string `json:"merchant_order_id,omitempty"`
	RecipientName           string `json:"recipient_name"`
	RecipientPhone          string `json:"recipient_phone"`
	RecipientSecondaryPhone string `json:"recipient_secondary_phone,omitempty"`
	RecipientAddress        string `json:"recipient_address"`
	RecipientCity           int    `json:"recipient_city,omitempty"`
	RecipientZone           int    `json:"recipient_zone,omitempty"`
	RecipientArea           int    `json:"recipient_area,omitempty"`
	DeliveryType            int    `json:"delivery_type"` // 48 Normal, 12 On Demand
	ItemType                int    `json:"item_type"`     // 1 Document, 2 Parcel
	SpecialInstruction      string `json:"special_instruction,omitempty"`
	ItemQuantity            int    `json:"item_quantity"`
	ItemWeight              string `json:"item_weight"` // kg, must be a string
	ItemDescription         string `json:"item_description,omitempty"`
	AmountToCollect         int    `json:"amount_to_collect"`
}

// OrderData is a booked consignment.
type OrderData struct {
	ConsignmentID   string  `json:"consignment_id"`
	MerchantOrderID string  `json:"merchant_order_id"`
	Status          string  `json:"status"`
	DeliveryFee     float64 `json:"delivery_fee"`
	LabelURL        string  `json:"label_url"`
	CreatedAt       string  `json:"created_at"`
}

// TrackingEventData is one history entry in a tracking response.
type TrackingEventData struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Timestamp   string `json:"timestamp"`
}

// TrackingData is the tracking state of a consignment.
// GET /aladdin/api/v1/orders/{consignment_id}/track
type TrackingData struct {
	ConsignmentID     string              `json:"consignment_id"`
	Status            string              `json:"status"`
	StatusDescription string              `json:"status_description"`
	CurrentLocation   string              `json:"current_location"`
	DeliveredTo       string              `json:"delivered_to"`
	DeliveryNote      string              `json:"delivery_note"`
	CodAmount         float64             `json:"cod_amount"`
	CodCollected      float64             `json:"cod_collected"`
	PickedAt          string              `json:"picked_at"`
	DeliveredAt       string              `json:"delivered_at"`
	LastUpdatedAt     string              `json:"last_updated_at"`
	History           []TrackingEventData `json:"history"`
}

// RateRequest estimates a delivery charge.
// POST /aladdin/api/v1/rates
type RateRequest struct {
	StoreID          int     `json:"store_id,omitempty"`
	ItemType         string  `json:"item_type"`
	DeliveryType     int     `json:"delivery_type"`
	ItemWeight       float64 `json:"item_weight"`
	RecipientCity    string  `json:"recipient_city"`
	RecipientZone    string  `json:"recipient_zone"`
	AmountCollection float64 `json:"amount_collection"`
}

// RateData is a delivery charge estimate.
type RateData struct {
	DeliveryCharge        float64 `json:"delivery_charge"`
	CodCharge             float64 `json:"cod_charge"`
	EstimatedDays         int     `json:"estimated_days"`
	EstimatedDeliveryDate string  `json:"estimated_delivery_date"`
}

// CodData is the COD state of a consignment.
type CodData struct {
	ConsignmentID       string  `json:"consignment_id"`
	CodAmount           float64 `json:"cod_amount"`
	CodCollected        float64 `json:"cod_collected"`
	IsSettled           bool    `json:"is_settled"`
	Status              string  `json:"status"`
	SettledAt           string  `json:"settled_at"`
	SettlementReference string  `json:"settlement_reference"`
	CollectedAt         string  `json:"collected_at"`
	CollectionNote      string  `json:"collection_note"`
}

// CityData is one covered city.
type CityData struct {
	CityID   int    `json:"city_id"`
	CityName string `json:"city_name"`
}

// ZoneData is one zone within a city.
type ZoneData struct {
	ZoneID   int    `json:"zone_id"`
	ZoneName string `json:"zone_name"`
}

// AreaData is one delivery area within a zone.
type AreaData struct {
	AreaID       int    `json:"area_id"`
	AreaName     string `json:"area_name"`
	HomeDelivery bool   `json:"home_delivery_available"`
	Pickup       bool   `json:"pickup_available"`
}

// StoreData is one merchant store.
type StoreData struct {
	StoreID        int    `json:"store_id"`
	StoreName      string `json:"store_name"`
	StoreAddress   string `json:"store_address"`
	CityID         int    `json:"city_id"`
	ZoneID         int    `json:"zone_id"`
	Phone          string `json:"phone"`
	IsDefaultStore bool   `json:"is_default_store"`
}

// StorePage is a page of merchant stores with pagination metadata.
type StorePage struct {
	Stores      []StoreData `json:"data"`
	Total       int         `json:"total"`
	CurrentPage int         `json:"current_page"`
	PerPage     int         `json:"per_page"`
}

// WebhookRequest subscribes a URL to order events.
// POST /aladdin/api/v1/webhooks
type WebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events,omitempty"`
}
