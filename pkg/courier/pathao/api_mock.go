package pathao

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deshship/courier/pkg/courier"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCreateOrder func(ctx context.Context, req *OrderRequest) (*OrderData, error)
	OnGetTracking func(ctx context.Context, consignmentID string) (*TrackingData, error)
	OnGetRates    func(ctx context.Context, req *RateRequest) (*RateData, error)
	OnGetCod      func(ctx context.Context, consignmentID string) (*CodData, error)
	OnGetStores   func(ctx context.Context, filters map[string]string) (*StorePage, error)
	OnCancelOrder func(ctx context.Context, consignmentID, reason string) error
	OnGetLabel    func(ctx context.Context, consignmentID, format string) (string, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return courier.NewAPIError("pathao", 500, "Simulated API error")
	}
	return nil
}

// VerifyCredentials always succeeds unless errors are simulated.
func (m *MockAPIClient) VerifyCredentials(ctx context.Context) error {
	return m.simulate()
}

// CreateOrder books a mock consignment.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req)
	}

	consignmentID := "DL" + uuid.New().String()[:8]
	return &OrderData{
		ConsignmentID:   consignmentID,
		MerchantOrderID: req.MerchantOrderID,
		Status:          "Pending",
		DeliveryFee:     80,
		LabelURL:        fmt.Sprintf("https://api-hermes.pathao.com/labels/%s.pdf", consignmentID),
		CreatedAt:       time.Now().Format(courier.TimeFormat),
	}, nil
}

// UpdateOrder updates a mock consignment.
func (m *MockAPIClient) UpdateOrder(ctx context.Context, consignmentID string, req *OrderRequest) (*OrderData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	return &OrderData{
		ConsignmentID:   consignmentID,
		MerchantOrderID: req.MerchantOrderID,
		Status:          "Pending",
		DeliveryFee:     80,
		CreatedAt:       time.Now().Format(courier.TimeFormat),
	}, nil
}

// CancelOrder cancels a mock consignment.
func (m *MockAPIClient) CancelOrder(ctx context.Context, consignmentID, reason string) error {
	if err := m.simulate(); err != nil {
		return err
	}
	if m.OnCancelOrder != nil {
		return m.OnCancelOrder(ctx, consignmentID, reason)
	}
	return nil
}

// CreateBulkOrders books multiple mock consignments.
func (m *MockAPIClient) CreateBulkOrders(ctx context.Context, reqs []*OrderRequest) ([]*OrderData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	orders := make([]*OrderData, 0, len(reqs))
	for _, req := range reqs {
		order, err := m.CreateOrder(ctx, req)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// GetLabel returns a mock label URL.
func (m *MockAPIClient) GetLabel(ctx context.Context, consignmentID, format string) (string, error) {
	if err := m.simulate(); err != nil {
		return "", err
	}
	if m.OnGetLabel != nil {
		return m.OnGetLabel(ctx, consignmentID, format)
	}

	if format == "" {
		format = "pdf"
	}
	return fmt.Sprintf("https://api-hermes.pathao.com/labels/%s.%s", consignmentID, format), nil
}

// RequestPickup schedules a mock pickup.
func (m *MockAPIClient) RequestPickup(ctx context.Context, consignmentID string, details map[string]any) error {
	return m.simulate()
}

// GetTracking returns mock tracking information.
func (m *MockAPIClient) GetTracking(ctx context.Context, consignmentID string) (*TrackingData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, consignmentID)
	}

	now := time.Now()
	return &TrackingData{
		ConsignmentID:   consignmentID,
		Status:          "In Transit",
		CurrentLocation: "Dhaka Sorting Hub",
		CodAmount:       1500,
		PickedAt:        now.Add(-24 * time.Hour).Format(courier.TimeFormat),
		LastUpdatedAt:   now.Format(courier.TimeFormat),
		History: []TrackingEventData{
			{
				Status:      "Pending",
				Description: "Order placed",
				Location:    "Gulshan, Dhaka",
				Timestamp:   now.Add(-48 * time.Hour).Format(courier.TimeFormat),
			},
			{
				Status:      "Picked",
				Description: "Parcel collected from merchant",
				Location:    "Gulshan, Dhaka",
				Timestamp:   now.Add(-24 * time.Hour).Format(courier.TimeFormat),
			},
			{
				Status:      "In Transit",
				Description: "Parcel at sorting hub",
				Location:    "Dhaka Sorting Hub",
				Timestamp:   now.Format(courier.TimeFormat),
			},
		},
	}, nil
}

// GetBulkTracking returns mock tracking for multiple consignments.
func (m *MockAPIClient) GetBulkTracking(ctx context.Context, consignmentIDs []string) ([]*TrackingData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	results := make([]*TrackingData, 0, len(consignmentIDs))
	for _, id := range consignmentIDs {
		tracking, err := m.GetTracking(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, tracking)
	}
	return results, nil
}

// GetRates returns a mock delivery charge estimate.
func (m *MockAPIClient) GetRates(ctx context.Context, req *RateRequest) (*RateData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetRates != nil {
		return m.OnGetRates(ctx, req)
	}

	charge := 60.0
	if req.ItemWeight > 1 {
		charge += (req.ItemWeight - 1) * 20
	}
	codCharge := req.AmountCollection * 0.01

	days := 2
	if req.DeliveryType == 12 {
		days = 1
	}

	return &RateData{
		DeliveryCharge:        charge,
		CodCharge:             codCharge,
		EstimatedDays:         days,
		EstimatedDeliveryDate: time.Now().AddDate(0, 0, days).Format("2006-01-02"),
	}, nil
}

// GetCod returns mock COD state.
func (m *MockAPIClient) GetCod(ctx context.Context, consignmentID string) (*CodData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetCod != nil {
		return m.OnGetCod(ctx, consignmentID)
	}

	return &CodData{
		ConsignmentID: consignmentID,
		CodAmount:     1500,
		CodCollected:  1500,
		IsSettled:     false,
		Status:        "collected",
		CollectedAt:   time.Now().Add(-6 * time.Hour).Format(courier.TimeFormat),
	}, nil
}

// GetCodLedger returns mock COD records.
func (m *MockAPIClient) GetCodLedger(ctx context.Context, filters map[string]string) ([]*CodData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	return []*CodData{
		{
			ConsignmentID: "DL10000001",
			CodAmount:     1500,
			CodCollected:  1500,
			IsSettled:     true,
			Status:        "settled",
			SettledAt:     time.Now().Add(-72 * time.Hour).Format(courier.TimeFormat),
		},
		{
			ConsignmentID: "DL10000002",
			CodAmount:     2200,
			CodCollected:  2200,
			IsSettled:     false,
			Status:        "collected",
			CollectedAt:   time.Now().Add(-12 * time.Hour).Format(courier.TimeFormat),
		},
	}, nil
}

// ReconcileCod marks mock consignments as settled.
func (m *MockAPIClient) ReconcileCod(ctx context.Context, consignmentIDs []string, settlement map[string]any) error {
	return m.simulate()
}

// GetCities returns mock covered cities.
func (m *MockAPIClient) GetCities(ctx context.Context) ([]CityData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	return []CityData{
		{CityID: 1, CityName: "Dhaka"},
		{CityID: 2, CityName: "Chattogram"},
		{CityID: 3, CityName: "Sylhet"},
		{CityID: 4, CityName: "Khulna"},
		{CityID: 5, CityName: "Rajshahi"},
	}, nil
}

// GetZones returns mock zones.
func (m *MockAPIClient) GetZones(ctx context.Context, cityID int) ([]ZoneData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	return []ZoneData{
		{ZoneID: 101, ZoneName: "Gulshan"},
		{ZoneID: 102, ZoneName: "Banani"},
		{ZoneID: 103, ZoneName: "Dhanmondi"},
		{ZoneID: 104, ZoneName: "Uttara"},
	}, nil
}

// GetAreas returns mock delivery areas.
func (m *MockAPIClient) GetAreas(ctx context.Context, zoneID int) ([]AreaData, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	return []AreaData{
		{AreaID: 14, AreaName: "Gulshan 1", HomeDelivery: true, Pickup: true},
		{AreaID: 15, AreaName: "Gulshan 2", HomeDelivery: true, Pickup: true},
		{AreaID: 16, AreaName: "Niketan", HomeDelivery: true, Pickup: false},
	}, nil
}

// GetStores returns mock merchant stores.
func (m *MockAPIClient) GetStores(ctx context.Context, filters map[string]string) (*StorePage, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetStores != nil {
		return m.OnGetStores(ctx, filters)
	}

	return &StorePage{
		Stores: []StoreData{
			{
				StoreID:        148,
				StoreName:      "Main Warehouse",
				StoreAddress:   "House 12, Road 5, Gulshan 1, Dhaka",
				CityID:         1,
				ZoneID:         101,
				Phone:          "01700000001",
				IsDefaultStore: true,
			},
			{
				StoreID:        149,
				StoreName:      "Chattogram Depot",
				StoreAddress:   "Agrabad C/A, Chattogram",
				CityID:         2,
				ZoneID:         201,
				Phone:          "01700000002",
				IsDefaultStore: false,
			},
		},
		Total:       2,
		CurrentPage: 1,
		PerPage:     20,
	}, nil
}

// RegisterWebhook records nothing and succeeds.
func (m *MockAPIClient) RegisterWebhook(ctx context.Context, url string, events []string) error {
	return m.simulate()
}

// UnregisterWebhook records nothing and succeeds.
func (m *MockAPIClient) UnregisterWebhook(ctx context.Context, url string) error {
	return m.simulate()
}

var _ APIClient = (*MockAPIClient)(nil)
