package courier

import (
	"context"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Manager is the orchestration entry point. Every operation resolves the
// named driver, verifies it declares and implements the required capability,
// then delegates; the manager performs no business logic of its own.
type Manager struct {
	registry *Registry
	resolver *Resolver
	logger   *otelzap.Logger
}

// NewManager creates a manager over its own registry.
func NewManager(logger *otelzap.Logger) *Manager {
	return NewManagerWithRegistry(NewRegistry(), logger)
}

// NewManagerWithRegistry creates a manager over an existing registry.
func NewManagerWithRegistry(registry *Registry, logger *otelzap.Logger) *Manager {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	return &Manager{
		registry: registry,
		resolver: NewResolver(registry),
		logger:   logger,
	}
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Resolver returns the underlying resolver.
func (m *Manager) Resolver() *Resolver {
	return m.resolver
}

// Register adds a driver instance.
func (m *Manager) Register(c Courier) {
	m.registry.Register(c)
}

// RegisterFactory adds a lazily-constructed driver.
func (m *Manager) RegisterFactory(name string, factory Factory) {
	m.registry.RegisterFactory(name, factory)
}

// Courier resolves a driver by name.
func (m *Manager) Courier(name string) (Courier, error) {
	return m.resolver.Resolve(name)
}

// AvailableCouriers returns all registered courier names in registration
// order.
func (m *Manager) AvailableCouriers() []string {
	return m.registry.Names()
}

// FindByCapabilities returns drivers declaring all required capabilities.
func (m *Manager) FindByCapabilities(required ...Capability) ([]Courier, error) {
	return m.resolver.FindByCapabilities(required...)
}

// CreateShipment books a shipment with the named courier.
func (m *Manager) CreateShipment(ctx context.Context, courierName string, shipment *Shipment) (*Shipment, error) {
	svc, err := shipmentService(m, courierName, CapShipmentCreate, "shipment creation")
	if err != nil {
		return nil, err
	}
	m.logger.Ctx(ctx).Info("Creating shipment",
		zap.String("courier", courierName),
		zap.String("recipient_city", shipment.RecipientCity),
	)
	return svc.CreateShipment(ctx, shipment)
}

// UpdateShipment modifies an existing shipment.
func (m *Manager) UpdateShipment(ctx context.Context, courierName, trackingID string, shipment *Shipment) (*Shipment, error) {
	svc, err := shipmentService(m, courierName, CapShipmentUpdate, "shipment update")
	if err != nil {
		return nil, err
	}
	return svc.UpdateShipment(ctx, trackingID, shipment)
}

// CancelShipment cancels an existing shipment.
func (m *Manager) CancelShipment(ctx context.Context, courierName, trackingID, reason string) error {
	svc, err := shipmentService(m, courierName, CapShipmentCancel, "shipment cancellation")
	if err != nil {
		return err
	}
	return svc.CancelShipment(ctx, trackingID, reason)
}

// CreateBulkShipments books multiple shipments in one call.
func (m *Manager) CreateBulkShipments(ctx context.Context, courierName string, shipments []*Shipment) ([]*Shipment, error) {
	svc, err := shipmentService(m, courierName, CapShipmentBulk, "bulk shipment creation")
	if err != nil {
		return nil, err
	}
	return svc.CreateBulkShipments(ctx, shipments)
}

// GenerateLabel returns a shipping label for a shipment.
func (m *Manager) GenerateLabel(ctx context.Context, courierName, trackingID, format string) (string, error) {
	svc, err := shipmentService(m, courierName, CapShipmentLabel, "label generation")
	if err != nil {
		return "", err
	}
	return svc.GenerateLabel(ctx, trackingID, format)
}

// RequestPickup schedules a pickup for a shipment.
func (m *Manager) RequestPickup(ctx context.Context, courierName, trackingID string, details map[string]any) error {
	svc, err := shipmentService(m, courierName, CapShipmentPickup, "pickup requests")
	if err != nil {
		return err
	}
	return svc.RequestPickup(ctx, trackingID, details)
}

// Track returns the tracking state of a shipment.
func (m *Manager) Track(ctx context.Context, courierName, trackingID string) (*Tracking, error) {
	svc, err := trackingService(m, courierName, CapTrackingRealtime, "tracking")
	if err != nil {
		return nil, err
	}
	return svc.Track(ctx, trackingID)
}

// TrackBulk tracks multiple shipments with one courier.
func (m *Manager) TrackBulk(ctx context.Context, courierName string, trackingIDs []string) (map[string]*Tracking, error) {
	svc, err := trackingService(m, courierName, CapTrackingBulk, "bulk tracking")
	if err != nil {
		return nil, err
	}
	return svc.TrackBulk(ctx, trackingIDs)
}

// GetStatus returns only the normalized status of a shipment.
func (m *Manager) GetStatus(ctx context.Context, courierName, trackingID string) (Status, error) {
	svc, err := trackingService(m, courierName, CapTrackingRealtime, "tracking")
	if err != nil {
		return "", err
	}
	return svc.GetStatus(ctx, trackingID)
}

// TrackAll queries every courier that supports realtime tracking for the
// same tracking ID, in parallel. Individual courier failures are collected
// and do not fail the whole request.
func (m *Manager) TrackAll(ctx context.Context, trackingID string) (map[string]*Tracking, []error) {
	couriers, err := m.resolver.FindByCapabilities(CapTrackingRealtime)
	if err != nil {
		return nil, []error{err}
	}

	results := make(map[string]*Tracking)
	var errs []error
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range couriers {
		svc, ok := c.(TrackingService)
		if !ok {
			continue
		}
		name := c.Name()
		g.Go(func() error {
			tracking, err := svc.Track(ctx, trackingID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			results[name] = tracking
			return nil
		})
	}
	g.Wait()
	return results, errs
}

// EstimateRate fills the response half of a rate request.
func (m *Manager) EstimateRate(ctx context.Context, courierName string, rate *Rate) (*Rate, error) {
	svc, err := rateService(m, courierName, CapRateEstimation, "rate estimation")
	if err != nil {
		return nil, err
	}
	return svc.EstimateRate(ctx, rate)
}

// GetServiceTypes lists the service types the named courier offers.
func (m *Manager) GetServiceTypes(ctx context.Context, courierName string) (map[string]ServiceSLA, error) {
	svc, err := rateService(m, courierName, CapRateServiceTypes, "service type listing")
	if err != nil {
		return nil, err
	}
	return svc.GetServiceTypes(ctx)
}

// GetCodDetails returns COD state for a shipment.
func (m *Manager) GetCodDetails(ctx context.Context, courierName, trackingID string) (*Cod, error) {
	svc, err := codService(m, courierName, CapCodTracking, "COD tracking")
	if err != nil {
		return nil, err
	}
	return svc.GetCodDetails(ctx, trackingID)
}

// GetCodLedger returns COD records matching the filters.
func (m *Manager) GetCodLedger(ctx context.Context, courierName string, filters map[string]string) ([]*Cod, error) {
	svc, err := codService(m, courierName, CapCodLedger, "COD ledger")
	if err != nil {
		return nil, err
	}
	return svc.GetCodLedger(ctx, filters)
}

// ReconcileCod settles a batch of COD shipments.
func (m *Manager) ReconcileCod(ctx context.Context, courierName string, trackingIDs []string, settlement map[string]any) error {
	svc, err := codService(m, courierName, CapCodSettlement, "COD reconciliation")
	if err != nil {
		return err
	}
	return svc.ReconcileCod(ctx, trackingIDs, settlement)
}

// RegisterWebhook subscribes a URL to courier events.
func (m *Manager) RegisterWebhook(ctx context.Context, courierName, url string, events []string) error {
	svc, err := webhookService(m, courierName)
	if err != nil {
		return err
	}
	return svc.RegisterWebhook(ctx, url, events)
}

// UnregisterWebhook removes a webhook subscription.
func (m *Manager) UnregisterWebhook(ctx context.Context, courierName, url string) error {
	svc, err := webhookService(m, courierName)
	if err != nil {
		return err
	}
	return svc.UnregisterWebhook(ctx, url)
}

// ParseWebhook converts an inbound webhook payload into a Tracking record.
// A nil record with nil error means the payload was unrecognizable.
func (m *Manager) ParseWebhook(courierName string, payload []byte) (*Tracking, error) {
	svc, err := webhookService(m, courierName)
	if err != nil {
		return nil, err
	}
	return svc.ParseWebhook(payload), nil
}

// GetSupportedCities lists the cities the named courier covers.
func (m *Manager) GetSupportedCities(ctx context.Context, courierName string) (map[string]string, error) {
	svc, err := metadataService(m, courierName, CapMetadataCities, "city listing")
	if err != nil {
		return nil, err
	}
	return svc.GetSupportedCities(ctx)
}

// GetSupportedZones lists the zones of a city for the named courier.
func (m *Manager) GetSupportedZones(ctx context.Context, courierName, cityCode string) (map[string]string, error) {
	svc, err := metadataService(m, courierName, CapMetadataZones, "zone listing")
	if err != nil {
		return nil, err
	}
	return svc.GetSupportedZones(ctx, cityCode)
}

// GetDeliverySLAs returns per-service delivery SLAs for the named courier.
func (m *Manager) GetDeliverySLAs(ctx context.Context, courierName string) (map[string]ServiceSLA, error) {
	svc, err := metadataService(m, courierName, CapMetadataSLAs, "SLA listing")
	if err != nil {
		return nil, err
	}
	return svc.GetDeliverySLAs(ctx)
}

// GetStores lists the merchant stores registered with the named courier.
func (m *Manager) GetStores(ctx context.Context, courierName string, filters map[string]string) (*StoreList, error) {
	svc, err := storeService(m, courierName)
	if err != nil {
		return nil, err
	}
	return svc.GetStores(ctx, filters)
}

// GetStore returns one merchant store by ID.
func (m *Manager) GetStore(ctx context.Context, courierName string, storeID int) (*Store, error) {
	svc, err := storeService(m, courierName)
	if err != nil {
		return nil, err
	}
	return svc.GetStore(ctx, storeID)
}

// GetDefaultStore returns the merchant's default store.
func (m *Manager) GetDefaultStore(ctx context.Context, courierName string) (*Store, error) {
	svc, err := storeService(m, courierName)
	if err != nil {
		return nil, err
	}
	return svc.GetDefaultStore(ctx)
}

// gate resolves a courier and verifies it declares the capability the
// operation needs; interface assertions happen at the call sites via the
// typed service helpers below.
func gate(m *Manager, courierName string, capability Capability, operation string) (Courier, error) {
	c, err := m.resolver.Resolve(courierName)
	if err != nil {
		return nil, err
	}
	if !c.Supports(capability) {
		return nil, &UnsupportedCapabilityError{Courier: courierName, Operation: operation}
	}
	return c, nil
}

func shipmentService(m *Manager, name string, capability Capability, operation string) (ShipmentService, error) {
	c, err := gate(m, name, capability, operation)
	if err != nil {
		return nil, err
	}
	svc, ok := c.(ShipmentService)
	if !ok {
		return nil, &UnsupportedCapabilityError{Courier: name, Operation: operation}
	}
	return svc, nil
}

func trackingService(m *Manager, name string, capability Capability, operation string) (TrackingService, error) {
	c, err := gate(m, name, capability, operation)
	if err != nil {
		return nil, err
	}
	svc, ok := c.(TrackingService)
	if !ok {
		return nil, &UnsupportedCapabilityError{Courier: name, Operation: operation}
	}
	return svc, nil
}

func rateService(m *Manager, name string, capability Capability, operation string) (RateService, error) {
	c, err := gate(m, name, capability, operation)
	if err != nil {
		return nil, err
	}
	svc, ok := c.(RateService)
	if !ok {
		return nil, &UnsupportedCapabilityError{Courier: name, Operation: operation}
	}
	return svc, nil
}

func codService(m *Manager, name string, capability Capability, operation string) (CodService, error) {
	c, err := gate(m, name, capability, operation)
	if err != nil {
		return nil, err
	}
	svc, ok := c.(CodService)
	if !ok {
		return nil, &UnsupportedCapabilityError{Courier: name, Operation: operation}
	}
	return svc, nil
}

func webhookService(m *Manager, name string) (WebhookService, error) {
	c, err := gate(m, name, CapTrackingWebhook, "webhooks")
	if err != nil {
		return nil, err
	}
	svc, ok := c.(WebhookService)
	if !ok {
		return nil, &UnsupportedCapabilityError{Courier: name, Operation: "webhooks"}
	}
	return svc, nil
}

func metadataService(m *Manager, name string, capability Capability, operation string) (MetadataService, error) {
	c, err := gate(m, name, capability, operation)
	if err != nil {
		return nil, err
	}
	svc, ok := c.(MetadataService)
	if !ok {
		return nil, &UnsupportedCapabilityError{Courier: name, Operation: operation}
	}
	return svc, nil
}

func storeService(m *Manager, name string) (StoreService, error) {
	c, err := gate(m, name, CapStoreList, "store listing")
	if err != nil {
		return nil, err
	}
	svc, ok := c.(StoreService)
	if !ok {
		return nil, &UnsupportedCapabilityError{Courier: name, Operation: "store listing"}
	}
	return svc, nil
}
