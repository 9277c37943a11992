package courier

// Capability identifies one discrete optional feature a courier driver may
// support. The catalogue is closed: adding a capability means extending this
// list plus the corresponding service interface, not changing wire formats.
type Capability string

const (
	// Shipment capabilities.
	CapShipmentCreate Capability = "shipment.create"
	CapShipmentUpdate Capability = "shipment.update"
	CapShipmentCancel Capability = "shipment.cancel"
	CapShipmentBulk   Capability = "shipment.bulk"
	CapShipmentLabel  Capability = "shipment.label"
	CapShipmentPickup Capability = "shipment.pickup"

	// Tracking capabilities.
	CapTrackingRealtime Capability = "tracking.realtime"
	CapTrackingWebhook  Capability = "tracking.webhook"
	CapTrackingBulk     Capability = "tracking.bulk"

	// Rate capabilities.
	CapRateEstimation   Capability = "rate.estimation"
	CapRateServiceTypes Capability = "rate.service_types"

	// COD capabilities.
	CapCodTracking   Capability = "cod.tracking"
	CapCodSettlement Capability = "cod.settlement"
	CapCodLedger     Capability = "cod.ledger"

	// Metadata capabilities.
	CapMetadataCities Capability = "metadata.cities"
	CapMetadataZones  Capability = "metadata.zones"
	CapMetadataSLAs   Capability = "metadata.slas"

	// Store capabilities.
	CapStoreList Capability = "store.list"
)

// AllCapabilities returns the full capability catalogue.
func AllCapabilities() []Capability {
	return []Capability{
		CapShipmentCreate,
		CapShipmentUpdate,
		CapShipmentCancel,
		CapShipmentBulk,
		CapShipmentLabel,
		CapShipmentPickup,
		CapTrackingRealtime,
		CapTrackingWebhook,
		CapTrackingBulk,
		CapRateEstimation,
		CapRateServiceTypes,
		CapCodTracking,
		CapCodSettlement,
		CapCodLedger,
		CapMetadataCities,
		CapMetadataZones,
		CapMetadataSLAs,
		CapStoreList,
	}
}

// Supports reports whether a courier declares a capability.
func Supports(c Courier, capability Capability) bool {
	return c.Supports(capability)
}

// Supported returns all capabilities a courier declares.
func Supported(c Courier) []Capability {
	return c.Capabilities()
}

// Missing returns the catalogue entries a courier does not declare.
func Missing(c Courier) []Capability {
	declared := capabilitySet(c.Capabilities())
	var missing []Capability
	for _, capability := range AllCapabilities() {
		if !declared[capability] {
			missing = append(missing, capability)
		}
	}
	return missing
}

// SupportsAll reports whether a courier declares every required capability.
func SupportsAll(c Courier, required []Capability) bool {
	declared := capabilitySet(c.Capabilities())
	for _, capability := range required {
		if !declared[capability] {
			return false
		}
	}
	return true
}

// SupportsAny reports whether a courier declares at least one of the
// required capabilities.
func SupportsAny(c Courier, required []Capability) bool {
	declared := capabilitySet(c.Capabilities())
	for _, capability := range required {
		if declared[capability] {
			return true
		}
	}
	return false
}

func capabilitySet(caps []Capability) map[Capability]bool {
	set := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}
