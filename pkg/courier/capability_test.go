package courier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deshship/courier/pkg/courier"
	"github.com/deshship/courier/pkg/courier/mock"
)

func TestAllCapabilities_Complete(t *testing.T) {
	catalogue := courier.AllCapabilities()

	assert.Len(t, catalogue, 18)
	assert.Contains(t, catalogue, courier.CapShipmentCreate)
	assert.Contains(t, catalogue, courier.CapTrackingWebhook)
	assert.Contains(t, catalogue, courier.CapCodSettlement)
	assert.Contains(t, catalogue, courier.CapStoreList)
}

func TestSupported_And_Missing(t *testing.T) {
	partial := mock.New("partial", mock.WithCapabilities(
		courier.CapShipmentCreate,
		courier.CapTrackingRealtime,
	))

	assert.Equal(t, []courier.Capability{
		courier.CapShipmentCreate,
		courier.CapTrackingRealtime,
	}, courier.Supported(partial))

	missing := courier.Missing(partial)
	assert.Len(t, missing, len(courier.AllCapabilities())-2)
	assert.Contains(t, missing, courier.CapCodTracking)
	assert.NotContains(t, missing, courier.CapShipmentCreate)

	full := mock.New("full")
	assert.Empty(t, courier.Missing(full))
}

func TestSupportsAll(t *testing.T) {
	c := mock.New("c", mock.WithCapabilities(
		courier.CapShipmentCreate,
		courier.CapShipmentCancel,
		courier.CapTrackingRealtime,
	))

	assert.True(t, courier.SupportsAll(c, []courier.Capability{
		courier.CapShipmentCreate, courier.CapTrackingRealtime,
	}))
	assert.False(t, courier.SupportsAll(c, []courier.Capability{
		courier.CapShipmentCreate, courier.CapCodLedger,
	}))
	assert.True(t, courier.SupportsAll(c, nil))
}

func TestSupportsAny(t *testing.T) {
	c := mock.New("c", mock.WithCapabilities(courier.CapRateEstimation))

	assert.True(t, courier.SupportsAny(c, []courier.Capability{
		courier.CapCodLedger, courier.CapRateEstimation,
	}))
	assert.False(t, courier.SupportsAny(c, []courier.Capability{
		courier.CapCodLedger, courier.CapStoreList,
	}))
	assert.False(t, courier.SupportsAny(c, nil))
}

func TestSupports_Declared(t *testing.T) {
	c := mock.New("c", mock.WithCapabilities(courier.CapMetadataCities))

	assert.True(t, courier.Supports(c, courier.CapMetadataCities))
	assert.False(t, courier.Supports(c, courier.CapMetadataZones))
}
