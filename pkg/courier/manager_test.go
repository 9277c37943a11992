package courier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deshship/courier/pkg/courier"
	"github.com/deshship/courier/pkg/courier/mock"
)

func bookableShipment() *courier.Shipment {
	return courier.ShipmentFromMap(map[string]any{
		"recipientName":    "Rahim Uddin",
		"recipientPhone":   "01712345678",
		"recipientAddress": "House 7, Road 3, Dhanmondi",
		"recipientCity":    "Dhaka",
		"senderName":       "Karim Traders",
		"senderPhone":      "01898765432",
		"senderAddress":    "Shop 12, New Market",
		"senderCity":       "Dhaka",
		"weight":           1.0,
		"codAmount":        500,
	})
}

func TestManager_CreateShipment_Dispatches(t *testing.T) {
	manager := courier.NewManager(nil)
	manager.Register(mock.New("pathao"))

	result, err := manager.CreateShipment(context.Background(), "pathao", bookableShipment())
	require.NoError(t, err)
	assert.NotEmpty(t, result.TrackingID)
	assert.Equal(t, "pathao", result.CourierName)
	assert.Equal(t, courier.StatusCreated, result.Status)
}

func TestManager_CreateShipment_UnknownCourier(t *testing.T) {
	manager := courier.NewManager(nil)

	_, err := manager.CreateShipment(context.Background(), "ghost", bookableShipment())
	assert.ErrorIs(t, err, courier.ErrNotRegistered)
}

func TestManager_UndeclaredCapabilityRefused(t *testing.T) {
	manager := courier.NewManager(nil)
	// Implements every interface but declares nothing
	manager.Register(mock.New("bare", mock.WithCapabilities()))

	_, err := manager.CreateShipment(context.Background(), "bare", bookableShipment())
	require.Error(t, err)

	var unsupported *courier.UnsupportedCapabilityError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "bare", unsupported.Courier)
	assert.Equal(t, "shipment creation", unsupported.Operation)
	assert.Contains(t, err.Error(), `courier "bare" does not support shipment creation`)
}

func TestManager_PartialCapabilities(t *testing.T) {
	manager := courier.NewManager(nil)
	manager.Register(mock.New("trackonly", mock.WithCapabilities(courier.CapTrackingRealtime)))

	_, err := manager.Track(context.Background(), "trackonly", "DL123")
	assert.NoError(t, err)

	_, err = manager.EstimateRate(context.Background(), "trackonly", courier.NewRate())
	var unsupported *courier.UnsupportedCapabilityError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "rate estimation", unsupported.Operation)
}

func TestManager_Track(t *testing.T) {
	manager := courier.NewManager(nil)
	driver := mock.New("pathao")
	driver.OnTrack = func(ctx context.Context, trackingID string) (*courier.Tracking, error) {
		return &courier.Tracking{
			TrackingID:  trackingID,
			CourierName: "pathao",
			Status:      courier.StatusOutForDelivery,
		}, nil
	}
	manager.Register(driver)

	tracking, err := manager.Track(context.Background(), "pathao", "DL123")
	require.NoError(t, err)
	assert.Equal(t, "DL123", tracking.TrackingID)
	assert.Equal(t, courier.StatusOutForDelivery, tracking.Status)
}

func TestManager_TrackAll_FanOut(t *testing.T) {
	manager := courier.NewManager(nil)

	fast := mock.New("fast")
	fast.OnTrack = func(ctx context.Context, trackingID string) (*courier.Tracking, error) {
		return &courier.Tracking{TrackingID: trackingID, CourierName: "fast", Status: courier.StatusDelivered}, nil
	}
	slow := mock.New("slow")
	slow.OnTrack = func(ctx context.Context, trackingID string) (*courier.Tracking, error) {
		return &courier.Tracking{TrackingID: trackingID, CourierName: "slow", Status: courier.StatusInTransit}, nil
	}
	broken := mock.New("broken")
	broken.OnTrack = func(ctx context.Context, trackingID string) (*courier.Tracking, error) {
		return nil, errors.New("upstream down")
	}
	// Does not declare realtime tracking, must be skipped entirely
	silent := mock.New("silent", mock.WithCapabilities(courier.CapShipmentCreate))

	manager.Register(fast)
	manager.Register(slow)
	manager.Register(broken)
	manager.Register(silent)

	results, errs := manager.TrackAll(context.Background(), "DL123")

	require.Len(t, results, 2)
	assert.Equal(t, courier.StatusDelivered, results["fast"].Status)
	assert.Equal(t, courier.StatusInTransit, results["slow"].Status)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "upstream down")
}

func TestManager_EstimateRate(t *testing.T) {
	manager := courier.NewManager(nil)
	driver := mock.New("pathao")
	driver.OnEstimateRate = func(ctx context.Context, r *courier.Rate) (*courier.Rate, error) {
		r.DeliveryCharge = 80
		r.TotalCharge = 88
		r.CourierName = "pathao"
		return r, nil
	}
	manager.Register(driver)

	rate := courier.NewRate()
	rate.Weight = 1.5

	result, err := manager.EstimateRate(context.Background(), "pathao", rate)
	require.NoError(t, err)
	assert.Equal(t, 88.0, result.TotalCharge)
}

func TestManager_ParseWebhook_NilOnMalformed(t *testing.T) {
	manager := courier.NewManager(nil)
	manager.Register(mock.New("pathao"))

	tracking, err := manager.ParseWebhook("pathao", []byte("not json"))
	require.NoError(t, err)
	assert.Nil(t, tracking)
}

func TestManager_LazyFactory(t *testing.T) {
	manager := courier.NewManager(nil)
	manager.RegisterFactory("lazy", func() (courier.Courier, error) {
		return mock.New("lazy"), nil
	})

	assert.Equal(t, []string{"lazy"}, manager.AvailableCouriers())

	c, err := manager.Courier("lazy")
	require.NoError(t, err)
	assert.Equal(t, "lazy", c.Name())
}

func TestManager_StoreOperations(t *testing.T) {
	manager := courier.NewManager(nil)
	manager.Register(mock.New("pathao"))

	list, err := manager.GetStores(context.Background(), "pathao", nil)
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.NotEmpty(t, list.Stores)

	def, err := manager.GetDefaultStore(context.Background(), "pathao")
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.True(t, def.IsDefault)
}
