package courier

import (
	"time"
)

// TrackingEvent is one entry in a shipment's status history.
type TrackingEvent struct {
	Status        Status
	CourierStatus string
	Description   string
	Location      string
	Timestamp     *time.Time
}

// Tracking is the canonical record for the tracking state of a shipment.
type Tracking struct {
	TrackingID        string
	CourierName       string
	Status            Status
	CourierStatus     string // raw courier status
	StatusDescription string

	CurrentLocation string
	DestinationCity string

	PickedAt         *time.Time
	InTransitAt      *time.Time
	OutForDeliveryAt *time.Time
	DeliveredAt      *time.Time
	ReturnedAt       *time.Time
	LastUpdatedAt    *time.Time

	DeliveredTo     string
	DeliveryNote    string
	DeliveryAttempt string

	CodAmount    float64
	CodCollected float64
	CodSettled   bool

	History []TrackingEvent
}

// NewTracking returns an empty tracking record.
func NewTracking() *Tracking {
	return &Tracking{}
}

// TrackingFromMap builds a tracking record from a loosely-typed map.
func TrackingFromMap(data map[string]any) *Tracking {
	return NewTracking().Fill(data)
}

// Fill merges map data into the tracking record in place.
func (t *Tracking) Fill(data map[string]any) *Tracking {
	for key, value := range data {
		switch key {
		case "trackingId":
			t.TrackingID = asString(value)
		case "courierName":
			t.CourierName = asString(value)
		case "status":
			t.Status = Status(asString(value))
		case "courierStatus":
			t.CourierStatus = asString(value)
		case "statusDescription":
			t.StatusDescription = asString(value)
		case "currentLocation":
			t.CurrentLocation = asString(value)
		case "destinationCity":
			t.DestinationCity = asString(value)
		case "pickedAt":
			t.PickedAt = asTime(value)
		case "inTransitAt":
			t.InTransitAt = asTime(value)
		case "outForDeliveryAt":
			t.OutForDeliveryAt = asTime(value)
		case "deliveredAt":
			t.DeliveredAt = asTime(value)
		case "returnedAt":
			t.ReturnedAt = asTime(value)
		case "lastUpdatedAt":
			t.LastUpdatedAt = asTime(value)
		case "deliveredTo":
			t.DeliveredTo = asString(value)
		case "deliveryNote":
			t.DeliveryNote = asString(value)
		case "deliveryAttempt":
			t.DeliveryAttempt = asString(value)
		case "codAmount":
			t.CodAmount = asFloat(value)
		case "codCollected":
			t.CodCollected = asFloat(value)
		case "codSettled":
			t.CodSettled = asBool(value)
		case "history":
			t.History = historyFromAny(value)
		}
	}
	return t
}

// ToMap flattens the tracking record into a string-keyed map.
func (t *Tracking) ToMap() map[string]any {
	history := make([]map[string]any, 0, len(t.History))
	for _, event := range t.History {
		history = append(history, map[string]any{
			"status":        string(event.Status),
			"courierStatus": event.CourierStatus,
			"description":   event.Description,
			"location":      event.Location,
			"timestamp":     formatTime(event.Timestamp),
		})
	}

	return map[string]any{
		"trackingId":        t.TrackingID,
		"courierName":       t.CourierName,
		"status":            string(t.Status),
		"courierStatus":     t.CourierStatus,
		"statusDescription": t.StatusDescription,
		"currentLocation":   t.CurrentLocation,
		"destinationCity":   t.DestinationCity,
		"pickedAt":          formatTime(t.PickedAt),
		"inTransitAt":       formatTime(t.InTransitAt),
		"outForDeliveryAt":  formatTime(t.OutForDeliveryAt),
		"deliveredAt":       formatTime(t.DeliveredAt),
		"returnedAt":        formatTime(t.ReturnedAt),
		"lastUpdatedAt":     formatTime(t.LastUpdatedAt),
		"deliveredTo":       t.DeliveredTo,
		"deliveryNote":      t.DeliveryNote,
		"deliveryAttempt":   t.DeliveryAttempt,
		"codAmount":         t.CodAmount,
		"codCollected":      t.CodCollected,
		"codSettled":        t.CodSettled,
		"history":           history,
	}
}

// IsDelivered reports whether the shipment reached its recipient.
func (t *Tracking) IsDelivered() bool {
	return t.Status == StatusDelivered
}

// IsReturned reports whether the shipment went back to the sender.
func (t *Tracking) IsReturned() bool {
	return t.Status == StatusReturned
}

// IsInTransit reports whether the shipment is moving.
func (t *Tracking) IsInTransit() bool {
	switch t.Status {
	case StatusPicked, StatusInTransit, StatusOutForDelivery:
		return true
	}
	return false
}

func historyFromAny(value any) []TrackingEvent {
	switch items := value.(type) {
	case []TrackingEvent:
		return items
	case []map[string]any:
		events := make([]TrackingEvent, 0, len(items))
		for _, item := range items {
			events = append(events, eventFromMap(item))
		}
		return events
	case []any:
		events := make([]TrackingEvent, 0, len(items))
		for _, item := range items {
			if m := asAnyMap(item); m != nil {
				events = append(events, eventFromMap(m))
			}
		}
		return events
	}
	return nil
}

func eventFromMap(m map[string]any) TrackingEvent {
	return TrackingEvent{
		Status:        Status(asString(m["status"])),
		CourierStatus: asString(m["courierStatus"]),
		Description:   asString(m["description"]),
		Location:      asString(m["location"]),
		Timestamp:     asTime(m["timestamp"]),
	}
}
