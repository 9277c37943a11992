package courier

import (
	"time"
)

// CodStatus values for the Cod record.
const (
	CodPending   = "pending"
	CodCollected = "collected"
	CodSettled   = "settled"
	CodFailed    = "failed"
)

// Cod is the canonical record for cash-on-delivery reconciliation state.
// CodPending is a snapshot computed by the driver's mapping layer at fetch
// time; mutating CodAmount or CodCollected afterwards does not re-derive it.
type Cod struct {
	TrackingID   string
	CourierName  string
	CodAmount    float64
	CodCollected float64
	CodPending   float64
	IsSettled    bool
	Status       string // "pending", "collected", "settled", "failed"

	SettledAt           *time.Time
	SettlementReference string
	CollectedAt         *time.Time
	CollectionNote      string
}

// NewCod returns an empty COD record.
func NewCod() *Cod {
	return &Cod{}
}

// CodFromMap builds a COD record from a loosely-typed map.
func CodFromMap(data map[string]any) *Cod {
	return NewCod().Fill(data)
}

// Fill merges map data into the COD record in place.
func (c *Cod) Fill(data map[string]any) *Cod {
	for key, value := range data {
		switch key {
		case "trackingId":
			c.TrackingID = asString(value)
		case "courierName":
			c.CourierName = asString(value)
		case "codAmount":
			c.CodAmount = asFloat(value)
		case "codCollected":
			c.CodCollected = asFloat(value)
		case "codPending":
			c.CodPending = asFloat(value)
		case "isSettled":
			c.IsSettled = asBool(value)
		case "status":
			c.Status = asString(value)
		case "settledAt":
			c.SettledAt = asTime(value)
		case "settlementReference":
			c.SettlementReference = asString(value)
		case "collectedAt":
			c.CollectedAt = asTime(value)
		case "collectionNote":
			c.CollectionNote = asString(value)
		}
	}
	return c
}

// ToMap flattens the COD record into a string-keyed map.
func (c *Cod) ToMap() map[string]any {
	return map[string]any{
		"trackingId":          c.TrackingID,
		"courierName":         c.CourierName,
		"codAmount":           c.CodAmount,
		"codCollected":        c.CodCollected,
		"codPending":          c.CodPending,
		"isSettled":           c.IsSettled,
		"status":              c.Status,
		"settledAt":           formatTime(c.SettledAt),
		"settlementReference": c.SettlementReference,
		"collectedAt":         formatTime(c.CollectedAt),
		"collectionNote":      c.CollectionNote,
	}
}
