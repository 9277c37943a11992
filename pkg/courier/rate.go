package courier

import (
	"time"
)

// Rate is the canonical record for a delivery charge estimate. The request
// half is filled by the caller, the response half by the courier driver;
// both live on the same instance through the request/response round trip and
// the record may be partially populated at any time.
type Rate struct {
	// Request fields.
	FromCity    string
	FromZone    string
	ToCity      string
	ToZone      string
	Weight      float64 // kg
	ServiceType string
	CodAmount   float64
	ItemValue   float64

	// Response fields.
	DeliveryCharge        float64
	CodCharge             float64
	TotalCharge           float64
	Currency              string
	EstimatedDays         int
	EstimatedDeliveryDate *time.Time

	Breakdown   map[string]float64
	CourierName string
	CourierData map[string]any
}

// NewRate returns a rate record with field defaults applied.
func NewRate() *Rate {
	return &Rate{Currency: "BDT"}
}

// RateFromMap builds a rate record from a loosely-typed map.
func RateFromMap(data map[string]any) *Rate {
	return NewRate().Fill(data)
}

// Fill merges map data into the rate record in place.
func (r *Rate) Fill(data map[string]any) *Rate {
	for key, value := range data {
		switch key {
		case "fromCity":
			r.FromCity = asString(value)
		case "fromZone":
			r.FromZone = asString(value)
		case "toCity":
			r.ToCity = asString(value)
		case "toZone":
			r.ToZone = asString(value)
		case "weight":
			r.Weight = asFloat(value)
		case "serviceType":
			r.ServiceType = asString(value)
		case "codAmount":
			r.CodAmount = asFloat(value)
		case "itemValue":
			r.ItemValue = asFloat(value)
		case "deliveryCharge":
			r.DeliveryCharge = asFloat(value)
		case "codCharge":
			r.CodCharge = asFloat(value)
		case "totalCharge":
			r.TotalCharge = asFloat(value)
		case "currency":
			r.Currency = asString(value)
		case "estimatedDays":
			r.EstimatedDays = asInt(value)
		case "estimatedDeliveryDate":
			r.EstimatedDeliveryDate = asTime(value)
		case "breakdown":
			r.Breakdown = breakdownFromAny(value)
		case "courierName":
			r.CourierName = asString(value)
		case "courierData":
			r.CourierData = asAnyMap(value)
		}
	}
	return r
}

// ToMap flattens the rate record into a string-keyed map.
func (r *Rate) ToMap() map[string]any {
	return map[string]any{
		"fromCity":              r.FromCity,
		"fromZone":              r.FromZone,
		"toCity":                r.ToCity,
		"toZone":                r.ToZone,
		"weight":                r.Weight,
		"serviceType":           r.ServiceType,
		"codAmount":             r.CodAmount,
		"itemValue":             r.ItemValue,
		"deliveryCharge":        r.DeliveryCharge,
		"codCharge":             r.CodCharge,
		"totalCharge":           r.TotalCharge,
		"currency":              r.Currency,
		"estimatedDays":         r.EstimatedDays,
		"estimatedDeliveryDate": formatTime(r.EstimatedDeliveryDate),
		"breakdown":             r.Breakdown,
		"courierName":           r.CourierName,
		"courierData":           r.CourierData,
	}
}

func breakdownFromAny(value any) map[string]float64 {
	switch m := value.(type) {
	case map[string]float64:
		return m
	case map[string]any:
		breakdown := make(map[string]float64, len(m))
		for k, v := range m {
			breakdown[k] = asFloat(v)
		}
		return breakdown
	}
	return nil
}
