package courier

import (
	"fmt"
	"time"
)

// Shipment is the canonical record for a parcel booking. It normalizes
// shipment data across all couriers; vendor-specific fields ride along in
// CourierData.
type Shipment struct {
	TrackingID      string
	CourierName     string
	ExternalOrderID string
	OrderSource     string // "facebook", "website", "pos", "api"

	SenderName       string
	SenderPhone      string
	SenderEmail      string
	SenderAddress    string
	SenderCity       string
	SenderZone       string
	SenderPostalCode string

	RecipientName       string
	RecipientPhone      string
	RecipientEmail      string
	RecipientAddress    string
	RecipientCity       string
	RecipientZone       string
	RecipientPostalCode string
	RecipientLandmark   string

	ServiceType     string // "same_day", "next_day", "express", "standard"
	Weight          float64
	Quantity        int
	ItemDescription string
	ItemValue       float64

	CodAmount float64
	CodType   string // "full", "partial"

	DeliveryInstruction   string
	PreferredDeliveryTime string

	Status        Status
	CourierStatus string // raw courier status

	LabelURL    string
	CourierData map[string]any
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

// NewShipment returns a shipment with field defaults applied.
func NewShipment() *Shipment {
	return &Shipment{
		ServiceType: "standard",
		Quantity:    1,
	}
}

// ShipmentFromMap builds a shipment from a loosely-typed map. Unknown keys
// are ignored.
func ShipmentFromMap(data map[string]any) *Shipment {
	return NewShipment().Fill(data)
}

// Fill merges map data into the shipment in place. Recognized keys overwrite
// existing values; date fields accept a time.Time or a parseable string.
func (s *Shipment) Fill(data map[string]any) *Shipment {
	for key, value := range data {
		switch key {
		case "trackingId":
			s.TrackingID = asString(value)
		case "courierName":
			s.CourierName = asString(value)
		case "externalOrderId":
			s.ExternalOrderID = asString(value)
		case "orderSource":
			s.OrderSource = asString(value)
		case "senderName":
			s.SenderName = asString(value)
		case "senderPhone":
			s.SenderPhone = asString(value)
		case "senderEmail":
			s.SenderEmail = asString(value)
		case "senderAddress":
			s.SenderAddress = asString(value)
		case "senderCity":
			s.SenderCity = asString(value)
		case "senderZone":
			s.SenderZone = asString(value)
		case "senderPostalCode":
			s.SenderPostalCode = asString(value)
		case "recipientName":
			s.RecipientName = asString(value)
		case "recipientPhone":
			s.RecipientPhone = asString(value)
		case "recipientEmail":
			s.RecipientEmail = asString(value)
		case "recipientAddress":
			s.RecipientAddress = asString(value)
		case "recipientCity":
			s.RecipientCity = asString(value)
		case "recipientZone":
			s.RecipientZone = asString(value)
		case "recipientPostalCode":
			s.RecipientPostalCode = asString(value)
		case "recipientLandmark":
			s.RecipientLandmark = asString(value)
		case "serviceType":
			s.ServiceType = asString(value)
		case "weight":
			s.Weight = asFloat(value)
		case "quantity":
			s.Quantity = asInt(value)
		case "itemDescription":
			s.ItemDescription = asString(value)
		case "itemValue":
			s.ItemValue = asFloat(value)
		case "codAmount":
			s.CodAmount = asFloat(value)
		case "codType":
			s.CodType = asString(value)
		case "deliveryInstruction":
			s.DeliveryInstruction = asString(value)
		case "preferredDeliveryTime":
			s.PreferredDeliveryTime = asString(value)
		case "status":
			s.Status = Status(asString(value))
		case "courierStatus":
			s.CourierStatus = asString(value)
		case "labelUrl":
			s.LabelURL = asString(value)
		case "courierData":
			s.CourierData = asAnyMap(value)
		case "createdAt":
			s.CreatedAt = asTime(value)
		case "updatedAt":
			s.UpdatedAt = asTime(value)
		}
	}
	return s
}

// ToMap flattens the shipment into a string-keyed map. Dates are formatted
// as "YYYY-MM-DD HH:MM:SS".
func (s *Shipment) ToMap() map[string]any {
	return map[string]any{
		"trackingId":            s.TrackingID,
		"courierName":           s.CourierName,
		"externalOrderId":       s.ExternalOrderID,
		"orderSource":           s.OrderSource,
		"senderName":            s.SenderName,
		"senderPhone":           s.SenderPhone,
		"senderEmail":           s.SenderEmail,
		"senderAddress":         s.SenderAddress,
		"senderCity":            s.SenderCity,
		"senderZone":            s.SenderZone,
		"senderPostalCode":      s.SenderPostalCode,
		"recipientName":         s.RecipientName,
		"recipientPhone":        s.RecipientPhone,
		"recipientEmail":        s.RecipientEmail,
		"recipientAddress":      s.RecipientAddress,
		"recipientCity":         s.RecipientCity,
		"recipientZone":         s.RecipientZone,
		"recipientPostalCode":   s.RecipientPostalCode,
		"recipientLandmark":     s.RecipientLandmark,
		"serviceType":           s.ServiceType,
		"weight":                s.Weight,
		"quantity":              s.Quantity,
		"itemDescription":       s.ItemDescription,
		"itemValue":             s.ItemValue,
		"codAmount":             s.CodAmount,
		"codType":               s.CodType,
		"deliveryInstruction":   s.DeliveryInstruction,
		"preferredDeliveryTime": s.PreferredDeliveryTime,
		"status":                string(s.Status),
		"courierStatus":         s.CourierStatus,
		"labelUrl":              s.LabelURL,
		"courierData":           s.CourierData,
		"createdAt":             formatTime(s.CreatedAt),
		"updatedAt":             formatTime(s.UpdatedAt),
	}
}

// ValidateForCreation returns a description for every required-for-creation
// field that is missing. It never fails; callers decide whether to escalate.
func (s *Shipment) ValidateForCreation() []string {
	required := []struct {
		name  string
		value string
	}{
		{"recipientName", s.RecipientName},
		{"recipientPhone", s.RecipientPhone},
		{"recipientAddress", s.RecipientAddress},
		{"recipientCity", s.RecipientCity},
		{"senderName", s.SenderName},
		{"senderPhone", s.SenderPhone},
		{"senderAddress", s.SenderAddress},
		{"senderCity", s.SenderCity},
	}

	var errs []string
	for _, field := range required {
		if field.value == "" {
			errs = append(errs, fmt.Sprintf("Field '%s' is required", field.name))
		}
	}
	return errs
}
