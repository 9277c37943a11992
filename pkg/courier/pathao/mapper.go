package pathao

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/deshship/courier/pkg/courier"
)

// pathaoStatusMap overrides the generic status rules for the exact labels
// Pathao returns.
var pathaoStatusMap = map[string]courier.Status{
	"Pending":          courier.StatusCreated,
	"Confirmed":        courier.StatusCreated,
	"Picked":           courier.StatusPicked,
	"In Transit":       courier.StatusInTransit,
	"Out for Delivery": courier.StatusOutForDelivery,
	"Delivered":        courier.StatusDelivered,
	"Returned":         courier.StatusReturned,
	"Cancelled":        courier.StatusCancelled,
}

func mapStatus(raw string) courier.Status {
	return courier.MapStatus(raw, pathaoStatusMap)
}

// serviceTypeCode maps canonical service types to Pathao delivery_type codes.
// 12 is On Demand, 48 is Normal.
func serviceTypeCode(serviceType string) int {
	switch serviceType {
	case "same_day", "express":
		return 12
	default:
		return 48
	}
}

// parseAPITime parses the timestamp formats Pathao responses use. Returns
// nil when the value is empty or unparseable.
func parseAPITime(value string) *time.Time {
	if value == "" {
		return nil
	}
	layouts := []string{
		courier.TimeFormat,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// locationID reads a numeric Pathao location ID out of a canonical city or
// zone value. Free-text values return 0 and are left for Pathao to resolve.
func locationID(value string) int {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return id
}

// orderRequestFromShipment converts a canonical shipment to a booking payload.
func orderRequestFromShipment(shipment *courier.Shipment, storeID int) *OrderRequest {
	weight := shipment.Weight
	if weight <= 0 {
		weight = 0.5
	}

	quantity := shipment.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	req := &OrderRequest{
		StoreID:            storeID,
		MerchantOrderID:    shipment.ExternalOrderID,
		RecipientName:      shipment.RecipientName,
		RecipientPhone:     shipment.RecipientPhone,
		RecipientAddress:   shipment.RecipientAddress,
		RecipientCity:      locationID(shipment.RecipientCity),
		RecipientZone:      locationID(shipment.RecipientZone),
		DeliveryType:       serviceTypeCode(shipment.ServiceType),
		ItemType:           2, // Parcel
		SpecialInstruction: shipment.DeliveryInstruction,
		ItemQuantity:       quantity,
		ItemWeight:         strconv.FormatFloat(weight, 'f', -1, 64),
		ItemDescription:    shipment.ItemDescription,
		AmountToCollect:    int(shipment.CodAmount),
	}

	if area, ok := shipment.CourierData["areaId"]; ok {
		req.RecipientArea = locationID(fmt.Sprint(area))
	}

	return req
}

// applyOrderData copies booking results onto the shipment.
func applyOrderData(shipment *courier.Shipment, data *OrderData) {
	shipment.TrackingID = data.ConsignmentID
	shipment.CourierName = Name
	shipment.CourierStatus = data.Status
	shipment.Status = mapStatus(data.Status)
	if data.LabelURL != "" {
		shipment.LabelURL = data.LabelURL
	}
	if created := parseAPITime(data.CreatedAt); created != nil {
		shipment.CreatedAt = created
	}
	if shipment.CourierData == nil {
		shipment.CourierData = map[string]any{}
	}
	shipment.CourierData["consignmentId"] = data.ConsignmentID
	if data.DeliveryFee > 0 {
		shipment.CourierData["deliveryFee"] = data.DeliveryFee
	}
}

// trackingFromData converts a tracking response to the canonical form.
func trackingFromData(data *TrackingData) *courier.Tracking {
	tracking := &courier.Tracking{
		TrackingID:        data.ConsignmentID,
		CourierName:       Name,
		CourierStatus:     data.Status,
		Status:            mapStatus(data.Status),
		StatusDescription: data.StatusDescription,
		CurrentLocation:   data.CurrentLocation,
		DeliveredTo:       data.DeliveredTo,
		DeliveryNote:      data.DeliveryNote,
		CodAmount:         data.CodAmount,
		CodCollected:      data.CodCollected,
		PickedAt:          parseAPITime(data.PickedAt),
		DeliveredAt:       parseAPITime(data.DeliveredAt),
		LastUpdatedAt:     parseAPITime(data.LastUpdatedAt),
	}

	for _, raw := range data.History {
		event := courier.TrackingEvent{
			CourierStatus: raw.Status,
			Status:        mapStatus(raw.Status),
			Description:   raw.Description,
			Location:      raw.Location,
			Timestamp:     parseAPITime(raw.Timestamp),
		}
		tracking.History = append(tracking.History, event)

		// Milestones the summary fields did not carry
		switch event.Status {
		case courier.StatusInTransit:
			if tracking.InTransitAt == nil {
				tracking.InTransitAt = event.Timestamp
			}
		case courier.StatusOutForDelivery:
			if tracking.OutForDeliveryAt == nil {
				tracking.OutForDeliveryAt = event.Timestamp
			}
		case courier.StatusReturned:
			if tracking.ReturnedAt == nil {
				tracking.ReturnedAt = event.Timestamp
			}
		}
	}

	return tracking
}

// rateRequestFromRate converts a canonical rate query to the API payload.
func rateRequestFromRate(rate *courier.Rate, storeID int) *RateRequest {
	return &RateRequest{
		StoreID:          storeID,
		ItemType:         "parcel",
		DeliveryType:     serviceTypeCode(rate.ServiceType),
		ItemWeight:       rate.Weight,
		RecipientCity:    rate.ToCity,
		RecipientZone:    rate.ToZone,
		AmountCollection: rate.CodAmount,
	}
}

// applyRateData copies the estimate onto the rate.
func applyRateData(rate *courier.Rate, data *RateData) {
	rate.CourierName = Name
	if rate.Currency == "" {
		rate.Currency = "BDT"
	}
	rate.DeliveryCharge = data.DeliveryCharge
	rate.CodCharge = data.CodCharge
	rate.TotalCharge = data.DeliveryCharge + data.CodCharge
	rate.EstimatedDays = data.EstimatedDays
	rate.EstimatedDeliveryDate = parseAPITime(data.EstimatedDeliveryDate)
	rate.Breakdown = map[string]float64{
		"deliveryCharge": data.DeliveryCharge,
		"codCharge":      data.CodCharge,
	}
}

// codFromData converts a COD response to the canonical form.
func codFromData(data *CodData) *courier.Cod {
	status := data.Status
	if status == "" {
		switch {
		case data.IsSettled:
			status = courier.CodSettled
		case data.CodCollected > 0:
			status = courier.CodCollected
		default:
			status = courier.CodPending
		}
	}

	pending := data.CodAmount - data.CodCollected
	if pending < 0 {
		pending = 0
	}

	return &courier.Cod{
		TrackingID:          data.ConsignmentID,
		CourierName:         Name,
		CodAmount:           data.CodAmount,
		CodCollected:        data.CodCollected,
		CodPending:          pending,
		IsSettled:           data.IsSettled,
		Status:              status,
		SettledAt:           parseAPITime(data.SettledAt),
		SettlementReference: data.SettlementReference,
		CollectedAt:         parseAPITime(data.CollectedAt),
		CollectionNote:      data.CollectionNote,
	}
}

// storeFromData converts a store entry to the canonical form.
func storeFromData(data StoreData) courier.Store {
	return courier.Store{
		ID:        data.StoreID,
		Name:      data.StoreName,
		Address:   data.StoreAddress,
		City:      strconv.Itoa(data.CityID),
		Zone:      strconv.Itoa(data.ZoneID),
		Phone:     data.Phone,
		IsDefault: data.IsDefaultStore,
	}
}

// decodeWebhookPayload unmarshals a webhook body. Returns nil for anything
// that is not a JSON object with at least one field.
func decodeWebhookPayload(payload []byte) map[string]any {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

// webhookTracking decodes a webhook payload into canonical tracking state.
// Pathao posts order events with consignment_id and order_status fields.
func webhookTracking(payload map[string]any) *courier.Tracking {
	consignmentID, _ := payload["consignment_id"].(string)
	if consignmentID == "" {
		if v, ok := payload["consignmentId"].(string); ok {
			consignmentID = v
		}
	}

	rawStatus, _ := payload["order_status"].(string)
	if rawStatus == "" {
		if v, ok := payload["status"].(string); ok {
			rawStatus = v
		}
	}

	if consignmentID == "" && rawStatus == "" {
		return nil
	}

	tracking := &courier.Tracking{
		TrackingID:    consignmentID,
		CourierName:   Name,
		CourierStatus: rawStatus,
		Status:        mapStatus(rawStatus),
	}

	if v, ok := payload["updated_at"].(string); ok {
		tracking.LastUpdatedAt = parseAPITime(v)
	}
	if v, ok := payload["collected_amount"].(float64); ok {
		tracking.CodCollected = v
	}

	return tracking
}

func serviceTypeCatalogue() map[string]courier.ServiceSLA {
	return map[string]courier.ServiceSLA{
		"standard": {Name: "standard", SLA: "48 hours inside coverage area", Available: true},
		"next_day": {Name: "next_day", SLA: "Next business day inside Dhaka", Available: true},
		"express":  {Name: "express", SLA: "Same day inside Dhaka, booked before 2pm", Available: true},
		"same_day": {Name: "same_day", SLA: "Same day inside Dhaka, booked before 2pm", Available: true},
	}
}
