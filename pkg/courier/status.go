package courier

import (
	"regexp"
	"strings"
)

// Status is the normalized shipment lifecycle state shared by all couriers.
type Status string

const (
	StatusCreated        Status = "CREATED"
	StatusPicked         Status = "PICKED"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusFailed         Status = "FAILED"
	StatusReturned       Status = "RETURNED"
	StatusCancelled      Status = "CANCELLED"
)

// CanonicalStatuses returns every normalized status.
func CanonicalStatuses() []Status {
	return []Status{
		StatusCreated,
		StatusPicked,
		StatusInTransit,
		StatusOutForDelivery,
		StatusDelivered,
		StatusFailed,
		StatusReturned,
		StatusCancelled,
	}
}

// statusRules map courier-ish vocabulary to canonical statuses. Evaluation
// order matters: "OUT_FOR_DELIVERY" must be tested before the DELIVERED rule
// because the patterns overlap on substrings.
var statusRules = []struct {
	pattern *regexp.Regexp
	status  Status
}{
	{regexp.MustCompile(`CREATED|PENDING|BOOKED|CONFIRMED`), StatusCreated},
	{regexp.MustCompile(`PICKED|PICKUP|COLLECTED`), StatusPicked},
	{regexp.MustCompile(`IN.?TRANSIT|TRANSIT|SHIPPED`), StatusInTransit},
	{regexp.MustCompile(`OUT.?FOR.?DELIVERY|ON.?DELIVERY|DELIVERING`), StatusOutForDelivery},
	{regexp.MustCompile(`DELIVERED|COMPLETED|SUCCESS`), StatusDelivered},
	{regexp.MustCompile(`FAILED|FAILURE|UNDELIVERED`), StatusFailed},
	{regexp.MustCompile(`RETURNED|RETURN`), StatusReturned},
	{regexp.MustCompile(`CANCELLED|CANCELED`), StatusCancelled},
}

// MapStatus normalizes a raw courier status string into a canonical Status.
// An exact match in the custom mapping wins; otherwise the input is
// uppercased, trimmed, and tested against the pattern rules in order. Unknown
// input defaults to StatusCreated.
func MapStatus(courierStatus string, custom map[string]Status) Status {
	if s, ok := custom[courierStatus]; ok {
		return s
	}

	normalized := strings.ToUpper(strings.TrimSpace(courierStatus))
	for _, rule := range statusRules {
		if rule.pattern.MatchString(normalized) {
			return rule.status
		}
	}

	return StatusCreated
}

// IsTerminal reports whether a status is a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusFailed, StatusReturned, StatusCancelled:
		return true
	}
	return false
}

// DisplayName returns the human-readable form of a status.
func (s Status) DisplayName() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusPicked:
		return "Picked Up"
	case StatusInTransit:
		return "In Transit"
	case StatusOutForDelivery:
		return "Out for Delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusFailed:
		return "Failed"
	case StatusReturned:
		return "Returned"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}
