// Package request turns the raw HTTP parameters into a LookupRequest.
// Pure extraction: malformed values pass through as empty strings and are
// judged later by the resolver.
package request

import (
	"net/http"
	"strings"

	"github.com/Murali1801/Wareiq-API/internal/models"
)

// Исторически фронтенды слали order id под разными именами.
var orderIDAliases = []string{"orderId", "order_id", "orderid"}

// Parse extracts orderId (all spelling variants), mobile and awb from the
// query string, falling back to form values on POST.
func Parse(r *http.Request) models.LookupRequest {
	get := func(name string) string {
		if v := r.URL.Query().Get(name); v != "" {
			return strings.TrimSpace(v)
		}
		if r.Method == http.MethodPost {
			return strings.TrimSpace(r.PostFormValue(name))
		}
		return ""
	}

	var orderID string
	for _, alias := range orderIDAliases {
		if v := get(alias); v != "" {
			orderID = v
			break
		}
	}

	return models.LookupRequest{
		OrderID: orderID,
		Mobile:  get("mobile"),
		AWB:     get("awb"),
	}
}

// Kind classifies a request for the analytics journal.
func Kind(req models.LookupRequest) string {
	switch {
	case req.AWB != "" && (req.OrderID != "" || req.Mobile != ""):
		return models.SearchKindMixed
	case req.OrderID != "":
		return models.SearchKindOrderID
	case req.AWB != "":
		return models.SearchKindAWB
	default:
		return models.SearchKindUnknown
	}
}

// Value is the search value recorded alongside Kind.
func Value(req models.LookupRequest) string {
	switch Kind(req) {
	case models.SearchKindMixed:
		return "AWB+Order"
	case models.SearchKindOrderID:
		return req.OrderID
	case models.SearchKindAWB:
		return req.AWB
	default:
		return ""
	}
}
