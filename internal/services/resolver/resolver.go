// Package resolver turns partial, untrusted shipment identifiers into an
// authorized tracking answer. It is the only place that decides which upstream
// calls happen and in what order: order search strictly before tracking lookup,
// and all cheap validation strictly before any network I/O.
package resolver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Murali1801/Wareiq-API/internal/integrations/wareiq"
	"github.com/Murali1801/Wareiq-API/internal/models"
	"github.com/Murali1801/Wareiq-API/internal/phone"
	"github.com/pkg/errors"
)

// notFoundMessage намеренно одинаковое для "заказа нет" и "телефон не совпал":
// неаутентифицированный вызов не должен подтверждать существование заказа.
const notFoundMessage = "Order not found or details do not match."

// LookupError is the client-facing failure: Status and Message are safe to
// return; Detail goes only to the analytics journal and the operational log.
type LookupError struct {
	Status  int
	Message string
	Detail  string
}

func (e *LookupError) Error() string {
	return e.Detail
}

// Pending is the terminal "order confirmed, not yet shipped" answer.
type Pending struct {
	OrderID   string
	OrderDate string
}

// Result is one of: Pending set, or Tracking set.
type Result struct {
	Pending  *Pending
	Tracking map[string]any
}

type Service struct {
	gw wareiq.Gateway
}

func New(gw wareiq.Gateway) *Service {
	return &Service{gw: gw}
}

// Resolve runs the full state machine for one request. auth is the upstream
// credential; req is already normalized. Returns either a Result or a
// *LookupError; any other error shape is an internal failure.
func (s *Service) Resolve(ctx context.Context, auth string, req models.LookupRequest) (*Result, error) {
	// Mutual exclusion first, before touching anything upstream.
	if req.AWB != "" && (req.OrderID != "" || req.Mobile != "") {
		return nil, &LookupError{
			Status:  http.StatusBadRequest,
			Message: "Invalid Request: Provide EITHER AWB OR OrderID/Mobile.",
			Detail:  "Invalid Parameters",
		}
	}

	finalAWB := req.AWB

	if finalAWB == "" && req.OrderID != "" {
		if req.Mobile == "" {
			return nil, &LookupError{
				Status:  http.StatusBadRequest,
				Message: "Mobile number is required.",
				Detail:  "Missing Mobile",
			}
		}
		if !phone.ValidIndianMobile(req.Mobile) {
			return nil, &LookupError{
				Status:  http.StatusBadRequest,
				Message: "Mobile number must be exactly 10 digits.",
				Detail:  "Invalid Mobile Format",
			}
		}

		order, lerr := s.searchOrder(ctx, auth, req.OrderID)
		if lerr != nil {
			return nil, lerr
		}

		if !phone.Matches(order.CustomerPhone, req.Mobile) {
			return nil, &LookupError{
				Status:  http.StatusNotFound,
				Message: notFoundMessage,
				Detail:  "Mobile Mismatch",
			}
		}

		if order.AWB == "" {
			orderID := order.OrderID
			if orderID == "" {
				orderID = req.OrderID
			}
			return &Result{Pending: &Pending{OrderID: orderID, OrderDate: order.OrderDate}}, nil
		}
		finalAWB = order.AWB
	}

	if finalAWB != "" {
		return s.track(ctx, auth, finalAWB, req.OrderID)
	}

	return nil, &LookupError{
		Status:  http.StatusBadRequest,
		Message: "Please provide valid tracking details.",
		Detail:  "Missing Parameters",
	}
}

func (s *Service) searchOrder(ctx context.Context, auth, orderID string) (models.Order, *LookupError) {
	orders, total, err := s.gw.SearchOrders(ctx, auth, orderID)
	if err != nil {
		if errors.Is(err, wareiq.ErrNotFound) {
			return models.Order{}, &LookupError{
				Status:  http.StatusNotFound,
				Message: notFoundMessage,
				Detail:  "Order Not Found",
			}
		}
		slog.Error("order search failed", "order_id", orderID, "error", err.Error())
		return models.Order{}, &LookupError{
			Status:  upstreamStatus(err),
			Message: "Order search failed.",
			Detail:  "WareIQ API Error",
		}
	}
	if len(orders) == 0 {
		return models.Order{}, &LookupError{
			Status:  http.StatusNotFound,
			Message: notFoundMessage,
			Detail:  "Order Not Found",
		}
	}
	if total > 1 {
		// Берём первый, как и раньше; дубликаты order id — не наша ошибка,
		// но молчать о них нельзя.
		slog.Warn("order search returned multiple matches", "order_id", orderID, "total", total)
	}
	return orders[0], nil
}

func (s *Service) track(ctx context.Context, auth, awb, suppliedOrderID string) (*Result, error) {
	payload, err := s.gw.TrackShipment(ctx, auth, awb)
	if err != nil {
		if errors.Is(err, wareiq.ErrNotFound) {
			return nil, &LookupError{
				Status:  http.StatusNotFound,
				Message: "Tracking info not found.",
				Detail:  "Tracking Info Not Found",
			}
		}
		slog.Error("tracking lookup failed", "awb", awb, "error", err.Error())
		return nil, &LookupError{
			Status:  upstreamStatus(err),
			Message: "Tracking lookup failed.",
			Detail:  "WareIQ API Error",
		}
	}

	// Backfill: апстрим не всегда возвращает order_id.
	if suppliedOrderID != "" {
		if v, ok := payload["order_id"]; !ok || v == nil || v == "" {
			payload["order_id"] = suppliedOrderID
		}
	}

	return &Result{Tracking: payload}, nil
}

// upstreamStatus passes a real upstream HTTP status through and maps transport
// failures to 500.
func upstreamStatus(err error) int {
	var ue *wareiq.UpstreamError
	if errors.As(err, &ue) && ue.StatusCode >= 400 {
		return ue.StatusCode
	}
	return http.StatusInternalServerError
}
