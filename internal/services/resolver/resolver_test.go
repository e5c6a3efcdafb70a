package resolver

import (
	"context"
	"net/http"
	"testing"

	"github.com/Murali1801/Wareiq-API/internal/integrations/wareiq"
	"github.com/Murali1801/Wareiq-API/internal/integrations/wareiq/fake"
	"github.com/Murali1801/Wareiq-API/internal/models"
	"github.com/stretchr/testify/require"
)

func lookupErr(t *testing.T, err error) *LookupError {
	t.Helper()
	require.Error(t, err)
	le, ok := err.(*LookupError)
	require.True(t, ok, "expected *LookupError, got %T", err)
	return le
}

func TestResolve_MutualExclusion_NoUpstreamCall(t *testing.T) {
	gw := fake.New()
	s := New(gw)

	for _, req := range []models.LookupRequest{
		{AWB: "A1", OrderID: "O1"},
		{AWB: "A1", Mobile: "9876543210"},
		{AWB: "A1", OrderID: "O1", Mobile: "9876543210"},
	} {
		_, err := s.Resolve(context.Background(), "auth", req)
		le := lookupErr(t, err)
		require.Equal(t, http.StatusBadRequest, le.Status)
		require.Equal(t, "Invalid Parameters", le.Detail)
	}
	require.Zero(t, gw.SearchCalls)
	require.Zero(t, gw.TrackCalls)
}

func TestResolve_MobileGate_NoUpstreamCall(t *testing.T) {
	gw := fake.New()
	s := New(gw)

	_, err := s.Resolve(context.Background(), "auth", models.LookupRequest{OrderID: "O1"})
	le := lookupErr(t, err)
	require.Equal(t, http.StatusBadRequest, le.Status)
	require.Equal(t, "Missing Mobile", le.Detail)

	for _, mobile := range []string{"98765", "98765432101", "98765 43210", "abcdefghij"} {
		_, err := s.Resolve(context.Background(), "auth", models.LookupRequest{OrderID: "O1", Mobile: mobile})
		le := lookupErr(t, err)
		require.Equal(t, http.StatusBadRequest, le.Status)
		require.Equal(t, "Invalid Mobile Format", le.Detail)
	}
	require.Zero(t, gw.SearchCalls)
}

func TestResolve_MissingEverything(t *testing.T) {
	s := New(fake.New())
	_, err := s.Resolve(context.Background(), "auth", models.LookupRequest{})
	le := lookupErr(t, err)
	require.Equal(t, http.StatusBadRequest, le.Status)
	require.Equal(t, "Missing Parameters", le.Detail)
}

func TestResolve_OrderNotFoundAndMismatch_SameStatusAndMessage(t *testing.T) {
	gw := fake.New()
	gw.Orders["KNOWN"] = []models.Order{{OrderID: "KNOWN", CustomerPhone: "+911112223334", AWB: "AWB1"}}
	s := New(gw)

	_, err := s.Resolve(context.Background(), "auth", models.LookupRequest{OrderID: "MISSING", Mobile: "9876543210"})
	notFound := lookupErr(t, err)
	require.Equal(t, http.StatusNotFound, notFound.Status)
	require.Equal(t, "Order Not Found", notFound.Detail)

	_, err = s.Resolve(context.Background(), "auth", models.LookupRequest{OrderID: "KNOWN", Mobile: "9876543210"})
	mismatch := lookupErr(t, err)
	require.Equal(t, http.StatusNotFound, mismatch.Status)
	require.Equal(t, "Mobile Mismatch", mismatch.Detail)

	// Один и тот же ответ наружу: существование заказа не подтверждаем.
	require.Equal(t, notFound.Message, mismatch.Message)
	require.Zero(t, gw.TrackCalls)
}

func TestResolve_EmptySearchData_IsNotFound(t *testing.T) {
	gw := fake.New()
	gw.Orders["EMPTY"] = []models.Order{}
	s := New(gw)

	_, err := s.Resolve(context.Background(), "auth", models.LookupRequest{OrderID: "EMPTY", Mobile: "9876543210"})
	le := lookupErr(t, err)
	require.Equal(t, http.StatusNotFound, le.Status)
	require.Equal(t, "Order Not Found", le.Detail)
}

func TestResolve_PendingWhenNoAWB(t *testing.T) {
	gw := fake.New()
	gw.Orders["ORD123"] = []models.Order{{
		OrderID:       "ORD123",
		OrderDate:     "2025-08-01",
		CustomerPhone: "+919876543210",
	}}
	s := New(gw)

	res, err := s.Resolve(context.Background(), "auth", models.LookupRequest{OrderID: "ORD123", Mobile: "9876543210"})
	require.NoError(t, err)
	require.NotNil(t, res.Pending)
	require.Equal(t, "ORD123", res.Pending.OrderID)
	require.Equal(t, "2025-08-01", res.Pending.OrderDate)
	require.Equal(t, 1, gw.SearchCalls)
	require.Zero(t, gw.TrackCalls, "pending must not trigger a tracking lookup")
}

func TestResolve_OrderWithAWB_TrackedWithBackfill(t *testing.T) {
	gw := fake.New()
	gw.Orders["ORD123"] = []models.Order{{
		OrderID:       "ORD123",
		CustomerPhone: "919876543210",
		AWB:           "AWB999",
	}}
	gw.Shipments["AWB999"] = map[string]any{"awb": "AWB999", "current_status": "In Transit"}
	s := New(gw)

	res, err := s.Resolve(context.Background(), "auth", models.LookupRequest{OrderID: "ORD123", Mobile: "9876543210"})
	require.NoError(t, err)
	require.NotNil(t, res.Tracking)
	require.Equal(t, "ORD123", res.Tracking["order_id"], "order_id backfilled")
	require.Equal(t, 1, gw.SearchCalls)
	require.Equal(t, 1, gw.TrackCalls)
}

func TestResolve_DirectAWB_SkipsSearch(t *testing.T) {
	gw := fake.New()
	gw.Shipments["AWB999"] = map[string]any{"awb": "AWB999", "order_id": "UPSTREAM", "current_status": "Delivered"}
	s := New(gw)

	res, err := s.Resolve(context.Background(), "auth", models.LookupRequest{AWB: "AWB999"})
	require.NoError(t, err)
	require.Zero(t, gw.SearchCalls)
	require.Equal(t, "UPSTREAM", res.Tracking["order_id"], "upstream order_id not overwritten")
}

func TestResolve_TrackingNotFound(t *testing.T) {
	gw := fake.New()
	s := New(gw)

	_, err := s.Resolve(context.Background(), "auth", models.LookupRequest{AWB: "NOPE"})
	le := lookupErr(t, err)
	require.Equal(t, http.StatusNotFound, le.Status)
	require.Equal(t, "Tracking Info Not Found", le.Detail)
}

func TestResolve_UpstreamErrors(t *testing.T) {
	gw := fake.New()
	gw.SearchErr = &wareiq.UpstreamError{Op: "order search", StatusCode: 503}
	s := New(gw)

	_, err := s.Resolve(context.Background(), "auth", models.LookupRequest{OrderID: "O", Mobile: "9876543210"})
	le := lookupErr(t, err)
	require.Equal(t, 503, le.Status, "upstream status passed through")
	require.Equal(t, "WareIQ API Error", le.Detail)

	gw2 := fake.New()
	gw2.TrackErr = &wareiq.UpstreamError{Op: "tracking"} // transport failure
	s2 := New(gw2)
	_, err = s2.Resolve(context.Background(), "auth", models.LookupRequest{AWB: "A"})
	le = lookupErr(t, err)
	require.Equal(t, http.StatusInternalServerError, le.Status)
}
