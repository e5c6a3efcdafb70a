package trackhttp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Murali1801/Wareiq-API/internal/models"
	"github.com/Murali1801/Wareiq-API/internal/request"
	"github.com/Murali1801/Wareiq-API/internal/services/analytics"
	"github.com/Murali1801/Wareiq-API/internal/services/resolver"
	"github.com/Murali1801/Wareiq-API/internal/visitor"
)

type Handler struct {
	resolver  *resolver.Service
	analytics *analytics.Service
	auth      func() string
}

func NewHandler(res *resolver.Service, an *analytics.Service, auth func() string) *Handler {
	return &Handler{resolver: res, analytics: an, auth: auth}
}

// trackOrder is the single public operation. The analytics record is written
// (or at least attempted) before any response byte goes out, so a platform
// that kills the process right after the flush cannot lose the event.
func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meta := visitor.FromRequest(r)
	req := request.Parse(r)
	kind := request.Kind(req)
	value := request.Value(req)

	auth := h.auth()
	if auth == "" {
		slog.Error("WAREIQ_AUTH_HEADER missing")
		writeError(w, http.StatusInternalServerError, "Server Error: Configuration Missing")
		return
	}

	res, err := h.resolver.Resolve(ctx, auth, req)
	if err != nil {
		if le, ok := err.(*resolver.LookupError); ok {
			h.analytics.Record(ctx, meta, kind, value, models.OutcomeFailed, le.Detail)
			writeError(w, le.Status, le.Message)
			return
		}
		slog.Error("lookup failed unexpectedly", "error", err.Error())
		h.analytics.Record(ctx, meta, models.SearchKindUnknown, "SYSTEM", models.OutcomeError, err.Error())
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if res.Pending != nil {
		h.analytics.Record(ctx, meta, kind, value, models.OutcomePending, "Confirmed, No AWB")
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "processing",
			"order_id":   res.Pending.OrderID,
			"order_date": res.Pending.OrderDate,
			"message":    "Order confirmed, tracking generating.",
		})
		return
	}

	h.analytics.Record(ctx, meta, kind, value, models.OutcomeSuccess, "")
	writeJSON(w, http.StatusOK, res.Tracking)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.analytics.Stats(r.Context())
	if err != nil {
		slog.Error("read global stats", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
