// Package wareiq is the thin contract to the WareIQ aggregator: order search
// and shipment tracking. No retries here; the first failure is terminal for
// the request.
package wareiq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Murali1801/Wareiq-API/internal/models"
	"github.com/pkg/errors"
)

// ErrNotFound covers 404-class upstream answers for both operations.
var ErrNotFound = errors.New("wareiq: not found")

// UpstreamError is any non-2xx, non-404 answer. StatusCode 0 means the
// transport itself failed.
type UpstreamError struct {
	Op         string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("wareiq: %s transport failure", e.Op)
	}
	return fmt.Sprintf("wareiq: %s http %d", e.Op, e.StatusCode)
}

type Gateway interface {
	// SearchOrders matches orders by id. Returns the normalized rows plus the
	// upstream's total match count (0 when the upstream omits it).
	SearchOrders(ctx context.Context, auth, orderID string) ([]models.Order, int, error)
	// TrackShipment returns the raw tracking payload, passed through verbatim.
	TrackShipment(ctx context.Context, auth, awb string) (map[string]any, error)
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://track.wareiq.com"
	}
	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Ответ поиска duck-typed: вложенные блоки могут отсутствовать целиком.
type orderRow struct {
	OrderID         string `json:"order_id"`
	OrderDate       string `json:"order_date"`
	CustomerDetails *struct {
		Phone string `json:"phone"`
	} `json:"customer_details"`
	ShippingDetails *struct {
		AWB string `json:"awb"`
	} `json:"shipping_details"`
}

type orderSearchResp struct {
	Data  []orderRow `json:"data"`
	Total int        `json:"total"`
}

func (c *Client) SearchOrders(ctx context.Context, auth, orderID string) ([]models.Order, int, error) {
	payload := map[string]any{
		"search":   map[string]any{"order_details": orderID},
		"page":     1,
		"per_page": 1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, errors.Wrap(err, "marshal search payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/orders/v2/orders/b2c/all", bytes.NewReader(body))
	if err != nil {
		return nil, 0, errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(&UpstreamError{Op: "order search"}, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, 0, ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		return nil, 0, &UpstreamError{Op: "order search", StatusCode: resp.StatusCode}
	}

	var r orderSearchResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, 0, errors.Wrap(err, "decode search response")
	}

	out := make([]models.Order, 0, len(r.Data))
	for _, row := range r.Data {
		o := models.Order{
			OrderID:   row.OrderID,
			OrderDate: row.OrderDate,
		}
		if row.CustomerDetails != nil {
			o.CustomerPhone = row.CustomerDetails.Phone
		}
		if row.ShippingDetails != nil {
			o.AWB = row.ShippingDetails.AWB
		}
		out = append(out, o)
	}

	total := r.Total
	if total == 0 {
		total = len(out)
	}
	return out, total, nil
}

func (c *Client) TrackShipment(ctx context.Context, auth, awb string) (map[string]any, error) {
	u := c.baseURL + "/tracking/v1/shipments/" + url.PathEscape(awb) + "/all"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(&UpstreamError{Op: "tracking"}, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		return nil, &UpstreamError{Op: "tracking", StatusCode: resp.StatusCode}
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode tracking response")
	}
	return payload, nil
}
