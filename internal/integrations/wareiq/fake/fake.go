// Package fake is an in-memory WareIQ stand-in for local runs and tests.
package fake

import (
	"context"

	"github.com/Murali1801/Wareiq-API/internal/integrations/wareiq"
	"github.com/Murali1801/Wareiq-API/internal/models"
)

type Gateway struct {
	// Orders by order id; Shipments by awb.
	Orders    map[string][]models.Order
	Shipments map[string]map[string]any

	SearchCalls int
	TrackCalls  int

	SearchErr error
	TrackErr  error
}

func New() *Gateway {
	return &Gateway{
		Orders:    map[string][]models.Order{},
		Shipments: map[string]map[string]any{},
	}
}

func (g *Gateway) SearchOrders(ctx context.Context, auth, orderID string) ([]models.Order, int, error) {
	g.SearchCalls++
	if g.SearchErr != nil {
		return nil, 0, g.SearchErr
	}
	rows, ok := g.Orders[orderID]
	if !ok {
		return nil, 0, wareiq.ErrNotFound
	}
	return rows, len(rows), nil
}

func (g *Gateway) TrackShipment(ctx context.Context, auth, awb string) (map[string]any, error) {
	g.TrackCalls++
	if g.TrackErr != nil {
		return nil, g.TrackErr
	}
	p, ok := g.Shipments[awb]
	if !ok {
		return nil, wareiq.ErrNotFound
	}
	// Копия, чтобы backfill вызывающего не менял данные фейка.
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, nil
}
