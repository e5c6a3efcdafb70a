// Package analytics is the best-effort side channel: it aggregates every
// terminal lookup outcome without ever influencing the primary response.
package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Murali1801/Wareiq-API/internal/broker/messages"
	"github.com/Murali1801/Wareiq-API/internal/cache"
	"github.com/Murali1801/Wareiq-API/internal/models"
	"github.com/Murali1801/Wareiq-API/internal/visitor"
	"github.com/pkg/errors"
)

const statsCacheKey = "stats:global"

// ErrInvalidMessage marks a payload that will never apply no matter how many
// times it is redelivered. Consumers should skip such messages.
var ErrInvalidMessage = errors.New("invalid lookup message")

type Store interface {
	ApplyLookupEvent(ctx context.Context, ev models.LookupEvent) error
	GetGlobalStats(ctx context.Context) (models.GlobalStats, error)
}

type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Service struct {
	store    Store
	producer Publisher
	// detached publishes to Kafka instead of writing in-request; durability
	// then comes from the broker, not from the request lifecycle.
	detached bool

	cache    cache.BytesCache
	statsTTL time.Duration
}

func New(store Store, producer Publisher, detached bool) *Service {
	return &Service{store: store, producer: producer, detached: detached}
}

func (s *Service) WithStatsCache(c cache.BytesCache, ttl time.Duration) *Service {
	s.cache = c
	s.statsTTL = ttl
	return s
}

// Record writes exactly one event for one terminal outcome. It never returns:
// failures here are logged and swallowed, the caller's response is already
// decided. In sync mode it returns only after the write attempt finished, so
// the process can safely die right after the response is flushed.
func (s *Service) Record(ctx context.Context, meta visitor.Meta, searchKind, searchValue, outcome, errorDetail string) {
	detail := errorDetail
	if detail == "" {
		detail = "OK"
	}
	slog.Info("lookup recorded",
		"outcome", outcome,
		"kind", searchKind,
		"value", searchValue,
		"visitor", meta.VisitorID(),
		"detail", detail,
	)

	ev := models.LookupEvent{
		EventTime:   time.Now().UTC(),
		VisitorID:   meta.VisitorID(),
		SearchKind:  searchKind,
		SearchValue: searchValue,
		Outcome:     outcome,
		ErrorDetail: errorDetail,
		IsMobile:    meta.IsMobile,
		UserAgent:   meta.UserAgent,
		City:        meta.City,
		Country:     meta.Country,
	}

	var err error
	if s.detached && s.producer != nil {
		err = s.publish(ctx, ev)
	} else {
		err = s.store.ApplyLookupEvent(ctx, ev)
	}
	if err != nil {
		slog.Error("analytics write failed", "visitor", ev.VisitorID, "error", err.Error())
	}
}

func (s *Service) publish(ctx context.Context, ev models.LookupEvent) error {
	msg := messages.LookupRecorded{
		EventTime:   ev.EventTime,
		VisitorID:   ev.VisitorID,
		SearchKind:  ev.SearchKind,
		SearchValue: ev.SearchValue,
		Outcome:     ev.Outcome,
		ErrorDetail: ev.ErrorDetail,
		IsMobile:    ev.IsMobile,
		UserAgent:   ev.UserAgent,
		City:        ev.City,
		Country:     ev.Country,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal lookup message")
	}
	return s.producer.Publish(ctx, []byte(ev.VisitorID), b)
}

// ApplyMessage is the worker half of detached mode: one Kafka message becomes
// the same aggregation transaction the sync path runs.
func (s *Service) ApplyMessage(ctx context.Context, value []byte) error {
	var msg messages.LookupRecorded
	if err := json.Unmarshal(value, &msg); err != nil {
		return errors.Wrapf(ErrInvalidMessage, "unmarshal: %v", err)
	}
	if msg.VisitorID == "" {
		return errors.Wrap(ErrInvalidMessage, "visitor_id is required")
	}
	if msg.EventTime.IsZero() {
		msg.EventTime = time.Now().UTC()
	}

	return s.store.ApplyLookupEvent(ctx, models.LookupEvent{
		EventTime:   msg.EventTime,
		VisitorID:   msg.VisitorID,
		SearchKind:  msg.SearchKind,
		SearchValue: msg.SearchValue,
		Outcome:     msg.Outcome,
		ErrorDetail: msg.ErrorDetail,
		IsMobile:    msg.IsMobile,
		UserAgent:   msg.UserAgent,
		City:        msg.City,
		Country:     msg.Country,
	})
}

// Stats reads the global aggregate through the short-TTL snapshot cache.
// Кэш best-effort: любой его сбой — просто поход в БД.
func (s *Service) Stats(ctx context.Context) (models.GlobalStats, error) {
	if s.cache != nil && s.statsTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, statsCacheKey); err == nil && ok {
			var st models.GlobalStats
			if json.Unmarshal(b, &st) == nil {
				return st, nil
			}
		}
	}

	st, err := s.store.GetGlobalStats(ctx)
	if err != nil {
		return models.GlobalStats{}, err
	}

	if s.cache != nil && s.statsTTL > 0 {
		b, _ := json.Marshal(st)
		_ = s.cache.Set(ctx, statsCacheKey, b, s.statsTTL)
	}
	return st, nil
}
