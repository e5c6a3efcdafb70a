package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Murali1801/Wareiq-API/internal/broker/messages"
	"github.com/Murali1801/Wareiq-API/internal/models"
	"github.com/Murali1801/Wareiq-API/internal/visitor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	applied  []models.LookupEvent
	applyErr error

	stats    models.GlobalStats
	statsErr error
	getCalls int
}

func (f *fakeStore) ApplyLookupEvent(ctx context.Context, ev models.LookupEvent) error {
	f.applied = append(f.applied, ev)
	return f.applyErr
}

func (f *fakeStore) GetGlobalStats(ctx context.Context) (models.GlobalStats, error) {
	f.getCalls++
	return f.stats, f.statsErr
}

type fakeProducer struct {
	keys   [][]byte
	values [][]byte
	err    error
}

func (f *fakeProducer) Publish(ctx context.Context, key, value []byte) error {
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
	return f.err
}

type fakeCache struct {
	m map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, ok := c.m[key]
	return b, ok, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.m[key] = value
	return nil
}

func meta() visitor.Meta {
	return visitor.Meta{
		IP:        "1.2.3.4",
		UserAgent: "Mobile Safari",
		City:      "Mumbai",
		Country:   "IN",
		IsMobile:  true,
	}
}

func TestRecord_SyncWritesOneEvent(t *testing.T) {
	st := &fakeStore{}
	s := New(st, nil, false)

	s.Record(context.Background(), meta(), models.SearchKindOrderID, "ORD123", models.OutcomePending, "Confirmed, No AWB")

	require.Len(t, st.applied, 1)
	ev := st.applied[0]
	require.Equal(t, meta().VisitorID(), ev.VisitorID)
	require.Equal(t, models.SearchKindOrderID, ev.SearchKind)
	require.Equal(t, "ORD123", ev.SearchValue)
	require.Equal(t, models.OutcomePending, ev.Outcome)
	require.Equal(t, "Confirmed, No AWB", ev.ErrorDetail)
	require.True(t, ev.IsMobile)
	require.False(t, ev.EventTime.IsZero())
}

func TestRecord_SwallowsStoreError(t *testing.T) {
	st := &fakeStore{applyErr: errors.New("pg down")}
	s := New(st, nil, false)

	require.NotPanics(t, func() {
		s.Record(context.Background(), meta(), models.SearchKindAWB, "A", models.OutcomeFailed, "Tracking Info Not Found")
	})
	require.Len(t, st.applied, 1)
}

func TestRecord_DetachedPublishes(t *testing.T) {
	st := &fakeStore{}
	pr := &fakeProducer{}
	s := New(st, pr, true)

	s.Record(context.Background(), meta(), models.SearchKindAWB, "AWB999", models.OutcomeSuccess, "")

	require.Empty(t, st.applied, "detached mode must not write in-request")
	require.Len(t, pr.values, 1)
	require.Equal(t, []byte(meta().VisitorID()), pr.keys[0])

	var msg messages.LookupRecorded
	require.NoError(t, json.Unmarshal(pr.values[0], &msg))
	require.Equal(t, models.OutcomeSuccess, msg.Outcome)
	require.Equal(t, "AWB999", msg.SearchValue)
}

func TestApplyMessage_RoundTrip(t *testing.T) {
	st := &fakeStore{}
	pr := &fakeProducer{}
	producerSide := New(st, pr, true)
	producerSide.Record(context.Background(), meta(), models.SearchKindOrderID, "O", models.OutcomeFailed, "Order Not Found")

	workerStore := &fakeStore{}
	worker := New(workerStore, nil, false)
	require.NoError(t, worker.ApplyMessage(context.Background(), pr.values[0]))

	require.Len(t, workerStore.applied, 1)
	require.Equal(t, models.OutcomeFailed, workerStore.applied[0].Outcome)
	require.Equal(t, "Order Not Found", workerStore.applied[0].ErrorDetail)
	require.Equal(t, meta().VisitorID(), workerStore.applied[0].VisitorID)
}

func TestApplyMessage_Invalid(t *testing.T) {
	worker := New(&fakeStore{}, nil, false)
	require.ErrorIs(t, worker.ApplyMessage(context.Background(), []byte("{not json")), ErrInvalidMessage)
	require.ErrorIs(t, worker.ApplyMessage(context.Background(), []byte(`{"outcome":"success"}`)), ErrInvalidMessage)
}

func TestStats_CacheHitSkipsStore(t *testing.T) {
	st := &fakeStore{}
	c := &fakeCache{m: map[string][]byte{}}
	s := New(st, nil, false).WithStatsCache(c, time.Minute)

	want := models.GlobalStats{TotalLookups: 42, UniqueVisitors: 7, LastActivity: time.Now().UTC()}
	b, _ := json.Marshal(want)
	c.m["stats:global"] = b

	got, err := s.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), got.TotalLookups)
	require.Zero(t, st.getCalls)
}

func TestStats_MissFillsCache(t *testing.T) {
	st := &fakeStore{stats: models.GlobalStats{TotalLookups: 5, UniqueVisitors: 2}}
	c := &fakeCache{m: map[string][]byte{}}
	s := New(st, nil, false).WithStatsCache(c, time.Minute)

	got, err := s.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), got.TotalLookups)
	require.Equal(t, 1, st.getCalls)
	require.Contains(t, c.m, "stats:global")
}
