package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Murali1801/Wareiq-API/config"
	"github.com/Murali1801/Wareiq-API/internal/broker/kafka"
	"github.com/Murali1801/Wareiq-API/internal/services/analytics"
	"github.com/Murali1801/Wareiq-API/internal/storage/pganalytics"
)

type lookupConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
	Close() error
}

type workerFactories struct {
	newStorage  func(cfg *config.Config) (analytics.Store, func(), error)
	newConsumer func(cfg *config.Config, topic, group string) lookupConsumer
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (analytics.Store, func(), error) {
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			st, err := pganalytics.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newConsumer: func(cfg *config.Config, topic, group string) lookupConsumer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewConsumer(brokers, topic, group)
		},
	}
}

// workerStats — операционные счётчики для ops-эндпоинта /stats.
type workerStats struct {
	startedAtUnixNano int64
	totalApplied      atomic.Int64
	totalErrors       atomic.Int64
	lastErrorMu       sync.Mutex
	lastError         string
}

type workerStatsView struct {
	StartedAt    time.Time `json:"startedAt"`
	TotalApplied int64     `json:"totalApplied"`
	TotalErrors  int64     `json:"totalErrors"`
	LastError    string    `json:"lastError,omitempty"`
}

func (s *workerStats) view() workerStatsView {
	v := workerStatsView{
		StartedAt:    time.Unix(0, s.startedAtUnixNano).UTC(),
		TotalApplied: s.totalApplied.Load(),
		TotalErrors:  s.totalErrors.Load(),
	}
	s.lastErrorMu.Lock()
	v.LastError = s.lastError
	s.lastErrorMu.Unlock()
	return v
}

func (s *workerStats) recordError(err error) {
	s.totalErrors.Add(1)
	s.lastErrorMu.Lock()
	s.lastError = err.Error()
	s.lastErrorMu.Unlock()
}

// RunAnalyticsWorker consumes lookup.recorded and applies each message through
// the same aggregation transaction the sync mode uses. The consume loop
// restarts after failures: непримененное сообщение не закоммичено и приедет
// снова.
func RunAnalyticsWorker(ctx context.Context, cfg *config.Config, f workerFactories, stats *workerStats) error {
	topic := cfg.Kafka.LookupRecordedTopicName
	if topic == "" {
		topic = "lookup.recorded"
	}
	group := cfg.TrackGate.WorkerKafkaConsumerGroup
	if group == "" {
		group = "analytics-worker"
	}

	store, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	svc := analytics.New(store, nil, false)

	consumer := f.newConsumer(cfg, topic, group)
	defer func() { _ = consumer.Close() }()

	slog.Info("analytics worker started", "topic", topic, "group", group)
	for {
		err := consumer.Consume(ctx, func(_key, value []byte) error {
			if err := svc.ApplyMessage(ctx, value); err != nil {
				stats.recordError(err)
				if errors.Is(err, analytics.ErrInvalidMessage) {
					// Повторная доставка не поможет, коммитим и едем дальше.
					slog.Error("skipping invalid message", "error", err.Error())
					return nil
				}
				return err
			}
			stats.totalApplied.Add(1)
			return nil
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("consume loop failed, restarting", "error", err.Error())
		time.Sleep(time.Second)
	}
}
