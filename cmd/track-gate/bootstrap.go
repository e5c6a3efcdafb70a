package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Murali1801/Wareiq-API/config"
	"github.com/Murali1801/Wareiq-API/internal/api/trackhttp"
	"github.com/Murali1801/Wareiq-API/internal/broker/kafka"
	"github.com/Murali1801/Wareiq-API/internal/cache/rediscache"
	"github.com/Murali1801/Wareiq-API/internal/integrations/wareiq"
	"github.com/Murali1801/Wareiq-API/internal/services/analytics"
	"github.com/Murali1801/Wareiq-API/internal/services/resolver"
	"github.com/Murali1801/Wareiq-API/internal/storage/pganalytics"
)

type trackGateApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     trackGateOpts
	handler  *trackhttp.Handler
	closeFns []func()
}

func mustBootstrapTrackGate() *trackGateApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.TrackGate.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	topic := cfg.Kafka.LookupRecordedTopicName
	if topic == "" {
		topic = "lookup.recorded"
	}
	statsTTL := time.Duration(cfg.TrackGate.StatsCacheTTLSeconds) * time.Second
	if statsTTL <= 0 {
		statsTTL = time.Minute
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st := mustOpenPostgresWithRetry(connString, 60*time.Second)

	var closeFns []func()
	closeFns = append(closeFns, st.Close)

	detached := cfg.TrackGate.AnalyticsMode == "detached"
	var producer analytics.Publisher
	if detached {
		brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
		p := kafka.NewProducer(brokers, topic)
		closeFns = append(closeFns, func() { _ = p.Close() })
		producer = p
	}

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	an := analytics.New(st, producer, detached).
		WithStatsCache(rediscache.New(redisAddr), statsTTL)

	res := resolver.New(wareiq.New(cfg.TrackGate.WareIQBaseURL))

	handler := trackhttp.NewHandler(res, an, func() string {
		return os.Getenv("WAREIQ_AUTH_HEADER")
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &trackGateApp{
		ctx:    ctx,
		cancel: cancel,
		opts: trackGateOpts{
			httpAddr:       httpAddr,
			swaggerPath:    os.Getenv("swaggerPath"),
			allowedOrigins: cfg.TrackGate.AllowedOrigins,
		},
		handler:  handler,
		closeFns: closeFns,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pganalytics.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pganalytics.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *trackGateApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for _, f := range a.closeFns {
		f()
	}
}

func (a *trackGateApp) Run() error {
	return runTrackGate(a.ctx, a.opts, a.handler)
}
