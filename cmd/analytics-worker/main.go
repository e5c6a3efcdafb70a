package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Murali1801/Wareiq-API/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stats := &workerStats{startedAtUnixNano: time.Now().UnixNano()}

	// Ops server is optional: without swaggerPath the worker still consumes.
	if sp := os.Getenv("swaggerPath"); sp != "" {
		go func() {
			opts := workerHTTPOpts{
				httpAddr:    cfg.TrackGate.WorkerHTTPAddr,
				swaggerPath: sp,
				stats:       stats,
			}
			if err := runWorkerHTTPServer(ctx, opts); err != nil && ctx.Err() == nil {
				slog.Error("worker http server failed", "error", err.Error())
			}
		}()
	}

	if err := RunAnalyticsWorker(ctx, cfg, defaultWorkerFactories(), stats); err != nil && err != context.Canceled {
		panic(err)
	}
}
