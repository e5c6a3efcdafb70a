package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Murali1801/Wareiq-API/internal/api/trackhttp"
)

type trackGateOpts struct {
	httpAddr       string
	swaggerPath    string
	allowedOrigins []string

	onListen func(httpAddr string)
}

func runTrackGate(ctx context.Context, opts trackGateOpts, h *trackhttp.Handler) error {
	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	r := trackhttp.NewRouter(h, trackhttp.Options{
		AllowedOrigins: opts.allowedOrigins,
		SwaggerPath:    opts.swaggerPath,
	})

	srv := &http.Server{Handler: r}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(lis)
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
		return ctx.Err()
	case err := <-serveErr:
		return err
	}
}
