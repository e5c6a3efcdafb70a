package trackhttp

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AllowedOrigins []string
	SwaggerPath    string
}

// NewRouter assembles the public surface: the tracking endpoint behind the
// CORS/no-cache middleware, the aggregate stats read, health probes and docs.
func NewRouter(h *Handler, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(corsMiddleware(opts.AllowedOrigins))
		for _, path := range []string{"/api/track-order", "/api/track"} {
			r.Get(path, h.trackOrder)
			r.Post(path, h.trackOrder)
			r.Options(path, func(w http.ResponseWriter, r *http.Request) {})
		}
		r.Get("/stats", h.stats)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	if opts.SwaggerPath != "" {
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFile(w, r, opts.SwaggerPath)
		})
		swaggerURL := "/swagger.json"
		if fi, err := os.Stat(opts.SwaggerPath); err == nil {
			swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
		}
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))
	}

	return r
}
