package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-resume/config"
	"github.com/marcelsud/webhook-resume/gateway"
	"github.com/marcelsud/webhook-resume/kinds"
	"github.com/marcelsud/webhook-resume/registry"
)

// Suspender is the slice of the suspension registry the wait endpoints
// use.
type Suspender interface {
	Suspend(ctx context.Context, kind, id string, ttl time.Duration) (*registry.Waiter, error)
	Cancel(ctx context.Context, id string) bool
}

// Handlers sets up the gateway API routes
func Handlers(ctx context.Context, gatewayService gateway.UseCase, reg Suspender, kindLoader *kinds.Loader, cfg *config.Config, metricsHandler http.Handler) *chi.Mux {
	logger := httplog.NewLogger("webhook-resume", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		// Inbound webhook deliveries must be acknowledged fast
		r.With(middleware.Timeout(30 * time.Second)).
			Post("/hooks/{kind}", postHook(gatewayService, kindLoader).ServeHTTP)

		/* Wait endpoints long-poll until the matching webhook arrives;
		 * their duration is bounded by the registry TTL, not by an
		 * HTTP timeout middleware
		 */
		r.Post("/waits/{kind}", postWait(reg, kindLoader, cfg).ServeHTTP)
		r.Delete("/waits/{kind}/{correlation_id}", deleteWait(reg).ServeHTTP)
	})

	return r
}
