package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-resume/config"
	"github.com/marcelsud/webhook-resume/kinds"
	"github.com/marcelsud/webhook-resume/registry"
	"github.com/marcelsud/webhook-resume/webhook"
)

// waitRequest registers a pending wait for a correlation id
type waitRequest struct {
	CorrelationID  string `json:"correlation_id"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// waitResponse carries the resolved event back to the waiting caller
type waitResponse struct {
	Status string           `json:"status"`
	Event  webhook.Resolved `json:"event"`
}

// postWait handles POST /v1/waits/:kind
// It long-polls: the response is written when the matching webhook
// arrives, the wait expires, or the caller goes away.
func postWait(reg Suspender, kindLoader *kinds.Loader, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kindName := chi.URLParam(r, "kind")
		kind, err := kindLoader.Get(kindName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		var req waitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.CorrelationID == "" {
			http.Error(w, "correlation_id is required", http.StatusBadRequest)
			return
		}

		ttl := kind.GetWaitTTL(cfg)
		if req.TimeoutSeconds > 0 {
			ttl = time.Duration(req.TimeoutSeconds) * time.Second
		}

		waiter, err := reg.Suspend(r.Context(), kindName, req.CorrelationID, ttl)
		if err != nil {
			if errors.Is(err, registry.ErrAlreadyPending) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resolved, err := waiter.Wait(r.Context())
		switch {
		case err == nil:
			w.Header().Set("Content-Type", "application/json")
			response := waitResponse{Status: "resolved", Event: resolved}
			if err := json.NewEncoder(w).Encode(response); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		case errors.Is(err, registry.ErrTimeout):
			http.Error(w, "wait expired before a matching webhook arrived", http.StatusRequestTimeout)
		case errors.Is(err, registry.ErrCancelled):
			http.Error(w, "wait cancelled", http.StatusGone)
		default:
			/* Caller went away mid-wait. Remove the entry so a stale
			 * webhook later arriving for this id is unmatched instead
			 * of resuming a dead instance; the request context is
			 * already done, cancellation needs its own
			 */
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			reg.Cancel(ctx, req.CorrelationID)
		}
	})
}

// deleteWait handles DELETE /v1/waits/:kind/:correlation_id
func deleteWait(reg Suspender) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "correlation_id")
		if id == "" {
			http.Error(w, "correlation_id is required", http.StatusBadRequest)
			return
		}

		if !reg.Cancel(r.Context(), id) {
			http.Error(w, "no pending wait for correlation id", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
