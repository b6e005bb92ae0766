package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-resume/gateway"
	"github.com/marcelsud/webhook-resume/kinds"
	"github.com/marcelsud/webhook-resume/webhook/correlate"
	"github.com/marcelsud/webhook-resume/webhook/decode"
	"github.com/marcelsud/webhook-resume/webhook/schema"
	"github.com/marcelsud/webhook-resume/webhook/signature"
)

/* HTTP layer DTOs for the dispatch gateway
 * Separate from domain entities to avoid leaking internal structure
 */

// hookResponse acknowledges an inbound webhook delivery
type hookResponse struct {
	Status        string `json:"status"`
	Kind          string `json:"kind"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Matched       bool   `json:"matched"`
}

// challengeResponse echoes a handshake challenge
type challengeResponse struct {
	Challenge string `json:"challenge"`
}

// postHook handles POST /v1/hooks/:kind
func postHook(gatewayService gateway.UseCase, kindLoader *kinds.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		if kind == "" {
			http.Error(w, "kind is required", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		/* Signature verification happens before any payload parsing so
		 * unauthenticated bodies never reach the decoder. Unknown kinds
		 * fall through: the gateway reports those as not found.
		 */
		if k, kerr := kindLoader.Get(kind); kerr == nil && k.SigningSecret != "" {
			if verr := signature.Verify(
				k.SigningSecret,
				r.Header.Get(signature.SignatureHeader),
				r.Header.Get(signature.TimestampHeader),
				body,
				time.Now(),
			); verr != nil {
				http.Error(w, verr.Error(), http.StatusUnauthorized)
				return
			}
		}

		outcome, err := gatewayService.Handle(r.Context(), kind, r.Header.Get("Content-Type"), body)
		if err != nil {
			httpError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if outcome.Handshake {
			if err := json.NewEncoder(w).Encode(challengeResponse{Challenge: outcome.Challenge}); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		/* Whether or not a pending wait matched, the sender gets a 2xx:
		 * webhook platforms cannot act on failure, the discrepancy is
		 * only visible internally
		 */
		response := hookResponse{
			Status:        "accepted",
			Kind:          outcome.Kind,
			CorrelationID: outcome.CorrelationID,
			Matched:       outcome.Matched,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// httpError maps gateway errors to HTTP statuses: unknown kinds are
// 404, everything decode/validate/correlate is a client error.
func httpError(w http.ResponseWriter, err error) {
	var (
		decodeErr *decode.Error
		schemaErr *schema.Error
		corrErr   *correlate.Error
	)

	switch {
	case errors.Is(err, gateway.ErrUnknownKind):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &decodeErr), errors.As(err, &schemaErr), errors.As(err, &corrErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
