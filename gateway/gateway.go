package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-resume/kinds"
	"github.com/marcelsud/webhook-resume/webhook"
	"github.com/marcelsud/webhook-resume/webhook/correlate"
	"github.com/marcelsud/webhook-resume/webhook/decode"
)

/* Dispatch Gateway: the single entry point for inbound webhook
 * deliveries. Picks the decoder/validator/resolver triple by kind,
 * derives the correlation id and hands the event to the suspension
 * registry. Uses pointer semantics as it's an API, not data
 */

// ErrUnknownKind is returned for a webhook kind no configuration
// declares.
var ErrUnknownKind = errors.New("unknown webhook kind")

// UseCase defines the gateway operation exposed to the HTTP layer
type UseCase interface {
	Handle(ctx context.Context, kindName, contentType string, body []byte) (Outcome, error)
}

// Resolver is the slice of the suspension registry the gateway needs.
type Resolver interface {
	Resolve(ctx context.Context, id string, event webhook.Resolved) bool
}

// Outcome is the gateway's answer to one webhook delivery. The
// external sender only ever sees an acknowledgment; Matched reports
// internally whether a pending wait consumed the event.
type Outcome struct {
	Kind          string
	CorrelationID string
	Matched       bool

	// Handshake outcomes answer synchronously with the challenge and
	// never touch the registry
	Handshake bool
	Challenge string
}

type Service struct {
	Kinds    *kinds.Loader
	Registry Resolver
}

// NewService creates a new gateway service with dependency injection
func NewService(loader *kinds.Loader, registry Resolver) *Service {
	return &Service{
		Kinds:    loader,
		Registry: registry,
	}
}

// Handle runs decode, validate, correlate and resolve for one inbound
// delivery. Decode, validation and correlation failures come back as
// typed errors the HTTP layer maps to client-error statuses; an
// unmatched correlation id is not an error.
func (s *Service) Handle(ctx context.Context, kindName, contentType string, body []byte) (Outcome, error) {
	kind, err := s.Kinds.Get(kindName)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownKind, kindName)
	}

	payload, err := decode.Decode(contentType, body)
	if err != nil {
		return Outcome{}, fmt.Errorf("decoding %s webhook: %w", kindName, err)
	}

	event, err := kind.Schema.Apply(kind.Name, payload)
	if err != nil {
		return Outcome{}, fmt.Errorf("validating %s webhook: %w", kindName, err)
	}

	if kind.Handshake && event.IsHandshake() {
		return Outcome{
			Kind:      kind.Name,
			Handshake: true,
			Challenge: event.Challenge(),
		}, nil
	}

	id, err := correlate.ResolveID(kind.Rule, kind.SessionField, event)
	if err != nil {
		return Outcome{}, fmt.Errorf("correlating %s webhook: %w", kindName, err)
	}

	matched := s.Registry.Resolve(ctx, id, webhook.Resolved{
		Kind:          kind.Name,
		CorrelationID: id,
		Fields:        event.Fields,
		ReceivedAt:    time.Now(),
	})

	return Outcome{
		Kind:          kind.Name,
		CorrelationID: id,
		Matched:       matched,
	}, nil
}
