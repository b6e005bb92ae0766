package kinds

import (
	"fmt"
	"time"

	"github.com/marcelsud/webhook-resume/config"
	"github.com/marcelsud/webhook-resume/webhook/correlate"
	"github.com/marcelsud/webhook-resume/webhook/schema"
)

/* Kind represents one webhook kind configuration
 * Fixes the decoder/validator/resolver triple for that kind at load
 * time: the declared schema, the correlation rule, and the wait TTL
 */
type Kind struct {
	Name         string
	Schema       schema.Schema
	Rule         correlate.Rule
	SessionField string // session rule only; "" means the default
	Handshake    bool   // accept the url_verification sub-shape
	WaitTTL      *int   // Optional: seconds, overrides the global default

	// SigningSecret, when non-empty, requires inbound deliveries of
	// this kind to carry a valid request signature.
	SigningSecret string
}

// Validate checks if the kind configuration is valid.
func (k *Kind) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("kind name cannot be empty")
	}
	if err := k.Rule.Validate(); err != nil {
		return fmt.Errorf("invalid correlation rule for kind %s: %w", k.Name, err)
	}
	if err := k.Schema.Validate(); err != nil {
		return fmt.Errorf("invalid schema for kind %s: %w", k.Name, err)
	}
	if k.SessionField != "" && k.Rule != correlate.Session {
		return fmt.Errorf("session_field is only valid with the session rule for kind %s", k.Name)
	}
	if k.Handshake && k.Schema.Discriminator == "" {
		return fmt.Errorf("handshake requires a discriminated schema for kind %s", k.Name)
	}
	if k.WaitTTL != nil && *k.WaitTTL <= 0 {
		return fmt.Errorf("wait_ttl_seconds must be positive for kind %s", k.Name)
	}
	return nil
}

// GetWaitTTL returns the TTL for pending waits of this kind
// Priority: kind-specific > config > default (15 minutes)
func (k *Kind) GetWaitTTL(cfg *config.Config) time.Duration {
	seconds := 15 * 60 // default
	if cfg != nil {
		seconds = cfg.GetWaitTTLSeconds()
	}
	if k.WaitTTL != nil {
		seconds = *k.WaitTTL
	}
	return time.Duration(seconds) * time.Second
}
