package webhook

import "time"

/* Core value types of the resumption gateway
 * Uses value semantics as they represent data, not behavior
 */

// Payload is a decoded inbound webhook body: string keys mapped to
// JSON-compatible values (strings, bools, float64 numbers, nested
// maps and slices).
type Payload map[string]any

// Event is a Payload that passed schema validation for its kind.
// Downstream consumers may assume every required field declared by the
// kind is present with the correct primitive type — validation is the
// one chokepoint enforcing this.
type Event struct {
	// Kind is the webhook kind this event was validated against
	Kind string

	// Type is the value of the kind's discriminator field when the
	// kind declares sub-shapes (e.g. "url_verification",
	// "block_actions"). Empty for flat schemas.
	Type string

	// Fields holds the validated payload
	Fields Payload
}

// Resolved is the response payload delivered to whichever party is
// awaiting the matching correlation id.
type Resolved struct {
	Kind          string    `json:"kind"`
	CorrelationID string    `json:"correlation_id"`
	Fields        Payload   `json:"fields"`
	ReceivedAt    time.Time `json:"received_at"`
}

// IsHandshake reports whether the event is an endpoint-ownership
// verification request. Handshakes are answered synchronously with the
// echoed challenge and never reach the suspension registry.
func (e Event) IsHandshake() bool {
	return e.Type == "url_verification"
}

// Challenge returns the handshake challenge value, or "" when absent.
func (e Event) Challenge() string {
	c, _ := e.Fields["challenge"].(string)
	return c
}
