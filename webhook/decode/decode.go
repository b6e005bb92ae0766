package decode

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/marcelsud/webhook-resume/webhook"
)

/* Payload Decoder: turns a raw inbound HTTP body into a normalized
 * webhook.Payload. Pure function of content type and body; the two
 * supported encodings are application/x-www-form-urlencoded and
 * application/json.
 */

const (
	ReasonUnsupportedContentType = "unsupported content-type"
	ReasonMalformedBody          = "malformed body"
)

// envelopeField is the conventional field whose value is itself a
// JSON-encoded document. Slack-style interactive senders post
// form bodies of the shape payload=<json>.
const envelopeField = "payload"

// Error reports a decode failure. Reason is one of the Reason*
// constants; Err carries the underlying parse error when there is one.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode: %s", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Decode parses body according to contentType and returns the
// normalized payload.
//
// Form bodies are parsed as flat key/value pairs. Values that carry a
// JSON object or array (leading '{' or '[') are parsed and the parsed
// structure substituted for the raw string; the literals "true" and
// "false" become booleans; everything else stays a string. The
// conventional "payload" envelope field must itself be valid JSON.
//
// JSON bodies are parsed whole. A top-level "payload" field holding a
// JSON-encoded object string replaces the outer body (double-encoded
// envelopes from certain senders).
func Decode(contentType string, body []byte) (webhook.Payload, error) {
	switch {
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		return decodeForm(body)
	case strings.Contains(contentType, "application/json"):
		return decodeJSON(body)
	default:
		return nil, &Error{Reason: ReasonUnsupportedContentType}
	}
}

func decodeForm(body []byte) (webhook.Payload, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, &Error{Reason: ReasonMalformedBody, Err: err}
	}

	payload := make(webhook.Payload, len(values))
	for key := range values {
		raw := values.Get(key)

		switch {
		case key == envelopeField:
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
				return nil, &Error{Reason: ReasonMalformedBody, Err: fmt.Errorf("parsing %s field: %w", envelopeField, err)}
			}
			payload[key] = parsed
		case looksLikeJSON(raw):
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
				// Not actually JSON, keep the raw string
				payload[key] = raw
				continue
			}
			payload[key] = parsed
		case raw == "true":
			payload[key] = true
		case raw == "false":
			payload[key] = false
		default:
			payload[key] = raw
		}
	}

	return unwrapEnvelope(payload), nil
}

func decodeJSON(body []byte) (webhook.Payload, error) {
	var payload webhook.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Reason: ReasonMalformedBody, Err: err}
	}

	// Double-encoded envelope: {"payload": "<json-string>"}
	if raw, ok := payload[envelopeField].(string); ok {
		var inner webhook.Payload
		if err := json.Unmarshal([]byte(raw), &inner); err == nil {
			return inner, nil
		}
	}

	return unwrapEnvelope(payload), nil
}

/* unwrapEnvelope promotes an already-parsed envelope object to the top
 * level so that validation sees the sender's actual fields. Applies to
 * form bodies of the shape payload=<json-object> and to JSON bodies
 * where the envelope value is a plain object rather than a string.
 */
func unwrapEnvelope(payload webhook.Payload) webhook.Payload {
	inner, ok := payload[envelopeField].(map[string]any)
	if !ok {
		return payload
	}
	return webhook.Payload(inner)
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
