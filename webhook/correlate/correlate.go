package correlate

import (
	"fmt"

	"github.com/marcelsud/webhook-resume/webhook"
)

/* Correlation Resolver: derives the stable identifier that maps an
 * inbound event to a previously suspended workflow instance. The rule
 * is fixed per webhook kind. Two events meant for the same instance
 * must produce the same id; events meant for different instances must
 * never collide, or the wrong workflow resumes.
 */

// Rule selects the per-kind derivation of the correlation id.
type Rule int

const (
	// Session takes an explicit session identifier field verbatim
	Session Rule = iota + 1
	// BlockAction composes the container message timestamp with the
	// first action's identifier, so one message carrying several
	// interactive elements yields distinct ids per element
	BlockAction
	// Thread resolves every reply in a thread to the thread root
	// timestamp, so at most one wait per thread is live at a time
	Thread
)

// DefaultSessionField is the session identifier field used when a kind
// does not name its own.
const DefaultSessionField = "sessionId"

// String returns the string representation of the rule.
func (r Rule) String() string {
	switch r {
	case Session:
		return "session"
	case BlockAction:
		return "block_action"
	case Thread:
		return "thread"
	default:
		return "unknown"
	}
}

// NewRule creates a Rule from a string.
func NewRule(s string) Rule {
	switch s {
	case "session":
		return Session
	case "block_action":
		return BlockAction
	case "thread":
		return Thread
	default:
		return 0
	}
}

// Validate checks if the rule is valid.
func (r Rule) Validate() error {
	if r < Session || r > Thread {
		return fmt.Errorf("invalid correlation rule: %d", r)
	}
	return nil
}

// Error reports that no correlation id could be derived.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("correlate: %s", e.Reason)
}

// ResolveID derives the correlation id for a validated event using the
// given rule. sessionField applies to the Session rule only; pass ""
// for the default. ResolveID is a pure function of its arguments.
func ResolveID(rule Rule, sessionField string, event webhook.Event) (string, error) {
	switch rule {
	case Session:
		if sessionField == "" {
			sessionField = DefaultSessionField
		}
		id, ok := event.Fields[sessionField].(string)
		if !ok || id == "" {
			return "", &Error{Reason: fmt.Sprintf("missing %s", sessionField)}
		}
		return id, nil
	case BlockAction:
		return resolveBlockAction(event)
	case Thread:
		return resolveThread(event)
	default:
		return "", &Error{Reason: fmt.Sprintf("unknown rule: %d", rule)}
	}
}

func resolveBlockAction(event webhook.Event) (string, error) {
	container, ok := event.Fields["container"].(map[string]any)
	if !ok {
		return "", &Error{Reason: "missing container"}
	}
	messageTS, ok := container["message_ts"].(string)
	if !ok || messageTS == "" {
		return "", &Error{Reason: "missing container.message_ts"}
	}

	actions, ok := event.Fields["actions"].([]any)
	if !ok || len(actions) == 0 {
		return "", &Error{Reason: "missing actions"}
	}
	first, ok := actions[0].(map[string]any)
	if !ok {
		return "", &Error{Reason: "malformed action entry"}
	}
	actionID, ok := first["action_id"].(string)
	if !ok || actionID == "" {
		return "", &Error{Reason: "missing actions[0].action_id"}
	}

	return messageTS + "-" + actionID, nil
}

/* Threaded replies: the id is the thread root timestamp. An event
 * callback nests the message under "event"; a reply carries thread_ts,
 * the root message itself only ts. Checking thread_ts first makes the
 * root and all of its replies resolve to the same id.
 */
func resolveThread(event webhook.Event) (string, error) {
	fields := event.Fields
	if inner, ok := fields["event"].(map[string]any); ok {
		fields = inner
	}

	if ts, ok := fields["thread_ts"].(string); ok && ts != "" {
		return ts, nil
	}
	if ts, ok := fields["ts"].(string); ok && ts != "" {
		return ts, nil
	}

	return "", &Error{Reason: "missing thread_ts and ts"}
}
