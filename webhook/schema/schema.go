package schema

import (
	"fmt"

	"github.com/marcelsud/webhook-resume/webhook"
)

/* Webhook Schema Validator: checks a decoded payload against the shape
 * declared for its webhook kind. Validation is the single chokepoint
 * after which required fields may be assumed present with the correct
 * primitive types.
 */

// FieldType enumerates the primitive shapes a declared field may take.
type FieldType int

const (
	String FieldType = iota + 1
	Number
	Bool
	Array
	Object
	Any
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Array:
		return "array"
	case Object:
		return "object"
	case Any:
		return "any"
	default:
		return "unknown"
	}
}

// NewFieldType creates a FieldType from a string.
func NewFieldType(s string) FieldType {
	switch s {
	case "string":
		return String
	case "number":
		return Number
	case "bool":
		return Bool
	case "array":
		return Array
	case "object":
		return Object
	case "any":
		return Any
	default:
		return 0
	}
}

// Validate checks if the field type is valid.
func (t FieldType) Validate() error {
	if t < String || t > Any {
		return fmt.Errorf("invalid field type: %d", t)
	}
	return nil
}

// Field declares one expected payload field.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Enum constrains a String field to the listed values
	Enum []string
}

// Schema declares the accepted shape(s) for one webhook kind. A flat
// schema lists Fields only. A discriminated schema names the field
// whose value selects one of Shapes; payloads carrying an unknown
// discriminator value are rejected.
type Schema struct {
	Fields        []Field
	Discriminator string
	Shapes        map[string][]Field
}

// Error reports the first failing field and the reason it failed.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Validate checks the schema declaration itself.
func (s Schema) Validate() error {
	if s.Discriminator == "" && len(s.Shapes) > 0 {
		return fmt.Errorf("shapes declared without a discriminator field")
	}
	if s.Discriminator != "" && len(s.Shapes) == 0 {
		return fmt.Errorf("discriminator %q declared without shapes", s.Discriminator)
	}
	for _, f := range s.Fields {
		if err := validateField(f); err != nil {
			return err
		}
	}
	for shape, fields := range s.Shapes {
		if shape == "" {
			return fmt.Errorf("shape name cannot be empty")
		}
		for _, f := range fields {
			if err := validateField(f); err != nil {
				return fmt.Errorf("shape %s: %w", shape, err)
			}
		}
	}
	return nil
}

func validateField(f Field) error {
	if f.Name == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if err := f.Type.Validate(); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	if len(f.Enum) > 0 && f.Type != String {
		return fmt.Errorf("field %s: enum requires string type (got %s)", f.Name, f.Type)
	}
	return nil
}

// Apply validates payload for the given kind and returns the validated
// event. For discriminated schemas the sub-shape is selected by the
// discriminator value before field checks run.
func (s Schema) Apply(kind string, payload webhook.Payload) (webhook.Event, error) {
	fields := s.Fields
	shape := ""

	if s.Discriminator != "" {
		raw, ok := payload[s.Discriminator]
		if !ok {
			return webhook.Event{}, &Error{Field: s.Discriminator, Reason: "missing interaction-type discriminator"}
		}
		value, ok := raw.(string)
		if !ok {
			return webhook.Event{}, &Error{Field: s.Discriminator, Reason: "discriminator must be a string"}
		}
		shapeFields, ok := s.Shapes[value]
		if !ok {
			return webhook.Event{}, &Error{Field: s.Discriminator, Reason: fmt.Sprintf("unhandled interaction type: %s", value)}
		}
		fields = shapeFields
		shape = value
	}

	for _, field := range fields {
		if err := checkField(field, payload); err != nil {
			return webhook.Event{}, err
		}
	}

	return webhook.Event{
		Kind:   kind,
		Type:   shape,
		Fields: payload,
	}, nil
}

func checkField(field Field, payload webhook.Payload) error {
	value, ok := payload[field.Name]
	if !ok || value == nil {
		if field.Required {
			return &Error{Field: field.Name, Reason: "required field is missing"}
		}
		return nil
	}

	if !matchesType(field.Type, value) {
		return &Error{
			Field:  field.Name,
			Reason: fmt.Sprintf("expected %s, got %T", field.Type, value),
		}
	}

	if len(field.Enum) > 0 {
		s, ok := value.(string)
		if !ok {
			return &Error{Field: field.Name, Reason: "enumerated field must be a string"}
		}
		for _, allowed := range field.Enum {
			if s == allowed {
				return nil
			}
		}
		return &Error{
			Field:  field.Name,
			Reason: fmt.Sprintf("value %q is not one of the allowed values", s),
		}
	}

	return nil
}

func matchesType(t FieldType, value any) bool {
	switch t {
	case String:
		_, ok := value.(string)
		return ok
	case Number:
		_, ok := value.(float64)
		return ok
	case Bool:
		_, ok := value.(bool)
		return ok
	case Array:
		_, ok := value.([]any)
		return ok
	case Object:
		_, ok := value.(map[string]any)
		return ok
	case Any:
		return true
	default:
		return false
	}
}
