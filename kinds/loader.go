package kinds

import (
	"fmt"
	"os"

	"github.com/marcelsud/webhook-resume/webhook/correlate"
	"github.com/marcelsud/webhook-resume/webhook/schema"
	"gopkg.in/yaml.v3"
)

/* Loader manages webhook kind configuration from kinds.yaml
 * Provides in-memory lookup for fast access
 */

// Config represents the structure of kinds.yaml
type Config struct {
	Kinds []KindConfig `yaml:"kinds"`
}

// KindConfig represents a single kind in the YAML file
type KindConfig struct {
	Name          string                   `yaml:"name"`
	Correlation   string                   `yaml:"correlation"`
	SessionField  string                   `yaml:"session_field"`    // Optional: session rule only
	Handshake     bool                     `yaml:"handshake"`        // Accept url_verification
	WaitTTL       *int                     `yaml:"wait_ttl_seconds"`   // Optional: override global default
	SigningSecret string                   `yaml:"signing_secret_env"` // Optional: env var holding the shared secret
	Discriminator string                   `yaml:"discriminator"`
	Fields        []FieldConfig            `yaml:"fields"`
	Shapes        map[string][]FieldConfig `yaml:"shapes"`
}

// FieldConfig represents one declared payload field in the YAML file
type FieldConfig struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Enum     []string `yaml:"enum"`
}

// Loader holds the loaded kinds
type Loader struct {
	kinds map[string]*Kind
}

// NewLoader creates a new kind loader
func NewLoader() *Loader {
	return &Loader{
		kinds: make(map[string]*Kind),
	}
}

// Load reads and parses the kinds.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading kinds file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing kinds YAML: %w", err)
	}

	for _, kc := range config.Kinds {
		secret := ""
		if kc.SigningSecret != "" {
			secret = os.Getenv(kc.SigningSecret)
			if secret == "" {
				return fmt.Errorf("signing secret env %s is not set for kind %s", kc.SigningSecret, kc.Name)
			}
		}

		kind := &Kind{
			Name:          kc.Name,
			Rule:          correlate.NewRule(kc.Correlation),
			SessionField:  kc.SessionField,
			Handshake:     kc.Handshake,
			WaitTTL:       kc.WaitTTL,
			SigningSecret: secret,
			Schema:        schema.Schema{
				Fields:        convertFields(kc.Fields),
				Discriminator: kc.Discriminator,
				Shapes:        convertShapes(kc.Shapes),
			},
		}

		if err := kind.Validate(); err != nil {
			return fmt.Errorf("validating kind: %w", err)
		}

		l.kinds[kind.Name] = kind
	}

	return nil
}

// Get retrieves a kind by its name
func (l *Loader) Get(name string) (*Kind, error) {
	kind, exists := l.kinds[name]
	if !exists {
		return nil, fmt.Errorf("kind not found: %s", name)
	}
	return kind, nil
}

// List returns all loaded kinds
func (l *Loader) List() []*Kind {
	kinds := make([]*Kind, 0, len(l.kinds))
	for _, kind := range l.kinds {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Exists checks if a kind name exists
func (l *Loader) Exists(name string) bool {
	_, exists := l.kinds[name]
	return exists
}

func convertFields(fields []FieldConfig) []schema.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]schema.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, schema.Field{
			Name:     f.Name,
			Type:     schema.NewFieldType(f.Type),
			Required: f.Required,
			Enum:     f.Enum,
		})
	}
	return out
}

func convertShapes(shapes map[string][]FieldConfig) map[string][]schema.Field {
	if len(shapes) == 0 {
		return nil
	}
	out := make(map[string][]schema.Field, len(shapes))
	for name, fields := range shapes {
		out[name] = convertFields(fields)
	}
	return out
}
