package kinds_test

import (
	"os"
	"testing"
	"time"

	"github.com/marcelsud/webhook-resume/config"
	"github.com/marcelsud/webhook-resume/kinds"
	"github.com/marcelsud/webhook-resume/webhook/correlate"
	"github.com/marcelsud/webhook-resume/webhook/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKindsFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "kinds-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoader_Load(t *testing.T) {
	t.Run("success - valid kinds file", func(t *testing.T) {
		content := `
kinds:
  - name: "mercury-receipts"
    correlation: "session"
    wait_ttl_seconds: 900
    fields:
      - name: "sessionId"
        type: "string"
        required: true
      - name: "selections"
        type: "array"
        required: true
      - name: "confirmed"
        type: "bool"
  - name: "slack"
    correlation: "block_action"
    handshake: true
    discriminator: "type"
    shapes:
      url_verification:
        - name: "challenge"
          type: "string"
          required: true
      block_actions:
        - name: "container"
          type: "object"
          required: true
        - name: "actions"
          type: "array"
          required: true
`
		loader := kinds.NewLoader()
		err := loader.Load(writeKindsFile(t, content))
		require.NoError(t, err)

		allKinds := loader.List()
		assert.Len(t, allKinds, 2)

		kind, err := loader.Get("mercury-receipts")
		require.NoError(t, err)
		assert.Equal(t, correlate.Session, kind.Rule)
		require.NotNil(t, kind.WaitTTL)
		assert.Equal(t, 900, *kind.WaitTTL)
		assert.Len(t, kind.Schema.Fields, 3)
		assert.Equal(t, schema.String, kind.Schema.Fields[0].Type)

		kind, err = loader.Get("slack")
		require.NoError(t, err)
		assert.Equal(t, correlate.BlockAction, kind.Rule)
		assert.True(t, kind.Handshake)
		assert.Equal(t, "type", kind.Schema.Discriminator)
		assert.Len(t, kind.Schema.Shapes, 2)
	})

	t.Run("success - enum fields", func(t *testing.T) {
		content := `
kinds:
  - name: "review-emails"
    correlation: "session"
    fields:
      - name: "sessionId"
        type: "string"
        required: true
      - name: "action"
        type: "string"
        required: true
        enum: ["acknowledge", "draft_response", "dismiss"]
`
		loader := kinds.NewLoader()
		err := loader.Load(writeKindsFile(t, content))
		require.NoError(t, err)

		kind, err := loader.Get("review-emails")
		require.NoError(t, err)
		assert.Equal(t, []string{"acknowledge", "draft_response", "dismiss"}, kind.Schema.Fields[1].Enum)
	})

	t.Run("success - signing secret read from the env", func(t *testing.T) {
		t.Setenv("KINDS_TEST_SECRET", "shhh")
		content := `
kinds:
  - name: "signed"
    correlation: "session"
    signing_secret_env: "KINDS_TEST_SECRET"
    fields:
      - name: "sessionId"
        type: "string"
        required: true
`
		loader := kinds.NewLoader()
		err := loader.Load(writeKindsFile(t, content))
		require.NoError(t, err)

		kind, err := loader.Get("signed")
		require.NoError(t, err)
		assert.Equal(t, "shhh", kind.SigningSecret)
	})

	t.Run("error - signing secret env not set", func(t *testing.T) {
		content := `
kinds:
  - name: "signed"
    correlation: "session"
    signing_secret_env: "KINDS_TEST_SECRET_MISSING"
`
		loader := kinds.NewLoader()
		err := loader.Load(writeKindsFile(t, content))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "signing secret env")
	})

	t.Run("error - file not found", func(t *testing.T) {
		loader := kinds.NewLoader()
		err := loader.Load("nonexistent.yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading kinds file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		loader := kinds.NewLoader()
		err := loader.Load(writeKindsFile(t, `invalid yaml content: [[[`))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing kinds YAML")
	})

	t.Run("error - unknown correlation rule", func(t *testing.T) {
		content := `
kinds:
  - name: "broken"
    correlation: "psychic"
`
		loader := kinds.NewLoader()
		err := loader.Load(writeKindsFile(t, content))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid correlation rule")
	})

	t.Run("error - handshake without discriminator", func(t *testing.T) {
		content := `
kinds:
  - name: "broken"
    correlation: "session"
    handshake: true
`
		loader := kinds.NewLoader()
		err := loader.Load(writeKindsFile(t, content))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "handshake requires a discriminated schema")
	})
}

func TestLoader_Get(t *testing.T) {
	t.Run("kind not found", func(t *testing.T) {
		loader := kinds.NewLoader()

		_, err := loader.Get("nonexistent")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "kind not found")
	})
}

func TestLoader_Exists(t *testing.T) {
	content := `
kinds:
  - name: "archive"
    correlation: "block_action"
`
	loader := kinds.NewLoader()
	err := loader.Load(writeKindsFile(t, content))
	require.NoError(t, err)

	t.Run("kind exists", func(t *testing.T) {
		assert.True(t, loader.Exists("archive"))
	})

	t.Run("kind does not exist", func(t *testing.T) {
		assert.False(t, loader.Exists("nonexistent"))
	})
}

func TestKind_Validate(t *testing.T) {
	t.Run("valid session kind", func(t *testing.T) {
		kind := &kinds.Kind{
			Name: "interview",
			Rule: correlate.Session,
		}
		require.NoError(t, kind.Validate())
	})

	t.Run("error - empty name", func(t *testing.T) {
		kind := &kinds.Kind{Rule: correlate.Session}
		err := kind.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kind name cannot be empty")
	})

	t.Run("error - session_field on non-session rule", func(t *testing.T) {
		kind := &kinds.Kind{
			Name:         "slack",
			Rule:         correlate.Thread,
			SessionField: "sessionId",
		}
		err := kind.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session_field")
	})

	t.Run("error - non-positive wait ttl", func(t *testing.T) {
		zero := 0
		kind := &kinds.Kind{
			Name:    "interview",
			Rule:    correlate.Session,
			WaitTTL: &zero,
		}
		err := kind.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wait_ttl_seconds must be positive")
	})
}

func TestKind_GetWaitTTL(t *testing.T) {
	t.Run("kind-specific overrides config", func(t *testing.T) {
		ttl := 60
		kind := &kinds.Kind{Name: "k", Rule: correlate.Session, WaitTTL: &ttl}
		cfg := &config.Config{WaitTTLSeconds: 300}

		assert.Equal(t, time.Minute, kind.GetWaitTTL(cfg))
	})

	t.Run("config value when kind has none", func(t *testing.T) {
		kind := &kinds.Kind{Name: "k", Rule: correlate.Session}
		cfg := &config.Config{WaitTTLSeconds: 300}

		assert.Equal(t, 5*time.Minute, kind.GetWaitTTL(cfg))
	})

	t.Run("default when neither is set", func(t *testing.T) {
		kind := &kinds.Kind{Name: "k", Rule: correlate.Session}

		assert.Equal(t, 15*time.Minute, kind.GetWaitTTL(nil))
	})
}
