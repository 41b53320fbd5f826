package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  env: production
  server:
    cors: "https://a.example, https://b.example,"
modules:
  identity:
    otp:
      ttl_seconds: 300
      max_attempts: 5
jwt:
  ttl_minutes: 60
  audiences:
    - web
    - mobile
mail:
  labels: "a:1,b:2"
secret: aGVsbG8=
`

func TestNewViperFromBytes(t *testing.T) {
	t.Run("RequiresType", func(t *testing.T) {
		_, err := NewViperFromBytes(" ", []byte(sampleYAML))
		assert.ErrorIs(t, err, ErrConfigTypeRequired)
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		_, err := NewViperFromBytes("yaml", []byte("app: [unterminated"))
		assert.Error(t, err)
	})
}

func TestViperGetters(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	// Act & Assert
	assert.Equal(t, "production", cfg.GetString("app.env"))
	assert.Equal(t, 300*time.Second, cfg.GetSecond("modules.identity.otp.ttl_seconds"))
	assert.Equal(t, 5, cfg.GetInt("modules.identity.otp.max_attempts"))
	assert.Equal(t, time.Hour, cfg.GetMinute("jwt.ttl_minutes"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetArray("app.server.cors"))
	assert.Equal(t, []string{"web", "mobile"}, cfg.GetArray("jwt.audiences"))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, cfg.GetMap("mail.labels"))
	assert.Equal(t, []byte("hello"), cfg.GetBinary("secret"))
	assert.Empty(t, cfg.GetArray("missing.key"))
	assert.NoError(t, cfg.Close())
}

func TestViperEnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("GOMARKET_APP_ENV", "staging")
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	// Act
	got := cfg.GetString("app.env")

	// Assert
	assert.Equal(t, "staging", got)
}
