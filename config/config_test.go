package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "memory", c.Database.Type)
	assert.Equal(t, 24*time.Hour, c.Database.SessionTTL)
	assert.Equal(t, 60, c.Security.RateLimitPerMin)
	assert.Equal(t, time.Duration(0), c.Assistant.ReplyDelay)
	assert.Equal(t, "997", c.Assistant.Clinic.EmergencyNumber)
	assert.False(t, c.WhatsAppEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_TYPE", "mongodb")
	t.Setenv("DB_HOST", "mongo")
	t.Setenv("ASSISTANT_REPLY_DELAY", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CLINIC_NAME", "Test Clinic")
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "123")
	t.Setenv("RATE_LIMIT_PER_MIN", "not-a-number")

	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 250*time.Millisecond, c.Assistant.ReplyDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Security.AllowedOrigins)
	assert.Equal(t, "Test Clinic", c.Assistant.Clinic.Name)
	assert.Equal(t, 60, c.Security.RateLimitPerMin)
	assert.True(t, c.WhatsAppEnabled())
	assert.Equal(t, "mongodb://mongo:27017/clinic_assistant", c.BuildDatabaseURI())
}

func TestFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown database", map[string]string{"DB_TYPE": "postgresql"}},
		{"negative rate limit", map[string]string{"RATE_LIMIT_PER_MIN": "-1"}},
		{"negative delay", map[string]string{"ASSISTANT_REPLY_DELAY": "-1s"}},
		{"zero ttl", map[string]string{"SESSION_TTL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestBuildDatabaseURI(t *testing.T) {
	c := &Config{Database: DatabaseConfig{
		Type:     "mongodb",
		Host:     "db",
		Port:     "27017",
		Name:     "clinic",
		Username: "u",
		Password: "p",
	}}
	assert.Equal(t, "mongodb://u:p@db:27017/clinic", c.BuildDatabaseURI())

	c.Database.URI = "mongodb://explicit"
	assert.Equal(t, "mongodb://explicit", c.BuildDatabaseURI())
}
