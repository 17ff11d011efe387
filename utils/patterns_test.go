package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-assistant/models"
)

func TestDefaultPatternTable_CoversEveryIntent(t *testing.T) {
	table := DefaultPatternTable()

	var got []models.MessageIntent
	for _, row := range table.Intents {
		got = append(got, row.Intent)
		assert.NotEmpty(t, row.Patterns, "intent %s", row.Intent)
	}
	// Table order is the enumeration order without the fallback.
	assert.Equal(t, models.AllIntents[:len(models.AllIntents)-1], got)
}

func TestParsePatternTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "intents: ["},
		{"empty", "intents: []"},
		{"unknown intent", "intents:\n  - intent: weather\n    patterns: [{text: rain, weight: 1}]"},
		{"fallback with patterns", "intents:\n  - intent: general_inquiry\n    patterns: [{text: x, weight: 1}]"},
		{"duplicate", "intents:\n  - intent: help\n    patterns: [{text: a, weight: 1}]\n  - intent: help\n    patterns: [{text: b, weight: 1}]"},
		{"zero weight", "intents:\n  - intent: help\n    patterns: [{text: a, weight: 0}]"},
		{"empty text", "intents:\n  - intent: help\n    patterns: [{text: '', weight: 1}]"},
		{"bad regex", "intents:\n  - intent: help\n    patterns: [{text: a, weight: 1}]\nentities:\n  date: ['(']"},
		{"specialty without value", "intents:\n  - intent: help\n    patterns: [{text: a, weight: 1}]\nentities:\n  specialty: [{pattern: x}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePatternTable([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParsePatternTable_NormalizesTexts(t *testing.T) {
	table, err := ParsePatternTable([]byte(`
intents:
  - intent: greeting
    patterns:
      - {text: "Good Evening", weight: 1.0}
entities:
  symptoms: ["Cough"]
`))
	require.NoError(t, err)

	assert.Equal(t, "good evening", table.Intents[0].Patterns[0].Text)
	assert.Equal(t, []string{"cough"}, table.Entities.Symptoms)
	assert.Equal(t, models.IntentGreeting, NewIntentClassifier(table).ClassifyIntent("GOOD EVENING"))
}

func TestLoadPatternTable_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
intents:
  - intent: help
    patterns:
      - {text: "sos", weight: 1.0}
`), 0o600))

	table, err := LoadPatternTable(path)
	require.NoError(t, err)
	assert.Equal(t, models.IntentHelp, NewIntentClassifier(table).ClassifyIntent("SOS please"))

	_, err = LoadPatternTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello", Normalize("HeLLo"))
	// alef + combining hamza above composes to U+0623
	assert.Equal(t, "أ", Normalize("أ"))
}
