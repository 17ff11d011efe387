package utils

import (
	"sync"

	"clinic-assistant/models"
)

var (
	defaultOnce       sync.Once
	defaultClassifier *IntentClassifier
	defaultExtractor  *EntityExtractor
)

func loadDefaults() {
	defaultOnce.Do(func() {
		table := DefaultPatternTable()
		defaultClassifier = NewIntentClassifier(table)
		defaultExtractor = NewEntityExtractor(table)
	})
}

// DetermineIntent classifies message against the embedded pattern table.
func DetermineIntent(message string) models.MessageIntent {
	loadDefaults()
	return defaultClassifier.ClassifyIntent(message)
}

// ExtractEntities extracts entities from message using the embedded tables.
func ExtractEntities(message string) models.Entities {
	loadDefaults()
	return defaultExtractor.Extract(message)
}
