package utils

import (
	"strings"

	"clinic-assistant/models"
)

// DefaultThreshold is the minimum score an intent needs to beat the
// general_inquiry fallback.
const DefaultThreshold = 0.5

// IntentScore is the accumulated weight of one intent for a message.
type IntentScore struct {
	Intent models.MessageIntent `json:"intent"`
	Score  float64              `json:"score"`
}

type IntentClassifier struct {
	patterns  []IntentPattern
	threshold float64
}

func NewIntentClassifier(table *PatternTable) *IntentClassifier {
	return &IntentClassifier{
		patterns:  table.Intents,
		threshold: DefaultThreshold,
	}
}

// ClassifyIntent returns exactly one intent for message. Every pattern
// contained in the message adds its weight to its intent; the first intent
// with the strictly highest total wins, and totals under the threshold fall
// back to general_inquiry.
func (ic *IntentClassifier) ClassifyIntent(message string) models.MessageIntent {
	maxIntent := models.IntentGeneralInquiry
	maxScore := 0.0
	for _, s := range ic.Scores(message) {
		if s.Score > maxScore {
			maxScore = s.Score
			maxIntent = s.Intent
		}
	}

	if maxScore < ic.threshold {
		return models.IntentGeneralInquiry
	}
	return maxIntent
}

// Scores returns the accumulated weight of every intent, in table order.
func (ic *IntentClassifier) Scores(message string) []IntentScore {
	message = Normalize(message)

	scores := make([]IntentScore, 0, len(ic.patterns))
	for _, row := range ic.patterns {
		score := 0.0
		for _, p := range row.Patterns {
			if strings.Contains(message, p.Text) {
				score += p.Weight
			}
		}
		scores = append(scores, IntentScore{Intent: row.Intent, Score: score})
	}
	return scores
}
