package utils

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"clinic-assistant/models"
)

//go:embed patterns.yaml
var defaultPatternsYAML []byte

// WeightedPattern is a substring whose presence votes for an intent.
type WeightedPattern struct {
	Text   string  `yaml:"text"`
	Weight float64 `yaml:"weight"`
}

// IntentPattern is one row of the intent table.
type IntentPattern struct {
	Intent   models.MessageIntent `yaml:"intent"`
	Patterns []WeightedPattern    `yaml:"patterns"`
}

// SpecialtyPattern maps a regular expression to a canonical specialty name.
type SpecialtyPattern struct {
	Pattern string `yaml:"pattern"`
	Value   string `yaml:"value"`
}

// EntityPatterns holds the raw entity vocabularies as read from YAML.
type EntityPatterns struct {
	Date       []string           `yaml:"date"`
	Time       []string           `yaml:"time"`
	DoctorName []string           `yaml:"doctor_name"`
	Specialty  []SpecialtyPattern `yaml:"specialty"`
	Symptoms   []string           `yaml:"symptoms"`
}

// PatternTable is the read-only data behind the classifier and extractor.
type PatternTable struct {
	Intents  []IntentPattern `yaml:"intents"`
	Entities EntityPatterns  `yaml:"entities"`
}

// ParsePatternTable decodes and validates a YAML pattern table. Pattern
// texts and vocabulary terms are normalised the same way messages are.
func ParsePatternTable(data []byte) (*PatternTable, error) {
	var table PatternTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse pattern table: %w", err)
	}
	if err := table.validate(); err != nil {
		return nil, fmt.Errorf("invalid pattern table: %w", err)
	}
	for i := range table.Intents {
		for j := range table.Intents[i].Patterns {
			p := &table.Intents[i].Patterns[j]
			p.Text = Normalize(p.Text)
		}
	}
	for i, term := range table.Entities.Symptoms {
		table.Entities.Symptoms[i] = Normalize(term)
	}
	return &table, nil
}

// LoadPatternTable reads a table from path, or returns the embedded default
// when path is empty.
func LoadPatternTable(path string) (*PatternTable, error) {
	if path == "" {
		return ParsePatternTable(defaultPatternsYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern table %s: %w", path, err)
	}
	return ParsePatternTable(data)
}

// DefaultPatternTable returns the embedded table. It panics if the embedded
// file is invalid, which tests catch.
func DefaultPatternTable() *PatternTable {
	table, err := ParsePatternTable(defaultPatternsYAML)
	if err != nil {
		panic(err)
	}
	return table
}

func (t *PatternTable) validate() error {
	if len(t.Intents) == 0 {
		return errors.New("no intents defined")
	}
	seen := make(map[models.MessageIntent]bool)
	for _, row := range t.Intents {
		if !row.Intent.IsValid() {
			return fmt.Errorf("unknown intent %q", row.Intent)
		}
		if row.Intent == models.IntentGeneralInquiry {
			return fmt.Errorf("%s is the fallback and cannot have patterns", row.Intent)
		}
		if seen[row.Intent] {
			return fmt.Errorf("intent %q listed twice", row.Intent)
		}
		seen[row.Intent] = true
		for _, p := range row.Patterns {
			if p.Text == "" {
				return fmt.Errorf("intent %q has an empty pattern", row.Intent)
			}
			if p.Weight <= 0 {
				return fmt.Errorf("intent %q pattern %q has non-positive weight", row.Intent, p.Text)
			}
		}
	}

	groups := map[string][]string{
		"date":        t.Entities.Date,
		"time":        t.Entities.Time,
		"doctor_name": t.Entities.DoctorName,
	}
	for kind, patterns := range groups {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("%s pattern %q: %w", kind, p, err)
			}
		}
	}
	for _, sp := range t.Entities.Specialty {
		if sp.Value == "" {
			return fmt.Errorf("specialty pattern %q has no value", sp.Pattern)
		}
		if _, err := regexp.Compile(sp.Pattern); err != nil {
			return fmt.Errorf("specialty pattern %q: %w", sp.Pattern, err)
		}
	}
	for _, term := range t.Entities.Symptoms {
		if term == "" {
			return errors.New("empty symptom term")
		}
	}
	return nil
}
