package utils

import (
	"regexp"
	"strconv"
	"strings"

	"clinic-assistant/models"
)

var numberPattern = regexp.MustCompile(`\b\d+\b`)

type specialtyMatcher struct {
	re    *regexp.Regexp
	value string
}

// EntityExtractor pulls dates, times, specialties, symptoms, doctor names
// and numbers out of free text. It holds only compiled, read-only patterns
// and is safe for concurrent use.
type EntityExtractor struct {
	date        []*regexp.Regexp
	time        []*regexp.Regexp
	doctorName  []*regexp.Regexp
	specialties []specialtyMatcher
	symptoms    []string
}

func NewEntityExtractor(table *PatternTable) *EntityExtractor {
	e := &EntityExtractor{
		date:       compileAll(table.Entities.Date),
		time:       compileAll(table.Entities.Time),
		doctorName: compileAll(table.Entities.DoctorName),
		symptoms:   table.Entities.Symptoms,
	}
	for _, sp := range table.Entities.Specialty {
		e.specialties = append(e.specialties, specialtyMatcher{
			re:    regexp.MustCompile(sp.Pattern),
			value: sp.Value,
		})
	}
	return e
}

// Extract returns the entities found in message. Kinds that matched nothing
// are left unset.
func (e *EntityExtractor) Extract(message string) models.Entities {
	text := Normalize(message)

	var entities models.Entities
	entities.Date = firstMatch(e.date, text)
	entities.Time = firstMatch(e.time, text)
	entities.DoctorName = firstMatch(e.doctorName, text)

	for _, sp := range e.specialties {
		if sp.re.MatchString(text) {
			entities.Specialty = sp.value
			break
		}
	}

	// Symptoms accumulate in vocabulary order. Overlapping terms can
	// report the same complaint twice.
	for _, term := range e.symptoms {
		if strings.Contains(text, term) {
			entities.Symptoms = append(entities.Symptoms, term)
		}
	}

	if token := numberPattern.FindString(text); token != "" {
		if n, err := strconv.Atoi(token); err == nil {
			entities.Number = &n
		}
	}

	return entities
}

// firstMatch returns capture group 1 of the first matching pattern, or the
// whole match when the pattern has no group.
func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return m[1]
		}
		return m[0]
	}
	return ""
}

// compileAll panics on a bad pattern; tables are validated before this.
func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
