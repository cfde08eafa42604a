// SPDX-License-Identifier: Apache-2.0

// Package structure classifies a document into one OrganizationPattern by
// looking for week, day and session markers.
package structure

import (
	"strings"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/markers"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

// Classifier assigns an OrganizationPattern to a document.
type Classifier struct {
	lib *patterns.Library
}

func NewClassifier(lib *patterns.Library) *Classifier {
	return &Classifier{lib: lib}
}

// Classify runs the week, day and session detectors over text and applies the
// decision table. It always returns one of the five patterns.
func (c *Classifier) Classify(text string, det schedule.Detection) schedule.StructureAnalysis {
	m := markers.For(c.lib, det.Language)
	lines := strings.Split(text, "\n")

	weeks := detectWeeks(m, lines)
	days := detectDays(m, lines)
	sessions := detectSessions(m, lines)

	pattern := decide(weeks, days, sessions)
	certainty := schedule.CertaintyFor(pattern)

	expected := distinctWeeks(weeks)
	if mentioned := m.ExpectedWeeks(text); mentioned > expected {
		expected = mentioned
	}

	return schedule.StructureAnalysis{
		Pattern:       pattern,
		Certainty:     certainty,
		Language:      det.Language,
		Weeks:         weeks,
		Days:          days,
		Sessions:      sessions,
		ExpectedWeeks: expected,
		Confidence:    CertaintyScore(certainty) / 25,
	}
}

// CertaintyScore is the 0..25 structure score of a certainty tier.
func CertaintyScore(c schedule.Certainty) float64 {
	switch c {
	case schedule.HighlyStructured:
		return 25
	case schedule.ModeratelyStructured:
		return 18
	case schedule.PartiallyStructured:
		return 15
	case schedule.LooselyStructured:
		return 10
	default:
		return 5
	}
}

func decide(weeks []schedule.WeekMarker, days []schedule.DayMarker, sessions []schedule.SessionMarker) schedule.OrganizationPattern {
	switch {
	case len(weeks) > 0 && daysInsideWeeks(weeks, days):
		return schedule.PatternWeeklyWithDays
	case len(weeks) > 0:
		return schedule.PatternWeeklyOnly
	case len(days) > 0:
		return schedule.PatternDailyOnly
	case len(sessions) > 0:
		return schedule.PatternSessionBased
	default:
		return schedule.PatternUnstructured
	}
}

func daysInsideWeeks(weeks []schedule.WeekMarker, days []schedule.DayMarker) bool {
	first := weeks[0].Line
	for _, w := range weeks {
		if w.Line < first {
			first = w.Line
		}
	}
	for _, d := range days {
		if d.Line > first {
			return true
		}
	}
	return false
}

func detectWeeks(m *markers.Matcher, lines []string) []schedule.WeekMarker {
	var out []schedule.WeekMarker
	offset := 0
	for i, line := range lines {
		if h, ok := m.Week(line); ok {
			out = append(out, schedule.WeekMarker{Number: h.Number, Line: i, Offset: offset, Title: h.Title})
		}
		offset += len(line) + 1
	}
	return out
}

func detectDays(m *markers.Matcher, lines []string) []schedule.DayMarker {
	var out []schedule.DayMarker
	for i, line := range lines {
		days, _ := m.Days(line)
		for _, d := range days {
			out = append(out, schedule.DayMarker{Day: d, Line: i})
		}
	}
	return out
}

func detectSessions(m *markers.Matcher, lines []string) []schedule.SessionMarker {
	var out []schedule.SessionMarker
	for i, line := range lines {
		if h, ok := m.Session(line); ok {
			out = append(out, schedule.SessionMarker{Label: h.Label, Number: h.Number, Line: i})
		}
	}
	return out
}

func distinctWeeks(weeks []schedule.WeekMarker) int {
	seen := make(map[int]bool, len(weeks))
	for _, w := range weeks {
		seen[w.Number] = true
	}
	return len(seen)
}
