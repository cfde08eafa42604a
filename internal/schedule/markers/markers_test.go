// SPDX-License-Identifier: Apache-2.0

package markers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/academyplan/academyplan-mcp/internal/schedule/markers"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

// ---------------------------------------------------------------------------
// Week headers
// ---------------------------------------------------------------------------

func TestMatcher_Week(t *testing.T) {
	m := markers.For(patterns.Default(), "english")

	tests := []struct {
		line      string
		wantOK    bool
		wantNum   int
		wantTitle string
	}{
		{"Week 1: Passing Basics", true, 1, "Passing Basics"},
		{"## Week 3 - Finishing", true, 3, "Finishing"},
		{"**WEEK 12**", true, 12, ""},
		{"Week #4", true, 4, ""},
		{"Week 53", false, 0, ""},
		{"Week 0", false, 0, ""},
		{"This week we focus on passing", false, 0, ""},
		{"Weekly review", false, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			h, ok := m.Week(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantNum, h.Number)
			assert.Equal(t, tt.wantTitle, h.Title)
		})
	}
}

func TestMatcher_Week_KeepsOriginalAccents(t *testing.T) {
	m := markers.For(patterns.Default(), "spanish")
	h, ok := m.Week("Semana 2: Técnica de pase")
	assert.True(t, ok)
	assert.Equal(t, 2, h.Number)
	assert.Equal(t, "Técnica de pase", h.Title)
}

// ---------------------------------------------------------------------------
// Day headers
// ---------------------------------------------------------------------------

func TestMatcher_Days(t *testing.T) {
	m := markers.For(patterns.Default(), "english")

	tests := []struct {
		line       string
		wantDays   []string
		wantShared bool
	}{
		{"Monday (1 hour)", []string{"monday"}, false},
		{"Monday:", []string{"monday"}, false},
		{"Monday — recovery", []string{"monday"}, false},
		{"## Day 2 (Wednesday)", []string{"wednesday"}, false},
		{"Day 1 (Monday) & Day 3 (Friday)", []string{"monday", "friday"}, true},
		{"Monday/Friday/Saturday", []string{"monday", "friday", "saturday"}, true},
		{"Tuesday + Thursday: speed", []string{"tuesday", "thursday"}, true},
		{"Day 3", []string{"wednesday"}, false},
		{"Day 9", []string{"tuesday"}, false},
		{"Monday and Friday are match days", nil, false},
		{"Warm-up jog", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			days, shared := m.Days(tt.line)
			assert.Equal(t, tt.wantDays, days)
			assert.Equal(t, tt.wantShared, shared)
		})
	}
}

func TestMatcher_Days_Localized(t *testing.T) {
	m := markers.For(patterns.Default(), "spanish")
	days, shared := m.Days("Miércoles:")
	assert.Equal(t, []string{"wednesday"}, days)
	assert.False(t, shared)

	days, _ = m.Days("Lunes")
	assert.Equal(t, []string{"monday"}, days)
}

func TestFor_UnknownLanguageUsesAllVocabularies(t *testing.T) {
	m := markers.For(patterns.Default(), "")
	days, _ := m.Days("Donnerstag:")
	assert.Equal(t, []string{"thursday"}, days)
	assert.Same(t, m, markers.For(patterns.Default(), "klingon"))
}

// ---------------------------------------------------------------------------
// Sessions, sections, expected weeks
// ---------------------------------------------------------------------------

func TestMatcher_Session(t *testing.T) {
	m := markers.For(patterns.Default(), "english")

	h, ok := m.Session("Session 2: Finishing")
	assert.True(t, ok)
	assert.Equal(t, 2, h.Number)
	assert.False(t, h.Timed)

	h, ok = m.Session("17:30 - Small-sided games")
	assert.True(t, ok)
	assert.True(t, h.Timed)

	_, ok = m.Session("Sessions are 90 minutes long")
	assert.False(t, ok)
}

func TestMatcher_MajorSection(t *testing.T) {
	m := markers.For(patterns.Default(), "english")
	assert.True(t, m.MajorSection("====="))
	assert.True(t, m.MajorSection("----------"))
	assert.True(t, m.MajorSection("Week 2"))
	assert.True(t, m.MajorSection("## Alternative Drills"))
	assert.False(t, m.MajorSection("---"))
	assert.False(t, m.MajorSection("Monday"))
}

func TestMatcher_ExpectedWeeks(t *testing.T) {
	m := markers.For(patterns.Default(), "english")
	assert.Equal(t, 12, m.ExpectedWeeks("A 12-week program. Weeks 1 to 4 cover basics, then 8 weeks of play."))
	assert.Equal(t, 0, m.ExpectedWeeks("A 60 week plan"))
	assert.Equal(t, 0, m.ExpectedWeeks("no mention"))
	assert.Equal(t, 6, m.ExpectedWeeks("Six blocks:\t6\tweeks total"))
}

func TestMatcher_ExpectedWeeks_NumberBeforeWeekHeader(t *testing.T) {
	m := markers.For(patterns.Default(), "english")
	text := "Week 1: Speed\nMonday\nSprint 40 meters, repeat 12\nWeek 2: Power\nMonday\nBox jumps, 3 sets of 8\n"
	assert.Equal(t, 0, m.ExpectedWeeks(text))
	assert.Equal(t, 0, m.ExpectedWeeks("Cool down 5\n- week 3 recap"))
}
