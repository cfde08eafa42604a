// SPDX-License-Identifier: Apache-2.0

package strategies_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/fields"
	"github.com/academyplan/academyplan-mcp/internal/schedule/grouping"
	"github.com/academyplan/academyplan-mcp/internal/schedule/language"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
	"github.com/academyplan/academyplan-mcp/internal/schedule/strategies"
	"github.com/academyplan/academyplan-mcp/internal/schedule/structure"
	"github.com/academyplan/academyplan-mcp/internal/schedule/validate"
)

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func request(t *testing.T, text string) schedule.Request {
	t.Helper()
	lib := patterns.Default()
	d, err := language.NewDetector(lib, 8)
	require.NoError(t, err)
	a := structure.NewClassifier(lib).Classify(text, d.Detect(text))
	return schedule.Request{
		Document: schedule.Document{Text: text, ID: "doc-1"},
		Analysis: a,
		Academy:  schedule.AcademyInfo{Name: "Riverside FC", Sport: "soccer"},
		BaseDate: monday,
	}
}

func dayNames(w schedule.WeekSession) []string {
	out := make([]string, 0, len(w.DailySessions))
	for _, d := range w.DailySessions {
		out = append(out, d.Day)
	}
	return out
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestAll_OnePerPattern(t *testing.T) {
	all := strategies.All(patterns.Default())
	require.Len(t, all, len(schedule.Patterns))
	for i, s := range all {
		assert.Equal(t, schedule.Patterns[i], s.Pattern())
		assert.Equal(t, string(s.Pattern()), s.Name())
	}
}

func TestAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := request(t, "Week 1\nMonday\nRondo")
	for _, s := range strategies.All(patterns.Default()) {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.Extract(ctx, req)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

// ---------------------------------------------------------------------------
// weekly_with_days
// ---------------------------------------------------------------------------

func TestWeeklyWithDays_ExplicitPlan(t *testing.T) {
	text := "Week 1: Passing Basics\nMonday (1 hour)\nWarm-up jog\nPassing drills\nWednesday (1 hour)\nShooting practice"
	req := request(t, text)
	require.Equal(t, schedule.PatternWeeklyWithDays, req.Analysis.Pattern)

	weeks, err := strategies.NewWeeklyWithDays(patterns.Default()).Extract(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, weeks, 1)

	w := weeks[0]
	assert.Equal(t, 1, w.WeekNumber)
	assert.Equal(t, "Week 1: Passing Basics", w.Title)
	assert.Contains(t, w.Focus, "Passing Basics")
	assert.Equal(t, []string{"monday", "wednesday"}, dayNames(w))
	assert.Equal(t, 120, w.TotalDuration)

	mon := w.DailySessions[0]
	assert.Equal(t, "2024-01-01", mon.Date)
	assert.False(t, mon.IsSharedSession)
	assert.Empty(t, mon.Notes)
	require.Len(t, mon.SessionsForDay, 1)
	s := mon.SessionsForDay[0]
	assert.Equal(t, "Monday Training", s.Title)
	assert.Equal(t, 60, s.Duration)
	assert.Equal(t, fields.DefaultTime, s.Time)
	assert.True(t, s.Defaulted(fields.FieldTime))
	assert.False(t, s.Defaulted(fields.FieldDuration))
	assert.Equal(t, []string{"passing"}, s.Focus)
	assert.Equal(t, "Riverside FC", s.Academy.Name)

	wed := w.DailySessions[1]
	assert.Equal(t, "2024-01-03", wed.Date)
	assert.Equal(t, "Shooting practice", wed.RawContent)
	assert.Equal(t, []string{grouping.IncompleteNote}, wed.Notes)
	assert.Contains(t, wed.SessionsForDay[0].ExtractionWarnings, grouping.IncompleteNote)
}

func TestWeeklyWithDays_SplitsTimedSessions(t *testing.T) {
	text := "Week 1\nMonday\n17:00 - Warm-up jog 15 min\nRondo\n18:00 - Small-sided games 4v4 for 30 min\nCool down"
	weeks, err := strategies.NewWeeklyWithDays(patterns.Default()).Extract(context.Background(), request(t, text))
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	require.Len(t, weeks[0].DailySessions, 1)

	sessions := weeks[0].DailySessions[0].SessionsForDay
	require.Len(t, sessions, 2)
	assert.Equal(t, "17:00", sessions[0].Time)
	assert.Equal(t, 15, sessions[0].Duration)
	assert.Equal(t, "18:00", sessions[1].Time)
	assert.Equal(t, 30, sessions[1].Duration)
	assert.NotEqual(t, sessions[0].ID, sessions[1].ID)
	assert.Equal(t, 45, weeks[0].TotalDuration)
}

func TestWeeklyWithDays_WeekWithoutDaysBecomesOverview(t *testing.T) {
	text := "Week 1\nMonday\nRondo and passing patterns\nWeek 2\nFinishing under pressure all week"
	weeks, err := strategies.NewWeeklyWithDays(patterns.Default()).Extract(context.Background(), request(t, text))
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, []string{schedule.DayWeekOverview}, dayNames(weeks[1]))
	assert.Equal(t, "Week 2 Overview", weeks[1].DailySessions[0].SessionsForDay[0].Title)
}

func TestWeeklyWithDays_NoWeekMarkersFallsBack(t *testing.T) {
	req := request(t, "Monday\nRondo")
	weeks, err := strategies.NewWeeklyWithDays(patterns.Default()).Extract(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, weeks, 4)
}

func TestWeeklyWithDays_Deterministic(t *testing.T) {
	req := request(t, "Week 1: Passing\nMonday & Friday\nSprint ladders and cone dribble\nWednesday\nRondo")
	s := strategies.NewWeeklyWithDays(patterns.Default())
	a, err := s.Extract(context.Background(), req)
	require.NoError(t, err)
	b, err := s.Extract(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// ---------------------------------------------------------------------------
// weekly_only
// ---------------------------------------------------------------------------

func TestWeeklyOnly(t *testing.T) {
	text := "Week 1\nBall mastery and passing.\nWeek 2\nFinishing under pressure."
	weeks, err := strategies.NewWeeklyOnly(patterns.Default()).Extract(context.Background(), request(t, text))
	require.NoError(t, err)
	require.Len(t, weeks, 2)

	for i, w := range weeks {
		require.Len(t, w.DailySessions, 1)
		d := w.DailySessions[0]
		assert.Equal(t, schedule.DayWeekOverview, d.Day)
		assert.Equal(t, w.RawContent, d.RawContent)
		assert.Equal(t, i+1, d.WeekNumber)
	}
	assert.Equal(t, "2024-01-08", weeks[1].DailySessions[0].Date)
	assert.Equal(t, "Week 2\nFinishing under pressure.", weeks[1].RawContent)
}

// ---------------------------------------------------------------------------
// daily_only
// ---------------------------------------------------------------------------

func TestDailyOnly_SharedSession(t *testing.T) {
	text := "Monday & Friday:\nSprint ladders\nWednesday:\nRondo and passing patterns"
	req := request(t, text)
	require.Equal(t, schedule.PatternDailyOnly, req.Analysis.Pattern)

	weeks, err := strategies.NewDailyOnly(patterns.Default()).Extract(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, []string{"monday", "friday", "wednesday"}, dayNames(weeks[0]))

	mon, fri := weeks[0].DailySessions[0], weeks[0].DailySessions[1]
	assert.True(t, mon.IsSharedSession)
	assert.True(t, fri.IsSharedSession)
	assert.Equal(t, []string{"friday"}, mon.SharedWith)
	assert.Equal(t, []string{"monday"}, fri.SharedWith)
	assert.Equal(t, "Sprint ladders", mon.RawContent)
	assert.Equal(t, mon.RawContent, fri.RawContent)
	assert.Equal(t, mon.SessionsForDay[0].RawContent, fri.SessionsForDay[0].RawContent)
}

func TestDailyOnly_ChunksIntoWeeks(t *testing.T) {
	text := strings.Repeat("Monday\nRondo and passing patterns\nWednesday\nShooting drill and finishing\n", 3)
	weeks, err := strategies.NewDailyOnly(patterns.Default()).Extract(context.Background(), request(t, text))
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Len(t, weeks[0].DailySessions, strategies.DaysPerWeek)
	assert.Len(t, weeks[1].DailySessions, 1)
	assert.Equal(t, 2, weeks[1].WeekNumber)
	assert.Equal(t, "wednesday", weeks[1].DailySessions[0].Day)
	for _, w := range weeks {
		for _, d := range w.DailySessions {
			assert.Len(t, d.SessionsForDay, 1)
		}
	}
}

func TestDailyOnly_SharedGroupStaysInOneWeek(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{
			name: "group crossing the boundary opens the next week",
			text: "Monday\nRondo and passing patterns\nTuesday\nShooting drill and finishing\n" +
				"Wednesday\nSmall-sided games, 4v4\nThursday\nRecovery jog and stretching\n" +
				"Friday & Saturday:\nMatch preparation and set pieces",
			want: [][]string{{"monday", "tuesday", "wednesday", "thursday"}, {"friday", "saturday"}},
		},
		{
			name: "group opening a week extends it",
			text: "Monday/Tuesday/Wednesday/Thursday/Friday/Saturday:\nSprint ladders and agility work\n" +
				"Sunday\nRecovery jog and stretching",
			want: [][]string{{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}, {"sunday"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(t, tt.text)
			require.Equal(t, schedule.PatternDailyOnly, req.Analysis.Pattern)

			weeks, err := strategies.NewDailyOnly(patterns.Default()).Extract(context.Background(), req)
			require.NoError(t, err)
			require.Len(t, weeks, len(tt.want))
			for i, w := range weeks {
				assert.Equal(t, i+1, w.WeekNumber)
				assert.Equal(t, tt.want[i], dayNames(w))
			}

			report := validate.New(0.6).Score(weeks, req.Analysis)
			for _, msg := range report.Errors {
				assert.NotContains(t, msg, "not symmetric")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// session_based
// ---------------------------------------------------------------------------

func TestSessionBased(t *testing.T) {
	text := "Intro for parents\nSession 1\nPassing square\nSession 2\nShooting drill\nSession 3\nFinishing\nSession 4\nRecovery jog"
	req := request(t, text)
	require.Equal(t, schedule.PatternSessionBased, req.Analysis.Pattern)

	weeks, err := strategies.NewSessionBased(patterns.Default()).Extract(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, []string{"monday", "wednesday", "friday"}, dayNames(weeks[0]))
	assert.Equal(t, []string{"monday"}, dayNames(weeks[1]))

	first := weeks[0].DailySessions[0].SessionsForDay[0]
	assert.Equal(t, "Session 1", first.Title)
	assert.Equal(t, "Intro for parents\nSession 1\nPassing square", first.RawContent)
	assert.Equal(t, "2024-01-08", weeks[1].DailySessions[0].Date)
}

// ---------------------------------------------------------------------------
// unstructured
// ---------------------------------------------------------------------------

func TestUnstructured_SyntheticPlan(t *testing.T) {
	text := "  " + strings.Repeat("é", 1500)
	weeks, err := strategies.NewUnstructured(patterns.Default()).Extract(context.Background(), request(t, text))
	require.NoError(t, err)
	require.Len(t, weeks, 4)

	fb := patterns.Default().FallbackFor("soccer")
	for i, w := range weeks {
		assert.Equal(t, i+1, w.WeekNumber)
		assert.Equal(t, fmt.Sprintf("Week %d: %s", i+1, fb.WeekFocus[i]), w.Title)
		assert.Equal(t, []string{"monday", "wednesday", "friday"}, dayNames(w))
		assert.Equal(t, 3*fields.DefaultDuration, w.TotalDuration)
		for _, d := range w.DailySessions {
			require.Len(t, d.SessionsForDay, 1)
			s := d.SessionsForDay[0]
			assert.Equal(t, fb.Activities, s.Activities)
			assert.Len(t, s.DefaultedFields, 5)
			assert.Equal(t, 998, utf8.RuneCountInString(s.RawContent))
			assert.InDelta(t, 0.65, s.ExtractionConfidence, 1e-9)
		}
	}
}

func TestUnstructured_ShortTextLowersSessionConfidence(t *testing.T) {
	weeks, err := strategies.NewUnstructured(patterns.Default()).Extract(context.Background(), request(t, "Bring water."))
	require.NoError(t, err)
	s := weeks[0].DailySessions[0].SessionsForDay[0]
	assert.Equal(t, "Monday Training", s.Title)
	assert.Equal(t, "Bring water.", s.RawContent)
	assert.InDelta(t, 0.5, s.ExtractionConfidence, 1e-9)
}
