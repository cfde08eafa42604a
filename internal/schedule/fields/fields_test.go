// SPDX-License-Identifier: Apache-2.0

package fields_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/fields"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

func newExtractor() *fields.Extractor {
	return fields.New(patterns.Default())
}

// ---------------------------------------------------------------------------
// Time and duration
// ---------------------------------------------------------------------------

func TestTime(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"Start at 17:30 sharp", "17:30", true},
		{"Kick-off 5:30 pm", "17:30", true},
		{"Meet 9am at the gate", "09:00", true},
		{"12 am run", "00:00", true},
		{"Lunch at 12pm", "12:00", true},
		{"Run 3 x 200m", fields.DefaultTime, false},
		{"no time here", fields.DefaultTime, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := fields.Time(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		text   string
		want   int
		wantOK bool
	}{
		{"Monday (1 hour)", 60, true},
		{"90 minutes of play", 90, true},
		{"1.5 hours total", 90, true},
		{"Rondo 45min", 45, true},
		{"2h session", 120, true},
		{"Calentamiento 30 minutos", 30, true},
		{"1,5 Stunden", 90, true},
		{"0 minutes rest then 20 min jog", 20, true},
		{"no duration", fields.DefaultDuration, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := fields.Duration(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

// ---------------------------------------------------------------------------
// Titles, focus and description
// ---------------------------------------------------------------------------

func TestTitleFocus(t *testing.T) {
	assert.Equal(t, "Passing Under Pressure", fields.TitleFocus("Week 3: Passing Under Pressure"))
	assert.Equal(t, "Recovery", fields.TitleFocus("Monday - Recovery"))
	assert.Equal(t, "", fields.TitleFocus("Monday"))
}

func TestFocus(t *testing.T) {
	x := newExtractor()

	got, ok := x.Focus("Passing drills and finishing", "")
	assert.True(t, ok)
	assert.Equal(t, []string{"passing", "finishing"}, got)

	got, ok = x.Focus("Work on passing", "Passing Basics")
	assert.True(t, ok)
	assert.Equal(t, []string{"Passing Basics", "passing"}, got)

	got, ok = x.Focus("Bring water", "")
	assert.False(t, ok)
	assert.Equal(t, []string{fields.DefaultFocus}, got)
}

func TestWeekTitle(t *testing.T) {
	assert.Equal(t, "Week 2: Finishing", fields.WeekTitle(2, "Finishing", nil))
	assert.Equal(t, "Week 1: Passing & First Touch", fields.WeekTitle(1, "", []string{"passing", "first touch", "speed"}))
	assert.Equal(t, "Week 4 Training", fields.WeekTitle(4, "", []string{fields.DefaultFocus}))
}

func TestDescription_SkipsSchedulingLines(t *testing.T) {
	x := newExtractor()
	text := "Monday\n- Warm-up jog around the pitch\n17:30 - 60 min\nPassing square in pairs\nFinish with a scrimmage\nExtra line"
	assert.Equal(t, "Warm-up jog around the pitch Passing square in pairs Finish with a scrimmage", x.Description(text))
}

func TestDescription_Truncated(t *testing.T) {
	x := newExtractor()
	got := x.Description(strings.Repeat("a ", 150))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), fields.MaxDescription)
	assert.True(t, strings.HasSuffix(got, "..."))
}

// ---------------------------------------------------------------------------
// Line classifiers
// ---------------------------------------------------------------------------

func TestActivities(t *testing.T) {
	x := newExtractor()
	got, ok := x.Activities("Monday\n- Dynamic stretching\nRondo 4v1 for 10 minutes\nThe coach will explain rules\n")
	assert.True(t, ok)
	assert.Equal(t, []string{"Dynamic stretching", "Rondo 4v1 for 10 minutes"}, got)

	got, ok = x.Activities("")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestDrillsObjectivesNotes(t *testing.T) {
	x := newExtractor()
	assert.Equal(t,
		[]string{"Passing square", "Cone dribble through gates", "Shooting exercise"},
		x.Drills("1. Passing square\nCone dribble through gates\nShooting exercise\nWater break"))
	assert.Equal(t,
		[]string{"Goal: improve first touch", "Focus on communication"},
		x.Objectives("Goal: improve first touch\nRondo\nFocus on communication"))
	assert.Equal(t, []string{"Note: bring water"}, x.Notes("Note: bring water\nRondo"))
}

func TestCategorize(t *testing.T) {
	x := newExtractor()
	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{"Jog two laps", "warm-up", true},
		{"Rondo 5v2", "technical", true},
		{"4v4 scrimmage", "tactical", true},
		{"Shuttle run", "conditioning", true},
		{"Estiramientos", "cool-down", true},
		{"Team talk", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := x.Categorize(tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestCategoryHeading(t *testing.T) {
	x := newExtractor()

	got, ok := x.CategoryHeading("Warm-up (15 min)")
	assert.True(t, ok)
	assert.Equal(t, "warm-up", got)

	got, ok = x.CategoryHeading("Técnica:")
	assert.True(t, ok)
	assert.Equal(t, "technical", got)

	_, ok = x.CategoryHeading("Warm-up jog around the pitch")
	assert.False(t, ok)
}

func TestSessionType(t *testing.T) {
	x := newExtractor()
	assert.Equal(t, "match", x.SessionType("Friendly match vs Rovers"))
	assert.Equal(t, "recovery", x.SessionType("Rest and recovery"))
	assert.Equal(t, "technical", x.SessionType("Rondo\nWall passes\nShuttle run"))
	assert.Equal(t, fields.DefaultType, x.SessionType("Team meeting"))
}

// ---------------------------------------------------------------------------
// Equipment, location and academy
// ---------------------------------------------------------------------------

func TestEquipment(t *testing.T) {
	x := newExtractor()
	got := x.Equipment("Bring footballs, cones and bibs. Pinnies for scrimmage.", "soccer")
	assert.Equal(t, []string{"soccer ball", "cones", "bibs"}, got)

	assert.Empty(t, x.Equipment("slalom poles", patterns.GeneralSport))
}

func TestLocation(t *testing.T) {
	x := newExtractor()

	got, ok := x.Location("Location: North Field\nWarm-up")
	assert.True(t, ok)
	assert.Equal(t, "North Field", got)

	got, ok = x.Location("Meet at the gym")
	assert.True(t, ok)
	assert.Equal(t, "Gym", got)

	got, ok = x.Location("nothing")
	assert.False(t, ok)
	assert.Equal(t, fields.DefaultLocation, got)
}

func TestAcademy_FromHeader(t *testing.T) {
	x := newExtractor()
	header := "Riverside FC Academy\nU12 Spring Program\nLocation: Riverside Park\nIntermediate level"
	info := x.Academy(header, header+"\nWeek 1\nfootball basics", schedule.PlanMetadata{})

	assert.Equal(t, schedule.AcademyInfo{
		Name:       "Riverside FC Academy",
		Sport:      "soccer",
		AgeGroup:   "U12",
		Program:    "Riverside FC Academy",
		Location:   "Riverside Park",
		Difficulty: "intermediate",
	}, info)
}

func TestAcademy_MetadataWins(t *testing.T) {
	x := newExtractor()
	meta := schedule.PlanMetadata{AcademyName: "Club X", Title: "Plan", Category: "Basketball", Difficulty: "Advanced"}
	info := x.Academy("Riverside FC Academy\nAges 8-10", "tennis tennis", meta)

	assert.Equal(t, "Club X", info.Name)
	assert.Equal(t, "Plan", info.Program)
	assert.Equal(t, "basketball", info.Sport)
	assert.Equal(t, "advanced", info.Difficulty)
	assert.Equal(t, "Ages 8-10", info.AgeGroup)
}

func TestAcademy_Defaults(t *testing.T) {
	info := newExtractor().Academy("", "", schedule.PlanMetadata{})
	assert.Equal(t, "Training Academy", info.Name)
	assert.Equal(t, patterns.GeneralSport, info.Sport)
	assert.Empty(t, info.AgeGroup)
}
