// SPDX-License-Identifier: Apache-2.0

// Package schedule holds the week/day/session data model produced by the
// extraction engine, the Strategy contract each organization pattern
// implements, and the small pure helpers (dates, ids, enrichment) shared by
// every strategy.
package schedule

import (
	"context"
	"time"
)

// OrganizationPattern is the classifier's top-level structural category for a document.
type OrganizationPattern string

const (
	PatternWeeklyWithDays OrganizationPattern = "weekly_with_days"
	PatternWeeklyOnly     OrganizationPattern = "weekly_only"
	PatternDailyOnly      OrganizationPattern = "daily_only"
	PatternSessionBased   OrganizationPattern = "session_based"
	PatternUnstructured   OrganizationPattern = "unstructured"
)

// Patterns lists every organization pattern from most to least structured.
var Patterns = []OrganizationPattern{
	PatternWeeklyWithDays,
	PatternWeeklyOnly,
	PatternDailyOnly,
	PatternSessionBased,
	PatternUnstructured,
}

// Certainty is the classifier's confidence tier, derived from the pattern.
type Certainty string

const (
	HighlyStructured     Certainty = "highly_structured"
	ModeratelyStructured Certainty = "moderately_structured"
	PartiallyStructured  Certainty = "partially_structured"
	LooselyStructured    Certainty = "loosely_structured"
	Unstructured         Certainty = "unstructured"
)

// CertaintyFor maps a pattern to its certainty tier.
func CertaintyFor(p OrganizationPattern) Certainty {
	switch p {
	case PatternWeeklyWithDays:
		return HighlyStructured
	case PatternWeeklyOnly:
		return ModeratelyStructured
	case PatternDailyOnly:
		return PartiallyStructured
	case PatternSessionBased:
		return LooselyStructured
	default:
		return Unstructured
	}
}

// Sentinel day token for sessions that describe a whole week.
const DayWeekOverview = "week_overview"

// PlanMetadata is the lightweight plan record supplied alongside the text.
type PlanMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	AcademyName string `json:"academyName,omitempty"`
}

// Document is the raw input of one extraction call. It is never mutated.
type Document struct {
	// Text is the already extracted plain text of the source document.
	Text string
	ID   string
	Plan PlanMetadata
	// BaseDate anchors date calculation. Zero means "today" at extraction time.
	BaseDate time.Time
}

// WeekMarker is a detected "Week N" anchor.
type WeekMarker struct {
	Number int    `json:"number"`
	Line   int    `json:"line"`
	Offset int    `json:"offset"`
	Title  string `json:"title,omitempty"`
}

type DayMarker struct {
	Day  string `json:"day"`
	Line int    `json:"line"`
}

type SessionMarker struct {
	Label  string `json:"label"`
	Number int    `json:"number,omitempty"`
	Line   int    `json:"line"`
}

// StructureAnalysis is created once per document by the classifier and read-only afterwards.
type StructureAnalysis struct {
	Pattern       OrganizationPattern `json:"organizationPattern"`
	Certainty     Certainty           `json:"certainty"`
	Language      string              `json:"language"`
	Weeks         []WeekMarker        `json:"weekStructure"`
	Days          []DayMarker         `json:"dayStructure"`
	Sessions      []SessionMarker     `json:"sessionStructure"`
	ExpectedWeeks int                 `json:"expectedWeeks"`
	Confidence    float64             `json:"confidence"`
}

// AcademyInfo describes who runs the plan. Every session stores its own copy.
type AcademyInfo struct {
	Name       string `json:"name"`
	Sport      string `json:"sport"`
	AgeGroup   string `json:"ageGroup,omitempty"`
	Program    string `json:"program,omitempty"`
	Location   string `json:"location,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Enrichment is the caller-supplied record merged into every node by Enrich.
type Enrichment struct {
	CoachingPlanName string `json:"coachingPlanName,omitempty"`
	EntityName       string `json:"entityName,omitempty"`
	TrainingTime     string `json:"trainingTime,omitempty"`
}

type WeekSession struct {
	ID            string         `json:"id"`
	WeekNumber    int            `json:"weekNumber"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	RawContent    string         `json:"rawContent"`
	Focus         []string       `json:"focus"`
	TotalDuration int            `json:"totalDuration"`
	DailySessions []DailySession `json:"dailySessions"`
	Notes         []string       `json:"notes,omitempty"`

	CoachingPlanName string `json:"coachingPlanName,omitempty"`
	EntityName       string `json:"entityName,omitempty"`
	TrainingTime     string `json:"trainingTime,omitempty"`
}

type DailySession struct {
	ID              string         `json:"id"`
	WeekNumber      int            `json:"weekNumber"`
	DayNumber       int            `json:"dayNumber"`
	Day             string         `json:"day"`
	Date            string         `json:"date"`
	RawContent      string         `json:"rawContent"`
	IsSharedSession bool           `json:"isSharedSession"`
	SharedWith      []string       `json:"sharedWith,omitempty"`
	SessionsForDay  []SessionEntry `json:"sessionsForDay"`
	Notes           []string       `json:"notes,omitempty"`

	CoachingPlanName string `json:"coachingPlanName,omitempty"`
	EntityName       string `json:"entityName,omitempty"`
	TrainingTime     string `json:"trainingTime,omitempty"`
}

// SessionEntry is one training session, the leaf of the tree.
type SessionEntry struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Time                 string      `json:"time"`
	Duration             int         `json:"duration"`
	Location             string      `json:"location"`
	Type                 string      `json:"type"`
	Activities           []string    `json:"activities"`
	Drills               []string    `json:"drills"`
	Objectives           []string    `json:"objectives"`
	Equipment            []string    `json:"equipment"`
	Focus                []string    `json:"focus"`
	Notes                []string    `json:"notes,omitempty"`
	RawContent           string      `json:"rawContent"`
	Academy              AcademyInfo `json:"academyInfo"`
	ExtractionConfidence float64     `json:"extractionConfidence"`
	ExtractionWarnings   []string    `json:"extractionWarnings"`
	// DefaultedFields names the fields that fell back to their documented default.
	DefaultedFields []string `json:"defaultedFields,omitempty"`

	CoachingPlanName string `json:"coachingPlanName,omitempty"`
	EntityName       string `json:"entityName,omitempty"`
	TrainingTime     string `json:"trainingTime,omitempty"`
}

// Defaulted reports whether field fell back to its default value.
func (s SessionEntry) Defaulted(field string) bool {
	for _, f := range s.DefaultedFields {
		if f == field {
			return true
		}
	}
	return false
}

type Scores struct {
	Structure    float64 `json:"structureScore"`
	Content      float64 `json:"contentScore"`
	Consistency  float64 `json:"consistencyScore"`
	Completeness float64 `json:"completenessScore"`
}

// Total is the sum of the four sub-scores (0..100).
func (s Scores) Total() float64 {
	return s.Structure + s.Content + s.Consistency + s.Completeness
}

type SessionValidation struct {
	SessionID  string   `json:"sessionId"`
	WeekNumber int      `json:"weekNumber"`
	Day        string   `json:"day"`
	Confidence float64  `json:"confidence"`
	Valid      bool     `json:"valid"`
	Warnings   []string `json:"warnings,omitempty"`
}

type ValidationReport struct {
	OverallConfidence float64             `json:"overallConfidence"`
	Scores            Scores              `json:"scores"`
	Warnings          []string            `json:"warnings"`
	Errors            []string            `json:"errors"`
	PerSession        []SessionValidation `json:"perSessionValidation"`
	WeekShortfall     bool                `json:"weekShortfall"`
	NeedsReview       bool                `json:"needsReview"`
}

// Detection is the language detector's verdict for a document.
type Detection struct {
	Language   string `json:"language"`
	Confidence string `json:"confidence"`
	Score      int    `json:"score"`
}

// Result is the output of one extraction call, owned by the caller after return.
type Result struct {
	AcademyInfo         AcademyInfo         `json:"academyInfo"`
	Sessions            []WeekSession       `json:"sessions"`
	StructureAnalysis   StructureAnalysis   `json:"structureAnalysis"`
	Language            Detection           `json:"language"`
	TotalWeeks          int                 `json:"totalWeeks"`
	TotalSessions       int                 `json:"totalSessions"`
	OrganizationPattern OrganizationPattern `json:"organizationPattern"`
	Strategy            string              `json:"strategy"`
	ExtractedAt         string              `json:"extractedAt"`
	SourceDocument      string              `json:"sourceDocument"`
	SourcePlan          string              `json:"sourcePlan"`
	Validation          ValidationReport    `json:"validation"`
}

// Request carries everything a strategy needs for one document.
type Request struct {
	Document Document
	Analysis StructureAnalysis
	Academy  AcademyInfo
	BaseDate time.Time
}

// Strategy builds the week tree for one organization pattern.
type Strategy interface {
	Pattern() OrganizationPattern
	Extract(ctx context.Context, req Request) ([]WeekSession, error)
	Name() string
}

// CountSessions returns the number of SessionEntry leaves in weeks.
func CountSessions(weeks []WeekSession) int {
	n := 0
	for _, w := range weeks {
		for _, d := range w.DailySessions {
			n += len(d.SessionsForDay)
		}
	}
	return n
}
