// SPDX-License-Identifier: Apache-2.0

// Package validate scores an extracted week tree as a whole and per session.
// Findings are returned as data; nothing here fails.
package validate

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/fields"
	"github.com/academyplan/academyplan-mcp/internal/schedule/structure"
)

const (
	// DefaultReviewThreshold is the overall confidence below which a result needs review.
	DefaultReviewThreshold = 0.6
	// ValidSession is the per-session confidence at which a session counts as valid.
	ValidSession = 0.6

	minSessionConfidence = 0.3
	maxSubScore          = 25.0
)

// Validator scores extraction results against a review threshold.
type Validator struct {
	reviewThreshold float64
}

// New returns a Validator. A non-positive threshold selects DefaultReviewThreshold.
func New(reviewThreshold float64) *Validator {
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	return &Validator{reviewThreshold: reviewThreshold}
}

// Score computes the four sub-scores, the overall confidence, and the
// per-session validations for weeks.
func (v *Validator) Score(weeks []schedule.WeekSession, analysis schedule.StructureAnalysis) schedule.ValidationReport {
	r := schedule.ValidationReport{
		Warnings: []string{},
		Errors:   []string{},
	}

	r.Scores.Structure = structure.CertaintyScore(analysis.Certainty)
	r.Scores.Content = contentScore(weeks, &r)
	r.Scores.Consistency = consistencyScore(weeks, &r)
	r.Scores.Completeness = completenessScore(weeks, analysis, &r)
	structuralErrors(weeks, &r)

	for _, w := range weeks {
		for _, d := range w.DailySessions {
			for _, s := range d.SessionsForDay {
				conf, warnings := Session(s)
				r.PerSession = append(r.PerSession, schedule.SessionValidation{
					SessionID:  s.ID,
					WeekNumber: w.WeekNumber,
					Day:        d.Day,
					Confidence: conf,
					Valid:      conf >= ValidSession,
					Warnings:   warnings,
				})
			}
		}
	}

	r.OverallConfidence = round2(r.Scores.Total() / 100)
	r.NeedsReview = r.OverallConfidence < v.reviewThreshold
	return r
}

// Session scores one session on its own, starting from 1.0.
func Session(s schedule.SessionEntry) (float64, []string) {
	conf := 1.0
	var warnings []string
	if s.Duration <= 0 || s.Defaulted(fields.FieldDuration) {
		conf -= 0.15
		warnings = append(warnings, "missing duration")
	}
	if s.Duration > 0 && (s.Duration < 30 || s.Duration > 180) {
		conf -= 0.05
		warnings = append(warnings, fmt.Sprintf("implausible duration of %d minutes", s.Duration))
	}
	if utf8.RuneCountInString(s.RawContent) < 50 {
		conf -= 0.15
		warnings = append(warnings, "session content shorter than 50 characters")
	}
	if len(s.Activities) == 0 || s.Defaulted(fields.FieldActivities) {
		conf -= 0.10
		warnings = append(warnings, "missing activities")
	}
	if len(s.Focus) == 0 || s.Defaulted(fields.FieldFocus) {
		conf -= 0.10
		warnings = append(warnings, "missing focus")
	}
	return math.Max(minSessionConfidence, round2(conf)), warnings
}

// Annotate copies each session's validation onto the session itself: the
// confidence replaces the session's own, and warnings not already present are
// appended. It mutates weeks in place and is meant to run before the tree is
// handed out.
func Annotate(weeks []schedule.WeekSession, report schedule.ValidationReport) {
	byID := make(map[string]schedule.SessionValidation, len(report.PerSession))
	for _, sv := range report.PerSession {
		byID[sv.SessionID] = sv
	}
	for i := range weeks {
		for j := range weeks[i].DailySessions {
			sessions := weeks[i].DailySessions[j].SessionsForDay
			for k := range sessions {
				sv, ok := byID[sessions[k].ID]
				if !ok {
					continue
				}
				sessions[k].ExtractionConfidence = sv.Confidence
				for _, w := range sv.Warnings {
					if !contains(sessions[k].ExtractionWarnings, w) {
						sessions[k].ExtractionWarnings = append(sessions[k].ExtractionWarnings, w)
					}
				}
			}
		}
	}
}

func contentScore(weeks []schedule.WeekSession, r *schedule.ValidationReport) float64 {
	total, n := 0, 0
	for _, w := range weeks {
		for _, d := range w.DailySessions {
			for _, s := range d.SessionsForDay {
				total += utf8.RuneCountInString(s.RawContent)
				n++
			}
		}
	}
	if n == 0 {
		r.Errors = append(r.Errors, "no sessions extracted")
		return 0
	}
	mean := float64(total) / float64(n)
	switch {
	case mean > 500:
		return 25
	case mean > 200:
		return 18
	case mean > 100:
		return 10
	}
	if mean < 100 {
		r.Errors = append(r.Errors, fmt.Sprintf("average session content is %.0f characters, below 100", mean))
	}
	return 5
}

func consistencyScore(weeks []schedule.WeekSession, r *schedule.ValidationReport) float64 {
	score := maxSubScore

	counts := make(map[int]int)
	for _, w := range weeks {
		counts[w.WeekNumber]++
	}
	numbers := make([]int, 0, len(counts))
	for n, c := range counts {
		numbers = append(numbers, n)
		if c > 1 {
			score -= 3 * float64(c-1)
			r.Errors = append(r.Errors, fmt.Sprintf("duplicate week number %d", n))
		}
	}
	sort.Ints(numbers)
	for i := 1; i < len(numbers); i++ {
		if numbers[i]-numbers[i-1] > 1 {
			score -= 3
			r.Warnings = append(r.Warnings, fmt.Sprintf("gap in week numbering between week %d and week %d", numbers[i-1], numbers[i]))
		}
	}

	if len(weeks) > 1 {
		lo, hi := math.MaxInt, 0
		for _, w := range weeks {
			n := 0
			for _, d := range w.DailySessions {
				n += len(d.SessionsForDay)
			}
			lo, hi = min(lo, n), max(hi, n)
		}
		if hi-lo > 2 {
			score -= 5
			r.Warnings = append(r.Warnings, fmt.Sprintf("session count per week varies from %d to %d", lo, hi))
		}
	}

	var durations []int
	for _, w := range weeks {
		for _, d := range w.DailySessions {
			for _, s := range d.SessionsForDay {
				durations = append(durations, s.Duration)
			}
		}
	}
	if len(durations) > 0 {
		sum := 0
		for _, d := range durations {
			sum += d
		}
		mean := float64(sum) / float64(len(durations))
		for _, d := range durations {
			if math.Abs(float64(d)-mean) > 0.5*mean {
				score -= 3
				r.Warnings = append(r.Warnings, fmt.Sprintf("session durations deviate more than 50%% from the mean of %.0f minutes", mean))
				break
			}
		}
	}
	return math.Max(0, score)
}

func completenessScore(weeks []schedule.WeekSession, analysis schedule.StructureAnalysis, r *schedule.ValidationReport) float64 {
	score := maxSubScore
	weekCount := len(weeks)

	if analysis.ExpectedWeeks > 0 && float64(weekCount) < 0.8*float64(analysis.ExpectedWeeks) {
		score -= 10
		r.WeekShortfall = true
		r.Warnings = append(r.Warnings, fmt.Sprintf("extracted %d weeks but the document suggests %d", weekCount, analysis.ExpectedWeeks))
	}

	var missingDuration, missingActivities, missingFocus int
	for _, w := range weeks {
		for _, d := range w.DailySessions {
			for _, s := range d.SessionsForDay {
				if s.Duration <= 0 || s.Defaulted(fields.FieldDuration) {
					missingDuration++
				}
				if len(s.Activities) == 0 || s.Defaulted(fields.FieldActivities) {
					missingActivities++
				}
				if len(s.Focus) == 0 || s.Defaulted(fields.FieldFocus) {
					missingFocus++
				}
			}
		}
	}
	limit := 2 * weekCount
	for _, m := range []struct {
		field   string
		missing int
	}{
		{fields.FieldDuration, missingDuration},
		{fields.FieldActivities, missingActivities},
		{fields.FieldFocus, missingFocus},
	} {
		if m.missing > limit {
			score -= 8
			r.Warnings = append(r.Warnings, fmt.Sprintf("%d sessions are missing %s", m.missing, m.field))
		}
	}
	return math.Max(0, score)
}

// structuralErrors checks tree invariants: week totals and shared-day symmetry.
func structuralErrors(weeks []schedule.WeekSession, r *schedule.ValidationReport) {
	for _, w := range weeks {
		sum := 0
		byDay := make(map[string]schedule.DailySession, len(w.DailySessions))
		for _, d := range w.DailySessions {
			byDay[d.Day] = d
			for _, s := range d.SessionsForDay {
				sum += s.Duration
			}
		}
		if sum != w.TotalDuration {
			r.Errors = append(r.Errors, fmt.Sprintf("week %d total duration %d does not match session sum %d", w.WeekNumber, w.TotalDuration, sum))
		}
		for _, d := range w.DailySessions {
			if !d.IsSharedSession {
				continue
			}
			for _, other := range d.SharedWith {
				o, ok := byDay[other]
				if !ok || !o.IsSharedSession || !contains(o.SharedWith, d.Day) || o.RawContent != d.RawContent {
					r.Errors = append(r.Errors, fmt.Sprintf("week %d: shared session between %s and %s is not symmetric", w.WeekNumber, d.Day, other))
				}
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
