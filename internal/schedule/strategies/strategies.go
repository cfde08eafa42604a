// SPDX-License-Identifier: Apache-2.0

// Package strategies implements one extraction strategy per organization
// pattern. Every strategy can be invoked on its own and falls back to the
// synthetic unstructured plan when its evidence is insufficient.
package strategies

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/fields"
	"github.com/academyplan/academyplan-mcp/internal/schedule/grouping"
	"github.com/academyplan/academyplan-mcp/internal/schedule/markers"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
	"github.com/academyplan/academyplan-mcp/internal/schedule/validate"
)

const (
	// DaysPerWeek bounds the training days grouped into one week by DailyOnly.
	DaysPerWeek = 5
	// SessionsPerWeek is the number of sessions grouped into one week by SessionBased.
	SessionsPerWeek = 3

	fallbackWeeks     = 4
	fallbackRawLength = 1000
)

// sessionDays maps a session's position within its week to a weekday.
var sessionDays = []string{"monday", "wednesday", "friday", "tuesday", "thursday", "saturday", "sunday"}

// fallbackDays are the training days of the synthetic plan.
var fallbackDays = []string{"monday", "wednesday", "friday"}

// All returns one strategy per organization pattern, most structured first.
func All(lib *patterns.Library) []schedule.Strategy {
	return []schedule.Strategy{
		NewWeeklyWithDays(lib),
		NewWeeklyOnly(lib),
		NewDailyOnly(lib),
		NewSessionBased(lib),
		NewUnstructured(lib),
	}
}

// ---------------------------------------------------------------------------
// weekly_with_days
// ---------------------------------------------------------------------------

// WeeklyWithDays slices the document at week headers and groups each week's
// text into days, splitting days into sessions on secondary markers.
type WeeklyWithDays struct {
	b builder
}

func NewWeeklyWithDays(lib *patterns.Library) *WeeklyWithDays {
	return &WeeklyWithDays{b: newBuilder(lib)}
}

func (s *WeeklyWithDays) Name() string { return string(s.Pattern()) }

func (s *WeeklyWithDays) Pattern() schedule.OrganizationPattern {
	return schedule.PatternWeeklyWithDays
}

func (s *WeeklyWithDays) Extract(ctx context.Context, req schedule.Request) ([]schedule.WeekSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices := weekSlices(req.Document.Text, req.Analysis.Weeks)
	if len(slices) == 0 {
		return s.b.synthetic(req), nil
	}

	m := markers.For(s.b.lib, req.Analysis.Language)
	g := grouping.New(s.b.lib, req.Analysis.Language)

	weeks := make([]schedule.WeekSession, 0, len(slices))
	for i, sl := range slices {
		id := schedule.WeekID(req.Document.ID, i, sl.marker.Number)
		focus := fields.TitleFocus(sl.header)
		grp := g.GroupDaysInWeek(sl.text)

		var days []schedule.DailySession
		if len(grp.Days) == 0 {
			days = []schedule.DailySession{s.b.overview(req, id, sl.marker.Number, sl.text, focus)}
		} else {
			for j, dg := range grp.Days {
				days = append(days, s.b.day(req, m, id, sl.marker.Number, j+1, dg, focus))
			}
		}

		w := s.b.week(id, sl.marker.Number, sl.marker.Title, sl.text, grp.Preamble, days)
		if grp.Trailing != "" {
			w.Notes = append(w.Notes, grp.Trailing)
		}
		weeks = append(weeks, w)
	}
	sortWeeks(weeks)
	return weeks, nil
}

// ---------------------------------------------------------------------------
// weekly_only
// ---------------------------------------------------------------------------

// WeeklyOnly produces one week_overview session per week carrying the full
// week text.
type WeeklyOnly struct {
	b builder
}

func NewWeeklyOnly(lib *patterns.Library) *WeeklyOnly {
	return &WeeklyOnly{b: newBuilder(lib)}
}

func (s *WeeklyOnly) Name() string { return string(s.Pattern()) }

func (s *WeeklyOnly) Pattern() schedule.OrganizationPattern {
	return schedule.PatternWeeklyOnly
}

func (s *WeeklyOnly) Extract(ctx context.Context, req schedule.Request) ([]schedule.WeekSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices := weekSlices(req.Document.Text, req.Analysis.Weeks)
	if len(slices) == 0 {
		return s.b.synthetic(req), nil
	}
	weeks := make([]schedule.WeekSession, 0, len(slices))
	for i, sl := range slices {
		id := schedule.WeekID(req.Document.ID, i, sl.marker.Number)
		focus := fields.TitleFocus(sl.header)
		day := s.b.overview(req, id, sl.marker.Number, sl.text, focus)
		weeks = append(weeks, s.b.week(id, sl.marker.Number, sl.marker.Title, sl.text, "", []schedule.DailySession{day}))
	}
	sortWeeks(weeks)
	return weeks, nil
}

// ---------------------------------------------------------------------------
// daily_only
// ---------------------------------------------------------------------------

// DailyOnly partitions day headers ordinally into weeks of at most
// DaysPerWeek days, keeping the days of one shared header together; every day
// yields exactly one session.
type DailyOnly struct {
	b builder
}

func NewDailyOnly(lib *patterns.Library) *DailyOnly {
	return &DailyOnly{b: newBuilder(lib)}
}

func (s *DailyOnly) Name() string { return string(s.Pattern()) }

func (s *DailyOnly) Pattern() schedule.OrganizationPattern {
	return schedule.PatternDailyOnly
}

func (s *DailyOnly) Extract(ctx context.Context, req schedule.Request) ([]schedule.WeekSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	grp := grouping.New(s.b.lib, req.Analysis.Language).SplitDays(req.Document.Text)
	if len(grp.Days) == 0 {
		return s.b.synthetic(req), nil
	}

	var weeks []schedule.WeekSession
	for i, chunk := range weekChunks(grp.Days) {
		number := i + 1
		id := schedule.WeekID(req.Document.ID, i, number)

		var days []schedule.DailySession
		var parts []string
		for j, dg := range chunk {
			d := schedule.DailySession{
				ID:              schedule.DayID(id, j+1, dg.Day),
				WeekNumber:      number,
				DayNumber:       j + 1,
				Day:             dg.Day,
				Date:            schedule.FormatDate(number, dg.Day, req.BaseDate),
				RawContent:      dg.Content,
				IsSharedSession: dg.IsShared,
				SharedWith:      dg.SharedWith,
			}
			text := dg.Content
			if strings.TrimSpace(text) == "" {
				text = dg.Header
			}
			ses := s.b.session(draft{
				id:      schedule.SessionID(d.ID, 0),
				title:   dayTitle(dg),
				text:    text,
				hint:    dg.Header,
				academy: req.Academy,
			})
			if dg.Incomplete {
				ses.ExtractionWarnings = append(ses.ExtractionWarnings, grouping.IncompleteNote)
				d.Notes = append(d.Notes, grouping.IncompleteNote)
			}
			d.SessionsForDay = []schedule.SessionEntry{ses}
			days = append(days, d)
			parts = append(parts, strings.TrimSpace(dg.Header+"\n"+dg.Content))
		}

		preamble := ""
		if i == 0 {
			preamble = grp.Preamble
		}
		weeks = append(weeks, s.b.week(id, number, "", strings.Join(parts, "\n\n"), preamble, days))
	}
	return weeks, nil
}

// weekChunks partitions days into weeks of at most DaysPerWeek days without
// splitting a shared group: a group crossing the boundary opens the next week,
// or extends the current one when the group already opens it.
func weekChunks(days []grouping.DayGroup) [][]grouping.DayGroup {
	var out [][]grouping.DayGroup
	for start := 0; start < len(days); {
		end := min(start+DaysPerWeek, len(days))
		if end < len(days) && sameGroup(days[end-1], days[end]) {
			first := end - 1
			for first > start && sameGroup(days[first-1], days[first]) {
				first--
			}
			if first > start {
				end = first
			} else {
				for end < len(days) && sameGroup(days[end-1], days[end]) {
					end++
				}
			}
		}
		out = append(out, days[start:end])
		start = end
	}
	return out
}

func sameGroup(a, b grouping.DayGroup) bool {
	return a.IsShared && b.IsShared && a.Line == b.Line
}

// ---------------------------------------------------------------------------
// session_based
// ---------------------------------------------------------------------------

// SessionBased groups session markers SessionsPerWeek to a week in encounter
// order and assigns each a weekday by its position within the week.
type SessionBased struct {
	b builder
}

func NewSessionBased(lib *patterns.Library) *SessionBased {
	return &SessionBased{b: newBuilder(lib)}
}

func (s *SessionBased) Name() string { return string(s.Pattern()) }

func (s *SessionBased) Pattern() schedule.OrganizationPattern {
	return schedule.PatternSessionBased
}

func (s *SessionBased) Extract(ctx context.Context, req schedule.Request) ([]schedule.WeekSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines := strings.Split(req.Document.Text, "\n")
	var blocks []block
	for i, mk := range req.Analysis.Sessions {
		if mk.Line < 0 || mk.Line >= len(lines) {
			continue
		}
		end := len(lines)
		if i+1 < len(req.Analysis.Sessions) {
			end = req.Analysis.Sessions[i+1].Line
		}
		text := trim(lines[mk.Line:end])
		if len(blocks) == 0 {
			if pre := trim(lines[:mk.Line]); pre != "" {
				text = pre + "\n" + text
			}
		}
		blocks = append(blocks, block{title: fields.CleanLine(lines[mk.Line]), text: text})
	}
	if len(blocks) == 0 {
		return s.b.synthetic(req), nil
	}

	var weeks []schedule.WeekSession
	for start := 0; start < len(blocks); start += SessionsPerWeek {
		end := min(start+SessionsPerWeek, len(blocks))
		number := start/SessionsPerWeek + 1
		id := schedule.WeekID(req.Document.ID, number-1, number)

		var days []schedule.DailySession
		var parts []string
		for j, blk := range blocks[start:end] {
			day := sessionDays[j%len(sessionDays)]
			d := schedule.DailySession{
				ID:         schedule.DayID(id, j+1, day),
				WeekNumber: number,
				DayNumber:  j + 1,
				Day:        day,
				Date:       schedule.FormatDate(number, day, req.BaseDate),
				RawContent: blk.text,
			}
			d.SessionsForDay = []schedule.SessionEntry{s.b.session(draft{
				id:      schedule.SessionID(d.ID, 0),
				title:   blk.title,
				text:    blk.text,
				academy: req.Academy,
			})}
			days = append(days, d)
			parts = append(parts, blk.text)
		}
		weeks = append(weeks, s.b.week(id, number, "", strings.Join(parts, "\n\n"), "", days))
	}
	return weeks, nil
}

// ---------------------------------------------------------------------------
// unstructured
// ---------------------------------------------------------------------------

// Unstructured is the terminal fallback. It cannot fail.
type Unstructured struct {
	b builder
}

func NewUnstructured(lib *patterns.Library) *Unstructured {
	return &Unstructured{b: newBuilder(lib)}
}

func (s *Unstructured) Name() string { return string(s.Pattern()) }

func (s *Unstructured) Pattern() schedule.OrganizationPattern {
	return schedule.PatternUnstructured
}

func (s *Unstructured) Extract(ctx context.Context, req schedule.Request) ([]schedule.WeekSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.b.synthetic(req), nil
}

// synthetic builds the fallback plan: fallbackWeeks weeks of Monday,
// Wednesday and Friday sessions seeded from the sport's fallback table, all
// carrying the opening text of the document as raw content.
func (b builder) synthetic(req schedule.Request) []schedule.WeekSession {
	fb := b.lib.FallbackFor(req.Academy.Sport)
	raw := req.Document.Text
	if utf8.RuneCountInString(raw) > fallbackRawLength {
		raw = string([]rune(raw)[:fallbackRawLength])
	}
	raw = strings.TrimSpace(raw)

	location := req.Academy.Location
	if location == "" {
		location = fields.DefaultLocation
	}

	weeks := make([]schedule.WeekSession, 0, fallbackWeeks)
	for i := 0; i < fallbackWeeks; i++ {
		number := i + 1
		title := ""
		focus := []string{fields.DefaultFocus}
		if i < len(fb.WeekFocus) {
			title = fb.WeekFocus[i]
			focus = []string{strings.ToLower(fb.WeekFocus[i])}
		}
		id := schedule.WeekID(req.Document.ID, i, number)

		days := make([]schedule.DailySession, 0, len(fallbackDays))
		for j, day := range fallbackDays {
			d := schedule.DailySession{
				ID:         schedule.DayID(id, j+1, day),
				WeekNumber: number,
				DayNumber:  j + 1,
				Day:        day,
				Date:       schedule.FormatDate(number, day, req.BaseDate),
				RawContent: raw,
			}
			ses := schedule.SessionEntry{
				ID:         schedule.SessionID(d.ID, 0),
				Title:      fmt.Sprintf("%s Training", dayLabel(day)),
				Time:       fields.DefaultTime,
				Duration:   fields.DefaultDuration,
				Location:   location,
				Type:       fields.DefaultType,
				Activities: append([]string{}, fb.Activities...),
				Drills:     []string{},
				Objectives: []string{},
				Equipment:  []string{},
				Focus:      append([]string{}, focus...),
				RawContent: raw,
				Academy:    req.Academy,
				DefaultedFields: []string{
					fields.FieldTime, fields.FieldDuration, fields.FieldLocation,
					fields.FieldActivities, fields.FieldFocus,
				},
				ExtractionWarnings: []string{"no recognizable structure, generated from defaults"},
			}
			ses.ExtractionConfidence, _ = validate.Session(ses)
			d.SessionsForDay = []schedule.SessionEntry{ses}
			days = append(days, d)
		}

		weekTitle := fmt.Sprintf("Week %d Training", number)
		if title != "" {
			weekTitle = fmt.Sprintf("Week %d: %s", number, title)
		}
		weeks = append(weeks, finish(schedule.WeekSession{
			ID:            id,
			WeekNumber:    number,
			Title:         weekTitle,
			Description:   b.x.Description(raw),
			RawContent:    raw,
			Focus:         focus,
			DailySessions: days,
		}))
	}
	return weeks
}

// weekSlice is the text of one week, from its header line to the next.
type weekSlice struct {
	marker schedule.WeekMarker
	header string
	text   string
}

func weekSlices(text string, weeks []schedule.WeekMarker) []weekSlice {
	lines := strings.Split(text, "\n")
	out := make([]weekSlice, 0, len(weeks))
	for i, w := range weeks {
		if w.Line < 0 || w.Line >= len(lines) {
			continue
		}
		end := len(lines)
		if i+1 < len(weeks) && weeks[i+1].Line > w.Line {
			end = weeks[i+1].Line
		}
		out = append(out, weekSlice{
			marker: w,
			header: strings.TrimSpace(lines[w.Line]),
			text:   trim(lines[w.Line:end]),
		})
	}
	return out
}
