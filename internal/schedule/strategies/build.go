// SPDX-License-Identifier: Apache-2.0

package strategies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/fields"
	"github.com/academyplan/academyplan-mcp/internal/schedule/grouping"
	"github.com/academyplan/academyplan-mcp/internal/schedule/markers"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
	"github.com/academyplan/academyplan-mcp/internal/schedule/validate"
)

// builder holds the collaborators shared by every strategy and turns text
// spans into tree nodes.
type builder struct {
	lib *patterns.Library
	x   *fields.Extractor
}

func newBuilder(lib *patterns.Library) builder {
	return builder{lib: lib, x: fields.New(lib)}
}

// draft is the input for one SessionEntry.
type draft struct {
	id    string
	title string
	text  string
	// hint is searched for time and duration when text has none, e.g. a day
	// header such as "Monday (1 hour)".
	hint      string
	academy   schedule.AcademyInfo
	weekFocus string
}

// session runs every field extractor over d.text. Each field that falls back
// to its default is recorded in DefaultedFields with a warning.
func (b builder) session(d draft) schedule.SessionEntry {
	s := schedule.SessionEntry{
		ID:         d.id,
		Title:      d.title,
		RawContent: d.text,
		Academy:    d.academy,
	}
	miss := func(field, warning string) {
		s.DefaultedFields = append(s.DefaultedFields, field)
		s.ExtractionWarnings = append(s.ExtractionWarnings, warning)
	}

	var ok bool
	if s.Time, ok = lookup(fields.Time, d.text, d.hint); !ok {
		miss(fields.FieldTime, "time not found, defaulted to "+fields.DefaultTime)
	}
	if s.Duration, ok = lookup(fields.Duration, d.text, d.hint); !ok {
		miss(fields.FieldDuration, fmt.Sprintf("duration not found, defaulted to %d minutes", fields.DefaultDuration))
	}
	if s.Location, ok = b.x.Location(d.text); !ok {
		if d.academy.Location != "" {
			s.Location = d.academy.Location
		} else {
			miss(fields.FieldLocation, "location not found, defaulted to "+fields.DefaultLocation)
		}
	}
	if s.Activities, ok = b.x.Activities(d.text); !ok {
		s.Activities = []string{}
		miss(fields.FieldActivities, "no activities found")
	}
	if s.Focus, ok = b.x.Focus(d.text, ""); !ok {
		if d.weekFocus != "" {
			s.Focus = []string{d.weekFocus}
		} else {
			miss(fields.FieldFocus, "focus not found, defaulted to "+fields.DefaultFocus)
		}
	}
	s.Type = b.x.SessionType(d.text)
	s.Drills = orEmpty(b.x.Drills(d.text))
	s.Objectives = orEmpty(b.x.Objectives(d.text))
	s.Equipment = orEmpty(b.x.Equipment(d.text, d.academy.Sport))
	s.Notes = b.x.Notes(d.text)
	if s.ExtractionWarnings == nil {
		s.ExtractionWarnings = []string{}
	}
	s.ExtractionConfidence, _ = validate.Session(s)
	return s
}

func lookup[T any](extract func(string) (T, bool), text, hint string) (T, bool) {
	v, ok := extract(text)
	if ok || hint == "" {
		return v, ok
	}
	return extract(hint)
}

// block is one session's slice of a day.
type block struct {
	title string
	text  string
}

// splitSessions cuts day content into sessions on the strongest marker class
// present: "Session N" labels, then clock-time lines, then category headings.
// Text before the first marker belongs to the first session.
func (b builder) splitSessions(m *markers.Matcher, content string) []block {
	lines := strings.Split(content, "\n")
	var labels, timed, headings []int
	for i, l := range lines {
		if h, ok := m.Session(l); ok {
			if h.Timed {
				timed = append(timed, i)
			} else {
				labels = append(labels, i)
			}
			continue
		}
		if _, ok := b.x.CategoryHeading(l); ok {
			headings = append(headings, i)
		}
	}

	var cuts []int
	switch {
	case len(labels) > 0:
		cuts = labels
	case len(timed) > 1:
		cuts = timed
	case len(headings) > 1:
		cuts = headings
	default:
		return []block{{text: content}}
	}

	out := make([]block, 0, len(cuts))
	for k, c := range cuts {
		end := len(lines)
		if k+1 < len(cuts) {
			end = cuts[k+1]
		}
		text := trim(lines[c:end])
		if k == 0 {
			if pre := trim(lines[:c]); pre != "" {
				text = pre + "\n" + text
			}
		}
		out = append(out, block{title: fields.CleanLine(lines[c]), text: text})
	}
	return out
}

// day builds one DailySession from a day group.
func (b builder) day(req schedule.Request, m *markers.Matcher, weekID string, weekNumber, dayNumber int, g grouping.DayGroup, weekFocus string) schedule.DailySession {
	d := schedule.DailySession{
		ID:              schedule.DayID(weekID, dayNumber, g.Day),
		WeekNumber:      weekNumber,
		DayNumber:       dayNumber,
		Day:             g.Day,
		Date:            schedule.FormatDate(weekNumber, g.Day, req.BaseDate),
		RawContent:      g.Content,
		IsSharedSession: g.IsShared,
		SharedWith:      g.SharedWith,
	}

	content := g.Content
	if strings.TrimSpace(content) == "" {
		content = g.Header
	}
	blocks := b.splitSessions(m, content)
	for k, blk := range blocks {
		dr := draft{
			id:        schedule.SessionID(d.ID, k),
			title:     blk.title,
			text:      blk.text,
			academy:   req.Academy,
			weekFocus: weekFocus,
		}
		if len(blocks) == 1 {
			dr.hint = g.Header
			dr.title = dayTitle(g)
		}
		s := b.session(dr)
		if g.Incomplete {
			s.ExtractionWarnings = append(s.ExtractionWarnings, grouping.IncompleteNote)
		}
		d.SessionsForDay = append(d.SessionsForDay, s)
	}
	if g.Incomplete {
		d.Notes = append(d.Notes, grouping.IncompleteNote)
	}
	return d
}

// overview builds the single week_overview day that carries a whole week.
func (b builder) overview(req schedule.Request, weekID string, weekNumber int, text, weekFocus string) schedule.DailySession {
	d := schedule.DailySession{
		ID:         schedule.DayID(weekID, 1, schedule.DayWeekOverview),
		WeekNumber: weekNumber,
		DayNumber:  1,
		Day:        schedule.DayWeekOverview,
		Date:       schedule.FormatDate(weekNumber, schedule.DayWeekOverview, req.BaseDate),
		RawContent: text,
	}
	d.SessionsForDay = []schedule.SessionEntry{b.session(draft{
		id:        schedule.SessionID(d.ID, 0),
		title:     fmt.Sprintf("Week %d Overview", weekNumber),
		text:      text,
		academy:   req.Academy,
		weekFocus: weekFocus,
	})}
	return d
}

// week fills the week-level fields derived from its text and days.
func (b builder) week(id string, number int, title, text, preamble string, days []schedule.DailySession) schedule.WeekSession {
	focus, _ := b.x.Focus(text, title)
	desc := preamble
	if strings.TrimSpace(desc) == "" {
		desc = text
	}
	return finish(schedule.WeekSession{
		ID:            id,
		WeekNumber:    number,
		Title:         fields.WeekTitle(number, title, focus),
		Description:   b.x.Description(desc),
		RawContent:    text,
		Focus:         focus,
		DailySessions: days,
	})
}

// finish sets TotalDuration to the sum of session durations.
func finish(w schedule.WeekSession) schedule.WeekSession {
	w.TotalDuration = 0
	for _, d := range w.DailySessions {
		for _, s := range d.SessionsForDay {
			w.TotalDuration += s.Duration
		}
	}
	return w
}

func sortWeeks(weeks []schedule.WeekSession) {
	sort.SliceStable(weeks, func(i, j int) bool { return weeks[i].WeekNumber < weeks[j].WeekNumber })
}

func dayTitle(g grouping.DayGroup) string {
	if t := fields.TitleFocus(g.Header); t != "" {
		return t
	}
	return dayLabel(g.Day) + " Training"
}

func dayLabel(day string) string {
	if day == "" {
		return ""
	}
	return strings.ToUpper(day[:1]) + day[1:]
}

func trim(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
