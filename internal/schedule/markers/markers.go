// SPDX-License-Identifier: Apache-2.0

// Package markers recognizes the header lines that give a training document
// its structure: week headers, day headers (single and shared), session
// headers and major section breaks. All matching runs on folded lines.
package markers

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

// MaxWeek bounds valid week numbers; larger numbers are durations, not headers.
const MaxWeek = 52

const decor = `^[\s#*>•·|_\-]*`

// WeekHeader is a parsed "Week N: title" line.
type WeekHeader struct {
	Number int
	Title  string
}

// SessionHeader is a parsed "Session N" or clock-time line.
type SessionHeader struct {
	Label  string
	Number int
	Timed  bool
}

// Matcher holds the compiled header patterns for one vocabulary.
type Matcher struct {
	lib *patterns.Library

	week         *regexp.Regexp
	dayRef       *regexp.Regexp
	shared       *regexp.Regexp
	single       *regexp.Regexp
	session      *regexp.Regexp
	clock        *regexp.Regexp
	alternative  *regexp.Regexp
	rule         *regexp.Regexp
	weeksMention *regexp.Regexp
}

var cache sync.Map // cacheKey -> *Matcher

// For returns the matcher for language (plus English, which mixed-language
// documents almost always carry). An unknown or empty language uses every
// vocabulary in the library.
func For(lib *patterns.Library, language string) *Matcher {
	key := language
	if _, ok := lib.Language(language); !ok {
		key = "*"
	}
	if m, ok := cache.Load(cacheKey{lib, key}); ok {
		return m.(*Matcher)
	}
	m := compile(lib, vocabulary(lib, key))
	actual, _ := cache.LoadOrStore(cacheKey{lib, key}, m)
	return actual.(*Matcher)
}

type cacheKey struct {
	lib *patterns.Library
	key string
}

type vocab struct {
	week, day, session, names []string
}

func vocabulary(lib *patterns.Library, key string) vocab {
	if key == "*" {
		return vocab{lib.AllWeekWords(), lib.AllDayWords(), lib.AllSessionWords(), lib.AllDayNames()}
	}
	var v vocab
	names := append([]string{}, schedule.Weekdays...)
	for _, lang := range lib.Languages {
		if lang.Name != key && lang.Name != "english" {
			continue
		}
		v.week = append(v.week, lang.WeekWords...)
		v.day = append(v.day, lang.DayWords...)
		v.session = append(v.session, lang.SessionWords...)
		names = append(names, lang.DayNames()...)
	}
	v.names = names
	return v
}

func compile(lib *patterns.Library, v vocab) *Matcher {
	week := patterns.Alternation(v.week)
	day := patterns.Alternation(v.day)
	names := patterns.Alternation(v.names)
	session := patterns.Alternation(v.session)

	dayRef := `(?:(?:` + day + `)\s*(\d{1,2})\s*(?:\(\s*(` + names + `)\s*\))?|(` + names + `))`
	sep := `\s*(?:&|/|\+)\s*`
	end := `\s*(?:$|[:\-–—(|,.*])`

	return &Matcher{
		lib:          lib,
		week:         regexp.MustCompile(decor + `(?:` + week + `)\s*#?\s*(\d{1,3})(?:$|[^\d])\s*[:\-–—.)|*]*\s*(.*)$`),
		dayRef:       regexp.MustCompile(dayRef),
		shared:       regexp.MustCompile(decor + dayRef + `(?:` + sep + dayRef + `)+` + end),
		single:       regexp.MustCompile(decor + dayRef + end),
		session:      regexp.MustCompile(decor + `(` + session + `)\s*#?\s*(\d{1,2})(?:$|[^\d])`),
		clock:        regexp.MustCompile(decor + `(\d{1,2}[:.h]\d{2}\s*(?:am|pm)?)\s*(?:$|[-–—:|])`),
		alternative:  regexp.MustCompile(decor + `alternative drills\b`),
		rule:         regexp.MustCompile(`^\s*(?:={5,}|-{5,})\s*$`),
		weeksMention: regexp.MustCompile(`\b(\d{1,3})[ \t\-]*(?:` + week + `)(?:s|n|e|es)?\b`),
	}
}

// Week parses a week header line. Numbers outside [1, MaxWeek] are rejected.
func (m *Matcher) Week(line string) (WeekHeader, bool) {
	folded := patterns.Fold(line)
	loc := m.week.FindStringSubmatchIndex(folded)
	if loc == nil {
		return WeekHeader{}, false
	}
	n, err := strconv.Atoi(folded[loc[2]:loc[3]])
	if err != nil || n < 1 || n > MaxWeek {
		return WeekHeader{}, false
	}
	title := originalTail(line, folded, loc[4])
	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), "*#_|"))
	return WeekHeader{Number: n, Title: title}, true
}

// Days returns the canonical days named by a day header line. shared is true
// when the line names two or more distinct days joined by &, / or +.
func (m *Matcher) Days(line string) (days []string, shared bool) {
	folded := patterns.Fold(line)
	if loc := m.shared.FindStringIndex(folded); loc != nil {
		days = m.refs(folded[loc[0]:loc[1]])
		if len(days) >= 2 {
			return days, true
		}
	}
	if loc := m.single.FindStringIndex(folded); loc != nil {
		days = m.refs(folded[loc[0]:loc[1]])
		if len(days) > 0 {
			return days[:1], false
		}
	}
	return nil, false
}

func (m *Matcher) refs(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sm := range m.dayRef.FindAllStringSubmatch(s, -1) {
		var day string
		switch {
		case sm[2] != "":
			day, _ = m.lib.CanonicalDay(sm[2])
		case sm[3] != "":
			day, _ = m.lib.CanonicalDay(sm[3])
		case sm[1] != "":
			if n, err := strconv.Atoi(sm[1]); err == nil && n > 0 {
				day = schedule.Weekdays[(n-1)%len(schedule.Weekdays)]
			}
		}
		if day != "" && !seen[day] {
			seen[day] = true
			out = append(out, day)
		}
	}
	return out
}

// Session parses an explicit "Session N" label or a leading clock time.
func (m *Matcher) Session(line string) (SessionHeader, bool) {
	folded := patterns.Fold(line)
	if sm := m.session.FindStringSubmatch(folded); sm != nil {
		n, _ := strconv.Atoi(sm[2])
		return SessionHeader{Label: strings.TrimSpace(line), Number: n}, true
	}
	if sm := m.clock.FindStringSubmatch(folded); sm != nil {
		return SessionHeader{Label: strings.TrimSpace(line), Timed: true}, true
	}
	return SessionHeader{}, false
}

// Rule reports whether line is a long rule of '=' or '-' characters.
func (m *Matcher) Rule(line string) bool {
	return m.rule.MatchString(line)
}

// MajorSection reports whether line starts a section that ends any day's
// content: a week header, an "Alternative Drills" heading or a long rule.
func (m *Matcher) MajorSection(line string) bool {
	if m.rule.MatchString(line) {
		return true
	}
	if _, ok := m.Week(line); ok {
		return true
	}
	return m.alternative.MatchString(patterns.Fold(line))
}

// ExpectedWeeks returns the largest "N weeks" / "N-week" mention within
// [1, MaxWeek], or 0 when the text mentions none.
func (m *Matcher) ExpectedWeeks(text string) int {
	best := 0
	for _, sm := range m.weeksMention.FindAllStringSubmatch(patterns.Fold(text), -1) {
		n, err := strconv.Atoi(sm[1])
		if err == nil && n >= 1 && n <= MaxWeek && n > best {
			best = n
		}
	}
	return best
}

// originalTail returns the part of original that corresponds to folded[idx:].
// Folding keeps one rune per rune for Latin text; when it does not, the folded
// tail is returned instead.
func originalTail(original, folded string, idx int) string {
	if idx < 0 || idx > len(folded) {
		return ""
	}
	if utf8.RuneCountInString(original) != utf8.RuneCountInString(folded) {
		return folded[idx:]
	}
	skip := utf8.RuneCountInString(folded[:idx])
	for i := range original {
		if skip == 0 {
			return original[i:]
		}
		skip--
	}
	return ""
}
