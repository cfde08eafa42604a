// SPDX-License-Identifier: Apache-2.0

// Package fields pulls individual session fields out of a span of text. Every
// extractor is a pure function that returns a documented default, plus a
// found flag, instead of failing.
package fields

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/academyplan/academyplan-mcp/internal/schedule/markers"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

const (
	DefaultTime     = "08:00"
	DefaultDuration = 90
	DefaultFocus    = "general training"
	DefaultLocation = "Training Ground"
	DefaultType     = "training"

	MaxDescription = 200
)

// Field names recorded in SessionEntry.DefaultedFields.
const (
	FieldTime       = "time"
	FieldDuration   = "duration"
	FieldFocus      = "focus"
	FieldActivities = "activities"
	FieldLocation   = "location"
)

var (
	clock24  = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	clock12  = regexp.MustCompile(`(?i)\b(\d{1,2})(?::([0-5]\d))?\s*(am\b|pm\b|a\.m\.|p\.m\.)`)
	duration = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*-?\s*(minutes?|mins?|minutos?|minuten|minuti|hours?|hrs?|heures?|horas?|stunden?|ore|h)\b`)
	bullet   = regexp.MustCompile(`^\s*(?:\d{1,2}[.)]|[-*•·–]|#+)\s+`)
	numbered = regexp.MustCompile(`^\s*\d{1,2}[.)]\s+`)
)

// Extractor runs the table-driven extractors against one pattern library.
type Extractor struct {
	lib      *patterns.Library
	m        *markers.Matcher
	headings []categoryHeading
}

type categoryHeading struct {
	name string
	re   *regexp.Regexp
}

func New(lib *patterns.Library) *Extractor {
	x := &Extractor{lib: lib, m: markers.For(lib, "")}
	for _, c := range lib.Categories {
		re := regexp.MustCompile(`^[\s#*>•·|\-]*(?:` + patterns.Alternation(c.HeadingTerms()) + `)\s*(?:$|[:\-–—(|*])`)
		x.headings = append(x.headings, categoryHeading{name: c.Name, re: re})
	}
	return x
}

// Library returns the pattern library backing x.
func (x *Extractor) Library() *patterns.Library {
	return x.lib
}

// Time returns the first HH:MM or "H am/pm" time in text as 24-hour HH:MM.
func Time(text string) (string, bool) {
	var best string
	bestAt := -1
	if loc := clock24.FindStringSubmatchIndex(text); loc != nil {
		h, _ := strconv.Atoi(text[loc[2]:loc[3]])
		best, bestAt = formatClock(h, text[loc[4]:loc[5]]), loc[0]
	}
	if loc := clock12.FindStringSubmatchIndex(text); loc != nil && (bestAt < 0 || loc[0] <= bestAt) {
		h, _ := strconv.Atoi(text[loc[2]:loc[3]])
		minutes := "00"
		if loc[4] >= 0 {
			minutes = text[loc[4]:loc[5]]
		}
		if h >= 1 && h <= 12 {
			pm := strings.HasPrefix(strings.ToLower(text[loc[6]:loc[7]]), "p")
			switch {
			case pm && h < 12:
				h += 12
			case !pm && h == 12:
				h = 0
			}
			best, bestAt = formatClock(h, minutes), loc[0]
		}
	}
	if bestAt < 0 {
		return DefaultTime, false
	}
	return best, true
}

func formatClock(h int, minutes string) string {
	return twoDigits(h) + ":" + minutes
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Duration returns the first "<number> <unit>" duration in minutes; hours are
// converted to minutes.
func Duration(text string) (int, bool) {
	for _, sm := range duration.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.Replace(sm[1], ",", ".", 1), 64)
		if err != nil || v <= 0 {
			continue
		}
		unit := strings.ToLower(sm[2])
		if strings.HasPrefix(unit, "h") || strings.HasPrefix(unit, "stund") || unit == "ore" {
			v *= 60
		}
		if m := int(math.Round(v)); m > 0 {
			return m, true
		}
	}
	return DefaultDuration, false
}

// TitleFocus returns the text following the first ':' or dash separator of a
// header line, e.g. "Week 3: Passing Under Pressure" gives "Passing Under Pressure".
func TitleFocus(header string) string {
	for _, sep := range []string{":", " - ", " – ", " — ", "–", "—"} {
		if i := strings.Index(header, sep); i >= 0 {
			return cleanTitle(header[i+len(sep):])
		}
	}
	return ""
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*#_|"))
	if utf8.RuneCountInString(s) > 80 {
		return ""
	}
	return s
}

// Focus returns the title focus (if any) followed by every focus keyword found
// in text. Without either it returns the default focus.
func (x *Extractor) Focus(text, title string) ([]string, bool) {
	var out []string
	seen := make(map[string]bool)
	if t := cleanTitle(title); t != "" {
		out = append(out, t)
		seen[patterns.Fold(t)] = true
	}
	folded := patterns.Fold(text)
	for _, kw := range x.lib.FocusKeywords {
		if seen[kw] || !patterns.ContainsWord(folded, kw) {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	if len(out) == 0 {
		return []string{DefaultFocus}, false
	}
	return out, true
}

// WeekTitle prefers an explicit header title and otherwise synthesizes one
// from the detected focus.
func WeekTitle(weekNumber int, title string, focus []string) string {
	prefix := "Week " + strconv.Itoa(weekNumber)
	if t := cleanTitle(title); t != "" {
		return prefix + ": " + t
	}
	var named []string
	for _, f := range focus {
		if f != DefaultFocus {
			named = append(named, titleCase(f))
		}
		if len(named) == 2 {
			break
		}
	}
	if len(named) == 0 {
		return prefix + " Training"
	}
	return prefix + ": " + strings.Join(named, " & ")
}

// Description joins the first few content lines that are neither headers nor
// pure scheduling lines, truncated to MaxDescription characters.
func (x *Extractor) Description(text string) string {
	var picked []string
	for _, line := range strings.Split(text, "\n") {
		l := CleanLine(line)
		if l == "" || x.isScheduling(line) {
			continue
		}
		picked = append(picked, l)
		if len(picked) == 3 {
			break
		}
	}
	return truncate(strings.Join(picked, " "), MaxDescription)
}

func (x *Extractor) isScheduling(line string) bool {
	if _, ok := x.m.Week(line); ok {
		return true
	}
	if days, _ := x.m.Days(line); len(days) > 0 {
		return true
	}
	if _, ok := x.m.Session(line); ok {
		return true
	}
	if x.m.Rule(line) {
		return true
	}
	rest := clock24.ReplaceAllString(line, "")
	rest = clock12.ReplaceAllString(rest, "")
	rest = duration.ReplaceAllString(rest, "")
	return strings.Trim(rest, " \t-–—:()|,.*#") == ""
}

// CleanLine strips list markers, markdown emphasis and surrounding space.
func CleanLine(line string) string {
	l := bullet.ReplaceAllString(line, "")
	l = strings.ReplaceAll(l, "**", "")
	return strings.TrimSpace(l)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
