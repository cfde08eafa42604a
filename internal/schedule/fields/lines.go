// SPDX-License-Identifier: Apache-2.0

package fields

import (
	"regexp"
	"strings"

	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

// lineRule classifies a folded line by keyword containment.
type lineRule struct {
	keywords []string
}

func (r lineRule) matches(folded string) bool {
	for _, kw := range r.keywords {
		if patterns.ContainsWord(folded, kw) {
			return true
		}
	}
	return false
}

var (
	drillRule     = lineRule{keywords: []string{"drill", "drills", "exercise", "exercises", "ejercicio", "ejercicios", "exercice", "exercices", "ubung", "ubungen", "esercizio", "esercizi"}}
	objectiveRule = lineRule{keywords: []string{"focus", "objective", "objectives", "goal", "goals", "emphasize", "emphasise", "emphasis", "aim", "objetivo", "objectif", "ziel", "obiettivo"}}
	noteRule      = lineRule{keywords: []string{"note", "notes", "tip", "tips", "remember", "important", "nota", "remarque", "hinweis", "attention"}}
	matchRule     = lineRule{keywords: []string{"match", "game day", "friendly", "tournament", "partido", "spiel", "partita"}}
	recoveryRule  = lineRule{keywords: []string{"rest", "recovery", "day off", "descanso", "repos", "ruhetag", "riposo"}}
)

var durationToken = regexp.MustCompile(`(?i)\d+\s*-?\s*(?:minutes?|mins?|hours?|hrs?|reps?|sets?|x\s*\d+)\b|\d+\s*x\s*\d+`)

// IsActivity reports whether a line describes a training activity: a list
// item, a line with a duration token, a line containing an action verb, or a
// line matching the activity taxonomy.
func (x *Extractor) IsActivity(line string) bool {
	if strings.TrimSpace(line) == "" || x.isHeaderOnly(line) {
		return false
	}
	if bullet.MatchString(line) || durationToken.MatchString(line) {
		return true
	}
	folded := patterns.Fold(line)
	for _, v := range x.lib.ActionVerbs {
		if patterns.ContainsWord(folded, v) {
			return true
		}
	}
	_, ok := x.Categorize(line)
	return ok
}

// IsDrill reports whether a line names a drill or exercise, or is numbered.
func (x *Extractor) IsDrill(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if numbered.MatchString(line) {
		return true
	}
	folded := patterns.Fold(line)
	if drillRule.matches(folded) {
		return true
	}
	for _, d := range x.lib.Drills {
		if patterns.ContainsWord(folded, d) {
			return true
		}
	}
	return false
}

func IsObjective(line string) bool {
	return objectiveRule.matches(patterns.Fold(line))
}

func IsNote(line string) bool {
	return noteRule.matches(patterns.Fold(line))
}

// Activities returns the cleaned activity lines of text.
func (x *Extractor) Activities(text string) ([]string, bool) {
	out := x.collect(text, x.IsActivity)
	return out, len(out) > 0
}

func (x *Extractor) Drills(text string) []string {
	return x.collect(text, x.IsDrill)
}

func (x *Extractor) Objectives(text string) []string {
	return x.collect(text, IsObjective)
}

func (x *Extractor) Notes(text string) []string {
	return x.collect(text, IsNote)
}

func (x *Extractor) collect(text string, keep func(string) bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		if !keep(line) {
			continue
		}
		l := CleanLine(line)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// Categorize returns the first taxonomy category whose keywords, synonyms or
// example activities appear in line.
func (x *Extractor) Categorize(line string) (string, bool) {
	folded := patterns.Fold(line)
	for _, c := range x.lib.Categories {
		for _, term := range c.Terms() {
			if patterns.ContainsWord(folded, term) {
				return c.Name, true
			}
		}
	}
	return "", false
}

// CategoryHeading reports whether line is a section heading that opens with a
// taxonomy keyword, such as "Warm-up (15 min)" or "Técnica:".
func (x *Extractor) CategoryHeading(line string) (string, bool) {
	folded := patterns.Fold(line)
	for _, h := range x.headings {
		if h.re.MatchString(folded) {
			return h.name, true
		}
	}
	return "", false
}

// SessionType labels a session as a match, a recovery session, the dominant
// taxonomy category, or plain training.
func (x *Extractor) SessionType(text string) string {
	folded := patterns.Fold(text)
	if matchRule.matches(folded) {
		return "match"
	}
	if recoveryRule.matches(folded) && !x.hasTrainingContent(text) {
		return "recovery"
	}
	counts := make(map[string]int)
	best, bestCount := DefaultType, 0
	for _, line := range strings.Split(text, "\n") {
		c, ok := x.Categorize(line)
		if !ok {
			continue
		}
		counts[c]++
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func (x *Extractor) hasTrainingContent(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if _, ok := x.Categorize(line); ok {
			return true
		}
	}
	return false
}

func (x *Extractor) isHeaderOnly(line string) bool {
	if _, ok := x.m.Week(line); ok {
		return true
	}
	if x.m.Rule(line) {
		return true
	}
	days, _ := x.m.Days(line)
	return len(days) > 0 && !durationToken.MatchString(line)
}
