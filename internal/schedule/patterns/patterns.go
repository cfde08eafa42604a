// SPDX-License-Identifier: Apache-2.0

// Package patterns is the static language and keyword library used by the
// extraction engine. The tables live in patterns.yaml and are loaded once;
// every keyword is stored accent-folded and lower-cased so that callers match
// against Fold(text).
package patterns

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed patterns.yaml
var defaultTables []byte

// Language holds the week/day/session vocabulary of one supported language.
type Language struct {
	Name         string              `yaml:"name"`
	WeekWords    []string            `yaml:"week"`
	DayWords     []string            `yaml:"day"`
	SessionWords []string            `yaml:"session"`
	Days         map[string][]string `yaml:"days"`
}

// Category is one entry of the five-category activity taxonomy.
type Category struct {
	Name     string              `yaml:"name"`
	Keywords []string            `yaml:"keywords"`
	Synonyms map[string][]string `yaml:"synonyms"`
	Examples []string            `yaml:"examples"`
}

// Terms returns keywords, synonyms of every language and examples.
func (c Category) Terms() []string {
	out := append([]string{}, c.Keywords...)
	langs := make([]string, 0, len(c.Synonyms))
	for l := range c.Synonyms {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		out = append(out, c.Synonyms[l]...)
	}
	return append(out, c.Examples...)
}

// HeadingTerms returns the keywords and synonyms that may open a section heading.
func (c Category) HeadingTerms() []string {
	out := append([]string{}, c.Keywords...)
	for _, syn := range c.Synonyms {
		out = append(out, syn...)
	}
	return out
}

type EquipmentItem struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

type EquipmentTable struct {
	Balls          []EquipmentItem `yaml:"balls"`
	TrainingAids   []EquipmentItem `yaml:"training_aids"`
	ProtectiveGear []EquipmentItem `yaml:"protective_gear"`
	AdvancedGear   []EquipmentItem `yaml:"advanced_gear"`
}

// Items flattens the table in category order.
func (t EquipmentTable) Items() []EquipmentItem {
	out := make([]EquipmentItem, 0, len(t.Balls)+len(t.TrainingAids)+len(t.ProtectiveGear)+len(t.AdvancedGear))
	out = append(out, t.Balls...)
	out = append(out, t.TrainingAids...)
	out = append(out, t.ProtectiveGear...)
	return append(out, t.AdvancedGear...)
}

// FallbackPlan seeds the synthetic schedule used when a document has no structure.
type FallbackPlan struct {
	WeekFocus  []string `yaml:"week_focus"`
	Activities []string `yaml:"activities"`
}

// Library is the parsed, normalized pattern library. It is read-only after Load.
type Library struct {
	Languages     []Language                `yaml:"languages"`
	Categories    []Category                `yaml:"categories"`
	FocusKeywords []string                  `yaml:"focus_keywords"`
	ActionVerbs   []string                  `yaml:"action_verbs"`
	Drills        []string                  `yaml:"drills"`
	Equipment     map[string]EquipmentTable `yaml:"equipment"`
	SportAliases  map[string]string         `yaml:"sport_aliases"`
	SportKeywords map[string][]string       `yaml:"sport_keywords"`
	Locations     []string                  `yaml:"locations"`
	Fallback      map[string]FallbackPlan   `yaml:"fallback"`

	dayIndex map[string]string
}

// GeneralSport is the sport key used when no specific table applies.
const GeneralSport = "general"

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default returns the library built from the embedded tables.
// It panics if the embedded tables are malformed, which is a build defect.
func Default() *Library {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = Load(defaultTables)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("patterns: embedded tables: %v", defaultErr))
	}
	return defaultLib
}

// Load parses YAML tables and normalizes every keyword.
func Load(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pattern tables: %w", err)
	}
	if len(lib.Languages) == 0 {
		return nil, fmt.Errorf("pattern tables define no languages")
	}
	lib.normalize()
	return &lib, nil
}

func (l *Library) normalize() {
	l.dayIndex = make(map[string]string)
	for i := range l.Languages {
		lang := &l.Languages[i]
		lang.Name = strings.ToLower(lang.Name)
		lang.WeekWords = foldAll(lang.WeekWords)
		lang.DayWords = foldAll(lang.DayWords)
		lang.SessionWords = foldAll(lang.SessionWords)
		for day, names := range lang.Days {
			folded := foldAll(names)
			lang.Days[day] = folded
			for _, n := range folded {
				l.dayIndex[n] = day
			}
			l.dayIndex[day] = day
		}
	}
	for i := range l.Categories {
		c := &l.Categories[i]
		c.Keywords = foldAll(c.Keywords)
		c.Examples = foldAll(c.Examples)
		for lang, syn := range c.Synonyms {
			c.Synonyms[lang] = foldAll(syn)
		}
	}
	l.FocusKeywords = foldAll(l.FocusKeywords)
	l.ActionVerbs = foldAll(l.ActionVerbs)
	l.Drills = foldAll(l.Drills)
	l.Locations = foldAll(l.Locations)
	aliases := make(map[string]string, len(l.SportAliases))
	for k, v := range l.SportAliases {
		aliases[Fold(k)] = v
	}
	l.SportAliases = aliases
	for sport, kws := range l.SportKeywords {
		l.SportKeywords[sport] = foldAll(kws)
	}
}

// Language returns the named language table.
func (l *Library) Language(name string) (Language, bool) {
	for _, lang := range l.Languages {
		if lang.Name == strings.ToLower(name) {
			return lang, true
		}
	}
	return Language{}, false
}

// DayNames returns every local weekday name of the language.
func (lang Language) DayNames() []string {
	var out []string
	for _, names := range lang.Days {
		out = append(out, names...)
	}
	sort.Strings(out)
	return out
}

// CanonicalDay maps a weekday name in any supported language to its
// lower-case English token.
func (l *Library) CanonicalDay(word string) (string, bool) {
	day, ok := l.dayIndex[Fold(strings.TrimSpace(word))]
	return day, ok
}

// AllDayNames returns every weekday name of every language, English tokens included.
func (l *Library) AllDayNames() []string {
	out := make([]string, 0, len(l.dayIndex))
	for n := range l.dayIndex {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (l *Library) collect(pick func(Language) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, lang := range l.Languages {
		for _, w := range pick(lang) {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}

func (l *Library) AllWeekWords() []string {
	return l.collect(func(lang Language) []string { return lang.WeekWords })
}

func (l *Library) AllDayWords() []string {
	return l.collect(func(lang Language) []string { return lang.DayWords })
}

func (l *Library) AllSessionWords() []string {
	return l.collect(func(lang Language) []string { return lang.SessionWords })
}

// Sport resolves a free-form sport or category name to a table key.
func (l *Library) Sport(name string) string {
	s := Fold(strings.TrimSpace(name))
	if alias, ok := l.SportAliases[s]; ok {
		return alias
	}
	if _, ok := l.Equipment[s]; ok && s != "" {
		return s
	}
	return GeneralSport
}

// DetectSport looks for sport keywords in already folded text.
func (l *Library) DetectSport(folded string) string {
	sports := make([]string, 0, len(l.SportKeywords))
	for s := range l.SportKeywords {
		sports = append(sports, s)
	}
	sort.Strings(sports)
	best, bestCount := GeneralSport, 0
	for _, s := range sports {
		n := 0
		for _, kw := range l.SportKeywords[s] {
			n += strings.Count(folded, kw)
		}
		if n > bestCount {
			best, bestCount = s, n
		}
	}
	return best
}

// EquipmentFor returns the sport-specific items followed by the general ones.
func (l *Library) EquipmentFor(sport string) []EquipmentItem {
	var out []EquipmentItem
	if sport != GeneralSport {
		out = append(out, l.Equipment[sport].Items()...)
	}
	return append(out, l.Equipment[GeneralSport].Items()...)
}

// FallbackFor returns the synthetic-plan seed for sport.
func (l *Library) FallbackFor(sport string) FallbackPlan {
	if fb, ok := l.Fallback[sport]; ok {
		return fb
	}
	return l.Fallback[GeneralSport]
}

// Fold lower-cases s and strips combining marks, so "Miércoles" becomes "miercoles".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := Fold(strings.TrimSpace(s)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Alternation builds a regexp alternation of the quoted words, longest first
// so that "warm up" wins over "warm".
func Alternation(words []string) string {
	sorted := append([]string{}, words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, 0, len(sorted))
	for _, w := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return strings.Join(quoted, "|")
}

// ContainsWord reports whether the folded text contains term on word boundaries.
func ContainsWord(folded, term string) bool {
	return IndexWord(folded, term) >= 0
}

// IndexWord returns the byte index of the first word-bounded occurrence of term in folded, or -1.
func IndexWord(folded, term string) int {
	if term == "" {
		return -1
	}
	from := 0
	for {
		i := strings.Index(folded[from:], term)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(folded, start) && boundaryAfter(folded, end) {
			return start
		}
		from = start + 1
		if from >= len(folded) {
			return -1
		}
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
