// SPDX-License-Identifier: Apache-2.0

package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

var (
	locationLine = regexp.MustCompile(`(?im)^\s*[-*•]?\s*(?:location|venue|where|lugar|lieu|ort|luogo)\s*[:\-–]\s*(.+?)\s*$`)
	academyLine  = regexp.MustCompile(`(?i)\b(?:academy|academia|académie|akademie|accademia|club|fc|sc|school|escuela|école)\b`)
	ageGroupU    = regexp.MustCompile(`(?i)\b(?:u-?|under[\s-]?)(\d{1,2})s?\b`)
	ageRange     = regexp.MustCompile(`(?i)\bages?\s*(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\b`)
	levelRule    = []string{"beginner", "intermediate", "advanced", "elite"}
)

// Equipment returns the canonical names of table items (or any of their
// lexical variants) mentioned in text, sport-specific items first.
func (x *Extractor) Equipment(text, sport string) []string {
	folded := patterns.Fold(text)
	var out []string
	seen := make(map[string]bool)
	for _, item := range x.lib.EquipmentFor(sport) {
		if seen[item.Name] {
			continue
		}
		terms := append([]string{item.Name}, item.Variants...)
		for _, t := range terms {
			if patterns.ContainsWord(folded, patterns.Fold(t)) {
				seen[item.Name] = true
				out = append(out, item.Name)
				break
			}
		}
	}
	return out
}

// Location returns an explicit "Location:" value, else the first venue
// keyword, else DefaultLocation.
func (x *Extractor) Location(text string) (string, bool) {
	if sm := locationLine.FindStringSubmatch(text); sm != nil {
		return sm[1], true
	}
	folded := patterns.Fold(text)
	for _, l := range x.lib.Locations {
		if patterns.ContainsWord(folded, l) {
			return titleCase(l), true
		}
	}
	return DefaultLocation, false
}

// Academy derives academy information from the document header and plan
// metadata. Metadata wins over text for every field it provides; the sport
// falls back to keyword detection over the whole text.
func (x *Extractor) Academy(header, text string, meta schedule.PlanMetadata) schedule.AcademyInfo {
	info := schedule.AcademyInfo{
		Name:       meta.AcademyName,
		Program:    meta.Title,
		Difficulty: strings.ToLower(meta.Difficulty),
	}

	lines := strings.Split(header, "\n")
	if info.Name == "" {
		for _, l := range lines {
			l = CleanLine(l)
			if l != "" && utf8.RuneCountInString(l) <= 80 && academyLine.MatchString(l) {
				info.Name = l
				break
			}
		}
	}
	if info.Name == "" {
		info.Name = "Training Academy"
	}
	if info.Program == "" {
		for _, l := range lines {
			if l = CleanLine(l); l != "" {
				info.Program = truncate(l, 100)
				break
			}
		}
	}

	info.Sport = x.lib.Sport(meta.Category)
	if info.Sport == patterns.GeneralSport {
		info.Sport = x.lib.DetectSport(patterns.Fold(text))
	}

	if sm := ageRange.FindStringSubmatch(header); sm != nil {
		info.AgeGroup = "Ages " + sm[1] + "-" + sm[2]
	} else if sm := ageGroupU.FindStringSubmatch(header); sm != nil {
		info.AgeGroup = "U" + sm[1]
	}

	if sm := locationLine.FindStringSubmatch(header); sm != nil {
		info.Location = sm[1]
	}

	if info.Difficulty == "" {
		folded := patterns.Fold(header)
		for _, lvl := range levelRule {
			if patterns.ContainsWord(folded, lvl) {
				info.Difficulty = lvl
				break
			}
		}
	}
	return info
}
