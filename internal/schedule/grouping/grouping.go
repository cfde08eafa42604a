// SPDX-License-Identifier: Apache-2.0

// Package grouping locates day headers inside a week's text and computes the
// span of lines each day owns, including multi-day shared sessions.
package grouping

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/academyplan/academyplan-mcp/internal/schedule/markers"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

const (
	// MinContentLength is the shortest day content considered complete.
	MinContentLength = 20
	// IncompleteNote is attached to days whose content is shorter than MinContentLength.
	IncompleteNote = "Content extraction incomplete"
)

// DayGroup is the text owned by one day of a week.
type DayGroup struct {
	Day        string
	Header     string
	Line       int
	Content    string
	IsShared   bool
	SharedWith []string
	Incomplete bool
}

// Grouping is the result of splitting one week's text into days.
type Grouping struct {
	// Preamble is the text between the first line and the first day header.
	Preamble string
	Days     []DayGroup
	// Trailing holds content after a major section marker that no day owns.
	Trailing string
}

// Grouper splits text into day groups with one vocabulary.
type Grouper struct {
	m *markers.Matcher
}

func New(lib *patterns.Library, language string) *Grouper {
	return &Grouper{m: markers.For(lib, language)}
}

type registration struct {
	day   string
	line  int
	group int
}

// GroupDaysInWeek registers each day the first time a header names it,
// orders days by first appearance and assigns each the lines up to the next
// day of another group, the next major section, or the end of the text.
// Every day of a shared group receives identical content.
func (g *Grouper) GroupDaysInWeek(weekText string) Grouping {
	lines := strings.Split(weekText, "\n")
	regs, groups := g.scan(lines, true)
	return g.assemble(lines, regs, groups)
}

// SplitDays is GroupDaysInWeek without de-duplication: every day header
// occurrence becomes its own group, as needed for documents that list days
// without week headers and repeat weekday names.
func (g *Grouper) SplitDays(text string) Grouping {
	lines := strings.Split(text, "\n")
	regs, groups := g.scan(lines, false)
	return g.assemble(lines, regs, groups)
}

// scan registers day headers. Shared headers are checked before single ones
// on each line; with dedupe, a day already registered is skipped.
func (g *Grouper) scan(lines []string, dedupe bool) ([]registration, map[int][]string) {
	var regs []registration
	groups := make(map[int][]string)
	seen := make(map[string]bool)
	group := 0
	for i, line := range lines {
		days, shared := g.m.Days(line)
		if len(days) == 0 {
			continue
		}
		// A week header that happens to mention a day is not a day header.
		if _, ok := g.m.Week(line); ok {
			continue
		}
		var added []string
		for _, d := range days {
			if dedupe && seen[d] {
				continue
			}
			seen[d] = true
			regs = append(regs, registration{day: d, line: i, group: group})
			added = append(added, d)
		}
		if len(added) > 0 {
			if shared {
				groups[group] = added
			}
			group++
		}
	}
	sort.SliceStable(regs, func(a, b int) bool { return regs[a].line < regs[b].line })
	return regs, groups
}

func (g *Grouper) assemble(lines []string, regs []registration, groups map[int][]string) Grouping {
	var out Grouping
	if len(regs) == 0 {
		out.Preamble = trimBlock(lines)
		return out
	}
	out.Preamble = trimBlock(lines[:regs[0].line])

	owned := make([]bool, len(lines))
	for i, r := range regs {
		end := g.boundary(lines, regs, i)
		for j := r.line; j < end; j++ {
			owned[j] = true
		}
		content := trimBlock(lines[r.line+1 : end])
		dg := DayGroup{
			Day:     r.day,
			Header:  strings.TrimSpace(lines[r.line]),
			Line:    r.line,
			Content: content,
		}
		if members := groups[r.group]; len(members) > 1 {
			dg.IsShared = true
			for _, d := range members {
				if d != r.day {
					dg.SharedWith = append(dg.SharedWith, d)
				}
			}
		}
		if utf8.RuneCountInString(content) < MinContentLength {
			dg.Incomplete = true
		}
		out.Days = append(out.Days, dg)
	}
	out.Trailing = g.unowned(lines[regs[0].line:], owned[regs[0].line:])
	return out
}

// unowned collects the blocks of lines no day claimed, dropping bare rules.
func (g *Grouper) unowned(lines []string, owned []bool) string {
	var blocks []string
	var cur []string
	flush := func() {
		if b := trimBlock(cur); b != "" {
			blocks = append(blocks, b)
		}
		cur = nil
	}
	for i, line := range lines {
		if owned[i] {
			flush()
			continue
		}
		if g.m.Rule(line) {
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return strings.Join(blocks, "\n\n")
}

// boundary returns the exclusive end line of registration i.
func (g *Grouper) boundary(lines []string, regs []registration, i int) int {
	r := regs[i]
	end := len(lines)
	for _, next := range regs[i+1:] {
		if next.group != r.group && next.line > r.line {
			end = next.line
			break
		}
	}
	for j := r.line + 1; j < end; j++ {
		if g.m.MajorSection(lines[j]) {
			return j
		}
	}
	return end
}

// trimBlock joins lines after dropping leading and trailing blank lines.
func trimBlock(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	block := make([]string, 0, end-start)
	for _, l := range lines[start:end] {
		block = append(block, strings.TrimRight(l, " \t\r"))
	}
	return strings.Join(block, "\n")
}
