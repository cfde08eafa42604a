// SPDX-License-Identifier: Apache-2.0

// Package language scores a document sample against the per-language week and
// weekday vocabularies of the pattern library.
package language

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

const (
	sampleRunes = 2000
	cacheRunes  = 500
	// highThreshold is the score a language must exceed to be reported with high confidence.
	highThreshold = 3

	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"

	DefaultCacheSize = 256
)

// Detector detects the dominant language of a training document. Results are
// memoized per 500-rune prefix in a bounded LRU owned by the Detector, so each
// caller (or tenant) decides how much it retains. Safe for concurrent use.
type Detector struct {
	lib   *patterns.Library
	cache *lru.Cache[string, schedule.Detection]
}

// NewDetector creates a Detector whose cache holds at most cacheSize entries.
func NewDetector(lib *patterns.Library, cacheSize int) (*Detector, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, schedule.Detection](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating language cache: %w", err)
	}
	return &Detector{lib: lib, cache: cache}, nil
}

// Detect returns the best-matching language. Ties go to the first language in
// table order; a text with no keyword at all is reported as the first language
// with medium confidence and a zero score.
func (d *Detector) Detect(text string) schedule.Detection {
	key := prefix(text, cacheRunes)
	if det, ok := d.cache.Get(key); ok {
		return det
	}

	sample := patterns.Fold(prefix(text, sampleRunes))
	best := schedule.Detection{Language: d.lib.Languages[0].Name, Confidence: ConfidenceMedium}
	for i, lang := range d.lib.Languages {
		score := Score(sample, lang)
		if i == 0 || score > best.Score {
			best.Language, best.Score = lang.Name, score
		}
	}
	if best.Score > highThreshold {
		best.Confidence = ConfidenceHigh
	}

	d.cache.Add(key, best)
	return best
}

// Score counts word-bounded week and weekday tokens of lang in folded text.
func Score(folded string, lang patterns.Language) int {
	n := 0
	for _, w := range lang.WeekWords {
		n += countWord(folded, w)
	}
	for _, day := range schedule.Weekdays {
		for _, name := range lang.Days[day] {
			n += countWord(folded, name)
		}
	}
	return n
}

// Len reports the number of memoized samples.
func (d *Detector) Len() int {
	return d.cache.Len()
}

// Purge drops every memoized result.
func (d *Detector) Purge() {
	d.cache.Purge()
}

func countWord(folded, term string) int {
	n := 0
	for rest := folded; ; {
		i := patterns.IndexWord(rest, term)
		if i < 0 {
			return n
		}
		n++
		rest = rest[i+len(term):]
	}
}

func prefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
