// SPDX-License-Identifier: Apache-2.0

package language_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyplan/academyplan-mcp/internal/schedule/language"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

func newDetector(t *testing.T, size int) *language.Detector {
	t.Helper()
	d, err := language.NewDetector(patterns.Default(), size)
	require.NoError(t, err)
	return d
}

func TestDetect(t *testing.T) {
	d := newDetector(t, 16)

	tests := []struct {
		name           string
		text           string
		wantLanguage   string
		wantConfidence string
	}{
		{
			name:           "spanish headers",
			text:           "Semana 2\nLunes\nCalentamiento y pases",
			wantLanguage:   "spanish",
			wantConfidence: language.ConfidenceMedium,
		},
		{
			name:           "english with many markers is high confidence",
			text:           "Week 1\nMonday\nWednesday\nFriday\nWeek 2\nMonday",
			wantLanguage:   "english",
			wantConfidence: language.ConfidenceHigh,
		},
		{
			name:           "french accents are folded",
			text:           "Semaine 1\nMercredi: séance technique\nVendredi",
			wantLanguage:   "french",
			wantConfidence: language.ConfidenceMedium,
		},
		{
			name:           "german",
			text:           "Woche 3\nMontag\nDonnerstag\nSamstag\nWoche 4",
			wantLanguage:   "german",
			wantConfidence: language.ConfidenceHigh,
		},
		{
			name:           "no keywords falls back to the first language",
			text:           "just some notes",
			wantLanguage:   "english",
			wantConfidence: language.ConfidenceMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := d.Detect(tt.text)
			assert.Equal(t, tt.wantLanguage, det.Language)
			assert.Equal(t, tt.wantConfidence, det.Confidence)
		})
	}
}

func TestDetect_TieGoesToFirstLanguage(t *testing.T) {
	d := newDetector(t, 4)
	det := d.Detect("week lunes")
	assert.Equal(t, "english", det.Language)
	assert.Equal(t, 1, det.Score)
}

func TestDetect_OnlyWholeWordsCount(t *testing.T) {
	d := newDetector(t, 4)
	det := d.Detect("weekdays weekends")
	assert.Equal(t, 0, det.Score)
}

func TestDetect_MemoizedByPrefix(t *testing.T) {
	d := newDetector(t, 4)
	head := strings.Repeat("x", 500)

	first := d.Detect(head + " semana lunes martes")
	assert.Equal(t, 1, d.Len())

	// Same 500-rune prefix: the memoized verdict is returned.
	second := d.Detect(head + " week monday tuesday friday saturday")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, d.Len())

	d.Purge()
	assert.Equal(t, 0, d.Len())
}

func TestDetect_CacheIsBounded(t *testing.T) {
	d := newDetector(t, 2)
	d.Detect("week one")
	d.Detect("semana uno")
	d.Detect("semaine un")
	assert.Equal(t, 2, d.Len())
}

func TestDetect_Concurrent(t *testing.T) {
	d := newDetector(t, 8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "spanish", d.Detect("Semana 1\nLunes\nMiércoles").Language)
		}()
	}
	wg.Wait()
}

func TestScore(t *testing.T) {
	es, ok := patterns.Default().Language("spanish")
	require.True(t, ok)
	assert.Equal(t, 3, language.Score(patterns.Fold("Semana 1: Lunes y Miércoles"), es))
}
