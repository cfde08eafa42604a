// SPDX-License-Identifier: Apache-2.0

package schedule

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://academyplan.dev/schedule"))

// NewID returns a content-addressed identifier: the same kind and parts
// always produce the same id, so repeated extraction of one document yields
// identical trees.
func NewID(kind string, parts ...string) string {
	name := kind + "\x1f" + strings.Join(parts, "\x1f")
	return kind + "_" + uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// WeekID identifies a week within a document.
func WeekID(docID string, index, weekNumber int) string {
	return NewID("wk", docID, strconv.Itoa(index), strconv.Itoa(weekNumber))
}

// DayID identifies a day within a week.
func DayID(weekID string, dayNumber int, day string) string {
	return NewID("day", weekID, strconv.Itoa(dayNumber), day)
}

// SessionID identifies a session within a day.
func SessionID(dayID string, index int) string {
	return NewID("ses", dayID, strconv.Itoa(index))
}
