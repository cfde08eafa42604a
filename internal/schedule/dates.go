// SPDX-License-Identifier: Apache-2.0

package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

// DateLayout is the calendar date format used on DailySession.Date.
const DateLayout = "2006-01-02"

// Weekdays lists the canonical day tokens in calendar order starting Monday.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var weekdayByToken = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// WeekdayOf returns the time.Weekday for a canonical day token.
func WeekdayOf(day string) (time.Weekday, bool) {
	wd, ok := weekdayByToken[strings.ToLower(strings.TrimSpace(day))]
	return wd, ok
}

// IsWeekday reports whether day is one of the canonical weekday tokens.
func IsWeekday(day string) bool {
	_, ok := WeekdayOf(day)
	return ok
}

// DateFor maps a (week, day) pair to a calendar date. The base date is
// advanced by (week-1)*7 days and then moved forward 0-6 days to the next
// occurrence of day. Non-weekday tokens such as DayWeekOverview are not
// adjusted. Weeks below 1 are treated as week 1.
func DateFor(weekNumber int, day string, base time.Time) time.Time {
	if weekNumber < 1 {
		weekNumber = 1
	}
	start := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
	d := start.AddDate(0, 0, (weekNumber-1)*7)
	target, ok := WeekdayOf(day)
	if !ok {
		return d
	}
	delta := (int(target) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, delta)
}

// FormatDate renders DateFor's result with DateLayout.
func FormatDate(weekNumber int, day string, base time.Time) string {
	return DateFor(weekNumber, day, base).Format(DateLayout)
}

// ParseBaseDate accepts a YYYY-MM-DD date or a natural-language expression
// such as "next monday", resolved forward from ref. An empty string is ref.
func ParseBaseDate(s string, ref time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ref, nil
	}
	if t, err := time.ParseInLocation(DateLayout, s, ref.Location()); err == nil {
		return t, nil
	}
	t, err := naturaldate.Parse(s, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing base date %q: %w", s, err)
	}
	return t, nil
}
