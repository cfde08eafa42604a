// SPDX-License-Identifier: Apache-2.0

// Package export renders extraction results as JSON, YAML or iCalendar.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/goccy/go-yaml"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

const productID = "-//academyplan//training schedule//EN"

// ParseFormat accepts json, yaml/yml and ics/ical, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "ics", "ical", "icalendar":
		return FormatICS, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want json, yaml or ics)", s)
}

// Write renders r to w. loc is only used by FormatICS.
func Write(w io.Writer, r *schedule.Result, f Format, loc *time.Location) error {
	switch f {
	case FormatJSON:
		return JSON(w, r)
	case FormatYAML:
		return YAML(w, r)
	case FormatICS:
		return ICS(w, r, loc)
	}
	return fmt.Errorf("unsupported output format %q", f)
}

func JSON(w io.Writer, r *schedule.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// YAML goes through JSON so field names follow the json tags.
func YAML(w io.Writer, r *schedule.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return fmt.Errorf("converting to yaml: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func ICS(w io.Writer, r *schedule.Result, loc *time.Location) error {
	cal, err := Calendar(r, loc)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding icalendar: %w", err)
	}
	return nil
}

// Calendar builds one VEVENT per session. Events start at the session's date
// and time in loc and last for its duration.
func Calendar(r *schedule.Result, loc *time.Location) (*ical.Calendar, error) {
	if loc == nil {
		loc = time.UTC
	}
	stamp, err := time.Parse(time.RFC3339, r.ExtractedAt)
	if err != nil {
		stamp = time.Unix(0, 0)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, w := range r.Sessions {
		for _, d := range w.DailySessions {
			for _, s := range d.SessionsForDay {
				start, err := time.ParseInLocation(schedule.DateLayout+" 15:04", d.Date+" "+s.Time, loc)
				if err != nil {
					return nil, fmt.Errorf("session %s: parsing start: %w", s.ID, err)
				}
				event := ical.NewEvent()
				event.Props.SetText(ical.PropUID, s.ID)
				event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
				event.Props.SetDateTime(ical.PropDateTimeStart, start)
				event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Duration(s.Duration)*time.Minute))
				event.Props.SetText(ical.PropSummary, summary(w, s))
				event.Props.SetText(ical.PropDescription, description(s))
				if s.Location != "" {
					event.Props.SetText(ical.PropLocation, s.Location)
				}
				cal.Children = append(cal.Children, event.Component)
			}
		}
	}
	return cal, nil
}

func summary(w schedule.WeekSession, s schedule.SessionEntry) string {
	if s.Title != "" {
		return fmt.Sprintf("Week %d: %s", w.WeekNumber, s.Title)
	}
	return w.Title
}

func description(s schedule.SessionEntry) string {
	var b strings.Builder
	if len(s.Focus) > 0 {
		b.WriteString("Focus: " + strings.Join(s.Focus, ", ") + "\n")
	}
	for _, a := range s.Activities {
		b.WriteString("- " + a + "\n")
	}
	if len(s.Equipment) > 0 {
		b.WriteString("Equipment: " + strings.Join(s.Equipment, ", ") + "\n")
	}
	return strings.TrimSpace(b.String())
}
