// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
)

// MetadataCalculateSessionDate describes the calculate_session_date tool.
var MetadataCalculateSessionDate = &mcp.Tool{
	Name: "calculate_session_date",
	Description: "Compute the calendar date of a training day: the base date advanced by (week-1)*7 days, " +
		"then moved forward to the next occurrence of the weekday. Weekday names are accepted in " +
		"english, spanish, french, german and italian.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"week_number", "day"},
		"properties": map[string]interface{}{
			"week_number": map[string]interface{}{
				"type":        "integer",
				"description": "Week number, starting at 1",
				"minimum":     1,
			},
			"day": map[string]interface{}{
				"type":        "string",
				"description": "Weekday name, e.g. wednesday or miércoles",
			},
			"base_date": map[string]interface{}{
				"type":        "string",
				"description": "Start of week 1 as YYYY-MM-DD or a phrase such as \"next monday\". Defaults to today.",
			},
		},
	},
}

// InputCalculateSessionDate is the input for the CalculateSessionDate tool.
type InputCalculateSessionDate struct {
	WeekNumber int    `json:"week_number"`
	Day        string `json:"day"`
	BaseDate   string `json:"base_date,omitempty"`
}

// OutputCalculateSessionDate is the output for the CalculateSessionDate tool.
type OutputCalculateSessionDate struct {
	Date string `json:"date"`
	Day  string `json:"day"`
}

// CalculateSessionDate maps a week number and weekday to a calendar date.
func (h *Handlers) CalculateSessionDate(_ context.Context, _ *mcp.CallToolRequest, input InputCalculateSessionDate) (*mcp.CallToolResult, OutputCalculateSessionDate, error) {
	if input.WeekNumber < 1 {
		return nil, OutputCalculateSessionDate{}, fmt.Errorf("week_number must be at least 1")
	}
	day, ok := h.lib.CanonicalDay(input.Day)
	if !ok {
		return nil, OutputCalculateSessionDate{}, fmt.Errorf("unknown weekday %q", input.Day)
	}
	base, err := schedule.ParseBaseDate(input.BaseDate, h.now())
	if err != nil {
		return nil, OutputCalculateSessionDate{}, err
	}
	return nil, OutputCalculateSessionDate{
		Date: schedule.FormatDate(input.WeekNumber, day, base),
		Day:  day,
	}, nil
}
