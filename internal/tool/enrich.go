// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
)

// MetadataEnrichTrainingSchedule describes the enrich_training_schedule tool.
var MetadataEnrichTrainingSchedule = &mcp.Tool{
	Name: "enrich_training_schedule",
	Description: "Merge a coaching plan name, entity name and training time into every week, day and " +
		"session of a previously extracted schedule. Returns a new tree; the input is not modified.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"sessions"},
		"properties": map[string]interface{}{
			"sessions": map[string]interface{}{
				"type":        "array",
				"description": "The sessions array of an extract_training_schedule result",
				"items":       map[string]interface{}{"type": "object"},
			},
			"coaching_plan_name": map[string]interface{}{
				"type":        "string",
				"description": "Coaching plan name to set on every node",
			},
			"entity_name": map[string]interface{}{
				"type":        "string",
				"description": "Entity (club, team or group) name to set on every node",
			},
			"training_time": map[string]interface{}{
				"type":        "string",
				"description": "Training time to set on every node, e.g. 17:30",
			},
		},
	},
}

// InputEnrichTrainingSchedule is the input for the EnrichTrainingSchedule tool.
type InputEnrichTrainingSchedule struct {
	Sessions         []schedule.WeekSession `json:"sessions"`
	CoachingPlanName string                 `json:"coaching_plan_name,omitempty"`
	EntityName       string                 `json:"entity_name,omitempty"`
	TrainingTime     string                 `json:"training_time,omitempty"`
}

// OutputEnrichTrainingSchedule is the output for the EnrichTrainingSchedule tool.
type OutputEnrichTrainingSchedule struct {
	Sessions []schedule.WeekSession `json:"sessions"`
}

// EnrichTrainingSchedule returns an enriched copy of the provided sessions.
func (h *Handlers) EnrichTrainingSchedule(_ context.Context, _ *mcp.CallToolRequest, input InputEnrichTrainingSchedule) (*mcp.CallToolResult, OutputEnrichTrainingSchedule, error) {
	if len(input.Sessions) == 0 {
		return nil, OutputEnrichTrainingSchedule{}, fmt.Errorf("sessions are required")
	}
	enriched := schedule.Enrich(input.Sessions, schedule.Enrichment{
		CoachingPlanName: input.CoachingPlanName,
		EntityName:       input.EntityName,
		TrainingTime:     input.TrainingTime,
	})
	return nil, OutputEnrichTrainingSchedule{Sessions: enriched}, nil
}
