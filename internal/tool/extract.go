// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
)

// MetadataExtractTrainingSchedule describes the extract_training_schedule tool.
var MetadataExtractTrainingSchedule = &mcp.Tool{
	Name: "extract_training_schedule",
	Description: "Extract a week/day/session training schedule from the plain text of a coaching document. " +
		"Detects the document language (english, spanish, french, german, italian) and its structure " +
		"(weekly_with_days, weekly_only, daily_only, session_based, unstructured), then returns every " +
		"session with time, duration, focus, activities, drills, equipment and a confidence score. " +
		"Results with an overall confidence below the review threshold are flagged needsReview.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Plain text of the training document",
			},
			"document_id": map[string]interface{}{
				"type":        "string",
				"description": "Identifier of the source document. Ids of the extracted tree are derived from it.",
			},
			"plan_id": map[string]interface{}{
				"type":        "string",
				"description": "Identifier of the training plan the document belongs to",
			},
			"title": map[string]interface{}{
				"type":        "string",
				"description": "Plan title, used as the academy program",
			},
			"category": map[string]interface{}{
				"type":        "string",
				"description": "Sport or plan category, e.g. soccer, basketball, tennis",
			},
			"difficulty": map[string]interface{}{
				"type":        "string",
				"description": "Plan difficulty, e.g. beginner, intermediate, advanced",
			},
			"academy_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the academy running the plan",
			},
			"base_date": map[string]interface{}{
				"type":        "string",
				"description": "Start of week 1 as YYYY-MM-DD or a phrase such as \"next monday\". Defaults to today.",
			},
			"alternative": map[string]interface{}{
				"type":        "boolean",
				"description": "Re-run extraction with the other applicable strategies and return the best-scoring result",
			},
			"check_schema": map[string]interface{}{
				"type":        "boolean",
				"description": "Validate the result against the published result schema",
			},
		},
	},
}

// InputExtractTrainingSchedule is the input for the ExtractTrainingSchedule tool.
type InputExtractTrainingSchedule struct {
	Content     string `json:"content"`
	DocumentID  string `json:"document_id,omitempty"`
	PlanID      string `json:"plan_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	AcademyName string `json:"academy_name,omitempty"`
	BaseDate    string `json:"base_date,omitempty"`
	Alternative bool   `json:"alternative,omitempty"`
	CheckSchema bool   `json:"check_schema,omitempty"`
}

// OutputExtractTrainingSchedule is the output for the ExtractTrainingSchedule tool.
type OutputExtractTrainingSchedule struct {
	Result schedule.Result `json:"result"`
	// SchemaChecked is true when the result was validated against the schema.
	SchemaChecked bool `json:"schema_checked"`
	// SchemaErrors lists schema violations; empty when the result conforms.
	SchemaErrors string `json:"schema_errors,omitempty"`
}

// ExtractTrainingSchedule runs the extraction engine over the provided text.
func (h *Handlers) ExtractTrainingSchedule(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractTrainingSchedule) (*mcp.CallToolResult, OutputExtractTrainingSchedule, error) {
	if input.Content == "" {
		return nil, OutputExtractTrainingSchedule{}, fmt.Errorf("content is required")
	}

	documentID := input.DocumentID
	if documentID == "" {
		documentID = "unknown"
	}
	base, err := schedule.ParseBaseDate(input.BaseDate, h.now())
	if err != nil {
		return nil, OutputExtractTrainingSchedule{}, err
	}

	doc := schedule.Document{
		Text: input.Content,
		ID:   documentID,
		Plan: schedule.PlanMetadata{
			ID:          input.PlanID,
			Title:       input.Title,
			Category:    input.Category,
			Difficulty:  input.Difficulty,
			AcademyName: input.AcademyName,
		},
		BaseDate: base,
	}

	var result *schedule.Result
	if input.Alternative {
		result, err = h.engine.ExtractAlternative(ctx, doc)
	} else {
		result, err = h.engine.Extract(ctx, doc)
	}
	if err != nil {
		return nil, OutputExtractTrainingSchedule{}, err
	}

	out := OutputExtractTrainingSchedule{Result: *result}
	if input.CheckSchema {
		if h.checker == nil {
			return nil, OutputExtractTrainingSchedule{}, fmt.Errorf("schema checking is not available")
		}
		out.SchemaChecked = true
		if err := h.checker.Check(result); err != nil {
			h.log.Warn("result does not conform to schema", "document", documentID, "error", err)
			out.SchemaErrors = err.Error()
		}
	}
	return nil, out, nil
}
