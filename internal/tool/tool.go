// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the extraction engine as MCP tools.
package tool

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/academyplan/academyplan-mcp/internal/engine"
	"github.com/academyplan/academyplan-mcp/internal/logger"
	"github.com/academyplan/academyplan-mcp/internal/schedule/conform"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
)

// Handlers holds the collaborators shared by the tool handlers.
type Handlers struct {
	engine  *engine.Engine
	checker *conform.Checker
	lib     *patterns.Library
	log     *logger.Logger
	now     func() time.Time
}

// NewHandlers returns handlers backed by eng. checker may be nil, in which
// case schema checks are reported as unavailable.
func NewHandlers(eng *engine.Engine, checker *conform.Checker, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		engine:  eng,
		checker: checker,
		lib:     patterns.Default(),
		log:     log,
		now:     time.Now,
	}
}

// Register adds every tool to server.
func Register(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server, MetadataExtractTrainingSchedule, h.ExtractTrainingSchedule)
	mcp.AddTool(server, MetadataEnrichTrainingSchedule, h.EnrichTrainingSchedule)
	mcp.AddTool(server, MetadataCalculateSessionDate, h.CalculateSessionDate)
}
