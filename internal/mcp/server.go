package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/fitplan/internal/client"
	"github.com/claude/fitplan/internal/models"
)

// ProgramSource is the read side of the Program Service used by the tools.
type ProgramSource interface {
	ListPublished(ctx context.Context) ([]models.ProgramSummary, error)
	ListMine(ctx context.Context) ([]models.ProgramSummary, error)
	GetProgram(ctx context.Context, id int) (*models.ProgramSummary, error)
	SearchTemplates(ctx context.Context, query string) ([]models.ExerciseTemplate, error)
}

// Compile-time check: *client.Client satisfies ProgramSource.
var _ ProgramSource = (*client.Client)(nil)

// New creates an MCP server with all tools and resources registered.
func New(src ProgramSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitPlan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitPlan program server. Browse published and personal weekly training programs, search the exercise template catalog, and preview program definitions before they are submitted."),
	)

	h := &handlers{src: src, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListPublished, Handler: h.listPublished},
		server.ServerTool{Tool: toolListMine, Handler: h.listMine},
		server.ServerTool{Tool: toolGetProgram, Handler: h.getProgram},
		server.ServerTool{Tool: toolSearchTemplates, Handler: h.searchTemplates},
		server.ServerTool{Tool: toolPreviewProgram, Handler: h.previewProgram},
	)

	s.AddResources(
		server.ServerResource{Resource: resProgramRules, Handler: h.programRules},
	)

	return s
}

type handlers struct {
	src ProgramSource
	log *slog.Logger
}

var resProgramRules = mcp.NewResource(
	"fitplan://program_rules",
	"Program Rules",
	mcp.WithResourceDescription("Accepted focus tags, difficulty levels, set limits, and subtitle length for program definitions"),
	mcp.WithMIMEType("application/json"),
)
