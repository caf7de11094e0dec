package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
	"github.com/claude/fitplan/internal/plandef"
)

// --- Tool definitions ---

var toolListPublished = mcp.NewTool("list_published_programs",
	mcp.WithDescription("List programs published by trainers. Each summary has name, description, focus, difficulty, weekly frequency, session length, and the published flag."),
)

var toolListMine = mcp.NewTool("list_my_programs",
	mcp.WithDescription("List programs created by the signed-in user, published or not. Returns the same summaries as list_published_programs."),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Fetch one program's summary: name, description, focus, difficulty, weekly frequency, session length, and the published flag. Day sections are not returned."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Program id")),
)

var toolSearchTemplates = mcp.NewTool("search_exercise_templates",
	mcp.WithDescription("Search the exercise template catalog by name. An empty query lists every template."),
	mcp.WithString("query", mcp.Description("Search text (e.g. 'squat', 'plank')")),
)

var toolPreviewProgram = mcp.NewTool("preview_program",
	mcp.WithDescription("Build a program from a YAML definition and return the payload that would be submitted, or the validation errors that would block it. Nothing is saved."),
	mcp.WithString("definition", mcp.Required(), mcp.Description("YAML program definition with name, description, focus, difficulty, session_length and days")),
)

// --- Tool handlers ---

func (h *handlers) listPublished(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.src.ListPublished(ctx)
	if err != nil {
		h.log.Error("mcp list_published_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(nonNil(programs))
}

func (h *handlers) listMine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.src.ListMine(ctx)
	if err != nil {
		h.log.Error("mcp list_my_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(nonNil(programs))
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil || id <= 0 {
		return mcp.NewToolResultError("id parameter must be a positive program id"), nil
	}

	p, err := h.src.GetProgram(ctx, id)
	if err != nil {
		h.log.Error("mcp get_program", "id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(p)
}

func (h *handlers) searchTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))

	templates, err := h.src.SearchTemplates(ctx, query)
	if err != nil {
		h.log.Error("mcp search_exercise_templates", "query", query, "error", err)
		return mcp.NewToolResultError("search failed: " + err.Error()), nil
	}
	if templates == nil {
		templates = []models.ExerciseTemplate{}
	}
	return jsonResult(templates)
}

// previewResult is what preview_program reports back.
type previewResult struct {
	Valid   bool                   `json:"valid"`
	Errors  map[string]string      `json:"errors,omitempty"`
	Summary editor.WeekSummary     `json:"summary"`
	Payload *models.ProgramPayload `json:"payload,omitempty"`
}

func (h *handlers) previewProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("definition")
	if err != nil {
		return mcp.NewToolResultError("definition parameter is required"), nil
	}

	def, err := plandef.Parse(strings.NewReader(text))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := plandef.Build(ctx, def, plandef.NewCatalogLookup(h.src))
	if err != nil {
		return mcp.NewToolResultError("building program: " + err.Error()), nil
	}

	res := previewResult{Summary: editor.Summary(p)}
	if err := editor.Validate(p); err != nil {
		res.Errors = editor.FieldErrors(err)
		if res.Errors == nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(res)
	}
	payload := editor.Serialize(p)
	res.Valid = true
	res.Payload = &payload
	return jsonResult(res)
}

// programRules lists the constants a program definition is checked against.
func (h *handlers) programRules(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rules := map[string]any{
		"days":              models.Weekdays,
		"focus":             models.Focuses,
		"difficulty":        []models.Difficulty{models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced},
		"exercise_types":    []models.ExerciseType{models.ExerciseReps, models.ExerciseTime},
		"min_sets":          editor.MinSets,
		"max_sets":          editor.MaxSets,
		"default_sets":      editor.DefaultSets,
		"max_subtitle_len":  editor.MaxSubtitleLen,
		"default_set_reps":  editor.DefaultSetConfig(models.ExerciseReps),
		"default_set_timed": editor.DefaultSetConfig(models.ExerciseTime),
	}

	data, err := json.Marshal(rules)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func nonNil(programs []models.ProgramSummary) []models.ProgramSummary {
	if programs == nil {
		return []models.ProgramSummary{}
	}
	return programs
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
