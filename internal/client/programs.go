package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/claude/fitplan/internal/models"
)

// SearchTemplates queries the exercise template catalog. An empty query
// lists the whole catalog.
func (c *Client) SearchTemplates(ctx context.Context, query string) ([]models.ExerciseTemplate, error) {
	params := url.Values{}
	if query != "" {
		params.Set("search", query)
	}
	var resp models.TemplateSearchResponse
	if err := c.do(ctx, http.MethodGet, "/api/exercise-templates/", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Exercises, nil
}

// CreateProgram submits a complete program in one request.
func (c *Client) CreateProgram(ctx context.Context, payload models.ProgramPayload) (*models.ProgramSummary, error) {
	var created models.ProgramSummary
	if err := c.do(ctx, http.MethodPost, "/api/programs/", nil, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetProgram fetches one of the caller's programs.
func (c *Client) GetProgram(ctx context.Context, id int) (*models.ProgramSummary, error) {
	var p models.ProgramSummary
	if err := c.do(ctx, http.MethodGet, programPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProgram replaces a program's details.
func (c *Client) UpdateProgram(ctx context.Context, id int, update models.ProgramUpdate) (*models.ProgramSummary, error) {
	var p models.ProgramSummary
	if err := c.do(ctx, http.MethodPut, programPath(id), nil, update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PublishProgram sets the published flag.
func (c *Client) PublishProgram(ctx context.Context, id int, published bool) (*models.ProgramSummary, error) {
	var p models.ProgramSummary
	req := models.PublishRequest{IsPublished: published}
	if err := c.do(ctx, http.MethodPost, programPath(id)+"publish/", nil, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProgram removes a program.
func (c *Client) DeleteProgram(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, programPath(id), nil, nil, nil)
}

// ListMine lists the calling trainer's programs.
func (c *Client) ListMine(ctx context.Context) ([]models.ProgramSummary, error) {
	var list []models.ProgramSummary
	if err := c.do(ctx, http.MethodGet, "/api/programs/mine/", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListPublished lists every published program.
func (c *Client) ListPublished(ctx context.Context) ([]models.ProgramSummary, error) {
	var list []models.ProgramSummary
	if err := c.do(ctx, http.MethodGet, "/api/programs/", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func programPath(id int) string {
	return fmt.Sprintf("/api/programs/%d/", id)
}
