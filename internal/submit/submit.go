// Package submit sends finished drafts to the Program Service.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/fitplan/internal/client"
	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
)

// Service is the part of the Program Service a Submitter calls.
type Service interface {
	CreateProgram(ctx context.Context, payload models.ProgramPayload) (*models.ProgramSummary, error)
	UpdateProgram(ctx context.Context, id int, update models.ProgramUpdate) (*models.ProgramSummary, error)
}

var _ Service = (*client.Client)(nil)

// Submitter validates drafts and sends them.
type Submitter struct {
	svc Service
	log *slog.Logger
}

// New creates a Submitter.
func New(svc Service, log *slog.Logger) *Submitter {
	return &Submitter{svc: svc, log: log}
}

// Create validates p and, if it passes, creates the whole program in one
// request. A *editor.ValidationError means nothing was sent. Service errors
// are returned as-is and p is never modified.
func (s *Submitter) Create(ctx context.Context, p models.Program) (*models.ProgramSummary, error) {
	if err := editor.Validate(p); err != nil {
		return nil, err
	}

	payload := editor.Serialize(p)
	created, err := s.svc.CreateProgram(ctx, payload)
	if err != nil {
		s.log.Warn("program submit failed", "name", p.Name, "error", err)
		return nil, err
	}
	s.log.Info("program created",
		"id", created.ID,
		"name", created.Name,
		"workout_days", payload.WeeklyFrequency,
	)
	return created, nil
}

// Update replaces the details of an existing program. Sections cannot be
// changed after creation: a draft with any day edits is rejected with a
// "sections" field error and nothing is sent. The weekly frequency and the
// subscription and published flags are carried over from current.
func (s *Submitter) Update(ctx context.Context, current models.ProgramSummary, p models.Program) (*models.ProgramSummary, error) {
	update, err := UpdateRequest(current, p)
	if err != nil {
		return nil, err
	}
	updated, err := s.svc.UpdateProgram(ctx, current.ID, update)
	if err != nil {
		return nil, fmt.Errorf("updating program %d: %w", current.ID, err)
	}
	s.log.Info("program updated", "id", updated.ID, "name", updated.Name)
	return updated, nil
}

// UpdateRequest checks p as an update of current and builds the request
// body Update would send.
func UpdateRequest(current models.ProgramSummary, p models.Program) (models.ProgramUpdate, error) {
	fields := map[string]string{}
	if err := editor.Validate(p); err != nil {
		var verr *editor.ValidationError
		if !errors.As(err, &verr) {
			return models.ProgramUpdate{}, err
		}
		for k, v := range verr.Fields {
			if k != "sections" {
				fields[k] = v
			}
		}
	}
	if editor.HasDayEdits(p) {
		fields["sections"] = DaysLockedMessage
	}
	if len(fields) > 0 {
		return models.ProgramUpdate{}, &editor.ValidationError{Fields: fields}
	}

	payload := editor.Serialize(p)
	return models.ProgramUpdate{
		Name:            payload.Name,
		Description:     payload.Description,
		Focus:           payload.Focus,
		Difficulty:      payload.Difficulty,
		WeeklyFrequency: current.WeeklyFrequency,
		SessionLength:   payload.SessionLength,
		IsSubscription:  current.IsSubscription,
		IsPublished:     current.IsPublished,
	}, nil
}

// DaysLockedMessage is the message reported when days are edited on a program
// that already exists.
const DaysLockedMessage = "Days cannot be changed once a program is created. Start a new program to change them."

// serviceFieldNames maps Program Service field names onto the names the
// editor reports.
var serviceFieldNames = map[string]string{
	"name":  "programName",
	"focus": "focuses",
}

// FieldErrors collects per-field messages from a submit error, whether it
// came from local validation or from the service.
func FieldErrors(err error) map[string]string {
	if fields := editor.FieldErrors(err); fields != nil {
		return fields
	}
	var se *client.ServiceError
	if !errors.As(err, &se) || len(se.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(se.Fields))
	for k, v := range se.Fields {
		if mapped, ok := serviceFieldNames[k]; ok {
			k = mapped
		}
		out[k] = v
	}
	return out
}
