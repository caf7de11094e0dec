package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fitplan/internal/catalog"
	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
	"github.com/claude/fitplan/internal/submit"
)

type createDraftRequest struct {
	ProgramID int `json:"program_id"`
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	// The body is optional: an empty one opens a blank draft.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, errBadRequest("invalid JSON: %v", err))
		return
	}

	program := editor.NewDraft()
	var existing *models.ProgramSummary
	if req.ProgramID > 0 {
		summary, err := s.svc.GetProgram(r.Context(), req.ProgramID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		program = editor.FromSummary(*summary)
		existing = summary
	}

	user := userInfoFromContext(r)
	d := s.sessions.Create(user.Login, program, catalog.NewSearcher(s.svc, s.cache, s.log))
	d.mu.Lock()
	defer d.mu.Unlock()
	d.existing = existing
	s.log.Info("draft opened", "draft", d.id, "user", user.Login, "program_id", req.ProgramID)
	writeJSON(w, http.StatusCreated, d.snapshot())
}

// lookupDraft resolves {id} to a session owned by the caller.
func (s *Server) lookupDraft(w http.ResponseWriter, r *http.Request) (*draftSession, bool) {
	d, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok || d.owner != userInfoFromContext(r).Login {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "draft not found"})
		return nil, false
	}
	return d, true
}

// withDraft runs fn on the caller's session with its lock held and responds
// with the resulting state. fn may update the session before failing.
func (s *Server) withDraft(w http.ResponseWriter, r *http.Request, fn func(d *draftSession) error) {
	d, ok := s.lookupDraft(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fn(d); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d.snapshot())
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error { return nil })
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.lookupDraft(w, r); !ok {
		return
	}
	s.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type detailsRequest struct {
	Name          *string        `json:"name"`
	Description   *string        `json:"description"`
	ToggleFocus   []models.Focus `json:"toggle_focus"`
	Difficulty    *string        `json:"difficulty"`
	SessionLength *int           `json:"session_length"`
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	for _, f := range req.ToggleFocus {
		if !f.Valid() {
			s.writeError(w, errBadRequest("unknown focus %q", f))
			return
		}
	}
	var difficulty models.Difficulty
	if req.Difficulty != nil {
		d, err := models.ParseDifficulty(*req.Difficulty)
		if err != nil {
			s.writeError(w, errBadRequest("%v", err))
			return
		}
		difficulty = d
	}

	s.withDraft(w, r, func(d *draftSession) error {
		p := d.program
		if req.Name != nil {
			p = editor.SetName(p, *req.Name)
		}
		if req.Description != nil {
			p = editor.SetDescription(p, *req.Description)
		}
		for _, f := range req.ToggleFocus {
			p = editor.ToggleFocus(p, f)
		}
		if difficulty != "" {
			p = editor.SetDifficulty(p, difficulty)
		}
		if req.SessionLength != nil {
			p = editor.SetSessionLength(p, *req.SessionLength)
		}
		d.program = p
		return nil
	})
}

type subtitleRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSubtitle(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		if err := d.editDays(); err != nil {
			return err
		}
		day, err := dayParam(r)
		if err != nil {
			return err
		}
		var req subtitleRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		if utf8.RuneCountInString(req.Text) > editor.MaxSubtitleLen {
			return &editor.ValidationError{Fields: map[string]string{
				"subtitle": fmt.Sprintf("Subtitle must be %d characters or fewer", editor.MaxSubtitleLen),
			}}
		}
		d.program = editor.SetDaySubtitle(d.program, day, req.Text)
		return nil
	})
}

func (s *Server) handleRestToggle(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		if err := d.editDays(); err != nil {
			return err
		}
		day, err := dayParam(r)
		if err != nil {
			return err
		}
		d.program, d.view = editor.RequestRestToggle(d.program, d.view, day)
		return nil
	})
}

func (s *Server) handleRestConfirm(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		if err := d.editDays(); err != nil {
			return err
		}
		d.program, d.view = editor.ConfirmPendingRest(d.program, d.view)
		return nil
	})
}

func (s *Server) handleRestCancel(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		d.view = editor.CancelPendingRest(d.view)
		return nil
	})
}

func (s *Server) handleOpenLibrary(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		if err := d.editDays(); err != nil {
			return err
		}
		day, err := dayParam(r)
		if err != nil {
			return err
		}
		d.view = editor.OpenLibrary(d.view, day)
		return nil
	})
}

func (s *Server) handleCloseLibrary(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		d.view = editor.CloseModals(d.view)
		return nil
	})
}

func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		var tmpl models.ExerciseTemplate
		if err := decodeJSON(r, &tmpl); err != nil {
			return err
		}
		if d.view.DayIndex == nil {
			return errBadRequest("open the library for a day first")
		}
		d.view = editor.SelectTemplate(d.view, tmpl)
		return nil
	})
}

type countRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleFormCount(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		var req countRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		d.view = editor.ResizeForm(d.view, req.Count)
		return nil
	})
}

type setFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) handleFormSet(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		index, err := intParam(r, "set")
		if err != nil {
			return err
		}
		var req setFieldRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		v, err := editor.UpdateFormSet(d.view, index, req.Field, req.Value)
		if err != nil {
			return errBadRequest("%v", err)
		}
		d.view = v
		return nil
	})
}

func (s *Server) handleFormComplete(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		if err := d.editDays(); err != nil {
			return err
		}
		if d.view.Form == nil {
			return errBadRequest("no exercise is being configured")
		}
		p, v, err := editor.CompleteExercise(d.program, d.view)
		d.program, d.view = p, v
		return err
	})
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		if err := d.editDays(); err != nil {
			return err
		}
		day, err := dayParam(r)
		if err != nil {
			return err
		}
		index, err := intParam(r, "ex")
		if err != nil {
			return err
		}
		d.program = editor.RemoveExercise(d.program, day, index)
		return nil
	})
}

type dragRequest struct {
	Day      int `json:"day"`
	Exercise int `json:"exercise"`
	Target   int `json:"target"`
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		if err := d.editDays(); err != nil {
			return err
		}
		var req dragRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		d.view = editor.DragStart(d.view, req.Day, req.Exercise)
		return nil
	})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		if err := d.editDays(); err != nil {
			return err
		}
		var req dragRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		d.program, d.view = editor.Drop(d.program, d.view, req.Day, req.Target)
		return nil
	})
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(d *draftSession) error {
		d.view = editor.DragEnd(d.view)
		return nil
	})
}

func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDraft(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	payload := editor.Serialize(d.program)
	d.mu.Unlock()
	writeJSON(w, http.StatusOK, payload)
}

type submitResponse struct {
	Program *models.ProgramSummary `json:"program"`
	Draft   draftResponse          `json:"draft"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDraft(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var (
		saved *models.ProgramSummary
		err   error
	)
	if d.existing != nil {
		// Day routes are locked in this mode, so the days are the ones
		// already stored.
		saved, err = s.submitter.Update(r.Context(), *d.existing, editor.DetailsOnly(d.program))
	} else {
		saved, err = s.submitter.Create(r.Context(), d.program)
	}
	if err != nil {
		d.view = editor.SetFieldErrors(d.view, submit.FieldErrors(err))
		s.writeError(w, err)
		return
	}

	d.view = editor.SetFieldErrors(d.view, nil)
	d.existing = saved
	s.log.Info("draft submitted", "draft", d.id, "user", d.owner, "program_id", saved.ID)
	writeJSON(w, http.StatusOK, submitResponse{Program: saved, Draft: d.snapshot()})
}

type searchResponse struct {
	Query     string                    `json:"query"`
	Exercises []models.ExerciseTemplate `json:"exercises"`
	// Stale is set when a newer search from the same draft superseded this
	// one; the exercises must be ignored.
	Stale bool `json:"stale"`
}

func (s *Server) handleSearchTemplates(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDraft(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("search")
	results, current := d.searcher.Search(r.Context(), q)
	if results == nil {
		results = []models.ExerciseTemplate{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: q, Exercises: results, Stale: !current})
}
