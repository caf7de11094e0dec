package server

import (
	"net/http"

	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
	"github.com/claude/fitplan/internal/profile"
)

func (s *Server) handleListPublished(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListPublished(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []models.ProgramSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListMine(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListMine(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []models.ProgramSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "pid")
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.svc.GetProgram(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// programDetails is the editable metadata of a stored program.
type programDetails struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Focus         []models.Focus `json:"focus"`
	Difficulty    string         `json:"difficulty"`
	SessionLength int            `json:"session_length"`
}

// handleUpdateProgram replaces a stored program's metadata, checked by the
// same rules the editor applies before submit.
func (s *Server) handleUpdateProgram(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "pid")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req programDetails
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	current, err := s.svc.GetProgram(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p := editor.FromSummary(*current)
	p.Name = req.Name
	p.Description = req.Description
	p.Focus = req.Focus
	p.Difficulty = models.Difficulty(req.Difficulty)
	p.SessionLength = req.SessionLength

	updated, err := s.submitter.Update(r.Context(), *current, p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "pid")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.DeleteProgram(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("program deleted", "id", id, "user", userInfoFromContext(r).Login)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublishProgram(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "pid")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req models.PublishRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.svc.PublishProgram(r.Context(), id, req.IsPublished)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetProfile(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var form profile.Form
	if err := decodeJSON(r, &form); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := profile.Validate(form)
	if err != nil {
		s.writeError(w, err)
		return
	}
	saved, err := s.svc.UpdateProfile(r.Context(), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetTrainerProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetTrainerProfile(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateTrainerProfile(w http.ResponseWriter, r *http.Request) {
	var p models.TrainerProfile
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	if err := profile.ValidateTrainer(p); err != nil {
		s.writeError(w, err)
		return
	}
	saved, err := s.svc.UpdateTrainerProfile(r.Context(), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
