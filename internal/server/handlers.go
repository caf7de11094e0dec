package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fitplan/internal/client"
	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
	"github.com/claude/fitplan/internal/submit"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string            `json:"error,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// requestError is a malformed request: bad JSON, parameters or values.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func errBadRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// conflictError is a request the draft's current state does not allow.
type conflictError struct {
	msg string
}

func (e *conflictError) Error() string { return e.msg }

// writeError maps editor, service and network errors onto HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		rerr *requestError
		cerr *conflictError
		verr *editor.ValidationError
		serr *client.ServiceError
		nerr *client.NetworkError
	)
	switch {
	case errors.As(err, &rerr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: rerr.msg})
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: cerr.msg})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Errors: verr.Fields})
	case errors.As(err, &serr):
		writeJSON(w, serr.Status, errorResponse{Error: serr.Message, Errors: submit.FieldErrors(err)})
	case errors.As(err, &nerr):
		s.log.Warn("program service unreachable", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Network error. Please check your connection."})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest("invalid JSON: %v", err)
	}
	return nil
}

// intParam reads a non-negative integer URL parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errBadRequest("invalid %s parameter %q", name, raw)
	}
	return v, nil
}

// dayParam reads the {day} URL parameter, 0 for Monday through 6 for Sunday.
func dayParam(r *http.Request) (int, error) {
	day, err := intParam(r, "day")
	if err != nil {
		return 0, err
	}
	if day >= models.DaysPerWeek {
		return 0, errBadRequest("day must be between 0 and %d", models.DaysPerWeek-1)
	}
	return day, nil
}
