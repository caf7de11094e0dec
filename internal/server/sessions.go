package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/claude/fitplan/internal/catalog"
	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
	"github.com/claude/fitplan/internal/submit"
)

// draftSession is one editing session. mu serializes every draft operation;
// template searches go through searcher without holding it.
type draftSession struct {
	id       string
	owner    string
	searcher *catalog.Searcher
	lastUsed atomic.Int64 // unix nanoseconds

	mu       sync.Mutex
	program  models.Program
	view     editor.ViewState
	existing *models.ProgramSummary // set when editing a stored program
}

// editDays fails once the session's program exists on the service; from
// then on only its details can change.
func (d *draftSession) editDays() error {
	if d.existing != nil {
		return &conflictError{msg: submit.DaysLockedMessage}
	}
	return nil
}

// draftResponse is the JSON view of a session.
type draftResponse struct {
	ID        string                 `json:"id"`
	Program   models.Program         `json:"program"`
	View      editor.ViewState       `json:"view"`
	Summary   editor.WeekSummary     `json:"summary"`
	ProgramID int                    `json:"program_id,omitempty"`
	Existing  *models.ProgramSummary `json:"existing,omitempty"`
}

// snapshot must be called with mu held.
func (d *draftSession) snapshot() draftResponse {
	resp := draftResponse{
		ID:      d.id,
		Program: editor.Clone(d.program),
		View:    d.view,
		Summary: editor.Summary(d.program),
	}
	if d.existing != nil {
		resp.ProgramID = d.existing.ID
		existing := *d.existing
		resp.Existing = &existing
	}
	return resp
}

// SessionStore keeps editing sessions in memory and forgets idle ones.
type SessionStore struct {
	idle time.Duration
	now  func() time.Time
	log  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*draftSession
}

// NewSessionStore creates a store whose sessions expire after idle.
func NewSessionStore(idle time.Duration, log *slog.Logger) *SessionStore {
	return &SessionStore{
		idle:     idle,
		now:      time.Now,
		log:      log,
		sessions: make(map[string]*draftSession),
	}
}

// Create registers a new session holding program.
func (st *SessionStore) Create(owner string, program models.Program, searcher *catalog.Searcher) *draftSession {
	d := &draftSession{
		id:       uuid.NewString(),
		searcher: searcher,
		owner:    owner,
		program:  program,
	}
	d.touch(st.now())
	st.mu.Lock()
	st.sessions[d.id] = d
	st.mu.Unlock()
	return d
}

// Get returns a live session and marks it used.
func (st *SessionStore) Get(id string) (*draftSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	d, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(d.touched()) > st.idle {
		st.remove(d)
		return nil, false
	}
	d.touch(now)
	return d, true
}

// Delete discards a session. It reports whether the session existed.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	d, ok := st.sessions[id]
	if ok {
		st.remove(d)
	}
	return ok
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops every session idle for longer than the timeout and returns
// how many were dropped.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	n := 0
	for _, d := range st.sessions {
		if now.Sub(d.touched()) > st.idle {
			st.remove(d)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is done.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.log.Info("expired idle drafts", "count", n)
			}
		}
	}
}

// remove must be called with st.mu held.
func (st *SessionStore) remove(d *draftSession) {
	delete(st.sessions, d.id)
	if d.searcher != nil {
		d.searcher.Stop()
	}
}

func (d *draftSession) touched() time.Time {
	return time.Unix(0, d.lastUsed.Load())
}

func (d *draftSession) touch(now time.Time) {
	d.lastUsed.Store(now.UnixNano())
}
