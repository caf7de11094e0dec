package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/claude/fitplan/internal/client"
	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
)

// fakeService is an in-memory ProgramService.
type fakeService struct {
	mu        sync.Mutex
	templates []models.ExerciseTemplate
	created   []models.ProgramPayload
	updates   map[int]models.ProgramUpdate
	programs  map[int]models.ProgramSummary
	listErr   error
	profile   *models.UserProfile
}

func newFakeService() *fakeService {
	return &fakeService{
		templates: []models.ExerciseTemplate{
			{ID: 1, Name: "Squat", Type: models.ExerciseReps},
			{ID: 2, Name: "Plank", Type: models.ExerciseTime},
		},
		updates:  map[int]models.ProgramUpdate{},
		programs: map[int]models.ProgramSummary{},
	}
}

func (f *fakeService) SearchTemplates(ctx context.Context, q string) ([]models.ExerciseTemplate, error) {
	return f.templates, nil
}

func (f *fakeService) CreateProgram(ctx context.Context, p models.ProgramPayload) (*models.ProgramSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return &models.ProgramSummary{ID: 99, Name: p.Name, WeeklyFrequency: p.WeeklyFrequency}, nil
}

func (f *fakeService) UpdateProgram(ctx context.Context, id int, u models.ProgramUpdate) (*models.ProgramSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = u
	return &models.ProgramSummary{ID: id, Name: u.Name}, nil
}

func (f *fakeService) GetProgram(ctx context.Context, id int) (*models.ProgramSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.programs[id]
	if !ok {
		return nil, &client.ServiceError{Status: http.StatusNotFound, Message: "Not found."}
	}
	return &p, nil
}

func (f *fakeService) PublishProgram(ctx context.Context, id int, published bool) (*models.ProgramSummary, error) {
	return &models.ProgramSummary{ID: id, IsPublished: published}, nil
}

func (f *fakeService) DeleteProgram(ctx context.Context, id int) error { return nil }

func (f *fakeService) ListMine(ctx context.Context) ([]models.ProgramSummary, error) {
	return nil, f.listErr
}

func (f *fakeService) ListPublished(ctx context.Context) ([]models.ProgramSummary, error) {
	return nil, f.listErr
}

func (f *fakeService) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	return &models.UserProfile{}, nil
}

func (f *fakeService) UpdateProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile = &p
	return &p, nil
}

func (f *fakeService) GetTrainerProfile(ctx context.Context) (*models.TrainerProfile, error) {
	return &models.TrainerProfile{}, nil
}

func (f *fakeService) UpdateTrainerProfile(ctx context.Context, p models.TrainerProfile) (*models.TrainerProfile, error) {
	return &p, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, svc *fakeService) *Server {
	t.Helper()
	return New(svc, nil, NewSessionStore(time.Hour, testLogger()), testLogger())
}

// do sends a JSON request through the router and decodes the response into out.
func do(t *testing.T, s *Server, method, path string, body, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode error: %v (body %s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code
}

func newDraft(t *testing.T, s *Server) string {
	t.Helper()
	var d draftResponse
	if code := do(t, s, http.MethodPost, "/api/v1/drafts", nil, &d); code != http.StatusCreated {
		t.Fatalf("create draft status = %d, want 201", code)
	}
	if d.ID == "" {
		t.Fatal("draft id is empty")
	}
	return d.ID
}

// TestHandleMeDefault verifies /api/v1/me returns the dev user when no
// Tailscale identity is configured.
func TestHandleMeDefault(t *testing.T) {
	s := newTestServer(t, newFakeService())
	var info UserInfo
	if code := do(t, s, http.MethodGet, "/api/v1/me", nil, &info); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
}

// TestDraftAddExerciseAndSubmit drives a draft from creation to submission.
func TestDraftAddExerciseAndSubmit(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)
	id := newDraft(t, s)
	base := "/api/v1/drafts/" + id

	name, desc := "Strength Base", "Full body"
	var d draftResponse
	do(t, s, http.MethodPut, base+"/details", map[string]any{
		"name": name, "description": desc, "toggle_focus": []string{"strength"},
	}, &d)
	if d.Program.Name != name || len(d.Program.Focus) != 1 {
		t.Fatalf("details not applied: %+v", d.Program)
	}

	do(t, s, http.MethodPost, base+"/days/0/library", nil, &d)
	if d.View.Modal != editor.ModalLibrary {
		t.Fatalf("modal = %q, want library", d.View.Modal)
	}
	do(t, s, http.MethodPost, base+"/library/select", svc.templates[0], &d)
	do(t, s, http.MethodPut, base+"/form/count", map[string]int{"count": 2}, &d)
	do(t, s, http.MethodPut, base+"/form/sets/1", map[string]string{"field": "reps", "value": "12"}, &d)
	if code := do(t, s, http.MethodPost, base+"/form/complete", nil, &d); code != http.StatusOK {
		t.Fatalf("complete status = %d, want 200", code)
	}
	sets := d.Program.Sections[0].Exercises[0].Sets
	if len(sets) != 2 || *sets[0].Reps != 10 || *sets[1].Reps != 12 {
		t.Errorf("sets = %+v", sets)
	}
	if d.Summary.WorkoutDays != 1 || d.View.Modal != editor.ModalNone {
		t.Errorf("summary = %+v, modal = %q", d.Summary, d.View.Modal)
	}

	var payload models.ProgramPayload
	do(t, s, http.MethodGet, base+"/payload", nil, &payload)
	if payload.WeeklyFrequency != 1 {
		t.Errorf("weekly_frequency = %d, want 1", payload.WeeklyFrequency)
	}

	var sub submitResponse
	if code := do(t, s, http.MethodPost, base+"/submit", nil, &sub); code != http.StatusOK {
		t.Fatalf("submit status = %d, want 200", code)
	}
	if sub.Program == nil || sub.Program.ID != 99 || sub.Draft.ProgramID != 99 {
		t.Errorf("submit response = %+v", sub)
	}
	if len(svc.created) != 1 || svc.created[0].Name != name {
		t.Errorf("created = %+v", svc.created)
	}
}

// TestResubmitAfterCreateLocksDays verifies that once a draft is created on
// the service its days cannot change, and a second submit only updates the
// details.
func TestResubmitAfterCreateLocksDays(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)
	id := newDraft(t, s)
	base := "/api/v1/drafts/" + id

	do(t, s, http.MethodPut, base+"/details", map[string]any{
		"name": "Strength Base", "description": "Full body", "toggle_focus": []string{"strength"},
	}, nil)
	do(t, s, http.MethodPost, base+"/days/0/library", nil, nil)
	do(t, s, http.MethodPost, base+"/library/select", svc.templates[0], nil)
	if code := do(t, s, http.MethodPost, base+"/form/complete", nil, nil); code != http.StatusOK {
		t.Fatalf("complete status = %d, want 200", code)
	}
	if code := do(t, s, http.MethodPost, base+"/submit", nil, nil); code != http.StatusOK {
		t.Fatalf("first submit status = %d, want 200", code)
	}

	locked := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, base + "/days/2/library", nil},
		{http.MethodPost, base + "/form/complete", nil},
		{http.MethodDelete, base + "/days/0/exercises/0", nil},
		{http.MethodPost, base + "/days/0/rest", nil},
		{http.MethodPut, base + "/days/1/subtitle", map[string]string{"text": "Legs"}},
		{http.MethodPost, base + "/drag/drop", map[string]int{"day": 0, "target": 0}},
	}
	for _, tt := range locked {
		var resp errorResponse
		if code := do(t, s, tt.method, tt.path, tt.body, &resp); code != http.StatusConflict {
			t.Errorf("%s %s status = %d, want 409", tt.method, tt.path, code)
		}
	}

	var d draftResponse
	do(t, s, http.MethodGet, base, nil, &d)
	if d.Summary.WorkoutDays != 1 || len(d.Program.Sections[0].Exercises) != 1 {
		t.Errorf("days changed after create: summary = %+v", d.Summary)
	}

	do(t, s, http.MethodPut, base+"/details", map[string]string{"name": "Strength Base II"}, nil)
	if code := do(t, s, http.MethodPost, base+"/submit", nil, nil); code != http.StatusOK {
		t.Fatalf("second submit status = %d, want 200", code)
	}
	if len(svc.created) != 1 {
		t.Errorf("creates = %d, want 1", len(svc.created))
	}
	u, ok := svc.updates[99]
	if !ok {
		t.Fatal("second submit did not update program 99")
	}
	if u.Name != "Strength Base II" || u.WeeklyFrequency != 1 {
		t.Errorf("update = %+v, want new name and weekly_frequency 1", u)
	}
}

// TestSubmitWithoutFocusIsRejected verifies validation errors are returned
// and stored in the view without calling the service.
func TestSubmitWithoutFocusIsRejected(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)
	base := "/api/v1/drafts/" + newDraft(t, s)

	var resp errorResponse
	if code := do(t, s, http.MethodPost, base+"/submit", nil, &resp); code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if resp.Errors["focuses"] == "" || resp.Errors["programName"] == "" {
		t.Errorf("errors = %v", resp.Errors)
	}
	if len(svc.created) != 0 {
		t.Error("service called despite validation failure")
	}

	var d draftResponse
	do(t, s, http.MethodGet, base, nil, &d)
	if diff := cmp.Diff(resp.Errors, d.View.Errors); diff != "" {
		t.Errorf("view errors mismatch (-want +got):\n%s", diff)
	}
}

// TestInvalidFormKeepsDialog verifies a bad set row returns 400 and leaves
// the dialog open.
func TestInvalidFormKeepsDialog(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)
	base := "/api/v1/drafts/" + newDraft(t, s)

	do(t, s, http.MethodPost, base+"/days/3/library", nil, nil)
	do(t, s, http.MethodPost, base+"/library/select", svc.templates[1], nil)
	do(t, s, http.MethodPut, base+"/form/sets/0", map[string]string{"field": "time", "value": "abc"}, nil)

	var resp errorResponse
	if code := do(t, s, http.MethodPost, base+"/form/complete", nil, &resp); code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if resp.Errors["sets"] != "Please fill in all set configurations" {
		t.Errorf("errors = %v", resp.Errors)
	}

	var d draftResponse
	do(t, s, http.MethodGet, base, nil, &d)
	if d.View.Modal != editor.ModalSets || len(d.Program.Sections[3].Exercises) != 0 {
		t.Errorf("modal = %q, exercises = %d", d.View.Modal, len(d.Program.Sections[3].Exercises))
	}
}

// TestRestToggleNeedsConfirmation verifies the propose/confirm round trip.
func TestRestToggleNeedsConfirmation(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)
	base := "/api/v1/drafts/" + newDraft(t, s)

	do(t, s, http.MethodPost, base+"/days/1/library", nil, nil)
	do(t, s, http.MethodPost, base+"/library/select", svc.templates[0], nil)
	do(t, s, http.MethodPost, base+"/form/complete", nil, nil)

	var d draftResponse
	do(t, s, http.MethodPost, base+"/days/1/rest", nil, &d)
	if d.View.PendingRest == nil || d.View.PendingRest.ExerciseCount != 1 {
		t.Fatalf("pending = %+v", d.View.PendingRest)
	}
	if len(d.Program.Sections[1].Exercises) != 1 {
		t.Fatal("exercises removed before confirmation")
	}

	do(t, s, http.MethodPost, base+"/rest/confirm", nil, &d)
	if !d.Program.Sections[1].IsRestDay || len(d.Program.Sections[1].Exercises) != 0 {
		t.Errorf("day after confirm = %+v", d.Program.Sections[1])
	}
}

// TestDragReorder verifies drag start and drop reorder within a day.
func TestDragReorder(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)
	base := "/api/v1/drafts/" + newDraft(t, s)

	for _, tmpl := range svc.templates {
		do(t, s, http.MethodPost, base+"/days/0/library", nil, nil)
		do(t, s, http.MethodPost, base+"/library/select", tmpl, nil)
		do(t, s, http.MethodPost, base+"/form/complete", nil, nil)
	}

	var d draftResponse
	do(t, s, http.MethodPost, base+"/drag/start", map[string]int{"day": 0, "exercise": 0}, nil)
	do(t, s, http.MethodPost, base+"/drag/drop", map[string]int{"day": 0, "target": 1}, &d)
	var got []string
	for _, ex := range d.Program.Sections[0].Exercises {
		got = append(got, ex.Name)
	}
	if diff := cmp.Diff([]string{"Plank", "Squat"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if d.View.Dragged != nil {
		t.Error("drag pointer not cleared")
	}
}

// TestSubtitleTooLong verifies the subtitle limit is reported as a field error.
func TestSubtitleTooLong(t *testing.T) {
	s := newTestServer(t, newFakeService())
	base := "/api/v1/drafts/" + newDraft(t, s)

	var resp errorResponse
	code := do(t, s, http.MethodPut, base+"/days/2/subtitle", map[string]string{"text": "This subtitle is far too long to fit"}, &resp)
	if code != http.StatusBadRequest || resp.Errors["subtitle"] == "" {
		t.Errorf("status = %d, errors = %v", code, resp.Errors)
	}

	code = do(t, s, http.MethodPut, base+"/days/7/subtitle", map[string]string{"text": "Legs"}, &resp)
	if code != http.StatusBadRequest {
		t.Errorf("day 7 status = %d, want 400", code)
	}
}

// TestSearchTemplates verifies the per-draft search endpoint.
func TestSearchTemplates(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)
	base := "/api/v1/drafts/" + newDraft(t, s)

	var resp searchResponse
	do(t, s, http.MethodGet, base+"/templates?search=sq", nil, &resp)
	if resp.Stale || resp.Query != "sq" || len(resp.Exercises) != 2 {
		t.Errorf("search response = %+v", resp)
	}
}

// TestDraftNotFound verifies unknown and foreign drafts are hidden.
func TestDraftNotFound(t *testing.T) {
	s := newTestServer(t, newFakeService())
	if code := do(t, s, http.MethodGet, "/api/v1/drafts/nope", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown draft status = %d, want 404", code)
	}

	d := s.sessions.Create("someone-else", editor.NewDraft(), nil)
	if code := do(t, s, http.MethodGet, "/api/v1/drafts/"+d.id, nil, nil); code != http.StatusNotFound {
		t.Errorf("foreign draft status = %d, want 404", code)
	}
}

// TestDeleteDraft verifies a discarded draft is gone.
func TestDeleteDraft(t *testing.T) {
	s := newTestServer(t, newFakeService())
	id := newDraft(t, s)
	if code := do(t, s, http.MethodDelete, "/api/v1/drafts/"+id, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", code)
	}
	if s.sessions.Len() != 0 {
		t.Errorf("sessions = %d, want 0", s.sessions.Len())
	}
}

// TestEditExistingProgram verifies a draft opened from a stored program is
// submitted as an update.
func TestEditExistingProgram(t *testing.T) {
	svc := newFakeService()
	svc.programs[7] = models.ProgramSummary{
		ID: 7, Name: "Old", Description: "Desc", Focus: models.FocusList{models.FocusCardio},
		Difficulty: models.DifficultyIntermediate, SessionLength: 40, IsPublished: true,
	}
	s := newTestServer(t, svc)

	var d draftResponse
	if code := do(t, s, http.MethodPost, "/api/v1/drafts", map[string]int{"program_id": 7}, &d); code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", code)
	}
	if d.ProgramID != 7 || d.Program.Name != "Old" {
		t.Fatalf("draft = %+v", d)
	}

	base := "/api/v1/drafts/" + d.ID
	do(t, s, http.MethodPut, base+"/details", map[string]string{"name": "New"}, nil)
	if code := do(t, s, http.MethodPost, base+"/submit", nil, nil); code != http.StatusOK {
		t.Fatalf("submit status = %d, want 200", code)
	}
	if u := svc.updates[7]; u.Name != "New" || !u.IsPublished {
		t.Errorf("update = %+v", u)
	}
	if len(svc.created) != 0 {
		t.Error("existing program should not be created again")
	}
}

// TestServiceErrorsMapped verifies service and network failures reach the
// caller with the right status.
func TestServiceErrorsMapped(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)

	svc.listErr = &client.ServiceError{Status: http.StatusForbidden, Message: "Trainers only"}
	var resp errorResponse
	if code := do(t, s, http.MethodGet, "/api/v1/programs/mine", nil, &resp); code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", code)
	}
	if resp.Error != "Trainers only" {
		t.Errorf("error = %q, want %q", resp.Error, "Trainers only")
	}

	svc.listErr = &client.NetworkError{Op: "GET /api/programs/", Err: errors.New("connection refused")}
	if code := do(t, s, http.MethodGet, "/api/v1/programs", nil, nil); code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", code)
	}

	if code := do(t, s, http.MethodGet, "/api/v1/programs/12", nil, nil); code != http.StatusNotFound {
		t.Errorf("missing program status = %d, want 404", code)
	}
}

// TestUpdateProfileValidates verifies the profile form is checked before
// it is saved.
func TestUpdateProfileValidates(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(t, svc)

	var resp errorResponse
	code := do(t, s, http.MethodPut, "/api/v1/profile", map[string]string{"age": "abc"}, &resp)
	if code != http.StatusBadRequest || resp.Errors["age"] != "Age must be a number" {
		t.Errorf("status = %d, errors = %v", code, resp.Errors)
	}
	if svc.profile != nil {
		t.Error("invalid profile was saved")
	}

	code = do(t, s, http.MethodPut, "/api/v1/profile", map[string]string{
		"age": "28", "experience_level": "beginner", "training_location": "home", "fitness_focus": "cardio",
	}, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if svc.profile == nil || *svc.profile.Age != 28 {
		t.Errorf("saved profile = %+v", svc.profile)
	}
}

// TestSessionExpiry verifies idle sessions disappear on access and on sweep.
func TestSessionExpiry(t *testing.T) {
	st := NewSessionStore(time.Minute, testLogger())
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	a := st.Create("local", editor.NewDraft(), nil)
	b := st.Create("local", editor.NewDraft(), nil)

	now = now.Add(30 * time.Second)
	if _, ok := st.Get(a.id); !ok {
		t.Fatal("session a expired early")
	}

	now = now.Add(45 * time.Second)
	if n := st.Sweep(); n != 1 {
		t.Errorf("swept %d sessions, want 1", n)
	}
	if _, ok := st.Get(b.id); ok {
		t.Error("session b should have expired")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := st.Get(a.id); ok {
		t.Error("session a should have expired")
	}
	if st.Len() != 0 {
		t.Errorf("sessions = %d, want 0", st.Len())
	}
}
