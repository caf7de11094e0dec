package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fitplan/internal/catalog"
	"github.com/claude/fitplan/internal/client"
	"github.com/claude/fitplan/internal/models"
	"github.com/claude/fitplan/internal/submit"
)

// ProgramService is the Program Service API the server proxies to.
type ProgramService interface {
	catalog.Source
	submit.Service
	GetProgram(ctx context.Context, id int) (*models.ProgramSummary, error)
	PublishProgram(ctx context.Context, id int, published bool) (*models.ProgramSummary, error)
	DeleteProgram(ctx context.Context, id int) error
	ListMine(ctx context.Context) ([]models.ProgramSummary, error)
	ListPublished(ctx context.Context) ([]models.ProgramSummary, error)
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error)
	GetTrainerProfile(ctx context.Context) (*models.TrainerProfile, error)
	UpdateTrainerProfile(ctx context.Context, p models.TrainerProfile) (*models.TrainerProfile, error)
}

var _ ProgramService = (*client.Client)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc       ProgramService
	submitter *submit.Submitter
	cache     *catalog.Cache
	sessions  *SessionStore
	identity  func(http.Handler) http.Handler
	log       *slog.Logger
	router    chi.Router
}

// New creates a new Server with all routes configured. cache may be nil.
// Requests are attributed to the local dev user unless SetTailscale is
// called before the server starts handling traffic.
func New(svc ProgramService, cache *catalog.Cache, sessions *SessionStore, log *slog.Logger) *Server {
	s := &Server{
		svc:       svc,
		submitter: submit.New(svc, log),
		cache:     cache,
		sessions:  sessions,
		identity:  DevIdentity,
		log:       log,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale attributes requests to the tailnet user making them.
func (s *Server) SetTailscale(who WhoIser) {
	s.identity = TailscaleIdentity(who, s.log)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.identity(next).ServeHTTP(w, r)
		})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		r.Post("/drafts", s.handleCreateDraft)
		r.Route("/drafts/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDraft)
			r.Delete("/", s.handleDeleteDraft)
			r.Put("/details", s.handleDetails)
			r.Put("/days/{day}/subtitle", s.handleSubtitle)
			r.Post("/days/{day}/rest", s.handleRestToggle)
			r.Post("/rest/confirm", s.handleRestConfirm)
			r.Post("/rest/cancel", s.handleRestCancel)
			r.Post("/days/{day}/library", s.handleOpenLibrary)
			r.Post("/library/close", s.handleCloseLibrary)
			r.Post("/library/select", s.handleSelectTemplate)
			r.Put("/form/count", s.handleFormCount)
			r.Put("/form/sets/{set}", s.handleFormSet)
			r.Post("/form/complete", s.handleFormComplete)
			r.Delete("/days/{day}/exercises/{ex}", s.handleRemoveExercise)
			r.Post("/drag/start", s.handleDragStart)
			r.Post("/drag/drop", s.handleDrop)
			r.Post("/drag/end", s.handleDragEnd)
			r.Get("/payload", s.handlePayload)
			r.Post("/submit", s.handleSubmit)
			r.Get("/templates", s.handleSearchTemplates)
		})

		r.Get("/programs", s.handleListPublished)
		r.Get("/programs/mine", s.handleListMine)
		r.Get("/programs/{pid}", s.handleGetProgram)
		r.Put("/programs/{pid}", s.handleUpdateProgram)
		r.Delete("/programs/{pid}", s.handleDeleteProgram)
		r.Post("/programs/{pid}/publish", s.handlePublishProgram)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleUpdateProfile)
		r.Get("/trainer-profile", s.handleGetTrainerProfile)
		r.Put("/trainer-profile", s.handleUpdateTrainerProfile)
	})
}

// SetFrontend mounts the SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
