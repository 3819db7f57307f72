package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/teamlance/engine/internal/api/handlers"
	mw "github.com/teamlance/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret         []byte
	DB                 *gorm.DB
	AuthHandler        *handlers.AuthHandler
	ProjectsHandler    *handlers.ProjectsHandler
	AssignmentsHandler *handlers.AssignmentsHandler
	CandidatesHandler  *handlers.CandidatesHandler
	EventsHandler      *handlers.EventsHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler(dep.DB)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			// Projects and their lifecycle transitions
			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Post("/{id}/start", dep.ProjectsHandler.Start)
				pr.Post("/{id}/pause", dep.ProjectsHandler.Pause)
				pr.Post("/{id}/resume", dep.ProjectsHandler.Resume)
				pr.Post("/{id}/complete", dep.ProjectsHandler.Complete)
				pr.Post("/{id}/archive", dep.ProjectsHandler.Archive)
				pr.Delete("/{id}", dep.ProjectsHandler.Delete)

				pr.Post("/{id}/assignments", dep.AssignmentsHandler.Configure)
				pr.Get("/{id}/events", dep.EventsHandler.Stream)
			})

			// Assignment booking lifecycle
			protected.Route("/assignments", func(ar chi.Router) {
				ar.Post("/{id}/request-booking", dep.AssignmentsHandler.RequestBooking)
				ar.Post("/{id}/accept", dep.AssignmentsHandler.Accept)
				ar.Post("/{id}/decline", dep.AssignmentsHandler.Decline)
				ar.Put("/{id}/requirement", dep.AssignmentsHandler.EditRequirement)
			})

			// Candidate profile and inbox
			protected.Route("/candidates", func(cr chi.Router) {
				cr.Get("/me", dep.CandidatesHandler.GetProfile)
				cr.Put("/me", dep.CandidatesHandler.UpdateProfile)
			})
			protected.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", dep.CandidatesHandler.ListNotifications)
				nr.Post("/{id}/read", dep.CandidatesHandler.MarkNotificationRead)
			})
		})
	})

	return r
}
