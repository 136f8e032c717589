package api

import (
	"net/http"
	"strings"

	"timetracker/internal/api/handlers"
	"timetracker/internal/api/middleware"
	"timetracker/internal/config"
	"timetracker/internal/logger"
	"timetracker/internal/timetracker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Version is reported by the index route
const Version = "1.0.0"

// Router represents the API router
type Router struct {
	mux            chi.Router
	allowedOrigins []string
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, svc *timetracker.Service) *Router {
	rt := &Router{
		mux:            chi.NewRouter(),
		allowedOrigins: cfg.Server.AllowedOrigins,
	}

	h := handlers.New(svc)
	auth := middleware.NewAuthMiddleware(cfg.API)

	// RequestID -> Recoverer -> AccessLog -> BodySizeLimit -> CORS -> routes
	rt.mux.Use(
		middleware.RequestIDMiddleware,
		chimw.Recoverer,
		middleware.AccessLog,
		middleware.LimitBodySize(cfg.Server.MaxBodySize),
		rt.corsMiddleware,
	)

	// Public routes
	rt.mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeIndex(w, cfg.Workspace.Name)
	})
	rt.mux.Get("/health", h.Health)

	// Protected routes
	rt.mux.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/tracker", h.Tracker)
		r.Get("/summary", h.Summary)
		r.Get("/reports/projects", h.ProjectTotals)

		r.Post("/timer/start", h.StartTimer)
		r.Post("/timer/{id}/stop", h.StopTimer)
		r.Post("/timer/{id}/discard", h.DiscardTimer)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/{id}", h.GetEntry)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
			r.Post("/{id}/restore", h.RestoreEntry)
			r.Post("/{id}/continue", h.ContinueEntry)
			r.Post("/{id}/duplicate", h.DuplicateEntry)
			r.Get("/{id}/audit", h.EntryHistory)
		})

		r.Get("/audit", h.GetAuditLogs)

		r.Get("/clients", h.ListClients)
		r.Post("/clients", h.CreateClient)
		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
	})

	return rt
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// corsMiddleware handles CORS headers and preflight requests
func (r *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")

		if len(r.allowedOrigins) == 0 {
			// Empty allowed origins means allow all
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			if !r.isValidOrigin(origin) {
				logger.Warn("Invalid origin format", "origin", origin, "request_id", middleware.GetRequestID(req))
			} else if r.isOriginAllowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			} else {
				logger.Warn("Origin not allowed", "origin", origin, "request_id", middleware.GetRequestID(req))
			}
		}
		// Same-origin requests carry no Origin header and pass without CORS headers

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Session-ID")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// isValidOrigin validates the origin format (must be http:// or https://)
func (r *Router) isValidOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://")
}

// isOriginAllowed checks if the given origin is in the allowed list
func (r *Router) isOriginAllowed(origin string) bool {
	for _, allowed := range r.allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
