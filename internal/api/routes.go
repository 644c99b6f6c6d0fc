package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/mailflow/internal/auth"
	"github.com/ignite/mailflow/internal/pkg/httputil"
)

// SetupRoutes configures all API routes. authManager may be nil, in which
// case /api is open and the auth endpoints are not mounted.
func SetupRoutes(h *Handlers, authManager *auth.AuthManager, health *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if health != nil {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/live", health.HandleLiveness)
	}

	r.Route("/api", func(r chi.Router) {
		if authManager != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", authManager.HandleLogin)
				r.Post("/logout", authManager.HandleLogout)
				r.Get("/status", authManager.HandleStatus)
			})
		}

		r.Group(func(r chi.Router) {
			if authManager != nil {
				r.Use(authManager.RequireAuth)
			}

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", h.ListContacts)
				r.Post("/", h.AddContact)
				r.Delete("/", h.ClearContacts)
				r.Post("/import/paste", h.ImportPaste)
				r.Post("/import/csv", h.ImportCSV)
				r.Delete("/{id}", h.DeleteContact)
			})

			r.Route("/templates", func(r chi.Router) {
				r.Get("/", h.ListTemplates)
				r.Post("/", h.SaveTemplate)
				r.Post("/generate", h.GenerateTemplate)
				r.Get("/{id}", h.GetTemplate)
				r.Delete("/{id}", h.DeleteTemplate)
				r.Post("/{id}/preview", h.PreviewTemplate)
				r.Post("/{id}/spam-score", h.SpamScore)
			})

			r.Route("/settings/smtp", func(r chi.Router) {
				r.Get("/", h.GetSMTP)
				r.Put("/", h.SaveSMTP)
				r.Post("/test", h.TestSMTP)
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Post("/send", h.StartCampaign)
				r.Get("/current", h.CurrentCampaign)
				r.Get("/current/stream", h.StreamCampaign)
				r.Post("/current/stop", h.StopCampaign)
				r.Post("/current/reset", h.ResetCampaign)
			})

			r.Get("/logs", h.ListLogs)
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/dashboard/stats", h.GetDashboardStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, "not found")
	})

	return r
}
