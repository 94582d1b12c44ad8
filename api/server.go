/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: Structured (slog) request logging with the request ID
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for a browser frontend

ROUTE GROUPS:
  /api/profiles/*       Profiles and their calendars
  /api/calendars/*      Entries, reports and CSV exports
  /api/holidays/*       Official and manual holiday lists
  /api/backup           JSON export / import
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/pontaj/logging"
)

// DefaultOrigins are allowed when no CORS origins are configured.
var DefaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins ...string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// Profile routes
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Post("/", h.CreateProfile)
			r.Put("/{id}", h.RenameProfile)
			r.Delete("/{id}", h.DeleteProfile)
			r.Get("/{id}/calendars", h.ListCalendars)
			r.Post("/{id}/calendars", h.CreateCalendar)
		})

		// Calendar routes
		r.Route("/calendars/{id}", func(r chi.Router) {
			r.Put("/", h.RenameCalendar)
			r.Delete("/", h.DeleteCalendar)

			r.Get("/entries", h.ListEntries)
			r.Get("/entries/{date}", h.GetEntry)
			r.Put("/entries/{date}", h.SaveEntry)
			r.Delete("/entries/{date}", h.DeleteEntry)
			r.Delete("/months/{year}/{month}", h.DeleteMonth)

			r.Get("/summary/{year}/{month}", h.GetSummary)
			r.Get("/breakdown/{year}/{month}", h.GetBreakdown)
			r.Get("/years/{year}/summary", h.GetYearSummary)

			r.Get("/export/entries.csv", h.ExportEntriesCSV)
			r.Get("/export/years/{year}.csv", h.ExportYearCSV)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/{year}", h.GetHolidays)
			r.Put("/{year}", h.SetHolidays)
		})

		// Backup routes
		r.Get("/backup", h.ExportBackup)
		r.Post("/backup", h.ImportBackup)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
