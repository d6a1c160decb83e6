package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nouscopy/nouscopy/internal/api/handlers"
	"github.com/nouscopy/nouscopy/internal/auth"
	"github.com/nouscopy/nouscopy/internal/competitor"
	"github.com/nouscopy/nouscopy/internal/generate"
	"github.com/nouscopy/nouscopy/internal/storage"
)

//go:embed all:dist
var distFS embed.FS

// Deps are the services the HTTP API is built on.
type Deps struct {
	Store       *storage.Store
	Auth        *auth.Service
	Generator   *generate.Service
	Importer    *competitor.Importer
	CORSOrigins []string
}

// NewRouter creates and configures the HTTP router with all API routes and
// static file serving for the React SPA.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS(d.CORSOrigins))

	r.Get("/healthz", handlers.Healthz(d.Store))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", handlers.SignUp(d.Auth))
		api.Post("/auth/signin", handlers.SignIn(d.Auth))

		api.Get("/catalog", handlers.GetCatalog())
		api.Get("/schema", handlers.GetSchema())
		api.Get("/agents", handlers.GetAgents(d.Generator.AIEnabled()))
		api.Get("/templates/system", handlers.GetSystemTemplates())

		// Everything below needs a signed-in user.
		api.Group(func(priv chi.Router) {
			priv.Use(auth.RequireUser(d.Auth))

			priv.Post("/auth/signout", handlers.SignOut(d.Auth))
			priv.Get("/auth/session", handlers.GetSession())

			priv.Post("/templates/system/{id}/apply", handlers.ApplySystemTemplate())
			priv.Get("/templates", handlers.ListTemplates(d.Store))
			priv.Post("/templates", handlers.CreateTemplate(d.Store))
			priv.Get("/templates/{id}", handlers.GetTemplate(d.Store))
			priv.Delete("/templates/{id}", handlers.DeleteTemplate(d.Store))
			priv.Post("/templates/{id}/apply", handlers.ApplyTemplate(d.Store))

			priv.Post("/generate", handlers.Generate(d.Generator))
			priv.Post("/agents/{id}/generate", handlers.GenerateAgent(d.Generator))
			priv.Post("/variations", handlers.Variations(d.Generator))
			priv.Post("/competitor/import", handlers.ImportCompetitor(d.Importer))

			priv.Get("/history", handlers.ListHistory(d.Store))
			priv.Delete("/history", handlers.ClearHistory(d.Store))
			priv.Get("/history/{id}", handlers.GetHistoryEntry(d.Store))
			priv.Delete("/history/{id}", handlers.DeleteHistoryEntry(d.Store))
			priv.Get("/history/{id}/export", handlers.ExportHistoryEntry(d.Store))
			priv.Get("/history/{id}/compare/{other}", handlers.CompareHistory(d.Store))

			priv.Get("/preferences", handlers.GetPreferences(d.Store))
			priv.Put("/preferences", handlers.UpdatePreferences(d.Store))

			priv.Get("/dashboard", handlers.GetDashboard(d.Store))
		})
	})

	// Serve React SPA from the embedded dist/ directory.
	distContent, _ := fs.Sub(distFS, "dist")
	fileServer := http.FileServer(http.FS(distContent))

	// SPA fallback: serve index.html for any non-API GET request that does
	// not match a static file.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		f, err := distContent.Open(path[1:])
		if err != nil {
			// Unknown paths belong to client-side routing.
			r.URL.Path = "/"
			fileServer.ServeHTTP(w, r)
			return
		}
		f.Close()

		fileServer.ServeHTTP(w, r)
	})

	return r
}
