// Package api maps the HTTP surface onto the entity store, applying the
// validation layer on writes and the auth gate on admin routes.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dawntoweb/agency/internal/auth"
	"github.com/dawntoweb/agency/internal/store"
	"github.com/dawntoweb/agency/internal/validate"
)

const maxRequestBodySize = 1 << 20 // 1MB

type Deps struct {
	Store  store.Store
	Auth   *auth.Service
	Logger *slog.Logger
}

// NewHandler builds the full route tree: public brochure routes plus the
// gated /api/admin back office.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/contact", handleContact(deps))
		r.Get("/blog-posts", handlePublicBlogPosts(deps))
		r.Get("/blog-posts/{slug}", handlePublicBlogPostBySlug(deps))
		r.Get("/projects", handlePublicProjects(deps))
		r.Get("/agents", handlePublicAgents(deps))
		r.Get("/settings/{key}", handlePublicSetting(deps))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", handleLogin(deps))
			r.Post("/logout", handleLogout(deps))

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(deps.Auth))

				r.Get("/me", handleMe(deps))
				r.Get("/stats", handleStats(deps))

				r.Get("/leads", handleListLeads(deps))
				r.Patch("/leads/{id}", handleUpdateLead(deps))
				r.Delete("/leads/{id}", handleDeleteLead(deps))

				r.Get("/blog-posts", handleAdminListBlogPosts(deps))
				r.Get("/blog-posts/{id}", handleAdminGetBlogPost(deps))
				r.Post("/blog-posts", handleCreateBlogPost(deps))
				r.Patch("/blog-posts/{id}", handleUpdateBlogPost(deps))
				r.Delete("/blog-posts/{id}", handleDeleteBlogPost(deps))

				r.Get("/projects", handleAdminListProjects(deps))
				r.Post("/projects", handleCreateProject(deps))
				r.Patch("/projects/{id}", handleUpdateProject(deps))
				r.Delete("/projects/{id}", handleDeleteProject(deps))

				r.Get("/agents", handleAdminListAgents(deps))
				r.Post("/agents", handleCreateAgent(deps))
				r.Patch("/agents/{id}", handleUpdateAgent(deps))
				r.Delete("/agents/{id}", handleDeleteAgent(deps))

				r.Get("/settings", handleListSettings(deps))
				r.Put("/settings/{key}", handlePutSetting(deps))
			})
		})
	})

	return r
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

// validationError surfaces validation failures as client errors; anything
// else falls through to the store-error mapping.
func validationError(w http.ResponseWriter, err error) bool {
	var ve *validate.Error
	if errors.As(err, &ve) {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", ve)
		return true
	}
	return false
}

func storeError(w http.ResponseWriter, err error, entity string) {
	if errors.Is(err, store.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "%s not found", entity)
		return
	}
	httpError(w, http.StatusInternalServerError, "api_error", "%s operation failed: %v", entity, err)
}
