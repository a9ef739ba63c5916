package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dawntoweb/agency/internal/store"
	"github.com/dawntoweb/agency/internal/validate"
)

// handleContact accepts a contact-form submission and files it as a lead.
func handleContact(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.NewLead
		if !decodeJSON(w, r, &in) {
			return
		}
		if err := validate.Lead(in); err != nil {
			if !validationError(w, err) {
				storeError(w, err, "lead")
			}
			return
		}

		lead, err := deps.Store.CreateLead(in)
		if err != nil {
			deps.Logger.Error("saving lead", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to submit form")
			return
		}

		deps.Logger.Info("lead received", "id", lead.ID, "source", lead.Source)
		writeJSON(w, map[string]any{
			"success": true,
			"message": "Thank you for your message! We'll get back to you soon.",
		})
	}
}

func handlePublicBlogPosts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := deps.Store.ListBlogPosts(false)
		if err != nil {
			storeError(w, err, "blog posts")
			return
		}
		writeJSON(w, posts)
	}
}

func handlePublicBlogPostBySlug(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := deps.Store.GetBlogPostBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			storeError(w, err, "blog post")
			return
		}
		// Drafts stay invisible on the public surface.
		if post.Status != store.PostStatusPublished {
			httpError(w, http.StatusNotFound, "not_found", "blog post not found")
			return
		}
		writeJSON(w, post)
	}
}

func handlePublicProjects(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := deps.Store.ListProjects(false)
		if err != nil {
			storeError(w, err, "projects")
			return
		}
		writeJSON(w, projects)
	}
}

func handlePublicAgents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents, err := deps.Store.ListAiAgents(false)
		if err != nil {
			storeError(w, err, "agents")
			return
		}
		writeJSON(w, agents)
	}
}

func handlePublicSetting(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setting, err := deps.Store.GetSetting(chi.URLParam(r, "key"))
		if err != nil {
			storeError(w, err, "setting")
			return
		}
		writeJSON(w, setting)
	}
}
