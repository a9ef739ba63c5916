package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dawntoweb/agency/internal/store"
	"github.com/dawntoweb/agency/internal/validate"
)

// Stats summarizes the lead pipeline for the dashboard.
type Stats struct {
	TotalLeads     int `json:"totalLeads"`
	NewLeads       int `json:"newLeads"`
	ContactedLeads int `json:"contactedLeads"`
	ConvertedLeads int `json:"convertedLeads"`
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leads, err := deps.Store.ListLeads()
		if err != nil {
			storeError(w, err, "leads")
			return
		}

		stats := Stats{TotalLeads: len(leads)}
		for _, l := range leads {
			switch l.Status {
			case store.LeadStatusNew:
				stats.NewLeads++
			case store.LeadStatusContacted:
				stats.ContactedLeads++
			case store.LeadStatusConverted:
				stats.ConvertedLeads++
			}
		}
		writeJSON(w, stats)
	}
}

// --- leads ---

func handleListLeads(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leads, err := deps.Store.ListLeads()
		if err != nil {
			storeError(w, err, "leads")
			return
		}
		writeJSON(w, leads)
	}
}

func handleUpdateLead(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch store.LeadPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		lead, err := deps.Store.UpdateLead(chi.URLParam(r, "id"), patch)
		if err != nil {
			storeError(w, err, "lead")
			return
		}
		writeJSON(w, lead)
	}
}

func handleDeleteLead(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Delete is idempotent: absent ids still report success.
		if err := deps.Store.DeleteLead(chi.URLParam(r, "id")); err != nil {
			storeError(w, err, "lead")
			return
		}
		writeJSON(w, map[string]any{"success": true})
	}
}

// --- blog posts ---

func handleAdminListBlogPosts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := deps.Store.ListBlogPosts(true)
		if err != nil {
			storeError(w, err, "blog posts")
			return
		}
		writeJSON(w, posts)
	}
}

func handleAdminGetBlogPost(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := deps.Store.GetBlogPost(chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err, "blog post")
			return
		}
		writeJSON(w, post)
	}
}

func handleCreateBlogPost(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.NewBlogPost
		if !decodeJSON(w, r, &in) {
			return
		}
		// The author is always the logged-in admin, never caller-supplied.
		in.AuthorID = sessionFrom(r).UserID

		if err := validate.BlogPost(in); err != nil {
			if !validationError(w, err) {
				storeError(w, err, "blog post")
			}
			return
		}

		// Slug uniqueness is a route-layer convention, not a store guarantee.
		if _, err := deps.Store.GetBlogPostBySlug(in.Slug); err == nil {
			httpError(w, http.StatusConflict, "conflict", "slug %q already in use", in.Slug)
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			storeError(w, err, "blog post")
			return
		}

		post, err := deps.Store.CreateBlogPost(in)
		if err != nil {
			storeError(w, err, "blog post")
			return
		}
		writeJSON(w, post)
	}
}

func handleUpdateBlogPost(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch store.BlogPostPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		post, err := deps.Store.UpdateBlogPost(chi.URLParam(r, "id"), patch)
		if err != nil {
			storeError(w, err, "blog post")
			return
		}
		writeJSON(w, post)
	}
}

func handleDeleteBlogPost(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteBlogPost(chi.URLParam(r, "id")); err != nil {
			storeError(w, err, "blog post")
			return
		}
		writeJSON(w, map[string]any{"success": true})
	}
}

// --- projects ---

func handleAdminListProjects(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := deps.Store.ListProjects(true)
		if err != nil {
			storeError(w, err, "projects")
			return
		}
		writeJSON(w, projects)
	}
}

func handleCreateProject(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.NewProject
		if !decodeJSON(w, r, &in) {
			return
		}
		if err := validate.Project(in); err != nil {
			if !validationError(w, err) {
				storeError(w, err, "project")
			}
			return
		}
		project, err := deps.Store.CreateProject(in)
		if err != nil {
			storeError(w, err, "project")
			return
		}
		writeJSON(w, project)
	}
}

func handleUpdateProject(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch store.ProjectPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		project, err := deps.Store.UpdateProject(chi.URLParam(r, "id"), patch)
		if err != nil {
			storeError(w, err, "project")
			return
		}
		writeJSON(w, project)
	}
}

func handleDeleteProject(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteProject(chi.URLParam(r, "id")); err != nil {
			storeError(w, err, "project")
			return
		}
		writeJSON(w, map[string]any{"success": true})
	}
}

// --- AI agents ---

func handleAdminListAgents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents, err := deps.Store.ListAiAgents(true)
		if err != nil {
			storeError(w, err, "agents")
			return
		}
		writeJSON(w, agents)
	}
}

func handleCreateAgent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.NewAiAgent
		if !decodeJSON(w, r, &in) {
			return
		}
		if err := validate.AiAgent(in); err != nil {
			if !validationError(w, err) {
				storeError(w, err, "agent")
			}
			return
		}
		agent, err := deps.Store.CreateAiAgent(in)
		if err != nil {
			storeError(w, err, "agent")
			return
		}
		writeJSON(w, agent)
	}
}

func handleUpdateAgent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch store.AiAgentPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		agent, err := deps.Store.UpdateAiAgent(chi.URLParam(r, "id"), patch)
		if err != nil {
			storeError(w, err, "agent")
			return
		}
		writeJSON(w, agent)
	}
}

func handleDeleteAgent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteAiAgent(chi.URLParam(r, "id")); err != nil {
			storeError(w, err, "agent")
			return
		}
		writeJSON(w, map[string]any{"success": true})
	}
}

// --- site settings ---

func handleListSettings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := deps.Store.ListSettings()
		if err != nil {
			storeError(w, err, "settings")
			return
		}
		writeJSON(w, settings)
	}
}

func handlePutSetting(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var value json.RawMessage
		if !decodeJSON(w, r, &value) {
			return
		}
		setting, err := deps.Store.SetSetting(chi.URLParam(r, "key"), value)
		if err != nil {
			storeError(w, err, "setting")
			return
		}
		writeJSON(w, setting)
	}
}
