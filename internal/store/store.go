package store

import "encoding/json"

// Store is the keyed entity storage contract consumed by the route layer.
// Two implementations exist: MemStore (volatile, reference semantics) and
// the SQLite-backed Store opened via Open.
//
// Create* assigns a fresh id, fills defaults and timestamps, and returns the
// stored record. Update* fails with ErrNotFound on an absent id and returns
// the merged record. Delete* is idempotent: deleting an absent id is not an
// error. List ordering and filtering per entity:
//
//   - leads: all, newest first
//   - blog posts: published only unless includeUnpublished, newest first
//   - projects/agents: active only unless includeInactive, by order ascending
//   - settings: all, unordered
type Store interface {
	GetUser(id string) (User, error)
	GetUserByUsername(username string) (User, error)
	CreateUser(in NewUser) (User, error)

	ListLeads() ([]Lead, error)
	GetLead(id string) (Lead, error)
	CreateLead(in NewLead) (Lead, error)
	UpdateLead(id string, patch LeadPatch) (Lead, error)
	DeleteLead(id string) error

	ListBlogPosts(includeUnpublished bool) ([]BlogPost, error)
	GetBlogPost(id string) (BlogPost, error)
	GetBlogPostBySlug(slug string) (BlogPost, error)
	CreateBlogPost(in NewBlogPost) (BlogPost, error)
	UpdateBlogPost(id string, patch BlogPostPatch) (BlogPost, error)
	DeleteBlogPost(id string) error

	ListProjects(includeInactive bool) ([]Project, error)
	GetProject(id string) (Project, error)
	CreateProject(in NewProject) (Project, error)
	UpdateProject(id string, patch ProjectPatch) (Project, error)
	DeleteProject(id string) error

	ListAiAgents(includeInactive bool) ([]AiAgent, error)
	GetAiAgent(id string) (AiAgent, error)
	CreateAiAgent(in NewAiAgent) (AiAgent, error)
	UpdateAiAgent(id string, patch AiAgentPatch) (AiAgent, error)
	DeleteAiAgent(id string) error

	ListSettings() ([]SiteSetting, error)
	GetSetting(key string) (SiteSetting, error)
	SetSetting(key string, value json.RawMessage) (SiteSetting, error)

	Close() error
}
