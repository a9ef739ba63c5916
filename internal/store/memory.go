package store

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is the volatile reference implementation: one map per entity,
// guarded by a single lock so read-modify-write sequences never interleave.
// All contents are lost on process exit.
type MemStore struct {
	mu       sync.RWMutex
	users    map[string]User
	leads    map[string]Lead
	posts    map[string]BlogPost
	projects map[string]Project
	agents   map[string]AiAgent
	settings map[string]SiteSetting // keyed by setting key, not id
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[string]User),
		leads:    make(map[string]Lead),
		posts:    make(map[string]BlogPost),
		projects: make(map[string]Project),
		agents:   make(map[string]AiAgent),
		settings: make(map[string]SiteSetting),
	}
}

func (s *MemStore) Close() error { return nil }

// --- users ---

func (s *MemStore) GetUser(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemStore) GetUserByUsername(username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemStore) CreateUser(in NewUser) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := buildUser(in, uuid.New().String(), time.Now().UTC())
	s.users[u.ID] = u
	return u, nil
}

// --- leads ---

func (s *MemStore) ListLeads() ([]Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) GetLead(id string) (Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

func (s *MemStore) CreateLead(in NewLead) (Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := buildLead(in, uuid.New().String(), time.Now().UTC())
	s.leads[l.ID] = l
	return l, nil
}

func (s *MemStore) UpdateLead(id string, patch LeadPatch) (Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	l = l.apply(patch, time.Now().UTC())
	s.leads[id] = l
	return l, nil
}

func (s *MemStore) DeleteLead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.leads, id)
	return nil
}

// --- blog posts ---

func (s *MemStore) ListBlogPosts(includeUnpublished bool) ([]BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BlogPost, 0, len(s.posts))
	for _, p := range s.posts {
		if !includeUnpublished && p.Status != PostStatusPublished {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) GetBlogPost(id string) (BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return BlogPost{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) GetBlogPostBySlug(slug string) (BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}

func (s *MemStore) CreateBlogPost(in NewBlogPost) (BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := buildBlogPost(in, uuid.New().String(), time.Now().UTC())
	s.posts[p.ID] = p
	return p, nil
}

func (s *MemStore) UpdateBlogPost(id string, patch BlogPostPatch) (BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return BlogPost{}, ErrNotFound
	}
	p = p.apply(patch, time.Now().UTC())
	s.posts[id] = p
	return p, nil
}

func (s *MemStore) DeleteBlogPost(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

// --- projects ---

func (s *MemStore) ListProjects(includeInactive bool) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		if !includeInactive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *MemStore) GetProject(id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) CreateProject(in NewProject) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := buildProject(in, uuid.New().String(), time.Now().UTC())
	s.projects[p.ID] = p
	return p, nil
}

func (s *MemStore) UpdateProject(id string, patch ProjectPatch) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	p = p.apply(patch, time.Now().UTC())
	s.projects[id] = p
	return p, nil
}

func (s *MemStore) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

// --- AI agents ---

func (s *MemStore) ListAiAgents(includeInactive bool) ([]AiAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AiAgent, 0, len(s.agents))
	for _, a := range s.agents {
		if !includeInactive && !a.Active {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *MemStore) GetAiAgent(id string) (AiAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	if !ok {
		return AiAgent{}, ErrNotFound
	}
	return a, nil
}

func (s *MemStore) CreateAiAgent(in NewAiAgent) (AiAgent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := buildAiAgent(in, uuid.New().String(), time.Now().UTC())
	s.agents[a.ID] = a
	return a, nil
}

func (s *MemStore) UpdateAiAgent(id string, patch AiAgentPatch) (AiAgent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return AiAgent{}, ErrNotFound
	}
	a = a.apply(patch, time.Now().UTC())
	s.agents[id] = a
	return a, nil
}

func (s *MemStore) DeleteAiAgent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.agents, id)
	return nil
}

// --- site settings ---

func (s *MemStore) ListSettings() ([]SiteSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SiteSetting, 0, len(s.settings))
	for _, st := range s.settings {
		out = append(out, st)
	}
	return out, nil
}

func (s *MemStore) GetSetting(key string) (SiteSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settings[key]
	if !ok {
		return SiteSetting{}, ErrNotFound
	}
	return st, nil
}

// SetSetting upserts by key. The first write for a key assigns an id; later
// writes replace the value and timestamp but keep that id.
func (s *MemStore) SetSetting(key string, value json.RawMessage) (SiteSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[key]
	if !ok {
		st = SiteSetting{ID: uuid.New().String(), Key: key}
	}
	st.Value = value
	st.UpdatedAt = time.Now().UTC()
	s.settings[key] = st
	return st, nil
}
