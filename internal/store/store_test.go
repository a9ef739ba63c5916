package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore exercises the Store contract shared by both implementations.
func testStore(t *testing.T, open func(t *testing.T) Store) {
	t.Run("LeadDefaults", func(t *testing.T) {
		s := open(t)
		lead, err := s.CreateLead(NewLead{Name: "Jo", Email: "jo@x.com", Message: "hi"})
		require.NoError(t, err)

		assert.NotEmpty(t, lead.ID)
		assert.Equal(t, LeadStatusNew, lead.Status)
		assert.Equal(t, "medium", lead.Priority)
		assert.Equal(t, "contact_form", lead.Source)
		assert.False(t, lead.CreatedAt.IsZero())
		assert.False(t, lead.UpdatedAt.IsZero())

		got, err := s.GetLead(lead.ID)
		require.NoError(t, err)
		assert.Equal(t, lead.ID, got.ID)
		assert.Equal(t, "Jo", got.Name)
		assert.Equal(t, "jo@x.com", got.Email)
		assert.Equal(t, "hi", got.Message)
		assert.True(t, got.CreatedAt.Equal(lead.CreatedAt))
		assert.True(t, got.UpdatedAt.Equal(lead.UpdatedAt))
	})

	t.Run("LeadUpdateMergesAndRefreshesTimestamp", func(t *testing.T) {
		s := open(t)
		lead, err := s.CreateLead(NewLead{Name: "Jo", Email: "jo@x.com", Message: "hi"})
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		status := LeadStatusContacted
		updated, err := s.UpdateLead(lead.ID, LeadPatch{Status: &status})
		require.NoError(t, err)

		assert.Equal(t, LeadStatusContacted, updated.Status)
		assert.Equal(t, lead.Name, updated.Name)
		assert.Equal(t, lead.Priority, updated.Priority)
		assert.True(t, updated.CreatedAt.Equal(lead.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(lead.UpdatedAt), "updatedAt must strictly increase")
	})

	t.Run("UpdateMissingFailsNotFound", func(t *testing.T) {
		s := open(t)
		name := "x"
		_, err := s.UpdateLead("no-such-id", LeadPatch{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := open(t)
		lead, err := s.CreateLead(NewLead{Name: "Jo", Email: "jo@x.com", Message: "hi"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteLead(lead.ID))
		_, err = s.GetLead(lead.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.DeleteLead(lead.ID))
		require.NoError(t, s.DeleteLead("never-existed"))
	})

	t.Run("LeadsListedNewestFirst", func(t *testing.T) {
		s := open(t)
		first, err := s.CreateLead(NewLead{Name: "A", Email: "a@x.com", Message: "m"})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		second, err := s.CreateLead(NewLead{Name: "B", Email: "b@x.com", Message: "m"})
		require.NoError(t, err)

		leads, err := s.ListLeads()
		require.NoError(t, err)
		require.Len(t, leads, 2)
		assert.Equal(t, second.ID, leads[0].ID)
		assert.Equal(t, first.ID, leads[1].ID)
	})

	t.Run("BlogPostPublishOnce", func(t *testing.T) {
		s := open(t)
		post, err := s.CreateBlogPost(NewBlogPost{
			Title: "Hello", Slug: "hello", Content: "body", AuthorID: "u1",
		})
		require.NoError(t, err)
		assert.Equal(t, PostStatusDraft, post.Status)
		assert.Nil(t, post.PublishedAt)
		assert.Equal(t, []string{}, post.Tags)

		status := PostStatusPublished
		published, err := s.UpdateBlogPost(post.ID, BlogPostPatch{Status: &status})
		require.NoError(t, err)
		require.NotNil(t, published.PublishedAt)

		time.Sleep(5 * time.Millisecond)
		title := "Hello again"
		edited, err := s.UpdateBlogPost(post.ID, BlogPostPatch{Title: &title})
		require.NoError(t, err)
		require.NotNil(t, edited.PublishedAt)
		assert.True(t, edited.PublishedAt.Equal(*published.PublishedAt),
			"publishedAt must not change on later edits")
	})

	t.Run("BlogPostCreatedPublished", func(t *testing.T) {
		s := open(t)
		post, err := s.CreateBlogPost(NewBlogPost{
			Title: "Live", Slug: "live", Content: "body", AuthorID: "u1",
			Status: PostStatusPublished,
		})
		require.NoError(t, err)
		require.NotNil(t, post.PublishedAt)
	})

	t.Run("BlogPostListFilter", func(t *testing.T) {
		s := open(t)
		_, err := s.CreateBlogPost(NewBlogPost{Title: "D", Slug: "d", Content: "c", AuthorID: "u1"})
		require.NoError(t, err)
		pub, err := s.CreateBlogPost(NewBlogPost{Title: "P", Slug: "p", Content: "c", AuthorID: "u1", Status: PostStatusPublished})
		require.NoError(t, err)

		public, err := s.ListBlogPosts(false)
		require.NoError(t, err)
		require.Len(t, public, 1)
		assert.Equal(t, pub.ID, public[0].ID)

		all, err := s.ListBlogPosts(true)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("BlogPostBySlug", func(t *testing.T) {
		s := open(t)
		post, err := s.CreateBlogPost(NewBlogPost{Title: "T", Slug: "t-slug", Content: "c", AuthorID: "u1"})
		require.NoError(t, err)

		got, err := s.GetBlogPostBySlug("t-slug")
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)

		_, err = s.GetBlogPostBySlug("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ProjectVisibilityAndOrder", func(t *testing.T) {
		s := open(t)
		inactive := false
		p1, err := s.CreateProject(NewProject{Title: "P1", Description: "d", Category: "c", Image: "i", Order: 2})
		require.NoError(t, err)
		p2, err := s.CreateProject(NewProject{Title: "P2", Description: "d", Category: "c", Image: "i", Order: 1, Active: &inactive})
		require.NoError(t, err)
		p3, err := s.CreateProject(NewProject{Title: "P3", Description: "d", Category: "c", Image: "i", Order: 0})
		require.NoError(t, err)

		visible, err := s.ListProjects(false)
		require.NoError(t, err)
		require.Len(t, visible, 2)
		assert.Equal(t, p3.ID, visible[0].ID)
		assert.Equal(t, p1.ID, visible[1].ID)

		all, err := s.ListProjects(true)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{p3.ID, p2.ID, p1.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("ProjectDefaultsActive", func(t *testing.T) {
		s := open(t)
		p, err := s.CreateProject(NewProject{Title: "P", Description: "d", Category: "c", Image: "i"})
		require.NoError(t, err)
		assert.True(t, p.Active)
		assert.False(t, p.Featured)
		assert.Equal(t, 0, p.Order)
	})

	t.Run("AgentDefaultsAndFilter", func(t *testing.T) {
		s := open(t)
		a, err := s.CreateAiAgent(NewAiAgent{Name: "A", Description: "d", Icon: "i", Price: "99", Category: "sales"})
		require.NoError(t, err)
		assert.Equal(t, "monthly", a.PriceType)
		assert.True(t, a.Active)
		assert.Equal(t, []string{}, a.Features)
		assert.Equal(t, []string{}, a.Integrations)

		off := false
		_, err = s.UpdateAiAgent(a.ID, AiAgentPatch{Active: &off})
		require.NoError(t, err)

		visible, err := s.ListAiAgents(false)
		require.NoError(t, err)
		assert.Empty(t, visible)

		all, err := s.ListAiAgents(true)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("SettingUpsertKeepsID", func(t *testing.T) {
		s := open(t)
		first, err := s.SetSetting("k", json.RawMessage(`1`))
		require.NoError(t, err)
		require.NotEmpty(t, first.ID)

		second, err := s.SetSetting("k", json.RawMessage(`2`))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		got, err := s.GetSetting("k")
		require.NoError(t, err)
		assert.JSONEq(t, `2`, string(got.Value))

		_, err = s.GetSetting("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SettingStructuredValue", func(t *testing.T) {
		s := open(t)
		raw := json.RawMessage(`{"headline":"hi","items":[1,2,3]}`)
		_, err := s.SetSetting("hero", raw)
		require.NoError(t, err)

		got, err := s.GetSetting("hero")
		require.NoError(t, err)
		assert.JSONEq(t, string(raw), string(got.Value))

		list, err := s.ListSettings()
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Users", func(t *testing.T) {
		s := open(t)
		u, err := s.CreateUser(NewUser{Username: "admin", Password: "hash", Email: "a@x.com"})
		require.NoError(t, err)
		assert.Equal(t, "admin", u.Role)

		byName, err := s.GetUserByUsername("admin")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)

		// Lookup is exact and case-sensitive.
		_, err = s.GetUserByUsername("Admin")
		assert.ErrorIs(t, err, ErrNotFound)

		byID, err := s.GetUser(u.ID)
		require.NoError(t, err)
		assert.Equal(t, "hash", byID.Password)
	})
}
