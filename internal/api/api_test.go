package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawntoweb/agency/internal/auth"
	"github.com/dawntoweb/agency/internal/store"
)

type testEnv struct {
	t       *testing.T
	server  *httptest.Server
	store   store.Store
	session *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemStore()

	hash, err := auth.HashPassword("correct")
	require.NoError(t, err)
	_, err = st.CreateUser(store.NewUser{Username: "admin", Password: hash, Email: "admin@x.com"})
	require.NoError(t, err)

	svc := auth.NewService(st, auth.NewSessions(time.Hour))
	srv := httptest.NewServer(NewHandler(Deps{Store: st, Auth: svc}))
	t.Cleanup(srv.Close)

	return &testEnv{t: t, server: srv, store: st}
}

func (e *testEnv) do(method, path string, body any) *http.Response {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	if e.session != nil {
		req.AddCookie(e.session)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(e.t, err)
	return resp
}

func (e *testEnv) decode(resp *http.Response, v any) {
	e.t.Helper()
	defer resp.Body.Close()
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(v))
}

func (e *testEnv) login(username, password string) *http.Response {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/api/admin/login", map[string]string{
		"username": username, "password": password,
	})
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			e.session = c
		}
	}
	return resp
}

func TestContactFormCreatesLead(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(http.MethodPost, "/api/contact", map[string]string{
		"name": "Jo", "email": "jo@x.com", "message": "hi",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	e.decode(resp, &body)
	assert.Equal(t, true, body["success"])

	leads, err := e.store.ListLeads()
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "new", leads[0].Status)
	assert.Equal(t, "medium", leads[0].Priority)
	assert.Equal(t, "contact_form", leads[0].Source)
	assert.NotEmpty(t, leads[0].ID)
}

func TestContactFormValidation(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(http.MethodPost, "/api/contact", map[string]string{
		"name": "Jo", "email": "jo@x.com",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid_request_error", body.Error.Type)
	assert.Contains(t, body.Error.Message, "message")
}

func TestAdminRoutesRequireSession(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/api/admin/leads", "/api/admin/stats", "/api/admin/blog-posts", "/api/admin/settings"} {
		resp := e.do(http.MethodGet, path, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	// A made-up token is as good as none.
	e.session = &http.Cookie{Name: SessionCookie, Value: "forged"}
	resp := e.do(http.MethodGet, "/api/admin/leads", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)

	resp := e.login("admin", "wrong")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, e.session)

	resp = e.login("nobody", "correct")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.login("admin", "correct")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, e.session)

	var body struct {
		Success bool     `json:"success"`
		User    userInfo `json:"user"`
	}
	e.decode(resp, &body)
	assert.True(t, body.Success)
	assert.Equal(t, "admin", body.User.Username)
	assert.Equal(t, "admin@x.com", body.User.Email)

	me := e.do(http.MethodGet, "/api/admin/me", nil)
	require.Equal(t, http.StatusOK, me.StatusCode)
	var info userInfo
	e.decode(me, &info)
	assert.Equal(t, body.User.ID, info.ID)
}

func TestLoginResponseNeverLeaksHash(t *testing.T) {
	e := newTestEnv(t)

	resp := e.login("admin", "correct")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	e.decode(resp, &raw)
	user, ok := raw["user"].(map[string]any)
	require.True(t, ok)
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	e := newTestEnv(t)
	resp := e.login("admin", "correct")
	resp.Body.Close()
	require.NotNil(t, e.session)

	resp = e.do(http.MethodPost, "/api/admin/logout", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(http.MethodGet, "/api/admin/leads", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLeadPipeline(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(http.MethodPost, "/api/contact", map[string]string{
		"name": "Jo", "email": "jo@x.com", "message": "hi",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.login("admin", "correct")
	resp.Body.Close()

	var leads []store.Lead
	listResp := e.do(http.MethodGet, "/api/admin/leads", nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	e.decode(listResp, &leads)
	require.Len(t, leads, 1)

	patchResp := e.do(http.MethodPatch, "/api/admin/leads/"+leads[0].ID, map[string]string{
		"status": "contacted", "notes": "called twice",
	})
	require.Equal(t, http.StatusOK, patchResp.StatusCode)
	var updated store.Lead
	e.decode(patchResp, &updated)
	assert.Equal(t, "contacted", updated.Status)
	assert.Equal(t, "called twice", updated.Notes)
	assert.Equal(t, "Jo", updated.Name)

	missing := e.do(http.MethodPatch, "/api/admin/leads/no-such-id", map[string]string{"status": "closed"})
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	// Deleting twice reports success both times.
	for i := 0; i < 2; i++ {
		del := e.do(http.MethodDelete, "/api/admin/leads/"+leads[0].ID, nil)
		del.Body.Close()
		assert.Equal(t, http.StatusOK, del.StatusCode)
	}

	statsResp := e.do(http.MethodGet, "/api/admin/stats", nil)
	var stats Stats
	e.decode(statsResp, &stats)
	assert.Equal(t, 0, stats.TotalLeads)
}

func TestDashboardStats(t *testing.T) {
	e := newTestEnv(t)

	for _, status := range []string{"new", "new", "contacted", "converted"} {
		lead, err := e.store.CreateLead(store.NewLead{Name: "L", Email: "l@x.com", Message: "m"})
		require.NoError(t, err)
		if status != "new" {
			_, err = e.store.UpdateLead(lead.ID, store.LeadPatch{Status: &status})
			require.NoError(t, err)
		}
	}

	resp := e.login("admin", "correct")
	resp.Body.Close()

	statsResp := e.do(http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, statsResp.StatusCode)
	var stats Stats
	e.decode(statsResp, &stats)
	assert.Equal(t, Stats{TotalLeads: 4, NewLeads: 2, ContactedLeads: 1, ConvertedLeads: 1}, stats)
}

func TestBlogWorkflow(t *testing.T) {
	e := newTestEnv(t)
	resp := e.login("admin", "correct")
	resp.Body.Close()

	createResp := e.do(http.MethodPost, "/api/admin/blog-posts", map[string]any{
		"title": "Hello", "slug": "hello", "content": "body",
	})
	require.Equal(t, http.StatusOK, createResp.StatusCode)
	var post store.BlogPost
	e.decode(createResp, &post)
	assert.Equal(t, "draft", post.Status)
	assert.NotEmpty(t, post.AuthorID, "author comes from the session")
	assert.Nil(t, post.PublishedAt)

	// Duplicate slug is refused at the route layer.
	dup := e.do(http.MethodPost, "/api/admin/blog-posts", map[string]any{
		"title": "Other", "slug": "hello", "content": "body",
	})
	dup.Body.Close()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)

	// Drafts are invisible to the public surface.
	pubList := e.do(http.MethodGet, "/api/blog-posts", nil)
	var publicPosts []store.BlogPost
	e.decode(pubList, &publicPosts)
	assert.Empty(t, publicPosts)

	bySlug := e.do(http.MethodGet, "/api/blog-posts/hello", nil)
	bySlug.Body.Close()
	assert.Equal(t, http.StatusNotFound, bySlug.StatusCode)

	// Publish, then verify the public surface and the publishedAt rule.
	pubResp := e.do(http.MethodPatch, "/api/admin/blog-posts/"+post.ID, map[string]string{"status": "published"})
	require.Equal(t, http.StatusOK, pubResp.StatusCode)
	var published store.BlogPost
	e.decode(pubResp, &published)
	require.NotNil(t, published.PublishedAt)

	editResp := e.do(http.MethodPatch, "/api/admin/blog-posts/"+post.ID, map[string]string{"title": "Hello v2"})
	var edited store.BlogPost
	e.decode(editResp, &edited)
	require.NotNil(t, edited.PublishedAt)
	assert.True(t, edited.PublishedAt.Equal(*published.PublishedAt))

	bySlug = e.do(http.MethodGet, "/api/blog-posts/hello", nil)
	require.Equal(t, http.StatusOK, bySlug.StatusCode)
	var fetched store.BlogPost
	e.decode(bySlug, &fetched)
	assert.Equal(t, "Hello v2", fetched.Title)

	delResp := e.do(http.MethodDelete, "/api/admin/blog-posts/"+post.ID, nil)
	delResp.Body.Close()
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
}

func TestProjectVisibility(t *testing.T) {
	e := newTestEnv(t)
	resp := e.login("admin", "correct")
	resp.Body.Close()

	mk := func(title string, order int, active bool) {
		createResp := e.do(http.MethodPost, "/api/admin/projects", map[string]any{
			"title": title, "description": "d", "category": "c", "image": "i",
			"order": order, "active": active,
		})
		createResp.Body.Close()
		require.Equal(t, http.StatusOK, createResp.StatusCode)
	}
	mk("P1", 2, true)
	mk("P2", 1, false)
	mk("P3", 0, true)

	var publicProjects []store.Project
	pubResp := e.do(http.MethodGet, "/api/projects", nil)
	e.decode(pubResp, &publicProjects)
	require.Len(t, publicProjects, 2)
	assert.Equal(t, "P3", publicProjects[0].Title)
	assert.Equal(t, "P1", publicProjects[1].Title)

	var adminProjects []store.Project
	adminResp := e.do(http.MethodGet, "/api/admin/projects", nil)
	e.decode(adminResp, &adminProjects)
	assert.Len(t, adminProjects, 3)
}

func TestSettings(t *testing.T) {
	e := newTestEnv(t)
	resp := e.login("admin", "correct")
	resp.Body.Close()

	putResp := e.do(http.MethodPut, "/api/admin/settings/hero", map[string]string{"headline": "hi"})
	require.Equal(t, http.StatusOK, putResp.StatusCode)
	var setting store.SiteSetting
	e.decode(putResp, &setting)
	firstID := setting.ID

	putResp = e.do(http.MethodPut, "/api/admin/settings/hero", map[string]string{"headline": "bye"})
	e.decode(putResp, &setting)
	assert.Equal(t, firstID, setting.ID)

	getResp := e.do(http.MethodGet, "/api/settings/hero", nil)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	e.decode(getResp, &setting)
	assert.JSONEq(t, `{"headline":"bye"}`, string(setting.Value))

	missing := e.do(http.MethodGet, "/api/settings/nope", nil)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(http.MethodGet, "/health", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
