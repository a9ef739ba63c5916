package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore is the durable Store implementation. Rows carry RFC3339 text
// timestamps; list-valued fields (tags, features, integrations) are stored
// as JSON arrays in text columns.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (or creates) the site database in dataDir and applies pending
// migrations. Pass ":memory:" for an in-memory database (used by tests).
func Open(dataDir string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if dataDir != ":memory:" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "agency.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection avoids "database is locked" under concurrent writes.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// AppliedMigrations returns applied migration versions in ascending order.
func (s *SQLiteStore) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// sqliteTimeLayout is fixed-width so the stored text sorts the same way
// the instants do; ORDER BY over these columns depends on that.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func fmtTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func marshalList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func unmarshalList(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

// --- users ---

const userCols = "id, username, password, email, role, created_at"

func scanUser(row *sql.Row) (User, error) {
	var u User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.Role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *SQLiteStore) GetUser(id string) (User, error) {
	return scanUser(s.db.QueryRow("SELECT "+userCols+" FROM users WHERE id = ?", id))
}

func (s *SQLiteStore) GetUserByUsername(username string) (User, error) {
	return scanUser(s.db.QueryRow("SELECT "+userCols+" FROM users WHERE username = ?", username))
}

func (s *SQLiteStore) CreateUser(in NewUser) (User, error) {
	u := buildUser(in, uuid.New().String(), time.Now().UTC())
	_, err := s.db.Exec(`INSERT INTO users (id, username, password, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Password, u.Email, u.Role, fmtTime(u.CreatedAt))
	if err != nil {
		return User{}, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// --- leads ---

const leadCols = "id, name, email, phone, company, message, source, status, priority, notes, assigned_to, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var l Lead
	var createdAt, updatedAt string
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Message,
		&l.Source, &l.Status, &l.Priority, &l.Notes, &l.AssignedTo, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return Lead{}, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Lead{}, err
	}
	return l, nil
}

func (s *SQLiteStore) ListLeads() ([]Lead, error) {
	rows, err := s.db.Query("SELECT " + leadCols + " FROM leads ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetLead(id string) (Lead, error) {
	return scanLead(s.db.QueryRow("SELECT "+leadCols+" FROM leads WHERE id = ?", id))
}

func (s *SQLiteStore) CreateLead(in NewLead) (Lead, error) {
	l := buildLead(in, uuid.New().String(), time.Now().UTC())
	_, err := s.db.Exec(`INSERT INTO leads (id, name, email, phone, company, message, source, status, priority, notes, assigned_to, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Email, l.Phone, l.Company, l.Message, l.Source, l.Status,
		l.Priority, l.Notes, l.AssignedTo, fmtTime(l.CreatedAt), fmtTime(l.UpdatedAt))
	if err != nil {
		return Lead{}, fmt.Errorf("inserting lead: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) UpdateLead(id string, patch LeadPatch) (Lead, error) {
	l, err := s.GetLead(id)
	if err != nil {
		return Lead{}, err
	}
	l = l.apply(patch, time.Now().UTC())
	_, err = s.db.Exec(`UPDATE leads SET name = ?, email = ?, phone = ?, company = ?, message = ?,
		source = ?, status = ?, priority = ?, notes = ?, assigned_to = ?, updated_at = ? WHERE id = ?`,
		l.Name, l.Email, l.Phone, l.Company, l.Message, l.Source, l.Status,
		l.Priority, l.Notes, l.AssignedTo, fmtTime(l.UpdatedAt), id)
	if err != nil {
		return Lead{}, fmt.Errorf("updating lead: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) DeleteLead(id string) error {
	_, err := s.db.Exec("DELETE FROM leads WHERE id = ?", id)
	return err
}

// --- blog posts ---

const postCols = "id, title, slug, excerpt, content, featured_image, category, tags, status, author_id, meta_title, meta_description, created_at, updated_at, published_at"

func scanBlogPost(row rowScanner) (BlogPost, error) {
	var p BlogPost
	var tags, createdAt, updatedAt string
	var publishedAt sql.NullString
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.FeaturedImage,
		&p.Category, &tags, &p.Status, &p.AuthorID, &p.MetaTitle, &p.MetaDescription,
		&createdAt, &updatedAt, &publishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	if err != nil {
		return BlogPost{}, err
	}
	p.Tags = unmarshalList(tags)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return BlogPost{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return BlogPost{}, err
	}
	if publishedAt.Valid {
		t, err := parseTime(publishedAt.String)
		if err != nil {
			return BlogPost{}, err
		}
		p.PublishedAt = &t
	}
	return p, nil
}

func publishedAtValue(p BlogPost) any {
	if p.PublishedAt == nil {
		return nil
	}
	return fmtTime(*p.PublishedAt)
}

func (s *SQLiteStore) ListBlogPosts(includeUnpublished bool) ([]BlogPost, error) {
	query := "SELECT " + postCols + " FROM blog_posts"
	var args []any
	if !includeUnpublished {
		query += " WHERE status = ?"
		args = append(args, PostStatusPublished)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BlogPost{}
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetBlogPost(id string) (BlogPost, error) {
	return scanBlogPost(s.db.QueryRow("SELECT "+postCols+" FROM blog_posts WHERE id = ?", id))
}

func (s *SQLiteStore) GetBlogPostBySlug(slug string) (BlogPost, error) {
	return scanBlogPost(s.db.QueryRow("SELECT "+postCols+" FROM blog_posts WHERE slug = ?", slug))
}

func (s *SQLiteStore) CreateBlogPost(in NewBlogPost) (BlogPost, error) {
	p := buildBlogPost(in, uuid.New().String(), time.Now().UTC())
	_, err := s.db.Exec(`INSERT INTO blog_posts (id, title, slug, excerpt, content, featured_image, category, tags, status, author_id, meta_title, meta_description, created_at, updated_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.FeaturedImage, p.Category,
		marshalList(p.Tags), p.Status, p.AuthorID, p.MetaTitle, p.MetaDescription,
		fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt), publishedAtValue(p))
	if err != nil {
		return BlogPost{}, fmt.Errorf("inserting blog post: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) UpdateBlogPost(id string, patch BlogPostPatch) (BlogPost, error) {
	p, err := s.GetBlogPost(id)
	if err != nil {
		return BlogPost{}, err
	}
	p = p.apply(patch, time.Now().UTC())
	_, err = s.db.Exec(`UPDATE blog_posts SET title = ?, slug = ?, excerpt = ?, content = ?,
		featured_image = ?, category = ?, tags = ?, status = ?, meta_title = ?, meta_description = ?,
		updated_at = ?, published_at = ? WHERE id = ?`,
		p.Title, p.Slug, p.Excerpt, p.Content, p.FeaturedImage, p.Category,
		marshalList(p.Tags), p.Status, p.MetaTitle, p.MetaDescription,
		fmtTime(p.UpdatedAt), publishedAtValue(p), id)
	if err != nil {
		return BlogPost{}, fmt.Errorf("updating blog post: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) DeleteBlogPost(id string) error {
	_, err := s.db.Exec("DELETE FROM blog_posts WHERE id = ?", id)
	return err
}

// --- projects ---

const projectCols = "id, title, description, category, image, link, technologies, display_order, featured, active, created_at, updated_at"

func scanProject(row rowScanner) (Project, error) {
	var p Project
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Image, &p.Link,
		&p.Technologies, &p.Order, &p.Featured, &p.Active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return Project{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Project{}, err
	}
	return p, nil
}

func (s *SQLiteStore) ListProjects(includeInactive bool) ([]Project, error) {
	query := "SELECT " + projectCols + " FROM projects"
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY display_order ASC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetProject(id string) (Project, error) {
	return scanProject(s.db.QueryRow("SELECT "+projectCols+" FROM projects WHERE id = ?", id))
}

func (s *SQLiteStore) CreateProject(in NewProject) (Project, error) {
	p := buildProject(in, uuid.New().String(), time.Now().UTC())
	_, err := s.db.Exec(`INSERT INTO projects (id, title, description, category, image, link, technologies, display_order, featured, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.Category, p.Image, p.Link, p.Technologies,
		p.Order, p.Featured, p.Active, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt))
	if err != nil {
		return Project{}, fmt.Errorf("inserting project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) UpdateProject(id string, patch ProjectPatch) (Project, error) {
	p, err := s.GetProject(id)
	if err != nil {
		return Project{}, err
	}
	p = p.apply(patch, time.Now().UTC())
	_, err = s.db.Exec(`UPDATE projects SET title = ?, description = ?, category = ?, image = ?,
		link = ?, technologies = ?, display_order = ?, featured = ?, active = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Description, p.Category, p.Image, p.Link, p.Technologies,
		p.Order, p.Featured, p.Active, fmtTime(p.UpdatedAt), id)
	if err != nil {
		return Project{}, fmt.Errorf("updating project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) DeleteProject(id string) error {
	_, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	return err
}

// --- AI agents ---

const agentCols = "id, name, description, icon, features, price, price_type, category, capabilities, integrations, display_order, featured, active, created_at, updated_at"

func scanAiAgent(row rowScanner) (AiAgent, error) {
	var a AiAgent
	var features, integrations, createdAt, updatedAt string
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &features, &a.Price,
		&a.PriceType, &a.Category, &a.Capabilities, &integrations, &a.Order,
		&a.Featured, &a.Active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return AiAgent{}, ErrNotFound
	}
	if err != nil {
		return AiAgent{}, err
	}
	a.Features = unmarshalList(features)
	a.Integrations = unmarshalList(integrations)
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return AiAgent{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return AiAgent{}, err
	}
	return a, nil
}

func (s *SQLiteStore) ListAiAgents(includeInactive bool) ([]AiAgent, error) {
	query := "SELECT " + agentCols + " FROM ai_agents"
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY display_order ASC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AiAgent{}
	for rows.Next() {
		a, err := scanAiAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetAiAgent(id string) (AiAgent, error) {
	return scanAiAgent(s.db.QueryRow("SELECT "+agentCols+" FROM ai_agents WHERE id = ?", id))
}

func (s *SQLiteStore) CreateAiAgent(in NewAiAgent) (AiAgent, error) {
	a := buildAiAgent(in, uuid.New().String(), time.Now().UTC())
	_, err := s.db.Exec(`INSERT INTO ai_agents (id, name, description, icon, features, price, price_type, category, capabilities, integrations, display_order, featured, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Description, a.Icon, marshalList(a.Features), a.Price,
		a.PriceType, a.Category, a.Capabilities, marshalList(a.Integrations),
		a.Order, a.Featured, a.Active, fmtTime(a.CreatedAt), fmtTime(a.UpdatedAt))
	if err != nil {
		return AiAgent{}, fmt.Errorf("inserting ai agent: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) UpdateAiAgent(id string, patch AiAgentPatch) (AiAgent, error) {
	a, err := s.GetAiAgent(id)
	if err != nil {
		return AiAgent{}, err
	}
	a = a.apply(patch, time.Now().UTC())
	_, err = s.db.Exec(`UPDATE ai_agents SET name = ?, description = ?, icon = ?, features = ?,
		price = ?, price_type = ?, category = ?, capabilities = ?, integrations = ?,
		display_order = ?, featured = ?, active = ?, updated_at = ? WHERE id = ?`,
		a.Name, a.Description, a.Icon, marshalList(a.Features), a.Price, a.PriceType,
		a.Category, a.Capabilities, marshalList(a.Integrations), a.Order,
		a.Featured, a.Active, fmtTime(a.UpdatedAt), id)
	if err != nil {
		return AiAgent{}, fmt.Errorf("updating ai agent: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) DeleteAiAgent(id string) error {
	_, err := s.db.Exec("DELETE FROM ai_agents WHERE id = ?", id)
	return err
}

// --- site settings ---

func (s *SQLiteStore) ListSettings() ([]SiteSetting, error) {
	rows, err := s.db.Query("SELECT id, key, value, updated_at FROM site_settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SiteSetting{}
	for rows.Next() {
		var st SiteSetting
		var value, updatedAt string
		if err := rows.Scan(&st.ID, &st.Key, &value, &updatedAt); err != nil {
			return nil, err
		}
		st.Value = json.RawMessage(value)
		if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetSetting(key string) (SiteSetting, error) {
	var st SiteSetting
	var value, updatedAt string
	err := s.db.QueryRow("SELECT id, key, value, updated_at FROM site_settings WHERE key = ?", key).
		Scan(&st.ID, &st.Key, &value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SiteSetting{}, ErrNotFound
	}
	if err != nil {
		return SiteSetting{}, err
	}
	st.Value = json.RawMessage(value)
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return SiteSetting{}, err
	}
	return st, nil
}

// SetSetting upserts by key, keeping the original row id across updates.
func (s *SQLiteStore) SetSetting(key string, value json.RawMessage) (SiteSetting, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(`INSERT INTO site_settings (id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		uuid.New().String(), key, string(value), fmtTime(now))
	if err != nil {
		return SiteSetting{}, fmt.Errorf("upserting setting: %w", err)
	}
	return s.GetSetting(key)
}
