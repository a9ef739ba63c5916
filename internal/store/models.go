package store

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Lead pipeline states.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusClosed    = "closed"
)

// Blog post states.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// User is an admin account. Password holds a pre-hashed opaque value; the
// store never hashes or verifies it.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Lead is a contact-form submission tracked through the sales pipeline.
type Lead struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Company    string    `json:"company,omitempty"`
	Message    string    `json:"message"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	Notes      string    `json:"notes,omitempty"`
	AssignedTo string    `json:"assignedTo,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type NewLead struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Message  string `json:"message"`
	Source   string `json:"source"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// LeadPatch is a partial update; nil fields are left untouched.
type LeadPatch struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Company    *string `json:"company"`
	Message    *string `json:"message"`
	Source     *string `json:"source"`
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	Notes      *string `json:"notes"`
	AssignedTo *string `json:"assignedTo"`
}

type BlogPost struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Content         string     `json:"content"`
	FeaturedImage   string     `json:"featuredImage,omitempty"`
	Category        string     `json:"category,omitempty"`
	Tags            []string   `json:"tags"`
	Status          string     `json:"status"`
	AuthorID        string     `json:"authorId"`
	MetaTitle       string     `json:"metaTitle,omitempty"`
	MetaDescription string     `json:"metaDescription,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
}

type NewBlogPost struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	FeaturedImage   string   `json:"featuredImage"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Status          string   `json:"status"`
	AuthorID        string   `json:"authorId"`
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
}

type BlogPostPatch struct {
	Title           *string   `json:"title"`
	Slug            *string   `json:"slug"`
	Excerpt         *string   `json:"excerpt"`
	Content         *string   `json:"content"`
	FeaturedImage   *string   `json:"featuredImage"`
	Category        *string   `json:"category"`
	Tags            *[]string `json:"tags"`
	Status          *string   `json:"status"`
	MetaTitle       *string   `json:"metaTitle"`
	MetaDescription *string   `json:"metaDescription"`
}

type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Image        string    `json:"image"`
	Link         string    `json:"link,omitempty"`
	Technologies string    `json:"technologies,omitempty"`
	Order        int       `json:"order"`
	Featured     bool      `json:"featured"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type NewProject struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Image        string `json:"image"`
	Link         string `json:"link"`
	Technologies string `json:"technologies"`
	Order        int    `json:"order"`
	Featured     bool   `json:"featured"`
	Active       *bool  `json:"active"`
}

type ProjectPatch struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	Image        *string `json:"image"`
	Link         *string `json:"link"`
	Technologies *string `json:"technologies"`
	Order        *int    `json:"order"`
	Featured     *bool   `json:"featured"`
	Active       *bool   `json:"active"`
}

type AiAgent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
	Features     []string  `json:"features"`
	Price        string    `json:"price"`
	PriceType    string    `json:"priceType"`
	Category     string    `json:"category"`
	Capabilities string    `json:"capabilities,omitempty"`
	Integrations []string  `json:"integrations"`
	Order        int       `json:"order"`
	Featured     bool      `json:"featured"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type NewAiAgent struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon"`
	Features     []string `json:"features"`
	Price        string   `json:"price"`
	PriceType    string   `json:"priceType"`
	Category     string   `json:"category"`
	Capabilities string   `json:"capabilities"`
	Integrations []string `json:"integrations"`
	Order        int      `json:"order"`
	Featured     bool     `json:"featured"`
	Active       *bool    `json:"active"`
}

type AiAgentPatch struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Icon         *string   `json:"icon"`
	Features     *[]string `json:"features"`
	Price        *string   `json:"price"`
	PriceType    *string   `json:"priceType"`
	Category     *string   `json:"category"`
	Capabilities *string   `json:"capabilities"`
	Integrations *[]string `json:"integrations"`
	Order        *int      `json:"order"`
	Featured     *bool     `json:"featured"`
	Active       *bool     `json:"active"`
}

// SiteSetting is addressed by key, not id. Value is stored opaque and
// returned byte-for-byte.
type SiteSetting struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// --- record construction (defaults per entity) ---

func buildUser(in NewUser, id string, now time.Time) User {
	role := in.Role
	if role == "" {
		role = "admin"
	}
	return User{
		ID:        id,
		Username:  in.Username,
		Password:  in.Password,
		Email:     in.Email,
		Role:      role,
		CreatedAt: now,
	}
}

func buildLead(in NewLead, id string, now time.Time) Lead {
	l := Lead{
		ID:        id,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		Message:   in.Message,
		Source:    in.Source,
		Status:    in.Status,
		Priority:  in.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if l.Source == "" {
		l.Source = "contact_form"
	}
	if l.Status == "" {
		l.Status = LeadStatusNew
	}
	if l.Priority == "" {
		l.Priority = "medium"
	}
	return l
}

func buildBlogPost(in NewBlogPost, id string, now time.Time) BlogPost {
	p := BlogPost{
		ID:              id,
		Title:           in.Title,
		Slug:            in.Slug,
		Excerpt:         in.Excerpt,
		Content:         in.Content,
		FeaturedImage:   in.FeaturedImage,
		Category:        in.Category,
		Tags:            in.Tags,
		Status:          in.Status,
		AuthorID:        in.AuthorID,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Status == "" {
		p.Status = PostStatusDraft
	}
	if p.Status == PostStatusPublished {
		t := now
		p.PublishedAt = &t
	}
	return p
}

func buildProject(in NewProject, id string, now time.Time) Project {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return Project{
		ID:           id,
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		Image:        in.Image,
		Link:         in.Link,
		Technologies: in.Technologies,
		Order:        in.Order,
		Featured:     in.Featured,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func buildAiAgent(in NewAiAgent, id string, now time.Time) AiAgent {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	a := AiAgent{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		Icon:         in.Icon,
		Features:     in.Features,
		Price:        in.Price,
		PriceType:    in.PriceType,
		Category:     in.Category,
		Capabilities: in.Capabilities,
		Integrations: in.Integrations,
		Order:        in.Order,
		Featured:     in.Featured,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if a.Features == nil {
		a.Features = []string{}
	}
	if a.Integrations == nil {
		a.Integrations = []string{}
	}
	if a.PriceType == "" {
		a.PriceType = "monthly"
	}
	return a
}

// --- patch application (shallow merge, shared by both store implementations) ---

func (l Lead) apply(p LeadPatch, now time.Time) Lead {
	setString(&l.Name, p.Name)
	setString(&l.Email, p.Email)
	setString(&l.Phone, p.Phone)
	setString(&l.Company, p.Company)
	setString(&l.Message, p.Message)
	setString(&l.Source, p.Source)
	setString(&l.Status, p.Status)
	setString(&l.Priority, p.Priority)
	setString(&l.Notes, p.Notes)
	setString(&l.AssignedTo, p.AssignedTo)
	l.UpdatedAt = now
	return l
}

// apply merges the patch and sets PublishedAt the first time the post
// transitions to published. Once set it is never cleared or overwritten.
func (b BlogPost) apply(p BlogPostPatch, now time.Time) BlogPost {
	setString(&b.Title, p.Title)
	setString(&b.Slug, p.Slug)
	setString(&b.Excerpt, p.Excerpt)
	setString(&b.Content, p.Content)
	setString(&b.FeaturedImage, p.FeaturedImage)
	setString(&b.Category, p.Category)
	setString(&b.Status, p.Status)
	setString(&b.MetaTitle, p.MetaTitle)
	setString(&b.MetaDescription, p.MetaDescription)
	if p.Tags != nil {
		b.Tags = *p.Tags
	}
	if b.Status == PostStatusPublished && b.PublishedAt == nil {
		t := now
		b.PublishedAt = &t
	}
	b.UpdatedAt = now
	return b
}

func (pr Project) apply(p ProjectPatch, now time.Time) Project {
	setString(&pr.Title, p.Title)
	setString(&pr.Description, p.Description)
	setString(&pr.Category, p.Category)
	setString(&pr.Image, p.Image)
	setString(&pr.Link, p.Link)
	setString(&pr.Technologies, p.Technologies)
	if p.Order != nil {
		pr.Order = *p.Order
	}
	if p.Featured != nil {
		pr.Featured = *p.Featured
	}
	if p.Active != nil {
		pr.Active = *p.Active
	}
	pr.UpdatedAt = now
	return pr
}

func (a AiAgent) apply(p AiAgentPatch, now time.Time) AiAgent {
	setString(&a.Name, p.Name)
	setString(&a.Description, p.Description)
	setString(&a.Icon, p.Icon)
	setString(&a.Price, p.Price)
	setString(&a.PriceType, p.PriceType)
	setString(&a.Category, p.Category)
	setString(&a.Capabilities, p.Capabilities)
	if p.Features != nil {
		a.Features = *p.Features
	}
	if p.Integrations != nil {
		a.Integrations = *p.Integrations
	}
	if p.Order != nil {
		a.Order = *p.Order
	}
	if p.Featured != nil {
		a.Featured = *p.Featured
	}
	if p.Active != nil {
		a.Active = *p.Active
	}
	a.UpdatedAt = now
	return a
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
